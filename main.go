// Command ridex is a collaborative design editor for the local network. Run
// without arguments it hosts a new room and prints a share link; run with a
// ridex:// link it joins that room.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/config"
	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	rnet "github.com/wastless/ridex-design-app-sub001/internal/net"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
	"github.com/wastless/ridex-design-app-sub001/internal/ui"
)

const (
	dialTimeout   = 10 * time.Second
	browseTimeout = 3 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ridex:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.DefaultPath(), "config file")
		join       = flag.String("join", "", "room link to join (ridex://host:port/room)")
		discover   = flag.Bool("discover", false, "list rooms on the local network and exit")
		port       = flag.Int("port", -1, "port to host on (overrides the config file)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port >= 0 {
		cfg.Port = *port
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *discover {
		return listRooms(ctx)
	}

	link := *join
	if arg := flag.Arg(0); strings.HasPrefix(arg, rnet.LinkScheme+"://") {
		link = arg
	}
	if link != "" {
		return runJoin(ctx, cfg, log, link)
	}
	return runHost(ctx, cfg, log)
}

func listRooms(ctx context.Context) error {
	services, err := rnet.Browse(ctx, browseTimeout)
	if err != nil {
		return fmt.Errorf("discover rooms: %w", err)
	}
	if len(services) == 0 {
		fmt.Println("no rooms found")
		return nil
	}
	for _, s := range services {
		fmt.Printf("%-20s %s\n", s.Name, s.Link())
	}
	return nil
}

// session is one participant's editor stack over a room.
type session struct {
	board *board.Board
	ctrl  *editor.Controller
}

func newSession(cfg config.Config, log *slog.Logger, roomID string) session {
	room := state.NewRoom(roomID, state.WithLogger(log))
	rc := cfg.RoomRGB()
	b := board.New(room, board.Options{RoomColor: &rc, Logger: log})
	ed := editor.New(b, editor.Config{
		MaxLayers:    cfg.MaxLayers,
		NetThreshold: cfg.SelectionNetThreshold,
		MinSize:      cfg.MinLayerSize,
		PenColor:     cfg.PenRGB(),
		Logger:       log,
	})
	return session{board: b, ctrl: editor.NewController(ed)}
}

func (s session) window(cfg config.Config, log *slog.Logger, title, link string, cancel func()) *ui.App {
	return ui.New(s.ctrl, ui.Options{
		Title:     title,
		ShareLink: link,
		MaxLayers: cfg.MaxLayers,
		SaveDir:   cfg.SaveDir,
		OnClose:   cancel,
		Logger:    log,
	})
}

func runHost(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	roomID := rnet.NewRoomID()
	s := newSession(cfg, log, roomID)
	s.board.Init()
	pen := cfg.PenRGB()
	s.board.JoinPresence(&pen)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ip, err := rnet.OutgoingIP()
	if err != nil {
		ip = net.IPv4(127, 0, 0, 1)
	}
	link := rnet.ShareLink(ip, port, roomID)
	log.Info("hosting room", "room", roomID, "link", link)

	hub := rnet.NewHub(s.board.Room(), log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Serve(gctx, ln) })
	if cfg.Advertise {
		g.Go(func() error {
			srv, err := rnet.Advertise(roomID, cfg.Name, port)
			if err != nil {
				// Joining by link still works.
				log.Warn("mdns advertise failed", "err", err)
				return nil
			}
			<-gctx.Done()
			return srv.Shutdown()
		})
	}

	app := s.window(cfg, log, "Ridex - "+roomID, link, cancel)
	go func() {
		if err := g.Wait(); err != nil {
			app.SetStatus("network error: " + err.Error())
		}
	}()
	app.Run()
	cancel()
	return g.Wait()
}

func runJoin(ctx context.Context, cfg config.Config, log *slog.Logger, link string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr, roomID, err := rnet.ParseLink(link)
	if err != nil {
		return err
	}
	s := newSession(cfg, log, roomID)
	pen := cfg.PenRGB()
	s.board.JoinPresence(&pen)

	dctx, dcancel := context.WithTimeout(ctx, dialTimeout)
	client, err := rnet.Dial(dctx, rnet.WebSocketURL(addr, roomID), s.board.Room(), log)
	dcancel()
	if err != nil {
		return err
	}

	app := s.window(cfg, log, "Ridex - "+roomID, "", cancel)
	done := make(chan error, 1)
	go func() {
		err := client.Run(ctx)
		switch {
		case errors.Is(err, rnet.ErrHostClosed):
			app.SetStatus("The host closed the room")
		case err != nil:
			app.SetStatus("Disconnected: " + err.Error())
		}
		done <- err
	}()
	app.SetStatus("Connected to " + addr)
	app.Run()
	cancel()
	client.Close()
	if err := <-done; err != nil && !errors.Is(err, rnet.ErrHostClosed) {
		return err
	}
	return nil
}
