// Package net carries room messages between participants. The host runs a
// Hub: its own replica of the room plus a websocket relay every other
// participant connects to. Joiners run a Client. Rooms are advertised on
// the LAN over mDNS and shared as ridex:// links.
package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// ErrRoomMismatch is returned when a participant asks for a room the hub
// does not serve.
var ErrRoomMismatch = errors.New("room mismatch")

const (
	sendBuffer      = 256
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// peer is one connected participant. Messages to it are queued on send and
// written by its own goroutine.
type peer struct {
	conn *websocket.Conn
	send chan state.Message
	addr string

	mu   sync.Mutex
	site string
	gone bool
}

func (p *peer) setSite(site string) {
	p.mu.Lock()
	p.site = site
	p.mu.Unlock()
}

// enqueue queues m unless p is gone. It returns false when p's queue is
// full.
func (p *peer) enqueue(m state.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gone {
		return true
	}
	select {
	case p.send <- m:
		return true
	default:
		return false
	}
}

func (p *peer) siteID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.site
}

// Hub relays messages between the participants of one room and keeps the
// host's replica of it.
type Hub struct {
	room     *state.Room
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]struct{}
}

// NewHub serves room. The room's outgoing messages are broadcast to every
// connected participant.
func NewHub(room *state.Room, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &Hub{
		room:  room,
		log:   log.With("component", "net", "room", room.ID()),
		peers: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Peers are other desktop apps on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	room.SetSink(func(m state.Message) { h.broadcast(m, nil) })
	return h
}

// Handler returns the hub's HTTP handler.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{id}", h.handleRoom)
	return mux
}

// Serve accepts participants on ln until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 10 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.log.Info("hub listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		h.closeAll()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// Peers returns the number of connected participants.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) handleRoom(w http.ResponseWriter, r *http.Request) {
	if id := r.PathValue("id"); id != h.room.ID() {
		h.log.Warn("rejected join", "remote", r.RemoteAddr, "err", fmt.Errorf("%w: %q", ErrRoomMismatch, id))
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	p := &peer{conn: conn, send: make(chan state.Message, sendBuffer), addr: r.RemoteAddr}
	h.add(p)
	// The newcomer starts from the full document and everyone's presence.
	// Ops relayed before the sync are harmless since merging is idempotent.
	initial := append([]state.Message{h.room.SyncMessage(), h.room.HelloMessage()}, h.room.PeerMessages()...)
	for _, m := range initial {
		if !p.enqueue(m) {
			h.log.Warn("initial state does not fit the send queue", "remote", p.addr)
			h.drop(p)
			return
		}
	}

	go h.writeLoop(p)
	h.readLoop(p)
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()
	h.log.Info("participant connected", "remote", p.addr, "peers", n)
}

// drop disconnects p and tells everyone else it left.
func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	if _, ok := h.peers[p]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.peers, p)
	p.mu.Lock()
	p.gone = true
	close(p.send)
	p.mu.Unlock()
	h.mu.Unlock()

	p.conn.Close()
	site := p.siteID()
	h.log.Info("participant disconnected", "remote", p.addr, "site", site)
	if site == "" {
		return
	}
	h.room.RemovePeer(site)
	h.broadcast(state.Message{Type: state.MsgLeave, Room: h.room.ID(), Site: site}, p)
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()
	for _, p := range peers {
		h.drop(p)
	}
}

func (h *Hub) readLoop(p *peer) {
	defer h.drop(p)
	for {
		var msg state.Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read failed", "remote", p.addr, "err", err)
			}
			return
		}
		if msg.Site == "" || msg.Site == h.room.Site() {
			h.log.Warn("dropping message without a valid site", "remote", p.addr, "type", msg.Type)
			continue
		}
		if msg.Type == state.MsgHello {
			p.setSite(msg.Site)
		}
		if err := h.room.Receive(msg); err != nil {
			h.log.Warn("rejected message", "remote", p.addr, "type", msg.Type, "err", err)
			continue
		}
		h.broadcast(msg, p)
	}
}

func (h *Hub) writeLoop(p *peer) {
	for msg := range p.send {
		_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := p.conn.WriteJSON(msg); err != nil {
			h.log.Debug("write failed", "remote", p.addr, "err", err)
			go h.drop(p)
			for range p.send {
			}
			return
		}
	}
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// broadcast queues m for every participant except the excluded one. A
// participant too slow to keep up is disconnected.
func (h *Hub) broadcast(m state.Message, exclude *peer) {
	h.mu.RLock()
	var slow []*peer
	for p := range h.peers {
		if p == exclude {
			continue
		}
		if !p.enqueue(m) {
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()
	for _, p := range slow {
		h.log.Warn("participant too slow, disconnecting", "remote", p.addr)
		h.drop(p)
	}
}
