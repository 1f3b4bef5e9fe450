package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// ErrHostClosed is returned by Run when the host ends the session.
var ErrHostClosed = errors.New("host closed the room")

// Client connects a joiner's replica of a room to the host's hub.
type Client struct {
	room *state.Room
	conn *websocket.Conn
	log  *slog.Logger
	send chan state.Message

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects room to the hub at url (see WebSocketURL). The room's
// outgoing messages are sent to the host once Run is called.
func Dial(ctx context.Context, url string, room *state.Room, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("dial %s: %w", url, ErrRoomMismatch)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		room: room,
		conn: conn,
		log:  log.With("component", "net", "room", room.ID()),
		send: make(chan state.Message, sendBuffer),
		done: make(chan struct{}),
	}
	c.send <- room.HelloMessage()
	room.SetSink(c.enqueue)
	c.log.Info("connected to host", "url", url)
	return c, nil
}

// enqueue blocks while the send queue is full so no local change is lost.
func (c *Client) enqueue(m state.Message) {
	select {
	case c.send <- m:
	case <-c.done:
	}
}

// Run exchanges messages with the host until ctx is cancelled, Close is
// called or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(c.readLoop)
	g.Go(c.writeLoop)
	g.Go(func() error {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
		return nil
	})
	return g.Wait()
}

// Close disconnects from the host. The room keeps its state but stops
// sending.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.room.SetSink(nil)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.conn.Close()
		c.log.Info("disconnected from host")
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) readLoop() error {
	defer c.Close()
	for {
		var msg state.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			switch {
			case c.closed():
				return nil
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				return ErrHostClosed
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := c.room.Receive(msg); err != nil {
			c.log.Warn("rejected message", "type", msg.Type, "from", msg.Site, "err", err)
		}
	}
}

func (c *Client) writeLoop() error {
	for {
		select {
		case <-c.done:
			return nil
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				if c.closed() {
					return nil
				}
				c.Close()
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}
