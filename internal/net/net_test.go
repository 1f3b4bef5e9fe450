package net

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

const roomID = "room-1"

func startHub(t *testing.T) (*Hub, *state.Room, string) {
	t.Helper()
	room := state.NewRoom(roomID, state.WithSite("host"))
	hub := NewHub(room, nil)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return hub, room, strings.TrimPrefix(srv.URL, "http://")
}

func join(t *testing.T, addr, site string) (*Client, *state.Room) {
	t.Helper()
	room := state.NewRoom(roomID, state.WithSite(site))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, WebSocketURL(addr, roomID), room, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	t.Cleanup(func() {
		c.Close()
		<-done
	})
	return c, room
}

func put(r *state.Room, id string) {
	r.Batch(func(tx *state.Tx) {
		tx.PutObject("layers", id, state.Fields{"x": json.RawMessage("1")})
		tx.Push("layerIds", id)
	})
}

func ids(r *state.Room) (out []string) {
	r.Read(func(rd state.Reader) { out = rd.List("layerIds") })
	return out
}

func others(r *state.Room) (sites []string) {
	r.Read(func(rd state.Reader) {
		for s := range rd.Others() {
			sites = append(sites, s)
		}
	})
	return sites
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 3*time.Second, 10*time.Millisecond, msg)
}

func TestJoinerReceivesExistingDocument(t *testing.T) {
	_, host, addr := startHub(t)
	put(host, "a")

	_, room := join(t, addr, "joiner")
	eventually(t, func() bool { return assert.ObjectsAreEqual([]string{"a"}, ids(room)) }, "sync delivers the document")
}

func TestParticipantsConverge(t *testing.T) {
	hub, host, addr := startHub(t)
	_, a := join(t, addr, "a")
	_, b := join(t, addr, "b")
	eventually(t, func() bool { return hub.Peers() == 2 }, "both connected")

	put(a, "from-a")
	put(b, "from-b")
	put(host, "from-host")

	for name, r := range map[string]*state.Room{"host": host, "a": a, "b": b} {
		eventually(t, func() bool { return len(ids(r)) == 3 }, name+" has every layer")
	}
	assert.Equal(t, ids(host), ids(a))
	assert.Equal(t, ids(host), ids(b))
}

func TestPresenceAndLeave(t *testing.T) {
	hub, host, addr := startHub(t)
	ca, a := join(t, addr, "a")
	_, b := join(t, addr, "b")
	eventually(t, func() bool { return hub.Peers() == 2 }, "both connected")

	a.BatchWithoutHistory(func(tx *state.Tx) {
		tx.SetPresence(state.Fields{"cursor": json.RawMessage(`{"x":1,"y":2}`)}, false)
	})
	eventually(t, func() bool { return contains(others(b), "a") }, "b sees a")
	eventually(t, func() bool { return len(others(host)) == 2 }, "host sees both")

	ca.Close()
	eventually(t, func() bool { return hub.Peers() == 1 }, "hub dropped a")
	eventually(t, func() bool { return !contains(others(b), "a") }, "b forgot a")
	assert.NotContains(t, others(host), "a")
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestDialUnknownRoom(t *testing.T) {
	_, _, addr := startHub(t)
	room := state.NewRoom("other", state.WithSite("x"))
	_, err := Dial(context.Background(), WebSocketURL(addr, "other"), room, nil)
	assert.ErrorIs(t, err, ErrRoomMismatch)
}

func TestServeStopsWithContext(t *testing.T) {
	hub, _, _ := startHub(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Serve(ctx, ln) }()

	_, room := join(t, ln.Addr().String(), "a")
	put(room, "x")
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestLinks(t *testing.T) {
	link := ShareLink(net.IPv4(192, 168, 1, 20), 8888, "2F3kq")
	assert.Equal(t, "ridex://192.168.1.20:8888/2F3kq", link)

	addr, room, err := ParseLink(link)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20:8888", addr)
	assert.Equal(t, "2F3kq", room)
	assert.Equal(t, "ws://192.168.1.20:8888/rooms/2F3kq", WebSocketURL(addr, room))

	bad := []string{
		"",
		"http://192.168.1.20:8888/abc",
		"ridex://192.168.1.20/abc",
		"ridex://192.168.1.20:8888",
		"ridex://192.168.1.20:8888/a/b",
		"ridex://:8888/abc",
	}
	for _, l := range bad {
		t.Run(l, func(t *testing.T) {
			_, _, err := ParseLink(l)
			assert.ErrorIs(t, err, ErrBadLink)
		})
	}
}

func TestNewRoomIDUnique(t *testing.T) {
	a, b := NewRoomID(), NewRoomID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 27)
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"room=abc", "name=Ann's laptop", "junk", "eq=a=b"})
	assert.Equal(t, map[string]string{"room": "abc", "name": "Ann's laptop", "eq": "a=b"}, got)
}
