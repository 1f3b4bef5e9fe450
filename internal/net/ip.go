package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/segmentio/ksuid"
)

// LinkScheme is the scheme of room share links: ridex://<ip>:<port>/<room>.
const LinkScheme = "ridex"

var ErrBadLink = errors.New("invalid room link")

// NewRoomID returns a fresh, time-sortable room id.
func NewRoomID() string { return ksuid.New().String() }

// ShareLink builds the link a host hands out to joiners.
func ShareLink(ip net.IP, port int, room string) string {
	u := url.URL{Scheme: LinkScheme, Host: net.JoinHostPort(ip.String(), strconv.Itoa(port)), Path: "/" + room}
	return u.String()
}

// ParseLink splits a share link into the host address and the room id.
func ParseLink(link string) (addr, room string, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrBadLink, err)
	}
	if u.Scheme != LinkScheme {
		return "", "", fmt.Errorf("%w: scheme %q", ErrBadLink, u.Scheme)
	}
	if u.Port() == "" || u.Hostname() == "" {
		return "", "", fmt.Errorf("%w: missing host or port", ErrBadLink)
	}
	room = strings.Trim(u.Path, "/")
	if room == "" || strings.Contains(room, "/") {
		return "", "", fmt.Errorf("%w: bad room %q", ErrBadLink, room)
	}
	return u.Host, room, nil
}

// WebSocketURL is where the hub at addr serves room.
func WebSocketURL(addr, room string) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/rooms/" + room}
	return u.String()
}

// OutgoingIP finds the address the host should put in share links. Without
// a default route it falls back to the first non-loopback IPv4 interface.
func OutgoingIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		return conn.LocalAddr().(*net.UDPAddr).IP, nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4(), nil
			}
		}
	}
	return net.IPv4(127, 0, 0, 1), nil
}
