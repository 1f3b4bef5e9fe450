package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_ridex._tcp"

// Service is a room found on the LAN.
type Service struct {
	Name string
	Room string
	Addr string
}

// Link returns the share link for the service.
func (s Service) Link() string { return LinkScheme + "://" + s.Addr + "/" + s.Room }

// Advertise announces a hosted room over mDNS until the returned server is
// shut down.
func Advertise(roomID, name string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	if name == "" {
		name = host
	}
	txt := []string{"room=" + roomID, "name=" + name}

	var ips []net.IP
	if ip, err := OutgoingIP(); err == nil {
		ips = []net.IP{ip}
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, ips, txt)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}

// Browse lists the rooms advertised on the LAN, waiting at most timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Service, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() {
		errc <- mdns.Query(params)
		close(entries)
	}()

	var found []Service
	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				if err := <-errc; err != nil {
					return found, fmt.Errorf("mdns query: %w", err)
				}
				return found, nil
			}
			s, ok := serviceFromEntry(e)
			if !ok || seen[s.Link()] {
				continue
			}
			seen[s.Link()] = true
			found = append(found, s)
		}
	}
}

func serviceFromEntry(e *mdns.ServiceEntry) (Service, bool) {
	if e.AddrV4 == nil || e.Port == 0 {
		return Service{}, false
	}
	txt := parseTXT(e.InfoFields)
	if txt["room"] == "" {
		return Service{}, false
	}
	return Service{
		Name: txt["name"],
		Room: txt["room"],
		Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
	}, true
}

func parseTXT(fields []string) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
