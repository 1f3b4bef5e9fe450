package state

import (
	"sync"

	"github.com/google/uuid"
)

// Stamp orders writes across sites: the higher Lamport time wins and equal
// times break on the site id, so every replica picks the same winner. All
// ops of one batch share Lamport and Site; Seq orders them inside it.
type Stamp struct {
	Lamport uint64 `json:"l"`
	Site    string `json:"s"`
	Seq     uint32 `json:"q,omitempty"`
}

// After reports whether s orders after o.
func (s Stamp) After(o Stamp) bool {
	if s.Lamport != o.Lamport {
		return s.Lamport > o.Lamport
	}
	if s.Site != o.Site {
		return s.Site > o.Site
	}
	return s.Seq > o.Seq
}

func (s Stamp) IsZero() bool {
	return s.Lamport == 0 && s.Site == "" && s.Seq == 0
}

// Clock is a Lamport clock owned by one site.
type Clock struct {
	mu      sync.Mutex
	counter uint64
	site    string
}

// NewClock returns a clock for site; an empty site gets a random id.
func NewClock(site string) *Clock {
	if site == "" {
		site = uuid.NewString()
	}
	return &Clock{site: site}
}

func (c *Clock) Site() string { return c.site }

// Tick advances the clock and returns a stamp for a local write.
func (c *Clock) Tick() Stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return Stamp{Lamport: c.counter, Site: c.site}
}

// Update moves the clock past a timestamp seen from another site.
func (c *Clock) Update(lamport uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lamport > c.counter {
		c.counter = lamport
	}
}
