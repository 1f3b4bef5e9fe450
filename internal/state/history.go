package state

import "sync"

// entry is one undoable step: the ops and presence fields that restore the
// state from before it. ops are stored in the order they must be applied.
type entry struct {
	ops      []Op
	presence Fields
}

func (e entry) empty() bool {
	return len(e.ops) == 0 && len(e.presence) == 0
}

// absorb folds a newer step into e so both undo together. The newer ops run
// first; for presence the oldest previous value is kept.
func (e *entry) absorb(newer entry) {
	e.ops = append(append([]Op{}, newer.ops...), e.ops...)
	for k, v := range newer.presence {
		if e.presence == nil {
			e.presence = Fields{}
		}
		if _, ok := e.presence[k]; !ok {
			e.presence[k] = v
		}
	}
}

// history holds the undo and redo stacks of one participant. Only local
// writes are recorded. It is guarded by the owning Room's lock.
type history struct {
	undo    []entry
	redo    []entry
	pauses  int
	pending entry
}

func (h *history) record(e entry) {
	if e.empty() {
		return
	}
	if h.pauses > 0 {
		h.pending.absorb(e)
		return
	}
	h.undo = append(h.undo, e)
	h.redo = nil
}

func (h *history) pause() {
	h.pauses++
}

func (h *history) resume() {
	if h.pauses == 0 {
		return
	}
	h.pauses--
	if h.pauses > 0 {
		return
	}
	e := h.pending
	h.pending = entry{}
	h.record(e)
}

func pop(stack *[]entry) (entry, bool) {
	s := *stack
	if len(s) == 0 {
		return entry{}, false
	}
	e := s[len(s)-1]
	*stack = s[:len(s)-1]
	return e, true
}

// Pause suspends history recording until Resume. Everything written in
// between becomes a single undo step. Resume may be called any number of
// times; only the first call counts, so it is safe to defer.
type Pause struct {
	once sync.Once
	room *Room
}

// Resume ends the pause.
func (p *Pause) Resume() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.room.mu.Lock()
		p.room.history.resume()
		p.room.mu.Unlock()
	})
}
