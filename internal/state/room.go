// Package state is the replicated store a room lives in. A Room holds a
// Document merged from every participant's ops, the presence of everyone
// connected, and the local undo history. Local writes go through Batch,
// which applies them atomically, records their inverse and hands the
// resulting messages to the transport.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Change describes what a notification is about.
type Change struct {
	Storage  bool
	Presence bool
	Others   bool
	Local    bool
}

// Room is one participant's replica of a room.
type Room struct {
	mu      sync.RWMutex
	id      string
	clock   *Clock
	doc     *Document
	self    Fields
	others  map[string]map[string]*register
	history history

	sinkMu sync.RWMutex
	sink   func(Message)

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	log *slog.Logger
}

// Option configures a Room.
type Option func(*Room)

// WithSite fixes the participant id instead of generating one.
func WithSite(site string) Option {
	return func(r *Room) { r.clock = NewClock(site) }
}

// WithLogger sets the room's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Room) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRoom returns an empty replica of room id.
func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		id:     id,
		doc:    NewDocument(),
		self:   Fields{},
		others: make(map[string]map[string]*register),
		subs:   make(map[int]func(Change)),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = NewClock("")
	}
	r.log = r.log.With("component", "state", "room", id, "site", r.clock.Site())
	return r
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Site() string { return r.clock.Site() }

// SetSink sets where outgoing messages go. A nil sink keeps the room local.
func (r *Room) SetSink(fn func(Message)) {
	r.sinkMu.Lock()
	r.sink = fn
	r.sinkMu.Unlock()
}

func (r *Room) send(msgs ...Message) {
	r.sinkMu.RLock()
	sink := r.sink
	r.sinkMu.RUnlock()
	if sink == nil {
		return
	}
	for _, m := range msgs {
		sink(m)
	}
}

// Subscribe registers fn for every change, local or remote. fn runs after
// the room's lock is released, on the goroutine that caused the change.
func (r *Room) Subscribe(fn func(Change)) (cancel func()) {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()
	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Room) notify(c Change) {
	r.subMu.Lock()
	fns := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// Reader is a consistent read-only view of the room. It is only valid
// inside the callback it was passed to.
type Reader struct {
	room *Room
}

func (rd Reader) Root(key string) []byte                   { return rd.room.doc.Root(key) }
func (rd Reader) Object(target, key string) (Fields, bool) { return rd.room.doc.Object(target, key) }
func (rd Reader) Has(target, key string) bool              { return rd.room.doc.Has(target, key) }
func (rd Reader) Keys(target string) []string              { return rd.room.doc.Keys(target) }
func (rd Reader) List(target string) []string              { return rd.room.doc.List(target) }
func (rd Reader) InList(target, id string) bool            { return rd.room.doc.InList(target, id) }
func (rd Reader) Site() string                             { return rd.room.clock.Site() }

// Presence returns this participant's presence fields.
func (rd Reader) Presence() Fields {
	f := make(Fields, len(rd.room.self))
	for k, v := range rd.room.self {
		f[k] = v
	}
	return f
}

// Others returns the presence fields of every other participant by site.
func (rd Reader) Others() map[string]Fields {
	out := make(map[string]Fields, len(rd.room.others))
	for site, regs := range rd.room.others {
		f := make(Fields, len(regs))
		for k, reg := range regs {
			f[k] = reg.value
		}
		out[site] = f
	}
	return out
}

// Read runs fn with a consistent view of the room.
func (r *Room) Read(fn func(Reader)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(Reader{room: r})
}

// Tx is a local write in progress. Writes are visible to the Tx's own reads
// immediately and to everyone else only once Batch returns.
type Tx struct {
	Reader
	stamp    Stamp
	ops      []Op
	inverse  []Op
	presence Fields
	prevPres Fields
	errs     []error
}

// apply stamps op with the batch's Lamport time, so a concurrent batch
// beats all of this one's ops or none of them.
func (tx *Tx) apply(op Op) {
	if tx.stamp.IsZero() {
		tx.stamp = tx.room.clock.Tick()
	} else {
		tx.stamp.Seq++
	}
	op.Stamp = tx.stamp
	if op.Kind == OpListInsert && op.Pos == nil {
		pos := op.Stamp
		op.Pos = &pos
	}
	inv := tx.room.doc.Invert(op)
	if _, err := tx.room.doc.Apply(op); err != nil {
		tx.errs = append(tx.errs, err)
		return
	}
	tx.ops = append(tx.ops, op)
	tx.inverse = append(inv, tx.inverse...)
}

// SetRoot writes a root register.
func (tx *Tx) SetRoot(key string, value []byte) {
	tx.apply(Op{Kind: OpSetRoot, Target: key, Value: value})
}

// PutObject creates (or revives) an object with the given fields.
func (tx *Tx) PutObject(target, key string, fields Fields) {
	tx.apply(Op{Kind: OpPutObject, Target: target, Key: key, Fields: fields})
}

// SetFields updates some fields of an object.
func (tx *Tx) SetFields(target, key string, fields Fields) {
	if len(fields) == 0 {
		return
	}
	tx.apply(Op{Kind: OpSetFields, Target: target, Key: key, Fields: fields})
}

// DeleteObject removes an object.
func (tx *Tx) DeleteObject(target, key string) {
	tx.apply(Op{Kind: OpDeleteObject, Target: target, Key: key})
}

// Push appends id to the end of a list.
func (tx *Tx) Push(target, id string) {
	tx.apply(Op{Kind: OpListInsert, Target: target, Key: id})
}

// Remove deletes id from a list.
func (tx *Tx) Remove(target, id string) {
	tx.apply(Op{Kind: OpListDelete, Target: target, Key: id})
}

// SetPresence updates this participant's presence. With addToHistory the
// previous values become part of this batch's undo step.
func (tx *Tx) SetPresence(fields Fields, addToHistory bool) {
	if tx.presence == nil {
		tx.presence = Fields{}
	}
	for k, v := range fields {
		if addToHistory {
			if tx.prevPres == nil {
				tx.prevPres = Fields{}
			}
			if _, seen := tx.prevPres[k]; !seen {
				prev, ok := tx.room.self[k]
				if !ok {
					prev = null
				}
				tx.prevPres[k] = prev
			}
		}
		tx.room.self[k] = v
		tx.presence[k] = v
	}
}

// Batch runs fn as one atomic local write. It reports whether fn wrote
// anything.
func (r *Room) Batch(fn func(*Tx)) bool {
	return r.batch(fn, true)
}

// BatchWithoutHistory is Batch for writes that must never be undone, such
// as the initial room shape or a presence reset on join.
func (r *Room) BatchWithoutHistory(fn func(*Tx)) bool {
	return r.batch(fn, false)
}

func (r *Room) batch(fn func(*Tx), record bool) bool {
	tx, msgs, changed := r.runBatch(fn, record)
	for _, err := range tx.errs {
		r.log.Warn("local op rejected", "err", err)
	}
	if !changed.Storage && !changed.Presence {
		return false
	}
	r.send(msgs...)
	r.notify(changed)
	return true
}

func (r *Room) runBatch(fn func(*Tx), record bool) (*Tx, []Message, Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &Tx{Reader: Reader{room: r}}
	fn(tx)
	msgs, changed := r.commit(tx, record)
	return tx, msgs, changed
}

// commit turns a finished Tx into outgoing messages and, when record is
// set, an undo step. Callers hold r.mu.
func (r *Room) commit(tx *Tx, record bool) ([]Message, Change) {
	var msgs []Message
	c := Change{Local: true}
	if len(tx.ops) > 0 {
		c.Storage = true
		msgs = append(msgs, Message{
			Type:  MsgOps,
			Room:  r.id,
			Site:  r.clock.Site(),
			Batch: &Batch{ID: uuid.NewString(), Site: r.clock.Site(), Ops: tx.ops},
		})
	}
	if len(tx.presence) > 0 {
		c.Presence = true
		msgs = append(msgs, Message{
			Type:     MsgPresence,
			Room:     r.id,
			Site:     r.clock.Site(),
			Presence: tx.presence,
			Stamp:    r.clock.Tick(),
		})
	}
	if record {
		r.history.record(entry{ops: tx.inverse, presence: tx.prevPres})
	}
	return msgs, c
}

// PauseHistory starts a pause; see Pause.
func (r *Room) PauseHistory() *Pause {
	r.mu.Lock()
	r.history.pause()
	r.mu.Unlock()
	return &Pause{room: r}
}

// CanUndo reports whether there is a step to undo.
func (r *Room) CanUndo() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history.undo) > 0
}

// CanRedo reports whether there is a step to redo.
func (r *Room) CanRedo() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history.redo) > 0
}

// Undo reverts the last recorded step. It does nothing while history is
// paused.
func (r *Room) Undo() bool {
	return r.step(&r.history.undo, &r.history.redo)
}

// Redo reapplies the last undone step.
func (r *Room) Redo() bool {
	return r.step(&r.history.redo, &r.history.undo)
}

func (r *Room) step(from, to *[]entry) bool {
	r.mu.Lock()
	if r.history.pauses > 0 {
		r.mu.Unlock()
		return false
	}
	e, ok := pop(from)
	if !ok {
		r.mu.Unlock()
		return false
	}
	tx := &Tx{Reader: Reader{room: r}}
	for _, op := range e.ops {
		tx.apply(op)
	}
	if len(e.presence) > 0 {
		tx.SetPresence(e.presence, true)
	}
	msgs, changed := r.commit(tx, false)
	if back := (entry{ops: tx.inverse, presence: tx.prevPres}); !back.empty() {
		*to = append(*to, back)
	}
	r.mu.Unlock()

	r.send(msgs...)
	r.notify(changed)
	return true
}

// Receive merges a message from another participant.
func (r *Room) Receive(msg Message) error {
	if msg.Room != "" && msg.Room != r.id {
		return fmt.Errorf("message for room %q delivered to %q", msg.Room, r.id)
	}
	switch msg.Type {
	case MsgOps, MsgSync:
		if msg.Batch == nil {
			return fmt.Errorf("%s message without batch", msg.Type)
		}
		return r.receiveBatch(*msg.Batch)
	case MsgHello, MsgPresence:
		r.receivePresence(msg)
		return nil
	case MsgLeave:
		r.RemovePeer(msg.Site)
		return nil
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

func (r *Room) receiveBatch(b Batch) error {
	var errs []error
	changed := false
	r.mu.Lock()
	for _, op := range b.Ops {
		r.clock.Update(op.Stamp.Lamport)
		if op.Pos != nil {
			r.clock.Update(op.Pos.Lamport)
		}
		ok, err := r.doc.Apply(op)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changed = changed || ok
	}
	r.mu.Unlock()

	r.log.Debug("merged batch", "batch", b.ID, "from", b.Site, "ops", len(b.Ops), "changed", changed)
	if changed {
		r.notify(Change{Storage: true})
	}
	return errors.Join(errs...)
}

func (r *Room) receivePresence(msg Message) {
	if msg.Site == r.clock.Site() {
		return
	}
	r.mu.Lock()
	r.clock.Update(msg.Stamp.Lamport)
	regs, ok := r.others[msg.Site]
	if !ok {
		regs = make(map[string]*register)
		r.others[msg.Site] = regs
	}
	for k, v := range msg.Presence {
		reg, ok := regs[k]
		if !ok {
			reg = &register{}
			regs[k] = reg
		}
		reg.set(v, msg.Stamp)
	}
	r.mu.Unlock()
	r.notify(Change{Others: true})
}

// RemovePeer forgets a participant's presence.
func (r *Room) RemovePeer(site string) {
	r.mu.Lock()
	_, ok := r.others[site]
	delete(r.others, site)
	r.mu.Unlock()
	if ok {
		r.log.Info("participant left", "peer", site)
		r.notify(Change{Others: true})
	}
}

// SyncMessage returns the whole document as a sync message for a
// participant that just joined.
func (r *Room) SyncMessage() Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Message{
		Type:  MsgSync,
		Room:  r.id,
		Site:  r.clock.Site(),
		Batch: &Batch{ID: uuid.NewString(), Site: r.clock.Site(), Ops: r.doc.Ops()},
	}
}

// HelloMessage announces this participant with its full presence.
func (r *Room) HelloMessage() Message {
	r.mu.RLock()
	f := Reader{room: r}.Presence()
	r.mu.RUnlock()
	return Message{Type: MsgHello, Room: r.id, Site: r.clock.Site(), Presence: f, Stamp: r.clock.Tick()}
}

// PeerMessages returns the presence of every other participant known to
// this replica, each stamped with its newest field write.
func (r *Room) PeerMessages() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var msgs []Message
	for _, site := range sortedKeys(r.others) {
		regs := r.others[site]
		f := make(Fields, len(regs))
		var newest Stamp
		for k, reg := range regs {
			f[k] = reg.value
			if reg.stamp.After(newest) {
				newest = reg.stamp
			}
		}
		msgs = append(msgs, Message{Type: MsgPresence, Room: r.id, Site: site, Presence: f, Stamp: newest})
	}
	return msgs
}
