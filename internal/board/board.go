// Package board maps a room's document onto the replicated store: the room
// color register, the layers map and the layerIds list, plus the presence
// of every participant. All writes go through Mutate so each one reaches
// other participants as a single batch.
package board

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/presence"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// Store keys of the room document.
const (
	KeyRoomColor = "roomColor"
	KeyLayers    = "layers"
	KeyLayerIDs  = "layerIds"
)

// DefaultRoomColor is the canvas background of a new room.
var DefaultRoomColor = geom.RGB{R: 0x1e, G: 0x1e, B: 0x1e}

// Options configures a Board.
type Options struct {
	RoomColor *geom.RGB
	Metrics   *geom.Metrics
	Logger    *slog.Logger
}

// Board is the room document of one participant.
type Board struct {
	room      *state.Room
	roomColor geom.RGB
	metrics   *geom.Metrics
	log       *slog.Logger

	clipMu    sync.Mutex
	clipboard []layer.Layer
}

// New wraps room. Call Init when this participant creates the room.
func New(room *state.Room, opts Options) *Board {
	b := &Board{
		room:      room,
		roomColor: DefaultRoomColor,
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}
	if opts.RoomColor != nil {
		b.roomColor = *opts.RoomColor
	}
	if b.metrics == nil {
		b.metrics = geom.NewMetrics()
	}
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	b.log = b.log.With("component", "board")
	return b
}

func (b *Board) Room() *state.Room { return b.room }

// Metrics measures text layers.
func (b *Board) Metrics() *geom.Metrics { return b.metrics }

// Init gives an empty room its initial shape. A room that already has a
// color, for instance one received by sync, is left alone. The layers map
// and the order list exist implicitly and start empty.
func (b *Board) Init() {
	b.room.BatchWithoutHistory(func(tx *state.Tx) {
		if tx.Root(KeyRoomColor) != nil {
			return
		}
		raw, err := json.Marshal(b.roomColor)
		if err != nil {
			b.log.Error("encode room color", "err", err)
			return
		}
		tx.SetRoot(KeyRoomColor, raw)
	})
}

// JoinPresence resets this participant's presence to the defaults. It is
// called on every (re)connect and is not undoable.
func (b *Board) JoinPresence(penColor *geom.RGB) {
	p := presence.Default()
	p.PenColor = penColor
	f, err := presence.EncodeAll(p)
	if err != nil {
		b.log.Error("encode initial presence", "err", err)
		return
	}
	b.room.BatchWithoutHistory(func(tx *state.Tx) {
		tx.SetPresence(state.Fields(f), false)
	})
}

// Read runs fn with a consistent view of the document and presence.
func (b *Board) Read(fn func(View)) {
	b.room.Read(func(rd state.Reader) {
		fn(b.view(rd))
	})
}

// View returns a snapshot view. Prefer Read when several values must come
// from the same state.
func (b *Board) View() View {
	var v View
	b.Read(func(cur View) { v = cur })
	return v
}

// Mutate runs fn as one atomic write and reports whether it changed
// anything. Nothing fn writes is visible to other participants until it
// returns.
func (b *Board) Mutate(fn func(*Mutation)) bool {
	return b.room.Batch(func(tx *state.Tx) {
		fn(&Mutation{tx: tx, board: b})
	})
}

// Subscribe calls fn after every document or presence change.
func (b *Board) Subscribe(fn func(state.Change)) (cancel func()) {
	return b.room.Subscribe(fn)
}

func (b *Board) Undo() bool                 { return b.room.Undo() }
func (b *Board) Redo() bool                 { return b.room.Redo() }
func (b *Board) CanUndo() bool              { return b.room.CanUndo() }
func (b *Board) CanRedo() bool              { return b.room.CanRedo() }
func (b *Board) PauseHistory() *state.Pause { return b.room.PauseHistory() }

// Copy puts deep copies of the selected layers on the local clipboard, in
// layer order. It reports how many were copied; an empty selection leaves
// the clipboard as it was.
func (b *Board) Copy() int {
	var copied []layer.Layer
	b.Read(func(v View) {
		sel := make(map[string]bool, len(v.Self().Selection))
		for _, id := range v.Self().Selection {
			sel[id] = true
		}
		for _, e := range v.Layers() {
			if sel[e.ID] {
				copied = append(copied, layer.Clone(e.Layer))
			}
		}
	})
	if len(copied) == 0 {
		return 0
	}
	b.clipMu.Lock()
	b.clipboard = copied
	b.clipMu.Unlock()
	b.log.Debug("copied layers", "count", len(copied))
	return len(copied)
}

// Clipboard returns copies of the clipboard contents.
func (b *Board) Clipboard() []layer.Layer {
	b.clipMu.Lock()
	defer b.clipMu.Unlock()
	out := make([]layer.Layer, len(b.clipboard))
	for i, l := range b.clipboard {
		out[i] = layer.Clone(l)
	}
	return out
}

// Watch calls onChange whenever the value selector derives from the board
// changes. The selector runs after every document or presence change;
// onChange is not called for the initial value, which Watch returns.
func Watch[T comparable](b *Board, selector func(View) T, onChange func(T)) (initial T, cancel func()) {
	var mu sync.Mutex
	last := selector(b.View())
	cancel = b.Subscribe(func(state.Change) {
		next := selector(b.View())
		mu.Lock()
		if next == last {
			mu.Unlock()
			return
		}
		last = next
		mu.Unlock()
		onChange(next)
	})
	return last, cancel
}
