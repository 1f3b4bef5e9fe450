// Package editor turns canvas gestures into board mutations. Every
// operation runs as one atomic mutation of the room document plus this
// participant's presence; gestures that fail their preconditions are
// dropped without error, since stale pointer events are expected on a
// shared canvas.
package editor

import (
	"log/slog"
	"sync"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/presence"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxLayers    = 100
	DefaultNetThreshold = 5
	DefaultLayerSize    = 100
	DefaultText         = "Text"
	PasteOffset         = 10
)

// Config holds the editor limits.
type Config struct {
	// MaxLayers caps the layers in a room.
	MaxLayers int
	// NetThreshold is the Manhattan distance a press must travel before it
	// becomes a marquee.
	NetThreshold float64
	// MinSize is the smallest width and height a resize produces.
	MinSize  float64
	PenColor geom.RGB
	Logger   *slog.Logger
}

// Editor applies gestures to a board. It is driven from one goroutine; the
// mutex only makes Mode safe to read from a renderer.
type Editor struct {
	board *board.Board
	cfg   Config
	log   *slog.Logger

	mu       sync.Mutex
	mode     Mode
	pause    *state.Pause
	penColor geom.RGB
}

// New returns an editor in mode None.
func New(b *board.Board, cfg Config) *Editor {
	if cfg.MaxLayers <= 0 {
		cfg.MaxLayers = DefaultMaxLayers
	}
	if cfg.NetThreshold <= 0 {
		cfg.NetThreshold = DefaultNetThreshold
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Editor{
		board:    b,
		cfg:      cfg,
		log:      log.With("component", "editor"),
		mode:     None{},
		penColor: cfg.PenColor,
	}
}

func (e *Editor) Board() *board.Board { return e.board }

// Mode returns the current canvas mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Transition moves to mode to when the state machine allows it.
func (e *Editor) Transition(to Mode) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setModeLocked(to)
}

func (e *Editor) setModeLocked(to Mode) bool {
	if !CanTransition(e.mode, to) {
		e.log.Debug("mode transition refused", "from", e.mode, "to", to)
		return false
	}
	e.mode = to
	return true
}

func (e *Editor) PenColor() geom.RGB {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.penColor
}

// pauseHistory starts a gesture's undo step unless one is already open.
func (e *Editor) pauseHistory() {
	e.mu.Lock()
	open := e.pause != nil
	e.mu.Unlock()
	if open {
		return
	}
	p := e.board.PauseHistory()
	e.mu.Lock()
	e.pause = p
	e.mu.Unlock()
}

func (e *Editor) resumeHistory() {
	e.mu.Lock()
	p := e.pause
	e.pause = nil
	e.mu.Unlock()
	p.Resume()
}

// EndGesture finishes a drag: the history pause is released, so the whole
// drag becomes one undo step, and the canvas returns to None.
func (e *Editor) EndGesture() {
	e.resumeHistory()
	e.Transition(None{})
}

// CancelGesture abandons whatever gesture is in progress without
// committing a draft. Transient presence is cleared so no participant sees
// a stuck stroke.
func (e *Editor) CancelGesture() {
	e.resumeHistory()
	e.Transition(None{})
	if !e.board.View().Self().Drawing() {
		return
	}
	e.board.Mutate(func(m *board.Mutation) {
		m.SetPresence(false, presence.SetPencilDraft(nil))
	})
}

// StartDrawing begins a freehand stroke at p. The selection is cleared and
// the draft restarts from this single sample, so calling it again simply
// resets the stroke.
func (e *Editor) StartDrawing(p geom.Point, pressure float64) bool {
	if !e.Transition(Pencil{}) {
		return false
	}
	pen := e.PenColor()
	e.board.Mutate(func(m *board.Mutation) {
		m.SetPresence(false,
			presence.SetSelection(nil),
			presence.SetPencilDraft([]layer.PenPoint{{X: p.X, Y: p.Y, Pressure: pressure}}),
			presence.SetPenColor(&pen),
		)
	})
	return true
}

// ContinueDrawing appends a sample to the stroke. It is ignored unless the
// canvas is in Pencil mode, the primary button is held and a stroke has
// been started.
func (e *Editor) ContinueDrawing(p geom.Point, pressure float64, primaryHeld bool) bool {
	if _, ok := e.Mode().(Pencil); !ok || !primaryHeld {
		return false
	}
	applied := false
	e.board.Mutate(func(m *board.Mutation) {
		draft := m.View().Self().PencilDraft
		if draft == nil {
			return
		}
		draft = append(draft, layer.PenPoint{X: p.X, Y: p.Y, Pressure: pressure})
		m.SetPresence(false, presence.SetPencilDraft(draft))
		applied = true
	})
	return applied
}

// InsertPath commits the stroke as a path layer on top of the order. A
// stroke with fewer than two samples, or one drawn while the room is full,
// is discarded. Either way the draft is cleared and the canvas returns to
// None. It returns the new layer's id, or "" when nothing was inserted.
func (e *Editor) InsertPath() string {
	e.Transition(None{})
	id := ""
	e.board.Mutate(func(m *board.Mutation) {
		v := m.View()
		self := v.Self()
		draft := self.PencilDraft
		switch {
		case len(draft) < layer.MinPathPoints:
			e.log.Debug("discarding short stroke", "samples", len(draft))
		case v.Count() >= e.cfg.MaxLayers:
			e.log.Debug("layer limit reached, discarding stroke", "limit", e.cfg.MaxLayers)
		default:
			color := e.PenColor()
			if self.PenColor != nil {
				color = *self.PenColor
			}
			newID := layer.NewID()
			if m.InsertLayer(newID, layer.PenPointsToPath(draft, color)) {
				id = newID
			}
		}
		if draft != nil {
			m.SetPresence(false, presence.SetPencilDraft(nil))
		}
	})
	return id
}

// BeginResize starts dragging a resize handle. History is paused until
// EndGesture or CancelGesture so the drag undoes as one step.
func (e *Editor) BeginResize(corner geom.Side, initial geom.XYWH) bool {
	if !e.Transition(Resizing{Initial: initial, Corner: corner}) {
		return false
	}
	e.pauseHistory()
	return true
}

// ResizeSelectedLayer resizes the single selected layer so that the handle
// follows p while the opposite edge stays put. Resizing a text layer fixes
// its size. It does nothing unless exactly one existing layer is selected.
func (e *Editor) ResizeSelectedLayer(p geom.Point) bool {
	r, ok := e.Mode().(Resizing)
	if !ok {
		return false
	}
	applied := false
	e.board.Mutate(func(m *board.Mutation) {
		v := m.View()
		sel := v.Self().Selection
		if len(sel) != 1 {
			return
		}
		l, ok := v.Layer(sel[0])
		if !ok {
			return
		}
		patch := layer.BoundsPatch(geom.ResizeBoundsMin(r.Initial, r.Corner, p, e.cfg.MinSize))
		if l.Kind() == layer.KindText {
			patch.IsFixedSize = layer.Ptr(true)
		}
		applied = m.PatchLayer(sel[0], patch)
	})
	return applied
}

// BeginTranslate starts dragging the selection from p. Pressing a layer
// that is not selected selects it first; that selection change joins the
// drag's undo step.
func (e *Editor) BeginTranslate(id string, p geom.Point) bool {
	if !e.Transition(Translating{Current: p}) {
		return false
	}
	e.pauseHistory()
	e.board.Mutate(func(m *board.Mutation) {
		for _, s := range m.View().Self().Selection {
			if s == id {
				return
			}
		}
		m.SetPresence(true, presence.SetSelection([]string{id}))
	})
	return true
}

// TranslateSelectedLayers moves every selected layer by the pointer's
// travel since the last call. Selected ids without a layer are skipped.
func (e *Editor) TranslateSelectedLayers(p geom.Point) bool {
	e.mu.Lock()
	t, ok := e.mode.(Translating)
	if ok {
		e.mode = Translating{Current: p}
	}
	e.mu.Unlock()
	if !ok {
		return false
	}
	d := p.Sub(t.Current)
	if d == (geom.Point{}) {
		return false
	}
	return e.board.Mutate(func(m *board.Mutation) {
		v := m.View()
		for _, id := range v.Selected() {
			l, _ := v.Layer(id)
			c := l.Common()
			m.PatchLayer(id, layer.Patch{X: layer.Ptr(c.X + d.X), Y: layer.Ptr(c.Y + d.Y)})
		}
	})
}

// StartMultiSelection turns a press into a marquee once the pointer has
// moved more than the threshold from origin. Below it nothing changes and
// the press still counts as a click.
func (e *Editor) StartMultiSelection(current, origin geom.Point) bool {
	if current.Manhattan(origin) <= e.cfg.NetThreshold {
		return false
	}
	return e.Transition(SelectionNet{Origin: origin, Current: current})
}

// UpdateSelectionNet stretches the marquee to current and selects every
// layer it overlaps, in layer order.
func (e *Editor) UpdateSelectionNet(current, origin geom.Point) bool {
	e.mu.Lock()
	_, ok := e.mode.(SelectionNet)
	if ok {
		e.mode = SelectionNet{Origin: origin, Current: current}
	}
	e.mu.Unlock()
	if !ok {
		return false
	}
	e.board.Mutate(func(m *board.Mutation) {
		v := m.View()
		ids := layer.FindIntersectingWithRectangle(v.Order(), v.Table(), origin, current)
		m.SetPresence(false, presence.SetSelection(ids))
	})
	return true
}

// UnselectLayers clears the selection as one undo step. An empty selection
// is left alone so no empty step is recorded.
func (e *Editor) UnselectLayers() bool {
	return e.board.Mutate(func(m *board.Mutation) {
		if len(m.View().Self().Selection) == 0 {
			return
		}
		m.SetPresence(true, presence.SetSelection(nil))
	})
}

// SelectLayer makes id the only selected layer, as one undo step.
func (e *Editor) SelectLayer(id string) bool {
	return e.board.Mutate(func(m *board.Mutation) {
		m.SetPresence(true, presence.SetSelection([]string{id}))
	})
}

// DeleteLayers removes every selected layer and clears the selection, as
// one undo step. Layers another participant already deleted are skipped.
// With nothing selected it does nothing at all.
func (e *Editor) DeleteLayers() bool {
	return e.board.Mutate(func(m *board.Mutation) {
		sel := m.View().Self().Selection
		if len(sel) == 0 {
			return
		}
		for _, id := range sel {
			if !m.DeleteLayer(id) {
				e.log.Debug("selected layer already gone", "layer", id)
			}
		}
		m.SetPresence(true, presence.SetSelection(nil))
	})
}

// UpdateLayer applies the fields set in p to the selected layers. Fields
// left nil are untouched. Without a selected layer it does nothing.
func (e *Editor) UpdateLayer(p layer.Patch) bool {
	if p.Empty() {
		return false
	}
	return e.board.Mutate(func(m *board.Mutation) {
		for _, id := range m.View().Selected() {
			m.PatchLayer(id, p)
		}
	})
}

// InsertLayer places a new layer of kind with its top-left corner at p and
// selects it. Shapes and images get the default size; text is sized to its
// content. It returns the new id, or "" when the room is full or the kind
// is unknown. The canvas leaves Inserting mode either way.
func (e *Editor) InsertLayer(kind layer.Kind, p geom.Point) string {
	return e.insert(kind, p, layer.Options{Text: DefaultText})
}

// InsertImage places an image layer showing src at p.
func (e *Editor) InsertImage(src string, p geom.Point) string {
	return e.insert(layer.KindImage, p, layer.Options{Src: src})
}

func (e *Editor) insert(kind layer.Kind, p geom.Point, opts layer.Options) string {
	if _, ok := e.Mode().(Inserting); ok {
		e.Transition(None{})
	}
	l, ok := layer.New(kind, p.X, p.Y, DefaultLayerSize, DefaultLayerSize, opts)
	if !ok {
		e.log.Debug("unknown layer kind", "kind", kind)
		return ""
	}
	if t, isText := l.(*layer.Text); isText {
		if err := layer.FitText(t, e.board.Metrics()); err != nil {
			e.log.Warn("measure text", "err", err)
		}
	}
	id := ""
	e.board.Mutate(func(m *board.Mutation) {
		if m.View().Count() >= e.cfg.MaxLayers {
			e.log.Debug("layer limit reached", "limit", e.cfg.MaxLayers)
			return
		}
		newID := layer.NewID()
		if m.InsertLayer(newID, l) {
			m.SetPresence(true, presence.SetSelection([]string{newID}))
			id = newID
		}
	})
	return id
}

// SetText replaces a text layer's content. Unless the layer is fixed size
// its box follows the new text.
func (e *Editor) SetText(id, text string) bool {
	return e.board.Mutate(func(m *board.Mutation) {
		l, ok := m.View().Layer(id)
		if !ok || l.Kind() != layer.KindText {
			return
		}
		m.PatchLayer(id, layer.Patch{Text: &text})
	})
}

// Copy puts the selected layers on the clipboard.
func (e *Editor) Copy() int {
	return e.board.Copy()
}

// Paste inserts the clipboard contents with fresh ids, shifted by
// PasteOffset, and selects them. Layers that do not fit under the layer
// limit are dropped. It returns the new ids.
func (e *Editor) Paste() []string {
	clip := e.board.Clipboard()
	if len(clip) == 0 {
		return nil
	}
	var ids []string
	e.board.Mutate(func(m *board.Mutation) {
		count := m.View().Count()
		for _, l := range clip {
			if count >= e.cfg.MaxLayers {
				e.log.Debug("layer limit reached while pasting", "limit", e.cfg.MaxLayers)
				break
			}
			c := l.Common()
			c.X += PasteOffset
			c.Y += PasteOffset
			id := layer.NewID()
			if m.InsertLayer(id, l) {
				ids = append(ids, id)
				count++
			}
		}
		if len(ids) > 0 {
			m.SetPresence(true, presence.SetSelection(ids))
		}
	})
	return ids
}

// SetRoomColor changes the canvas background for everyone.
func (e *Editor) SetRoomColor(c geom.RGB) bool {
	return e.board.Mutate(func(m *board.Mutation) { m.SetRoomColor(c) })
}

// SetPenColor sets the color of new strokes.
func (e *Editor) SetPenColor(c geom.RGB) {
	e.mu.Lock()
	e.penColor = c
	e.mu.Unlock()
	e.board.Mutate(func(m *board.Mutation) {
		m.SetPresence(false, presence.SetPenColor(&c))
	})
}

// SetCursor publishes the pointer position; nil hides it.
func (e *Editor) SetCursor(p *geom.Point) {
	e.board.Mutate(func(m *board.Mutation) {
		m.SetPresence(false, presence.SetCursor(p))
	})
}

// Undo reverts the last local step. It is refused during a drag.
func (e *Editor) Undo() bool { return e.board.Undo() }

// Redo reapplies the last undone step.
func (e *Editor) Redo() bool { return e.board.Redo() }
