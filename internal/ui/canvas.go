package ui

import (
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// Mice report no pressure.
const mousePressure = 0.5

// BoardWidget draws the board and feeds pointer and keyboard input to the
// controller.
type BoardWidget struct {
	widget.BaseWidget

	ctrl *editor.Controller
	log  *slog.Logger

	mu     sync.Mutex
	offset geom.Point

	// OnEditText is called when a text layer is double clicked.
	OnEditText func(id string, text string)
	// OnToolChanged is called when the controller switches tools by
	// itself, for instance back to select after placing a shape.
	OnToolChanged func(editor.Tool)
	lastTool      editor.Tool

	unsubscribe func()
}

var (
	_ fyne.Widget         = (*BoardWidget)(nil)
	_ desktop.Mouseable   = (*BoardWidget)(nil)
	_ desktop.Hoverable   = (*BoardWidget)(nil)
	_ fyne.Focusable      = (*BoardWidget)(nil)
	_ fyne.Shortcutable   = (*BoardWidget)(nil)
	_ fyne.Scrollable     = (*BoardWidget)(nil)
	_ fyne.DoubleTappable = (*BoardWidget)(nil)
)

// NewBoardWidget redraws whenever the board changes, locally or remotely.
func NewBoardWidget(ctrl *editor.Controller, log *slog.Logger) *BoardWidget {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := &BoardWidget{ctrl: ctrl, log: log.With("component", "ui")}
	b.ExtendBaseWidget(b)
	b.unsubscribe = ctrl.Editor().Board().Subscribe(func(state.Change) {
		fyne.Do(b.Refresh)
	})
	return b
}

// Close stops redrawing on board changes.
func (b *BoardWidget) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func (b *BoardWidget) Controller() *editor.Controller { return b.ctrl }

// SetTool switches tools and redraws, since the mode may have changed.
func (b *BoardWidget) SetTool(t editor.Tool) {
	b.ctrl.SetTool(t)
	b.lastTool = t
	b.Refresh()
}

// changed redraws and reports a tool switch made by the controller.
func (b *BoardWidget) changed() {
	b.Refresh()
	if t := b.ctrl.Tool(); t != b.lastTool {
		b.lastTool = t
		if b.OnToolChanged != nil {
			b.OnToolChanged(t)
		}
	}
}

// Center returns the canvas point at the middle of the widget.
func (b *BoardWidget) Center() geom.Point {
	s := b.Size()
	return b.toCanvas(fyne.NewPos(s.Width/2, s.Height/2))
}

func (b *BoardWidget) toCanvas(p fyne.Position) geom.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return geom.Point{X: float64(p.X) - b.offset.X, Y: float64(p.Y) - b.offset.Y}
}

func (b *BoardWidget) pointer(ev *desktop.MouseEvent) editor.Pointer {
	return editor.Pointer{
		Pos:      b.toCanvas(ev.Position),
		Pressure: mousePressure,
		Primary:  ev.Button == desktop.MouseButtonPrimary,
	}
}

func (b *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.ctrl.PointerDown(b.pointer(ev))
	b.Refresh()
}

func (b *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.ctrl.PointerUp(b.pointer(ev))
	b.changed()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(ev *desktop.MouseEvent) {
	b.ctrl.PointerMove(b.pointer(ev))
	b.Refresh()
}

func (b *BoardWidget) MouseOut() {
	b.ctrl.PointerLeave()
	b.Refresh()
}

// Scrolled pans the view.
func (b *BoardWidget) Scrolled(ev *fyne.ScrollEvent) {
	b.mu.Lock()
	b.offset.X += float64(ev.Scrolled.DX)
	b.offset.Y += float64(ev.Scrolled.DY)
	b.mu.Unlock()
	b.Refresh()
}

// DoubleTapped edits the text layer under the pointer.
func (b *BoardWidget) DoubleTapped(ev *fyne.PointEvent) {
	if b.OnEditText == nil {
		return
	}
	v := b.ctrl.Editor().Board().View()
	id, ok := v.HitTest(b.toCanvas(ev.Position))
	if !ok {
		return
	}
	l, _ := v.Layer(id)
	if t, ok := l.(*layer.Text); ok {
		b.OnEditText(id, t.Text)
	}
}

func (b *BoardWidget) FocusGained()   {}
func (b *BoardWidget) FocusLost()     {}
func (b *BoardWidget) TypedRune(rune) {}

func (b *BoardWidget) TypedKey(ev *fyne.KeyEvent) {
	if !b.ctrl.KeyDown(editor.Key{Name: string(ev.Name)}) {
		b.log.Debug("key ignored", "key", ev.Name)
		return
	}
	b.changed()
}

// TypedShortcut handles the ctrl (cmd on macOS) shortcuts.
func (b *BoardWidget) TypedShortcut(s fyne.Shortcut) {
	var k editor.Key
	switch s := s.(type) {
	case *fyne.ShortcutCopy:
		k = editor.Key{Name: string(fyne.KeyC), Ctrl: true}
	case *fyne.ShortcutPaste:
		k = editor.Key{Name: string(fyne.KeyV), Ctrl: true}
	case *desktop.CustomShortcut:
		if s.Modifier&(fyne.KeyModifierControl|fyne.KeyModifierSuper) == 0 {
			return
		}
		k = editor.Key{Name: string(s.KeyName), Ctrl: true, Shift: s.Modifier&fyne.KeyModifierShift != 0}
	default:
		return
	}
	if b.ctrl.KeyDown(k) {
		b.changed()
	}
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardRenderer{board: b}
}

type boardRenderer struct {
	board   *BoardWidget
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Layout(fyne.Size) { r.Refresh() }

func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardRenderer) Refresh() {
	b := r.board
	b.mu.Lock()
	offset := b.offset
	b.mu.Unlock()

	ed := b.ctrl.Editor()
	r.objects = scene{
		view:       ed.Board().View(),
		mode:       ed.Mode(),
		penColor:   ed.PenColor(),
		offset:     offset,
		size:       b.Size(),
		handleSize: geom.DefaultHandleSize,
	}.objects()
	canvas.Refresh(b)
}

func (r *boardRenderer) Destroy() {}
