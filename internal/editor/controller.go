package editor

import (
	"strings"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

// Tool is the toolbar choice that decides what a press on empty canvas
// does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRectangle
	ToolEllipse
	ToolTriangle
	ToolText
	ToolPencil
)

var toolKinds = map[Tool]layer.Kind{
	ToolRectangle: layer.KindRectangle,
	ToolEllipse:   layer.KindEllipse,
	ToolTriangle:  layer.KindTriangle,
	ToolText:      layer.KindText,
}

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPencil:
		return "pencil"
	}
	if k, ok := toolKinds[t]; ok {
		return string(k)
	}
	return "unknown"
}

// Pointer is one pointer event in canvas coordinates.
type Pointer struct {
	Pos      geom.Point
	Pressure float64
	// Primary reports whether the primary button is held.
	Primary bool
}

// Key is a key press. Name follows fyne's key names ("Delete", "Z", ...).
type Key struct {
	Name  string
	Ctrl  bool
	Shift bool
}

// Controller routes canvas input to the editor according to the current
// mode and tool.
type Controller struct {
	ed         *Editor
	tool       Tool
	handleSize float64
}

// NewController returns a controller with the select tool active.
func NewController(ed *Editor) *Controller {
	return &Controller{ed: ed, handleSize: geom.DefaultHandleSize}
}

func (c *Controller) Editor() *Editor { return c.ed }

func (c *Controller) Tool() Tool { return c.tool }

// SetTool switches tools. Any gesture in progress is cancelled and the
// canvas passes through None before entering the tool's mode.
func (c *Controller) SetTool(t Tool) {
	c.ed.CancelGesture()
	c.tool = t
	switch {
	case t == ToolPencil:
		c.ed.Transition(Pencil{})
	case toolKinds[t] != "":
		c.ed.Transition(Inserting{Kind: toolKinds[t]})
	}
}

// PointerDown starts a gesture.
func (c *Controller) PointerDown(ev Pointer) {
	switch c.ed.Mode().(type) {
	case Inserting:
		return
	case Pencil:
		c.ed.StartDrawing(ev.Pos, ev.Pressure)
		return
	}
	if c.tool == ToolPencil {
		c.ed.StartDrawing(ev.Pos, ev.Pressure)
		return
	}
	if !c.ed.Transition(Pressing{Origin: ev.Pos}) {
		return
	}

	v := c.ed.Board().View()
	if sel := v.Selected(); len(sel) == 1 {
		l, _ := v.Layer(sel[0])
		bounds := layer.Bounds(l)
		if side, ok := geom.HandleAt(bounds, ev.Pos, c.handleSize); ok {
			c.ed.BeginResize(side, bounds)
			return
		}
	}
	if id, ok := v.HitTest(ev.Pos); ok {
		c.ed.BeginTranslate(id, ev.Pos)
	}
}

// PointerMove continues the gesture in progress and publishes the cursor.
func (c *Controller) PointerMove(ev Pointer) {
	p := ev.Pos
	c.ed.SetCursor(&p)

	switch m := c.ed.Mode().(type) {
	case Pressing:
		if c.ed.StartMultiSelection(ev.Pos, m.Origin) {
			c.ed.UpdateSelectionNet(ev.Pos, m.Origin)
		}
	case SelectionNet:
		c.ed.UpdateSelectionNet(ev.Pos, m.Origin)
	case Translating:
		c.ed.TranslateSelectedLayers(ev.Pos)
	case Resizing:
		c.ed.ResizeSelectedLayer(ev.Pos)
	case Pencil:
		c.ed.ContinueDrawing(ev.Pos, ev.Pressure, ev.Primary)
	}
}

// PointerUp finishes the gesture in progress.
func (c *Controller) PointerUp(ev Pointer) {
	switch m := c.ed.Mode().(type) {
	case None, Pressing:
		c.ed.UnselectLayers()
		c.ed.Transition(None{})
	case Pencil:
		c.ed.InsertPath()
	case Inserting:
		c.ed.InsertLayer(m.Kind, ev.Pos)
		c.tool = ToolSelect
	default:
		c.ed.EndGesture()
	}
}

// PointerLeave abandons the gesture in progress and hides the cursor.
func (c *Controller) PointerLeave() {
	if _, ok := c.ed.Mode().(Inserting); !ok {
		c.ed.CancelGesture()
	}
	if c.tool == ToolPencil {
		c.ed.Transition(Pencil{})
	}
	c.ed.SetCursor(nil)
}

// KeyDown handles editing shortcuts. It reports whether the key was used.
func (c *Controller) KeyDown(k Key) bool {
	name := strings.ToLower(k.Name)
	switch {
	case !k.Ctrl && (name == "delete" || name == "backspace"):
		return c.ed.DeleteLayers()
	case !k.Ctrl && name == "escape":
		c.SetTool(ToolSelect)
		c.ed.UnselectLayers()
		return true
	case k.Ctrl && name == "z" && !k.Shift:
		return c.ed.Undo()
	case k.Ctrl && (name == "y" || (name == "z" && k.Shift)):
		return c.ed.Redo()
	case k.Ctrl && name == "c":
		return c.ed.Copy() > 0
	case k.Ctrl && name == "v":
		return len(c.ed.Paste()) > 0
	}
	return false
}
