package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Mode
		want     bool
	}{
		{None{}, Pressing{}, true},
		{None{}, Inserting{Kind: layer.KindRectangle}, true},
		{None{}, Pencil{}, true},
		{None{}, Translating{}, false},
		{None{}, Resizing{}, false},
		{None{}, SelectionNet{}, false},
		{Pressing{}, Translating{}, true},
		{Pressing{}, Resizing{}, true},
		{Pressing{}, SelectionNet{}, true},
		{Pressing{}, Inserting{}, true},
		{Pressing{}, Pencil{}, false},
		{Inserting{}, Pressing{}, false},
		{Pencil{}, Pencil{}, true},
		{Pencil{}, Pressing{}, false},
		{Resizing{}, Translating{}, false},
		{Translating{}, SelectionNet{}, false},
		{SelectionNet{}, Pressing{}, false},
		{Resizing{}, None{}, true},
		{Translating{}, None{}, true},
		{SelectionNet{}, None{}, true},
		{Inserting{}, None{}, true},
		{Pencil{}, None{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+" to "+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func at(x, y float64) Pointer {
	return Pointer{Pos: geom.Point{X: x, Y: y}, Pressure: 0.5, Primary: true}
}

func TestClickOnEmptyCanvasClearsSelection(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	id := addRect(t, e, geom.XYWH{Width: 10, Height: 10})
	require.True(t, e.SelectLayer(id))

	c.PointerDown(at(50, 50))
	assert.Equal(t, Pressing{Origin: geom.Point{X: 50, Y: 50}}, e.Mode())
	c.PointerMove(at(52, 51))
	c.PointerUp(at(52, 51))

	assert.Equal(t, None{}, e.Mode())
	assert.Empty(t, self(e).Selection)
}

func TestMarqueeDrag(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	a := addRect(t, e, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10})
	addRect(t, e, geom.XYWH{X: 100, Y: 100, Width: 10, Height: 10})

	c.PointerDown(at(0, 0))
	c.PointerMove(at(30, 30))
	assert.IsType(t, SelectionNet{}, e.Mode())
	assert.Equal(t, []string{a}, self(e).Selection)
	c.PointerUp(at(30, 30))

	assert.Equal(t, None{}, e.Mode())
	assert.Equal(t, []string{a}, self(e).Selection)
	assert.Equal(t, &geom.Point{X: 30, Y: 30}, self(e).Cursor)
}

func TestDragLayerTranslatesAndUndoesAsOne(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	id := addRect(t, e, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10})

	c.PointerDown(at(15, 15))
	assert.IsType(t, Translating{}, e.Mode())
	assert.Equal(t, []string{id}, self(e).Selection)
	c.PointerMove(at(18, 18))
	c.PointerMove(at(20, 20))
	c.PointerUp(at(20, 20))

	assert.Equal(t, geom.XYWH{X: 15, Y: 15, Width: 10, Height: 10}, bounds(t, e, id))
	require.True(t, c.KeyDown(Key{Name: "Z", Ctrl: true}))
	assert.Equal(t, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10}, bounds(t, e, id))
	assert.Empty(t, self(e).Selection, "the selection made by the press is part of the step")

	require.True(t, c.KeyDown(Key{Name: "Z", Ctrl: true, Shift: true}))
	assert.Equal(t, geom.XYWH{X: 15, Y: 15, Width: 10, Height: 10}, bounds(t, e, id))
}

func TestDragHandleResizes(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	id := addRect(t, e, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10})
	require.True(t, e.SelectLayer(id))

	c.PointerDown(at(20, 20))
	require.Equal(t, Resizing{Initial: geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10}, Corner: geom.BottomRight}, e.Mode())
	c.PointerMove(at(40, 30))
	c.PointerUp(at(40, 30))

	assert.Equal(t, geom.XYWH{X: 10, Y: 10, Width: 30, Height: 20}, bounds(t, e, id))
	assert.Equal(t, None{}, e.Mode())
}

func TestPencilTool(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	c.SetTool(ToolPencil)
	assert.Equal(t, Pencil{}, e.Mode())

	c.PointerMove(at(1, 1))
	assert.Nil(t, self(e).PencilDraft, "moving without a stroke draws nothing")

	c.PointerDown(at(0, 0))
	c.PointerMove(at(5, 0))
	c.PointerMove(at(5, 5))
	c.PointerUp(at(5, 5))
	assert.Equal(t, 1, e.Board().View().Count())
	assert.Equal(t, None{}, e.Mode())

	// The tool stays active for the next stroke.
	c.PointerDown(at(10, 10))
	c.PointerMove(at(20, 20))
	c.PointerUp(at(20, 20))
	assert.Equal(t, 2, e.Board().View().Count())
}

func TestPointerLeaveAbandonsStroke(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	c.SetTool(ToolPencil)
	c.PointerDown(at(0, 0))
	c.PointerMove(at(5, 5))
	c.PointerLeave()

	s := self(e)
	assert.Nil(t, s.PencilDraft)
	assert.Nil(t, s.Cursor)
	assert.Zero(t, e.Board().View().Count())
	assert.Equal(t, Pencil{}, e.Mode())
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	id := addRect(t, e, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10})
	c.PointerDown(at(15, 15))
	c.PointerMove(at(25, 25))
	c.PointerLeave()

	assert.Equal(t, None{}, e.Mode())
	assert.True(t, e.Undo(), "history resumed")
	assert.Equal(t, geom.XYWH{X: 10, Y: 10, Width: 10, Height: 10}, bounds(t, e, id))
}

func TestShapeTool(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	c.SetTool(ToolTriangle)
	assert.Equal(t, Inserting{Kind: layer.KindTriangle}, e.Mode())

	c.PointerDown(at(5, 5))
	c.PointerUp(at(5, 5))

	v := e.Board().View()
	require.Equal(t, 1, v.Count())
	l := v.Layers()[0].Layer
	assert.Equal(t, layer.KindTriangle, l.Kind())
	assert.Equal(t, geom.XYWH{X: 5, Y: 5, Width: 100, Height: 100}, layer.Bounds(l))
	assert.Equal(t, ToolSelect, c.Tool())
	assert.Equal(t, None{}, e.Mode())
}

func TestKeyboard(t *testing.T) {
	e := newEditor(t, Config{})
	c := NewController(e)
	id := addRect(t, e, geom.XYWH{Width: 10, Height: 10})

	assert.False(t, c.KeyDown(Key{Name: "Delete"}), "nothing selected")
	require.True(t, e.SelectLayer(id))
	require.True(t, c.KeyDown(Key{Name: "C", Ctrl: true}))
	require.True(t, c.KeyDown(Key{Name: "V", Ctrl: true}))
	assert.Equal(t, 2, e.Board().View().Count())

	require.True(t, c.KeyDown(Key{Name: "BackSpace"}))
	assert.Equal(t, []string{id}, e.Board().View().Order())

	c.SetTool(ToolEllipse)
	require.True(t, c.KeyDown(Key{Name: "Escape"}))
	assert.Equal(t, ToolSelect, c.Tool())
	assert.Equal(t, None{}, e.Mode())

	assert.False(t, c.KeyDown(Key{Name: "Q"}))
	assert.Equal(t, "ellipse", ToolEllipse.String())
}
