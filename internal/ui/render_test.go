package ui

import (
	"encoding/json"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

func newEditor(t *testing.T) *editor.Editor {
	t.Helper()
	test.NewTempApp(t)
	b := board.New(state.NewRoom("room", state.WithSite("me")), board.Options{})
	b.Init()
	b.JoinPresence(nil)
	return editor.New(b, editor.Config{})
}

func render(e *editor.Editor, offset geom.Point) []fyne.CanvasObject {
	return scene{
		view:       e.Board().View(),
		mode:       e.Mode(),
		penColor:   e.PenColor(),
		offset:     offset,
		size:       fyne.NewSize(800, 600),
		handleSize: geom.DefaultHandleSize,
	}.objects()
}

func count[T any](objs []fyne.CanvasObject) int {
	n := 0
	for _, o := range objs {
		if _, ok := o.(T); ok {
			n++
		}
	}
	return n
}

func TestSceneBackgroundAndLayers(t *testing.T) {
	e := newEditor(t)
	e.InsertLayer(layer.KindRectangle, geom.Point{X: 10, Y: 20})
	e.InsertLayer(layer.KindEllipse, geom.Point{X: 200, Y: 20})
	e.UnselectLayers()

	objs := render(e, geom.Point{X: 5, Y: 5})
	require.Len(t, objs, 3)
	bg := objs[0].(*canvas.Rectangle)
	assert.Equal(t, board.DefaultRoomColor.NRGBA(100), bg.FillColor)

	rect := objs[1].(*canvas.Rectangle)
	assert.Equal(t, fyne.NewPos(15, 25), rect.Position())
	assert.Equal(t, fyne.NewSize(100, 100), rect.Size())
	assert.IsType(t, &canvas.Circle{}, objs[2])
}

func TestSceneSelectionHandles(t *testing.T) {
	e := newEditor(t)
	id := e.InsertLayer(layer.KindRectangle, geom.Point{X: 10, Y: 10})
	require.NotEmpty(t, id)

	objs := render(e, geom.Point{})
	// background, layer, selection box and eight handles
	assert.Len(t, objs, 3+len(geom.Handles))

	e.InsertLayer(layer.KindTriangle, geom.Point{X: 300, Y: 10})
	e.SelectLayer(id)
	objs = render(e, geom.Point{})
	assert.Equal(t, 1, count[*canvas.Raster](objs), "triangle")
}

func TestSceneSelectionNet(t *testing.T) {
	e := newEditor(t)
	require.True(t, e.Transition(editor.Pressing{}))
	require.True(t, e.StartMultiSelection(geom.Point{X: 50, Y: 40}, geom.Point{}))

	objs := render(e, geom.Point{})
	net := objs[len(objs)-1].(*canvas.Rectangle)
	assert.Equal(t, netFill, net.FillColor)
	assert.Equal(t, fyne.NewSize(50, 40), net.Size())
}

func TestSceneDraftsAndCursors(t *testing.T) {
	e := newEditor(t)
	require.True(t, e.StartDrawing(geom.Point{X: 0, Y: 0}, 0.5))
	require.True(t, e.ContinueDrawing(geom.Point{X: 10, Y: 0}, 0.5, true))
	require.True(t, e.ContinueDrawing(geom.Point{X: 10, Y: 10}, 0.5, true))

	other := map[string]json.RawMessage{
		"cursor":      json.RawMessage(`{"x":30,"y":40}`),
		"pencilDraft": json.RawMessage(`[[0,0,0.5],[5,5,0.5]]`),
		"selection":   json.RawMessage(`[]`),
	}
	require.NoError(t, e.Board().Room().Receive(state.Message{
		Type: state.MsgPresence, Room: "room", Site: "them", Presence: other,
		Stamp: state.Stamp{Lamport: 1, Site: "them"},
	}))

	objs := render(e, geom.Point{})
	assert.Equal(t, 3, count[*canvas.Line](objs), "two segments of ours, one of theirs")
	assert.Equal(t, 1, count[*canvas.Circle](objs), "their cursor")
	assert.Equal(t, 1, count[*canvas.Text](objs), "their name")
}

func TestTrianglePixels(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	px := trianglePixels(red)
	assert.Equal(t, color.Transparent, px(0, 0, 10, 10))
	assert.Equal(t, red, px(5, 9, 10, 10))
	assert.Equal(t, color.Transparent, px(0, 1, 10, 10))
	assert.Equal(t, color.Transparent, px(0, 0, 0, 0))
}

func TestPenWidth(t *testing.T) {
	assert.Equal(t, float32(8), penWidth(0))
	assert.Equal(t, float32(1), penWidth(0.01))
	assert.Equal(t, float32(16), penWidth(1))
}

func TestBoardWidgetToolChange(t *testing.T) {
	e := newEditor(t)
	w := NewBoardWidget(editor.NewController(e), nil)
	defer w.Close()
	w.Resize(fyne.NewSize(400, 300))

	var got []editor.Tool
	w.OnToolChanged = func(tool editor.Tool) { got = append(got, tool) }
	w.SetTool(editor.ToolRectangle)
	assert.Equal(t, editor.Inserting{Kind: layer.KindRectangle}, e.Mode())

	w.ctrl.PointerDown(editor.Pointer{Pos: geom.Point{X: 10, Y: 10}, Primary: true})
	w.ctrl.PointerUp(editor.Pointer{Pos: geom.Point{X: 10, Y: 10}, Primary: true})
	w.changed()

	assert.Equal(t, []editor.Tool{editor.ToolSelect}, got)
	assert.Equal(t, 1, e.Board().View().Count())
	assert.Equal(t, geom.Point{X: 200, Y: 150}, w.Center())
}
