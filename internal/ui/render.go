package ui

import (
	"image/color"
	"math"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

var (
	selectionColor = color.NRGBA{R: 59, G: 130, B: 246, A: 255}
	netFill        = color.NRGBA{R: 59, G: 130, B: 246, A: 40}
	handleFill     = color.White
	frameColor     = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
)

const cursorRadius = 5

// scene turns a view of the board into canvas objects, bottom to top:
// background, layers, other participants' selections and drafts, our own
// draft, selection box, selection net and remote cursors.
type scene struct {
	view       board.View
	mode       editor.Mode
	penColor   geom.RGB
	offset     geom.Point
	size       fyne.Size
	handleSize float64
}

func (s scene) objects() []fyne.CanvasObject {
	bg := canvas.NewRectangle(s.view.RoomColor().NRGBA(100))
	bg.Resize(s.size)
	objs := []fyne.CanvasObject{bg}

	for _, e := range s.view.Layers() {
		objs = append(objs, s.layer(e.Layer)...)
	}

	for _, p := range s.view.Others() {
		c := p.Color.NRGBA(100)
		for _, id := range p.Presence.Selection {
			if l, ok := s.view.Layer(id); ok {
				objs = append(objs, s.outline(layer.Bounds(l), c))
			}
		}
		pen := p.Color
		if p.Presence.PenColor != nil {
			pen = *p.Presence.PenColor
		}
		objs = append(objs, s.stroke(p.Presence.PencilDraft, geom.Point{}, pen.NRGBA(100))...)
	}

	self := s.view.Self()
	objs = append(objs, s.stroke(self.PencilDraft, geom.Point{}, s.penColor.NRGBA(100))...)

	if r, ok := s.view.SelectionBounds(); ok {
		objs = append(objs, s.outline(r, selectionColor))
		if len(s.view.Selected()) == 1 {
			objs = append(objs, s.handles(r)...)
		}
	}
	if net, ok := s.mode.(editor.SelectionNet); ok {
		r := geom.RectFromPoints(net.Origin, net.Current)
		box := canvas.NewRectangle(netFill)
		box.StrokeColor = selectionColor
		box.StrokeWidth = 1
		s.place(box, r)
		objs = append(objs, box)
	}

	for _, p := range s.view.Others() {
		if p.Presence.Cursor != nil {
			objs = append(objs, s.cursor(*p.Presence.Cursor, p.ID, p.Color.NRGBA(100))...)
		}
	}
	return objs
}

func (s scene) pos(p geom.Point) fyne.Position {
	return fyne.NewPos(float32(p.X+s.offset.X), float32(p.Y+s.offset.Y))
}

func (s scene) place(o fyne.CanvasObject, r geom.XYWH) {
	o.Move(s.pos(geom.Point{X: r.X, Y: r.Y}))
	o.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
}

func (s scene) layer(l layer.Layer) []fyne.CanvasObject {
	b := l.Common()
	r := b.Bounds()
	fill, stroke := paint(b)

	switch l := l.(type) {
	case *layer.Rectangle:
		rect := canvas.NewRectangle(fill)
		rect.StrokeColor, rect.StrokeWidth = stroke, strokeWidth(b)
		s.place(rect, r)
		return []fyne.CanvasObject{rect}
	case *layer.Ellipse:
		c := canvas.NewCircle(fill)
		c.StrokeColor, c.StrokeWidth = stroke, strokeWidth(b)
		s.place(c, r)
		return []fyne.CanvasObject{c}
	case *layer.Triangle:
		t := canvas.NewRasterWithPixels(trianglePixels(fill))
		s.place(t, r)
		return []fyne.CanvasObject{t}
	case *layer.Text:
		return s.text(l, fill)
	case *layer.Image:
		frame := canvas.NewRectangle(color.Transparent)
		frame.StrokeColor, frame.StrokeWidth = frameColor, 1
		s.place(frame, r)
		label := canvas.NewText("image", frameColor)
		label.TextSize = 11
		label.Move(s.pos(geom.Point{X: r.X + 4, Y: r.Y + 2}))
		return []fyne.CanvasObject{frame, label}
	case *layer.Path:
		c := fill
		if b.Fill == nil {
			c = stroke
		}
		return s.stroke(pathPoints(l), geom.Point{X: r.X, Y: r.Y}, c)
	}
	return nil
}

// paint returns the fill and stroke colors of b, transparent when unset.
func paint(b *layer.Base) (fill, stroke color.Color) {
	fill, stroke = color.Transparent, color.Transparent
	if b.Fill != nil {
		fill = b.Fill.NRGBA(b.Opacity)
	}
	if b.Stroke != nil {
		stroke = b.Stroke.NRGBA(b.Opacity)
	}
	return fill, stroke
}

func strokeWidth(b *layer.Base) float32 {
	if b.Stroke == nil {
		return 0
	}
	return 1
}

// trianglePixels fills the isosceles triangle with its apex at the top
// center of the raster.
func trianglePixels(c color.Color) func(x, y, w, h int) color.Color {
	return func(x, y, w, h int) color.Color {
		if w == 0 || h == 0 {
			return color.Transparent
		}
		half := float64(w) / 2 * float64(y) / float64(h)
		if math.Abs(float64(x)+0.5-float64(w)/2) <= half {
			return c
		}
		return color.Transparent
	}
}

func (s scene) text(t *layer.Text, c color.Color) []fyne.CanvasObject {
	lh := t.FontSize * t.LineHeight
	var objs []fyne.CanvasObject
	for i, line := range strings.Split(t.Text, "\n") {
		txt := canvas.NewText(line, c)
		txt.TextSize = float32(t.FontSize)
		txt.TextStyle = fyne.TextStyle{Bold: t.FontWeight >= 600, Monospace: strings.Contains(strings.ToLower(t.FontFamily), "mono")}
		txt.Move(s.pos(geom.Point{X: t.X, Y: t.Y + float64(i)*lh}))
		objs = append(objs, txt)
	}
	return objs
}

func pathPoints(p *layer.Path) []layer.PenPoint {
	pts := make([]layer.PenPoint, len(p.Points))
	for i, pp := range p.Points {
		pts[i] = layer.PenPoint{X: pp.X, Y: pp.Y, Pressure: pp.Pressure}
	}
	return pts
}

// stroke draws freehand samples as line segments, origin added to each
// point. Pressure sets the width.
func (s scene) stroke(pts []layer.PenPoint, origin geom.Point, c color.Color) []fyne.CanvasObject {
	if len(pts) == 0 {
		return nil
	}
	at := func(p layer.PenPoint) fyne.Position {
		return s.pos(geom.Point{X: origin.X + p.X, Y: origin.Y + p.Y})
	}
	if len(pts) == 1 {
		w := penWidth(pts[0].Pressure)
		dot := canvas.NewCircle(c)
		dot.Resize(fyne.NewSize(w, w))
		dot.Move(at(pts[0]).SubtractXY(w/2, w/2))
		return []fyne.CanvasObject{dot}
	}
	objs := make([]fyne.CanvasObject, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		seg := canvas.NewLine(c)
		seg.StrokeWidth = penWidth((pts[i-1].Pressure + pts[i].Pressure) / 2)
		seg.Position1, seg.Position2 = at(pts[i-1]), at(pts[i])
		objs = append(objs, seg)
	}
	return objs
}

func penWidth(pressure float64) float32 {
	if pressure <= 0 {
		pressure = 0.5
	}
	return float32(math.Max(1, 16*pressure))
}

func (s scene) outline(r geom.XYWH, c color.Color) fyne.CanvasObject {
	box := canvas.NewRectangle(color.Transparent)
	box.StrokeColor, box.StrokeWidth = c, 1
	s.place(box, r)
	return box
}

func (s scene) handles(r geom.XYWH) []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(geom.Handles))
	for _, side := range geom.Handles {
		h := canvas.NewRectangle(handleFill)
		h.StrokeColor, h.StrokeWidth = selectionColor, 1
		s.place(h, geom.HandleBounds(r, side, s.handleSize))
		objs = append(objs, h)
	}
	return objs
}

func (s scene) cursor(p geom.Point, name string, c color.Color) []fyne.CanvasObject {
	dot := canvas.NewCircle(c)
	dot.Resize(fyne.NewSize(2*cursorRadius, 2*cursorRadius))
	dot.Move(s.pos(p).SubtractXY(cursorRadius, cursorRadius))

	if len(name) > 8 {
		name = name[:8]
	}
	label := canvas.NewText(name, c)
	label.TextSize = 11
	label.Move(s.pos(p).AddXY(cursorRadius+2, cursorRadius))
	return []fyne.CanvasObject{dot, label}
}
