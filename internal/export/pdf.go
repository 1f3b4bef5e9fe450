// Package export writes a room out of the app: as a PDF for sharing and as
// a JSON document that can be loaded back into a room.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

const margin = 20

// Page size used when the room has no layers.
var emptyPage = geom.Size{Width: 800, Height: 600}

var pdfBlendModes = map[layer.BlendMode]string{
	layer.BlendNormal:     "Normal",
	layer.BlendMultiply:   "Multiply",
	layer.BlendScreen:     "Screen",
	layer.BlendOverlay:    "Overlay",
	layer.BlendDarken:     "Darken",
	layer.BlendLighten:    "Lighten",
	layer.BlendColorDodge: "ColorDodge",
	layer.BlendColorBurn:  "ColorBurn",
	layer.BlendHardLight:  "HardLight",
	layer.BlendSoftLight:  "SoftLight",
	layer.BlendDifference: "Difference",
	layer.BlendExclusion:  "Exclusion",
	layer.BlendHue:        "Hue",
	layer.BlendSaturation: "Saturation",
	layer.BlendColor:      "Color",
	layer.BlendLuminosity: "Luminosity",
}

// PDF renders s on a single page sized to its layers, one canvas unit per
// point, on the room color.
func PDF(w io.Writer, s board.Snapshot) error {
	area, ok := union(s.Layers)
	if !ok {
		area = geom.XYWH{Width: emptyPage.Width, Height: emptyPage.Height}
	}
	r := renderer{
		origin: geom.Point{X: area.X - margin, Y: area.Y - margin},
	}
	r.pdf = gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: area.Width + 2*margin, Ht: area.Height + 2*margin},
	})
	r.pdf.SetMargins(0, 0, 0)
	r.pdf.SetAutoPageBreak(false, 0)
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.AddPage()

	pw, ph := r.pdf.GetPageSize()
	setFill(r.pdf, s.RoomColor)
	r.pdf.Rect(0, 0, pw, ph, "F")

	for _, e := range s.Layers {
		r.layer(e.Layer)
	}
	if err := r.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFile renders s into a new file at path.
func PDFFile(path string, s board.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := PDF(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func union(entries []board.Entry) (geom.XYWH, bool) {
	var u geom.XYWH
	ok := false
	for _, e := range entries {
		if e.Layer == nil {
			continue
		}
		b := layer.Bounds(e.Layer)
		if !ok {
			u, ok = b, true
			continue
		}
		u = u.Union(b)
	}
	return u, ok
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	origin geom.Point
}

func (r renderer) layer(l layer.Layer) {
	if l == nil {
		return
	}
	b := l.Common()
	box := layer.Bounds(l).Translate(geom.Point{X: -r.origin.X, Y: -r.origin.Y})

	r.pdf.SetAlpha(float64(b.Opacity)/100, blendMode(b.BlendMode))
	defer r.pdf.SetAlpha(1, "Normal")

	style := paint(r.pdf, b)
	switch l := l.(type) {
	case *layer.Rectangle:
		if style != "" {
			r.pdf.Rect(box.X, box.Y, box.Width, box.Height, style)
		}
	case *layer.Ellipse:
		if style != "" {
			r.pdf.Ellipse(box.X+box.Width/2, box.Y+box.Height/2, box.Width/2, box.Height/2, 0, style)
		}
	case *layer.Triangle:
		if style != "" {
			r.pdf.Polygon([]gofpdf.PointType{
				{X: box.X + box.Width/2, Y: box.Y},
				{X: box.Right(), Y: box.Bottom()},
				{X: box.X, Y: box.Bottom()},
			}, style)
		}
	case *layer.Text:
		r.text(l, box)
	case *layer.Image:
		r.imageFrame(box)
	case *layer.Path:
		r.path(l, box)
	}
}

// paint sets the fill and stroke colors of b and returns the matching
// gofpdf style, empty when there is nothing to draw.
func paint(pdf *gofpdf.Fpdf, b *layer.Base) string {
	style := ""
	if b.Fill != nil {
		setFill(pdf, *b.Fill)
		style += "F"
	}
	if b.Stroke != nil {
		pdf.SetDrawColor(int(b.Stroke.R), int(b.Stroke.G), int(b.Stroke.B))
		pdf.SetLineWidth(1)
		style += "D"
	}
	return style
}

func setFill(pdf *gofpdf.Fpdf, c geom.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func blendMode(m layer.BlendMode) string {
	if s, ok := pdfBlendModes[m]; ok {
		return s
	}
	return "Normal"
}

func (r renderer) text(t *layer.Text, box geom.XYWH) {
	c := geom.Black
	if t.Fill != nil {
		c = *t.Fill
	}
	r.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetFont(pdfFont(t.FontFamily), fontStyle(t.FontWeight), t.FontSize)

	lh := t.FontSize * t.LineHeight
	if lh <= 0 {
		lh = t.FontSize
	}
	for i, line := range strings.Split(t.Text, "\n") {
		// Text is placed by baseline; center the glyphs in their line box.
		y := box.Y + float64(i)*lh + (lh+t.FontSize*0.7)/2
		r.pdf.Text(box.X, y, r.tr(line))
	}
}

// pdfFont maps a family to one of the PDF core fonts.
func pdfFont(family string) string {
	switch f := strings.ToLower(family); {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"):
		return "Courier"
	case strings.Contains(f, "serif") && !strings.Contains(f, "sans"), strings.Contains(f, "times"):
		return "Times"
	}
	return "Helvetica"
}

func fontStyle(weight int) string {
	if weight >= 600 {
		return "B"
	}
	return ""
}

// imageFrame draws a placeholder: image sources are references, not
// embedded data.
func (r renderer) imageFrame(box geom.XYWH) {
	r.pdf.SetDrawColor(160, 160, 160)
	r.pdf.SetLineWidth(1)
	r.pdf.Rect(box.X, box.Y, box.Width, box.Height, "D")
	r.pdf.Line(box.X, box.Y, box.Right(), box.Bottom())
	r.pdf.Line(box.Right(), box.Y, box.X, box.Bottom())
}

func (r renderer) path(p *layer.Path, box geom.XYWH) {
	c := layer.DefaultShapeFill
	switch {
	case p.Fill != nil:
		c = *p.Fill
	case p.Stroke != nil:
		c = *p.Stroke
	}
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetLineCapStyle("round")
	r.pdf.SetLineJoinStyle("round")
	defer r.pdf.SetLineCapStyle("butt")

	pts := p.Points
	if len(pts) == 1 {
		r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		r.pdf.Circle(box.X+pts[0].X, box.Y+pts[0].Y, strokeWidth(pts[0].Pressure)/2, "F")
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		r.pdf.SetLineWidth(strokeWidth((a.Pressure + b.Pressure) / 2))
		r.pdf.Line(box.X+a.X, box.Y+a.Y, box.X+b.X, box.Y+b.Y)
	}
}

// strokeWidth maps pen pressure to a line width.
func strokeWidth(pressure float64) float64 {
	if pressure <= 0 {
		pressure = 0.5
	}
	return math.Max(1, 16*pressure)
}
