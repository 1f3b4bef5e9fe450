package layer

import (
	"github.com/google/uuid"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// Defaults applied by New.
var (
	DefaultShapeFill = geom.RGB{R: 217, G: 217, B: 217}
	DefaultTextFill  = geom.Black
)

const (
	DefaultFontSize   = 16
	DefaultFontWeight = 400
	DefaultFontFamily = "Inter"
	DefaultLineHeight = 1.5
	DefaultOpacity    = 100
)

// Options carries the variant-specific inputs of New.
type Options struct {
	Text        string
	IsFixedSize bool
	Src         string
}

// NewID returns a fresh layer identifier.
func NewID() string {
	return uuid.NewString()
}

// New builds a layer of the given kind with its defaults. It returns false
// for kinds it does not know; callers must skip the insertion.
func New(kind Kind, x, y, width, height float64, opts Options) (Layer, bool) {
	base := Base{
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Opacity:   DefaultOpacity,
		BlendMode: BlendNormal,
	}
	shapeFill := func() *geom.RGB {
		c := DefaultShapeFill
		return &c
	}

	switch kind {
	case KindRectangle:
		base.Fill = shapeFill()
		return &Rectangle{Base: base}, true
	case KindEllipse:
		base.Fill = shapeFill()
		return &Ellipse{Base: base}, true
	case KindTriangle:
		base.Fill = shapeFill()
		return &Triangle{Base: base}, true
	case KindText:
		fill := DefaultTextFill
		base.Fill = &fill
		return &Text{
			Base:        base,
			Text:        opts.Text,
			FontSize:    DefaultFontSize,
			FontWeight:  DefaultFontWeight,
			FontFamily:  DefaultFontFamily,
			LineHeight:  DefaultLineHeight,
			IsFixedSize: opts.IsFixedSize,
		}, true
	case KindImage:
		return &Image{Base: base, Src: opts.Src}, true
	case KindPath:
		base.Fill = shapeFill()
		return &Path{Base: base}, true
	}
	return nil, false
}

// FitText resizes t to its measured box unless it is fixed size.
func FitText(t *Text, m *geom.Metrics) error {
	if t.IsFixedSize {
		return nil
	}
	s, err := m.Measure(t.Spec())
	if err != nil {
		return err
	}
	t.Width, t.Height = s.Width, s.Height
	return nil
}
