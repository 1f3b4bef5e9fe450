// Package layer defines the drawable objects of a room. Layer is a closed
// sum type: the variants below are the only implementations, and consumers
// switch over them with a type switch.
package layer

import (
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// Kind is the discriminant stored with every encoded layer.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindTriangle  Kind = "triangle"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindPath      Kind = "path"
)

// Kinds lists every layer kind.
var Kinds = []Kind{KindRectangle, KindEllipse, KindTriangle, KindText, KindImage, KindPath}

// BlendMode is a compositing mode name.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color-dodge"
	BlendColorBurn  BlendMode = "color-burn"
	BlendHardLight  BlendMode = "hard-light"
	BlendSoftLight  BlendMode = "soft-light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
	BlendHue        BlendMode = "hue"
	BlendSaturation BlendMode = "saturation"
	BlendColor      BlendMode = "color"
	BlendLuminosity BlendMode = "luminosity"
)

// BlendModes lists every supported blend mode.
var BlendModes = []BlendMode{
	BlendNormal, BlendMultiply, BlendScreen, BlendOverlay, BlendDarken, BlendLighten,
	BlendColorDodge, BlendColorBurn, BlendHardLight, BlendSoftLight, BlendDifference,
	BlendExclusion, BlendHue, BlendSaturation, BlendColor, BlendLuminosity,
}

// Layer is one drawable object.
type Layer interface {
	Kind() Kind
	// Common exposes the attributes shared by every variant.
	Common() *Base
	isLayer()
}

// Base holds the attributes every layer carries.
type Base struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Opacity   int       `json:"opacity"`
	BlendMode BlendMode `json:"blendMode"`
	Fill      *geom.RGB `json:"fill"`
	Stroke    *geom.RGB `json:"stroke"`
}

func (b *Base) Common() *Base { return b }

// Bounds returns the layer's axis-aligned box.
func (b *Base) Bounds() geom.XYWH {
	return geom.XYWH{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// SetBounds moves and sizes the layer.
func (b *Base) SetBounds(r geom.XYWH) {
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
}

type Rectangle struct{ Base }

type Ellipse struct{ Base }

type Triangle struct{ Base }

// Text is a block of text; unless IsFixedSize is set its box follows the
// measured text.
type Text struct {
	Base
	Text          string  `json:"text"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    int     `json:"fontWeight"`
	FontFamily    string  `json:"fontFamily"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	IsFixedSize   bool    `json:"isFixedSize"`
}

// Spec returns what geom.MeasureText needs to size the text.
func (t *Text) Spec() geom.TextSpec {
	return geom.TextSpec{
		Text:       t.Text,
		FontSize:   t.FontSize,
		FontWeight: t.FontWeight,
		FontFamily: t.FontFamily,
		LineHeight: t.LineHeight,
	}
}

type Image struct {
	Base
	Src string `json:"src"`
}

// PathPoint is a freehand sample relative to the path's top-left corner.
type PathPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

type Path struct {
	Base
	Points []PathPoint `json:"points"`
}

func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Ellipse) Kind() Kind   { return KindEllipse }
func (*Triangle) Kind() Kind  { return KindTriangle }
func (*Text) Kind() Kind      { return KindText }
func (*Image) Kind() Kind     { return KindImage }
func (*Path) Kind() Kind      { return KindPath }

func (*Rectangle) isLayer() {}
func (*Ellipse) isLayer()   {}
func (*Triangle) isLayer()  {}
func (*Text) isLayer()      {}
func (*Image) isLayer()     {}
func (*Path) isLayer()      {}

// Bounds returns l's box.
func Bounds(l Layer) geom.XYWH {
	return l.Common().Bounds()
}

// Clone returns a deep copy of l.
func Clone(l Layer) Layer {
	cp := func(b Base) Base {
		if b.Fill != nil {
			f := *b.Fill
			b.Fill = &f
		}
		if b.Stroke != nil {
			s := *b.Stroke
			b.Stroke = &s
		}
		return b
	}
	switch l := l.(type) {
	case *Rectangle:
		return &Rectangle{Base: cp(l.Base)}
	case *Ellipse:
		return &Ellipse{Base: cp(l.Base)}
	case *Triangle:
		return &Triangle{Base: cp(l.Base)}
	case *Text:
		c := *l
		c.Base = cp(l.Base)
		return &c
	case *Image:
		c := *l
		c.Base = cp(l.Base)
		return &c
	case *Path:
		c := *l
		c.Base = cp(l.Base)
		c.Points = append([]PathPoint(nil), l.Points...)
		return &c
	}
	return nil
}
