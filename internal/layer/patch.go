package layer

import (
	"encoding/json"
	"fmt"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// Patch is a partial update. Nil fields are left untouched; ClearFill and
// ClearStroke remove the respective color.
type Patch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64

	Opacity     *int
	BlendMode   *BlendMode
	Fill        *geom.RGB
	ClearFill   bool
	Stroke      *geom.RGB
	ClearStroke bool

	// Text layers only.
	Text          *string
	FontSize      *float64
	FontWeight    *int
	FontFamily    *string
	LineHeight    *float64
	LetterSpacing *float64
	IsFixedSize   *bool

	// Image layers only.
	Src *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

// BoundsPatch sets all four geometry fields.
func BoundsPatch(r geom.XYWH) Patch {
	return Patch{X: Ptr(r.X), Y: Ptr(r.Y), Width: Ptr(r.Width), Height: Ptr(r.Height)}
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Encode returns the fields p sets on a layer of the given kind. Fields that
// do not exist on that kind are dropped.
func (p Patch) Encode(kind Kind) (Fields, error) {
	f := Fields{}
	var err error
	set := func(key string, v any) {
		if err != nil {
			return
		}
		var raw []byte
		raw, err = json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("encode %s: %w", key, err)
			return
		}
		f[key] = raw
	}

	if p.X != nil {
		set("x", *p.X)
	}
	if p.Y != nil {
		set("y", *p.Y)
	}
	if p.Width != nil {
		set("width", *p.Width)
	}
	if p.Height != nil {
		set("height", *p.Height)
	}
	if p.Opacity != nil {
		set("opacity", clampOpacity(*p.Opacity))
	}
	if p.BlendMode != nil {
		set("blendMode", *p.BlendMode)
	}
	switch {
	case p.ClearFill:
		set("fill", nil)
	case p.Fill != nil:
		set("fill", *p.Fill)
	}
	switch {
	case p.ClearStroke:
		set("stroke", nil)
	case p.Stroke != nil:
		set("stroke", *p.Stroke)
	}

	if kind == KindText {
		if p.Text != nil {
			set("text", *p.Text)
		}
		if p.FontSize != nil {
			set("fontSize", *p.FontSize)
		}
		if p.FontWeight != nil {
			set("fontWeight", *p.FontWeight)
		}
		if p.FontFamily != nil {
			set("fontFamily", *p.FontFamily)
		}
		if p.LineHeight != nil {
			set("lineHeight", *p.LineHeight)
		}
		if p.LetterSpacing != nil {
			set("letterSpacing", *p.LetterSpacing)
		}
		if p.IsFixedSize != nil {
			set("isFixedSize", *p.IsFixedSize)
		}
	}
	if kind == KindImage && p.Src != nil {
		set("src", *p.Src)
	}
	return f, err
}

// AffectsTextSize reports whether p changes anything that alters a text
// layer's measured box.
func (p Patch) AffectsTextSize() bool {
	return p.Text != nil || p.FontSize != nil || p.FontWeight != nil ||
		p.FontFamily != nil || p.LineHeight != nil || p.IsFixedSize != nil
}

func clampOpacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
