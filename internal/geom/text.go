package geom

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// MinTextWidth is the narrowest box MeasureText returns.
const MinTextWidth = 10

// TextSpec describes a block of text to measure.
type TextSpec struct {
	Text       string
	FontSize   float64
	FontWeight int
	FontFamily string
	LineHeight float64
}

// Metrics measures text with real font outlines. Faces are cached per
// family, weight and size; a Metrics is safe for concurrent use.
type Metrics struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
	fonts map[string]*opentype.Font
}

type faceKey struct {
	src  string
	size float64
}

// NewMetrics returns an empty face cache.
func NewMetrics() *Metrics {
	return &Metrics{
		faces: make(map[faceKey]font.Face),
		fonts: make(map[string]*opentype.Font),
	}
}

var defaultMetrics = NewMetrics()

// MeasureText measures t with the shared face cache.
func MeasureText(t TextSpec) (Size, error) {
	return defaultMetrics.Measure(t)
}

// Measure returns the box t occupies: the widest line (at least
// MinTextWidth) by the larger of lines*fontSize*lineHeight and fontSize.
func (m *Metrics) Measure(t TextSpec) (Size, error) {
	if t.FontSize <= 0 {
		return Size{Width: MinTextWidth}, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(fontSource(t.FontFamily, t.FontWeight), t.FontSize)
	if err != nil {
		return Size{}, err
	}

	lines := strings.Split(t.Text, "\n")
	width := 0.0
	for _, line := range lines {
		adv := font.MeasureString(face, line)
		width = math.Max(width, float64(adv)/64)
	}

	return Size{
		Width:  math.Max(width, MinTextWidth),
		Height: math.Max(float64(len(lines))*t.FontSize*t.LineHeight, t.FontSize),
	}, nil
}

func (m *Metrics) face(src string, size float64) (font.Face, error) {
	key := faceKey{src: src, size: size}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	parsed, ok := m.fonts[src]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData[src])
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", src, err)
		}
		m.fonts[src] = parsed
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %s@%v: %w", src, size, err)
	}
	m.faces[key] = f
	return f, nil
}

var fontData = map[string][]byte{
	"regular":  goregular.TTF,
	"medium":   gomedium.TTF,
	"bold":     gobold.TTF,
	"mono":     gomono.TTF,
	"monobold": gomonobold.TTF,
}

// fontSource maps a CSS-like family and weight onto the bundled Go fonts.
// Proportional families share the Go sans outlines.
func fontSource(family string, weight int) string {
	mono := false
	switch strings.ToLower(family) {
	case "monospace", "courier", "courier new", "jetbrains mono", "roboto mono", "go mono":
		mono = true
	}
	switch {
	case mono && weight >= 600:
		return "monobold"
	case mono:
		return "mono"
	case weight >= 600:
		return "bold"
	case weight >= 500:
		return "medium"
	}
	return "regular"
}
