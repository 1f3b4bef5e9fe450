package layer

import (
	"math"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// PenPoint is a raw freehand sample in canvas coordinates.
type PenPoint struct {
	X        float64
	Y        float64
	Pressure float64
}

// MarshalJSON encodes the sample as [x, y, pressure].
func (p PenPoint) MarshalJSON() ([]byte, error) {
	return marshalTriple(p.X, p.Y, p.Pressure)
}

// UnmarshalJSON decodes [x, y, pressure].
func (p *PenPoint) UnmarshalJSON(b []byte) error {
	return unmarshalTriple(b, &p.X, &p.Y, &p.Pressure)
}

// MinPathPoints is the fewest samples that make a path.
const MinPathPoints = 2

// PenPointsToPath turns a freehand stroke into a path layer: the box is the
// tight bounds of the samples and every point is stored relative to its
// top-left corner. The caller guarantees at least MinPathPoints samples.
func PenPointsToPath(points []PenPoint, color geom.RGB) *Path {
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		left = math.Min(left, p.X)
		top = math.Min(top, p.Y)
		right = math.Max(right, p.X)
		bottom = math.Max(bottom, p.Y)
	}

	normalized := make([]PathPoint, len(points))
	for i, p := range points {
		normalized[i] = PathPoint{X: p.X - left, Y: p.Y - top, Pressure: p.Pressure}
	}

	fill, stroke := color, color
	return &Path{
		Base: Base{
			X:         left,
			Y:         top,
			Width:     right - left,
			Height:    bottom - top,
			Opacity:   DefaultOpacity,
			BlendMode: BlendNormal,
			Fill:      &fill,
			Stroke:    &stroke,
		},
		Points: normalized,
	}
}

// Absolute returns the path's points in canvas coordinates.
func (p *Path) Absolute() []geom.Point {
	out := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = geom.Point{X: p.X + pt.X, Y: p.Y + pt.Y}
	}
	return out
}
