// Package geom holds the pure geometry used by the editor: rectangles,
// resize-handle math, colors and text metrics. Nothing here touches shared
// state, so every participant computes the same values from the same input.
package geom

import "math"

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Manhattan returns |dx| + |dy| between p and q.
func (p Point) Manhattan(q Point) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// XYWH is an axis-aligned rectangle.
type XYWH struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rectangle spanned by a and b.
func RectFromPoints(a, b Point) XYWH {
	return XYWH{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

func (r XYWH) Right() float64  { return r.X + r.Width }
func (r XYWH) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether r and o overlap. Rectangles that only share an
// edge do not intersect.
func (r XYWH) Intersects(o XYWH) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether p lies inside r, edges included.
func (r XYWH) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() &&
		p.Y >= r.Y && p.Y <= r.Bottom()
}

// Union returns the smallest rectangle holding both r and o.
func (r XYWH) Union(o XYWH) XYWH {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return XYWH{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate moves r by d.
func (r XYWH) Translate(d Point) XYWH {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Corner returns the point of r at the given side combination. A single side
// resolves to the midpoint of that edge.
func (r XYWH) Corner(s Side) Point {
	p := Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	if s&Left != 0 {
		p.X = r.X
	}
	if s&Right != 0 {
		p.X = r.Right()
	}
	if s&Top != 0 {
		p.Y = r.Y
	}
	if s&Bottom != 0 {
		p.Y = r.Bottom()
	}
	return p
}

// BoundsOf returns the tight bounding box of pts. ok is false when pts is empty.
func BoundsOf(pts []Point) (r XYWH, ok bool) {
	if len(pts) == 0 {
		return XYWH{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return XYWH{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
