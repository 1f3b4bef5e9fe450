package geom

import "math"

// Side identifies an edge of a rectangle. Corners are the union of two
// adjacent sides, which gives the eight compass resize handles.
type Side uint8

const (
	Top    Side = 1
	Bottom Side = 2
	Left   Side = 4
	Right  Side = 8

	TopLeft     = Top | Left
	TopRight    = Top | Right
	BottomLeft  = Bottom | Left
	BottomRight = Bottom | Right
)

// Handles lists the eight resize handles in clockwise order from top-left.
var Handles = []Side{TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left}

// Opposite returns the side combination across from s.
func (s Side) Opposite() Side {
	var o Side
	if s&Top != 0 {
		o |= Bottom
	}
	if s&Bottom != 0 {
		o |= Top
	}
	if s&Left != 0 {
		o |= Right
	}
	if s&Right != 0 {
		o |= Left
	}
	return o
}

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "none"
}

// ResizeBounds returns the bounds produced by dragging the given corner of
// initial to p. The edges opposite the dragged ones stay where they were; if
// the pointer crosses them the result is flipped so width and height are
// never negative.
func ResizeBounds(initial XYWH, corner Side, p Point) XYWH {
	return ResizeBoundsMin(initial, corner, p, 0)
}

// ResizeBoundsMin is ResizeBounds with a minimum width and height. The fixed
// edges still never move; a too-small span is extended away from them.
func ResizeBoundsMin(initial XYWH, corner Side, p Point, minSize float64) XYWH {
	r := initial
	if corner&Left != 0 {
		r.X, r.Width = span(initial.Right(), p.X, -1, minSize)
	}
	if corner&Right != 0 {
		r.X, r.Width = span(initial.X, p.X, 1, minSize)
	}
	if corner&Top != 0 {
		r.Y, r.Height = span(initial.Bottom(), p.Y, -1, minSize)
	}
	if corner&Bottom != 0 {
		r.Y, r.Height = span(initial.Y, p.Y, 1, minSize)
	}
	return r
}

// span returns origin and length of the interval between a fixed coordinate
// and a moving one. dir is the side the moving edge started on and decides
// where a clamped zero-length span grows.
func span(fixed, moving, dir, minSize float64) (float64, float64) {
	length := math.Abs(moving - fixed)
	if length < minSize {
		switch {
		case moving > fixed:
			moving = fixed + minSize
		case moving < fixed:
			moving = fixed - minSize
		default:
			moving = fixed + dir*minSize
		}
		length = minSize
	}
	return math.Min(fixed, moving), length
}

// DefaultHandleSize is the edge length of a resize handle hit box.
const DefaultHandleSize = 8

// HandleBounds returns the hit box of handle s on r.
func HandleBounds(r XYWH, s Side, size float64) XYWH {
	c := r.Corner(s)
	return XYWH{X: c.X - size/2, Y: c.Y - size/2, Width: size, Height: size}
}

// HandleAt returns the handle of r under p. Corners win over edge midpoints
// when boxes overlap on tiny selections.
func HandleAt(r XYWH, p Point, size float64) (Side, bool) {
	for _, s := range []Side{TopLeft, TopRight, BottomRight, BottomLeft, Top, Right, Bottom, Left} {
		if HandleBounds(r, s, size).Contains(p) {
			return s, true
		}
	}
	return 0, false
}
