package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeBounds(t *testing.T) {
	initial := XYWH{X: 0, Y: 0, Width: 100, Height: 50}

	tests := []struct {
		name   string
		corner Side
		p      Point
		want   XYWH
	}{
		{"bottom-right grow", BottomRight, Point{150, 80}, XYWH{0, 0, 150, 80}},
		{"bottom-right past top-left", BottomRight, Point{-20, -20}, XYWH{-20, -20, 20, 20}},
		{"top-left shrink", TopLeft, Point{10, 5}, XYWH{10, 5, 90, 45}},
		{"right only keeps height", Right, Point{40, 999}, XYWH{0, 0, 40, 50}},
		{"top crosses bottom", Top, Point{0, 70}, XYWH{0, 50, 100, 20}},
		{"left to same edge", Left, Point{100, 0}, XYWH{100, 0, 0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResizeBounds(initial, tt.corner, tt.p))
		})
	}
}

func TestResizeBoundsKeepsOppositeCorner(t *testing.T) {
	bounds := []XYWH{
		{0, 0, 100, 50},
		{-30, 12, 7, 200},
		{5, 5, 0, 0},
	}
	points := []Point{{150, 80}, {-20, -20}, {0, 0}, {3.5, 1000}, {-400, 2}}

	for _, b := range bounds {
		for _, corner := range Handles {
			fixed := b.Corner(corner.Opposite())
			for _, p := range points {
				r := ResizeBounds(b, corner, p)
				assert.GreaterOrEqual(t, r.Width, 0.0)
				assert.GreaterOrEqual(t, r.Height, 0.0)

				if corner&(Left|Right) != 0 {
					assert.True(t, r.X == fixed.X || r.Right() == fixed.X,
						"%v %v %v: x edge moved", b, corner, p)
				}
				if corner&(Top|Bottom) != 0 {
					assert.True(t, r.Y == fixed.Y || r.Bottom() == fixed.Y,
						"%v %v %v: y edge moved", b, corner, p)
				}
			}
		}
	}
}

func TestResizeBoundsMin(t *testing.T) {
	initial := XYWH{X: 10, Y: 10, Width: 100, Height: 100}

	got := ResizeBoundsMin(initial, BottomRight, Point{12, 200}, 20)
	assert.Equal(t, XYWH{10, 10, 20, 190}, got)

	got = ResizeBoundsMin(initial, TopLeft, Point{110, 110}, 20)
	assert.Equal(t, XYWH{90, 90, 20, 20}, got)

	got = ResizeBoundsMin(initial, Left, Point{105, 0}, 20)
	assert.Equal(t, XYWH{90, 10, 20, 100}, got)
}

func TestHandleAt(t *testing.T) {
	r := XYWH{X: 0, Y: 0, Width: 100, Height: 40}

	s, ok := HandleAt(r, Point{101, 39}, DefaultHandleSize)
	assert.True(t, ok)
	assert.Equal(t, BottomRight, s)

	s, ok = HandleAt(r, Point{50, -2}, DefaultHandleSize)
	assert.True(t, ok)
	assert.Equal(t, Top, s)

	_, ok = HandleAt(r, Point{50, 20}, DefaultHandleSize)
	assert.False(t, ok)
}
