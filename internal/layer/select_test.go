package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

func rect(x, y, w, h float64) Layer {
	l, _ := New(KindRectangle, x, y, w, h, Options{})
	return l
}

func TestFindIntersectingWithRectangle(t *testing.T) {
	order := []string{"a", "b", "c"}
	table := map[string]Layer{
		"a": rect(0, 0, 10, 10),
		"b": rect(40, 40, 20, 20),
		"c": rect(100, 100, 5, 5),
	}

	got := FindIntersectingWithRectangle(order, table, geom.Point{X: 0, Y: 0}, geom.Point{X: 50, Y: 50})
	assert.Equal(t, []string{"a", "b"}, got)

	got = FindIntersectingWithRectangle(order, table, geom.Point{X: 50, Y: 50}, geom.Point{X: 0, Y: 0})
	assert.Equal(t, []string{"a", "b"}, got, "drag direction does not matter")

	got = FindIntersectingWithRectangle([]string{"b", "ghost", "a"}, table, geom.Point{}, geom.Point{X: 50, Y: 50})
	assert.Equal(t, []string{"b", "a"}, got, "layer order is kept and missing ids skipped")
}

func TestSelectionNetMonotonic(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	table := map[string]Layer{
		"a": rect(0, 0, 10, 10),
		"b": rect(40, 40, 20, 20),
		"c": rect(100, 100, 5, 5),
		"d": rect(-30, 60, 10, 10),
	}
	origin := geom.Point{X: 20, Y: 20}

	var prev []string
	for spread := 1.0; spread < 200; spread += 7 {
		cur := FindIntersectingWithRectangle(order, table,
			geom.Point{X: origin.X - spread, Y: origin.Y - spread},
			geom.Point{X: origin.X + spread, Y: origin.Y + spread})
		for _, id := range prev {
			assert.Contains(t, cur, id)
		}
		prev = cur
	}
	assert.Len(t, prev, 4)
}

func TestHitTestPrefersTopmost(t *testing.T) {
	order := []string{"bottom", "top"}
	table := map[string]Layer{
		"bottom": rect(0, 0, 100, 100),
		"top":    rect(50, 50, 10, 10),
	}

	id, ok := HitTest(order, table, geom.Point{X: 55, Y: 55})
	assert.True(t, ok)
	assert.Equal(t, "top", id)

	id, ok = HitTest(order, table, geom.Point{X: 5, Y: 5})
	assert.True(t, ok)
	assert.Equal(t, "bottom", id)

	_, ok = HitTest(order, table, geom.Point{X: 500, Y: 5})
	assert.False(t, ok)
}

func TestBoundsOfIDs(t *testing.T) {
	table := map[string]Layer{
		"a": rect(0, 0, 10, 10),
		"b": rect(40, 40, 20, 20),
	}
	r, ok := BoundsOfIDs([]string{"a", "missing", "b"}, table)
	assert.True(t, ok)
	assert.Equal(t, geom.XYWH{X: 0, Y: 0, Width: 60, Height: 60}, r)

	_, ok = BoundsOfIDs([]string{"missing"}, table)
	assert.False(t, ok)
}
