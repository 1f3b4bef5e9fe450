package layer

import (
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
)

// FindIntersectingWithRectangle returns, in layer order, the ids of every
// layer whose box overlaps the rectangle spanned by origin and current.
// Ids without a table entry are skipped.
func FindIntersectingWithRectangle(order []string, table map[string]Layer, origin, current geom.Point) []string {
	net := geom.RectFromPoints(origin, current)
	ids := []string{}
	for _, id := range order {
		l, ok := table[id]
		if !ok {
			continue
		}
		if net.Intersects(Bounds(l)) {
			ids = append(ids, id)
		}
	}
	return ids
}

// HitTest returns the topmost layer whose box contains p.
func HitTest(order []string, table map[string]Layer, p geom.Point) (string, bool) {
	for i := len(order) - 1; i >= 0; i-- {
		l, ok := table[order[i]]
		if ok && Bounds(l).Contains(p) {
			return order[i], true
		}
	}
	return "", false
}

// BoundsOfIDs returns the union box of the given layers. ok is false when
// none of them exist.
func BoundsOfIDs(ids []string, table map[string]Layer) (r geom.XYWH, ok bool) {
	for _, id := range ids {
		l, exists := table[id]
		if !exists {
			continue
		}
		if !ok {
			r, ok = Bounds(l), true
			continue
		}
		r = r.Union(Bounds(l))
	}
	return r, ok
}
