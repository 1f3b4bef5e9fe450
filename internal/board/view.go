package board

import (
	"encoding/json"
	"sort"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/presence"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// Entry is a layer with its id.
type Entry struct {
	ID    string
	Layer layer.Layer
}

// Participant is another user connected to the room.
type Participant struct {
	ID       string
	Presence presence.Presence
	Color    geom.RGB
}

// View is a read-only snapshot of the board. It stays valid after the
// callback that produced it returns.
type View struct {
	order     []string
	table     map[string]layer.Layer
	roomColor geom.RGB
	selfID    string
	self      presence.Presence
	others    []Participant
}

func (b *Board) view(rd state.Reader) View {
	v := View{
		order:     rd.List(KeyLayerIDs),
		table:     make(map[string]layer.Layer),
		roomColor: b.roomColor,
		selfID:    rd.Site(),
	}
	if raw := rd.Root(KeyRoomColor); raw != nil {
		if err := json.Unmarshal(raw, &v.roomColor); err != nil {
			b.log.Warn("bad room color", "err", err)
		}
	}
	for _, id := range rd.Keys(KeyLayers) {
		f, _ := rd.Object(KeyLayers, id)
		l, err := layer.Decode(layer.Fields(f))
		if err != nil {
			b.log.Warn("skipping undecodable layer", "layer", id, "err", err)
			continue
		}
		v.table[id] = l
	}

	var err error
	if v.self, err = presence.Decode(presence.Fields(rd.Presence())); err != nil {
		b.log.Warn("bad local presence", "err", err)
	}
	others := rd.Others()
	for id, f := range others {
		p, err := presence.Decode(presence.Fields(f))
		if err != nil {
			b.log.Warn("bad presence", "peer", id, "err", err)
			continue
		}
		v.others = append(v.others, Participant{ID: id, Presence: p, Color: presence.ColorFor(id)})
	}
	sort.Slice(v.others, func(i, j int) bool { return v.others[i].ID < v.others[j].ID })
	return v
}

// Layers returns the layers in render order. Ids in the order without a
// layer are skipped.
func (v View) Layers() []Entry {
	out := make([]Entry, 0, len(v.order))
	for _, id := range v.order {
		if l, ok := v.table[id]; ok {
			out = append(out, Entry{ID: id, Layer: l})
		}
	}
	return out
}

// Layer returns one layer. The caller must not modify it.
func (v View) Layer(id string) (layer.Layer, bool) {
	l, ok := v.table[id]
	return l, ok
}

// Order returns the layer ids in render order.
func (v View) Order() []string { return append([]string(nil), v.order...) }

// Table returns the layers by id. The caller must not modify it.
func (v View) Table() map[string]layer.Layer { return v.table }

// Count is the number of layers in the room.
func (v View) Count() int { return len(v.table) }

func (v View) RoomColor() geom.RGB { return v.roomColor }

// SelfID is this participant's id.
func (v View) SelfID() string { return v.selfID }

func (v View) Self() presence.Presence { return v.self }

// Others returns every other participant, sorted by id.
func (v View) Others() []Participant { return v.others }

// SelectionBounds is the union box of the selected layers that exist.
func (v View) SelectionBounds() (geom.XYWH, bool) {
	return layer.BoundsOfIDs(v.self.Selection, v.table)
}

// Selected returns the selected ids that still have a layer.
func (v View) Selected() []string {
	ids := make([]string, 0, len(v.self.Selection))
	for _, id := range v.self.Selection {
		if _, ok := v.table[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// HitTest returns the topmost layer under p.
func (v View) HitTest(p geom.Point) (string, bool) {
	return layer.HitTest(v.order, v.table, p)
}
