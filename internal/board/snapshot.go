package board

import (
	"encoding/json"
	"fmt"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

// Snapshot is the durable part of a room: its color and its layers in
// render order. Presence is never part of it.
type Snapshot struct {
	RoomColor geom.RGB `json:"roomColor"`
	Layers    []Entry  `json:"layers"`
}

type entryJSON struct {
	ID    string       `json:"id"`
	Layer layer.Fields `json:"layer"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	f, err := layer.Encode(e.Layer)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{ID: e.ID, Layer: f})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var j entryJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	l, err := layer.Decode(j.Layer)
	if err != nil {
		return fmt.Errorf("layer %s: %w", j.ID, err)
	}
	e.ID, e.Layer = j.ID, l
	return nil
}

// Snapshot captures the current document.
func (b *Board) Snapshot() Snapshot {
	var s Snapshot
	b.Read(func(v View) {
		s = Snapshot{RoomColor: v.RoomColor(), Layers: v.Layers()}
	})
	return s
}

// Restore replaces the whole document with s as one undoable step. Every
// restored layer gets a fresh id, since an old id may still be tombstoned
// at its old position in the order. Layers beyond maxLayers are dropped
// when maxLayers is positive. It returns the number of layers restored.
func (b *Board) Restore(s Snapshot, maxLayers int) int {
	restored := 0
	b.Mutate(func(m *Mutation) {
		for _, id := range m.tx.List(KeyLayerIDs) {
			m.DeleteLayer(id)
		}
		for _, id := range m.tx.Keys(KeyLayers) {
			m.DeleteLayer(id)
		}
		m.SetRoomColor(s.RoomColor)
		for _, e := range s.Layers {
			if maxLayers > 0 && restored >= maxLayers {
				b.log.Warn("snapshot exceeds layer limit", "limit", maxLayers, "layers", len(s.Layers))
				break
			}
			if e.Layer == nil {
				continue
			}
			if m.InsertLayer(layer.NewID(), layer.Clone(e.Layer)) {
				restored++
			}
		}
	})
	return restored
}
