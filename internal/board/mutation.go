package board

import (
	"encoding/json"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
	"github.com/wastless/ridex-design-app-sub001/internal/presence"
	"github.com/wastless/ridex-design-app-sub001/internal/state"
)

// Mutation is a write in progress, valid only inside the Mutate callback.
// Its writes are visible to its own View immediately.
type Mutation struct {
	tx    *state.Tx
	board *Board
}

// View returns the board as this mutation currently sees it.
func (m *Mutation) View() View {
	return m.board.view(m.tx.Reader)
}

// InsertLayer adds l at the top of the layer order. An id that is already
// taken is refused.
func (m *Mutation) InsertLayer(id string, l layer.Layer) bool {
	if id == "" || m.tx.Has(KeyLayers, id) {
		return false
	}
	f, err := layer.Encode(l)
	if err != nil {
		m.board.log.Error("encode layer", "layer", id, "err", err)
		return false
	}
	m.tx.PutObject(KeyLayers, id, state.Fields(f))
	m.tx.Push(KeyLayerIDs, id)
	return true
}

// DeleteLayer removes id from both the layers map and the order. Parts
// already gone are skipped; it reports whether anything was removed.
func (m *Mutation) DeleteLayer(id string) bool {
	removed := false
	if m.tx.Has(KeyLayers, id) {
		m.tx.DeleteObject(KeyLayers, id)
		removed = true
	}
	if m.tx.InList(KeyLayerIDs, id) {
		m.tx.Remove(KeyLayerIDs, id)
		removed = true
	}
	return removed
}

// PatchLayer writes the fields p sets on layer id. Fields that do not exist
// on the layer's kind are dropped. A text layer that is not fixed size is
// re-measured when its text or font changes. Missing layers are skipped.
func (m *Mutation) PatchLayer(id string, p layer.Patch) bool {
	if p.Empty() {
		return false
	}
	f, ok := m.tx.Object(KeyLayers, id)
	if !ok {
		return false
	}
	var kind layer.Kind
	if err := json.Unmarshal(f[layer.TypeField], &kind); err != nil {
		m.board.log.Warn("layer without type", "layer", id, "err", err)
		return false
	}
	fields, err := p.Encode(kind)
	if err != nil {
		m.board.log.Error("encode patch", "layer", id, "err", err)
		return false
	}
	if len(fields) == 0 {
		return false
	}
	m.tx.SetFields(KeyLayers, id, state.Fields(fields))

	if kind == layer.KindText && p.AffectsTextSize() {
		m.refit(id)
	}
	return true
}

func (m *Mutation) refit(id string) {
	f, _ := m.tx.Object(KeyLayers, id)
	l, err := layer.Decode(layer.Fields(f))
	if err != nil {
		return
	}
	t, ok := l.(*layer.Text)
	if !ok || t.IsFixedSize {
		return
	}
	if err := layer.FitText(t, m.board.metrics); err != nil {
		m.board.log.Warn("measure text", "layer", id, "err", err)
		return
	}
	size, err := layer.Patch{Width: &t.Width, Height: &t.Height}.Encode(layer.KindText)
	if err != nil {
		return
	}
	m.tx.SetFields(KeyLayers, id, state.Fields(size))
}

// SetRoomColor changes the canvas background.
func (m *Mutation) SetRoomColor(c geom.RGB) {
	raw, err := json.Marshal(c)
	if err != nil {
		m.board.log.Error("encode room color", "err", err)
		return
	}
	m.tx.SetRoot(KeyRoomColor, raw)
}

// SetPresence updates this participant's presence. With addToHistory the
// change is part of this mutation's undo step.
func (m *Mutation) SetPresence(addToHistory bool, updates ...presence.Update) {
	f, err := presence.Encode(updates...)
	if err != nil {
		m.board.log.Error("encode presence", "err", err)
		return
	}
	m.tx.SetPresence(state.Fields(f), addToHistory)
}
