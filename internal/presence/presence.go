// Package presence models the ephemeral state every participant broadcasts:
// cursor, selection, pen color and the freehand stroke being drawn. It is
// never persisted and starts from Default on every (re)connect.
package presence

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

// Field keys, shared with the replicated store.
const (
	FieldSelection   = "selection"
	FieldCursor      = "cursor"
	FieldPenColor    = "penColor"
	FieldPencilDraft = "pencilDraft"
)

// Presence is one participant's state.
type Presence struct {
	Selection   []string         `json:"selection"`
	Cursor      *geom.Point      `json:"cursor"`
	PenColor    *geom.RGB        `json:"penColor"`
	PencilDraft []layer.PenPoint `json:"pencilDraft"`
}

// Default is the state a participant joins with.
func Default() Presence {
	return Presence{Selection: []string{}}
}

// Drawing reports whether a freehand stroke is in progress.
func (p Presence) Drawing() bool {
	return p.PencilDraft != nil
}

// Fields is presence flattened into one JSON value per key.
type Fields map[string]json.RawMessage

// Update sets one presence field.
type Update struct {
	key   string
	value any
}

func SetSelection(ids []string) Update {
	if ids == nil {
		ids = []string{}
	}
	return Update{key: FieldSelection, value: ids}
}

// SetCursor sets the cursor; nil hides it.
func SetCursor(p *geom.Point) Update {
	return Update{key: FieldCursor, value: p}
}

func SetPenColor(c *geom.RGB) Update {
	return Update{key: FieldPenColor, value: c}
}

// SetPencilDraft replaces the in-progress stroke; nil clears it.
func SetPencilDraft(d []layer.PenPoint) Update {
	return Update{key: FieldPencilDraft, value: d}
}

// Encode turns updates into store fields. A later update to the same key
// wins.
func Encode(updates ...Update) (Fields, error) {
	f := make(Fields, len(updates))
	for _, u := range updates {
		raw, err := json.Marshal(u.value)
		if err != nil {
			return nil, fmt.Errorf("encode presence %s: %w", u.key, err)
		}
		f[u.key] = raw
	}
	return f, nil
}

// EncodeAll encodes every field of p.
func EncodeAll(p Presence) (Fields, error) {
	return Encode(
		SetSelection(p.Selection),
		SetCursor(p.Cursor),
		SetPenColor(p.PenColor),
		SetPencilDraft(p.PencilDraft),
	)
}

// Decode rebuilds presence from store fields. Missing keys keep their
// defaults.
func Decode(f Fields) (Presence, error) {
	p := Default()
	raw, err := json.Marshal(f)
	if err != nil {
		return p, fmt.Errorf("join presence: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode presence: %w", err)
	}
	if p.Selection == nil {
		p.Selection = []string{}
	}
	return p, nil
}

// Palette colors remote participants' cursors and selections.
var Palette = []geom.RGB{
	{R: 220, G: 38, B: 38},
	{R: 217, G: 119, B: 6},
	{R: 5, G: 150, B: 105},
	{R: 37, G: 99, B: 235},
	{R: 124, G: 58, B: 237},
	{R: 219, G: 39, B: 119},
	{R: 8, G: 145, B: 178},
	{R: 101, G: 163, B: 13},
}

// ColorFor returns the stable palette color of a participant id.
func ColorFor(id string) geom.RGB {
	h := fnv.New32a()
	h.Write([]byte(id))
	return Palette[h.Sum32()%uint32(len(Palette))]
}
