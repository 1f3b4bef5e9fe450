package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

func TestEncodeDecode(t *testing.T) {
	want := Presence{
		Selection:   []string{"a", "b"},
		Cursor:      &geom.Point{X: 3, Y: 4},
		PenColor:    &geom.RGB{R: 255},
		PencilDraft: []layer.PenPoint{{X: 1, Y: 2, Pressure: 0.5}},
	}
	f, err := EncodeAll(want)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,2,0.5]]`, string(f[FieldPencilDraft]))

	got, err := Decode(f)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClearingFields(t *testing.T) {
	f, err := Encode(SetCursor(nil), SetPencilDraft(nil), SetSelection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(f[FieldCursor]))
	assert.JSONEq(t, `null`, string(f[FieldPencilDraft]))
	assert.JSONEq(t, `[]`, string(f[FieldSelection]))

	p, err := Decode(f)
	require.NoError(t, err)
	assert.False(t, p.Drawing())
	assert.Nil(t, p.Cursor)
	assert.Equal(t, []string{}, p.Selection)
}

func TestDecodeMissingKeysUsesDefaults(t *testing.T) {
	p, err := Decode(Fields{})
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLaterUpdateWins(t *testing.T) {
	f, err := Encode(SetSelection([]string{"a"}), SetSelection([]string{"b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `["b"]`, string(f[FieldSelection]))
}

func TestColorForIsStable(t *testing.T) {
	assert.Equal(t, ColorFor("site-1"), ColorFor("site-1"))
	assert.Contains(t, Palette, ColorFor("another"))
}
