package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

func sample(t *testing.T) board.Snapshot {
	t.Helper()
	var entries []board.Entry
	for i, k := range []layer.Kind{layer.KindRectangle, layer.KindEllipse, layer.KindTriangle, layer.KindImage} {
		l, ok := layer.New(k, float64(i*120), 0, 100, 80, layer.Options{Src: "https://example.com/a.png"})
		require.True(t, ok)
		entries = append(entries, board.Entry{ID: string(k), Layer: l})
	}

	txt, _ := layer.New(layer.KindText, 0, 200, 120, 48, layer.Options{Text: "Hello\nwörld"})
	txt.(*layer.Text).FontWeight = 700
	entries = append(entries, board.Entry{ID: "text", Layer: txt})

	red := geom.RGB{R: 255}
	p := layer.PenPointsToPath([]layer.PenPoint{{X: 300, Y: 300, Pressure: 0.5}, {X: 320, Y: 310, Pressure: 0.7}, {X: 340, Y: 330, Pressure: 0.2}}, red)
	p.Common().Opacity = 50
	p.Common().BlendMode = layer.BlendMultiply
	entries = append(entries, board.Entry{ID: "path", Layer: p})

	return board.Snapshot{RoomColor: board.DefaultRoomColor, Layers: entries}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sample(t)))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestPDFEmptyRoom(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, board.Snapshot{RoomColor: geom.White}))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.pdf")
	require.NoError(t, PDFFile(path, sample(t)))
	assert.FileExists(t, path)
}

func TestUnion(t *testing.T) {
	a, _ := layer.New(layer.KindRectangle, -10, 5, 10, 10, layer.Options{})
	b, _ := layer.New(layer.KindEllipse, 40, 40, 20, 20, layer.Options{})
	u, ok := union([]board.Entry{{ID: "a", Layer: a}, {ID: "b", Layer: b}})
	require.True(t, ok)
	assert.Equal(t, geom.XYWH{X: -10, Y: 5, Width: 70, Height: 55}, u)

	_, ok = union(nil)
	assert.False(t, ok)
}

func TestSaveLoad(t *testing.T) {
	s := sample(t)
	path := filepath.Join(t.TempDir(), "room.json")
	require.NoError(t, SaveFile(path, s))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.RoomColor, got.RoomColor)
	require.Len(t, got.Layers, len(s.Layers))
	for i := range s.Layers {
		assert.Equal(t, s.Layers[i].ID, got.Layers[i].ID)
		assert.Equal(t, s.Layers[i].Layer, got.Layers[i].Layer)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, doc string
		target    error
	}{
		{"version", `{"version":2,"roomColor":{"r":0,"g":0,"b":0},"layers":[]}`, ErrUnsupportedVersion},
		{"kind", `{"version":1,"layers":[{"id":"a","layer":{"type":"hexagon"}}]}`, layer.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, err := Load(strings.NewReader("{"))
	assert.Error(t, err)
}
