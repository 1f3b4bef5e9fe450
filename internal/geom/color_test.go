package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#000000", RGB{0, 0, 0}},
		{"#FFFFFF", RGB{255, 255, 255}},
		{"d9d9d9", RGB{217, 217, 217}},
		{"#1E1e1E", RGB{30, 30, 30}},
		{"#f0a", RGB{255, 0, 170}},
		{"ABC", RGB{170, 187, 204}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHexRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "#12", "#12345", "#gggggg", "#1234567"} {
		_, err := ParseHex(in)
		assert.ErrorIs(t, err, ErrInvalidHex, in)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range []RGB{{217, 217, 217}, {0, 0, 0}, {255, 16, 1}} {
		got, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "#ff1001", RGB{255, 16, 1}.Hex())
}

func TestNRGBAOpacity(t *testing.T) {
	c := RGB{10, 20, 30}
	assert.Equal(t, uint8(255), c.NRGBA(100).A)
	assert.Equal(t, uint8(127), c.NRGBA(50).A)
	assert.Equal(t, uint8(0), c.NRGBA(-5).A)
}
