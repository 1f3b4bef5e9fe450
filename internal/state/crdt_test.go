package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func st(l uint64, site string) Stamp { return Stamp{Lamport: l, Site: site} }

func TestStampOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b Stamp
		want bool
	}{
		{"higher lamport", st(2, "a"), st(1, "z"), true},
		{"lower lamport", st(1, "z"), st(2, "a"), false},
		{"tie breaks on site", st(3, "b"), st(3, "a"), true},
		{"equal", st(3, "a"), st(3, "a"), false},
		{"later op of the same batch", Stamp{Lamport: 3, Site: "a", Seq: 1}, st(3, "a"), true},
		{"site beats sequence", st(3, "b"), Stamp{Lamport: 3, Site: "a", Seq: 4}, true},
		{"anything beats zero", st(1, ""), Stamp{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.After(tt.b))
		})
	}
}

func TestClockMovesPastRemoteTime(t *testing.T) {
	c := NewClock("a")
	assert.Equal(t, st(1, "a"), c.Tick())
	c.Update(10)
	c.Update(4)
	assert.Equal(t, st(11, "a"), c.Tick())
	assert.NotEmpty(t, NewClock("").Site())
}

func TestApplyIsIdempotent(t *testing.T) {
	d := NewDocument()
	ops := []Op{
		{Kind: OpPutObject, Target: shapes, Key: "s", Fields: Fields{"x": raw(1)}, Stamp: st(1, "a")},
		{Kind: OpListInsert, Target: order, Key: "s", Pos: &Stamp{Lamport: 2, Site: "a"}, Stamp: st(2, "a")},
		{Kind: OpSetRoot, Target: "color", Value: raw("#fff"), Stamp: st(3, "a")},
	}
	for _, op := range ops {
		changed, err := d.Apply(op)
		require.NoError(t, err)
		assert.True(t, changed, op.Kind)
	}
	for _, op := range ops {
		changed, err := d.Apply(op)
		require.NoError(t, err)
		assert.False(t, changed, op.Kind)
	}
	assert.Equal(t, []string{"s"}, d.List(order))
}

func TestDeleteBeatsOlderPut(t *testing.T) {
	d := NewDocument()
	_, _ = d.Apply(Op{Kind: OpDeleteObject, Target: shapes, Key: "s", Stamp: st(5, "b")})
	_, _ = d.Apply(Op{Kind: OpPutObject, Target: shapes, Key: "s", Stamp: st(4, "a")})
	assert.False(t, d.Has(shapes, "s"))

	_, _ = d.Apply(Op{Kind: OpPutObject, Target: shapes, Key: "s", Stamp: st(6, "a")})
	assert.True(t, d.Has(shapes, "s"), "a newer put revives the object")
}

func TestListInsertNeedsPosition(t *testing.T) {
	_, err := NewDocument().Apply(Op{Kind: OpListInsert, Target: order, Key: "s", Stamp: st(1, "a")})
	assert.Error(t, err)
}

func TestInvertBeforeApply(t *testing.T) {
	d := NewDocument()
	put := Op{Kind: OpPutObject, Target: shapes, Key: "s", Fields: Fields{"x": raw(1)}, Stamp: st(1, "a")}
	inv := d.Invert(put)
	require.Len(t, inv, 1)
	assert.Equal(t, OpDeleteObject, inv[0].Kind)
	_, _ = d.Apply(put)

	set := Op{Kind: OpSetFields, Target: shapes, Key: "s", Fields: Fields{"x": raw(2), "y": raw(3)}, Stamp: st(2, "a")}
	inv = d.Invert(set)
	require.Len(t, inv, 1)
	assert.JSONEq(t, `1`, string(inv[0].Fields["x"]))
	assert.JSONEq(t, `null`, string(inv[0].Fields["y"]))

	assert.Nil(t, d.Invert(Op{Kind: OpDeleteObject, Target: shapes, Key: "missing"}))
}
