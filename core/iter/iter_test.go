package iter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
)

func rowsOf(it Iterator) []core.Row {
	it.Reset()
	var out []core.Row
	for it.Next() {
		out = append(out, it.Row())
	}
	return out
}

func TestDefaultIteration(t *testing.T) {
	ds := core.NewDataSet([]string{"a"})
	ds.Append(core.Row{core.Int(1)})
	ds.Append(core.Row{core.Int(2)})
	ds.Append(core.Row{core.Int(3)})

	it := NewDefault(ds)
	assert.Equal(t, KindDefault, it.KindOf())
	assert.Equal(t, 3, it.Size())
	assert.False(t, it.Valid())

	var got []int64
	for it.Next() {
		got = append(got, it.Row().Get(0).AsInt())
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.False(t, it.Next())
}

func TestStableErasePreservesOrder(t *testing.T) {
	ds := core.NewDataSet([]string{"a"})
	for i := int64(1); i <= 5; i++ {
		ds.Append(core.Row{core.Int(i)})
	}
	it := NewDefault(ds)

	for it.Next() {
		if it.Row().Get(0).AsInt()%2 == 0 {
			it.Erase()
		}
	}

	it.Reset()
	var remaining []int64
	for it.Next() {
		remaining = append(remaining, it.Row().Get(0).AsInt())
	}
	assert.Equal(t, []int64{1, 3, 5}, remaining)
}

func TestUnstableEraseRemovesTargetButNotOrderGuaranteed(t *testing.T) {
	ds := core.NewDataSet([]string{"a"})
	for i := int64(1); i <= 4; i++ {
		ds.Append(core.Row{core.Int(i)})
	}
	it := NewDefault(ds)

	require.True(t, it.Next())
	require.True(t, it.Next())
	assert.Equal(t, int64(2), it.Row().Get(0).AsInt())
	it.UnstableErase()

	remaining := rowsOf(it)
	assert.Len(t, remaining, 3)
	var vals []int64
	for _, r := range remaining {
		vals = append(vals, r.Get(0).AsInt())
	}
	assert.NotContains(t, vals, int64(2))
}

func TestNeighborsTypedAccessors(t *testing.T) {
	src := core.NewVertexID("alice")
	dst := core.NewVertexID("bob")
	edge := core.Edge{Src: src, Dst: dst, Type: 1, Rank: 0, Name: "follows", Props: map[string]core.Value{"since": core.Int(2020)}}

	ds := core.NewDataSet([]string{"__edge", "__dst"})
	ds.Append(core.Row{core.EdgeVal(edge), core.VertexVal(core.Vertex{ID: dst})})

	n := NewNeighbors(ds)
	require.True(t, n.Next())
	assert.True(t, n.GetSrcID().Equal(src))
	assert.True(t, n.GetDstID().Equal(dst))
	since, ok := n.GetEdgeProp("since")
	require.True(t, ok)
	assert.Equal(t, int64(2020), since.AsInt())
}

func TestJoinPaddedTracking(t *testing.T) {
	ds := core.NewDataSet([]string{"l", "r"})
	ds.Append(core.Row{core.Int(1), core.Int(10)})
	ds.Append(core.Row{core.Int(2), core.Null()})

	j := NewJoin(ds, []bool{false, true})
	require.True(t, j.Next())
	assert.False(t, j.IsPadded())
	require.True(t, j.Next())
	assert.True(t, j.IsPadded())
	assert.False(t, j.Next())
}

func TestPropTypedAccessors(t *testing.T) {
	v := core.Vertex{ID: core.NewVertexID("alice"), Tags: []core.TagData{{TagName: "person", Props: map[string]core.Value{"name": core.Str("Alice")}}}}
	ds := core.NewDataSet([]string{"__subject", "name"})
	ds.Append(core.Row{core.VertexVal(v), core.Str("Alice")})

	p := NewProp(ds)
	require.True(t, p.Next())
	got := p.GetVertex()
	require.NotNil(t, got)
	assert.True(t, got.ID.Equal(v.ID))
}
