package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphd/core"
)

func personVertex(age int64) core.Vertex {
	return core.Vertex{
		ID: core.NewVertexID("p1"),
		Tags: []core.TagData{
			{TagName: "person", Props: map[string]core.Value{"age": core.Int(age)}},
		},
	}
}

func TestRowContextGetVar(t *testing.T) {
	ctx := NewRowContext([]string{"p", "n"}, core.Row{core.VertexVal(personVertex(30)), core.Int(7)}, nil)
	v, ok := ctx.GetVar("n")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v.AsInt())

	_, ok = ctx.GetVar("missing")
	assert.False(t, ok)
}

func TestRowContextGetVarProp(t *testing.T) {
	ctx := NewRowContext([]string{"p"}, core.Row{core.VertexVal(personVertex(30))}, nil)
	v, ok := ctx.GetVarProp("p", "age")
	assert.True(t, ok)
	assert.Equal(t, int64(30), v.AsInt())

	_, ok = ctx.GetVarProp("p", "missing")
	assert.False(t, ok)
}

func TestRowContextSrcDstEdgeProp(t *testing.T) {
	e := core.Edge{Src: core.NewVertexID("a"), Dst: core.NewVertexID("b"), Name: "knows", Props: map[string]core.Value{"since": core.Int(2020)}}
	ctx := NewRowContext(
		[]string{"__src", "__dst", "__edge"},
		core.Row{core.VertexVal(personVertex(20)), core.VertexVal(personVertex(40)), core.EdgeVal(e)},
		nil,
	)

	src, ok := ctx.GetSrcProp("age")
	assert.True(t, ok)
	assert.Equal(t, int64(20), src.AsInt())

	dst, ok := ctx.GetDstProp("age")
	assert.True(t, ok)
	assert.Equal(t, int64(40), dst.AsInt())

	since, ok := ctx.GetEdgeProp("since")
	assert.True(t, ok)
	assert.Equal(t, int64(2020), since.AsInt())

	cur, ok := ctx.CurrentEdge()
	assert.True(t, ok)
	assert.Equal(t, "knows", cur.Name)
}

func TestRowContextInputPropFallsBackToSoleColumn(t *testing.T) {
	ctx := NewRowContext([]string{"x"}, core.Row{core.VertexVal(personVertex(55))}, nil)
	v, ok := ctx.GetInputProp("age")
	assert.True(t, ok)
	assert.Equal(t, int64(55), v.AsInt())
}

func TestRowContextInputPropDashColumn(t *testing.T) {
	ctx := NewRowContext([]string{"-", "extra"}, core.Row{core.VertexVal(personVertex(12)), core.Int(1)}, nil)
	v, ok := ctx.GetInputProp("age")
	assert.True(t, ok)
	assert.Equal(t, int64(12), v.AsInt())
}

func TestRowContextGetParameter(t *testing.T) {
	ctx := NewRowContext(nil, nil, map[string]core.Value{"limit": core.Int(5)})
	v, ok := ctx.GetParameter("limit")
	assert.True(t, ok)
	assert.Equal(t, int64(5), v.AsInt())

	_, ok = ctx.GetParameter("missing")
	assert.False(t, ok)
}
