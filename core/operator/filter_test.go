package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/expr"
	"graphd/core/plan"
)

func ageRow(age int64) core.Row {
	return core.Row{core.VertexVal(personVertex(age))}
}

func TestFilterKeepsMatchingRows(t *testing.T) {
	in := core.NewDataSet([]string{"person"})
	in.Append(ageRow(30))
	in.Append(ageRow(10))

	pred := expr.BinaryRelational{
		Op:    expr.RelGT,
		Left:  expr.VarProp{Var: "person", Prop: "age"},
		Right: expr.Constant{Value: core.Int(18)},
	}
	n := &plan.Node{Kind: plan.KindFilter, Predicate: pred}
	out, err := filterOp(context.Background(), newTestExecContext(), n, []*core.DataSet{in})
	require.NoError(t, err)
	require.Equal(t, 1, out.Size())
	age, ok := out.Rows[0].Get(0).AsVertex().Prop("person", "age")
	require.True(t, ok)
	assert.Equal(t, int64(30), age.AsInt())
}

func TestFilterNullPredicateDropsRow(t *testing.T) {
	in := core.NewDataSet([]string{"person"})
	in.Append(core.Row{core.VertexVal(core.Vertex{ID: core.NewVertexID("x")})})

	pred := expr.VarProp{Var: "person", Prop: "missing"}
	n := &plan.Node{Kind: plan.KindFilter, Predicate: pred}
	out, err := filterOp(context.Background(), newTestExecContext(), n, []*core.DataSet{in})
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestFilterWrongArityErrors(t *testing.T) {
	n := &plan.Node{Kind: plan.KindFilter}
	_, err := filterOp(context.Background(), newTestExecContext(), n, nil)
	assert.Error(t, err)
}
