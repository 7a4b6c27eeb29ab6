package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/executor"
	"graphd/core/expr"
	"graphd/core/plan"
)

func newTestExecContext() *executor.ExecContext {
	return executor.NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, executor.NewRegistry(), 0, nil, nil)
}

func personVertex(age int64) core.Vertex {
	return core.Vertex{
		ID:   core.NewVertexID("alice"),
		Tags: []core.TagData{{TagName: "person", Props: map[string]core.Value{"age": core.Int(age)}}},
	}
}

func TestProjectEvaluatesExpressions(t *testing.T) {
	in := core.NewDataSet([]string{"person"})
	in.Append(core.Row{core.VertexVal(personVertex(30))})

	n := &plan.Node{
		Kind:         plan.KindProject,
		ProjectExprs: []expr.Expression{expr.VarProp{Var: "person", Prop: "age"}, expr.Constant{Value: core.Int(1)}},
		ProjectNames: []string{"age", "one"},
	}

	out, err := projectOp(context.Background(), newTestExecContext(), n, []*core.DataSet{in})
	require.NoError(t, err)
	require.Equal(t, 1, out.Size())
	assert.Equal(t, int64(30), out.Rows[0].Get(0).AsInt())
	assert.Equal(t, int64(1), out.Rows[0].Get(1).AsInt())
	assert.Equal(t, []string{"age", "one"}, out.ColNames)
}

func TestProjectEmptyInputProducesNoRows(t *testing.T) {
	in := core.NewDataSet([]string{"person"})
	n := &plan.Node{Kind: plan.KindProject, ProjectExprs: []expr.Expression{expr.Constant{Value: core.Int(1)}}, ProjectNames: []string{"one"}}
	out, err := projectOp(context.Background(), newTestExecContext(), n, []*core.DataSet{in})
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestProjectWrongArityErrors(t *testing.T) {
	n := &plan.Node{Kind: plan.KindProject}
	_, err := projectOp(context.Background(), newTestExecContext(), n, nil)
	assert.Error(t, err)
}
