package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/expr"
)

func TestEvalConditionNilIsFalse(t *testing.T) {
	ec := newTestExecContext(NewRegistry())
	got, err := evalCondition(ec, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvalConditionReadsResultCacheVariable(t *testing.T) {
	ec := NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, NewRegistry(), 0, nil, nil)
	ds := core.NewDataSet([]string{"done"})
	ds.Append(core.Row{core.Bool(true)})
	ec.setCached(1, "state", ds)

	got, err := evalCondition(ec, expr.VarProp{Var: "state", Prop: "done"})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvalConditionFalseWhenVariableUnbound(t *testing.T) {
	ec := newTestExecContext(NewRegistry())
	got, err := evalCondition(ec, expr.VarProp{Var: "missing", Prop: "done"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAppendDataSetAccumulates(t *testing.T) {
	a := core.NewDataSet([]string{"n"})
	a.Append(core.Row{core.Int(1)})
	b := core.NewDataSet([]string{"n"})
	b.Append(core.Row{core.Int(2)})

	out := appendDataSet(nil, a)
	out = appendDataSet(out, b)
	assert.Equal(t, 2, out.Size())
}

func TestAppendDataSetNilSrcIsNoOp(t *testing.T) {
	assert.Nil(t, appendDataSet(nil, nil))
}

func TestNodeStateString(t *testing.T) {
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Unknown", NodeState(255).String())
}
