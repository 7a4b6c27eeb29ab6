package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/plan"
)

func TestNewExecContextDefaults(t *testing.T) {
	ec := NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, nil, 0, nil, nil)
	assert.Same(t, DefaultRegistry, ec.Registry)
	assert.IsType(t, BaseContext{}, ec.Hooks)
	require.NotNil(t, ec.Memory)
}

func TestExecContextCacheAndVarLookup(t *testing.T) {
	ec := NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, nil, 0, nil, nil)
	ds := core.NewDataSet([]string{"n"})
	ds.Append(core.Row{core.Int(1)})

	_, ok := ec.getCached(plan.NodeRef(1))
	assert.False(t, ok)

	ec.setCached(plan.NodeRef(1), "result", ds)

	got, ok := ec.getCached(plan.NodeRef(1))
	require.True(t, ok)
	assert.Equal(t, ds, got)

	v, ok := ec.Var("result")
	require.True(t, ok)
	assert.Equal(t, ds, v)

	_, ok = ec.Var("unbound")
	assert.False(t, ok)
}

func TestExecContextSetCachedWithoutOutputVar(t *testing.T) {
	ec := NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, nil, 0, nil, nil)
	ds := core.NewDataSet(nil)
	ec.setCached(plan.NodeRef(2), "", ds)
	_, ok := ec.getCached(plan.NodeRef(2))
	assert.True(t, ok)
	assert.Empty(t, ec.vars)
}
