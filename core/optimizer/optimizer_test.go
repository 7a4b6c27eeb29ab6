package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/catalog"
	"graphd/core/executor"
	"graphd/core/expr"
	"graphd/core/plan"
)

func TestPushFilterDownGetNeighbors(t *testing.T) {
	a := plan.NewArena()
	neighbors := a.New(plan.KindGetNeighbors)
	neighbors.Edges = plan.EdgeSpec{Outbound: true}

	filter := a.New(plan.KindFilter)
	filter.Inputs = []plan.NodeRef{neighbors.ID}
	filter.Predicate = expr.BinaryRelational{
		Op:    expr.RelGT,
		Left:  expr.VarProp{Var: "v", Prop: "age"},
		Right: expr.Constant{Value: core.Int(18)},
	}

	root, err := Optimize(a, filter.ID, []Rule{PushFilterDownGetNeighbors()})
	require.NoError(t, err)

	n := a.Get(root)
	require.NotNil(t, n)
	assert.Equal(t, plan.KindGetNeighbors, n.Kind)
	assert.NotNil(t, n.Predicate)
}

func TestCollapseProject(t *testing.T) {
	a := plan.NewArena()
	leaf := a.New(plan.KindGetVertices)

	inner := a.New(plan.KindProject)
	inner.Inputs = []plan.NodeRef{leaf.ID}
	inner.ProjectExprs = []expr.Expression{expr.VarProp{Var: "v", Prop: "name"}}
	inner.ProjectNames = []string{"name"}

	outer := a.New(plan.KindProject)
	outer.Inputs = []plan.NodeRef{inner.ID}
	outer.ProjectExprs = []expr.Expression{expr.VarProp{Var: "name", Prop: ""}}
	outer.ProjectNames = []string{"outName"}

	root, err := Optimize(a, outer.ID, []Rule{CollapseProject()})
	require.NoError(t, err)

	n := a.Get(root)
	require.NotNil(t, n)
	assert.Equal(t, plan.KindProject, n.Kind)
	require.Len(t, n.Inputs, 1)
	assert.Equal(t, leaf.ID, n.Inputs[0])

	// the rename chain composes: outer's bare reference to "name" becomes
	// a direct read of whatever inner computed for that column, not a
	// dangling reference to the node CollapseProject just removed.
	require.Len(t, n.ProjectExprs, 1)
	assert.Equal(t, expr.VarProp{Var: "v", Prop: "name"}, n.ProjectExprs[0])
}

// TestCollapseProjectSubstitutesFusedExpressions exercises the scenario
// spec.md names: Project[a1=$v.age+1,b1=$v] -> Project[a2=$a1+1,b2=$b1]
// over one row {v:{age:20}} must collapse into a single Project whose
// fused expressions still evaluate to (a2=22,b2={age:20}) rather than
// reading columns the removed lower Project no longer produces.
func TestCollapseProjectSubstitutesFusedExpressions(t *testing.T) {
	a := plan.NewArena()
	leaf := a.New(plan.KindGetVertices)
	leaf.ColNames = []string{"v"}

	inner := a.New(plan.KindProject)
	inner.Inputs = []plan.NodeRef{leaf.ID}
	inner.ProjectExprs = []expr.Expression{
		expr.BinaryArithmetic{Op: expr.ArithAdd, Left: expr.VarProp{Var: "v", Prop: "age"}, Right: expr.Constant{Value: core.Int(1)}},
		expr.VarProp{Var: "v", Prop: ""},
	}
	inner.ProjectNames = []string{"a1", "b1"}

	outer := a.New(plan.KindProject)
	outer.Inputs = []plan.NodeRef{inner.ID}
	outer.ProjectExprs = []expr.Expression{
		expr.BinaryArithmetic{Op: expr.ArithAdd, Left: expr.VarProp{Var: "a1", Prop: ""}, Right: expr.Constant{Value: core.Int(1)}},
		expr.VarProp{Var: "b1", Prop: ""},
	}
	outer.ProjectNames = []string{"a2", "b2"}

	root, err := Optimize(a, outer.ID, []Rule{CollapseProject()})
	require.NoError(t, err)

	n := a.Get(root)
	require.NotNil(t, n)
	require.Equal(t, plan.KindProject, n.Kind)
	require.Len(t, n.Inputs, 1)
	assert.Equal(t, leaf.ID, n.Inputs[0])

	reg := executor.NewRegistry()
	reg.Register(plan.KindGetVertices, func(context.Context, *executor.ExecContext, *plan.Node, []*core.DataSet) (*core.DataSet, error) {
		ds := core.NewDataSet([]string{"v"})
		ds.Append(core.Row{core.Map(map[string]core.Value{"age": core.Int(20)})})
		return ds, nil
	})
	reg.Register(plan.KindProject, projectOpForTest)

	ec := executor.NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, reg, 0, nil, nil)
	out, err := executor.NewScheduler().Execute(context.Background(), ec, a, root)
	require.NoError(t, err)
	require.Equal(t, 1, out.Size())
	assert.Equal(t, int64(22), out.Rows[0].Get(0).AsInt())
	assert.Equal(t, map[string]core.Value{"age": core.Int(20)}, out.Rows[0].Get(1).AsMap())
}

// projectOpForTest is a minimal standalone Project operator (evalExprs
// lives in core/operator, which core/optimizer cannot import without a
// cycle through core/executor), evaluating ProjectExprs row by row the
// same way core/operator's projectOp does.
func projectOpForTest(_ context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	in := inputs[0]
	out := core.NewDataSet(n.ProjectNames)
	for _, row := range in.Rows {
		rc := executor.NewRowContext(in.ColNames, row, ec.Params)
		vals := make(core.Row, len(n.ProjectExprs))
		for i, e := range n.ProjectExprs {
			v, err := e.Eval(rc)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		out.Append(vals)
	}
	return out, nil
}

func TestOptimizeTagIndexScanByFilter(t *testing.T) {
	a := plan.NewArena()
	scan := a.New(plan.KindIndexScan)
	scan.IndexName = "person_age_idx"

	filter := a.New(plan.KindFilter)
	filter.Inputs = []plan.NodeRef{scan.ID}
	filter.Predicate = expr.BinaryRelational{
		Op:    expr.RelGTE,
		Left:  expr.VarProp{Var: "v", Prop: "age"},
		Right: expr.Constant{Value: core.Int(21)},
	}

	root, err := Optimize(a, filter.ID, []Rule{OptimizeTagIndexScanByFilter()})
	require.NoError(t, err)

	n := a.Get(root)
	require.NotNil(t, n)
	assert.Equal(t, plan.KindIndexScan, n.Kind)
	require.Len(t, n.Ranges, 1)
	assert.Equal(t, "age", n.Ranges[0].Column)
	assert.True(t, n.Ranges[0].LowIncl)
}

func TestIndexFullScanTagsDescription(t *testing.T) {
	a := plan.NewArena()
	scan := a.New(plan.KindIndexScan)

	root, err := Optimize(a, scan.ID, []Rule{IndexFullScan()})
	require.NoError(t, err)

	n := a.Get(root)
	found := false
	for _, d := range n.Describe() {
		if d.Key == "scan" && d.Value == "full" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPushFilterDownAggregateOnlyWhenSafe(t *testing.T) {
	a := plan.NewArena()
	leaf := a.New(plan.KindGetVertices)
	leaf.ColNames = []string{"v"}

	agg := a.New(plan.KindAggregate)
	agg.Inputs = []plan.NodeRef{leaf.ID}
	agg.GroupBy = []expr.Expression{expr.VarProp{Var: "v", Prop: "city"}}
	agg.Aggregates = []plan.AggregateFunc{{Name: "count", Output: "cnt"}}

	filter := a.New(plan.KindFilter)
	filter.Inputs = []plan.NodeRef{agg.ID}
	filter.Predicate = expr.BinaryRelational{
		Op:    expr.RelEQ,
		Left:  expr.VarProp{Var: "v", Prop: "city"},
		Right: expr.Constant{Value: core.Str("nyc")},
	}

	root, err := Optimize(a, filter.ID, []Rule{PushFilterDownAggregate()})
	require.NoError(t, err)

	n := a.Get(root)
	require.NotNil(t, n)
	assert.Equal(t, plan.KindAggregate, n.Kind)
	require.Len(t, n.Inputs, 1)
	pushed := a.Get(n.Inputs[0])
	require.NotNil(t, pushed)
	assert.Equal(t, plan.KindFilter, pushed.Kind)

	// a filter reading the aggregate's own output must NOT be pushed down
	a2 := plan.NewArena()
	leaf2 := a2.New(plan.KindGetVertices)
	agg2 := a2.New(plan.KindAggregate)
	agg2.Inputs = []plan.NodeRef{leaf2.ID}
	agg2.Aggregates = []plan.AggregateFunc{{Name: "count", Output: "cnt"}}
	filter2 := a2.New(plan.KindFilter)
	filter2.Inputs = []plan.NodeRef{agg2.ID}
	filter2.Predicate = expr.BinaryRelational{
		Op:    expr.RelGT,
		Left:  expr.VarProp{Var: "agg", Prop: "cnt"},
		Right: expr.Constant{Value: core.Int(5)},
	}
	root2, err := Optimize(a2, filter2.ID, []Rule{PushFilterDownAggregate()})
	require.NoError(t, err)
	n2 := a2.Get(root2)
	assert.Equal(t, plan.KindFilter, n2.Kind)
}

func TestDecorrelateSelectTagsCorrelationVars(t *testing.T) {
	a := plan.NewArena()
	thenLeaf := a.New(plan.KindGetVertices)
	thenFilter := a.New(plan.KindFilter)
	thenFilter.Inputs = []plan.NodeRef{thenLeaf.ID}
	thenFilter.Predicate = expr.BinaryRelational{
		Op:    expr.RelEQ,
		Left:  expr.VarProp{Var: "outer", Prop: "id"},
		Right: expr.Constant{Value: core.Int(1)},
	}

	sel := a.New(plan.KindSelect)
	sel.Then = &plan.SubPlan{Root: thenFilter.ID, Tail: thenLeaf.ID}

	root, err := Optimize(a, sel.ID, []Rule{DecorrelateSelect()})
	require.NoError(t, err)

	n := a.Get(root)
	found := false
	for _, d := range n.Description {
		if d.Key == "thenCorrelationVars" && d.Value == "outer" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPlanCacheRoundTrip(t *testing.T) {
	cache, err := NewPlanCache(100, time.Minute)
	require.NoError(t, err)

	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person"},
	}}
	key := ComputeKey(stmt, Options{EnablePushdown: true})

	a := plan.NewArena()
	leaf := a.New(plan.KindGetVertices)
	cache.Set(key, &CachedPlan{Arena: a, Root: leaf.ID})
	cache.Wait()

	cp, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, leaf.ID, cp.Root)

	hits, _ := cache.Stats()
	assert.GreaterOrEqual(t, hits, uint64(1))
}

func TestComputeKeyDeterministic(t *testing.T) {
	stmt := ast.Statement{Clauses: []ast.Clause{ast.FetchClause{TagOrEdge: "person"}}}
	k1 := ComputeKey(stmt, Options{EnablePushdown: true})
	k2 := ComputeKey(stmt, Options{EnablePushdown: true})
	k3 := ComputeKey(stmt, Options{EnablePushdown: false})
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
