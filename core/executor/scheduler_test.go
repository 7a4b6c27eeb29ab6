package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/expr"
	"graphd/core/plan"
)

func passThroughOp(_ context.Context, _ *ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) == 0 {
		return core.NewDataSet(n.ColNames), nil
	}
	return inputs[0], nil
}

func startOp(colNames []string, rows ...core.Row) OperatorFunc {
	return func(context.Context, *ExecContext, *plan.Node, []*core.DataSet) (*core.DataSet, error) {
		ds := core.NewDataSet(colNames)
		for _, r := range rows {
			ds.Append(r)
		}
		return ds, nil
	}
}

func newTestExecContext(reg *Registry) *ExecContext {
	return NewExecContext(catalog.NewInMemory(), catalog.Session{}, 1, nil, reg, 0, nil, nil)
}

func TestSchedulerExecutesChainAndMemoizes(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register(plan.KindStart, func(context.Context, *ExecContext, *plan.Node, []*core.DataSet) (*core.DataSet, error) {
		calls++
		ds := core.NewDataSet([]string{"n"})
		ds.Append(core.Row{core.Int(1)})
		return ds, nil
	})
	reg.Register(plan.KindPassThrough, passThroughOp)

	a := plan.NewArena()
	start := a.New(plan.KindStart)
	top := a.New(plan.KindPassThrough)
	top.Inputs = []plan.NodeRef{start.ID}

	ec := newTestExecContext(reg)
	sched := NewScheduler()

	out, err := sched.Execute(context.Background(), ec, a, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Size())
	assert.Equal(t, 1, calls)

	// second resolution of the same node (e.g. a diamond dependency)
	// hits the memoized result, not a second call into the operator.
	again, err := sched.exec(context.Background(), ec, a, start.ID)
	require.NoError(t, err)
	assert.Same(t, out, again)
	assert.Equal(t, 1, calls)
}

func TestSchedulerRunsConcurrentInputs(t *testing.T) {
	reg := NewRegistry()
	reg.Register(plan.KindStart, startOp([]string{"n"}, core.Row{core.Int(1)}))
	reg.Register(plan.KindUnion, func(_ context.Context, _ *ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
		out := core.NewDataSet(n.ColNames)
		for _, in := range inputs {
			out.Rows = append(out.Rows, in.Rows...)
		}
		return out, nil
	})

	a := plan.NewArena()
	left := a.New(plan.KindStart)
	right := a.New(plan.KindStart)
	union := a.New(plan.KindUnion)
	union.ColNames = []string{"n"}
	union.Inputs = []plan.NodeRef{left.ID, right.ID}

	ec := newTestExecContext(reg)
	out, err := NewScheduler().Execute(context.Background(), ec, a, union.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Size())
}

func TestSchedulerMissingOperatorErrors(t *testing.T) {
	a := plan.NewArena()
	n := a.New(plan.KindFilter)
	ec := newTestExecContext(NewRegistry())
	_, err := NewScheduler().Execute(context.Background(), ec, a, n.ID)
	require.Error(t, err)
}

func TestSchedulerRespectsCancellation(t *testing.T) {
	a := plan.NewArena()
	n := a.New(plan.KindStart)
	ec := newTestExecContext(NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScheduler().Execute(ctx, ec, a, n.ID)
	require.Error(t, err)
}

func TestSchedulerZeroRefReturnsEmptyDataSet(t *testing.T) {
	a := plan.NewArena()
	ec := newTestExecContext(NewRegistry())
	out, err := NewScheduler().exec(context.Background(), ec, a, plan.NodeRef(0))
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestSchedulerSelectRunsMatchingBranch(t *testing.T) {
	reg := NewRegistry()
	a := plan.NewArena()

	thenStart := a.New(plan.KindStart)
	elseStart := a.New(plan.KindStart)
	reg.Register(plan.KindStart, startOp([]string{"branch"}, core.Row{core.Str("default")}))

	sel := a.New(plan.KindSelect)
	sel.Condition = expr.Constant{Value: core.Bool(true)}
	sel.Then = &plan.SubPlan{Root: thenStart.ID}
	sel.Else = &plan.SubPlan{Root: elseStart.ID}
	sel.ColNames = []string{"branch"}

	ec := newTestExecContext(reg)
	out, err := NewScheduler().Execute(context.Background(), ec, a, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Size())
}

func TestSchedulerSelectFalseConditionRunsElse(t *testing.T) {
	reg := NewRegistry()
	a := plan.NewArena()

	thenStart := a.New(plan.KindStart)
	elseStart := a.New(plan.KindStart)

	sel := a.New(plan.KindSelect)
	sel.Condition = expr.Constant{Value: core.Bool(false)}
	sel.Then = &plan.SubPlan{Root: thenStart.ID}
	sel.Else = &plan.SubPlan{Root: elseStart.ID}
	sel.ColNames = []string{"x"}

	calledThen, calledElse := false, false
	ec := newTestExecContext(reg)
	reg.Register(plan.KindStart, func(_ context.Context, _ *ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
		if n.ID == thenStart.ID {
			calledThen = true
		}
		if n.ID == elseStart.ID {
			calledElse = true
		}
		return core.NewDataSet([]string{"x"}), nil
	})

	_, err := NewScheduler().Execute(context.Background(), ec, a, sel.ID)
	require.NoError(t, err)
	assert.False(t, calledThen)
	assert.True(t, calledElse)
}

func TestSchedulerSelectWithNoBranchReturnsEmpty(t *testing.T) {
	a := plan.NewArena()
	sel := a.New(plan.KindSelect)
	sel.Condition = expr.Constant{Value: core.Bool(true)}
	sel.ColNames = []string{"x"}

	ec := newTestExecContext(NewRegistry())
	out, err := NewScheduler().Execute(context.Background(), ec, a, sel.ID)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestSchedulerMultiOutputsConcatenatesBranches(t *testing.T) {
	reg := NewRegistry()
	reg.Register(plan.KindStart, startOp([]string{"n"}, core.Row{core.Int(1)}))

	a := plan.NewArena()
	b1 := a.New(plan.KindStart)
	b2 := a.New(plan.KindStart)
	mo := a.New(plan.KindMultiOutputs)
	mo.Inputs = []plan.NodeRef{b1.ID, b2.ID}
	mo.ColNames = []string{"n"}

	ec := newTestExecContext(reg)
	out, err := NewScheduler().Execute(context.Background(), ec, a, mo.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Size())
}

func TestSchedulerLoopAccumulatesIterations(t *testing.T) {
	reg := NewRegistry()
	runs := 0
	reg.Register(plan.KindStart, func(context.Context, *ExecContext, *plan.Node, []*core.DataSet) (*core.DataSet, error) {
		runs++
		ds := core.NewDataSet([]string{"n"})
		ds.Append(core.Row{core.Int(int64(runs))})
		return ds, nil
	})

	a := plan.NewArena()
	body := a.New(plan.KindStart)

	loop := a.New(plan.KindLoop)
	loop.Body = &plan.SubPlan{Root: body.ID}
	loop.ColNames = []string{"n"}
	loop.OutputVar = "count"
	// a condition that becomes false once "count" holds >= 3 rows,
	// simulated here with a constant condition flipped via a bound var
	// read from the result cache is more than this unit test needs;
	// instead exercise a fixed number of passes via a stateful closure.
	passes := 0
	loop.Condition = fixedCountCondition(&passes, 3)

	ec := newTestExecContext(reg)
	out, err := NewScheduler().Execute(context.Background(), ec, a, loop.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Size())
	assert.Equal(t, 3, runs)
}

func TestSchedulerLoopExposesIterCounterAndClearsBodyCache(t *testing.T) {
	reg := NewRegistry()
	reg.Register(plan.KindStart, func(_ context.Context, ec *ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
		v := ec.Params["iter"]
		ds := core.NewDataSet([]string{"iter"})
		ds.Append(core.Row{v})
		return ds, nil
	})

	a := plan.NewArena()
	body := a.New(plan.KindStart)

	loop := a.New(plan.KindLoop)
	loop.Body = &plan.SubPlan{Root: body.ID}
	loop.ColNames = []string{"iter"}
	loop.Condition = expr.BinaryRelational{
		Op:    expr.RelLT,
		Left:  expr.Parameter{Name: "iter"},
		Right: expr.Constant{Value: core.Int(3)},
	}

	ec := newTestExecContext(reg)
	out, err := NewScheduler().Execute(context.Background(), ec, a, loop.ID)
	require.NoError(t, err)
	require.Equal(t, 3, out.Size())
	for i, row := range out.Rows {
		assert.Equal(t, int64(i), row.Get(0).AsInt())
	}
}

// fixedCountCondition returns an expr.Expression whose Eval returns true
// exactly n times before returning false, used to drive a bounded number
// of Loop iterations without depending on result-cache variable state.
func fixedCountCondition(passes *int, n int) expr.Expression {
	return stubCondition{passes: passes, n: n}
}

type stubCondition struct {
	passes *int
	n      int
}

func (s stubCondition) Kind() expr.Kind  { return expr.KindConstant }
func (s stubCondition) Encode() []byte   { return nil }
func (s stubCondition) Eval(expr.Context) (core.Value, error) {
	if *s.passes >= s.n {
		return core.Bool(false), nil
	}
	*s.passes++
	return core.Bool(true), nil
}
func (s stubCondition) Clone() expr.Expression             { return s }
func (s stubCondition) Visit(fn func(expr.Expression) bool) { fn(s) }
func (s stubCondition) String() string                      { return "stubCondition" }
func (s stubCondition) Equal(other expr.Expression) bool {
	o, ok := other.(stubCondition)
	return ok && o.n == s.n
}
