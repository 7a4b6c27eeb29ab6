package executor

import (
	"context"

	"graphd/core"
	"graphd/core/expr"
	"graphd/core/plan"
)

// NodeState is the lifecycle of any node's execution, per spec.md §4.8
// ("any node (states: Pending -> Running -> Succeeded|Failed|Cancelled)").
// The scheduler itself is stateless between calls (memoized results live
// in ExecContext), so this enum exists for the stateful Loop/Select/
// MultiOutputs machines below and for instrumentation to report.
type NodeState uint8

const (
	StatePending NodeState = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s NodeState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// LoopState is Loop's state machine, per spec.md §4.8: "FirstCheck ->
// BodyRunning -> CheckAgain -> Done".
type LoopState uint8

const (
	LoopFirstCheck LoopState = iota
	LoopBodyRunning
	LoopCheckAgain
	LoopDone
)

// evalCondition evaluates a boolean condition expression against an
// empty row context (Loop/Select conditions read bound result-cache
// variables via VarProp, not the current row of some dataset), returning
// false on a null or non-bool result; an evaluation error is returned to
// the caller and fails the query.
func evalCondition(ec *ExecContext, e expr.Expression) (bool, error) {
	if e == nil {
		return false, nil
	}
	v, err := e.Eval(newLoopEvalContext(ec))
	if err != nil {
		return false, err
	}
	return !v.IsNull() && v.Kind() == core.KindBool && v.AsBool(), nil
}

// loopEvalContext resolves VarProp/InputProp reads in a Loop/Select
// condition against ExecContext's named result-cache variables rather
// than a single row, since these conditions run between dataset
// productions, not per-row.
type loopEvalContext struct {
	ec *ExecContext
}

func newLoopEvalContext(ec *ExecContext) *loopEvalContext { return &loopEvalContext{ec: ec} }

func (c *loopEvalContext) GetVar(name string) (core.Value, bool) {
	ds, ok := c.ec.Var(name)
	if !ok || ds.IsEmpty() {
		return core.Value{}, false
	}
	return core.VertexVal(core.Vertex{}), false // whole-dataset binding has no single scalar form
}

func (c *loopEvalContext) GetVarProp(name, prop string) (core.Value, bool) {
	ds, ok := c.ec.Var(name)
	if !ok || ds.IsEmpty() {
		return core.Value{}, false
	}
	idx := ds.ColumnIndex(prop)
	if idx < 0 {
		return core.Value{}, false
	}
	return ds.Rows[0].Get(idx), true
}

func (c *loopEvalContext) GetSrcProp(string) (core.Value, bool)    { return core.Value{}, false }
func (c *loopEvalContext) GetDstProp(string) (core.Value, bool)    { return core.Value{}, false }
func (c *loopEvalContext) GetEdgeProp(string) (core.Value, bool)   { return core.Value{}, false }
func (c *loopEvalContext) GetInputProp(string) (core.Value, bool)  { return core.Value{}, false }
func (c *loopEvalContext) GetParameter(name string) (core.Value, bool) {
	v, ok := c.ec.Params[name]
	return v, ok
}
func (c *loopEvalContext) CurrentEdge() (core.Edge, bool) { return core.Edge{}, false }

// execLoop drives a Loop node's FirstCheck -> BodyRunning -> CheckAgain
// -> Done state machine, accumulating every iteration's body output rows
// into one result dataset. Per spec.md §4.5, the body subtree must be
// idempotent in its published variable — the runtime clears it before
// each iteration — and an iteration counter is exposed so a condition
// like `iter<3` can terminate the loop and a body expression can read the
// same counter (bound as the "iter" parameter, resolved through
// expr.Context's GetParameter the same way any bound statement parameter
// is).
func (s *Scheduler) execLoop(ctx context.Context, ec *ExecContext, a *plan.Arena, n *plan.Node) (*core.DataSet, error) {
	state := LoopFirstCheck
	var out *core.DataSet
	iteration := int64(0)
	for i := 0; i < MaxLoopIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, core.NewStatus(core.TIMEOUT, "loop cancelled: %v", err)
		}
		switch state {
		case LoopFirstCheck, LoopCheckAgain:
			ec.setParam("iter", core.Int(iteration))
			cont, err := evalCondition(ec, n.Condition)
			if err != nil {
				return nil, err
			}
			if !cont {
				state = LoopDone
				continue
			}
			state = LoopBodyRunning
		case LoopBodyRunning:
			if n.Body == nil {
				state = LoopDone
				continue
			}
			clearBodySubtree(ec, a, n.Body.Root)
			bodyOut, err := s.exec(ctx, ec, a, n.Body.Root)
			if err != nil {
				return nil, err
			}
			out = appendDataSet(out, bodyOut)
			iteration++
			state = LoopCheckAgain
		case LoopDone:
			if out == nil {
				out = core.NewDataSet(n.ColNames)
			}
			return out, nil
		}
	}
	return nil, core.NewStatus(core.EXECUTION_ERROR, "loop exceeded %d iterations without terminating", MaxLoopIterations)
}

// clearBodySubtree evicts every node's memoized result (and published
// variable) reachable from ref, including through nested Loop/Select
// branches, so a Loop's body subtree recomputes fresh on its next pass
// instead of replaying the prior iteration's cached dataset.
func clearBodySubtree(ec *ExecContext, a *plan.Arena, ref plan.NodeRef) {
	n := a.Get(ref)
	if n == nil {
		return
	}
	ec.clearNode(ref, n.OutputVar)
	for _, in := range n.Inputs {
		clearBodySubtree(ec, a, in)
	}
	if n.Body != nil {
		clearBodySubtree(ec, a, n.Body.Root)
	}
	if n.Then != nil {
		clearBodySubtree(ec, a, n.Then.Root)
	}
	if n.Else != nil {
		clearBodySubtree(ec, a, n.Else.Root)
	}
}

// appendDataSet concatenates src's rows onto dst (creating dst from
// src's column layout on first use), used to accumulate Loop iterations.
func appendDataSet(dst, src *core.DataSet) *core.DataSet {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = core.NewDataSet(src.ColNames)
	}
	dst.Rows = append(dst.Rows, src.Rows...)
	return dst
}

// SelectState is Select's state machine, per spec.md §4.8: here collapsed
// to direct branch dispatch since Idle/Running/Done add no information a
// single evaluate-then-run call doesn't already carry.
type SelectState uint8

const (
	SelectPending SelectState = iota
	SelectEvaluated
)

// execSelect evaluates a Select node's Condition and runs whichever of
// Then/Else matches, per spec.md §4.8.
func (s *Scheduler) execSelect(ctx context.Context, ec *ExecContext, a *plan.Arena, n *plan.Node) (*core.DataSet, error) {
	cond, err := evalCondition(ec, n.Condition)
	if err != nil {
		return nil, err
	}
	branch := n.Else
	if cond {
		branch = n.Then
	}
	if branch == nil {
		return core.NewDataSet(n.ColNames), nil
	}
	return s.exec(ctx, ec, a, branch.Root)
}

// MultiOutputsState is MultiOutputs' state machine, per spec.md §4.8:
// "Idle -> Running -> Fulfilled".
type MultiOutputsState uint8

const (
	MultiOutputsIdle MultiOutputsState = iota
	MultiOutputsRunning
	MultiOutputsFulfilled
)

// execMultiOutputs runs every input branch (concurrently, via
// execInputs) and concatenates their rows, the Idle -> Running ->
// Fulfilled machine spec.md §4.8 names collapsed into one call since this
// runtime has no separate "awaiting promise" suspension point distinct
// from an ordinary input dependency.
func (s *Scheduler) execMultiOutputs(ctx context.Context, ec *ExecContext, a *plan.Arena, n *plan.Node) (*core.DataSet, error) {
	branches, err := s.execInputs(ctx, ec, a, n.Inputs)
	if err != nil {
		return nil, err
	}
	var out *core.DataSet
	for _, b := range branches {
		out = appendDataSet(out, b)
	}
	if out == nil {
		out = core.NewDataSet(n.ColNames)
	}
	return out, nil
}
