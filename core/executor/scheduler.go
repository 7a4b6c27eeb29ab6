// Package executor schedules and runs a plan.Arena's operator DAG,
// grounded on the teacher's executor/executor.go, executor_sequential.go,
// executor_parallel.go, worker_pool.go, and context.go, generalized from
// a Datalog relation-algebra interpreter to a plan-operator one. Scheduling
// is single-threaded cooperative within a query (spec.md §5): a node's
// inputs are resolved by recursing depth-first with memoization, and
// independent inputs of the same node run concurrently via
// golang.org/x/sync/errgroup — the errgroup-per-fan-out-site generalization
// of worker_pool.go's fixed worker pool. Cancellation uses stdlib
// context.Context (spec.md §9's idiomatic replacement for the teacher's ad
// hoc cancellation flag).
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"graphd/core"
	"graphd/core/plan"
)

// MaxLoopIterations bounds Loop execution so a condition that never
// turns false cannot run forever.
const MaxLoopIterations = 10000

// Scheduler walks a plan.Arena and runs it against a Registry of
// operator implementations.
type Scheduler struct{}

// NewScheduler returns a ready-to-use Scheduler. It carries no state of
// its own; all per-query state lives in the ExecContext passed to
// Execute.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Execute runs the plan rooted at root to completion, returning its
// output dataset.
func (s *Scheduler) Execute(ctx context.Context, ec *ExecContext, a *plan.Arena, root plan.NodeRef) (*core.DataSet, error) {
	ec.Hooks.QueryBegin(fmt.Sprintf("root=%d", root))
	out, err := s.exec(ctx, ec, a, root)
	rows := 0
	if out != nil {
		rows = out.Size()
	}
	ec.Hooks.QueryComplete(rows, err)
	return out, err
}

// exec resolves one node, memoized in ec, recursing into its inputs
// first (concurrently, when there is more than one).
func (s *Scheduler) exec(ctx context.Context, ec *ExecContext, a *plan.Arena, ref plan.NodeRef) (*core.DataSet, error) {
	if ref == 0 {
		return core.NewDataSet(nil), nil
	}
	if ds, ok := ec.getCached(ref); ok {
		return ds, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, core.NewStatus(core.TIMEOUT, "execution cancelled: %v", err)
	}

	n := a.Get(ref)
	if n == nil {
		return nil, fmt.Errorf("executor: node %d not found", ref)
	}

	switch n.Kind {
	case plan.KindLoop:
		return s.execLoop(ctx, ec, a, n)
	case plan.KindSelect:
		return s.execSelect(ctx, ec, a, n)
	case plan.KindMultiOutputs:
		return s.execMultiOutputs(ctx, ec, a, n)
	}

	inputs, err := s.execInputs(ctx, ec, a, n.Inputs)
	if err != nil {
		return nil, err
	}

	return s.runOperator(ctx, ec, n, inputs)
}

// execInputs resolves every input ref, running siblings concurrently
// through an errgroup when there is more than one — the independent-
// subtree parallelism spec.md §5 calls for, while still serializing
// within any single chain (errgroup's context cancels the rest on first
// failure).
func (s *Scheduler) execInputs(ctx context.Context, ec *ExecContext, a *plan.Arena, refs []plan.NodeRef) ([]*core.DataSet, error) {
	inputs := make([]*core.DataSet, len(refs))
	if len(refs) == 0 {
		return inputs, nil
	}
	if len(refs) == 1 {
		ds, err := s.exec(ctx, ec, a, refs[0])
		if err != nil {
			return nil, err
		}
		inputs[0] = ds
		return inputs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			ds, err := s.exec(gctx, ec, a, ref)
			if err != nil {
				return err
			}
			inputs[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// runOperator dispatches to the registered implementation for n.Kind,
// wrapping the call with the ExecContext's lifecycle hooks and memory
// accounting.
func (s *Scheduler) runOperator(ctx context.Context, ec *ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	op, ok := ec.Registry.Lookup(n.Kind)
	if !ok {
		return nil, fmt.Errorf("executor: no operator registered for %s", n.Kind)
	}

	ec.Hooks.NodeBegin(n)
	out, err := op(ctx, ec, n, inputs)
	ec.Hooks.NodeComplete(n, out, err)
	if err != nil {
		return nil, err
	}

	if out != nil {
		if err := ec.Memory.Reserve(EstimateDataSet(out)); err != nil {
			return nil, err
		}
	}
	ec.setCached(n.ID, n.OutputVar, out)
	return out, nil
}
