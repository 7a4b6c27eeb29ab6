// Package operator implements plan.Kind's concrete semantics and
// registers each implementation into an executor.Registry at init time,
// generalizing the teacher's relation.go/filter.go/join.go/... family of
// relation-algebra operators to the plan operator set spec.md §4.8 names.
// Every operator is a pure function of its already-executed input
// datasets plus the node's own fields, consuming an executor.ExecContext
// only for the catalog handle, bound parameters, and the storage client
// facade — never for scheduling, which stays in core/executor.
package operator

import (
	"context"
	"fmt"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/expr"
	"graphd/core/plan"
)

func init() {
	executor.DefaultRegistry.Register(plan.KindStart, startOp)
	executor.DefaultRegistry.Register(plan.KindPassThrough, passThroughOp)
	executor.DefaultRegistry.Register(plan.KindProject, projectOp)
	executor.DefaultRegistry.Register(plan.KindFilter, filterOp)
	executor.DefaultRegistry.Register(plan.KindLimit, limitOp)
	executor.DefaultRegistry.Register(plan.KindOrderBy, orderByOp)
	executor.DefaultRegistry.Register(plan.KindTopN, topNOp)
	executor.DefaultRegistry.Register(plan.KindDedup, dedupOp)
	executor.DefaultRegistry.Register(plan.KindUnion, unionOp)
	executor.DefaultRegistry.Register(plan.KindIntersect, intersectOp)
	executor.DefaultRegistry.Register(plan.KindMinus, minusOp)
	executor.DefaultRegistry.Register(plan.KindInnerJoin, innerJoinOp)
	executor.DefaultRegistry.Register(plan.KindLeftJoin, leftJoinOp)
	executor.DefaultRegistry.Register(plan.KindCartesianProduct, cartesianProductOp)
	executor.DefaultRegistry.Register(plan.KindDataCollect, dataCollectOp)
	executor.DefaultRegistry.Register(plan.KindAggregate, aggregateOp)
	executor.DefaultRegistry.Register(plan.KindGetNeighbors, getNeighborsOp)
	executor.DefaultRegistry.Register(plan.KindGetVertices, getVerticesOp)
	executor.DefaultRegistry.Register(plan.KindGetEdges, getEdgesOp)
	executor.DefaultRegistry.Register(plan.KindIndexScan, indexScanOp)
	executor.DefaultRegistry.Register(plan.KindInsertVertices, insertVerticesOp)
	executor.DefaultRegistry.Register(plan.KindInsertEdges, insertEdgesOp)
	executor.DefaultRegistry.Register(plan.KindDeleteVertices, deleteVerticesOp)
	executor.DefaultRegistry.Register(plan.KindDeleteTags, deleteTagsOp)
	executor.DefaultRegistry.Register(plan.KindDeleteEdges, deleteEdgesOp)
	executor.DefaultRegistry.Register(plan.KindUpdate, updateOp)
	for k := plan.KindCreateSpace; k <= plan.KindShowX; k++ {
		executor.DefaultRegistry.Register(k, ddlOp)
	}
}

// startOp produces the empty, zero-column seed dataset every plan's leaf
// chain ultimately bottoms out at (a Start node has no inputs).
func startOp(context.Context, *executor.ExecContext, *plan.Node, []*core.DataSet) (*core.DataSet, error) {
	ds := core.NewDataSet(nil)
	ds.Append(core.Row{})
	return ds, nil
}

// passThroughOp forwards its sole input unchanged, used by rewrites that
// need a placeholder node (e.g. an optimizer rule that folds a Filter
// into its child but must leave the ref resolvable).
func passThroughOp(_ context.Context, _ *executor.ExecContext, _ *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) == 0 || inputs[0] == nil {
		return core.NewDataSet(nil), nil
	}
	return inputs[0], nil
}

func soleInput(inputs []*core.DataSet) *core.DataSet {
	if len(inputs) == 0 || inputs[0] == nil {
		return core.NewDataSet(nil)
	}
	return inputs[0]
}

func rowContext(colNames []string, row core.Row, ec *executor.ExecContext) *executor.RowContext {
	return executor.NewRowContext(colNames, row, ec.Params)
}

func wrongArity(n *plan.Node, got int) error {
	return fmt.Errorf("operator: %s: unexpected input count %d", n.Kind, got)
}

// evalExprs evaluates every expression in exprs against row, short-circuiting
// on the first error, shared by Project/Aggregate/GroupBy key evaluation.
func evalExprs(exprs []expr.Expression, ctx expr.Context) ([]core.Value, error) {
	out := make([]core.Value, len(exprs))
	for i, e := range exprs {
		v, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
