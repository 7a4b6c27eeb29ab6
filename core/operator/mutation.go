package operator

import (
	"context"
	"fmt"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/expr"
	"graphd/core/plan"
	"graphd/core/storageclient"
)

// evalVertexID evaluates a mutation item's id/endpoint expression against
// a parameter-only context (mutation items don't read from an upstream
// row, only literals and bound parameters) and converts the resulting
// string to a VertexID.
func evalVertexID(e expr.Expression, ec *executor.ExecContext) (core.VertexID, error) {
	if e == nil {
		return core.VertexID{}, fmt.Errorf("operator: mutation item missing a required id")
	}
	v, err := e.Eval(rowContext(nil, core.Row{}, ec))
	if err != nil {
		return core.VertexID{}, err
	}
	return core.NewVertexID(v.AsString()), nil
}

func evalRank(e expr.Expression, ec *executor.ExecContext) (int64, error) {
	if e == nil {
		return 0, nil
	}
	v, err := e.Eval(rowContext(nil, core.Row{}, ec))
	if err != nil {
		return 0, err
	}
	return v.AsInt(), nil
}

func evalProps(props map[string]expr.Expression, ec *executor.ExecContext) (map[string]core.Value, error) {
	if props == nil {
		return nil, nil
	}
	ctx := rowContext(nil, core.Row{}, ec)
	out := make(map[string]core.Value, len(props))
	for name, e := range props {
		v, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// evalMutationItem resolves one plan.MutationItem's expressions to
// concrete values, leaving a field zero when the corresponding
// expression is nil (a vertex-only item carries no Src/Dst, an edge
// item with no explicit rank defaults to 0).
func evalMutationItem(it plan.MutationItem, ec *executor.ExecContext) (storageclient.MutationItem, error) {
	var out storageclient.MutationItem
	var err error
	if it.VertexID != nil {
		if out.VertexID, err = evalVertexID(it.VertexID, ec); err != nil {
			return out, err
		}
	}
	if it.Src != nil {
		if out.Src, err = evalVertexID(it.Src, ec); err != nil {
			return out, err
		}
	}
	if it.Dst != nil {
		if out.Dst, err = evalVertexID(it.Dst, ec); err != nil {
			return out, err
		}
	}
	if out.Rank, err = evalRank(it.Rank, ec); err != nil {
		return out, err
	}
	if out.Props, err = evalProps(it.Props, ec); err != nil {
		return out, err
	}
	return out, nil
}

// mutationItems resolves every item's expressions and translates the
// result to the façade's own copy, the boundary translation
// core/storageclient's package doc calls out as this package's job so
// the façade itself stays independent of core/plan.
func mutationItems(items []plan.MutationItem, ec *executor.ExecContext) ([]storageclient.MutationItem, error) {
	out := make([]storageclient.MutationItem, len(items))
	for i, it := range items {
		mi, err := evalMutationItem(it, ec)
		if err != nil {
			return nil, err
		}
		out[i] = mi
	}
	return out, nil
}

// edgeKeys resolves every item's Src/Dst/Rank into a storage edge key,
// shared by GetEdges and DeleteEdges.
func edgeKeys(items []plan.MutationItem, edgeType int32, ec *executor.ExecContext) ([]storageclient.EdgeKey, error) {
	keys := make([]storageclient.EdgeKey, len(items))
	for i, it := range items {
		src, err := evalVertexID(it.Src, ec)
		if err != nil {
			return nil, err
		}
		dst, err := evalVertexID(it.Dst, ec)
		if err != nil {
			return nil, err
		}
		rank, err := evalRank(it.Rank, ec)
		if err != nil {
			return nil, err
		}
		keys[i] = storageclient.EdgeKey{Src: src, Dst: dst, Type: edgeType, Rank: rank}
	}
	return keys, nil
}

// statusDataSet renders a mutation's aggregate status as the one-row,
// one-column dataset spec.md §4.8 gives mutation operators: "a mutation
// node's output is a single status row, not the written data".
func statusDataSet(n *plan.Node, responses []storageclient.PartResponse) (*core.DataSet, error) {
	st, err := storageclient.AggregateStatus(responses)
	cols := n.ColNames
	if len(cols) == 0 {
		cols = []string{"status"}
	}
	out := core.NewDataSet(cols)
	out.Append(core.Row{core.Str(st.Code.String())})
	if st.Code == core.EXECUTION_ERROR {
		return out, err
	}
	return out, nil
}

func insertVerticesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	items, err := mutationItems(n.Items, ec)
	if err != nil {
		return nil, err
	}
	responses, err := ec.Storage.AddVertices(ctx, ec.SpaceID, n.Tag, items, n.Upsert)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}

func insertEdgesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	items, err := mutationItems(n.Items, ec)
	if err != nil {
		return nil, err
	}
	edgeType, err := edgeTypeID(ctx, ec, n.EdgeType)
	if err != nil {
		return nil, err
	}
	responses, err := ec.Storage.AddEdges(ctx, ec.SpaceID, fmt.Sprintf("et%d", edgeType), items, n.Upsert)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}

func deleteVerticesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	responses, err := ec.Storage.DeleteVertices(ctx, ec.SpaceID, n.VertexIDs)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}

func deleteTagsOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	responses, err := ec.Storage.DeleteTags(ctx, ec.SpaceID, n.VertexIDs, n.Tag)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}

func deleteEdgesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	edgeType, err := edgeTypeID(ctx, ec, n.EdgeType)
	if err != nil {
		return nil, err
	}
	keys, err := edgeKeys(n.Items, edgeType, ec)
	if err != nil {
		return nil, err
	}
	responses, err := ec.Storage.DeleteEdges(ctx, ec.SpaceID, keys)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}

// updateOp is a read-modify-write: apply n.Items' prop overrides via an
// upsert, since the storage client façade's Backend has no dedicated
// partial-update RPC of its own — the same overwrite=false merge
// semantics refstore.AddVertices already implements satisfy an UPDATE's
// "set these fields, leave the rest" contract without a new Backend
// method.
func updateOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	items, err := mutationItems(n.Items, ec)
	if err != nil {
		return nil, err
	}
	responses, err := ec.Storage.AddVertices(ctx, ec.SpaceID, n.Tag, items, false)
	if err != nil {
		return nil, err
	}
	return statusDataSet(n, responses)
}
