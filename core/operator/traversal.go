package operator

import (
	"context"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
	"graphd/core/storageclient"
)

// mergeResponses concatenates every partition's dataset into one,
// applying spec.md §4.6's partial-success policy: a response set is only
// a hard failure if every partition failed, since "any response enables
// downstream" even when siblings did not answer. A partial failure is
// still surfaced through the returned status rather than silently
// swallowed, even though execution proceeds with whatever rows did come
// back.
func mergeResponses(colNames []string, responses []storageclient.PartResponse) (*core.DataSet, core.Status, error) {
	st, err := storageclient.AggregateStatus(responses)
	if st.Code == core.EXECUTION_ERROR {
		return nil, st, err
	}
	out := core.NewDataSet(colNames)
	for _, r := range responses {
		if r.Dataset == nil {
			continue
		}
		out.Rows = append(out.Rows, r.Dataset.Rows...)
	}
	return out, st, nil
}

// vertexIDsOf collects the Vertex.ID of every value in the named column
// of in (or its sole column if name is ""), the bridge between a chained
// traversal's upstream vertex rows and the next hop's request ids.
func vertexIDsOf(in *core.DataSet, name string) []core.VertexID {
	idx := 0
	if name != "" {
		if i := in.ColumnIndex(name); i >= 0 {
			idx = i
		}
	}
	ids := make([]core.VertexID, 0, len(in.Rows))
	for _, row := range in.Rows {
		if v := row.Get(idx).AsVertex(); v != nil {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func requestVertexIDs(n *plan.Node, inputs []*core.DataSet) []core.VertexID {
	if len(n.VertexIDs) > 0 {
		return n.VertexIDs
	}
	if len(inputs) == 1 && inputs[0] != nil {
		return vertexIDsOf(inputs[0], n.SrcVar)
	}
	return nil
}

// getNeighborsOp traverses outbound/inbound edges from the requesting
// vertex set through the storage client façade, per spec.md §4.8's
// GetNeighbors behavior. Grounded on the teacher's matcher.go pattern-
// match-then-fan-out shape, generalized from a single-node Datalog index
// scan to a partitioned RPC.
func getNeighborsOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	ids := requestVertexIDs(n, inputs)
	req := storageclient.NeighborsRequest{
		VertexIDs: ids,
		EdgeTypes: n.Edges.Types,
		Outbound:  n.Edges.Outbound,
		Inbound:   n.Edges.Inbound,
		Filter:    n.Predicate,
	}
	responses, err := ec.Storage.GetNeighbors(ctx, ec.SpaceID, req)
	if err != nil {
		return nil, err
	}
	cols := n.ColNames
	if len(cols) == 0 {
		cols = []string{"__src", "__edge", "__dst"}
	}
	out, _, err := mergeResponses(cols, responses)
	if err != nil || n.Predicate == nil {
		return out, err
	}
	kept := out.Rows[:0]
	for _, row := range out.Rows {
		keep, err := evalPredicate(n.Predicate, out.ColNames, row, ec)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, row)
		}
	}
	out.Rows = kept
	return out, nil
}

// getVerticesOp fetches vertex tag properties for an explicit or
// upstream-derived id set.
func getVerticesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	ids := requestVertexIDs(n, inputs)
	tagProps := map[string][]string{}
	if n.Tag != "" {
		tagProps[n.Tag] = n.ReturnCols
	}
	req := storageclient.VerticesRequest{VertexIDs: ids, TagProps: tagProps}
	responses, err := ec.Storage.GetVertices(ctx, ec.SpaceID, req)
	if err != nil {
		return nil, err
	}
	cols := n.ColNames
	if len(cols) == 0 {
		cols = []string{"__subject"}
	}
	out, _, err := mergeResponses(cols, responses)
	return out, err
}

// getEdgesOp fetches edge properties for the explicit edge keys carried
// in n.Items (reusing the mutation-item shape's Src/Dst/Rank fields),
// typed by n.EdgeType.
func getEdgesOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	edgeType, err := edgeTypeID(ctx, ec, n.EdgeType)
	if err != nil {
		return nil, err
	}
	keys, err := edgeKeys(n.Items, edgeType, ec)
	if err != nil {
		return nil, err
	}
	req := storageclient.EdgesRequest{EdgeKeys: keys, EdgeProps: n.ReturnCols}
	responses, err := ec.Storage.GetEdges(ctx, ec.SpaceID, req)
	if err != nil {
		return nil, err
	}
	cols := n.ColNames
	if len(cols) == 0 {
		cols = []string{"__edge"}
	}
	out, _, err := mergeResponses(cols, responses)
	return out, err
}

// indexScanOp scans an index's ranges across every partition, per
// spec.md §4.8's IndexScan leaf.
func indexScanOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	var indexID, schemaID int32
	if n.TagOrEdge != "" {
		id, owner, err := lookupIndex(ctx, ec, n.IndexName, n.TagOrEdge == "edge")
		if err == nil {
			indexID, schemaID = id, owner
		}
	}
	ranges := make([]storageclient.IndexRange, len(n.Ranges))
	for i, r := range n.Ranges {
		ranges[i] = storageclient.IndexRange{Column: r.Column, Low: r.Low, High: r.High, LowIncl: r.LowIncl, HighIncl: r.HighIncl}
	}
	responses, err := ec.Storage.LookupIndex(ctx, ec.SpaceID, schemaID, indexID, ranges, n.ReturnCols)
	if err != nil {
		return nil, err
	}
	cols := n.ColNames
	if len(cols) == 0 {
		cols = n.ReturnCols
	}
	out, _, err := mergeResponses(cols, responses)
	return out, err
}

func lookupIndex(ctx context.Context, ec *executor.ExecContext, name string, isEdge bool) (id, owner int32, err error) {
	if isEdge {
		info, err := ec.Catalog.EdgeIndexByName(ctx, ec.SpaceID, name)
		return info.ID, info.OwnerID, err
	}
	info, err := ec.Catalog.TagIndexByName(ctx, ec.SpaceID, name)
	return info.ID, info.OwnerID, err
}

func edgeTypeID(ctx context.Context, ec *executor.ExecContext, name string) (int32, error) {
	if name == "" {
		return 0, nil
	}
	info, err := ec.Catalog.EdgeByName(ctx, ec.SpaceID, name)
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}
