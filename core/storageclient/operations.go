package storageclient

import (
	"context"

	"graphd/core"
)

// partitionCount resolves a space's partition count through the catalog,
// the routing input every fan-out operation needs before it can group
// vertex ids by partition.
func (c *Client) partitionCount(ctx context.Context, space int32) (int32, error) {
	info, err := c.Catalog.SpaceByID(ctx, space)
	if err != nil {
		return 0, err
	}
	return info.PartsCount, nil
}

// GetNeighbors fans a neighbor traversal out across every partition
// holding one of req.VertexIDs, per spec.md §4.6.
func (c *Client) GetNeighbors(ctx context.Context, space int32, req NeighborsRequest) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := partitionVertexIDs(req.VertexIDs, partsCount)
	parts := partsOf(byPart)

	responses := fanOut(parts, func(part int32) PartResponse {
		sub := req
		sub.VertexIDs = byPart[part]
		var ds *core.DataSet
		st := withRetry(ctx, c, space, part, func() error {
			var err error
			ds, err = c.Backend.GetNeighbors(ctx, space, part, sub)
			return err
		})
		return PartResponse{Part: part, Status: st, Dataset: ds}
	})
	return responses, nil
}

// GetVertices fans a vertex property lookup out across every partition
// holding one of req.VertexIDs.
func (c *Client) GetVertices(ctx context.Context, space int32, req VerticesRequest) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := partitionVertexIDs(req.VertexIDs, partsCount)
	parts := partsOf(byPart)

	responses := fanOut(parts, func(part int32) PartResponse {
		sub := req
		sub.VertexIDs = byPart[part]
		var ds *core.DataSet
		st := withRetry(ctx, c, space, part, func() error {
			var err error
			ds, err = c.Backend.GetVertices(ctx, space, part, sub)
			return err
		})
		return PartResponse{Part: part, Status: st, Dataset: ds}
	})
	return responses, nil
}

// GetEdges fans an edge property lookup out across every partition
// holding one of req.EdgeKeys' source vertices.
func (c *Client) GetEdges(ctx context.Context, space int32, req EdgesRequest) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := make(map[int32][]EdgeKey)
	for _, k := range req.EdgeKeys {
		p := PartitionOf(k.Src, partsCount)
		byPart[p] = append(byPart[p], k)
	}
	parts := make([]int32, 0, len(byPart))
	for p := range byPart {
		parts = append(parts, p)
	}

	responses := fanOut(parts, func(part int32) PartResponse {
		sub := EdgesRequest{EdgeKeys: byPart[part], EdgeProps: req.EdgeProps}
		var ds *core.DataSet
		st := withRetry(ctx, c, space, part, func() error {
			var err error
			ds, err = c.Backend.GetEdges(ctx, space, part, sub)
			return err
		})
		return PartResponse{Part: part, Status: st, Dataset: ds}
	})
	return responses, nil
}

// AddVertices batches items by partition (keyed on VertexID) and writes
// each batch through the backend, per spec.md §4.8's mutation operator
// contract ("validate, batch by partition, call storage, surface
// aggregate status").
func (c *Client) AddVertices(ctx context.Context, space int32, tag string, items []MutationItem, overwrite bool) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := make(map[int32][]MutationItem)
	for _, it := range items {
		p := PartitionOf(it.VertexID, partsCount)
		byPart[p] = append(byPart[p], it)
	}
	parts := make([]int32, 0, len(byPart))
	for p := range byPart {
		parts = append(parts, p)
	}

	return fanOut(parts, func(part int32) PartResponse {
		st := withRetry(ctx, c, space, part, func() error {
			return c.Backend.AddVertices(ctx, space, part, tag, byPart[part], overwrite)
		})
		return PartResponse{Part: part, Status: st}
	}), nil
}

// AddEdges batches items by the source vertex's partition and writes
// each batch through the backend.
func (c *Client) AddEdges(ctx context.Context, space int32, edgeType string, items []MutationItem, overwrite bool) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := make(map[int32][]MutationItem)
	for _, it := range items {
		p := PartitionOf(it.Src, partsCount)
		byPart[p] = append(byPart[p], it)
	}
	parts := make([]int32, 0, len(byPart))
	for p := range byPart {
		parts = append(parts, p)
	}

	return fanOut(parts, func(part int32) PartResponse {
		st := withRetry(ctx, c, space, part, func() error {
			return c.Backend.AddEdges(ctx, space, part, edgeType, byPart[part], overwrite)
		})
		return PartResponse{Part: part, Status: st}
	}), nil
}

// DeleteVertices batches ids by partition and deletes each batch.
func (c *Client) DeleteVertices(ctx context.Context, space int32, ids []core.VertexID) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := partitionVertexIDs(ids, partsCount)
	parts := partsOf(byPart)

	return fanOut(parts, func(part int32) PartResponse {
		st := withRetry(ctx, c, space, part, func() error {
			return c.Backend.DeleteVertices(ctx, space, part, byPart[part])
		})
		return PartResponse{Part: part, Status: st}
	}), nil
}

// DeleteTags batches ids by partition and removes the named tag from
// each.
func (c *Client) DeleteTags(ctx context.Context, space int32, ids []core.VertexID, tag string) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := partitionVertexIDs(ids, partsCount)
	parts := partsOf(byPart)

	return fanOut(parts, func(part int32) PartResponse {
		st := withRetry(ctx, c, space, part, func() error {
			return c.Backend.DeleteTags(ctx, space, part, byPart[part], tag)
		})
		return PartResponse{Part: part, Status: st}
	}), nil
}

// DeleteEdges batches keys by the source vertex's partition and deletes
// each batch.
func (c *Client) DeleteEdges(ctx context.Context, space int32, keys []EdgeKey) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	byPart := make(map[int32][]EdgeKey)
	for _, k := range keys {
		p := PartitionOf(k.Src, partsCount)
		byPart[p] = append(byPart[p], k)
	}
	parts := make([]int32, 0, len(byPart))
	for p := range byPart {
		parts = append(parts, p)
	}

	return fanOut(parts, func(part int32) PartResponse {
		st := withRetry(ctx, c, space, part, func() error {
			return c.Backend.DeleteEdges(ctx, space, part, byPart[part])
		})
		return PartResponse{Part: part, Status: st}
	}), nil
}

// LookupIndex fans an index range scan out across every partition of the
// space, since an index range may straddle any number of them.
func (c *Client) LookupIndex(ctx context.Context, space, schemaID, indexID int32, ranges []IndexRange, returnCols []string) ([]PartResponse, error) {
	partsCount, err := c.partitionCount(ctx, space)
	if err != nil {
		return nil, err
	}
	parts := make([]int32, partsCount)
	for i := range parts {
		parts[i] = int32(i) + 1
	}

	return fanOut(parts, func(part int32) PartResponse {
		var ds *core.DataSet
		st := withRetry(ctx, c, space, part, func() error {
			var err error
			ds, err = c.Backend.LookupIndex(ctx, space, part, schemaID, indexID, ranges, returnCols)
			return err
		})
		return PartResponse{Part: part, Status: st, Dataset: ds}
	}), nil
}
