package refstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"graphd/core"
	"graphd/core/storageclient"
)

// loadVertexTags reads every tag bag a vertex carries within one
// partition, merging them into a single Vertex value the way
// core/iter's Prop iterator expects a vertex column to look.
func (s *Store) loadVertexTags(txn *badger.Txn, space, part int32, id core.VertexID, tags []string) (core.Vertex, error) {
	v := core.Vertex{ID: id}
	for _, tag := range tags {
		item, err := txn.Get(vertexTagKey(space, part, tag, id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return v, err
		}
		var props map[string]core.Value
		err = item.Value(func(val []byte) error {
			p, err := decodeProps(val)
			props = p
			return err
		})
		if err != nil {
			return v, err
		}
		v.Tags = append(v.Tags, core.TagData{TagName: tag, Props: props})
	}
	return v, nil
}

func tagNames(tagProps map[string][]string) []string {
	out := make([]string, 0, len(tagProps))
	for t := range tagProps {
		out = append(out, t)
	}
	return out
}

// GetVertices loads the requested vertex ids' tag property bags, one row
// per id under a "__subject" column (the convention core/iter's Prop
// specialization reads).
func (s *Store) GetVertices(ctx context.Context, space, part int32, req storageclient.VerticesRequest) (*core.DataSet, error) {
	ds := core.NewDataSet([]string{"__subject"})
	tags := tagNames(req.TagProps)
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range req.VertexIDs {
			v, err := s.loadVertexTags(txn, space, part, id, tags)
			if err != nil {
				return err
			}
			ds.Append(core.Row{core.VertexVal(v)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refstore: getVertices: %w", err)
	}
	return ds, nil
}

// GetEdges loads the requested edges' property bags.
func (s *Store) GetEdges(ctx context.Context, space, part int32, req storageclient.EdgesRequest) (*core.DataSet, error) {
	ds := core.NewDataSet([]string{"__edge"})
	err := s.db.View(func(txn *badger.Txn) error {
		for _, k := range req.EdgeKeys {
			item, err := txn.Get(edgeKey(space, part, edgeTypeName(k.Type), k.Src, k.Dst, k.Rank))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var props map[string]core.Value
			if err := item.Value(func(val []byte) error {
				p, err := decodeProps(val)
				props = p
				return err
			}); err != nil {
				return err
			}
			ds.Append(core.Row{core.EdgeVal(core.Edge{Src: k.Src, Dst: k.Dst, Type: k.Type, Rank: k.Rank, Props: props})})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refstore: getEdges: %w", err)
	}
	return ds, nil
}

// edgeTypeName stands in for a real catalog.EdgeByID lookup: refstore's
// key encoding needs a stable string per edge type, and this reference
// implementation doesn't carry a catalog handle of its own, so it keys
// directly on the numeric type instead of resolving its schema name.
func edgeTypeName(edgeType int32) string {
	return fmt.Sprintf("et%d", edgeType)
}

// GetNeighbors walks outbound edges from each requested vertex (inbound
// traversal requires a full partition scan filtering by destination,
// since this reference store keeps no dst-keyed secondary index).
func (s *Store) GetNeighbors(ctx context.Context, space, part int32, req storageclient.NeighborsRequest) (*core.DataSet, error) {
	ds := core.NewDataSet([]string{"__src", "__edge", "__dst"})
	err := s.db.View(func(txn *badger.Txn) error {
		for _, srcID := range req.VertexIDs {
			if req.Outbound || (!req.Outbound && !req.Inbound) {
				if err := s.scanOutbound(txn, space, part, srcID, req, ds); err != nil {
					return err
				}
			}
			if req.Inbound {
				if err := s.scanInbound(txn, space, part, srcID, req, ds); err != nil {
					return err
				}
			}
			if int64(ds.Size()) >= req.Limit && req.Limit > 0 {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refstore: getNeighbors: %w", err)
	}
	return ds, nil
}

func (s *Store) scanOutbound(txn *badger.Txn, space, part int32, srcID core.VertexID, req storageclient.NeighborsRequest, ds *core.DataSet) error {
	for _, et := range req.EdgeTypes {
		prefix := edgeSrcPrefix(space, part, edgeTypeName(et), srcID)
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if req.Limit > 0 && int64(ds.Size()) >= req.Limit {
				break
			}
			item := it.Item()
			var props map[string]core.Value
			if err := item.Value(func(val []byte) error {
				p, err := decodeProps(val)
				props = p
				return err
			}); err != nil {
				it.Close()
				return err
			}
			dstID, rank, ok := decodeEdgeTail(item.Key(), prefix)
			if !ok {
				continue
			}
			edge := core.Edge{Src: srcID, Dst: dstID, Type: et, Rank: rank, Props: props}
			srcVertex, err := s.loadVertexTags(txn, space, part, srcID, req.VertexProps)
			if err != nil {
				it.Close()
				return err
			}
			dstVertex, err := s.loadVertexTags(txn, space, part, dstID, req.VertexProps)
			if err != nil {
				it.Close()
				return err
			}
			ds.Append(core.Row{core.VertexVal(srcVertex), core.EdgeVal(edge), core.VertexVal(dstVertex)})
		}
		it.Close()
	}
	return nil
}

// scanInbound filters the full edge partition for edges whose tail
// decodes to dstID, the reference store's deliberately simple stand-in
// for a dst-keyed secondary index.
func (s *Store) scanInbound(txn *badger.Txn, space, part int32, dstID core.VertexID, req storageclient.NeighborsRequest, ds *core.DataSet) error {
	prefix := edgePartPrefix(space, part)
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if req.Limit > 0 && int64(ds.Size()) >= req.Limit {
			break
		}
		item := it.Item()
		src, dst, et, rank, ok := decodeFullEdgeKey(item.Key(), space, part)
		if !ok || !dst.Equal(dstID) || !containsType(req.EdgeTypes, et) {
			continue
		}
		var props map[string]core.Value
		if err := item.Value(func(val []byte) error {
			p, err := decodeProps(val)
			props = p
			return err
		}); err != nil {
			return err
		}
		edge := core.Edge{Src: src, Dst: dst, Type: et, Rank: rank, Props: props}
		srcVertex, err := s.loadVertexTags(txn, space, part, src, req.VertexProps)
		if err != nil {
			return err
		}
		dstVertex, err := s.loadVertexTags(txn, space, part, dstID, req.VertexProps)
		if err != nil {
			return err
		}
		ds.Append(core.Row{core.VertexVal(srcVertex), core.EdgeVal(edge), core.VertexVal(dstVertex)})
	}
	return nil
}

func containsType(types []int32, t int32) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

// AddVertices writes or merges each item's props under the given tag.
func (s *Store) AddVertices(ctx context.Context, space, part int32, tag string, items []storageclient.MutationItem, overwrite bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, it := range items {
			key := vertexTagKey(space, part, tag, it.VertexID)
			props := it.Props
			if !overwrite {
				if existing, err := txn.Get(key); err == nil {
					var old map[string]core.Value
					if err := existing.Value(func(val []byte) error {
						p, err := decodeProps(val)
						old = p
						return err
					}); err != nil {
						return err
					}
					merged := make(map[string]core.Value, len(old)+len(props))
					for k, v := range old {
						merged[k] = v
					}
					for k, v := range props {
						merged[k] = v
					}
					props = merged
				} else if err != badger.ErrKeyNotFound {
					return err
				}
			}
			if err := txn.Set(key, encodeProps(props)); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddEdges writes or merges each item's props under the given edge type.
func (s *Store) AddEdges(ctx context.Context, space, part int32, edgeType string, items []storageclient.MutationItem, overwrite bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, it := range items {
			key := edgeKey(space, part, edgeType, it.Src, it.Dst, it.Rank)
			props := it.Props
			if !overwrite {
				if existing, err := txn.Get(key); err == nil {
					var old map[string]core.Value
					if err := existing.Value(func(val []byte) error {
						p, err := decodeProps(val)
						old = p
						return err
					}); err != nil {
						return err
					}
					merged := make(map[string]core.Value, len(old)+len(props))
					for k, v := range old {
						merged[k] = v
					}
					for k, v := range props {
						merged[k] = v
					}
					props = merged
				} else if err != badger.ErrKeyNotFound {
					return err
				}
			}
			if err := txn.Set(key, encodeProps(props)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteVertices removes every tag a vertex carries within the
// partition.
func (s *Store) DeleteVertices(ctx context.Context, space, part int32, ids []core.VertexID) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[string(id.Bytes())] = true
	}
	prefix := vertexAnyTagPrefix(space, part)
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var toDelete [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if keyEndsWithAnyID(key, want) {
				toDelete = append(toDelete, key)
			}
		}
		it.Close()
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTags removes one named tag from each id.
func (s *Store) DeleteTags(ctx context.Context, space, part int32, ids []core.VertexID, tag string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(vertexTagKey(space, part, tag, id)); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// DeleteEdges removes the exact edges named by keys.
func (s *Store) DeleteEdges(ctx context.Context, space, part int32, keys []storageclient.EdgeKey) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			key := edgeKey(space, part, edgeTypeName(k.Type), k.Src, k.Dst, k.Rank)
			if err := txn.Delete(key); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// LookupIndex has no real secondary index to scan in this reference
// store (refstore keeps no IndexInfo-driven index tables); it always
// returns an empty dataset with the requested return columns, leaving
// real index-backed execution to a production storage backend.
func (s *Store) LookupIndex(ctx context.Context, space, part, schemaID, indexID int32, ranges []storageclient.IndexRange, returnCols []string) (*core.DataSet, error) {
	return core.NewDataSet(returnCols), nil
}

func keyEndsWithAnyID(key []byte, want map[string]bool) bool {
	for id := range want {
		if len(key) >= len(id) && string(key[len(key)-len(id):]) == id {
			return true
		}
	}
	return false
}

func decodeEdgeTail(key, prefix []byte) (core.VertexID, int64, bool) {
	rest := key[len(prefix):]
	if len(rest) != 8+20 {
		return core.VertexID{}, 0, false
	}
	rank := int64(beUint64(rest[:8]))
	var raw [20]byte
	copy(raw[:], rest[8:])
	return core.VertexIDFromRaw(raw), rank, true
}

func decodeFullEdgeKey(key []byte, space, part int32) (src, dst core.VertexID, edgeType int32, rank int64, ok bool) {
	prefix := edgePartPrefix(space, part)
	if len(key) <= len(prefix) {
		return
	}
	rest := key[len(prefix):]
	nul := -1
	for i, b := range rest {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return
	}
	typeName := string(rest[:nul])
	var parsed int32
	if _, err := fmt.Sscanf(typeName, "et%d", &parsed); err != nil {
		return
	}
	tail := rest[nul+1:]
	if len(tail) != 20+8+20 {
		return
	}
	var srcRaw, dstRaw [20]byte
	copy(srcRaw[:], tail[:20])
	rank = int64(beUint64(tail[20:28]))
	copy(dstRaw[:], tail[28:])
	return core.VertexIDFromRaw(srcRaw), core.VertexIDFromRaw(dstRaw), parsed, rank, true
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
