package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"graphd/core"
)

// InMemory is a read-mostly catalog backed by a single RWMutex, grounded
// on the teacher's storage/database.go Database struct (RWMutex-guarded
// maps plus an atomic revision counter). It is a reference implementation
// for tests and the demo CLI, not a production meta-store: durability and
// replication are explicitly out of scope.
type InMemory struct {
	mu       sync.RWMutex
	rev      atomic.Int32
	spaces   map[int32]SpaceInfo
	spaceIDs map[string]int32

	tags    map[int32]map[int32]TagInfo // spaceID -> tagID -> info
	tagIDs  map[int32]map[string]int32
	edges   map[int32]map[int32]EdgeInfo
	edgeIDs map[int32]map[string]int32

	tagIndexes  map[int32]map[string]IndexInfo
	edgeIndexes map[int32]map[string]IndexInfo
	indexes     map[int32][]IndexInfo

	leaders map[int32][]PartLeader

	authorize func(Session, int32, Permission) error
}

// NewInMemory builds an empty catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		spaces:      make(map[int32]SpaceInfo),
		spaceIDs:    make(map[string]int32),
		tags:        make(map[int32]map[int32]TagInfo),
		tagIDs:      make(map[int32]map[string]int32),
		edges:       make(map[int32]map[int32]EdgeInfo),
		edgeIDs:     make(map[int32]map[string]int32),
		tagIndexes:  make(map[int32]map[string]IndexInfo),
		edgeIndexes: make(map[int32]map[string]IndexInfo),
		indexes:     make(map[int32][]IndexInfo),
		leaders:     make(map[int32][]PartLeader),
		authorize:   func(Session, int32, Permission) error { return nil },
	}
}

// SetAuthorizer overrides the default allow-all permission check, used by
// tests that need to exercise PERMISSION_ERROR paths.
func (c *InMemory) SetAuthorizer(fn func(Session, int32, Permission) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorize = fn
}

// AddSpace registers a space and its partition count/leaders.
func (c *InMemory) AddSpace(info SpaceInfo, leaders []PartLeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spaces[info.ID] = info
	c.spaceIDs[info.Name] = info.ID
	c.tags[info.ID] = make(map[int32]TagInfo)
	c.tagIDs[info.ID] = make(map[string]int32)
	c.edges[info.ID] = make(map[int32]EdgeInfo)
	c.edgeIDs[info.ID] = make(map[string]int32)
	c.tagIndexes[info.ID] = make(map[string]IndexInfo)
	c.edgeIndexes[info.ID] = make(map[string]IndexInfo)
	c.leaders[info.ID] = leaders
	c.rev.Add(1)
}

// AddTag registers a tag schema under a space.
func (c *InMemory) AddTag(info TagInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[info.SpaceID][info.ID] = info
	c.tagIDs[info.SpaceID][info.Name] = info.ID
	c.rev.Add(1)
}

// AddEdge registers an edge type schema under a space.
func (c *InMemory) AddEdge(info EdgeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges[info.SpaceID][info.ID] = info
	c.edgeIDs[info.SpaceID][info.Name] = info.ID
	c.rev.Add(1)
}

// AddIndex registers a tag or edge index.
func (c *InMemory) AddIndex(info IndexInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info.IsEdge {
		c.edgeIndexes[info.SpaceID][info.Name] = info
	} else {
		c.tagIndexes[info.SpaceID][info.Name] = info
	}
	c.indexes[info.SpaceID] = append(c.indexes[info.SpaceID], info)
	c.rev.Add(1)
}

// Revision returns the catalog's current mutation counter, useful for
// cache invalidation (e.g. the plan cache in C7 keys on it).
func (c *InMemory) Revision() int32 { return c.rev.Load() }

func (c *InMemory) SpaceByName(_ context.Context, name string) (SpaceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.spaceIDs[name]
	if !ok {
		return SpaceInfo{}, &ErrNotFound{Code: core.SPACE_NOT_FOUND, Kind: "space", Lookup: name}
	}
	return c.spaces[id], nil
}

func (c *InMemory) SpaceByID(_ context.Context, id int32) (SpaceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.spaces[id]
	if !ok {
		return SpaceInfo{}, &ErrNotFound{Code: core.SPACE_NOT_FOUND, Kind: "space", Lookup: fmt.Sprintf("#%d", id)}
	}
	return info, nil
}

func (c *InMemory) ListSpaces(_ context.Context) ([]SpaceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]SpaceInfo, 0, len(c.spaces))
	for _, s := range c.spaces {
		out = append(out, s)
	}
	return out, nil
}

func (c *InMemory) TagByName(_ context.Context, spaceID int32, name string) (TagInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.tagIDs[spaceID][name]
	if !ok {
		return TagInfo{}, &ErrNotFound{Code: core.TAG_NOT_FOUND, Kind: "tag", Lookup: name}
	}
	return c.tags[spaceID][id], nil
}

func (c *InMemory) TagByID(_ context.Context, spaceID, id int32) (TagInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tags[spaceID][id]
	if !ok {
		return TagInfo{}, &ErrNotFound{Code: core.TAG_NOT_FOUND, Kind: "tag", Lookup: fmt.Sprintf("#%d", id)}
	}
	return info, nil
}

func (c *InMemory) ListTags(_ context.Context, spaceID int32) ([]TagInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]TagInfo, 0, len(c.tags[spaceID]))
	for _, t := range c.tags[spaceID] {
		out = append(out, t)
	}
	return out, nil
}

func (c *InMemory) EdgeByName(_ context.Context, spaceID int32, name string) (EdgeInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.edgeIDs[spaceID][name]
	if !ok {
		return EdgeInfo{}, &ErrNotFound{Code: core.EDGE_NOT_FOUND, Kind: "edge", Lookup: name}
	}
	return c.edges[spaceID][id], nil
}

func (c *InMemory) EdgeByID(_ context.Context, spaceID, id int32) (EdgeInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.edges[spaceID][id]
	if !ok {
		return EdgeInfo{}, &ErrNotFound{Code: core.EDGE_NOT_FOUND, Kind: "edge", Lookup: fmt.Sprintf("#%d", id)}
	}
	return info, nil
}

func (c *InMemory) ListEdges(_ context.Context, spaceID int32) ([]EdgeInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]EdgeInfo, 0, len(c.edges[spaceID]))
	for _, e := range c.edges[spaceID] {
		out = append(out, e)
	}
	return out, nil
}

func (c *InMemory) TagIndexByName(_ context.Context, spaceID int32, name string) (IndexInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tagIndexes[spaceID][name]
	if !ok {
		return IndexInfo{}, &ErrNotFound{Code: core.INDEX_NOT_FOUND, Kind: "tag index", Lookup: name}
	}
	return info, nil
}

func (c *InMemory) EdgeIndexByName(_ context.Context, spaceID int32, name string) (IndexInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.edgeIndexes[spaceID][name]
	if !ok {
		return IndexInfo{}, &ErrNotFound{Code: core.INDEX_NOT_FOUND, Kind: "edge index", Lookup: name}
	}
	return info, nil
}

func (c *InMemory) ListIndexes(_ context.Context, spaceID int32) ([]IndexInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]IndexInfo(nil), c.indexes[spaceID]...), nil
}

func (c *InMemory) PartitionCount(_ context.Context, spaceID int32) (int32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.spaces[spaceID]
	if !ok {
		return 0, &ErrNotFound{Code: core.SPACE_NOT_FOUND, Kind: "space", Lookup: fmt.Sprintf("#%d", spaceID)}
	}
	return info.PartsCount, nil
}

func (c *InMemory) PartLeaders(_ context.Context, spaceID int32) ([]PartLeader, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	leaders, ok := c.leaders[spaceID]
	if !ok {
		return nil, &ErrNotFound{Code: core.SPACE_NOT_FOUND, Kind: "space", Lookup: fmt.Sprintf("#%d", spaceID)}
	}
	return append([]PartLeader(nil), leaders...), nil
}

// SetLeader updates the leader recorded for a partition, used by tests
// simulating a LEADER_CHANGED response.
func (c *InMemory) SetLeader(spaceID int32, leader PartLeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	leaders := c.leaders[spaceID]
	for i, l := range leaders {
		if l.PartID == leader.PartID {
			leaders[i] = leader
			return
		}
	}
	c.leaders[spaceID] = append(leaders, leader)
}

func (c *InMemory) CheckPermission(_ context.Context, session Session, spaceID int32, perm Permission) error {
	c.mu.RLock()
	authorize := c.authorize
	c.mu.RUnlock()
	if err := authorize(session, spaceID, perm); err != nil {
		return err
	}
	return nil
}

var _ Catalog = (*InMemory)(nil)
