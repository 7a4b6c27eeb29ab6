// Package catalog defines the schema/index/partitioning metadata boundary
// consulted by the validator (name resolution, column typing) and by the
// storage client (partition routing, replica leaders). Meta-catalog
// persistence itself is out of scope (spec.md §1); this package only
// specifies the interface and ships one in-memory reference
// implementation for tests and the demo CLI.
package catalog

import (
	"context"
	"fmt"

	"graphd/core"
)

// Permission enumerates the actions a session can be checked against.
type Permission uint8

const (
	PermRead Permission = iota
	PermWrite
	PermAdmin
)

// SpaceInfo describes a graph space (the top-level namespace tags/edges
// live under).
type SpaceInfo struct {
	ID         int32
	Name       string
	PartsCount int32
}

// TagInfo describes a vertex tag schema.
type TagInfo struct {
	ID        int32
	SpaceID   int32
	Name      string
	Columns   []ColumnInfo
	SchemaRev int32
}

// EdgeInfo describes an edge type schema.
type EdgeInfo struct {
	ID        int32
	SpaceID   int32
	Name      string
	Columns   []ColumnInfo
	SchemaRev int32
}

// ColumnInfo names and types one property column.
type ColumnInfo struct {
	Name string
	Type core.ValueKind
}

// IndexInfo describes a tag or edge index.
type IndexInfo struct {
	ID      int32
	SpaceID int32
	OwnerID int32 // tag or edge id this index is built over
	Name    string
	Columns []string
	IsEdge  bool
}

// PartLeader identifies the replica currently serving as leader for a
// partition, used by the storage client to route RPCs and to detect stale
// routing after a LEADER_CHANGED response.
type PartLeader struct {
	PartID int32
	Host   string
	Port   int32
}

// Catalog is the read-mostly metadata boundary: name/id lookups, listing,
// partitioning, and permission checks. Grounded on the teacher's
// storage/database.go read-mostly-with-RWMutex structure, generalized
// from a single-space Datalog store to a multi-space/tag/edge catalog.
type Catalog interface {
	SpaceByName(ctx context.Context, name string) (SpaceInfo, error)
	SpaceByID(ctx context.Context, id int32) (SpaceInfo, error)
	ListSpaces(ctx context.Context) ([]SpaceInfo, error)

	TagByName(ctx context.Context, spaceID int32, name string) (TagInfo, error)
	TagByID(ctx context.Context, spaceID, id int32) (TagInfo, error)
	ListTags(ctx context.Context, spaceID int32) ([]TagInfo, error)

	EdgeByName(ctx context.Context, spaceID int32, name string) (EdgeInfo, error)
	EdgeByID(ctx context.Context, spaceID, id int32) (EdgeInfo, error)
	ListEdges(ctx context.Context, spaceID int32) ([]EdgeInfo, error)

	TagIndexByName(ctx context.Context, spaceID int32, name string) (IndexInfo, error)
	EdgeIndexByName(ctx context.Context, spaceID int32, name string) (IndexInfo, error)
	ListIndexes(ctx context.Context, spaceID int32) ([]IndexInfo, error)

	PartitionCount(ctx context.Context, spaceID int32) (int32, error)
	PartLeaders(ctx context.Context, spaceID int32) ([]PartLeader, error)

	CheckPermission(ctx context.Context, session Session, spaceID int32, perm Permission) error
}

// Session identifies the caller for permission checks. It intentionally
// carries no token/credential material: authentication itself is out of
// scope (spec.md §1), this is just the identity a permission check is
// made against.
type Session struct {
	User string
	Role string
}

// ErrNotFound wraps a catalog lookup miss with the specific status code
// the caller should surface (SPACE_NOT_FOUND, TAG_NOT_FOUND, ...).
type ErrNotFound struct {
	Code   core.Code
	Kind   string
	Lookup string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s: %s %q not found", e.Code, e.Kind, e.Lookup)
}

func (e *ErrNotFound) Status() core.Status {
	return core.NewStatus(e.Code, "%s %q not found", e.Kind, e.Lookup)
}
