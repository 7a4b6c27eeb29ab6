package core

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
)

// VertexID is an opaque, comparable graph vertex identifier. It generalizes
// the teacher's datalog/identity.go Identity: a fixed-width hash plus a
// lazily-computed display string, so ids are cheap to copy and compare but
// still renderable for EXPLAIN output and error messages.
type VertexID struct {
	raw     [20]byte
	display string
	hasDisp bool
}

// NewVertexID derives a VertexID from an arbitrary string key, the way the
// teacher's NewIdentity hashes a string into a 20-byte SHA1 value.
func NewVertexID(key string) VertexID {
	return VertexID{raw: sha1.Sum([]byte(key)), display: key, hasDisp: true}
}

// VertexIDFromRaw builds a VertexID from an already-hashed representation,
// used when decoding ids that arrived over the storage client boundary.
func VertexIDFromRaw(raw [20]byte) VertexID {
	return VertexID{raw: raw}
}

// Bytes returns the raw identifier bytes, used for partition hashing.
func (v VertexID) Bytes() []byte { return v.raw[:] }

// Uint64 returns the first 8 bytes as a uint64, used as a fast sort/hash key.
func (v VertexID) Uint64() uint64 { return binary.BigEndian.Uint64(v.raw[:8]) }

// String renders the id for logs/EXPLAIN, falling back to a base32 encoding
// of the raw hash when the original key string isn't known (e.g. an id that
// arrived over the storage client boundary already hashed).
func (v VertexID) String() string {
	if v.hasDisp {
		return v.display
	}
	return base32.HexEncoding.WithPadding(base32.NoPadding).EncodeToString(v.raw[:])
}

// Equal reports whether two ids refer to the same vertex.
func (v VertexID) Equal(o VertexID) bool { return v.raw == o.raw }

// TagData is a named, typed property bag attached to a Vertex, one per tag
// the vertex carries (spec.md §3).
type TagData struct {
	TagName string
	Props   map[string]Value
}

// Vertex is a graph node: an id plus zero or more tag-typed property bags.
type Vertex struct {
	ID   VertexID
	Tags []TagData
}

// Prop looks up a property by tag name and key, the order tags were added.
func (v Vertex) Prop(tag, key string) (Value, bool) {
	for _, t := range v.Tags {
		if t.TagName == tag {
			val, ok := t.Props[key]
			return val, ok
		}
	}
	return Value{}, false
}

// PropAny looks up key across every tag the vertex carries, in tag order,
// for contexts (expression evaluation over a VarProp) that address a
// property without naming its owning tag.
func (v Vertex) PropAny(key string) (Value, bool) {
	for _, t := range v.Tags {
		if val, ok := t.Props[key]; ok {
			return val, ok
		}
	}
	return Value{}, false
}

// HasTag reports whether the vertex carries the named tag.
func (v Vertex) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t.TagName == tag {
			return true
		}
	}
	return false
}

// Edge is a directed, typed relation between two vertices with a
// composite key (src, type, rank, dst), per spec.md §3.
type Edge struct {
	Src   VertexID
	Dst   VertexID
	Type  int32
	Rank  int64
	Name  string
	Props map[string]Value
}

// Prop looks up an edge property by key.
func (e Edge) Prop(key string) (Value, bool) {
	val, ok := e.Props[key]
	return val, ok
}

// Step is one hop of a Path: the edge taken and the vertex arrived at.
type Step struct {
	Edge Edge
	Dst  Vertex
}

// Path is a traversal result: a starting vertex plus the steps taken.
type Path struct {
	Src   Vertex
	Steps []Step
}

// Length returns the number of hops in the path.
func (p Path) Length() int { return len(p.Steps) }
