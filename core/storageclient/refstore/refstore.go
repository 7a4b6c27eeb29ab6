// Package refstore is a reference, in-process implementation of
// storageclient.Backend backed by badger, used by tests and cmd/graphd's
// demo mode. Grounded on the teacher's datalog/storage/badger_store.go:
// one badger.DB holding every partition's data, keys built from a
// (space, part, kind, owner, id) prefix the way badger_store.go builds
// EAVT/AEVT/... index keys from (index, entity, attribute, value,
// tx), generalized from Datalog's fixed five-index layout to this
// façade's vertex/edge/index-range shapes.
package refstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"graphd/core"
	"graphd/core/storageclient"
)

// Store is a badger-backed storageclient.Backend.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a badger store at path. An empty path opens an
// in-memory store, the mode tests and the CLI's demo use.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("refstore: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying badger database.
func (s *Store) Close() error { return s.db.Close() }

// --- key encoding -----------------------------------------------------
//
// Every key starts with a one-byte kind tag followed by big-endian
// space/part int32s, so a partition's keys sort contiguously and a
// prefix scan over (kind, space, part) enumerates exactly that
// partition's rows of that kind — the same prefix-scan discipline
// badger_store.go's IndexType-prefixed keys follow.

const (
	kindVertexTag byte = iota
	kindEdge
	kindIndexEntry
)

func u32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func vertexTagKey(space, part int32, tag string, id core.VertexID) []byte {
	var buf bytes.Buffer
	buf.WriteByte(kindVertexTag)
	buf.Write(u32(space))
	buf.Write(u32(part))
	buf.WriteString(tag)
	buf.WriteByte(0)
	buf.Write(id.Bytes())
	return buf.Bytes()
}

// vertexAnyTagPrefix is used by DeleteVertices, which removes every tag
// a vertex carries: it scans every tag (no tag name in the prefix) and
// filters by trailing id bytes instead.
func vertexAnyTagPrefix(space, part int32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(kindVertexTag)
	buf.Write(u32(space))
	buf.Write(u32(part))
	return buf.Bytes()
}

func edgeKey(space, part int32, edgeType string, src, dst core.VertexID, rank int64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(kindEdge)
	buf.Write(u32(space))
	buf.Write(u32(part))
	buf.WriteString(edgeType)
	buf.WriteByte(0)
	buf.Write(src.Bytes())
	rb := make([]byte, 8)
	binary.BigEndian.PutUint64(rb, uint64(rank))
	buf.Write(rb)
	buf.Write(dst.Bytes())
	return buf.Bytes()
}

func edgeSrcPrefix(space, part int32, edgeType string, src core.VertexID) []byte {
	var buf bytes.Buffer
	buf.WriteByte(kindEdge)
	buf.Write(u32(space))
	buf.Write(u32(part))
	buf.WriteString(edgeType)
	buf.WriteByte(0)
	buf.Write(src.Bytes())
	return buf.Bytes()
}

func edgePartPrefix(space, part int32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(kindEdge)
	buf.Write(u32(space))
	buf.Write(u32(part))
	return buf.Bytes()
}

// --- property map (de)serialization -----------------------------------

func encodeProps(props map[string]core.Value) []byte {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(keys)))
	for _, k := range keys {
		kb := []byte(k)
		binary.Write(&buf, binary.BigEndian, uint32(len(kb)))
		buf.Write(kb)
		vb := props[k].Encode()
		binary.Write(&buf, binary.BigEndian, uint32(len(vb)))
		buf.Write(vb)
	}
	return buf.Bytes()
}

func decodeProps(data []byte) (map[string]core.Value, error) {
	buf := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(buf, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[string]core.Value, n)
	for i := uint32(0); i < n; i++ {
		var klen uint32
		if err := binary.Read(buf, binary.BigEndian, &klen); err != nil {
			return nil, err
		}
		kb := make([]byte, klen)
		if _, err := buf.Read(kb); err != nil {
			return nil, err
		}
		var vlen uint32
		if err := binary.Read(buf, binary.BigEndian, &vlen); err != nil {
			return nil, err
		}
		vb := make([]byte, vlen)
		if _, err := buf.Read(vb); err != nil {
			return nil, err
		}
		v, _, err := core.DecodeValue(vb)
		if err != nil {
			return nil, err
		}
		out[string(kb)] = v
	}
	return out, nil
}

var _ storageclient.Backend = (*Store)(nil)
