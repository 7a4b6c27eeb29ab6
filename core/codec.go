package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Encode renders a Value into a self-describing byte sequence usable as a
// structural-equality key (for expression/plan-cache hashing, spec.md §3
// invariant 3) or as a safe ristretto cache key. This is not a wire
// protocol for storage-client RPCs; that's explicitly out of scope.
// Generalizes the tag+payload style of the teacher's
// datalog/codec/l85.go (EncodeL85) to the full closed Value kind set.
func (v Value) Encode() []byte {
	buf := []byte{byte(v.kind)}
	switch v.kind {
	case KindNull:
		buf = append(buf, byte(v.null))
	case KindBool:
		if v.b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindInt:
		buf = appendUint64(buf, uint64(v.i))
	case KindFloat:
		buf = appendUint64(buf, math.Float64bits(v.f))
	case KindString:
		buf = appendBytes(buf, []byte(v.s))
	case KindDate, KindTime, KindDateTime:
		b, _ := v.t.MarshalBinary()
		buf = appendBytes(buf, b)
	case KindVertex:
		buf = appendBytes(buf, v.vertex.ID.Bytes())
	case KindEdge:
		buf = appendBytes(buf, v.edge.Src.Bytes())
		buf = appendBytes(buf, v.edge.Dst.Bytes())
		buf = appendUint64(buf, uint64(v.edge.Type))
		buf = appendUint64(buf, uint64(v.edge.Rank))
	case KindList, KindSet:
		items := v.sliceOf()
		buf = appendUint64(buf, uint64(len(items)))
		for _, it := range items {
			buf = appendBytes(buf, it.Encode())
		}
	case KindMap:
		buf = appendUint64(buf, uint64(len(v.m)))
		for k, val := range v.m {
			buf = appendBytes(buf, []byte(k))
			buf = appendBytes(buf, val.Encode())
		}
	case KindPath, KindDataSet:
		// Not hashed structurally; callers compare these by identity or
		// by their rendered String() instead.
		buf = appendBytes(buf, []byte(v.String()))
	}
	return buf
}

func appendUint64(buf []byte, u uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], u)
	return append(buf, tmp[:]...)
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = appendUint64(buf, uint64(len(b)))
	return append(buf, b...)
}

// DecodeValue reads one Value from a byte sequence produced by Encode.
func DecodeValue(data []byte) (Value, []byte, error) {
	if len(data) < 1 {
		return Value{}, nil, fmt.Errorf("core: short value buffer")
	}
	kind := ValueKind(data[0])
	rest := data[1:]
	switch kind {
	case KindNull:
		if len(rest) < 1 {
			return Value{}, nil, fmt.Errorf("core: short null buffer")
		}
		return NullWith(NullKind(rest[0])), rest[1:], nil
	case KindBool:
		if len(rest) < 1 {
			return Value{}, nil, fmt.Errorf("core: short bool buffer")
		}
		return Bool(rest[0] != 0), rest[1:], nil
	case KindInt:
		u, rest, err := readUint64(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Int(int64(u)), rest, nil
	case KindFloat:
		u, rest, err := readUint64(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Float(math.Float64frombits(u)), rest, nil
	case KindString:
		b, rest, err := readBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Str(string(b)), rest, nil
	case KindDate, KindTime, KindDateTime:
		b, rest, err := readBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		var t time.Time
		if err := t.UnmarshalBinary(b); err != nil {
			return Value{}, nil, err
		}
		switch kind {
		case KindDate:
			return Date(t), rest, nil
		case KindTime:
			return TimeOfDay(t), rest, nil
		default:
			return DateTime(t), rest, nil
		}
	default:
		return Value{}, nil, fmt.Errorf("core: decode not supported for kind %d", kind)
	}
}

func readUint64(data []byte) (uint64, []byte, error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("core: short uint64 buffer")
	}
	return binary.BigEndian.Uint64(data[:8]), data[8:], nil
}

func readBytes(data []byte) ([]byte, []byte, error) {
	n, rest, err := readUint64(data)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, fmt.Errorf("core: short bytes buffer")
	}
	return rest[:n], rest[n:], nil
}
