package expr

import (
	"encoding/binary"
	"fmt"
)

func writeTag(buf []byte, k Kind) []byte {
	return append(buf, byte(k))
}

func writeLenPrefixed(buf []byte, b []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(b)))
	buf = append(buf, tmp[:]...)
	return append(buf, b...)
}

func writeString(buf []byte, s string) []byte {
	return writeLenPrefixed(buf, []byte(s))
}

func writeChildren(buf []byte, children ...Expression) []byte {
	buf = append(buf, byte(len(children)))
	for _, c := range children {
		buf = writeLenPrefixed(buf, c.Encode())
	}
	return buf
}

func readTag(data []byte) (Kind, []byte, error) {
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("expr: short tag buffer")
	}
	return Kind(data[0]), data[1:], nil
}

func readLenPrefixed(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("expr: short length buffer")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, fmt.Errorf("expr: short payload buffer")
	}
	return data[:n], data[n:], nil
}

func readString(data []byte) (string, []byte, error) {
	b, rest, err := readLenPrefixed(data)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}

func readChildren(data []byte) ([]Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short children-count buffer")
	}
	n := int(data[0])
	data = data[1:]
	children := make([]Expression, 0, n)
	for i := 0; i < n; i++ {
		payload, rest, err := readLenPrefixed(data)
		if err != nil {
			return nil, nil, err
		}
		child, leftover, err := decode(payload)
		if err != nil {
			return nil, nil, err
		}
		if len(leftover) != 0 {
			return nil, nil, fmt.Errorf("expr: trailing bytes decoding child")
		}
		children = append(children, child)
		data = rest
	}
	return children, data, nil
}

// decode dispatches on the leading tag byte to the kind-specific decoder.
func decode(data []byte) (Expression, []byte, error) {
	kind, rest, err := readTag(data)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case KindConstant:
		return decodeConstant(rest)
	case KindVarProp:
		return decodeVarProp(rest)
	case KindInputProp:
		return decodeInputProp(rest)
	case KindSrcProp:
		return decodeSrcProp(rest)
	case KindDstProp:
		return decodeDstProp(rest)
	case KindEdgeRank:
		return decodeEdgeRank(rest)
	case KindEdgeType:
		return decodeEdgeType(rest)
	case KindEdgeSrc:
		return decodeEdgeSrc(rest)
	case KindEdgeDst:
		return decodeEdgeDst(rest)
	case KindFunctionCall:
		return decodeFunctionCall(rest)
	case KindTypeCast:
		return decodeTypeCast(rest)
	case KindUnary:
		return decodeUnary(rest)
	case KindBinaryArithmetic:
		return decodeBinaryArithmetic(rest)
	case KindBinaryRelational:
		return decodeBinaryRelational(rest)
	case KindBinaryLogical:
		return decodeBinaryLogical(rest)
	case KindUUID:
		return decodeUUID(rest)
	case KindParameter:
		return decodeParameter(rest)
	default:
		return nil, nil, fmt.Errorf("expr: unknown kind tag %d", kind)
	}
}
