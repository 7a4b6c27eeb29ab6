package core

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders a Value the way EXPLAIN and error messages need to: human
// readable, round-trippable for scalars, and stable across runs so golden
// tests don't flap (generalizes the teacher's query.Value String() methods
// spread across datalog/value.go).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return v.null.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return v.t.Format("15:04:05")
	case KindDateTime:
		return v.t.Format("2006-01-02T15:04:05Z07:00")
	case KindVertex:
		return fmt.Sprintf("V(%s)", v.vertex.ID.String())
	case KindEdge:
		return fmt.Sprintf("E(%s)->[%d]->(%s)", v.edge.Src.String(), v.edge.Type, v.edge.Dst.String())
	case KindPath:
		var b strings.Builder
		b.WriteString(v.path.Src.ID.String())
		for _, s := range v.path.Steps {
			fmt.Fprintf(&b, "-[%d]->%s", s.Edge.Type, s.Dst.ID.String())
		}
		return b.String()
	case KindList:
		return sliceString("[", "]", v.list)
	case KindSet:
		return sliceString("{", "}", v.set)
	case KindMap:
		parts := make([]string, 0, len(v.m))
		for k, val := range v.m {
			parts = append(parts, fmt.Sprintf("%s: %s", strconv.Quote(k), val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindDataSet:
		return fmt.Sprintf("DataSet(cols=%v, rows=%d)", v.ds.ColNames, v.ds.Size())
	default:
		return "<?>"
	}
}

func sliceString(open, close_ string, items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return open + strings.Join(parts, ", ") + close_
}

// TypeName returns the spec-facing name of the value's kind, used by
// TypeCast expressions and type-mismatch error messages.
func (k ValueKind) TypeName() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindVertex:
		return "VERTEX"
	case KindEdge:
		return "EDGE"
	case KindPath:
		return "PATH"
	case KindList:
		return "LIST"
	case KindMap:
		return "MAP"
	case KindSet:
		return "SET"
	case KindDataSet:
		return "DATASET"
	default:
		return "UNKNOWN"
	}
}
