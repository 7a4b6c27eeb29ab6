// Package core defines the typed value, row, and dataset model shared by
// every stage of the query pipeline: the expression engine, the plan
// operators, and the storage client all exchange data as Value/Row/DataSet.
package core

import "time"

// ValueKind tags the variant carried by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindTime
	KindDateTime
	KindVertex
	KindEdge
	KindPath
	KindList
	KindMap
	KindSet
	KindDataSet
)

// NullKind distinguishes the reasons a Value can be null, per spec.md §3.
type NullKind uint8

const (
	NullNormal NullKind = iota
	NullNaN
	NullBadType
	NullBadData
	NullOverflow
	NullDivByZero
	NullOutOfRange
)

func (n NullKind) String() string {
	switch n {
	case NullNormal:
		return "__NULL__"
	case NullNaN:
		return "NaN"
	case NullBadType:
		return "BAD_TYPE"
	case NullBadData:
		return "BAD_DATA"
	case NullOverflow:
		return "OVERFLOW"
	case NullDivByZero:
		return "DIV_BY_ZERO"
	case NullOutOfRange:
		return "OUT_OF_RANGE"
	default:
		return "UNKNOWN_NULL"
	}
}

// Value is a tagged sum over the value kinds the query engine understands.
// Unlike the teacher's bare `interface{}`-typed Value, this is a closed
// struct so that the null sub-kinds required by spec.md §3 (NaN, bad-type,
// overflow, div-by-zero, out-of-range, ...) have somewhere to live; a plain
// interface{} could not distinguish "null because divide by zero" from
// "null because the property is absent" without an extra out-of-band tag.
type Value struct {
	kind ValueKind
	null NullKind

	b  bool
	i  int64
	f  float64
	s  string
	t  time.Time

	vertex *Vertex
	edge   *Edge
	path   *Path
	list   []Value
	set    []Value
	m      map[string]Value
	ds     *DataSet
}

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether this value is any flavor of null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// NullKind returns the sub-kind of a null value (meaningless otherwise).
func (v Value) NullKind() NullKind { return v.null }

// Constructors, mirroring the teacher's String()/Int()/Float()/... helper
// style in datalog/value.go.

func Null() Value                 { return Value{kind: KindNull, null: NullNormal} }
func NullWith(k NullKind) Value    { return Value{kind: KindNull, null: k} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Str(s string) Value           { return Value{kind: KindString, s: s} }
func Date(t time.Time) Value       { return Value{kind: KindDate, t: t} }
func TimeOfDay(t time.Time) Value  { return Value{kind: KindTime, t: t} }
func DateTime(t time.Time) Value   { return Value{kind: KindDateTime, t: t} }
func VertexVal(v Vertex) Value     { return Value{kind: KindVertex, vertex: &v} }
func EdgeVal(e Edge) Value         { return Value{kind: KindEdge, edge: &e} }
func PathVal(p Path) Value         { return Value{kind: KindPath, path: &p} }
func List(items []Value) Value     { return Value{kind: KindList, list: items} }
func Set(items []Value) Value      { return Value{kind: KindSet, set: items} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }
func DataSetVal(ds *DataSet) Value { return Value{kind: KindDataSet, ds: ds} }

// Accessors. None of them panics: on the wrong kind each returns the zero
// value of its field, so callers check Kind() first (mirrors how the
// teacher unwraps query.Value).

func (v Value) AsBool() bool               { return v.b }
func (v Value) AsInt() int64               { return v.i }
func (v Value) AsFloat() float64           { return v.f }
func (v Value) AsString() string           { return v.s }
func (v Value) AsTime() time.Time          { return v.t }
func (v Value) AsVertex() *Vertex          { return v.vertex }
func (v Value) AsEdge() *Edge              { return v.edge }
func (v Value) AsPath() *Path              { return v.path }
func (v Value) AsList() []Value            { return v.list }
func (v Value) AsSet() []Value             { return v.set }
func (v Value) AsMap() map[string]Value    { return v.m }
func (v Value) AsDataSet() *DataSet        { return v.ds }

// IsNumeric reports whether the value is an int or float, used by the
// expression engine's arithmetic widening rules (spec.md §3).
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Numeric returns the value widened to float64, along with whether the
// original kind was float (for round-tripping int-preserving arithmetic).
func (v Value) Numeric() (val float64, wasFloat bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), false
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}
