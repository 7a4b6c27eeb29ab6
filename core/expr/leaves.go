package expr

import (
	"fmt"

	"graphd/core"
)

// Constant wraps a literal Value. Grounded on the teacher's
// query.ConstantTerm, but round-trippable: the original's
// ConstantExpression.encode was left unimplemented (spec.md §9).
type Constant struct {
	Value core.Value
}

func (c Constant) Kind() Kind                      { return KindConstant }
func (c Constant) Eval(Context) (core.Value, error) { return c.Value, nil }
func (c Constant) Clone() Expression               { return Constant{Value: c.Value} }
func (c Constant) Visit(fn func(Expression) bool)  { fn(c) }
func (c Constant) String() string                  { return c.Value.String() }

func (c Constant) Equal(other Expression) bool {
	o, ok := other.(Constant)
	return ok && core.ValuesEqual(c.Value, o.Value)
}

func (c Constant) Encode() []byte {
	buf := writeTag(nil, KindConstant)
	return writeLenPrefixed(buf, c.Value.Encode())
}

func decodeConstant(data []byte) (Expression, []byte, error) {
	payload, rest, err := readLenPrefixed(data)
	if err != nil {
		return nil, nil, err
	}
	v, leftover, err := core.DecodeValue(payload)
	if err != nil {
		return nil, nil, err
	}
	if len(leftover) != 0 {
		return nil, nil, fmt.Errorf("expr: trailing bytes in constant payload")
	}
	return Constant{Value: v}, rest, nil
}

// VarProp reads a named property off a bound variable's current row value,
// e.g. `$person.age`. Grounded on query.VariableTerm generalized with a
// property selector, since the teacher's Term only resolves whole bindings.
type VarProp struct {
	Var  string
	Prop string
}

func (v VarProp) Kind() Kind { return KindVarProp }
func (v VarProp) Eval(ctx Context) (core.Value, error) {
	val, ok := ctx.GetVarProp(v.Var, v.Prop)
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return val, nil
}
func (v VarProp) Clone() Expression              { return v }
func (v VarProp) Visit(fn func(Expression) bool) { fn(v) }
func (v VarProp) String() string                 { return fmt.Sprintf("$%s.%s", v.Var, v.Prop) }
func (v VarProp) Equal(other Expression) bool {
	o, ok := other.(VarProp)
	return ok && v.Var == o.Var && v.Prop == o.Prop
}
func (v VarProp) Encode() []byte {
	buf := writeTag(nil, KindVarProp)
	buf = writeString(buf, v.Var)
	return writeString(buf, v.Prop)
}
func decodeVarProp(data []byte) (Expression, []byte, error) {
	name, rest, err := readString(data)
	if err != nil {
		return nil, nil, err
	}
	prop, rest, err := readString(rest)
	if err != nil {
		return nil, nil, err
	}
	return VarProp{Var: name, Prop: prop}, rest, nil
}

// InputProp reads a property from the statement's input dataset (the
// "$-" placeholder referring to a piped-in result), e.g. `$-.name`.
type InputProp struct {
	Prop string
}

func (p InputProp) Kind() Kind { return KindInputProp }
func (p InputProp) Eval(ctx Context) (core.Value, error) {
	val, ok := ctx.GetInputProp(p.Prop)
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return val, nil
}
func (p InputProp) Clone() Expression              { return p }
func (p InputProp) Visit(fn func(Expression) bool) { fn(p) }
func (p InputProp) String() string                 { return fmt.Sprintf("$-.%s", p.Prop) }
func (p InputProp) Equal(other Expression) bool {
	o, ok := other.(InputProp)
	return ok && p.Prop == o.Prop
}
func (p InputProp) Encode() []byte {
	return writeString(writeTag(nil, KindInputProp), p.Prop)
}
func decodeInputProp(data []byte) (Expression, []byte, error) {
	prop, rest, err := readString(data)
	if err != nil {
		return nil, nil, err
	}
	return InputProp{Prop: prop}, rest, nil
}

// SrcProp reads a property off the current edge's source vertex during a
// traversal, grounded on the teacher's edge-scoped predicate terms.
type SrcProp struct{ Prop string }

func (p SrcProp) Kind() Kind { return KindSrcProp }
func (p SrcProp) Eval(ctx Context) (core.Value, error) {
	val, ok := ctx.GetSrcProp(p.Prop)
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return val, nil
}
func (p SrcProp) Clone() Expression              { return p }
func (p SrcProp) Visit(fn func(Expression) bool) { fn(p) }
func (p SrcProp) String() string                 { return fmt.Sprintf("$^.%s", p.Prop) }
func (p SrcProp) Equal(other Expression) bool {
	o, ok := other.(SrcProp)
	return ok && p.Prop == o.Prop
}
func (p SrcProp) Encode() []byte { return writeString(writeTag(nil, KindSrcProp), p.Prop) }
func decodeSrcProp(data []byte) (Expression, []byte, error) {
	prop, rest, err := readString(data)
	if err != nil {
		return nil, nil, err
	}
	return SrcProp{Prop: prop}, rest, nil
}

// DstProp mirrors SrcProp for the destination vertex of the current edge.
type DstProp struct{ Prop string }

func (p DstProp) Kind() Kind { return KindDstProp }
func (p DstProp) Eval(ctx Context) (core.Value, error) {
	val, ok := ctx.GetDstProp(p.Prop)
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return val, nil
}
func (p DstProp) Clone() Expression              { return p }
func (p DstProp) Visit(fn func(Expression) bool) { fn(p) }
func (p DstProp) String() string                 { return fmt.Sprintf("$$.%s", p.Prop) }
func (p DstProp) Equal(other Expression) bool {
	o, ok := other.(DstProp)
	return ok && p.Prop == o.Prop
}
func (p DstProp) Encode() []byte { return writeString(writeTag(nil, KindDstProp), p.Prop) }
func decodeDstProp(data []byte) (Expression, []byte, error) {
	prop, rest, err := readString(data)
	if err != nil {
		return nil, nil, err
	}
	return DstProp{Prop: prop}, rest, nil
}

// EdgeRank/EdgeType/EdgeSrc/EdgeDst read the structural fields of the
// current edge, grounded on the teacher's Datom src/attr/val/tx field
// access pattern generalized to the Edge type.

type EdgeRank struct{}

func (EdgeRank) Kind() Kind { return KindEdgeRank }
func (EdgeRank) Eval(ctx Context) (core.Value, error) {
	e, ok := ctx.CurrentEdge()
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return core.Int(e.Rank), nil
}
func (EdgeRank) Clone() Expression              { return EdgeRank{} }
func (e EdgeRank) Visit(fn func(Expression) bool) { fn(e) }
func (EdgeRank) String() string                 { return "edge.rank" }
func (EdgeRank) Equal(other Expression) bool    { _, ok := other.(EdgeRank); return ok }
func (EdgeRank) Encode() []byte                 { return writeTag(nil, KindEdgeRank) }
func decodeEdgeRank(data []byte) (Expression, []byte, error) { return EdgeRank{}, data, nil }

type EdgeType struct{}

func (EdgeType) Kind() Kind { return KindEdgeType }
func (EdgeType) Eval(ctx Context) (core.Value, error) {
	e, ok := ctx.CurrentEdge()
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return core.Int(int64(e.Type)), nil
}
func (EdgeType) Clone() Expression              { return EdgeType{} }
func (e EdgeType) Visit(fn func(Expression) bool) { fn(e) }
func (EdgeType) String() string                 { return "edge.type" }
func (EdgeType) Equal(other Expression) bool    { _, ok := other.(EdgeType); return ok }
func (EdgeType) Encode() []byte                 { return writeTag(nil, KindEdgeType) }
func decodeEdgeType(data []byte) (Expression, []byte, error) { return EdgeType{}, data, nil }

type EdgeSrc struct{}

func (EdgeSrc) Kind() Kind { return KindEdgeSrc }
func (EdgeSrc) Eval(ctx Context) (core.Value, error) {
	e, ok := ctx.CurrentEdge()
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return core.VertexVal(core.Vertex{ID: e.Src}), nil
}
func (EdgeSrc) Clone() Expression              { return EdgeSrc{} }
func (e EdgeSrc) Visit(fn func(Expression) bool) { fn(e) }
func (EdgeSrc) String() string                 { return "edge.src" }
func (EdgeSrc) Equal(other Expression) bool    { _, ok := other.(EdgeSrc); return ok }
func (EdgeSrc) Encode() []byte                 { return writeTag(nil, KindEdgeSrc) }
func decodeEdgeSrc(data []byte) (Expression, []byte, error) { return EdgeSrc{}, data, nil }

type EdgeDst struct{}

func (EdgeDst) Kind() Kind { return KindEdgeDst }
func (EdgeDst) Eval(ctx Context) (core.Value, error) {
	e, ok := ctx.CurrentEdge()
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return core.VertexVal(core.Vertex{ID: e.Dst}), nil
}
func (EdgeDst) Clone() Expression              { return EdgeDst{} }
func (e EdgeDst) Visit(fn func(Expression) bool) { fn(e) }
func (EdgeDst) String() string                 { return "edge.dst" }
func (EdgeDst) Equal(other Expression) bool    { _, ok := other.(EdgeDst); return ok }
func (EdgeDst) Encode() []byte                 { return writeTag(nil, KindEdgeDst) }
func decodeEdgeDst(data []byte) (Expression, []byte, error) { return EdgeDst{}, data, nil }

// UUID generates a fresh random identifier value at eval time, used by
// INSERT statements that don't supply an explicit vertex id.
type UUID struct{}

func (UUID) Kind() Kind { return KindUUID }
func (UUID) Eval(Context) (core.Value, error) {
	return core.Str(newUUIDString()), nil
}
func (UUID) Clone() Expression              { return UUID{} }
func (u UUID) Visit(fn func(Expression) bool) { fn(u) }
func (UUID) String() string                 { return "uuid()" }
func (UUID) Equal(other Expression) bool    { _, ok := other.(UUID); return ok }
func (UUID) Encode() []byte                 { return writeTag(nil, KindUUID) }
func decodeUUID(data []byte) (Expression, []byte, error) { return UUID{}, data, nil }

// Parameter references a named statement parameter bound at execution
// time, grounded on the teacher's query.In clause parameter slots.
type Parameter struct{ Name string }

func (p Parameter) Kind() Kind { return KindParameter }
func (p Parameter) Eval(ctx Context) (core.Value, error) {
	val, ok := ctx.GetParameter(p.Name)
	if !ok {
		return core.NullWith(core.NullBadData), nil
	}
	return val, nil
}
func (p Parameter) Clone() Expression              { return p }
func (p Parameter) Visit(fn func(Expression) bool) { fn(p) }
func (p Parameter) String() string                 { return "$" + p.Name }
func (p Parameter) Equal(other Expression) bool {
	o, ok := other.(Parameter)
	return ok && p.Name == o.Name
}
func (p Parameter) Encode() []byte { return writeString(writeTag(nil, KindParameter), p.Name) }
func decodeParameter(data []byte) (Expression, []byte, error) {
	name, rest, err := readString(data)
	if err != nil {
		return nil, nil, err
	}
	return Parameter{Name: name}, rest, nil
}
