// Package expr implements the expression tree evaluated by plan operators:
// a closed set of kinds (spec.md §4.1), each supporting Eval, structural
// Equal, Clone, Visit, and round-trip Encode/Decode. Grounded on the
// teacher's datalog/query package (Term/Comparison/Function shape), but
// expressions here are a single closed interface with a Kind tag rather
// than the teacher's open Predicate/Function interface split, per spec.md
// §9's tagged-enum-over-inheritance guidance.
package expr

import "graphd/core"

// Kind tags the variant of an Expression.
type Kind uint8

const (
	KindConstant Kind = iota
	KindVarProp
	KindInputProp
	KindSrcProp
	KindDstProp
	KindEdgeRank
	KindEdgeType
	KindEdgeSrc
	KindEdgeDst
	KindFunctionCall
	KindTypeCast
	KindUnary
	KindBinaryArithmetic
	KindBinaryRelational
	KindBinaryLogical
	KindUUID
	KindParameter
)

// Context is what an expression evaluates against: the current row plus
// accessors for variable/edge/input properties and statement parameters,
// per spec.md §4.1's ctx contract.
type Context interface {
	GetVar(name string) (core.Value, bool)
	GetVarProp(name, prop string) (core.Value, bool)
	GetSrcProp(prop string) (core.Value, bool)
	GetDstProp(prop string) (core.Value, bool)
	GetEdgeProp(prop string) (core.Value, bool)
	GetInputProp(prop string) (core.Value, bool)
	GetParameter(name string) (core.Value, bool)
	CurrentEdge() (core.Edge, bool)
}

// Expression is the closed interface every expression kind implements.
type Expression interface {
	Kind() Kind
	Eval(ctx Context) (core.Value, error)
	Equal(other Expression) bool
	Clone() Expression
	Visit(fn func(Expression) bool)
	Encode() []byte
	String() string
}

// Decode reads one Expression (and, recursively, any children) from a
// length-prefixed pre-order byte stream produced by Encode, generalizing
// the teacher's datalog/codec/l85.go tag+payload framing to every kind in
// this closed set (spec.md §9 calls out that the original left
// ConstantExpression.encode/TypeCasting.toString unimplemented; this
// implements both, for all kinds).
func Decode(data []byte) (Expression, []byte, error) {
	return decode(data)
}
