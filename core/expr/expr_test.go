package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
)

type fakeCtx struct {
	vars     map[string]core.Value
	varProps map[string]core.Value
	input    map[string]core.Value
	params   map[string]core.Value
	edge     *core.Edge
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		vars:     map[string]core.Value{},
		varProps: map[string]core.Value{},
		input:    map[string]core.Value{},
		params:   map[string]core.Value{},
	}
}

func (c *fakeCtx) GetVar(name string) (core.Value, bool) { v, ok := c.vars[name]; return v, ok }
func (c *fakeCtx) GetVarProp(name, prop string) (core.Value, bool) {
	v, ok := c.varProps[name+"."+prop]
	return v, ok
}
func (c *fakeCtx) GetSrcProp(prop string) (core.Value, bool) { return core.Value{}, false }
func (c *fakeCtx) GetDstProp(prop string) (core.Value, bool) { return core.Value{}, false }
func (c *fakeCtx) GetEdgeProp(prop string) (core.Value, bool) { return core.Value{}, false }
func (c *fakeCtx) GetInputProp(prop string) (core.Value, bool) {
	v, ok := c.input[prop]
	return v, ok
}
func (c *fakeCtx) GetParameter(name string) (core.Value, bool) {
	v, ok := c.params[name]
	return v, ok
}
func (c *fakeCtx) CurrentEdge() (core.Edge, bool) {
	if c.edge == nil {
		return core.Edge{}, false
	}
	return *c.edge, true
}

func TestConstantEval(t *testing.T) {
	c := Constant{Value: core.Int(5)}
	v, err := c.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.AsInt())
}

func TestVarPropEvalMissing(t *testing.T) {
	v, err := VarProp{Var: "x", Prop: "age"}.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestBinaryArithmeticEval(t *testing.T) {
	e := BinaryArithmetic{Op: ArithAdd, Left: Constant{Value: core.Int(2)}, Right: Constant{Value: core.Int(3)}}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.AsInt())
}

func TestBinaryRelationalEval(t *testing.T) {
	e := BinaryRelational{Op: RelLT, Left: Constant{Value: core.Int(2)}, Right: Constant{Value: core.Int(3)}}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestBinaryLogicalShortCircuitsAnd(t *testing.T) {
	failsIfEvaluated := NewFunctionCall("nope", nil, nil)
	e := BinaryLogical{Op: LogicalAnd, Left: Constant{Value: core.Bool(false)}, Right: failsIfEvaluated}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestBinaryLogicalXorEvaluatesBoth(t *testing.T) {
	e := BinaryLogical{Op: LogicalXor, Left: Constant{Value: core.Bool(true)}, Right: Constant{Value: core.Bool(true)}}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestTypeCastFailureYieldsBadType(t *testing.T) {
	e := TypeCast{Target: core.KindInt, Operand: Constant{Value: core.Str("not-a-number")}}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.Equal(t, core.NullBadType, v.NullKind())
}

func TestTypeCastSuccess(t *testing.T) {
	e := TypeCast{Target: core.KindFloat, Operand: Constant{Value: core.Int(4)}}
	v, err := e.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.AsFloat())
}

func TestFunctionCallDispatch(t *testing.T) {
	fc := NewFunctionCall("str::upper", []Expression{Constant{Value: core.Str("hi")}}, nil)
	v, err := fc.Eval(newFakeCtx())
	require.NoError(t, err)
	assert.Equal(t, "HI", v.AsString())
}

func TestFunctionCallUnregistered(t *testing.T) {
	fc := NewFunctionCall("nope", nil, nil)
	_, err := fc.Eval(newFakeCtx())
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	exprs := []Expression{
		Constant{Value: core.Int(42)},
		Constant{Value: core.Str("hello")},
		VarProp{Var: "p", Prop: "name"},
		InputProp{Prop: "x"},
		SrcProp{Prop: "a"},
		DstProp{Prop: "b"},
		EdgeRank{},
		EdgeType{},
		EdgeSrc{},
		EdgeDst{},
		UUID{},
		Parameter{Name: "limit"},
		Unary{Op: UnaryNot, Operand: Constant{Value: core.Bool(true)}},
		BinaryArithmetic{Op: ArithAdd, Left: Constant{Value: core.Int(1)}, Right: Constant{Value: core.Int(2)}},
		BinaryRelational{Op: RelEQ, Left: Constant{Value: core.Int(1)}, Right: Constant{Value: core.Int(1)}},
		BinaryLogical{Op: LogicalAnd, Left: Constant{Value: core.Bool(true)}, Right: Constant{Value: core.Bool(false)}},
		TypeCast{Target: core.KindString, Operand: Constant{Value: core.Int(5)}},
		FunctionCall{Name: "str::upper", Args: []Expression{Constant{Value: core.Str("a")}}},
	}
	for _, e := range exprs {
		encoded := e.Encode()
		decoded, rest, err := Decode(encoded)
		require.NoError(t, err, "decoding %s", e)
		assert.Empty(t, rest)
		assert.True(t, e.Equal(decoded), "round-trip mismatch for %s", e)
	}
}

func TestRewriteVarPropToInputProp(t *testing.T) {
	e := BinaryRelational{
		Op:    RelGT,
		Left:  VarProp{Var: "a", Prop: "age"},
		Right: Constant{Value: core.Int(18)},
	}
	rewritten := RewriteVarPropToInputProp(e, "a")
	want := BinaryRelational{
		Op:    RelGT,
		Left:  InputProp{Prop: "age"},
		Right: Constant{Value: core.Int(18)},
	}
	assert.True(t, want.Equal(rewritten))
}

func TestVisitCountsNodes(t *testing.T) {
	e := BinaryArithmetic{Op: ArithAdd, Left: Constant{Value: core.Int(1)}, Right: Constant{Value: core.Int(2)}}
	count := 0
	e.Visit(func(Expression) bool {
		count++
		return true
	})
	assert.Equal(t, 3, count)
}
