package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddIntAndWidening(t *testing.T) {
	assert.Equal(t, Int(5), Add(Int(2), Int(3)))
	r := Add(Int(2), Float(0.5))
	assert.Equal(t, KindFloat, r.Kind())
	assert.Equal(t, 2.5, r.AsFloat())
}

func TestAddNullPropagation(t *testing.T) {
	r := Add(Null(), Int(1))
	assert.True(t, r.IsNull())
}

func TestDivByZero(t *testing.T) {
	r := Div(Int(1), Int(0))
	assert.True(t, r.IsNull())
	assert.Equal(t, NullDivByZero, r.NullKind())
}

func TestDivFloatByZero(t *testing.T) {
	r := Div(Float(1.0), Float(0.0))
	assert.True(t, r.IsNull())
	assert.Equal(t, NullDivByZero, r.NullKind())
}

func TestModRequiresInt(t *testing.T) {
	r := Mod(Float(1.5), Int(2))
	assert.Equal(t, NullBadType, r.NullKind())
}

func TestMulIntOverflow(t *testing.T) {
	r := Mul(Int(1<<62), Int(4))
	assert.Equal(t, NullOverflow, r.NullKind())
}

func TestDivExactDivision(t *testing.T) {
	r := Div(Int(10), Int(2))
	assert.Equal(t, KindInt, r.Kind())
	assert.Equal(t, int64(5), r.AsInt())
}
