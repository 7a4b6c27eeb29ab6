package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareValuesNullOrdering(t *testing.T) {
	assert.Equal(t, 0, CompareValues(Null(), Null()))
	assert.Equal(t, -1, CompareValues(Null(), Int(1)))
	assert.Equal(t, 1, CompareValues(Int(1), Null()))
}

func TestCompareValuesNumericWidening(t *testing.T) {
	assert.Equal(t, 0, CompareValues(Int(2), Float(2.0)))
	assert.Equal(t, -1, CompareValues(Int(1), Float(1.5)))
	assert.Equal(t, 1, CompareValues(Float(3.5), Int(3)))
}

func TestCompareValuesString(t *testing.T) {
	assert.Equal(t, -1, CompareValues(Str("a"), Str("b")))
	assert.Equal(t, 0, CompareValues(Str("a"), Str("a")))
}

func TestCompareValuesCrossKindStable(t *testing.T) {
	a := CompareValues(Str("x"), Bool(true))
	b := CompareValues(Str("x"), Bool(true))
	assert.Equal(t, a, b)
}

func TestCompareValuesVertex(t *testing.T) {
	v1 := VertexVal(Vertex{ID: NewVertexID("a")})
	v2 := VertexVal(Vertex{ID: NewVertexID("b")})
	assert.NotEqual(t, 0, CompareValues(v1, v2))
	assert.Equal(t, 0, CompareValues(v1, v1))
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(Str("a"), Str("a")))
	assert.False(t, ValuesEqual(Int(1), Float(1.0)))
	assert.True(t, ValuesEqual(Null(), Null()))
}

func TestCompareValuesDateTime(t *testing.T) {
	t1 := DateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	t2 := DateTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, CompareValues(t1, t2))
}
