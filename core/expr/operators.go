package expr

import (
	"fmt"

	"graphd/core"
)

// UnaryOp enumerates the supported unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryIsNull
	UnaryIsNotNull
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryIsNull:
		return "IS NULL"
	case UnaryIsNotNull:
		return "IS NOT NULL"
	default:
		return "?"
	}
}

// Unary applies a single operand operator, grounded on the teacher's
// predicate-negation handling generalized into a first-class node.
type Unary struct {
	Op      UnaryOp
	Operand Expression
}

func (u Unary) Kind() Kind { return KindUnary }

func (u Unary) Eval(ctx Context) (core.Value, error) {
	v, err := u.Operand.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	switch u.Op {
	case UnaryIsNull:
		return core.Bool(v.IsNull()), nil
	case UnaryIsNotNull:
		return core.Bool(!v.IsNull()), nil
	}
	if v.IsNull() {
		return v, nil
	}
	switch u.Op {
	case UnaryNeg:
		if v.Kind() == core.KindInt {
			return core.Int(-v.AsInt()), nil
		}
		if v.Kind() == core.KindFloat {
			return core.Float(-v.AsFloat()), nil
		}
		return core.NullWith(core.NullBadType), nil
	case UnaryNot:
		if v.Kind() != core.KindBool {
			return core.NullWith(core.NullBadType), nil
		}
		return core.Bool(!v.AsBool()), nil
	default:
		return core.Value{}, fmt.Errorf("expr: unknown unary op %d", u.Op)
	}
}

func (u Unary) Clone() Expression {
	return Unary{Op: u.Op, Operand: u.Operand.Clone()}
}

func (u Unary) Visit(fn func(Expression) bool) {
	if fn(u) {
		u.Operand.Visit(fn)
	}
}

func (u Unary) String() string {
	if u.Op == UnaryIsNull || u.Op == UnaryIsNotNull {
		return fmt.Sprintf("(%s %s)", u.Operand, u.Op)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.Operand)
}

func (u Unary) Equal(other Expression) bool {
	o, ok := other.(Unary)
	return ok && u.Op == o.Op && u.Operand.Equal(o.Operand)
}

func (u Unary) Encode() []byte {
	buf := writeTag(nil, KindUnary)
	buf = append(buf, byte(u.Op))
	return writeChildren(buf, u.Operand)
}

func decodeUnary(data []byte) (Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short unary op buffer")
	}
	op := UnaryOp(data[0])
	children, rest, err := readChildren(data[1:])
	if err != nil {
		return nil, nil, err
	}
	if len(children) != 1 {
		return nil, nil, fmt.Errorf("expr: unary expects 1 child, got %d", len(children))
	}
	return Unary{Op: op, Operand: children[0]}, rest, nil
}

// ArithmeticOp enumerates the supported binary arithmetic operators,
// grounded on query.ArithmeticOp.
type ArithmeticOp uint8

const (
	ArithAdd ArithmeticOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
)

func (op ArithmeticOp) String() string {
	switch op {
	case ArithAdd:
		return "+"
	case ArithSub:
		return "-"
	case ArithMul:
		return "*"
	case ArithDiv:
		return "/"
	case ArithMod:
		return "%"
	default:
		return "?"
	}
}

// BinaryArithmetic evaluates `left op right` using core's widening/overflow
// arithmetic rules (spec.md §3), grounded on query.ArithmeticFunction.
type BinaryArithmetic struct {
	Op          ArithmeticOp
	Left, Right Expression
}

func (b BinaryArithmetic) Kind() Kind { return KindBinaryArithmetic }

func (b BinaryArithmetic) Eval(ctx Context) (core.Value, error) {
	l, err := b.Left.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	r, err := b.Right.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	switch b.Op {
	case ArithAdd:
		return core.Add(l, r), nil
	case ArithSub:
		return core.Sub(l, r), nil
	case ArithMul:
		return core.Mul(l, r), nil
	case ArithDiv:
		return core.Div(l, r), nil
	case ArithMod:
		return core.Mod(l, r), nil
	default:
		return core.Value{}, fmt.Errorf("expr: unknown arithmetic op %d", b.Op)
	}
}

func (b BinaryArithmetic) Clone() Expression {
	return BinaryArithmetic{Op: b.Op, Left: b.Left.Clone(), Right: b.Right.Clone()}
}

func (b BinaryArithmetic) Visit(fn func(Expression) bool) {
	if fn(b) {
		b.Left.Visit(fn)
		b.Right.Visit(fn)
	}
}

func (b BinaryArithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (b BinaryArithmetic) Equal(other Expression) bool {
	o, ok := other.(BinaryArithmetic)
	return ok && b.Op == o.Op && b.Left.Equal(o.Left) && b.Right.Equal(o.Right)
}

func (b BinaryArithmetic) Encode() []byte {
	buf := writeTag(nil, KindBinaryArithmetic)
	buf = append(buf, byte(b.Op))
	return writeChildren(buf, b.Left, b.Right)
}

func decodeBinaryArithmetic(data []byte) (Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short arithmetic op buffer")
	}
	op := ArithmeticOp(data[0])
	children, rest, err := readChildren(data[1:])
	if err != nil {
		return nil, nil, err
	}
	if len(children) != 2 {
		return nil, nil, fmt.Errorf("expr: arithmetic expects 2 children, got %d", len(children))
	}
	return BinaryArithmetic{Op: op, Left: children[0], Right: children[1]}, rest, nil
}

// RelationalOp enumerates the supported comparison operators, grounded on
// query.CompareOp.
type RelationalOp uint8

const (
	RelEQ RelationalOp = iota
	RelNE
	RelLT
	RelLTE
	RelGT
	RelGTE
)

func (op RelationalOp) String() string {
	switch op {
	case RelEQ:
		return "=="
	case RelNE:
		return "!="
	case RelLT:
		return "<"
	case RelLTE:
		return "<="
	case RelGT:
		return ">"
	case RelGTE:
		return ">="
	default:
		return "?"
	}
}

// BinaryRelational compares two expressions per Value ordering, returning
// a bad-type null on kinds that can't be compared meaningfully (spec.md
// §4.1). Grounded on query.Comparison.
type BinaryRelational struct {
	Op          RelationalOp
	Left, Right Expression
}

func (b BinaryRelational) Kind() Kind { return KindBinaryRelational }

func (b BinaryRelational) Eval(ctx Context) (core.Value, error) {
	l, err := b.Left.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	r, err := b.Right.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	if l.IsNull() || r.IsNull() {
		return core.NullWith(core.NullBadData), nil
	}
	if l.Kind() != r.Kind() && !(l.IsNumeric() && r.IsNumeric()) {
		return core.NullWith(core.NullBadType), nil
	}
	cmp := core.CompareValues(l, r)
	switch b.Op {
	case RelEQ:
		return core.Bool(cmp == 0), nil
	case RelNE:
		return core.Bool(cmp != 0), nil
	case RelLT:
		return core.Bool(cmp < 0), nil
	case RelLTE:
		return core.Bool(cmp <= 0), nil
	case RelGT:
		return core.Bool(cmp > 0), nil
	case RelGTE:
		return core.Bool(cmp >= 0), nil
	default:
		return core.Value{}, fmt.Errorf("expr: unknown relational op %d", b.Op)
	}
}

func (b BinaryRelational) Clone() Expression {
	return BinaryRelational{Op: b.Op, Left: b.Left.Clone(), Right: b.Right.Clone()}
}

func (b BinaryRelational) Visit(fn func(Expression) bool) {
	if fn(b) {
		b.Left.Visit(fn)
		b.Right.Visit(fn)
	}
}

func (b BinaryRelational) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (b BinaryRelational) Equal(other Expression) bool {
	o, ok := other.(BinaryRelational)
	return ok && b.Op == o.Op && b.Left.Equal(o.Left) && b.Right.Equal(o.Right)
}

func (b BinaryRelational) Encode() []byte {
	buf := writeTag(nil, KindBinaryRelational)
	buf = append(buf, byte(b.Op))
	return writeChildren(buf, b.Left, b.Right)
}

func decodeBinaryRelational(data []byte) (Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short relational op buffer")
	}
	op := RelationalOp(data[0])
	children, rest, err := readChildren(data[1:])
	if err != nil {
		return nil, nil, err
	}
	if len(children) != 2 {
		return nil, nil, fmt.Errorf("expr: relational expects 2 children, got %d", len(children))
	}
	return BinaryRelational{Op: op, Left: children[0], Right: children[1]}, rest, nil
}

// LogicalOp enumerates AND/OR/XOR.
type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalXor
)

func (op LogicalOp) String() string {
	switch op {
	case LogicalAnd:
		return "AND"
	case LogicalOr:
		return "OR"
	case LogicalXor:
		return "XOR"
	default:
		return "?"
	}
}

// BinaryLogical evaluates AND/OR/XOR with short-circuiting for AND/OR, per
// spec.md §4.1 ("AND stops on false, OR on true; XOR evaluates both").
type BinaryLogical struct {
	Op          LogicalOp
	Left, Right Expression
}

func (b BinaryLogical) Kind() Kind { return KindBinaryLogical }

func (b BinaryLogical) Eval(ctx Context) (core.Value, error) {
	l, err := b.Left.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	if l.Kind() != core.KindBool && !l.IsNull() {
		return core.NullWith(core.NullBadType), nil
	}

	if b.Op == LogicalAnd && !l.IsNull() && !l.AsBool() {
		return core.Bool(false), nil
	}
	if b.Op == LogicalOr && !l.IsNull() && l.AsBool() {
		return core.Bool(true), nil
	}

	r, err := b.Right.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	if r.Kind() != core.KindBool && !r.IsNull() {
		return core.NullWith(core.NullBadType), nil
	}
	if l.IsNull() || r.IsNull() {
		return core.NullWith(core.NullBadData), nil
	}

	switch b.Op {
	case LogicalAnd:
		return core.Bool(l.AsBool() && r.AsBool()), nil
	case LogicalOr:
		return core.Bool(l.AsBool() || r.AsBool()), nil
	case LogicalXor:
		return core.Bool(l.AsBool() != r.AsBool()), nil
	default:
		return core.Value{}, fmt.Errorf("expr: unknown logical op %d", b.Op)
	}
}

func (b BinaryLogical) Clone() Expression {
	return BinaryLogical{Op: b.Op, Left: b.Left.Clone(), Right: b.Right.Clone()}
}

func (b BinaryLogical) Visit(fn func(Expression) bool) {
	if fn(b) {
		b.Left.Visit(fn)
		b.Right.Visit(fn)
	}
}

func (b BinaryLogical) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (b BinaryLogical) Equal(other Expression) bool {
	o, ok := other.(BinaryLogical)
	return ok && b.Op == o.Op && b.Left.Equal(o.Left) && b.Right.Equal(o.Right)
}

func (b BinaryLogical) Encode() []byte {
	buf := writeTag(nil, KindBinaryLogical)
	buf = append(buf, byte(b.Op))
	return writeChildren(buf, b.Left, b.Right)
}

func decodeBinaryLogical(data []byte) (Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short logical op buffer")
	}
	op := LogicalOp(data[0])
	children, rest, err := readChildren(data[1:])
	if err != nil {
		return nil, nil, err
	}
	if len(children) != 2 {
		return nil, nil, fmt.Errorf("expr: logical expects 2 children, got %d", len(children))
	}
	return BinaryLogical{Op: op, Left: children[0], Right: children[1]}, rest, nil
}

// TypeCast converts an evaluated expression to the target kind, returning
// a bad-type null on failure rather than erroring (spec.md §4.1).
type TypeCast struct {
	Target core.ValueKind
	Operand Expression
}

func (c TypeCast) Kind() Kind { return KindTypeCast }

func (c TypeCast) Eval(ctx Context) (core.Value, error) {
	v, err := c.Operand.Eval(ctx)
	if err != nil {
		return core.Value{}, err
	}
	if v.IsNull() {
		return v, nil
	}
	return castValue(v, c.Target), nil
}

func castValue(v core.Value, target core.ValueKind) core.Value {
	if v.Kind() == target {
		return v
	}
	switch target {
	case core.KindInt:
		switch v.Kind() {
		case core.KindFloat:
			return core.Int(int64(v.AsFloat()))
		case core.KindBool:
			if v.AsBool() {
				return core.Int(1)
			}
			return core.Int(0)
		case core.KindString:
			var i int64
			if _, err := fmt.Sscanf(v.AsString(), "%d", &i); err == nil {
				return core.Int(i)
			}
		}
	case core.KindFloat:
		switch v.Kind() {
		case core.KindInt:
			return core.Float(float64(v.AsInt()))
		case core.KindString:
			var f float64
			if _, err := fmt.Sscanf(v.AsString(), "%g", &f); err == nil {
				return core.Float(f)
			}
		}
	case core.KindString:
		return core.Str(v.String())
	case core.KindBool:
		switch v.Kind() {
		case core.KindInt:
			return core.Bool(v.AsInt() != 0)
		case core.KindString:
			switch v.AsString() {
			case "true":
				return core.Bool(true)
			case "false":
				return core.Bool(false)
			}
		}
	}
	return core.NullWith(core.NullBadType)
}

func (c TypeCast) Clone() Expression {
	return TypeCast{Target: c.Target, Operand: c.Operand.Clone()}
}

func (c TypeCast) Visit(fn func(Expression) bool) {
	if fn(c) {
		c.Operand.Visit(fn)
	}
}

func (c TypeCast) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", c.Operand, c.Target.TypeName())
}

func (c TypeCast) Equal(other Expression) bool {
	o, ok := other.(TypeCast)
	return ok && c.Target == o.Target && c.Operand.Equal(o.Operand)
}

func (c TypeCast) Encode() []byte {
	buf := writeTag(nil, KindTypeCast)
	buf = append(buf, byte(c.Target))
	return writeChildren(buf, c.Operand)
}

func decodeTypeCast(data []byte) (Expression, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("expr: short typecast target buffer")
	}
	target := core.ValueKind(data[0])
	children, rest, err := readChildren(data[1:])
	if err != nil {
		return nil, nil, err
	}
	if len(children) != 1 {
		return nil, nil, fmt.Errorf("expr: typecast expects 1 child, got %d", len(children))
	}
	return TypeCast{Target: target, Operand: children[0]}, rest, nil
}
