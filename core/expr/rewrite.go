package expr

// Rewrite applies fn to every node of the tree bottom-up and returns the
// resulting tree, used by the optimizer to push predicates past variable
// boundaries (spec.md §4.1), e.g. rewriting `$a.prop` to `$-.prop` after a
// rebind. Expressions are immutable after construction, so rewriting
// always produces a new tree rather than mutating in place.
func Rewrite(e Expression, fn func(Expression) Expression) Expression {
	rewritten := rewriteChildren(e, fn)
	return fn(rewritten)
}

func rewriteChildren(e Expression, fn func(Expression) Expression) Expression {
	switch t := e.(type) {
	case Unary:
		return Unary{Op: t.Op, Operand: Rewrite(t.Operand, fn)}
	case BinaryArithmetic:
		return BinaryArithmetic{Op: t.Op, Left: Rewrite(t.Left, fn), Right: Rewrite(t.Right, fn)}
	case BinaryRelational:
		return BinaryRelational{Op: t.Op, Left: Rewrite(t.Left, fn), Right: Rewrite(t.Right, fn)}
	case BinaryLogical:
		return BinaryLogical{Op: t.Op, Left: Rewrite(t.Left, fn), Right: Rewrite(t.Right, fn)}
	case TypeCast:
		return TypeCast{Target: t.Target, Operand: Rewrite(t.Operand, fn)}
	case FunctionCall:
		args := make([]Expression, len(t.Args))
		for i, a := range t.Args {
			args[i] = Rewrite(a, fn)
		}
		return FunctionCall{Name: t.Name, Args: args, registry: t.registry}
	default:
		// Leaves: Constant, VarProp, InputProp, Src/DstProp, Edge*, UUID,
		// Parameter have no children to descend into.
		return e
	}
}

// RewriteVarPropToInputProp rewrites every `$var.prop` reference to
// `$-.prop`, the specific rewrite spec.md §4.1 calls out as an example of
// pushing a predicate past a variable rebind.
func RewriteVarPropToInputProp(e Expression, targetVar string) Expression {
	return Rewrite(e, func(node Expression) Expression {
		if vp, ok := node.(VarProp); ok && vp.Var == targetVar {
			return InputProp{Prop: vp.Prop}
		}
		return node
	})
}
