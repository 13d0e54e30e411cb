package sema

import "github.com/shkhuz/aria/internal/ast"

// AssignResult classifies the outcome of assign (§4.5.2 predicate 2).
type AssignResult int

const (
	AssignOk AssignResult = iota
	AssignMismatch
	AssignConstViolation
	// AssignReported marks a case where the failure reason is more
	// specific than a generic mismatch (a comptime integer that
	// overflows the target's range, or a nil operand type that was
	// already reported) and the caller should emit a dedicated message
	// instead of the generic one, or none.
	AssignReported
)

// assign decides whether a value of type from may be used where to is
// expected, per §4.5.2. peer selects "peer mode", used when unifying
// two branches/operands against each other rather than a fixed target
// (if/else, binop operands, loop break values): either direction is
// tried and sized integers widen to the wider of the two instead of
// requiring from to narrow into to.
//
// assign has no side effects; it never emits diagnostics itself. The
// returned Typespec is the final bound type on success.
func assign(from, to *ast.Typespec, peer bool) (*ast.Typespec, AssignResult) {
	if from == nil || to == nil {
		return nil, AssignReported
	}
	if from.Kind == ast.TSNoreturn {
		// noreturn is assignable to anything, noreturn included; any
		// other type assigned to noreturn is rejected just below.
		return to, AssignOk
	}
	if to.Kind == ast.TSNoreturn {
		return nil, AssignMismatch
	}

	switch {
	case from.Kind == ast.TSPrim && to.Kind == ast.TSPrim:
		return assignPrim(from, to, peer)

	case from.Kind == ast.TSPtr && to.Kind == ast.TSPtr,
		from.Kind == ast.TSMultiPtr && to.Kind == ast.TSMultiPtr,
		from.Kind == ast.TSSlice && to.Kind == ast.TSSlice:
		if !ast.ExactEqual(from.Child, to.Child) {
			return nil, AssignMismatch
		}
		if from.Immutable && !to.Immutable {
			return nil, AssignConstViolation
		}
		return to, AssignOk

	case from.Kind == ast.TSPtr && from.Child != nil && from.Child.Kind == ast.TSArray &&
		(to.Kind == ast.TSMultiPtr || to.Kind == ast.TSSlice):
		// array-pointer -> slice/multiptr decay (§4.5.4).
		if !ast.ExactEqual(from.Child.Child, to.Child) {
			return nil, AssignMismatch
		}
		if from.Immutable && !to.Immutable {
			return nil, AssignConstViolation
		}
		return to, AssignOk

	case from.Kind == ast.TSFunc && to.Kind == ast.TSFunc:
		if len(from.Params) != len(to.Params) {
			return nil, AssignMismatch
		}
		if _, r := assign(from.Ret, to.Ret, false); r != AssignOk {
			return nil, AssignMismatch
		}
		for i := range from.Params {
			if _, r := assign(from.Params[i], to.Params[i], false); r != AssignOk {
				return nil, AssignMismatch
			}
		}
		return to, AssignOk

	case from.Kind == ast.TSStruct && to.Kind == ast.TSStruct:
		if from.Decl == to.Decl {
			return to, AssignOk
		}
		return nil, AssignMismatch

	default:
		if ast.ExactEqual(from, to) {
			return to, AssignOk
		}
		return nil, AssignMismatch
	}
}

func assignPrim(from, to *ast.Typespec, peer bool) (*ast.Typespec, AssignResult) {
	if from.Prim == to.Prim {
		return to, AssignOk
	}
	if from.Prim == ast.Bool || to.Prim == ast.Bool {
		return nil, AssignMismatch
	}
	if !from.Prim.IsInteger() || !to.Prim.IsInteger() {
		return nil, AssignMismatch
	}

	if from.Prim == ast.ComptimeInteger && to.Prim != ast.ComptimeInteger {
		if !from.Comptime.Fits(to.Prim.Bytes(), to.Prim.Signed()) {
			return nil, AssignReported
		}
		return to, AssignOk
	}
	if to.Prim == ast.ComptimeInteger && from.Prim != ast.ComptimeInteger {
		if !peer {
			return nil, AssignMismatch
		}
		if !to.Comptime.Fits(from.Prim.Bytes(), from.Prim.Signed()) {
			return nil, AssignReported
		}
		return from, AssignOk
	}

	// two distinct sized integers.
	if from.Prim.Signed() != to.Prim.Signed() {
		return nil, AssignMismatch
	}
	if peer {
		if from.Prim.Bytes() >= to.Prim.Bytes() {
			return from, AssignOk
		}
		return to, AssignOk
	}
	if from.Prim.Bytes() <= to.Prim.Bytes() {
		return to, AssignOk
	}
	return nil, AssignMismatch
}

// peerUnify tries assign in both directions and returns whichever
// succeeds, used wherever two operand types must agree without either
// one being the fixed "target" (if/else branches, loop break values,
// binary operators).
func (c *Checker) peerUnify(a, b *ast.Typespec) (*ast.Typespec, AssignResult) {
	if a == nil || b == nil {
		return nil, AssignReported
	}
	if final, r := assign(a, b, true); r == AssignOk {
		return final, AssignOk
	}
	if final, r := assign(b, a, true); r == AssignOk {
		return final, AssignOk
	}
	if _, r := assign(a, b, true); r == AssignReported {
		return nil, AssignReported
	}
	if _, r := assign(b, a, true); r == AssignReported {
		return nil, AssignReported
	}
	return nil, AssignMismatch
}

// checkExprTargetReport checks n bidirectionally against target (nil
// meaning "no target, infer freely"), then reports a diagnostic if the
// inferred type does not assign to target. It returns n's own inferred
// type (not the coerced one) so callers can still inspect what n
// actually produced.
func (c *Checker) checkExprTargetReport(n *ast.Node, target *ast.Typespec, peer bool) *ast.Typespec {
	actual := c.checkExpr(n, target, peer)
	if target == nil || actual == nil {
		return actual
	}
	_, r := assign(actual, target, peer)
	switch r {
	case AssignOk:
		return actual
	case AssignConstViolation:
		c.diag.Errorf(n.Span, "type mismatch: expected `%s`, got `%s`", target.String(), actual.String()).
			Thin("type mismatch due to change in immutability")
	case AssignReported:
		c.diag.Errorf(n.Span, "integer %s does not fit in `%s`", actual.Comptime.String(), target.String())
	default:
		c.diag.Errorf(n.Span, "type mismatch: expected `%s`, got `%s`", target.String(), actual.String())
	}
	return actual
}
