package sema

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/source"
)

// classifyLValue implements §4.5.6. It assumes n (and the l-value
// chain it is built from) has already been type-checked, so every
// referenced sub-node's Typespec is populated; it reads those fields
// rather than re-walking and re-checking.
//
// declSpan, when non-nil, is the span of the original declaration —
// used as the diagnostic's secondary span when assigning to an
// immutable l-value.
func (c *Checker) classifyLValue(n *ast.Node) (ok bool, immutable bool, declSpan *source.Span) {
	if n == nil {
		return false, false, nil
	}
	switch n.Kind {
	case ast.KindSymbol:
		decl := n.Ref
		if decl == nil {
			return false, false, nil
		}
		switch n.RefKind {
		case ast.RefFunc, ast.RefExternFunc, ast.RefImmVar:
			return true, true, &decl.Span
		case ast.RefMutVar, ast.RefParam:
			return true, false, &decl.Span
		case ast.RefExternVar:
			return true, !decl.Mutable, &decl.Span
		default:
			return false, false, nil
		}

	case ast.KindDeref:
		opType := n.Operand.Typespec
		if opType == nil || opType.Kind != ast.TSPtr {
			return false, false, nil
		}
		// Immutability comes from the pointer's own type, not from
		// whether the variable holding the pointer is itself mutable
		// (§4.5.6: "immutability propagates from the outermost
		// reference" — the pointee, here).
		var span *source.Span
		if n.Operand.Kind == ast.KindSymbol && n.Operand.Ref != nil {
			span = &n.Operand.Ref.Span
		}
		return true, opType.Immutable, span

	case ast.KindIndex:
		baseType := n.Target.Typespec
		if baseType == nil {
			return false, false, nil
		}
		switch baseType.Kind {
		case ast.TSMultiPtr, ast.TSSlice:
			return true, baseType.Immutable, nil
		case ast.TSArray:
			// Inline storage: immutability comes from the base
			// l-value, not from a pointer indirection.
			return c.classifyLValue(n.Target)
		case ast.TSPtr:
			if baseType.Child != nil && baseType.Child.Kind == ast.TSArray {
				return true, baseType.Immutable, nil
			}
			return false, false, nil
		default:
			return false, false, nil
		}

	case ast.KindAccess:
		baseType := n.Target.Typespec
		if baseType == nil {
			return false, false, nil
		}
		switch {
		case baseType.Kind == ast.TSStruct:
			return c.classifyLValue(n.Target)
		case baseType.Kind == ast.TSPtr && baseType.Child != nil && baseType.Child.Kind == ast.TSStruct:
			return true, baseType.Immutable, nil
		case n.Accessed && n.Ref != nil:
			switch n.Ref.Kind {
			case ast.KindVarDecl:
				return true, !n.Ref.Mutable, &n.Ref.Span
			case ast.KindExternVar:
				return true, !n.Ref.Mutable, &n.Ref.Span
			default:
				return false, false, nil
			}
		default:
			return false, false, nil
		}

	default:
		return false, false, nil
	}
}
