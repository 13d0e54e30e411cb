package sema

import "github.com/shkhuz/aria/internal/ast"

// isComptimeConstExpr is a conservative syntactic check for "this
// expression can be evaluated at compile time", used to enforce
// §4.5.3's "comptime-required for globals" rule. It does not attempt
// full constant folding across symbol references (a global reading
// another already-checked global constant is treated as non-constant
// here, a known simplification — see DESIGN.md).
func isComptimeConstExpr(n *ast.Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case ast.KindIntLit, ast.KindStringLit, ast.KindCharLit, ast.KindBuiltinSym:
		return true
	case ast.KindUnary:
		return isComptimeConstExpr(n.Operand)
	case ast.KindCast:
		return isComptimeConstExpr(n.Operand)
	case ast.KindArithBinop, ast.KindBoolBinop, ast.KindCmpBinop:
		return isComptimeConstExpr(n.Target) && isComptimeConstExpr(n.Value)
	case ast.KindArrayLit, ast.KindTupleLit:
		for _, e := range n.Elems {
			if !isComptimeConstExpr(e) {
				return false
			}
		}
		return true
	case ast.KindAggregateLit:
		for _, f := range n.Fields {
			if !isComptimeConstExpr(f.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
