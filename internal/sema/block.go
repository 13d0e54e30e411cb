package sema

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/source"
)

// checkBlock types a block's statements then its optional trailing
// value expression, per §4.5.5. A statement whose type is noreturn
// marks every following statement (and the tail, if present)
// unreachable; the block's own type is the tail's type, or void if
// there is no tail, or noreturn if no tail exists but some statement
// diverged.
func (c *Checker) checkBlock(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	diverged := false
	for _, s := range n.Stmts {
		if diverged {
			c.diag.Errorf(s.Span, "unreachable code")
		}
		if c.checkStmt(s) {
			diverged = true
		}
	}
	if n.Tail != nil {
		if diverged {
			c.diag.Errorf(n.Tail.Span, "unreachable code")
		}
		t := c.checkExprTargetReport(n.Tail, target, false)
		if t == nil {
			t = ast.Void
		}
		n.Typespec = t
		return t
	}
	if diverged {
		n.Typespec = ast.Noreturn
		return ast.Noreturn
	}
	n.Typespec = ast.Void
	return ast.Void
}

// checkStmt types one block statement and reports whether it
// diverges (has noreturn type), which checkBlock uses to flag
// unreachable code.
func (c *Checker) checkStmt(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindVarDecl:
		return c.checkLocalVarDecl(n)
	case ast.KindExprStmt:
		t := c.checkExpr(n.Operand, nil, false)
		n.Typespec = t
		return t != nil && t.Kind == ast.TSNoreturn
	default:
		return false
	}
}

func (c *Checker) checkLocalVarDecl(n *ast.Node) bool {
	var ann *ast.Typespec
	if n.Child != nil {
		ann = c.evalTypespec(n.Child)
	}
	var vt *ast.Typespec
	diverges := false
	if n.HasValue {
		vt = c.checkExprTargetReport(n.Value, ann, false)
		diverges = vt != nil && vt.Kind == ast.TSNoreturn
	} else if ann == nil {
		c.diag.Errorf(n.Span, "variable `%s` needs a type annotation or an initializer", n.Name)
	}
	final := ann
	if final == nil {
		final = vt
	}
	if n.Mutable && final != nil && final.AcceptKind() == ast.AcceptComptime {
		c.diag.Errorf(n.Span, "mutable variable `%s` needs a sized type annotation, not a bare comptime integer", n.Name)
	}
	n.Typespec = final
	return diverges
}

// checkIf handles a whole if/else-if/else chain, recursing through
// n.Else when it is itself a KindIf (§4.5.5).
func (c *Checker) checkIf(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	condT := c.checkExpr(n.Cond, ast.PrimBool, false)
	if condT != nil && !isBoolType(condT) {
		c.diag.Errorf(n.Cond.Span, "condition must be `bool`, got `%s`", condT.String())
	}

	thenType := c.checkBlock(n.Then, target)

	var resultType *ast.Typespec
	if n.Else == nil {
		if thenType != nil && thenType.Kind != ast.TSVoid && thenType.Kind != ast.TSNoreturn {
			c.diag.Errorf(n.Span, "`if` yields a value but has no `else`").
				Fat(yieldSpan(n.Then), "this value needs an `else` branch")
		}
		resultType = ast.Void
	} else {
		var elseType *ast.Typespec
		if n.Else.Kind == ast.KindIf {
			elseType = c.checkIf(n.Else, target)
		} else {
			elseType = c.checkBlock(n.Else, target)
		}
		unified, r := c.peerUnify(thenType, elseType)
		if r != AssignOk {
			c.diag.Errorf(n.Span, "`if`/`else` branches have incompatible types: `%s` and `%s`",
				typeStr(thenType), typeStr(elseType))
			resultType = ast.Void
		} else {
			resultType = unified
		}
	}
	n.Typespec = resultType
	return resultType
}

// checkWhile types a while-loop: condition, body (which must not
// yield a value directly — only via break), and the break/else
// peer-unification in finishLoop.
func (c *Checker) checkWhile(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	staticTrue := isStaticTrueCond(n.Cond)
	condT := c.checkExpr(n.Cond, ast.PrimBool, false)
	if condT != nil && !isBoolType(condT) {
		c.diag.Errorf(n.Cond.Span, "condition must be `bool`, got `%s`", condT.String())
	}
	bodyType := c.checkBlock(n.Then, nil)
	if bodyType != nil && bodyType.Kind != ast.TSVoid && bodyType.Kind != ast.TSNoreturn {
		c.diag.Errorf(yieldSpan(n.Then), "loop body must not yield a value; use `break` instead")
	}
	return c.finishLoop(n, target, staticTrue)
}

// checkFor types a for-loop's init/cond/step in its own scope (the
// resolver already bound the names; this only types the expressions),
// then its body the same way checkWhile does.
func (c *Checker) checkFor(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	for _, s := range n.Init {
		c.checkStmt(s)
	}
	staticTrue := n.Cond == nil
	if n.Cond != nil {
		condT := c.checkExpr(n.Cond, ast.PrimBool, false)
		if condT != nil && !isBoolType(condT) {
			c.diag.Errorf(n.Cond.Span, "condition must be `bool`, got `%s`", condT.String())
		}
	}
	for _, s := range n.Step {
		c.checkStmt(s)
	}
	bodyType := c.checkBlock(n.Then, nil)
	if bodyType != nil && bodyType.Kind != ast.TSVoid && bodyType.Kind != ast.TSNoreturn {
		c.diag.Errorf(yieldSpan(n.Then), "loop body must not yield a value; use `break` instead")
	}
	return c.finishLoop(n, target, staticTrue)
}

// finishLoop peer-unifies every break-with-value against the loop's
// else clause to produce the loop's own type, per §4.5.5: an else is
// mandatory once any break yields a value; the loop's type is void if
// none do.
func (c *Checker) finishLoop(n *ast.Node, target *ast.Typespec, staticTrueEntry bool) *ast.Typespec {
	var withValue []*ast.Node
	for _, b := range n.Breaks {
		if b.HasValue {
			withValue = append(withValue, b)
		}
	}

	var resultType *ast.Typespec
	if len(withValue) == 0 {
		if n.Else != nil {
			c.checkExpr(n.Else, nil, false)
		}
		resultType = ast.Void
	} else if n.Else == nil {
		c.diag.Errorf(n.Span, "loop has a `break` that yields a value, so it needs an `else` clause")
		resultType = withValue[0].Value.Typespec
		if resultType == nil {
			resultType = ast.Void
		}
	} else {
		unified := c.checkExpr(n.Else, nil, false)
		ok := unified != nil
		for _, b := range withValue {
			if !ok {
				break
			}
			u, r := c.peerUnify(unified, b.Value.Typespec)
			if r != AssignOk {
				ok = false
				break
			}
			unified = u
		}
		if !ok {
			c.diag.Errorf(n.Span, "loop `break` values and `else` do not agree on a common type")
			resultType = ast.Void
		} else {
			resultType = unified
		}
	}

	if resultType != nil && resultType.AcceptKind() == ast.AcceptComptime && !staticTrueEntry {
		c.diag.Errorf(n.Span, "loop result type is comptime-only, but the loop's entry depends on runtime control flow")
	}
	n.Typespec = resultType
	return resultType
}

func isStaticTrueCond(cond *ast.Node) bool {
	return cond != nil && cond.Kind == ast.KindBuiltinSym && cond.Builtin == ast.BuiltinTrue
}

// yieldSpan returns the span that "produced" a block's value: its
// tail expression if present, else the block itself.
func yieldSpan(block *ast.Node) source.Span {
	if block.Tail != nil {
		return block.Tail.Span
	}
	return block.Span
}
