package resolver

import "github.com/shkhuz/aria/internal/ast"

// fnContext tracks the state a resolve-bodies walk needs besides the
// scope stack: which function encloses the current position (for
// `return`'s FuncRef) and which loops enclose it (for `break`/
// `continue`'s LoopRef), innermost last.
type fnContext struct {
	fn    *ast.Node
	loops []*ast.Node
}

func (r *Resolver) resolveFile(f *ast.File) {
	fileScope := r.fileScopes[f]
	for _, d := range f.Decls {
		if d == nil {
			continue
		}
		switch d.Kind {
		case ast.KindFuncDef:
			r.resolveFuncDef(d, fileScope)
		case ast.KindExternFunc:
			r.resolveFuncHeader(d.Header, fileScope)
		case ast.KindVarDecl:
			r.resolveTypespec(d.Child, fileScope)
			if d.HasValue {
				r.resolveExpr(d.Value, fileScope, nil)
			}
		case ast.KindExternVar:
			r.resolveTypespec(d.Child, fileScope)
		case ast.KindStruct:
			for _, field := range d.StructFields {
				r.resolveTypespec(field.Child, fileScope)
			}
		case ast.KindTypeAlias:
			r.resolveTypespec(d.Child, fileScope)
		}
	}
}

func (r *Resolver) resolveFuncHeader(hdr *ast.Node, sc *scope) {
	for _, p := range hdr.Params {
		r.resolveTypespec(p.Child, sc)
	}
	r.resolveTypespec(hdr.Child, sc)
}

func (r *Resolver) resolveFuncDef(fn *ast.Node, fileScope *scope) {
	r.resolveFuncHeader(fn.Header, fileScope)

	paramScope := newScope(fileScope, true)
	for _, p := range fn.Header.Params {
		paramScope.define(p.Name, p)
		p.RefKind = ast.RefParam
	}
	ctx := &fnContext{fn: fn}
	r.resolveBlock(fn.Then, paramScope, ctx)
}

// resolveTypespec walks a typespec-shaped Node, binding KindPrimType
// references that name a struct or type alias (builtin primitive
// keywords already carry their BuiltinKind from the parser and need no
// lookup).
func (r *Resolver) resolveTypespec(n *ast.Node, sc *scope) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindPrimType:
		// Builtin primitive/void/noreturn keyword references need no
		// lookup; anything else names a struct or type alias.
		if ast.PrimByName[n.Name] != nil || n.Name == "void" || n.Name == "noreturn" {
			return
		}
		decl, _ := sc.lookup(n.Name)
		if decl == nil {
			r.diag.Errorf(n.Span, "undeclared type `%s`", n.Name)
			return
		}
		if decl.Kind != ast.KindStruct && decl.Kind != ast.KindTypeAlias {
			r.diag.Errorf(n.Span, "`%s` is not a type", n.Name)
			return
		}
		n.Ref = decl
	case ast.KindPtrType, ast.KindMultiPtrType, ast.KindSliceType, ast.KindArrayType:
		if n.Kind == ast.KindArrayType {
			r.resolveExpr(n.Index, sc, nil)
		}
		r.resolveTypespec(n.Child, sc)
	case ast.KindFuncType:
		for _, p := range n.Params {
			r.resolveTypespec(p, sc)
		}
		r.resolveTypespec(n.Child, sc)
	case ast.KindTupleType:
		for _, e := range n.Elems {
			r.resolveTypespec(e, sc)
		}
	case ast.KindGenericApp:
		r.resolveTypespec(n.Target, sc)
		for _, e := range n.Elems {
			r.resolveTypespec(e, sc)
		}
	}
}

// resolveBlock pushes a new scope for n's statements, binding each
// var-decl after resolving its initializer so `imm x = x;` cannot
// resolve to itself.
func (r *Resolver) resolveBlock(n *ast.Node, parent *scope, ctx *fnContext) {
	sc := newScope(parent, false)
	for _, stmt := range n.Stmts {
		r.resolveStmt(stmt, sc, ctx)
	}
	if n.Tail != nil {
		r.resolveExpr(n.Tail, sc, ctx)
	}
}

func (r *Resolver) resolveStmt(n *ast.Node, sc *scope, ctx *fnContext) {
	switch n.Kind {
	case ast.KindVarDecl:
		r.resolveTypespec(n.Child, sc)
		if n.HasValue {
			r.resolveExpr(n.Value, sc, ctx)
		}
		if prev, dup := sc.define(n.Name, n); dup {
			r.diag.Errorf(n.Span, "redeclaration of `%s` in this block", n.Name).
				Fat(prev.Span, "previously declared here")
			return
		}
		if sc.parent != nil {
			if shadowed := sc.parent.shadowedInFunction(n.Name); shadowed != nil {
				r.diag.Warnf(n.Span, "declaration of `%s` shadows an outer declaration", n.Name).
					Fat(shadowed.Span, "outer declaration is here")
			}
		}

	case ast.KindExprStmt:
		r.resolveExpr(n.Operand, sc, ctx)
	}
}

func (r *Resolver) resolveExpr(n *ast.Node, sc *scope, ctx *fnContext) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindSymbol:
		decl, _ := sc.lookup(n.Name)
		if decl == nil {
			r.diag.Errorf(n.Span, "undeclared symbol `%s`", n.Name)
			return
		}
		n.Ref = decl
		n.RefKind = refKindOf(decl)

	case ast.KindBuiltinSym:
		// nothing to resolve: classified entirely by BuiltinKind.

	case ast.KindIntLit, ast.KindStringLit, ast.KindCharLit:
		// no sub-structure to resolve.

	case ast.KindArrayLit, ast.KindTupleLit:
		for _, e := range n.Elems {
			r.resolveExpr(e, sc, ctx)
		}

	case ast.KindAggregateLit:
		r.resolveExpr(n.Target, sc, ctx)
		for _, f := range n.Fields {
			r.resolveExpr(f.Value, sc, ctx)
		}

	case ast.KindUnary:
		r.resolveExpr(n.Operand, sc, ctx)
	case ast.KindDeref:
		r.resolveExpr(n.Operand, sc, ctx)
	case ast.KindIndex:
		r.resolveExpr(n.Target, sc, ctx)
		r.resolveExpr(n.Index, sc, ctx)

	case ast.KindAccess:
		r.resolveExpr(n.Target, sc, ctx)
		// Module-qualified access resolves its member eagerly, since
		// doing so needs no typing (§4.4); struct-field/slice-field
		// access is left for the checker, which has the LHS type.
		if n.Target.Kind == ast.KindSymbol && n.Target.RefKind == ast.RefImport && n.Target.Ref != nil && n.Target.Ref.ModuleFile != nil {
			modScope := r.fileScopes[n.Target.Ref.ModuleFile]
			if modScope != nil {
				if member, ok := modScope.names[n.Name]; ok {
					n.Ref = member
					n.RefKind = refKindOf(member)
				} else {
					r.diag.Errorf(n.Span, "undeclared member `%s` in imported module", n.Name)
				}
			}
			n.Accessed = true
		}

	case ast.KindArithBinop, ast.KindBoolBinop, ast.KindCmpBinop:
		r.resolveExpr(n.Target, sc, ctx)
		r.resolveExpr(n.Value, sc, ctx)
	case ast.KindAssign:
		r.resolveExpr(n.Target, sc, ctx)
		r.resolveExpr(n.Value, sc, ctx)
	case ast.KindCast:
		r.resolveExpr(n.Operand, sc, ctx)
		r.resolveTypespec(n.Child, sc)
	case ast.KindCall:
		r.resolveExpr(n.Target, sc, ctx)
		for _, a := range n.Args {
			r.resolveExpr(a.Value, sc, ctx)
		}

	case ast.KindBlock:
		r.resolveBlock(n, sc, ctx)

	case ast.KindIf:
		r.resolveExpr(n.Cond, sc, ctx)
		r.resolveBlock(n.Then, sc, ctx)
		if n.Else != nil {
			if n.Else.Kind == ast.KindIf {
				r.resolveExpr(n.Else, sc, ctx)
			} else {
				r.resolveBlock(n.Else, sc, ctx)
			}
		}

	case ast.KindWhile:
		r.resolveExpr(n.Cond, sc, ctx)
		loopCtx := ctx.withLoop(n)
		r.resolveBlock(n.Then, sc, loopCtx)
		if n.Else != nil {
			r.resolveExpr(n.Else, sc, ctx)
		}

	case ast.KindFor:
		forScope := newScope(sc, false)
		for _, s := range n.Init {
			r.resolveStmt(s, forScope, ctx)
		}
		r.resolveExpr(n.Cond, forScope, ctx)
		for _, s := range n.Step {
			r.resolveStmt(s, forScope, ctx)
		}
		loopCtx := ctx.withLoop(n)
		r.resolveBlock(n.Then, forScope, loopCtx)

	case ast.KindBreak:
		if n.HasValue {
			r.resolveExpr(n.Value, sc, ctx)
		}
		if ctx != nil && len(ctx.loops) > 0 {
			n.LoopRef = ctx.loops[len(ctx.loops)-1]
			n.LoopRef.Breaks = append(n.LoopRef.Breaks, n)
		} else {
			r.diag.Errorf(n.Span, "`break` outside of a loop")
		}

	case ast.KindContinue:
		if ctx != nil && len(ctx.loops) > 0 {
			n.LoopRef = ctx.loops[len(ctx.loops)-1]
		} else {
			r.diag.Errorf(n.Span, "`continue` outside of a loop")
		}

	case ast.KindReturn:
		if n.HasValue {
			r.resolveExpr(n.Value, sc, ctx)
		}
		if ctx != nil && ctx.fn != nil {
			n.FuncRef = ctx.fn
		} else {
			r.diag.Errorf(n.Span, "`return` outside of a function")
		}
	}
}

func (c *fnContext) withLoop(loop *ast.Node) *fnContext {
	if c == nil {
		return &fnContext{loops: []*ast.Node{loop}}
	}
	next := &fnContext{fn: c.fn, loops: make([]*ast.Node, len(c.loops)+1)}
	copy(next.loops, c.loops)
	next.loops[len(next.loops)-1] = loop
	return next
}
