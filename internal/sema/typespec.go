package sema

import "github.com/shkhuz/aria/internal/ast"

// evalTypespec converts a typespec-shaped Node (KindPrimType and
// friends, §3.3) into a concrete *ast.Typespec. Struct and type-alias
// references are already bound onto n.Ref by the resolver (§4.4); this
// function only has to unwrap the TSType wrapper both forms carry in
// declaration position (§10 SPEC_FULL: aliases are "wrapped in TSType"
// symmetrically with the resolver's struct placeholder).
func (c *Checker) evalTypespec(n *ast.Node) *ast.Typespec {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindPrimType:
		if ts, ok := ast.PrimByName[n.Name]; ok {
			return ts
		}
		if n.Name == "void" {
			return ast.Void
		}
		if n.Name == "noreturn" {
			return ast.Noreturn
		}
		if n.Ref == nil {
			// the resolver already reported "undeclared type".
			return nil
		}
		return c.unwrapTypeRef(n.Ref)

	case ast.KindPtrType:
		child := c.evalTypespec(n.Child)
		if child == nil {
			return nil
		}
		return &ast.Typespec{Kind: ast.TSPtr, Immutable: n.Immutable, Child: child}

	case ast.KindMultiPtrType:
		child := c.evalTypespec(n.Child)
		if child == nil {
			return nil
		}
		return &ast.Typespec{Kind: ast.TSMultiPtr, Immutable: n.Immutable, Child: child}

	case ast.KindSliceType:
		child := c.evalTypespec(n.Child)
		if child == nil {
			return nil
		}
		return &ast.Typespec{Kind: ast.TSSlice, Immutable: n.Immutable, Child: child}

	case ast.KindArrayType:
		szT := c.checkExpr(n.Index, nil, false)
		if szT == nil || szT.AcceptKind() != ast.AcceptComptime {
			c.diag.Errorf(n.Index.Span, "array size must be a compile-time integer")
		}
		child := c.evalTypespec(n.Child)
		if child == nil {
			return nil
		}
		return &ast.Typespec{Kind: ast.TSArray, ArraySize: n.Index, Child: child}

	case ast.KindFuncType:
		params := make([]*ast.Typespec, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, c.evalTypespec(p))
		}
		ret := c.evalTypespec(n.Child)
		return &ast.Typespec{Kind: ast.TSFunc, Params: params, Ret: ret}

	case ast.KindTupleType:
		elems := make([]*ast.Typespec, 0, len(n.Elems))
		for _, e := range n.Elems {
			elems = append(elems, c.evalTypespec(e))
		}
		return &ast.Typespec{Kind: ast.TSTuple, Elems: elems}

	case ast.KindGenericApp:
		// Real generic instantiation is out of scope (Non-goals); the
		// grammar still parses the form so this is a diagnostic, not a
		// parse error.
		c.diag.Errorf(n.Span, "generic type application is not supported")
		return nil

	default:
		return nil
	}
}

func (c *Checker) unwrapTypeRef(decl *ast.Node) *ast.Typespec {
	switch decl.Kind {
	case ast.KindStruct:
		if decl.Typespec == nil {
			return nil
		}
		return decl.Typespec.Child
	case ast.KindTypeAlias:
		c.ensureAliasTypespec(decl)
		if decl.Typespec == nil {
			return nil
		}
		return decl.Typespec.Child
	default:
		return nil
	}
}

// ensureAliasTypespec lazily and memoizedly evaluates decl's Typespec,
// so alias-to-alias forward references resolve regardless of
// declaration order without a separate ordering pass. A self- or
// mutually-referential alias is caught with the evaluating set rather
// than recursing forever.
func (c *Checker) ensureAliasTypespec(decl *ast.Node) {
	if decl.Typespec != nil {
		return
	}
	if c.evaluating[decl] {
		c.diag.Errorf(decl.Span, "type alias `%s` refers to itself", decl.Name)
		return
	}
	c.evaluating[decl] = true
	inner := c.evalTypespec(decl.Child)
	delete(c.evaluating, decl)
	if inner == nil {
		return
	}
	decl.Typespec = &ast.Typespec{Kind: ast.TSType, Child: inner}
}

// declTypespec returns the Typespec a resolved declaration carries,
// used by Symbol/Access lookups (§4.5.4 "builtin symbols" generalized
// to user declarations).
func (c *Checker) declTypespec(decl *ast.Node) *ast.Typespec {
	switch decl.Kind {
	case ast.KindFuncDef, ast.KindExternFunc:
		return decl.Header.Typespec
	case ast.KindVarDecl, ast.KindExternVar, ast.KindParam:
		return decl.Typespec
	case ast.KindStruct:
		return decl.Typespec
	case ast.KindTypeAlias:
		c.ensureAliasTypespec(decl)
		return decl.Typespec
	case ast.KindImport:
		return decl.Typespec
	default:
		return nil
	}
}
