// Package sema implements the bidirectional type checker, §4.5: two
// top-level precedence passes (struct/alias/global/func-header typing)
// followed by a body pass over every function definition. Each
// recursive check carries an optional target Typespec and returns the
// node's actual Typespec, mirroring internal/resolver's two-pass,
// Node-annotating shape rather than building a separate symbol table.
package sema

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
)

// Checker holds the state shared across all three passes for one
// compilation.
type Checker struct {
	diag *diag.Engine

	// evaluating guards against a type alias that refers to itself,
	// e.g. `type A = A;` or a longer alias cycle.
	evaluating map[*ast.Node]bool
}

// Check runs Prec 1, Prec 2, then the body pass over files, per
// §4.5.3. It is an error barrier like every other stage (§7): Prec 2
// does not run if Prec 1 reported an error, and the body pass does not
// run if Prec 2 did.
func Check(files []*ast.File, eng *diag.Engine) {
	c := &Checker{diag: eng, evaluating: make(map[*ast.Node]bool)}

	for _, f := range files {
		for _, d := range f.Decls {
			if d != nil && d.Kind == ast.KindTypeAlias {
				c.ensureAliasTypespec(d)
			}
		}
	}
	if eng.Errored() {
		return
	}

	for _, f := range files {
		for _, d := range f.Decls {
			if d == nil {
				continue
			}
			switch d.Kind {
			case ast.KindStruct:
				for _, field := range d.StructFields {
					field.Typespec = c.evalTypespec(field.Child)
				}
			case ast.KindFuncDef, ast.KindExternFunc:
				c.checkFuncHeaderTypes(d.Header)
			case ast.KindVarDecl:
				c.checkGlobalVarDecl(d)
			case ast.KindExternVar:
				d.Typespec = c.evalTypespec(d.Child)
			}
		}
	}
	if eng.Errored() {
		return
	}

	for _, f := range files {
		for _, d := range f.Decls {
			if d != nil && d.Kind == ast.KindFuncDef {
				c.checkFuncBody(d)
			}
		}
	}
}

func (c *Checker) checkFuncHeaderTypes(hdr *ast.Node) *ast.Typespec {
	params := make([]*ast.Typespec, 0, len(hdr.Params))
	for _, p := range hdr.Params {
		pt := c.evalTypespec(p.Child)
		p.Typespec = pt
		params = append(params, pt)
	}
	ret := c.evalTypespec(hdr.Child)
	ts := &ast.Typespec{Kind: ast.TSFunc, Params: params, Ret: ret}
	hdr.Typespec = ts
	return ts
}

// checkGlobalVarDecl types a top-level `imm`/`mut` declaration. Its
// initializer, if any, must be a compile-time constant (§4.5.3: "check
// var-decl... with comptime-required for globals") — the checker does
// not yet fold arbitrary expressions, so isComptimeConstExpr is a
// conservative syntactic approximation, not a full constant evaluator.
func (c *Checker) checkGlobalVarDecl(d *ast.Node) {
	var ann *ast.Typespec
	if d.Child != nil {
		ann = c.evalTypespec(d.Child)
	}
	if !d.HasValue {
		if ann == nil {
			c.diag.Errorf(d.Span, "global variable `%s` needs a type annotation or an initializer", d.Name)
		}
		d.Typespec = ann
		return
	}
	if !isComptimeConstExpr(d.Value) {
		c.diag.Errorf(d.Value.Span, "initializer for global `%s` must be a compile-time constant", d.Name)
	}
	vt := c.checkExprTargetReport(d.Value, ann, false)
	final := ann
	if final == nil {
		final = vt
	}
	if d.Mutable && final != nil && final.AcceptKind() == ast.AcceptComptime {
		c.diag.Errorf(d.Span, "mutable global `%s` needs a sized type annotation, not a bare comptime integer", d.Name)
	}
	d.Typespec = final
}

// checkFuncBody walks fn's body against its declared return type.
func (c *Checker) checkFuncBody(fn *ast.Node) {
	retTS := ast.Void
	if fn.Header != nil && fn.Header.Typespec != nil && fn.Header.Typespec.Ret != nil {
		retTS = fn.Header.Typespec.Ret
	}
	blockType := c.checkBlock(fn.Then, retTS)
	if _, r := assign(blockType, retTS, false); r != AssignOk {
		c.diag.Errorf(fn.Then.Span, "function `%s` must produce a value of type `%s`, got `%s`",
			fn.Header.Name, retTS.String(), typeStr(blockType))
	}
}

func typeStr(t *ast.Typespec) string {
	if t == nil {
		return "<error>"
	}
	return t.String()
}

func isIntType(t *ast.Typespec) bool {
	return t != nil && t.Kind == ast.TSPrim && t.Prim.IsInteger()
}

func isBoolType(t *ast.Typespec) bool {
	return t != nil && t.Kind == ast.TSPrim && t.Prim == ast.Bool
}
