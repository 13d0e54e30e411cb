// Package resolver binds identifiers to declarations over all of a
// compilation's Srcfiles in two ordered passes, per §4.4: a declare
// pass that makes top-level names order-independent within a file and
// across imports, then a resolve-bodies pass that walks function
// bodies, struct fields, initializers, and typespecs with a stack of
// lexical scopes.
package resolver

import (
	"golang.org/x/mod/module"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
)

// Resolver holds the state shared across both passes for one
// compilation (a set of Srcfiles that may import one another).
type Resolver struct {
	diag  *diag.Engine
	files []*ast.File

	// byImportPath maps an import's literal path string to the File it
	// binds to. The whole-program driver owns path resolution (which
	// input file answers which import path); the resolver only
	// consumes the finished mapping.
	byImportPath map[string]*ast.File

	// fileScopes[f] is f's top-level (module) scope, populated during
	// Pass 1 and consulted as the outermost lookup level during Pass 2.
	fileScopes map[*ast.File]*scope
}

// Resolve runs both passes over files. byImportPath supplies the
// File each import's path string resolves to; an import whose path is
// absent from the map is reported as "unresolved import".
func Resolve(files []*ast.File, byImportPath map[string]*ast.File, eng *diag.Engine) {
	r := &Resolver{
		diag:         eng,
		files:        files,
		byImportPath: byImportPath,
		fileScopes:   make(map[*ast.File]*scope),
	}
	for _, f := range files {
		r.declareFile(f)
	}
	if eng.Errored() {
		return
	}
	for _, f := range files {
		r.resolveFile(f)
	}
}

// declareFile runs Pass 1 for one file: bind every top-level name in
// its module scope, reporting redeclarations with both spans.
func (r *Resolver) declareFile(f *ast.File) {
	sc := newScope(nil, false)
	r.fileScopes[f] = sc

	for _, d := range f.Decls {
		if d == nil {
			continue
		}
		name, ok := topLevelName(d)
		if !ok {
			continue
		}
		if prev, dup := sc.define(name, d); dup {
			r.diag.Errorf(d.Span, "redeclaration of `%s` in this file", name).
				Fat(prev.Span, "previously declared here")
			continue
		}
		if d.Kind == ast.KindStruct {
			// Install a placeholder Typespec so forward references to
			// this struct (including from its own fields) resolve
			// before the checker lays out its fields (§4.4).
			d.Typespec = &ast.Typespec{Kind: ast.TSType, Child: &ast.Typespec{Kind: ast.TSStruct, Decl: d}}
		}
		if d.Kind == ast.KindImport {
			r.bindImport(d)
		}
	}
}

func (r *Resolver) bindImport(d *ast.Node) {
	if err := module.CheckImportPath(d.Str); err != nil {
		r.diag.Errorf(d.Span, "invalid import path %q: %s", d.Str, err)
		return
	}
	mf, ok := r.byImportPath[d.Str]
	if !ok {
		r.diag.Errorf(d.Span, "unresolved import %q", d.Str)
		return
	}
	d.ModuleFile = mf
	d.Typespec = mf.ModuleTypespec()
}

// topLevelName returns the name a top-level declaration binds, or
// false for forms that don't bind one (there are none today, but
// callers should not assume every Kind matches).
func topLevelName(d *ast.Node) (string, bool) {
	switch d.Kind {
	case ast.KindFuncDef:
		return d.Header.Name, true
	case ast.KindExternFunc:
		return d.Header.Name, true
	case ast.KindStruct, ast.KindVarDecl, ast.KindExternVar, ast.KindTypeAlias, ast.KindImport:
		return d.Name, true
	default:
		return "", false
	}
}

func refKindOf(d *ast.Node) ast.SymRefKind {
	switch d.Kind {
	case ast.KindFuncDef:
		return ast.RefFunc
	case ast.KindExternFunc:
		return ast.RefExternFunc
	case ast.KindVarDecl:
		if d.Mutable {
			return ast.RefMutVar
		}
		return ast.RefImmVar
	case ast.KindExternVar:
		return ast.RefExternVar
	case ast.KindParam:
		return ast.RefParam
	case ast.KindStruct:
		return ast.RefStruct
	case ast.KindTypeAlias:
		return ast.RefTypeAlias
	case ast.KindImport:
		return ast.RefImport
	default:
		return ast.RefNone
	}
}
