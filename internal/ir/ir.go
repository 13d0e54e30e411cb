// Package ir defines the boundary between the frontend and a real
// code generator (§4.6): an Emitter consumes a fully type-checked
// File and lowers it to object bytes. No further type-checking
// happens past this boundary — a malformed AST reaching an Emitter
// (a nil Typespec, an unresolved Ref) is an internal-compiler-error,
// never a diagnostic.
//
// Real LLVM-style code generation is out of scope here (§1, §6 of
// SPEC_FULL); Placeholder below exists only to exercise
// internal/driver end to end with a real file on disk to hand to the
// linker.
package ir

import (
	"fmt"
	"io"

	"github.com/shkhuz/aria/internal/ast"
)

// Emitter lowers one fully typed Srcfile's declarations to w.
type Emitter interface {
	Emit(f *ast.File, w io.Writer) error
}

// Placeholder is a minimal Emitter: it writes a human-readable marker
// recording each top-level declaration's name and typespec rather than
// real object code, enough to prove the declarations it was handed are
// the ones the checker actually finished (every Typespec non-nil).
type Placeholder struct{}

func (Placeholder) Emit(f *ast.File, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; aria placeholder object for %s\n", f.Src.Path); err != nil {
		return err
	}
	for _, d := range f.Decls {
		if d == nil {
			continue
		}
		if err := emitDecl(d, w); err != nil {
			return err
		}
	}
	return nil
}

func emitDecl(d *ast.Node, w io.Writer) error {
	switch d.Kind {
	case ast.KindFuncDef, ast.KindExternFunc:
		if d.Header == nil || d.Header.Typespec == nil {
			return fmt.Errorf("internal-compiler-error: func %q reached ir with no header typespec", declName(d))
		}
		linkName := d.Header.Name
		if d.Kind == ast.KindExternFunc && d.Str != "" {
			linkName = d.Str
		}
		_, err := fmt.Fprintf(w, "fn %s %s\n", linkName, d.Header.Typespec.String())
		return err

	case ast.KindVarDecl, ast.KindExternVar:
		if d.Typespec == nil {
			return fmt.Errorf("internal-compiler-error: global %q reached ir with no typespec", d.Name)
		}
		linkName := d.Name
		if d.Kind == ast.KindExternVar && d.Str != "" {
			linkName = d.Str
		}
		_, err := fmt.Fprintf(w, "global %s %s\n", linkName, d.Typespec.String())
		return err

	default:
		// struct/type-alias/import decls have no codegen footprint of
		// their own.
		return nil
	}
}

func declName(d *ast.Node) string {
	if d.Header != nil {
		return d.Header.Name
	}
	return d.Name
}
