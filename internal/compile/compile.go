// Package compile orchestrates the frontend pipeline over a whole
// program's input files (§5): per-file lexing and parsing run
// concurrently since each is a pure function of its own Srcfile, then
// the resolver and checker run sequentially over every file together,
// since both need the whole program's names and types at once.
package compile

import (
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/lexer"
	"github.com/shkhuz/aria/internal/parser"
	"github.com/shkhuz/aria/internal/resolver"
	"github.com/shkhuz/aria/internal/sema"
	"github.com/shkhuz/aria/internal/source"
)

// fileUnit is one input's lex/parse result, plus the diagnostics it
// produced in its own private engine — kept separate because
// diag.Engine is not safe for concurrent Emit, and because §5 requires
// diagnostics to surface "across files in the input order" regardless
// of which file's goroutine finished lexing first.
type fileUnit struct {
	file  *ast.File
	local *diag.Engine
}

// Files runs the whole frontend (lex, parse, resolve, check) over
// paths and returns every file's AST, fully annotated if no stage
// failed. The caller's eng receives every diagnostic, merged back in
// input order once the parallel lex/parse phase completes.
func Files(paths []string, eng *diag.Engine) ([]*ast.File, error) {
	units := make([]*fileUnit, len(paths))

	// Shared across every file's lexer: the whole compilation's
	// identifier intern pool (§5 "append-only... shared process-wide
	// for the lifetime of a compile context"). Interner.Intern/String
	// are mutex-guarded, so concurrent lexer goroutines share it safely.
	interner := source.NewInterner()

	var g errgroup.Group
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			sf, err := source.New(p)
			if err != nil {
				return err
			}
			local := diag.New(io.Discard)
			toks := lexer.Lex(sf, local, interner)
			decls := parser.Parse(sf, toks, local)
			units[i] = &fileUnit{
				file:  &ast.File{Src: sf, Decls: decls, Identity: i},
				local: local,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*ast.File, len(paths))
	byImportPath := make(map[string]*ast.File, len(paths))
	for i, u := range units {
		for _, m := range u.local.Messages() {
			eng.Emit(m)
		}
		files[i] = u.file
		byImportPath[importPath(paths[i])] = u.file
	}
	if eng.Errored() {
		return files, nil
	}

	resolver.Resolve(files, byImportPath, eng)
	if eng.Errored() {
		return files, nil
	}

	sema.Check(files, eng)
	return files, nil
}

// importPath derives the name an `import "..."` literal binds to for
// one input file: its path with the `.aria` extension stripped and
// separators normalized to `/`. This lets a multi-file CLI invocation
// (`aria a.aria b.aria`) have b import a as `import "a";` without a
// separate project-manifest concept — §6 defines no such manifest, and
// the predefined-module mechanism (§6, "identity is the Srcfile
// pointer") only needs a stable string key, not a real package system.
func importPath(path string) string {
	p := filepath.ToSlash(path)
	return strings.TrimSuffix(p, filepath.Ext(p))
}
