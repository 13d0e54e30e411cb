package ir

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/lexer"
	"github.com/shkhuz/aria/internal/parser"
	"github.com/shkhuz/aria/internal/resolver"
	"github.com/shkhuz/aria/internal/sema"
	"github.com/shkhuz/aria/internal/source"
)

func checkedFile(t *testing.T, src string) *ast.File {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes("test.aria", []byte(src))
	toks := lexer.Lex(sf, eng, source.NewInterner())
	decls := parser.Parse(sf, toks, eng)
	if eng.Errored() {
		t.Fatalf("unexpected parse errors: %v", eng.Messages())
	}
	f := &ast.File{Src: sf, Decls: decls}
	resolver.Resolve([]*ast.File{f}, nil, eng)
	sema.Check([]*ast.File{f}, eng)
	if eng.Errored() {
		t.Fatalf("unexpected check errors: %v", eng.Messages())
	}
	return f
}

func TestPlaceholderEmitsFuncDecl(t *testing.T) {
	f := checkedFile(t, "fn main() i32 { return 0; }")
	var out bytes.Buffer
	if err := (Placeholder{}).Emit(f, &out); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out.String(), "fn main fn() i32") {
		t.Errorf("expected a marker line for main's typespec, got:\n%s", out.String())
	}
}

func TestPlaceholderEmitsExternLinkName(t *testing.T) {
	f := checkedFile(t, `extern fn write(fd: i32) i32 = "_write";`)
	var out bytes.Buffer
	if err := (Placeholder{}).Emit(f, &out); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out.String(), "fn _write ") {
		t.Errorf("expected the link name, not the surface name, got:\n%s", out.String())
	}
}

func TestPlaceholderEmitsGlobalVar(t *testing.T) {
	f := checkedFile(t, "imm g: i32 = 1;")
	var out bytes.Buffer
	if err := (Placeholder{}).Emit(f, &out); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out.String(), "global g i32") {
		t.Errorf("expected a marker line for g, got:\n%s", out.String())
	}
}
