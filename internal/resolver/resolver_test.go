package resolver

import (
	"bytes"
	"testing"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/lexer"
	"github.com/shkhuz/aria/internal/parser"
	"github.com/shkhuz/aria/internal/source"
)

func parseFile(t *testing.T, path, src string) *ast.File {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes(path, []byte(src))
	toks := lexer.Lex(sf, eng, source.NewInterner())
	decls := parser.Parse(sf, toks, eng)
	if eng.Errored() {
		t.Fatalf("unexpected parse errors in %s: %v", path, eng.Messages())
	}
	return &ast.File{Src: sf, Decls: decls}
}

func resolveOne(t *testing.T, src string) (*ast.File, *diag.Engine) {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	f := parseFile(t, "test.aria", src)
	Resolve([]*ast.File{f}, nil, eng)
	return f, eng
}

func TestResolveSymbolBindsToParam(t *testing.T) {
	f, eng := resolveOne(t, "fn f(x: i32) i32 { return x; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	fn := f.Decls[0]
	ret := fn.Then.Stmts[0].Operand
	sym := ret.Value
	if sym.Kind != ast.KindSymbol || sym.Ref == nil {
		t.Fatalf("expected resolved symbol, got %+v", sym)
	}
	if sym.Ref != fn.Header.Params[0] {
		t.Fatalf("x should resolve to the parameter decl")
	}
	if sym.RefKind != ast.RefParam {
		t.Errorf("got RefKind %v, want RefParam", sym.RefKind)
	}
}

func TestResolveUndeclaredSymbolErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f() i32 { return y; }")
	if !eng.Errored() {
		t.Fatal("reference to an undeclared symbol must be an error")
	}
}

func TestResolveTopLevelRedeclarationErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f() void {} fn f() void {}")
	if !eng.Errored() {
		t.Fatal("redeclaring a top-level name must be an error")
	}
	errs, _ := eng.Counts()
	if errs != 1 {
		t.Errorf("got %d errors, want exactly 1", errs)
	}
}

func TestResolveBlockRedeclarationErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f() void { imm x: i32 = 1; imm x: i32 = 2; }")
	if !eng.Errored() {
		t.Fatal("redeclaring a name in the same block must be an error")
	}
}

func TestResolveShadowingAcrossBlocksWarnsNotErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f() void { imm x: i32 = 1; if true { imm x: i32 = 2; } }")
	errs, warns := eng.Counts()
	if errs != 0 {
		t.Fatalf("shadowing across nested blocks must not be an error, got %v", eng.Messages())
	}
	if warns != 1 {
		t.Fatalf("expected exactly 1 shadow warning, got %d", warns)
	}
}

func TestResolveModuleLevelShadowingWithoutWarning(t *testing.T) {
	// A local named the same as a top-level global must not warn: §4.4
	// only warns for shadowing within the same function's scopes.
	_, eng := resolveOne(t, "imm g: i32 = 1; fn f() void { imm g: i32 = 2; }")
	_, warns := eng.Counts()
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if warns != 0 {
		t.Errorf("shadowing a module-level name must not warn, got %d warnings", warns)
	}
}

func TestResolveBreakOutsideLoopErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f() void { break; }")
	if !eng.Errored() {
		t.Fatal("`break` outside a loop must be an error")
	}
}

func TestResolveBreakBindsLoopRefAndRecordsOnLoop(t *testing.T) {
	f, eng := resolveOne(t, "fn f() i32 { while true { break 1; } else 0 }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	whileNode := f.Decls[0].Then.Tail
	if whileNode.Kind != ast.KindWhile {
		t.Fatalf("expected while as tail, got %v", whileNode.Kind)
	}
	brk := whileNode.Then.Stmts[0].Operand
	if brk.LoopRef != whileNode {
		t.Fatalf("break's LoopRef should point at the enclosing while")
	}
	if len(whileNode.Breaks) != 1 || whileNode.Breaks[0] != brk {
		t.Fatalf("while should record the break in its Breaks slice")
	}
}

func TestResolveReturnBindsFuncRef(t *testing.T) {
	f, eng := resolveOne(t, "fn f() i32 { return 0; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	fn := f.Decls[0]
	ret := fn.Then.Stmts[0].Operand
	if ret.FuncRef != fn {
		t.Fatalf("return's FuncRef should point at the enclosing func def")
	}
}

func TestResolveStructPlaceholderTypespecInstalled(t *testing.T) {
	f, eng := resolveOne(t, "struct Point { x: i32, y: i32 }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	s := f.Decls[0]
	if s.Typespec == nil || s.Typespec.Kind != ast.TSType || s.Typespec.Child.Kind != ast.TSStruct || s.Typespec.Child.Decl != s {
		t.Fatalf("expected a Type(Struct{decl}) placeholder, got %+v", s.Typespec)
	}
}

func TestResolveStructFieldTypeReferencesOtherStruct(t *testing.T) {
	_, eng := resolveOne(t, "struct Point { x: i32 } struct Line { a: Point, b: Point }")
	if eng.Errored() {
		t.Fatalf("forward/sibling struct references should resolve: %v", eng.Messages())
	}
}

func TestResolveUndeclaredTypeErrors(t *testing.T) {
	_, eng := resolveOne(t, "fn f(x: Bogus) void {}")
	if !eng.Errored() {
		t.Fatal("a typespec naming an undeclared type must be an error")
	}
}

func TestResolveImportAcrossFiles(t *testing.T) {
	var buf bytes.Buffer
	eng := diag.New(&buf)
	libFile := parseFile(t, "lib.aria", "fn helper() i32 { return 1; }")
	mainFile := parseFile(t, "main.aria", `import "lib"; fn main() i32 { return lib.helper(); }`)

	byPath := map[string]*ast.File{"lib": libFile}
	Resolve([]*ast.File{libFile, mainFile}, byPath, eng)
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}

	call := mainFile.Decls[1].Then.Stmts[0].Operand.Value
	access := call.Target
	if access.Kind != ast.KindAccess || !access.Accessed {
		t.Fatalf("expected a resolved module access, got %+v", access)
	}
	if access.Ref != libFile.Decls[0] {
		t.Fatalf("lib.helper should resolve to lib.aria's helper func def")
	}
}

func TestResolveUnresolvedImportErrors(t *testing.T) {
	_, eng := resolveOne(t, `import "nowhere";`)
	if !eng.Errored() {
		t.Fatal("an import with no matching File must be an error")
	}
}
