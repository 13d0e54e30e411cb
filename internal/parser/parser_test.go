package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/lexer"
	"github.com/shkhuz/aria/internal/source"
)

func parseTypespecString(t *testing.T, src string) (*ast.Node, *diag.Engine) {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes("test.aria", []byte(src))
	toks := lexer.Lex(sf, eng, source.NewInterner())
	p := &Parser{src: sf, toks: toks, diag: eng}
	return p.typespec(), eng
}

func parseString(t *testing.T, src string) ([]*ast.Node, *diag.Engine) {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes("test.aria", []byte(src))
	toks := lexer.Lex(sf, eng, source.NewInterner())
	return Parse(sf, toks, eng), eng
}

func parseExprString(t *testing.T, src string) (*ast.Node, *diag.Engine) {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes("test.aria", []byte(src))
	toks := lexer.Lex(sf, eng, source.NewInterner())
	p := &Parser{src: sf, toks: toks, diag: eng}
	return p.expr(), eng
}

func TestParseMultiplicationBindsTighterThanAddition(t *testing.T) {
	n, eng := parseExprString(t, "1 + 2 * 3")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindArithBinop || n.ArithOp != ast.ArithAdd {
		t.Fatalf("top node should be '+', got %v", n.Kind)
	}
	if n.Value.Kind != ast.KindArithBinop || n.Value.ArithOp != ast.ArithMul {
		t.Fatalf("RHS should be '*', got %v", n.Value.Kind)
	}
}

func TestParseAssignIsRightAssociative(t *testing.T) {
	n, eng := parseExprString(t, "a = b = c")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindAssign {
		t.Fatalf("top node should be assign, got %v", n.Kind)
	}
	if n.Value.Kind != ast.KindAssign {
		t.Fatalf("assign RHS should itself be an assign (right-assoc), got %v", n.Value.Kind)
	}
}

func TestParseCastBindsLooserThanUnaryTighterThanMultiplicative(t *testing.T) {
	// `-a as u8` should parse as `(-a) as u8`, not `-(a as u8)`.
	n, eng := parseExprString(t, "-a as u8")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindCast {
		t.Fatalf("top node should be cast, got %v", n.Kind)
	}
	if n.Operand.Kind != ast.KindUnary || n.Operand.UnaryOp != ast.UnaryNeg {
		t.Fatalf("cast operand should be unary neg, got %v", n.Operand.Kind)
	}
}

func TestParsePostfixBindsTighterThanUnary(t *testing.T) {
	// `&a.b` should parse as `&(a.b)`.
	n, eng := parseExprString(t, "&a.b")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindUnary || n.UnaryOp != ast.UnaryAddr {
		t.Fatalf("top node should be unary addr, got %v", n.Kind)
	}
	if n.Operand.Kind != ast.KindAccess {
		t.Fatalf("operand should be access, got %v", n.Operand.Kind)
	}
}

func TestParseCallIndexAccessChain(t *testing.T) {
	n, eng := parseExprString(t, "a.b[0](1, 2).*")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindDeref {
		t.Fatalf("outermost should be deref, got %v", n.Kind)
	}
	call := n.Operand
	if call.Kind != ast.KindCall || len(call.Args) != 2 {
		t.Fatalf("expected call with 2 args, got %v", call.Kind)
	}
	idx := call.Target
	if idx.Kind != ast.KindIndex {
		t.Fatalf("expected index, got %v", idx.Kind)
	}
	if idx.Target.Kind != ast.KindAccess || idx.Target.Name != "b" {
		t.Fatalf("expected access .b, got %v", idx.Target.Kind)
	}
}

func TestParseIfConditionDoesNotEatAggregateLiteral(t *testing.T) {
	// `if cond { 1 }` must parse the `{` as the then-block, not as an
	// aggregate literal `cond{ ... }`.
	decls, eng := parseString(t, "fn f() i32 { if cond { return 1; } return 0; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	fn := decls[0]
	ifNode := fn.Then.Stmts[0].Operand
	if ifNode.Kind != ast.KindIf {
		t.Fatalf("expected if, got %v", ifNode.Kind)
	}
	if ifNode.Cond.Kind != ast.KindSymbol {
		t.Fatalf("condition should be a bare symbol, got %v", ifNode.Cond.Kind)
	}
}

func TestParseAggregateLiteralOutsideCondition(t *testing.T) {
	n, eng := parseExprString(t, "Point{ x: 1, y: 2 }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindAggregateLit || len(n.Fields) != 2 {
		t.Fatalf("expected aggregate literal with 2 fields, got %v", n.Kind)
	}
}

func TestParseBlockTrailingValueVsStatement(t *testing.T) {
	decls, eng := parseString(t, "fn f() i32 { 1 + 1 }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	body := decls[0].Then
	if len(body.Stmts) != 0 || body.Tail == nil {
		t.Fatalf("expected a trailing value with no statements, got %d stmts tail=%v", len(body.Stmts), body.Tail)
	}
}

func TestParseWhileWithElse(t *testing.T) {
	n, eng := parseExprString(t, "while true { break 1; } else 0")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindWhile || n.Else == nil {
		t.Fatalf("expected while with else, got %v", n.Kind)
	}
}

func TestParseForEmptyCondRunsForever(t *testing.T) {
	n, eng := parseExprString(t, "for ;; { break; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if n.Kind != ast.KindFor || n.Cond != nil {
		t.Fatalf("expected for with nil cond, got %v cond=%v", n.Kind, n.Cond)
	}
}

func TestParseFuncDefEndToEnd(t *testing.T) {
	decls, eng := parseString(t, "fn main() i32 { return 0; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if len(decls) != 1 || decls[0].Kind != ast.KindFuncDef {
		t.Fatalf("expected one func def, got %v", decls)
	}
	hdr := decls[0].Header
	if hdr.Name != "main" || len(hdr.Params) != 0 {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	ret := decls[0].Then.Stmts[0]
	if ret.Kind != ast.KindExprStmt || ret.Operand.Kind != ast.KindReturn {
		t.Fatalf("expected return statement, got %v", ret)
	}
}

func TestParseStructDecl(t *testing.T) {
	decls, eng := parseString(t, "struct Point { x: i32, y: i32 }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	s := decls[0]
	if s.Kind != ast.KindStruct || len(s.StructFields) != 2 {
		t.Fatalf("unexpected struct decl: %+v", s)
	}
}

func TestParseMissingSemicolonRecovers(t *testing.T) {
	// Missing ';' after the var decl: the parser should report exactly
	// one error and still recover to parse the following declaration.
	decls, eng := parseString(t, "imm x: i32 = 1\nfn f() void {}")
	if errs, _ := eng.Counts(); errs != 1 {
		t.Fatalf("missing ';' should be reported exactly once, got %d errors", errs)
	}
	found := false
	for _, d := range decls {
		if d != nil && d.Kind == ast.KindFuncDef {
			found = true
		}
	}
	if !found {
		t.Fatalf("parser should recover and still parse the following fn decl, got %+v", decls)
	}
}

func TestParseUnclosedBraceReportsWhileMatching(t *testing.T) {
	_, eng := parseString(t, "fn f() void {")
	if !eng.Errored() {
		t.Fatal("unclosed brace should be reported")
	}
	found := false
	for _, m := range eng.Messages() {
		if strings.Contains(m.Primary, "while matching `{`") {
			found = true
		}
	}
	if !found {
		t.Fatalf("unclosed brace should be reported while matching `{`, got %v", eng.Messages())
	}
}

func TestParseExternFuncWithLinkName(t *testing.T) {
	decls, eng := parseString(t, `extern fn write(fd: i32) i32 = "write";`)
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if decls[0].Kind != ast.KindExternFunc || decls[0].Str != "write" {
		t.Fatalf("unexpected extern func decl: %+v", decls[0])
	}
}

func TestParseImportDefaultName(t *testing.T) {
	decls, eng := parseString(t, `import "std/io";`)
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if decls[0].Kind != ast.KindImport || decls[0].Name != "io" {
		t.Fatalf("unexpected import decl: %+v", decls[0])
	}
}

// TestParseTypespecIsDeterministic parses the same typespec text from
// two independent Parsers and requires the resulting trees to be
// field-for-field identical (§3.3: typespec parsing builds shape only,
// with no hidden state that could make it depend on anything but the
// token stream). deep.Equal reports every differing field path rather
// than just "not equal", which is what makes it worth reaching for
// here over reflect.DeepEqual: a spurious divergence (say, one parse
// picking up a stray Span byte offset) shows up as a named field, not
// a bare boolean.
func TestParseTypespecIsDeterministic(t *testing.T) {
	const src = "*imm [*][]fn(i32, *u8) (i32, bool)"
	n1, eng1 := parseTypespecString(t, src)
	n2, eng2 := parseTypespecString(t, src)
	if eng1.Errored() || eng2.Errored() {
		t.Fatalf("unexpected errors: %v / %v", eng1.Messages(), eng2.Messages())
	}
	if diff := deep.Equal(n1, n2); diff != nil {
		for _, d := range diff {
			t.Errorf("parse mismatch: %s", d)
		}
	}
}
