package sema

import (
	"bytes"
	"testing"

	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/lexer"
	"github.com/shkhuz/aria/internal/parser"
	"github.com/shkhuz/aria/internal/resolver"
	"github.com/shkhuz/aria/internal/source"
)

func checkOne(t *testing.T, src string) (*ast.File, *diag.Engine) {
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
	if eng.Errored() {
		t.Fatalf("unexpected resolve errors: %v", eng.Messages())
	}
	Check([]*ast.File{f}, eng)
	return f, eng
}

func TestCheckReturnMatchingType(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { return 1; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
}

func TestCheckReturnTypeMismatchErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() bool { return 1; }")
	if !eng.Errored() {
		t.Fatal("returning an integer from a bool function must be an error")
	}
}

func TestCheckComptimeIntFitsSizedParam(t *testing.T) {
	_, eng := checkOne(t, "fn f(x: u8) void {} fn g() void { f(255); }")
	if eng.Errored() {
		t.Fatalf("255 fits in u8: unexpected errors: %v", eng.Messages())
	}
}

func TestCheckComptimeIntOverflowErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f(x: u8) void {} fn g() void { f(256); }")
	if !eng.Errored() {
		t.Fatal("256 does not fit in u8, must be an error")
	}
}

func TestCheckNarrowingWithoutCastErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() void { imm x: i64 = 1; imm y: i32 = x; }")
	if !eng.Errored() {
		t.Fatal("assigning i64 to i32 without a cast must be an error")
	}
}

func TestCheckCastAllowsNarrowing(t *testing.T) {
	_, eng := checkOne(t, "fn f() void { imm x: i64 = 1; imm y: i32 = x as i32; }")
	if eng.Errored() {
		t.Fatalf("an explicit cast should allow narrowing: %v", eng.Messages())
	}
}

func TestCheckAssignToParamAllowed(t *testing.T) {
	_, eng := checkOne(t, "fn f(x: i32) void { x = 2; }")
	if eng.Errored() {
		t.Fatalf("parameters are mutable l-values: unexpected errors: %v", eng.Messages())
	}
}

func TestCheckAssignThroughMutablePointerFromImmSlot(t *testing.T) {
	// imm p: *u32 = q; *p = 5; is legal: mutability comes from the
	// pointer's own type, not from p's own imm/mut storage classification.
	_, eng := checkOne(t, "fn f(q: *u32) void { imm p: *u32 = q; *p = 5; }")
	if eng.Errored() {
		t.Fatalf("dereferencing a mutable pointer type must allow assignment: %v", eng.Messages())
	}
}

func TestCheckAssignThroughImmutablePointerErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f(p: *imm u32) void { *p = 5; }")
	if !eng.Errored() {
		t.Fatal("assigning through an `imm` pointer type must be an error")
	}
}

func TestCheckIfWithoutElseYieldingValueErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { imm x: i32 = if true { 1 }; return x; }")
	if !eng.Errored() {
		t.Fatal("an `if` yielding a value with no `else` must be an error")
	}
}

func TestCheckIfElseBranchTypeMismatchErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() void { imm x: i32 = if true { 1 } else { true }; }")
	if !eng.Errored() {
		t.Fatal("if/else branches of incompatible type must be an error")
	}
}

func TestCheckIfElsePeerUnifiesComptimeIntoSized(t *testing.T) {
	_, eng := checkOne(t, "fn f(x: i32) void { imm y: i32 = if true { x } else { 1 }; }")
	if eng.Errored() {
		t.Fatalf("a comptime int peer-unified against a sized int must be allowed: %v", eng.Messages())
	}
}

func TestCheckUnreachableCodeAfterReturnErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { return 1; return 2; }")
	if !eng.Errored() {
		t.Fatal("code after a diverging statement must be flagged unreachable")
	}
}

func TestCheckLoopBodyYieldingValueErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() void { while true { 1 } }")
	if !eng.Errored() {
		t.Fatal("a loop body yielding a value directly (not via break) must be an error")
	}
}

func TestCheckLoopBreakWithoutElseErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { return while true { break 1; } }")
	if !eng.Errored() {
		t.Fatal("a loop with a value-break but no `else` must be an error")
	}
}

func TestCheckLoopBreakWithElseOk(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { return while true { break 1; } else 0; }")
	if eng.Errored() {
		t.Fatalf("a loop with matching break/else types should be ok: %v", eng.Messages())
	}
}

func TestCheckStructFieldAccess(t *testing.T) {
	_, eng := checkOne(t, "struct Point { x: i32, y: i32 } fn f(p: Point) i32 { return p.x; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
}

func TestCheckAggregateLitMissingFieldErrors(t *testing.T) {
	_, eng := checkOne(t, "struct Point { x: i32, y: i32 } fn f() void { imm p: Point = Point{ x: 1 }; }")
	if !eng.Errored() {
		t.Fatal("an aggregate literal missing a declared field must be an error")
	}
}

func TestCheckAggregateLitUnknownFieldErrors(t *testing.T) {
	_, eng := checkOne(t, "struct Point { x: i32 } fn f() void { imm p: Point = Point{ x: 1, z: 2 }; }")
	if !eng.Errored() {
		t.Fatal("an aggregate literal with an unknown field must be an error")
	}
}

func TestCheckCallArityMismatchErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f(x: i32) void {} fn g() void { f(1, 2); }")
	if !eng.Errored() {
		t.Fatal("too many call arguments must be an error")
	}
}

func TestCheckDivisionByZeroComptimeErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() void { imm x: i32 = 1 / 0; }")
	if !eng.Errored() {
		t.Fatal("comptime division by zero must be an error")
	}
}

func TestCheckGlobalNonConstInitializerErrors(t *testing.T) {
	_, eng := checkOne(t, "fn f() i32 { return 1; } imm g: i32 = f();")
	if !eng.Errored() {
		t.Fatal("a global initializer that isn't a compile-time constant must be an error")
	}
}

func TestCheckMutableGlobalNeedsSizedType(t *testing.T) {
	_, eng := checkOne(t, "mut g = 1;")
	if !eng.Errored() {
		t.Fatal("a mutable global with an unsized comptime initializer must be an error")
	}
}

func TestCheckTypeAliasChainResolves(t *testing.T) {
	_, eng := checkOne(t, "type A = i32; type B = A; fn f() B { return 1; }")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
}

func TestCheckSelfReferentialAliasErrors(t *testing.T) {
	_, eng := checkOne(t, "type A = A; fn f(x: A) void {}")
	if !eng.Errored() {
		t.Fatal("a self-referential type alias must be an error")
	}
}
