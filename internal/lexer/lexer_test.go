package lexer

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/source"
	"github.com/shkhuz/aria/internal/token"
)

func lexString(t *testing.T, src string) ([]token.Token, *diag.Engine) {
	t.Helper()
	var buf bytes.Buffer
	eng := diag.New(&buf)
	sf := source.NewFromBytes("test.aria", []byte(src))
	return Lex(sf, eng, source.NewInterner()), eng
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tk := range toks {
		ks[i] = tk.Kind
	}
	return ks
}

func TestLexEndsInEOF(t *testing.T) {
	toks, _ := lexString(t, "fn f() {}")
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("token stream must end in EOF")
	}
}

func TestLexKeywordsVsIdents(t *testing.T) {
	toks, _ := lexString(t, "fn foo mut x")
	want := []token.Kind{token.Keyword, token.Ident, token.Keyword, token.Ident, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexPunctuationLongestMatch(t *testing.T) {
	toks, _ := lexString(t, "== != <= >= && = ! < > &")
	want := []token.Kind{token.Eq, token.NotEq, token.LtEq, token.GtEq, token.AmpAmp,
		token.Assign, token.Bang, token.Lt, token.Gt, token.Amp, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexIntegerLiteralWithSeparators(t *testing.T) {
	toks, eng := lexString(t, "1_000_000")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if toks[0].Kind != token.IntLit || toks[0].IntVal.String() != "1000000" {
		t.Errorf("got %v, want IntLit(1000000)", toks[0])
	}
}

func TestLexIntegerTrailingUnderscoreStopsLiteral(t *testing.T) {
	// "12_" : the trailing underscore is not part of the literal, so
	// lexing resumes at '_' as a fresh identifier token.
	toks, eng := lexString(t, "12_")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if toks[0].Kind != token.IntLit || toks[0].IntVal.String() != "12" {
		t.Fatalf("got %v, want IntLit(12)", toks[0])
	}
	if toks[1].Kind != token.Ident || toks[1].Lexeme != "_" {
		t.Fatalf("got %v, want Ident(_)", toks[1])
	}
}

func TestLexUnterminatedStringReportsError(t *testing.T) {
	_, eng := lexString(t, "\"abc")
	if !eng.Errored() {
		t.Error("unterminated string should be an error")
	}
}

func TestLexUnterminatedStringAtNewline(t *testing.T) {
	_, eng := lexString(t, "\"abc\ndef\"")
	if !eng.Errored() {
		t.Error("string literal must not span a newline")
	}
}

func TestLexLineComment(t *testing.T) {
	toks, eng := lexString(t, "fn // a comment\nf")
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	want := []token.Kind{token.Keyword, token.Ident, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestLexTabIsFatal(t *testing.T) {
	_, eng := lexString(t, "fn\tf")
	if !eng.Errored() {
		t.Error("tab character must be a fatal diagnostic")
	}
}

func TestLexUnknownByteDedup(t *testing.T) {
	_, eng := lexString(t, "$$$")
	errs, _ := eng.Counts()
	if errs != 1 {
		t.Errorf("got %d errors for repeated unknown byte, want 1 (deduped)", errs)
	}
}

func TestLexCharLiteral(t *testing.T) {
	toks, eng := lexString(t, `'a' '\n'`)
	if eng.Errored() {
		t.Fatalf("unexpected errors: %v", eng.Messages())
	}
	if toks[0].Kind != token.CharLit || toks[0].CharVal != 'a' {
		t.Errorf("got %v, want CharLit('a')", toks[0])
	}
	if toks[1].Kind != token.CharLit || toks[1].CharVal != '\n' {
		t.Errorf("got %v, want CharLit('\\n')", toks[1])
	}
}

func TestLexUnterminatedCharLiteral(t *testing.T) {
	_, eng := lexString(t, "'ab")
	if !eng.Errored() {
		t.Error("a char literal with more than one rune before EOF must be an error")
	}
}

// TestLexIdentsShareInternerAcrossFiles checks that two Srcfiles
// lexed against the same Interner produce Ident tokens whose Lexeme
// strings are backed by the identical canonical instance (§5:
// "the intern pool for identifiers is append-only"), while an
// identifier lexed through a different Interner gets its own,
// independently allocated, backing array.
func TestLexIdentsShareInternerAcrossFiles(t *testing.T) {
	shared := source.NewInterner()

	sf1 := source.NewFromBytes("a.aria", []byte("foo"))
	var buf1 bytes.Buffer
	toks1 := Lex(sf1, diag.New(&buf1), shared)

	sf2 := source.NewFromBytes("b.aria", []byte("foo"))
	var buf2 bytes.Buffer
	toks2 := Lex(sf2, diag.New(&buf2), shared)

	lex1, lex2 := toks1[0].Lexeme, toks2[0].Lexeme
	if lex1 != "foo" || lex2 != "foo" {
		t.Fatalf("got lexemes %q / %q, want both %q", lex1, lex2, "foo")
	}
	if unsafe.StringData(lex1) != unsafe.StringData(lex2) {
		t.Error("two files sharing an Interner should canonicalize identical identifiers to the same backing array")
	}

	sf3 := source.NewFromBytes("c.aria", []byte("foo"))
	var buf3 bytes.Buffer
	toks3 := Lex(sf3, diag.New(&buf3), source.NewInterner())
	if toks3[0].Lexeme != "foo" {
		t.Fatalf("got %q, want %q", toks3[0].Lexeme, "foo")
	}
	if unsafe.StringData(toks3[0].Lexeme) == unsafe.StringData(lex1) {
		t.Error("a fresh Interner must not share backing storage with an unrelated one")
	}
}

func TestLexByteRangePreservation(t *testing.T) {
	src := "foo bar_baz 123"
	toks, _ := lexString(t, src)
	sf := source.NewFromBytes("x", []byte(src))
	for _, tk := range toks {
		if tk.Kind == token.EOF {
			continue
		}
		got := string(sf.Text(tk.Span))
		if got != tk.Lexeme {
			t.Errorf("span text %q != lexeme %q", got, tk.Lexeme)
		}
	}
}
