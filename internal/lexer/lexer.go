// Package lexer turns a Srcfile's bytes into a token vector, per
// §4.2. Lexing never stops at the first error: it sets the owning
// diag.Engine's sticky error flag and continues to EOF so one pass
// surfaces as many lexical diagnostics as possible (§4.2 "Failure
// mode").
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/shkhuz/aria/internal/bigint"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/source"
	"github.com/shkhuz/aria/internal/token"
)

type Lexer struct {
	src  *source.Srcfile
	diag *diag.Engine
	in   *source.Interner

	pos int // byte offset of the next unconsumed byte

	reportedBad map[byte]bool // unknown-byte diagnostic dedup, §4.2
}

// New returns a Lexer reading src's bytes and reporting through eng.
// Identifier lexemes are canonicalized through in, the compile
// context's append-only intern pool (§5).
func New(src *source.Srcfile, eng *diag.Engine, in *source.Interner) *Lexer {
	return &Lexer{src: src, diag: eng, in: in, reportedBad: make(map[byte]bool)}
}

// Lex runs the lexer to completion and returns the token vector,
// always EOF-terminated (§4.2).
func Lex(src *source.Srcfile, eng *diag.Engine, in *source.Interner) []token.Token {
	l := New(src, eng, in)
	var toks []token.Token
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func (l *Lexer) at(off int) byte {
	if off < 0 || off >= len(l.src.Contents) {
		return 0
	}
	return l.src.Contents[off]
}

func (l *Lexer) cur() byte  { return l.at(l.pos) }
func (l *Lexer) peek() byte { return l.at(l.pos + 1) }

func (l *Lexer) eof() bool { return l.pos >= len(l.src.Contents) }

func isIdentStart(b byte) bool { return b == '_' || unicode.IsLetter(rune(b)) }
func isIdentCont(b byte) bool  { return b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)) }
func isDigit(b byte) bool      { return b >= '0' && b <= '9' }

// next scans and returns one token, advancing l.pos past it.
func (l *Lexer) next() token.Token {
	l.skipTrivia()
	start := l.pos
	if l.eof() {
		return l.mk(token.EOF, start, start)
	}

	b := l.cur()
	switch {
	case isIdentStart(b):
		return l.lexIdentOrKeyword(start)
	case isDigit(b):
		return l.lexInt(start)
	case b == '"':
		return l.lexString(start)
	case b == '\'':
		return l.lexChar(start)
	}

	// punctuation, longest-match first (§4.2)
	two := func(second byte, k token.Kind) (token.Token, bool) {
		if l.peek() == second {
			l.pos += 2
			return l.mk(k, start, l.pos), true
		}
		return token.Token{}, false
	}

	switch b {
	case '{':
		l.pos++
		return l.mk(token.LBrace, start, l.pos)
	case '}':
		l.pos++
		return l.mk(token.RBrace, start, l.pos)
	case '[':
		l.pos++
		return l.mk(token.LBrack, start, l.pos)
	case ']':
		l.pos++
		return l.mk(token.RBrack, start, l.pos)
	case '(':
		l.pos++
		return l.mk(token.LParen, start, l.pos)
	case ')':
		l.pos++
		return l.mk(token.RParen, start, l.pos)
	case ':':
		l.pos++
		return l.mk(token.Colon, start, l.pos)
	case ';':
		l.pos++
		return l.mk(token.Semicolon, start, l.pos)
	case '.':
		l.pos++
		return l.mk(token.Dot, start, l.pos)
	case ',':
		l.pos++
		return l.mk(token.Comma, start, l.pos)
	case '=':
		if t, ok := two('=', token.Eq); ok {
			return t
		}
		l.pos++
		return l.mk(token.Assign, start, l.pos)
	case '!':
		if t, ok := two('=', token.NotEq); ok {
			return t
		}
		l.pos++
		return l.mk(token.Bang, start, l.pos)
	case '<':
		if t, ok := two('=', token.LtEq); ok {
			return t
		}
		l.pos++
		return l.mk(token.Lt, start, l.pos)
	case '>':
		if t, ok := two('=', token.GtEq); ok {
			return t
		}
		l.pos++
		return l.mk(token.Gt, start, l.pos)
	case '&':
		if t, ok := two('&', token.AmpAmp); ok {
			return t
		}
		l.pos++
		return l.mk(token.Amp, start, l.pos)
	case '|':
		if t, ok := two('|', token.PipePipe); ok {
			return t
		}
		// single '|' has no meaning in this grammar
		l.pos++
		l.reportUnknown(start, b)
		return l.next()
	case '+':
		l.pos++
		return l.mk(token.Plus, start, l.pos)
	case '-':
		l.pos++
		return l.mk(token.Minus, start, l.pos)
	case '*':
		l.pos++
		return l.mk(token.Star, start, l.pos)
	case '/':
		l.pos++
		return l.mk(token.Slash, start, l.pos)
	case '\t':
		// handled in skipTrivia as a fatal diagnostic (§6), which
		// consumes every tab before next() dispatches on a byte; this
		// case is a fallback only.
		l.reportTab(start)
		l.pos++
		return l.next()
	default:
		l.pos++
		l.reportUnknown(start, b)
		return l.next()
	}
}

// skipTrivia consumes whitespace and line comments, rejecting tab
// characters fatally per §6 ("Tab characters are rejected with a
// fatal diagnostic") and advancing the newline-sensitive caller state
// implicitly via source.Srcfile's lazily computed line table.
func (l *Lexer) skipTrivia() {
	for !l.eof() {
		b := l.cur()
		switch {
		case b == ' ' || b == '\r' || b == '\n':
			l.pos++
		case b == '\t':
			l.reportTab(l.pos)
			l.pos++
		case b == '/' && l.peek() == '/':
			for !l.eof() && l.cur() != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) reportTab(off int) {
	sp := l.src.NewSpan(off, off+1)
	l.diag.Errorf(sp, "tab characters are not permitted in source files")
}

// reportUnknown reports an unrecognized byte once per distinct value
// to avoid diagnostic spam (§4.2), with a trailing note explaining the
// dedup policy on the first occurrence.
func (l *Lexer) reportUnknown(off int, b byte) {
	sp := l.src.NewSpan(off, off+1)
	if l.reportedBad[b] {
		return
	}
	l.reportedBad[b] = true
	m := l.diag.Errorf(sp, "unrecognized character %q", rune(b))
	m.Thin("further occurrences of this character are not reported individually")
}

func (l *Lexer) lexIdentOrKeyword(start int) token.Token {
	for !l.eof() && isIdentCont(l.cur()) {
		l.pos++
	}
	lex := string(l.src.Contents[start:l.pos])
	if kk, ok := token.Keywords[lex]; ok {
		t := l.mk(token.Keyword, start, l.pos)
		t.Keyword = kk
		t.Lexeme = lex
		return t
	}
	t := l.mk(token.Ident, start, l.pos)
	t.Lexeme = l.in.String(l.in.Intern(lex))
	return t
}

// lexInt scans decimal digits with embedded '_' visual separators,
// collecting the digits and parsing them into a bigint once (§4.2).
// A '_' is only part of the literal between two digits; a trailing or
// doubled '_' ends the literal without a diagnostic of its own.
func (l *Lexer) lexInt(start int) token.Token {
	var digits []byte
	lastWasUnderscore := false
	for !l.eof() {
		b := l.cur()
		if isDigit(b) {
			digits = append(digits, b)
			lastWasUnderscore = false
			l.pos++
			continue
		}
		if b == '_' {
			if len(digits) == 0 {
				break // leading '_' can't happen here: caller only enters on a digit
			}
			if lastWasUnderscore {
				break
			}
			// Only consume if followed by another digit; a trailing
			// '_' is not part of the literal.
			if !isDigit(l.at(l.pos + 1)) {
				break
			}
			lastWasUnderscore = true
			l.pos++
			continue
		}
		break
	}
	t := l.mk(token.IntLit, start, l.pos)
	t.Lexeme = string(l.src.Contents[start:l.pos])
	v, ok := bigint.Parse(string(digits), 10)
	if !ok {
		// unreachable for a non-empty decimal digit run, but keep the
		// token well-formed rather than panicking.
		v = bigint.FromInt64(0)
	}
	t.IntVal = v
	return t
}

// lexString scans a `"`-delimited string literal. A newline or EOF
// before the closing quote is an error whose span covers the opening
// quote through the offending position (§4.2).
func (l *Lexer) lexString(start int) token.Token {
	l.pos++ // opening quote
	for {
		if l.eof() {
			l.diag.Errorf(l.src.NewSpan(start, l.pos), "unterminated string literal")
			break
		}
		b := l.cur()
		if b == '\n' {
			l.diag.Errorf(l.src.NewSpan(start, l.pos), "unterminated string literal")
			break
		}
		if b == '"' {
			l.pos++
			break
		}
		if b == '\\' && !l.eof() {
			l.pos++
			if !l.eof() {
				l.pos++
			}
			continue
		}
		// advance one rune at a time to stay UTF-8 safe
		_, size := utf8.DecodeRune(l.src.Contents[l.pos:])
		if size < 1 {
			size = 1
		}
		l.pos += size
	}
	t := l.mk(token.StringLit, start, l.pos)
	t.Lexeme = string(l.src.Contents[start:l.pos])
	return t
}

// lexChar scans a `'`-delimited char literal: exactly one rune (or
// one backslash escape), analogous to lexString but producing a
// single rune value instead of a byte slice.
func (l *Lexer) lexChar(start int) token.Token {
	l.pos++ // opening quote
	var r rune
	switch {
	case l.eof() || l.cur() == '\n':
		l.diag.Errorf(l.src.NewSpan(start, l.pos), "unterminated char literal")
	case l.cur() == '\\':
		l.pos++
		if l.eof() {
			l.diag.Errorf(l.src.NewSpan(start, l.pos), "unterminated char literal")
			break
		}
		r = unescapeCharByte(l.cur())
		l.pos++
	default:
		var size int
		r, size = utf8.DecodeRune(l.src.Contents[l.pos:])
		if size < 1 {
			size = 1
		}
		l.pos += size
	}
	if l.eof() || l.cur() != '\'' {
		l.diag.Errorf(l.src.NewSpan(start, l.pos), "unterminated char literal")
	} else {
		l.pos++
	}
	t := l.mk(token.CharLit, start, l.pos)
	t.Lexeme = string(l.src.Contents[start:l.pos])
	t.CharVal = r
	return t
}

func unescapeCharByte(b byte) rune {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\'':
		return '\''
	case '\\':
		return '\\'
	default:
		return rune(b)
	}
}

func (l *Lexer) mk(k token.Kind, start, end int) token.Token {
	return token.Token{Kind: k, Span: l.src.NewSpan(start, end)}
}
