// Package parser turns a token vector into the untyped AST (§4.3).
// It is a recursive-descent parser for statement/declaration forms
// with Pratt-style precedence climbing for expressions, grounded on
// the cur/peek-token shape used by btouchard-gmx's
// internal/compiler/parser.Parser in the retrieval pack.
//
// The parser never sets Typespec on any node and never resolves
// identifiers (§4.3 Contract) — it only builds shape.
package parser

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/diag"
	"github.com/shkhuz/aria/internal/source"
	"github.com/shkhuz/aria/internal/token"
)

type Parser struct {
	src  *source.Srcfile
	toks []token.Token
	diag *diag.Engine

	pos int // index into toks of the current token

	// noAggregateLit suppresses the `Ident{ ... }` aggregate-literal
	// form while parsing an if/while/for condition, so `if x { ... }`
	// parses the `{` as the then-block rather than an aggregate
	// literal's fields (the same ambiguity Go's grammar resolves with
	// its exprLev mechanism).
	noAggregateLit bool
}

// Parse lexes-independent: it consumes an already-lexed token vector
// (produced by internal/lexer) and returns the file's top-level
// declarations.
func Parse(src *source.Srcfile, toks []token.Token, eng *diag.Engine) []*ast.Node {
	p := &Parser{src: src, toks: toks, diag: eng}
	var decls []*ast.Node
	for !p.atEOF() {
		d := p.topLevel()
		if d != nil {
			decls = append(decls, d)
		}
	}
	return decls
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Kind == token.EOF }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) curIsKeyword(kk token.KeywordKind) bool {
	return p.cur().Kind == token.Keyword && p.cur().Keyword == kk
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

// expect consumes the current token if it has kind k, else reports a
// syntax error and returns the zero Token with ok=false.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorUnexpected(k.String())
	return token.Token{}, false
}

func (p *Parser) expectKeyword(kk token.KeywordKind, name string) bool {
	if p.curIsKeyword(kk) {
		p.advance()
		return true
	}
	p.errorUnexpected(name)
	return false
}

func (p *Parser) errorUnexpected(expected string) {
	t := p.cur()
	if t.Kind == token.EOF {
		p.diag.Errorf(t.Span, "unexpected end of file, expected %s", expected)
		return
	}
	p.diag.Errorf(t.Span, "unexpected %s, expected %s", t.Kind, expected)
}

// synchronize implements panic-mode recovery (§4.3): it emits no
// further diagnostic itself (the caller already emitted one) and
// advances tokens until a synchronizing token — ';', '}', or a
// top-level keyword — is reached. Recovery never crosses EOF.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			return // let the caller consume the closing brace
		}
		if p.cur().Kind == token.Keyword {
			switch p.cur().Keyword {
			case token.KwFn, token.KwStruct, token.KwType, token.KwImport, token.KwImm, token.KwMut, token.KwExtern:
				return
			}
		}
		p.advance()
	}
}

// expectClosing parses the matching close token for an opener whose
// span is openSpan and whose surface spelling is openName ("{", "(",
// "["). On EOF before the closer, it reports "while matching `x`..."
// per §4.3, instead of a generic unexpected-EOF message.
func (p *Parser) expectClosing(k token.Kind, openSpan source.Span, openName string) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	if p.atEOF() {
		p.diag.Errorf(openSpan, "unexpected end of file while matching `%s`", openName)
		return false
	}
	p.errorUnexpected(k.String())
	return false
}

func (p *Parser) span(start int) source.Span {
	return p.src.NewSpan(start, p.toks[p.pos].Span.Start)
}

func (p *Parser) startOff() int { return p.cur().Span.Start }
func (p *Parser) endOffOfPrev() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}
