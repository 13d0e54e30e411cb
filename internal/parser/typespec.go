package parser

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/token"
)

// typespec parses one typespec form (§3.3): primitive reference,
// pointer, multi-pointer, slice, array, function, tuple, or generic
// application. The parser builds shape only — it does not resolve the
// referenced primitive/struct name to a Typespec; that happens in
// sema (annotations are checked in Prec 2, §4.5.3).
func (p *Parser) typespec() *ast.Node {
	start := p.startOff()
	switch {
	case p.check(token.Star):
		p.advance()
		immutable := p.consumeImm()
		child := p.typespec()
		return &ast.Node{Kind: ast.KindPtrType, Immutable: immutable, Child: child, Span: p.span(start)}

	case p.check(token.LBrack):
		p.advance()
		if p.check(token.Star) {
			p.advance()
			p.expect(token.RBrack)
			immutable := p.consumeImm()
			child := p.typespec()
			return &ast.Node{Kind: ast.KindMultiPtrType, Immutable: immutable, Child: child, Span: p.span(start)}
		}
		if p.check(token.RBrack) {
			p.advance()
			immutable := p.consumeImm()
			child := p.typespec()
			return &ast.Node{Kind: ast.KindSliceType, Immutable: immutable, Child: child, Span: p.span(start)}
		}
		// array: [N]T
		size := p.expr()
		p.expect(token.RBrack)
		child := p.typespec()
		return &ast.Node{Kind: ast.KindArrayType, Index: size, Child: child, Span: p.span(start)}

	case p.curIsKeyword(token.KwFn):
		p.advance()
		openParen := p.cur().Span
		p.expect(token.LParen)
		var params []*ast.Node
		for !p.check(token.RParen) && !p.atEOF() {
			params = append(params, p.typespec())
			if p.check(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expectClosing(token.RParen, openParen, "(")
		ret := p.typespec()
		return &ast.Node{Kind: ast.KindFuncType, Params: params, Child: ret, Span: p.span(start)}

	case p.check(token.LParen):
		p.advance()
		openParen := p.toks[p.pos-1].Span
		var elems []*ast.Node
		for !p.check(token.RParen) && !p.atEOF() {
			elems = append(elems, p.typespec())
			if p.check(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expectClosing(token.RParen, openParen, "(")
		return &ast.Node{Kind: ast.KindTupleType, Elems: elems, Span: p.span(start)}

	case p.check(token.Ident) || p.cur().Kind == token.Keyword:
		return p.namedTypespec(start)

	default:
		p.errorUnexpected("a type")
		return &ast.Node{Kind: ast.KindInvalid, Span: p.span(start)}
	}
}

// consumeImm consumes an optional `imm` modifier and reports whether
// it was present.
func (p *Parser) consumeImm() bool {
	if p.curIsKeyword(token.KwImm) {
		p.advance()
		return true
	}
	return false
}

// namedTypespec parses a bare identifier/keyword reference, optionally
// followed by a generic application `T(args...)` (§3.3 placeholder
// generic syntax — the checker rejects real generic instantiation per
// spec.md Non-goals, but the grammar still parses the application
// form so a clear diagnostic can be produced instead of a parse
// error).
func (p *Parser) namedTypespec(start int) *ast.Node {
	nameTok := p.advance()
	base := &ast.Node{Kind: ast.KindPrimType, Name: nameTok.Lexeme, Span: p.span(start)}
	if nameTok.Kind == token.Keyword {
		base.Builtin = keywordBuiltin(nameTok.Keyword)
	}
	if !p.check(token.LParen) {
		return base
	}
	p.advance()
	openParen := p.toks[p.pos-1].Span
	var args []*ast.Node
	for !p.check(token.RParen) && !p.atEOF() {
		args = append(args, p.typespec())
		if p.check(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expectClosing(token.RParen, openParen, "(")
	return &ast.Node{Kind: ast.KindGenericApp, Target: base, Elems: args, Span: p.span(start)}
}

func keywordBuiltin(kk token.KeywordKind) ast.BuiltinKind {
	switch kk {
	case token.KwVoid:
		return ast.BuiltinVoid
	case token.KwNoreturn:
		return ast.BuiltinNoreturn
	default:
		return ast.BuiltinPrimName
	}
}
