package parser

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/token"
)

// topLevel parses one top-level form: imm/mut var decl, fn
// definition/extern, struct, type alias, or import (§4.3).
func (p *Parser) topLevel() *ast.Node {
	start := p.startOff()
	switch {
	case p.curIsKeyword(token.KwImm) || p.curIsKeyword(token.KwMut):
		return p.varDecl(true)
	case p.curIsKeyword(token.KwFn):
		return p.funcDef()
	case p.curIsKeyword(token.KwExtern):
		return p.externDecl()
	case p.curIsKeyword(token.KwStruct):
		return p.structDecl()
	case p.curIsKeyword(token.KwType):
		return p.typeAlias()
	case p.curIsKeyword(token.KwImport):
		return p.importDecl()
	default:
		p.diag.Errorf(p.cur().Span, "invalid top-level form: expected `fn`, `struct`, `type`, `import`, `imm`, `mut`, or `extern`")
		p.synchronize()
		_ = start
		return nil
	}
}

// varDecl parses `(imm|mut) name [: Typespec] [= expr] ;`. topLevel
// controls whether a trailing ';' is mandatory (it always is for var
// decls, at top level and in blocks alike).
func (p *Parser) varDecl(requireSemi bool) *ast.Node {
	start := p.startOff()
	mutable := p.curIsKeyword(token.KwMut)
	p.advance() // imm/mut

	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	n := &ast.Node{Kind: ast.KindVarDecl, Name: nameTok.Lexeme, Mutable: mutable}

	if p.check(token.Colon) {
		p.advance()
		n.Child = p.typespec()
	}
	if p.check(token.Assign) {
		p.advance()
		n.Value = p.expr()
		n.HasValue = true
	}
	if requireSemi {
		p.expect(token.Semicolon)
	}
	n.Span = p.span(start)
	return n
}

// funcHeader parses `fn name ( params ) RetType` (no body).
func (p *Parser) funcHeader() *ast.Node {
	start := p.startOff()
	if !p.expectKeyword(token.KwFn, "`fn`") {
		return nil
	}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		return nil
	}
	openParen := p.cur().Span
	if !p.check(token.LParen) {
		p.errorUnexpected("(")
		return nil
	}
	p.advance()

	var params []*ast.Node
	for !p.check(token.RParen) && !p.atEOF() {
		pstart := p.startOff()
		pname, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		p.expect(token.Colon)
		ptype := p.typespec()
		params = append(params, &ast.Node{
			Kind: ast.KindParam, Name: pname.Lexeme, Child: ptype,
			Span: p.span(pstart),
		})
		if p.check(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expectClosing(token.RParen, openParen, "(")

	ret := p.typespec()

	return &ast.Node{
		Kind:   ast.KindFuncHeader,
		Name:   nameTok.Lexeme,
		Params: params,
		Child:  ret,
		Span:   p.span(start),
	}
}

func (p *Parser) funcDef() *ast.Node {
	start := p.startOff()
	hdr := p.funcHeader()
	if hdr == nil {
		p.synchronize()
		return nil
	}
	body := p.block()
	return &ast.Node{Kind: ast.KindFuncDef, Header: hdr, Then: body, Span: p.span(start)}
}

// externDecl parses `extern fn name(...) R [= "link name"];` or
// `extern (imm|mut) name : T [= "link name"];` (§10 SPEC_FULL linkage
// names, resolved from original_source/src/core.c).
func (p *Parser) externDecl() *ast.Node {
	start := p.startOff()
	p.advance() // 'extern'
	if p.curIsKeyword(token.KwFn) {
		hdr := p.funcHeader()
		if hdr == nil {
			p.synchronize()
			return nil
		}
		n := &ast.Node{Kind: ast.KindExternFunc, Header: hdr}
		if p.check(token.Assign) {
			p.advance()
			if s, ok := p.expect(token.StringLit); ok {
				n.Str = unescapeString(s.Lexeme)
			}
		}
		p.expect(token.Semicolon)
		n.Span = p.span(start)
		return n
	}
	if p.curIsKeyword(token.KwImm) || p.curIsKeyword(token.KwMut) {
		mutable := p.curIsKeyword(token.KwMut)
		p.advance()
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			p.synchronize()
			return nil
		}
		p.expect(token.Colon)
		typ := p.typespec()
		n := &ast.Node{Kind: ast.KindExternVar, Name: nameTok.Lexeme, Mutable: mutable, Child: typ}
		if p.check(token.Assign) {
			p.advance()
			if s, ok := p.expect(token.StringLit); ok {
				n.Str = unescapeString(s.Lexeme)
			}
		}
		p.expect(token.Semicolon)
		n.Span = p.span(start)
		return n
	}
	p.errorUnexpected("`fn`, `imm`, or `mut`")
	p.synchronize()
	return nil
}

func (p *Parser) structDecl() *ast.Node {
	start := p.startOff()
	p.advance() // 'struct'
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	openBrace := p.cur().Span
	if !p.check(token.LBrace) {
		p.errorUnexpected("{")
		p.synchronize()
		return nil
	}
	p.advance()

	var fields []*ast.Node
	for !p.check(token.RBrace) && !p.atEOF() {
		fstart := p.startOff()
		fname, ok := p.expect(token.Ident)
		if !ok {
			p.synchronize()
			break
		}
		p.expect(token.Colon)
		ftype := p.typespec()
		fields = append(fields, &ast.Node{Kind: ast.KindField, Name: fname.Lexeme, Child: ftype, Span: p.span(fstart)})
		if p.check(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expectClosing(token.RBrace, openBrace, "{")

	return &ast.Node{Kind: ast.KindStruct, Name: nameTok.Lexeme, StructFields: fields, Span: p.span(start)}
}

// typeAlias parses `type Name = Typespec ;` (§10 SPEC_FULL, resolved
// against original_source/src/ast.c's alias node).
func (p *Parser) typeAlias() *ast.Node {
	start := p.startOff()
	p.advance() // 'type'
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	p.expect(token.Assign)
	aliased := p.typespec()
	p.expect(token.Semicolon)
	return &ast.Node{Kind: ast.KindTypeAlias, Name: nameTok.Lexeme, Child: aliased, Span: p.span(start)}
}

// importDecl parses `import "path" as name ;` — the bound name
// defaults to the last path component if `as name` is omitted.
func (p *Parser) importDecl() *ast.Node {
	start := p.startOff()
	p.advance() // 'import'
	pathTok, ok := p.expect(token.StringLit)
	if !ok {
		p.synchronize()
		return nil
	}
	path := unescapeString(pathTok.Lexeme)
	name := defaultImportName(path)
	if p.cur().Kind == token.Ident && p.cur().Lexeme == "as" {
		p.advance()
		if n, ok := p.expect(token.Ident); ok {
			name = n.Lexeme
		}
	}
	p.expect(token.Semicolon)
	return &ast.Node{Kind: ast.KindImport, Name: name, Str: path, Span: p.span(start)}
}

func defaultImportName(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	for i := len(last) - 1; i >= 0; i-- {
		if last[i] == '.' {
			return last[:i]
		}
	}
	return last
}
