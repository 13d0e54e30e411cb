package parser

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/token"
)

// statement parses one statement inside a block (§4.3). It returns
// isTail=true when the parsed expression is the block's trailing
// value (no statement wrapper, no terminating ';') rather than an
// ordinary statement.
func (p *Parser) statement() (*ast.Node, bool) {
	if p.curIsKeyword(token.KwImm) || p.curIsKeyword(token.KwMut) {
		return p.varDecl(true), false
	}

	start := p.startOff()
	e := p.expr()

	if p.check(token.RBrace) {
		return e, true
	}
	if p.check(token.Semicolon) {
		p.advance()
		return &ast.Node{Kind: ast.KindExprStmt, Operand: e, Span: p.span(start)}, false
	}
	if isBlockLike(e) {
		// if/while/for/block don't require a terminating ';' when used
		// as a statement (only when they're the block's tail value,
		// handled above).
		return &ast.Node{Kind: ast.KindExprStmt, Operand: e, Span: p.span(start)}, false
	}

	p.errorUnexpected(";")
	p.synchronize()
	return &ast.Node{Kind: ast.KindExprStmt, Operand: e, Span: p.span(start)}, false
}

func isBlockLike(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindIf, ast.KindWhile, ast.KindFor, ast.KindBlock:
		return true
	}
	return false
}
