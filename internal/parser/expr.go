package parser

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/token"
)

// precedence levels, low to high (§4.3).
type prec int

const (
	precLowest prec = iota
	precAssign      // = (right-assoc)
	precOr          // ||
	precAnd         // &&
	precEquality    // == !=
	precCompare     // < <= > >=
	precAdditive    // + -
	precMultiplic   // * /
	precCast        // as
	precUnary       // - ! & * .*
	precPostfix     // () [] .
)

func (p *Parser) expr() *ast.Node { return p.parseExpr(precLowest) }

func (p *Parser) tokenPrec() prec {
	switch p.cur().Kind {
	case token.Assign:
		return precAssign
	case token.PipePipe:
		return precOr
	case token.AmpAmp:
		return precAnd
	case token.Eq, token.NotEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precCompare
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash:
		return precMultiplic
	case token.Keyword:
		if p.cur().Keyword == token.KwAs {
			return precCast
		}
	case token.LParen, token.LBrack, token.Dot:
		return precPostfix
	}
	return precLowest
}

// parseExpr implements Pratt-style precedence climbing: parse a
// prefix/primary, then repeatedly fold in infix/postfix operators
// whose precedence is >= minPrec. Assignment is right-associative
// (handled by recursing at the same precedence on the RHS); all other
// binary operators are left-associative (recursing at prec+1).
func (p *Parser) parseExpr(minPrec prec) *ast.Node {
	left := p.unary()
	for {
		opPrec := p.tokenPrec()
		if opPrec < minPrec || opPrec == precLowest {
			break
		}
		switch {
		case opPrec == precAssign:
			left = p.finishAssign(left)
		case opPrec == precCast:
			left = p.finishCast(left)
		case opPrec == precPostfix:
			left = p.finishPostfix(left)
		default:
			left = p.finishBinop(left, opPrec)
		}
	}
	return left
}

func (p *Parser) finishAssign(left *ast.Node) *ast.Node {
	start := left.Span.Start
	p.advance() // '='
	rhs := p.parseExpr(precAssign) // right-assoc: same precedence on the RHS
	return &ast.Node{Kind: ast.KindAssign, Target: left, Value: rhs, Span: p.span(start)}
}

func (p *Parser) finishCast(left *ast.Node) *ast.Node {
	start := left.Span.Start
	p.advance() // 'as'
	target := p.typespec()
	return &ast.Node{Kind: ast.KindCast, Operand: left, Child: target, Span: p.span(start)}
}

func (p *Parser) finishBinop(left *ast.Node, opPrec prec) *ast.Node {
	start := left.Span.Start
	opTok := p.advance()
	right := p.parseExpr(opPrec + 1) // left-assoc: strictly higher precedence on the RHS

	switch opTok.Kind {
	case token.PipePipe, token.AmpAmp:
		op := ast.BoolOr
		if opTok.Kind == token.AmpAmp {
			op = ast.BoolAnd
		}
		return &ast.Node{Kind: ast.KindBoolBinop, BoolOp: op, Target: left, Value: right, Span: p.span(start)}
	case token.Eq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return &ast.Node{Kind: ast.KindCmpBinop, CmpOp: cmpOpFor(opTok.Kind), Target: left, Value: right, Span: p.span(start)}
	default: // + - * /
		return &ast.Node{Kind: ast.KindArithBinop, ArithOp: arithOpFor(opTok.Kind), Target: left, Value: right, Span: p.span(start)}
	}
}

func cmpOpFor(k token.Kind) ast.CmpOp {
	switch k {
	case token.Eq:
		return ast.CmpEq
	case token.NotEq:
		return ast.CmpNotEq
	case token.Lt:
		return ast.CmpLt
	case token.LtEq:
		return ast.CmpLtEq
	case token.Gt:
		return ast.CmpGt
	default:
		return ast.CmpGtEq
	}
}

func arithOpFor(k token.Kind) ast.ArithOp {
	switch k {
	case token.Plus:
		return ast.ArithAdd
	case token.Minus:
		return ast.ArithSub
	case token.Star:
		return ast.ArithMul
	default:
		return ast.ArithDiv
	}
}

// unary parses the unary prefix operators (-, !, &, * as deref prefix)
// and then hands off to postfix. `*` also has a postfix spelling,
// `.*` (§4.3); both forms build the same ast.KindDeref node.
func (p *Parser) unary() *ast.Node {
	start := p.startOff()
	switch {
	case p.check(token.Minus):
		p.advance()
		return &ast.Node{Kind: ast.KindUnary, UnaryOp: ast.UnaryNeg, Operand: p.parseExpr(precUnary), Span: p.span(start)}
	case p.check(token.Bang):
		p.advance()
		return &ast.Node{Kind: ast.KindUnary, UnaryOp: ast.UnaryNot, Operand: p.parseExpr(precUnary), Span: p.span(start)}
	case p.check(token.Amp):
		p.advance()
		return &ast.Node{Kind: ast.KindUnary, UnaryOp: ast.UnaryAddr, Operand: p.parseExpr(precUnary), Span: p.span(start)}
	case p.check(token.Star):
		p.advance()
		return &ast.Node{Kind: ast.KindDeref, Operand: p.parseExpr(precUnary), Span: p.span(start)}
	default:
		return p.postfixFrom(p.primary())
	}
}

// finishPostfix folds in one postfix operator: call, index, field
// access (including the `.*` deref spelled as a `.` followed by `*`).
func (p *Parser) finishPostfix(left *ast.Node) *ast.Node {
	return p.postfixOnce(left)
}

// postfixFrom repeatedly folds postfix operators onto a freshly
// parsed primary expression (used by unary(), which bypasses the
// generic precedence loop for prefix operators).
func (p *Parser) postfixFrom(n *ast.Node) *ast.Node {
	for p.tokenPrec() == precPostfix {
		n = p.postfixOnce(n)
	}
	return n
}

func (p *Parser) postfixOnce(left *ast.Node) *ast.Node {
	start := left.Span.Start
	switch p.cur().Kind {
	case token.LParen:
		openParen := p.cur().Span
		p.advance()
		var args []ast.Arg
		for !p.check(token.RParen) && !p.atEOF() {
			args = append(args, ast.Arg{Value: p.expr()})
			if p.check(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expectClosing(token.RParen, openParen, "(")
		return &ast.Node{Kind: ast.KindCall, Target: left, Args: args, Span: p.span(start)}

	case token.LBrack:
		openBrack := p.cur().Span
		p.advance()
		idx := p.expr()
		p.expectClosing(token.RBrack, openBrack, "[")
		return &ast.Node{Kind: ast.KindIndex, Target: left, Index: idx, Span: p.span(start)}

	case token.Dot:
		p.advance()
		if p.check(token.Star) {
			p.advance()
			return &ast.Node{Kind: ast.KindDeref, Operand: left, Span: p.span(start)}
		}
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			return left
		}
		return &ast.Node{Kind: ast.KindAccess, Target: left, Name: nameTok.Lexeme, Span: p.span(start)}

	default:
		return left
	}
}
