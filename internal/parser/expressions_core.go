package parser

import (
	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/token"
)

func (p *Parser) startsExpression() bool {
	switch {
	case p.curTokenIs(token.Literal), p.curTokenIs(token.Identifier):
		return true
	case p.curTokenIs(token.Subtract):
		return isNumber(p.peekToken())
	}
	return false
}

func isNumber(pair token.Pair) bool {
	return pair.Token.Kind == token.Literal &&
		(pair.Token.Literal == token.Integer || pair.Token.Literal == token.Float)
}

// expr := literal | IDENT | IDENT '(' [expr {',' expr}] ')'
func (p *Parser) parseExpression() ast.Expression {
	var expr ast.Expression
	switch {
	case p.curTokenIs(token.Literal), p.curTokenIs(token.Subtract) && isNumber(p.peekToken()):
		lit := p.parseLiteralExpression()
		if lit == nil {
			return nil
		}
		return lit
	case p.curTokenIs(token.Identifier):
		tok := p.curToken
		p.nextToken()
		expr = &ast.Variable{Pos: tok.Pos, Ident: p.intern(tok.Text), Name: tok.Text}
	default:
		p.unexpected("expression")
		return nil
	}

	for p.curTokenIs(token.OpenParen) {
		if expr = p.parseCallExpression(expr); expr == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.Call{Pos: p.curToken.Pos, Function: function}
	p.nextToken() // (
	if p.curTokenIs(token.CloseParen) {
		p.nextToken()
		return call
	}
	for {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.curTokenIs(token.Comma) {
			p.nextToken()
			continue
		}
		if _, ok := p.expect(token.CloseParen, "',' or ')'"); !ok {
			return nil
		}
		return call
	}
}
