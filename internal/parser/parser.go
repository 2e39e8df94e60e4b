// Package parser turns paired tokens into a program tree.
package parser

import (
	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/token"
)

// Parser is a recursive descent parser over the significant tokens of one
// script. Errors are collected on the pipeline context; after an error the
// parser skips to the next statement.
type Parser struct {
	pairs []token.Pair
	pos   int

	curToken token.Pair
	eof      token.Pos

	ctx    *pipeline.PipelineContext
	idents *ident.Table
	tree   *ast.Tree

	// depth of function bodies being parsed
	inFunction int
}

func New(pairs []token.Pair, ctx *pipeline.PipelineContext) *Parser {
	significant := make([]token.Pair, 0, len(pairs))
	for _, pair := range pairs {
		// Unknown tokens were already reported by the scanner.
		if pair.Token.Kind.IsTrivia() || pair.Token.Kind == token.Unknown {
			continue
		}
		significant = append(significant, pair)
	}
	idents := ctx.Idents
	if idents == nil {
		idents = ident.NewTable()
		ctx.Idents = idents
	}
	p := &Parser{
		pairs:  significant,
		ctx:    ctx,
		idents: idents,
		tree:   ast.NewTree(),
		eof:    eofPos(ctx.SourceCode, pairs),
	}
	p.pos = -1
	p.nextToken()
	return p
}

func eofPos(src string, pairs []token.Pair) token.Pos {
	if len(pairs) == 0 {
		return token.Pos{Offset: 0, Line: 1, Column: 1}
	}
	last := pairs[len(pairs)-1]
	pos := last.Pos
	for i := 0; i < len(last.Text); i++ {
		if last.Text[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	pos.Offset = len(src)
	return pos
}

// ParseTree parses the whole script.
func (p *Parser) ParseTree() *ast.Tree {
	for !p.atEnd() {
		p.parseTopLevel()
	}
	return p.tree
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.pairs) }

func (p *Parser) nextToken() {
	if p.pos < len(p.pairs) {
		p.pos++
	}
	if p.pos < len(p.pairs) {
		p.curToken = p.pairs[p.pos]
	} else {
		p.curToken = token.Pair{Pos: p.eof}
	}
}

func (p *Parser) peekToken() token.Pair {
	if p.pos+1 < len(p.pairs) {
		return p.pairs[p.pos+1]
	}
	return token.Pair{Pos: p.eof}
}

func (p *Parser) curTokenIs(kind token.Kind) bool {
	return !p.atEnd() && p.curToken.Token.Kind == kind
}

func (p *Parser) curKeywordIs(kw token.KeywordKind) bool {
	return !p.atEnd() && p.curToken.Token.Is(kw)
}

// expect consumes the current token if it has the given kind, reporting an
// error naming what was wanted otherwise.
func (p *Parser) expect(kind token.Kind, want string) (token.Pair, bool) {
	if !p.curTokenIs(kind) {
		p.unexpected(want)
		return token.Pair{}, false
	}
	tok := p.curToken
	p.nextToken()
	return tok, true
}

func (p *Parser) unexpected(want string) {
	p.errorf(diagnostics.ErrP001, p.curToken.Pos, describe(p), want)
}

func describe(p *Parser) string {
	if p.atEnd() {
		return "end of input"
	}
	if p.curToken.Token.Kind == token.Keyword {
		return "keyword '" + p.curToken.Text + "'"
	}
	return p.curToken.Token.Kind.String() + " '" + p.curToken.Text + "'"
}

func (p *Parser) errorf(code diagnostics.ErrorCode, pos token.Pos, args ...interface{}) {
	err := diagnostics.NewError(code, pos, args...)
	err.File = p.ctx.FilePath
	p.ctx.Errors = append(p.ctx.Errors, err)
}

// synchronize skips to the start of the next statement or the end of the
// enclosing block.
func (p *Parser) synchronize(start int) {
	if p.pos == start {
		p.nextToken()
	}
	for !p.atEnd() {
		tok := p.curToken.Token
		switch tok.Kind {
		case token.Annotation, token.CloseBrace:
			return
		case token.Keyword:
			switch tok.Keyword {
			case token.Let, token.Fn, token.Use, token.Module, token.Return, token.Public, token.Type, token.Enum:
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) intern(name string) ident.Ident {
	return p.idents.Intern(name)
}
