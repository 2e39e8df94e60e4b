package parser

import (
	"fmt"
	"strings"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// parseTopLevel parses one statement of the script body. Declarations of
// modules and imports run when the script is loaded; everything else belongs
// to the main sequence.
func (p *Parser) parseTopLevel() {
	start := p.pos
	switch {
	case p.isDeclarationStart() && !p.curKeywordIs(token.Let):
		if stmt := p.parseDeclaration(); stmt != nil {
			p.tree.OnLoad = append(p.tree.OnLoad, stmt)
			return
		}
	case p.curKeywordIs(token.Fn), p.curKeywordIs(token.Public):
		if p.parseFunction() {
			return
		}
	default:
		if stmt := p.parseStatement(); stmt != nil {
			p.tree.Entries = append(p.tree.Entries, stmt)
			return
		}
	}
	p.synchronize(start)
}

func (p *Parser) isDeclarationStart() bool {
	return p.curTokenIs(token.Annotation) ||
		p.curKeywordIs(token.Module) ||
		p.curKeywordIs(token.Use) ||
		p.curKeywordIs(token.Let)
}

// parseDeclaration parses the statements allowed in a module block.
func (p *Parser) parseDeclaration() ast.Statement {
	switch {
	case p.curTokenIs(token.Annotation):
		return p.parseExternalModule()
	case p.curKeywordIs(token.Module):
		return p.parseModuleDefinition()
	case p.curKeywordIs(token.Use):
		return p.parseImport()
	case p.curKeywordIs(token.Let):
		return p.parseVariableDefinition()
	}
	p.unexpected("declaration")
	return nil
}

// parseStatement parses a main-sequence statement.
func (p *Parser) parseStatement() ast.Statement {
	tok := p.curToken
	switch {
	case p.curKeywordIs(token.Let):
		return p.parseVariableDefinition()
	case p.curKeywordIs(token.Return):
		return p.parseReturn()
	case p.curKeywordIs(token.Use):
		return p.parseImport()
	case p.curKeywordIs(token.Type), p.curKeywordIs(token.Enum):
		p.errorf(diagnostics.ErrP003, tok.Pos, fmt.Sprintf("%s declarations are not supported", tok.Text))
		return nil
	case p.curTokenIs(token.Keyword), p.curTokenIs(token.Annotation):
		p.errorf(diagnostics.ErrP003, tok.Pos, fmt.Sprintf("%s is not allowed here", tok.Text))
		return nil
	}
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Pos: tok.Pos, Expression: expr}
}

// parseBodyStatement parses one statement of a function body.
func (p *Parser) parseBodyStatement() {
	start := p.pos
	switch {
	case p.curKeywordIs(token.Fn), p.curKeywordIs(token.Public):
		if p.parseFunction() {
			return
		}
	case p.curTokenIs(token.Annotation), p.curKeywordIs(token.Module):
		p.errorf(diagnostics.ErrP003, p.curToken.Pos, "modules can only be declared at top level or inside a module")
	default:
		if stmt := p.parseStatement(); stmt != nil {
			p.tree.Entries = append(p.tree.Entries, stmt)
			return
		}
	}
	p.synchronize(start)
}

// @extern module name = "location"
func (p *Parser) parseExternalModule() ast.Statement {
	tok := p.curToken
	if tok.Token.Annotation != token.Extern {
		p.errorf(diagnostics.ErrP003, tok.Pos, fmt.Sprintf("unsupported annotation %s", tok.Text))
		return nil
	}
	p.nextToken()
	if !p.curKeywordIs(token.Module) {
		p.unexpected("'module' after @extern")
		return nil
	}
	p.nextToken()
	name, ok := p.expect(token.Identifier, "module name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.Assign, "'='"); !ok {
		return nil
	}
	loc := p.curToken
	if !p.curTokenIs(token.Literal) || (loc.Token.Literal != token.String && loc.Token.Literal != token.RawString) {
		p.unexpected("library location string")
		return nil
	}
	p.nextToken()
	v, err := literalValue(loc, false)
	if err != nil {
		p.errorf(diagnostics.ErrP004, loc.Pos, loc.Token.Literal, loc.Text, err)
		return nil
	}
	return &ast.ExternalModuleDefinition{
		Pos:      tok.Pos,
		Module:   p.intern(name.Text),
		Name:     name.Text,
		Location: v.String(),
	}
}

// module name { declarations }
func (p *Parser) parseModuleDefinition() ast.Statement {
	tok := p.curToken
	p.nextToken()
	name, ok := p.expect(token.Identifier, "module name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.OpenBrace, "'{'"); !ok {
		return nil
	}
	md := &ast.ModuleDefinition{
		Pos:    tok.Pos,
		Module: p.intern(name.Text),
		Name:   name.Text,
		Scope:  ast.NewScope(),
	}
	for !p.atEnd() && !p.curTokenIs(token.CloseBrace) {
		start := p.pos
		if p.isDeclarationStart() {
			if stmt := p.parseDeclaration(); stmt != nil {
				md.Scope.Entries = append(md.Scope.Entries, stmt)
				md.Scope.Declare(declared(stmt))
				continue
			}
		} else {
			p.errorf(diagnostics.ErrP003, p.curToken.Pos,
				fmt.Sprintf("only declarations are allowed in module %s, found %s", name.Text, describe(p)))
		}
		p.synchronize(start)
	}
	if _, ok := p.expect(token.CloseBrace, "'}'"); !ok {
		return nil
	}
	return md
}

func declared(stmt ast.Statement) ident.Ident {
	switch s := stmt.(type) {
	case *ast.ModuleDefinition:
		return s.Module
	case *ast.ExternalModuleDefinition:
		return s.Module
	case *ast.VariableDefinition:
		return s.Variable
	case *ast.Import:
		return s.Path[len(s.Path)-1]
	}
	return -1
}

// use module.member
func (p *Parser) parseImport() ast.Statement {
	tok := p.curToken
	p.nextToken()
	first, ok := p.expect(token.Identifier, "module name")
	if !ok {
		return nil
	}
	im := &ast.Import{Pos: tok.Pos}
	im.Path = append(im.Path, p.intern(first.Text))
	im.Names = append(im.Names, first.Text)
	for p.curTokenIs(token.Dot) {
		p.nextToken()
		seg, ok := p.expect(token.Identifier, "name after '.'")
		if !ok {
			return nil
		}
		im.Path = append(im.Path, p.intern(seg.Text))
		im.Names = append(im.Names, seg.Text)
	}
	if len(im.Path) < 2 {
		p.errorf(diagnostics.ErrP002, tok.Pos, strings.Join(im.Names, "."))
		return nil
	}
	return im
}

// let name: Type = expr
func (p *Parser) parseVariableDefinition() ast.Statement {
	tok := p.curToken
	p.nextToken()
	name, ok := p.expect(token.Identifier, "variable name")
	if !ok {
		return nil
	}
	vd := &ast.VariableDefinition{Pos: tok.Pos, Variable: p.intern(name.Text), Name: name.Text}
	if p.curTokenIs(token.Colon) {
		p.nextToken()
		if vd.Type, ok = p.parseTypeName(); !ok {
			return nil
		}
	}
	if _, ok := p.expect(token.Assign, "'='"); !ok {
		return nil
	}
	if vd.Value = p.parseExpression(); vd.Value == nil {
		return nil
	}
	return vd
}

// return [expr]; the value must start on the same line as the keyword.
func (p *Parser) parseReturn() ast.Statement {
	tok := p.curToken
	if p.inFunction == 0 {
		p.errorf(diagnostics.ErrP003, tok.Pos, "return outside of a function")
		return nil
	}
	p.nextToken()
	ret := &ast.Return{Pos: tok.Pos}
	if p.startsExpression() && p.curToken.Pos.Line == tok.Pos.Line {
		if ret.Value = p.parseExpression(); ret.Value == nil {
			return nil
		}
	}
	return ret
}

// [public] fn name(params) -> Type { body }
//
// The definition is emitted into the main sequence, followed by the body and
// an implicit return.
func (p *Parser) parseFunction() bool {
	tok := p.curToken
	public := false
	if p.curKeywordIs(token.Public) {
		public = true
		p.nextToken()
		if !p.curKeywordIs(token.Fn) {
			p.unexpected("'fn' after 'public'")
			return false
		}
	}
	p.nextToken()
	name, ok := p.expect(token.Identifier, "function name")
	if !ok {
		return false
	}
	if _, ok := p.expect(token.OpenParen, "'('"); !ok {
		return false
	}
	args, ok := p.parseParameters()
	if !ok {
		return false
	}
	fn := &ast.FunctionDefinition{
		Pos:       tok.Pos,
		Ident:     p.intern(name.Text),
		Name:      name.Text,
		Public:    public,
		Arguments: args,
	}
	if p.curTokenIs(token.Arrow) {
		p.nextToken()
		if fn.ReturnType, ok = p.parseTypeName(); !ok {
			return false
		}
	}
	if _, ok := p.expect(token.OpenBrace, "'{'"); !ok {
		return false
	}

	p.tree.Entries = append(p.tree.Entries, fn)
	fn.Entry = len(p.tree.Entries)
	p.inFunction++
	for !p.atEnd() && !p.curTokenIs(token.CloseBrace) {
		p.parseBodyStatement()
	}
	p.inFunction--
	closing := p.curToken.Pos
	p.expect(token.CloseBrace, "'}'")
	p.tree.Entries = append(p.tree.Entries, &ast.Return{Pos: closing})
	fn.End = len(p.tree.Entries)
	return true
}

// param := name [: Type] [= literal]
func (p *Parser) parseParameters() ([]value.Argument, bool) {
	var args []value.Argument
	if p.curTokenIs(token.CloseParen) {
		p.nextToken()
		return args, true
	}
	seen := make(map[string]bool)
	for {
		name, ok := p.expect(token.Identifier, "parameter name")
		if !ok {
			return nil, false
		}
		if seen[name.Text] {
			p.errorf(diagnostics.ErrP003, name.Pos, fmt.Sprintf("duplicate parameter %s", name.Text))
			return nil, false
		}
		seen[name.Text] = true
		arg := value.Argument{Ident: p.intern(name.Text), Name: name.Text}
		if p.curTokenIs(token.Colon) {
			p.nextToken()
			if arg.Type, ok = p.parseTypeName(); !ok {
				return nil, false
			}
		}
		if p.curTokenIs(token.Assign) {
			p.nextToken()
			lit := p.parseLiteralExpression()
			if lit == nil {
				return nil, false
			}
			arg.Default = lit.Value
		}
		args = append(args, arg)

		if p.curTokenIs(token.Comma) {
			p.nextToken()
			continue
		}
		if _, ok := p.expect(token.CloseParen, "',' or ')'"); !ok {
			return nil, false
		}
		return args, true
	}
}

func (p *Parser) parseTypeName() (string, bool) {
	if p.curTokenIs(token.BuiltInType) || p.curTokenIs(token.Identifier) {
		name := p.curToken.Text
		p.nextToken()
		return name, true
	}
	p.unexpected("type name")
	return "", false
}
