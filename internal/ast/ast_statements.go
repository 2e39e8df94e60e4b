package ast

import (
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// ModuleDefinition declares a namespace.
// module name { ... }
type ModuleDefinition struct {
	Pos    token.Pos
	Module ident.Ident
	Name   string
	Scope  *Scope
}

func (md *ModuleDefinition) Accept(v Visitor)  { v.VisitModuleDefinition(md) }
func (md *ModuleDefinition) statementNode()    {}
func (md *ModuleDefinition) GetPos() token.Pos { return md.Pos }

// ExternalModuleDefinition binds a native library.
// @extern module name = "location"
type ExternalModuleDefinition struct {
	Pos      token.Pos
	Module   ident.Ident
	Name     string
	Location string
}

func (ed *ExternalModuleDefinition) Accept(v Visitor)  { v.VisitExternalModuleDefinition(ed) }
func (ed *ExternalModuleDefinition) statementNode()    {}
func (ed *ExternalModuleDefinition) GetPos() token.Pos { return ed.Pos }

// VariableDefinition binds the value of an expression.
// let name: Type = expr
type VariableDefinition struct {
	Pos      token.Pos
	Variable ident.Ident
	Name     string
	Type     string // empty when omitted
	Value    Expression
}

func (vd *VariableDefinition) Accept(v Visitor)  { v.VisitVariableDefinition(vd) }
func (vd *VariableDefinition) statementNode()    {}
func (vd *VariableDefinition) GetPos() token.Pos { return vd.Pos }

// FunctionDefinition binds an interpreted function. Its body occupies
// Entries[Entry:End] of the main sequence and ends with a Return.
type FunctionDefinition struct {
	Pos        token.Pos
	Ident      ident.Ident
	Name       string
	Public     bool
	Arguments  []value.Argument
	ReturnType string
	Entry      int
	End        int
}

func (fd *FunctionDefinition) Accept(v Visitor)  { v.VisitFunctionDefinition(fd) }
func (fd *FunctionDefinition) statementNode()    {}
func (fd *FunctionDefinition) GetPos() token.Pos { return fd.Pos }

// ExpressionStatement evaluates an expression and discards the result.
type ExpressionStatement struct {
	Pos        token.Pos
	Expression Expression
}

func (es *ExpressionStatement) Accept(v Visitor)  { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) statementNode()    {}
func (es *ExpressionStatement) GetPos() token.Pos { return es.Pos }

// Import binds the last segment of a module path in the current scope.
// use module.sub.member
type Import struct {
	Pos   token.Pos
	Path  []ident.Ident
	Names []string
}

func (im *Import) Accept(v Visitor)  { v.VisitImport(im) }
func (im *Import) statementNode()    {}
func (im *Import) GetPos() token.Pos { return im.Pos }

// Return leaves the current function. Value is nil for a bare return.
type Return struct {
	Pos   token.Pos
	Value Expression
}

func (r *Return) Accept(v Visitor)  { v.VisitReturn(r) }
func (r *Return) statementNode()    {}
func (r *Return) GetPos() token.Pos { return r.Pos }
