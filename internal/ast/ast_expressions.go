package ast

import (
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

type Literal struct {
	Pos   token.Pos
	Value value.Value
}

func (l *Literal) Accept(v Visitor)  { v.VisitLiteral(l) }
func (l *Literal) expressionNode()   {}
func (l *Literal) GetPos() token.Pos { return l.Pos }
func (l *Literal) IsConstant() bool  { return true }

// Variable reads a binding from the innermost scope that has one.
type Variable struct {
	Pos   token.Pos
	Ident ident.Ident
	Name  string
}

func (va *Variable) Accept(v Visitor)  { v.VisitVariable(va) }
func (va *Variable) expressionNode()   {}
func (va *Variable) GetPos() token.Pos { return va.Pos }
func (va *Variable) IsConstant() bool  { return false }

// Call applies a function to arguments evaluated left to right.
type Call struct {
	Pos      token.Pos
	Function Expression
	Args     []Expression
}

func (c *Call) Accept(v Visitor)  { v.VisitCall(c) }
func (c *Call) expressionNode()   {}
func (c *Call) GetPos() token.Pos { return c.Pos }
func (c *Call) IsConstant() bool  { return false }

// ConstantValue returns the folded value of a constant expression.
func ConstantValue(e Expression) (value.Value, bool) {
	if lit, ok := e.(*Literal); ok {
		return lit.Value, true
	}
	return nil, false
}
