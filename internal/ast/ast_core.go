// Package ast holds the program tree built by the parser and executed by the VM.
package ast

import (
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// Node is the base interface for all tree nodes.
type Node interface {
	Accept(v Visitor)
	GetPos() token.Pos
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	// IsConstant reports whether the expression can be folded before run time.
	IsConstant() bool
}

// Visitor walks a tree one node at a time.
type Visitor interface {
	VisitModuleDefinition(*ModuleDefinition)
	VisitExternalModuleDefinition(*ExternalModuleDefinition)
	VisitVariableDefinition(*VariableDefinition)
	VisitFunctionDefinition(*FunctionDefinition)
	VisitExpressionStatement(*ExpressionStatement)
	VisitImport(*Import)
	VisitReturn(*Return)
	VisitLiteral(*Literal)
	VisitVariable(*Variable)
	VisitCall(*Call)
}

// Tree is a loaded program. OnLoad statements run once, in load order,
// before the main sequence; Entries is the main sequence, addressed by index.
type Tree struct {
	OnLoad  []Statement
	Entries []Statement
}

func NewTree() *Tree {
	return &Tree{}
}

// Merge appends other to the tree. Function addresses in other are relative
// to its own main sequence and are shifted to their new place.
func (t *Tree) Merge(other *Tree) {
	if other == nil {
		return
	}
	offset := len(t.Entries)
	for _, stmt := range other.Entries {
		if fn, ok := stmt.(*FunctionDefinition); ok {
			fn.Entry += offset
			fn.End += offset
		}
	}
	t.OnLoad = append(t.OnLoad, other.OnLoad...)
	t.Entries = append(t.Entries, other.Entries...)
}

// Len is the number of statements in both sequences.
func (t *Tree) Len() int { return len(t.OnLoad) + len(t.Entries) }

// Scope is the body of a module block.
type Scope struct {
	// Idents lists the identifiers declared in the block, in order.
	Idents []ident.Ident
	// Members is the block's own store, filled when the block executes.
	Members *value.Variables
	Entries []Statement
}

func NewScope() *Scope {
	return &Scope{Members: value.NewVariables()}
}

// Declare records id as declared in the scope, once.
func (s *Scope) Declare(id ident.Ident) {
	for _, existing := range s.Idents {
		if existing == id {
			return
		}
	}
	s.Idents = append(s.Idents, id)
}
