// Package prettyprinter renders program trees for debugging.
package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/value"
)

// TreePrinter lists the statements of a tree with their addresses. Function
// bodies are indented under their definition.
type TreePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// PrintTree renders both sequences of t.
func PrintTree(t *ast.Tree) string {
	p := NewTreePrinter()
	p.PrintTree(t)
	return p.String()
}

func (p *TreePrinter) PrintTree(t *ast.Tree) {
	p.buf.WriteString("on load:\n")
	for i, stmt := range t.OnLoad {
		p.statement(i, stmt)
	}
	p.buf.WriteString("main:\n")
	var ends []int
	for i, stmt := range t.Entries {
		for len(ends) > 0 && i >= ends[len(ends)-1] {
			ends = ends[:len(ends)-1]
		}
		p.indent = len(ends)
		p.statement(i, stmt)
		if fn, ok := stmt.(*ast.FunctionDefinition); ok {
			ends = append(ends, fn.End)
		}
	}
	p.indent = 0
}

func (p *TreePrinter) statement(addr int, stmt ast.Statement) {
	fmt.Fprintf(&p.buf, "  %04d ", addr)
	p.writeIndent()
	stmt.Accept(p)
	p.buf.WriteByte('\n')
}

func (p *TreePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *TreePrinter) write(s string) { p.buf.WriteString(s) }

func (p *TreePrinter) String() string { return p.buf.String() }

func (p *TreePrinter) VisitModuleDefinition(md *ast.ModuleDefinition) {
	p.write("ModuleDefinition " + md.Name + " {")
	p.indent++
	for _, stmt := range md.Scope.Entries {
		p.write("\n       ")
		p.writeIndent()
		stmt.Accept(p)
	}
	p.indent--
	p.write("\n       ")
	p.writeIndent()
	p.write("}")
}

func (p *TreePrinter) VisitExternalModuleDefinition(ed *ast.ExternalModuleDefinition) {
	p.write(fmt.Sprintf("ExternalModuleDefinition %s = %q", ed.Name, ed.Location))
}

func (p *TreePrinter) VisitVariableDefinition(vd *ast.VariableDefinition) {
	p.write("VariableDefinition " + vd.Name)
	if vd.Type != "" {
		p.write(": " + vd.Type)
	}
	p.write(" = ")
	vd.Value.Accept(p)
}

func (p *TreePrinter) VisitFunctionDefinition(fd *ast.FunctionDefinition) {
	if fd.Public {
		p.write("public ")
	}
	p.write("FunctionDefinition " + fd.Name + "(")
	for i, arg := range fd.Arguments {
		if i > 0 {
			p.write(", ")
		}
		p.write(arg.Name)
		if arg.Type != "" {
			p.write(": " + arg.Type)
		}
		if arg.Default != nil {
			p.write(" = " + value.Describe(arg.Default))
		}
	}
	p.write(")")
	if fd.ReturnType != "" {
		p.write(" -> " + fd.ReturnType)
	}
	p.write(fmt.Sprintf(" [%04d..%04d)", fd.Entry, fd.End))
}

func (p *TreePrinter) VisitExpressionStatement(es *ast.ExpressionStatement) {
	p.write("ExpressionStatement ")
	es.Expression.Accept(p)
}

func (p *TreePrinter) VisitImport(im *ast.Import) {
	p.write("Import " + strings.Join(im.Names, "."))
}

func (p *TreePrinter) VisitReturn(r *ast.Return) {
	p.write("Return")
	if r.Value != nil {
		p.write(" ")
		r.Value.Accept(p)
	}
}

func (p *TreePrinter) VisitLiteral(l *ast.Literal) {
	p.write(value.Describe(l.Value))
}

func (p *TreePrinter) VisitVariable(v *ast.Variable) {
	p.write(v.Name)
}

func (p *TreePrinter) VisitCall(c *ast.Call) {
	c.Function.Accept(p)
	p.write("(")
	for i, arg := range c.Args {
		if i > 0 {
			p.write(", ")
		}
		arg.Accept(p)
	}
	p.write(")")
}
