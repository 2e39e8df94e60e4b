package value

import (
	"strings"

	"github.com/funvibe/hug/internal/ident"
)

type FunctionKind int

const (
	Interpreted FunctionKind = iota
	External
)

// Argument is one declared parameter of an interpreted function.
type Argument struct {
	Ident   ident.Ident
	Name    string
	Type    string // declared type name, empty when omitted
	Default Value  // nil when the parameter is required
}

// Function is either a script function living in the program tree or an
// export of a native library.
type Function struct {
	Type FunctionKind
	Name string

	// Interpreted
	Address   int // first statement of the body
	End       int // statement following the body
	Arguments []Argument

	// External
	Adapter Adapter
	Handle  *Handle
}

func NewInterpreted(name string, address, end int, args []Argument) *Function {
	return &Function{Type: Interpreted, Name: name, Address: address, End: end, Arguments: args}
}

// NewExternal wraps a native export. The handle keeps the owning library
// open for as long as the function is reachable.
func NewExternal(name string, adapter Adapter, handle *Handle) *Function {
	return &Function{Type: External, Name: name, Adapter: adapter, Handle: handle}
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) String() string {
	if f.Type == External {
		return "<extern fn " + f.Name + ">"
	}
	var sb strings.Builder
	sb.WriteString("<fn ")
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, a := range f.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name)
		if a.Type != "" {
			sb.WriteString(": ")
			sb.WriteString(a.Type)
		}
	}
	sb.WriteString(")>")
	return sb.String()
}

// Required counts the parameters without a default.
func (f *Function) Required() int {
	n := 0
	for _, a := range f.Arguments {
		if a.Default == nil {
			n++
		}
	}
	return n
}
