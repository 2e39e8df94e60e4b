package vm

import (
	"fmt"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

func (vm *VM) evaluate(expr ast.Expression, scopes []*value.Variables) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Variable:
		return vm.lookup(e.Ident, e.Pos, scopes)

	case *ast.Call:
		callee, err := vm.evaluate(e.Function, scopes)
		if err != nil {
			return nil, err
		}
		fn, ok := callee.(*value.Function)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrR001, e.Pos, calleeName(e.Function, callee))
		}
		args := make([]value.Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := vm.evaluate(a, scopes)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		if fn.Type == value.External {
			return vm.callExternal(fn, args, e.Pos)
		}
		return vm.callInterpreted(fn, args, e.Pos)
	}
	return nil, diagnostics.NewError(diagnostics.ErrR002, expr.GetPos(), fmt.Sprintf("expression %T", expr))
}

func (vm *VM) lookup(id ident.Ident, pos token.Pos, scopes []*value.Variables) (value.Value, error) {
	for _, scope := range scopes {
		if v, ok := scope.Get(id); ok {
			return v, nil
		}
	}
	return nil, diagnostics.NewError(diagnostics.ErrN001, pos, vm.idents.Name(id))
}

// callExternal hands args to a native export and takes ownership of what
// it returns.
func (vm *VM) callExternal(fn *value.Function, args []value.Value, pos token.Pos) (value.Value, error) {
	if fn.Adapter == nil {
		return nil, diagnostics.NewError(diagnostics.ErrR006, pos, fn.Name)
	}
	if fn.Handle != nil && fn.Handle.Closed() {
		return nil, diagnostics.NewError(diagnostics.ErrR006, pos, fn.Name).Wrap(fmt.Errorf("library %s is closed", fn.Handle.Path()))
	}
	ret, err := fn.Adapter.Call(value.Pack(args...))
	if err != nil {
		if d, ok := diagnostics.As(err); ok {
			return nil, d.At("", pos)
		}
		return nil, diagnostics.NewError(diagnostics.ErrR006, pos, fn.Name).Wrap(err)
	}
	if ret == nil {
		return value.Void{}, nil
	}
	v, err := ret.Take()
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrR006, pos, fn.Name).Wrap(err)
	}
	return v, nil
}

func calleeName(expr ast.Expression, v value.Value) string {
	if variable, ok := expr.(*ast.Variable); ok {
		return variable.Name
	}
	return value.Describe(v)
}
