package vm

import (
	"fmt"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/value"
)

// loop runs the main sequence until it ends or the frame at depth returns.
func (vm *VM) loop(depth int) error {
	for vm.pointer >= 0 && vm.pointer < len(vm.tree.Entries) {
		stmt := vm.tree.Entries[vm.pointer]
		file := vm.entryFile(vm.pointer)
		vm.file = file
		if err := vm.execute(stmt, vm.scopes()); err != nil {
			return vm.fail(err, file, stmt)
		}
		if len(vm.frames) < depth {
			return nil
		}
		if vm.pause {
			vm.pause = false
		} else {
			vm.pointer++
		}
	}
	return nil
}

// execute applies one statement. Bindings go to scopes[0].
func (vm *VM) execute(stmt ast.Statement, scopes []*value.Variables) error {
	scope := scopes[0]
	switch s := stmt.(type) {
	case *ast.VariableDefinition:
		v, err := vm.evaluate(s.Value, scopes)
		if err != nil {
			return err
		}
		vm.bind(scope, s.Variable, v)

	case *ast.ExpressionStatement:
		if _, err := vm.evaluate(s.Expression, scopes); err != nil {
			return err
		}

	case *ast.FunctionDefinition:
		vm.bind(scope, s.Ident, value.NewInterpreted(s.Name, s.Entry, s.End, s.Arguments))
		vm.pointer = s.End
		vm.pause = true

	case *ast.Return:
		if len(vm.frames) == 0 {
			return diagnostics.NewError(diagnostics.ErrR003, s.Pos)
		}
		var result value.Value
		if s.Value != nil {
			v, err := vm.evaluate(s.Value, scopes)
			if err != nil {
				return err
			}
			result = v
		}
		vm.popFrame(result)

	case *ast.Import:
		v, warnings, err := vm.loader.Import(s.Path, scopes...)
		vm.warn(vm.file, s, warnings)
		if err != nil {
			return err
		}
		vm.bind(scope, s.Path[len(s.Path)-1], v)

	case *ast.ExternalModuleDefinition:
		mod, warnings, err := vm.loader.DeclareExternal(s.Name, s.Location)
		vm.warn(vm.file, s, warnings)
		if err != nil {
			return err
		}
		vm.handles = append(vm.handles, mod.Handle)
		vm.bind(scope, s.Module, mod)

	case *ast.ModuleDefinition:
		mod := value.NewModule(s.Name, "", nil)
		if s.Scope != nil {
			mod.Variables = s.Scope.Members
			inner := append([]*value.Variables{mod.Variables}, scopes...)
			for _, member := range s.Scope.Entries {
				if err := vm.execute(member, inner); err != nil {
					if d, ok := diagnostics.As(err); ok {
						d.At("", member.GetPos())
					}
					return err
				}
			}
		}
		vm.bind(scope, s.Module, mod)

	default:
		return diagnostics.NewError(diagnostics.ErrR002, stmt.GetPos(), fmt.Sprintf("statement %T", stmt))
	}
	return nil
}

// bind stores v under id, taking a hold on its library and dropping the
// hold of the value it replaces.
func (vm *VM) bind(scope *value.Variables, id ident.Ident, v value.Value) {
	value.Retain(v)
	if prev := scope.Set(id, v); prev != nil {
		vm.release(prev)
	}
}

func (vm *VM) release(v value.Value) {
	if err := value.Release(v); err != nil {
		vm.releaseErrs = append(vm.releaseErrs, err)
	}
}

// releaseAll drops every binding of scope. With seen set it also descends
// into namespaces, each once.
func (vm *VM) releaseAll(scope *value.Variables, seen map[*value.Module]bool) {
	var ids []ident.Ident
	scope.Each(func(id ident.Ident, v value.Value) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		v := scope.Remove(id)
		if mod, ok := v.(*value.Module); ok && seen != nil && !mod.IsNative() && !seen[mod] {
			seen[mod] = true
			vm.releaseAll(mod.Variables, seen)
		}
		vm.release(v)
	}
}

// fail attributes err to stmt unless a deeper statement already claimed it.
func (vm *VM) fail(err error, file string, stmt ast.Statement) error {
	if d, ok := diagnostics.As(err); ok {
		d.At(file, stmt.GetPos())
	}
	return err
}
