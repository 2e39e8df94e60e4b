package modules

import (
	"errors"
	"strings"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ffi"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// Import resolves path: the first segment names a module bound in the
// first of scopes that has it, the middle segments nested modules and the
// last one the imported member. Importing the same member of a module twice
// returns the cached value with a warning.
func (l *Loader) Import(path []ident.Ident, scopes ...*value.Variables) (value.Value, diagnostics.List, error) {
	if len(path) < 2 {
		return nil, nil, diagnostics.NewError(diagnostics.ErrP002, token.Pos{}, l.join(path))
	}
	var head value.Value
	for _, scope := range scopes {
		if v, ok := scope.Get(path[0]); ok {
			head = v
			break
		}
	}
	if head == nil {
		return nil, nil, diagnostics.NewError(diagnostics.ErrN001, token.Pos{}, l.idents.Name(path[0]))
	}
	mod, ok := head.(*value.Module)
	if !ok {
		return nil, nil, diagnostics.NewError(diagnostics.ErrN005, token.Pos{}, l.idents.Name(path[0]))
	}

	for i, id := range path[1 : len(path)-1] {
		member, err := l.member(mod, id)
		if err != nil {
			return nil, nil, err
		}
		next, ok := member.(*value.Module)
		if !ok {
			return nil, nil, diagnostics.NewError(diagnostics.ErrN005, token.Pos{}, l.join(path[:i+2]))
		}
		mod = next
	}

	last := path[len(path)-1]
	if mod.Imported(last) {
		if v, ok := mod.Variables.Get(last); ok {
			warn := diagnostics.NewError(diagnostics.ErrW001, token.Pos{}, l.join(path))
			return v, diagnostics.List{warn}, nil
		}
	}
	v, err := l.member(mod, last)
	if err != nil {
		return nil, nil, err
	}
	mod.MarkImported(last)
	return v, nil, nil
}

// member looks id up in the module store, resolving native exports on
// first use and caching them.
func (l *Loader) member(mod *value.Module, id ident.Ident) (value.Value, error) {
	if v, ok := mod.Variables.Get(id); ok {
		return v, nil
	}
	name := l.idents.Name(id)
	if !mod.IsNative() {
		return nil, diagnostics.NewError(diagnostics.ErrN004, token.Pos{}, mod.Name, name)
	}
	adapter, err := mod.Handle.Library().Symbol(name)
	if err != nil {
		missing := diagnostics.NewError(diagnostics.ErrN004, token.Pos{}, mod.Name, name)
		if !errors.Is(err, ffi.ErrSymbolNotFound) {
			missing.Wrap(err)
		}
		return nil, missing
	}
	fn := value.NewExternal(name, adapter, mod.Handle)
	mod.Variables.Set(id, fn)
	return fn, nil
}

func (l *Loader) join(path []ident.Ident) string {
	names := make([]string, len(path))
	for i, id := range path {
		names[i] = l.idents.Name(id)
	}
	return strings.Join(names, ".")
}
