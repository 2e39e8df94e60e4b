// Package modules binds native libraries to script modules and resolves
// import paths through them.
package modules

import (
	"errors"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ffi"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// Loader declares external modules for one session.
type Loader struct {
	opener  ffi.Opener
	idents  *ident.Table
	binding config.Binding
}

func NewLoader(opener ffi.Opener, idents *ident.Table, binding config.Binding) *Loader {
	if !binding.Valid() {
		binding = config.BindAuto
	}
	return &Loader{opener: opener, idents: idents, binding: binding}
}

func (l *Loader) Binding() config.Binding { return l.binding }

// DeclareExternal opens the library at location and wraps it in a module.
// Depending on the binding strategy, exports are bound now or on first
// import. The returned module has no holders yet; binding it retains it.
func (l *Loader) DeclareExternal(name, location string) (*value.Module, diagnostics.List, error) {
	path, err := l.opener.Resolve(location)
	if err != nil {
		if d, ok := diagnostics.As(err); ok {
			return nil, nil, d
		}
		return nil, nil, diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, "library openers").Wrap(err)
	}
	lib, err := l.opener.Open(path)
	if err != nil {
		return nil, nil, diagnostics.NewError(diagnostics.ErrN003, token.Pos{}, name, "cannot open "+path).Wrap(err)
	}

	handle := value.NewHandle(path, lib)
	mod := value.NewModule(name, location, handle)
	warnings, err := l.bind(mod, lib)
	if err != nil {
		handle.Close()
		return nil, nil, err
	}
	return mod, warnings, nil
}

func (l *Loader) bind(mod *value.Module, lib value.Library) (diagnostics.List, error) {
	if l.binding == config.BindLazy {
		return nil, nil
	}
	discoverer, ok := lib.(value.Discoverer)
	if !ok {
		if l.binding == config.BindEager {
			return nil, invalid(mod, "it cannot enumerate its exports", nil)
		}
		return nil, nil
	}
	names, err := discoverer.Exports()
	switch {
	case errors.Is(err, ffi.ErrPartialDiscovery):
		return nil, invalid(mod, "export discovery is incomplete", err)
	case errors.Is(err, ffi.ErrNoDiscovery):
		if l.binding == config.BindEager {
			return nil, invalid(mod, "it cannot enumerate its exports", err)
		}
		return nil, nil
	case err != nil:
		return nil, invalid(mod, "export discovery failed", err)
	}

	var warnings diagnostics.List
	for _, name := range names {
		id := l.idents.Intern(name)
		adapter, err := lib.Symbol(name)
		if err != nil {
			warnings = append(warnings, diagnostics.NewError(diagnostics.ErrW002, token.Pos{}, mod.Name, name))
			continue
		}
		mod.Variables.Set(id, value.NewExternal(name, adapter, mod.Handle))
	}
	return warnings, nil
}

func invalid(mod *value.Module, reason string, cause error) *diagnostics.DiagnosticError {
	err := diagnostics.NewError(diagnostics.ErrN003, token.Pos{}, mod.Name, reason)
	if cause != nil {
		err.Wrap(cause)
	}
	return err
}
