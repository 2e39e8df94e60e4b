package value

import (
	"sync"

	"github.com/funvibe/hug/internal/ident"
)

// Library is an opened native library.
type Library interface {
	Symbol(name string) (Adapter, error)
	Close() error
}

// Discoverer is implemented by libraries that can enumerate their exports.
type Discoverer interface {
	Exports() ([]string, error)
}

// Handle counts the holders of an open library. The library is closed once,
// when the last holder releases it.
type Handle struct {
	mu       sync.Mutex
	lib      Library
	path     string
	refs     int
	closed   bool
	closeErr error
}

// NewHandle wraps an opened library. The handle starts with no holders.
func NewHandle(path string, lib Library) *Handle {
	return &Handle{lib: lib, path: path}
}

func (h *Handle) Library() Library { return h.lib }
func (h *Handle) Path() string     { return h.path }

func (h *Handle) Retain() {
	h.mu.Lock()
	h.refs++
	h.mu.Unlock()
}

// Release drops one holder and closes the library when none are left.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs > 0 {
		h.refs--
	}
	if h.refs == 0 {
		return h.closeLocked()
	}
	return nil
}

// Close closes the library regardless of holders. Used when a library was
// opened but never bound.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

func (h *Handle) closeLocked() error {
	if h.closed {
		return h.closeErr
	}
	h.closed = true
	h.closeErr = h.lib.Close()
	return h.closeErr
}

func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Module is a named collection of values: either a native library or a
// namespace declared in script.
type Module struct {
	Name      string
	Location  string
	Variables *Variables
	Handle    *Handle // nil for namespaces

	imported map[ident.Ident]struct{}
}

func NewModule(name, location string, handle *Handle) *Module {
	return &Module{
		Name:      name,
		Location:  location,
		Variables: NewVariables(),
		Handle:    handle,
		imported:  make(map[ident.Ident]struct{}),
	}
}

func (*Module) Kind() Kind { return KindModule }

func (m *Module) String() string {
	if m.Handle == nil {
		return "<module " + m.Name + ">"
	}
	return "<module " + m.Name + " @ " + m.Location + ">"
}

// IsNative reports whether the module is backed by a library.
func (m *Module) IsNative() bool { return m.Handle != nil }

// Imported reports whether id was imported from this module before.
func (m *Module) Imported(id ident.Ident) bool {
	_, ok := m.imported[id]
	return ok
}

// MarkImported records that id was imported from this module and reports
// whether it had been imported before.
func (m *Module) MarkImported(id ident.Ident) bool {
	if _, ok := m.imported[id]; ok {
		return true
	}
	m.imported[id] = struct{}{}
	return false
}

// Retain registers a new holder of the library behind v, if any.
func Retain(v Value) {
	if h := handleOf(v); h != nil {
		h.Retain()
	}
}

// Release drops a holder of the library behind v, if any.
func Release(v Value) error {
	if h := handleOf(v); h != nil {
		return h.Release()
	}
	return nil
}

func handleOf(v Value) *Handle {
	switch v := v.(type) {
	case *Module:
		return v.Handle
	case *Function:
		return v.Handle
	}
	return nil
}
