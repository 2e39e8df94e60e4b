package ffi

import (
	"sort"
	"strings"
	"sync"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

const memoryScheme = "mem:"

// MemoryOpener serves libraries implemented in Go, registered by location.
type MemoryOpener struct {
	mu   sync.RWMutex
	libs map[string]*MemoryLibrary
}

func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{libs: make(map[string]*MemoryLibrary)}
}

// Register makes lib available under location, replacing any previous one.
func (o *MemoryOpener) Register(location string, lib *MemoryLibrary) *MemoryOpener {
	o.mu.Lock()
	o.libs[location] = lib
	o.mu.Unlock()
	return o
}

func (o *MemoryOpener) Resolve(location string) (string, error) {
	o.mu.RLock()
	_, ok := o.libs[location]
	o.mu.RUnlock()
	if !ok {
		return "", diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, "registered in-memory libraries")
	}
	return memoryScheme + location, nil
}

func (o *MemoryOpener) Open(path string) (Library, error) {
	location, ok := strings.CutPrefix(path, memoryScheme)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, path, "registered in-memory libraries")
	}
	o.mu.RLock()
	lib, ok := o.libs[location]
	o.mu.RUnlock()
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, "registered in-memory libraries")
	}
	lib.mu.Lock()
	lib.opens++
	lib.mu.Unlock()
	return lib, nil
}

type discovery int

const (
	discoverAll discovery = iota
	discoverNone
	discoverPartial
)

// MemoryLibrary is a library whose exports are Go functions. It counts
// opens, closes and symbol lookups so tests can observe the loader.
type MemoryLibrary struct {
	mu        sync.Mutex
	exports   map[string]Adapter
	listed    []string
	discovery discovery

	opens   int
	closes  int
	lookups map[string]int
}

func NewMemoryLibrary() *MemoryLibrary {
	return &MemoryLibrary{exports: make(map[string]Adapter), lookups: make(map[string]int)}
}

// Export adds a function to the library.
func (l *MemoryLibrary) Export(name string, fn value.AdapterFunc) *MemoryLibrary {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.exports[name]; !ok {
		l.listed = append(l.listed, name)
	}
	l.exports[name] = fn
	return l
}

// List adds names to the export list without defining them.
func (l *MemoryLibrary) List(names ...string) *MemoryLibrary {
	l.mu.Lock()
	l.listed = append(l.listed, names...)
	l.mu.Unlock()
	return l
}

// WithoutDiscovery makes the library unable to enumerate its exports.
func (l *MemoryLibrary) WithoutDiscovery() *MemoryLibrary {
	l.discovery = discoverNone
	return l
}

// WithPartialDiscovery simulates a library exposing only one of the
// discovery symbols.
func (l *MemoryLibrary) WithPartialDiscovery() *MemoryLibrary {
	l.discovery = discoverPartial
	return l
}

func (l *MemoryLibrary) Symbol(name string) (Adapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups[name]++
	fn, ok := l.exports[name]
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return fn, nil
}

func (l *MemoryLibrary) Exports() ([]string, error) {
	switch l.discovery {
	case discoverNone:
		return nil, ErrNoDiscovery
	case discoverPartial:
		return nil, ErrPartialDiscovery
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	names := append([]string(nil), l.listed...)
	return names, nil
}

func (l *MemoryLibrary) Close() error {
	l.mu.Lock()
	l.closes++
	l.mu.Unlock()
	return nil
}

func (l *MemoryLibrary) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

func (l *MemoryLibrary) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// Lookups reports how many times name was resolved.
func (l *MemoryLibrary) Lookups(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookups[name]
}

// Names lists the defined exports in sorted order.
func (l *MemoryLibrary) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.exports))
	for name := range l.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
