// Package ident interns textual names into small dense identifiers.
package ident

import (
	"fmt"
	"sync"
)

// Ident stands in for a name after interning. Identifiers are dense and
// start at zero, so they double as indices into variable stores.
type Ident int

// Table is a bijection between names and identifiers. A single table is
// shared by every script loaded into one session, so the prelude and the
// user's script agree on what each name means.
type Table struct {
	mu     sync.RWMutex
	byName map[string]Ident
	names  []string
}

func NewTable() *Table {
	return &Table{byName: make(map[string]Ident)}
}

// Intern returns the identifier of name, allocating the next one on first use.
func (t *Table) Intern(name string) Ident {
	t.mu.RLock()
	id, ok := t.byName[name]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[name]; ok {
		return id
	}
	// Names usually alias the source buffer; copy so the table does not pin it.
	owned := string([]byte(name))
	id = Ident(len(t.names))
	t.byName[owned] = id
	t.names = append(t.names, owned)
	return id
}

// Lookup reports the identifier of name without allocating one.
func (t *Table) Lookup(name string) (Ident, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the text of id. Passing an identifier this table never
// issued is a programming error and panics.
func (t *Table) Name(id Ident) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(t.names) {
		panic(fmt.Sprintf("ident: identifier %d was not issued by this table", id))
	}
	return t.names[id]
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Names returns a snapshot of all interned names, indexed by identifier.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
