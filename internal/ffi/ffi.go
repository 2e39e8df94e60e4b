// Package ffi opens native extension libraries and calls their exports.
//
// Loading is a capability: the VM only sees an Opener, so tests and
// embedders can serve libraries from memory while the CLI uses the platform
// dynamic loader.
package ffi

import (
	"errors"
	"strings"
	"sync"

	"github.com/funvibe/hug/internal/value"
)

type (
	Library    = value.Library
	Adapter    = value.Adapter
	Discoverer = value.Discoverer
)

// Opener finds libraries by location and opens them.
type Opener interface {
	Resolve(location string) (string, error)
	Open(path string) (Library, error)
}

var (
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoDiscovery is returned by Exports when the library cannot list
	// its exports.
	ErrNoDiscovery = errors.New("library does not enumerate its exports")
	// ErrPartialDiscovery marks a library exposing only one of the two
	// discovery symbols.
	ErrPartialDiscovery = errors.New("library exposes only one of the export discovery symbols")
	ErrUnsupported      = errors.New("native modules are not supported on this platform")
)

// SplitExports parses the comma separated export list of a library.
func SplitExports(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ChainOpener tries each opener in order. The opener that resolved a
// location also opens it.
type ChainOpener struct {
	openers []Opener

	mu       sync.Mutex
	resolved map[string]Opener
}

func NewChainOpener(openers ...Opener) *ChainOpener {
	return &ChainOpener{openers: openers, resolved: make(map[string]Opener)}
}

func (c *ChainOpener) Resolve(location string) (string, error) {
	var lastErr error
	for _, o := range c.openers {
		path, err := o.Resolve(location)
		if err != nil {
			lastErr = err
			continue
		}
		c.mu.Lock()
		c.resolved[path] = o
		c.mu.Unlock()
		return path, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no library openers configured")
	}
	return "", lastErr
}

func (c *ChainOpener) Open(path string) (Library, error) {
	c.mu.Lock()
	o, ok := c.resolved[path]
	c.mu.Unlock()
	if ok {
		return o.Open(path)
	}
	var lastErr error
	for _, o := range c.openers {
		lib, err := o.Open(path)
		if err == nil {
			return lib, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no library openers configured")
	}
	return nil, lastErr
}
