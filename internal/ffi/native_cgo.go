//go:build cgo && (linux || darwin)

package ffi

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uint32_t tag;
	uint32_t pad;
	uint64_t a;
	uint64_t b;
} hug_value;

typedef struct { size_t len; const hug_value* args; } hug_packed_args;
typedef struct { size_t len; hug_value* values; } hug_return_value;

typedef hug_return_value (*hug_export_fn)(hug_packed_args);
typedef char* (*hug_exports_fn)(void);
typedef void (*hug_dealloc_string_fn)(char*);
typedef void (*hug_dealloc_value_fn)(hug_return_value);

static void* hug_dlopen(const char* path) {
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static const char* hug_dlerror(void) {
	return dlerror();
}

static void* hug_dlsym(void* h, const char* name) {
	dlerror();
	void* p = dlsym(h, name);
	if (dlerror() != NULL) {
		return NULL;
	}
	return p;
}

static int hug_dlclose(void* h) {
	return dlclose(h);
}

static hug_return_value hug_call(void* fn, size_t len, const hug_value* args) {
	hug_packed_args packed = { len, args };
	return ((hug_export_fn)fn)(packed);
}

static char* hug_exports(void* fn) {
	return ((hug_exports_fn)fn)();
}

static void hug_dealloc_string(void* fn, char* s) {
	((hug_dealloc_string_fn)fn)(s);
}

static void hug_dealloc_value(void* fn, hug_return_value r) {
	((hug_dealloc_value_fn)fn)(r);
}

// Fallback when the library has no dealloc export: strings and the array
// were allocated with malloc.
static void hug_free_values(hug_return_value r) {
	for (size_t i = 0; i < r.len; i++) {
		if (r.values[i].tag == 13 || r.values[i].tag == 255) {
			free((void*)(uintptr_t)r.values[i].a);
		}
	}
	free(r.values);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/value"
)

type nativeLibrary struct {
	path   string
	handle unsafe.Pointer

	mu     sync.Mutex
	closed bool

	deallocValue unsafe.Pointer
}

func openNative(path string) (Library, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	h := C.hug_dlopen(cpath)
	if h == nil {
		return nil, fmt.Errorf("dlopen %s: %s", path, C.GoString(C.hug_dlerror()))
	}
	lib := &nativeLibrary{path: path, handle: h}
	lib.deallocValue = lib.lookup(config.DeallocValueSymbol)
	return lib, nil
}

func (l *nativeLibrary) lookup(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.hug_dlsym(l.handle, cname)
}

func (l *nativeLibrary) Symbol(name string) (Adapter, error) {
	fn := l.lookup(config.ExportSymbol(name))
	if fn == nil {
		return nil, fmt.Errorf("%s in %s: %w", config.ExportSymbol(name), l.path, ErrSymbolNotFound)
	}
	return &nativeExport{lib: l, name: name, fn: fn}, nil
}

func (l *nativeLibrary) Exports() ([]string, error) {
	exports := l.lookup(config.ModuleExportsSymbol)
	dealloc := l.lookup(config.DeallocStringSymbol)
	switch {
	case exports == nil && dealloc == nil:
		return nil, ErrNoDiscovery
	case exports == nil || dealloc == nil:
		return nil, ErrPartialDiscovery
	}
	cs := C.hug_exports(exports)
	if cs == nil {
		return nil, nil
	}
	list := C.GoString(cs)
	C.hug_dealloc_string(dealloc, cs)
	return SplitExports(list), nil
}

func (l *nativeLibrary) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if C.hug_dlclose(l.handle) != 0 {
		return fmt.Errorf("dlclose %s: %s", l.path, C.GoString(C.hug_dlerror()))
	}
	return nil
}

// cAllocator allocates argument memory on the C heap, as cgo forbids
// passing Go memory that holds pointers.
type cAllocator struct {
	blocks []unsafe.Pointer
}

func (m *cAllocator) alloc(size int) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	p := C.calloc(1, C.size_t(size))
	m.blocks = append(m.blocks, p)
	return p
}

func (m *cAllocator) free() {
	for _, p := range m.blocks {
		C.free(p)
	}
	m.blocks = nil
}

type nativeExport struct {
	lib  *nativeLibrary
	name string
	fn   unsafe.Pointer
}

func (e *nativeExport) Call(args value.PackedArgs) (*value.ReturnValue, error) {
	mem := &cAllocator{}
	defer mem.free()

	p, n, err := encodeArgs(e.name, args, mem)
	if err != nil {
		return nil, err
	}
	ret := C.hug_call(e.fn, C.size_t(n), (*C.hug_value)(p))

	release := func() {
		if ret.values == nil {
			return
		}
		if e.lib.deallocValue != nil {
			C.hug_dealloc_value(e.lib.deallocValue, ret)
		} else {
			C.hug_free_values(ret)
		}
	}
	values, err := decodeValues(e.name, unsafe.Pointer(ret.values), int(ret.len))
	if err != nil {
		release()
		return nil, err
	}
	return value.NewReturnValue(values, release), nil
}
