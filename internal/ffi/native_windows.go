//go:build windows

package ffi

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/value"
)

var msvcrtFree = windows.NewLazySystemDLL("msvcrt.dll").NewProc("free")

type nativeLibrary struct {
	path string
	dll  *windows.DLL

	mu     sync.Mutex
	closed bool

	deallocValue *windows.Proc
}

func openNative(path string) (Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary %s: %w", path, err)
	}
	lib := &nativeLibrary{path: path, dll: dll}
	lib.deallocValue = lib.lookup(config.DeallocValueSymbol)
	return lib, nil
}

func (l *nativeLibrary) lookup(name string) *windows.Proc {
	proc, err := l.dll.FindProc(name)
	if err != nil {
		return nil
	}
	return proc
}

func (l *nativeLibrary) Symbol(name string) (Adapter, error) {
	proc := l.lookup(config.ExportSymbol(name))
	if proc == nil {
		return nil, fmt.Errorf("%s in %s: %w", config.ExportSymbol(name), l.path, ErrSymbolNotFound)
	}
	return &nativeExport{lib: l, name: name, proc: proc}, nil
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
	r, _, _ := exports.Call()
	if r == 0 {
		return nil, nil
	}
	list := windows.BytePtrToString((*byte)(unsafe.Pointer(r)))
	dealloc.Call(r)
	return SplitExports(list), nil
}

func (l *nativeLibrary) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.dll.Release()
}

type nativeExport struct {
	lib  *nativeLibrary
	name string
	proc *windows.Proc
}

// Call follows the x64 convention for aggregates larger than 8 bytes: the
// result goes through a hidden pointer and the argument struct is passed by
// reference.
func (e *nativeExport) Call(args value.PackedArgs) (*value.ReturnValue, error) {
	mem := &goAllocator{}
	p, n, err := encodeArgs(e.name, args, mem)
	if err != nil {
		return nil, err
	}
	packed := cPackedArgs{len: uintptr(n), args: p}
	ret := &cReturnValue{}
	e.proc.Call(uintptr(unsafe.Pointer(ret)), uintptr(unsafe.Pointer(&packed)))
	runtime.KeepAlive(mem)
	runtime.KeepAlive(&packed)

	release := func() {
		if ret.values == nil {
			return
		}
		if e.lib.deallocValue != nil {
			e.lib.deallocValue.Call(uintptr(unsafe.Pointer(ret)))
			return
		}
		values := unsafe.Slice((*cValue)(ret.values), int(ret.len))
		for i := range values {
			if values[i].tag == tagString || values[i].tag == tagError {
				msvcrtFree.Call(uintptr(values[i].a))
			}
		}
		msvcrtFree.Call(uintptr(ret.values))
	}
	values, err := decodeValues(e.name, ret.values, int(ret.len))
	if err != nil {
		release()
		return nil, err
	}
	return value.NewReturnValue(values, release), nil
}
