//go:build !windows && !(cgo && (linux || darwin))

package ffi

import (
	"fmt"
	"runtime"
)

func openNative(path string) (Library, error) {
	return nil, fmt.Errorf("%s on %s/%s: %w", path, runtime.GOOS, runtime.GOARCH, ErrUnsupported)
}
