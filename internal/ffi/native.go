package ffi

import "github.com/funvibe/hug/internal/config"

// NativeOpener loads libraries with the platform dynamic loader.
type NativeOpener struct {
	*Resolver
}

func NewNativeOpener(project *config.Project) *NativeOpener {
	return &NativeOpener{Resolver: NewResolver(project)}
}

func (o *NativeOpener) Open(path string) (Library, error) {
	return openNative(path)
}
