package ffi

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
)

// Resolver maps a library location to a file of the current build profile:
// <target>/<profile>/<platform file name>.
type Resolver struct {
	project *config.Project
	goos    string
}

func NewResolver(project *config.Project) *Resolver {
	if project == nil {
		project = config.DefaultProject()
	}
	return &Resolver{project: project, goos: runtime.GOOS}
}

func (r *Resolver) Resolve(location string) (string, error) {
	if lib, ok := r.project.Modules[location]; ok {
		return existing(location, lib)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, "the working directory").Wrap(err)
	}
	dir := filepath.Join(r.project.ResolveTargetDir(cwd), r.project.Profile)
	return existing(location, filepath.Join(dir, LibraryFileName(location, r.goos)))
}

func existing(location, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, path)
	}
	if info.IsDir() {
		return "", diagnostics.NewError(diagnostics.ErrN002, token.Pos{}, location, path+" (a directory)")
	}
	return path, nil
}

// LibraryFileName is the file name the platform linker gives library name.
func LibraryFileName(name, goos string) string {
	switch goos {
	case "windows":
		return name + ".dll"
	case "darwin", "ios":
		return "lib" + name + ".dylib"
	}
	return "lib" + name + ".so"
}
