package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project represents a hug.yaml file.
type Project struct {
	// TargetDir is the directory holding build profiles of native modules,
	// relative to the project file. HUG_TARGET_DIR overrides it.
	TargetDir string `yaml:"target_dir,omitempty"`

	// Profile selects the subdirectory of TargetDir: debug or release.
	Profile string `yaml:"profile,omitempty"`

	// Binding is the default binding strategy for @extern modules.
	Binding Binding `yaml:"binding,omitempty"`

	// Prelude loads the core module before the script. Defaults to true.
	Prelude *bool `yaml:"prelude,omitempty"`

	// Modules maps a library location to an explicit file, bypassing lookup
	// in the target directory.
	//
	//   modules:
	//     math: ./vendor/libmath.so
	Modules map[string]string `yaml:"modules,omitempty"`

	path string
}

// DefaultProject is used when no project file is found.
func DefaultProject() *Project {
	p := &Project{}
	p.setDefaults()
	return p
}

// LoadProject reads and parses a hug.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses hug.yaml content. Relative paths are resolved against
// the directory of path.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	p.path = path
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.setDefaults()
	return &p, nil
}

// FindProject searches for a project file starting from dir and walking up
// to parent directories. It returns an empty path when there is none.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range ProjectFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadProjectFor finds and loads the project file governing the script at
// scriptPath, falling back to the defaults.
func LoadProjectFor(scriptPath string) (*Project, error) {
	path, err := FindProject(filepath.Dir(scriptPath))
	if err != nil {
		return nil, err
	}
	if path == "" {
		return DefaultProject(), nil
	}
	return LoadProject(path)
}

func (p *Project) validate() error {
	switch p.Profile {
	case "", ProfileDebug, ProfileRelease:
	default:
		return fmt.Errorf("%s: profile must be %q or %q, got %q", p.path, ProfileDebug, ProfileRelease, p.Profile)
	}
	if p.Binding != "" && !p.Binding.Valid() {
		return fmt.Errorf("%s: binding must be auto, eager or lazy, got %q", p.path, p.Binding)
	}
	for name, lib := range p.Modules {
		if name == "" {
			return fmt.Errorf("%s: modules: empty module name", p.path)
		}
		if lib == "" {
			return fmt.Errorf("%s: modules.%s: path is required", p.path, name)
		}
	}
	return nil
}

func (p *Project) setDefaults() {
	if p.Profile == "" {
		p.Profile = ProfileDebug
	}
	if p.Binding == "" {
		p.Binding = BindAuto
	}
	if p.Prelude == nil {
		enabled := true
		p.Prelude = &enabled
	}
	dir := p.Dir()
	if dir == "" {
		return
	}
	if p.TargetDir != "" && !filepath.IsAbs(p.TargetDir) {
		p.TargetDir = filepath.Join(dir, p.TargetDir)
	}
	for name, lib := range p.Modules {
		if !filepath.IsAbs(lib) {
			p.Modules[name] = filepath.Join(dir, lib)
		}
	}
}

// Path is the project file, empty for the defaults.
func (p *Project) Path() string { return p.path }

// Dir is the directory containing the project file.
func (p *Project) Dir() string {
	if p.path == "" {
		return ""
	}
	return filepath.Dir(p.path)
}

func (p *Project) PreludeEnabled() bool {
	return p.Prelude == nil || *p.Prelude
}

// ResolveTargetDir picks the native library directory: the environment
// override, then the project setting, then <cwd>/target.
func (p *Project) ResolveTargetDir(cwd string) string {
	if dir := os.Getenv(TargetDirEnv); dir != "" {
		return dir
	}
	if p.TargetDir != "" {
		return p.TargetDir
	}
	return filepath.Join(cwd, DefaultTargetDir)
}
