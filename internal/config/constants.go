package config

const SourceFileExt = ".hug"

// ProjectFileNames are looked up, in order, when searching for a project file.
var ProjectFileNames = []string{"hug.yaml", "hug.yml"}

// Native library location
const (
	TargetDirEnv     = "HUG_TARGET_DIR"
	DefaultTargetDir = "target"

	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

// Symbols a native module may export
const (
	ExportSymbolPrefix  = "_HUG_EXPORT_"
	ModuleExportsSymbol = "__HUG_MODULE_EXPORTS"
	DeallocStringSymbol = "__HUG_MODULE_DEALLOC_STRING"
	DeallocValueSymbol  = "__HUG_MODULE_DEALLOC_VALUE"
	CoreModuleLocation  = "hug_core"
	HostModuleLocation  = "hug_host"
	PreludeScriptName   = "<prelude>"
	DefaultScriptName   = "<script>"
)

// ExportSymbol returns the symbol name under which a module exports name.
func ExportSymbol(name string) string {
	return ExportSymbolPrefix + name
}

// Binding controls when the exports of a native module are bound.
type Binding string

const (
	// BindAuto binds eagerly when the library can enumerate its exports.
	BindAuto Binding = "auto"
	// BindEager requires export discovery and binds everything on declaration.
	BindEager Binding = "eager"
	// BindLazy resolves each export on first import.
	BindLazy Binding = "lazy"
)

func (b Binding) Valid() bool {
	switch b {
	case BindAuto, BindEager, BindLazy:
		return true
	}
	return false
}
