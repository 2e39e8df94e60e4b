// Package vm executes program trees.
package vm

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/core"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ffi"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/lexer"
	"github.com/funvibe/hug/internal/modules"
	"github.com/funvibe/hug/internal/parser"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// MaxFrameCount bounds the depth of interpreted calls.
const MaxFrameCount = 4096

// VM runs one session: a program tree grown by successive scripts, the
// identifier table shared by all of them and the top-level variables.
type VM struct {
	id uuid.UUID

	// pointer is the index of the main-sequence statement being executed.
	pointer int
	// pause is set by statements that moved the pointer themselves.
	pause bool

	tree      *ast.Tree
	idents    *ident.Table
	variables *value.Variables
	frames    []*Frame

	// initialized counts the OnLoad statements already executed.
	initialized int
	scripts     []script
	// file is the script of the statement being executed.
	file string

	project  *config.Project
	opener   ffi.Opener
	loader   *modules.Loader
	warnings diagnostics.List
	sources  map[string]string
	handles  []*value.Handle

	out io.Writer

	releaseErrs []error
	closed      bool
}

// script records which statements a loaded file contributed.
type script struct {
	name    string
	onLoad  int // end of its OnLoad statements
	entries int // end of its main statements
}

type Option func(*VM)

// WithOutput sets where the core module prints. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithOpener sets how libraries are found and opened. The core module is
// always available in front of it.
func WithOpener(o ffi.Opener) Option {
	return func(vm *VM) { vm.opener = o }
}

// WithProject applies a project configuration.
func WithProject(p *config.Project) Option {
	return func(vm *VM) { vm.project = p }
}

// WithIdents shares an identifier table with the host.
func WithIdents(t *ident.Table) Option {
	return func(vm *VM) { vm.idents = t }
}

func New(opts ...Option) *VM {
	vm := &VM{
		id:        uuid.New(),
		tree:      ast.NewTree(),
		variables: value.NewVariables(),
		sources:   make(map[string]string),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.idents == nil {
		vm.idents = ident.NewTable()
	}
	if vm.project == nil {
		vm.project = config.DefaultProject()
	}

	builtins := ffi.NewMemoryOpener()
	core.Register(builtins, output{vm})
	if vm.opener == nil {
		vm.opener = ffi.NewNativeOpener(vm.project)
	}
	vm.opener = ffi.NewChainOpener(builtins, vm.opener)
	vm.loader = modules.NewLoader(vm.opener, vm.idents, vm.project.Binding)
	return vm
}

// output forwards to the current output writer of the VM.
type output struct{ vm *VM }

func (o output) Write(p []byte) (int, error) { return o.vm.out.Write(p) }

// SetOutput changes where the core module prints.
func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// LoadScript parses src and appends it to the program. On error the program
// is left unchanged.
func (vm *VM) LoadScript(name, src string) error {
	if name == "" {
		name = config.DefaultScriptName
	}
	ctx := pipeline.NewContext(name, src, vm.idents)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	vm.sources[name] = src
	vm.warnings = append(vm.warnings, ctx.Errors.Warnings()...)
	if err := ctx.Err(); err != nil {
		return err
	}
	vm.tree.Merge(ctx.Tree)
	vm.scripts = append(vm.scripts, script{
		name:    name,
		onLoad:  len(vm.tree.OnLoad),
		entries: len(vm.tree.Entries),
	})
	return nil
}

// LoadFile reads and loads a script file.
func (vm *VM) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return vm.LoadScript(path, string(src))
}

// LoadPrelude loads the script declaring the core module.
func (vm *VM) LoadPrelude() error {
	return vm.LoadScript(config.PreludeScriptName, core.Prelude)
}

// Run executes the initializers not run yet, then the main sequence from
// the current pointer. A failing statement stops the run and stays current.
func (vm *VM) Run() error {
	if vm.closed {
		return errors.New("vm: run after close")
	}
	for vm.initialized < len(vm.tree.OnLoad) {
		stmt := vm.tree.OnLoad[vm.initialized]
		vm.file = vm.initFile(vm.initialized)
		if err := vm.execute(stmt, vm.scopes()); err != nil {
			vm.unwind()
			return vm.fail(err, vm.file, stmt)
		}
		vm.initialized++
	}
	if err := vm.loop(0); err != nil {
		vm.unwind()
		return err
	}
	return nil
}

// Close releases every library still held by the session.
func (vm *VM) Close() error {
	if vm.closed {
		return nil
	}
	vm.closed = true
	vm.unwind()
	vm.releaseAll(vm.variables, make(map[*value.Module]bool))
	for _, h := range vm.handles {
		if h.Closed() {
			continue
		}
		if err := h.Close(); err != nil {
			vm.releaseErrs = append(vm.releaseErrs, err)
		}
	}
	return errors.Join(vm.releaseErrs...)
}

func (vm *VM) ID() uuid.UUID              { return vm.id }
func (vm *VM) Idents() *ident.Table       { return vm.idents }
func (vm *VM) Tree() *ast.Tree            { return vm.tree }
func (vm *VM) Pointer() int               { return vm.pointer }
func (vm *VM) Warnings() diagnostics.List { return vm.warnings }

// Sources maps loaded script names to their text, for diagnostics.
func (vm *VM) Sources() map[string]string { return vm.sources }

// Variable returns the top-level binding of name.
func (vm *VM) Variable(name string) (value.Value, bool) {
	id, ok := vm.idents.Lookup(name)
	if !ok {
		return nil, false
	}
	return vm.variables.Get(id)
}

// Call invokes the top-level function name with args, after Run.
func (vm *VM) Call(name string, args ...value.Value) (value.Value, error) {
	v, ok := vm.Variable(name)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrN001, token.Pos{}, name)
	}
	fn, ok := v.(*value.Function)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrR001, token.Pos{}, name)
	}
	var (
		result value.Value
		err    error
	)
	if fn.Type == value.External {
		result, err = vm.callExternal(fn, args, token.Pos{})
	} else {
		result, err = vm.callInterpreted(fn, args, token.Pos{})
	}
	if err != nil {
		vm.unwind()
		return nil, err
	}
	return result, nil
}

func (vm *VM) warn(file string, stmt ast.Statement, warnings diagnostics.List) {
	for _, w := range warnings {
		vm.warnings = append(vm.warnings, w.At(file, stmt.GetPos()))
	}
}

func (vm *VM) initFile(index int) string {
	for _, s := range vm.scripts {
		if index < s.onLoad {
			return s.name
		}
	}
	return ""
}

func (vm *VM) entryFile(index int) string {
	for _, s := range vm.scripts {
		if index < s.entries {
			return s.name
		}
	}
	return ""
}
