// Package hug embeds the interpreter in Go programs.
package hug

import (
	"fmt"
	"io"
	"reflect"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ffi"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
	"github.com/funvibe/hug/internal/vm"
)

// VM wraps one interpreter session with a script already loaded.
//
// Go functions registered with Bind are exported by the host module:
//
//	@extern module host = "hug_host"
//	use host.double
type VM struct {
	machine    *vm.VM
	marshaller *Marshaller
	host       *ffi.MemoryLibrary
	project    *config.Project
}

type options struct {
	output  io.Writer
	project *config.Project
	prelude *bool
}

type Option func(*options)

// WithOutput redirects what scripts print.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithProject uses p instead of the project file found next to the script.
func WithProject(p *config.Project) Option {
	return func(o *options) { o.project = p }
}

// WithoutPrelude skips the prelude regardless of the project setting.
func WithoutPrelude() Option {
	return func(o *options) {
		off := false
		o.prelude = &off
	}
}

// New creates a session and loads the prelude and the script at scriptPath.
// Nothing runs until Run.
func New(scriptPath string, opts ...Option) (*VM, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	project := o.project
	if project == nil {
		var err error
		if project, err = config.LoadProjectFor(scriptPath); err != nil {
			return nil, err
		}
	}

	host := ffi.NewMemoryLibrary()
	opener := ffi.NewChainOpener(
		ffi.NewMemoryOpener().Register(config.HostModuleLocation, host),
		ffi.NewNativeOpener(project),
	)
	vmOpts := []vm.Option{vm.WithProject(project), vm.WithOpener(opener)}
	if o.output != nil {
		vmOpts = append(vmOpts, vm.WithOutput(o.output))
	}
	machine := vm.New(vmOpts...)

	prelude := project.PreludeEnabled()
	if o.prelude != nil {
		prelude = *o.prelude
	}
	if prelude {
		if err := machine.LoadPrelude(); err != nil {
			return nil, err
		}
	}
	if err := machine.LoadFile(scriptPath); err != nil {
		return nil, err
	}
	return &VM{
		machine:    machine,
		marshaller: NewMarshaller(),
		host:       host,
		project:    project,
	}, nil
}

// Machine exposes the underlying session.
func (v *VM) Machine() *vm.VM { return v.machine }

func (v *VM) Project() *config.Project { return v.project }

// Sources maps loaded script names to their text, for printing diagnostics.
func (v *VM) Sources() map[string]string { return v.machine.Sources() }

// Warnings reported so far.
func (v *VM) Warnings() diagnostics.List { return v.machine.Warnings() }

// SetOutput redirects what scripts print from now on.
func (v *VM) SetOutput(w io.Writer) { v.machine.SetOutput(w) }

// Run executes the loaded scripts.
func (v *VM) Run() error {
	return v.machine.Run()
}

// Close releases every native library the session opened.
func (v *VM) Close() error {
	return v.machine.Close()
}

// Bind exports a Go function from the host module. Call it before Run.
func (v *VM) Bind(name string, fn interface{}) error {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("bind %s: %T is not a function", name, fn)
	}
	v.host.Export(name, v.adapter(name, rv))
	return nil
}

// Get retrieves a top-level variable.
func (v *VM) Get(name string) (interface{}, error) {
	val, ok := v.machine.Variable(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return v.marshaller.FromValue(val, nil)
}

// Call calls a function defined in the script (or imported by it) by name.
func (v *VM) Call(funcName string, args ...interface{}) (interface{}, error) {
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		val, err := v.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		vals[i] = val
	}
	result, err := v.machine.Call(funcName, vals...)
	if err != nil {
		return nil, err
	}
	return v.marshaller.FromValue(result, nil)
}

// adapter calls fn with converted arguments. A trailing error result is
// returned as the call's error.
func (v *VM) adapter(name string, fn reflect.Value) value.AdapterFunc {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()

	return func(args value.PackedArgs) (*value.ReturnValue, error) {
		if isVariadic {
			if len(args) < numIn-1 {
				return nil, fmt.Errorf("%s expects at least %d arguments, got %d", name, numIn-1, len(args))
			}
		} else if len(args) != numIn {
			return nil, fmt.Errorf("%s expects %d arguments, got %d", name, numIn, len(args))
		}

		goArgs := make([]reflect.Value, len(args))
		for i, arg := range args {
			var targetType reflect.Type
			if isVariadic && i >= numIn-1 {
				targetType = fnType.In(numIn - 1).Elem()
			} else {
				targetType = fnType.In(i)
			}
			val, err := v.marshaller.FromValue(arg, targetType)
			if err != nil {
				return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{},
					fmt.Sprintf("%s argument %d: %v", name, i+1, err))
			}
			if val == nil {
				goArgs[i] = reflect.Zero(targetType)
			} else {
				goArgs[i] = reflect.ValueOf(val)
			}
		}

		results, err := call(name, fn, goArgs)
		if err != nil {
			return nil, err
		}
		if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := results[n-1].Interface().(error); err != nil {
				return nil, err
			}
			results = results[:n-1]
		}
		if len(results) == 0 {
			return value.Return(nil), nil
		}
		out, err := v.marshaller.ToValue(results[0].Interface())
		if err != nil {
			return nil, fmt.Errorf("%s result: %w", name, err)
		}
		return value.Return(out), nil
	}
}

// call turns a panic in fn into an error of the call.
func call(name string, fn reflect.Value, args []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostics.NewError(diagnostics.ErrR006, token.Pos{}, name).Wrap(fmt.Errorf("panic: %v", r))
		}
	}()
	return fn.Call(args), nil
}
