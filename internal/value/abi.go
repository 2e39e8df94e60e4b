package value

import (
	"errors"
	"fmt"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
)

// Adapter invokes one export of a library.
type Adapter interface {
	Call(args PackedArgs) (*ReturnValue, error)
}

// AdapterFunc lets an ordinary function act as an Adapter.
type AdapterFunc func(args PackedArgs) (*ReturnValue, error)

func (f AdapterFunc) Call(args PackedArgs) (*ReturnValue, error) { return f(args) }

// PackedArgs is the argument list handed to an export. A nil entry stands
// for a missing optional argument.
type PackedArgs []Value

func Pack(vals ...Value) PackedArgs { return PackedArgs(vals) }

// Args walks packed arguments, converting them for the export named fn.
type Args struct {
	packed PackedArgs
	pos    int
	fn     string
}

func (p PackedArgs) Cursor(fn string) *Args {
	return &Args{packed: p, fn: fn}
}

// Next returns the next raw argument. ok is false past the end or for a
// missing entry.
func (a *Args) Next() (Value, bool) {
	if a.pos >= len(a.packed) {
		return nil, false
	}
	v := a.packed[a.pos]
	a.pos++
	return v, v != nil
}

func (a *Args) Remaining() int { return len(a.packed) - a.pos }

// Rest returns all arguments not consumed yet.
func (a *Args) Rest() []Value {
	rest := a.packed[a.pos:]
	a.pos = len(a.packed)
	return rest
}

func (a *Args) mismatch(format string, args ...interface{}) error {
	msg := fmt.Sprintf("%s: argument %d: ", a.fn, a.pos) + fmt.Sprintf(format, args...)
	return diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, msg)
}

// Arg takes the next argument as a T.
func Arg[T Value](a *Args) (T, error) {
	var zero T
	v, ok := a.Next()
	if !ok {
		return zero, a.mismatch("expected %s, got nothing", kindOf[T]())
	}
	t, ok := v.(T)
	if !ok {
		return zero, a.mismatch("expected %s, got %s", kindOf[T](), v.Kind())
	}
	return t, nil
}

// OptionalArg is Arg for a parameter that may be missing.
func OptionalArg[T Value](a *Args) (T, bool, error) {
	var zero T
	v, ok := a.Next()
	if !ok {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, a.mismatch("expected %s, got %s", kindOf[T](), v.Kind())
	}
	return t, true, nil
}

func kindOf[T Value]() string {
	var zero T
	switch any(zero).(type) {
	case nil:
		return "value"
	case *Function:
		return KindFunction.String()
	case *Module:
		return KindModule.String()
	}
	return zero.Kind().String()
}

var ErrAlreadyTaken = errors.New("return value already taken")

// ReturnValue holds what an export returned until the caller takes it.
// Releasing the underlying descriptor happens exactly once.
type ReturnValue struct {
	values  []Value
	release func()
	taken   bool
}

// NewReturnValue wraps values produced by an export. release, if not nil,
// frees whatever backs them on the library side.
func NewReturnValue(values []Value, release func()) *ReturnValue {
	return &ReturnValue{values: values, release: release}
}

// Return is a convenience for exports implemented in Go.
func Return(v Value) *ReturnValue {
	if v == nil {
		return NewReturnValue(nil, nil)
	}
	return NewReturnValue([]Value{v}, nil)
}

func (r *ReturnValue) Len() int { return len(r.values) }

// Take transfers the single result to the caller and releases the
// descriptor. An empty result yields Void.
func (r *ReturnValue) Take() (Value, error) {
	if r.taken {
		return nil, ErrAlreadyTaken
	}
	r.taken = true
	var v Value = Void{}
	if len(r.values) > 0 && r.values[0] != nil {
		v = r.values[0]
	}
	r.values = nil
	if r.release != nil {
		r.release()
		r.release = nil
	}
	return v, nil
}

func (r *ReturnValue) Taken() bool { return r.taken }
