// Package core is the built-in hug_core module and the prelude script that
// brings its common functions into scope.
package core

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ffi"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// Location is the library location scripts use to declare the module.
const Location = config.CoreModuleLocation

//go:embed prelude.hug
var Prelude string

// Library builds the core module. print writes to out.
func Library(out io.Writer) *ffi.MemoryLibrary {
	return ffi.NewMemoryLibrary().
		Export("add", add).
		Export("print", func(args value.PackedArgs) (*value.ReturnValue, error) {
			return printLine(out, args)
		}).
		Export("concat", concat).
		Export("to_string", toString)
}

// Register adds the core module to opener.
func Register(opener *ffi.MemoryOpener, out io.Writer) {
	opener.Register(Location, Library(out))
}

// add(left: Int32, right: Int32) -> Int32
func add(args value.PackedArgs) (*value.ReturnValue, error) {
	a := args.Cursor("add")
	left, err := value.Arg[value.Int32](a)
	if err != nil {
		return nil, err
	}
	right, err := value.Arg[value.Int32](a)
	if err != nil {
		return nil, err
	}
	return value.Return(left + right), nil
}

// print(fmt: String, ...args)
func printLine(out io.Writer, args value.PackedArgs) (*value.ReturnValue, error) {
	a := args.Cursor("print")
	format, err := value.Arg[value.String](a)
	if err != nil {
		return nil, err
	}
	rest := a.Rest()
	line := string(format)
	if len(rest) > 0 {
		n, err := countPlaceholders(line)
		if err == nil && n < len(rest) {
			err = fmt.Errorf("%d arguments for %d placeholders", len(rest), n)
		}
		if err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, "print: "+err.Error())
		}
		for i, v := range rest {
			if v == nil {
				rest[i] = value.Void{}
			}
		}
		if line, err = Format(line, rest); err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, "print: "+err.Error())
		}
	}
	if _, err := fmt.Fprintln(out, line); err != nil {
		return nil, err
	}
	return value.Return(nil), nil
}

// concat(...args) -> String
func concat(args value.PackedArgs) (*value.ReturnValue, error) {
	var sb strings.Builder
	for _, v := range args.Cursor("concat").Rest() {
		if v != nil {
			sb.WriteString(v.String())
		}
	}
	return value.Return(value.String(sb.String())), nil
}

// to_string(v, spec?: String) -> String
func toString(args value.PackedArgs) (*value.ReturnValue, error) {
	a := args.Cursor("to_string")
	v, ok := a.Next()
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, "to_string: argument 1: expected a value, got nothing")
	}
	spec, ok, err := value.OptionalArg[value.String](a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Return(value.String(v.String())), nil
	}
	if !isAllowedFormatSpec(string(spec)) {
		return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, fmt.Sprintf("to_string: unknown format %q", string(spec)))
	}
	s, err := formatValue(v, string(spec))
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, "to_string: "+err.Error())
	}
	return value.Return(value.String(s)), nil
}
