package diagnostics

import (
	"errors"
	"fmt"

	"github.com/funvibe/hug/internal/token"
)

type ErrorCode string

const (
	// Lexical
	ErrL001 ErrorCode = "L001" // unterminated string
	ErrL002 ErrorCode = "L002" // unterminated block comment
	ErrL003 ErrorCode = "L003" // malformed annotation
	ErrL004 ErrorCode = "L004" // malformed token
	ErrL005 ErrorCode = "L005" // emoji in source

	// Syntactic
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // malformed import path
	ErrP003 ErrorCode = "P003" // malformed statement
	ErrP004 ErrorCode = "P004" // invalid literal

	// Resolution
	ErrN001 ErrorCode = "N001" // unbound identifier
	ErrN002 ErrorCode = "N002" // library not found
	ErrN003 ErrorCode = "N003" // invalid module
	ErrN004 ErrorCode = "N004" // missing exported symbol
	ErrN005 ErrorCode = "N005" // import target is not a module

	// Type
	ErrT001 ErrorCode = "T001" // argument type mismatch
	ErrT002 ErrorCode = "T002" // value cannot cross the native boundary

	// Runtime
	ErrR001 ErrorCode = "R001" // not callable
	ErrR002 ErrorCode = "R002" // unimplemented
	ErrR003 ErrorCode = "R003" // return outside function
	ErrR004 ErrorCode = "R004" // arity mismatch
	ErrR005 ErrorCode = "R005" // call stack exhausted
	ErrR006 ErrorCode = "R006" // native call failed

	// Warnings
	ErrW001 ErrorCode = "W001" // duplicate import
	ErrW002 ErrorCode = "W002" // discovered export without a symbol
)

var errorTemplates = map[ErrorCode]string{
	ErrL001: "unterminated string literal",
	ErrL002: "block comment is not closed",
	ErrL003: "malformed annotation %q",
	ErrL004: "malformed token %q",
	ErrL005: "emoji are not allowed in scripts: %q",

	ErrP001: "unexpected %s, expected %s",
	ErrP002: "import path %q must name a module and at least one member",
	ErrP003: "%s",
	ErrP004: "invalid %s literal %q: %s",

	ErrN001: "unbound variable %q",
	ErrN002: "unable to resolve library %q (searched %s)",
	ErrN003: "module %q is invalid: %s",
	ErrN004: "module %q does not export %q",
	ErrN005: "cannot import from %q: it is not a module",

	ErrT001: "type error: %s",
	ErrT002: "value of kind %s cannot be passed to native code",

	ErrR001: "%q is not a function",
	ErrR002: "%s is not implemented",
	ErrR003: "return outside of a function",
	ErrR004: "%s expects %s arguments, got %d",
	ErrR005: "call stack exhausted after %d nested calls",
	ErrR006: "call to %s failed",

	ErrW001: "duplicate import of %q",
	ErrW002: "module %q lists export %q but does not define it",
}

type Category int

const (
	Lexical Category = iota
	Syntactic
	Resolution
	TypeCategory
	Runtime
	Warning
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Resolution:
		return "resolution error"
	case TypeCategory:
		return "type error"
	case Runtime:
		return "runtime error"
	case Warning:
		return "warning"
	}
	return "error"
}

// Category derives the error category from the code prefix.
func (c ErrorCode) Category() Category {
	if c == "" {
		return Runtime
	}
	switch c[0] {
	case 'L':
		return Lexical
	case 'P':
		return Syntactic
	case 'N':
		return Resolution
	case 'T':
		return TypeCategory
	case 'W':
		return Warning
	}
	return Runtime
}

// DiagnosticError is a recoverable failure of any stage, carrying enough
// context to render a message pointing at the source.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     token.Pos
	File    string
	Message string
	Cause   error
}

func NewError(code ErrorCode, pos token.Pos, args ...interface{}) *DiagnosticError {
	msg := string(code)
	if tmpl, ok := errorTemplates[code]; ok {
		msg = fmt.Sprintf(tmpl, args...)
	}
	return &DiagnosticError{Code: code, Pos: pos, Message: msg}
}

// Wrap attaches an underlying cause, kept reachable through errors.Unwrap.
func (e *DiagnosticError) Wrap(cause error) *DiagnosticError {
	e.Cause = cause
	return e
}

// At fills in the position when the error was raised without one.
func (e *DiagnosticError) At(file string, pos token.Pos) *DiagnosticError {
	if e.File == "" {
		e.File = file
	}
	if !e.Pos.IsValid() {
		e.Pos = pos
	}
	return e
}

func (e *DiagnosticError) Category() Category { return e.Code.Category() }

func (e *DiagnosticError) IsWarning() bool { return e.Category() == Warning }

func (e *DiagnosticError) Error() string {
	loc := ""
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.Pos.IsValid() {
		loc += e.Pos.String() + ": "
	} else if loc != "" {
		loc += " "
	}
	msg := fmt.Sprintf("%s%s [%s]: %s", loc, e.Category(), e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DiagnosticError) Unwrap() error { return e.Cause }

// Is matches another DiagnosticError by code, so callers can write
// errors.Is(err, diagnostics.Code(diagnostics.ErrN002)).
func (e *DiagnosticError) Is(target error) bool {
	var t *DiagnosticError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Code returns a sentinel usable with errors.Is.
func Code(c ErrorCode) error {
	return &DiagnosticError{Code: c}
}

// As extracts a DiagnosticError from err.
func As(err error) (*DiagnosticError, bool) {
	var d *DiagnosticError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// List is a set of diagnostics reported by one stage. It is an error when
// it holds at least one non-warning entry.
type List []*DiagnosticError

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// Unwrap exposes every entry to errors.Is / errors.As.
func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns the list as an error, or nil when it holds only warnings.
func (l List) Err() error {
	for _, e := range l {
		if !e.IsWarning() {
			return l.Errors()
		}
	}
	return nil
}

// Errors filters out warnings.
func (l List) Errors() List {
	var out List
	for _, e := range l {
		if !e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}

// Warnings keeps only warnings.
func (l List) Warnings() List {
	var out List
	for _, e := range l {
		if e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}
