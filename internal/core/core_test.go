package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/value"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		format   string
		args     []value.Value
		expected string
	}{
		{"plain", nil, "plain"},
		{"{} + {} = {}", []value.Value{value.Int32(1), value.Int32(2), value.Int32(3)}, "1 + 2 = 3"},
		{"{1} before {0}", []value.Value{value.String("a"), value.String("b")}, "b before a"},
		{"{{}} and {}", []value.Value{value.Int8(4)}, "{} and 4"},
		{"{:?}", []value.Value{value.String("quoted")}, `"quoted"`},
		{"{:?}", []value.Value{value.Float64(2)}, "2.0"},
		{"{:x}", []value.Value{value.Int32(-1)}, "ffffffff"},
		{"{:X}", []value.Value{value.UInt16(255)}, "FF"},
		{"{:b}", []value.Value{value.UInt8(5)}, "101"},
		{"{:o}", []value.Value{value.Int64(8)}, "10"},
		{"{:x}", []value.Value{value.Int8(-128)}, "80"},
		{"{:e}", []value.Value{value.Int32(1234)}, "1.234e3"},
		{"{:e}", []value.Value{value.Int32(-5000)}, "-5e3"},
		{"{:e}", []value.Value{value.Float64(1500)}, "1.5e3"},
		{"{:E}", []value.Value{value.Float64(0.00012)}, "1.2E-4"},
		{"{0}{0:x}", []value.Value{value.Int32(10)}, "10a"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Format(tt.format, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		format  string
		args    []value.Value
		errPart string
	}{
		{"{", nil, "unterminated"},
		{"}", nil, "unmatched"},
		{"{:z}", []value.Value{value.Int32(1)}, "invalid format spec"},
		{"{-1}", []value.Value{value.Int32(1)}, "invalid placeholder position"},
		{"{} {}", []value.Value{value.Int32(1)}, "no argument"},
		{"{:x}", []value.Value{value.Float64(1)}, "does not apply"},
		{"{:e}", []value.Value{value.String("s")}, "does not apply"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, err := Format(tt.format, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("expected %q in %v", tt.errPart, err)
			}
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	n, err := countPlaceholders("{} {{}} {1:x} text")
	if err != nil || n != 2 {
		t.Errorf("countPlaceholders = %d, %v", n, err)
	}
	if _, err := countPlaceholders("{0"); err == nil {
		t.Error("expected an error for an unterminated placeholder")
	}
}

func call(t *testing.T, out *bytes.Buffer, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	adapter, err := Library(out).Symbol(name)
	if err != nil {
		t.Fatalf("core does not export %s", name)
	}
	ret, err := adapter.Call(value.Pack(args...))
	if err != nil {
		return nil, err
	}
	return ret.Take()
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	if _, err := call(t, &out, "print", value.String("{} is {:?}"), value.String("x"), value.String("y")); err != nil {
		t.Fatal(err)
	}
	if _, err := call(t, &out, "print", value.String("{no args}")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "x is \"y\"\n{no args}\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	_, err := call(t, &out, "print", value.String("{} {}"), value.Int32(1))
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001, got %v", err)
	}
	_, err = call(t, &out, "print", value.String("{}"), value.Int32(1), value.Int32(2))
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for surplus arguments, got %v", err)
	}
	_, err = call(t, &out, "print", value.Int32(1))
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for a non-string format, got %v", err)
	}
}

func TestAdd(t *testing.T) {
	var out bytes.Buffer
	v, err := call(t, &out, "add", value.Int32(40), value.Int32(2))
	if err != nil || v != value.Int32(42) {
		t.Errorf("add = %v, %v", v, err)
	}
	if _, err := call(t, &out, "add", value.Int32(1), value.Int64(2)); !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for an Int64, got %v", err)
	}
}

func TestConcatAndToString(t *testing.T) {
	var out bytes.Buffer
	v, err := call(t, &out, "concat", value.String("n="), value.Int32(3), value.Float64(0.5))
	if err != nil || v != value.String("n=30.5") {
		t.Errorf("concat = %v, %v", v, err)
	}
	v, err = call(t, &out, "to_string", value.UInt64(7))
	if err != nil || v != value.String("7") {
		t.Errorf("to_string = %v, %v", v, err)
	}
	if _, err := call(t, &out, "to_string"); err == nil {
		t.Error("to_string without arguments succeeded")
	}
	v, err = call(t, &out, "to_string", value.Int32(255), value.String("X"))
	if err != nil || v != value.String("FF") {
		t.Errorf("to_string with a format = %v, %v", v, err)
	}
	if _, err := call(t, &out, "to_string", value.Int32(1), value.String("q")); !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for an unknown format, got %v", err)
	}
	if _, err := call(t, &out, "to_string", value.Int32(1), value.Int32(2)); !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for a non-string format, got %v", err)
	}
}

func TestLibraryDiscovery(t *testing.T) {
	names, err := Library(&bytes.Buffer{}).Exports()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "add,print,concat,to_string" {
		t.Errorf("unexpected exports %v", names)
	}
	if !strings.Contains(Prelude, `"`+Location+`"`) {
		t.Error("prelude does not declare the core module")
	}
}
