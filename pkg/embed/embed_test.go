package hug_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	hug "github.com/funvibe/hug/pkg/embed"
)

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main"+config.SourceFileExt)
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newVM(t *testing.T, code string) (*hug.VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	vm, err := hug.New(writeScript(t, code), hug.WithOutput(&out), hug.WithProject(config.DefaultProject()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := vm.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return vm, &out
}

func TestEmbedAPI(t *testing.T) {
	vm, out := newVM(t, `
@extern module host = "hug_host"
use host.double

let doubled = double(21)
print("doubled: {}", doubled)

fn greet(name, greeting = "hello") {
    return concat(greeting, ", ", name)
}

use core.concat
`)

	// Bound before Run: the host module is declared when the script runs.
	if err := vm.Bind("double", func(x int) int { return x * 2 }); err != nil {
		t.Fatal(err)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	res, err := vm.Get("doubled")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res != int64(42) {
		t.Errorf("Expected int64 42, got %T %v", res, res)
	}
	if got := out.String(); got != "doubled: 42\n" {
		t.Errorf("Expected printed line, got %q", got)
	}

	greeting, err := vm.Call("greet", "Alice")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if greeting != "hello, Alice" {
		t.Errorf("Expected 'hello, Alice', got %v", greeting)
	}

	greeting, err = vm.Call("greet", "Bob", "hi")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if greeting != "hi, Bob" {
		t.Errorf("Expected 'hi, Bob', got %v", greeting)
	}
}

func TestBindErrors(t *testing.T) {
	vm, _ := newVM(t, `
@extern module host = "hug_host"
use host.fail

fail()
`)
	if err := vm.Bind("not_a_function", 42); err == nil {
		t.Error("Expected Bind to reject a non-function")
	}
	boom := errors.New("boom")
	vm.Bind("fail", func() error { return boom })

	err := vm.Run()
	if err == nil {
		t.Fatal("Expected Run to fail")
	}
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrR006)) {
		t.Errorf("Expected R006, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected the host error to be wrapped, got %v", err)
	}
}

func TestBoundFunctionPanics(t *testing.T) {
	vm, _ := newVM(t, `
@extern module host = "hug_host"
use host.explode

let before = 1
explode()
let after = 2
`)
	calls := 0
	vm.Bind("explode", func() {
		calls++
		if calls == 1 {
			panic("kaboom")
		}
	})

	err := vm.Run()
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrR006)) {
		t.Fatalf("Expected R006, got %v", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("Expected the panic value in the error, got %v", err)
	}
	if _, err := vm.Get("after"); err == nil {
		t.Error("Expected execution to stop at the panicking call")
	}

	// Running again retries the failed call.
	if err := vm.Run(); err != nil {
		t.Fatalf("Run after recovery failed: %v", err)
	}
	if after, _ := vm.Get("after"); after != int32(2) {
		t.Errorf("Expected after = 2, got %v", after)
	}
}

func TestSetOutput(t *testing.T) {
	vm, out := newVM(t, `
fn hello(name) {
    print("hello, {}", name)
}
hello("run")
`)
	if err := vm.Run(); err != nil {
		t.Fatal(err)
	}
	var later bytes.Buffer
	vm.SetOutput(&later)
	if _, err := vm.Call("hello", "call"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello, run\n" {
		t.Errorf("Expected the run output in the first writer, got %q", out.String())
	}
	if later.String() != "hello, call\n" {
		t.Errorf("Expected the call output in the second writer, got %q", later.String())
	}
}

func TestArgumentConversion(t *testing.T) {
	vm, _ := newVM(t, `
@extern module host = "hug_host"
use host.shout

let loud = shout("hey", true)
let wrong = shout(1, true)
`)
	vm.Bind("shout", func(s string, upper bool) string {
		if upper {
			return strings.ToUpper(s)
		}
		return s
	})

	err := vm.Run()
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Fatalf("Expected T001 for an Int32 passed as string, got %v", err)
	}
	loud, err := vm.Get("loud")
	if err != nil {
		t.Fatal(err)
	}
	if loud != "HEY" {
		t.Errorf("Expected HEY, got %v", loud)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := hug.New(writeScript(t, "let = 5\n"), hug.WithProject(config.DefaultProject()))
	if !errors.Is(err, diagnostics.Code(diagnostics.ErrP001)) {
		t.Errorf("Expected a syntax error, got %v", err)
	}

	_, err = hug.New(filepath.Join(t.TempDir(), "missing.hug"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a missing file error, got %v", err)
	}
}

func TestWithoutPrelude(t *testing.T) {
	vm, err := hug.New(writeScript(t, "print(\"hi\")\n"), hug.WithoutPrelude(), hug.WithProject(config.DefaultProject()))
	if err != nil {
		t.Fatal(err)
	}
	defer vm.Close()
	if err := vm.Run(); !errors.Is(err, diagnostics.Code(diagnostics.ErrN001)) {
		t.Errorf("Expected print to be unbound without the prelude, got %v", err)
	}
}
