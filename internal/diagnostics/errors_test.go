package diagnostics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/hug/internal/token"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Category
	}{
		{ErrL001, Lexical},
		{ErrP003, Syntactic},
		{ErrN002, Resolution},
		{ErrT002, TypeCategory},
		{ErrR005, Runtime},
		{ErrW001, Warning},
		{"", Runtime},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(ErrN001, token.Pos{Line: 3, Column: 7}, "x")
	err.File = "main.hug"
	want := `main.hug:3:7: resolution error [N001]: unbound variable "x"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	bare := NewError(ErrR003, token.Pos{})
	if bare.Error() != "runtime error [R003]: return outside of a function" {
		t.Errorf("unexpected message %q", bare.Error())
	}

	wrapped := NewError(ErrR006, token.Pos{}, "f").Wrap(errors.New("boom"))
	if !strings.HasSuffix(wrapped.Error(), "call to f failed: boom") {
		t.Errorf("cause missing: %q", wrapped.Error())
	}
}

func TestAtKeepsTheFirstLocation(t *testing.T) {
	err := NewError(ErrN001, token.Pos{}, "x")
	err.At("inner.hug", token.Pos{Line: 2, Column: 1})
	err.At("outer.hug", token.Pos{Line: 9, Column: 1})
	if err.File != "inner.hug" || err.Pos.Line != 2 {
		t.Errorf("location overwritten: %s:%s", err.File, err.Pos)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	cause := errors.New("dlopen failed")
	err := fmt.Errorf("loading: %w", NewError(ErrN003, token.Pos{}, "m", "bad").Wrap(cause))
	if !errors.Is(err, Code(ErrN003)) {
		t.Error("code not matched through wrapping")
	}
	if errors.Is(err, Code(ErrN002)) {
		t.Error("matched a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
	if d, ok := As(err); !ok || d.Code != ErrN003 {
		t.Errorf("As = %v, %v", d, ok)
	}
}

func TestList(t *testing.T) {
	warn := NewError(ErrW001, token.Pos{}, "core.print")
	fail := NewError(ErrP001, token.Pos{Line: 1, Column: 5}, "'='", "variable name")

	if err := (List{warn}).Err(); err != nil {
		t.Errorf("warnings alone are not an error: %v", err)
	}
	list := List{warn, fail, NewError(ErrP002, token.Pos{}, "core")}
	err := list.Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, Code(ErrP002)) || errors.Is(err, Code(ErrW001)) {
		t.Error("Err() should keep errors and drop warnings")
	}
	if !strings.Contains(err.Error(), "(and 1 more errors)") {
		t.Errorf("unexpected summary %q", err.Error())
	}
	if len(list.Warnings()) != 1 || len(list.Errors()) != 2 {
		t.Errorf("warnings=%d errors=%d", len(list.Warnings()), len(list.Errors()))
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Sources["main.hug"] = "let a = 1\nlet b = nope\n"

	err := NewError(ErrN001, token.Pos{Line: 2, Column: 9, Offset: 18}, "nope")
	err.File = "main.hug"
	p.PrintError(List{err})

	want := "main.hug:2:9: resolution error[N001]: unbound variable \"nope\"\n" +
		"  let b = nope\n" +
		"          ^\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	p.PrintError(errors.New("plain failure"))
	if buf.String() != "error: plain failure\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	p.Print(NewError(ErrW002, token.Pos{}, "m", "ghost"))
	if buf.String() != "warning[W002]: module \"m\" lists export \"ghost\" but does not define it\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
