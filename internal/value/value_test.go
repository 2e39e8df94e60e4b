package value

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
)

func TestString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
		debug string
	}{
		{Int8(-5), "-5", "-5"},
		{Int32(42), "42", "42"},
		{UInt64(math.MaxUint64), "18446744073709551615", "18446744073709551615"},
		{Float64(1.5), "1.5", "1.5"},
		{Float64(3), "3", "3.0"},
		{Float32(0.1), "0.1", "0.1"},
		{Float64(1e21), "1000000000000000000000", "1000000000000000000000.0"},
		{Float64(math.Inf(1)), "inf", "inf"},
		{Float64(math.Inf(-1)), "-inf", "-inf"},
		{Float64(math.NaN()), "NaN", "NaN"},
		{String("hi"), "hi", `"hi"`},
		{Void{}, "<Void>", "<Void>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := Debug(tt.value); got != tt.debug {
				t.Errorf("Debug() = %q, want %q", got, tt.debug)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(String("x")); got != `String("x")` {
		t.Errorf("Describe = %s", got)
	}
	if got := Describe(nil); got != "<none>" {
		t.Errorf("Describe(nil) = %s", got)
	}
}

func TestKind(t *testing.T) {
	if KindUInt128.String() != "UInt128" || !KindUInt128.IsInteger() {
		t.Error("UInt128 kind")
	}
	if KindFloat32.IsInteger() || KindString.IsInteger() {
		t.Error("non-integer kinds reported as integers")
	}
	if Kind(200).String() != "Kind(200)" {
		t.Errorf("unknown kind printed as %s", Kind(200))
	}
}

func TestInt128(t *testing.T) {
	tests := []string{
		"0",
		"-1",
		"18446744073709551616",
		"-18446744073709551617",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			b, _ := new(big.Int).SetString(s, 10)
			v, ok := Int128FromBig(b)
			if !ok {
				t.Fatalf("%s does not fit", s)
			}
			if v.String() != s {
				t.Errorf("round trip gave %s", v)
			}
		})
	}

	tooBig, _ := new(big.Int).SetString("170141183460469231731687303715884105728", 10)
	if _, ok := Int128FromBig(tooBig); ok {
		t.Error("2^127 accepted as Int128")
	}
	u, ok := UInt128FromBig(tooBig)
	if !ok || u.String() != tooBig.String() {
		t.Errorf("2^127 as UInt128 = %v, %v", u, ok)
	}
	if _, ok := UInt128FromBig(big.NewInt(-1)); ok {
		t.Error("-1 accepted as UInt128")
	}
	if v := Int128From(-2); v.Hi != -1 || v.Lo != math.MaxUint64-1 {
		t.Errorf("Int128From(-2) = %+v", v)
	}
}

func TestVariables(t *testing.T) {
	vars := NewVariables()
	if _, ok := vars.Get(7); ok {
		t.Fatal("unset id reported bound")
	}
	if prev := vars.Set(7, Int32(1)); prev != nil {
		t.Errorf("first Set returned %v", prev)
	}
	if prev := vars.Set(7, Int32(2)); prev != Int32(1) {
		t.Errorf("overwrite returned %v, want 1", prev)
	}
	vars.Set(2, String("a"))
	if vars.Len() != 2 {
		t.Errorf("Len() = %d, want 2", vars.Len())
	}

	var seen []ident.Ident
	vars.Each(func(id ident.Ident, _ Value) bool {
		seen = append(seen, id)
		return true
	})
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 7 {
		t.Errorf("Each visited %v, want [2 7]", seen)
	}

	if prev := vars.Remove(7); prev != Int32(2) {
		t.Errorf("Remove returned %v", prev)
	}
	if _, ok := vars.Get(7); ok || vars.Len() != 1 {
		t.Error("removed id still bound")
	}
	if vars.Remove(100) != nil || vars.Set(-1, Int32(0)) != nil {
		t.Error("out of range ids must be ignored")
	}
}

func TestArgs(t *testing.T) {
	args := Pack(Int32(1), String("two"), nil).Cursor("f")

	n, err := Arg[Int32](args)
	if err != nil || n != 1 {
		t.Fatalf("Arg[Int32] = %v, %v", n, err)
	}
	if _, err := Arg[Int32](args); !errors.Is(err, diagnostics.Code(diagnostics.ErrT001)) {
		t.Errorf("expected T001 for a string argument, got %v", err)
	}
	if _, ok, err := OptionalArg[String](args); ok || err != nil {
		t.Errorf("missing optional argument: ok=%v err=%v", ok, err)
	}
	if args.Remaining() != 0 {
		t.Errorf("Remaining() = %d", args.Remaining())
	}
	if _, err := Arg[*Function](args); err == nil {
		t.Error("expected an error past the end")
	}

	loose := Pack(Float64(1)).Cursor("g")
	if v, err := Arg[Value](loose); err != nil || v != Float64(1) {
		t.Errorf("Arg[Value] = %v, %v", v, err)
	}
}

func TestReturnValueTakeOnce(t *testing.T) {
	released := 0
	ret := NewReturnValue([]Value{String("out")}, func() { released++ })

	v, err := ret.Take()
	if err != nil || v != String("out") {
		t.Fatalf("Take() = %v, %v", v, err)
	}
	if _, err := ret.Take(); !errors.Is(err, ErrAlreadyTaken) {
		t.Errorf("second Take returned %v", err)
	}
	if released != 1 || !ret.Taken() {
		t.Errorf("release ran %d times", released)
	}

	empty, err := Return(nil).Take()
	if err != nil || empty != (Void{}) {
		t.Errorf("empty result = %v, %v", empty, err)
	}
}

type countingLibrary struct {
	closes int
}

func (l *countingLibrary) Symbol(string) (Adapter, error) { return nil, errors.New("none") }
func (l *countingLibrary) Close() error                   { l.closes++; return nil }

func TestHandleRefcount(t *testing.T) {
	lib := &countingLibrary{}
	h := NewHandle("lib", lib)
	mod := NewModule("m", "lib", h)
	fn := NewExternal("f", AdapterFunc(func(PackedArgs) (*ReturnValue, error) { return nil, nil }), h)

	Retain(mod)
	Retain(fn)
	Retain(Int32(1)) // no handle
	if h.Refs() != 2 {
		t.Fatalf("Refs() = %d, want 2", h.Refs())
	}
	if err := Release(mod); err != nil || h.Closed() {
		t.Fatal("library closed while a function still holds it")
	}
	if err := Release(fn); err != nil {
		t.Fatal(err)
	}
	if !h.Closed() || lib.closes != 1 {
		t.Fatalf("closed=%v closes=%d after last release", h.Closed(), lib.closes)
	}
	h.Close()
	if lib.closes != 1 {
		t.Error("library closed twice")
	}
}

func TestModuleImports(t *testing.T) {
	mod := NewModule("ns", "", nil)
	if mod.IsNative() || mod.String() != "<module ns>" {
		t.Errorf("namespace module: %s", mod)
	}
	if mod.Imported(3) {
		t.Fatal("fresh module reports an import")
	}
	if mod.MarkImported(3) {
		t.Error("first MarkImported reported a previous import")
	}
	if !mod.MarkImported(3) || !mod.Imported(3) {
		t.Error("second MarkImported did not see the first")
	}
}

func TestFunction(t *testing.T) {
	fn := NewInterpreted("greet", 4, 9, []Argument{
		{Name: "name", Type: "String"},
		{Name: "greeting", Default: String("hello")},
	})
	if fn.Required() != 1 {
		t.Errorf("Required() = %d", fn.Required())
	}
	if got := fn.String(); got != "<fn greet(name: String, greeting)>" {
		t.Errorf("String() = %s", got)
	}
	if got := NewExternal("print", nil, nil).String(); got != "<extern fn print>" {
		t.Errorf("String() = %s", got)
	}
}
