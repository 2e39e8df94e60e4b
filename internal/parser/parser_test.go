package parser_test

import (
	"math/big"
	"testing"

	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/lexer"
	"github.com/funvibe/hug/internal/parser"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/value"
)

func process(input string) *pipeline.PipelineContext {
	ctx := pipeline.NewContext("test.hug", input, ident.NewTable())
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
}

// parse is a test helper: lexes+parses input and fails on errors.
func parse(t *testing.T, input string) *ast.Tree {
	t.Helper()
	ctx := process(input)
	if len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %s", e)
		}
		t.FailNow()
	}
	return ctx.Tree
}

// parseErrors expects input to fail and returns the reported codes.
func parseErrors(t *testing.T, input string) []diagnostics.ErrorCode {
	t.Helper()
	ctx := process(input)
	if ctx.Err() == nil {
		t.Fatalf("expected errors for %q", input)
	}
	var codes []diagnostics.ErrorCode
	for _, e := range ctx.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

func literal(t *testing.T, tree *ast.Tree, idx int) value.Value {
	t.Helper()
	vd, ok := tree.Entries[idx].(*ast.VariableDefinition)
	if !ok {
		t.Fatalf("entry %d: expected VariableDefinition, got %T", idx, tree.Entries[idx])
	}
	v, ok := ast.ConstantValue(vd.Value)
	if !ok {
		t.Fatalf("entry %d: value is not a literal", idx)
	}
	return v
}

func TestStatementPlacement(t *testing.T) {
	tree := parse(t, `@extern module core = "hug_core"
use core.print
let x = 1
fn f(a) {
    print(a)
}
f(x)
`)
	if len(tree.OnLoad) != 2 {
		t.Fatalf("expected 2 load statements, got %d", len(tree.OnLoad))
	}
	ext, ok := tree.OnLoad[0].(*ast.ExternalModuleDefinition)
	if !ok || ext.Name != "core" || ext.Location != "hug_core" {
		t.Errorf("unexpected first load statement %#v", tree.OnLoad[0])
	}
	imp, ok := tree.OnLoad[1].(*ast.Import)
	if !ok || len(imp.Names) != 2 || imp.Names[1] != "print" {
		t.Errorf("unexpected import %#v", tree.OnLoad[1])
	}

	if len(tree.Entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(tree.Entries))
	}
	fn, ok := tree.Entries[1].(*ast.FunctionDefinition)
	if !ok {
		t.Fatalf("entry 1: expected FunctionDefinition, got %T", tree.Entries[1])
	}
	if fn.Entry != 2 || fn.End != 4 {
		t.Errorf("body spans [%d, %d), want [2, 4)", fn.Entry, fn.End)
	}
	if _, ok := tree.Entries[2].(*ast.ExpressionStatement); !ok {
		t.Errorf("entry 2: expected the body call, got %T", tree.Entries[2])
	}
	if ret, ok := tree.Entries[3].(*ast.Return); !ok || ret.Value != nil {
		t.Errorf("entry 3: expected an implicit bare return, got %#v", tree.Entries[3])
	}
	call := tree.Entries[4].(*ast.ExpressionStatement).Expression.(*ast.Call)
	if call.Function.(*ast.Variable).Name != "f" || len(call.Args) != 1 {
		t.Errorf("unexpected call %#v", call)
	}
}

func TestNestedFunctions(t *testing.T) {
	tree := parse(t, `fn outer() {
    fn inner() { return 1 }
    return inner()
}`)
	outer := tree.Entries[0].(*ast.FunctionDefinition)
	inner := tree.Entries[1].(*ast.FunctionDefinition)
	if inner.Entry != 2 || inner.End != 4 {
		t.Errorf("inner spans [%d, %d), want [2, 4)", inner.Entry, inner.End)
	}
	if outer.Entry != 1 || outer.End != 6 {
		t.Errorf("outer spans [%d, %d), want [1, 6)", outer.Entry, outer.End)
	}
	if len(tree.Entries) != 6 {
		t.Errorf("expected 6 entries, got %d", len(tree.Entries))
	}
}

func TestReturnValueOnSameLine(t *testing.T) {
	tree := parse(t, "fn f() {\n    return\n    1\n}")
	ret := tree.Entries[1].(*ast.Return)
	if ret.Value != nil {
		t.Errorf("return took a value from the next line")
	}
	if _, ok := tree.Entries[2].(*ast.ExpressionStatement); !ok {
		t.Errorf("expected the literal as its own statement, got %T", tree.Entries[2])
	}
}

func TestParameters(t *testing.T) {
	tree := parse(t, `public fn greet(name: String, greeting = "hello", times: Int32 = 2) -> String {}`)
	fn := tree.Entries[0].(*ast.FunctionDefinition)
	if !fn.Public || fn.ReturnType != "String" {
		t.Errorf("public=%v returnType=%q", fn.Public, fn.ReturnType)
	}
	if len(fn.Arguments) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(fn.Arguments))
	}
	if fn.Arguments[0].Type != "String" || fn.Arguments[0].Default != nil {
		t.Errorf("unexpected first parameter %+v", fn.Arguments[0])
	}
	if fn.Arguments[1].Default != value.String("hello") {
		t.Errorf("unexpected default %v", fn.Arguments[1].Default)
	}
	if fn.Arguments[2].Type != "Int32" || fn.Arguments[2].Default != value.Int32(2) {
		t.Errorf("unexpected third parameter %+v", fn.Arguments[2])
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected value.Value
	}{
		{"5", value.Int32(5)},
		{"-5", value.Int32(-5)},
		{"2147483648", value.Int64(2147483648)},
		{"-2147483649", value.Int64(-2147483649)},
		{"0xff", value.Int32(255)},
		{"0b101", value.Int32(5)},
		{"0o17", value.Int32(15)},
		{"1_000_000", value.Int32(1000000)},
		{"1.5", value.Float64(1.5)},
		{"-0.25", value.Float64(-0.25)},
		{"2f", value.Float32(2)},
		{"true", value.UInt8(1)},
		{"false", value.UInt8(0)},
		{"'a'", value.UInt32('a')},
		{`"a\tb\n"`, value.String("a\tb\n")},
		{`"say \"hi\""`, value.String(`say "hi"`)},
		{`r"C:\dir"`, value.String(`C:\dir`)},
		{`f"{0}"`, value.String("{0}")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parse(t, "let v = "+tt.input)
			if got := literal(t, tree, 0); got != tt.expected {
				t.Errorf("expected %s, got %s", value.Describe(tt.expected), value.Describe(got))
			}
		})
	}
}

func TestWideIntegers(t *testing.T) {
	tests := []struct {
		input string
		kind  value.Kind
	}{
		{"9223372036854775808", value.KindInt128},
		{"-170141183460469231731687303715884105728", value.KindInt128},
		{"340282366920938463463374607431768211455", value.KindUInt128},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := literal(t, parse(t, "let v = "+tt.input), 0)
			if got.Kind() != tt.kind {
				t.Fatalf("expected %s, got %s", tt.kind, got.Kind())
			}
			if got.String() != tt.input {
				t.Errorf("expected %s, got %s", tt.input, got)
			}
		})
	}
}

func TestIntegerValue(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)
	if _, err := parser.IntegerValue(tooBig); err == nil {
		t.Error("expected 2^128 to be rejected")
	}
	if v, err := parser.IntegerValue(big.NewInt(-1)); err != nil || v != value.Int32(-1) {
		t.Errorf("IntegerValue(-1) = %v, %v", v, err)
	}
}

func TestModuleBlock(t *testing.T) {
	tree := parse(t, `module shapes {
    let sides = 4
    use shapes.sides
    module inner { let x = 1 }
}`)
	md, ok := tree.OnLoad[0].(*ast.ModuleDefinition)
	if !ok {
		t.Fatalf("expected ModuleDefinition, got %T", tree.OnLoad[0])
	}
	if md.Name != "shapes" || len(md.Scope.Entries) != 3 {
		t.Fatalf("unexpected module %s with %d members", md.Name, len(md.Scope.Entries))
	}
	// sides is declared twice but listed once
	if len(md.Scope.Idents) != 2 {
		t.Errorf("expected 2 declared names, got %d", len(md.Scope.Idents))
	}
	if len(tree.Entries) != 0 {
		t.Errorf("module members leaked into the main sequence")
	}
}

func TestIdentsAreShared(t *testing.T) {
	ctx := process("let a = 1\nlet b = a")
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}
	first := ctx.Tree.Entries[0].(*ast.VariableDefinition)
	read := ctx.Tree.Entries[1].(*ast.VariableDefinition).Value.(*ast.Variable)
	if first.Variable != read.Ident {
		t.Errorf("a interned as %d and %d", first.Variable, read.Ident)
	}
	if ctx.Idents.Name(read.Ident) != "a" {
		t.Errorf("ident resolves to %q", ctx.Idents.Name(read.Ident))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"missing name", "let = 5", diagnostics.ErrP001},
		{"missing value", "let x =", diagnostics.ErrP001},
		{"unclosed call", "f(1, 2", diagnostics.ErrP001},
		{"extern without module", `@extern lib = "x"`, diagnostics.ErrP001},
		{"single segment import", "use core", diagnostics.ErrP002},
		{"return at top level", "return 1", diagnostics.ErrP003},
		{"duplicate parameter", "fn f(a, a) {}", diagnostics.ErrP003},
		{"statement in module", "module m { print(1) }", diagnostics.ErrP003},
		{"module in function", "fn f() { module m {} }", diagnostics.ErrP003},
		{"unknown annotation", `@inline module m = "x"`, diagnostics.ErrP003},
		{"type declaration", "type T", diagnostics.ErrP003},
		{"integer overflow", "let x = 9999999999999999999999999999999999999999", diagnostics.ErrP004},
		{"bad escape", `let s = "\q"`, diagnostics.ErrP004},
		{"non literal default", "fn f(a = b) {}", diagnostics.ErrP001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := parseErrors(t, tt.input)
			if codes[0] != tt.code {
				t.Errorf("expected %s, got %v", tt.code, codes)
			}
		})
	}
}

func TestRecoversAtNextStatement(t *testing.T) {
	ctx := process("let = 5\nlet y = 2\nlet z = )\nlet w = 3")
	if len(ctx.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", ctx.Errors)
	}
	for _, e := range ctx.Errors {
		if e.File != "test.hug" {
			t.Errorf("error without file: %s", e)
		}
	}
	var names []string
	for _, stmt := range ctx.Tree.Entries {
		names = append(names, stmt.(*ast.VariableDefinition).Name)
	}
	if len(names) != 2 || names[0] != "y" || names[1] != "w" {
		t.Errorf("expected [y w] to survive, got %v", names)
	}
}

func TestLexicalErrorsReachTheTree(t *testing.T) {
	ctx := process("let a = 1 @\nlet b = 2")
	if len(ctx.Errors) != 1 || ctx.Errors[0].Code != diagnostics.ErrL003 {
		t.Fatalf("expected a single L003, got %v", ctx.Errors)
	}
	if len(ctx.Tree.Entries) != 2 {
		t.Errorf("expected both definitions, got %d", len(ctx.Tree.Entries))
	}
}
