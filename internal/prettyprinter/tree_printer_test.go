package prettyprinter_test

import (
	"testing"

	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/lexer"
	"github.com/funvibe/hug/internal/parser"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/prettyprinter"
)

func TestPrintTree(t *testing.T) {
	input := `@extern module core = "hug_core"
use core.print
module m { let a: Int32 = 1 }
fn f(x, y = 2) -> Int32 {
    return x
}
print("{}", f(1))
`
	ctx := pipeline.NewContext("t.hug", input, ident.NewTable())
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}

	got := prettyprinter.PrintTree(ctx.Tree)
	want := `on load:
  0000 ExternalModuleDefinition core = "hug_core"
  0001 Import core.print
  0002 ModuleDefinition m {
         VariableDefinition a: Int32 = Int32(1)
       }
main:
  0000 FunctionDefinition f(x, y = Int32(2)) -> Int32 [0001..0003)
  0001   Return x
  0002   Return
  0003 ExpressionStatement print(String("{}"), f(Int32(1)))
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
