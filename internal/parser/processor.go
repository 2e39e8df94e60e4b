package parser

import (
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Pairs == nil && ctx.SourceCode != "" {
		// This case should not be hit if the lexer runs first.
		err := diagnostics.NewError(diagnostics.ErrP003, token.Pos{}, "parser: token stream is missing")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	parser := New(ctx.Pairs, ctx)
	ctx.Tree = parser.ParseTree()

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}
	return ctx
}
