package lexer

import "github.com/funvibe/hug/internal/pipeline"

// LexerProcessor tokenizes the source and pairs every token with its text.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, errs := Tokenize(ctx.SourceCode)
	ctx.Tokens = tokens
	ctx.Pairs = Pairs(ctx.SourceCode, tokens)
	for _, err := range errs {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}
