package pipeline

import (
	"github.com/funvibe/hug/internal/ast"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/token"
)

// PipelineContext carries one script through the front end stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	// Idents is the session table every stage interns names into.
	Idents *ident.Table

	Tokens []token.Token
	Pairs  []token.Pair
	Tree   *ast.Tree

	Errors diagnostics.List
}

func NewContext(file, source string, idents *ident.Table) *PipelineContext {
	return &PipelineContext{SourceCode: source, FilePath: file, Idents: idents}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Err returns the collected errors, or nil when only warnings were reported.
func (c *PipelineContext) Err() error {
	for _, e := range c.Errors {
		if e.File == "" {
			e.File = c.FilePath
		}
	}
	return c.Errors.Err()
}
