package pipeline

// Pipeline runs the front end stages in order over one context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage. Lexical errors do not stop the parser, so a
// single run reports both kinds; the parser skips Unknown tokens it already
// has a diagnostic for.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
