package responder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/intent"
)

// DefaultSynthesisTopK is the number of passages given to the generator.
const DefaultSynthesisTopK = 5

// Synthesis answers any question by generating from retrieved passages.
type Synthesis struct {
	searcher  Searcher
	generator ai.Generator
	topK      int
	logger    *slog.Logger
}

var _ Responder = (*Synthesis)(nil)

// SynthesisOption configures a Synthesis responder.
type SynthesisOption func(*Synthesis) error

// WithSynthesisTopK sets the default number of passages.
// Default is 5.
func WithSynthesisTopK(k int) SynthesisOption {
	return func(s *Synthesis) error {
		if k > 0 {
			s.topK = k
		}
		return nil
	}
}

// NewSynthesis creates a synthesis responder.
func NewSynthesis(searcher Searcher, generator ai.Generator, opts ...SynthesisOption) (*Synthesis, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	s := &Synthesis{
		searcher:  searcher,
		generator: generator,
		topK:      DefaultSynthesisTopK,
		logger:    slog.Default().With("component", "synthesis-responder"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Synthesis) Kind() core.ResponderKind { return core.KindSynthesis }

// CanHandle claims every question.
func (s *Synthesis) CanHandle(string, *core.WorkingContext) bool { return true }

// Run retrieves passages, stores them in wctx.Sources and asks the generator
// with the prompt matching the question's intention.
func (s *Synthesis) Run(ctx context.Context, question string, wctx *core.WorkingContext) (*Output, error) {
	topK := s.topK
	if wctx.TopK > 0 {
		topK = wctx.TopK
	}
	evidence, err := s.searcher.HybridSearch(ctx, question, topK)
	if err != nil {
		return nil, err
	}
	wctx.Sources = evidence

	intention := wctx.Intention
	if intention == "" {
		intention = intent.Detect(question)
	}
	reply, err := s.generator.Generate(ctx, ai.Request{
		Prompt: synthesisPrompt(intention, question, core.Texts(evidence)),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("synthesized", "intention", intention, "passages", len(evidence))
	return &Output{Answer: strings.TrimSpace(reply), Evidence: evidence}, nil
}
