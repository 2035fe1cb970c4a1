package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/ai"
)

// Reranker scores (query, passage) pairs by asking a chat model for a 0-10 grade.
type Reranker struct {
	generator ai.Generator
	attempts  int
	logger    *slog.Logger
}

var _ ai.Reranker = (*Reranker)(nil)

func newReranker(generator ai.Generator) *Reranker {
	return &Reranker{
		generator: generator,
		attempts:  3,
		logger:    slog.Default().With("component", "openai-reranker"),
	}
}

// NewReranker creates a pair scorer for the configured reranker model.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	creds := config.Credentials()
	creds.Model = config.RerankerModel
	gen, err := newGenerator(creds, 8, "openai-reranker")
	if err != nil {
		return nil, err
	}
	return newReranker(gen), nil
}

// Score returns the model grade for the pair. Non-numeric replies are retried.
func (r *Reranker) Score(ctx context.Context, query, passage string) (float64, error) {
	var score float64
	err := ai.RetryWithBackoff(ctx, func() error {
		reply, err := r.generator.Generate(ctx, ai.Request{Prompt: buildRerankPrompt(query, passage), MaxTokens: 8})
		if err != nil {
			return err
		}
		score, err = ai.ParseScore(reply)
		if err != nil {
			r.logger.Warn("unparseable pair score", "reply", reply)
		}
		return err
	}, r.attempts, 200*time.Millisecond)
	return score, err
}
