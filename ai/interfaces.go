package ai

import (
	"context"

	"github.com/poiesic/concierge/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Request is a single chat completion request.
type Request struct {
	// System is the optional system instruction.
	System string
	// Prompt is the user message.
	Prompt string
	// JSON asks the model for a JSON object response.
	JSON bool
	// MaxTokens overrides the configured cap when positive.
	MaxTokens int
}

// Generator produces text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Reranker scores how well a passage answers a query. Higher is better.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	Score(ctx context.Context, query, passage string) (float64, error)
}

// Evaluator grades an answer against its question and evidence.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string, evidence []core.EvidenceItem) (*core.AutoEval, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the answer synthesis service.
	Generator() Generator

	// Reranker returns the pair scoring service.
	Reranker() Reranker

	// Evaluator returns the answer evaluation service.
	Evaluator() Evaluator

	// Close releases resources held by the provider and its services.
	Close() error
}
