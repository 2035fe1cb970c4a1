package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, echoes the prompt prefixed with "réponse: ".
	GenerateFunc func(ctx context.Context, req ai.Request) (string, error)

	callCount atomic.Int64
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator with echo behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns the injected reply or an echo of the prompt.
func (m *MockGenerator) Generate(ctx context.Context, req ai.Request) (string, error) {
	m.callCount.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "réponse: " + req.Prompt, nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// MockReranker is a test double for ai.Reranker.
type MockReranker struct {
	// ScoreFunc is called by Score if set. If nil, scores the fraction of
	// query words found in the passage, scaled to 0-10.
	ScoreFunc func(ctx context.Context, query, passage string) (float64, error)

	callCount atomic.Int64
}

var _ ai.Reranker = (*MockReranker)(nil)

// NewMockReranker creates a mock reranker with word-overlap scoring.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Score returns the injected score or the word-overlap score.
func (m *MockReranker) Score(ctx context.Context, query, passage string) (float64, error) {
	m.callCount.Add(1)
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, query, passage)
	}
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0, nil
	}
	lower := strings.ToLower(passage)
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return 10 * float64(hits) / float64(len(words)), nil
}

// CallCount returns the number of Score calls.
func (m *MockReranker) CallCount() int {
	return int(m.callCount.Load())
}

// MockEvaluator is a test double for ai.Evaluator.
type MockEvaluator struct {
	// EvaluateFunc is called by Evaluate if set. If nil, returns 8/8.
	EvaluateFunc func(ctx context.Context, question, answer string, evidence []core.EvidenceItem) (*core.AutoEval, error)

	callCount atomic.Int64
}

var _ ai.Evaluator = (*MockEvaluator)(nil)

// NewMockEvaluator creates a mock evaluator with fixed grades.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{}
}

// Evaluate returns the injected evaluation or fixed grades.
func (m *MockEvaluator) Evaluate(ctx context.Context, question, answer string, evidence []core.EvidenceItem) (*core.AutoEval, error) {
	m.callCount.Add(1)
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, question, answer, evidence)
	}
	return &core.AutoEval{Pertinence: 8, Clarity: 8, Comment: "ok"}, nil
}

// CallCount returns the number of Evaluate calls.
func (m *MockEvaluator) CallCount() int {
	return int(m.callCount.Load())
}
