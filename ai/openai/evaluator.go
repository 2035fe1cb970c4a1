package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
)

// Evaluator grades answers with a chat model returning strict JSON.
type Evaluator struct {
	generator ai.Generator
	logger    *slog.Logger
}

var _ ai.Evaluator = (*Evaluator)(nil)

func newEvaluator(generator ai.Generator) *Evaluator {
	return &Evaluator{
		generator: generator,
		logger:    slog.Default().With("component", "openai-evaluator"),
	}
}

// NewEvaluator creates an evaluator for the configured evaluation model.
//
// Returns ai.Evaluator interface to enforce abstraction.
func NewEvaluator(config *ai.Config) (ai.Evaluator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	creds := config.Credentials()
	creds.Model = config.EvaluatorModel
	gen, err := newGenerator(creds, 200, "openai-evaluator")
	if err != nil {
		return nil, err
	}
	return newEvaluator(gen), nil
}

// Evaluate asks for pertinence and clarity grades. Transport failures are
// returned as errors; a reply that is not valid JSON yields -1 grades.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer string, evidence []core.EvidenceItem) (*core.AutoEval, error) {
	reply, err := e.generator.Generate(ctx, ai.Request{
		Prompt:    buildEvaluationPrompt(question, answer, evidence),
		JSON:      true,
		MaxTokens: 200,
	})
	if err != nil {
		return nil, err
	}
	return parseEvaluation(reply), nil
}

func parseEvaluation(reply string) *core.AutoEval {
	var result core.AutoEval
	if err := sonic.UnmarshalString(ai.CleanJSON(reply), &result); err != nil {
		return &core.AutoEval{
			Pertinence: -1,
			Clarity:    -1,
			Comment:    fmt.Sprintf("Erreur parsing: %v", err),
		}
	}
	return &result
}
