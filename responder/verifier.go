package responder

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// Verifier grades accepted answers and records every grade.
type Verifier struct {
	evaluator ai.Evaluator
	sink      storage.AuditSink
	logger    *slog.Logger
}

// NewVerifier creates a verifier. A nil sink records nothing.
func NewVerifier(evaluator ai.Evaluator, sink storage.AuditSink) (*Verifier, error) {
	if evaluator == nil {
		return nil, ErrEvaluatorRequired
	}
	return &Verifier{
		evaluator: evaluator,
		sink:      sink,
		logger:    slog.Default().With("component", "verifier"),
	}, nil
}

// Verify scores the answer against its question and evidence. It never
// fails: an evaluator error yields scores of -1 with the error as comment.
func (v *Verifier) Verify(ctx context.Context, answerID, question, answer string, evidence []core.EvidenceItem) *core.AutoEval {
	eval, err := v.evaluator.Evaluate(ctx, question, answer, evidence)
	if err == nil && eval == nil {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		v.logger.Warn("evaluation failed", "answer_id", answerID, "err", err)
		eval = &core.AutoEval{Pertinence: -1, Clarity: -1, Comment: EvaluationFailedPrefix + err.Error()}
	}
	if v.sink != nil {
		event := &core.EvaluationEvent{
			AnswerID:  answerID,
			Question:  question,
			Answer:    answer,
			Eval:      *eval,
			Timestamp: time.Now().UTC(),
		}
		if err := v.sink.RecordEvaluation(ctx, event); err != nil {
			v.logger.Error("failed to record evaluation", "answer_id", answerID, "err", err)
		}
	}
	return eval
}
