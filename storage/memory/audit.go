package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// AuditLog records audit events in memory.
type AuditLog struct {
	mu          sync.Mutex
	feedback    []*core.FeedbackEvent
	evaluations []*core.EvaluationEvent
}

var _ storage.AuditLog = (*AuditLog)(nil)

// NewAuditLog creates an empty in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// RecordFeedback appends a feedback event.
func (l *AuditLog) RecordFeedback(_ context.Context, event *core.FeedbackEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := *event
	l.feedback = append(l.feedback, &ev)
	return nil
}

// RecordEvaluation appends an evaluation event.
func (l *AuditLog) RecordEvaluation(_ context.Context, event *core.EvaluationEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := *event
	l.evaluations = append(l.evaluations, &ev)
	return nil
}

// ListFeedback returns feedback events, newest first.
func (l *AuditLog) ListFeedback(_ context.Context, limit int) ([]*core.FeedbackEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newestFirst(l.feedback, limit), nil
}

// ListEvaluations returns evaluation events, newest first.
func (l *AuditLog) ListEvaluations(_ context.Context, limit int) ([]*core.EvaluationEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newestFirst(l.evaluations, limit), nil
}

// Close is a no-op.
func (l *AuditLog) Close() error {
	return nil
}

func newestFirst[T any](events []*T, limit int) []*T {
	out := slices.Clone(events)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
