package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// FeedbackPrefix starts every feedback question.
const FeedbackPrefix = "feedback:"

// AnonymousUser is recorded when the context names no user.
const AnonymousUser = "anonymous"

// Feedback records user judgements written as
// feedback:<answer_id>:<utile|inutile>:<commentaire>.
type Feedback struct {
	sink storage.AuditSink
}

var _ Responder = (*Feedback)(nil)

// NewFeedback creates a feedback responder writing to sink.
func NewFeedback(sink storage.AuditSink) (*Feedback, error) {
	if sink == nil {
		return nil, ErrAuditSinkRequired
	}
	return &Feedback{sink: sink}, nil
}

func (f *Feedback) Kind() core.ResponderKind { return core.KindFeedback }

// CanHandle claims questions starting with the feedback prefix, in any case.
func (f *Feedback) CanHandle(question string, _ *core.WorkingContext) bool {
	return IsFeedback(question)
}

// IsFeedback reports whether question starts with the feedback prefix.
func IsFeedback(question string) bool {
	return strings.HasPrefix(strings.ToLower(question), FeedbackPrefix)
}

// Run parses and records the feedback. Malformed input is answered with a
// usage message and nothing is recorded.
func (f *Feedback) Run(ctx context.Context, question string, wctx *core.WorkingContext) (*Output, error) {
	parts := strings.SplitN(question, ":", 4)
	if len(parts) != 4 {
		return &Output{Answer: MsgFeedbackFormat}, nil
	}
	answerID, status, comment := parts[1], strings.ToLower(parts[2]), parts[3]
	if err := core.ValidateFeedbackStatus(status); err != nil {
		return &Output{Answer: MsgFeedbackStatus}, nil
	}

	user := AnonymousUser
	if wctx != nil && wctx.User != "" {
		user = wctx.User
	}
	event := &core.FeedbackEvent{
		AnswerID:  answerID,
		Status:    status,
		Comment:   comment,
		User:      user,
		Timestamp: time.Now().UTC(),
	}
	if err := core.ValidateFeedback(event); err != nil {
		return &Output{Answer: MsgFeedbackFormat}, nil
	}
	if err := f.sink.RecordFeedback(ctx, event); err != nil {
		return nil, err
	}
	return &Output{Answer: fmt.Sprintf("Feedback reçu pour %s (%s)", answerID, status)}, nil
}
