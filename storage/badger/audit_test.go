package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_FeedbackNewestFirst(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repos.Audit.RecordFeedback(ctx, &core.FeedbackEvent{
			AnswerID:  fmt.Sprintf("a%d", i),
			Status:    core.FeedbackUseful,
			Timestamp: time.Now().UTC(),
		}))
	}

	all, err := repos.Audit.ListFeedback(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a4", all[0].AnswerID)
	assert.Equal(t, "a0", all[4].AnswerID)

	two, err := repos.Audit.ListFeedback(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "a3", two[1].AnswerID)
}

func TestAuditRepository_EvaluationsSeparateFromFeedback(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	require.NoError(t, repos.Audit.RecordFeedback(ctx, &core.FeedbackEvent{AnswerID: "fb"}))
	require.NoError(t, repos.Audit.RecordEvaluation(ctx, &core.EvaluationEvent{
		AnswerID: "ev",
		Eval:     core.AutoEval{Pertinence: 9, Clarity: 7, Comment: "ok"},
	}))

	evals, err := repos.Audit.ListEvaluations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "ev", evals[0].AnswerID)
	assert.Equal(t, 9, evals[0].Eval.Pertinence)

	feedback, err := repos.Audit.ListFeedback(ctx, 0)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
}
