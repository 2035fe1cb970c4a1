package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvaluation(t *testing.T) {
	t.Run("strict json", func(t *testing.T) {
		eval := parseEvaluation(`{"pertinence": 8, "clarte": 7, "commentaire": "Bien"}`)

		assert.Equal(t, &core.AutoEval{Pertinence: 8, Clarity: 7, Comment: "Bien"}, eval)
	})

	t.Run("fenced json", func(t *testing.T) {
		eval := parseEvaluation("```json\n{\"pertinence\": 5, \"clarte\": 9, \"commentaire\": \"ok\"}\n```")

		assert.Equal(t, 5, eval.Pertinence)
		assert.Equal(t, 9, eval.Clarity)
	})

	t.Run("garbage yields sentinel grades", func(t *testing.T) {
		eval := parseEvaluation("je ne sais pas")

		assert.Equal(t, -1, eval.Pertinence)
		assert.Equal(t, -1, eval.Clarity)
		assert.Contains(t, eval.Comment, "Erreur parsing")
	})
}

func TestEvaluator_Evaluate(t *testing.T) {
	var prompt string
	e := newEvaluator(ai.GeneratorFunc(func(_ context.Context, req ai.Request) (string, error) {
		prompt = req.Prompt
		assert.True(t, req.JSON)
		return `{"pertinence": 9, "clarte": 8, "commentaire": "Précis"}`, nil
	}))

	eval, err := e.Evaluate(context.Background(), "Quel montant ?", "100 €", []core.EvidenceItem{{Text: "Contrat de 100 €"}})
	require.NoError(t, err)
	assert.Equal(t, 9, eval.Pertinence)
	assert.Contains(t, prompt, "Quel montant ?")
	assert.Contains(t, prompt, "[1] Contrat de 100 €")
}

func TestEvaluator_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	e := newEvaluator(ai.GeneratorFunc(func(context.Context, ai.Request) (string, error) {
		return "", boom
	}))

	_, err := e.Evaluate(context.Background(), "q", "a", nil)
	assert.ErrorIs(t, err, boom)
}

func TestReranker_Score(t *testing.T) {
	calls := 0
	r := newReranker(ai.GeneratorFunc(func(context.Context, ai.Request) (string, error) {
		calls++
		if calls == 1 {
			return "pas de note", nil
		}
		return " 7.5 ", nil
	}))

	score, err := r.Score(context.Background(), "q", "p")
	require.NoError(t, err)
	assert.InDelta(t, 7.5, score, 1e-9)
	assert.Equal(t, 2, calls)
}
