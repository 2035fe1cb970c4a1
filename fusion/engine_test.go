package fusion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/ai/mock"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index"
	imock "github.com/poiesic/concierge/index/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hits(texts ...string) []index.Hit {
	out := make([]index.Hit, len(texts))
	for i, t := range texts {
		out[i] = index.Hit{Text: t, Score: float64(len(texts) - i)}
	}
	return out
}

// scoreByText returns a reranker scoring each passage from a fixed table.
func scoreByText(scores map[string]float64) *mock.MockReranker {
	r := mock.NewMockReranker()
	r.ScoreFunc = func(_ context.Context, _, passage string) (float64, error) {
		return scores[passage], nil
	}
	return r
}

func newTestEngine(t *testing.T, dense, lexical index.DenseIndex, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(dense, lexical, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func TestNewEngine(t *testing.T) {
	dense := imock.NewMockIndex()

	t.Run("valid configuration", func(t *testing.T) {
		e, err := NewEngine(dense, nil, WithReranker(mock.NewMockReranker()))
		require.NoError(t, err)
		e.Release()
	})

	t.Run("nil dense index", func(t *testing.T) {
		_, err := NewEngine(nil, nil, WithReranker(mock.NewMockReranker()))
		assert.Equal(t, ErrDenseIndexRequired, err)
	})

	t.Run("missing reranker", func(t *testing.T) {
		_, err := NewEngine(dense, nil)
		assert.Equal(t, ErrRerankerRequired, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewEngine(dense, nil, WithReranker(mock.NewMockReranker()), WithOverFetch(0))
		assert.Equal(t, ErrInvalidOverFetch, err)
		_, err = NewEngine(dense, nil, WithReranker(mock.NewMockReranker()), WithDedupPrefix(0))
		assert.Equal(t, ErrInvalidDedupPrefix, err)
	})

	t.Run("custom pool and logger", func(t *testing.T) {
		e, err := NewEngine(dense, nil, WithReranker(mock.NewMockReranker()), WithPoolSize(1), WithLogger(nil))
		require.NoError(t, err)
		e.Release()
	})
}

func TestHybridSearch_OverFetch(t *testing.T) {
	dense := imock.NewMockIndex(hits("a", "b", "c", "d", "e", "f", "g")...)
	lexical := imock.NewMockIndex(hits("h", "i")...)
	e := newTestEngine(t, dense, lexical, WithReranker(mock.NewMockReranker()))

	_, err := e.HybridSearch(context.Background(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, 6, dense.LastK())
	assert.Equal(t, 6, lexical.LastK())
}

func TestHybridSearch_SortedAndTruncated(t *testing.T) {
	dense := imock.NewMockIndex(hits("faible", "moyen", "fort")...)
	lexical := imock.NewMockIndex(hits("excellent", "Fort")...)
	reranker := scoreByText(map[string]float64{
		"faible": 0.5, "moyen": 3.33337, "fort": 6, "excellent": 9,
	})
	e := newTestEngine(t, dense, lexical, WithReranker(reranker))

	results, err := e.HybridSearch(context.Background(), "q", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "excellent", results[0].Text)
	assert.Equal(t, "fort", results[1].Text)
	assert.Equal(t, "moyen", results[2].Text)
	assert.Equal(t, 3.3334, results[2].Score)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RerankScore, results[i].RerankScore)
	}
	// "Fort" duplicates the dense "fort" and is never scored.
	assert.Equal(t, 4, reranker.CallCount())
}

func TestHybridSearch_OriginTags(t *testing.T) {
	dense := imock.NewMockIndex(hits("dense passage")...)
	lexical := imock.NewMockIndex(hits("lexical passage")...)
	e := newTestEngine(t, dense, lexical, WithReranker(scoreByText(map[string]float64{
		"dense passage": 1, "lexical passage": 2,
	})))

	results, err := e.HybridSearch(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "lexical", string(results[0].Origin))
	assert.Equal(t, "dense", string(results[1].Origin))
}

func TestHybridSearch_EmptyLexical(t *testing.T) {
	dense := imock.NewMockIndex(hits("seul passage")...)
	e := newTestEngine(t, dense, nil, WithReranker(mock.NewMockReranker()))

	results, err := e.HybridSearch(context.Background(), "passage", 7)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestHybridSearch_NoCandidates(t *testing.T) {
	e := newTestEngine(t, imock.NewMockIndex(), imock.NewMockIndex(), WithReranker(mock.NewMockReranker()))
	results, err := e.HybridSearch(context.Background(), "q", 7)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = e.HybridSearch(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridSearch_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("reranker error", func(t *testing.T) {
		r := mock.NewMockReranker()
		r.ScoreFunc = func(context.Context, string, string) (float64, error) { return 0, boom }
		e := newTestEngine(t, imock.NewMockIndex(hits("a")...), nil, WithReranker(r))
		_, err := e.HybridSearch(context.Background(), "q", 3)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("failed pairs are dropped", func(t *testing.T) {
		r := mock.NewMockReranker()
		r.ScoreFunc = func(_ context.Context, _, passage string) (float64, error) {
			if passage == "b" {
				return 0, boom
			}
			return 2, nil
		}
		e := newTestEngine(t, imock.NewMockIndex(hits("a", "b", "c")...), nil, WithReranker(r))
		results, err := e.HybridSearch(context.Background(), "q", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, core.Texts(results))
	})

	t.Run("dense error", func(t *testing.T) {
		dense := imock.NewMockIndex()
		dense.SearchFunc = func(context.Context, string, int) ([]index.Hit, error) { return nil, boom }
		e := newTestEngine(t, dense, nil, WithReranker(mock.NewMockReranker()))
		_, err := e.HybridSearch(context.Background(), "q", 3)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("lexical error", func(t *testing.T) {
		lexical := imock.NewMockIndex()
		lexical.SearchFunc = func(context.Context, string, int) ([]index.Hit, error) { return nil, boom }
		e := newTestEngine(t, imock.NewMockIndex(hits("a")...), lexical, WithReranker(mock.NewMockReranker()))
		_, err := e.HybridSearch(context.Background(), "q", 3)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRerankerFactory_RunsOnce(t *testing.T) {
	var built atomic.Int32
	factory := func() (ai.Reranker, error) {
		built.Add(1)
		return mock.NewMockReranker(), nil
	}
	e := newTestEngine(t, imock.NewMockIndex(hits("a", "b")...), nil, WithRerankerFactory(factory))
	assert.Equal(t, int32(0), built.Load())

	for range 5 {
		_, err := e.HybridSearch(context.Background(), "a", 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), built.Load())
}

func TestRerankerFactory_ErrorIsShared(t *testing.T) {
	boom := errors.New("model missing")
	e := newTestEngine(t, imock.NewMockIndex(hits("a")...), nil,
		WithRerankerFactory(func() (ai.Reranker, error) { return nil, boom }))

	_, err := e.HybridSearch(context.Background(), "a", 2)
	assert.ErrorIs(t, err, boom)
	_, err = e.HybridSearch(context.Background(), "a", 2)
	assert.ErrorIs(t, err, boom)
}

type recordingMonitor struct {
	noopMonitor
	dense, lexical, fused int
	finished              int
}

func (m *recordingMonitor) AfterDenseSearch(n int)   { m.dense = n }
func (m *recordingMonitor) AfterLexicalSearch(n int) { m.lexical = n }
func (m *recordingMonitor) AfterFusion(n int)        { m.fused = n }
func (m *recordingMonitor) Finish(r []core.EvidenceItem) {
	m.finished = len(r)
}

func TestHybridSearchWithMonitor(t *testing.T) {
	dense := imock.NewMockIndex(hits("a", "b")...)
	lexical := imock.NewMockIndex(hits("B", "c")...)
	e := newTestEngine(t, dense, lexical, WithReranker(mock.NewMockReranker()))
	m := &recordingMonitor{}

	_, err := e.HybridSearchWithMonitor(context.Background(), "q", 2, m)
	require.NoError(t, err)

	assert.Equal(t, 2, m.dense)
	assert.Equal(t, 2, m.lexical)
	assert.Equal(t, 3, m.fused)
	assert.Equal(t, 2, m.finished)
}
