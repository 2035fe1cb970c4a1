package reembed

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          atomic.Int32
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1, 2, 2}
	}
	return result, nil
}

func setupChunks(t *testing.T, n int) *badger.MemoryRepositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	for i := 0; i < n; i++ {
		c := core.NewChunk("doc.txt", i, "passage")
		c.Vector = []float32{0, 0, 1}
		require.NoError(t, repos.Chunks.AddChunks(context.Background(), c))
	}
	return repos
}

func TestNewReembedder_Validation(t *testing.T) {
	repos := setupChunks(t, 0)
	_, err := NewReembedder(nil, &mockEmbedder{}, nil, nil)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	_, err = NewReembedder(repos.Chunks, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestReembedder_Run(t *testing.T) {
	repos := setupChunks(t, 7)
	embedder := &mockEmbedder{}
	var out bytes.Buffer
	r, err := NewReembedder(repos.Chunks, embedder, &Config{BatchSize: 3, ReportInterval: 1, MaxRetries: 1}, &out)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, int32(3), embedder.calls.Load())
	assert.Contains(t, out.String(), "Reembedding complete. Processed 7 chunks")

	chunks, err := repos.Chunks.ListChunks(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 7)
	for _, c := range chunks {
		assert.InDeltaSlice(t, []float32{1.0 / 3, 2.0 / 3, 2.0 / 3}, c.Vector, 1e-6)
	}
}

func TestReembedder_EmptyStore(t *testing.T) {
	repos := setupChunks(t, 0)
	embedder := &mockEmbedder{}
	var out bytes.Buffer
	r, err := NewReembedder(repos.Chunks, embedder, nil, &out)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, embedder.calls.Load())
	assert.Contains(t, out.String(), "No chunks to reembed")
}

func TestReembedder_Retry(t *testing.T) {
	repos := setupChunks(t, 2)
	failures := 1
	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("temporary")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{3, 4}
		}
		return out, nil
	}
	r, err := NewReembedder(repos.Chunks, embedder, &Config{BatchSize: 10, MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), embedder.calls.Load())
}

func TestReembedder_StopsOnError(t *testing.T) {
	repos := setupChunks(t, 4)
	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model unavailable")
	}
	r, err := NewReembedder(repos.Chunks, embedder, &Config{BatchSize: 2, MaxRetries: 2, RetryDelay: time.Millisecond}, nil)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.Zero(t, n)
	assert.Equal(t, int32(2), embedder.calls.Load())
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repos := setupChunks(t, 0)
	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	bp := NewBatchProcessor(repos.Chunks, embedder, 1, 0)
	err := bp.Process(context.Background(), []*core.Chunk{core.NewChunk("d", 0, "a"), core.NewChunk("d", 1, "b")})
	assert.ErrorContains(t, err, "embedding count mismatch")

	assert.NoError(t, bp.Process(context.Background(), nil))
}

func TestChunkIterator_Cancelled(t *testing.T) {
	repos := setupChunks(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewChunkIterator(repos.Chunks, 1).ForEach(ctx, func([]*core.Chunk) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkIterator_Batches(t *testing.T) {
	repos := setupChunks(t, 5)
	var sizes []int
	err := NewChunkIterator(repos.Chunks, 2).ForEach(context.Background(), func(batch []*core.Chunk) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}
