package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/concierge/ai/mock"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index/sqlite"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps every chunk it receives.
type recordingSink struct {
	mu     sync.Mutex
	chunks []*core.Chunk
	err    error
}

func (s *recordingSink) AddChunks(_ context.Context, chunks ...*core.Chunk) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func setupRepositories(t *testing.T) *badger.MemoryRepositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestNewPipeline(t *testing.T) {
	repos := setupRepositories(t)

	_, err := NewPipeline(nil, mock.NewMockEmbedder())
	assert.Equal(t, ErrChunkRepositoryRequired, err)

	_, err = NewPipeline(repos.Chunks, nil)
	assert.Equal(t, ErrEmbedderRequired, err)

	_, err = NewPipeline(repos.Chunks, mock.NewMockEmbedder(), WithChunking(10, 10))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = NewPipeline(repos.Chunks, mock.NewMockEmbedder(), WithSink("nil", nil))
	assert.Equal(t, ErrSinkRequired, err)

	p, err := NewPipeline(repos.Chunks, mock.NewMockEmbedder(), WithPoolSize(2), WithLogger(nil))
	require.NoError(t, err)
	p.Release()
}

func TestPipeline_Ingest(t *testing.T) {
	repos := setupRepositories(t)
	embedder := mock.NewMockEmbedder()
	sink := &recordingSink{}
	p, err := NewPipeline(repos.Chunks, embedder,
		WithChunking(40, 0),
		WithBatchSize(2),
		WithSink("recording", sink),
	)
	require.NoError(t, err)
	defer p.Release()
	ctx := context.Background()

	text := "Le bail est conclu pour trois ans.\n\nLe loyer mensuel est de 800 €.\n\n" +
		"Le dépôt de garantie est de deux mois.\n\nLe preneur assure le logement."
	n, err := p.Ingest(ctx, "bail.txt", text)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	count, err := repos.Chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Len(t, sink.chunks, 4)
	assert.Equal(t, 2, embedder.CallCount())

	stored, err := repos.Chunks.GetChunk(ctx, core.NewChunk("bail.txt", 1, "").ID)
	require.NoError(t, err)
	assert.Equal(t, "Le loyer mensuel est de 800 €.", stored.Text)
	assert.Len(t, stored.Vector, 384)

	for _, c := range sink.chunks {
		assert.Empty(t, c.Vector, "sinks receive their own copies")
	}
}

func TestPipeline_IngestEmpty(t *testing.T) {
	repos := setupRepositories(t)
	p, err := NewPipeline(repos.Chunks, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	n, err := p.Ingest(context.Background(), "vide.txt", "  \n\n ")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPipeline_EmbedderRetry(t *testing.T) {
	repos := setupRepositories(t)
	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("temporarily unavailable")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.GenerateDeterministicVector(text, 8)
		}
		return out, nil
	}
	p, err := NewPipeline(repos.Chunks, embedder, WithPoolSize(1), WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	defer p.Release()

	n, err := p.Ingest(context.Background(), "doc.txt", "Une seule phrase.")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls)
}

func TestPipeline_SinkErrorIsReported(t *testing.T) {
	repos := setupRepositories(t)
	boom := errors.New("disk full")
	p, err := NewPipeline(repos.Chunks, mock.NewMockEmbedder(), WithSink("broken", &recordingSink{err: boom}))
	require.NoError(t, err)
	defer p.Release()
	ctx := context.Background()

	_, err = p.Ingest(ctx, "doc.txt", "Contenu du document.")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")

	count, err := repos.Chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the dense store is still written")
}

func TestPipeline_LexicalSink(t *testing.T) {
	repos := setupRepositories(t)
	fts, err := sqlite.Create(filepath.Join(t.TempDir(), "fts.db"))
	require.NoError(t, err)
	defer fts.Close()

	p, err := NewPipeline(repos.Chunks, mock.NewMockEmbedder(), WithSink("lexical", fts))
	require.NoError(t, err)
	defer p.Release()
	ctx := context.Background()

	_, err = p.Ingest(ctx, "bail.txt", "Clause de résiliation anticipée.\n\nLoyer payable d'avance.")
	require.NoError(t, err)

	hits, err := fts.Search(ctx, "resiliation", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Clause de résiliation anticipée.", hits[0].Text)
}

func TestSplit(t *testing.T) {
	t.Run("paragraphs under the limit stay whole", func(t *testing.T) {
		got := Split("Premier  paragraphe.\r\n\r\nSecond\nparagraphe.", 100, 10)
		assert.Equal(t, []string{"Premier paragraphe.", "Second paragraphe."}, got)
	})

	t.Run("long paragraphs break on words", func(t *testing.T) {
		got := Split("un deux trois quatre cinq six", 10, 0)
		assert.Equal(t, []string{"un deux", "trois", "quatre", "cinq six"}, got)
		for _, c := range got {
			assert.LessOrEqual(t, len([]rune(c)), 10)
		}
	})

	t.Run("overlap carries trailing words", func(t *testing.T) {
		got := Split("aa bb cc dd ee", 8, 3)
		assert.Equal(t, []string{"aa bb cc", "cc dd ee"}, got)
	})

	t.Run("words longer than the limit are cut", func(t *testing.T) {
		got := Split("abcdefghij", 4, 0)
		assert.Equal(t, []string{"abcd", "efgh", "ij"}, got)
	})

	t.Run("runes are counted, not bytes", func(t *testing.T) {
		got := Split("éééé ààà", 8, 0)
		assert.Equal(t, []string{"éééé ààà"}, got)
	})

	assert.Nil(t, Split("texte", 0, 0))
	assert.Empty(t, Split(strings.Repeat(" ", 5), 10, 0))
}
