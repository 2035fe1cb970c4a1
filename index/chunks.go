package index

import (
	"context"
	"log/slog"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/storage"
)

// ChunkIndex is a DenseIndex over a ChunkRepository.
type ChunkIndex struct {
	repo          storage.ChunkRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

var _ DenseIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates a dense index over locally stored chunks.
func NewChunkIndex(repo storage.ChunkRepository, embedder ai.Embedder) (*ChunkIndex, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &ChunkIndex{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: -1,
		logger:        slog.Default().With("component", "chunk-index"),
	}, nil
}

// Search embeds the query and returns the k most similar chunks.
func (c *ChunkIndex) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	vector, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		c.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	matches, err := c.repo.FindSimilar(ctx, vector, c.minSimilarity, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(matches))
	for i, m := range matches {
		hits[i] = Hit{Text: m.Chunk.Text, Metadata: m.Chunk.Metadata, Score: float64(m.Score)}
	}
	return hits, nil
}
