package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// embeddingProcessor embeds chunks and stores them in the local dense store.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	attempts        int
	baseDelay       time.Duration
	logger          *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, embedder ai.Embedder, attempts int, baseDelay time.Duration, logger *slog.Logger) (*embeddingProcessor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		attempts:        max(attempts, 1),
		baseDelay:       baseDelay,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) name() string { return "embeddings" }

// process embeds the chunk texts, retrying transient failures, and stores
// the chunks with their vectors.
func (ep *embeddingProcessor) process(ctx context.Context, chunks ...*core.Chunk) error {
	texts := core.ChunkTexts(chunks)

	ep.logger.Debug("generating embeddings for chunks", "chunks", len(texts))
	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = ep.embedder.EmbedTexts(ctx, texts)
		return err
	}, ep.attempts, ep.baseDelay)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range embeddings {
		chunks[i].Vector = core.NormalizeVector(embeddings[i])
	}
	return ep.chunkRepository.AddChunks(ctx, chunks...)
}
