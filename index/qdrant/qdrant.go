// Package qdrant provides a dense index on a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
)

// Config identifies a Qdrant collection.
type Config struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key"`
}

// Index is a DenseIndex backed by a Qdrant collection.
type Index struct {
	store  qdrant.Store
	logger *slog.Logger
}

var _ index.DenseIndex = (*Index)(nil)

// embedderAdapter exposes an ai.Embedder as a langchaingo embedder.
type embedderAdapter struct {
	embedder ai.Embedder
}

var _ embeddings.Embedder = (*embedderAdapter)(nil)

func (a *embedderAdapter) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return a.embedder.EmbedTexts(ctx, texts)
}

func (a *embedderAdapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return a.embedder.EmbedText(ctx, text)
}

// New connects to the collection described by cfg.
func New(cfg Config, embedder ai.Embedder) (*Index, error) {
	if embedder == nil {
		return nil, index.ErrEmbedderRequired
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("qdrant url %q: %w", cfg.URL, err)
	}
	opts := []qdrant.Option{
		qdrant.WithURL(*u),
		qdrant.WithCollectionName(cfg.Collection),
		qdrant.WithEmbedder(&embedderAdapter{embedder: embedder}),
	}
	if cfg.APIKey != "" {
		opts = append(opts, qdrant.WithAPIKey(cfg.APIKey))
	}
	store, err := qdrant.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Index{
		store:  store,
		logger: slog.Default().With("component", "qdrant-index", "collection", cfg.Collection),
	}, nil
}

// Search returns the k nearest passages to the query.
func (x *Index) Search(ctx context.Context, query string, k int) ([]index.Hit, error) {
	docs, err := x.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		x.logger.Error("similarity search failed", "err", err)
		return nil, err
	}
	return hitsFromDocuments(docs), nil
}

// AddChunks upserts chunks into the collection.
func (x *Index) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	docs := make([]schema.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = schema.Document{PageContent: c.Text, Metadata: c.Metadata}
	}
	_, err := x.store.AddDocuments(ctx, docs)
	return err
}

func hitsFromDocuments(docs []schema.Document) []index.Hit {
	hits := make([]index.Hit, len(docs))
	for i, d := range docs {
		hits[i] = index.Hit{Text: d.PageContent, Metadata: d.Metadata, Score: float64(d.Score)}
	}
	return hits
}
