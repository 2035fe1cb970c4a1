// Package milvus provides a dense index on a Milvus collection.
package milvus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/index"
)

const (
	embeddingField = "embedding"
	contentField   = "content"
)

// Config identifies a Milvus collection.
type Config struct {
	Address    string        `yaml:"address"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
	// OutputFields are returned as hit metadata. The content field is always fetched.
	OutputFields []string `yaml:"output_fields"`
}

// Index is a DenseIndex backed by a Milvus collection.
type Index struct {
	client   *milvusclient.Client
	embedder ai.Embedder
	cfg      Config
	logger   *slog.Logger
}

var _ index.DenseIndex = (*Index)(nil)

// New connects to Milvus.
func New(ctx context.Context, cfg Config, embedder ai.Embedder) (*Index, error) {
	if embedder == nil {
		return nil, index.ErrEmbedderRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	connCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	c, err := milvusclient.New(connCtx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	return &Index{
		client:   c,
		embedder: embedder,
		cfg:      cfg,
		logger:   slog.Default().With("component", "milvus-index", "collection", cfg.Collection),
	}, nil
}

// Search embeds the query and returns the k nearest passages.
func (x *Index) Search(ctx context.Context, query string, k int) ([]index.Hit, error) {
	vector, err := x.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	loadTask, err := x.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(x.cfg.Collection))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	results, err := x.client.Search(ctx, milvusclient.NewSearchOption(
		x.cfg.Collection,
		k,
		[]entity.Vector{entity.FloatVector(vector)},
	).WithANNSField(embeddingField).
		WithSearchParam("nprobe", "16").
		WithOutputFields(x.outputFields()...))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []index.Hit{}, nil
	}
	hits := hitsFromColumns(results[0].ResultCount, results[0].Scores, results[0].Fields)
	x.logger.Debug("milvus search", "k", k, "hits", len(hits))
	return hits, nil
}

// Close releases the client connection.
func (x *Index) Close(ctx context.Context) error {
	return x.client.Close(ctx)
}

func (x *Index) outputFields() []string {
	fields := []string{contentField}
	for _, f := range x.cfg.OutputFields {
		if f != contentField {
			fields = append(fields, f)
		}
	}
	return fields
}

func hitsFromColumns(count int, scores []float32, fields []column.Column) []index.Hit {
	hits := make([]index.Hit, 0, count)
	for i := 0; i < count && i < len(scores); i++ {
		hit := index.Hit{Score: float64(scores[i]), Metadata: map[string]any{}}
		for _, field := range fields {
			switch col := field.(type) {
			case *column.ColumnVarChar:
				if i >= len(col.Data()) {
					continue
				}
				if col.Name() == contentField {
					hit.Text = col.Data()[i]
				} else {
					hit.Metadata[col.Name()] = col.Data()[i]
				}
			case *column.ColumnInt64:
				if i < len(col.Data()) {
					hit.Metadata[col.Name()] = col.Data()[i]
				}
			}
		}
		hits = append(hits, hit)
	}
	return hits
}
