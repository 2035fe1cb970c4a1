// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// Defaults for chunking and batching.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
	DefaultBatchSize    = 16
	defaultAttempts     = 3
	defaultBaseDelay    = 500 * time.Millisecond
)

// Pipeline splits documents into chunks and writes them to the dense store
// and every configured sink.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	pool            *ants.Pool
	processors      []processor
	sinks           []processor
	chunkSize       int
	chunkOverlap    int
	batchSize       int
	attempts        int
	baseDelay       time.Duration
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap, in runes.
// Default is DefaultChunkSize and DefaultChunkOverlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 || overlap < 0 || overlap >= size {
			return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunkSize, size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		p.batchSize = max(size, 1)
		return nil
	}
}

// WithRetry sets the embedding retry policy.
// Default is 3 attempts starting at 500ms.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		p.attempts = max(attempts, 1)
		p.baseDelay = baseDelay
		return nil
	}
}

// WithSink adds an index that receives every ingested chunk.
func WithSink(name string, sink ChunkSink) Option {
	return func(p *Pipeline) error {
		if sink == nil {
			return ErrSinkRequired
		}
		p.sinks = append(p.sinks, &sinkProcessor{label: name, sink: sink})
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(chunkRepository storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		pool:            pool,
		chunkSize:       DefaultChunkSize,
		chunkOverlap:    DefaultChunkOverlap,
		batchSize:       DefaultBatchSize,
		attempts:        defaultAttempts,
		baseDelay:       defaultBaseDelay,
		logger:          slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Processors are built after options so they get the final config.
	embeddingProc, err := newEmbeddingProcessor(chunkRepository, embedder, p.attempts, p.baseDelay, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.processors = append([]processor{embeddingProc}, p.sinks...)
	return p, nil
}

// Ingest chunks text and writes every chunk to the dense store and the
// sinks. It returns the number of chunks written. Failures of individual
// batches are joined into the returned error; other batches are still written.
func (p *Pipeline) Ingest(ctx context.Context, documentID, text string) (int, error) {
	pieces := Split(text, p.chunkSize, p.chunkOverlap)
	if len(pieces) == 0 {
		return 0, nil
	}
	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.NewChunk(documentID, i, piece)
	}
	p.logger.Info("ingesting document", "document", documentID, "chunks", len(chunks))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		batch := chunks[start:min(start+p.batchSize, len(chunks))]
		// Each processor gets its own copies; the embedding processor writes vectors.
		batches := make([][]*core.Chunk, len(p.processors))
		for i := range p.processors {
			batches[i] = batch
			if i > 0 {
				batches[i] = copyChunks(batch)
			}
		}
		for i, proc := range p.processors {
			own := batches[i]
			wg.Add(1)
			err := p.pool.Submit(func() {
				defer wg.Done()
				if err := proc.process(ctx, own...); err != nil {
					p.logger.Error("error processing chunks", "processor", proc.name(), "document", documentID, "err", err)
					fail(fmt.Errorf("%s: %w", proc.name(), err))
				}
			})
			if err != nil {
				wg.Done()
				fail(err)
			}
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func copyChunks(chunks []*core.Chunk) []*core.Chunk {
	out := make([]*core.Chunk, len(chunks))
	for i, c := range chunks {
		cp := *c
		cp.Metadata = maps.Clone(c.Metadata)
		out[i] = &cp
	}
	return out
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
