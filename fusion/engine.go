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

package fusion

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index"
)

const (
	// DefaultDedupPrefix is the number of leading characters compared for dedup.
	DefaultDedupPrefix = 120
	// DefaultOverFetch multiplies topK for each underlying index query.
	DefaultOverFetch = 2
)

// Engine runs hybrid dense and lexical retrieval with pairwise reranking.
// An Engine is safe for concurrent use.
type Engine struct {
	dense       index.DenseIndex
	lexical     index.LexicalIndex
	reranker    func() (ai.Reranker, error)
	pool        *ants.Pool
	dedupPrefix int
	overFetch   int
	monitor     Monitor
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithReranker sets the pair scoring model.
func WithReranker(r ai.Reranker) Option {
	return func(e *Engine) error {
		if r == nil {
			return ErrRerankerRequired
		}
		e.reranker = func() (ai.Reranker, error) { return r, nil }
		return nil
	}
}

// WithRerankerFactory defers construction of the pair scoring model to the
// first search. The factory runs at most once and its result, including an
// error, is shared by every caller.
func WithRerankerFactory(factory func() (ai.Reranker, error)) Option {
	return func(e *Engine) error {
		if factory == nil {
			return ErrRerankerRequired
		}
		e.reranker = sync.OnceValues(factory)
		return nil
	}
}

// WithDedupPrefix sets how many leading characters identify a duplicate.
// Default is 120.
func WithDedupPrefix(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return ErrInvalidDedupPrefix
		}
		e.dedupPrefix = n
		return nil
	}
}

// WithOverFetch sets the factor applied to topK for each index query.
// Default is 2.
func WithOverFetch(factor int) Option {
	return func(e *Engine) error {
		if factor < 1 {
			return ErrInvalidOverFetch
		}
		e.overFetch = factor
		return nil
	}
}

// WithPoolSize sets the worker pool size for index queries and pair scoring.
// Default is runtime.NumCPU(), with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithMonitor sets the default search monitor.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = &noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "fusion")
		return nil
	}
}

// NewEngine creates a fusion engine. A nil lexical index searches nothing.
func NewEngine(dense index.DenseIndex, lexical index.LexicalIndex, opts ...Option) (*Engine, error) {
	if dense == nil {
		return nil, ErrDenseIndexRequired
	}
	if lexical == nil {
		lexical = index.Empty{}
	}

	poolSize := max(runtime.NumCPU(), 2)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		dense:       dense,
		lexical:     lexical,
		pool:        pool,
		dedupPrefix: DefaultDedupPrefix,
		overFetch:   DefaultOverFetch,
		monitor:     &noopMonitor{},
		logger:      slog.Default().With("component", "fusion"),
	}
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}
	if e.reranker == nil {
		e.Release()
		return nil, ErrRerankerRequired
	}
	return e, nil
}

// HybridSearch returns at most topK evidence items for query, ordered by
// descending rerank score.
func (e *Engine) HybridSearch(ctx context.Context, query string, topK int) ([]core.EvidenceItem, error) {
	return e.HybridSearchWithMonitor(ctx, query, topK, nil)
}

// HybridSearchWithMonitor is HybridSearch reporting to monitor instead of the
// engine's default monitor.
func (e *Engine) HybridSearchWithMonitor(ctx context.Context, query string, topK int, monitor Monitor) ([]core.EvidenceItem, error) {
	if monitor == nil {
		monitor = e.monitor
	}
	monitor.Start(query, topK)
	if topK <= 0 {
		monitor.Finish(nil)
		return []core.EvidenceItem{}, nil
	}

	k := e.overFetch * topK
	var (
		wg                   sync.WaitGroup
		denseHits, lexHits   []index.Hit
		denseErr, lexicalErr error
	)
	wg.Add(2)
	if err := e.submit(func() {
		defer wg.Done()
		denseHits, denseErr = e.dense.Search(ctx, query, k)
	}); err != nil {
		wg.Done()
		wg.Done()
		return nil, err
	}
	if err := e.submit(func() {
		defer wg.Done()
		lexHits, lexicalErr = e.lexical.Search(ctx, query, k)
	}); err != nil {
		wg.Done()
		wg.Wait()
		return nil, err
	}
	wg.Wait()

	if denseErr != nil {
		e.logger.Error("dense search failed", "err", denseErr)
		return nil, denseErr
	}
	if lexicalErr != nil {
		e.logger.Error("lexical search failed", "err", lexicalErr)
		return nil, lexicalErr
	}
	monitor.AfterDenseSearch(len(denseHits))
	monitor.AfterLexicalSearch(len(lexHits))

	fused := Fuse(e.dedupPrefix, toEvidence(denseHits, core.OriginDense), toEvidence(lexHits, core.OriginLexical))
	monitor.AfterFusion(len(fused))

	results, err := e.Rerank(ctx, query, fused, topK)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}

// Rerank scores every item against query, sorts by descending score and
// keeps the first topK. Items with equal scores keep their input order.
// Items whose pair score fails are dropped; Rerank fails only when every
// pair fails.
func (e *Engine) Rerank(ctx context.Context, query string, items []core.EvidenceItem, topK int) ([]core.EvidenceItem, error) {
	if len(items) == 0 || topK <= 0 {
		return []core.EvidenceItem{}, nil
	}
	reranker, err := e.reranker()
	if err != nil {
		e.logger.Error("reranker unavailable", "err", err)
		return nil, err
	}

	scored := core.CloneEvidence(items)
	errs := make([]error, len(scored))
	var wg sync.WaitGroup
	for i := range scored {
		wg.Add(1)
		if err := e.submit(func() {
			defer wg.Done()
			scored[i].RerankScore, errs[i] = reranker.Score(ctx, query, scored[i].Text)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	kept := scored[:0]
	for i, item := range scored {
		if errs[i] != nil {
			e.logger.Warn("dropping passage after pair scoring failed", "err", errs[i])
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		err := errors.Join(errs...)
		e.logger.Error("pair scoring failed", "err", err)
		return nil, err
	}
	scored = kept

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RerankScore > scored[j].RerankScore
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	for i := range scored {
		scored[i].Score = math.Round(scored[i].RerankScore*1e4) / 1e4
	}
	return scored, nil
}

func (e *Engine) submit(task func()) error {
	return e.pool.Submit(task)
}

// Release releases the worker pool.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}
