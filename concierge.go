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

// Package concierge wires the retrieval-orchestration core from a
// configuration: session store, audit log, dense and lexical indexes, the
// fusion engine, the extraction cascade and the registered responders.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/ai/openai"
	"github.com/poiesic/concierge/config"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/fusion"
	"github.com/poiesic/concierge/index"
	"github.com/poiesic/concierge/index/milvus"
	"github.com/poiesic/concierge/index/qdrant"
	"github.com/poiesic/concierge/index/sqlite"
	"github.com/poiesic/concierge/ingestion"
	"github.com/poiesic/concierge/metrics"
	"github.com/poiesic/concierge/orchestrator"
	"github.com/poiesic/concierge/reembed"
	"github.com/poiesic/concierge/responder"
	"github.com/poiesic/concierge/session"
	"github.com/poiesic/concierge/storage"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/poiesic/concierge/storage/memory"
	"github.com/poiesic/concierge/storage/redis"
)

// ErrLocalStoreRequired is returned when ingestion or reembedding is
// requested without a local database holding the chunks.
var ErrLocalStoreRequired = errors.New("operation needs the local chunk store")

// System is an assembled concierge.
type System struct {
	cfg          *config.Config
	backend      *badger.Backend
	sessionRepo  storage.SessionRepository
	sessions     *session.Manager
	audit        storage.AuditLog
	chunks       storage.ChunkRepository
	dense        index.DenseIndex
	remote       ingestion.ChunkSink
	lexical      *sqlite.Index
	engine       *fusion.Engine
	orchestrator *orchestrator.Orchestrator
	counters     *metrics.Counters
	provider     ai.AIProvider
	closers      []func() error
	logger       *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	provider ai.AIProvider
	monitor  fusion.Monitor
	logger   *slog.Logger
}

// WithProvider replaces the AI provider built from the configuration.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithMonitor observes every hybrid search.
func WithMonitor(m fusion.Monitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open validates cfg and assembles a System. Close releases it.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	s := &System{cfg: cfg, logger: o.logger.With("component", "concierge")}
	if err := s.open(ctx, o); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *System) open(ctx context.Context, o *options) error {
	cfg := s.cfg
	var err error

	s.provider = o.provider
	if s.provider == nil {
		if s.provider, err = openai.NewProvider(&cfg.AI); err != nil {
			return fmt.Errorf("ai provider: %w", err)
		}
	}

	if cfg.NeedsBadger() {
		if s.backend, err = badger.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory); err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		s.chunks = badger.NewChunkRepository(s.backend)
	}

	if err := s.openSessions(ctx); err != nil {
		return err
	}
	if err := s.openAudit(); err != nil {
		return err
	}
	if err := s.openIndexes(ctx); err != nil {
		return err
	}

	engineOpts := []fusion.Option{
		fusion.WithRerankerFactory(func() (ai.Reranker, error) { return s.provider.Reranker(), nil }),
		fusion.WithDedupPrefix(cfg.Retrieval.DedupPrefix),
		fusion.WithOverFetch(cfg.Retrieval.OverFetch),
		fusion.WithLogger(s.logger),
	}
	if cfg.Retrieval.PoolSize > 0 {
		engineOpts = append(engineOpts, fusion.WithPoolSize(cfg.Retrieval.PoolSize))
	}
	if o.monitor != nil {
		engineOpts = append(engineOpts, fusion.WithMonitor(o.monitor))
	}
	var lexical index.LexicalIndex = index.Empty{}
	if s.lexical != nil {
		lexical = s.lexical
	}
	if s.engine, err = fusion.NewEngine(s.dense, lexical, engineOpts...); err != nil {
		return err
	}

	return s.assemble()
}

func (s *System) openSessions(ctx context.Context) error {
	cfg := s.cfg.Session
	var err error
	switch cfg.Backend {
	case config.BackendMemory:
		s.sessionRepo, err = memory.NewSessionRepository(memory.WithTTL(cfg.TTL))
	case config.BackendBadger:
		s.sessionRepo = badger.NewSessionRepository(s.backend)
	case config.BackendRedis:
		s.sessionRepo, err = redis.NewSessionRepository(ctx, redis.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.TTL,
		})
	}
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	s.sessions, err = session.NewManager(s.sessionRepo, session.WithLogger(s.logger.With("component", "sessions")))
	return err
}

func (s *System) openAudit() error {
	if s.cfg.Audit.Backend == config.BackendBadger {
		audit, err := badger.NewAuditRepository(s.backend)
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		s.audit = audit
		return nil
	}
	s.audit = memory.NewAuditLog()
	return nil
}

func (s *System) openIndexes(ctx context.Context) error {
	cfg := s.cfg
	embedder := s.provider.Embedder()
	var err error

	switch cfg.Index.Dense {
	case config.DenseLocal:
		s.dense, err = index.NewChunkIndex(s.chunks, embedder)
	case config.DenseQdrant:
		var q *qdrant.Index
		q, err = qdrant.New(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			Collection: cfg.Index.Qdrant.Collection,
			APIKey:     cfg.Index.Qdrant.APIKey,
		}, embedder)
		if err == nil {
			s.dense, s.remote = q, q
		}
	case config.DenseMilvus:
		var m *milvus.Index
		m, err = milvus.New(ctx, milvus.Config{
			Address:    cfg.Index.Milvus.Address,
			Username:   cfg.Index.Milvus.Username,
			Password:   cfg.Index.Milvus.Password,
			Database:   cfg.Index.Milvus.Database,
			Collection: cfg.Index.Milvus.Collection,
			Timeout:    cfg.Index.Milvus.Timeout,
		}, embedder)
		if err == nil {
			s.dense = m
			s.closers = append(s.closers, func() error { return m.Close(context.Background()) })
		}
	}
	if err != nil {
		return fmt.Errorf("dense index: %w", err)
	}

	path := cfg.LexicalPath()
	switch {
	case cfg.Index.LexicalReadOnly:
		s.lexical, err = sqlite.Open(path)
	case cfg.Storage.InMemory && !filepath.IsAbs(cfg.Index.LexicalPath):
		s.lexical, err = sqlite.Create(":memory:")
	default:
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		s.lexical, err = sqlite.Create(path)
	}
	if err != nil {
		return fmt.Errorf("lexical index: %w", err)
	}
	return nil
}

// assemble builds the responders and registers them with the orchestrator.
func (s *System) assemble() error {
	cfg := s.cfg

	search, err := responder.NewSearch(s.engine,
		responder.WithConfidenceThreshold(cfg.Retrieval.ConfidenceThreshold),
		responder.WithSearchTopK(cfg.Retrieval.TopK),
		responder.WithSearchLogger(s.logger))
	if err != nil {
		return err
	}
	synthesis, err := responder.NewSynthesis(s.engine, s.provider.Generator(),
		responder.WithSynthesisTopK(cfg.Retrieval.SynthesisTopK))
	if err != nil {
		return err
	}

	cascade, err := extraction.NewCascade(
		extraction.WithDefaultLanguage(cfg.Extraction.DefaultLanguage),
		extraction.WithLogger(s.logger))
	if err != nil {
		return err
	}
	extractOpts := []responder.ExtractionOption{
		responder.WithAutoSearch(search),
		responder.WithExtractionFilter(cfg.Extraction.Filter),
		responder.WithExtractionCredentials(cfg.Extraction.Persons),
	}
	if cfg.Extraction.UseGenerator {
		extractOpts = append(extractOpts, responder.WithExtractionFallback(s.provider.Generator()))
	}
	extract, err := responder.NewExtraction(cascade, extractOpts...)
	if err != nil {
		return err
	}

	feedback, err := responder.NewFeedback(s.audit)
	if err != nil {
		return err
	}
	verifier, err := responder.NewVerifier(s.provider.Evaluator(), s.audit)
	if err != nil {
		return err
	}

	sink, err := s.metricsSink()
	if err != nil {
		return err
	}
	s.orchestrator, err = orchestrator.New(s.sessions,
		orchestrator.WithVerifier(verifier),
		orchestrator.WithMetrics(sink),
		orchestrator.WithWebhookMarker(cfg.Dispatch.WebhookMarker),
		orchestrator.WithForcedSearchIntents(cfg.Dispatch.ForcedSearchIntents...),
		orchestrator.WithLogger(s.logger))
	if err != nil {
		return err
	}

	for _, r := range []responder.Responder{extract, search, synthesis, feedback, responder.NewWebhook(cfg.Dispatch.WebhookMarker)} {
		if err := s.orchestrator.Register(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) metricsSink() (metrics.Sink, error) {
	switch s.cfg.Metrics.Backend {
	case config.MetricsCounters:
		s.counters = metrics.NewCounters()
		return s.counters, nil
	case config.MetricsOTel:
		return metrics.NewOTel(nil)
	default:
		return metrics.Noop{}, nil
	}
}

// Handle answers a question. See orchestrator.Orchestrator.Handle.
func (s *System) Handle(ctx context.Context, question, sessionID string, override *core.WorkingContext) *core.Result {
	return s.orchestrator.Handle(ctx, question, sessionID, override)
}

// Search runs a hybrid search without the confidence gate.
func (s *System) Search(ctx context.Context, query string, topK int) ([]core.EvidenceItem, error) {
	return s.engine.HybridSearch(ctx, query, topK)
}

// SearchWithMonitor runs a hybrid search reporting each stage to monitor.
func (s *System) SearchWithMonitor(ctx context.Context, query string, topK int, monitor fusion.Monitor) ([]core.EvidenceItem, error) {
	return s.engine.HybridSearchWithMonitor(ctx, query, topK, monitor)
}

// Sessions returns the session store.
func (s *System) Sessions() *session.Manager {
	return s.sessions
}

// Audit returns the feedback and evaluation log.
func (s *System) Audit() storage.AuditLog {
	return s.audit
}

// Metrics returns the process counters. ok is false unless the counters
// backend is configured.
func (s *System) Metrics() (snapshot metrics.Snapshot, ok bool) {
	if s.counters == nil {
		return metrics.Snapshot{}, false
	}
	return s.counters.Snapshot(), true
}

// Config returns the configuration the system was opened with.
func (s *System) Config() *config.Config {
	return s.cfg
}

// NewIngestionPipeline returns a pipeline writing to the local chunk store,
// the lexical index unless it is read-only, and Qdrant when it is the dense
// index. The caller must Release it.
func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	if s.chunks == nil {
		return nil, ErrLocalStoreRequired
	}
	in := s.cfg.Ingestion
	base := []ingestion.Option{
		ingestion.WithChunking(in.ChunkSize, in.ChunkOverlap),
		ingestion.WithBatchSize(in.BatchSize),
		ingestion.WithLogger(s.logger),
	}
	if in.PoolSize > 0 {
		base = append(base, ingestion.WithPoolSize(in.PoolSize))
	}
	if !s.cfg.Index.LexicalReadOnly {
		base = append(base, ingestion.WithSink("lexical", s.lexical))
	}
	if s.remote != nil {
		base = append(base, ingestion.WithSink(s.cfg.Index.Dense, s.remote))
	}
	return ingestion.NewPipeline(s.chunks, s.provider.Embedder(), append(base, opts...)...)
}

// NewReembedder returns a reembedder over the local chunk store using the
// configured embedder.
func (s *System) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if s.chunks == nil {
		return nil, ErrLocalStoreRequired
	}
	return reembed.NewReembedder(s.chunks, s.provider.Embedder(), cfg, progress)
}

// Close releases every component. It reports the first error and logs the rest.
func (s *System) Close() error {
	var errs []error
	record := func(what string, err error) {
		if err != nil {
			s.logger.Error("error closing "+what, "err", err)
			errs = append(errs, err)
		}
	}

	if s.engine != nil {
		s.engine.Release()
	}
	for _, c := range s.closers {
		record("index", c())
	}
	if s.lexical != nil {
		record("lexical index", s.lexical.Close())
	}
	if s.audit != nil {
		record("audit log", s.audit.Close())
	}
	if s.sessionRepo != nil {
		record("session store", s.sessionRepo.Close())
	}
	if s.provider != nil {
		record("AI provider", s.provider.Close())
	}
	if s.backend != nil {
		record("backend storage", s.backend.Close())
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
