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

// Package config loads the concierge configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/fusion"
	"github.com/poiesic/concierge/ingestion"
	"github.com/poiesic/concierge/orchestrator"
	"github.com/poiesic/concierge/responder"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"

	DenseLocal  = "local"
	DenseQdrant = "qdrant"
	DenseMilvus = "milvus"

	MetricsCounters = "counters"
	MetricsOTel     = "otel"
	MetricsNone     = "none"
)

// Config is the full concierge configuration.
type Config struct {
	AI         ai.Config        `yaml:"ai"`
	Storage    StorageConfig    `yaml:"storage"`
	Session    SessionConfig    `yaml:"session"`
	Audit      AuditConfig      `yaml:"audit"`
	Index      IndexConfig      `yaml:"index"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// StorageConfig locates the local Badger database shared by the badger
// session backend, the badger audit log and the local dense store.
type StorageConfig struct {
	Path string `yaml:"path"`
	// InMemory keeps the database in memory. Used by tests and demos.
	InMemory bool `yaml:"in_memory"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	// Backend is memory, badger or redis.
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
	// TTL expires idle sessions in the memory and redis backends. Zero keeps them.
	TTL time.Duration `yaml:"ttl"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AuditConfig selects where feedback and evaluations are recorded.
type AuditConfig struct {
	// Backend is memory or badger.
	Backend string `yaml:"backend"`
}

// IndexConfig selects the dense index and locates the lexical one.
type IndexConfig struct {
	// Dense is local, qdrant or milvus.
	Dense  string       `yaml:"dense"`
	Qdrant QdrantConfig `yaml:"qdrant"`
	Milvus MilvusConfig `yaml:"milvus"`
	// LexicalPath is the SQLite FTS5 database. Relative paths resolve
	// against Storage.Path. An absent file yields no lexical hits.
	LexicalPath string `yaml:"lexical_path"`
	// LexicalReadOnly opens an index maintained elsewhere. It is never
	// created and ingestion does not write to it.
	LexicalReadOnly bool `yaml:"lexical_read_only"`
}

// QdrantConfig holds Qdrant settings.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key"`
}

// MilvusConfig holds Milvus settings.
type MilvusConfig struct {
	Address    string        `yaml:"address"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RetrievalConfig tunes hybrid search and the confidence gate.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SynthesisTopK       int     `yaml:"synthesis_top_k"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	DedupPrefix         int     `yaml:"dedup_prefix"`
	OverFetch           int     `yaml:"over_fetch"`
	// PoolSize bounds concurrent index and scoring calls. Zero picks a default.
	PoolSize int `yaml:"pool_size"`
}

// ExtractionConfig tunes the entity extraction cascade.
type ExtractionConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	Filter          bool   `yaml:"filter"`
	// UseGenerator enables the generic model stage through the AI generator.
	UseGenerator bool `yaml:"use_generator"`
	// Persons enables the person-only model stage when set.
	Persons *ai.Credentials `yaml:"persons"`
}

// DispatchConfig tunes the orchestrator.
type DispatchConfig struct {
	WebhookMarker       string   `yaml:"webhook_marker"`
	ForcedSearchIntents []string `yaml:"forced_search_intents"`
}

// IngestionConfig tunes document chunking.
type IngestionConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	BatchSize    int `yaml:"batch_size"`
	PoolSize     int `yaml:"pool_size"`
}

// MetricsConfig selects the metrics sink.
type MetricsConfig struct {
	// Backend is counters, otel or none.
	Backend string `yaml:"backend"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		AI:      *ai.DefaultConfig(),
		Storage: StorageConfig{Path: "concierge-data"},
		Session: SessionConfig{Backend: BackendMemory},
		Audit:   AuditConfig{Backend: BackendBadger},
		Index: IndexConfig{
			Dense:       DenseLocal,
			LexicalPath: "lexical.db",
		},
		Retrieval: RetrievalConfig{
			TopK:                responder.DefaultSearchTopK,
			SynthesisTopK:       responder.DefaultSynthesisTopK,
			ConfidenceThreshold: responder.DefaultConfidenceThreshold,
			DedupPrefix:         fusion.DefaultDedupPrefix,
			OverFetch:           fusion.DefaultOverFetch,
		},
		Extraction: ExtractionConfig{
			DefaultLanguage: extraction.DefaultLanguage,
			Filter:          true,
		},
		Dispatch: DispatchConfig{
			WebhookMarker:       responder.DefaultWebhookMarker,
			ForcedSearchIntents: slices.Clone(orchestrator.DefaultForcedSearchIntents),
		},
		Ingestion: IngestionConfig{
			ChunkSize:    ingestion.DefaultChunkSize,
			ChunkOverlap: ingestion.DefaultChunkOverlap,
			BatchSize:    ingestion.DefaultBatchSize,
		},
		Metrics: MetricsConfig{Backend: MetricsCounters},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path loads only the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("CONCIERGE_API_TOKEN"); token != "" {
		c.AI.APIToken = token
	}
	if host := os.Getenv("CONCIERGE_AI_HOST"); host != "" {
		c.AI.EmbeddingHost = host
		c.AI.GeneratorHost = host
	}
	if path := os.Getenv("CONCIERGE_DATA"); path != "" {
		c.Storage.Path = path
	}
	if addr := os.Getenv("CONCIERGE_REDIS_ADDR"); addr != "" {
		c.Session.Redis.Addr = addr
	}
}

// LexicalPath returns the lexical index path resolved against the storage path.
func (c *Config) LexicalPath() string {
	p := c.Index.LexicalPath
	if p == "" || filepath.IsAbs(p) || c.Storage.Path == "" {
		return p
	}
	return filepath.Join(c.Storage.Path, p)
}

// NeedsBadger reports whether any component stores data in the local database.
func (c *Config) NeedsBadger() bool {
	return c.Session.Backend == BackendBadger || c.Audit.Backend == BackendBadger || c.Index.Dense == DenseLocal
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.AI.Validate(); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains([]string{BackendMemory, BackendBadger, BackendRedis}, c.Session.Backend) {
		errs = append(errs, fmt.Errorf("session config: unknown backend %q", c.Session.Backend))
	}
	if c.Session.Backend == BackendRedis && c.Session.Redis.Addr == "" {
		errs = append(errs, errors.New("session config: redis addr is required"))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session config: ttl must not be negative"))
	}
	if !slices.Contains([]string{BackendMemory, BackendBadger}, c.Audit.Backend) {
		errs = append(errs, fmt.Errorf("audit config: unknown backend %q", c.Audit.Backend))
	}
	if c.NeedsBadger() && c.Storage.Path == "" && !c.Storage.InMemory {
		errs = append(errs, errors.New("storage config: path is required"))
	}

	switch c.Index.Dense {
	case DenseLocal:
	case DenseQdrant:
		if c.Index.Qdrant.URL == "" || c.Index.Qdrant.Collection == "" {
			errs = append(errs, errors.New("index config: qdrant url and collection are required"))
		}
	case DenseMilvus:
		if c.Index.Milvus.Address == "" || c.Index.Milvus.Collection == "" {
			errs = append(errs, errors.New("index config: milvus address and collection are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("index config: unknown dense index %q", c.Index.Dense))
	}

	r := c.Retrieval
	if r.TopK < 1 || r.SynthesisTopK < 1 {
		errs = append(errs, errors.New("retrieval config: top_k values must be positive"))
	}
	if r.ConfidenceThreshold < 0 {
		errs = append(errs, errors.New("retrieval config: confidence_threshold must not be negative"))
	}
	if r.DedupPrefix < 1 {
		errs = append(errs, errors.New("retrieval config: dedup_prefix must be positive"))
	}
	if r.OverFetch < 1 {
		errs = append(errs, errors.New("retrieval config: over_fetch must be at least 1"))
	}
	if r.PoolSize < 0 {
		errs = append(errs, errors.New("retrieval config: pool_size must not be negative"))
	}

	if c.Extraction.DefaultLanguage == "" {
		errs = append(errs, errors.New("extraction config: default_language is required"))
	}
	if p := c.Extraction.Persons; p != nil && !p.Valid() {
		errs = append(errs, errors.New("extraction config: persons credentials need a token and a model"))
	}

	in := c.Ingestion
	if in.ChunkSize < 1 || in.ChunkOverlap < 0 || in.ChunkOverlap >= in.ChunkSize {
		errs = append(errs, errors.New("ingestion config: need 0 <= chunk_overlap < chunk_size"))
	}

	if !slices.Contains([]string{MetricsCounters, MetricsOTel, MetricsNone}, c.Metrics.Backend) {
		errs = append(errs, fmt.Errorf("metrics config: unknown backend %q", c.Metrics.Backend))
	}
	return errors.Join(errs...)
}
