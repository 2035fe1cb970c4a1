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

package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `yaml:"embedding_host"`

	// GeneratorHost is the base URL for the chat completion service used for
	// synthesis, pair scoring, evaluation and entity extraction.
	GeneratorHost string `yaml:"generator_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string `yaml:"embedding_model"`

	// GeneratorModel is the model identifier used for answer synthesis.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	GeneratorModel string `yaml:"generator_model"`

	// RerankerModel scores (query, passage) pairs. Defaults to GeneratorModel.
	RerankerModel string `yaml:"reranker_model"`

	// EvaluatorModel grades answers. Defaults to GeneratorModel.
	EvaluatorModel string `yaml:"evaluator_model"`

	// APIToken is sent as the bearer token. Local servers accept "none".
	APIToken string `yaml:"api_token"`

	// MaxTokens caps generated answers.
	// Default: 512
	MaxTokens int `yaml:"max_tokens"`
}

// Credentials identify a chat model endpoint.
type Credentials struct {
	Host  string `yaml:"host"`
	Token string `yaml:"token"`
	Model string `yaml:"model"`
}

// Valid reports whether the credentials carry a token and a model.
func (c *Credentials) Valid() bool {
	return c != nil && c.Token != "" && c.Model != ""
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the chat completion service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModel sets the synthesis model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithRerankerModel sets the pair scoring model identifier.
func WithRerankerModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankerModel = model
	}
}

// WithEvaluatorModel sets the evaluation model identifier.
func WithEvaluatorModel(model string) ConfigOption {
	return func(c *Config) {
		c.EvaluatorModel = model
	}
}

// WithAPIToken sets the bearer token.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithMaxTokens sets the generation cap.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		GeneratorHost:  defaultHost,
		EmbeddingModel: "embeddinggemma",
		GeneratorModel: "qwen2.5:3b",
		APIToken:       "none",
		MaxTokens:      512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithGeneratorModel("mistral"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing and fills model defaults.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.GeneratorHost = normalizeHost(c.GeneratorHost)
	if c.RerankerModel == "" {
		c.RerankerModel = c.GeneratorModel
	}
	if c.EvaluatorModel == "" {
		c.EvaluatorModel = c.GeneratorModel
	}
	if c.APIToken == "" {
		c.APIToken = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Credentials returns the generator endpoint as credentials.
func (c *Config) Credentials() Credentials {
	return Credentials{Host: c.GeneratorHost, Token: c.APIToken, Model: c.GeneratorModel}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	var errs []error
	if c.EmbeddingHost == "" {
		errs = append(errs, errors.New("ai config: EmbeddingHost is required"))
	}
	if c.GeneratorHost == "" {
		errs = append(errs, errors.New("ai config: GeneratorHost is required"))
	}
	if c.EmbeddingModel == "" {
		errs = append(errs, errors.New("ai config: EmbeddingModel is required"))
	}
	if c.GeneratorModel == "" {
		errs = append(errs, errors.New("ai config: GeneratorModel is required"))
	}
	if c.MaxTokens < 1 {
		errs = append(errs, errors.New("ai config: MaxTokens must be positive"))
	}
	return errors.Join(errs...)
}
