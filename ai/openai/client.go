package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/concierge/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client    llms.Model
	maxTokens int
	logger    *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

func newGenerator(creds ai.Credentials, maxTokens int, component string) (*Generator, error) {
	client, err := openai.New(
		openai.WithBaseURL(creds.Host),
		openai.WithToken(creds.Token),
		openai.WithModel(creds.Model),
	)
	if err != nil {
		return nil, err
	}
	if maxTokens < 1 {
		maxTokens = ai.DefaultConfig().MaxTokens
	}
	return &Generator{
		client:    client,
		maxTokens: maxTokens,
		logger:    slog.Default().With("component", component, "model", creds.Model),
	}, nil
}

// NewGenerator creates a generator for the configured synthesis model.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newGenerator(config.Credentials(), config.MaxTokens, "openai-generator")
}

// NewGeneratorFromCredentials creates a generator bound to explicit credentials.
// An empty host defaults to the public OpenAI endpoint.
func NewGeneratorFromCredentials(creds ai.Credentials) (ai.Generator, error) {
	if creds.Host == "" {
		creds.Host = "https://api.openai.com/v1"
	}
	return newGenerator(creds, 0, "openai-generator")
}

// Generate sends a single system+user exchange at temperature 0.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	maxTokens := g.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	opts := []llms.CallOption{llms.WithTemperature(0.0), llms.WithMaxTokens(maxTokens)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model")
		return "", ai.ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}
