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

package mock

import "github.com/poiesic/concierge/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockGenerator
	reranker  *MockReranker
	evaluator *MockEvaluator
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a new mock provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		generator: NewMockGenerator(),
		reranker:  NewMockReranker(),
		evaluator: NewMockEvaluator(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder { return p.embedder }

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator { return p.generator }

// Reranker returns the mock reranker.
func (p *MockProvider) Reranker() ai.Reranker { return p.reranker }

// Evaluator returns the mock evaluator.
func (p *MockProvider) Evaluator() ai.Evaluator { return p.evaluator }

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error { return nil }

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder { return p.embedder }

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator { return p.generator }

// GetMockReranker returns the underlying mock reranker for test assertions.
func (p *MockProvider) GetMockReranker() *MockReranker { return p.reranker }

// GetMockEvaluator returns the underlying mock evaluator for test assertions.
func (p *MockProvider) GetMockEvaluator() *MockEvaluator { return p.evaluator }
