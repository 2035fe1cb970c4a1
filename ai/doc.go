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

// Package ai provides abstractions for the model-backed services used by concierge.
//
// The package defines four oracles:
//
//   - Embedder: turns text into vectors for dense retrieval
//   - Generator: produces answers and structured JSON from prompts
//   - Reranker: scores a (query, passage) pair; higher is more relevant
//   - Evaluator: grades an answer for pertinence and clarity
//
// AIProvider aggregates them behind a single lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible services through langchaingo
//   - ai/mock: test doubles with injectable behavior and call counters
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return interface types to keep callers
// decoupled from the concrete client:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test constructors in ai/mock return concrete types so tests can inject
// behavior and assert on call counts:
//
//	gen := mock.NewMockGenerator()  // returns *mock.MockGenerator
//	gen.GenerateFunc = ...
//	count := gen.CallCount()
//
// # Helpers
//
// CleanJSON, ParseScore and StringList normalize model output. RetryWithBackoff
// retries flaky calls with exponential backoff.
package ai
