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

// Package index defines the retrieval index contracts consumed by the fusion
// engine, plus a dense index over locally stored chunks.
package index

import (
	"context"
	"errors"
)

// ErrEmbedderRequired indicates a dense index was built without an embedder.
var ErrEmbedderRequired = errors.New("embedder is required")

// ErrRepositoryRequired indicates a chunk index was built without a repository.
var ErrRepositoryRequired = errors.New("chunk repository is required")

// Hit is a single retrieval result.
type Hit struct {
	Text     string
	Metadata map[string]any
	Score    float64
}

// DenseIndex retrieves passages by vector similarity to the query.
type DenseIndex interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// LexicalIndex retrieves passages by keyword match against the query.
// An index that was never built returns no hits and no error.
type LexicalIndex interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// Empty is an index with no documents.
type Empty struct{}

// Search returns no hits.
func (Empty) Search(context.Context, string, int) ([]Hit, error) {
	return nil, nil
}
