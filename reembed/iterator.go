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

package reembed

import (
	"context"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// DefaultBatchSize is the number of chunks fetched and embedded together.
const DefaultBatchSize = 64

// ChunkIterator pages through every stored chunk.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates an iterator. A non-positive batchSize uses DefaultBatchSize.
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn with successive batches until the store is exhausted,
// fn fails or ctx is cancelled.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := it.repo.ListChunks(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < it.batchSize {
			return nil
		}
		after = batch[len(batch)-1].ID
	}
}
