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

	"github.com/poiesic/concierge/core"
)

// processor is an internal interface for writing chunk batches to one index.
type processor interface {
	// process writes the chunks to the processor's index.
	process(ctx context.Context, chunks ...*core.Chunk) error

	// name identifies the processor in logs and errors.
	name() string
}

// ChunkSink is an index that accepts chunks as they are ingested.
type ChunkSink interface {
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error
}

// sinkProcessor forwards chunks to a ChunkSink unchanged.
type sinkProcessor struct {
	label string
	sink  ChunkSink
}

var _ processor = (*sinkProcessor)(nil)

func (sp *sinkProcessor) process(ctx context.Context, chunks ...*core.Chunk) error {
	return sp.sink.AddChunks(ctx, chunks...)
}

func (sp *sinkProcessor) name() string { return sp.label }
