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

// Package ingestion splits documents into chunks and fills the retrieval
// indexes with them.
//
// The Pipeline embeds each batch of chunks into the local dense store and
// hands the same batch to every configured sink (for example the FTS5 lexical
// index or a remote vector store). Batches are processed concurrently on a
// worker pool; Ingest returns once every batch has been written.
package ingestion
