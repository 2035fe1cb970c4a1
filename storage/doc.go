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

// Package storage provides the storage abstraction layer for concierge.
//
// The package defines repository contracts that decouple persistence from the
// dispatch core:
//
//   - SessionRepository: per-session context state
//   - AuditSink / AuditLog: append-only feedback and evaluation records
//   - ChunkRepository: embedded document chunks for the local dense index
//
// # Backends
//
//   - storage/memory: volatile, process-local (go-cache); optional TTL
//   - storage/badger: durable, embedded (BadgerDB)
//   - storage/redis: durable, networked (Redis); optional TTL
//
// All backends expose read-modify-write semantics: GetSession returns a copy,
// and changes become visible to other readers only after SaveSession.
//
// # Serialization
//
// Sessions, audit events and chunks are stored as JSON encoded with sonic.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
