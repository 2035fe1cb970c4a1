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

package badger

// MemoryRepositories bundles repositories sharing one in-memory backend.
type MemoryRepositories struct {
	Backend  *Backend
	Sessions *SessionRepository
	Audit    *AuditRepository
	Chunks   *ChunkRepository
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must call Close when done.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	audit, err := NewAuditRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Backend:  backend,
		Sessions: NewSessionRepository(backend),
		Audit:    audit,
		Chunks:   NewChunkRepository(backend),
	}, nil
}

// Close releases the repositories and the backend.
func (m *MemoryRepositories) Close() error {
	if err := m.Audit.Close(); err != nil {
		return err
	}
	return m.Backend.Close()
}
