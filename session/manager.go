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

// Package session implements the session context store used by the dispatch core.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// ErrRepositoryRequired indicates a Manager was built without a backend.
var ErrRepositoryRequired = errors.New("session repository is required")

// Manager layers question history and context helpers over a SessionRepository.
// Every helper is a read-modify-write of the stored session.
type Manager struct {
	repo   storage.SessionRepository
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger.With("component", "sessions")
		return nil
	}
}

// NewManager creates a Manager over repo.
func NewManager(repo storage.SessionRepository, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	m := &Manager{
		repo:   repo,
		logger: slog.Default().With("component", "sessions"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Get returns the session for id, creating it when absent. A non-empty
// question is appended to the history and the session is saved before return.
func (m *Manager) Get(ctx context.Context, id, question string) (*core.Session, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if question != "" {
		s.History = append(s.History, question)
		if err := m.repo.SaveSession(ctx, s); err != nil {
			return nil, err
		}
		m.logger.Debug("question recorded", "session", id, "history", len(s.History))
	}
	return s, nil
}

// Save replaces the stored session.
func (m *Manager) Save(ctx context.Context, s *core.Session) error {
	return m.repo.SaveSession(ctx, s)
}

// Clear removes the session; the next Get starts from defaults.
func (m *Manager) Clear(ctx context.Context, id string) error {
	return m.repo.DeleteSession(ctx, id)
}

func (m *Manager) update(ctx context.Context, id string, fn func(s *core.Session)) error {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	fn(s)
	return m.repo.SaveSession(ctx, s)
}

// SetEntity stores a single entity value, replacing any previous value.
func (m *Manager) SetEntity(ctx context.Context, id, category string, value core.EntityValue) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.Entities[category] = value
	})
}

// AddEntities merges entities into the session: list ∪ list, otherwise overwrite.
func (m *Manager) AddEntities(ctx context.Context, id string, entities map[string]core.EntityValue) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.Entities = core.MergeEntities(s.Entities, entities)
	})
}

// ClearEntities removes every entity from the session.
func (m *Manager) ClearEntities(ctx context.Context, id string) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.Entities = map[string]core.EntityValue{}
	})
}

// AddContextSummary appends a summary line.
func (m *Manager) AddContextSummary(ctx context.Context, id, summary string) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.ContextSummaries = append(s.ContextSummaries, summary)
	})
}

// ContextSummaries returns the stored summaries.
func (m *Manager) ContextSummaries(ctx context.Context, id string) ([]string, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ContextSummaries, nil
}

// SetVar stores a session variable.
func (m *Manager) SetVar(ctx context.Context, id, name string, value any) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.Vars[name] = value
	})
}

// Var returns a session variable, or def when unset.
func (m *Manager) Var(ctx context.Context, id, name string, def any) (any, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := s.Vars[name]; ok {
		return v, nil
	}
	return def, nil
}

// SetSources replaces the evidence stored in the session.
func (m *Manager) SetSources(ctx context.Context, id string, sources []core.EvidenceItem) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.Sources = core.CloneEvidence(sources)
		if s.Sources == nil {
			s.Sources = []core.EvidenceItem{}
		}
	})
}

// Sources returns the evidence stored in the session.
func (m *Manager) Sources(ctx context.Context, id string) ([]core.EvidenceItem, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Sources, nil
}

// ClearSources removes the stored evidence.
func (m *Manager) ClearSources(ctx context.Context, id string) error {
	return m.SetSources(ctx, id, nil)
}

// SetFullDocumentText attaches the full text of the working document.
func (m *Manager) SetFullDocumentText(ctx context.Context, id, text string) error {
	return m.update(ctx, id, func(s *core.Session) {
		s.FullDocumentText = text
	})
}

// FullDocumentText returns the attached document text, empty when none.
func (m *Manager) FullDocumentText(ctx context.Context, id string) (string, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return "", err
	}
	return s.FullDocumentText, nil
}
