package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// SessionRepository keeps sessions in process memory.
// Stored sessions are copied on read and write so callers see the same
// read-modify-write semantics as the durable backends.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// Option configures a SessionRepository.
type Option func(*SessionRepository) error

// WithTTL expires sessions that have not been saved for ttl.
// Zero keeps sessions for the lifetime of the process.
func WithTTL(ttl time.Duration) Option {
	return func(r *SessionRepository) error {
		r.ttl = ttl
		return nil
	}
}

// NewSessionRepository creates an in-memory session repository.
func NewSessionRepository(opts ...Option) (*SessionRepository, error) {
	r := &SessionRepository{}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if r.ttl > 0 {
		expiration = r.ttl
		cleanup = r.ttl / 2
	}
	r.cache = cache.New(expiration, cleanup)
	return r, nil
}

// GetSession returns a copy of the stored session, creating it when absent.
func (r *SessionRepository) GetSession(_ context.Context, id string) (*core.Session, error) {
	if id == "" {
		return nil, storage.ErrInvalidSessionID
	}
	if v, ok := r.cache.Get(id); ok {
		return v.(*core.Session).Clone(), nil
	}
	fresh := core.NewSession(id)
	if err := r.cache.Add(id, fresh.Clone(), cache.DefaultExpiration); err != nil {
		// Another caller created it first.
		if v, ok := r.cache.Get(id); ok {
			return v.(*core.Session).Clone(), nil
		}
	}
	return fresh, nil
}

// SaveSession stores a copy of the session.
func (r *SessionRepository) SaveSession(_ context.Context, session *core.Session) error {
	if session == nil || session.ID == "" {
		return storage.ErrInvalidSessionID
	}
	session.Touch()
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	return nil
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

// Close drops every stored session.
func (r *SessionRepository) Close() error {
	r.cache.Flush()
	return nil
}
