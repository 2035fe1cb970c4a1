package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Each session is one JSON value keyed by its id.
type SessionRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a session repository on a shared backend.
// The caller keeps ownership of the backend.
func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{backend: backend}
}

// OpenSessionRepository opens a dedicated backend at path.
// Closing the repository closes the backend.
func OpenSessionRepository(path string) (*SessionRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &SessionRepository{backend: backend, owned: true}, nil
}

// GetSession returns the stored session, creating and persisting defaults when absent.
func (r *SessionRepository) GetSession(_ context.Context, id string) (*core.Session, error) {
	if id == "" {
		return nil, storage.ErrInvalidSessionID
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var session *core.Session
	err := r.backend.Update(func(tx *badger.Txn) error {
		key := makeSessionKey(id)
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			session = core.NewSession(id)
			value, err := storage.MarshalSession(session)
			if err != nil {
				return err
			}
			return tx.Set(key, value)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			session, err = storage.UnmarshalSession(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SaveSession replaces the stored session.
func (r *SessionRepository) SaveSession(_ context.Context, session *core.Session) error {
	if session == nil || session.ID == "" {
		return storage.ErrInvalidSessionID
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	session.Touch()
	value, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeSessionKey(session.ID), value)
	})
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(_ context.Context, id string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Delete(makeSessionKey(id))
	})
}

// Close closes the backend when the repository owns it.
func (r *SessionRepository) Close() error {
	if r.owned {
		return r.backend.Close()
	}
	return nil
}
