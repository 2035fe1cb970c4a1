// Package redis provides a networked session backend on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "concierge:session:"

// SessionRepository implements storage.SessionRepository on Redis.
// Each session is one JSON string value.
type SessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// Options holds Redis connection settings.
type Options struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces session keys. Default "concierge:session:".
	KeyPrefix string
	// TTL expires sessions not saved within the duration. Zero disables expiry.
	TTL time.Duration
}

// NewSessionRepository connects to Redis and verifies the connection.
func NewSessionRepository(ctx context.Context, opts Options) (*SessionRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return newSessionRepository(client, opts), nil
}

func newSessionRepository(client *redis.Client, opts Options) *SessionRepository {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SessionRepository{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
		logger: slog.Default().With("component", "redis-sessions"),
	}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

// GetSession returns the stored session, creating and persisting defaults when absent.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.Session, error) {
	if id == "" {
		return nil, storage.ErrInvalidSessionID
	}
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == nil {
		return storage.UnmarshalSession(data)
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	fresh := core.NewSession(id)
	value, err := storage.MarshalSession(fresh)
	if err != nil {
		return nil, err
	}
	created, err := r.client.SetNX(ctx, r.key(id), value, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !created {
		r.logger.Debug("session created concurrently", "session", id)
		return r.GetSession(ctx, id)
	}
	return fresh, nil
}

// SaveSession replaces the stored session and refreshes its TTL.
func (r *SessionRepository) SaveSession(ctx context.Context, session *core.Session) error {
	if session == nil || session.ID == "" {
		return storage.ErrInvalidSessionID
	}
	session.Touch()
	value, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(session.ID), value, r.ttl).Err()
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Close closes the client connection pool.
func (r *SessionRepository) Close() error {
	return r.client.Close()
}
