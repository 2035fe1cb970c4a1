package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepository connects to REDIS_ADDR or skips.
func newTestRepository(t *testing.T, ttl time.Duration) *SessionRepository {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	repo, err := NewSessionRepository(context.Background(), Options{
		Addr:      addr,
		KeyPrefix: "concierge:test:" + uuid.NewString() + ":",
		TTL:       ttl,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t, 0)
	ctx := context.Background()

	s, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.History)

	s.History = append(s.History, "q1")
	require.NoError(t, repo.SaveSession(ctx, s))

	loaded, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, loaded.History)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	fresh, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.History)
}

func TestSessionRepository_TTL(t *testing.T) {
	repo := newTestRepository(t, time.Second)
	ctx := context.Background()

	s, _ := repo.GetSession(ctx, "s1")
	s.History = append(s.History, "q1")
	require.NoError(t, repo.SaveSession(ctx, s))

	ttl, err := repo.client.TTL(ctx, repo.key("s1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewSessionRepository_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewSessionRepository(ctx, Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
