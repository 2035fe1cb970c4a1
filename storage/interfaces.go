package storage

import (
	"context"

	"github.com/poiesic/concierge/core"
)

// SessionRepository persists session state keyed by session id.
// Implementations must be thread-safe and support concurrent access.
type SessionRepository interface {
	// GetSession returns the stored session. An absent session is created with
	// empty defaults, persisted, and returned.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// SaveSession replaces the stored session with the given state.
	SaveSession(ctx context.Context, session *core.Session) error

	// DeleteSession removes a session. Deleting an absent session is not an error.
	DeleteSession(ctx context.Context, id string) error

	// Close releases resources held by the backend.
	Close() error
}

// AuditSink durably records feedback and automatic evaluation events.
// Records are append-only.
type AuditSink interface {
	RecordFeedback(ctx context.Context, event *core.FeedbackEvent) error
	RecordEvaluation(ctx context.Context, event *core.EvaluationEvent) error
}

// AuditLog is an AuditSink that can also list what it recorded.
type AuditLog interface {
	AuditSink

	// ListFeedback returns up to limit feedback events, newest first.
	// A limit of zero or less returns every event.
	ListFeedback(ctx context.Context, limit int) ([]*core.FeedbackEvent, error)

	// ListEvaluations returns up to limit evaluation events, newest first.
	ListEvaluations(ctx context.Context, limit int) ([]*core.EvaluationEvent, error)

	Close() error
}

// ChunkRepository stores embedded document chunks and searches them by vector.
type ChunkRepository interface {
	// AddChunks inserts or replaces chunks by ID.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// ListChunks returns every stored chunk ordered by key. An after of
	// zero starts at the beginning; otherwise listing resumes after that ID.
	// limit <= 0 means no limit.
	ListChunks(ctx context.Context, after core.ID, limit int) ([]*core.Chunk, error)

	Close() error
}
