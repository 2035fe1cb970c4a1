package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// AuditRepository implements storage.AuditLog for BadgerDB.
// Records are keyed by a monotonic sequence and never rewritten.
type AuditRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.AuditLog = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(backend *Backend) (*AuditRepository, error) {
	seq, err := backend.GetSequence(auditSeq)
	if err != nil {
		return nil, err
	}
	return &AuditRepository{backend: backend, seq: seq}, nil
}

// Close releases the sequence.
func (r *AuditRepository) Close() error {
	return r.seq.Release()
}

// RecordFeedback appends a feedback event.
func (r *AuditRepository) RecordFeedback(_ context.Context, event *core.FeedbackEvent) error {
	value, err := storage.MarshalFeedback(event)
	if err != nil {
		return err
	}
	return r.append(feedbackPrefix, value)
}

// RecordEvaluation appends an evaluation event.
func (r *AuditRepository) RecordEvaluation(_ context.Context, event *core.EvaluationEvent) error {
	value, err := storage.MarshalEvaluation(event)
	if err != nil {
		return err
	}
	return r.append(evaluationPrefix, value)
}

func (r *AuditRepository) append(prefix string, value []byte) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	next, err := r.seq.Next()
	if err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeAuditKey(prefix, next), value)
	})
}

// ListFeedback returns feedback events, newest first.
func (r *AuditRepository) ListFeedback(_ context.Context, limit int) ([]*core.FeedbackEvent, error) {
	return listNewest(r.backend, feedbackPrefix, limit, storage.UnmarshalFeedback)
}

// ListEvaluations returns evaluation events, newest first.
func (r *AuditRepository) ListEvaluations(_ context.Context, limit int) ([]*core.EvaluationEvent, error) {
	return listNewest(r.backend, evaluationPrefix, limit, storage.UnmarshalEvaluation)
}

func listNewest[T any](b *Backend, prefix string, limit int, decode func([]byte) (*T, error)) ([]*T, error) {
	var out []*T
	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration starts from the greatest key under the prefix.
		seekKey := append([]byte(prefix), bytes.Repeat([]byte{0xFF}, 9)...)
		for iter.Seek(seekKey); iter.ValidForPrefix([]byte(prefix)); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				v, err := decode(val)
				if err != nil {
					return err
				}
				out = append(out, v)
				return nil
			})
			if err != nil {
				return err
			}
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	}, false)
	return out, err
}
