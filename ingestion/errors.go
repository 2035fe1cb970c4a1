package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidChunkSize is returned for a non-positive chunk size or an
	// overlap not smaller than the chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrSinkRequired is returned when a nil sink is registered.
	ErrSinkRequired = errors.New("chunk sink required")
)
