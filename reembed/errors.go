package reembed

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when no chunk store is given.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")
	// ErrEmbedderRequired is returned when no embedder is given.
	ErrEmbedderRequired = errors.New("embedder is required")
)
