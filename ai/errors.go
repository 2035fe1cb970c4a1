package ai

import "errors"

var (
	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("model returned no content")

	// ErrNoScore indicates a scoring response carried no number.
	ErrNoScore = errors.New("no score in model response")

	// ErrInvalidMaxAttempts indicates a retry budget below one.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
