package backfill

import "errors"

var (
	// ErrRepositoryRequired is returned when a song repository is not provided.
	ErrRepositoryRequired = errors.New("song repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
