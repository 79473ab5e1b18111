package ai

import "errors"

var (
	// ErrEmptyText indicates the input text was empty after trimming.
	// Callers are expected to validate first; this is the backstop.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrProviderFailure indicates the embedding provider call failed:
	// network error, non-2xx response, timeout, or a malformed reply.
	ErrProviderFailure = errors.New("embedding provider request failed")

	// ErrDimensionMismatch indicates the provider returned a vector whose
	// width disagrees with the configured Dimensions. This is a
	// configuration error (wrong model or wrong store schema), not a
	// transient fault.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
