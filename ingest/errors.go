package ingest

import "errors"

var (
	// ErrRepositoryRequired is returned when a song repository is not provided.
	ErrRepositoryRequired = errors.New("song repository required")

	// ErrMissingColumns is returned when the CSV header lacks a required column.
	ErrMissingColumns = errors.New("required csv columns missing")
)
