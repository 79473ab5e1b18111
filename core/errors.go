// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Failure kinds surfaced by the search path. The API layer maps each kind
// to a distinct HTTP status and machine-readable code.
var (
	// ErrInvalidQuery indicates a request failed validation.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrEmbeddingUnavailable indicates the embedding provider call failed
	// or timed out.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStoreUnavailable indicates the song store could not be reached or
	// a query against it failed.
	ErrStoreUnavailable = errors.New("song store unavailable")

	// ErrRateLimited indicates the caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotFound indicates a catalog lookup missed.
	ErrNotFound = errors.New("not found")
)

// Field-level validation causes. Each is wrapped together with
// ErrInvalidQuery or ErrInvalidSong so callers can match either level.
var (
	// ErrEmptyQuery indicates the query text is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooLong indicates the query text exceeds MaxQueryChars.
	ErrQueryTooLong = errors.New("query too long")

	// ErrLimitOutOfRange indicates the limit is outside [1, MaxSearchLimit].
	ErrLimitOutOfRange = errors.New("limit out of range")

	// ErrThresholdOutOfRange indicates the threshold is outside [0, 1].
	ErrThresholdOutOfRange = errors.New("threshold out of range")

	// ErrInvalidSong indicates a Song failed validation.
	ErrInvalidSong = errors.New("invalid song")

	// ErrEmptyArtist indicates the Artist field is empty.
	ErrEmptyArtist = errors.New("artist cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyLyrics indicates the Lyrics field is empty.
	ErrEmptyLyrics = errors.New("lyrics cannot be empty")
)
