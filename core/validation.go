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

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateSearchQuery validates a SearchQuery according to domain rules.
//
// Validation rules:
//   - Text must be non-empty after trimming and at most MaxQueryChars runes
//   - Limit must be within [1, MaxSearchLimit]
//   - Threshold must be within [0.0, 1.0]
//
// A validation failure is terminal: callers must not invoke the embedder
// or the store afterwards.
func ValidateSearchQuery(query *SearchQuery) error {
	if query == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQuery)
	}
	if utf8.RuneCountInString(text) > MaxQueryChars {
		return fmt.Errorf("%w: %w (max %d characters)", ErrInvalidQuery, ErrQueryTooLong, MaxQueryChars)
	}

	if query.Limit < 1 || query.Limit > MaxSearchLimit {
		return fmt.Errorf("%w: %w (want 1..%d, got %d)", ErrInvalidQuery, ErrLimitOutOfRange, MaxSearchLimit, query.Limit)
	}

	if query.Threshold < 0.0 || query.Threshold > 1.0 {
		return fmt.Errorf("%w: %w (want 0..1, got %v)", ErrInvalidQuery, ErrThresholdOutOfRange, query.Threshold)
	}

	return nil
}

// ValidateSong validates a Song before insertion.
//
// Validation rules:
//   - Artist, Title and Lyrics must be non-empty after trimming
//
// NOT validated (populated later):
//   - Embedding (nil until the backfill runs)
//   - Id (0 is valid until the store assigns one)
func ValidateSong(song *Song) error {
	if song == nil {
		return fmt.Errorf("%w: song is nil", ErrInvalidSong)
	}

	if strings.TrimSpace(song.Artist) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyArtist)
	}

	if strings.TrimSpace(song.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyTitle)
	}

	if strings.TrimSpace(song.Lyrics) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyLyrics)
	}

	return nil
}
