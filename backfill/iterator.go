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


package backfill

import (
	"context"

	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

const (
	// DefaultBatchSize is the default number of songs fetched and embedded
	// per batch.
	DefaultBatchSize = 50
)

// Iterator walks the songs that still need an embedding, in batches.
type Iterator struct {
	songs     storage.SongRepository
	batchSize int
}

// NewIterator creates an iterator over songs missing embeddings.
// batchSize: number of songs fetched per batch (must be > 0)
func NewIterator(songs storage.SongRepository, batchSize int) *Iterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Iterator{
		songs:     songs,
		batchSize: batchSize,
	}
}

// ForEach calls fn once per batch of pending songs, in ascending id order.
// The id cursor advances past every fetched batch, so songs embedded by a
// concurrent worker are never fetched twice. Iteration stops on the first
// error from fn, on context cancellation, or once no pending songs remain.
func (it *Iterator) ForEach(ctx context.Context, fn func([]*core.Song) error) error {
	var cursor int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := it.songs.ListMissingEmbeddings(ctx, cursor, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		cursor = batch[len(batch)-1].Id

		if err := fn(batch); err != nil {
			return err
		}
	}
}
