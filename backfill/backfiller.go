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
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lyricseeker/ai"
	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of songs embedded per API call
	BatchSize int

	// Concurrency is the number of batches embedded in parallel
	Concurrency int

	// MaxRetries is the maximum number of attempts for embedding API calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// ReportInterval is how often to report progress (number of songs)
	ReportInterval int

	// DryRun counts pending songs without embedding anything
	DryRun bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		Concurrency:    defaultConcurrency(),
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		ReportInterval: 10,
	}
}

// defaultConcurrency uses half the CPUs; embedding batches spend most of
// their time waiting on the API, not computing.
func defaultConcurrency() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive, got %v", c.RetryDelay)
	}
	if c.ReportInterval < 1 {
		return fmt.Errorf("report interval must be at least 1, got %d", c.ReportInterval)
	}
	return nil
}

// Backfiller embeds every song in the catalog that does not yet have a
// vector.
type Backfiller struct {
	songs     storage.SongRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *Iterator
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(songs storage.SongRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Backfiller, error) {
	if songs == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Backfiller{
		songs:     songs,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(songs, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewIterator(songs, config.BatchSize),
	}, nil
}

// Run embeds all pending songs. Batches are fetched sequentially through
// the id cursor and embedded concurrently on a worker pool. The first
// batch failure cancels the remaining work and is returned.
func (b *Backfiller) Run(ctx context.Context) error {
	total, err := b.songs.CountMissingEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending songs: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(b.progress, "All songs already have embeddings (0 pending)\n")
		return nil
	}

	if b.config.DryRun {
		fmt.Fprintf(b.progress, "Dry run: %d songs need embeddings (batch size: %d)\n",
			total, b.config.BatchSize)
		return nil
	}

	fmt.Fprintf(b.progress, "Starting backfill of %d songs (batch size: %d, workers: %d)\n",
		total, b.config.BatchSize, b.config.Concurrency)

	tracker := NewProgressTracker(b.progress, int(total), b.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(b.config.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	iterErr := b.iterator.ForEach(ctx, func(batch []*core.Song) error {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := b.processor.Process(ctx, batch); err != nil {
				fail(fmt.Errorf("failed to process batch: %w", err))
				return
			}
			tracker.Increment(len(batch))
		}); err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit batch: %w", err)
		}

		// Stop fetching once a worker has failed.
		mu.Lock()
		defer mu.Unlock()
		return firstErr
	})

	wg.Wait()

	mu.Lock()
	err = firstErr
	mu.Unlock()
	if err != nil {
		return err
	}
	if iterErr != nil {
		return iterErr
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(b.progress, "Backfill complete. Embedded %d songs in %v (%.1f songs/s)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
