package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/poiesic/lyricseeker/ai"
	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

// Search tuning defaults.
const (
	// DefaultOverfetchFactor is how many candidates are fetched per
	// requested result. Threshold filtering drops candidates after the
	// store query, so fetching exactly limit rows would underfill pages.
	DefaultOverfetchFactor = 3

	// DefaultStoreTimeout bounds one nearest-neighbor query.
	DefaultStoreTimeout = 5 * time.Second
)

// Searcher provides semantic similarity search over the song catalog.
type Searcher struct {
	songs    storage.SongRepository
	embedder ai.Embedder
	monitor  SearchMonitor
	logger   *slog.Logger

	overfetchFactor int
	storeTimeout    time.Duration
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor installs a stage monitor.
// Default is a no-op monitor.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithOverfetchFactor sets how many candidates are fetched per requested
// result before threshold filtering. Must be at least 1.
func WithOverfetchFactor(factor int) Option {
	return func(s *Searcher) error {
		if factor < 1 {
			return fmt.Errorf("overfetch factor must be at least 1, got %d", factor)
		}
		s.overfetchFactor = factor
		return nil
	}
}

// WithStoreTimeout bounds the nearest-neighbor query.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return fmt.Errorf("store timeout must be positive, got %v", timeout)
		}
		s.storeTimeout = timeout
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(songs storage.SongRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if songs == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		songs:           songs,
		embedder:        embedder,
		monitor:         &noopMonitor{},
		logger:          slog.Default(),
		overfetchFactor: DefaultOverfetchFactor,
		storeTimeout:    DefaultStoreTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs one similarity search. The query must already carry its
// limit and threshold; callers resolve defaults before this point.
//
// A validation failure returns before the embedder is called; an
// embedding failure returns before the store is queried. Zero matches is
// a success with an empty result list, never an error.
func (s *Searcher) Search(ctx context.Context, query core.SearchQuery) (*core.SearchResponse, error) {
	if err := core.ValidateSearchQuery(&query); err != nil {
		return nil, err
	}

	s.monitor.QueryReceived(query.Text)
	start := time.Now()

	vector, err := s.embedder.EmbedText(ctx, query.Text)
	if err != nil {
		s.monitor.SearchFailed(StageEmbed, err)
		s.logger.Error("error generating embedding for query", "query", query.Text, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)
	}
	s.monitor.QueryEmbedded(len(vector), time.Since(start))

	fetchStart := time.Now()
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	neighbors, err := s.songs.NearestNeighbors(storeCtx, vector, query.Limit*s.overfetchFactor)
	if err != nil {
		s.monitor.SearchFailed(StageFetch, err)
		s.logger.Error("error querying for similar songs", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	s.monitor.CandidatesFetched(len(neighbors), time.Since(fetchStart))

	results := rankNeighbors(neighbors, query.Threshold, query.Limit)
	elapsed := time.Since(start)

	response := &core.SearchResponse{
		Query:            query.Text,
		Results:          results,
		TotalResults:     len(results),
		ProcessingTimeMs: roundMilliseconds(elapsed),
	}
	s.monitor.SearchCompleted(results, elapsed)

	return response, nil
}

// rankNeighbors converts store distances into similarity scores, applies
// the threshold, and orders the final page. A candidate passes when its
// similarity is greater than or equal to the threshold.
func rankNeighbors(neighbors []storage.Neighbor, threshold float64, limit int) []core.SearchResult {
	results := make([]core.SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		similarity := clampScore(1 - n.Distance)
		if similarity < threshold {
			continue
		}
		results = append(results, core.SearchResult{
			Song:       n.Song,
			Similarity: similarity,
		})
	}

	// Sort by similarity descending; equal scores resolve by ascending id
	// so identical requests always return the same ordering.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Song.Id < results[j].Song.Id
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// clampScore forces a similarity into [0, 1]. Cosine distance ranges up
// to 2; anything past orthogonal carries no ranking signal here.
func clampScore(similarity float64) float64 {
	return math.Max(0, math.Min(1, similarity))
}

// roundMilliseconds reports a duration as milliseconds with two decimals.
func roundMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}
