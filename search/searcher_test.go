package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lyricseeker/ai/mock"
	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
	"github.com/poiesic/lyricseeker/storage/sqlite"
)

const testDimensions = 3

func newTestRepo(t *testing.T) storage.SongRepository {
	t.Helper()
	repo, err := sqlite.NewMemoryRepository(testDimensions)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addSong(t *testing.T, repo storage.SongRepository, title string, embedding []float32) *core.Song {
	t.Helper()
	song := &core.Song{
		Artist:    "Test Artist",
		Title:     title,
		Lyrics:    "lyrics of " + title,
		Embedding: embedding,
	}
	song.FullText = core.BuildFullText(song.Title, song.Artist, song.Lyrics)
	require.NoError(t, repo.AddSongs(context.Background(), song))
	return song
}

// fixedEmbedder returns a mock whose EmbedText always yields vector.
func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return m
}

func newQuery(text string) core.SearchQuery {
	return core.SearchQuery{
		Text:      text,
		Limit:     core.DefaultSearchLimit,
		Threshold: core.DefaultSearchThreshold,
	}
}

func TestNewSearcher(t *testing.T) {
	repo := newTestRepo(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid overfetch factor", func(t *testing.T) {
		_, err := NewSearcher(repo, embedder, WithOverfetchFactor(0))
		assert.Error(t, err)
	})

	t.Run("invalid store timeout", func(t *testing.T) {
		_, err := NewSearcher(repo, embedder, WithStoreTimeout(0))
		assert.Error(t, err)
	})
}

func TestSearch_EmptyCatalog(t *testing.T) {
	repo := newTestRepo(t)
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	response, err := searcher.Search(context.Background(), newQuery("anything"))
	require.NoError(t, err)
	assert.Empty(t, response.Results)
	assert.Zero(t, response.TotalResults)
	assert.Equal(t, "anything", response.Query)
}

func TestSearch_RankingAndThreshold(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Query [1,0,0]: similarities 1.0, ~0.707 and 0.0.
	exact := addSong(t, repo, "Exact Match", []float32{1, 0, 0})
	partial := addSong(t, repo, "Partial Match", []float32{1, 1, 0})
	addSong(t, repo, "Unrelated", []float32{0, 1, 0})
	addSong(t, repo, "Not Embedded", nil)

	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	response, err := searcher.Search(ctx, newQuery("the query"))
	require.NoError(t, err)

	require.Len(t, response.Results, 2, "scores below the threshold are dropped")
	assert.Equal(t, 2, response.TotalResults)

	assert.Equal(t, exact.Id, response.Results[0].Song.Id)
	assert.InDelta(t, 1.0, response.Results[0].Similarity, 1e-6)

	assert.Equal(t, partial.Id, response.Results[1].Song.Id)
	assert.InDelta(t, 0.70711, response.Results[1].Similarity, 1e-4)

	assert.GreaterOrEqual(t, response.ProcessingTimeMs, 0.0)
}

func TestSearch_ThresholdBoundaryPasses(t *testing.T) {
	repo := newTestRepo(t)

	// cos([1,0,0], [1,1,0]) is exactly 1/sqrt(2).
	addSong(t, repo, "Boundary", []float32{1, 1, 0})

	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	query := newQuery("boundary")
	query.Threshold = 0.7071
	response, err := searcher.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, response.Results, 1, "similarity equal to or above the threshold passes")
}

func TestSearch_TieBreakIsDeterministic(t *testing.T) {
	repo := newTestRepo(t)

	twin := []float32{0, 0, 1}
	first := addSong(t, repo, "First Twin", twin)
	second := addSong(t, repo, "Second Twin", twin)

	searcher, err := NewSearcher(repo, fixedEmbedder(twin))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		response, err := searcher.Search(context.Background(), newQuery("twins"))
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
		assert.Equal(t, first.Id, response.Results[0].Song.Id)
		assert.Equal(t, second.Id, response.Results[1].Song.Id)
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 8; i++ {
		addSong(t, repo, "Song", []float32{1, 0, 0})
	}

	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	query := newQuery("query")
	query.Limit = 5
	response, err := searcher.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, response.Results, 5)
	assert.Equal(t, 5, response.TotalResults)
}

func TestSearch_InvalidQuerySkipsEmbedder(t *testing.T) {
	repo := newTestRepo(t)
	embedder := mock.NewMockEmbedder()
	searcher, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query core.SearchQuery
		cause error
	}{
		{"empty text", core.SearchQuery{Text: "   ", Limit: 10, Threshold: 0.5}, core.ErrEmptyQuery},
		{"limit too high", core.SearchQuery{Text: "q", Limit: 51, Threshold: 0.5}, core.ErrLimitOutOfRange},
		{"limit zero", core.SearchQuery{Text: "q", Limit: 0, Threshold: 0.5}, core.ErrLimitOutOfRange},
		{"threshold above one", core.SearchQuery{Text: "q", Limit: 10, Threshold: 1.5}, core.ErrThresholdOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := searcher.Search(context.Background(), tt.query)
			assert.ErrorIs(t, err, core.ErrInvalidQuery)
			assert.ErrorIs(t, err, tt.cause)
		})
	}

	assert.Zero(t, embedder.CallCount(), "invalid queries must not reach the embedder")
}

func TestSearch_EmbedderFailure(t *testing.T) {
	repo := newTestRepo(t)
	addSong(t, repo, "Song", []float32{1, 0, 0})

	failing := mock.NewMockEmbedder()
	failing.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("provider down")
	}

	searcher, err := NewSearcher(repo, failing)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), newQuery("query"))
	assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
}

func TestSearch_StoreFailure(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Close())

	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), newQuery("query"))
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestSearch_TokenEmbedderEndToEnd(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewTokenEmbedder(64)

	about := "heartbreak and sadness all too well"
	unrelated := "dancing in the summer sun forever"

	aboutVec, err := embedder.EmbedText(ctx, about)
	require.NoError(t, err)
	unrelatedVec, err := embedder.EmbedText(ctx, unrelated)
	require.NoError(t, err)

	repo, err := sqlite.NewMemoryRepository(64)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	match := &core.Song{Artist: "A", Title: "Sad Song", Lyrics: about, FullText: about, Embedding: aboutVec}
	other := &core.Song{Artist: "B", Title: "Happy Song", Lyrics: unrelated, FullText: unrelated, Embedding: unrelatedVec}
	require.NoError(t, repo.AddSongs(ctx, match, other))

	searcher, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	response, err := searcher.Search(ctx, newQuery("heartbreak and sadness"))
	require.NoError(t, err)

	require.NotEmpty(t, response.Results)
	assert.Equal(t, "Sad Song", response.Results[0].Song.Title)
	for _, result := range response.Results {
		assert.GreaterOrEqual(t, result.Similarity, core.DefaultSearchThreshold)
	}
}

func TestSearchWithMonitor(t *testing.T) {
	repo := newTestRepo(t)
	addSong(t, repo, "Song", []float32{1, 0, 0})

	monitor := &testMonitor{}
	searcher, err := NewSearcher(repo, fixedEmbedder([]float32{1, 0, 0}), WithMonitor(monitor))
	require.NoError(t, err)

	t.Run("stages fire on success", func(t *testing.T) {
		_, err := searcher.Search(context.Background(), newQuery("query"))
		require.NoError(t, err)
		assert.True(t, monitor.received)
		assert.True(t, monitor.embedded)
		assert.True(t, monitor.fetched)
		assert.True(t, monitor.completed)
		assert.Empty(t, monitor.failedStage)
	})

	t.Run("failure reports the stage", func(t *testing.T) {
		monitor2 := &testMonitor{}
		failing := mock.NewMockEmbedder()
		failing.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("boom")
		}
		s, err := NewSearcher(repo, failing, WithMonitor(monitor2))
		require.NoError(t, err)

		_, err = s.Search(context.Background(), newQuery("query"))
		require.Error(t, err)
		assert.Equal(t, StageEmbed, monitor2.failedStage)
		assert.False(t, monitor2.completed)
	})
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	received    bool
	embedded    bool
	fetched     bool
	completed   bool
	failedStage Stage
}

func (m *testMonitor) QueryReceived(_ string) { m.received = true }

func (m *testMonitor) QueryEmbedded(_ int, _ time.Duration) { m.embedded = true }

func (m *testMonitor) CandidatesFetched(_ int, _ time.Duration) { m.fetched = true }

func (m *testMonitor) SearchCompleted(_ []core.SearchResult, _ time.Duration) { m.completed = true }

func (m *testMonitor) SearchFailed(stage Stage, _ error) { m.failedStage = stage }

func TestRoundMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want float64
	}{
		{"sub-millisecond", 1234 * time.Microsecond, 1.23},
		{"rounds up", 1235 * time.Microsecond, 1.24},
		{"whole", 25 * time.Millisecond, 25.0},
		{"zero", 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundMilliseconds(tt.d))
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, clampScore(1.2))
	assert.Equal(t, 0.0, clampScore(-0.5))
	assert.Equal(t, 0.5, clampScore(0.5))
}
