package storage

import (
	"context"

	"github.com/poiesic/lyricseeker/core"
)

// Neighbor is one nearest-neighbor candidate: a song and its cosine
// distance from the query vector. Smaller distance means closer.
type Neighbor struct {
	Song     *core.Song
	Distance float64
}

// SongFilter narrows and pages catalog listings.
type SongFilter struct {
	// Offset and Limit page the listing. Limit <= 0 falls back to the
	// implementation default page size.
	Offset int
	Limit  int

	// Artist filters by case-insensitive substring match when non-empty.
	Artist string

	// Year filters to an exact release year when positive.
	Year int

	// HasEmbedding filters by embedding presence when non-nil.
	HasEmbedding *bool
}

// EmbeddingUpdate assigns a generated vector to a song.
type EmbeddingUpdate struct {
	SongId    int64
	Embedding []float32
}

// SongRepository provides operations for managing the song catalog.
// Implementations must be thread-safe and support concurrent access.
type SongRepository interface {
	// AddSongs inserts songs and populates Id and CreatedAt on the passed
	// records. Songs are validated first; the batch is transactional
	// (all inserted or none).
	AddSongs(ctx context.Context, songs ...*core.Song) error

	// GetSong retrieves a single song by id.
	// Returns an error wrapping ErrNotFound if the song doesn't exist.
	GetSong(ctx context.Context, id int64) (*core.Song, error)

	// ListSongs returns one page of songs matching the filter plus the
	// total (unpaged) match count. Results are ordered by ascending id.
	// Listing omits embeddings; they are large and listings never need them.
	ListSongs(ctx context.Context, filter SongFilter) ([]*core.Song, int64, error)

	// ListArtists returns artists with their song counts, ordered by count
	// descending then artist ascending, up to limit entries.
	ListArtists(ctx context.Context, limit int) ([]core.ArtistCount, error)

	// NearestNeighbors returns up to k songs closest to vector under
	// cosine distance, ordered by ascending distance with ties broken by
	// ascending id. Songs without an embedding never appear.
	// k <= 0 returns an empty result.
	NearestNeighbors(ctx context.Context, vector []float32, k int) ([]Neighbor, error)

	// ListMissingEmbeddings returns up to limit songs without an
	// embedding whose id is greater than afterId, ordered by ascending id.
	// The id cursor keeps batch iteration stable while earlier batches
	// are being updated.
	ListMissingEmbeddings(ctx context.Context, afterId int64, limit int) ([]*core.Song, error)

	// CountMissingEmbeddings returns how many songs still need embeddings.
	CountMissingEmbeddings(ctx context.Context) (int64, error)

	// UpdateEmbeddings stores generated vectors. The batch is
	// transactional. Returns an error wrapping ErrNotFound if any song
	// doesn't exist.
	UpdateEmbeddings(ctx context.Context, updates ...EmbeddingUpdate) error

	// Stats aggregates catalog-wide counters. Well-defined on an empty
	// catalog: zero counts and zero coverage, never an error.
	Stats(ctx context.Context) (*core.CatalogStats, error)

	// YearCounts returns songs-per-year for songs carrying a year,
	// ordered by ascending year.
	YearCounts(ctx context.Context) ([]core.YearCount, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
