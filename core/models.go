package core

import "time"

// Search parameter domains. The API layer and the CLI resolve omitted
// request fields to these defaults before validation runs.
const (
	// DefaultSearchLimit is the result count used when a request does not
	// specify a limit.
	DefaultSearchLimit = 10

	// MaxSearchLimit bounds the per-request result count.
	MaxSearchLimit = 50

	// DefaultSearchThreshold is the minimum similarity applied when a
	// request does not specify one.
	DefaultSearchThreshold = 0.5

	// MaxQueryChars bounds the query text length, in runes, after trimming.
	MaxQueryChars = 500
)

// Song is one catalog entry: a track with its lyrics and, once the
// embedding backfill has run, the vector of its combined text.
type Song struct {
	Id        int64
	Artist    string
	Title     string
	Album     string // empty when unknown
	Year      int    // 0 when unknown
	Lyrics    string
	FullText  string    // exact text the embedding is computed from
	Embedding []float32 // nil until generated
	CreatedAt time.Time
}

// HasEmbedding reports whether the song can participate in similarity
// search.
func (s *Song) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

// SearchQuery is a similarity search request after defaults have been
// applied. It is ephemeral and never persisted.
type SearchQuery struct {
	Text      string
	Limit     int
	Threshold float64
}

// SearchResult pairs a matched song with its similarity score in [0,1].
type SearchResult struct {
	Song       *Song
	Similarity float64
}

// SearchResponse is the complete outcome of one search request.
type SearchResponse struct {
	Query            string
	Results          []SearchResult
	TotalResults     int
	ProcessingTimeMs float64
}

// ArtistCount is one entry of a songs-per-artist ranking.
type ArtistCount struct {
	Artist string
	Songs  int64
}

// YearCount is one entry of a songs-per-year histogram.
type YearCount struct {
	Year  int
	Songs int64
}

// YearRange summarizes release years across the catalog. Zero values mean
// no song carries a year.
type YearRange struct {
	Min         int
	Max         int
	UniqueYears int
}

// CatalogStats aggregates catalog-wide counters for the stats endpoints.
type CatalogStats struct {
	TotalSongs          int64
	TotalArtists        int64
	SongsWithEmbeddings int64
	EmbeddingCoverage   float64 // percent of songs with an embedding
	TopArtists          []ArtistCount
	Years               YearRange
	AvgLyricsLength     float64 // characters
}
