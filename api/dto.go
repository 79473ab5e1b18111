package api

import (
	"time"

	"github.com/poiesic/lyricseeker/core"
)

// searchRequest is the POST /api/v1/search body. Limit and threshold are
// pointers so an omitted field is distinguishable from an explicit zero.
type searchRequest struct {
	Query               string   `json:"query"`
	Limit               *int     `json:"limit"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// toQuery applies request defaults. Validation happens later in the
// searcher, so out-of-range explicit values surface as 422s.
func (r *searchRequest) toQuery() core.SearchQuery {
	query := core.SearchQuery{
		Text:      r.Query,
		Limit:     core.DefaultSearchLimit,
		Threshold: core.DefaultSearchThreshold,
	}
	if r.Limit != nil {
		query.Limit = *r.Limit
	}
	if r.SimilarityThreshold != nil {
		query.Threshold = *r.SimilarityThreshold
	}
	return query
}

type songPayload struct {
	Id        int64     `json:"id"`
	Artist    string    `json:"artist"`
	Title     string    `json:"title"`
	Album     string    `json:"album,omitempty"`
	Year      int       `json:"year,omitempty"`
	Lyrics    string    `json:"lyrics"`
	CreatedAt time.Time `json:"created_at"`
}

func toSongPayload(song *core.Song) songPayload {
	return songPayload{
		Id:        song.Id,
		Artist:    song.Artist,
		Title:     song.Title,
		Album:     song.Album,
		Year:      song.Year,
		Lyrics:    song.Lyrics,
		CreatedAt: song.CreatedAt,
	}
}

type searchResultPayload struct {
	Song       songPayload `json:"song"`
	Similarity float64     `json:"similarity"`
}

type searchResponsePayload struct {
	Query            string                `json:"query"`
	Results          []searchResultPayload `json:"results"`
	TotalResults     int                   `json:"total_results"`
	ProcessingTimeMs float64               `json:"processing_time_ms"`
}

func toSearchResponsePayload(response *core.SearchResponse) searchResponsePayload {
	results := make([]searchResultPayload, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, searchResultPayload{
			Song:       toSongPayload(r.Song),
			Similarity: r.Similarity,
		})
	}
	return searchResponsePayload{
		Query:            response.Query,
		Results:          results,
		TotalResults:     response.TotalResults,
		ProcessingTimeMs: response.ProcessingTimeMs,
	}
}

type songPagePayload struct {
	Items      []songPayload `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

type artistPayload struct {
	Artist string `json:"artist"`
	Songs  int64  `json:"songs"`
}

func toArtistPayloads(artists []core.ArtistCount) []artistPayload {
	out := make([]artistPayload, 0, len(artists))
	for _, a := range artists {
		out = append(out, artistPayload{Artist: a.Artist, Songs: a.Songs})
	}
	return out
}

// yearRangePayload reports nulls rather than zeros when no song carries a
// year.
type yearRangePayload struct {
	MinYear     *int `json:"min_year"`
	MaxYear     *int `json:"max_year"`
	UniqueYears int  `json:"unique_years"`
}

func toYearRangePayload(years core.YearRange) yearRangePayload {
	payload := yearRangePayload{UniqueYears: years.UniqueYears}
	if years.UniqueYears > 0 {
		minYear, maxYear := years.Min, years.Max
		payload.MinYear = &minYear
		payload.MaxYear = &maxYear
	}
	return payload
}

type yearCountPayload struct {
	Year  int   `json:"year"`
	Songs int64 `json:"songs"`
}

type statsPayload struct {
	TotalSongs          int64            `json:"total_songs"`
	TotalArtists        int64            `json:"total_artists"`
	SongsWithEmbeddings int64            `json:"songs_with_embeddings"`
	EmbeddingCoverage   float64          `json:"embedding_coverage"`
	TopArtists          []artistPayload  `json:"top_artists"`
	YearRange           yearRangePayload `json:"year_range"`
	AverageLyricsLength float64          `json:"average_lyrics_length"`
}

func toStatsPayload(stats *core.CatalogStats) statsPayload {
	return statsPayload{
		TotalSongs:          stats.TotalSongs,
		TotalArtists:        stats.TotalArtists,
		SongsWithEmbeddings: stats.SongsWithEmbeddings,
		EmbeddingCoverage:   stats.EmbeddingCoverage,
		TopArtists:          toArtistPayloads(stats.TopArtists),
		YearRange:           toYearRangePayload(stats.Years),
		AverageLyricsLength: stats.AvgLyricsLength,
	}
}
