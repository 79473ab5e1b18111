package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

// Listing parameter bounds.
const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultArtistLimit = 50
	maxArtistLimit     = 200

	defaultTopArtists = 10
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "lyricseeker",
		"version": s.cfg.Version,
		"endpoints": gin.H{
			"search":  "/api/v1/search",
			"songs":   "/api/v1/songs",
			"artists": "/api/v1/artists",
			"stats":   "/api/v1/stats",
			"health":  "/health",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.songs.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "unreachable"})
		return
	}

	_, total, err := s.songs.ListSongs(ctx, storage.SongFilter{Limit: 1})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok", "songs": total})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: malformed request body", core.ErrInvalidQuery))
		return
	}

	response, err := s.searcher.Search(c.Request.Context(), req.toQuery())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSearchResponsePayload(response))
}

// searchSuggestions is a static catalog of queries that demonstrate
// semantic matching well, for UIs to offer as starting points.
var searchSuggestions = gin.H{
	"suggestions": []gin.H{
		{"category": "Emotions", "queries": []string{
			"heartbreak and sadness", "joy and happiness", "anger and frustration",
			"nostalgia and memories", "hope and optimism",
		}},
		{"category": "Themes", "queries": []string{
			"love and romance", "friendship and loyalty", "success and ambition",
			"freedom and independence", "family and home",
		}},
		{"category": "Moods", "queries": []string{
			"party and dancing", "chill and relaxing", "motivation and energy",
			"peaceful and calm", "rebellious and edgy",
		}},
		{"category": "Life Events", "queries": []string{
			"breakup and moving on", "celebration and victory", "overcoming challenges",
			"growing up and maturing", "new beginnings",
		}},
	},
	"tips": []string{
		"Use descriptive phrases rather than single words",
		"Combine emotions with themes for better results",
		"Try different phrasings if you don't get good results",
		"Lower the similarity threshold to get more results",
	},
}

func (s *Server) handleSearchSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, searchSuggestions)
}

func (s *Server) handleSearchStatus(c *gin.Context) {
	stats, err := s.songs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"search_available":      stats.SongsWithEmbeddings > 0,
		"total_songs":           stats.TotalSongs,
		"songs_with_embeddings": stats.SongsWithEmbeddings,
		"embedding_coverage":    stats.EmbeddingCoverage,
		"embedding_model":       s.cfg.EmbeddingModel,
		"embedding_dimensions":  s.cfg.EmbeddingDimensions,
	})
}

type listSongsParams struct {
	Page         int    `form:"page,default=1"`
	PageSize     int    `form:"page_size,default=20"`
	Artist       string `form:"artist"`
	Year         int    `form:"year"`
	HasEmbedding *bool  `form:"has_embedding"`
}

func (s *Server) handleListSongs(c *gin.Context) {
	var params listSongsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, fmt.Errorf("%w: malformed query parameters", core.ErrInvalidQuery))
		return
	}
	if params.Page < 1 {
		respondError(c, fmt.Errorf("%w: page must be at least 1", core.ErrInvalidQuery))
		return
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		respondError(c, fmt.Errorf("%w: page_size must be within 1..%d", core.ErrInvalidQuery, maxPageSize))
		return
	}

	filter := storage.SongFilter{
		Offset:       (params.Page - 1) * params.PageSize,
		Limit:        params.PageSize,
		Artist:       params.Artist,
		Year:         params.Year,
		HasEmbedding: params.HasEmbedding,
	}
	songs, total, err := s.songs.ListSongs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]songPayload, 0, len(songs))
	for _, song := range songs {
		items = append(items, toSongPayload(song))
	}
	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))

	c.JSON(http.StatusOK, songPagePayload{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PageSize,
		TotalPages: totalPages,
	})
}

func (s *Server) handleGetSong(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, fmt.Errorf("%w: song id must be an integer", core.ErrInvalidQuery))
		return
	}

	song, err := s.songs.GetSong(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSongPayload(song))
}

func (s *Server) handleListArtists(c *gin.Context) {
	limit, err := boundedIntQuery(c, "limit", defaultArtistLimit, maxArtistLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	artists, err := s.songs.ListArtists(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"artists":       toArtistPayloads(artists),
		"total_artists": len(artists),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.songs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsPayload(stats))
}

func (s *Server) handleArtistStats(c *gin.Context) {
	limit, err := boundedIntQuery(c, "limit", defaultTopArtists, maxArtistLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	artists, err := s.songs.ListArtists(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"top_artists": toArtistPayloads(artists)})
}

func (s *Server) handleYearStats(c *gin.Context) {
	counts, err := s.songs.YearCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := s.songs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	years := make([]yearCountPayload, 0, len(counts))
	for _, yc := range counts {
		years = append(years, yearCountPayload{Year: yc.Year, Songs: yc.Songs})
	}

	c.JSON(http.StatusOK, gin.H{
		"years": years,
		"range": toYearRangePayload(stats.Years),
	})
}

// boundedIntQuery parses an optional positive integer query parameter and
// enforces its upper bound.
func boundedIntQuery(c *gin.Context, name string, fallback, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", core.ErrInvalidQuery, name)
	}
	if value > max {
		return 0, fmt.Errorf("%w: %s must be at most %d", core.ErrInvalidQuery, name, max)
	}
	return value, nil
}
