package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) buildRouter() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(s.logger))
	router.Use(securityHeaders())
	router.Use(bodySizeLimit(s.cfg.MaxBodyBytes))
	router.Use(cors.New(s.corsConfig()))
	router.Use(processTime())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/search", s.limiter.Middleware(), s.handleSearch)
		v1.GET("/search/suggestions", s.handleSearchSuggestions)
		v1.GET("/search/status", s.handleSearchStatus)
		v1.GET("/songs", s.handleListSongs)
		v1.GET("/songs/:id", s.handleGetSong)
		v1.GET("/artists", s.handleListArtists)
		v1.GET("/stats", s.handleStats)
		v1.GET("/stats/artists", s.handleArtistStats)
		v1.GET("/stats/years", s.handleYearStats)
	}

	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
