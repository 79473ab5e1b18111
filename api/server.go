package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poiesic/lyricseeker/search"
	"github.com/poiesic/lyricseeker/storage"
)

// Server configuration defaults.
const (
	DefaultAddr           = ":8000"
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
	DefaultMaxBodyBytes   = 1 << 20 // 1 MiB
	DefaultShutdownGrace  = 10 * time.Second
)

// Config carries the HTTP server settings.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	// Debug keeps Gin in debug mode and enables verbose logging.
	Debug bool

	// Version is reported by the root endpoint.
	Version string

	// AllowedOrigins configures CORS. Empty means allow all.
	AllowedOrigins []string

	// RateLimitRPS and RateLimitBurst shape the per-IP token bucket
	// guarding the search endpoint.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64

	// ShutdownGrace bounds the drain period after a stop signal.
	ShutdownGrace time.Duration

	// EmbeddingModel and EmbeddingDimensions are reported by the search
	// status endpoint.
	EmbeddingModel      string
	EmbeddingDimensions int
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = DefaultRateLimitRPS
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = DefaultRateLimitBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
	return c
}

// Server serves the catalog and search API.
type Server struct {
	cfg      Config
	searcher *search.Searcher
	songs    storage.SongRepository
	logger   *slog.Logger
	limiter  *ipLimiter
	http     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewServer creates the HTTP server. The searcher handles search
// requests; the repository backs the catalog and stats endpoints.
func NewServer(cfg Config, searcher *search.Searcher, songs storage.SongRepository, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if songs == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Server{
		cfg:      cfg.withDefaults(),
		searcher: searcher,
		songs:    songs,
		logger:   slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.limiter = newIPLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)
	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is cancelled or the process receives
// SIGINT/SIGTERM, then drains in-flight requests within the configured
// grace period.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
