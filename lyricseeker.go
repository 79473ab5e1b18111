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


// Package lyricseeker wires the song catalog, the embedding provider and
// the services built on them behind a single handle.
package lyricseeker

import (
	"io"
	"log/slog"

	"github.com/poiesic/lyricseeker/ai"
	"github.com/poiesic/lyricseeker/ai/cached"
	"github.com/poiesic/lyricseeker/ai/openai"
	"github.com/poiesic/lyricseeker/api"
	"github.com/poiesic/lyricseeker/backfill"
	"github.com/poiesic/lyricseeker/config"
	"github.com/poiesic/lyricseeker/ingest"
	"github.com/poiesic/lyricseeker/search"
	"github.com/poiesic/lyricseeker/storage"
	"github.com/poiesic/lyricseeker/storage/sqlite"
)

// Catalog bundles the song store and the embedding provider. All service
// constructors hang off it so every command wires components the same way.
type Catalog struct {
	songs    storage.SongRepository
	embedder ai.Embedder
	cache    *cached.Embedder // nil when caching is disabled
	cfg      *config.Config
	logger   *slog.Logger
}

// Open builds the catalog from configuration: the SQLite store, the
// OpenAI-compatible embedder, and, when a cache path is configured, the
// Badger-backed query-embedding cache wrapped around it.
func Open(cfg *config.Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	songs, err := sqlite.NewRepository(cfg.DatabasePath, cfg.Dimensions)
	if err != nil {
		return nil, err
	}

	aiCfg := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.EmbeddingHost),
		ai.WithAPIKey(cfg.APIKey),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithDimensions(cfg.Dimensions),
		ai.WithTimeout(cfg.EmbeddingTimeout),
	)
	embedder, err := openai.NewEmbedder(aiCfg)
	if err != nil {
		songs.Close()
		return nil, err
	}

	catalog := &Catalog{
		songs:    songs,
		embedder: embedder,
		cfg:      cfg,
		logger:   slog.Default(),
	}

	if cfg.CacheEnabled() {
		cache, err := cached.NewEmbedder(cfg.CachePath, cfg.EmbeddingModel, embedder)
		if err != nil {
			songs.Close()
			return nil, err
		}
		catalog.cache = cache
		catalog.embedder = cache
	}

	return catalog, nil
}

// Close releases the cache and the store. A cache close failure is logged
// but not returned; cached vectors are reproducible.
func (c *Catalog) Close() error {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			c.logger.Error("error closing embedding cache", "err", err)
		}
	}
	if err := c.songs.Close(); err != nil {
		c.logger.Error("error closing song store", "err", err)
		return err
	}
	return nil
}

// Songs exposes the song repository.
func (c *Catalog) Songs() storage.SongRepository {
	return c.songs
}

// Embedder exposes the embedding provider, cache-wrapped when enabled.
func (c *Catalog) Embedder() ai.Embedder {
	return c.embedder
}

// NewSearcher builds a search pipeline with the configured tuning.
// Passed options win over the configured ones.
func (c *Catalog) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	base := []search.Option{
		search.WithOverfetchFactor(c.cfg.OverfetchFactor),
		search.WithStoreTimeout(c.cfg.StoreTimeout),
	}
	return search.NewSearcher(c.songs, c.embedder, append(base, opts...)...)
}

// NewServer builds the HTTP API server around a stage-logging searcher.
func (c *Catalog) NewServer(version string, opts ...api.Option) (*api.Server, error) {
	searcher, err := c.NewSearcher(search.WithMonitor(search.NewLogMonitor(nil)))
	if err != nil {
		return nil, err
	}

	apiCfg := api.Config{
		Addr:                c.cfg.HTTPAddr,
		Debug:               c.cfg.Debug,
		Version:             version,
		AllowedOrigins:      c.cfg.CORSOrigins,
		RateLimitRPS:        c.cfg.RateLimitRPS,
		RateLimitBurst:      c.cfg.RateLimitBurst,
		MaxBodyBytes:        c.cfg.MaxBodyBytes,
		EmbeddingModel:      c.cfg.EmbeddingModel,
		EmbeddingDimensions: c.cfg.Dimensions,
	}
	return api.NewServer(apiCfg, searcher, c.songs, opts...)
}

// NewLoader builds a CSV catalog loader.
func (c *Catalog) NewLoader(opts ...ingest.Option) (*ingest.Loader, error) {
	return ingest.NewLoader(c.songs, opts...)
}

// NewBackfiller builds an embedding backfiller writing progress to w.
func (c *Catalog) NewBackfiller(cfg *backfill.Config, w io.Writer) (*backfill.Backfiller, error) {
	return backfill.NewBackfiller(c.songs, c.embedder, cfg, w)
}
