package lyricseeker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/lyricseeker/ai/cached"
	"github.com/poiesic/lyricseeker/backfill"
	"github.com/poiesic/lyricseeker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:     filepath.Join(t.TempDir(), "songs.db"),
		HTTPAddr:         ":0",
		LogLevel:         "info",
		CORSOrigins:      []string{"*"},
		RateLimitRPS:     10,
		RateLimitBurst:   20,
		MaxBodyBytes:     1 << 20,
		OverfetchFactor:  3,
		StoreTimeout:     5 * time.Second,
		EmbeddingHost:    "http://localhost:11434/v1",
		EmbeddingModel:   "test-model",
		Dimensions:       3,
		EmbeddingTimeout: 30 * time.Second,
	}
}

func TestOpen(t *testing.T) {
	t.Run("creates a working catalog", func(t *testing.T) {
		catalog, err := Open(testConfig(t))
		require.NoError(t, err)
		require.NotNil(t, catalog)
		defer catalog.Close()

		assert.NotNil(t, catalog.Songs())
		assert.NotNil(t, catalog.Embedder())
		assert.Nil(t, catalog.cache, "cache stays off without a path")
	})

	t.Run("error with unreachable database path", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DatabasePath = filepath.Join(t.TempDir(), "missing", "nested", "songs.db")

		catalog, err := Open(cfg)
		assert.Error(t, err)
		assert.Nil(t, catalog)
	})

	t.Run("error with invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Dimensions = 0

		catalog, err := Open(cfg)
		assert.Error(t, err)
		assert.Nil(t, catalog)
	})
}

func TestOpen_WithCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.CachePath = filepath.Join(t.TempDir(), "cache")

	catalog, err := Open(cfg)
	require.NoError(t, err)
	defer catalog.Close()

	require.NotNil(t, catalog.cache)
	_, ok := catalog.Embedder().(*cached.Embedder)
	assert.True(t, ok, "the cache must wrap the provider")
}

func TestCatalog_Close(t *testing.T) {
	catalog, err := Open(testConfig(t))
	require.NoError(t, err)
	assert.NoError(t, catalog.Close())
}

func TestCatalog_FactoryMethods(t *testing.T) {
	catalog, err := Open(testConfig(t))
	require.NoError(t, err)
	defer catalog.Close()

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := catalog.NewSearcher()
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("can create server", func(t *testing.T) {
		server, err := catalog.NewServer("test")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("can create loader", func(t *testing.T) {
		loader, err := catalog.NewLoader()
		require.NoError(t, err)
		assert.NotNil(t, loader)
	})

	t.Run("can create backfiller", func(t *testing.T) {
		backfiller, err := catalog.NewBackfiller(backfill.DefaultConfig(), nil)
		require.NoError(t, err)
		assert.NotNil(t, backfiller)
	})
}
