package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every known variable so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		EnvDatabasePath, EnvCachePath, EnvHTTPAddr, EnvLogLevel, EnvDebug,
		EnvCORSOrigins, EnvRateLimitRPS, EnvRateLimitBurst, EnvMaxBodyBytes,
		EnvOverfetchFactor, EnvStoreTimeout, EnvAPIKey, EnvAPIBase,
		EnvEmbeddingModel, EnvDimensions, EnvEmbeddingTimeout,
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lyricseeker.db", cfg.DatabasePath)
	assert.Empty(t, cfg.CachePath)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.EqualValues(t, 1<<20, cfg.MaxBodyBytes)
	assert.Equal(t, 3, cfg.OverfetchFactor)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.Dimensions)
	assert.Equal(t, 30*time.Second, cfg.EmbeddingTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDatabasePath, "/data/songs.db")
	t.Setenv(EnvCachePath, "/data/cache")
	t.Setenv(EnvHTTPAddr, ":9001")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example")
	t.Setenv(EnvRateLimitRPS, "2.5")
	t.Setenv(EnvRateLimitBurst, "5")
	t.Setenv(EnvMaxBodyBytes, "2048")
	t.Setenv(EnvOverfetchFactor, "4")
	t.Setenv(EnvStoreTimeout, "2s")
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvAPIBase, "http://localhost:11434/v1")
	t.Setenv(EnvEmbeddingModel, "embeddinggemma")
	t.Setenv(EnvDimensions, "768")
	t.Setenv(EnvEmbeddingTimeout, "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/songs.db", cfg.DatabasePath)
	assert.Equal(t, "/data/cache", cfg.CachePath)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, ":9001", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel, "log level is lower-cased")
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.EqualValues(t, 2048, cfg.MaxBodyBytes)
	assert.Equal(t, 4, cfg.OverfetchFactor)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.Dimensions)
	assert.Equal(t, 10*time.Second, cfg.EmbeddingTimeout)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad bool", EnvDebug, "maybe"},
		{"bad float", EnvRateLimitRPS, "fast"},
		{"bad int", EnvRateLimitBurst, "lots"},
		{"bad duration", EnvStoreTimeout, "5 seconds"},
		{"bad dimensions", EnvDimensions, "3.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestValidateRejectsOutOfDomain(t *testing.T) {
	clearEnv(t)
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.DatabasePath = " " }},
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"zero rps", func(c *Config) { c.RateLimitRPS = 0 }},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }},
		{"zero body cap", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"zero overfetch", func(c *Config) { c.OverfetchFactor = 0 }},
		{"negative store timeout", func(c *Config) { c.StoreTimeout = -time.Second }},
		{"zero dimensions", func(c *Config) { c.Dimensions = 0 }},
		{"zero embedding timeout", func(c *Config) { c.EmbeddingTimeout = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins("*"))
	assert.Equal(t, []string{"*"}, splitOrigins(" , "))
	assert.Equal(t, []string{"https://x.example"}, splitOrigins("https://x.example"))
	assert.Equal(t, []string{"a", "b"}, splitOrigins(" a , b ,"))
}
