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


// Package config assembles the process configuration from the environment.
// A local .env file is read first when present; real environment variables
// win over it, and CLI flags override both at the call sites.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDatabasePath    = "LYRICSEEKER_DB"
	EnvCachePath       = "LYRICSEEKER_CACHE"
	EnvHTTPAddr        = "LYRICSEEKER_ADDR"
	EnvLogLevel        = "LYRICSEEKER_LOG_LEVEL"
	EnvDebug           = "LYRICSEEKER_DEBUG"
	EnvCORSOrigins     = "LYRICSEEKER_CORS_ORIGINS"
	EnvRateLimitRPS    = "LYRICSEEKER_RATE_RPS"
	EnvRateLimitBurst  = "LYRICSEEKER_RATE_BURST"
	EnvMaxBodyBytes    = "LYRICSEEKER_MAX_BODY"
	EnvOverfetchFactor = "LYRICSEEKER_OVERFETCH_FACTOR"
	EnvStoreTimeout    = "LYRICSEEKER_STORE_TIMEOUT"

	EnvAPIKey           = "OPENAI_API_KEY"
	EnvAPIBase          = "OPENAI_API_BASE"
	EnvEmbeddingModel   = "EMBEDDING_MODEL"
	EnvDimensions       = "EMBEDDING_DIMENSIONS"
	EnvEmbeddingTimeout = "EMBEDDING_TIMEOUT"
)

// Config is the process configuration, built once at startup and treated
// as read-only afterwards.
type Config struct {
	// DatabasePath is the SQLite catalog file. ":memory:" works for
	// throwaway runs.
	DatabasePath string

	// CachePath is the directory for the query-embedding cache.
	// Empty disables caching.
	CachePath string

	// HTTPAddr is the API listen address.
	HTTPAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Debug switches the HTTP engine into debug mode.
	Debug bool

	// CORSOrigins lists allowed origins; ["*"] allows all.
	CORSOrigins []string

	// RateLimitRPS and RateLimitBurst shape the per-client search budget.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// OverfetchFactor and StoreTimeout tune the search pipeline.
	OverfetchFactor int
	StoreTimeout    time.Duration

	// Embedding provider settings.
	EmbeddingHost    string
	APIKey           string
	EmbeddingModel   string
	Dimensions       int
	EmbeddingTimeout time.Duration
}

// Load builds a Config from the environment. A .env file in the working
// directory is merged in first; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:   getEnv(EnvDatabasePath, "lyricseeker.db"),
		CachePath:      getEnv(EnvCachePath, ""),
		HTTPAddr:       getEnv(EnvHTTPAddr, ":8000"),
		LogLevel:       strings.ToLower(getEnv(EnvLogLevel, "info")),
		EmbeddingHost:  getEnv(EnvAPIBase, "https://api.openai.com/v1"),
		APIKey:         getEnv(EnvAPIKey, ""),
		EmbeddingModel: getEnv(EnvEmbeddingModel, "text-embedding-3-small"),
		CORSOrigins:    splitOrigins(getEnv(EnvCORSOrigins, "*")),
	}

	var err error
	if cfg.Debug, err = getEnvBool(EnvDebug, false); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat(EnvRateLimitRPS, 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt(EnvRateLimitBurst, 20); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = getEnvInt64(EnvMaxBodyBytes, 1<<20); err != nil {
		return nil, err
	}
	if cfg.OverfetchFactor, err = getEnvInt(EnvOverfetchFactor, 3); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getEnvDuration(EnvStoreTimeout, 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Dimensions, err = getEnvInt(EnvDimensions, 1536); err != nil {
		return nil, err
	}
	if cfg.EmbeddingTimeout, err = getEnvDuration(EnvEmbeddingTimeout, 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration domains.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("config: %s must not be empty", EnvDatabasePath)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("config: %s must not be empty", EnvHTTPAddr)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: %s must be one of debug, info, warn, error; got %q", EnvLogLevel, c.LogLevel)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("config: %s must be positive, got %v", EnvRateLimitRPS, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("config: %s must be at least 1, got %d", EnvRateLimitBurst, c.RateLimitBurst)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("config: %s must be at least 1, got %d", EnvMaxBodyBytes, c.MaxBodyBytes)
	}
	if c.OverfetchFactor < 1 {
		return fmt.Errorf("config: %s must be at least 1, got %d", EnvOverfetchFactor, c.OverfetchFactor)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %v", EnvStoreTimeout, c.StoreTimeout)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("config: %s must be positive, got %d", EnvDimensions, c.Dimensions)
	}
	if c.EmbeddingTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %v", EnvEmbeddingTimeout, c.EmbeddingTimeout)
	}
	return nil
}

// CacheEnabled reports whether a query-embedding cache directory is set.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.CachePath) != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return parsed, nil
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
