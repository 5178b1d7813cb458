// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
// It returns the first violation found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateData,
		c.validateEmbedding,
		c.validateRecommend,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates rate limiting bounds. CORS wildcards are
// allowed in every environment because no endpoint carries credentials.
func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.MoviesPath) == "" {
		return fmt.Errorf("MOVIES_PATH is required")
	}
	if c.Data.MaxMovies < 0 {
		return fmt.Errorf("MAX_MOVIES must be non-negative")
	}
	if c.Data.DuckDBThreads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	switch e.Provider {
	case ProviderHashing:
		if e.Dimensions < 1 {
			return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive for the hashing provider")
		}
	case ProviderOpenAI:
		if e.Model == "" {
			return fmt.Errorf("EMBEDDING_MODEL is required for the openai provider")
		}
		if e.Dimensions < 0 {
			return fmt.Errorf("EMBEDDING_DIMENSIONS must be non-negative")
		}
		if e.RequestsPerSecond < 0 {
			return fmt.Errorf("EMBEDDING_RPS must be non-negative")
		}
		if e.Timeout <= 0 {
			return fmt.Errorf("EMBEDDING_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be one of: %s, %s", ProviderOpenAI, ProviderHashing)
	}
	if e.BatchSize < 1 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be positive")
	}
	if e.MemoTTL < 0 {
		return fmt.Errorf("EMBEDDING_MEMO_TTL must be non-negative")
	}
	if e.MemoPath != "" && e.MemoGCInterval <= 0 {
		return fmt.Errorf("EMBEDDING_MEMO_GC_INTERVAL must be positive when EMBEDDING_MEMO_PATH is set")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.Alpha < 0 || r.Alpha > 1 {
		return fmt.Errorf("RECOMMEND_ALPHA must be in [0, 1]")
	}
	if r.DefaultK < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_K must be positive")
	}
	if r.MaxK < r.DefaultK {
		return fmt.Errorf("RECOMMEND_MAX_K must be at least RECOMMEND_DEFAULT_K")
	}
	if r.DefaultSuggestions < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_SUGGESTIONS must be positive")
	}
	if r.CandidateMultiplier < 1 {
		return fmt.Errorf("RECOMMEND_CANDIDATE_MULTIPLIER must be at least 1")
	}
	if r.MaxFeatures < 0 {
		return fmt.Errorf("RECOMMEND_MAX_FEATURES must be non-negative")
	}
	if r.IndexWorkers < 0 {
		return fmt.Errorf("RECOMMEND_INDEX_WORKERS must be non-negative")
	}
	if r.CacheEnabled && (r.CacheTTL <= 0 || r.CacheEntries < 1) {
		return fmt.Errorf("RECOMMEND_CACHE_TTL and RECOMMEND_CACHE_ENTRIES must be positive when the cache is enabled")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}
