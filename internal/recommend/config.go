// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/recommend/content"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Content configures the lexical and semantic signals.
	Content content.Config `json:"content"`

	// Hybrid contains the fusion parameters.
	Hybrid HybridConfig `json:"hybrid"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// HybridConfig contains parameters for hybrid fusion.
type HybridConfig struct {
	// Alpha is the lexical weight. The semantic weight is 1-Alpha.
	// Default: 0.5.
	Alpha float64 `json:"alpha"`

	// CandidateMultiplier scales K to get each signal's candidate pool.
	// Default: 2.
	CandidateMultiplier int `json:"candidate_multiplier"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is used when a request does not set K.
	// Default: 10.
	DefaultK int `json:"default_k"`

	// MaxK caps K.
	// Default: 100.
	MaxK int `json:"max_k"`

	// DefaultSuggestions is the title suggestion limit when none is given.
	// Default: 10.
	DefaultSuggestions int `json:"default_suggestions"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether responses are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Content: content.Config{
			MaxFeatures:        content.DefaultMaxFeatures,
			EmbeddingBatchSize: 64,
			AcceleratedIndex:   true,
		},
		Hybrid: HybridConfig{
			Alpha:               0.5,
			CandidateMultiplier: 2,
		},
		Limits: LimitsConfig{
			DefaultK:           10,
			MaxK:               100,
			DefaultSuggestions: 10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Content.MaxFeatures < 0 {
		return fmt.Errorf("content.max_features must be non-negative")
	}
	if c.Content.EmbeddingBatchSize < 0 {
		return fmt.Errorf("content.embedding_batch_size must be non-negative")
	}
	if c.Content.IndexWorkers < 0 {
		return fmt.Errorf("content.index_workers must be non-negative")
	}

	if c.Hybrid.Alpha < 0 || c.Hybrid.Alpha > 1 {
		return fmt.Errorf("hybrid.alpha must be in [0, 1], got %v", c.Hybrid.Alpha)
	}
	if c.Hybrid.CandidateMultiplier < 1 {
		return fmt.Errorf("hybrid.candidate_multiplier must be at least 1")
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive")
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= default_k")
	}
	if c.Limits.DefaultSuggestions < 1 {
		return fmt.Errorf("limits.default_suggestions must be positive")
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled")
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled")
		}
	}

	return nil
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
