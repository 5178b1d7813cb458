// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Data      DataConfig      `koanf:"data"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings. The API is
// read-only and unauthenticated.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DataConfig locates the datasets loaded at startup.
//
// Environment Variables:
//   - MOVIES_PATH: TMDB-style movies CSV (required)
//   - MOVIES_LANGUAGE: keep only this original_language (default: en, empty keeps all)
//   - MAX_MOVIES: catalog cap after ordering by popularity (default: 30000)
//   - MOVIELENS_DIR: MovieLens 100k directory; empty disables collaborative filtering
//   - DUCKDB_PATH: DuckDB file used for loading (default: in-memory)
//   - DUCKDB_THREADS: DuckDB worker threads (default: 0 = runtime.NumCPU())
type DataConfig struct {
	MoviesPath    string `koanf:"movies_path"`
	Language      string `koanf:"language"`
	MaxMovies     int    `koanf:"max_movies"`
	MovieLensDir  string `koanf:"movielens_dir"`
	DuckDBPath    string `koanf:"duckdb_path"`
	DuckDBThreads int    `koanf:"duckdb_threads"`
}

// CollaborativeEnabled reports whether ratings should be loaded.
func (d DataConfig) CollaborativeEnabled() bool {
	return d.MovieLensDir != ""
}

// EmbeddingConfig selects and tunes the sentence embedding provider.
//
// Provider "openai" calls an OpenAI-compatible embeddings endpoint (BaseURL
// may point at a local server). Provider "hashing" computes deterministic
// feature-hashing vectors offline and needs no network.
//
// Environment Variables:
//   - EMBEDDING_PROVIDER: openai or hashing (default: hashing)
//   - EMBEDDING_BASE_URL, EMBEDDING_API_KEY, EMBEDDING_MODEL
//   - EMBEDDING_DIMENSIONS: vector size (hashing) or truncation (openai)
//   - EMBEDDING_BATCH_SIZE: texts per provider call (default: 64)
//   - EMBEDDING_RPS: provider calls per second, 0 = unlimited
//   - EMBEDDING_TIMEOUT: per-call timeout (default: 30s)
//   - EMBEDDING_BREAKER_FAILURES, EMBEDDING_BREAKER_TIMEOUT
//   - EMBEDDING_CACHE_PATH: NPY matrix cache for the whole catalog
//   - EMBEDDING_MEMO_PATH: per-text badger memo; empty disables it
//   - EMBEDDING_MEMO_TTL: memo entry lifetime, 0 = forever
//   - EMBEDDING_MEMO_GC_INTERVAL: badger value log GC interval
type EmbeddingConfig struct {
	Provider          string        `koanf:"provider"`
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Dimensions        int           `koanf:"dimensions"`
	BatchSize         int           `koanf:"batch_size"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
	BreakerFailures   uint32        `koanf:"breaker_failures"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
	CachePath         string        `koanf:"cache_path"`
	MemoPath          string        `koanf:"memo_path"`
	MemoTTL           time.Duration `koanf:"memo_ttl"`
	MemoGCInterval    time.Duration `koanf:"memo_gc_interval"`
}

// Embedding providers.
const (
	ProviderOpenAI  = "openai"
	ProviderHashing = "hashing"
)

// RecommendConfig tunes ranking and the response cache.
type RecommendConfig struct {
	DefaultK            int     `koanf:"default_k"`
	MaxK                int     `koanf:"max_k"`
	DefaultSuggestions  int     `koanf:"default_suggestions"`
	Alpha               float64 `koanf:"alpha"`
	CandidateMultiplier int     `koanf:"candidate_multiplier"`
	MaxFeatures         int     `koanf:"max_features"`
	AcceleratedIndex    bool    `koanf:"accelerated_index"`
	IndexWorkers        int     `koanf:"index_workers"`

	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	CacheEntries int           `koanf:"cache_entries"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the config file and environment
// variables. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
