// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Data: DataConfig{
			MoviesPath:    "data/movies.csv",
			Language:      "en",
			MaxMovies:     30000,
			MovieLensDir:  "",
			DuckDBPath:    "", // in-memory
			DuckDBThreads: 0,
		},
		Embedding: EmbeddingConfig{
			Provider:          ProviderHashing,
			Model:             "all-MiniLM-L6-v2",
			Dimensions:        384,
			BatchSize:         64,
			RequestsPerSecond: 0,
			Timeout:           30 * time.Second,
			BreakerFailures:   5,
			BreakerTimeout:    time.Minute,
			CachePath:         "data/embeddings.npy",
			MemoPath:          "",
			MemoTTL:           0,
			MemoGCInterval:    10 * time.Minute,
		},
		Recommend: RecommendConfig{
			DefaultK:            10,
			MaxK:                100,
			DefaultSuggestions:  10,
			Alpha:               0.5,
			CandidateMultiplier: 2,
			MaxFeatures:         50000,
			AcceleratedIndex:    true,
			IndexWorkers:        0,
			CacheEnabled:        true,
			CacheTTL:            5 * time.Minute,
			CacheEntries:        10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// Precedence is ENV > File > Defaults. The result is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MOVIES_PATH -> data.movies_path, RECOMMEND_ALPHA -> recommend.alpha
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first of
// DefaultConfigPaths that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML lists arrive as slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Data
	"movies_path":     "data.movies_path",
	"movies_language": "data.language",
	"max_movies":      "data.max_movies",
	"movielens_dir":   "data.movielens_dir",
	"duckdb_path":     "data.duckdb_path",
	"duckdb_threads":  "data.duckdb_threads",

	// Embedding
	"embedding_provider":         "embedding.provider",
	"embedding_base_url":         "embedding.base_url",
	"embedding_api_key":          "embedding.api_key",
	"embedding_model":            "embedding.model",
	"embedding_dimensions":       "embedding.dimensions",
	"embedding_batch_size":       "embedding.batch_size",
	"embedding_rps":              "embedding.requests_per_second",
	"embedding_timeout":          "embedding.timeout",
	"embedding_breaker_failures": "embedding.breaker_failures",
	"embedding_breaker_timeout":  "embedding.breaker_timeout",
	"embedding_cache_path":       "embedding.cache_path",
	"embedding_memo_path":        "embedding.memo_path",
	"embedding_memo_ttl":         "embedding.memo_ttl",
	"embedding_memo_gc_interval": "embedding.memo_gc_interval",

	// Recommend
	"recommend_default_k":            "recommend.default_k",
	"recommend_max_k":                "recommend.max_k",
	"recommend_default_suggestions":  "recommend.default_suggestions",
	"recommend_alpha":                "recommend.alpha",
	"recommend_candidate_multiplier": "recommend.candidate_multiplier",
	"recommend_max_features":         "recommend.max_features",
	"recommend_accelerated_index":    "recommend.accelerated_index",
	"recommend_index_workers":        "recommend.index_workers",
	"recommend_cache_enabled":        "recommend.cache_enabled",
	"recommend_cache_ttl":            "recommend.cache_ttl",
	"recommend_cache_entries":        "recommend.cache_entries",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Unmapped names return "" so that unrelated environment variables
// never reach the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

