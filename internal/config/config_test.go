// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Data.Language != "en" || cfg.Data.MaxMovies != 30000 {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Data.CollaborativeEnabled() {
		t.Error("collaborative filtering should be disabled without MOVIELENS_DIR")
	}
	if cfg.Recommend.Alpha != 0.5 || cfg.Recommend.CandidateMultiplier != 2 || cfg.Recommend.DefaultK != 10 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Embedding.Provider != ProviderHashing {
		t.Errorf("Embedding.Provider = %q, want %q", cfg.Embedding.Provider, ProviderHashing)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"MOVIES_PATH", "data.movies_path"},
		{"MOVIES_LANGUAGE", "data.language"},
		{"MOVIELENS_DIR", "data.movielens_dir"},
		{"EMBEDDING_RPS", "embedding.requests_per_second"},
		{"EMBEDDING_MEMO_PATH", "embedding.memo_path"},
		{"RECOMMEND_ALPHA", "recommend.alpha"},
		{"recommend_cache_ttl", "recommend.cache_ttl"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"no cors origins", func(c *Config) { c.Security.CORSOrigins = nil }, "CORS_ORIGINS"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate window tiny", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
		{"no movies path", func(c *Config) { c.Data.MoviesPath = " " }, "MOVIES_PATH"},
		{"negative max movies", func(c *Config) { c.Data.MaxMovies = -1 }, "MAX_MOVIES"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "bert" }, "EMBEDDING_PROVIDER"},
		{"hashing without dims", func(c *Config) { c.Embedding.Dimensions = 0 }, "EMBEDDING_DIMENSIONS"},
		{"openai without model", func(c *Config) {
			c.Embedding.Provider = ProviderOpenAI
			c.Embedding.Model = ""
		}, "EMBEDDING_MODEL"},
		{"zero batch", func(c *Config) { c.Embedding.BatchSize = 0 }, "EMBEDDING_BATCH_SIZE"},
		{"memo without gc interval", func(c *Config) {
			c.Embedding.MemoPath = "/tmp/memo"
			c.Embedding.MemoGCInterval = 0
		}, "EMBEDDING_MEMO_GC_INTERVAL"},
		{"alpha above one", func(c *Config) { c.Recommend.Alpha = 1.5 }, "RECOMMEND_ALPHA"},
		{"alpha below zero", func(c *Config) { c.Recommend.Alpha = -0.1 }, "RECOMMEND_ALPHA"},
		{"max k below default", func(c *Config) { c.Recommend.MaxK = 5 }, "RECOMMEND_MAX_K"},
		{"zero multiplier", func(c *Config) { c.Recommend.CandidateMultiplier = 0 }, "RECOMMEND_CANDIDATE_MULTIPLIER"},
		{"cache without ttl", func(c *Config) { c.Recommend.CacheTTL = 0 }, "RECOMMEND_CACHE_TTL"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAllowsDisabledFeatures(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	cfg.Recommend.CacheEnabled = false
	cfg.Recommend.CacheTTL = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoadWithKoanfEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("MOVIES_PATH", "/srv/movies.csv")
	t.Setenv("MOVIELENS_DIR", "/srv/ml-100k")
	t.Setenv("RECOMMEND_ALPHA", "0.8")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Data.MoviesPath != "/srv/movies.csv" || !cfg.Data.CollaborativeEnabled() {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Recommend.Alpha != 0.8 {
		t.Errorf("Recommend.Alpha = %v, want 0.8", cfg.Recommend.Alpha)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("Recommend.CacheTTL = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoadWithKoanfFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.yaml")
	yaml := `
data:
  movies_path: /from/file.csv
  max_movies: 500
embedding:
  provider: openai
  model: text-embedding-3-small
recommend:
  alpha: 0.3
security:
  cors_origins:
    - https://file.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MAX_MOVIES", "250")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Data.MoviesPath != "/from/file.csv" {
		t.Errorf("Data.MoviesPath = %q", cfg.Data.MoviesPath)
	}
	if cfg.Data.MaxMovies != 250 {
		t.Errorf("Data.MaxMovies = %d, want env override 250", cfg.Data.MaxMovies)
	}
	if cfg.Embedding.Provider != ProviderOpenAI || cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}
	if cfg.Recommend.Alpha != 0.3 || cfg.Recommend.DefaultK != 10 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"https://file.example"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanfValidationFailure(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("RECOMMEND_ALPHA", "2")

	if _, err := LoadWithKoanf(); err == nil || !strings.Contains(err.Error(), "RECOMMEND_ALPHA") {
		t.Errorf("LoadWithKoanf() error = %v, want RECOMMEND_ALPHA violation", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8001\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() with missing CONFIG_PATH = %q, want empty", got)
	}
}
