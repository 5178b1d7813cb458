// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides centralized configuration management for Marquee.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, or the first of config.yaml,
    config.yml, /etc/marquee/config.yaml, /etc/marquee/config.yml
  - Environment variables listed in the mapping table

# Configuration Structure

  - ServerConfig: HTTP listen address, timeout, environment
  - SecurityConfig: CORS origins and rate limiting
  - DataConfig: movies CSV, MovieLens directory, DuckDB settings
  - EmbeddingConfig: embedding provider, NPY cache, badger memo
  - RecommendConfig: k limits, hybrid alpha, index and cache tuning
  - LoggingConfig: level, format, caller

# Example config.yaml

	server:
	  port: 8000
	data:
	  movies_path: /data/movies.csv
	  movielens_dir: /data/ml-100k
	embedding:
	  provider: openai
	  base_url: http://localhost:11434/v1
	  model: all-minilm
	recommend:
	  alpha: 0.6

# Environment Variables

Every key has an environment override, for example MOVIES_PATH,
MOVIELENS_DIR, EMBEDDING_PROVIDER, RECOMMEND_ALPHA, HTTP_PORT and LOG_LEVEL.
CORS_ORIGINS accepts a comma-separated list.
*/
package config
