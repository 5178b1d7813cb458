// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/dataset"
	"github.com/tomtom215/marquee/internal/embedding"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/content"
)

// RecommendComponents holds the built engine and the resources that must
// outlive it.
type RecommendComponents struct {
	Engine *recommend.Engine

	// Memo is nil unless EMBEDDING_MEMO_PATH is set.
	Memo *embedding.MemoStore
}

// Close releases the memo store.
func (c *RecommendComponents) Close() error {
	if c.Memo == nil {
		return nil
	}
	return c.Memo.Close()
}

// initRecommend loads the datasets, builds the embedder and builds the engine.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	store, err := dataset.Open(cfg.Data.DuckDBPath, cfg.Data.DuckDBThreads, logger.With().Str("component", "dataset").Logger())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close dataset store")
		}
	}()

	items, err := store.LoadMovies(ctx, dataset.MovieOptions{
		Path:     cfg.Data.MoviesPath,
		Language: cfg.Data.Language,
		MaxItems: cfg.Data.MaxMovies,
	})
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}

	src := recommend.Sources{Items: items}
	if cfg.Data.CollaborativeEnabled() {
		interactions, external, err := store.LoadMovieLens(ctx, cfg.Data.MovieLensDir)
		if err != nil {
			// The collaborative signal is optional; the content signals still serve.
			logger.Warn().Err(err).Str("dir", cfg.Data.MovieLensDir).Msg("MovieLens load failed, collaborative mode disabled")
		} else {
			src.Interactions = interactions
			src.External = external
		}
	} else {
		logger.Info().Msg("MOVIELENS_DIR not set, collaborative mode disabled")
	}

	components := &RecommendComponents{}
	src.Embedder, components.Memo, err = buildEmbedder(&cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	engine, err := recommend.Build(ctx, buildEngineConfig(cfg), src, logger.With().Str("component", "recommend").Logger())
	if err != nil {
		_ = components.Close()
		return nil, err
	}
	components.Engine = engine

	stats := engine.Stats()
	logger.Info().
		Int("items", stats.Items).
		Int("vocabulary", stats.VocabularySize).
		Int("embedding_dim", stats.EmbeddingDim).
		Str("embedder", stats.Embedder).
		Bool("collaborative", stats.CollaborativeEnabled).
		Str("build_duration", stats.BuildDuration).
		Msg("recommendation engine ready")

	return components, nil
}

// buildEmbedder returns the configured provider, wrapped in the badger memo
// when a memo path is set.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func buildEmbedder(cfg *config.EmbeddingConfig, logger zerolog.Logger) (embedding.Embedder, *embedding.MemoStore, error) {
	var inner embedding.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		oai, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           cfg.Timeout,
			BreakerFailures:   cfg.BreakerFailures,
			BreakerTimeout:    cfg.BreakerTimeout,
		}, logger.With().Str("component", "embedding").Logger())
		if err != nil {
			return nil, nil, err
		}
		inner = oai
	default:
		inner = embedding.NewHashingEmbedder(cfg.Dimensions)
	}

	if cfg.MemoPath == "" {
		return inner, nil, nil
	}

	memo, err := embedding.OpenMemoStore(cfg.MemoPath, cfg.MemoTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("open embedding memo: %w", err)
	}
	logger.Info().Str("path", cfg.MemoPath).Dur("ttl", cfg.MemoTTL).Msg("embedding memo enabled")
	return embedding.NewMemoEmbedder(inner, memo, logger), memo, nil
}

// buildEngineConfig maps the service configuration onto recommend.Config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	engineCfg := recommend.DefaultConfig()
	engineCfg.Content = content.Config{
		MaxFeatures:        cfg.Recommend.MaxFeatures,
		EmbeddingCachePath: cfg.Embedding.CachePath,
		EmbeddingBatchSize: cfg.Embedding.BatchSize,
		AcceleratedIndex:   cfg.Recommend.AcceleratedIndex,
		IndexWorkers:       cfg.Recommend.IndexWorkers,
	}
	engineCfg.Hybrid.Alpha = cfg.Recommend.Alpha
	engineCfg.Hybrid.CandidateMultiplier = cfg.Recommend.CandidateMultiplier
	engineCfg.Limits.DefaultK = cfg.Recommend.DefaultK
	engineCfg.Limits.MaxK = cfg.Recommend.MaxK
	engineCfg.Limits.DefaultSuggestions = cfg.Recommend.DefaultSuggestions
	engineCfg.Cache.Enabled = cfg.Recommend.CacheEnabled
	engineCfg.Cache.TTL = cfg.Recommend.CacheTTL
	engineCfg.Cache.MaxEntries = cfg.Recommend.CacheEntries
	return engineCfg
}
