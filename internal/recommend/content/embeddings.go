// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/embedding"
	"github.com/tomtom215/marquee/internal/metrics"
)

// loadOrComputeEmbeddings returns one vector per text.
//
// A cache file at cachePath is used only when it parses and its row count
// equals len(texts). Otherwise every text is embedded again and the cache
// is rewritten. Cache problems are logged and never returned.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func loadOrComputeEmbeddings(
	ctx context.Context,
	cachePath string,
	texts []string,
	embedder embedding.Embedder,
	batchSize int,
	logger zerolog.Logger,
) ([][]float32, error) {
	if cachePath != "" {
		m, err := embedding.ReadNPY(cachePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			metrics.EmbeddingCacheEvents.WithLabelValues("missing").Inc()
			logger.Info().Str("path", cachePath).Msg("No embedding cache, computing embeddings")
		case err != nil:
			metrics.EmbeddingCacheEvents.WithLabelValues("invalid").Inc()
			logger.Warn().Err(err).Str("path", cachePath).Msg("Embedding cache unreadable, recomputing")
		case m.Rows != len(texts):
			metrics.EmbeddingCacheEvents.WithLabelValues("invalid").Inc()
			logger.Warn().
				Str("path", cachePath).
				Int("cached_rows", m.Rows).
				Int("catalog_rows", len(texts)).
				Msg("Embedding cache size mismatch, recomputing")
		default:
			metrics.EmbeddingCacheEvents.WithLabelValues("hit").Inc()
			logger.Info().
				Str("path", cachePath).
				Int("rows", m.Rows).
				Int("dim", m.Cols).
				Msg("Loaded cached embeddings")
			rows := make([][]float32, m.Rows)
			for i := range rows {
				rows[i] = m.Row(i)
			}
			return rows, nil
		}
	}

	rows, err := embedding.EmbedAll(ctx, embedder, texts, batchSize, logger)
	if err != nil {
		return nil, fmt.Errorf("compute embeddings with %s: %w", embedder.Name(), err)
	}

	if cachePath != "" {
		if err := embedding.WriteNPY(cachePath, rows); err != nil {
			metrics.EmbeddingCacheEvents.WithLabelValues("write_failed").Inc()
			logger.Warn().Err(err).Str("path", cachePath).Msg("Failed to write embedding cache")
		} else {
			metrics.EmbeddingCacheEvents.WithLabelValues("written").Inc()
			logger.Info().Str("path", cachePath).Int("rows", len(rows)).Msg("Embedding cache written")
		}
	}
	return rows, nil
}
