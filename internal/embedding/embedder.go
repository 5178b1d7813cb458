// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package embedding turns movie descriptions into dense vectors.
//
// Providers implement Embedder:
//
//   - OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint behind
//     a client-side rate limiter and a circuit breaker.
//   - HashingEmbedder is a deterministic, offline feature-hashing model used
//     when no provider is configured and in tests.
//
// MemoEmbedder wraps any provider with a badger-backed per-text memo, and
// the NPY helpers persist the full catalog matrix between restarts.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	// Name identifies the model. Vectors from different names are not comparable.
	Name() string

	// Embed returns len(texts) vectors of equal dimension.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

var (
	// ErrEmptyResponse is returned when a provider answers with no vectors.
	ErrEmptyResponse = errors.New("embedding: empty response")

	// ErrCountMismatch is returned when a provider answers with the wrong number of vectors.
	ErrCountMismatch = errors.New("embedding: vector count mismatch")

	// ErrInconsistentDimension is returned when vectors disagree on dimension.
	ErrInconsistentDimension = errors.New("embedding: inconsistent vector dimension")
)

// EmbedAll embeds texts in batches of batchSize and checks that every vector
// has the same dimension.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize int, logger zerolog.Logger) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 64
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchSize, len(texts))
		vecs, err := e.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors: %w", start, end, len(vecs), ErrCountMismatch)
		}
		out = append(out, vecs...)

		if (start/batchSize)%50 == 0 {
			logger.Debug().
				Str("model", e.Name()).
				Int("done", end).
				Int("total", len(texts)).
				Msg("Embedding progress")
		}
	}

	if len(out) > 0 {
		dim := len(out[0])
		for i, v := range out {
			if len(v) != dim {
				return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(v), dim, ErrInconsistentDimension)
			}
		}
	}
	return out, nil
}
