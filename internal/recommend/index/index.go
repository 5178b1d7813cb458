// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package index provides exact k-nearest-neighbor search by cosine
// similarity over a fixed set of dense or sparse vectors.
//
// Two backends implement the same contract:
//
//   - accelerated: rows are L2-normalized once into a contiguous float32
//     slab and scanned by inner product across several goroutines.
//   - brute_force: direct cosine against precomputed norms. Works for every
//     vector kind and is always available.
//
// The backend is chosen once by Build. When the accelerated backend is
// requested but the data does not qualify, Build logs the reason and falls
// back to brute force; queries never re-evaluate the choice.
//
// Results are ordered by descending similarity with ties broken by
// ascending stored index. Nothing is excluded from results, so callers
// that query with a stored vector drop the self-match themselves.
package index

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/rs/zerolog"
)

// Backend names a search implementation.
type Backend string

const (
	BackendAccelerated Backend = "accelerated"
	BackendBruteForce  Backend = "brute_force"
)

// String implements fmt.Stringer.
func (b Backend) String() string { return string(b) }

// ErrDimensionMismatch is returned by Build when vectors disagree on dimension.
var ErrDimensionMismatch = errors.New("index: vector dimension mismatch")

// Index answers nearest-neighbor queries over an immutable vector set.
// Implementations are safe for concurrent use.
type Index interface {
	// Backend reports which implementation was selected at build time.
	Backend() Backend

	// Len returns the number of stored vectors.
	Len() int

	// Dim returns the common dimension of the stored vectors.
	Dim() int

	// Query returns up to k neighbors of q. A k <= 0, an empty index or a
	// query of the wrong dimension yields an empty result.
	Query(q Vector, k int) []Neighbor
}

// Options configure Build.
type Options struct {
	// Name labels the index in logs (e.g. "lexical", "semantic").
	Name string

	// PreferAccelerated requests the accelerated backend when the data allows it.
	PreferAccelerated bool

	// Workers bounds the parallel scan of the accelerated backend.
	// Zero means GOMAXPROCS.
	Workers int

	// Logger receives backend selection messages.
	Logger zerolog.Logger
}

// Build constructs an index over vectors. The slice is retained and must
// not be modified afterwards.
//
//nolint:gocritic // hugeParam: Options carries a logger by value
func Build(vectors []Vector, opts Options) (Index, error) {
	dim := 0
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("index %q: vector %d is nil", opts.Name, i)
		}
		if i == 0 {
			dim = v.Dim()
			continue
		}
		if v.Dim() != dim {
			return nil, fmt.Errorf("index %q: vector %d has dimension %d, want %d: %w",
				opts.Name, i, v.Dim(), dim, ErrDimensionMismatch)
		}
	}

	logger := opts.Logger.With().Str("component", "index").Str("index", opts.Name).Logger()

	if opts.PreferAccelerated {
		dense, reason := probeAccelerated(vectors, dim)
		if reason == "" {
			workers := opts.Workers
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			idx := newAccelerated(dense, dim, workers)
			logger.Info().
				Str("backend", idx.Backend().String()).
				Int("vectors", idx.Len()).
				Int("dim", dim).
				Int("workers", workers).
				Msg("Similarity index built")
			return idx, nil
		}
		logger.Warn().
			Str("reason", reason).
			Msg("Accelerated backend unavailable, using brute force")
	}

	idx := newBruteForce(vectors, dim)
	logger.Info().
		Str("backend", idx.Backend().String()).
		Int("vectors", idx.Len()).
		Int("dim", dim).
		Msg("Similarity index built")
	return idx, nil
}

// probeAccelerated checks whether the accelerated backend can serve vectors.
// It returns the dense rows, or a non-empty reason when it cannot.
func probeAccelerated(vectors []Vector, dim int) ([]Dense, string) {
	if len(vectors) == 0 {
		return nil, "empty vector set"
	}
	if dim <= 0 {
		return nil, "zero dimension"
	}
	dense := make([]Dense, len(vectors))
	for i, v := range vectors {
		d, ok := v.(Dense)
		if !ok {
			return nil, fmt.Sprintf("vector %d is not dense", i)
		}
		for _, f := range d {
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				return nil, fmt.Sprintf("vector %d has a non-finite component", i)
			}
		}
		dense[i] = d
	}
	return dense, ""
}
