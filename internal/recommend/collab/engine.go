// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package collab provides the collaborative (item-item rating) similarity
// signal. Items live in the external catalog and are translated to
// canonical indices through a resolve.Mapping.
package collab

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend/index"
	"github.com/tomtom215/marquee/internal/recommend/resolve"
)

// Engine answers collaborative similarity queries. Immutable after
// NewEngine and safe for concurrent use.
type Engine struct {
	matrix   *Matrix
	idx      index.Index
	resolver *resolve.Resolver
	mapping  *resolve.Mapping
}

// NewEngine builds the rating matrix and its brute-force index.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(
	interactions []catalog.Interaction,
	res *resolve.Resolver,
	mapping *resolve.Mapping,
	logger zerolog.Logger,
) (*Engine, error) {
	if res == nil || mapping == nil {
		return nil, errors.New("collaborative engine requires a resolver and a mapping")
	}
	start := time.Now()
	logger = logger.With().Str("component", "collab").Logger()

	m := BuildMatrix(interactions)
	vectors := make([]index.Vector, len(m.rows))
	for i := range m.rows {
		vectors[i] = m.rows[i]
	}
	idx, err := index.Build(vectors, index.Options{Name: "collaborative", Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("build collaborative index: %w", err)
	}
	metrics.RecordIndexBuild("collaborative", idx.Backend().String(), idx.Len(), time.Since(start))

	logger.Info().
		Int("interactions", len(interactions)).
		Int("items", m.Items()).
		Int("users", m.Users()).
		Int("mapped", mapping.Len()).
		Dur("took", time.Since(start)).
		Msg("Collaborative signal ready")

	return &Engine{matrix: m, idx: idx, resolver: res, mapping: mapping}, nil
}

// Recommend resolves title and returns up to k collaborative neighbors.
// An unresolvable title returns resolve.ErrNotFound.
func (e *Engine) Recommend(title string, k int) ([]index.Neighbor, error) {
	idx, err := e.resolver.Resolve(title)
	if err != nil {
		return nil, err
	}
	return e.SimilarTo(idx, k), nil
}

// SimilarTo returns up to k canonical neighbors of the canonical item idx.
// The result is empty when idx has no external counterpart or no ratings.
// Neighbors without a canonical counterpart are dropped.
func (e *Engine) SimilarTo(idx, k int) []index.Neighbor {
	out := []index.Neighbor{}
	if k <= 0 {
		return out
	}
	ext, ok := e.mapping.External(idx)
	if !ok {
		return out
	}
	row, ok := e.matrix.Row(ext)
	if !ok {
		return out
	}
	self := e.matrix.row[ext]

	seen := map[int]struct{}{idx: {}}
	for _, n := range e.idx.Query(row, k+1) {
		if n.Index == self {
			continue
		}
		canonical, ok := e.mapping.Canonical(e.matrix.items[n.Index])
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, index.Neighbor{Index: canonical, Similarity: n.Similarity})
		if len(out) == k {
			break
		}
	}
	return out
}

// Similarity returns the cosine between the rating rows of two external
// item ids. ok is false when either item has no ratings.
func (e *Engine) Similarity(extA, extB int) (float64, bool) {
	a, ok := e.matrix.Row(extA)
	if !ok {
		return 0, false
	}
	b, ok := e.matrix.Row(extB)
	if !ok {
		return 0, false
	}
	return index.Cosine(a, b), true
}

// RatedItems returns the number of external items with at least one rating.
func (e *Engine) RatedItems() int { return e.matrix.Items() }

// Users returns the number of distinct raters.
func (e *Engine) Users() int { return e.matrix.Users() }

// MappedItems returns the number of external items mapped to the catalog.
func (e *Engine) MappedItems() int { return e.mapping.Len() }

// Backend returns the index backend.
func (e *Engine) Backend() index.Backend { return e.idx.Backend() }
