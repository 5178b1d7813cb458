// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package fusion combines differently scaled similarity signals into one
// ranking.
//
// Each signal is min-max normalized over its own candidates only, so a
// signal's scale never leaks into another's. An item a signal did not
// return gets 0 from that signal.
package fusion

import (
	"sort"

	"github.com/tomtom215/marquee/internal/recommend/index"
)

// Epsilon is the smallest score range treated as non-degenerate. A signal
// whose candidates span less than Epsilon scores every candidate 0.5.
const Epsilon = 1e-8

// Signal is one ranked candidate list with its weight in the fused score.
type Signal struct {
	Name       string
	Weight     float64
	Candidates []index.Neighbor
}

// Result is one fused item.
type Result struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`

	// Scores holds each signal's normalized score for this item before
	// weighting, keyed by signal name. Signals that did not return the
	// item are absent.
	Scores map[string]float64 `json:"scores"`
}

// Fuse merges signals and returns the top k items by weighted normalized
// score, ties broken by ascending index. It returns an empty slice when no
// signal has candidates or k <= 0.
func Fuse(signals []Signal, k int) []Result {
	byIndex := make(map[int]*Result)
	order := make([]int, 0)

	for _, sig := range signals {
		normalized := Normalize(sig.Candidates)
		seen := make(map[int]struct{}, len(sig.Candidates))
		for i, c := range sig.Candidates {
			if _, dup := seen[c.Index]; dup {
				continue
			}
			seen[c.Index] = struct{}{}

			r, ok := byIndex[c.Index]
			if !ok {
				r = &Result{Index: c.Index, Scores: make(map[string]float64, len(signals))}
				byIndex[c.Index] = r
				order = append(order, c.Index)
			}
			r.Scores[sig.Name] = normalized[i]
			r.Score += sig.Weight * normalized[i]
		}
	}

	results := make([]Result, 0, len(order))
	for _, idx := range order {
		results = append(results, *byIndex[idx])
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	if k <= 0 {
		return []Result{}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Normalize min-max scales the similarities of candidates into [0, 1],
// returning one score per candidate in input order. When the range is
// below Epsilon every score is 0.5.
func Normalize(candidates []index.Neighbor) []float64 {
	out := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	lo, hi := candidates[0].Similarity, candidates[0].Similarity
	for _, c := range candidates[1:] {
		lo = min(lo, c.Similarity)
		hi = max(hi, c.Similarity)
	}

	span := hi - lo
	for i, c := range candidates {
		if span < Epsilon {
			out[i] = 0.5
			continue
		}
		out[i] = (c.Similarity - lo) / span
	}
	return out
}
