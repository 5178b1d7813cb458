// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package index

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// minRowsPerWorker keeps small indices on a single goroutine.
const minRowsPerWorker = 2048

// accelerated is an exact flat inner-product index over L2-normalized rows.
type accelerated struct {
	slab    []float32 // n*dim, row-major, each row unit length or zero
	n       int
	dim     int
	workers int
}

func newAccelerated(rows []Dense, dim, workers int) *accelerated {
	slab := make([]float32, len(rows)*dim)
	for i, r := range rows {
		normalizeInto(slab[i*dim:(i+1)*dim], r)
	}
	return &accelerated{slab: slab, n: len(rows), dim: dim, workers: workers}
}

// normalizeInto writes src scaled to unit length into dst. A zero vector
// stays zero.
func normalizeInto(dst []float32, src Dense) {
	var sum float64
	for _, f := range src {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i, f := range src {
		dst[i] = float32(float64(f) * inv)
	}
}

func (a *accelerated) Backend() Backend { return BackendAccelerated }
func (a *accelerated) Len() int         { return a.n }
func (a *accelerated) Dim() int         { return a.dim }

func (a *accelerated) Query(q Vector, k int) []Neighbor {
	if k <= 0 || a.n == 0 || q == nil || q.Dim() != a.dim {
		return []Neighbor{}
	}

	query := make([]float32, a.dim)
	switch v := q.(type) {
	case Dense:
		normalizeInto(query, v)
	case Sparse:
		d := make(Dense, a.dim)
		for j, ix := range v.Indices {
			d[ix] = float32(v.Values[j])
		}
		normalizeInto(query, d)
	}

	k = min(k, a.n)
	workers := a.workers
	if limit := (a.n + minRowsPerWorker - 1) / minRowsPerWorker; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		top := newTopK(k)
		a.scan(query, 0, a.n, top)
		return top.sorted()
	}

	chunk := (a.n + workers - 1) / workers
	partial := make([]*topK, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, a.n)
		if lo >= hi {
			continue
		}
		top := newTopK(k)
		partial[w] = top
		g.Go(func() error {
			a.scan(query, lo, hi, top)
			return nil
		})
	}
	_ = g.Wait() // scan never fails

	merged := newTopK(k)
	for _, p := range partial {
		if p != nil {
			merged.merge(p)
		}
	}
	return merged.sorted()
}

// scan offers rows [lo, hi) to top.
func (a *accelerated) scan(query []float32, lo, hi int, top *topK) {
	for i := lo; i < hi; i++ {
		row := a.slab[i*a.dim : (i+1)*a.dim]
		var sum float64
		for j, f := range row {
			sum += float64(f) * float64(query[j])
		}
		top.offer(Neighbor{Index: i, Similarity: quantize(sum)})
	}
}
