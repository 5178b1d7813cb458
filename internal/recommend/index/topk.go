// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package index

import (
	"container/heap"
	"math"
	"sort"
)

// similarityScale is the grid similarities are rounded to before ranking.
// Vectors with equal cosine in exact arithmetic then tie in every backend
// and fall back to index order.
const similarityScale = 1e12

func quantize(sim float64) float64 {
	return math.Round(sim*similarityScale) / similarityScale
}

// ranksBefore is the result order: similarity descending, index ascending.
func ranksBefore(a, b Neighbor) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.Index < b.Index
}

// worstFirst is a heap whose root is the lowest-ranked neighbor kept so far.
type worstFirst []Neighbor

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Neighbor)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topK keeps the k best neighbors offered to it.
type topK struct {
	k int
	h worstFirst
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(worstFirst, 0, k)}
}

func (t *topK) offer(n Neighbor) {
	if len(t.h) < t.k {
		heap.Push(&t.h, n)
		return
	}
	if ranksBefore(n, t.h[0]) {
		t.h[0] = n
		heap.Fix(&t.h, 0)
	}
}

func (t *topK) merge(o *topK) {
	for _, n := range o.h {
		t.offer(n)
	}
}

// sorted returns the kept neighbors in result order.
func (t *topK) sorted() []Neighbor {
	out := make([]Neighbor, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return ranksBefore(out[i], out[j]) })
	return out
}
