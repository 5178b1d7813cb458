// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package index

// bruteForce compares the query against every stored vector.
type bruteForce struct {
	vectors []Vector
	norms   []float64
	dim     int
}

func newBruteForce(vectors []Vector, dim int) *bruteForce {
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = Norm(v)
	}
	return &bruteForce{vectors: vectors, norms: norms, dim: dim}
}

func (b *bruteForce) Backend() Backend { return BackendBruteForce }
func (b *bruteForce) Len() int         { return len(b.vectors) }
func (b *bruteForce) Dim() int         { return b.dim }

func (b *bruteForce) Query(q Vector, k int) []Neighbor {
	if k <= 0 || len(b.vectors) == 0 || q == nil || q.Dim() != b.dim {
		return []Neighbor{}
	}

	qn := Norm(q)
	dot := scorer(q)
	top := newTopK(min(k, len(b.vectors)))
	for i, v := range b.vectors {
		var sim float64
		if qn != 0 && b.norms[i] != 0 {
			sim = quantize(dot(v) / (qn * b.norms[i]))
		}
		top.offer(Neighbor{Index: i, Similarity: sim})
	}
	return top.sorted()
}
