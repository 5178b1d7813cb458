// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package index

import (
	"math"
	"sort"
)

// Vector is a point in a fixed-dimensional space. Implementations are
// Dense and Sparse.
type Vector interface {
	Dim() int
}

// Dense is a dense float32 vector, as produced by embedding models.
type Dense []float32

// Dim returns the number of components.
func (d Dense) Dim() int { return len(d) }

// Sparse is a sparse vector with strictly increasing Indices.
type Sparse struct {
	Indices   []int32
	Values    []float64
	Dimension int
}

// Dim returns the declared dimension.
func (s Sparse) Dim() int { return s.Dimension }

// NewSparse builds a Sparse vector from unordered (index, value) pairs.
// Duplicate indices are summed; explicit zeros are kept.
func NewSparse(dimension int, indices []int32, values []float64) Sparse {
	n := len(indices)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return indices[order[a]] < indices[order[b]] })

	out := Sparse{
		Indices:   make([]int32, 0, n),
		Values:    make([]float64, 0, n),
		Dimension: dimension,
	}
	for _, o := range order {
		last := len(out.Indices) - 1
		if last >= 0 && out.Indices[last] == indices[o] {
			out.Values[last] += values[o]
			continue
		}
		out.Indices = append(out.Indices, indices[o])
		out.Values = append(out.Values, values[o])
	}
	return out
}

// Neighbor is one query result.
type Neighbor struct {
	Index      int     `json:"index"`
	Similarity float64 `json:"similarity"`
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 {
	var sum float64
	switch x := v.(type) {
	case Dense:
		for _, f := range x {
			sum += float64(f) * float64(f)
		}
	case Sparse:
		for _, f := range x.Values {
			sum += f * f
		}
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of a and b. Vectors of different
// dimensions are treated as sharing their common prefix.
func Dot(a, b Vector) float64 {
	switch x := a.(type) {
	case Dense:
		switch y := b.(type) {
		case Dense:
			return dotDense(x, y)
		case Sparse:
			return dotSparseDense(y, x)
		}
	case Sparse:
		switch y := b.(type) {
		case Dense:
			return dotSparseDense(x, y)
		case Sparse:
			return dotSparse(x, y)
		}
	}
	return 0
}

// Cosine returns the cosine similarity of a and b, or 0 when either norm is 0.
func Cosine(a, b Vector) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

func dotDense(a, b Dense) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func dotSparseDense(s Sparse, d Dense) float64 {
	var sum float64
	for j, ix := range s.Indices {
		if int(ix) < len(d) {
			sum += s.Values[j] * float64(d[ix])
		}
	}
	return sum
}

func dotSparse(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		}
	}
	return sum
}

// scorer returns a function computing Dot(q, v) for many v. Sparse
// queries are scattered into a dense scratch buffer once.
func scorer(q Vector) func(v Vector) float64 {
	s, ok := q.(Sparse)
	if !ok {
		return func(v Vector) float64 { return Dot(q, v) }
	}
	scratch := make([]float64, s.Dimension)
	for j, ix := range s.Indices {
		scratch[ix] = s.Values[j]
	}
	return func(v Vector) float64 {
		row, ok := v.(Sparse)
		if !ok {
			return Dot(q, v)
		}
		var sum float64
		for j, ix := range row.Indices {
			sum += row.Values[j] * scratch[ix]
		}
		return sum
	}
}
