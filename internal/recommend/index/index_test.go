// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package index

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

func quietOptions(name string, accelerated bool) Options {
	return Options{Name: name, PreferAccelerated: accelerated, Logger: zerolog.New(io.Discard)}
}

func TestBuildDimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Build([]Vector{Dense{1, 0}, Dense{1, 0, 0}}, quietOptions("mixed", false))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Build() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestBuildBackendSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		vectors []Vector
		prefer  bool
		want    Backend
	}{
		{"dense preferred", []Vector{Dense{1, 0}, Dense{0, 1}}, true, BackendAccelerated},
		{"dense not preferred", []Vector{Dense{1, 0}, Dense{0, 1}}, false, BackendBruteForce},
		{"sparse falls back", []Vector{NewSparse(3, []int32{0}, []float64{1})}, true, BackendBruteForce},
		{"non-finite falls back", []Vector{Dense{float32(math.NaN()), 1}}, true, BackendBruteForce},
		{"zero dimension falls back", []Vector{Dense{}, Dense{}}, true, BackendBruteForce},
		{"empty falls back", nil, true, BackendBruteForce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Build(tt.vectors, quietOptions(tt.name, tt.prefer))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if idx.Backend() != tt.want {
				t.Errorf("Backend() = %v, want %v", idx.Backend(), tt.want)
			}
		})
	}
}

func TestQueryOrderAndTies(t *testing.T) {
	t.Parallel()

	// Rows 1 and 3 are identical to the query; row 2 is orthogonal.
	vectors := []Vector{Dense{1, 1}, Dense{1, 0}, Dense{0, 1}, Dense{2, 0}}
	for _, prefer := range []bool{false, true} {
		idx, err := Build(vectors, quietOptions("ties", prefer))
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		got := idx.Query(Dense{3, 0}, 4)
		wantOrder := []int{1, 3, 0, 2}
		if len(got) != len(wantOrder) {
			t.Fatalf("%s: len(Query()) = %d, want %d", idx.Backend(), len(got), len(wantOrder))
		}
		for i, w := range wantOrder {
			if got[i].Index != w {
				t.Errorf("%s: Query()[%d].Index = %d, want %d", idx.Backend(), i, got[i].Index, w)
			}
		}
		if math.Abs(got[0].Similarity-1) > 1e-6 {
			t.Errorf("%s: top similarity = %v, want 1", idx.Backend(), got[0].Similarity)
		}
	}
}

func TestQueryParallelRowsTieByIndex(t *testing.T) {
	t.Parallel()

	// Rows 1 and 3 are parallel, so their cosine to any query is equal even
	// though the float arithmetic differs.
	vectors := []Vector{Dense{4, 1, 2}, Dense{1, 2, 2}, Dense{3, 1, 3}, Dense{3, 6, 6}}
	for _, prefer := range []bool{false, true} {
		idx, err := Build(vectors, quietOptions("parallel", prefer))
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		got := idx.Query(Dense{9, 6, 6}, 4)
		pos := map[int]int{}
		for i, n := range got {
			pos[n.Index] = i
		}
		if pos[1] > pos[3] {
			t.Errorf("%s: index 3 ranked before index 1 on a tie: %v", idx.Backend(), got)
		}
		if got[pos[1]].Similarity != got[pos[3]].Similarity {
			t.Errorf("%s: parallel rows scored %v and %v, want equal",
				idx.Backend(), got[pos[1]].Similarity, got[pos[3]].Similarity)
		}
	}

	// Integer rating rows go through the sparse path in collab.
	sparse := []Vector{
		NewSparse(3, []int32{0, 1, 2}, []float64{1, 2, 2}),
		NewSparse(3, []int32{0, 1, 2}, []float64{3, 6, 6}),
	}
	idx, err := Build(sparse, quietOptions("parallel-sparse", false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := idx.Query(NewSparse(3, []int32{0, 1, 2}, []float64{9, 6, 6}), 2)
	if len(got) != 2 || got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("sparse Query() = %v, want indices [0 1]", got)
	}
}

func TestQueryEdgeCases(t *testing.T) {
	t.Parallel()

	idx, err := Build([]Vector{Dense{1, 0}, Dense{0, 1}}, quietOptions("edge", false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := idx.Query(Dense{1, 0}, 0); len(got) != 0 {
		t.Errorf("Query(k=0) = %v, want empty", got)
	}
	if got := idx.Query(Dense{1, 0, 0}, 2); len(got) != 0 {
		t.Errorf("Query(wrong dim) = %v, want empty", got)
	}
	if got := idx.Query(Dense{1, 0}, 10); len(got) != 2 {
		t.Errorf("len(Query(k=10)) = %d, want 2", len(got))
	}
}

func TestSparseQuery(t *testing.T) {
	t.Parallel()

	vectors := []Vector{
		NewSparse(5, []int32{0, 2}, []float64{1, 1}),
		NewSparse(5, []int32{3}, []float64{2}),
		NewSparse(5, []int32{2, 0}, []float64{2, 2}),
	}
	idx, err := Build(vectors, quietOptions("sparse", false))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := idx.Query(vectors[0], 3)
	if got[0].Index != 0 || got[1].Index != 2 || got[2].Index != 1 {
		t.Fatalf("Query() = %v, want order [0 2 1]", got)
	}
	if got[2].Similarity != 0 {
		t.Errorf("orthogonal similarity = %v, want 0", got[2].Similarity)
	}
}

func TestNewSparseSumsDuplicates(t *testing.T) {
	t.Parallel()

	s := NewSparse(4, []int32{3, 1, 3}, []float64{1, 2, 4})
	if len(s.Indices) != 2 || s.Indices[0] != 1 || s.Indices[1] != 3 {
		t.Fatalf("Indices = %v, want [1 3]", s.Indices)
	}
	if s.Values[1] != 5 {
		t.Errorf("Values[1] = %v, want 5", s.Values[1])
	}
}

func TestAcceleratedMatchesBruteForce(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	vectors := make([]Vector, 5000)
	for i := range vectors {
		d := make(Dense, 16)
		for j := range d {
			d[j] = float32(rng.NormFloat64())
		}
		vectors[i] = d
	}

	brute, err := Build(vectors, quietOptions("brute", false))
	if err != nil {
		t.Fatalf("Build(brute) error = %v", err)
	}
	fast, err := Build(vectors, Options{Name: "fast", PreferAccelerated: true, Workers: 4, Logger: zerolog.New(io.Discard)})
	if err != nil {
		t.Fatalf("Build(accelerated) error = %v", err)
	}

	for _, q := range []int{0, 17, 4999} {
		a := brute.Query(vectors[q], 10)
		b := fast.Query(vectors[q], 10)
		if len(a) != len(b) {
			t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i].Index != b[i].Index {
				t.Errorf("query %d rank %d: brute=%d accelerated=%d", q, i, a[i].Index, b[i].Index)
			}
			if math.Abs(a[i].Similarity-b[i].Similarity) > 1e-5 {
				t.Errorf("query %d rank %d: similarity %v vs %v", q, i, a[i].Similarity, b[i].Similarity)
			}
		}
		if a[0].Index != q {
			t.Errorf("query %d: top result = %d, want self", q, a[0].Index)
		}
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical dense", Dense{1, 2}, Dense{2, 4}, 1},
		{"orthogonal", Dense{1, 0}, Dense{0, 1}, 0},
		{"zero vector", Dense{0, 0}, Dense{1, 1}, 0},
		{"sparse", NewSparse(3, []int32{0, 1}, []float64{1, 1}), NewSparse(3, []int32{1}, []float64{1}), 1 / math.Sqrt2},
		{"mixed", NewSparse(2, []int32{0}, []float64{1}), Dense{1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}
