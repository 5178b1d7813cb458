// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package fusion

import (
	"math"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend/index"
)

func neighbors(pairs ...float64) []index.Neighbor {
	out := make([]index.Neighbor, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, index.Neighbor{Index: int(pairs[i]), Similarity: pairs[i+1]})
	}
	return out
}

func indices(results []Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Index
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []index.Neighbor
		want []float64
	}{
		{"empty", nil, []float64{}},
		{"spread", neighbors(0, 0.9, 1, 0.5, 2, 0.1), []float64{1, 0.5, 0}},
		{"constant", neighbors(0, 0.4, 1, 0.4), []float64{0.5, 0.5}},
		{"single", neighbors(3, 0.7), []float64{0.5}},
		{"below epsilon", neighbors(0, 0.3, 1, 0.3+1e-9), []float64{0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("Normalize()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The lowest candidate of a signal normalizes to 0 and ties with items the
// signal never returned, so the comparison stops short of it.
func TestFuseSingleSignalWeights(t *testing.T) {
	t.Parallel()

	lexical := neighbors(4, 0.9, 2, 0.8, 7, 0.3, 1, 0.1)
	semantic := neighbors(7, 0.99, 3, 0.95, 4, 0.2, 5, 0.1)

	tests := []struct {
		name  string
		alpha float64
		want  []int
	}{
		{"lexical only", 1, []int{4, 2, 7}},
		{"semantic only", 0, []int{7, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fuse([]Signal{
				{Name: "lexical", Weight: tt.alpha, Candidates: lexical},
				{Name: "semantic", Weight: 1 - tt.alpha, Candidates: semantic},
			}, 3)
			if !equalInts(indices(got), tt.want) {
				t.Errorf("Fuse() = %v, want %v", indices(got), tt.want)
			}
		})
	}
}

func TestFuseAbsentScoresZero(t *testing.T) {
	t.Parallel()

	got := Fuse([]Signal{
		{Name: "a", Weight: 0.5, Candidates: neighbors(1, 1.0, 2, 0.0)},
		{Name: "b", Weight: 0.5, Candidates: neighbors(2, 1.0, 3, 0.0)},
	}, 10)

	// 1: 0.5*1 + 0 = 0.5; 2: 0.5*0 + 0.5*1 = 0.5; 3: 0.
	want := []int{1, 2, 3}
	if !equalInts(indices(got), want) {
		t.Fatalf("Fuse() = %v, want %v", indices(got), want)
	}
	if got[0].Score != 0.5 || got[1].Score != 0.5 || got[2].Score != 0 {
		t.Errorf("scores = %v %v %v, want 0.5 0.5 0", got[0].Score, got[1].Score, got[2].Score)
	}
	if _, ok := got[0].Scores["b"]; ok {
		t.Error("item 1 carries a score from signal b, which did not return it")
	}
}

func TestFuseEdgeCases(t *testing.T) {
	t.Parallel()

	if got := Fuse(nil, 5); len(got) != 0 {
		t.Errorf("Fuse(nil) = %v, want empty", got)
	}
	if got := Fuse([]Signal{{Name: "a", Weight: 1}}, 5); len(got) != 0 {
		t.Errorf("Fuse(no candidates) = %v, want empty", got)
	}
	sig := []Signal{{Name: "a", Weight: 1, Candidates: neighbors(1, 0.5, 2, 0.4)}}
	if got := Fuse(sig, 0); len(got) != 0 {
		t.Errorf("Fuse(k=0) = %v, want empty", got)
	}
	if got := Fuse(sig, 1); !equalInts(indices(got), []int{1}) {
		t.Errorf("Fuse(k=1) = %v, want [1]", indices(got))
	}
}

func TestFuseDuplicateCandidateKeepsFirst(t *testing.T) {
	t.Parallel()

	got := Fuse([]Signal{{Name: "a", Weight: 1, Candidates: neighbors(1, 0.2, 2, 1.0, 1, 0.9)}}, 5)
	// Normalization spans [0.2, 1.0]; item 1 keeps its first score of 0.
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 1 || got[1].Score != 0 {
		t.Errorf("Fuse() = %+v, want [2 (1.0), 1 (0)]", got)
	}
}
