// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package content

import (
	"sort"
	"strings"

	"github.com/tomtom215/marquee/internal/recommend/index"
)

// maxSharedCast caps Explanation.SharedCast.
const maxSharedCast = 5

// Explanation describes why two items are similar.
type Explanation struct {
	SourceIndex        int      `json:"source_index"`
	CandidateIndex     int      `json:"candidate_index"`
	SourceTitle        string   `json:"source_title"`
	CandidateTitle     string   `json:"candidate_title"`
	SimilarityLexical  float64  `json:"similarity_lexical"`
	SimilaritySemantic float64  `json:"similarity_semantic"`
	SharedGenres       []string `json:"shared_genres"`
	SharedCast         []string `json:"shared_cast"`
	SameDirector       bool     `json:"same_director"`

	// Director is the candidate's director, nil when unknown.
	Director *string `json:"director"`
}

// ExplainPair compares the items at canonical indices a and b.
func (e *Engine) ExplainPair(a, b int) (*Explanation, error) {
	if err := e.checkIndex(a); err != nil {
		return nil, err
	}
	if err := e.checkIndex(b); err != nil {
		return nil, err
	}
	src, _ := e.catalog.Item(a)
	cand, _ := e.catalog.Item(b)

	ex := &Explanation{
		SourceIndex:        a,
		CandidateIndex:     b,
		SourceTitle:        src.Title,
		CandidateTitle:     cand.Title,
		SimilarityLexical:  lexicalCosine(e.lexical[a], e.lexical[b]),
		SimilaritySemantic: index.Cosine(e.semantic[a], e.semantic[b]),
		SharedGenres:       intersect(src.Genres, cand.Genres, 0),
		SharedCast:         intersect(src.Cast, cand.Cast, maxSharedCast),
	}
	srcDir, candDir := strings.TrimSpace(src.Director), strings.TrimSpace(cand.Director)
	ex.SameDirector = srcDir != "" && srcDir == candDir
	if candDir != "" {
		ex.Director = &candDir
	}
	return ex, nil
}

// lexicalCosine pads the denominator so empty documents yield 0.
func lexicalCosine(a, b index.Sparse) float64 {
	return index.Dot(a, b) / (index.Norm(a)*index.Norm(b) + 1e-9)
}

// intersect returns the sorted distinct values present in both a and b,
// truncated to limit when limit > 0.
func intersect(a, b []string, limit int) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, s := range a {
		if s == "" {
			continue
		}
		if _, ok := inB[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
