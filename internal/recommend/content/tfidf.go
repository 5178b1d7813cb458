// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package content

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tomtom215/marquee/internal/recommend/index"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary.
const DefaultMaxFeatures = 50000

// tokenRE matches runs of two or more word characters.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// tokenize lowercases doc and returns its non-stop-word tokens.
func tokenize(doc string) []string {
	raw := tokenRE.FindAllString(strings.ToLower(doc), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// vocabulary is a fitted TF-IDF term table. Terms are in ascending order
// and a term's position is its column.
type vocabulary struct {
	terms []string
	idf   []float64
}

// fitTFIDF learns a vocabulary from docs and returns one L2-normalized
// sparse row per doc.
//
// When more than maxFeatures distinct terms occur, the terms with the
// highest total count are kept (ties by term). Weights use the smoothed
// idf ln((1+n)/(1+df)) + 1 on raw term counts.
func fitTFIDF(docs []string, maxFeatures int) (*vocabulary, []index.Sparse) {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	counts := make([]map[string]int, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, tok := range tokenize(doc) {
			c[tok]++
		}
		for tok, n := range c {
			total[tok] += n
			df[tok]++
		}
		counts[i] = c
	}

	terms := make([]string, 0, len(total))
	for tok := range total {
		terms = append(terms, tok)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			if total[terms[a]] != total[terms[b]] {
				return total[terms[a]] > total[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	column := make(map[string]int32, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for j, tok := range terms {
		column[tok] = int32(j) //nolint:gosec // vocabulary is capped well below MaxInt32
		idf[j] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	rows := make([]index.Sparse, len(docs))
	for i, c := range counts {
		indices := make([]int32, 0, len(c))
		values := make([]float64, 0, len(c))
		var sumSq float64
		for tok, cnt := range c {
			j, ok := column[tok]
			if !ok {
				continue
			}
			w := float64(cnt) * idf[j]
			indices = append(indices, j)
			values = append(values, w)
			sumSq += w * w
		}
		if sumSq > 0 {
			inv := 1 / math.Sqrt(sumSq)
			for k := range values {
				values[k] *= inv
			}
		}
		rows[i] = index.NewSparse(len(terms), indices, values)
	}

	return &vocabulary{terms: terms, idf: idf}, rows
}

// size returns the number of terms.
func (v *vocabulary) size() int {
	return len(v.terms)
}
