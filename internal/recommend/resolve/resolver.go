// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package resolve maps free-text titles and external catalog items onto
// canonical catalog indices.
//
// Resolution is two-stage: an exact match against normalized titles, then a
// literal substring match. When several items qualify the lowest canonical
// index wins. This is deterministic rather than relevance ranked, and
// callers observe it (a query of "alien" picks the first catalog item whose
// title contains "alien" when no title equals it).
package resolve

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/catalog"
)

// ErrNotFound is returned when a title matches no catalog item.
var ErrNotFound = errors.New("title not found")

// Titles is the read-only view of a catalog needed for resolution.
// *catalog.Catalog implements it.
type Titles interface {
	Len() int
	Title(i int) string
	NormalizedTitle(i int) string
	ReleaseDate(i int) string
}

// Resolver resolves titles against one catalog. It is immutable and safe
// for concurrent use.
type Resolver struct {
	titles Titles
	// exact lists, per normalized title, every index carrying it in ascending order.
	exact map[string][]int
}

// NewResolver precomputes the exact-title lookup for titles.
func NewResolver(titles Titles) *Resolver {
	exact := make(map[string][]int, titles.Len())
	for i := 0; i < titles.Len(); i++ {
		t := titles.NormalizedTitle(i)
		exact[t] = append(exact[t], i)
	}
	return &Resolver{titles: titles, exact: exact}
}

// Resolve returns the canonical index for title.
func (r *Resolver) Resolve(title string) (int, error) {
	q := catalog.NormalizeTitle(title)
	if q == "" {
		return 0, ErrNotFound
	}
	if idx, ok := r.exact[q]; ok {
		return idx[0], nil
	}
	for i := 0; i < r.titles.Len(); i++ {
		if strings.Contains(r.titles.NormalizedTitle(i), q) {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// candidates returns every index matching q at the first stage that
// produces any match, in ascending order.
func (r *Resolver) candidates(q string) []int {
	if q == "" {
		return nil
	}
	if idx, ok := r.exact[q]; ok {
		return idx
	}
	var out []int
	for i := 0; i < r.titles.Len(); i++ {
		if strings.Contains(r.titles.NormalizedTitle(i), q) {
			out = append(out, i)
		}
	}
	return out
}

// Suggest returns up to limit distinct display titles containing query,
// case-insensitively, in catalog order. An empty query yields no titles.
func (r *Resolver) Suggest(query string, limit int) []string {
	q := catalog.NormalizeTitle(query)
	out := []string{}
	if q == "" || limit <= 0 {
		return out
	}
	seen := make(map[string]struct{})
	for i := 0; i < r.titles.Len() && len(out) < limit; i++ {
		if !strings.Contains(r.titles.NormalizedTitle(i), q) {
			continue
		}
		title := r.titles.Title(i)
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}

// BuildMapping maps external items onto canonical indices.
//
// Each external title goes through the same exact-then-substring stages as
// Resolve. When the external item has a year and several candidates remain,
// only candidates whose release metadata contains the year are kept; if
// none do, the item stays unmapped. Unmatched items are absent from the
// result.
func (r *Resolver) BuildMapping(external []catalog.ExternalItem) *Mapping {
	m := newMapping(len(external))
	for _, ext := range external {
		cands := r.candidates(catalog.NormalizeTitle(ext.Title))
		if ext.Year > 0 && len(cands) > 1 {
			cands = r.filterByYear(cands, ext.Year)
		}
		if len(cands) == 0 {
			continue
		}
		m.add(ext.ID, cands[0])
	}
	return m
}

func (r *Resolver) filterByYear(cands []int, year int) []int {
	y := strconv.Itoa(year)
	var kept []int
	for _, c := range cands {
		if strings.Contains(r.titles.ReleaseDate(c), y) {
			kept = append(kept, c)
		}
	}
	return kept
}
