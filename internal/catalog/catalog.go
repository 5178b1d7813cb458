// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package catalog holds the canonical movie catalog and the record types
// shared by the loaders and the recommendation engines.
//
// A Catalog is immutable once built. Canonical indices are assigned by New
// in input order (0..N-1) and every derived structure (lexical vectors,
// embeddings, the cross-catalog mapping) is aligned with them.
package catalog

import (
	"strings"
)

// Item is one movie of the canonical catalog.
type Item struct {
	// Index is the canonical position of the item, assigned by New.
	Index int `json:"index"`

	// Title is the display title.
	Title string `json:"title"`

	// NormalizedTitle is Title lowercased and trimmed. Used for resolution.
	NormalizedTitle string `json:"-"`

	// Year is the release year, 0 when unknown.
	Year int `json:"year,omitempty"`

	// ReleaseDate is the raw release metadata, used for year disambiguation.
	ReleaseDate string `json:"release_date,omitempty"`

	Overview   string   `json:"overview,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Cast       []string `json:"cast,omitempty"`
	Director   string   `json:"director,omitempty"`
	Tagline    string   `json:"tagline,omitempty"`
	PosterPath string   `json:"poster_path,omitempty"`
	Popularity float64  `json:"popularity,omitempty"`

	// Text is the concatenated descriptive blob fed to TF-IDF and the embedder.
	Text string `json:"-"`
}

// ExternalItem is a movie from a secondary catalog (MovieLens) that has no
// key in common with the canonical catalog.
type ExternalItem struct {
	ID          int
	Title       string
	Year        int
	ReleaseDate string
}

// Interaction is one user rating of an external item.
type Interaction struct {
	UserID int
	ItemID int
	Rating float64
}

// Catalog is the immutable canonical item list.
type Catalog struct {
	items []Item
}

// New builds a catalog from items, assigning canonical indices in order and
// filling in NormalizedTitle and Text when they are empty.
func New(items []Item) *Catalog {
	out := make([]Item, len(items))
	for i := range items {
		it := items[i]
		it.Index = i
		if it.NormalizedTitle == "" {
			it.NormalizedTitle = NormalizeTitle(it.Title)
		}
		if it.Text == "" {
			it.Text = BuildText(it.Overview, it.Genres, it.Cast, it.Director, it.Tagline)
		}
		out[i] = it
	}
	return &Catalog{items: out}
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Item returns the item at canonical index i.
// ok is false when i is out of range.
func (c *Catalog) Item(i int) (Item, bool) {
	if i < 0 || i >= len(c.items) {
		return Item{}, false
	}
	return c.items[i], true
}

// Title returns the display title at index i. i must be in range.
func (c *Catalog) Title(i int) string {
	return c.items[i].Title
}

// NormalizedTitle returns the normalized title at index i. i must be in range.
func (c *Catalog) NormalizedTitle(i int) string {
	return c.items[i].NormalizedTitle
}

// ReleaseDate returns the release metadata at index i. i must be in range.
func (c *Catalog) ReleaseDate(i int) string {
	return c.items[i].ReleaseDate
}

// Texts returns the descriptive text of every item in canonical order.
func (c *Catalog) Texts() []string {
	texts := make([]string, len(c.items))
	for i := range c.items {
		texts[i] = c.items[i].Text
	}
	return texts
}

// NormalizeTitle lowercases and trims a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// SplitList splits a comma-separated field into trimmed, non-empty tokens.
func SplitList(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanListField strips the bracket and quote characters of a serialized
// Python-style list ("['Drama', 'Crime']" becomes "Drama, Crime").
func CleanListField(field string) string {
	return listCleaner.Replace(field)
}

var listCleaner = strings.NewReplacer("[", "", "]", "", "'", "")

// BuildText joins the non-empty descriptive fields, trimmed, into the text
// blob used for lexical and semantic vectors.
func BuildText(overview string, genres, cast []string, director, tagline string) string {
	parts := []string{
		overview,
		strings.Join(genres, ", "),
		strings.Join(cast, ", "),
		director,
		tagline,
	}
	pieces := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	return strings.Join(pieces, " ")
}
