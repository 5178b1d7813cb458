// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Mode selects which similarity signal answers a request.
type Mode string

const (
	// ModeLexical ranks by TF-IDF similarity.
	ModeLexical Mode = "lexical"
	// ModeSemantic ranks by embedding similarity.
	ModeSemantic Mode = "semantic"
	// ModeCollaborative ranks by rating similarity.
	ModeCollaborative Mode = "collaborative"
	// ModeHybrid fuses lexical and semantic similarity.
	ModeHybrid Mode = "hybrid"
)

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeLexical, ModeSemantic, ModeCollaborative, ModeHybrid:
		return true
	default:
		return false
	}
}

// ParseMode parses a mode name case-insensitively. The empty string
// selects ModeHybrid.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeHybrid, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidMode)
	}
	return m, nil
}

// Request is a "more like this" recommendation request.
type Request struct {
	// Title is the query movie title.
	Title string `json:"title"`

	// Mode selects the signal. Empty means hybrid.
	Mode Mode `json:"mode,omitempty"`

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// Alpha overrides Config.Hybrid.Alpha for hybrid requests.
	Alpha *float64 `json:"alpha,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredItem is one recommended movie.
type ScoredItem struct {
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	PosterPath string   `json:"poster_path,omitempty"`

	// Score is the signal similarity, or the fused score in hybrid mode.
	Score float64 `json:"score"`

	// Scores holds the normalized per-signal values of a hybrid result.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// QueryItem identifies the resolved query movie.
type QueryItem struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
}

// Response is a recommendation response.
type Response struct {
	// Query is the movie the request title resolved to.
	Query QueryItem `json:"query"`

	// Items is the ordered list of recommended items. Never nil.
	Items []ScoredItem `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// clone returns a deep copy of r, so cached responses never share
// slices or maps with a caller.
func (r *Response) clone() *Response {
	out := *r
	out.Items = make([]ScoredItem, len(r.Items))
	for i, it := range r.Items {
		it.Genres = slices.Clone(it.Genres)
		it.Scores = maps.Clone(it.Scores)
		out.Items[i] = it
	}
	out.Metadata.Signals = slices.Clone(r.Metadata.Signals)
	if r.Metadata.Alpha != nil {
		alpha := *r.Metadata.Alpha
		out.Metadata.Alpha = &alpha
	}
	return &out
}

// ETagSource returns the part of the response that identical requests
// share. Request ids, latency and timestamps are left out.
func (r *Response) ETagSource() any {
	return struct {
		Query QueryItem    `json:"query"`
		Items []ScoredItem `json:"items"`
		Mode  string       `json:"mode"`
		K     int          `json:"k"`
		Alpha *float64     `json:"alpha,omitempty"`
	}{r.Query, r.Items, r.Metadata.Mode, r.Metadata.K, r.Metadata.Alpha}
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string   `json:"request_id"`
	Mode      string   `json:"mode"`
	K         int      `json:"k"`
	Alpha     *float64 `json:"alpha,omitempty"`

	// Signals lists the signals that were queried.
	Signals []string `json:"signals"`

	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats describes the built engine.
type Stats struct {
	Items          int    `json:"items"`
	VocabularySize int    `json:"vocabulary_size"`
	EmbeddingDim   int    `json:"embedding_dim"`
	Embedder       string `json:"embedder"`

	LexicalBackend       string `json:"lexical_backend"`
	SemanticBackend      string `json:"semantic_backend"`
	CollaborativeBackend string `json:"collaborative_backend,omitempty"`

	CollaborativeEnabled bool `json:"collaborative_enabled"`
	RatedItems           int  `json:"rated_items"`
	Users                int  `json:"users"`
	MappedItems          int  `json:"mapped_items"`

	BuiltAt       time.Time `json:"built_at"`
	BuildDuration string    `json:"build_duration"`
}
