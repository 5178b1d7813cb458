// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

// RecommendRequest holds the query parameters of GET /api/v1/recommend.
// Mode is checked by the engine so that it stays case-insensitive.
type RecommendRequest struct {
	Title string   `query:"title" validate:"notblank,max=500"`
	Mode  string   `query:"mode" validate:"max=32"`
	K     int      `query:"k" validate:"min=0"`
	Alpha *float64 `query:"alpha" validate:"omitempty,gte=0,lte=1"`
}

// ExplainRequest holds the query parameters of GET /api/v1/explain.
type ExplainRequest struct {
	Source    string `query:"source" validate:"notblank,max=500"`
	Candidate string `query:"candidate" validate:"notblank,max=500"`
}

// SuggestRequest holds the query parameters of GET /api/v1/suggest.
// An empty query is valid and yields no titles.
type SuggestRequest struct {
	Query string `query:"query" validate:"max=500"`
	Limit int    `query:"limit" validate:"min=0"`
}

// ResolveRequest holds the query parameters of GET /api/v1/resolve.
type ResolveRequest struct {
	Title string `query:"title" validate:"notblank,max=500"`
}
