// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/content"
)

// Recommender is the engine surface the handlers need. *recommend.Engine
// satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	ExplainTitles(source, candidate string) (*content.Explanation, error)
	Suggest(query string, limit int) []string
	Resolve(title string) (catalog.Item, error)
	Stats() recommend.Stats
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	perf      *middleware.PerformanceMonitor
	logger    zerolog.Logger
	version   string
	startTime time.Time

	// shuttingDown flips readiness off once the server begins draining.
	shuttingDown atomic.Bool
}

// NewHandler creates a Handler. perf may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine Recommender, perf *middleware.PerformanceMonitor, version string, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		perf:      perf,
		logger:    logger,
		version:   version,
		startTime: time.Now(),
	}
}

// SetShuttingDown marks the handler as draining so readiness fails.
func (h *Handler) SetShuttingDown() {
	h.shuttingDown.Store(true)
}
