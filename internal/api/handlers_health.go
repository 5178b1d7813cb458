// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// healthDetails is the engine section of the health response.
type healthDetails struct {
	recommend.Stats
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// Health handles GET /api/v1/health with engine stats and recent latency.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	details := healthDetails{Stats: h.engine.Stats()}
	if h.perf != nil {
		details.Endpoints = h.perf.GetStats()
	}

	status := "healthy"
	if details.Items == 0 {
		status = "degraded"
	}

	respondOK(w, r, models.HealthStatus{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
		Engine:  details,
	}, start, false)
}

// HealthLive handles GET /api/v1/health/live. The process answering is
// enough.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "alive"}, time.Now(), false)
}

// HealthReady handles GET /api/v1/health/ready. The engine is built before
// the server starts, so readiness only fails while draining or when the
// catalog is empty.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.shuttingDown.Load() {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "Server is shutting down", nil)
		return
	}
	if stats := h.engine.Stats(); stats.Items == 0 {
		h.logger.Warn().Msg("readiness probe failed: empty catalog")
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "Catalog is empty", nil)
		return
	}
	respondOK(w, r, map[string]string{"status": "ready"}, time.Now(), false)
}
