// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Endpoint   string
	DurationMS int64
	StatusCode int
}

// EndpointStats contains aggregated statistics for an endpoint
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int     `json:"request_count"`
	ErrorCount   int     `json:"error_count"`
	AvgDuration  float64 `json:"avg_ms"`
	P50Duration  int64   `json:"p50_ms"`
	P95Duration  int64   `json:"p95_ms"`
	P99Duration  int64   `json:"p99_ms"`
	MaxDuration  int64   `json:"max_ms"`
}

// PerformanceMonitor keeps the latest requests in a fixed-size ring and
// reports per-endpoint latency percentiles over it.
type PerformanceMonitor struct {
	mu     sync.Mutex
	ring   []RequestMetrics
	next   int
	full   bool
	slow   time.Duration
	logger zerolog.Logger
}

// NewPerformanceMonitor creates a monitor over the last window requests.
// Requests slower than slow are logged at warn level; zero disables that.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPerformanceMonitor(window int, slow time.Duration, logger zerolog.Logger) *PerformanceMonitor {
	if window <= 0 {
		window = 1000
	}
	return &PerformanceMonitor{
		ring:   make([]RequestMetrics, window),
		slow:   slow,
		logger: logger.With().Str("component", "performance").Logger(),
	}
}

// RecordRequest adds a request metric
func (pm *PerformanceMonitor) RecordRequest(m RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ring[pm.next] = m
	pm.next++
	if pm.next == len(pm.ring) {
		pm.next = 0
		pm.full = true
	}
}

// GetStats returns per-endpoint statistics, busiest endpoint first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.Lock()
	n := pm.next
	if pm.full {
		n = len(pm.ring)
	}
	window := make([]RequestMetrics, n)
	copy(window, pm.ring[:n])
	pm.mu.Unlock()

	durations := make(map[string][]int64)
	errs := make(map[string]int)
	for _, m := range window {
		durations[m.Endpoint] = append(durations[m.Endpoint], m.DurationMS)
		if m.StatusCode >= http.StatusInternalServerError {
			errs[m.Endpoint]++
		}
	}

	stats := make([]EndpointStats, 0, len(durations))
	for endpoint, ds := range durations {
		sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
		var sum int64
		for _, d := range ds {
			sum += d
		}
		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: len(ds),
			ErrorCount:   errs[endpoint],
			AvgDuration:  float64(sum) / float64(len(ds)),
			P50Duration:  percentile(ds, 0.50),
			P95Duration:  percentile(ds, 0.95),
			P99Duration:  percentile(ds, 0.99),
			MaxDuration:  ds[len(ds)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware records every request passing through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		endpoint := routePattern(r)
		pm.RecordRequest(RequestMetrics{
			Endpoint:   endpoint,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: statusOf(ww),
		})

		if pm.slow > 0 && elapsed > pm.slow {
			pm.logger.Warn().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Dur("took", elapsed).
				Msg("Slow request detected")
		}
	})
}

// percentile calculates the percentile value from a sorted slice
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
