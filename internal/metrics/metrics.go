// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics defines the Prometheus instrumentation for Marquee and is
// exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "outcome"}, // outcome: "ok", "empty", "not_found", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"mode"},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_recommend_cache_hits_total",
			Help: "Recommendation responses served from the response cache",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_recommend_cache_misses_total",
			Help: "Recommendation responses computed because the cache had no entry",
		},
	)

	// Build Metrics
	BuildDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_build_duration_seconds",
			Help: "Time spent building each engine component at startup",
		},
		[]string{"component"}, // "lexical", "semantic", "collaborative", "mapping"
	)

	IndexBackendInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_index_backend_info",
			Help: "Selected similarity index backend (1 = active)",
		},
		[]string{"index", "backend"},
	)

	IndexSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_index_vectors",
			Help: "Number of vectors stored in each similarity index",
		},
		[]string{"index"},
	)

	// Embedding Metrics
	EmbeddingCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_embedding_cache_events_total",
			Help: "Embedding cache file outcomes at startup",
		},
		[]string{"event"}, // "hit", "missing", "invalid", "written", "write_failed"
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_embedding_requests_total",
			Help: "Total number of embedding provider batch requests",
		},
		[]string{"provider", "outcome"},
	)

	EmbeddingRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_embedding_request_duration_seconds",
			Help:    "Embedding provider batch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	EmbeddingMemo = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_embedding_memo_total",
			Help: "Per-text embedding memo lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Catalog Metrics
	CatalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_catalog_items",
			Help: "Number of records loaded per dataset",
		},
		[]string{"dataset"}, // "movies", "ratings", "external_items", "mapped_items"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome and latency of one recommendation.
func RecordRecommendation(mode, outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordIndexBuild records the backend and size of a freshly built index.
func RecordIndexBuild(name, backend string, vectors int, duration time.Duration) {
	IndexBackendInfo.WithLabelValues(name, backend).Set(1)
	IndexSize.WithLabelValues(name).Set(float64(vectors))
	BuildDuration.WithLabelValues(name).Set(duration.Seconds())
}

// RecordEmbeddingRequest records one provider batch call.
func RecordEmbeddingRequest(provider string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EmbeddingRequests.WithLabelValues(provider, outcome).Inc()
	EmbeddingRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}
