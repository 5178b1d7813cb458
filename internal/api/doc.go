// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api serves the recommendation engine over HTTP with the chi router.

# Endpoints

	GET /api/v1/recommend?title=&mode=&k=&alpha=   ranked similar movies
	GET /api/v1/explain?source=&candidate=         why two movies are similar
	GET /api/v1/suggest?query=&limit=              title autocomplete
	GET /api/v1/resolve?title=                     title to catalog item
	GET /api/v1/health                             engine stats and uptime
	GET /api/v1/health/live                        liveness probe
	GET /api/v1/health/ready                       readiness probe
	GET /metrics                                   Prometheus exposition

Every JSON endpoint answers with the models.APIResponse envelope. Errors map
to status codes as follows:

  - recommend.ErrNotFound: 404 NOT_FOUND
  - recommend.ErrInvalidMode: 400 INVALID_MODE
  - recommend.ErrInvalidAlpha: 400 INVALID_ALPHA
  - recommend.ErrIndexOutOfRange: 400 INDEX_OUT_OF_RANGE
  - parameter validation: 400 VALIDATION_ERROR
  - rate limiting: 429 RATE_LIMIT_EXCEEDED

# Middleware

The global stack is RequestID, RealIP, Recoverer, CORS, Compress. API
routes add rate limiting, security headers, Prometheus metrics and the
performance monitor.
*/
package api
