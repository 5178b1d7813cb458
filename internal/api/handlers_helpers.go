// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes the envelope with a strong ETag. A matching
// If-None-Match on a 200 response yields 304 with no body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	if response.Metadata.Timestamp.IsZero() {
		response.Metadata.Timestamp = time.Now()
	}
	if response.Metadata.RequestID == "" {
		response.Metadata.RequestID = middleware.GetRequestID(r.Context())
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	if status == http.StatusOK {
		// The request id and timestamp differ per response, so hash the
		// payload only.
		etag := generateETag(etagPayload(response.Data))
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=60")
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

// etagSource is implemented by payloads that carry per-request fields.
type etagSource interface {
	ETagSource() any
}

func etagPayload(data interface{}) interface{} {
	if src, ok := data.(etagSource); ok {
		return src.ETagSource()
	}
	return data
}

// generateETag returns a quoted xxhash of the JSON encoding of v.
func generateETag(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return `"` + strconv.FormatUint(xxhash.Sum64(data), 16) + `"`
}

// respondOK sends a success envelope.
func respondOK(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time, cached bool) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError sends an error envelope. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", apiErr.Code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, r, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}

// respondValidation sends a 400 built from validator failures.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError(), nil)
}

// paramError is a malformed query parameter.
type paramError struct {
	name  string
	value string
	kind  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be a valid %s", e.name, e.kind)
}

func (e *paramError) toAPIError() *models.APIError {
	return &models.APIError{
		Code:    models.CodeValidation,
		Message: e.Error(),
		Details: map[string]interface{}{
			"field": e.name,
			"value": e.value,
		},
	}
}

// getIntParam parses an optional integer query parameter. Absent means 0.
func getIntParam(r *http.Request, name string) (int, *paramError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw, kind: "integer"}
	}
	return v, nil
}

// getFloatParam parses an optional float query parameter. Absent means nil.
func getFloatParam(r *http.Request, name string) (*float64, *paramError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &paramError{name: name, value: raw, kind: "number"}
	}
	return &v, nil
}
