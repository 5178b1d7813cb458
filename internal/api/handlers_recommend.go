// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

// Recommend handles GET /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, perr := getIntParam(r, "k")
	if perr != nil {
		respondAPIError(w, r, http.StatusBadRequest, perr.toAPIError(), nil)
		return
	}
	alpha, perr := getFloatParam(r, "alpha")
	if perr != nil {
		respondAPIError(w, r, http.StatusBadRequest, perr.toAPIError(), nil)
		return
	}

	q := r.URL.Query()
	req := models.RecommendRequest{
		Title: q.Get("title"),
		Mode:  q.Get("mode"),
		K:     k,
		Alpha: alpha,
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	mode, err := recommend.ParseMode(req.Mode)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		Title:     req.Title,
		Mode:      mode,
		K:         req.K,
		Alpha:     req.Alpha,
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondOK(w, r, resp, start, resp.Metadata.CacheHit)
}

// Explain handles GET /api/v1/explain.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	req := models.ExplainRequest{
		Source:    q.Get("source"),
		Candidate: q.Get("candidate"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	exp, err := h.engine.ExplainTitles(req.Source, req.Candidate)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondOK(w, r, exp, start, false)
}

// Suggest handles GET /api/v1/suggest. An empty query yields an empty list.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, perr := getIntParam(r, "limit")
	if perr != nil {
		respondAPIError(w, r, http.StatusBadRequest, perr.toAPIError(), nil)
		return
	}

	req := models.SuggestRequest{
		Query: r.URL.Query().Get("query"),
		Limit: limit,
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	titles := h.engine.Suggest(req.Query, req.Limit)
	if titles == nil {
		titles = []string{}
	}

	respondOK(w, r, models.Suggestions{Query: req.Query, Titles: titles}, start, false)
}

// Resolve handles GET /api/v1/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := models.ResolveRequest{Title: r.URL.Query().Get("title")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	item, err := h.engine.Resolve(req.Title)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondOK(w, r, item, start, false)
}

// respondEngineError maps engine sentinels onto status codes.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "No movie matches the given title", err)
	case errors.Is(err, recommend.ErrInvalidMode):
		respondAPIError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    models.CodeInvalidMode,
			Message: "mode must be one of: lexical, semantic, collaborative, hybrid",
		}, err)
	case errors.Is(err, recommend.ErrInvalidAlpha):
		respondError(w, r, http.StatusBadRequest, models.CodeInvalidAlpha, "alpha must be in [0, 1]", err)
	case errors.Is(err, recommend.ErrIndexOutOfRange):
		respondError(w, r, http.StatusBadRequest, models.CodeIndexOutOfRange, "Catalog index out of range", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "Request cancelled", err)
	default:
		respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Internal server error", err)
	}
}
