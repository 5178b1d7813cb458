// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/embedding"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/content"
)

type fakeEngine struct {
	lastReq   recommend.Request
	lastLimit int
	items     int
}

func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.lastReq = req
	if req.Title == "Nowhere" {
		return nil, fmt.Errorf("resolve %q: %w", req.Title, recommend.ErrNotFound)
	}
	if req.Title == "Boom" {
		return nil, fmt.Errorf("backend exploded")
	}
	return &recommend.Response{
		Query: recommend.QueryItem{Index: 0, Title: req.Title},
		Items: []recommend.ScoredItem{{Index: 1, Title: "Ronin", Score: 0.9}},
		Metadata: recommend.ResponseMetadata{
			RequestID: req.RequestID,
			Mode:      req.Mode.String(),
			K:         req.K,
			Signals:   []string{"lexical"},
		},
	}, nil
}

func (f *fakeEngine) ExplainTitles(source, candidate string) (*content.Explanation, error) {
	if candidate == "Nowhere" {
		return nil, fmt.Errorf("candidate %q: %w", candidate, recommend.ErrNotFound)
	}
	return &content.Explanation{
		SourceTitle:    source,
		CandidateTitle: candidate,
		SharedGenres:   []string{"crime"},
		SharedCast:     []string{},
	}, nil
}

func (f *fakeEngine) Suggest(query string, limit int) []string {
	f.lastLimit = limit
	if query == "" {
		return nil
	}
	return []string{"Heat", "Heathers"}
}

func (f *fakeEngine) Resolve(title string) (catalog.Item, error) {
	if title == "Nowhere" {
		return catalog.Item{}, recommend.ErrNotFound
	}
	return catalog.Item{Index: 3, Title: title, Year: 1995}, nil
}

func (f *fakeEngine) Stats() recommend.Stats {
	return recommend.Stats{Items: f.items, VocabularySize: 42, LexicalBackend: "exact"}
}

func newTestServer(t *testing.T, engine Recommender) (http.Handler, *Handler) {
	t.Helper()
	perf := middleware.NewPerformanceMonitor(100, time.Second, zerolog.Nop())
	h := NewHandler(engine, perf, "test", zerolog.Nop())
	return NewRouter(h, nil).SetupChi(), h
}

func doGet(t *testing.T, srv http.Handler, target string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body models.APIResponse
	if rec.Code != http.StatusNotModified {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
		}
	}
	return rec, body
}

func TestRecommendHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantErr  string
	}{
		{"default mode", "/api/v1/recommend?title=Heat", http.StatusOK, ""},
		{"explicit mode and k", "/api/v1/recommend?title=Heat&mode=LEXICAL&k=3", http.StatusOK, ""},
		{"alpha", "/api/v1/recommend?title=Heat&alpha=0.25", http.StatusOK, ""},
		{"missing title", "/api/v1/recommend", http.StatusBadRequest, models.CodeValidation},
		{"blank title", "/api/v1/recommend?title=%20%20", http.StatusBadRequest, models.CodeValidation},
		{"bad k", "/api/v1/recommend?title=Heat&k=ten", http.StatusBadRequest, models.CodeValidation},
		{"negative k", "/api/v1/recommend?title=Heat&k=-2", http.StatusBadRequest, models.CodeValidation},
		{"alpha out of range", "/api/v1/recommend?title=Heat&alpha=1.5", http.StatusBadRequest, models.CodeValidation},
		{"alpha not a number", "/api/v1/recommend?title=Heat&alpha=high", http.StatusBadRequest, models.CodeValidation},
		{"unknown mode", "/api/v1/recommend?title=Heat&mode=magic", http.StatusBadRequest, models.CodeInvalidMode},
		{"unknown title", "/api/v1/recommend?title=Nowhere", http.StatusNotFound, models.CodeNotFound},
		{"engine failure", "/api/v1/recommend?title=Boom", http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newTestServer(t, &fakeEngine{items: 5})

			rec, body := doGet(t, srv, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr == "" {
				if body.Status != "success" || body.Error != nil {
					t.Errorf("body = %+v, want success", body)
				}
				return
			}
			if body.Status != "error" || body.Error == nil || body.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", body.Error, tt.wantErr)
			}
		})
	}
}

func TestRecommendHandlerPassesRequest(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{items: 5}
	srv, _ := newTestServer(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend?title=Heat&mode=Semantic&k=4&alpha=0.7", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := engine.lastReq
	if got.Mode != recommend.ModeSemantic || got.K != 4 || got.Alpha == nil || *got.Alpha != 0.7 {
		t.Errorf("request = %+v", got)
	}
	if got.RequestID != "trace-1" {
		t.Errorf("RequestID = %q, want trace-1", got.RequestID)
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"trace-1"`) {
		t.Errorf("body lacks request id: %s", rec.Body.String())
	}
}

func TestRecommendHandlerETag(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{items: 5})

	first, _ := doGet(t, srv, "/api/v1/recommend?title=Heat")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend?title=Heat", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", rec.Body.String())
	}
}

func TestRecommendETagStableAcrossRequests(t *testing.T) {
	t.Parallel()

	engine, err := recommend.Build(context.Background(), recommend.DefaultConfig(), recommend.Sources{
		Items: []catalog.Item{
			{Title: "Heat", Year: 1995, Overview: "thief detective los angeles crew heist", Genres: []string{"Crime"}},
			{Title: "Thief", Year: 1981, Overview: "thief detective heist", Genres: []string{"Crime"}},
			{Title: "Collateral", Year: 2004, Overview: "detective los angeles taxi", Genres: []string{"Thriller"}},
		},
		Embedder: embedding.NewHashingEmbedder(32),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	srv, _ := newTestServer(t, engine)

	first, body := doGet(t, srv, "/api/v1/recommend?title=Heat")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", first.Code)
	}
	if body.Data == nil {
		t.Fatal("missing data")
	}
	etag := first.Header().Get("ETag")

	second, _ := doGet(t, srv, "/api/v1/recommend?title=Heat")
	if got := second.Header().Get("ETag"); got != etag {
		t.Errorf("ETag changed between identical requests: %s then %s", etag, got)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend?title=Heat", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", rec.Code)
	}

	other, _ := doGet(t, srv, "/api/v1/recommend?title=Heat&k=1")
	if other.Header().Get("ETag") == etag {
		t.Error("different k produced the same ETag")
	}
}

func TestExplainHandler(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{items: 5})

	rec, body := doGet(t, srv, "/api/v1/explain?source=Heat&candidate=Ronin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["candidate_title"] != "Ronin" {
		t.Errorf("data = %v", body.Data)
	}
	if _, present := data["director"]; !present {
		t.Error("director key should always be present")
	}

	rec, body = doGet(t, srv, "/api/v1/explain?source=Heat")
	if rec.Code != http.StatusBadRequest || body.Error.Code != models.CodeValidation {
		t.Errorf("missing candidate: status %d, error %+v", rec.Code, body.Error)
	}

	rec, body = doGet(t, srv, "/api/v1/explain?source=Heat&candidate=Nowhere")
	if rec.Code != http.StatusNotFound || body.Error.Code != models.CodeNotFound {
		t.Errorf("unknown candidate: status %d, error %+v", rec.Code, body.Error)
	}
}

func TestSuggestHandler(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{items: 5}
	srv, _ := newTestServer(t, engine)

	rec, body := doGet(t, srv, "/api/v1/suggest?query=hea&limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.lastLimit != 2 {
		t.Errorf("limit = %d, want 2", engine.lastLimit)
	}
	data := body.Data.(map[string]interface{})
	if titles := data["titles"].([]interface{}); len(titles) != 2 {
		t.Errorf("titles = %v", titles)
	}

	_, body = doGet(t, srv, "/api/v1/suggest")
	data = body.Data.(map[string]interface{})
	if titles, ok := data["titles"].([]interface{}); !ok || len(titles) != 0 {
		t.Errorf("empty query titles = %v, want []", data["titles"])
	}

	rec, _ = doGet(t, srv, "/api/v1/suggest?query=x&limit=lots")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestResolveHandler(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{items: 5})

	rec, body := doGet(t, srv, "/api/v1/resolve?title=Heat")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data := body.Data.(map[string]interface{}); data["title"] != "Heat" {
		t.Errorf("data = %v", data)
	}

	rec, body = doGet(t, srv, "/api/v1/resolve?title=Nowhere")
	if rec.Code != http.StatusNotFound || body.Error.Code != models.CodeNotFound {
		t.Errorf("status %d, error %+v", rec.Code, body.Error)
	}
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t, &fakeEngine{items: 5})

	rec, body := doGet(t, srv, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	data := body.Data.(map[string]interface{})
	if data["status"] != "healthy" || data["version"] != "test" {
		t.Errorf("health = %v", data)
	}
	engine := data["engine"].(map[string]interface{})
	if engine["items"] != float64(5) || engine["vocabulary_size"] != float64(42) {
		t.Errorf("engine = %v", engine)
	}

	if rec, _ := doGet(t, srv, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec, _ := doGet(t, srv, "/api/v1/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	h.SetShuttingDown()
	if rec, _ := doGet(t, srv, "/api/v1/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("draining ready status = %d, want 503", rec.Code)
	}
}

func TestHealthReadyEmptyCatalog(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{})
	rec, body := doGet(t, srv, "/api/v1/health/ready")
	if rec.Code != http.StatusServiceUnavailable || body.Error.Code != models.CodeUnavailable {
		t.Errorf("status %d, error %+v", rec.Code, body.Error)
	}
}

func TestRouterFallbacks(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{items: 5})

	rec, body := doGet(t, srv, "/api/v1/nope")
	if rec.Code != http.StatusNotFound || body.Error.Code != models.CodeNotFound {
		t.Errorf("unknown route: status %d, error %+v", rec.Code, body.Error)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend?title=Heat", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_active_requests") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeEngine{items: 5})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolve?title=Heat", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	perf := middleware.NewPerformanceMonitor(10, 0, zerolog.Nop())
	h := NewHandler(&fakeEngine{items: 5}, perf, "test", zerolog.Nop())
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  2,
		RateLimitWindow:    time.Minute,
	})
	srv := NewRouter(h, mw).SetupChi()

	var last *httptest.ResponseRecorder
	var body models.APIResponse
	for range 3 {
		last, body = doGet(t, srv, "/api/v1/resolve?title=Heat")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if body.Error == nil || body.Error.Code != models.CodeRateLimited {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
