// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/embedding"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend/collab"
	"github.com/tomtom215/marquee/internal/recommend/content"
	"github.com/tomtom215/marquee/internal/recommend/fusion"
	"github.com/tomtom215/marquee/internal/recommend/index"
	"github.com/tomtom215/marquee/internal/recommend/resolve"
)

var (
	// ErrNotFound is returned when a title does not resolve to a catalog item.
	ErrNotFound = resolve.ErrNotFound

	// ErrInvalidMode is returned for an unknown recommendation mode.
	ErrInvalidMode = errors.New("invalid recommendation mode")

	// ErrInvalidAlpha is returned when a request alpha is outside [0, 1].
	ErrInvalidAlpha = errors.New("alpha must be in [0, 1]")

	// ErrIndexOutOfRange is returned for a canonical index outside the catalog.
	ErrIndexOutOfRange = content.ErrIndexOutOfRange
)

// Sources is the data an Engine is built from.
type Sources struct {
	// Items is the canonical catalog in canonical order.
	Items []catalog.Item

	// Interactions are the external ratings. Empty disables the
	// collaborative signal.
	Interactions []catalog.Interaction

	// External is the external item list used to map ratings onto Items.
	External []catalog.ExternalItem

	// Embedder produces the semantic vectors.
	Embedder embedding.Embedder
}

// Engine is the single context value shared by every request. All of its
// structures are built once by Build and are read-only afterwards, so it is
// safe for concurrent use. The response cache has its own lock.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog  *catalog.Catalog
	resolver *resolve.Resolver
	content  *content.Engine
	collab   *collab.Engine

	cache *cache.LRU[*Response]
	stats Stats
}

// Build constructs every similarity structure. The content and
// collaborative signals are built concurrently and Build returns only
// after both are complete.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Build(ctx context.Context, cfg *Config, src Sources, logger zerolog.Logger) (*Engine, error) {
	start := time.Now()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(src.Items) == 0 {
		return nil, errors.New("catalog is empty")
	}
	if src.Embedder == nil {
		return nil, errors.New("no embedder configured")
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	e.catalog = catalog.New(src.Items)
	e.resolver = resolve.NewResolver(e.catalog)
	metrics.CatalogItems.WithLabelValues("canonical").Set(float64(e.catalog.Len()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ce, err := content.NewEngine(gctx, e.catalog, e.resolver, src.Embedder, e.config.Content, logger)
		if err != nil {
			return fmt.Errorf("content signal: %w", err)
		}
		e.content = ce
		return nil
	})
	if len(src.Interactions) > 0 {
		g.Go(func() error {
			mapping := e.resolver.BuildMapping(src.External)
			metrics.CatalogItems.WithLabelValues("external").Set(float64(len(src.External)))
			e.logger.Info().
				Int("external_items", len(src.External)).
				Int("mapped", mapping.Len()).
				Msg("Cross-catalog mapping built")

			ce, err := collab.NewEngine(src.Interactions, e.resolver, mapping, logger)
			if err != nil {
				return fmt.Errorf("collaborative signal: %w", err)
			}
			e.collab = ce
			return nil
		})
	} else {
		e.logger.Warn().Msg("No interactions loaded, collaborative signal disabled")
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.config.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](e.config.Cache.MaxEntries, e.config.Cache.TTL)
	}

	e.stats = e.collectStats(src.Embedder, start)
	metrics.BuildDuration.WithLabelValues("total").Set(time.Since(start).Seconds())
	e.logger.Info().
		Int("items", e.stats.Items).
		Int("vocabulary", e.stats.VocabularySize).
		Int("embedding_dim", e.stats.EmbeddingDim).
		Bool("collaborative", e.stats.CollaborativeEnabled).
		Dur("took", time.Since(start)).
		Msg("Recommendation engine ready")
	return e, nil
}

func (e *Engine) collectStats(emb embedding.Embedder, start time.Time) Stats {
	s := Stats{
		Items:           e.catalog.Len(),
		VocabularySize:  e.content.VocabularySize(),
		EmbeddingDim:    e.content.EmbeddingDim(),
		Embedder:        emb.Name(),
		LexicalBackend:  e.content.LexicalBackend().String(),
		SemanticBackend: e.content.SemanticBackend().String(),
		BuiltAt:         time.Now(),
		BuildDuration:   time.Since(start).String(),
	}
	if e.collab != nil {
		s.CollaborativeEnabled = true
		s.CollaborativeBackend = e.collab.Backend().String()
		s.RatedItems = e.collab.RatedItems()
		s.Users = e.collab.Users()
		s.MappedItems = e.collab.MappedItems()
	}
	return s
}

// Stats returns a description of the built engine.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Resolve returns the catalog item a title resolves to.
func (e *Engine) Resolve(title string) (catalog.Item, error) {
	idx, err := e.resolver.Resolve(title)
	if err != nil {
		return catalog.Item{}, err
	}
	it, _ := e.catalog.Item(idx)
	return it, nil
}

// Suggest returns up to limit catalog titles containing query.
// A limit <= 0 uses the configured default; MaxK caps it.
func (e *Engine) Suggest(query string, limit int) []string {
	if limit <= 0 {
		limit = e.config.Limits.DefaultSuggestions
	}
	limit = min(limit, e.config.Limits.MaxK)
	return e.resolver.Suggest(query, limit)
}

// ExplainPair explains the similarity of two canonical items.
func (e *Engine) ExplainPair(a, b int) (*content.Explanation, error) {
	return e.content.ExplainPair(a, b)
}

// ExplainTitles resolves both titles and explains their similarity.
func (e *Engine) ExplainTitles(source, candidate string) (*content.Explanation, error) {
	a, err := e.resolver.Resolve(source)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", source, err)
	}
	b, err := e.resolver.Resolve(candidate)
	if err != nil {
		return nil, fmt.Errorf("candidate %q: %w", candidate, err)
	}
	return e.content.ExplainPair(a, b)
}

// Recommend returns the movies most similar to req.Title under req.Mode.
// A title that resolves but has no neighbors for the mode yields an empty
// Items list, not an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	req, err := e.prepareRequest(req)
	if err != nil {
		metrics.RecordRecommendation("invalid", "invalid", time.Since(start))
		return nil, err
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("mode", req.Mode.String()).
		Int("k", req.K).
		Logger()

	if resp := e.cached(req, start); resp != nil {
		logger.Debug().Msg("cache hit")
		metrics.RecordRecommendation(req.Mode.String(), "cache_hit", time.Since(start))
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, err := e.resolver.Resolve(req.Title)
	if err != nil {
		metrics.RecordRecommendation(req.Mode.String(), "not_found", time.Since(start))
		return nil, fmt.Errorf("resolve %q: %w", req.Title, err)
	}

	items, signals, err := e.rank(req, idx)
	if err != nil {
		metrics.RecordRecommendation(req.Mode.String(), "error", time.Since(start))
		return nil, err
	}

	src, _ := e.catalog.Item(idx)
	resp := &Response{
		Query: QueryItem{Index: src.Index, Title: src.Title, Year: src.Year},
		Items: items,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Mode:      req.Mode.String(),
			K:         req.K,
			Alpha:     req.Alpha,
			Signals:   signals,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
	if e.cache != nil {
		e.cache.Add(e.cacheKey(req), resp.clone())
	}

	outcome := "ok"
	if len(items) == 0 {
		outcome = "empty"
	}
	metrics.RecordRecommendation(req.Mode.String(), outcome, time.Since(start))
	logger.Debug().
		Int("query_index", idx).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and validates the request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Mode == "" {
		req.Mode = ModeHybrid
	}
	if !req.Mode.Valid() {
		return req, fmt.Errorf("%q: %w", req.Mode, ErrInvalidMode)
	}

	if req.K <= 0 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}

	if req.Mode == ModeHybrid {
		alpha := e.config.Hybrid.Alpha
		if req.Alpha != nil {
			alpha = *req.Alpha
		}
		if !(alpha >= 0 && alpha <= 1) {
			return req, fmt.Errorf("alpha %v: %w", alpha, ErrInvalidAlpha)
		}
		req.Alpha = &alpha
	} else {
		req.Alpha = nil
	}
	return req, nil
}

// rank produces the scored items for req and the signals it consulted.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) rank(req Request, idx int) ([]ScoredItem, []string, error) {
	switch req.Mode {
	case ModeLexical:
		ns, err := e.content.SimilarLexical(idx, req.K)
		return e.scored(ns), []string{"lexical"}, err

	case ModeSemantic:
		ns, err := e.content.SimilarSemantic(idx, req.K)
		return e.scored(ns), []string{"semantic"}, err

	case ModeCollaborative:
		if e.collab == nil {
			return []ScoredItem{}, []string{}, nil
		}
		return e.scored(e.collab.SimilarTo(idx, req.K)), []string{"collaborative"}, nil

	case ModeHybrid:
		pool := req.K * e.config.Hybrid.CandidateMultiplier
		lex, err := e.content.SimilarLexical(idx, pool)
		if err != nil {
			return nil, nil, err
		}
		sem, err := e.content.SimilarSemantic(idx, pool)
		if err != nil {
			return nil, nil, err
		}
		alpha := *req.Alpha
		fused := fusion.Fuse([]fusion.Signal{
			{Name: "lexical", Weight: alpha, Candidates: lex},
			{Name: "semantic", Weight: 1 - alpha, Candidates: sem},
		}, req.K)

		items := make([]ScoredItem, len(fused))
		for i, r := range fused {
			items[i] = e.item(r.Index, r.Score)
			items[i].Scores = r.Scores
		}
		return items, []string{"lexical", "semantic"}, nil
	}
	return nil, nil, fmt.Errorf("%q: %w", req.Mode, ErrInvalidMode)
}

func (e *Engine) scored(ns []index.Neighbor) []ScoredItem {
	items := make([]ScoredItem, len(ns))
	for i, n := range ns {
		items[i] = e.item(n.Index, n.Similarity)
	}
	return items
}

func (e *Engine) item(idx int, score float64) ScoredItem {
	it, _ := e.catalog.Item(idx)
	return ScoredItem{
		Index:      it.Index,
		Title:      it.Title,
		Year:       it.Year,
		Overview:   it.Overview,
		Genres:     slices.Clone(it.Genres),
		PosterPath: it.PosterPath,
		Score:      score,
	}
}

// cacheKey keys a prepared request by mode, normalized title, k and alpha.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request) string {
	alpha := -1.0
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	return fmt.Sprintf("rec:%s:%s:%d:%g", req.Mode, catalog.NormalizeTitle(req.Title), req.K, alpha)
}

// cached returns a copy of a cached response for req, or nil.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cached(req Request, start time.Time) *Response {
	if e.cache == nil {
		return nil
	}
	resp, ok := e.cache.Get(e.cacheKey(req))
	if !ok {
		metrics.RecommendCacheMisses.Inc()
		return nil
	}
	metrics.RecommendCacheHits.Inc()

	out := resp.clone()
	out.Metadata.RequestID = req.RequestID
	out.Metadata.CacheHit = true
	out.Metadata.LatencyMS = time.Since(start).Milliseconds()
	out.Metadata.Timestamp = time.Now()
	return out
}
