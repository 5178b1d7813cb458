// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package content provides the lexical (TF-IDF) and semantic (embedding)
// similarity signals over the canonical catalog.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/embedding"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend/index"
	"github.com/tomtom215/marquee/internal/recommend/resolve"
)

// ErrIndexOutOfRange is returned when a canonical index is outside the catalog.
var ErrIndexOutOfRange = errors.New("canonical index out of range")

// Config controls how the content engine is built.
type Config struct {
	// MaxFeatures caps the TF-IDF vocabulary. Zero means DefaultMaxFeatures.
	MaxFeatures int

	// EmbeddingCachePath is the NPY file holding one embedding per item.
	// Empty disables the cache.
	EmbeddingCachePath string

	// EmbeddingBatchSize is the number of texts per Embed call.
	EmbeddingBatchSize int

	// AcceleratedIndex requests the accelerated backend for embeddings.
	AcceleratedIndex bool

	// IndexWorkers bounds the accelerated scan. Zero means GOMAXPROCS.
	IndexWorkers int
}

// Engine answers content-based similarity queries. It is immutable after
// NewEngine returns and safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	resolver *resolve.Resolver
	logger   zerolog.Logger

	vocab    *vocabulary
	lexical  []index.Sparse
	semantic []index.Dense

	lexicalIndex  index.Index
	semanticIndex index.Index
}

// NewEngine fits TF-IDF over the catalog texts, loads or computes the
// embeddings, and builds both similarity indices. The two signals are
// built concurrently.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(
	ctx context.Context,
	cat *catalog.Catalog,
	res *resolve.Resolver,
	embedder embedding.Embedder,
	cfg Config,
	logger zerolog.Logger,
) (*Engine, error) {
	if cat == nil || res == nil || embedder == nil {
		return nil, errors.New("content engine requires a catalog, a resolver and an embedder")
	}

	e := &Engine{
		catalog:  cat,
		resolver: res,
		logger:   logger.With().Str("component", "content").Logger(),
	}
	texts := cat.Texts()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		vocab, rows := fitTFIDF(texts, cfg.MaxFeatures)
		vectors := make([]index.Vector, len(rows))
		for i := range rows {
			vectors[i] = rows[i]
		}
		idx, err := index.Build(vectors, index.Options{
			Name:   "lexical",
			Logger: e.logger,
		})
		if err != nil {
			return fmt.Errorf("build lexical index: %w", err)
		}
		e.vocab, e.lexical, e.lexicalIndex = vocab, rows, idx
		metrics.RecordIndexBuild("lexical", idx.Backend().String(), idx.Len(), time.Since(start))
		e.logger.Info().
			Int("items", len(rows)).
			Int("vocabulary", vocab.size()).
			Dur("took", time.Since(start)).
			Msg("Lexical signal ready")
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		rows, err := loadOrComputeEmbeddings(gctx, cfg.EmbeddingCachePath, texts, embedder, cfg.EmbeddingBatchSize, e.logger)
		if err != nil {
			return err
		}
		dense := make([]index.Dense, len(rows))
		vectors := make([]index.Vector, len(rows))
		for i, r := range rows {
			dense[i] = index.Dense(r)
			vectors[i] = dense[i]
		}
		idx, err := index.Build(vectors, index.Options{
			Name:              "semantic",
			PreferAccelerated: cfg.AcceleratedIndex,
			Workers:           cfg.IndexWorkers,
			Logger:            e.logger,
		})
		if err != nil {
			return fmt.Errorf("build semantic index: %w", err)
		}
		e.semantic, e.semanticIndex = dense, idx
		metrics.RecordIndexBuild("semantic", idx.Backend().String(), idx.Len(), time.Since(start))
		e.logger.Info().
			Int("items", len(rows)).
			Int("dim", idx.Dim()).
			Str("embedder", embedder.Name()).
			Dur("took", time.Since(start)).
			Msg("Semantic signal ready")
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e, nil
}

// RecommendLexical returns up to k items most similar to title by TF-IDF.
func (e *Engine) RecommendLexical(title string, k int) ([]index.Neighbor, error) {
	idx, err := e.resolver.Resolve(title)
	if err != nil {
		return nil, err
	}
	return e.SimilarLexical(idx, k)
}

// RecommendSemantic returns up to k items most similar to title by embedding.
func (e *Engine) RecommendSemantic(title string, k int) ([]index.Neighbor, error) {
	idx, err := e.resolver.Resolve(title)
	if err != nil {
		return nil, err
	}
	return e.SimilarSemantic(idx, k)
}

// SimilarLexical returns up to k lexical neighbors of the item at idx,
// excluding the item itself.
func (e *Engine) SimilarLexical(idx, k int) ([]index.Neighbor, error) {
	if err := e.checkIndex(idx); err != nil {
		return nil, err
	}
	return withoutSelf(e.lexicalIndex, e.lexical[idx], idx, k), nil
}

// SimilarSemantic returns up to k semantic neighbors of the item at idx,
// excluding the item itself.
func (e *Engine) SimilarSemantic(idx, k int) ([]index.Neighbor, error) {
	if err := e.checkIndex(idx); err != nil {
		return nil, err
	}
	return withoutSelf(e.semanticIndex, e.semantic[idx], idx, k), nil
}

// withoutSelf asks for one extra neighbor so that dropping self still
// leaves k results.
func withoutSelf(ix index.Index, q index.Vector, self, k int) []index.Neighbor {
	if k <= 0 {
		return []index.Neighbor{}
	}
	raw := ix.Query(q, k+1)
	out := make([]index.Neighbor, 0, k)
	for _, n := range raw {
		if n.Index == self {
			continue
		}
		out = append(out, n)
		if len(out) == k {
			break
		}
	}
	return out
}

func (e *Engine) checkIndex(idx int) error {
	if idx < 0 || idx >= e.catalog.Len() {
		return fmt.Errorf("index %d (catalog has %d items): %w", idx, e.catalog.Len(), ErrIndexOutOfRange)
	}
	return nil
}

// VocabularySize returns the number of TF-IDF terms.
func (e *Engine) VocabularySize() int { return e.vocab.size() }

// EmbeddingDim returns the embedding dimension.
func (e *Engine) EmbeddingDim() int { return e.semanticIndex.Dim() }

// LexicalBackend returns the backend serving lexical queries.
func (e *Engine) LexicalBackend() index.Backend { return e.lexicalIndex.Backend() }

// SemanticBackend returns the backend serving semantic queries.
func (e *Engine) SemanticBackend() index.Backend { return e.semanticIndex.Backend() }
