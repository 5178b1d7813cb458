// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/metrics"
)

// OpenAIConfig configures OpenAIEmbedder.
type OpenAIConfig struct {
	// BaseURL overrides the API root, e.g. for a local OpenAI-compatible server.
	BaseURL string
	APIKey  string
	Model   string

	// Dimensions requests truncated vectors when the model supports it. Zero
	// keeps the model default.
	Dimensions int

	// RequestsPerSecond bounds outgoing batch calls. Zero disables limiting.
	RequestsPerSecond float64

	// Timeout bounds one batch call.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// OpenAIEmbedder embeds texts through an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	dims    int
	timeout time.Duration
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[][]float32]
	name    string
	logger  zerolog.Logger
}

// NewOpenAIEmbedder creates a provider-backed embedder.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewOpenAIEmbedder(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	e := &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		dims:    cfg.Dimensions,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, 1),
		name:    "embedding-" + cfg.Model,
		logger:  logger.With().Str("component", "embedding").Str("model", cfg.Model).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(e.name).Set(0)

	failures := cfg.BreakerFailures
	e.cb = gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        e.name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Embedding circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return e, nil
}

// Name implements Embedder.
func (e *OpenAIEmbedder) Name() string {
	if e.dims > 0 {
		return fmt.Sprintf("%s@%d", e.model, e.dims)
	}
	return e.model
}

// Embed implements Embedder. One call issues one provider request.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	start := time.Now()
	vecs, err := e.cb.Execute(func() ([][]float32, error) {
		return e.request(ctx, texts)
	})
	metrics.RecordEmbeddingRequest("openai", time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(e.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(e.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(e.name, "success").Inc()
	return vecs, nil
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d texts: %w", len(resp.Data), len(texts), ErrCountMismatch)
	}

	// The API tags each vector with its input position.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("invalid embedding index %d: %w", d.Index, ErrCountMismatch)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
