// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GarbageCollector reclaims space in a value log. *embedding.MemoStore
// satisfies it.
type GarbageCollector interface {
	RunGC() error
}

// MemoGCService periodically garbage collects the embedding memo store.
// GC failures are logged and never restart the service.
type MemoGCService struct {
	store    GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewMemoGCService creates the service. A non-positive interval means 10m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMemoGCService(store GarbageCollector, interval time.Duration, logger zerolog.Logger) *MemoGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MemoGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "memo-gc").Logger(),
		name:     "embedding-memo-gc",
	}
}

// Serve implements suture.Service.
func (s *MemoGCService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("memo GC service starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("memo GC service shutting down")
			return ctx.Err()

		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("memo GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("memo GC complete")
		}
	}
}

// String identifies the service in suture events.
func (s *MemoGCService) String() string {
	return s.name
}
