// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingGC struct {
	calls atomic.Int32
	err   error
}

func (c *countingGC) RunGC() error {
	c.calls.Add(1)
	return c.err
}

func TestMemoGCServiceRunsPeriodically(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"gc succeeds", nil},
		{"gc failure keeps the loop alive", errors.New("value log busy")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gc := &countingGC{err: tt.err}
			svc := NewMemoGCService(gc, 5*time.Millisecond, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want DeadlineExceeded", err)
			}
			if gc.calls.Load() < 2 {
				t.Errorf("RunGC calls = %d, want at least 2", gc.calls.Load())
			}
		})
	}
}

func TestNewMemoGCServiceDefaults(t *testing.T) {
	t.Parallel()

	svc := NewMemoGCService(&countingGC{}, 0, zerolog.Nop())
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
	if svc.String() != "embedding-memo-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}
