// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative max features", func(c *Config) { c.Content.MaxFeatures = -1 }},
		{"negative batch size", func(c *Config) { c.Content.EmbeddingBatchSize = -1 }},
		{"negative workers", func(c *Config) { c.Content.IndexWorkers = -1 }},
		{"alpha below zero", func(c *Config) { c.Hybrid.Alpha = -0.1 }},
		{"alpha above one", func(c *Config) { c.Hybrid.Alpha = 1.1 }},
		{"zero multiplier", func(c *Config) { c.Hybrid.CandidateMultiplier = 0 }},
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }},
		{"max below default", func(c *Config) { c.Limits.MaxK = 5 }},
		{"zero suggestions", func(c *Config) { c.Limits.DefaultSuggestions = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"zero entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.TTL = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled cache with zero TTL: Validate() = %v", err)
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Hybrid.Alpha = 0.9
	if cfg.Hybrid.Alpha != 0.5 {
		t.Errorf("Clone shares state: original alpha = %v", cfg.Hybrid.Alpha)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeHybrid, false},
		{"lexical", ModeLexical, false},
		{" Semantic ", ModeSemantic, false},
		{"COLLABORATIVE", ModeCollaborative, false},
		{"hybrid", ModeHybrid, false},
		{"popular", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}
