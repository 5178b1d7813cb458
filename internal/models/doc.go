// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models defines the HTTP API envelope, error codes and request
// parameter structs. Recommendation payloads themselves are the
// internal/recommend response types.
package models
