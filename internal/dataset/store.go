// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package dataset loads the canonical movie catalog and the MovieLens
// ratings. CSV scanning, filtering and ordering run inside an embedded
// DuckDB instance.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"
)

// Store wraps the DuckDB connection used for loading.
type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens a DuckDB database at path. An empty path opens an in-memory
// database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(path string, threads int, logger zerolog.Logger) (*Store, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if path != "" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are never needed for CSV loading; keep DuckDB off the network.
	connStr := fmt.Sprintf("%s?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false", path, threads)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{
		conn:   conn,
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// columns returns the lowercased column names of a relation.
func (s *Store) columns(ctx context.Context, relation string) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx, "DESCRIBE SELECT * FROM "+relation)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if name, ok := vals[0].(string); ok {
			out[strings.ToLower(name)] = true
		}
	}
	return out, rows.Err()
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders s as a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
