// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/catalog"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("required column missing")

// MovieOptions controls LoadMovies.
type MovieOptions struct {
	// Path is the TMDB-style movies CSV.
	Path string

	// Language keeps only rows whose original_language equals it.
	// Empty keeps every language.
	Language string

	// MaxItems caps the catalog after ordering by popularity.
	// Zero means no cap.
	MaxItems int
}

// movieColumns are read as text in this order. title and overview are
// required; the rest are NULL when absent.
var movieColumns = []string{
	"title", "overview", "genres", "cast", "director", "tagline", "poster_path", "release_date",
}

// LoadMovies reads the canonical catalog: rows in the configured language
// with an overview, most popular first (file order breaks ties), capped at
// MaxItems.
func (s *Store) LoadMovies(ctx context.Context, opts MovieOptions) ([]catalog.Item, error) {
	start := time.Now()
	src := fmt.Sprintf(`read_csv(%s, header = true, all_varchar = true, delim = ',', quote = '"', escape = '"')`,
		quoteLiteral(opts.Path))

	cols, err := s.columns(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", opts.Path, err)
	}
	for _, req := range []string{"title", "overview"} {
		if !cols[req] {
			return nil, fmt.Errorf("%s: %q: %w", opts.Path, req, ErrMissingColumn)
		}
	}

	selects := make([]string, 0, len(movieColumns)+1)
	for _, c := range movieColumns {
		if cols[c] {
			selects = append(selects, fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(c)))
		} else {
			selects = append(selects, "CAST(NULL AS VARCHAR)")
		}
	}
	popularity := "CAST(NULL AS DOUBLE)"
	if cols["popularity"] {
		popularity = "TRY_CAST(popularity AS DOUBLE)"
	}
	selects = append(selects, popularity+" AS pop")

	var (
		where = []string{"overview IS NOT NULL"}
		args  []any
	)
	if opts.Language != "" {
		if cols["original_language"] {
			where = append(where, "original_language = ?")
			args = append(args, opts.Language)
		} else {
			s.logger.Warn().Str("path", opts.Path).Msg("No original_language column, language filter skipped")
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM (SELECT *, row_number() OVER () AS src_row FROM %s) WHERE %s ORDER BY pop DESC NULLS LAST, src_row",
		strings.Join(selects, ", "), src, strings.Join(where, " AND "))
	if opts.MaxItems > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.MaxItems)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]catalog.Item, 0, max(opts.MaxItems, 0))
	for rows.Next() {
		var (
			title, overview, genres, cast, director, tagline, poster, release sql.NullString
			pop                                                               sql.NullFloat64
		)
		if err := rows.Scan(&title, &overview, &genres, &cast, &director, &tagline, &poster, &release, &pop); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, movieItem(title.String, overview.String, genres.String, cast.String,
			director.String, tagline.String, poster.String, release.String, pop.Float64))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read movies: %w", err)
	}

	s.logger.Info().
		Str("path", opts.Path).
		Str("language", opts.Language).
		Int("items", len(items)).
		Dur("took", time.Since(start)).
		Msg("Movies loaded")
	return items, nil
}

func movieItem(title, overview, genres, cast, director, tagline, poster, release string, popularity float64) catalog.Item {
	it := catalog.Item{
		Title:       strings.TrimSpace(title),
		Overview:    strings.TrimSpace(overview),
		Genres:      catalog.SplitList(catalog.CleanListField(genres)),
		Cast:        catalog.SplitList(catalog.CleanListField(cast)),
		Director:    strings.TrimSpace(director),
		Tagline:     strings.TrimSpace(tagline),
		PosterPath:  strings.TrimSpace(poster),
		ReleaseDate: strings.TrimSpace(release),
		Popularity:  popularity,
	}
	if len(it.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(it.ReleaseDate[:4]); err == nil {
			it.Year = y
		}
	}
	return it
}

// LoadRatings reads a MovieLens u.data file: tab-separated user id, item
// id, rating and timestamp, without a header.
func (s *Store) LoadRatings(ctx context.Context, path string) ([]catalog.Interaction, error) {
	start := time.Now()
	query := fmt.Sprintf(`SELECT user_id, item_id, rating FROM read_csv(%s,
		delim = '\t',
		header = false,
		columns = {'user_id': 'INTEGER', 'item_id': 'INTEGER', 'rating': 'DOUBLE', 'ts': 'BIGINT'})`,
		quoteLiteral(path))

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Interaction
	for rows.Next() {
		var in catalog.Interaction
		if err := rows.Scan(&in.UserID, &in.ItemID, &in.Rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	s.logger.Info().
		Str("path", path).
		Int("ratings", len(out)).
		Dur("took", time.Since(start)).
		Msg("Ratings loaded")
	return out, nil
}
