// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/tomtom215/marquee/internal/catalog"
)

// MovieLens 100k file names inside its directory.
const (
	RatingsFile = "u.data"
	ItemsFile   = "u.item"
)

// LoadItems reads a MovieLens u.item file: pipe-separated, ISO-8859-1,
// with the id, title and release date in the first three fields.
func LoadItems(path string) ([]catalog.ExternalItem, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readItems(f)
}

func readItems(r io.Reader) ([]catalog.ExternalItem, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = '|'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var out []catalog.ExternalItem
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 3 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		release := strings.TrimSpace(rec[2])
		out = append(out, catalog.ExternalItem{
			ID:          id,
			Title:       CleanMovieLensTitle(rec[1]),
			Year:        yearSuffix(release),
			ReleaseDate: release,
		})
	}
	return out, nil
}

// LoadMovieLens reads ratings and items from a MovieLens 100k directory.
func (s *Store) LoadMovieLens(ctx context.Context, dir string) ([]catalog.Interaction, []catalog.ExternalItem, error) {
	ratings, err := s.LoadRatings(ctx, filepath.Join(dir, RatingsFile))
	if err != nil {
		return nil, nil, err
	}
	items, err := LoadItems(filepath.Join(dir, ItemsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	s.logger.Info().Str("dir", dir).Int("items", len(items)).Msg("MovieLens items loaded")
	return ratings, items, nil
}

var (
	trailingYearRE    = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	trailingAkaRE     = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	trailingArticleRE = regexp.MustCompile(`^(.*), (The|A|An)$`)
)

// CleanMovieLensTitle drops the trailing " (YYYY)" and any alternate title
// in parentheses, then moves a trailing article to the front, so
// "Usual Suspects, The (1995)" becomes "The Usual Suspects".
func CleanMovieLensTitle(title string) string {
	t := strings.TrimSpace(title)
	for _, re := range []*regexp.Regexp{trailingYearRE, trailingAkaRE} {
		if stripped := strings.TrimSpace(re.ReplaceAllString(t, "")); stripped != "" {
			t = stripped
		}
	}
	if m := trailingArticleRE.FindStringSubmatch(t); m != nil {
		t = m[2] + " " + m[1]
	}
	return t
}

// yearSuffix parses the last four characters of a release date
// ("01-Jan-1995"), returning 0 when they are not a year.
func yearSuffix(release string) int {
	if len(release) < 4 {
		return 0
	}
	y, err := strconv.Atoi(release[len(release)-4:])
	if err != nil {
		return 0
	}
	return y
}
