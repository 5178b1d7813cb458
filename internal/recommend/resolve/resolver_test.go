// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package resolve

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Item{
		{Title: "Heat", ReleaseDate: "1995-12-15"},             // 0
		{Title: "Alien", ReleaseDate: "1979-05-25"},            // 1
		{Title: "Aliens", ReleaseDate: "1986-07-18"},           // 2
		{Title: "Heat", ReleaseDate: "1986-03-07"},             // 3
		{Title: "The Alien Within", ReleaseDate: "1995-01-01"}, // 4
		{Title: "Toy Story", ReleaseDate: "1995-10-30"},        // 5
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog())
	tests := []struct {
		title   string
		want    int
		wantErr error
	}{
		{"Alien", 1, nil},
		{"  ALIEN  ", 1, nil},
		{"heat", 0, nil},
		{"alien w", 4, nil},
		{"lien", 1, nil},
		{"toy", 5, nil},
		{"Blade Runner", 0, ErrNotFound},
		{"   ", 0, ErrNotFound},
		{"(", 0, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := r.Resolve(tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.title, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog())
	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"ali", 10, []string{"Alien", "Aliens", "The Alien Within"}},
		{"ali", 2, []string{"Alien", "Aliens"}},
		{"heat", 10, []string{"Heat"}},
		{"", 10, []string{}},
		{"zzz", 10, []string{}},
	}
	for _, tt := range tests {
		got := r.Suggest(tt.query, tt.limit)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Suggest(%q, %d) = %v, want %v", tt.query, tt.limit, got, tt.want)
		}
	}
}

func TestBuildMapping(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog())
	m := r.BuildMapping([]catalog.ExternalItem{
		{ID: 10, Title: "Heat", Year: 1986},      // ambiguous, year picks 3
		{ID: 11, Title: "Heat"},                  // ambiguous, no year, lowest index
		{ID: 12, Title: "Alien", Year: 2020},     // single exact candidate, year ignored
		{ID: 13, Title: "Heat", Year: 2001},      // ambiguous, year filter empties
		{ID: 14, Title: "Star Wars", Year: 1977}, // no match
		{ID: 15, Title: "toy story"},             // exact after normalization
	})

	want := map[int]int{10: 3, 11: 0, 12: 1, 15: 5}
	for ext, canon := range want {
		got, ok := m.Canonical(ext)
		if !ok || got != canon {
			t.Errorf("Canonical(%d) = %d, %v; want %d, true", ext, got, ok, canon)
		}
	}
	for _, ext := range []int{13, 14} {
		if _, ok := m.Canonical(ext); ok {
			t.Errorf("Canonical(%d) ok = true, want unmapped", ext)
		}
	}
	if m.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", m.Len(), len(want))
	}
}

func TestMappingInverseFirstWins(t *testing.T) {
	t.Parallel()

	m := NewMapping([][2]int{{7, 2}, {3, 2}, {9, 4}, {7, 5}})

	if ext, ok := m.External(2); !ok || ext != 7 {
		t.Errorf("External(2) = %d, %v; want 7, true", ext, ok)
	}
	if ext, ok := m.External(4); !ok || ext != 9 {
		t.Errorf("External(4) = %d, %v; want 9, true", ext, ok)
	}
	if _, ok := m.External(5); ok {
		t.Error("External(5) ok = true, want false for repeated external id")
	}
	if c, _ := m.Canonical(7); c != 2 {
		t.Errorf("Canonical(7) = %d, want 2", c)
	}
}

func TestMappingInverseConcurrent(t *testing.T) {
	t.Parallel()

	m := NewMapping([][2]int{{1, 10}, {2, 20}})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ext, ok := m.External(20); !ok || ext != 2 {
				t.Errorf("External(20) = %d, %v; want 2, true", ext, ok)
			}
		}()
	}
	wg.Wait()
}
