// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collab

import (
	"sort"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/recommend/index"
)

// Matrix is the item-by-user rating matrix. Rows are external item ids in
// ascending order, columns are external user ids in ascending order.
type Matrix struct {
	items []int
	users []int
	rows  []index.Sparse
	row   map[int]int
}

// BuildMatrix assembles the rating matrix. Repeated (user, item) records
// are summed.
func BuildMatrix(interactions []catalog.Interaction) *Matrix {
	itemSet := make(map[int]struct{})
	userSet := make(map[int]struct{})
	for _, in := range interactions {
		itemSet[in.ItemID] = struct{}{}
		userSet[in.UserID] = struct{}{}
	}

	m := &Matrix{
		items: sortedKeys(itemSet),
		users: sortedKeys(userSet),
	}
	m.row = make(map[int]int, len(m.items))
	for i, id := range m.items {
		m.row[id] = i
	}
	col := make(map[int]int32, len(m.users))
	for j, id := range m.users {
		col[id] = int32(j) //nolint:gosec // user count is far below MaxInt32
	}

	idx := make([][]int32, len(m.items))
	val := make([][]float64, len(m.items))
	for _, in := range interactions {
		r := m.row[in.ItemID]
		idx[r] = append(idx[r], col[in.UserID])
		val[r] = append(val[r], in.Rating)
	}
	m.rows = make([]index.Sparse, len(m.items))
	for r := range m.rows {
		m.rows[r] = index.NewSparse(len(m.users), idx[r], val[r])
	}
	return m
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Items returns the number of rated items.
func (m *Matrix) Items() int { return len(m.items) }

// Users returns the number of distinct users.
func (m *Matrix) Users() int { return len(m.users) }

// Row returns the rating row of an external item id.
func (m *Matrix) Row(itemID int) (index.Sparse, bool) {
	r, ok := m.row[itemID]
	if !ok {
		return index.Sparse{}, false
	}
	return m.rows[r], true
}
