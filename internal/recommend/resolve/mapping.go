// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package resolve

import (
	"sync"
)

// Mapping is a partial function from external item ids to canonical
// indices. The inverse view is derived once, on first use, from the
// finalized forward map. When several external ids share a canonical
// index the inverse keeps the one added first.
type Mapping struct {
	forward map[int]int
	order   []int

	inverseOnce sync.Once
	inverse     map[int]int
}

func newMapping(capacity int) *Mapping {
	return &Mapping{
		forward: make(map[int]int, capacity),
		order:   make([]int, 0, capacity),
	}
}

// NewMapping builds a mapping from explicit (external, canonical) pairs,
// applied in order. A repeated external id keeps its first canonical index.
func NewMapping(pairs [][2]int) *Mapping {
	m := newMapping(len(pairs))
	for _, p := range pairs {
		m.add(p[0], p[1])
	}
	return m
}

func (m *Mapping) add(externalID, canonical int) {
	if _, exists := m.forward[externalID]; exists {
		return
	}
	m.forward[externalID] = canonical
	m.order = append(m.order, externalID)
}

// Canonical returns the canonical index mapped from externalID.
func (m *Mapping) Canonical(externalID int) (int, bool) {
	c, ok := m.forward[externalID]
	return c, ok
}

// External returns the external id mapped onto canonical.
func (m *Mapping) External(canonical int) (int, bool) {
	m.inverseOnce.Do(m.buildInverse)
	e, ok := m.inverse[canonical]
	return e, ok
}

func (m *Mapping) buildInverse() {
	m.inverse = make(map[int]int, len(m.order))
	for _, ext := range m.order {
		c := m.forward[ext]
		if _, taken := m.inverse[c]; !taken {
			m.inverse[c] = ext
		}
	}
}

// Len returns the number of mapped external ids.
func (m *Mapping) Len() int {
	return len(m.forward)
}
