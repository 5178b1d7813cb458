// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend answers "more like this" queries over a movie catalog.
//
// # Architecture
//
// Three independent similarity signals are combined:
//
//   - Lexical: TF-IDF over each movie's descriptive text (package content)
//   - Semantic: embedding cosine similarity (package content)
//   - Collaborative: item-item rating similarity from a second catalog
//     that shares no key with the first (package collab)
//
// Titles are matched to canonical indices by package resolve, which also
// maps the rating catalog onto the canonical one. Nearest-neighbor search
// goes through package index, which picks an accelerated or brute-force
// backend once at build time. Hybrid mode fuses the lexical and semantic
// rankings with package fusion.
//
// # Lifecycle
//
// Build constructs every structure exactly once and returns an immutable
// Engine. Queries take no locks apart from the optional response cache.
//
// # Usage
//
//	eng, err := recommend.Build(ctx, recommend.DefaultConfig(), recommend.Sources{
//		Items:        items,
//		Interactions: ratings,
//		External:     externalItems,
//		Embedder:     embedding.NewHashingEmbedder(384),
//	}, logger)
//	if err != nil {
//		return err
//	}
//	resp, err := eng.Recommend(ctx, recommend.Request{Title: "Heat", Mode: recommend.ModeHybrid, K: 10})
package recommend
