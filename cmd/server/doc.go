// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee answers "more like this" queries over a movie catalog by fusing a
TF-IDF lexical signal with an embedding-based semantic signal, plus an
optional collaborative signal built from MovieLens ratings.

# Startup

 1. Configuration: koanf v2 layering defaults, config.yaml and environment
 2. Logging: zerolog with JSON or console output
 3. Dataset: DuckDB reads the movies CSV and, if MOVIELENS_DIR is set,
    the MovieLens 100k ratings
 4. Embedder: hashing or an OpenAI-compatible API, optionally memoized in
    badger
 5. Engine: every similarity structure is built before serving
 6. Supervisor tree: suture v4 runs the HTTP server and memo GC

The engine is immutable once built. Restart the process to pick up new
data.

# Example

	export MOVIES_PATH=data/movies.csv
	export MOVIELENS_DIR=data/ml-100k
	export EMBEDDING_PROVIDER=openai
	export EMBEDDING_API_KEY=sk-...
	./marquee

	curl 'localhost:8000/api/v1/recommend?title=Heat&mode=hybrid&k=5'

# Signals

SIGINT and SIGTERM cancel the root context. Readiness turns unhealthy,
in-flight requests drain for up to ten seconds, then the process exits.
*/
package main
