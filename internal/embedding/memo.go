// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package embedding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// memoKeyPrefix namespaces memo entries inside the badger keyspace.
const memoKeyPrefix = "emb:"

// MemoStore persists individual text embeddings keyed by model and text
// hash, so that a catalog change only re-embeds the texts that changed.
type MemoStore struct {
	db  *badger.DB
	ttl time.Duration
}

// memoEntry is the stored value. Len guards against truncated writes.
type memoEntry struct {
	Len    int       `json:"n"`
	Vector []float32 `json:"v"`
}

// OpenMemoStore opens (or creates) a badger database at path. An empty
// path opens an in-memory store. A zero ttl keeps entries forever.
func OpenMemoStore(path string, ttl time.Duration) (*MemoStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for embedding memo: %w", err)
	}
	return &MemoStore{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *MemoStore) Close() error {
	return s.db.Close()
}

func memoKey(model, text string) []byte {
	return []byte(memoKeyPrefix + model + ":" +
		strconv.FormatUint(xxhash.Sum64String(text), 16) + ":" +
		strconv.Itoa(len(text)))
}

// Lookup returns the memoized vector for each text, nil where absent.
func (s *MemoStore) Lookup(model string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			item, err := txn.Get(memoKey(model, text))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get memo entry: %w", err)
			}
			var entry memoEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode memo entry: %w", err)
			}
			if entry.Len == len(entry.Vector) && entry.Len > 0 {
				out[i] = entry.Vector
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Store memoizes vecs[i] for texts[i].
func (s *MemoStore) Store(model string, texts []string, vecs [][]float32) error {
	if len(texts) != len(vecs) {
		return fmt.Errorf("store %d vectors for %d texts: %w", len(vecs), len(texts), ErrCountMismatch)
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, text := range texts {
		data, err := json.Marshal(memoEntry{Len: len(vecs[i]), Vector: vecs[i]})
		if err != nil {
			return fmt.Errorf("marshal memo entry: %w", err)
		}
		entry := badger.NewEntry(memoKey(model, text), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		if err := wb.SetEntry(entry); err != nil {
			return fmt.Errorf("set memo entry: %w", err)
		}
	}
	return wb.Flush()
}

// RunGC reclaims value log space until badger reports nothing left to rewrite.
func (s *MemoStore) RunGC() error {
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("badger value log gc: %w", err)
		}
	}
}

// MemoEmbedder serves repeated texts from a MemoStore and forwards only the
// misses to the wrapped Embedder.
type MemoEmbedder struct {
	inner  Embedder
	store  *MemoStore
	logger zerolog.Logger
}

// NewMemoEmbedder wraps inner with store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoEmbedder(inner Embedder, store *MemoStore, logger zerolog.Logger) *MemoEmbedder {
	return &MemoEmbedder{
		inner:  inner,
		store:  store,
		logger: logger.With().Str("component", "embedding_memo").Logger(),
	}
}

// Name implements Embedder.
func (m *MemoEmbedder) Name() string {
	return m.inner.Name()
}

// Embed implements Embedder. Memo read or write failures degrade to calling
// the wrapped embedder and are logged.
func (m *MemoEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := m.inner.Name()
	out, err := m.store.Lookup(model, texts)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Embedding memo lookup failed")
		out = make([][]float32, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range out {
		if v == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	metrics.EmbeddingMemo.WithLabelValues("hit").Add(float64(len(texts) - len(missIdx)))
	metrics.EmbeddingMemo.WithLabelValues("miss").Add(float64(len(missIdx)))

	if len(missIdx) == 0 {
		return out, nil
	}

	fresh, err := m.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("got %d vectors for %d texts: %w", len(fresh), len(missTexts), ErrCountMismatch)
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
	}

	if err := m.store.Store(model, missTexts, fresh); err != nil {
		m.logger.Warn().Err(err).Int("texts", len(missTexts)).Msg("Embedding memo write failed")
	}
	return out, nil
}
