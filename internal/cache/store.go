// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Store is a persistent second tier behind the in-memory cache.
type Store interface {
	Load(ctx context.Context, key Key) (*models.CompatibilityScore, bool, error)
	Save(ctx context.Context, key Key, score *models.CompatibilityScore, ttl time.Duration) error
	Delete(ctx context.Context, f Filter) error
	Close() error
}

const scoreKeyPrefix = "score:"

// BadgerStore persists scores in BadgerDB. Each entry carries a Badger TTL
// matching its cache expiry, so stale scores disappear without a sweep.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerStore wraps an already-open database. The caller keeps ownership.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a database at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

func storeKey(k Key) []byte {
	return []byte(scoreKeyPrefix + k.String())
}

// Load returns the stored score for key.
func (s *BadgerStore) Load(ctx context.Context, key Key) (*models.CompatibilityScore, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var score models.CompatibilityScore
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &score)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load score: %w", err)
	}
	return &score, true, nil
}

// Save writes score under key with the given time to live.
func (s *BadgerStore) Save(ctx context.Context, key Key, score *models.CompatibilityScore, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(storeKey(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes every stored score matched by f.
func (s *BadgerStore) Delete(ctx context.Context, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := scoreKeyPrefix
	if f.GroupID != "" {
		prefix += f.GroupID + keySep
	}

	var doomed [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw := it.Item().KeyCopy(nil)
			k, ok := parseKey(strings.TrimPrefix(string(raw), scoreKeyPrefix))
			if !ok || !f.Matches(k) {
				continue
			}
			doomed = append(doomed, raw)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan scores: %w", err)
	}
	if len(doomed) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range doomed {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("delete score: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush deletes: %w", err)
	}
	return nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
