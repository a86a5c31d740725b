// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/models"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("score cache is closed")

// Options configures a ScoreCache beyond its CacheStrategy.
type Options struct {
	// Now is the time source. Default: time.Now.
	Now func() time.Time

	// Store is an optional persistent tier consulted on memory misses.
	Store Store

	// HitRateWindow is the span of the rolling hit rate. Default: 5m.
	HitRateWindow time.Duration

	Logger zerolog.Logger
}

type memberKey struct {
	userID  string
	groupID string
}

// ScoreCache holds computed scores keyed by (sorted user pair, group).
//
// Entries expire TTL after their CalculatedAt and are evicted least recently
// used first once MaxEntries is reached. Invalidation leaves a timestamped
// tombstone; a Put whose score was calculated at or before a matching
// tombstone is dropped, so a slow writer can never resurrect data that an
// invalidation has already cleared.
type ScoreCache struct {
	mu       sync.Mutex
	strategy models.CacheStrategy
	entries  *lru.Cache[Key, *models.CompatibilityScore]

	globalTomb  time.Time
	userTombs   map[string]time.Time
	groupTombs  map[string]time.Time
	memberTombs map[memberKey]time.Time
	closed      bool

	store  Store
	window *HitRateWindow
	now    func() time.Time
	logger zerolog.Logger

	hits       atomic.Int64
	misses     atomic.Int64
	evictions  atomic.Int64
	suppressed atomic.Int64
}

// New creates a score cache for the given strategy.
//
//nolint:gocritic // Options carries a zerolog.Logger by value
func New(strategy models.CacheStrategy, opts Options) (*ScoreCache, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	entries, err := lru.New[Key, *models.CompatibilityScore](strategy.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &ScoreCache{
		strategy:    strategy,
		entries:     entries,
		userTombs:   make(map[string]time.Time),
		groupTombs:  make(map[string]time.Time),
		memberTombs: make(map[memberKey]time.Time),
		store:       opts.Store,
		window:      NewHitRateWindow(opts.HitRateWindow, 10, now),
		now:         now,
		logger:      opts.Logger.With().Str("component", "score_cache").Logger(),
	}, nil
}

// Strategy returns the cache configuration.
func (c *ScoreCache) Strategy() models.CacheStrategy {
	return c.strategy
}

// Get returns a copy of the cached score for key. Expired entries count as
// misses and are removed. A persistent-tier failure is logged and reported
// as a miss.
func (c *ScoreCache) Get(ctx context.Context, key Key) (*models.CompatibilityScore, bool) {
	return c.GetIf(ctx, key, nil)
}

// GetIf is Get with an acceptance check. A cached score that accept rejects
// is reported and counted as a miss but stays cached.
func (c *ScoreCache) GetIf(ctx context.Context, key Key, accept func(*models.CompatibilityScore) bool) (*models.CompatibilityScore, bool) {
	if !c.strategy.Enabled {
		return nil, false
	}
	ok := func(s *models.CompatibilityScore) bool {
		return s != nil && (accept == nil || accept(s))
	}

	now := c.now()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, false
	}
	s, found := c.entries.Get(key)
	if found && c.expired(s, now) {
		c.entries.Remove(key)
		found = false
	}
	c.mu.Unlock()

	if found {
		if ok(s) {
			c.record(true)
			return s.Clone(), true
		}
		c.record(false)
		return nil, false
	}

	if s := c.loadFromStore(ctx, key, now); ok(s) {
		c.record(true)
		return s.Clone(), true
	}

	c.record(false)
	return nil, false
}

func (c *ScoreCache) loadFromStore(ctx context.Context, key Key, now time.Time) *models.CompatibilityScore {
	if c.store == nil {
		return nil
	}
	s, found, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("persistent cache read failed, treating as miss")
		return nil
	}
	if !found || s == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.expired(s, now) || c.suppressedLocked(key, s.CalculatedAt) {
		return nil
	}
	if c.entries.Add(key, s) {
		c.evictions.Add(1)
	}
	return s
}

// Put stores a score. Scores calculated at or before a matching invalidation
// are silently dropped. The returned error only reports a persistent-tier
// failure or a closed cache; the in-memory write has already happened when
// a store error is returned.
func (c *ScoreCache) Put(ctx context.Context, key Key, score *models.CompatibilityScore) error {
	if !c.strategy.Enabled || score == nil {
		return nil
	}

	now := c.now()
	expires := score.CalculatedAt.Add(c.strategy.TTL)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.suppressedLocked(key, score.CalculatedAt) {
		c.mu.Unlock()
		c.suppressed.Add(1)
		c.logger.Debug().Str("key", key.String()).Msg("dropping score calculated before invalidation")
		return nil
	}
	if now.After(expires) {
		c.mu.Unlock()
		return nil
	}
	stored := score.Clone()
	stored.ExpiresAt = &expires
	if c.entries.Add(key, stored) {
		c.evictions.Add(1)
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, key, stored, expires.Sub(now)); err != nil {
			return fmt.Errorf("persist score %s: %w", key, err)
		}
	}
	return nil
}

// Invalidate removes entries and records a tombstone.
//
//   - userID and groupID empty: everything
//   - userID only: every pair the user belongs to
//   - groupID only: every pair scored within the group
//   - both: the user's pairs within the group
//
// It returns the number of in-memory entries removed.
func (c *ScoreCache) Invalidate(ctx context.Context, userID, groupID string) (int, error) {
	now := c.now()
	f := Filter{UserID: userID, GroupID: groupID}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	removed := 0
	switch {
	case userID == "" && groupID == "":
		removed = c.entries.Len()
		c.entries.Purge()
		c.globalTomb = now
		clear(c.userTombs)
		clear(c.groupTombs)
		clear(c.memberTombs)
	default:
		switch {
		case userID != "" && groupID != "":
			c.memberTombs[memberKey{userID, groupID}] = now
		case userID != "":
			c.userTombs[userID] = now
		default:
			c.groupTombs[groupID] = now
		}
		for _, k := range c.entries.Keys() {
			if f.Matches(k) {
				c.entries.Remove(k)
				removed++
			}
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, f); err != nil {
			return removed, fmt.Errorf("invalidate persistent cache: %w", err)
		}
	}
	return removed, nil
}

// Sweep removes expired entries and tombstones older than the TTL, which
// can no longer suppress any live score. It returns the entries removed.
func (c *ScoreCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}

	removed := 0
	for _, k := range c.entries.Keys() {
		if s, ok := c.entries.Peek(k); ok && c.expired(s, now) {
			c.entries.Remove(k)
			removed++
		}
	}

	horizon := now.Add(-c.strategy.TTL)
	for k, t := range c.userTombs {
		if t.Before(horizon) {
			delete(c.userTombs, k)
		}
	}
	for k, t := range c.groupTombs {
		if t.Before(horizon) {
			delete(c.groupTombs, k)
		}
	}
	for k, t := range c.memberTombs {
		if t.Before(horizon) {
			delete(c.memberTombs, k)
		}
	}
	return removed
}

// Stats returns entry counts and the rolling hit rate.
func (c *ScoreCache) Stats() models.CacheStats {
	now := c.now()

	c.mu.Lock()
	total := c.entries.Len()
	expired := 0
	for _, k := range c.entries.Keys() {
		if s, ok := c.entries.Peek(k); ok && c.expired(s, now) {
			expired++
		}
	}
	tombs := len(c.userTombs) + len(c.groupTombs) + len(c.memberTombs)
	c.mu.Unlock()

	return models.CacheStats{
		TotalEntries:   total,
		ValidEntries:   total - expired,
		ExpiredEntries: expired,
		HitRate:        c.window.Rate(),
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Evictions:      c.evictions.Load(),
		Tombstones:     tombs,
	}
}

// Len returns the number of in-memory entries, including expired ones not
// yet swept.
func (c *ScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Find returns copies of the live in-memory scores matching f, most recently
// used first. The persistent tier is not scanned.
func (c *ScoreCache) Find(f Filter) []*models.CompatibilityScore {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	keys := c.entries.Keys()
	var out []*models.CompatibilityScore
	for i := len(keys) - 1; i >= 0; i-- {
		if !f.Matches(keys[i]) {
			continue
		}
		if s, ok := c.entries.Peek(keys[i]); ok && !c.expired(s, now) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Close releases the cache and its persistent tier. Later calls are no-ops.
func (c *ScoreCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.entries.Purge()
	c.mu.Unlock()

	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func (c *ScoreCache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.window.Record(hit)
}

func (c *ScoreCache) expired(s *models.CompatibilityScore, now time.Time) bool {
	return now.After(s.CalculatedAt.Add(c.strategy.TTL))
}

// suppressedLocked reports whether a score for key calculated at calculatedAt
// is older than a matching tombstone. Must be called with mu held.
func (c *ScoreCache) suppressedLocked(key Key, calculatedAt time.Time) bool {
	older := func(tomb time.Time, ok bool) bool {
		return ok && !calculatedAt.After(tomb)
	}
	if !c.globalTomb.IsZero() && !calculatedAt.After(c.globalTomb) {
		return true
	}
	for _, u := range []string{key.UserA, key.UserB} {
		t, ok := c.userTombs[u]
		if older(t, ok) {
			return true
		}
		if key.GroupID != "" {
			t, ok = c.memberTombs[memberKey{u, key.GroupID}]
			if older(t, ok) {
				return true
			}
		}
	}
	if key.GroupID != "" {
		t, ok := c.groupTombs[key.GroupID]
		if older(t, ok) {
			return true
		}
	}
	return false
}
