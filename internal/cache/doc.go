// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package cache stores computed compatibility scores.

# Overview

ScoreCache is keyed by (sorted user pair, group) and provides:
  - TTL expiry measured from the score's CalculatedAt (an injectable clock
    makes expiry testable)
  - LRU eviction at MaxEntries, backed by hashicorp/golang-lru/v2
  - Invalidation by user, by group, by user within a group, or globally
  - Timestamped tombstones so a write racing an invalidation is dropped
  - A rolling hit rate over a bucketed sliding window
  - An optional persistent tier (BadgerStore) consulted on memory misses

# Usage

	c, err := cache.New(models.DefaultCacheStrategy(), cache.Options{Logger: logger})
	if err != nil {
	    return err
	}
	defer c.Close()

	key := cache.NewKey("alice", "bob", "trip-42")
	if s, ok := c.GetIf(ctx, key, func(s *models.CompatibilityScore) bool {
	    return s.AlgorithmVersion == params.Formula.VersionTag()
	}); ok {
	    return s, nil
	}
	s, err := engine.Score(alice, bob, &params)
	...
	if err := c.Put(ctx, key, s); err != nil {
	    logger.Warn().Err(err).Msg("cache write failed")
	}

	// A profile changed: drop every pair involving alice.
	c.Invalidate(ctx, "alice", "")

# Failure semantics

A persistent-tier read failure is logged and treated as a miss. A
persistent-tier write failure is returned from Put after the in-memory write
succeeded; callers log it and carry on.

# Thread Safety

All methods are safe for concurrent use. Every read-modify-write of the entry
table and the tombstones happens under a single mutex.
*/
package cache
