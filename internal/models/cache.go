// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import (
	"fmt"
	"time"
)

// EvictionLRU is the only supported eviction policy.
const EvictionLRU = "lru"

// CacheStrategy configures the score cache and which change events clear it.
type CacheStrategy struct {
	Enabled        bool          `json:"enabled" koanf:"enabled"`
	TTL            time.Duration `json:"ttl" koanf:"ttl"`
	MaxEntries     int           `json:"max_entries" koanf:"max_entries"`
	EvictionPolicy string        `json:"eviction_policy" koanf:"eviction_policy"`

	InvalidateOnProfileUpdate   bool `json:"invalidate_on_profile_update" koanf:"invalidate_on_profile_update"`
	InvalidateOnGroupChange     bool `json:"invalidate_on_group_change" koanf:"invalidate_on_group_change"`
	InvalidateOnAlgorithmUpdate bool `json:"invalidate_on_algorithm_update" koanf:"invalidate_on_algorithm_update"`
}

// DefaultCacheStrategy returns a 24h, 10k-entry LRU cache with every
// invalidation trigger enabled.
func DefaultCacheStrategy() CacheStrategy {
	return CacheStrategy{
		Enabled:                     true,
		TTL:                         24 * time.Hour,
		MaxEntries:                  10000,
		EvictionPolicy:              EvictionLRU,
		InvalidateOnProfileUpdate:   true,
		InvalidateOnGroupChange:     true,
		InvalidateOnAlgorithmUpdate: true,
	}
}

// Validate checks the sizing and eviction settings.
func (s CacheStrategy) Validate() error {
	if s.MaxEntries <= 0 {
		return fmt.Errorf("max entries must be positive, got %d", s.MaxEntries)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", s.TTL)
	}
	if s.EvictionPolicy != "" && s.EvictionPolicy != EvictionLRU {
		return fmt.Errorf("unsupported eviction policy %q", s.EvictionPolicy)
	}
	return nil
}

// CacheStats is a point-in-time view of cache health.
type CacheStats struct {
	TotalEntries   int     `json:"total_entries"`
	ValidEntries   int     `json:"valid_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	HitRate        float64 `json:"hit_rate"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	Evictions      int64   `json:"evictions"`
	Tombstones     int     `json:"tombstones"`
}
