// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/metrics"
)

// DefaultSweepInterval is used when no sweep interval is configured.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper is the part of cache.ScoreCache the janitor needs.
type Sweeper interface {
	// Sweep removes expired entries and stale tombstones.
	Sweep() int
	Len() int
}

// CacheJanitorService periodically sweeps the score cache.
type CacheJanitorService struct {
	cache    Sweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService creates a janitor sweeping every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(cache Sweeper, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache_janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("cache janitor running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CacheJanitorService) sweep() {
	start := time.Now()
	removed := s.cache.Sweep()
	entries := s.cache.Len()
	metrics.RecordCacheSweep(removed, entries)

	if removed > 0 {
		s.logger.Debug().
			Int("removed", removed).
			Int("entries", entries).
			Dur("duration", time.Since(start)).
			Msg("cache sweep complete")
	}
}

// String returns the service name for logging.
func (s *CacheJanitorService) String() string {
	return s.name
}
