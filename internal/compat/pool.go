// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tripmatch/internal/models"
)

// PairScorer produces the score for one pair and reports whether it came
// from the cache. Implementations must not write to the cache; results are
// persisted only once a whole batch has succeeded.
type PairScorer func(ctx context.Context, a, b *models.UserCompatibilityProfile) (*models.CompatibilityScore, bool, error)

// pairOutcome is the score of profiles[I] and profiles[J], I < J.
type pairOutcome struct {
	I, J     int
	Score    *models.CompatibilityScore
	CacheHit bool
}

// DefaultWorkers is the pair-scoring concurrency used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// scorePairs scores every unordered pair of profiles on at most workers
// goroutines. The first failure or a cancelled ctx stops the batch and no
// partial result is returned. Outcomes are ordered (0,1), (0,2), ... (n-2,n-1).
func scorePairs(ctx context.Context, profiles []*models.UserCompatibilityProfile, workers int, score PairScorer) ([]pairOutcome, error) {
	n := len(profiles)
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	outcomes := make([]pairOutcome, n*(n-1)/2)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	slot := 0
launch:
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if gctx.Err() != nil {
				break launch
			}
			idx := slot
			slot++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				s, hit, err := score(gctx, profiles[i], profiles[j])
				if err != nil {
					return fmt.Errorf("score %s/%s: %w", profiles[i].UserID, profiles[j].UserID, err)
				}
				outcomes[idx] = pairOutcome{I: i, J: j, Score: s, CacheHit: hit}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Wait returns nil when the parent was cancelled before any goroutine ran.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
