// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Batch limits.
const (
	MinBulkUsers     = 2
	MaxBulkUsers     = 50
	MaxCandidates    = 20
	profileLoadLimit = 8
)

// BulkOptions selects what CalculateBulk returns.
type BulkOptions struct {
	IncludeMatrix   bool `json:"include_matrix"`
	IncludeAnalysis bool `json:"include_analysis"`
	CacheResults    bool `json:"cache_results"`

	// CandidateUserIDs are considered for add_member suggestions when
	// IncludeAnalysis is set.
	CandidateUserIDs []string `json:"candidate_user_ids,omitempty" validate:"omitempty,max=20,dive,required,max=128"`
}

// BulkRequest scores every pair among UserIDs.
type BulkRequest struct {
	GroupID     string      `json:"group_id" validate:"max=128"`
	UserIDs     []string    `json:"user_ids" validate:"required,dive,max=128"`
	AlgorithmID string      `json:"algorithm_id,omitempty" validate:"omitempty,max=64"`
	Options     BulkOptions `json:"options"`
}

// SkippedUser is a requested id left out of the batch.
type SkippedUser struct {
	UserID string `json:"user_id"`
	Reason Code   `json:"reason"`
}

// BulkData is the payload of a bulk calculation.
type BulkData struct {
	Scores   []*models.CompatibilityScore       `json:"scores"`
	Matrix   *models.CompatibilityMatrix        `json:"matrix,omitempty"`
	Analysis *models.GroupCompatibilityAnalysis `json:"analysis,omitempty"`
}

// BulkMeta describes how a bulk calculation ran.
type BulkMeta struct {
	TotalPairs        int           `json:"total_pairs"`
	CalculationTimeMs float64       `json:"calculation_time_ms"`
	CacheHitRate      float64       `json:"cache_hit_rate"`
	AlgorithmVersion  string        `json:"algorithm_version"`
	SkippedUsers      []SkippedUser `json:"skipped_users,omitempty"`
}

// BulkResult is the outcome of CalculateBulk.
type BulkResult struct {
	Data BulkData `json:"data"`
	Meta BulkMeta `json:"meta"`
}

// Orchestrator runs bulk calculations: validation, profile loading,
// concurrent pair scoring through the cache, and optional group analysis.
type Orchestrator struct {
	engine   *Engine
	analyzer *Analyzer
	cache    *cache.ScoreCache
	profiles ProfileLoader
	maxUsers int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewOrchestrator creates a bulk orchestrator. maxUsers <= 0 uses MaxBulkUsers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(engine *Engine, analyzer *Analyzer, scores *cache.ScoreCache, profiles ProfileLoader, maxUsers int, logger zerolog.Logger) *Orchestrator {
	if maxUsers <= 0 || maxUsers > MaxBulkUsers {
		maxUsers = MaxBulkUsers
	}
	return &Orchestrator{
		engine:   engine,
		analyzer: analyzer,
		cache:    scores,
		profiles: profiles,
		maxUsers: maxUsers,
		logger:   logger.With().Str("component", "bulk_orchestrator").Logger(),
		now:      engine.now,
	}
}

// CalculateBulk validates req, scores every pair of resolvable users with
// params and returns the flat score list plus whatever req.Options asks for.
// Nothing is written to the cache unless the whole batch succeeds.
func (o *Orchestrator) CalculateBulk(ctx context.Context, req *BulkRequest, params *models.ScoringParameters) (*BulkResult, error) {
	start := time.Now()
	if err := validateBulkIDs(req.UserIDs, o.maxUsers); err != nil {
		return nil, err
	}
	if len(req.Options.CandidateUserIDs) > MaxCandidates {
		return nil, newError(CodeRequestTooLarge, "at most %d candidate users are allowed", MaxCandidates)
	}

	// Taken before any profile is read so that an invalidation racing with
	// this batch suppresses its writes.
	snapshot := o.now()

	profiles, skipped, err := o.loadProfiles(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}
	if len(profiles) < MinBulkUsers {
		return nil, newError(CodeInsufficientProfiles, "only %d of %d users have usable profiles", len(profiles), len(req.UserIDs))
	}

	scorer := cachedScorer(o.cache, o.engine, params, req.GroupID, snapshot)

	var res *GroupResult
	if req.Options.IncludeAnalysis {
		candidates, _, err := o.loadProfiles(ctx, req.Options.CandidateUserIDs)
		if err != nil {
			return nil, err
		}
		res, err = o.analyzer.Analyze(ctx, profiles, params, req.GroupID, AnalyzeOptions{Scorer: scorer, Candidates: candidates})
		if err != nil {
			return nil, err
		}
	} else {
		outcomes, err := scorePairs(ctx, profiles, o.analyzer.workers, scorer)
		if err != nil {
			return nil, err
		}
		res = assemblePairs(outcomes)
		if req.Options.IncludeMatrix {
			res.Analysis = &models.GroupCompatibilityAnalysis{Matrix: matrixOf(profiles, outcomes)}
		}
	}

	if req.Options.CacheResults {
		o.persist(ctx, res.Fresh)
	}

	result := &BulkResult{
		Data: BulkData{Scores: res.Scores},
		Meta: BulkMeta{
			TotalPairs:        len(res.Scores),
			CalculationTimeMs: float64(time.Since(start).Microseconds()) / 1000,
			CacheHitRate:      hitRate(res.CacheHits, len(res.Scores)),
			AlgorithmVersion:  params.Formula.VersionTag(),
			SkippedUsers:      skipped,
		},
	}
	if res.Analysis != nil {
		if req.Options.IncludeMatrix {
			result.Data.Matrix = res.Analysis.Matrix
		}
		if req.Options.IncludeAnalysis {
			result.Data.Analysis = res.Analysis
		}
	}

	metrics.RecordBulkPairs(result.Meta.TotalPairs)
	o.logger.Debug().
		Str("group_id", req.GroupID).
		Int("users", len(profiles)).
		Int("skipped", len(skipped)).
		Int("pairs", result.Meta.TotalPairs).
		Float64("cache_hit_rate", result.Meta.CacheHitRate).
		Msg("bulk calculation complete")
	return result, nil
}

// validateBulkIDs enforces batch size and uniqueness before any work starts.
func validateBulkIDs(ids []string, maxUsers int) error {
	if len(ids) < MinBulkUsers {
		return newError(CodeInvalidRequest, "at least %d user IDs are required", MinBulkUsers)
	}
	if len(ids) > maxUsers {
		return newError(CodeRequestTooLarge, "at most %d user IDs are allowed, got %d", maxUsers, len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return newError(CodeInvalidRequest, "user IDs must not be empty")
		}
		if _, dup := seen[id]; dup {
			return newError(CodeInvalidRequest, "duplicate user IDs: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// loadProfiles fetches profiles concurrently, preserving request order.
// Unknown, incomplete and failing profiles are skipped; only cancellation
// aborts the load.
func (o *Orchestrator) loadProfiles(ctx context.Context, ids []string) ([]*models.UserCompatibilityProfile, []SkippedUser, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	loaded := make([]*models.UserCompatibilityProfile, len(ids))
	reasons := make([]Code, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileLoadLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, skip, err := loadUsableProfile(gctx, o.profiles, id)
			switch {
			case err != nil:
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				o.logger.Warn().Err(err).Str("user_id", id).Msg("profile load failed, skipping user")
				reasons[i] = CodeInternalError
			case skip != nil:
				reasons[i] = skip.Code
			default:
				loaded[i] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	profiles := make([]*models.UserCompatibilityProfile, 0, len(ids))
	var skipped []SkippedUser
	for i, p := range loaded {
		if p == nil {
			skipped = append(skipped, SkippedUser{UserID: ids[i], Reason: reasons[i]})
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, skipped, nil
}

// loadUsableProfile returns the profile for id. skip explains why a
// profile that loaded without error cannot be scored.
func loadUsableProfile(ctx context.Context, loader ProfileLoader, id string) (p *models.UserCompatibilityProfile, skip *Error, err error) {
	start := time.Now()
	p, found, err := loader.LoadProfile(ctx, id)
	metrics.RecordProfileLoad(found, time.Since(start), err)
	switch {
	case err != nil:
		return nil, nil, err
	case !found || p == nil:
		return nil, newError(CodeProfileNotFound, "profile %s not found", id), nil
	}
	if err := checkComplete(p); err != nil {
		var incomplete *Error
		if errors.As(err, &incomplete) {
			return nil, incomplete, nil
		}
		return nil, nil, err
	}
	return p, nil, nil
}

// ofVersion accepts cached scores produced by the given algorithm version.
func ofVersion(version string) func(*models.CompatibilityScore) bool {
	return func(s *models.CompatibilityScore) bool { return s.AlgorithmVersion == version }
}

// cachedScorer reads through the cache and falls back to the engine. Cached
// scores from another algorithm version count as misses.
func cachedScorer(c *cache.ScoreCache, engine *Engine, params *models.ScoringParameters, groupID string, snapshot time.Time) PairScorer {
	version := params.Formula.VersionTag()
	return func(ctx context.Context, a, b *models.UserCompatibilityProfile) (*models.CompatibilityScore, bool, error) {
		if c != nil {
			if s, ok := c.GetIf(ctx, cache.NewKey(a.UserID, b.UserID, groupID), ofVersion(version)); ok {
				metrics.RecordCacheLookup(true)
				return s, true, nil
			}
			metrics.RecordCacheLookup(false)
		}
		s, err := engine.ScoreAt(a, b, params, snapshot)
		if err != nil {
			return nil, false, err
		}
		s.GroupID = groupID
		metrics.RecordFallbacks(countFallbacks(s))
		return s, false, nil
	}
}

// persist writes fresh scores. Failures are logged and never fail the request.
func (o *Orchestrator) persist(ctx context.Context, scores []*models.CompatibilityScore) {
	if o.cache == nil {
		return
	}
	for _, s := range scores {
		if err := o.cache.Put(ctx, cache.NewKey(s.User1ID, s.User2ID, s.GroupID), s); err != nil {
			metrics.RecordCacheWriteFailure()
			o.logger.Warn().Err(err).Str("user1", s.User1ID).Str("user2", s.User2ID).Msg("cache write failed")
		}
	}
	metrics.SetCacheEntries(o.cache.Len())
}

func matrixOf(profiles []*models.UserCompatibilityProfile, outcomes []pairOutcome) *models.CompatibilityMatrix {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}
	m := models.NewCompatibilityMatrix(ids)
	for _, o := range outcomes {
		m.Set(o.I, o.J, o.Score.OverallScore)
	}
	return m
}

func countFallbacks(s *models.CompatibilityScore) int {
	n := 0
	for _, d := range s.Dimensions {
		if d.UsedFallback {
			n++
		}
	}
	return n
}

func hitRate(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
