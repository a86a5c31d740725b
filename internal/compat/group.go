// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Group metric constants.
const (
	// maxTraitStdDev is the largest population std-dev of values in [0,100].
	maxTraitStdDev = 50.0

	// leadershipTargetSpread is the normalized social/adventure spread at
	// which leadership scores 100.
	leadershipTargetSpread = 0.5

	swapSigmaThreshold   = 2.0
	lowDiversityCutoff   = 20.0
	lowLeadershipCutoff  = 30.0
	lowEnergyMatchCutoff = 40.0

	// candidateMargin is how far a candidate's mean score must exceed the
	// current cohesion to be suggested.
	candidateMargin   = 5.0
	maxAddSuggestions = 3
)

// Analyzer builds group-level analysis from pairwise scores.
type Analyzer struct {
	engine  *Engine
	workers int
	logger  zerolog.Logger
	now     func() time.Time
}

// GroupResult is an analysis together with the pair scores it was built from.
type GroupResult struct {
	Analysis  *models.GroupCompatibilityAnalysis
	Scores    []*models.CompatibilityScore
	CacheHits int

	// Fresh holds the scores that were computed rather than read from cache.
	Fresh []*models.CompatibilityScore
}

// NewAnalyzer creates a group analyzer. workers <= 0 uses runtime.NumCPU.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalyzer(engine *Engine, workers int, logger zerolog.Logger) *Analyzer {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Analyzer{
		engine:  engine,
		workers: workers,
		logger:  logger.With().Str("component", "group_analyzer").Logger(),
		now:     engine.now,
	}
}

// AnalyzeOptions customizes a group analysis.
type AnalyzeOptions struct {
	// Scorer scores member pairs and may consult a cache. Nil computes every
	// pair directly.
	Scorer PairScorer

	// Candidates are travelers outside the group considered for add_member
	// suggestions.
	Candidates []*models.UserCompatibilityProfile
}

// Analyze scores every pair of profiles and derives the group matrix,
// dynamics and recommendations.
func (a *Analyzer) Analyze(ctx context.Context, profiles []*models.UserCompatibilityProfile, params *models.ScoringParameters, groupID string, opts AnalyzeOptions) (*GroupResult, error) {
	if len(profiles) < 2 {
		return nil, newError(CodeInsufficientMembers, "group analysis needs at least 2 members, got %d", len(profiles))
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = a.directScorer(params, groupID)
	}

	outcomes, err := scorePairs(ctx, profiles, a.workers, scorer)
	if err != nil {
		return nil, err
	}
	res := assemblePairs(outcomes)
	res.Analysis = a.analyze(profiles, params, groupID, outcomes)

	if len(opts.Candidates) > 0 {
		adds, err := a.suggestCandidates(ctx, profiles, opts.Candidates, params, res.Analysis.Dynamics.Cohesion)
		if err != nil {
			return nil, err
		}
		res.Analysis.Recommendations = sortRecommendations(append(res.Analysis.Recommendations, adds...))
	}

	a.logger.Debug().
		Str("group_id", groupID).
		Int("members", len(profiles)).
		Int("cache_hits", res.CacheHits).
		Float64("cohesion", res.Analysis.Dynamics.Cohesion).
		Msg("group analyzed")
	return res, nil
}

func (a *Analyzer) directScorer(params *models.ScoringParameters, groupID string) PairScorer {
	snapshot := a.now()
	return func(_ context.Context, x, y *models.UserCompatibilityProfile) (*models.CompatibilityScore, bool, error) {
		s, err := a.engine.ScoreAt(x, y, params, snapshot)
		if err != nil {
			return nil, false, err
		}
		s.GroupID = groupID
		return s, false, nil
	}
}

func assemblePairs(outcomes []pairOutcome) *GroupResult {
	res := &GroupResult{Scores: make([]*models.CompatibilityScore, 0, len(outcomes))}
	for _, o := range outcomes {
		res.Scores = append(res.Scores, o.Score)
		if o.CacheHit {
			res.CacheHits++
		} else {
			res.Fresh = append(res.Fresh, o.Score)
		}
	}
	return res
}

func (a *Analyzer) analyze(profiles []*models.UserCompatibilityProfile, params *models.ScoringParameters, groupID string, outcomes []pairOutcome) *models.GroupCompatibilityAnalysis {
	matrix := matrixOf(profiles, outcomes)
	dyn := models.GroupDynamics{
		Cohesion:   cohesion(matrix),
		Diversity:  diversity(profiles),
		Leadership: leadership(profiles),
		Energy:     energy(profiles),
	}

	return &models.GroupCompatibilityAnalysis{
		GroupID:              groupID,
		MemberCount:          len(profiles),
		AverageCompatibility: dyn.Cohesion,
		Matrix:               matrix,
		Dynamics:             dyn,
		Recommendations:      recommend(matrix, dyn, params),
		CalculatedAt:         a.now(),
	}
}

// cohesion is the mean off-diagonal score.
func cohesion(m *models.CompatibilityMatrix) float64 {
	n := len(m.UserIDs)
	if n < 2 {
		return 100
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m.Scores[i][j]
		}
	}
	return sum / float64(n*(n-1)/2)
}

// diversity is the mean std-dev of the four core traits, scaled to 0-100.
func diversity(profiles []*models.UserCompatibilityProfile) float64 {
	traits := []func(*models.PersonalityProfile) float64{
		func(p *models.PersonalityProfile) float64 { return p.EnergyLevel },
		func(p *models.PersonalityProfile) float64 { return p.SocialPreference },
		func(p *models.PersonalityProfile) float64 { return p.AdventureStyle },
		func(p *models.PersonalityProfile) float64 { return p.RiskTolerance },
	}
	var sum float64
	for _, trait := range traits {
		sum += stdDev(traitValues(profiles, trait))
	}
	return clampScore(100 * (sum / float64(len(traits))) / maxTraitStdDev)
}

// leadership peaks when social preference and adventure style are spread
// moderately. Uniform groups (nobody steps forward) and polarized groups
// both score low.
func leadership(profiles []*models.UserCompatibilityProfile) float64 {
	social := stdDev(traitValues(profiles, func(p *models.PersonalityProfile) float64 { return p.SocialPreference }))
	adventure := stdDev(traitValues(profiles, func(p *models.PersonalityProfile) float64 { return p.AdventureStyle }))
	spread := (social + adventure) / 2 / maxTraitStdDev
	return clampScore(100 * (1 - math.Abs(spread-leadershipTargetSpread)/leadershipTargetSpread))
}

// energy is 100 minus the gap between the most and least energetic member.
func energy(profiles []*models.UserCompatibilityProfile) float64 {
	vals := traitValues(profiles, func(p *models.PersonalityProfile) float64 { return p.EnergyLevel })
	if len(vals) == 0 {
		return 100
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return clampScore(100 - (hi - lo))
}

func traitValues(profiles []*models.UserCompatibilityProfile, trait func(*models.PersonalityProfile) float64) []float64 {
	vals := make([]float64, 0, len(profiles))
	for _, p := range profiles {
		if p.Personality != nil {
			vals = append(vals, trait(p.Personality))
		}
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdDev is the population standard deviation.
func stdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)))
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// memberAverages returns each member's mean score with everyone else.
//
// The swap rule compares these against a population standard deviation. A
// single outlier among n members sits at most sqrt(n-1) deviations from the
// mean, so with the 2 sigma threshold groups of five or fewer never get a
// swap_member recommendation.
func memberAverages(m *models.CompatibilityMatrix) []float64 {
	n := len(m.UserIDs)
	avgs := make([]float64, n)
	if n < 2 {
		return avgs
	}
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			if i != j {
				sum += m.Scores[i][j]
			}
		}
		avgs[i] = sum / float64(n-1)
	}
	return avgs
}

func recommend(m *models.CompatibilityMatrix, dyn models.GroupDynamics, params *models.ScoringParameters) []models.GroupRecommendation {
	var recs []models.GroupRecommendation

	avgs := memberAverages(m)
	mu, sigma := mean(avgs), stdDev(avgs)
	for i, avg := range avgs {
		if sigma > 0 && avg < mu-swapSigmaThreshold*sigma {
			recs = append(recs, models.GroupRecommendation{
				Type:     models.RecommendSwapMember,
				Priority: models.PriorityHigh,
				Description: fmt.Sprintf("%s averages %.1f compatibility against a group mean of %.1f; consider swapping them for a better-matched traveler",
					m.UserIDs[i], avg, mu),
				ImpactScore:      mu - avg,
				SuggestedUserIDs: []string{m.UserIDs[i]},
			})
		} else if len(avgs) > 3 && avg < params.Thresholds.Poor {
			recs = append(recs, models.GroupRecommendation{
				Type:             models.RecommendRemoveMember,
				Priority:         models.PriorityLow,
				Description:      fmt.Sprintf("%s is a poor match for most of the group (%.1f average)", m.UserIDs[i], avg),
				ImpactScore:      (params.Thresholds.Poor - avg) / 2,
				SuggestedUserIDs: []string{m.UserIDs[i]},
			})
		}
	}

	if dyn.Diversity < lowDiversityCutoff {
		recs = append(recs, models.GroupRecommendation{
			Type:        models.RecommendBalanceGroup,
			Priority:    models.PriorityMedium,
			Description: "Personalities are very similar; a traveler with a different style would broaden the group",
			ImpactScore: lowDiversityCutoff - dyn.Diversity,
		})
	}
	if dyn.Leadership < lowLeadershipCutoff {
		recs = append(recs, models.GroupRecommendation{
			Type:        models.RecommendBalanceGroup,
			Priority:    models.PriorityMedium,
			Description: "Leadership is unbalanced; the group lacks a mix of organizers and followers",
			ImpactScore: lowLeadershipCutoff - dyn.Leadership,
		})
	}
	if dyn.Energy < lowEnergyMatchCutoff {
		recs = append(recs, models.GroupRecommendation{
			Type:        models.RecommendBalanceGroup,
			Priority:    models.PriorityLow,
			Description: "Energy levels differ widely; plan optional high- and low-intensity activities",
			ImpactScore: (lowEnergyMatchCutoff - dyn.Energy) / 2,
		})
	}

	return sortRecommendations(recs)
}

// sortRecommendations orders by impact, then priority.
func sortRecommendations(recs []models.GroupRecommendation) []models.GroupRecommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ImpactScore != recs[j].ImpactScore {
			return recs[i].ImpactScore > recs[j].ImpactScore
		}
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	if recs == nil {
		recs = []models.GroupRecommendation{}
	}
	return recs
}

// suggestCandidates scores each candidate against every member and suggests
// the best few whose mean would lift the group above its current cohesion.
func (a *Analyzer) suggestCandidates(ctx context.Context, members, candidates []*models.UserCompatibilityProfile, params *models.ScoringParameters, cohesion float64) ([]models.GroupRecommendation, error) {
	type fit struct {
		userID string
		mean   float64
	}
	snapshot := a.now()
	var fits []fit
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c == nil || checkComplete(c) != nil || containsUser(members, c.UserID) {
			continue
		}
		var sum float64
		for _, m := range members {
			s, err := a.engine.ScoreAt(m, c, params, snapshot)
			if err != nil {
				return nil, err
			}
			sum += s.OverallScore
		}
		if avg := sum / float64(len(members)); avg >= cohesion+candidateMargin && avg >= params.Thresholds.Good {
			fits = append(fits, fit{userID: c.UserID, mean: avg})
		}
	}

	sort.SliceStable(fits, func(i, j int) bool { return fits[i].mean > fits[j].mean })
	if len(fits) > maxAddSuggestions {
		fits = fits[:maxAddSuggestions]
	}
	recs := make([]models.GroupRecommendation, 0, len(fits))
	for _, f := range fits {
		recs = append(recs, models.GroupRecommendation{
			Type:             models.RecommendAddMember,
			Priority:         models.PriorityLow,
			Description:      fmt.Sprintf("%s averages %.1f with current members against a group cohesion of %.1f", f.userID, f.mean, cohesion),
			ImpactScore:      f.mean - cohesion,
			SuggestedUserIDs: []string{f.userID},
		})
	}
	return recs, nil
}

func containsUser(profiles []*models.UserCompatibilityProfile, userID string) bool {
	for _, p := range profiles {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
