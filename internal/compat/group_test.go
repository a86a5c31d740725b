// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/models"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewEngine(zerolog.Nop()), 4, zerolog.Nop())
}

func TestAnalyzer_InsufficientMembers(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	for _, profiles := range [][]*models.UserCompatibilityProfile{nil, {baseProfile("a")}} {
		_, err := a.Analyze(context.Background(), profiles, defaultParams(), "g1", AnalyzeOptions{})
		if !errors.Is(err, ErrInsufficientMembers) {
			t.Errorf("Analyze(%d members) error = %v, want ErrInsufficientMembers", len(profiles), err)
		}
	}
}

func TestAnalyzer_Matrix(t *testing.T) {
	t.Parallel()

	profiles := []*models.UserCompatibilityProfile{
		baseProfile("a"), oppositeProfile("b"), baseProfile("c"), sparseProfile("d"),
	}
	res, err := newTestAnalyzer().Analyze(context.Background(), profiles, defaultParams(), "g1", AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	m := res.Analysis.Matrix
	if len(m.UserIDs) != 4 {
		t.Fatalf("matrix has %d users", len(m.UserIDs))
	}
	var sum float64
	for i := range m.Scores {
		if m.Scores[i][i] != 100 {
			t.Errorf("matrix[%d][%d] = %v, want 100", i, i, m.Scores[i][i])
		}
		for j := range m.Scores {
			if m.Scores[i][j] != m.Scores[j][i] {
				t.Errorf("matrix not symmetric at (%d,%d)", i, j)
			}
			if i < j {
				sum += m.Scores[i][j]
			}
		}
	}
	if want := sum / 6; math.Abs(res.Analysis.AverageCompatibility-want) > 1e-9 {
		t.Errorf("AverageCompatibility = %v, want %v", res.Analysis.AverageCompatibility, want)
	}
	if res.Analysis.Dynamics.Cohesion != res.Analysis.AverageCompatibility {
		t.Error("cohesion should equal the average compatibility")
	}
	if len(res.Scores) != 6 || len(res.Fresh) != 6 || res.CacheHits != 0 {
		t.Errorf("scores=%d fresh=%d hits=%d", len(res.Scores), len(res.Fresh), res.CacheHits)
	}
	for _, s := range res.Scores {
		if s.GroupID != "g1" {
			t.Errorf("score %s/%s has group %q", s.User1ID, s.User2ID, s.GroupID)
		}
	}
	if res.Analysis.MemberCount != 4 || res.Analysis.GroupID != "g1" {
		t.Errorf("analysis header = %d/%q", res.Analysis.MemberCount, res.Analysis.GroupID)
	}
}

func TestAnalyzer_SwapMember(t *testing.T) {
	t.Parallel()

	profiles := []*models.UserCompatibilityProfile{
		baseProfile("a"), baseProfile("b"), baseProfile("c"),
		baseProfile("d"), baseProfile("e"), oppositeProfile("outlier"),
	}
	res, err := newTestAnalyzer().Analyze(context.Background(), profiles, defaultParams(), "g1", AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	recs := res.Analysis.Recommendations
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].Type != models.RecommendSwapMember || recs[0].Priority != models.PriorityHigh {
		t.Errorf("first recommendation = %+v, want high-priority swap", recs[0])
	}
	if len(recs[0].SuggestedUserIDs) != 1 || recs[0].SuggestedUserIDs[0] != "outlier" {
		t.Errorf("swap suggests %v, want [outlier]", recs[0].SuggestedUserIDs)
	}
	for _, r := range recs {
		if r.Type == models.RecommendSwapMember && r.SuggestedUserIDs[0] != "outlier" {
			t.Errorf("unexpected swap for %v", r.SuggestedUserIDs)
		}
	}
}

func TestAnalyzer_BalanceHomogeneousGroup(t *testing.T) {
	t.Parallel()

	profiles := []*models.UserCompatibilityProfile{baseProfile("a"), baseProfile("b"), baseProfile("c")}
	res, err := newTestAnalyzer().Analyze(context.Background(), profiles, defaultParams(), "", AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	dyn := res.Analysis.Dynamics
	if dyn.Diversity != 0 || dyn.Leadership != 0 || dyn.Energy != 100 || dyn.Cohesion != 100 {
		t.Errorf("dynamics = %+v", dyn)
	}

	recs := res.Analysis.Recommendations
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2: %+v", len(recs), recs)
	}
	for _, r := range recs {
		if r.Type != models.RecommendBalanceGroup {
			t.Errorf("unexpected %s", r.Type)
		}
	}
	// Leadership (impact 30) outranks diversity (impact 20).
	if recs[0].ImpactScore != 30 || recs[1].ImpactScore != 20 {
		t.Errorf("impact order = %v, %v", recs[0].ImpactScore, recs[1].ImpactScore)
	}
}

func TestAnalyzer_AddMemberFromCandidates(t *testing.T) {
	t.Parallel()

	b := baseProfile("b")
	b.Travel = &models.TravelPreferences{AdventureStyle: "relaxer", BudgetPreference: "luxury", PlanningStyle: "structured", GroupPreference: "large"}

	members := []*models.UserCompatibilityProfile{baseProfile("a"), b}
	candidates := []*models.UserCompatibilityProfile{
		baseProfile("good-fit"),
		oppositeProfile("poor-fit"),
		baseProfile("a"), // already a member
		nil,
	}

	res, err := newTestAnalyzer().Analyze(context.Background(), members, defaultParams(), "g1", AnalyzeOptions{Candidates: candidates})
	if err != nil {
		t.Fatal(err)
	}

	var adds []models.GroupRecommendation
	for _, r := range res.Analysis.Recommendations {
		if r.Type == models.RecommendAddMember {
			adds = append(adds, r)
		}
	}
	if len(adds) != 1 || adds[0].SuggestedUserIDs[0] != "good-fit" {
		t.Fatalf("add_member recommendations = %+v, want only good-fit", adds)
	}
	if math.Abs(adds[0].ImpactScore-12.5) > 1e-9 {
		t.Errorf("ImpactScore = %v, want 12.5", adds[0].ImpactScore)
	}
}

func TestAnalyzer_RecommendationOrder(t *testing.T) {
	t.Parallel()

	recs := sortRecommendations([]models.GroupRecommendation{
		{Type: models.RecommendBalanceGroup, Priority: models.PriorityLow, ImpactScore: 10},
		{Type: models.RecommendRemoveMember, Priority: models.PriorityLow, ImpactScore: 5},
		{Type: models.RecommendSwapMember, Priority: models.PriorityHigh, ImpactScore: 10},
		{Type: models.RecommendAddMember, Priority: models.PriorityMedium, ImpactScore: 20},
	})

	want := []models.RecommendationType{
		models.RecommendAddMember, models.RecommendSwapMember, models.RecommendBalanceGroup, models.RecommendRemoveMember,
	}
	for i, w := range want {
		if recs[i].Type != w {
			t.Errorf("recs[%d] = %s, want %s", i, recs[i].Type, w)
		}
	}

	if got := sortRecommendations(nil); got == nil || len(got) != 0 {
		t.Errorf("sortRecommendations(nil) = %v, want empty slice", got)
	}
}

func TestAnalyzer_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profiles := []*models.UserCompatibilityProfile{baseProfile("a"), baseProfile("b"), baseProfile("c")}
	_, err := newTestAnalyzer().Analyze(ctx, profiles, defaultParams(), "g1", AnalyzeOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestGroupMetrics(t *testing.T) {
	t.Parallel()

	withTraits := func(id string, energy, social, adventure float64) *models.UserCompatibilityProfile {
		p := baseProfile(id)
		p.Personality.EnergyLevel = energy
		p.Personality.SocialPreference = social
		p.Personality.AdventureStyle = adventure
		return p
	}

	tests := []struct {
		name           string
		profiles       []*models.UserCompatibilityProfile
		wantEnergy     float64
		wantLeadership float64
	}{
		{
			name:           "uniform",
			profiles:       []*models.UserCompatibilityProfile{withTraits("a", 50, 50, 50), withTraits("b", 50, 50, 50)},
			wantEnergy:     100,
			wantLeadership: 0,
		},
		{
			name:           "moderate spread",
			profiles:       []*models.UserCompatibilityProfile{withTraits("a", 40, 25, 25), withTraits("b", 60, 75, 75)},
			wantEnergy:     80,
			wantLeadership: 100,
		},
		{
			name:           "polarized",
			profiles:       []*models.UserCompatibilityProfile{withTraits("a", 0, 0, 0), withTraits("b", 100, 100, 100)},
			wantEnergy:     0,
			wantLeadership: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := energy(tt.profiles); math.Abs(got-tt.wantEnergy) > 1e-9 {
				t.Errorf("energy = %v, want %v", got, tt.wantEnergy)
			}
			if got := leadership(tt.profiles); math.Abs(got-tt.wantLeadership) > 1e-9 {
				t.Errorf("leadership = %v, want %v", got, tt.wantLeadership)
			}
			if got := diversity(tt.profiles); got < 0 || got > 100 {
				t.Errorf("diversity = %v out of range", got)
			}
		})
	}
}
