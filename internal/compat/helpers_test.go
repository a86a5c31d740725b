// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/models"
)

func fptr(v float64) *float64 { return &v }

// tickClock advances one millisecond on every read so that successive
// operations are strictly ordered.
type tickClock struct {
	base  time.Time
	ticks atomic.Int64
}

func newTickClock() *tickClock {
	return &tickClock{base: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *tickClock) Now() time.Time {
	return c.base.Add(time.Duration(c.ticks.Add(1)) * time.Millisecond)
}

func defaultParams() *models.ScoringParameters {
	p := models.DefaultScoringParameters()
	return &p
}

// baseProfile is a complete profile; two baseProfiles score 100.
func baseProfile(id string) *models.UserCompatibilityProfile {
	return &models.UserCompatibilityProfile{
		UserID: id,
		Personality: &models.PersonalityProfile{
			EnergyLevel:      60,
			SocialPreference: 55,
			AdventureStyle:   70,
			RiskTolerance:    40,
			PlanningStyle:    fptr(65),
		},
		Travel: &models.TravelPreferences{
			AdventureStyle:   "explorer",
			BudgetPreference: "moderate",
			PlanningStyle:    "flexible",
			GroupPreference:  "small",
		},
		Experience: models.ExperienceLevel{Level: 3},
		Budget:     models.BudgetRange{Min: 1500, Max: 3000, Currency: "EUR", Flexibility: 0.2},
		Activities: models.ActivityPreferences{
			Preferred: []string{"hiking", "museums"},
			MustHave:  []string{"local food"},
		},
	}
}

// oppositeProfile disagrees with baseProfile on every dimension.
func oppositeProfile(id string) *models.UserCompatibilityProfile {
	return &models.UserCompatibilityProfile{
		UserID: id,
		Personality: &models.PersonalityProfile{
			EnergyLevel:      0,
			SocialPreference: 0,
			AdventureStyle:   0,
			RiskTolerance:    0,
			PlanningStyle:    fptr(0),
		},
		Travel: &models.TravelPreferences{
			AdventureStyle:   "relaxer",
			BudgetPreference: "luxury",
			PlanningStyle:    "structured",
			GroupPreference:  "large",
		},
		Experience: models.ExperienceLevel{Level: 1},
		Budget:     models.BudgetRange{Min: 100, Max: 200, Currency: "EUR"},
		Activities: models.ActivityPreferences{
			Preferred:    []string{"beach"},
			DealBreakers: []string{"hiking"},
		},
	}
}

// mockProfiles is an in-memory ProfileLoader.
type mockProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.UserCompatibilityProfile
	errs     map[string]error
	loads    atomic.Int64
}

func newMockProfiles(profiles ...*models.UserCompatibilityProfile) *mockProfiles {
	m := &mockProfiles{
		profiles: make(map[string]*models.UserCompatibilityProfile),
		errs:     make(map[string]error),
	}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *mockProfiles) LoadProfile(ctx context.Context, userID string) (*models.UserCompatibilityProfile, bool, error) {
	m.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[userID]; ok {
		return nil, false, err
	}
	p, ok := m.profiles[userID]
	return p, ok, nil
}

func (m *mockProfiles) fail(userID string, err error) {
	m.mu.Lock()
	m.errs[userID] = err
	m.mu.Unlock()
}

type stubExplainer struct {
	text string
	err  error
}

func (s stubExplainer) GenerateExplanation(_ context.Context, _ *models.CompatibilityScore, _ ExplainOptions) (string, error) {
	return s.text, s.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []models.ScoringParameters
	err     error
}

func (n *recordingNotifier) AlgorithmUpdated(_ context.Context, p models.ScoringParameters) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, p)
	return n.err
}

type serviceFixture struct {
	svc      *Service
	cache    *cache.ScoreCache
	profiles *mockProfiles
	notifier *recordingNotifier
	clock    *tickClock
}

// newServiceFixture builds a Service over users a..e (all baseProfile) plus
// an "opposite" user.
func newServiceFixture(t *testing.T, mutate func(*models.CacheStrategy), explainer Explainer) *serviceFixture {
	t.Helper()

	clock := newTickClock()
	strategy := models.DefaultCacheStrategy()
	if mutate != nil {
		mutate(&strategy)
	}
	c, err := cache.New(strategy, cache.Options{Now: clock.Now, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	profiles := newMockProfiles(
		baseProfile("a"), baseProfile("b"), baseProfile("c"), baseProfile("d"), baseProfile("e"),
		oppositeProfile("opposite"),
	)
	notifier := &recordingNotifier{}
	engine := NewEngine(zerolog.Nop(), WithClock(clock.Now))

	svc, err := NewService(Dependencies{
		Engine:    engine,
		Cache:     c,
		Profiles:  profiles,
		Explainer: explainer,
		Notifier:  notifier,
		Workers:   4,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return &serviceFixture{svc: svc, cache: c, profiles: profiles, notifier: notifier, clock: clock}
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *compat.Error, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("error code = %s, want %s (%v)", e.Code, code, err)
	}
}
