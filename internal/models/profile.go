// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import (
	"maps"
	"slices"
	"time"
)

// PersonalityProfile is a snapshot of a user's measured personality traits.
// Trait values are on a 0-100 scale.
type PersonalityProfile struct {
	EnergyLevel      float64 `json:"energy_level" validate:"min=0,max=100"`
	SocialPreference float64 `json:"social_preference" validate:"min=0,max=100"`
	AdventureStyle   float64 `json:"adventure_style" validate:"min=0,max=100"`
	RiskTolerance    float64 `json:"risk_tolerance" validate:"min=0,max=100"`

	// PlanningStyle is optional. When absent the scoring fallback policy
	// substitutes a neutral value.
	PlanningStyle *float64 `json:"planning_style,omitempty" validate:"omitempty,min=0,max=100"`

	MeasuredAt time.Time `json:"measured_at"`
}

// TravelPreferences holds categorical travel choices. An empty string means
// the category was never answered.
type TravelPreferences struct {
	AdventureStyle   string `json:"adventure_style,omitempty"`
	BudgetPreference string `json:"budget_preference,omitempty"`
	PlanningStyle    string `json:"planning_style,omitempty"`
	GroupPreference  string `json:"group_preference,omitempty"`
}

// Travel preference categories, in the order the scorer evaluates them.
const (
	TravelAdventureStyle   = "adventure_style"
	TravelBudgetPreference = "budget_preference"
	TravelPlanningStyle    = "planning_style"
	TravelGroupPreference  = "group_preference"
)

// Category returns the value for a named travel category.
func (t *TravelPreferences) Category(name string) string {
	switch name {
	case TravelAdventureStyle:
		return t.AdventureStyle
	case TravelBudgetPreference:
		return t.BudgetPreference
	case TravelPlanningStyle:
		return t.PlanningStyle
	case TravelGroupPreference:
		return t.GroupPreference
	default:
		return ""
	}
}

// ExperienceLevel is an overall travel experience level (1-5, 0 = unknown)
// with optional per-category overrides such as "backpacking" or "diving".
type ExperienceLevel struct {
	Level      int            `json:"level" validate:"min=0,max=5"`
	Categories map[string]int `json:"categories,omitempty" validate:"omitempty,dive,min=1,max=5"`
}

// BudgetRange is a per-trip budget. Flexibility (0-1) expresses how far the
// user would stretch beyond the stated range.
type BudgetRange struct {
	Min         float64 `json:"min" validate:"min=0"`
	Max         float64 `json:"max" validate:"min=0,gtefield=Min"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Flexibility float64 `json:"flexibility" validate:"min=0,max=1"`
}

// IsZero reports whether no budget was provided.
func (b BudgetRange) IsZero() bool {
	return b.Min == 0 && b.Max == 0
}

// ActivityPreferences lists activities a user likes, avoids, requires, or
// refuses outright.
type ActivityPreferences struct {
	Preferred    []string `json:"preferred,omitempty" validate:"max=100,dive,required,max=64"`
	Disliked     []string `json:"disliked,omitempty" validate:"max=100,dive,required,max=64"`
	MustHave     []string `json:"must_have,omitempty" validate:"max=50,dive,required,max=64"`
	DealBreakers []string `json:"deal_breakers,omitempty" validate:"max=50,dive,required,max=64"`
}

// UserCompatibilityProfile is the read-only input to the scoring engine.
type UserCompatibilityProfile struct {
	UserID      string              `json:"user_id" validate:"required,identifier"`
	Personality *PersonalityProfile `json:"personality,omitempty"`
	Travel      *TravelPreferences  `json:"travel_preferences,omitempty"`
	Experience  ExperienceLevel     `json:"experience"`
	Budget      BudgetRange         `json:"budget"`
	Activities  ActivityPreferences `json:"activities"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of p.
func (p *UserCompatibilityProfile) Clone() *UserCompatibilityProfile {
	c := *p
	if p.Personality != nil {
		pers := *p.Personality
		if p.Personality.PlanningStyle != nil {
			v := *p.Personality.PlanningStyle
			pers.PlanningStyle = &v
		}
		c.Personality = &pers
	}
	if p.Travel != nil {
		travel := *p.Travel
		c.Travel = &travel
	}
	c.Experience.Categories = maps.Clone(p.Experience.Categories)
	c.Activities = ActivityPreferences{
		Preferred:    slices.Clone(p.Activities.Preferred),
		Disliked:     slices.Clone(p.Activities.Disliked),
		MustHave:     slices.Clone(p.Activities.MustHave),
		DealBreakers: slices.Clone(p.Activities.DealBreakers),
	}
	return &c
}
