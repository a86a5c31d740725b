// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// WeightTolerance is how far a weight set may drift from 1.0 and still be
// accepted as normalized.
const WeightTolerance = 1e-3

// DefaultAlgorithmID identifies the built-in scoring formula.
const DefaultAlgorithmID = "default"

// DimensionWeights is the contribution of each dimension to the overall score.
type DimensionWeights struct {
	// Default: 0.30.
	Personality float64 `json:"personality_traits" koanf:"personality"`
	// Default: 0.25.
	Travel float64 `json:"travel_preferences" koanf:"travel"`
	// Default: 0.15.
	Experience float64 `json:"experience_level" koanf:"experience"`
	// Default: 0.15.
	Budget float64 `json:"budget_range" koanf:"budget"`
	// Default: 0.15.
	Activity float64 `json:"activity_preferences" koanf:"activity"`
}

// Sum returns the total of all weights.
func (w DimensionWeights) Sum() float64 {
	return w.Personality + w.Travel + w.Experience + w.Budget + w.Activity
}

// Weight returns the weight for a dimension.
func (w DimensionWeights) Weight(t DimensionType) float64 {
	switch t {
	case DimensionPersonality:
		return w.Personality
	case DimensionTravel:
		return w.Travel
	case DimensionExperience:
		return w.Experience
	case DimensionBudget:
		return w.Budget
	case DimensionActivity:
		return w.Activity
	default:
		return 0
	}
}

// Validate checks that every weight is within [0,1] and the set sums to 1.0.
func (w DimensionWeights) Validate() error {
	if err := checkUnitWeights("dimension", map[string]float64{
		"personality_traits":   w.Personality,
		"travel_preferences":   w.Travel,
		"experience_level":     w.Experience,
		"budget_range":         w.Budget,
		"activity_preferences": w.Activity,
	}); err != nil {
		return err
	}
	if math.Abs(w.Sum()-1.0) > WeightTolerance {
		return fmt.Errorf("dimension weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Normalize returns weights rescaled to sum to 1.0 and whether rescaling was
// needed. An all-zero set becomes equal weights.
func (w DimensionWeights) Normalize() (DimensionWeights, bool) {
	sum := w.Sum()
	if math.Abs(sum-1.0) <= WeightTolerance {
		return w, false
	}
	if sum <= 0 {
		return DimensionWeights{0.2, 0.2, 0.2, 0.2, 0.2}, true
	}
	return DimensionWeights{
		Personality: w.Personality / sum,
		Travel:      w.Travel / sum,
		Experience:  w.Experience / sum,
		Budget:      w.Budget / sum,
		Activity:    w.Activity / sum,
	}, true
}

// WeightedScoringFormula is a named, versioned weight set. A formula is never
// edited in place; updates produce a new value with a higher Version.
type WeightedScoringFormula struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	Weights   DimensionWeights `json:"weights"`
	Active    bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// VersionTag is the algorithm version recorded on every score.
func (f WeightedScoringFormula) VersionTag() string {
	return fmt.Sprintf("%s@v%d", f.ID, f.Version)
}

// PersonalityWeights weights the per-trait similarities.
type PersonalityWeights struct {
	EnergyLevel      float64 `json:"energy_level"`
	SocialPreference float64 `json:"social_preference"`
	AdventureStyle   float64 `json:"adventure_style"`
	RiskTolerance    float64 `json:"risk_tolerance"`
	PlanningStyle    float64 `json:"planning_style"`
}

// Sum returns the total of all trait weights.
func (w PersonalityWeights) Sum() float64 {
	return w.EnergyLevel + w.SocialPreference + w.AdventureStyle + w.RiskTolerance + w.PlanningStyle
}

// TravelPreferenceWeights weights each travel category.
type TravelPreferenceWeights struct {
	AdventureStyle   float64 `json:"adventure_style"`
	BudgetPreference float64 `json:"budget_preference"`
	PlanningStyle    float64 `json:"planning_style"`
	GroupPreference  float64 `json:"group_preference"`
}

// Weight returns the weight of a travel category.
func (w TravelPreferenceWeights) Weight(category string) float64 {
	switch category {
	case TravelAdventureStyle:
		return w.AdventureStyle
	case TravelBudgetPreference:
		return w.BudgetPreference
	case TravelPlanningStyle:
		return w.PlanningStyle
	case TravelGroupPreference:
		return w.GroupPreference
	default:
		return 0
	}
}

// Sum returns the total of all category weights.
func (w TravelPreferenceWeights) Sum() float64 {
	return w.AdventureStyle + w.BudgetPreference + w.PlanningStyle + w.GroupPreference
}

// Thresholds are the lower bounds of each quality band.
type Thresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
	Poor      float64 `json:"poor"`
}

// Classify maps an overall score to its quality label.
func (t Thresholds) Classify(score float64) Quality {
	switch {
	case score >= t.Excellent:
		return QualityExcellent
	case score >= t.Good:
		return QualityGood
	case score >= t.Fair:
		return QualityFair
	case score >= t.Poor:
		return QualityPoor
	default:
		return QualityIncompatible
	}
}

// Validate checks the bands are strictly descending within (0,100].
func (t Thresholds) Validate() error {
	if t.Excellent > 100 || t.Poor <= 0 {
		return fmt.Errorf("thresholds must lie within (0,100]")
	}
	if t.Excellent <= t.Good || t.Good <= t.Fair || t.Fair <= t.Poor {
		return fmt.Errorf("thresholds must be strictly descending: excellent > good > fair > poor")
	}
	return nil
}

// Adjustments tune individual dimension scorers.
type Adjustments struct {
	// ExperienceLevelTolerance scales the experience penalty; smaller is
	// stricter. Default: 1.0.
	ExperienceLevelTolerance float64 `json:"experience_level_tolerance"`

	// BudgetFlexibilityFactor scales how far a user's flexibility widens
	// their budget range. Default: 0.5.
	BudgetFlexibilityFactor float64 `json:"budget_flexibility_factor"`

	// ActivityOverlapBonus is the points added per shared must-have activity
	// and subtracted per dislike conflict. Default: 10.
	ActivityOverlapBonus float64 `json:"activity_overlap_bonus"`
}

// FallbackPolicy names the substitutions made when profile data is missing.
// Every substitution marks the dimension and lowers confidence.
type FallbackPolicy struct {
	NeutralTraitValue      float64 `json:"neutral_trait_value"`
	NeutralExperienceLevel int     `json:"neutral_experience_level"`
	NeutralDimensionScore  float64 `json:"neutral_dimension_score"`
	DealBreakerScore       float64 `json:"deal_breaker_score"`
	ConfidencePenalty      float64 `json:"confidence_penalty"`
	ConfidenceFloor        float64 `json:"confidence_floor"`
}

// ScoringParameters is the complete, immutable configuration of one scoring
// algorithm.
type ScoringParameters struct {
	Formula            WeightedScoringFormula  `json:"formula"`
	PersonalityWeights PersonalityWeights      `json:"personality_weights"`
	TravelWeights      TravelPreferenceWeights `json:"travel_preference_weights"`
	Thresholds         Thresholds              `json:"thresholds"`
	Adjustments        Adjustments             `json:"adjustments"`
	Fallback           FallbackPolicy          `json:"fallback_policy"`
}

// DefaultDimensionWeights returns the built-in dimension weights.
func DefaultDimensionWeights() DimensionWeights {
	return DimensionWeights{
		Personality: 0.30,
		Travel:      0.25,
		Experience:  0.15,
		Budget:      0.15,
		Activity:    0.15,
	}
}

// DefaultScoringParameters returns the built-in algorithm configuration.
func DefaultScoringParameters() ScoringParameters {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return ScoringParameters{
		Formula: WeightedScoringFormula{
			ID:        DefaultAlgorithmID,
			Name:      "Balanced travel compatibility",
			Version:   1,
			Weights:   DefaultDimensionWeights(),
			Active:    true,
			CreatedAt: epoch,
			UpdatedAt: epoch,
		},
		PersonalityWeights: PersonalityWeights{
			EnergyLevel:      0.25,
			SocialPreference: 0.25,
			AdventureStyle:   0.20,
			RiskTolerance:    0.20,
			PlanningStyle:    0.10,
		},
		TravelWeights: TravelPreferenceWeights{
			AdventureStyle:   0.30,
			BudgetPreference: 0.30,
			PlanningStyle:    0.20,
			GroupPreference:  0.20,
		},
		Thresholds: Thresholds{
			Excellent: 80,
			Good:      65,
			Fair:      50,
			Poor:      35,
		},
		Adjustments: Adjustments{
			ExperienceLevelTolerance: 1.0,
			BudgetFlexibilityFactor:  0.5,
			ActivityOverlapBonus:     10,
		},
		Fallback: FallbackPolicy{
			NeutralTraitValue:      50,
			NeutralExperienceLevel: 3,
			NeutralDimensionScore:  50,
			DealBreakerScore:       0,
			ConfidencePenalty:      0.1,
			ConfidenceFloor:        0.3,
		},
	}
}

// Validate checks every field. All violations are reported together.
func (p *ScoringParameters) Validate() error {
	var errs []error
	if p.Formula.ID == "" {
		errs = append(errs, errors.New("formula id is required"))
	}
	if err := p.Formula.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := checkUnitWeights("personality", map[string]float64{
		"energy_level":      p.PersonalityWeights.EnergyLevel,
		"social_preference": p.PersonalityWeights.SocialPreference,
		"adventure_style":   p.PersonalityWeights.AdventureStyle,
		"risk_tolerance":    p.PersonalityWeights.RiskTolerance,
		"planning_style":    p.PersonalityWeights.PlanningStyle,
	}); err != nil {
		errs = append(errs, err)
	} else if math.Abs(p.PersonalityWeights.Sum()-1.0) > WeightTolerance {
		errs = append(errs, fmt.Errorf("personality weights sum to %.4f, must sum to 1.0", p.PersonalityWeights.Sum()))
	}
	if err := checkUnitWeights("travel", map[string]float64{
		TravelAdventureStyle:   p.TravelWeights.AdventureStyle,
		TravelBudgetPreference: p.TravelWeights.BudgetPreference,
		TravelPlanningStyle:    p.TravelWeights.PlanningStyle,
		TravelGroupPreference:  p.TravelWeights.GroupPreference,
	}); err != nil {
		errs = append(errs, err)
	} else if p.TravelWeights.Sum() <= 0 {
		errs = append(errs, errors.New("travel preference weights must not all be zero"))
	}
	if err := p.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if p.Adjustments.ExperienceLevelTolerance <= 0 {
		errs = append(errs, errors.New("experience_level_tolerance must be positive"))
	}
	if p.Adjustments.BudgetFlexibilityFactor < 0 {
		errs = append(errs, errors.New("budget_flexibility_factor must not be negative"))
	}
	if p.Adjustments.ActivityOverlapBonus < 0 || p.Adjustments.ActivityOverlapBonus > 50 {
		errs = append(errs, errors.New("activity_overlap_bonus must be within [0,50]"))
	}
	f := p.Fallback
	if f.NeutralTraitValue < 0 || f.NeutralTraitValue > 100 ||
		f.NeutralDimensionScore < 0 || f.NeutralDimensionScore > 100 ||
		f.DealBreakerScore < 0 || f.DealBreakerScore >= 10 {
		errs = append(errs, errors.New("fallback scores out of range"))
	}
	if f.NeutralExperienceLevel < 1 || f.NeutralExperienceLevel > 5 {
		errs = append(errs, errors.New("neutral_experience_level must be within [1,5]"))
	}
	if f.ConfidencePenalty < 0 || f.ConfidenceFloor < 0 || f.ConfidenceFloor > 1 {
		errs = append(errs, errors.New("confidence penalty and floor must be within [0,1]"))
	}
	return errors.Join(errs...)
}

func checkUnitWeights(group string, weights map[string]float64) error {
	for name, v := range weights {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%s weight %s=%v must be within [0,1]", group, name, v)
		}
	}
	return nil
}

// DimensionWeightsPatch overrides individual dimension weights.
type DimensionWeightsPatch struct {
	Personality *float64 `json:"personality_traits,omitempty"`
	Travel      *float64 `json:"travel_preferences,omitempty"`
	Experience  *float64 `json:"experience_level,omitempty"`
	Budget      *float64 `json:"budget_range,omitempty"`
	Activity    *float64 `json:"activity_preferences,omitempty"`
}

// ScoringParametersPatch is a partial update. Nil fields keep their current
// value. A patch is validated field by field and then applied as a whole.
type ScoringParametersPatch struct {
	Name                     *string                  `json:"name,omitempty"`
	Active                   *bool                    `json:"is_active,omitempty"`
	Weights                  *DimensionWeightsPatch   `json:"weights,omitempty"`
	PersonalityWeights       *PersonalityWeights      `json:"personality_weights,omitempty"`
	TravelWeights            *TravelPreferenceWeights `json:"travel_preference_weights,omitempty"`
	Thresholds               *Thresholds              `json:"thresholds,omitempty"`
	ExperienceLevelTolerance *float64                 `json:"experience_level_tolerance,omitempty"`
	BudgetFlexibilityFactor  *float64                 `json:"budget_flexibility_factor,omitempty"`
	ActivityOverlapBonus     *float64                 `json:"activity_overlap_bonus,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *ScoringParametersPatch) IsEmpty() bool {
	return p.Name == nil && p.Active == nil && p.Weights == nil &&
		p.PersonalityWeights == nil && p.TravelWeights == nil && p.Thresholds == nil &&
		p.ExperienceLevelTolerance == nil && p.BudgetFlexibilityFactor == nil &&
		p.ActivityOverlapBonus == nil
}

// Validate checks each supplied field in isolation.
func (p *ScoringParametersPatch) Validate() error {
	if p.Weights != nil {
		for name, v := range map[string]*float64{
			"personality_traits":   p.Weights.Personality,
			"travel_preferences":   p.Weights.Travel,
			"experience_level":     p.Weights.Experience,
			"budget_range":         p.Weights.Budget,
			"activity_preferences": p.Weights.Activity,
		} {
			if v != nil && (*v < 0 || *v > 1 || math.IsNaN(*v)) {
				return fmt.Errorf("dimension weight %s=%v must be within [0,1]", name, *v)
			}
		}
	}
	if p.Name != nil && *p.Name == "" {
		return errors.New("name must not be empty")
	}
	return nil
}

// Apply merges the patch into p and returns the new parameters with a bumped
// formula version. p is not modified. Dimension weights that no longer sum to
// 1.0 after the merge are renormalized.
func (p ScoringParameters) Apply(patch *ScoringParametersPatch, now time.Time) (ScoringParameters, error) {
	if err := patch.Validate(); err != nil {
		return ScoringParameters{}, err
	}

	next := p
	if patch.Name != nil {
		next.Formula.Name = *patch.Name
	}
	if patch.Active != nil {
		next.Formula.Active = *patch.Active
	}
	if w := patch.Weights; w != nil {
		setIf(&next.Formula.Weights.Personality, w.Personality)
		setIf(&next.Formula.Weights.Travel, w.Travel)
		setIf(&next.Formula.Weights.Experience, w.Experience)
		setIf(&next.Formula.Weights.Budget, w.Budget)
		setIf(&next.Formula.Weights.Activity, w.Activity)
		if next.Formula.Weights.Sum() <= 0 {
			return ScoringParameters{}, errors.New("dimension weights must not all be zero")
		}
		next.Formula.Weights, _ = next.Formula.Weights.Normalize()
	}
	if patch.PersonalityWeights != nil {
		next.PersonalityWeights = *patch.PersonalityWeights
	}
	if patch.TravelWeights != nil {
		next.TravelWeights = *patch.TravelWeights
	}
	if patch.Thresholds != nil {
		next.Thresholds = *patch.Thresholds
	}
	setIf(&next.Adjustments.ExperienceLevelTolerance, patch.ExperienceLevelTolerance)
	setIf(&next.Adjustments.BudgetFlexibilityFactor, patch.BudgetFlexibilityFactor)
	setIf(&next.Adjustments.ActivityOverlapBonus, patch.ActivityOverlapBonus)

	if err := next.Validate(); err != nil {
		return ScoringParameters{}, err
	}
	next.Formula.Version = p.Formula.Version + 1
	next.Formula.UpdatedAt = now
	return next, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
