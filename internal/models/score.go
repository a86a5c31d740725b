// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import "time"

// DimensionType identifies one of the five scoring dimensions.
type DimensionType string

// The five scoring dimensions. Their order here is the order in which they
// appear in every CompatibilityScore.
const (
	DimensionPersonality DimensionType = "personality_traits"
	DimensionTravel      DimensionType = "travel_preferences"
	DimensionExperience  DimensionType = "experience_level"
	DimensionBudget      DimensionType = "budget_range"
	DimensionActivity    DimensionType = "activity_preferences"
)

// AllDimensions lists every dimension in canonical order.
var AllDimensions = []DimensionType{
	DimensionPersonality,
	DimensionTravel,
	DimensionExperience,
	DimensionBudget,
	DimensionActivity,
}

// CompatibilityDimension is one weighted sub-score.
type CompatibilityDimension struct {
	Type         DimensionType `json:"type"`
	Score        float64       `json:"score"`
	Weight       float64       `json:"weight"`
	UsedFallback bool          `json:"used_fallback,omitempty"`
	CalculatedAt time.Time     `json:"calculated_at"`
}

// Quality is the label assigned to an overall score by the configured thresholds.
type Quality string

// Quality labels, best first.
const (
	QualityExcellent    Quality = "excellent"
	QualityGood         Quality = "good"
	QualityFair         Quality = "fair"
	QualityPoor         Quality = "poor"
	QualityIncompatible Quality = "incompatible"
)

// CompatibilityScore is the immutable result for one user pair. A newer
// calculation supersedes it; it is never edited in place.
type CompatibilityScore struct {
	ID               string                   `json:"id"`
	User1ID          string                   `json:"user1_id"`
	User2ID          string                   `json:"user2_id"`
	GroupID          string                   `json:"group_id,omitempty"`
	OverallScore     float64                  `json:"overall_score"`
	Dimensions       []CompatibilityDimension `json:"dimensions"`
	Confidence       float64                  `json:"confidence"`
	Quality          Quality                  `json:"quality"`
	AlgorithmVersion string                   `json:"algorithm_version"`

	// CalculatedAt is the instant the input profiles were read. Cache
	// invalidations issued after this instant suppress the score.
	CalculatedAt time.Time  `json:"calculated_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	Explanation string `json:"explanation,omitempty"`
}

// Dimension returns the sub-score of the given type.
func (s *CompatibilityScore) Dimension(t DimensionType) (CompatibilityDimension, bool) {
	for _, d := range s.Dimensions {
		if d.Type == t {
			return d, true
		}
	}
	return CompatibilityDimension{}, false
}

// Involves reports whether the score concerns the given user.
func (s *CompatibilityScore) Involves(userID string) bool {
	return s.User1ID == userID || s.User2ID == userID
}

// Other returns the partner of userID in this pair.
func (s *CompatibilityScore) Other(userID string) string {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}

// Clone returns a copy that shares nothing mutable with s.
func (s *CompatibilityScore) Clone() *CompatibilityScore {
	c := *s
	c.Dimensions = append([]CompatibilityDimension(nil), s.Dimensions...)
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
