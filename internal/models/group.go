// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import "time"

// CompatibilityMatrix is a symmetric N×N table of overall scores. Row and
// column i both refer to UserIDs[i]; the diagonal is always 100.
type CompatibilityMatrix struct {
	UserIDs []string    `json:"user_ids"`
	Scores  [][]float64 `json:"scores"`
}

// NewCompatibilityMatrix allocates a matrix for ids with a diagonal of 100.
func NewCompatibilityMatrix(ids []string) *CompatibilityMatrix {
	m := &CompatibilityMatrix{
		UserIDs: append([]string(nil), ids...),
		Scores:  make([][]float64, len(ids)),
	}
	for i := range m.Scores {
		m.Scores[i] = make([]float64, len(ids))
		m.Scores[i][i] = 100
	}
	return m
}

// Set stores a score at (i, j) and (j, i).
func (m *CompatibilityMatrix) Set(i, j int, score float64) {
	m.Scores[i][j] = score
	m.Scores[j][i] = score
}

// GroupDynamics holds the four 0-100 group metrics.
type GroupDynamics struct {
	Cohesion   float64 `json:"cohesion"`
	Diversity  float64 `json:"diversity"`
	Leadership float64 `json:"leadership"`
	Energy     float64 `json:"energy"`
}

// RecommendationType enumerates the kinds of group advice.
type RecommendationType string

// Recommendation types.
const (
	RecommendAddMember    RecommendationType = "add_member"
	RecommendRemoveMember RecommendationType = "remove_member"
	RecommendSwapMember   RecommendationType = "swap_member"
	RecommendBalanceGroup RecommendationType = "balance_group"
)

// Priority ranks recommendations with equal impact.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sortable rank where higher priority is larger.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// GroupRecommendation is one piece of advice for improving a group.
type GroupRecommendation struct {
	Type             RecommendationType `json:"type"`
	Priority         Priority           `json:"priority"`
	Description      string             `json:"description"`
	ImpactScore      float64            `json:"impact_score"`
	SuggestedUserIDs []string           `json:"suggested_user_ids,omitempty"`
}

// GroupCompatibilityAnalysis aggregates pairwise scores for a whole group.
type GroupCompatibilityAnalysis struct {
	GroupID              string                `json:"group_id,omitempty"`
	MemberCount          int                   `json:"member_count"`
	AverageCompatibility float64               `json:"average_compatibility"`
	Matrix               *CompatibilityMatrix  `json:"compatibility_matrix"`
	Dynamics             GroupDynamics         `json:"group_dynamics"`
	Recommendations      []GroupRecommendation `json:"recommendations"`
	CalculatedAt         time.Time             `json:"calculated_at"`
}
