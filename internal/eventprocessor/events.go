// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Topic names, relative to the configured prefix.
const (
	TopicProfileUpdated   = "profile.updated"
	TopicGroupChanged     = "group.changed"
	TopicAlgorithmUpdated = "algorithm.updated"
)

// Metadata keys set on every published message.
const (
	MetadataSource    = "source"
	MetadataEventType = "event_type"
)

// ProfileUpdatedEvent announces that a user's compatibility profile changed.
type ProfileUpdatedEvent struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields.
func (e *ProfileUpdatedEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	return nil
}

// GroupChangedEvent announces that a group's membership changed.
type GroupChangedEvent struct {
	GroupID    string    `json:"group_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields.
func (e *GroupChangedEvent) Validate() error {
	if e.GroupID == "" {
		return fmt.Errorf("%w: group_id is required", ErrInvalidEvent)
	}
	return nil
}

// AlgorithmUpdatedEvent carries the full parameter set of a new algorithm
// version so receivers can adopt it without a shared store.
type AlgorithmUpdatedEvent struct {
	Parameters models.ScoringParameters `json:"parameters"`
	OccurredAt time.Time                `json:"occurred_at"`
}

// Validate checks the carried parameters.
func (e *AlgorithmUpdatedEvent) Validate() error {
	if e.Parameters.Formula.ID == "" {
		return fmt.Errorf("%w: formula id is required", ErrInvalidEvent)
	}
	if err := e.Parameters.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

type validatable interface {
	Validate() error
}

// encode validates and marshals an event.
func encode(event validatable) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// decode unmarshals and validates an event.
func decode(data []byte, event validatable) error {
	if err := json.Unmarshal(data, event); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return event.Validate()
}
