// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/models"
)

// ParameterRegistry holds the scoring algorithms by id. Values are replaced
// wholesale on update, so a ScoringParameters handed out is never mutated.
type ParameterRegistry struct {
	mu        sync.RWMutex
	params    map[string]models.ScoringParameters
	defaultID string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewParameterRegistry creates a registry whose default algorithm is defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewParameterRegistry(defaults models.ScoringParameters, logger zerolog.Logger) (*ParameterRegistry, error) {
	if err := defaults.Validate(); err != nil {
		return nil, wrapError(CodeConfigurationError, err, "invalid default scoring parameters")
	}
	return &ParameterRegistry{
		params:    map[string]models.ScoringParameters{defaults.Formula.ID: defaults},
		defaultID: defaults.Formula.ID,
		now:       time.Now,
		logger:    logger.With().Str("component", "parameter_registry").Logger(),
	}, nil
}

// DefaultID returns the id of the default algorithm.
func (r *ParameterRegistry) DefaultID() string {
	return r.defaultID
}

// LoadParameters returns the algorithm registered under id, or the default
// when id is empty or unknown.
func (r *ParameterRegistry) LoadParameters(id string) models.ScoringParameters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.params[id]; ok {
		return p
	}
	return r.params[r.defaultID]
}

// Lookup returns the algorithm registered under id.
func (r *ParameterRegistry) Lookup(id string) (models.ScoringParameters, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.params[id]
	return p, ok
}

// Register adds or replaces an algorithm.
func (r *ParameterRegistry) Register(p models.ScoringParameters) error {
	if err := p.Validate(); err != nil {
		return wrapError(CodeConfigurationError, err, "invalid scoring parameters for %q", p.Formula.ID)
	}
	r.mu.Lock()
	r.params[p.Formula.ID] = p
	r.mu.Unlock()
	return nil
}

// Adopt registers p when it is unknown or newer than the registered version.
// It reports whether the registry changed.
func (r *ParameterRegistry) Adopt(p models.ScoringParameters) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, wrapError(CodeConfigurationError, err, "invalid scoring parameters for %q", p.Formula.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.params[p.Formula.ID]; ok && cur.Formula.Version >= p.Formula.Version {
		return false, nil
	}
	r.params[p.Formula.ID] = p
	return true, nil
}

// List returns every algorithm ordered by id.
func (r *ParameterRegistry) List() []models.ScoringParameters {
	r.mu.RLock()
	out := make([]models.ScoringParameters, 0, len(r.params))
	for _, p := range r.params {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Formula.ID < out[j].Formula.ID })
	return out
}

// Update applies patch to the algorithm id and returns the new version. An
// unknown id is created from the default algorithm. The previous parameters
// are returned so callers can tell whether anything changed.
func (r *ParameterRegistry) Update(id string, patch *models.ScoringParametersPatch) (next, prev models.ScoringParameters, err error) {
	if patch == nil || patch.IsEmpty() {
		return next, prev, newError(CodeInvalidRequest, "update contains no changes")
	}
	if id == "" {
		id = r.defaultID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	base, ok := r.params[id]
	if !ok {
		base = r.params[r.defaultID]
		base.Formula.ID = id
		base.Formula.Name = id
		base.Formula.Version = 0
		base.Formula.CreatedAt = now
	}

	next, err = base.Apply(patch, now)
	if err != nil {
		return models.ScoringParameters{}, base, wrapError(CodeInvalidRequest, err, "invalid algorithm update")
	}
	r.params[id] = next

	r.logger.Info().
		Str("algorithm", id).
		Str("version", next.Formula.VersionTag()).
		Bool("created", !ok).
		Msg("scoring parameters updated")
	return next, base, nil
}
