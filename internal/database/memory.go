// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package database

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/tripmatch/internal/models"
)

// MemoryStore is a ProfileStore kept in process memory. Profiles are copied
// on the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserCompatibilityProfile
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.UserCompatibilityProfile),
		now:      time.Now,
	}
}

// LoadProfile implements ProfileStore.
func (m *MemoryStore) LoadProfile(ctx context.Context, userID string) (*models.UserCompatibilityProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// SaveProfile implements ProfileStore.
func (m *MemoryStore) SaveProfile(ctx context.Context, p *models.UserCompatibilityProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil || p.UserID == "" {
		return ErrInvalidProfile
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = m.now().UTC()
	}
	m.mu.Lock()
	m.profiles[p.UserID] = p.Clone()
	m.mu.Unlock()
	return nil
}

// DeleteProfile implements ProfileStore.
func (m *MemoryStore) DeleteProfile(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		return ErrProfileNotFound
	}
	delete(m.profiles, userID)
	return nil
}

// Ping implements ProfileStore.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close implements ProfileStore.
func (m *MemoryStore) Close() error { return nil }
