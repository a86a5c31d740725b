// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tripmatch/internal/models"
)

// ProfileStore persists compatibility profiles. Both DB and MemoryStore
// implement it.
type ProfileStore interface {
	// LoadProfile returns the profile for userID; found is false when the
	// user has none.
	LoadProfile(ctx context.Context, userID string) (p *models.UserCompatibilityProfile, found bool, err error)

	// SaveProfile inserts or replaces a profile. A zero UpdatedAt is set
	// to the current time.
	SaveProfile(ctx context.Context, p *models.UserCompatibilityProfile) error

	// DeleteProfile removes a profile, returning ErrProfileNotFound when
	// there is none.
	DeleteProfile(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close() error
}

// LoadProfile reads a profile from DuckDB.
func (db *DB) LoadProfile(ctx context.Context, userID string) (*models.UserCompatibilityProfile, bool, error) {
	const query = `
		SELECT personality, travel, experience, budget, activities, updated_at
		FROM compatibility_profiles
		WHERE user_id = ?`

	var (
		personality, travel            sql.NullString
		experience, budget, activities string
		updatedAt                      time.Time
	)
	err := db.conn.QueryRowContext(ctx, query, userID).
		Scan(&personality, &travel, &experience, &budget, &activities, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query profile %s: %w", userID, err)
	}

	p := &models.UserCompatibilityProfile{UserID: userID, UpdatedAt: updatedAt.UTC()}
	if personality.Valid {
		p.Personality = &models.PersonalityProfile{}
		if err := json.Unmarshal([]byte(personality.String), p.Personality); err != nil {
			return nil, false, fmt.Errorf("decode personality for %s: %w", userID, err)
		}
	}
	if travel.Valid {
		p.Travel = &models.TravelPreferences{}
		if err := json.Unmarshal([]byte(travel.String), p.Travel); err != nil {
			return nil, false, fmt.Errorf("decode travel preferences for %s: %w", userID, err)
		}
	}
	if err := json.Unmarshal([]byte(experience), &p.Experience); err != nil {
		return nil, false, fmt.Errorf("decode experience for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(budget), &p.Budget); err != nil {
		return nil, false, fmt.Errorf("decode budget for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(activities), &p.Activities); err != nil {
		return nil, false, fmt.Errorf("decode activities for %s: %w", userID, err)
	}
	return p, true, nil
}

// SaveProfile upserts a profile into DuckDB.
func (db *DB) SaveProfile(ctx context.Context, p *models.UserCompatibilityProfile) error {
	if p == nil || p.UserID == "" {
		return ErrInvalidProfile
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	personality, err := nullableJSON(p.Personality != nil, p.Personality)
	if err != nil {
		return fmt.Errorf("encode personality: %w", err)
	}
	travel, err := nullableJSON(p.Travel != nil, p.Travel)
	if err != nil {
		return fmt.Errorf("encode travel preferences: %w", err)
	}
	experience, err := json.Marshal(p.Experience)
	if err != nil {
		return fmt.Errorf("encode experience: %w", err)
	}
	budget, err := json.Marshal(p.Budget)
	if err != nil {
		return fmt.Errorf("encode budget: %w", err)
	}
	activities, err := json.Marshal(p.Activities)
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}

	const upsert = `
		INSERT INTO compatibility_profiles
			(user_id, personality, travel, experience, budget, activities, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			personality = excluded.personality,
			travel = excluded.travel,
			experience = excluded.experience,
			budget = excluded.budget,
			activities = excluded.activities,
			updated_at = excluded.updated_at`

	if _, err := db.conn.ExecContext(ctx, upsert,
		p.UserID, personality, travel, string(experience), string(budget), string(activities), p.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

// DeleteProfile removes a profile from DuckDB.
func (db *DB) DeleteProfile(ctx context.Context, userID string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM compatibility_profiles WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// CountProfiles returns the number of stored profiles.
func (db *DB) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM compatibility_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func nullableJSON(present bool, v any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
