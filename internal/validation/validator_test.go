// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/tripmatch/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if v1, v2 := GetValidator(), GetValidator(); v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one non-nil instance")
	}
}

func validProfile() models.UserCompatibilityProfile {
	return models.UserCompatibilityProfile{
		UserID:      "traveler-1",
		Personality: &models.PersonalityProfile{EnergyLevel: 50, SocialPreference: 60, AdventureStyle: 70, RiskTolerance: 40},
		Experience:  models.ExperienceLevel{Level: 3, Categories: map[string]int{"hiking": 4}},
		Budget:      models.BudgetRange{Min: 500, Max: 1500, Currency: "EUR", Flexibility: 0.2},
		Activities:  models.ActivityPreferences{Preferred: []string{"hiking"}},
	}
}

func TestValidateStruct_Profiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*models.UserCompatibilityProfile)
		wantField string
		wantTag   string
	}{
		{name: "valid", mutate: func(*models.UserCompatibilityProfile) {}},
		{
			name:      "missing user id",
			mutate:    func(p *models.UserCompatibilityProfile) { p.UserID = "" },
			wantField: "user_id", wantTag: "required",
		},
		{
			name:      "user id with slash",
			mutate:    func(p *models.UserCompatibilityProfile) { p.UserID = "a/b" },
			wantField: "user_id", wantTag: "identifier",
		},
		{
			name:      "personality out of range",
			mutate:    func(p *models.UserCompatibilityProfile) { p.Personality.EnergyLevel = 101 },
			wantField: "personality.energy_level", wantTag: "max",
		},
		{
			name:      "inverted budget",
			mutate:    func(p *models.UserCompatibilityProfile) { p.Budget.Max = 100 },
			wantField: "budget.max", wantTag: "gtefield",
		},
		{
			name:      "bad currency",
			mutate:    func(p *models.UserCompatibilityProfile) { p.Budget.Currency = "EURO" },
			wantField: "budget.currency", wantTag: "len",
		},
		{
			name:      "experience category out of range",
			mutate:    func(p *models.UserCompatibilityProfile) { p.Experience.Categories["diving"] = 9 },
			wantField: "experience.categories[diving]", wantTag: "max",
		},
		{
			name:      "empty activity",
			mutate:    func(p *models.UserCompatibilityProfile) { p.Activities.Preferred = append(p.Activities.Preferred, "") },
			wantField: "activities.preferred[1]", wantTag: "required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			verr := ValidateStruct(&p)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("field %q tag %q, want %q %q", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if !strings.HasPrefix(errs[0].Error(), tt.wantField) {
				t.Errorf("message %q should start with the field", errs[0].Error())
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	p := validProfile()
	p.UserID = ""
	p.Budget.Flexibility = 2
	verr := ValidateStruct(&p)
	if verr == nil || len(verr.Errors()) != 2 {
		t.Fatalf("ValidateStruct() = %v, want 2 errors", verr)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() = %q, want joined messages", verr.Error())
	}
	details := verr.Details()
	if details[1].Field != "budget.flexibility" || details[1].Message != "budget.flexibility must be at most 1" {
		t.Errorf("details = %+v", details)
	}
}

func TestValidateVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr string
	}{
		{value: "group-7"},
		{value: "", wantErr: "groupID is required"},
		{value: "two words", wantErr: "groupID must not contain whitespace"},
		{value: strings.Repeat("g", 129), wantErr: "groupID must be at most 128 characters"},
	}
	for _, tt := range tests {
		verr := ValidateVar("groupID", tt.value, "required,identifier,max=128")
		switch {
		case tt.wantErr == "" && verr != nil:
			t.Errorf("ValidateVar(%q) = %v", tt.value, verr)
		case tt.wantErr != "" && (verr == nil || !strings.HasPrefix(verr.Error(), tt.wantErr)):
			t.Errorf("ValidateVar(%q) = %v, want %q", tt.value, verr, tt.wantErr)
		case verr != nil && verr.Errors()[0].Field() != "groupID":
			t.Errorf("field = %q", verr.Errors()[0].Field())
		}
	}
}

func TestTranslateMinMax_Units(t *testing.T) {
	t.Parallel()

	type lists struct {
		Tags []string `json:"tags" validate:"min=2"`
		Name string   `json:"name" validate:"min=3"`
	}
	verr := ValidateStruct(&lists{Tags: []string{"a"}, Name: "ab"})
	if verr == nil {
		t.Fatal("expected errors")
	}
	msg := verr.Error()
	if !strings.Contains(msg, "tags must be at least 2 items") || !strings.Contains(msg, "name must be at least 3 characters") {
		t.Errorf("Error() = %q", msg)
	}
}
