// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("PROFILE_STORE", config.ProfileStoreMemory)
	t.Setenv("EVENTS_TRANSPORT", config.EventsTransportGoChannel)
	t.Setenv("CACHE_PERSISTENT_PATH", filepath.Join(t.TempDir(), "scores"))
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func serve(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(raw)))
	return rec
}

func TestNewApp_WiresComponents(t *testing.T) {
	a, err := newApp(testConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() {
		if err := a.close(); err != nil {
			t.Errorf("close() error = %v", err)
		}
	})

	if a.consumer == nil || !a.bus.Enabled() || a.guard == nil {
		t.Fatalf("consumer %v, bus enabled %v, guard %v", a.consumer != nil, a.bus.Enabled(), a.guard != nil)
	}

	rec := serve(t, a.handler, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"events_enabled":true`) {
		t.Errorf("health: %d %s", rec.Code, rec.Body.String())
	}

	for _, id := range []string{"alice", "bob"} {
		p := models.UserCompatibilityProfile{
			Personality: &models.PersonalityProfile{EnergyLevel: 50, SocialPreference: 50, AdventureStyle: 50, RiskTolerance: 50},
			Travel:      &models.TravelPreferences{AdventureStyle: "explorer", BudgetPreference: "moderate", PlanningStyle: "flexible", GroupPreference: "small"},
			Experience:  models.ExperienceLevel{Level: 2},
			Budget:      models.BudgetRange{Min: 100, Max: 900},
		}
		if rec := serve(t, a.handler, http.MethodPut, "/api/v1/profiles/"+id, p); rec.Code != http.StatusOK {
			t.Fatalf("put %s: %d %s", id, rec.Code, rec.Body.String())
		}
	}

	rec = serve(t, a.handler, http.MethodPost, "/api/v1/compatibility/pairwise", map[string]interface{}{
		"user1_id": "alice",
		"user2_id": "bob",
		"options":  map[string]bool{"include_explanation": true, "cache_result": true},
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"explanation":"`) {
		t.Errorf("pairwise: %d %s", rec.Code, rec.Body.String())
	}
	if a.cache.Len() != 1 {
		t.Errorf("cache holds %d scores, want 1", a.cache.Len())
	}
}

func TestApp_ServicesRunUnderSupervisor(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Cache.SweepInterval = 10 * time.Millisecond

	a, err := newApp(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer func() { _ = a.close() }()

	tree, err := newSupervisor(a)
	if err != nil {
		t.Fatalf("supervisor: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-a.consumer.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("event consumer did not start")
	}
	cancel()

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor tree did not stop")
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}
