// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/database"
	"github.com/tomtom215/tripmatch/internal/models"
)

func fptr(v float64) *float64 { return &v }

func completeProfile(id string) *models.UserCompatibilityProfile {
	return &models.UserCompatibilityProfile{
		UserID: id,
		Personality: &models.PersonalityProfile{
			EnergyLevel:      60,
			SocialPreference: 55,
			AdventureStyle:   70,
			RiskTolerance:    40,
			PlanningStyle:    fptr(65),
		},
		Travel: &models.TravelPreferences{
			AdventureStyle:   "explorer",
			BudgetPreference: "moderate",
			PlanningStyle:    "flexible",
			GroupPreference:  "small",
		},
		Experience: models.ExperienceLevel{Level: 3},
		Budget:     models.BudgetRange{Min: 1500, Max: 3000, Currency: "EUR", Flexibility: 0.2},
		Activities: models.ActivityPreferences{Preferred: []string{"hiking", "museums"}},
	}
}

// recordingPublisher is an EventPublisher that remembers what it sent.
type recordingPublisher struct {
	mu       sync.Mutex
	profiles []string
	groups   []string
	err      error
}

func (p *recordingPublisher) Enabled() bool { return true }

func (p *recordingPublisher) PublishProfileUpdated(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = append(p.profiles, userID)
	return p.err
}

func (p *recordingPublisher) PublishGroupChanged(_ context.Context, groupID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, groupID)
	return p.err
}

type fixedBreaker string

func (b fixedBreaker) State() string { return string(b) }

// downStore fails health checks.
type downStore struct {
	*database.MemoryStore
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type fixture struct {
	handler   http.Handler
	store     *database.MemoryStore
	publisher *recordingPublisher
	service   *compat.Service
}

type fixtureOptions struct {
	mw           *ChiMiddlewareConfig
	maxBodyBytes int64
	maxBulkUsers int
	store        database.ProfileStore
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	mem := database.NewMemoryStore()
	var store database.ProfileStore = mem
	if opts.store != nil {
		store = opts.store
	}
	svc, err := compat.NewService(compat.Dependencies{
		Profiles:     store,
		MaxBulkUsers: opts.maxBulkUsers,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	t.Cleanup(func() { _ = svc.Cache().Close() })

	pub := &recordingPublisher{}
	h := NewHandler(svc, store, pub, fixedBreaker("closed"), HandlerConfig{
		MaxBodyBytes:   opts.maxBodyBytes,
		RequestTimeout: 5 * time.Second,
		Version:        "test",
	}, zerolog.Nop())
	mw := opts.mw
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.BulkRateLimit = 0
	}
	return &fixture{
		handler:   NewRouter(h, mw, time.Second, zerolog.Nop()).SetupChi(),
		store:     mem,
		publisher: pub,
		service:   svc,
	}
}

// envelope mirrors APIResponse with raw payloads.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    struct {
		RequestID   string          `json:"request_id"`
		Calculation json.RawMessage `json:"calculation"`
	} `json:"meta"`
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, target, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (f *fixture) seed(t *testing.T, profiles ...*models.UserCompatibilityProfile) {
	t.Helper()
	for _, p := range profiles {
		if err := f.store.SaveProfile(context.Background(), p); err != nil {
			t.Fatalf("SaveProfile(%s) error = %v", p.UserID, err)
		}
	}
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestPairwise_CachesResult(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.seed(t, completeProfile("alice"), completeProfile("bob"))

	req := compat.PairwiseRequest{
		User1ID: "alice",
		User2ID: "bob",
		GroupID: "trip-1",
		Options: compat.PairwiseOptions{CacheResult: true, IncludeExplanation: true},
	}

	for i, wantHit := range []bool{false, true} {
		status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", req)
		if status != http.StatusOK || !env.Success {
			t.Fatalf("call %d: status = %d, error = %+v", i, status, env.Error)
		}
		var score models.CompatibilityScore
		decodeData(t, env, &score)
		if score.User1ID != "alice" || score.User2ID != "bob" || score.GroupID != "trip-1" {
			t.Errorf("call %d: score = %+v", i, score)
		}
		if score.OverallScore < 0 || score.OverallScore > 100 || len(score.Dimensions) != 5 {
			t.Errorf("call %d: overall %v with %d dimensions", i, score.OverallScore, len(score.Dimensions))
		}

		var meta compat.PairwiseMeta
		if err := json.Unmarshal(env.Meta.Calculation, &meta); err != nil {
			t.Fatalf("decode calculation meta: %v", err)
		}
		if meta.CacheHit != wantHit {
			t.Errorf("call %d: cache_hit = %v, want %v", i, meta.CacheHit, wantHit)
		}
		if meta.AlgorithmVersion == "" {
			t.Errorf("call %d: algorithm_version is empty", i)
		}
		if env.Meta.RequestID == "" {
			t.Errorf("call %d: meta.request_id is empty", i)
		}
	}
}

func TestPairwise_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{maxBodyBytes: 512})
	incomplete := completeProfile("carol")
	incomplete.Travel = nil
	f.seed(t, completeProfile("alice"), incomplete)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"user1_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidRequest,
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidRequest,
		},
		{
			name:       "missing user",
			body:       compat.PairwiseRequest{User1ID: "alice"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidRequest,
		},
		{
			name:       "self comparison",
			body:       compat.PairwiseRequest{User1ID: "alice", User2ID: "alice"},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(compat.CodeInvalidRequest),
		},
		{
			name:       "unknown profile",
			body:       compat.PairwiseRequest{User1ID: "alice", User2ID: "nobody"},
			wantStatus: http.StatusNotFound,
			wantCode:   string(compat.CodeProfileNotFound),
		},
		{
			name:       "incomplete profile",
			body:       compat.PairwiseRequest{User1ID: "alice", User2ID: "carol"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   string(compat.CodeProfileIncomplete),
		},
		{
			name:       "body too large",
			body:       `{"user1_id":"` + strings.Repeat("a", 600) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   ErrCodeRequestTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if env.Success || env.Error == nil {
				t.Fatalf("expected an error envelope, got %+v", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", env.Error.Code, tt.wantCode, env.Error.Message)
			}
			if env.Error.RequestID == "" {
				t.Error("error.request_id is empty")
			}
		})
	}
}

func TestPairwise_InvalidInputUsesServiceCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.seed(t, completeProfile("alice"))

	bodies := map[string]interface{}{
		"malformed json": `{"user2_id": 7`,
		"missing user":   compat.PairwiseRequest{User1ID: "alice"},
		"self":           compat.PairwiseRequest{User1ID: "alice", User2ID: "alice"},
	}
	for name, body := range bodies {
		status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", body)
		if status != http.StatusBadRequest || env.Error == nil {
			t.Fatalf("%s: status = %d, error = %+v", name, status, env.Error)
		}
		if env.Error.Code != string(compat.CodeInvalidRequest) {
			t.Errorf("%s: code = %q, want %q", name, env.Error.Code, compat.CodeInvalidRequest)
		}
		if name == "missing user" {
			raw, _ := json.Marshal(env.Error.Details)
			if !strings.Contains(string(raw), `"field":"user2_id"`) {
				t.Errorf("details = %s, want field user2_id", raw)
			}
		}
	}
}

func TestBulk(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{maxBulkUsers: 3})
	f.seed(t, completeProfile("alice"), completeProfile("bob"), completeProfile("dave"))

	t.Run("scores every pair", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/bulk", compat.BulkRequest{
			GroupID: "trip-2",
			UserIDs: []string{"alice", "bob", "dave"},
			Options: compat.BulkOptions{IncludeMatrix: true, IncludeAnalysis: true},
		})
		if status != http.StatusOK {
			t.Fatalf("status = %d, error = %+v", status, env.Error)
		}
		var data compat.BulkData
		decodeData(t, env, &data)
		if len(data.Scores) != 3 || data.Matrix == nil || data.Analysis == nil {
			t.Errorf("data = %d scores, matrix %v, analysis %v", len(data.Scores), data.Matrix != nil, data.Analysis != nil)
		}
		var meta compat.BulkMeta
		if err := json.Unmarshal(env.Meta.Calculation, &meta); err != nil {
			t.Fatalf("decode calculation meta: %v", err)
		}
		if meta.TotalPairs != 3 {
			t.Errorf("total_pairs = %d, want 3", meta.TotalPairs)
		}
	})

	t.Run("skips unknown users", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/bulk", compat.BulkRequest{
			UserIDs: []string{"alice", "bob", "ghost"},
		})
		if status != http.StatusOK {
			t.Fatalf("status = %d, error = %+v", status, env.Error)
		}
		var meta compat.BulkMeta
		if err := json.Unmarshal(env.Meta.Calculation, &meta); err != nil {
			t.Fatalf("decode calculation meta: %v", err)
		}
		if meta.TotalPairs != 1 || len(meta.SkippedUsers) != 1 || meta.SkippedUsers[0].UserID != "ghost" {
			t.Errorf("meta = %+v", meta)
		}
	})

	tests := []struct {
		name       string
		ids        []string
		wantStatus int
		wantCode   compat.Code
	}{
		{name: "too few", ids: []string{"alice"}, wantStatus: http.StatusBadRequest, wantCode: compat.CodeInvalidRequest},
		{name: "too many", ids: []string{"alice", "bob", "dave", "erin"}, wantStatus: http.StatusRequestEntityTooLarge, wantCode: compat.CodeRequestTooLarge},
		{name: "duplicates", ids: []string{"alice", "alice"}, wantStatus: http.StatusBadRequest, wantCode: compat.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/bulk", compat.BulkRequest{UserIDs: tt.ids})
			if status != tt.wantStatus || env.Error == nil || env.Error.Code != string(tt.wantCode) {
				t.Errorf("status = %d, error = %+v, want %d %s", status, env.Error, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestBulk_RateLimited(t *testing.T) {
	t.Parallel()

	mw := DefaultChiMiddlewareConfig()
	mw.BulkRateLimit = 1
	mw.BulkRateWindow = time.Hour
	f := newFixture(t, fixtureOptions{mw: mw})
	f.seed(t, completeProfile("alice"), completeProfile("bob"))

	body := compat.BulkRequest{UserIDs: []string{"alice", "bob"}}
	if status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/bulk", body); status != http.StatusOK {
		t.Fatalf("first request: status = %d, error = %+v", status, env.Error)
	}
	status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/bulk", body)
	if status != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("second request: status = %d, error = %+v", status, env.Error)
	}

	// Pairwise scoring is not limited.
	if status, _ := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise",
		compat.PairwiseRequest{User1ID: "alice", User2ID: "bob"}); status != http.StatusOK {
		t.Errorf("pairwise status = %d", status)
	}
}

func TestAlgorithms(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})

	status, env := f.do(t, http.MethodGet, "/api/v1/compatibility/algorithms/"+models.DefaultAlgorithmID, nil)
	if status != http.StatusOK {
		t.Fatalf("get: status = %d", status)
	}
	var params models.ScoringParameters
	decodeData(t, env, &params)
	if params.Formula.ID != models.DefaultAlgorithmID || params.Formula.Version != 1 {
		t.Errorf("formula = %+v", params.Formula)
	}

	name := "Weekend trips"
	status, env = f.do(t, http.MethodPatch, "/api/v1/compatibility/algorithms/weekend",
		models.ScoringParametersPatch{Name: &name})
	if status != http.StatusOK {
		t.Fatalf("patch: status = %d, error = %+v", status, env.Error)
	}
	decodeData(t, env, &params)
	if params.Formula.ID != "weekend" || params.Formula.Name != name {
		t.Errorf("patched formula = %+v", params.Formula)
	}

	status, env = f.do(t, http.MethodPatch, "/api/v1/compatibility/algorithms/weekend", `{}`)
	if status != http.StatusBadRequest || env.Error.Code != string(compat.CodeInvalidRequest) {
		t.Errorf("empty patch: status = %d, error = %+v", status, env.Error)
	}

	status, env = f.do(t, http.MethodGet, "/api/v1/compatibility/algorithms", nil)
	if status != http.StatusOK {
		t.Fatalf("list: status = %d", status)
	}
	var list []models.ScoringParameters
	decodeData(t, env, &list)
	if len(list) != 2 {
		t.Errorf("listed %d algorithms, want 2", len(list))
	}
}

func TestCacheEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.seed(t, completeProfile("alice"), completeProfile("bob"), completeProfile("dave"))

	for _, pair := range [][3]string{{"alice", "bob", "g1"}, {"alice", "dave", "g2"}} {
		req := compat.PairwiseRequest{
			User1ID: pair[0], User2ID: pair[1], GroupID: pair[2],
			Options: compat.PairwiseOptions{CacheResult: true},
		}
		if status, env := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", req); status != http.StatusOK {
			t.Fatalf("seed pairwise: status = %d, error = %+v", status, env.Error)
		}
	}

	lookups := []struct {
		target string
		want   int
	}{
		{target: "/api/v1/compatibility/cache/g1/alice", want: 1},
		{target: "/api/v1/compatibility/cache/-/alice", want: 2},
		{target: "/api/v1/compatibility/cache/g1/alice?other=bob", want: 1},
		{target: "/api/v1/compatibility/cache/g1/alice?other=dave", want: 0},
		{target: "/api/v1/compatibility/cache/g2/bob", want: 0},
	}
	for _, tt := range lookups {
		status, env := f.do(t, http.MethodGet, tt.target, nil)
		if status != http.StatusOK {
			t.Errorf("GET %s: status = %d, error = %+v", tt.target, status, env.Error)
			continue
		}
		var scores []models.CompatibilityScore
		decodeData(t, env, &scores)
		if len(scores) != tt.want {
			t.Errorf("GET %s: %d scores, want %d", tt.target, len(scores), tt.want)
		}
	}

	if status, _ := f.do(t, http.MethodGet, "/api/v1/compatibility/cache/g1/alice?other=alice", nil); status != http.StatusBadRequest {
		t.Errorf("self lookup: status = %d, want 400", status)
	}

	status, env := f.do(t, http.MethodDelete, "/api/v1/compatibility/cache?group_id=g1", nil)
	if status != http.StatusOK {
		t.Fatalf("delete: status = %d", status)
	}
	var res invalidationResult
	decodeData(t, env, &res)
	if res.Removed != 1 {
		t.Errorf("removed = %d, want 1", res.Removed)
	}

	status, env = f.do(t, http.MethodGet, "/api/v1/compatibility/cache/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("stats: status = %d", status)
	}
	var stats models.CacheStats
	decodeData(t, env, &stats)
	if stats.TotalEntries != 1 {
		t.Errorf("total_entries = %d, want 1", stats.TotalEntries)
	}
}

func TestProfiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.seed(t, completeProfile("bob"))

	if status, env := f.do(t, http.MethodGet, "/api/v1/profiles/alice", nil); status != http.StatusNotFound ||
		env.Error.Code != string(compat.CodeProfileNotFound) {
		t.Errorf("get missing: status = %d, error = %+v", status, env.Error)
	}

	// The user id may be omitted from the body.
	alice := completeProfile("")
	status, env := f.do(t, http.MethodPut, "/api/v1/profiles/alice", alice)
	if status != http.StatusOK {
		t.Fatalf("put: status = %d, error = %+v", status, env.Error)
	}

	req := compat.PairwiseRequest{User1ID: "alice", User2ID: "bob", Options: compat.PairwiseOptions{CacheResult: true}}
	if status, _ := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", req); status != http.StatusOK {
		t.Fatalf("pairwise: status = %d", status)
	}

	alice.Budget.Max = 5000
	status, env = f.do(t, http.MethodPut, "/api/v1/profiles/alice", alice)
	if status != http.StatusOK {
		t.Fatalf("update: status = %d, error = %+v", status, env.Error)
	}
	var change profileChange
	decodeData(t, env, &change)
	if change.Invalidated != 1 || !change.Published || change.Profile == nil || change.Profile.UserID != "alice" {
		t.Errorf("change = %+v", change)
	}

	status, env = f.do(t, http.MethodGet, "/api/v1/profiles/alice", nil)
	if status != http.StatusOK {
		t.Fatalf("get: status = %d", status)
	}
	var stored models.UserCompatibilityProfile
	decodeData(t, env, &stored)
	if stored.Budget.Max != 5000 || stored.UpdatedAt.IsZero() {
		t.Errorf("stored = %+v", stored)
	}

	if status, _ := f.do(t, http.MethodDelete, "/api/v1/profiles/alice", nil); status != http.StatusOK {
		t.Errorf("delete: status = %d", status)
	}
	if status, env := f.do(t, http.MethodDelete, "/api/v1/profiles/alice", nil); status != http.StatusNotFound {
		t.Errorf("delete again: status = %d, error = %+v", status, env.Error)
	}

	f.publisher.mu.Lock()
	published := append([]string(nil), f.publisher.profiles...)
	f.publisher.mu.Unlock()
	if len(published) != 3 {
		t.Errorf("published %v, want 3 profile events", published)
	}
}

func TestPutProfile_Rejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})

	mismatched := completeProfile("bob")
	inverted := completeProfile("alice")
	inverted.Budget.Min, inverted.Budget.Max = 900, 100

	tests := []struct {
		name      string
		target    string
		body      interface{}
		wantCode  string
		wantField string
	}{
		{name: "id mismatch", target: "/api/v1/profiles/alice", body: mismatched, wantCode: ErrCodeInvalidRequest},
		{name: "invalid budget", target: "/api/v1/profiles/alice", body: inverted, wantCode: ErrCodeInvalidRequest, wantField: "budget.max"},
		{name: "bad path id", target: "/api/v1/profiles/a%20b", body: completeProfile(""), wantCode: ErrCodeInvalidRequest, wantField: "userID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodPut, tt.target, tt.body)
			if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("status = %d, error = %+v", status, env.Error)
			}
			if tt.wantField == "" {
				return
			}
			raw, _ := json.Marshal(env.Error.Details)
			if !strings.Contains(string(raw), `"field":"`+tt.wantField+`"`) {
				t.Errorf("details = %s, want field %s", raw, tt.wantField)
			}
		})
	}
}

func TestGroupChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.seed(t, completeProfile("alice"), completeProfile("bob"))

	req := compat.PairwiseRequest{User1ID: "alice", User2ID: "bob", GroupID: "g9", Options: compat.PairwiseOptions{CacheResult: true}}
	if status, _ := f.do(t, http.MethodPost, "/api/v1/compatibility/pairwise", req); status != http.StatusOK {
		t.Fatalf("pairwise: status = %d", status)
	}

	status, env := f.do(t, http.MethodPost, "/api/v1/groups/g9/changed", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	var change profileChange
	decodeData(t, env, &change)
	if change.Invalidated != 1 || !change.Published {
		t.Errorf("change = %+v", change)
	}
	if len(f.publisher.groups) != 1 || f.publisher.groups[0] != "g9" {
		t.Errorf("published groups = %v", f.publisher.groups)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})
	f.publisher.err = errors.New("broker down")

	status, env := f.do(t, http.MethodPut, "/api/v1/profiles/alice", completeProfile("alice"))
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	var change profileChange
	decodeData(t, env, &change)
	if change.Published {
		t.Error("published = true after a publish failure")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		store      database.ProfileStore
		wantStatus int
		wantState  string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "store down", store: downStore{database.NewMemoryStore()}, wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fixtureOptions{store: tt.store})
			status, env := f.do(t, http.MethodGet, "/api/v1/health", nil)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			var health HealthStatus
			decodeData(t, env, &health)
			if health.Status != tt.wantState || health.ExplainState != "closed" || !health.EventsEnabled || health.Version != "test" {
				t.Errorf("health = %+v", health)
			}
		})
	}
}

func TestRouting(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOptions{})

	if status, env := f.do(t, http.MethodGet, "/api/v1/health/live", nil); status != http.StatusOK || !env.Success {
		t.Errorf("live: status = %d", status)
	}
	if status, env := f.do(t, http.MethodGet, "/api/v1/nope", nil); status != http.StatusNotFound || env.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route: status = %d, error = %+v", status, env.Error)
	}
	if status, env := f.do(t, http.MethodGet, "/api/v1/compatibility/pairwise", nil); status != http.StatusMethodNotAllowed ||
		env.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("wrong method: status = %d, error = %+v", status, env.Error)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "compat_calculations_total") {
		t.Errorf("metrics: status = %d", rec.Code)
	}
}
