// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates when absent"},
		{name: "reuses upstream id", incoming: "req-123", wantSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("x", 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, correlation string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				ctxID = logging.RequestIDFromContext(r.Context())
				correlation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" || header != ctxID {
				t.Errorf("header %q, context %q", header, ctxID)
			}
			if (header == tt.incoming) != tt.wantSame {
				t.Errorf("header = %q, incoming %q, wantSame %v", header, tt.incoming, tt.wantSame)
			}
			if correlation == "" {
				t.Error("correlation id missing")
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/things/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter); got != before+3 {
		t.Errorf("counter = %v, want %v", got, before+3)
	}
	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody)
	if got := RoutePattern(req); got != unmatchedRoute {
		t.Errorf("RoutePattern() = %q", got)
	}
}

func TestStatusRecorder_KeepsFirstStatus(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	if rec.statusCode != http.StatusCreated {
		t.Errorf("statusCode = %d", rec.statusCode)
	}
}

func TestSlowRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		delay   time.Duration
		wantLog bool
	}{
		{name: "fast request is quiet", delay: 0},
		{name: "slow request is logged", delay: 30 * time.Millisecond, wantLog: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			r := chi.NewRouter()
			r.Use(SlowRequests(10*time.Millisecond, logger))
			r.Get("/slow/{id}", func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(http.StatusAccepted)
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow/1", http.NoBody))

			logged := strings.Contains(buf.String(), "Slow request detected")
			if logged != tt.wantLog {
				t.Fatalf("logged = %v, want %v: %s", logged, tt.wantLog, buf.String())
			}
			if tt.wantLog && (!strings.Contains(buf.String(), `"route":"/slow/{id}"`) || !strings.Contains(buf.String(), `"status":202`)) {
				t.Errorf("log lacks route or status: %s", buf.String())
			}
		})
	}
}
