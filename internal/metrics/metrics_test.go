// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCalculation(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		err     error
		outcome string
	}{
		{name: "successful pairwise", kind: "pairwise", outcome: "ok"},
		{name: "failed pairwise", kind: "pairwise", err: errors.New("boom"), outcome: "error"},
		{name: "successful bulk", kind: "bulk", outcome: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := CalculationsTotal.WithLabelValues(tt.kind, tt.outcome)
			before := testutil.ToFloat64(counter)

			RecordCalculation(tt.kind, 5*time.Millisecond, tt.err)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits)
	misses := testutil.ToFloat64(CacheMisses)

	RecordCacheLookup(true)
	RecordCacheLookup(true)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(CacheHits); got != hits+2 {
		t.Errorf("hits = %v, want %v", got, hits+2)
	}
	if got := testutil.ToFloat64(CacheMisses); got != misses+1 {
		t.Errorf("misses = %v, want %v", got, misses+1)
	}
}

func TestRecordCacheInvalidation(t *testing.T) {
	counter := CacheInvalidations.WithLabelValues("profile_update")
	before := testutil.ToFloat64(counter)
	entries := testutil.ToFloat64(CacheInvalidatedEntries)

	RecordCacheInvalidation("profile_update", 7)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("invalidations = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(CacheInvalidatedEntries); got != entries+7 {
		t.Errorf("invalidated entries = %v, want %v", got, entries+7)
	}
}

func TestRecordCacheSweep(t *testing.T) {
	RecordCacheSweep(3, 42)
	if got := testutil.ToFloat64(CacheEntries); got != 42 {
		t.Errorf("entries gauge = %v, want 42", got)
	}
}

func TestRecordFallbacks_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(FallbackDimensions)
	RecordFallbacks(0)
	RecordFallbacks(2)
	if got := testutil.ToFloat64(FallbackDimensions); got != before+2 {
		t.Errorf("fallbacks = %v, want %v", got, before+2)
	}
}

func TestRecordProfileLoad(t *testing.T) {
	tests := []struct {
		name    string
		found   bool
		err     error
		outcome string
	}{
		{name: "found", found: true, outcome: "found"},
		{name: "missing", outcome: "not_found"},
		{name: "error wins over found", found: true, err: errors.New("db down"), outcome: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := ProfileLoads.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(counter)
			RecordProfileLoad(tt.found, time.Millisecond, tt.err)
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("%s = %v, want %v", tt.outcome, got, before+1)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				RecordCacheLookup(j%2 == 0)
				RecordEventPublished("profile.updated")
				RecordEventConsumed("profile.updated", nil)
				RecordExplanation("ok")
				RecordAPIRequest("GET", "/api/v1/health", "200", time.Millisecond)
			}
		}(i)
	}
	wg.Wait()
}
