// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package cache

import (
	"sync"
	"time"
)

// HitRateWindow tracks hits and misses over a sliding time window. Time is
// divided into buckets held in a circular buffer; buckets older than the
// window are zeroed as the clock advances.
//
// Complexity:
//   - Record: O(1) amortized
//   - Rate: O(k) where k = number of buckets
type HitRateWindow struct {
	mu         sync.Mutex
	hits       []int64
	misses     []int64
	bucketSize time.Duration
	numBuckets int
	current    int
	bucketFrom time.Time
	now        func() time.Time
}

// NewHitRateWindow creates a window of the given size split into numBuckets.
// A nil now uses time.Now.
func NewHitRateWindow(window time.Duration, numBuckets int, now func() time.Time) *HitRateWindow {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	bucketSize := window / time.Duration(numBuckets)
	if bucketSize <= 0 {
		bucketSize = time.Nanosecond
	}
	return &HitRateWindow{
		hits:       make([]int64, numBuckets),
		misses:     make([]int64, numBuckets),
		bucketSize: bucketSize,
		numBuckets: numBuckets,
		bucketFrom: now(),
		now:        now,
	}
}

// Record counts one lookup.
func (w *HitRateWindow) Record(hit bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.advance()
	if hit {
		w.hits[w.current]++
	} else {
		w.misses[w.current]++
	}
}

// Rate returns hits / (hits + misses) within the window, or 0 with no traffic.
func (w *HitRateWindow) Rate() float64 {
	hits, misses := w.Counts()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Counts returns the hits and misses within the window.
func (w *HitRateWindow) Counts() (hits, misses int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.advance()
	for i := range w.hits {
		hits += w.hits[i]
		misses += w.misses[i]
	}
	return hits, misses
}

// Reset clears all buckets.
func (w *HitRateWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	clear(w.hits)
	clear(w.misses)
	w.current = 0
	w.bucketFrom = w.now()
}

// advance rotates past elapsed buckets. Must be called with lock held.
func (w *HitRateWindow) advance() {
	elapsed := w.now().Sub(w.bucketFrom)
	steps := int(elapsed / w.bucketSize)
	if steps <= 0 {
		return
	}

	if steps >= w.numBuckets {
		clear(w.hits)
		clear(w.misses)
		w.current = 0
	} else {
		for i := 0; i < steps; i++ {
			w.current = (w.current + 1) % w.numBuckets
			w.hits[w.current] = 0
			w.misses[w.current] = 0
		}
	}
	// Keep bucket boundaries aligned to the original start.
	w.bucketFrom = w.bucketFrom.Add(time.Duration(steps) * w.bucketSize)
}
