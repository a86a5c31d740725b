// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package database

import (
	"errors"
	"io"
)

// ErrProfileNotFound is returned when deleting a profile that does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ErrInvalidProfile is returned when saving a profile without a user ID.
var ErrInvalidProfile = errors.New("profile user ID is required")

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
