// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the process; it caches struct
// metadata and is safe for concurrent use. Failures are reported by JSON
// field path (for example budget.max or activities.preferred[2]) so they can
// be returned to API clients as is.
//
// # Custom tags
//
//   - identifier: non-empty, printable, no whitespace, '/' or '|'. Used for
//     user, group and algorithm ids, which end up in cache keys and URLs.
//
// # Usage
//
//	if verr := validation.ValidateStruct(&profile); verr != nil {
//	    rw.ValidationError(verr.Error(), verr.Details())
//	    return
//	}
//
//	if verr := validation.ValidateVar("userID", id, "required,identifier,max=128"); verr != nil {
//	    ...
//	}
package validation
