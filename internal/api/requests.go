// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tripmatch/internal/validation"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// errBodyTooLarge is returned by decodeJSON when the body exceeds the limit.
var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a single JSON value from r into dst, reading at most
// limit bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// readRequest decodes and validates a request body. It writes the error
// response itself and reports whether the handler should continue.
func readRequest(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) bool {
	if err := decodeJSON(w, r, limit, dst); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, err.Error())
			return false
		}
		rw.BadRequest(err.Error())
		return false
	}
	return validateBody(rw, dst)
}

// validateBody validates a decoded body and writes the error response when
// it is invalid.
func validateBody(rw *ResponseWriter, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return false
	}
	return true
}

// validID validates a path or query identifier and writes the error
// response when it is invalid.
func validID(rw *ResponseWriter, name, value string) bool {
	if verr := validation.ValidateVar(name, value, "required,identifier,max=128"); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return false
	}
	return true
}
