// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/logging"
)

// statusFor maps service error codes to HTTP status codes.
var statusFor = map[compat.Code]int{
	compat.CodeInvalidRequest:       http.StatusBadRequest,
	compat.CodeRequestTooLarge:      http.StatusRequestEntityTooLarge,
	compat.CodeProfileNotFound:      http.StatusNotFound,
	compat.CodeProfileIncomplete:    http.StatusUnprocessableEntity,
	compat.CodeInsufficientProfiles: http.StatusUnprocessableEntity,
	compat.CodeInsufficientMembers:  http.StatusUnprocessableEntity,
	compat.CodeConfigurationError:   http.StatusInternalServerError,
	compat.CodeCacheError:           http.StatusServiceUnavailable,
	compat.CodeInternalError:        http.StatusInternalServerError,
}

// writeServiceError maps err to a response. Client errors keep their
// message; server errors are logged and reported generically.
func writeServiceError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
		return
	case errors.Is(err, context.Canceled):
		rw.ServiceUnavailable("request cancelled")
		return
	}

	code := compat.CodeOf(err)
	status, ok := statusFor[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if compat.IsClientError(err) {
		var ce *compat.Error
		message := err.Error()
		if errors.As(err, &ce) {
			message = ce.Message
		}
		rw.Error(status, string(code), message)
		return
	}

	logging.Ctx(r.Context()).Error().Err(err).Str("code", string(code)).Msg("Compatibility request failed")
	rw.Error(status, string(code), "the request could not be completed")
}
