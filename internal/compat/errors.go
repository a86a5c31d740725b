// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error category.
type Code string

// Error codes surfaced to callers.
const (
	CodeInvalidRequest       Code = "INVALID_REQUEST"
	CodeRequestTooLarge      Code = "REQUEST_TOO_LARGE"
	CodeProfileNotFound      Code = "PROFILE_NOT_FOUND"
	CodeProfileIncomplete    Code = "PROFILE_INCOMPLETE"
	CodeInsufficientProfiles Code = "INSUFFICIENT_PROFILES"
	CodeInsufficientMembers  Code = "INSUFFICIENT_MEMBERS"
	CodeConfigurationError   Code = "CONFIGURATION_ERROR"
	CodeCacheError           Code = "CACHE_ERROR"
	CodeInternalError        Code = "INTERNAL_ERROR"
)

// Error is the typed error returned by every exposed operation.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so callers can write
// errors.Is(err, compat.ErrProfileNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest       = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrRequestTooLarge      = &Error{Code: CodeRequestTooLarge, Message: "request too large"}
	ErrProfileNotFound      = &Error{Code: CodeProfileNotFound, Message: "profile not found"}
	ErrProfileIncomplete    = &Error{Code: CodeProfileIncomplete, Message: "profile incomplete"}
	ErrInsufficientProfiles = &Error{Code: CodeInsufficientProfiles, Message: "insufficient profiles"}
	ErrInsufficientMembers  = &Error{Code: CodeInsufficientMembers, Message: "insufficient members"}
	ErrConfiguration        = &Error{Code: CodeConfigurationError, Message: "configuration error"}
	ErrCache                = &Error{Code: CodeCacheError, Message: "cache error"}
	ErrInternal             = &Error{Code: CodeInternalError, Message: "internal error"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code carried by err, or CodeInternalError for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service.
func IsClientError(err error) bool {
	switch CodeOf(err) {
	case CodeInvalidRequest, CodeRequestTooLarge, CodeProfileNotFound,
		CodeProfileIncomplete, CodeInsufficientProfiles, CodeInsufficientMembers:
		return true
	default:
		return false
	}
}
