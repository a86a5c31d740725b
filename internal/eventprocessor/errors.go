// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package eventprocessor

import "errors"

// ErrInvalidEvent is returned for events that fail to decode or validate.
// Consumers drop such messages instead of retrying them.
var ErrInvalidEvent = errors.New("invalid event")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrBusDisabled is returned when a consumer is built on a bus with no
// transport.
var ErrBusDisabled = errors.New("event bus disabled")
