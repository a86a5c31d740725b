// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package eventprocessor carries cache invalidation events between Tripmatch
// instances over Watermill.
//
// Three topics are published under the configured prefix:
//
//	profile.updated    {"user_id": ...}
//	group.changed      {"group_id": ...}
//	algorithm.updated  {"parameters": {...}}
//
// Bus publishes them and implements compat.Notifier for algorithm updates.
// Consumer subscribes to all three and applies them to an Invalidator
// (normally *compat.Service), which honors the cache strategy flags.
//
// # Transports
//
//   - none: publishes are dropped; single-instance deployments invalidate
//     locally through the API.
//   - gochannel: in-process Watermill pub/sub, for tests and single binaries.
//   - nats: core NATS via watermill-nats. Every instance receives every event
//     unless a queue group is configured.
//
// An instance also consumes its own events. Invalidation is idempotent and
// algorithm versions it already knows are ignored, so this is harmless.
//
// Messages that cannot be decoded are logged and acked; handler errors are
// retried with exponential backoff before the message is dropped.
package eventprocessor
