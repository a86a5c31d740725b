// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package services provides suture service wrappers for long-running components.

  - HTTPServerService runs the API server and shuts it down gracefully.
  - CacheJanitorService sweeps expired scores and stale invalidation
    tombstones out of the score cache.

The event consumer (eventprocessor.Consumer) implements suture.Service
itself and needs no wrapper.

Every service follows the same contract: Serve blocks until its context is
cancelled and then returns ctx.Err(); any other return is a failure that
suture answers with a restart.
*/
package services
