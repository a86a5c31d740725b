// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/supervisor"
)

// newSupervisor builds the supervisor tree and registers the app's services.
func newSupervisor(a *app) (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}
	a.addServices(tree)
	return tree, nil
}
