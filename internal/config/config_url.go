// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var natsSchemes = map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}

// validateNATSURL checks a NATS server list. nats.go accepts several
// comma-separated servers; each must have a known scheme and a host.
func validateNATSURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("at least one server URL is required")
	}
	for _, server := range strings.Split(raw, ",") {
		server = strings.TrimSpace(server)
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("server %q: %w", server, err)
		}
		if !natsSchemes[u.Scheme] {
			return fmt.Errorf("server %q: scheme must be nats, tls, ws or wss", server)
		}
		if u.Host == "" {
			return fmt.Errorf("server %q: host is required (e.g. broker:4222)", server)
		}
	}
	return nil
}
