// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package cache

import "strings"

// Key identifies a cached score. User IDs are stored in sorted order so a
// pair maps to the same key regardless of argument order.
type Key struct {
	UserA   string
	UserB   string
	GroupID string
}

// NewKey builds the canonical key for a pair within an optional group.
func NewKey(user1, user2, groupID string) Key {
	if user2 < user1 {
		user1, user2 = user2, user1
	}
	return Key{UserA: user1, UserB: user2, GroupID: groupID}
}

// Has reports whether the key concerns userID.
func (k Key) Has(userID string) bool {
	return k.UserA == userID || k.UserB == userID
}

// String renders the key as group/userA/userB. Group-less keys use "-".
func (k Key) String() string {
	g := k.GroupID
	if g == "" {
		g = "-"
	}
	return strings.Join([]string{g, k.UserA, k.UserB}, keySep)
}

const keySep = "\x1f"

// parseKey reverses String. It reports false for malformed input.
func parseKey(s string) (Key, bool) {
	parts := strings.Split(s, keySep)
	if len(parts) != 3 {
		return Key{}, false
	}
	g := parts[0]
	if g == "-" {
		g = ""
	}
	return Key{UserA: parts[1], UserB: parts[2], GroupID: g}, true
}

// Filter selects entries for invalidation. The zero Filter matches everything.
type Filter struct {
	UserID  string
	GroupID string
}

// Matches reports whether k is selected by f.
func (f Filter) Matches(k Key) bool {
	if f.UserID != "" && !k.Has(f.UserID) {
		return false
	}
	if f.GroupID != "" && k.GroupID != f.GroupID {
		return false
	}
	return true
}
