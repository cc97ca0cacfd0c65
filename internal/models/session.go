// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package models

import "time"

// Session is one pseudonymous visitor-device pairing over time.
// Rows are keyed by SessionID; repeated arrivals upsert with
// last-write-wins semantics rather than duplicate.
type Session struct {
	SessionID string `json:"session_id"`
	UserAgent string `json:"user_agent,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`

	// IPHash is the salted, date-rotated SHA-256 digest of the client IP.
	// The raw IP is never stored.
	IPHash string `json:"ip_hash,omitempty"`

	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`

	// IsInternal marks traffic from administrative paths, private IP
	// ranges, or the internal UTM source marker.
	IsInternal bool `json:"is_internal"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
