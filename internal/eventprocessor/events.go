// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package eventprocessor carries accepted beacons from the collect handler
// to the live-stats aggregator over an in-process Watermill pub/sub.
// Publishing happens after persistence, so a lost message can only ever
// understate the live numbers, never the stored ones.
package eventprocessor

import (
	"errors"
	"time"
)

// TopicBeaconsAccepted carries every beacon that survived the full
// collect pipeline and was persisted.
const TopicBeaconsAccepted = "beacons.accepted"

// BeaconEnvelope is the message payload for an accepted beacon.
type BeaconEnvelope struct {
	EventID    string    `json:"event_id"`
	SessionID  string    `json:"session_id"`
	Type       string    `json:"type"`
	Path       string    `json:"path"`
	Channel    string    `json:"channel"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the envelope carries the fields the aggregator needs.
func (e *BeaconEnvelope) Validate() error {
	if e.SessionID == "" {
		return errors.New("envelope missing session_id")
	}
	if e.Type == "" {
		return errors.New("envelope missing type")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("envelope missing created_at")
	}
	return nil
}
