// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HashIP computes the salted, date-rotated digest of a client IP:
//
//	hex(SHA-256(ip || salt || YYYY-MM-DD))
//
// The date component is UTC, so the same visitor yields a different hash
// each calendar day. Same-day correlation works; cross-day linkage does
// not. Rotating the salt invalidates all historical hashes.
func HashIP(ip, salt string, now time.Time) string {
	day := now.UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(ip + salt + day))
	return hex.EncodeToString(sum[:])
}
