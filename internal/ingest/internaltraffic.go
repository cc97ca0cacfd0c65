// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"net/netip"
	"strings"
)

// IsPrivateIP reports whether ip is loopback, link-local, or in a
// private range (RFC 1918 and the IPv6 ULA block).
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
}

// IsInternalTraffic classifies a beacon as internal when it originates
// from an administrative page, a private or loopback IP, or carries the
// operator's internal UTM source marker.
func IsInternalTraffic(path, clientIP, utmSource, adminPrefix, internalUTMSource string) bool {
	if adminPrefix != "" && (path == adminPrefix || strings.HasPrefix(path, adminPrefix+"/")) {
		return true
	}
	if IsPrivateIP(clientIP) {
		return true
	}
	if internalUTMSource != "" && strings.EqualFold(utmSource, internalUTMSource) {
		return true
	}
	return false
}
