// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/merinolabs/lanolin/internal/logging"
)

// ipHeaders are checked in priority order. X-Forwarded-For first because
// it is the most widely set, then the CDN-specific header, then the
// reverse-proxy convention.
var ipHeaders = []string{
	"X-Forwarded-For",
	"CF-Connecting-IP",
	"X-Real-IP",
}

// IPResolver extracts the originating client IP with proxy validation.
// When a trusted-proxy set is configured, forwarding headers are honored
// only for connections arriving from one of those proxies; any other
// peer gets its connection address back, so a direct client cannot spoof
// its way past the rate limiter or into the private-IP internal-traffic
// classification. An empty set honors headers from any upstream, which
// is only safe when the service is not directly reachable.
type IPResolver struct {
	trusted []netip.Prefix

	// configured distinguishes "no proxy list" (honor any upstream) from
	// "list given but nothing parsed" (trust nothing).
	configured bool
}

// NewIPResolver parses the trusted-proxy entries. Entries are single IPs
// or CIDR ranges; invalid entries are logged and skipped rather than
// failing startup.
func NewIPResolver(trustedProxies []string) *IPResolver {
	res := &IPResolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		res.configured = true
		if strings.ContainsRune(entry, '/') {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logging.Warn().Str("entry", entry).Msg("Ignoring invalid trusted proxy range")
				continue
			}
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logging.Warn().Str("entry", entry).Msg("Ignoring invalid trusted proxy address")
			continue
		}
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res
}

// ClientIP extracts the originating client IP for the request. For
// X-Forwarded-For the first entry is taken, which is the client as
// reported by the outermost proxy.
func (res *IPResolver) ClientIP(r *http.Request) string {
	peer := peerIP(r.RemoteAddr)
	if !res.headersTrusted(peer) {
		return peer
	}
	if ip := forwardedIP(r.Header); ip != "" {
		return ip
	}
	return peer
}

// headersTrusted reports whether forwarding headers from this peer may
// be honored.
func (res *IPResolver) headersTrusted(peer string) bool {
	if !res.configured {
		return true
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// forwardedIP returns the first valid IP found in the forwarding headers,
// or "" when none parses.
func forwardedIP(h http.Header) string {
	for _, name := range ipHeaders {
		val := strings.TrimSpace(h.Get(name))
		if val == "" {
			continue
		}
		if idx := strings.IndexByte(val, ','); idx >= 0 {
			val = strings.TrimSpace(val[:idx])
		}
		if ip := net.ParseIP(val); ip != nil {
			return ip.String()
		}
	}
	return ""
}

// peerIP strips the port from a connection remote address.
func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr without a port, as httptest sometimes produces.
		if ip := net.ParseIP(remoteAddr); ip != nil {
			return ip.String()
		}
		return remoteAddr
	}
	return host
}
