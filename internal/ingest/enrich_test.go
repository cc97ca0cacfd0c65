// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHashIPDeterministicWithinDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)

	a := HashIP("203.0.113.7", "salt", now)
	b := HashIP("203.0.113.7", "salt", later)
	if a != b {
		t.Error("same IP, salt, and day should hash identically")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if strings.Contains(a, "203.0.113.7") {
		t.Error("hash must not contain the raw IP")
	}
}

func TestHashIPRotatesAcrossDays(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

	if HashIP("203.0.113.7", "salt", day1) == HashIP("203.0.113.7", "salt", day2) {
		t.Error("hash should change when the UTC date rolls over")
	}
}

func TestHashIPUsesUTCDate(t *testing.T) {
	// 2026-03-15 00:30 UTC expressed in a western zone is still the 15th.
	loc := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2026, 3, 14, 19, 30, 0, 0, loc)
	utc := time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC)

	if HashIP("203.0.113.7", "salt", local) != HashIP("203.0.113.7", "salt", utc) {
		t.Error("hash should depend on the UTC date, not the local date")
	}
}

func TestHashIPSaltChangesOutput(t *testing.T) {
	now := time.Now()
	if HashIP("203.0.113.7", "salt-a", now) == HashIP("203.0.113.7", "salt-b", now) {
		t.Error("different salts should produce different hashes")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain takes first",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for beats cf-connecting-ip",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7", "CF-Connecting-IP": "198.51.100.9"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "cf-connecting-ip",
			headers:    map[string]string{"CF-Connecting-IP": "198.51.100.9"},
			remoteAddr: "10.0.0.1:1234",
			want:       "198.51.100.9",
		},
		{
			name:       "x-real-ip",
			headers:    map[string]string{"X-Real-IP": "192.0.2.44"},
			remoteAddr: "10.0.0.1:1234",
			want:       "192.0.2.44",
		},
		{
			name:       "fallback to remote addr",
			remoteAddr: "192.0.2.10:54321",
			want:       "192.0.2.10",
		},
		{
			name:       "garbage header falls through",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr: "192.0.2.10:54321",
			want:       "192.0.2.10",
		},
		{
			name:       "ipv6 forwarded",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			remoteAddr: "10.0.0.1:1234",
			want:       "2001:db8::1",
		},
	}

	// No trusted-proxy set: headers are honored from any upstream.
	res := NewIPResolver(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/collect", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := res.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPTrustedProxies(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "untrusted peer cannot spoof via forwarded-for",
			trusted:    []string{"10.0.0.1"},
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.5"},
			remoteAddr: "198.51.100.7:1234",
			want:       "198.51.100.7",
		},
		{
			name:       "untrusted peer cannot spoof via x-real-ip",
			trusted:    []string{"10.0.0.1"},
			headers:    map[string]string{"X-Real-IP": "203.0.113.99"},
			remoteAddr: "198.51.100.7:1234",
			want:       "198.51.100.7",
		},
		{
			name:       "trusted peer headers honored",
			trusted:    []string{"10.0.0.1"},
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remoteAddr: "10.0.0.1:5555",
			want:       "203.0.113.7",
		},
		{
			name:       "cidr range matches proxy",
			trusted:    []string{"10.0.0.0/8"},
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remoteAddr: "10.20.30.40:5555",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted peer without headers keeps peer address",
			trusted:    []string{"10.0.0.1"},
			remoteAddr: "10.0.0.1:5555",
			want:       "10.0.0.1",
		},
		{
			name:       "invalid entries are skipped not trusted",
			trusted:    []string{"not-an-ip", "10.0.0.0/99"},
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remoteAddr: "198.51.100.7:1234",
			want:       "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewIPResolver(tt.trusted)
			r := httptest.NewRequest("POST", "/api/v1/collect", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := res.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeoFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    Geo
	}{
		{
			name:    "cloudflare",
			headers: map[string]string{"CF-IPCountry": "NZ", "CF-Region": "Canterbury", "CF-IPCity": "Christchurch"},
			want:    Geo{Country: "NZ", Region: "Canterbury", City: "Christchurch"},
		},
		{
			name:    "cloudflare unknown country ignored",
			headers: map[string]string{"CF-IPCountry": "XX"},
			want:    Geo{},
		},
		{
			name:    "vercel",
			headers: map[string]string{"X-Vercel-IP-Country": "au", "X-Vercel-IP-Country-Region": "NSW", "X-Vercel-IP-City": "Sydney"},
			want:    Geo{Country: "AU", Region: "NSW", City: "Sydney"},
		},
		{
			name:    "vercel percent-encoded city",
			headers: map[string]string{"X-Vercel-IP-Country": "DE", "X-Vercel-IP-City": "D%C3%BCsseldorf"},
			want:    Geo{Country: "DE", City: "Düsseldorf"},
		},
		{
			name:    "cloudfront",
			headers: map[string]string{"CloudFront-Viewer-Country": "GB", "CloudFront-Viewer-City": "Leeds"},
			want:    Geo{Country: "GB", City: "Leeds"},
		},
		{
			name:    "cloudflare beats vercel",
			headers: map[string]string{"CF-IPCountry": "NZ", "X-Vercel-IP-Country": "AU"},
			want:    Geo{Country: "NZ"},
		},
		{
			name: "no headers",
			want: Geo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GeoFromHeaders(r.Header); got != tt.want {
				t.Errorf("GeoFromHeaders() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"169.254.0.1", true},
		{"::1", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"203.0.113.7", false},
		{"8.8.8.8", false},
		{"2001:db8::1", false},
		{"not-an-ip", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPrivateIP(tt.ip); got != tt.want {
			t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsInternalTraffic(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		ip        string
		utmSource string
		want      bool
	}{
		{"admin path", "/admin/settings", "203.0.113.7", "", true},
		{"admin prefix exact", "/admin", "203.0.113.7", "", true},
		{"private ip", "/2026-03", "192.168.1.50", "", true},
		{"loopback", "/2026-03", "127.0.0.1", "", true},
		{"internal utm source", "/2026-03", "203.0.113.7", "internal", true},
		{"internal utm source case-insensitive", "/2026-03", "203.0.113.7", "Internal", true},
		{"public visitor", "/2026-03", "203.0.113.7", "", false},
		{"prefix matches segment boundary only", "/administration-news", "203.0.113.7", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsInternalTraffic(tt.path, tt.ip, tt.utmSource, "/admin", "internal")
			if got != tt.want {
				t.Errorf("IsInternalTraffic(%q, %q, %q) = %v, want %v", tt.path, tt.ip, tt.utmSource, got, tt.want)
			}
		})
	}
}
