// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"testing"

	"github.com/merinolabs/lanolin/internal/models"
)

func TestDeriveChannel(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		utm      models.UTM
		want     models.Channel
	}{
		{"empty referrer no utm", "", models.UTM{}, models.ChannelDirect},
		{"facebook referrer", "https://facebook.com/x", models.UTM{}, models.ChannelSocial},
		{"facebook subdomain", "https://l.facebook.com/l.php?u=x", models.UTM{}, models.ChannelSocial},
		{"google search", "https://google.com/search", models.UTM{}, models.ChannelOrganic},
		{"google country tld", "https://www.google.co.uk/url", models.UTM{}, models.ChannelOrganic},
		{"duckduckgo", "https://duckduckgo.com/", models.UTM{}, models.ChannelOrganic},
		{"cpc beats referrer", "https://anything", models.UTM{Medium: "cpc"}, models.ChannelPaid},
		{"paid medium case-insensitive", "", models.UTM{Medium: "PPC"}, models.ChannelPaid},
		{"paid_social medium", "https://facebook.com", models.UTM{Medium: "paid_social"}, models.ChannelPaid},
		{"display medium", "", models.UTM{Medium: "display"}, models.ChannelPaid},
		{"retargeting medium", "", models.UTM{Medium: "retargeting"}, models.ChannelPaid},
		{"email medium", "https://google.com", models.UTM{Medium: "email"}, models.ChannelEmail},
		{"email source", "", models.UTM{Source: "email"}, models.ChannelEmail},
		{"paid beats email", "", models.UTM{Source: "email", Medium: "cpc"}, models.ChannelPaid},
		{"unknown referrer", "https://woolnews.example.net/article", models.UTM{}, models.ChannelReferral},
		{"utm source alone is not paid", "", models.UTM{Source: "partner"}, models.ChannelDirect},
		{"bing organic", "https://www.bing.com/search?q=wool", models.UTM{}, models.ChannelOrganic},
		{"x.com social", "https://x.com/merinolabs", models.UTM{}, models.ChannelSocial},
		{"tco shortener", "https://t.co/abc123", models.UTM{}, models.ChannelSocial},
		{"unparseable referrer is direct", "://not-a-url", models.UTM{}, models.ChannelDirect},
		{"whitespace referrer is direct", "   ", models.UTM{}, models.ChannelDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveChannel(tt.referrer, tt.utm); got != tt.want {
				t.Errorf("DeriveChannel(%q, %+v) = %q, want %q", tt.referrer, tt.utm, got, tt.want)
			}
		})
	}
}

func TestDeriveChannelIsPure(t *testing.T) {
	utm := models.UTM{Medium: "cpc"}
	first := DeriveChannel("https://example.com", utm)
	for i := 0; i < 100; i++ {
		if got := DeriveChannel("https://example.com", utm); got != first {
			t.Fatalf("channel derivation not deterministic: %q then %q", first, got)
		}
	}
}
