// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package ingest implements beacon enrichment for the collect pipeline:
// traffic-channel derivation, privacy-preserving IP hashing, client IP and
// geo extraction from proxy headers, and internal-traffic classification.
package ingest

import (
	"net/url"
	"strings"

	"github.com/merinolabs/lanolin/internal/models"
)

// paidMediums are utm_medium values that classify traffic as Paid.
var paidMediums = map[string]struct{}{
	"cpc":         {},
	"ppc":         {},
	"cpm":         {},
	"cpv":         {},
	"cpa":         {},
	"paid":        {},
	"paidsearch":  {},
	"paid_social": {},
	"display":     {},
	"retargeting": {},
}

// socialDomains match referrer hosts classified as Social. Matching is by
// host suffix so subdomains like l.facebook.com and m.youtube.com count.
var socialDomains = []string{
	"facebook.com",
	"fb.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"t.co",
	"linkedin.com",
	"lnkd.in",
	"reddit.com",
	"pinterest.com",
	"tiktok.com",
	"youtube.com",
	"youtu.be",
	"whatsapp.com",
	"telegram.org",
	"t.me",
	"mastodon.social",
	"bsky.app",
}

// searchDomains match referrer hosts classified as Organic search.
var searchDomains = []string{
	"google.com",
	"google.co",
	"bing.com",
	"yahoo.com",
	"duckduckgo.com",
	"baidu.com",
	"yandex.com",
	"yandex.ru",
	"ecosia.org",
	"qwant.com",
	"startpage.com",
	"brave.com",
	"search.brave.com",
}

// DeriveChannel classifies traffic from referrer and UTM parameters.
//
// Precedence is significant: paid mediums and email markers win over the
// empty-referrer Direct check, which wins over social and search matching.
// The function is pure; identical inputs always yield the same channel.
func DeriveChannel(referrer string, utm models.UTM) models.Channel {
	medium := strings.ToLower(strings.TrimSpace(utm.Medium))
	source := strings.ToLower(strings.TrimSpace(utm.Source))

	if _, ok := paidMediums[medium]; ok {
		return models.ChannelPaid
	}
	if medium == "email" || source == "email" {
		return models.ChannelEmail
	}

	host := referrerHost(referrer)
	if host == "" {
		return models.ChannelDirect
	}
	if hostMatchesAny(host, socialDomains) {
		return models.ChannelSocial
	}
	if hostMatchesAny(host, searchDomains) {
		return models.ChannelOrganic
	}
	return models.ChannelReferral
}

// referrerHost extracts the lowercased host from a referrer URL.
// Returns "" for empty or unparseable referrers, which classify as Direct.
func referrerHost(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func hostMatchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
		// google.co covers country TLDs like google.co.uk.
		if strings.HasPrefix(d, "google.co") && strings.HasPrefix(host, "google.co") {
			return true
		}
	}
	return false
}
