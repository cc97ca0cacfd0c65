// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package botfilter

// defaultSignatures cover search-engine crawlers, link-preview fetchers,
// SEO spiders, headless browsers, and scripting HTTP clients. Substring
// matching against the lowercased user agent.
var defaultSignatures = []string{
	// Generic markers
	"bot",
	"spider",
	"crawler",
	"scraper",
	"headless",

	// Search engines
	"googlebot",
	"bingbot",
	"slurp",
	"duckduckbot",
	"baiduspider",
	"yandexbot",
	"sogou",
	"applebot",

	// Social link previews
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"whatsapp",
	"telegrambot",
	"discordbot",
	"slackbot",

	// SEO and monitoring
	"ahrefsbot",
	"semrushbot",
	"mj12bot",
	"dotbot",
	"uptimerobot",
	"pingdom",

	// Headless browsers and automation
	"headlesschrome",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
	"lighthouse",
	"pagespeed",

	// Scripted HTTP clients
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"java/",
	"okhttp",
	"httpclient",
	"axios",
	"node-fetch",
}

// Filter classifies user-agent strings against a bot signature set.
type Filter struct {
	matcher *automaton
}

// New creates a filter with the default signature set.
func New() *Filter {
	return NewWithSignatures(defaultSignatures)
}

// NewWithSignatures creates a filter with a custom signature set.
func NewWithSignatures(signatures []string) *Filter {
	return &Filter{matcher: newAutomaton(signatures)}
}

// Match returns the first matched signature and whether the user agent
// looks like a bot. An empty user agent counts as a bot; real browsers
// always send one.
func (f *Filter) Match(userAgent string) (string, bool) {
	if userAgent == "" {
		return "empty", true
	}
	return f.matcher.firstMatch(userAgent)
}

// IsBot reports whether the user agent matches any bot signature.
func (f *Filter) IsBot(userAgent string) bool {
	_, ok := f.Match(userAgent)
	return ok
}
