// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package models

import "time"

// DailySummary is one day of top-line traffic numbers.
type DailySummary struct {
	Day             time.Time `json:"day"`
	Sessions        int64     `json:"sessions"`
	Pageviews       int64     `json:"pageviews"`
	Events          int64     `json:"events"`
	ReportViews     int64     `json:"report_views"`
	ReportDownloads int64     `json:"report_downloads"`
	BidClicks       int64     `json:"bid_clicks"`
}

// ChannelCount is the session count attributed to one traffic channel.
type ChannelCount struct {
	Channel  Channel `json:"channel"`
	Sessions int64   `json:"sessions"`
}

// PathCount is the pageview count for one path.
type PathCount struct {
	Path      string `json:"path"`
	Pageviews int64  `json:"pageviews"`
}

// ScrollBucket is the number of pageviews that reached one scroll milestone.
type ScrollBucket struct {
	Percent int   `json:"percent"`
	Count   int64 `json:"count"`
}

// SectionEngagement is cumulative visibility time for one tracked section.
type SectionEngagement struct {
	SectionID      string  `json:"section_id"`
	Views          int64   `json:"views"`
	TotalVisibleMS int64   `json:"total_visible_ms"`
	AvgVisibleMS   float64 `json:"avg_visible_ms"`
}

// LiveStats is the rolling-window snapshot served by the live endpoint.
type LiveStats struct {
	ActiveSessions int            `json:"active_sessions"`
	EventsInWindow int            `json:"events_in_window"`
	ByType         map[string]int `json:"by_type"`
	WindowSeconds  int            `json:"window_seconds"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// StatsOverview bundles the aggregate views served by the stats endpoint.
type StatsOverview struct {
	Daily       []DailySummary      `json:"daily"`
	Channels    []ChannelCount      `json:"channels"`
	TopPaths    []PathCount         `json:"top_paths"`
	ScrollDepth []ScrollBucket      `json:"scroll_depth"`
	Sections    []SectionEngagement `json:"sections"`
}
