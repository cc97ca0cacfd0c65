// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package models defines the core domain types shared across Lanolin:
// sessions, events, the beacon wire format, and aggregation results.
package models

import "time"

// EventType is the closed enumeration of tracked occurrences.
type EventType string

// Event types accepted by the collect endpoint. Anything outside this set
// is rejected at the boundary with 400.
const (
	EventPageview        EventType = "pageview"
	EventHeartbeat       EventType = "heartbeat"
	EventClick           EventType = "click"
	EventDownload        EventType = "download"
	EventCustom          EventType = "custom"
	EventSectionView     EventType = "section_view"
	EventScrollDepth     EventType = "scroll_depth"
	EventPWAInstall      EventType = "pwa_install"
	EventPWAPromptShown  EventType = "pwa_prompt_shown"
	EventPWAPromptResult EventType = "pwa_prompt_result"
	EventAppLaunch       EventType = "app_launch"
	EventJSError         EventType = "js_error"
	EventWebVital        EventType = "web_vital"
	EventViewReport      EventType = "view_report"
	EventDownloadReport  EventType = "download_report"
	EventBidClick        EventType = "bid_click"
)

var validEventTypes = map[EventType]struct{}{
	EventPageview:        {},
	EventHeartbeat:       {},
	EventClick:           {},
	EventDownload:        {},
	EventCustom:          {},
	EventSectionView:     {},
	EventScrollDepth:     {},
	EventPWAInstall:      {},
	EventPWAPromptShown:  {},
	EventPWAPromptResult: {},
	EventAppLaunch:       {},
	EventJSError:         {},
	EventWebVital:        {},
	EventViewReport:      {},
	EventDownloadReport:  {},
	EventBidClick:        {},
}

// IsValid reports whether t is a member of the event type enumeration.
func (t EventType) IsValid() bool {
	_, ok := validEventTypes[t]
	return ok
}

// Channel is the derived traffic classification computed at ingestion time.
// It is never trusted from the client.
type Channel string

// Traffic channels in derivation precedence order.
const (
	ChannelPaid     Channel = "Paid"
	ChannelEmail    Channel = "Email"
	ChannelDirect   Channel = "Direct"
	ChannelSocial   Channel = "Social"
	ChannelOrganic  Channel = "Organic"
	ChannelReferral Channel = "Referral"
)

// Event is one discrete tracked occurrence. Immutable once inserted.
type Event struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Type        EventType `json:"type"`
	Path        string    `json:"path"`
	PageTitle   string    `json:"page_title,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	UTMTerm     string    `json:"utm_term,omitempty"`
	UTMContent  string    `json:"utm_content,omitempty"`
	Channel     Channel   `json:"channel"`
	ScreenW     int       `json:"screen_w,omitempty"`
	ScreenH     int       `json:"screen_h,omitempty"`
	DurationMS  int64     `json:"duration_ms,omitempty"`
	Meta        string    `json:"meta,omitempty"` // serialized JSON payload, type-specific
	CreatedAt   time.Time `json:"created_at"`
}
