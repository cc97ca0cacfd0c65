// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package models

// Field length bounds applied before persistence. Client-reported strings
// are untrusted and truncated rather than rejected.
const (
	MaxSessionIDLen = 128
	MaxPathLen      = 1024
	MaxTitleLen     = 512
	MaxReferrerLen  = 1024
	MaxUserAgentLen = 512
	MaxLanguageLen  = 32
	MaxTimezoneLen  = 64
	MaxUTMLen       = 255
	MaxMetaLen      = 4096
)

// UTM carries the structured attribution parameters from the beacon.
type UTM struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Beacon is the wire format of one client-to-collect request body.
type Beacon struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Type      string `json:"type" validate:"required,max=64"`
	Path      string `json:"path" validate:"required"`
	PageTitle string `json:"page_title,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"ua"`
	Language  string `json:"lang,omitempty"`
	Timezone  string `json:"tz,omitempty"`
	UTM       *UTM   `json:"utm,omitempty"`
	ScreenW   int    `json:"screen_w,omitempty" validate:"min=0,max=100000"`
	ScreenH   int    `json:"screen_h,omitempty" validate:"min=0,max=100000"`

	// Meta is the type-specific payload, kept as raw JSON so the collect
	// handler does not need to understand every event type's shape.
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// Truncate clamps all client-reported strings to their storage bounds.
func (b *Beacon) Truncate() {
	b.SessionID = truncate(b.SessionID, MaxSessionIDLen)
	b.Path = truncate(b.Path, MaxPathLen)
	b.PageTitle = truncate(b.PageTitle, MaxTitleLen)
	b.Referrer = truncate(b.Referrer, MaxReferrerLen)
	b.UserAgent = truncate(b.UserAgent, MaxUserAgentLen)
	b.Language = truncate(b.Language, MaxLanguageLen)
	b.Timezone = truncate(b.Timezone, MaxTimezoneLen)
	if b.UTM != nil {
		b.UTM.Source = truncate(b.UTM.Source, MaxUTMLen)
		b.UTM.Medium = truncate(b.UTM.Medium, MaxUTMLen)
		b.UTM.Campaign = truncate(b.UTM.Campaign, MaxUTMLen)
		b.UTM.Term = truncate(b.UTM.Term, MaxUTMLen)
		b.UTM.Content = truncate(b.UTM.Content, MaxUTMLen)
	}
}

// UTMOrEmpty returns the beacon's UTM block, or a zero value when absent.
func (b *Beacon) UTMOrEmpty() UTM {
	if b.UTM == nil {
		return UTM{}
	}
	return *b.UTM
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so truncation never splits UTF-8.
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
