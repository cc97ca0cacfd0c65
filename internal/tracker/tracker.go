// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package tracker is the embeddable client SDK for the collect endpoint.
// It mirrors the browser tracker's behavior for Go hosts (kiosks, embedded
// dashboards, test harnesses): a stable session identifier, heartbeats
// while visible, debounced scroll-depth milestones, section-visibility
// accumulation, and fire-and-forget delivery that never surfaces errors
// into the host application.
package tracker

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// Scroll-depth milestones, each sent at most once per page view.
var scrollMilestones = [4]int{25, 50, 75, 100}

const (
	defaultHeartbeatInterval = 15 * time.Second
	defaultScrollDebounce    = 300 * time.Millisecond
)

// Config configures a Tracker.
type Config struct {
	// Endpoint is the collect URL, e.g. https://lanolin.example.com/api/v1/collect.
	Endpoint string

	// Origin is sent as the Origin header so the endpoint's allow-list
	// applies. Optional for server-side hosts.
	Origin string

	// SessionPath is the file persisting the session identifier.
	// Empty uses a file under the user cache directory.
	SessionPath string

	// AdminPathPrefix suppresses all events while the current path is
	// under it.
	AdminPathPrefix string

	// RespectDoNotTrack makes DoNotTrack suppress all events.
	RespectDoNotTrack bool
	// DoNotTrack is the host-reported do-not-track signal.
	DoNotTrack bool

	UserAgent string
	Language  string
	Timezone  string
	Referrer  string
	ScreenW   int
	ScreenH   int

	// DisplayMode tags the app_launch event: "standalone" for an
	// installed app, "browser" otherwise.
	DisplayMode string

	HTTPClient        *http.Client
	HeartbeatInterval time.Duration
	ScrollDebounce    time.Duration
}

// Tracker observes one host surface and emits typed beacons. All methods
// are safe for concurrent use and never return errors; tracking failures
// must not affect the host.
type Tracker struct {
	cfg       Config
	sessionID string
	sender    sender
	now       func() time.Time

	mu           sync.Mutex
	closed       bool
	currentPath  string
	currentTitle string
	referrer     string
	pageStart    time.Time

	scrollSent    map[int]bool
	scrollPending int
	scrollTimer   *time.Timer

	sections map[string]*sectionState

	visible bool
	hbStop  chan struct{}
}

// New creates a tracker. No events are sent until Start or TrackPageView.
func New(cfg Config) *Tracker {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.ScrollDebounce <= 0 {
		cfg.ScrollDebounce = defaultScrollDebounce
	}
	if cfg.DisplayMode == "" {
		cfg.DisplayMode = "browser"
	}

	return &Tracker{
		cfg:        cfg,
		sessionID:  NewSessionStore(cfg.SessionPath).SessionID(),
		sender:     newHTTPSender(cfg.Endpoint, cfg.Origin, cfg.HTTPClient),
		now:        time.Now,
		referrer:   cfg.Referrer,
		scrollSent: make(map[int]bool),
		sections:   make(map[string]*sectionState),
		visible:    true,
	}
}

// Start sends the initial app_launch and first pageview.
func (t *Tracker) Start(path, title string) {
	t.mu.Lock()
	t.currentPath = path
	launch := t.beaconLocked(models.EventAppLaunch, map[string]interface{}{
		"display_mode": t.cfg.DisplayMode,
	})
	t.mu.Unlock()

	if launch != nil {
		t.sender.send(launch)
	}
	t.TrackPageView(path, title)
}

// TrackPageView records one logical navigation: flushes section
// accumulators, resets scroll-depth state, emits a pageview, and restarts
// the heartbeat. Callable repeatedly over the tracker's lifetime.
func (t *Tracker) TrackPageView(path, title string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	t.flushSectionsLocked()
	t.resetScrollLocked()

	t.currentPath = path
	t.currentTitle = title
	t.pageStart = t.now()

	b := t.beaconLocked(models.EventPageview, nil)
	t.referrer = "" // only the first pageview carries the external referrer
	t.restartHeartbeatLocked()
	t.mu.Unlock()

	if b != nil {
		t.sender.send(b)
	}
}

// Track emits a generic event with a caller-supplied meta payload.
func (t *Tracker) Track(eventType models.EventType, meta map[string]interface{}) {
	t.mu.Lock()
	b := t.beaconLocked(eventType, meta)
	t.mu.Unlock()

	if b != nil {
		t.sender.send(b)
	}
}

// TrackReportView records that a market report was opened.
func (t *Tracker) TrackReportView(reportID string) {
	t.Track(models.EventViewReport, map[string]interface{}{
		"report_id": reportID,
		"ts":        t.now().UTC().UnixMilli(),
	})
}

// TrackReportDownload records that a market report was downloaded.
func (t *Tracker) TrackReportDownload(reportID, format string) {
	t.Track(models.EventDownloadReport, map[string]interface{}{
		"report_id": reportID,
		"format":    format,
		"ts":        t.now().UTC().UnixMilli(),
	})
}

// TrackBidClick records an expression of interest on a lot.
func (t *Tracker) TrackBidClick(lotID string) {
	t.Track(models.EventBidClick, map[string]interface{}{
		"lot_id": lotID,
		"ts":     t.now().UTC().UnixMilli(),
	})
}

// SetVisible reports tab/surface visibility. Heartbeats stop while hidden
// and resume with a fresh interval when visible again.
func (t *Tracker) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.visible == visible {
		return
	}
	t.visible = visible
	if visible {
		t.restartHeartbeatLocked()
	} else {
		t.stopHeartbeatLocked()
	}
}

// Close flushes section accumulators and stops all timers. The tracker
// must not be used afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.flushSectionsLocked()
	t.stopHeartbeatLocked()
	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
	}
	t.closed = true
	t.mu.Unlock()
}

// SessionID exposes the stable identifier, mainly for tests and debugging.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// suppressedLocked reports whether events must be dropped right now.
// Lock must be held.
func (t *Tracker) suppressedLocked() bool {
	if t.cfg.RespectDoNotTrack && t.cfg.DoNotTrack {
		return true
	}
	prefix := t.cfg.AdminPathPrefix
	if prefix != "" && (t.currentPath == prefix || strings.HasPrefix(t.currentPath, prefix+"/")) {
		return true
	}
	return false
}

// beaconLocked builds a beacon for the current page context, or nil when
// suppressed. Lock must be held.
func (t *Tracker) beaconLocked(eventType models.EventType, meta map[string]interface{}) *models.Beacon {
	if t.closed || t.suppressedLocked() {
		return nil
	}
	return &models.Beacon{
		SessionID: t.sessionID,
		Type:      string(eventType),
		Path:      t.currentPath,
		PageTitle: t.currentTitle,
		Referrer:  t.referrer,
		UserAgent: t.cfg.UserAgent,
		Language:  t.cfg.Language,
		Timezone:  t.cfg.Timezone,
		ScreenW:   t.cfg.ScreenW,
		ScreenH:   t.cfg.ScreenH,
		Meta:      meta,
	}
}
