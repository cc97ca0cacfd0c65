// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package tracker

import (
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// ReportScroll reports the current scrolled percentage of the page.
// Calls are debounced; after the debounce window, one scroll_depth event
// is sent per newly reached milestone in {25, 50, 75, 100}. Milestones
// are monotonic and never re-sent within the same page view.
func (t *Tracker) ReportScroll(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if percent > t.scrollPending {
		t.scrollPending = percent
	}

	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
	}
	t.scrollTimer = time.AfterFunc(t.cfg.ScrollDebounce, t.flushScroll)
}

// flushScroll emits milestone events for the deepest debounced position.
func (t *Tracker) flushScroll() {
	t.mu.Lock()
	var beacons []*models.Beacon
	for _, m := range scrollMilestones {
		if t.scrollPending >= m && !t.scrollSent[m] {
			t.scrollSent[m] = true
			if b := t.beaconLocked(models.EventScrollDepth, map[string]interface{}{"percent": m}); b != nil {
				beacons = append(beacons, b)
			}
		}
	}
	t.mu.Unlock()

	for _, b := range beacons {
		t.sender.send(b)
	}
}

// resetScrollLocked clears milestone state for a new page view.
// Lock must be held.
func (t *Tracker) resetScrollLocked() {
	t.scrollSent = make(map[int]bool)
	t.scrollPending = 0
	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
		t.scrollTimer = nil
	}
}
