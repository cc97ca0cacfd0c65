// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package tracker

import (
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// visibleThreshold is the minimum visible ratio that counts as "in view".
const visibleThreshold = 0.5

// sectionState tracks one observed section's cumulative visible time.
type sectionState struct {
	accumulated time.Duration
	visibleAt   time.Time // zero when not currently visible
	detached    bool
}

// ObserveSection starts visibility tracking for a section. The returned
// detach function stops observation early; it is idempotent. Accumulated
// time survives detachment and is flushed on the next page view or Close.
func (t *Tracker) ObserveSection(sectionID string) func() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return func() {}
	}
	if _, ok := t.sections[sectionID]; !ok {
		t.sections[sectionID] = &sectionState{}
	}
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if s, ok := t.sections[sectionID]; ok && !s.detached {
			t.settleSectionLocked(s)
			s.detached = true
		}
	}
}

// SectionVisible reports a section's current visible ratio. Time
// accumulates only while the ratio is at or above the 50% threshold.
func (t *Tracker) SectionVisible(sectionID string, ratio float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sections[sectionID]
	if !ok || s.detached || t.closed {
		return
	}

	if ratio >= visibleThreshold {
		if s.visibleAt.IsZero() {
			s.visibleAt = t.now()
		}
	} else {
		t.settleSectionLocked(s)
	}
}

// settleSectionLocked folds a running visibility interval into the
// accumulator. Lock must be held.
func (t *Tracker) settleSectionLocked(s *sectionState) {
	if !s.visibleAt.IsZero() {
		s.accumulated += t.now().Sub(s.visibleAt)
		s.visibleAt = time.Time{}
	}
}

// flushSectionsLocked emits one section_view per section with accumulated
// time, then clears the accumulators. Observation continues for sections
// that were not detached. Lock must be held.
func (t *Tracker) flushSectionsLocked() {
	var beacons []*models.Beacon
	for id, s := range t.sections {
		t.settleSectionLocked(s)
		if s.accumulated <= 0 {
			if s.detached {
				delete(t.sections, id)
			}
			continue
		}

		ms := s.accumulated.Milliseconds()
		if b := t.beaconLocked(models.EventSectionView, map[string]interface{}{
			"section_id": id,
			"ms_visible": ms,
		}); b != nil {
			beacons = append(beacons, b)
		}
		s.accumulated = 0
		if s.detached {
			delete(t.sections, id)
		}
	}

	// Sends happen outside the critical path of state mutation but the
	// lock is already held by the caller; the sender is non-blocking.
	for _, b := range beacons {
		t.sender.send(b)
	}
}
