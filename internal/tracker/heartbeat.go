// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package tracker

import (
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// restartHeartbeatLocked stops any running heartbeat and, if the surface
// is visible, starts a fresh one with a full interval. Lock must be held.
func (t *Tracker) restartHeartbeatLocked() {
	t.stopHeartbeatLocked()
	if !t.visible || t.closed {
		return
	}

	stop := make(chan struct{})
	t.hbStop = stop
	go t.heartbeatLoop(stop, t.cfg.HeartbeatInterval)
}

// stopHeartbeatLocked stops the running heartbeat, if any. Lock must be held.
func (t *Tracker) stopHeartbeatLocked() {
	if t.hbStop != nil {
		close(t.hbStop)
		t.hbStop = nil
	}
}

// heartbeatLoop emits a heartbeat every interval while the surface stays
// visible, carrying cumulative seconds since the page view started.
func (t *Tracker) heartbeatLoop(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			var b *models.Beacon
			if t.visible && !t.closed {
				seconds := int64(t.now().Sub(t.pageStart).Seconds())
				b = t.beaconLocked(models.EventHeartbeat, map[string]interface{}{
					"seconds": seconds,
				})
			}
			t.mu.Unlock()

			if b != nil {
				t.sender.send(b)
			}
		}
	}
}
