// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package eventprocessor

import (
	"context"
	"sync"
	"time"

	"github.com/merinolabs/lanolin/internal/logging"
	"github.com/merinolabs/lanolin/internal/metrics"
	"github.com/merinolabs/lanolin/internal/models"
)

// LiveStats consumes accepted beacons and maintains a rolling-window view
// of current activity without touching the database. Internal traffic is
// excluded, matching the stored aggregation views.
type LiveStats struct {
	bus    *Bus
	window time.Duration

	total   *windowCounter
	byType  map[string]*windowCounter
	typesMu sync.Mutex

	sessionsMu sync.Mutex
	sessions   map[string]time.Time // session id -> last seen

	readyOnce sync.Once
	ready     chan struct{} // closed once the subscription is live
}

// NewLiveStats creates the aggregator for the given rolling window.
func NewLiveStats(bus *Bus, window time.Duration) *LiveStats {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LiveStats{
		bus:      bus,
		window:   window,
		total:    newWindowCounter(window, 10),
		byType:   make(map[string]*windowCounter),
		sessions: make(map[string]time.Time),
		ready:    make(chan struct{}),
	}
}

// Serve consumes the accepted-beacon topic until the context is canceled.
// It implements suture.Service.
func (ls *LiveStats) Serve(ctx context.Context) error {
	messages, err := ls.bus.SubscribeAccepted(ctx)
	if err != nil {
		return err
	}
	ls.readyOnce.Do(func() { close(ls.ready) })

	logging.Info().Dur("window", ls.window).Msg("Live stats aggregator started")

	serializer := NewSerializer()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			env, err := serializer.Unmarshal(msg.Payload)
			if err != nil {
				logging.Warn().Err(err).Msg("Dropping malformed live-stats message")
				msg.Ack()
				continue
			}
			ls.observe(env)
			msg.Ack()
		}
	}
}

// Ready is closed once the subscription is established. Callers that
// publish immediately after starting the aggregator can wait on it.
func (ls *LiveStats) Ready() <-chan struct{} {
	return ls.ready
}

func (ls *LiveStats) observe(env *BeaconEnvelope) {
	if env.IsInternal {
		return
	}

	ls.total.Increment()
	ls.counterFor(env.Type).Increment()

	ls.sessionsMu.Lock()
	ls.sessions[env.SessionID] = env.CreatedAt
	ls.sessionsMu.Unlock()
}

func (ls *LiveStats) counterFor(eventType string) *windowCounter {
	ls.typesMu.Lock()
	defer ls.typesMu.Unlock()
	c, ok := ls.byType[eventType]
	if !ok {
		c = newWindowCounter(ls.window, 10)
		ls.byType[eventType] = c
	}
	return c
}

// Snapshot returns the current live view and updates the gauges.
func (ls *LiveStats) Snapshot() models.LiveStats {
	cutoff := time.Now().Add(-ls.window)

	ls.sessionsMu.Lock()
	for id, seen := range ls.sessions {
		if seen.Before(cutoff) {
			delete(ls.sessions, id)
		}
	}
	active := len(ls.sessions)
	ls.sessionsMu.Unlock()

	byType := make(map[string]int)
	ls.typesMu.Lock()
	for t, c := range ls.byType {
		if n := c.Count(); n > 0 {
			byType[t] = int(n)
		}
	}
	ls.typesMu.Unlock()

	total := int(ls.total.Count())

	metrics.LiveActiveSessions.Set(float64(active))
	metrics.LiveEventsInWindow.Set(float64(total))

	return models.LiveStats{
		ActiveSessions: active,
		EventsInWindow: total,
		ByType:         byType,
		WindowSeconds:  int(ls.window.Seconds()),
		GeneratedAt:    time.Now().UTC(),
	}
}
