// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package tracker

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/merinolabs/lanolin/internal/logging"
	"github.com/merinolabs/lanolin/internal/models"
)

// sender delivers one beacon. Implementations must never panic; delivery
// is strictly fire-and-forget.
type sender interface {
	send(b *models.Beacon)
}

// httpSender posts beacons to the collect endpoint on background
// goroutines. Sends are paced by a token bucket so a burst of events
// cannot flood the endpoint, and all failures are swallowed after a
// debug log.
type httpSender struct {
	endpoint string
	origin   string
	client   *http.Client
	limiter  *rate.Limiter
}

func newHTTPSender(endpoint, origin string, client *http.Client) *httpSender {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &httpSender{
		endpoint: endpoint,
		origin:   origin,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
	}
}

func (s *httpSender) send(b *models.Beacon) {
	payload, err := json.Marshal(b)
	if err != nil {
		logging.Debug().Err(err).Msg("Tracker beacon marshal failed")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Debug().Interface("panic", r).Msg("Tracker send panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Heartbeats are loss-tolerant by contract and arrive on a fixed
		// cadence, so they drop immediately when the pacer has no token
		// instead of queueing behind interaction events.
		if b.Type == string(models.EventHeartbeat) {
			if !s.limiter.Allow() {
				logging.Debug().Msg("Tracker heartbeat dropped, pacer saturated")
				return
			}
		} else if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
		if err != nil {
			logging.Debug().Err(err).Msg("Tracker request build failed")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		if s.origin != "" {
			req.Header.Set("Origin", s.origin)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			logging.Debug().Err(err).Msg("Tracker send failed")
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
}
