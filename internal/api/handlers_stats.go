// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/merinolabs/lanolin/internal/logging"
	"github.com/merinolabs/lanolin/internal/models"
)

// StatsHandler serves the aggregation views.
type StatsHandler struct {
	store StatsStore
	live  Snapshotter
}

// NewStatsHandler creates the stats handler. live may be nil when the
// aggregator is not running; the live endpoint then serves zeros.
func NewStatsHandler(store StatsStore, live Snapshotter) *StatsHandler {
	return &StatsHandler{store: store, live: live}
}

// parseRange reads from/to/days query parameters. Defaults to the last
// 30 days ending now.
func parseRange(r *http.Request) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := r.URL.Query().Get("days"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 && days <= 365 {
			from = now.AddDate(0, 0, -days)
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1) // inclusive end date
		}
	}
	return from, to
}

// Overview handles GET /api/v1/stats/overview.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()
	from, to := parseRange(r)

	daily, err := h.store.DailySummaries(ctx, from, to)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Daily summary query failed")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load stats")
		return
	}
	channels, err := h.store.ChannelBreakdown(ctx, from, to)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Channel breakdown query failed")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load stats")
		return
	}
	paths, err := h.store.TopPaths(ctx, from, to, 20)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Top paths query failed")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load stats")
		return
	}
	scroll, err := h.store.ScrollDepthDistribution(ctx, from, to)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Scroll depth query failed")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load stats")
		return
	}
	sections, err := h.store.SectionEngagement(ctx, from, to)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Section engagement query failed")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load stats")
		return
	}

	rw.Success(models.StatsOverview{
		Daily:       daily,
		Channels:    channels,
		TopPaths:    paths,
		ScrollDepth: scroll,
		Sections:    sections,
	})
}

// Live handles GET /api/v1/stats/live.
func (h *StatsHandler) Live(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.live == nil {
		rw.Success(models.LiveStats{GeneratedAt: time.Now().UTC()})
		return
	}
	rw.Success(h.live.Snapshot())
}
