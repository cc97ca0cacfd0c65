// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package api

import (
	"context"
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// Store is the write surface the collect handler needs.
type Store interface {
	UpsertSession(ctx context.Context, s *models.Session) error
	InsertEvent(ctx context.Context, e *models.Event) error
}

// StatsStore is the read surface the stats handler needs.
type StatsStore interface {
	DailySummaries(ctx context.Context, from, to time.Time) ([]models.DailySummary, error)
	ChannelBreakdown(ctx context.Context, from, to time.Time) ([]models.ChannelCount, error)
	TopPaths(ctx context.Context, from, to time.Time, limit int) ([]models.PathCount, error)
	ScrollDepthDistribution(ctx context.Context, from, to time.Time) ([]models.ScrollBucket, error)
	SectionEngagement(ctx context.Context, from, to time.Time) ([]models.SectionEngagement, error)
}

// Snapshotter serves the live-stats view.
type Snapshotter interface {
	Snapshot() models.LiveStats
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
