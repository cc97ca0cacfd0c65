// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/merinolabs/lanolin/internal/models"
)

// Aggregation queries exclude internal traffic by joining against the
// session flag. Events from sessions that later turn internal are excluded
// retroactively, which is the desired behavior for operator traffic.

// DailySummaries returns per-day traffic numbers for the given range.
func (db *DB) DailySummaries(ctx context.Context, from, to time.Time) ([]models.DailySummary, error) {
	query := `
		SELECT
			date_trunc('day', e.created_at) AS day,
			COUNT(DISTINCT e.session_id) AS sessions,
			COUNT(*) FILTER (WHERE e.type = 'pageview') AS pageviews,
			COUNT(*) AS events,
			COUNT(*) FILTER (WHERE e.type = 'view_report') AS report_views,
			COUNT(*) FILTER (WHERE e.type = 'download_report') AS report_downloads,
			COUNT(*) FILTER (WHERE e.type = 'bid_click') AS bid_clicks
		FROM events e
		JOIN sessions s ON s.session_id = e.session_id
		WHERE NOT s.is_internal
		  AND e.created_at >= ? AND e.created_at < ?
		GROUP BY 1
		ORDER BY 1`

	rows, err := db.conn.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily summary query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.DailySummary
	for rows.Next() {
		var d models.DailySummary
		if err := rows.Scan(&d.Day, &d.Sessions, &d.Pageviews, &d.Events,
			&d.ReportViews, &d.ReportDownloads, &d.BidClicks); err != nil {
			return nil, fmt.Errorf("daily summary scan failed: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ChannelBreakdown returns session counts per derived traffic channel.
// A session is attributed to the channel of its first event in range.
func (db *DB) ChannelBreakdown(ctx context.Context, from, to time.Time) ([]models.ChannelCount, error) {
	query := `
		WITH first_events AS (
			SELECT e.session_id, e.channel,
			       ROW_NUMBER() OVER (PARTITION BY e.session_id ORDER BY e.created_at) AS rn
			FROM events e
			JOIN sessions s ON s.session_id = e.session_id
			WHERE NOT s.is_internal
			  AND e.created_at >= ? AND e.created_at < ?
		)
		SELECT channel, COUNT(*) AS sessions
		FROM first_events
		WHERE rn = 1
		GROUP BY channel
		ORDER BY sessions DESC`

	rows, err := db.conn.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("channel breakdown query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.ChannelCount
	for rows.Next() {
		var c models.ChannelCount
		if err := rows.Scan(&c.Channel, &c.Sessions); err != nil {
			return nil, fmt.Errorf("channel breakdown scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TopPaths returns the most viewed paths in the range.
func (db *DB) TopPaths(ctx context.Context, from, to time.Time, limit int) ([]models.PathCount, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT e.path, COUNT(*) AS pageviews
		FROM events e
		JOIN sessions s ON s.session_id = e.session_id
		WHERE NOT s.is_internal
		  AND e.type = 'pageview'
		  AND e.created_at >= ? AND e.created_at < ?
		GROUP BY e.path
		ORDER BY pageviews DESC, e.path
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top paths query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.PathCount
	for rows.Next() {
		var p models.PathCount
		if err := rows.Scan(&p.Path, &p.Pageviews); err != nil {
			return nil, fmt.Errorf("top paths scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ScrollDepthDistribution returns how many scroll_depth events reached
// each milestone. Milestone percent is carried in the event meta payload.
func (db *DB) ScrollDepthDistribution(ctx context.Context, from, to time.Time) ([]models.ScrollBucket, error) {
	query := `
		SELECT
			CAST(json_extract(e.meta, '$.percent') AS INTEGER) AS percent,
			COUNT(*) AS cnt
		FROM events e
		JOIN sessions s ON s.session_id = e.session_id
		WHERE NOT s.is_internal
		  AND e.type = 'scroll_depth'
		  AND e.meta IS NOT NULL
		  AND e.created_at >= ? AND e.created_at < ?
		GROUP BY 1
		ORDER BY 1`

	rows, err := db.conn.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("scroll depth query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.ScrollBucket
	for rows.Next() {
		var b models.ScrollBucket
		if err := rows.Scan(&b.Percent, &b.Count); err != nil {
			return nil, fmt.Errorf("scroll depth scan failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SectionEngagement returns cumulative visibility per tracked section.
// Section id and visible time are carried in the event meta payload.
func (db *DB) SectionEngagement(ctx context.Context, from, to time.Time) ([]models.SectionEngagement, error) {
	query := `
		SELECT
			CAST(json_extract_string(e.meta, '$.section_id') AS VARCHAR) AS section_id,
			COUNT(*) AS views,
			COALESCE(SUM(CAST(json_extract(e.meta, '$.ms_visible') AS BIGINT)), 0) AS total_ms,
			COALESCE(AVG(CAST(json_extract(e.meta, '$.ms_visible') AS DOUBLE)), 0) AS avg_ms
		FROM events e
		JOIN sessions s ON s.session_id = e.session_id
		WHERE NOT s.is_internal
		  AND e.type = 'section_view'
		  AND e.meta IS NOT NULL
		  AND e.created_at >= ? AND e.created_at < ?
		GROUP BY 1
		HAVING section_id IS NOT NULL
		ORDER BY total_ms DESC`

	rows, err := db.conn.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("section engagement query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.SectionEngagement
	for rows.Next() {
		var se models.SectionEngagement
		if err := rows.Scan(&se.SectionID, &se.Views, &se.TotalVisibleMS, &se.AvgVisibleMS); err != nil {
			return nil, fmt.Errorf("section engagement scan failed: %w", err)
		}
		out = append(out, se)
	}
	return out, rows.Err()
}
