// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merinolabs/lanolin/internal/models"
)

// InsertEvent persists one enriched event row. Events are immutable; there
// is no update or delete path.
func (db *DB) InsertEvent(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO events (
			id, session_id, type, path, page_title, referrer,
			utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			channel, screen_w, screen_h, duration_ms, meta, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		e.ID, e.SessionID, string(e.Type), e.Path,
		nullable(e.PageTitle), nullable(e.Referrer),
		nullable(e.UTMSource), nullable(e.UTMMedium), nullable(e.UTMCampaign),
		nullable(e.UTMTerm), nullable(e.UTMContent),
		string(e.Channel), e.ScreenW, e.ScreenH, e.DurationMS,
		nullable(e.Meta), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event for session %s: %w", e.SessionID, err)
	}
	return nil
}

// CountEvents returns the total event row count.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
