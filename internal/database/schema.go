// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates the sessions and events tables plus their indexes.
// All columns are defined up front; there is no migration machinery.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id  VARCHAR PRIMARY KEY,
			user_agent  VARCHAR,
			language    VARCHAR,
			timezone    VARCHAR,
			ip_hash     VARCHAR,
			country     VARCHAR,
			region      VARCHAR,
			city        VARCHAR,
			is_internal BOOLEAN NOT NULL DEFAULT FALSE,
			first_seen  TIMESTAMP NOT NULL,
			last_seen   TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id           VARCHAR PRIMARY KEY,
			session_id   VARCHAR NOT NULL,
			type         VARCHAR NOT NULL,
			path         VARCHAR NOT NULL,
			page_title   VARCHAR,
			referrer     VARCHAR,
			utm_source   VARCHAR,
			utm_medium   VARCHAR,
			utm_campaign VARCHAR,
			utm_term     VARCHAR,
			utm_content  VARCHAR,
			channel      VARCHAR NOT NULL,
			screen_w     INTEGER,
			screen_h     INTEGER,
			duration_ms  BIGINT,
			meta         VARCHAR,
			created_at   TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_session ON events (session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_created ON events (type, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_path ON events (path)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions (last_seen)`,
	}

	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}
