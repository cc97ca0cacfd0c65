// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/merinolabs/lanolin/internal/models"
)

// UpsertSession writes or merges the session row keyed by session_id.
// Repeated arrivals refresh last_seen and the enrichment fields with
// last-write-wins semantics; first_seen is preserved from the first insert.
func (db *DB) UpsertSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, user_agent, language, timezone,
			ip_hash, country, region, city, is_internal,
			first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			user_agent  = excluded.user_agent,
			language    = excluded.language,
			timezone    = excluded.timezone,
			ip_hash     = excluded.ip_hash,
			country     = excluded.country,
			region      = excluded.region,
			city        = excluded.city,
			is_internal = excluded.is_internal,
			last_seen   = excluded.last_seen`

	_, err := db.conn.ExecContext(ctx, query,
		s.SessionID, nullable(s.UserAgent), nullable(s.Language), nullable(s.Timezone),
		nullable(s.IPHash), nullable(s.Country), nullable(s.Region), nullable(s.City),
		s.IsInternal, s.FirstSeen, s.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", s.SessionID, err)
	}
	return nil
}

// GetSession fetches one session row, or sql.ErrNoRows.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT session_id, user_agent, language, timezone,
		       ip_hash, country, region, city, is_internal,
		       first_seen, last_seen
		FROM sessions WHERE session_id = ?`

	var (
		s                             models.Session
		userAgent, language, timezone sql.NullString
		ipHash, country, region, city sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &userAgent, &language, &timezone,
		&ipHash, &country, &region, &city, &s.IsInternal,
		&s.FirstSeen, &s.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	s.UserAgent = userAgent.String
	s.Language = language.String
	s.Timezone = timezone.String
	s.IPHash = ipHash.String
	s.Country = country.String
	s.Region = region.String
	s.City = city.String
	return &s, nil
}

// CountSessions returns the total session row count.
func (db *DB) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// nullable maps "" to SQL NULL so optional fields stay NULL in storage.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
