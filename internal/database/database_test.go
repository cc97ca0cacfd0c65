// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package database

import (
	"context"
	"testing"
	"time"

	"github.com/merinolabs/lanolin/internal/config"
	"github.com/merinolabs/lanolin/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertSessionDoesNotDuplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(2 * time.Hour)

	s := &models.Session{
		SessionID: "abc",
		UserAgent: "Mozilla/5.0",
		Country:   "NZ",
		FirstSeen: first,
		LastSeen:  first,
	}
	if err := db.UpsertSession(ctx, s); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	s.LastSeen = later
	s.City = "Christchurch"
	if err := db.UpsertSession(ctx, s); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	n, err := db.CountSessions(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session row after repeated upserts, got %d", n)
	}

	got, err := db.GetSession(ctx, "abc")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.LastSeen.Equal(later) {
		t.Errorf("last_seen = %v, want %v", got.LastSeen, later)
	}
	if !got.FirstSeen.Equal(first) {
		t.Errorf("first_seen = %v, want %v (must survive upsert)", got.FirstSeen, first)
	}
	if got.City != "Christchurch" {
		t.Errorf("city = %q, want last-write-wins update", got.City)
	}
}

func TestInsertEventAssignsID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedSession(t, db, "s1", false)

	e := &models.Event{
		SessionID: "s1",
		Type:      models.EventPageview,
		Path:      "/2026-04",
		Channel:   models.ChannelDirect,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.InsertEvent(ctx, e); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated event ID")
	}

	n, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func seedSession(t *testing.T, db *DB, id string, internal bool) {
	t.Helper()
	now := time.Now().UTC()
	err := db.UpsertSession(context.Background(), &models.Session{
		SessionID:  id,
		IsInternal: internal,
		FirstSeen:  now,
		LastSeen:   now,
	})
	if err != nil {
		t.Fatalf("seed session %s: %v", id, err)
	}
}

func seedEvent(t *testing.T, db *DB, sessionID string, typ models.EventType, path, meta string, at time.Time) {
	t.Helper()
	err := db.InsertEvent(context.Background(), &models.Event{
		SessionID: sessionID,
		Type:      typ,
		Path:      path,
		Channel:   models.ChannelDirect,
		Meta:      meta,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestDailySummariesExcludeInternal(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	day := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	seedSession(t, db, "visitor", false)
	seedSession(t, db, "operator", true)
	seedEvent(t, db, "visitor", models.EventPageview, "/2026-04", "", day)
	seedEvent(t, db, "visitor", models.EventViewReport, "/2026-04", "", day.Add(time.Minute))
	seedEvent(t, db, "visitor", models.EventBidClick, "/2026-04", "", day.Add(2*time.Minute))
	seedEvent(t, db, "operator", models.EventPageview, "/admin", "", day)

	got, err := db.DailySummaries(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 day, got %d", len(got))
	}
	d := got[0]
	if d.Sessions != 1 {
		t.Errorf("sessions = %d, want 1 (internal excluded)", d.Sessions)
	}
	if d.Pageviews != 1 {
		t.Errorf("pageviews = %d, want 1", d.Pageviews)
	}
	if d.ReportViews != 1 || d.BidClicks != 1 {
		t.Errorf("report_views = %d, bid_clicks = %d, want 1 and 1", d.ReportViews, d.BidClicks)
	}
	if d.Events != 3 {
		t.Errorf("events = %d, want 3", d.Events)
	}
}

func TestChannelBreakdownAttributesFirstEvent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)
	seedSession(t, db, "s1", false)

	// First event Organic, later event Direct; the session counts as Organic.
	err := db.InsertEvent(ctx, &models.Event{
		SessionID: "s1", Type: models.EventPageview, Path: "/a",
		Channel: models.ChannelOrganic, CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = db.InsertEvent(ctx, &models.Event{
		SessionID: "s1", Type: models.EventPageview, Path: "/b",
		Channel: models.ChannelDirect, CreatedAt: at.Add(time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := db.ChannelBreakdown(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 channel, got %+v", got)
	}
	if got[0].Channel != models.ChannelOrganic || got[0].Sessions != 1 {
		t.Errorf("got %+v, want Organic with 1 session", got[0])
	}
}

func TestTopPaths(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 4, 4, 9, 0, 0, 0, time.UTC)
	seedSession(t, db, "s1", false)
	for i := 0; i < 3; i++ {
		seedEvent(t, db, "s1", models.EventPageview, "/2026-04", "", at.Add(time.Duration(i)*time.Minute))
	}
	seedEvent(t, db, "s1", models.EventPageview, "/about", "", at)
	seedEvent(t, db, "s1", models.EventHeartbeat, "/2026-04", "", at)

	got, err := db.TopPaths(ctx, at.Add(-time.Hour), at.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 paths, got %+v", got)
	}
	if got[0].Path != "/2026-04" || got[0].Pageviews != 3 {
		t.Errorf("top path = %+v, want /2026-04 with 3 pageviews", got[0])
	}
}

func TestScrollDepthDistribution(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)
	seedSession(t, db, "s1", false)
	seedEvent(t, db, "s1", models.EventScrollDepth, "/x", `{"percent":25}`, at)
	seedEvent(t, db, "s1", models.EventScrollDepth, "/x", `{"percent":50}`, at)
	seedEvent(t, db, "s1", models.EventScrollDepth, "/y", `{"percent":25}`, at)

	got, err := db.ScrollDepthDistribution(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", got)
	}
	if got[0].Percent != 25 || got[0].Count != 2 {
		t.Errorf("bucket = %+v, want percent 25 count 2", got[0])
	}
	if got[1].Percent != 50 || got[1].Count != 1 {
		t.Errorf("bucket = %+v, want percent 50 count 1", got[1])
	}
}

func TestSectionEngagement(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)
	seedSession(t, db, "s1", false)
	seedEvent(t, db, "s1", models.EventSectionView, "/x", `{"section_id":"price-chart","ms_visible":4000}`, at)
	seedEvent(t, db, "s1", models.EventSectionView, "/x", `{"section_id":"price-chart","ms_visible":6000}`, at)
	seedEvent(t, db, "s1", models.EventSectionView, "/x", `{"section_id":"volume-table","ms_visible":1000}`, at)

	got, err := db.SectionEngagement(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %+v", got)
	}
	if got[0].SectionID != "price-chart" || got[0].Views != 2 || got[0].TotalVisibleMS != 10000 {
		t.Errorf("section = %+v, want price-chart 2 views 10000ms", got[0])
	}
	if got[0].AvgVisibleMS != 5000 {
		t.Errorf("avg = %v, want 5000", got[0].AvgVisibleMS)
	}
}
