// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package main is the entry point for the Lanolin server.
//
// Lanolin is a self-hosted analytics collector for wool auction market
// reports. Tracked pages post beacons to /api/v1/collect; the server
// validates, enriches, and persists them into DuckDB, and serves
// aggregation views for dashboards.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (env > config file > defaults)
//  2. Database: DuckDB with the sessions/events schema
//  3. Bot filter: user-agent signature matching
//  4. Event bus: in-process Watermill pub/sub feeding the live-stats view
//  5. HTTP server: chi router with collect, stats, health, and metrics
//  6. Supervisor: suture tree running the aggregator and the HTTP server
//
// # Configuration
//
// All settings come from environment variables or config.yaml; see the
// config package. The only value required outside development mode is
// IP_HASH_SALT, the secret mixed into the date-rotated visitor IP hash.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervisor
// stops its services, in-flight requests get the configured timeout to
// complete, then the bus and database are closed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/merinolabs/lanolin/internal/api"
	"github.com/merinolabs/lanolin/internal/botfilter"
	"github.com/merinolabs/lanolin/internal/config"
	"github.com/merinolabs/lanolin/internal/database"
	"github.com/merinolabs/lanolin/internal/eventprocessor"
	"github.com/merinolabs/lanolin/internal/logging"
	"github.com/merinolabs/lanolin/internal/supervisor"
	"github.com/merinolabs/lanolin/internal/supervisor/services"
)

// version is set via -ldflags at release build time.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Int("cors_origins", len(cfg.Security.CORSOrigins)).
		Msg("Starting Lanolin")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	bots := botfilter.New()
	if !cfg.Collect.BotFilterEnabled {
		logging.Warn().Msg("Bot filtering disabled; all user agents will be ingested")
	}

	bus := eventprocessor.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	liveStats := eventprocessor.NewLiveStats(bus, cfg.Collect.LiveWindow)

	router := api.NewRouter(cfg, api.RouterDeps{
		Collect: api.NewCollectHandler(cfg, db, bots, bus),
		Stats:   api.NewStatsHandler(db, liveStats),
		Health:  api.NewHealthHandler(db, version),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(liveStats)
	tree.AddAPIService(services.NewHTTPService(srv, cfg.Server.Timeout))

	errCh := tree.ServeBackground(ctx)
	logging.Info().
		Str("addr", srv.Addr).
		Msg("Supervisor tree started")

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("Supervisor tree terminated")
		}
	}

	// Give the tree a moment to wind down, then report stragglers.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	select {
	case <-errCh:
	case <-shutdownCtx.Done():
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().
				Str("service", fmt.Sprintf("%v", svc.Service)).
				Msg("Service did not stop cleanly")
		}
	}

	logging.Info().Msg("Lanolin stopped")
}
