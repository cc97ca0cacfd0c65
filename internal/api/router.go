// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merinolabs/lanolin/internal/config"
	"github.com/merinolabs/lanolin/internal/ingest"
	"github.com/merinolabs/lanolin/internal/middleware"
)

// RouterDeps bundles the handlers the router mounts.
type RouterDeps struct {
	Collect *CollectHandler
	Stats   *StatsHandler
	Health  *HealthHandler
}

// NewRouter builds the chi router with all route groups:
//
//	POST /api/v1/collect      beacon ingestion (CORS-enabled)
//	GET  /api/v1/stats/*      aggregation views (rate limited)
//	GET  /api/v1/health       liveness
//	GET  /metrics             Prometheus scrape
func NewRouter(cfg *config.Config, deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// RemoteAddr stays the true connection peer; IP extraction goes
	// through the trusted-proxy-aware resolver instead of a blanket
	// header-rewriting middleware.
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Prometheus)

	ips := ingest.NewIPResolver(cfg.Security.TrustedProxies)

	// The collect endpoint is called cross-origin from tracked pages, so
	// it carries the CORS middleware for preflight handling. The handler
	// enforces the origin allow-list itself and rejects with 403 rather
	// than the silent header omission the middleware would give.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins(cfg),
			AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Handle("/api/v1/collect", deps.Collect)
	})

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(
			func(r *http.Request) (string, error) { return ips.ClientIP(r), nil },
		)))
		r.Get("/api/v1/stats/overview", deps.Stats.Overview)
		r.Get("/api/v1/stats/live", deps.Stats.Live)
	})

	r.Get("/api/v1/health", deps.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// corsOrigins maps the allow-list for the CORS middleware. A permitted
// wildcard collapses to "*"; otherwise the explicit list is used as-is.
func corsOrigins(cfg *config.Config) []string {
	if cfg.WildcardOriginConfigured() && cfg.Security.CORSAllowWildcard {
		return []string{"*"}
	}
	origins := make([]string, 0, len(cfg.Security.CORSOrigins))
	for _, o := range cfg.Security.CORSOrigins {
		if o != "*" {
			origins = append(origins, o)
		}
	}
	return origins
}
