// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package metrics provides Prometheus instrumentation for the collect
// pipeline, database writes, and the live-stats aggregator.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collect pipeline metrics
	BeaconsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanolin_beacons_total",
			Help: "Total beacons received by terminal outcome",
		},
		[]string{"outcome"}, // accepted, bot, rate_limited, rejected, failed
	)

	BeaconsByType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanolin_beacons_by_type_total",
			Help: "Total accepted beacons by event type",
		},
		[]string{"type"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lanolin_rate_limit_hits_total",
			Help: "Total requests rejected by the per-IP rate limiter",
		},
	)

	BotsFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lanolin_bots_filtered_total",
			Help: "Total beacons suppressed by the bot filter",
		},
	)

	// Database metrics
	DBWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lanolin_db_write_duration_seconds",
			Help:    "Duration of session and event writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	DBWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanolin_db_write_errors_total",
			Help: "Total failed session and event writes",
		},
		[]string{"table"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lanolin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lanolin_http_active_requests",
			Help: "Number of HTTP requests currently in flight",
		},
	)

	// Live-stats aggregator metrics
	LiveActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lanolin_live_active_sessions",
			Help: "Distinct sessions observed within the live window",
		},
	)

	LiveEventsInWindow = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lanolin_live_events_in_window",
			Help: "Events observed within the live window",
		},
	)
)

// RecordBeacon increments the outcome counter for one collect request.
func RecordBeacon(outcome string) {
	BeaconsTotal.WithLabelValues(outcome).Inc()
}

// RecordAcceptedBeacon increments the per-type counter for one persisted event.
func RecordAcceptedBeacon(eventType string) {
	BeaconsTotal.WithLabelValues("accepted").Inc()
	BeaconsByType.WithLabelValues(eventType).Inc()
}

// RecordDBWrite observes one write's duration and failure state.
func RecordDBWrite(table string, duration time.Duration, err error) {
	DBWriteDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err != nil {
		DBWriteErrors.WithLabelValues(table).Inc()
	}
}

// RecordHTTPRequest observes one completed HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}
