// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package api

import (
	"net/http"
	"time"
)

// HealthHandler reports process and storage liveness.
type HealthHandler struct {
	pinger  Pinger
	started time.Time
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(pinger Pinger, version string) *HealthHandler {
	return &HealthHandler{pinger: pinger, started: time.Now(), version: version}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version,omitempty"`
}

// Health handles GET /api/v1/health. Returns 503 when storage is down so
// orchestrators can restart or route around the instance.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := healthStatus{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Version:  h.version,
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			status.Database = "unreachable"
			rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status})
			return
		}
	}

	rw.Success(status)
}
