// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/merinolabs/lanolin/internal/botfilter"
	"github.com/merinolabs/lanolin/internal/config"
	"github.com/merinolabs/lanolin/internal/eventprocessor"
	"github.com/merinolabs/lanolin/internal/ingest"
	"github.com/merinolabs/lanolin/internal/logging"
	"github.com/merinolabs/lanolin/internal/metrics"
	"github.com/merinolabs/lanolin/internal/models"
	"github.com/merinolabs/lanolin/internal/validation"
)

// maxBeaconBody bounds the request body. Real beacons are well under 4KB;
// the headroom covers large meta payloads like js_error stacks.
const maxBeaconBody = 64 * 1024

// CollectHandler implements the beacon ingestion pipeline. The request
// passes through a fixed sequence of gates; order is part of the contract.
// In particular, bot filtering runs before rate limiting so crawler floods
// cannot exhaust an IP's budget, and rate limiting runs before field
// validation so malformed floods are still throttled.
type CollectHandler struct {
	cfg     *config.Config
	store   Store
	bots    *botfilter.Filter
	limiter *httprate.RateLimiter
	ips     *ingest.IPResolver
	bus     *eventprocessor.Bus
	now     func() time.Time
}

// NewCollectHandler wires the ingestion pipeline. bus may be nil, in which
// case live-stats publishing is skipped.
func NewCollectHandler(cfg *config.Config, store Store, bots *botfilter.Filter, bus *eventprocessor.Bus) *CollectHandler {
	return &CollectHandler{
		cfg:     cfg,
		store:   store,
		bots:    bots,
		limiter: httprate.NewRateLimiter(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow),
		ips:     ingest.NewIPResolver(cfg.Security.TrustedProxies),
		bus:     bus,
		now:     time.Now,
	}
}

// collectOK is the success body. Kept minimal; the tracker never reads it.
type collectOK struct {
	Status string `json:"status"`
}

type collectError struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/v1/collect.
func (h *CollectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Preflight requests that the CORS middleware let through.
	if r.Method == http.MethodOptions {
		w.Header().Set("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		metrics.RecordBeacon("rejected")
		return
	}

	if origin := r.Header.Get("Origin"); origin != "" && !h.originAllowed(origin) {
		h.writeError(w, http.StatusForbidden, "origin not allowed")
		metrics.RecordBeacon("rejected")
		return
	}

	var beacon models.Beacon
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBody))
	if err := decoder.Decode(&beacon); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		metrics.RecordBeacon("rejected")
		return
	}

	if h.cfg.Collect.BotFilterEnabled {
		if sig, isBot := h.bots.Match(beacon.UserAgent); isBot {
			logging.Ctx(r.Context()).Debug().Str("signature", sig).Msg("Beacon suppressed as bot")
			metrics.RecordBeacon("bot")
			metrics.BotsFiltered.Inc()
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	clientIP := h.ips.ClientIP(r)
	if !h.cfg.Security.RateLimitDisabled {
		if h.limiter.OnLimit(w, r, clientIP) {
			h.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			metrics.RecordBeacon("rate_limited")
			metrics.RateLimitHits.Inc()
			return
		}
	}

	beacon.Truncate()
	if verr := validation.ValidateStruct(&beacon); verr != nil {
		h.writeError(w, http.StatusBadRequest, verr.Error())
		metrics.RecordBeacon("rejected")
		return
	}
	eventType := models.EventType(beacon.Type)
	if !eventType.IsValid() {
		h.writeError(w, http.StatusBadRequest, "unknown event type")
		metrics.RecordBeacon("rejected")
		return
	}

	now := h.now().UTC()
	utm := beacon.UTMOrEmpty()
	geo := ingest.GeoFromHeaders(r.Header)
	isInternal := ingest.IsInternalTraffic(
		beacon.Path, clientIP, utm.Source,
		h.cfg.Collect.AdminPathPrefix, h.cfg.Collect.InternalUTMSource,
	)

	session := &models.Session{
		SessionID:  beacon.SessionID,
		UserAgent:  beacon.UserAgent,
		Language:   beacon.Language,
		Timezone:   beacon.Timezone,
		IPHash:     ingest.HashIP(clientIP, h.cfg.Security.IPHashSalt, now),
		Country:    geo.Country,
		Region:     geo.Region,
		City:       geo.City,
		IsInternal: isInternal,
		FirstSeen:  now,
		LastSeen:   now,
	}

	start := time.Now()
	err := h.store.UpsertSession(r.Context(), session)
	metrics.RecordDBWrite("sessions", time.Since(start), err)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("session_id", beacon.SessionID).Msg("Session upsert failed")
		h.writeError(w, http.StatusInternalServerError, "persistence failure")
		metrics.RecordBeacon("failed")
		return
	}

	event := &models.Event{
		SessionID:   beacon.SessionID,
		Type:        eventType,
		Path:        beacon.Path,
		PageTitle:   beacon.PageTitle,
		Referrer:    beacon.Referrer,
		UTMSource:   utm.Source,
		UTMMedium:   utm.Medium,
		UTMCampaign: utm.Campaign,
		UTMTerm:     utm.Term,
		UTMContent:  utm.Content,
		Channel:     ingest.DeriveChannel(beacon.Referrer, utm),
		ScreenW:     beacon.ScreenW,
		ScreenH:     beacon.ScreenH,
		DurationMS:  durationFromMeta(beacon.Meta),
		Meta:        marshalMeta(beacon.Meta),
		CreatedAt:   now,
	}

	start = time.Now()
	err = h.store.InsertEvent(r.Context(), event)
	metrics.RecordDBWrite("events", time.Since(start), err)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("session_id", beacon.SessionID).Msg("Event insert failed")
		h.writeError(w, http.StatusInternalServerError, "persistence failure")
		metrics.RecordBeacon("failed")
		return
	}

	metrics.RecordAcceptedBeacon(string(eventType))
	h.publishAccepted(r, event, isInternal)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(collectOK{Status: "ok"}); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode collect response")
	}
}

// publishAccepted feeds the live-stats aggregator. The event is already
// persisted; a publish failure only dims the live view, so it is logged
// and swallowed.
func (h *CollectHandler) publishAccepted(r *http.Request, e *models.Event, isInternal bool) {
	if h.bus == nil {
		return
	}
	err := h.bus.PublishAccepted(&eventprocessor.BeaconEnvelope{
		EventID:    e.ID,
		SessionID:  e.SessionID,
		Type:       string(e.Type),
		Path:       e.Path,
		Channel:    string(e.Channel),
		IsInternal: isInternal,
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Live-stats publish failed")
	}
}

// originAllowed checks the Origin header against the allow-list. The
// wildcard entry only counts when explicitly enabled in config.
func (h *CollectHandler) originAllowed(origin string) bool {
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" && h.cfg.Security.CORSAllowWildcard {
			return true
		}
		if allowed == origin {
			return true
		}
	}
	return false
}

func (h *CollectHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(collectError{Error: msg})
}

// durationFromMeta lifts a duration out of the type-specific payload for
// time-bounded events (heartbeat seconds, section visibility).
func durationFromMeta(meta map[string]interface{}) int64 {
	if meta == nil {
		return 0
	}
	for _, key := range []string{"duration_ms", "ms_visible"} {
		if v, ok := meta[key]; ok {
			if f, ok := v.(float64); ok && f >= 0 {
				return int64(f)
			}
		}
	}
	if v, ok := meta["seconds"]; ok {
		if f, ok := v.(float64); ok && f >= 0 {
			return int64(f * 1000)
		}
	}
	return 0
}

func marshalMeta(meta map[string]interface{}) string {
	if len(meta) == 0 {
		return ""
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	if len(data) > models.MaxMetaLen {
		return ""
	}
	return string(data)
}
