// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package config provides layered configuration for Lanolin via Koanf v2.
//
// Precedence (highest wins): environment variables > config file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Collect  CollectConfig  `koanf:"collect"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// SecurityConfig holds boundary-protection settings for the collect endpoint.
type SecurityConfig struct {
	// CORSOrigins is the origin allow-list for the collect endpoint.
	// Requests with an Origin header not on this list are rejected with 403.
	CORSOrigins []string `koanf:"cors_origins"`

	// CORSAllowWildcard permits a "*" entry in CORSOrigins. Off by default:
	// a wildcard next to explicit origins is almost always a development
	// leftover, so it must be opted into deliberately.
	CORSAllowWildcard bool `koanf:"cors_allow_wildcard"`

	// TrustedProxies lists proxies whose forwarding headers are honored.
	// Empty means forwarding headers are honored from any upstream, which
	// is only safe when the service is not directly reachable.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// IPHashSalt is the operator secret mixed into the date-rotated IP hash.
	// Rotating it invalidates all historical hashes.
	IPHashSalt string `koanf:"ip_hash_salt"`

	// RateLimitReqs / RateLimitWindow bound beacons per client IP.
	// The counter is in-memory and therefore per-process; acceptable for
	// analytics abuse prevention, not a global guarantee.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// CollectConfig holds ingestion-pipeline settings.
type CollectConfig struct {
	// AdminPathPrefix marks events from administrative pages as internal.
	AdminPathPrefix string `koanf:"admin_path_prefix"`

	// InternalUTMSource marks beacons carrying this utm_source as internal.
	InternalUTMSource string `koanf:"internal_utm_source"`

	// BotFilterEnabled toggles the user-agent signature filter.
	BotFilterEnabled bool `koanf:"bot_filter_enabled"`

	// LiveWindow is the rolling window for the live-stats aggregator.
	LiveWindow time.Duration `koanf:"live_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// WildcardOriginConfigured reports whether the allow-list contains a "*"
// entry, regardless of whether the wildcard flag permits it.
func (c *Config) WildcardOriginConfigured() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Validate checks the configuration for invalid or unsafe values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("rate limit requests must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.Security.RateLimitWindow)
	}
	if c.Collect.AdminPathPrefix != "" && !strings.HasPrefix(c.Collect.AdminPathPrefix, "/") {
		return fmt.Errorf("admin path prefix must start with /, got %q", c.Collect.AdminPathPrefix)
	}

	// The salt is what keeps IP hashes one-way; refuse to run without one
	// outside development.
	if c.Security.IPHashSalt == "" && !c.IsDevelopment() {
		return fmt.Errorf("IP_HASH_SALT is required in %s mode", c.Server.Environment)
	}

	if c.WildcardOriginConfigured() && !c.Security.CORSAllowWildcard {
		return fmt.Errorf("CORS_ORIGINS contains a wildcard entry; set CORS_ALLOW_WILDCARD=true to permit it")
	}

	return nil
}
