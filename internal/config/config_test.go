// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Security.RateLimitReqs != 200 {
		t.Errorf("expected default rate limit 200, got %d", cfg.Security.RateLimitReqs)
	}
	if cfg.Security.RateLimitWindow != 60*time.Second {
		t.Errorf("expected default rate limit window 60s, got %s", cfg.Security.RateLimitWindow)
	}
	if !cfg.Collect.BotFilterEnabled {
		t.Error("expected bot filter enabled by default")
	}
	if cfg.Collect.AdminPathPrefix != "/admin" {
		t.Errorf("expected default admin prefix /admin, got %q", cfg.Collect.AdminPathPrefix)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "invalid port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database path",
		},
		{
			name:    "zero rate limit requests",
			mutate:  func(c *Config) { c.Security.RateLimitReqs = 0 },
			wantErr: "rate limit requests",
		},
		{
			name:    "negative rate limit window",
			mutate:  func(c *Config) { c.Security.RateLimitWindow = -time.Second },
			wantErr: "rate limit window",
		},
		{
			name:    "admin prefix without slash",
			mutate:  func(c *Config) { c.Collect.AdminPathPrefix = "admin" },
			wantErr: "admin path prefix",
		},
		{
			name: "missing salt in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.IPHashSalt = ""
			},
			wantErr: "IP_HASH_SALT",
		},
		{
			name: "salt present in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.IPHashSalt = "s3cret"
			},
		},
		{
			name:    "wildcard origin without flag",
			mutate:  func(c *Config) { c.Security.CORSOrigins = []string{"*"} },
			wantErr: "CORS_ALLOW_WILDCARD",
		},
		{
			name: "wildcard origin with flag",
			mutate: func(c *Config) {
				c.Security.CORSOrigins = []string{"*"}
				c.Security.CORSAllowWildcard = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
	cfg.Server.Environment = "Production"
	if cfg.IsDevelopment() {
		t.Error("production should not be development")
	}
	cfg.Server.Environment = "DEVELOPMENT"
	if !cfg.IsDevelopment() {
		t.Error("case-insensitive match expected")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"http_port", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"IP_HASH_SALT", "security.ip_hash_salt"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"ADMIN_PATH_PREFIX", "collect.admin_path_prefix"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_UNRELATED", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("CORS_ORIGINS", "https://wool.example.com, https://market.example.com")
	t.Setenv("IP_HASH_SALT", "test-salt")
	t.Setenv("CONFIG_PATH", "/nonexistent/lanolin.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("expected port 9191 from env, got %d", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[0] != "https://wool.example.com" {
		t.Errorf("expected trimmed origin, got %q", cfg.Security.CORSOrigins[0])
	}
	if cfg.Security.IPHashSalt != "test-salt" {
		t.Errorf("expected salt from env, got %q", cfg.Security.IPHashSalt)
	}
}

func TestLoadDefaultsWithoutEnvironment(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/lanolin.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default port 8787, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
}
