// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package tracker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SessionStore persists the stable session identifier across runs, the
// embedded equivalent of browser local storage. The identifier is created
// once and reused until the backing file is removed.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by the given file path. An empty
// path falls back to a file under the user cache directory.
func NewSessionStore(path string) *SessionStore {
	if path == "" {
		if cacheDir, err := os.UserCacheDir(); err == nil {
			path = filepath.Join(cacheDir, "lanolin", "session")
		} else {
			path = filepath.Join(os.TempDir(), "lanolin-session")
		}
	}
	return &SessionStore{path: path}
}

// SessionID returns the stored identifier, creating and persisting a new
// one if absent. Persistence failures degrade to an ephemeral identifier;
// tracking must keep working without durable storage.
func (s *SessionStore) SessionID() string {
	if data, err := os.ReadFile(s.path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" && len(id) <= 128 {
			return id
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err == nil {
		_ = os.WriteFile(s.path, []byte(id+"\n"), 0o600)
	}
	return id
}

// Clear removes the stored identifier.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
