// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokenstore persists the FinGuard credential pair on disk.
//
// Tokens are the only secret the client holds, so the file is written 0600
// inside a 0700 directory. Reads go through an in-memory copy; Access is safe
// to hand to the session heartbeat as its token source.
package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/finguard/finguard-tui/internal/util"
)

// =============================================================================
// STORED CREDENTIALS TYPE
// =============================================================================

// Credentials is the persisted token pair.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at"`
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// =============================================================================
// TOKEN STORE
// =============================================================================

// Store handles credential persistence.
type Store struct {
	// Path is the credentials file.
	// Default: ~/.finguard/tokens.json
	Path string

	mu    sync.Mutex
	creds Credentials
}

// DefaultPath returns the default credentials file location. FINGUARD_HOME
// overrides the base directory.
func DefaultPath() (string, error) {
	if base := os.Getenv("FINGUARD_HOME"); base != "" {
		return filepath.Join(base, "tokens.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".finguard", "tokens.json"), nil
}

// NewStore creates a store at the default path and loads any persisted
// credentials. A missing file is not an error; the store starts empty.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStoreWithPath(path)
}

// NewStoreWithPath creates a store backed by a custom file.
func NewStoreWithPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	s := &Store{Path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the credentials file into memory. Missing and corrupt files both
// leave the store empty; a corrupt token file is useless either way and the
// user simply logs in again.
func (s *Store) load() error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save persists a new credential pair, replacing any previous one.
func (s *Store) Save(creds Credentials) error {
	if creds.ObtainedAt.IsZero() {
		creds.ObtainedAt = time.Now()
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash.
	// The directory is recreated 0700 if something removed it since NewStore.
	if err := util.AtomicWriteFileWithDir(s.Path, data, 0600, 0700); err != nil {
		return err
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Get returns the held credentials. Empty when not logged in.
func (s *Store) Get() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Access returns the current raw access token, or "" when absent. This is the
// session heartbeat's token source.
func (s *Store) Access() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Refresh returns the current refresh token, or "" when absent.
func (s *Store) Refresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.RefreshToken
}

// Clear removes the credentials from memory and disk. Called on logout and on
// session end.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()

	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
