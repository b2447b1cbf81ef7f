// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists the session timing configuration.
//
// Settings live in a flat TOML file (default ~/.finguard/session.toml) whose
// fields are durations in milliseconds. Absent keys fall back to documented
// defaults; an update that violates the warning/timeout ordering invariant is
// rejected and the previous configuration is retained.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/finguard/finguard-tui/internal/util"
)

// Default session timing values, matching the backend's documented defaults.
const (
	DefaultInactivityTimeout = 30 * time.Minute
	DefaultWarningLeadTime   = 5 * time.Minute
	DefaultHeartbeatInterval = 5 * time.Minute
	DefaultTokenExpiryBuffer = 5 * time.Minute
)

var (
	ErrWarningNotBeforeTimeout = errors.New("warning lead time must be shorter than inactivity timeout")
	ErrNonPositiveDuration     = errors.New("session durations must be positive")
)

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the four session timing durations.
type Config struct {
	// InactivityTimeout is how long without user input before forced logout.
	InactivityTimeout time.Duration

	// WarningLeadTime is how long before the timeout the warning is shown.
	// Invariant: WarningLeadTime < InactivityTimeout.
	WarningLeadTime time.Duration

	// HeartbeatInterval is the cadence of the token validity check.
	HeartbeatInterval time.Duration

	// TokenExpiryBuffer is how close to token expiry the token-expiring
	// advisory fires.
	TokenExpiryBuffer time.Duration
}

// DefaultConfig returns the built-in session timing defaults.
func DefaultConfig() Config {
	return Config{
		InactivityTimeout: DefaultInactivityTimeout,
		WarningLeadTime:   DefaultWarningLeadTime,
		HeartbeatInterval: DefaultHeartbeatInterval,
		TokenExpiryBuffer: DefaultTokenExpiryBuffer,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.InactivityTimeout <= 0 || c.WarningLeadTime <= 0 ||
		c.HeartbeatInterval <= 0 || c.TokenExpiryBuffer <= 0 {
		return ErrNonPositiveDuration
	}
	if c.WarningLeadTime >= c.InactivityTimeout {
		return fmt.Errorf("%w: warning=%v timeout=%v",
			ErrWarningNotBeforeTimeout, c.WarningLeadTime, c.InactivityTimeout)
	}
	return nil
}

// Update is a partial configuration change. Nil fields keep their current
// value.
type Update struct {
	InactivityTimeout *time.Duration
	WarningLeadTime   *time.Duration
	HeartbeatInterval *time.Duration
	TokenExpiryBuffer *time.Duration
}

// applied merges the update over a base config.
func (u Update) applied(base Config) Config {
	if u.InactivityTimeout != nil {
		base.InactivityTimeout = *u.InactivityTimeout
	}
	if u.WarningLeadTime != nil {
		base.WarningLeadTime = *u.WarningLeadTime
	}
	if u.HeartbeatInterval != nil {
		base.HeartbeatInterval = *u.HeartbeatInterval
	}
	if u.TokenExpiryBuffer != nil {
		base.TokenExpiryBuffer = *u.TokenExpiryBuffer
	}
	return base
}

// =============================================================================
// FILE FORMAT
// =============================================================================

// fileConfig is the on-disk shape: millisecond integers, all optional.
type fileConfig struct {
	InactivityTimeoutMS *int64 `toml:"inactivity_timeout_ms"`
	WarningLeadTimeMS   *int64 `toml:"warning_lead_time_ms"`
	HeartbeatIntervalMS *int64 `toml:"heartbeat_interval_ms"`
	TokenExpiryBufferMS *int64 `toml:"token_expiry_buffer_ms"`
}

func (f fileConfig) toConfig() Config {
	cfg := DefaultConfig()
	if f.InactivityTimeoutMS != nil {
		cfg.InactivityTimeout = time.Duration(*f.InactivityTimeoutMS) * time.Millisecond
	}
	if f.WarningLeadTimeMS != nil {
		cfg.WarningLeadTime = time.Duration(*f.WarningLeadTimeMS) * time.Millisecond
	}
	if f.HeartbeatIntervalMS != nil {
		cfg.HeartbeatInterval = time.Duration(*f.HeartbeatIntervalMS) * time.Millisecond
	}
	if f.TokenExpiryBufferMS != nil {
		cfg.TokenExpiryBuffer = time.Duration(*f.TokenExpiryBufferMS) * time.Millisecond
	}
	return cfg
}

func toFileConfig(cfg Config) map[string]int64 {
	return map[string]int64{
		"inactivity_timeout_ms":  cfg.InactivityTimeout.Milliseconds(),
		"warning_lead_time_ms":   cfg.WarningLeadTime.Milliseconds(),
		"heartbeat_interval_ms":  cfg.HeartbeatInterval.Milliseconds(),
		"token_expiry_buffer_ms": cfg.TokenExpiryBuffer.Milliseconds(),
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes the session settings file.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.finguard/session.toml, honoring FINGUARD_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("FINGUARD_HOME"); dir != "" {
		return filepath.Join(dir, "session.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".finguard", "session.toml"), nil
}

// NewStore creates a store backed by the given file path. An empty path uses
// DefaultPath.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file, merging present keys over defaults. A missing
// file yields the defaults. A file whose values violate the invariants is
// ignored in favor of the defaults; corrupt settings must never take the
// session manager down.
func (s *Store) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read session settings: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return DefaultConfig(), fmt.Errorf("parse session settings: %w", err)
	}

	cfg := fc.toConfig()
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid session settings: %w", err)
	}
	return cfg, nil
}

// Save merges the partial update over the current file contents, validates
// the result, and writes it back atomically. On validation failure the file
// is left untouched and the previous configuration is returned alongside the
// error.
func (s *Store) Save(u Update) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := s.loadLocked()
	next := u.applied(current)
	if err := next.Validate(); err != nil {
		return current, err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(toFileConfig(next)); err != nil {
		return current, fmt.Errorf("encode session settings: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return current, fmt.Errorf("write session settings: %w", err)
	}

	return next, nil
}
