// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records the session audit trail in a local SQLite database.
//
// Every lifecycle event published on the session bus lands here: session
// start and end, warnings, extensions, and token advisories. The log answers
// "when was I last logged out, and why" without any server round trip.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/finguard/finguard-tui/internal/session"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrSessionNotFound = errors.New("session not found in history")
	ErrDatabaseError   = errors.New("database error")
)

// Schema is the history database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	ended_at    INTEGER,
	end_reason  TEXT,
	warnings    INTEGER NOT NULL DEFAULT 0,
	extensions  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	type        TEXT NOT NULL,
	at          INTEGER NOT NULL,
	details     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, at);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
`

// =============================================================================
// SESSION HISTORY LOG
// =============================================================================

// Log is the session history store.
type Log struct {
	db *sql.DB

	// MaxSessions bounds retained history (0 = unlimited).
	MaxSessions int
}

// DefaultPath returns the default history database location. FINGUARD_HOME
// overrides the base directory.
func DefaultPath() (string, error) {
	if base := os.Getenv("FINGUARD_HOME"); base != "" {
		return filepath.Join(base, "history.db"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".finguard", "history.db"), nil
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Log{db: db, MaxSessions: 200}, nil
}

// Close releases the database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Attach subscribes the log to a session bus. The returned function
// unsubscribes. User-activity events are deliberately not persisted; one row
// per keystroke would swamp the log with no audit value.
func (l *Log) Attach(bus *session.Bus) func() {
	return bus.Subscribe(l.record,
		session.EventSessionStarted,
		session.EventSessionWarning,
		session.EventSessionExtended,
		session.EventSessionEnded,
		session.EventTokenExpiring,
	)
}

// record writes one bus event. Write failures are logged and swallowed;
// history must never break the session itself.
func (l *Log) record(ev session.Event) {
	switch ev.Type {
	case session.EventSessionStarted:
		l.exec(`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`,
			ev.SessionID, ev.StartedAt.UnixMilli())
		l.prune()

	case session.EventSessionWarning:
		l.exec(`UPDATE sessions SET warnings = warnings + 1 WHERE id = ?`, ev.SessionID)

	case session.EventSessionExtended:
		l.exec(`UPDATE sessions SET extensions = extensions + 1 WHERE id = ?`, ev.SessionID)

	case session.EventSessionEnded:
		l.exec(`UPDATE sessions SET ended_at = ?, end_reason = ? WHERE id = ?`,
			ev.EndedAt.UnixMilli(), string(ev.Reason), ev.SessionID)
	}

	l.exec(`INSERT INTO events (session_id, type, at, details) VALUES (?, ?, ?, ?)`,
		ev.SessionID, string(ev.Type), ev.Timestamp.UnixMilli(), eventDetails(ev))
}

// exec runs one write statement, logging rather than propagating failures.
func (l *Log) exec(query string, args ...any) {
	if _, err := l.db.Exec(query, args...); err != nil {
		log.Printf("HISTORY_WRITE_FAILED | err=%v", err)
	}
}

// eventDetails renders the type-specific payload as a short text column.
func eventDetails(ev session.Event) string {
	switch ev.Type {
	case session.EventSessionWarning:
		return fmt.Sprintf("remaining_seconds=%d", ev.RemainingSeconds)
	case session.EventSessionEnded:
		return "reason=" + string(ev.Reason)
	case session.EventTokenExpiring:
		return fmt.Sprintf("minutes_left=%d", ev.MinutesLeft)
	default:
		return ""
	}
}

// prune drops the oldest sessions (and their events) beyond MaxSessions.
func (l *Log) prune() {
	if l.MaxSessions <= 0 {
		return
	}
	l.exec(`DELETE FROM events WHERE session_id IN (
		SELECT id FROM sessions ORDER BY started_at DESC LIMIT -1 OFFSET ?)`, l.MaxSessions)
	l.exec(`DELETE FROM sessions WHERE id IN (
		SELECT id FROM sessions ORDER BY started_at DESC LIMIT -1 OFFSET ?)`, l.MaxSessions)
}

// =============================================================================
// QUERIES
// =============================================================================

// SessionRow is one row of the session summary listing.
type SessionRow struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is still open
	EndReason  string
	Warnings   int
	Extensions int
}

// Duration returns the session length, or time-so-far for an open session.
func (r SessionRow) Duration(now time.Time) time.Duration {
	if r.EndedAt.IsZero() {
		return now.Sub(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Recent returns the most recent sessions, newest first.
func (l *Log) Recent(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(`
		SELECT id, started_at, ended_at, end_reason, warnings, extensions
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var startedMS int64
		var endedMS sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &startedMS, &endedMS, &reason, &r.Warnings, &r.Extensions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		r.StartedAt = time.UnixMilli(startedMS)
		if endedMS.Valid {
			r.EndedAt = time.UnixMilli(endedMS.Int64)
		}
		if reason.Valid {
			r.EndReason = reason.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EventRow is one recorded lifecycle event.
type EventRow struct {
	SessionID string
	Type      string
	At        time.Time
	Details   string
}

// Events returns the recorded events for one session, oldest first.
func (l *Log) Events(sessionID string) ([]EventRow, error) {
	rows, err := l.db.Query(`
		SELECT session_id, type, at, details
		FROM events WHERE session_id = ? ORDER BY at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var r EventRow
		var atMS int64
		if err := rows.Scan(&r.SessionID, &r.Type, &atMS, &r.Details); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		r.At = time.UnixMilli(atMS)
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrSessionNotFound
	}
	return out, rows.Err()
}

// LastEnded returns the most recently ended session, if any.
func (l *Log) LastEnded() (*SessionRow, error) {
	rows, err := l.Recent(50)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if !r.EndedAt.IsZero() {
			return &r, nil
		}
	}
	return nil, ErrSessionNotFound
}
