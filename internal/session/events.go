// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/finguard/finguard-tui/internal/settings"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType identifies an outbound session lifecycle event.
type EventType string

const (
	EventSessionStarted  EventType = "session-started"
	EventUserActivity    EventType = "user-activity"
	EventSessionWarning  EventType = "session-warning"
	EventSessionExtended EventType = "session-extended"
	EventSessionEnded    EventType = "session-ended"
	EventSettingsUpdated EventType = "settings-updated"
	EventTokenExpiring   EventType = "token-expiring"
)

// Event is a published lifecycle event. Only the fields relevant to the
// event's type are populated.
type Event struct {
	Type EventType

	// SessionID is the session the event belongs to. Empty for
	// settings-updated outside a live session.
	SessionID string

	// Timestamp is when the event was published.
	Timestamp time.Time

	// StartedAt / EndedAt bound the session for session-started and
	// session-ended.
	StartedAt time.Time
	EndedAt   time.Time

	// Reason is set for session-ended.
	Reason EndReason

	// RemainingSeconds is set for session-warning.
	RemainingSeconds int

	// MinutesLeft is set for token-expiring.
	MinutesLeft int

	// OldConfig / NewConfig are set for settings-updated.
	OldConfig settings.Config
	NewConfig settings.Config
}

// =============================================================================
// EVENT BUS
// =============================================================================

// Bus is a synchronous publish/subscribe channel for session events.
// Handlers run on the publisher's goroutine in subscription order; they must
// not block.
type Bus struct {
	mu   sync.Mutex
	next int
	subs []busSub
}

type busSub struct {
	id    int
	types map[EventType]bool // nil means all types
	fn    func(Event)
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for the given event types (all types when
// none are given). The returned function removes the subscription; after it
// returns, the handler receives no further events.
func (b *Bus) Subscribe(fn func(Event), types ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	sub := busSub{id: b.next, fn: fn}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	b.subs = append(b.subs, sub)

	id := sub.id
	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching subscriber, in subscription
// order, on the calling goroutine.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	matched := make([]func(Event), 0, len(b.subs))
	for _, s := range b.subs {
		if s.types == nil || s.types[ev.Type] {
			matched = append(matched, s.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range matched {
		fn(ev)
	}
}
