// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "sync"

// =============================================================================
// ACTIVITY SIGNALS
// =============================================================================

// SignalType classifies a user-input signal observed by the client.
type SignalType int

const (
	SignalKey SignalType = iota
	SignalMouse
	SignalPaste
	SignalFocus
	SignalResize
)

// String returns the signal type name.
func (s SignalType) String() string {
	switch s {
	case SignalKey:
		return "key"
	case SignalMouse:
		return "mouse"
	case SignalPaste:
		return "paste"
	case SignalFocus:
		return "focus"
	case SignalResize:
		return "resize"
	default:
		return "unknown"
	}
}

// AllSignals is the default subscription set.
func AllSignals() []SignalType {
	return []SignalType{SignalKey, SignalMouse, SignalPaste, SignalFocus, SignalResize}
}

// =============================================================================
// ACTIVITY MONITOR
// =============================================================================

// Handle identifies an activity subscription.
type Handle int

// Monitor fans observed input signals out to attached consumers. The UI loop
// calls Observe for every input event; consumers re-arm their timers
// idempotently, so no explicit coalescing buffer is needed here.
type Monitor struct {
	mu   sync.RWMutex
	next Handle
	subs map[Handle]*activitySub
}

type activitySub struct {
	types map[SignalType]bool
	fn    func(SignalType)
}

// NewMonitor creates an empty activity monitor.
func NewMonitor() *Monitor {
	return &Monitor{subs: make(map[Handle]*activitySub)}
}

// Attach subscribes fn to the given signal types and returns a handle for
// Detach. An empty type set subscribes to all signals.
func (m *Monitor) Attach(types []SignalType, fn func(SignalType)) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &activitySub{fn: fn}
	if len(types) > 0 {
		sub.types = make(map[SignalType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	m.next++
	m.subs[m.next] = sub
	return m.next
}

// Detach removes a subscription. Detaching is total: Observe dispatches under
// the same lock Detach takes exclusively, so once Detach returns no signal
// can reach the callback. Unknown handles are ignored.
func (m *Monitor) Detach(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, h)
}

// Observe reports one input signal to every subscriber of its type.
// Callbacks run synchronously on the caller's goroutine and must not call
// Attach or Detach.
func (m *Monitor) Observe(sig SignalType) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subs {
		if sub.types == nil || sub.types[sig] {
			sub.fn(sig)
		}
	}
}
