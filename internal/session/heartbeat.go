// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/finguard/finguard-tui/internal/clock"
)

// =============================================================================
// HEARTBEAT LOOP
// =============================================================================

// Heartbeat runs a low-frequency repeating check on its own cadence,
// independent of the inactivity timers. The session manager uses it to
// inspect the bearer token; a user who never stops typing still holds a
// token that can expire.
type Heartbeat struct {
	clk  clock.Clock
	tick func()

	mu     sync.Mutex
	ticker clock.Ticker
}

// NewHeartbeat creates a stopped heartbeat that invokes tick on each beat.
func NewHeartbeat(clk clock.Clock, tick func()) *Heartbeat {
	return &Heartbeat{clk: clk, tick: tick}
}

// Start begins ticking at the given interval. Restarts replace the previous
// cadence.
func (h *Heartbeat) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ticker != nil {
		h.ticker.Stop()
	}
	h.ticker = h.clk.TickFunc(interval, h.tick)
}

// Stop halts ticking. Calling Stop twice, or before Start, is a no-op.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ticker == nil {
		return
	}
	h.ticker.Stop()
	h.ticker = nil
}

// Running reports whether the heartbeat is currently ticking.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticker != nil
}
