// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clock centralizes timer scheduling for the session core.
//
// Every delayed callback in the session lifecycle goes through a Clock so
// that cancellation discipline lives in one place and the whole timer set
// can be driven deterministically from tests with a Fake clock.
package clock

import (
	"log"
	"sync"
	"time"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Timer is a single armed delayed callback.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired or was
	// already stopped. Safe to call more than once.
	Stop() bool
}

// Ticker delivers a repeating callback until stopped.
type Ticker interface {
	// Stop cancels the ticker. Safe to call more than once.
	Stop()
}

// Clock arms, re-arms, and cancels delayed callbacks.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// AfterFunc schedules fn to run once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// TickFunc schedules fn to run every d until the ticker is stopped.
	TickFunc(d time.Duration, fn func()) Ticker
}

// =============================================================================
// SYSTEM CLOCK
// =============================================================================

// System returns the wall clock backed by the time package.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { runGuarded(fn) })
}

func (systemClock) TickFunc(d time.Duration, fn func()) Ticker {
	t := &systemTicker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				runGuarded(fn)
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type systemTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *systemTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// runGuarded absorbs panics from scheduled callbacks. A misbehaving callback
// is logged and must not take down the process or other armed timers.
func runGuarded(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("CLOCK_CALLBACK_PANIC: recovered: %v", r)
		}
	}()
	fn()
}
