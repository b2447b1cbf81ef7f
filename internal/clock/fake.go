// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clock

import (
	"sort"
	"sync"
	"time"
)

// =============================================================================
// FAKE CLOCK
// =============================================================================

// Fake is a manually advanced Clock for tests. Callbacks fire synchronously
// on the goroutine calling Advance, in deadline order, so session scenarios
// run deterministically without sleeping.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

// NewFake creates a fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc schedules fn at now+d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{clock: f, when: f.now.Add(d), seq: f.seq, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

// TickFunc schedules fn every d. Implemented as a self-rescheduling timer.
func (f *Fake) TickFunc(d time.Duration, fn func()) Ticker {
	tk := &fakeTicker{}
	var schedule func()
	schedule = func() {
		tk.mu.Lock()
		if tk.stopped {
			tk.mu.Unlock()
			return
		}
		tk.timer = f.AfterFunc(d, func() {
			fn()
			schedule()
		}).(*fakeTimer)
		tk.mu.Unlock()
	}
	schedule()
	return tk
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls inside the window. Timers armed by fired callbacks are honored when
// their deadline is still within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		t := f.popDue(target)
		if t == nil {
			break
		}
		f.mu.Lock()
		if t.when.After(f.now) {
			f.now = t.when
		}
		f.mu.Unlock()
		runGuarded(t.fn)
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

// popDue removes and returns the earliest pending timer at or before target.
func (f *Fake) popDue(target time.Time) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	sort.SliceStable(f.pending, func(i, j int) bool {
		if f.pending[i].when.Equal(f.pending[j].when) {
			return f.pending[i].seq < f.pending[j].seq
		}
		return f.pending[i].when.Before(f.pending[j].when)
	})

	for i, t := range f.pending {
		if !t.when.After(target) {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return t
		}
	}
	return nil
}

// PendingCount reports how many timers are currently armed. Used by tests to
// assert that at most one timer of each kind survives a re-arm.
func (f *Fake) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

type fakeTimer struct {
	clock *Fake
	when  time.Time
	seq   int
	fn    func()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	for i, p := range t.clock.pending {
		if p == t {
			t.clock.pending = append(t.clock.pending[:i], t.clock.pending[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTicker struct {
	mu      sync.Mutex
	timer   *fakeTimer
	stopped bool
}

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
