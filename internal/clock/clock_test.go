// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clock

import (
	"testing"
	"time"
)

func fakeStart() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestFake_AfterFunc(t *testing.T) {
	f := NewFake(fakeStart())

	fired := 0
	f.AfterFunc(time.Minute, func() { fired++ })

	f.Advance(59 * time.Second)
	if fired != 0 {
		t.Fatal("timer fired before deadline")
	}

	f.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// Does not fire again
	f.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("fired = %d after extra advance, want 1", fired)
	}
}

func TestFake_Stop(t *testing.T) {
	f := NewFake(fakeStart())

	fired := false
	timer := f.AfterFunc(time.Minute, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should return true")
	}
	if timer.Stop() {
		t.Error("second Stop should return false")
	}

	f.Advance(2 * time.Minute)
	if fired {
		t.Error("stopped timer must not fire")
	}
	if f.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", f.PendingCount())
	}
}

func TestFake_FiringOrder(t *testing.T) {
	f := NewFake(fakeStart())

	var order []string
	f.AfterFunc(2*time.Minute, func() { order = append(order, "b") })
	f.AfterFunc(1*time.Minute, func() { order = append(order, "a") })
	f.AfterFunc(3*time.Minute, func() { order = append(order, "c") })

	f.Advance(5 * time.Minute)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("firing order = %v, want [a b c]", order)
	}
}

func TestFake_CallbackArmsTimer(t *testing.T) {
	f := NewFake(fakeStart())

	fired := false
	f.AfterFunc(time.Minute, func() {
		// Re-arm from inside a callback, still within the advance window.
		f.AfterFunc(time.Minute, func() { fired = true })
	})

	f.Advance(2 * time.Minute)
	if !fired {
		t.Error("timer armed by a callback should fire within the same advance")
	}
}

func TestFake_TickFunc(t *testing.T) {
	f := NewFake(fakeStart())

	ticks := 0
	ticker := f.TickFunc(time.Minute, func() { ticks++ })

	f.Advance(3*time.Minute + 30*time.Second)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}

	ticker.Stop()
	ticker.Stop() // idempotent

	f.Advance(10 * time.Minute)
	if ticks != 3 {
		t.Errorf("ticks after Stop = %d, want 3", ticks)
	}
}

func TestFake_PanicRecovered(t *testing.T) {
	f := NewFake(fakeStart())

	after := false
	f.AfterFunc(time.Second, func() { panic("boom") })
	f.AfterFunc(2*time.Second, func() { after = true })

	f.Advance(3 * time.Second)
	if !after {
		t.Error("a panicking callback must not stop other armed timers")
	}
}

func TestSystem_AfterFunc(t *testing.T) {
	c := System()

	done := make(chan struct{})
	c.AfterFunc(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system timer did not fire")
	}
}

func TestSystem_TickerStop(t *testing.T) {
	c := System()

	ch := make(chan struct{}, 16)
	ticker := c.TickFunc(5*time.Millisecond, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	<-ch
	ticker.Stop()
	ticker.Stop() // no panic on double stop
}
