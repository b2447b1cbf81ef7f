// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"
)

func TestMonitor_AttachAll(t *testing.T) {
	m := NewMonitor()

	var got []SignalType
	m.Attach(nil, func(s SignalType) { got = append(got, s) })

	for _, s := range AllSignals() {
		m.Observe(s)
	}

	if len(got) != len(AllSignals()) {
		t.Fatalf("expected %d signals, got %d", len(AllSignals()), len(got))
	}
}

func TestMonitor_TypeFilter(t *testing.T) {
	m := NewMonitor()

	count := 0
	m.Attach([]SignalType{SignalKey, SignalPaste}, func(SignalType) { count++ })

	m.Observe(SignalKey)
	m.Observe(SignalMouse)
	m.Observe(SignalResize)
	m.Observe(SignalPaste)

	if count != 2 {
		t.Errorf("expected 2 matched signals, got %d", count)
	}
}

func TestMonitor_DetachIsTotal(t *testing.T) {
	m := NewMonitor()

	count := 0
	h := m.Attach(nil, func(SignalType) { count++ })

	m.Observe(SignalKey)
	m.Detach(h)
	m.Observe(SignalKey)
	m.Observe(SignalMouse)

	if count != 1 {
		t.Errorf("signal reached callback after Detach: count=%d", count)
	}

	// Detaching an unknown or already-detached handle is ignored.
	m.Detach(h)
	m.Detach(Handle(999))
}

func TestMonitor_MultipleSubscribers(t *testing.T) {
	m := NewMonitor()

	a, b := 0, 0
	m.Attach([]SignalType{SignalKey}, func(SignalType) { a++ })
	hb := m.Attach(nil, func(SignalType) { b++ })

	m.Observe(SignalKey)
	m.Observe(SignalMouse)

	if a != 1 || b != 2 {
		t.Errorf("fan-out wrong: a=%d b=%d", a, b)
	}

	m.Detach(hb)
	m.Observe(SignalKey)
	if a != 2 || b != 2 {
		t.Errorf("detach removed the wrong subscriber: a=%d b=%d", a, b)
	}
}

func TestMonitor_ConcurrentObserve(t *testing.T) {
	m := NewMonitor()

	var mu sync.Mutex
	count := 0
	m.Attach(nil, func(SignalType) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Observe(SignalKey)
			}
		}()
	}
	wg.Wait()

	if count != 800 {
		t.Errorf("expected 800 dispatches, got %d", count)
	}
}

func TestSignalType_String(t *testing.T) {
	if SignalKey.String() != "key" || SignalResize.String() != "resize" {
		t.Error("signal names wrong")
	}
	if SignalType(99).String() != "unknown" {
		t.Error("out-of-range signal must stringify as unknown")
	}
}
