// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finguard/finguard-tui/internal/session"
)

// =============================================================================
// NOTIFIER BRIDGE
// =============================================================================

// ShowWarningMsg tells the model to display the inactivity countdown.
type ShowWarningMsg struct {
	Handle      session.NotifyHandle
	Remaining   time.Duration
	OnExtend    func()
	OnLogoutNow func()
}

// HideWarningMsg tells the model to take a displayed warning down.
type HideWarningMsg struct {
	Handle session.NotifyHandle
}

// SessionEndedMsg tells the model the session is over.
type SessionEndedMsg struct {
	Reason session.EndReason
}

// Notifier bridges the session manager's notification surface into the
// Bubble Tea message loop. The manager calls it from timer goroutines;
// Program.Send hands those calls to the model's Update thread.
//
// Calls arriving before Bind are queued, so a session can begin warning
// before the program has fully started.
type Notifier struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	next    session.NotifyHandle
}

// NewNotifier creates an unbound notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Bind connects the notifier to a running program and flushes queued
// notifications.
func (n *Notifier) Bind(p *tea.Program) {
	n.mu.Lock()
	n.send = p.Send
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	for _, msg := range pending {
		p.Send(msg)
	}
}

func (n *Notifier) dispatch(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	if send == nil {
		n.pending = append(n.pending, msg)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	send(msg)
}

// ShowWarning implements session.Notifier.
func (n *Notifier) ShowWarning(remaining time.Duration, onExtend, onLogoutNow func()) session.NotifyHandle {
	n.mu.Lock()
	n.next++
	h := n.next
	n.mu.Unlock()

	n.dispatch(ShowWarningMsg{
		Handle:      h,
		Remaining:   remaining,
		OnExtend:    onExtend,
		OnLogoutNow: onLogoutNow,
	})
	return h
}

// Hide implements session.Notifier.
func (n *Notifier) Hide(h session.NotifyHandle) {
	n.dispatch(HideWarningMsg{Handle: h})
}

// ShowEnded implements session.Notifier.
func (n *Notifier) ShowEnded(reason session.EndReason) {
	n.dispatch(SessionEndedMsg{Reason: reason})
}
