// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/clock"
	"github.com/finguard/finguard-tui/internal/session"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

func newTestModel(t *testing.T) (Model, *session.Manager, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	tokens, err := tokenstore.NewStoreWithPath(filepath.Join(t.TempDir(), "tokens.json"))
	if err != nil {
		t.Fatal(err)
	}
	// A token expiring well past every timer in these tests keeps the
	// heartbeat quiet while the fake clock advances.
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_1",
		"exp": clk.Now().Add(24 * time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(session.Options{
		Clock:       clk,
		TokenSource: func() string { return tok },
	})
	m := New(Deps{
		Manager: mgr,
		Client:  api.NewClient(),
		Tokens:  tokens,
	})
	return m, mgr, clk
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_StartsOnLoginScreen(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Screen() != ScreenLogin {
		t.Errorf("screen = %v, want login", m.Screen())
	}
}

func TestModel_EmptySubmitShowsError(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(keyMsg("enter"))
	m = next.(Model)
	if m.loginErr == "" {
		t.Error("empty credentials must produce a form error")
	}
}

func TestModel_LoginSuccessStartsSession(t *testing.T) {
	m, mgr, _ := newTestModel(t)

	next, _ := m.Update(LoginResultMsg{})
	m = next.(Model)

	if m.Screen() != ScreenHome {
		t.Errorf("screen = %v, want home", m.Screen())
	}
	if mgr.State() != session.StateActive {
		t.Errorf("session state = %v, want active", mgr.State())
	}
}

func TestModel_LoginFailureStaysOnForm(t *testing.T) {
	m, mgr, _ := newTestModel(t)

	next, _ := m.Update(LoginResultMsg{Err: api.ErrAuthFailed})
	m = next.(Model)

	if m.Screen() != ScreenLogin {
		t.Error("failed login must stay on the form")
	}
	if m.loginErr == "" {
		t.Error("failed login must show an error")
	}
	if mgr.State() != session.StateIdle {
		t.Error("failed login must not start a session")
	}
}

func TestModel_HomeKeyCountsAsActivity(t *testing.T) {
	m, mgr, clk := newTestModel(t)
	next, _ := m.Update(LoginResultMsg{})
	m = next.(Model)

	clk.Advance(10 * time.Minute)
	next, _ = m.Update(keyMsg("x"))
	m = next.(Model)

	if got := mgr.Status().LastActivityAt; !got.Equal(clk.Now()) {
		t.Errorf("LastActivityAt = %v, want %v", got, clk.Now())
	}
}

func TestModel_WarningOverlayAffordances(t *testing.T) {
	m, _, _ := newTestModel(t)

	extended, loggedOut := false, false
	next, _ := m.Update(ShowWarningMsg{
		Handle:      1,
		Remaining:   5 * time.Minute,
		OnExtend:    func() { extended = true },
		OnLogoutNow: func() { loggedOut = true },
	})
	m = next.(Model)
	if !m.warning.IsVisible() {
		t.Fatal("warning overlay must be visible")
	}

	next, _ = m.Update(keyMsg("enter"))
	m = next.(Model)
	if !extended {
		t.Error("enter on the warning must call the extend affordance")
	}

	next, _ = m.Update(keyMsg("l"))
	m = next.(Model)
	if !loggedOut {
		t.Error("l on the warning must call the logout affordance")
	}
}

func TestModel_StaleHideIsIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(ShowWarningMsg{Handle: 2, Remaining: time.Minute})
	m = next.(Model)
	next, _ = m.Update(HideWarningMsg{Handle: 1})
	m = next.(Model)
	if !m.warning.IsVisible() {
		t.Error("hide for a stale handle must not take the overlay down")
	}

	next, _ = m.Update(HideWarningMsg{Handle: 2})
	m = next.(Model)
	if m.warning.IsVisible() {
		t.Error("hide for the current handle must take the overlay down")
	}
}

func TestModel_SessionEndedShowsNoticeAndClearsTokens(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.deps.Tokens.Save(tokenstore.Credentials{AccessToken: "acc"})

	next, _ := m.Update(SessionEndedMsg{Reason: session.ReasonTimeout})
	m = next.(Model)

	if !m.ended.IsVisible() {
		t.Error("ended notice must be visible")
	}
	if m.deps.Tokens.Access() != "" {
		t.Error("credentials must be cleared when the session ends")
	}

	// Enter returns to a clean login form.
	next, _ = m.Update(keyMsg("enter"))
	m = next.(Model)
	if m.ended.IsVisible() || m.Screen() != ScreenLogin {
		t.Error("enter on the notice must return to the login form")
	}
}

func TestNotifier_QueuesBeforeBind(t *testing.T) {
	n := NewNotifier()

	// Unbound calls must not panic and must hand out distinct handles.
	h1 := n.ShowWarning(time.Minute, nil, nil)
	h2 := n.ShowWarning(time.Minute, nil, nil)
	if h1 == h2 {
		t.Error("handles must be distinct")
	}
	n.Hide(h1)
	n.ShowEnded(session.ReasonManualLogout)

	n.mu.Lock()
	queued := len(n.pending)
	n.mu.Unlock()
	if queued != 4 {
		t.Errorf("queued = %d, want 4", queued)
	}
}
