// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finguard/finguard-tui/internal/session"
	"github.com/finguard/finguard-tui/internal/ui/components"
)

// Update routes messages. Every raw input event is also reported to the
// activity monitor; the session manager decides what it means.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.warning.SetSize(msg.Width, msg.Height)
		m.ended.SetSize(msg.Width, msg.Height)
		m.status.SetSize(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.deps.Manager.State().Live() {
			m.deps.Manager.Monitor().Observe(session.SignalMouse)
		}
		return m, nil

	case ShowWarningMsg:
		m.warnHandle = msg.Handle
		m.onExtend = msg.OnExtend
		m.onLogoutNow = msg.OnLogoutNow
		m.warning.Show(msg.Remaining)
		return m, components.CountdownTick()

	case HideWarningMsg:
		if msg.Handle == m.warnHandle {
			m.warning.Hide()
			m.onExtend = nil
			m.onLogoutNow = nil
		}
		return m, nil

	case SessionEndedMsg:
		return m.handleSessionEnded(msg)

	case components.CountdownTickMsg:
		// Keep ticking while anything on screen counts down.
		if m.warning.IsVisible() || m.screen == ScreenHome {
			return m, components.CountdownTick()
		}
		return m, nil

	case LoginResultMsg:
		return m.handleLoginResult(msg)
	}

	return m.updateFocusedField(msg)
}

// handleKey routes one keystroke by screen and overlay state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The terminal logged-out notice swallows everything.
	if m.ended.IsVisible() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.ended.Hide()
			m.resetLoginForm()
			m.screen = ScreenLogin
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	// The warning overlay owns its two affordances; any other key is plain
	// activity and the manager takes the warning down itself.
	if m.warning.IsVisible() {
		switch {
		case key.Matches(msg, m.keys.Extend):
			if m.onExtend != nil {
				m.onExtend()
			}
			return m, nil
		case key.Matches(msg, m.keys.LogoutNow):
			if m.onLogoutNow != nil {
				m.onLogoutNow()
			}
			return m, nil
		}
		m.deps.Manager.Monitor().Observe(session.SignalKey)
		return m, nil
	}

	switch m.screen {
	case ScreenLogin:
		return m.handleLoginKey(msg)
	case ScreenHome:
		return m.handleHomeKey(msg)
	}
	return m, nil
}

// handleLoginKey drives the credential form.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.email.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.email.Blur()
		}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.loggingIn {
			return m, nil
		}
		email := strings.TrimSpace(m.email.Value())
		password := m.password.Value()
		if email == "" || password == "" {
			m.loginErr = "Enter your email and password."
			return m, nil
		}
		m.loginErr = ""
		m.loggingIn = true
		return m, loginCmd(m.deps.Client, m.deps.Tokens, email, password)
	}

	return m.updateFocusedField(msg)
}

// handleHomeKey drives the signed-in dashboard.
func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.deps.Manager.Monitor().Observe(session.SignalKey)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.deps.Manager.Logout()
		return m, nil
	}
	return m, nil
}

// handleLoginResult finishes a login attempt.
func (m Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.Err != nil {
		m.loginErr = loginErrorText(msg.Err)
		m.password.SetValue("")
		return m, nil
	}

	m.screen = ScreenHome
	m.loginErr = ""
	m.password.SetValue("")
	m.deps.Manager.Login()
	if m.deps.Refresher != nil {
		m.deps.Refresher.Start()
	}
	return m, components.CountdownTick()
}

// handleSessionEnded tears the client session down and shows the notice.
func (m Model) handleSessionEnded(msg SessionEndedMsg) (tea.Model, tea.Cmd) {
	m.warning.Hide()
	m.onExtend = nil
	m.onLogoutNow = nil

	if m.deps.Refresher != nil {
		m.deps.Refresher.Stop()
	}

	// Capture the token for best-effort server-side revocation, then drop
	// the local credentials regardless.
	access := m.deps.Tokens.Access()
	m.deps.Tokens.Clear()

	m.ended.Show(msg.Reason.Message())
	return m, revokeCmd(m.deps.Client, access)
}

// updateFocusedField forwards a message to the focused login input.
func (m Model) updateFocusedField(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenLogin {
		return m, nil
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// resetLoginForm clears the form for a fresh login.
func (m *Model) resetLoginForm() {
	m.email.SetValue("")
	m.password.SetValue("")
	m.focus = 0
	m.email.Focus()
	m.password.Blur()
	m.loginErr = ""
	m.loggingIn = false
}
