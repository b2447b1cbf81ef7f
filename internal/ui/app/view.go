// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/finguard/finguard-tui/internal/ui/components"
	"github.com/finguard/finguard-tui/internal/ui/styles"
	"github.com/finguard/finguard-tui/internal/util"
)

// View renders the active screen with any session overlay on top.
func (m Model) View() string {
	// Terminal states paint over everything else.
	if m.ended.IsVisible() {
		return m.ended.View()
	}
	if m.warning.IsVisible() {
		return m.warning.View()
	}

	switch m.screen {
	case ScreenLogin:
		return m.viewLogin()
	case ScreenHome:
		return m.viewHome()
	}
	return ""
}

// viewLogin renders the credential form.
func (m Model) viewLogin() string {
	width := m.width
	if width == 0 {
		width = 60
	}
	height := m.height
	if height == 0 {
		height = 24
	}

	title := lipgloss.NewStyle().Foreground(styles.Teal).Bold(true).
		Render("FinGuard")

	parts := []string{
		title,
		"",
		styles.LabelStyle.Render("Email"),
		m.email.View(),
		"",
		styles.LabelStyle.Render("Password"),
		m.password.View(),
		"",
	}

	if m.loginErr != "" {
		parts = append(parts, styles.ErrorTextStyle.Render(m.loginErr), "")
	}
	if m.loggingIn {
		parts = append(parts, styles.HintStyle.Render("Signing in..."))
	} else {
		parts = append(parts, styles.HintStyle.Render("[tab] switch field    [enter] sign in    [ctrl+c] quit"))
	}

	form := styles.PanelStyle.Width(46).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}

// viewHome renders the signed-in dashboard with the live session status.
func (m Model) viewHome() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	height := m.height
	if height == 0 {
		height = 24
	}

	st := m.deps.Manager.Status()

	header := styles.HeaderStyle.Width(width).Render("FinGuard — Personal Finance")

	rows := []string{
		styles.LabelStyle.Render("Session      ") + styles.ValueStyle.Render(shortID(st.SessionID)),
		styles.LabelStyle.Render("State        ") + styles.ValueStyle.Render(st.State.String()),
		styles.LabelStyle.Render("Signed in    ") + styles.ValueStyle.Render(st.StartedAt.Format("15:04:05")),
		styles.LabelStyle.Render("Last activity") + " " + styles.ValueStyle.Render(st.LastActivityAt.Format("15:04:05")),
		"",
		styles.LabelStyle.Render("Auto-logout in   ") + styles.ValueStyle.Render(components.FormatCountdown(st.TimeUntilLogout)),
		styles.LabelStyle.Render("Warning shown in ") + styles.ValueStyle.Render(components.FormatCountdown(st.TimeUntilWarning)),
	}

	panel := styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	bar := components.StatusBar{
		State:           st.State.String(),
		TimeUntilLogout: st.TimeUntilLogout,
		Hint:            "ctrl+l log out    q quit",
	}
	bar.SetSize(width)

	body := lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, panel)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, bar.View())
}

// shortID truncates a session ID for display.
func shortID(id string) string {
	if id == "" {
		return "-"
	}
	return util.TruncateRunes(id, 13)
}
