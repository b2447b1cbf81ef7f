// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the FinGuard TUI.
package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finguard/finguard-tui/internal/ui/styles"
)

// =============================================================================
// SESSION WARNING OVERLAY
// =============================================================================

// SessionWarningOverlay displays the inactivity countdown before forced
// logout. The countdown is anchored to a deadline instant rather than a
// decremented counter, so a delayed tick never drifts the display.
type SessionWarningOverlay struct {
	visible  bool
	deadline time.Time

	width  int
	height int
}

// NewSessionWarningOverlay creates a hidden warning overlay.
func NewSessionWarningOverlay() SessionWarningOverlay {
	return SessionWarningOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *SessionWarningOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay counting down the given remaining time.
func (o *SessionWarningOverlay) Show(remaining time.Duration) {
	o.visible = true
	o.deadline = time.Now().Add(remaining)
}

// Hide removes the overlay.
func (o *SessionWarningOverlay) Hide() {
	o.visible = false
}

// IsVisible returns whether the overlay is currently shown.
func (o SessionWarningOverlay) IsVisible() bool {
	return o.visible
}

// Remaining returns the time left on the countdown.
func (o SessionWarningOverlay) Remaining() time.Duration {
	if !o.visible {
		return 0
	}
	d := time.Until(o.deadline)
	if d < 0 {
		return 0
	}
	return d
}

// View renders the countdown box centered in the window.
func (o SessionWarningOverlay) View() string {
	if !o.visible {
		return ""
	}

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}

	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	titleStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)

	parts := []string{
		titleStyle.Render(styles.StatusIndicators.Warning + " Are you still there?"),
		"",
		msgStyle.Render("You will be logged out in " + timeStyle.Render(FormatCountdown(o.Remaining()))),
		"",
		styles.HintStyle.Align(lipgloss.Center).Render("[enter] stay logged in    [l] log out now"),
	}

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	box := styles.WarningBoxStyle.Width(maxWidth).Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// =============================================================================
// LOGGED-OUT NOTICE
// =============================================================================

// SessionEndedNotice displays the terminal logged-out message.
type SessionEndedNotice struct {
	visible bool
	message string

	width  int
	height int
}

// NewSessionEndedNotice creates a hidden ended notice.
func NewSessionEndedNotice() SessionEndedNotice {
	return SessionEndedNotice{}
}

// SetSize sets the notice dimensions.
func (n *SessionEndedNotice) SetSize(width, height int) {
	n.width = width
	n.height = height
}

// Show displays the notice with the given user-facing message.
func (n *SessionEndedNotice) Show(message string) {
	n.visible = true
	n.message = message
}

// Hide removes the notice.
func (n *SessionEndedNotice) Hide() {
	n.visible = false
}

// IsVisible returns whether the notice is currently shown.
func (n SessionEndedNotice) IsVisible() bool {
	return n.visible
}

// View renders the notice centered in the window.
func (n SessionEndedNotice) View() string {
	if !n.visible {
		return ""
	}

	width := n.width
	if width == 0 {
		width = 60
	}
	height := n.height
	if height == 0 {
		height = 24
	}

	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	titleStyle := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)

	parts := []string{
		titleStyle.Render(styles.StatusIndicators.Error + " Logged Out"),
		"",
		msgStyle.Render(n.message),
		"",
		styles.HintStyle.Align(lipgloss.Center).Render("[enter] back to login    [q] quit"),
	}

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	box := styles.EndedBoxStyle.Width(maxWidth).Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// =============================================================================
// COUNTDOWN TICK
// =============================================================================

// CountdownTickMsg drives the once-per-second countdown redraw while the
// warning overlay is visible.
type CountdownTickMsg struct {
	Time time.Time
}

// CountdownTick returns the command that emits the next CountdownTickMsg.
func CountdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return CountdownTickMsg{Time: t}
	})
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatCountdown formats a duration as M:SS for display.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		return "0:00"
	}
	totalSecs := int(d.Seconds())
	mins := totalSecs / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
