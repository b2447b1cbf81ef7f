// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/finguard/finguard-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom line: session state, the auto-logout
// countdown, and key hints.
type StatusBar struct {
	State           string
	TimeUntilLogout time.Duration
	Hint            string

	width int
}

// SetSize sets the bar width.
func (b *StatusBar) SetSize(width int) {
	b.width = width
}

// View renders the bar padded to its width.
func (b StatusBar) View() string {
	indicator := styles.StatusIndicators.Active
	stateStyle := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	switch b.State {
	case "warning":
		indicator = styles.StatusIndicators.Warning
		stateStyle = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	case "ended", "idle":
		indicator = styles.StatusIndicators.Error
		stateStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
	}

	left := stateStyle.Render(indicator + " " + b.State)
	if b.TimeUntilLogout > 0 {
		left += styles.StatusBarStyle.Render(" auto-logout in " + FormatCountdown(b.TimeUntilLogout))
	}

	right := styles.HintStyle.Render(b.Hint)

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
