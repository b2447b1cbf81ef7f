// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SHARED COMPONENT STYLES
// =============================================================================

// HeaderStyle renders the top application bar.
var HeaderStyle = lipgloss.NewStyle().
	Foreground(TextInverse).
	Background(TealDeep).
	Bold(true).
	Padding(0, 1)

// StatusBarStyle renders the bottom status line.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(SurfaceDim).
	Padding(0, 1)

// LabelStyle renders form field labels.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// ValueStyle renders form field values and emphasized data.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Bold(true)

// HintStyle renders key hints and footer help text.
var HintStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// ErrorTextStyle renders inline form errors.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// WarningBoxStyle frames the session countdown overlay.
var WarningBoxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.DoubleBorder()).
	BorderForeground(Amber).
	Padding(1, 3).
	Align(lipgloss.Center)

// EndedBoxStyle frames the logged-out notice.
var EndedBoxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.DoubleBorder()).
	BorderForeground(Rose).
	Padding(1, 3).
	Align(lipgloss.Center)

// PanelStyle frames ordinary content panels.
var PanelStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(1, 2)
