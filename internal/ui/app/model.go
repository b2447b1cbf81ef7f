// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the root Bubble Tea model for the FinGuard TUI.
package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/session"
	"github.com/finguard/finguard-tui/internal/settings"
	"github.com/finguard/finguard-tui/internal/tokenstore"
	"github.com/finguard/finguard-tui/internal/ui/components"
)

// =============================================================================
// SCREENS
// =============================================================================

// Screen identifies the active view.
type Screen int

const (
	// ScreenLogin is the email/password form.
	ScreenLogin Screen = iota
	// ScreenHome is the signed-in dashboard.
	ScreenHome
)

// =============================================================================
// APP MODEL
// =============================================================================

// Deps are the collaborators the model drives. Everything is constructed in
// the CLI layer and injected, so the model itself stays testable.
type Deps struct {
	Manager   *session.Manager
	Client    *api.Client
	Tokens    *tokenstore.Store
	Refresher *api.Refresher
	Settings  *settings.Store
}

// Model is the root Bubble Tea model.
type Model struct {
	deps Deps
	keys KeyMap

	// State
	screen Screen

	// Dimensions
	width  int
	height int

	// Login form
	email    textinput.Model
	password textinput.Model
	focus    int // 0 = email, 1 = password
	loginErr string
	loggingIn bool

	// Session overlays
	warning     components.SessionWarningOverlay
	ended       components.SessionEndedNotice
	status      components.StatusBar
	warnHandle  session.NotifyHandle
	onExtend    func()
	onLogoutNow func()
}

// New creates the root model.
func New(deps Deps) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return Model{
		deps:     deps,
		keys:     DefaultKeyMap(),
		screen:   ScreenLogin,
		email:    email,
		password: password,
		warning:  components.NewSessionWarningOverlay(),
		ended:    components.NewSessionEndedNotice(),
	}
}

// Init starts the login form cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Screen returns the active screen.
func (m Model) Screen() Screen {
	return m.screen
}
