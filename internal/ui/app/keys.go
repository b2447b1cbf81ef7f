// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the root Bubble Tea model for the FinGuard TUI.
//
// This file defines the keyboard bindings for the session screens.
package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keyboard bindings outside of text entry.
type KeyMap struct {
	Submit    key.Binding
	NextField key.Binding
	Extend    key.Binding
	LogoutNow key.Binding
	Logout    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Extend: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "stay logged in"),
		),
		LogoutNow: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log out now"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}
