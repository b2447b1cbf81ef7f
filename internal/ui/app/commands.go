// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// LoginResultMsg carries the outcome of a login attempt.
type LoginResultMsg struct {
	Err error
}

// loginCmd exchanges credentials with the backend and persists the pair.
// Session start happens in Update once this message lands, so the state
// machine transitions on the UI thread.
func loginCmd(client *api.Client, tokens *tokenstore.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		pair, err := client.Login(ctx, email, password)
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		if err := tokens.Save(tokenstore.Credentials{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}); err != nil {
			return LoginResultMsg{Err: err}
		}
		return LoginResultMsg{}
	}
}

// revokeCmd revokes the session server-side, best effort. The local session
// is already over by the time this runs.
func revokeCmd(client *api.Client, accessToken string) tea.Cmd {
	return func() tea.Msg {
		if accessToken == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Logout(ctx, accessToken)
		return nil
	}
}

// loginErrorText maps API errors to the short form message.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrAuthFailed):
		return "Invalid email or password."
	case errors.Is(err, api.ErrRateLimited):
		return "Too many attempts. Try again shortly."
	default:
		return "Could not reach FinGuard. Check your connection."
	}
}
