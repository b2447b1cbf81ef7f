// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login_cmd.go - Credential management CLI commands.
//
// Command: login     Sign in and store the credential pair
// Command: logout    Revoke the session server-side and clear local credentials
//
// The password prompt disables terminal echo. Stored credentials live in
// ~/.finguard/tokens.json with 0600 permissions; the TUI and the heartbeat
// read them from there.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/token"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	store, err := tokenstore.NewStore()
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}

	email, password, err := promptCredentials()
	if err != nil {
		return err
	}

	client := newAPIClient(args)
	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()

	pair, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := store.Save(tokenstore.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	if !args.Quiet {
		claims := token.Inspect(pair.AccessToken)
		if claims.Invalid {
			fmt.Println("Signed in.")
		} else {
			fmt.Printf("Signed in. Token valid for %s.\n",
				claims.TimeUntilExpiry(time.Now()).Round(time.Minute))
		}
	}
	return nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	store, err := tokenstore.NewStore()
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}

	access := store.Access()
	if access == "" {
		if !args.Quiet {
			fmt.Println("Not signed in.")
		}
		return nil
	}

	// Server-side revocation is best effort; local credentials are cleared
	// either way.
	client := newAPIClient(args)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Logout(ctx, access); err != nil && args.Verbose {
		fmt.Fprintf(os.Stderr, "Warning: server-side revocation failed: %v\n", err)
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	if !args.Quiet {
		fmt.Println("Signed out.")
	}
	return nil
}

// newAPIClient builds a client honoring the --base-url override.
func newAPIClient(args Args) *api.Client {
	client := api.NewClient()
	if args.BaseURL != "" {
		client = client.WithBaseURL(args.BaseURL)
	}
	return client
}

// promptCredentials reads email and password from the terminal, with echo
// disabled for the password.
func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", &UsageError{Message: "email required"}
	}

	fmt.Print("Password: ")
	var password string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	} else {
		// Piped input (tests, scripts) falls back to a plain line read.
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", "", &UsageError{Message: "password required"}
	}

	return email, password, nil
}
