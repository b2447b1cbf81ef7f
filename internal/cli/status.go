// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - The "status" command: stored credentials, session timing, and
// the most recent session.
package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finguard/finguard-tui/internal/history"
	"github.com/finguard/finguard-tui/internal/settings"
	"github.com/finguard/finguard-tui/internal/token"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	data, err := collectStatus()
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("status", data).Print()
	}

	printStatusText(data)
	return nil
}

// collectStatus gathers the status snapshot from the local stores.
func collectStatus() (StatusData, error) {
	var data StatusData

	store, err := tokenstore.NewStore()
	if err != nil {
		return data, fmt.Errorf("open token store: %w", err)
	}
	data.Token = tokenInfo(store.Access())

	settingsStore, err := settings.NewStore("")
	if err != nil {
		return data, fmt.Errorf("open settings: %w", err)
	}
	cfg, _ := settingsStore.Load()
	data.Settings = settingsInfo(cfg, settingsStore.Path())

	// History is best effort; a missing or locked database must not make
	// status itself fail.
	if path, err := history.DefaultPath(); err == nil {
		if log, err := history.Open(path); err == nil {
			defer log.Close()
			if last, err := log.LastEnded(); err == nil {
				info := sessionInfo(*last)
				data.LastSession = &info
			} else if !errors.Is(err, history.ErrSessionNotFound) {
				return data, err
			}
		}
	}

	return data, nil
}

// tokenInfo summarizes the stored access token without printing it.
func tokenInfo(access string) StatusTokenInfo {
	if access == "" {
		return StatusTokenInfo{Present: false}
	}

	claims := token.Inspect(access)
	now := time.Now()
	info := StatusTokenInfo{
		Present: true,
		Expired: claims.ExpiredAt(now),
	}
	if !claims.Invalid {
		info.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
		info.ExpiresInSec = int64(claims.TimeUntilExpiry(now).Seconds())
	}
	return info
}

func settingsInfo(cfg settings.Config, path string) StatusSettingsInfo {
	return StatusSettingsInfo{
		InactivityTimeout: cfg.InactivityTimeout.String(),
		WarningLeadTime:   cfg.WarningLeadTime.String(),
		HeartbeatInterval: cfg.HeartbeatInterval.String(),
		TokenExpiryBuffer: cfg.TokenExpiryBuffer.String(),
		Path:              path,
	}
}

func sessionInfo(r history.SessionRow) StatusSessionInfo {
	info := StatusSessionInfo{
		ID:         r.ID,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		Duration:   r.Duration(time.Now()).Round(time.Second).String(),
		Warnings:   r.Warnings,
		Extensions: r.Extensions,
	}
	if !r.EndedAt.IsZero() {
		info.EndedAt = r.EndedAt.UTC().Format(time.RFC3339)
		info.EndReason = r.EndReason
	}
	return info
}

// printStatusText renders the status in human-readable form.
func printStatusText(data StatusData) {
	fmt.Println()
	fmt.Println("FinGuard Status")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println()

	switch {
	case !data.Token.Present:
		fmt.Println("Credentials:   not signed in")
	case data.Token.Expired:
		fmt.Println("Credentials:   stored, EXPIRED")
	default:
		fmt.Printf("Credentials:   valid, expires in %s\n",
			(time.Duration(data.Token.ExpiresInSec) * time.Second).String())
	}
	fmt.Println()

	fmt.Println("Session Timing:")
	fmt.Printf("  Inactivity timeout:   %s\n", data.Settings.InactivityTimeout)
	fmt.Printf("  Warning lead time:    %s\n", data.Settings.WarningLeadTime)
	fmt.Printf("  Heartbeat interval:   %s\n", data.Settings.HeartbeatInterval)
	fmt.Printf("  Token expiry buffer:  %s\n", data.Settings.TokenExpiryBuffer)
	fmt.Printf("  Settings file:        %s\n", data.Settings.Path)
	fmt.Println()

	if data.LastSession != nil {
		s := data.LastSession
		fmt.Println("Last Session:")
		fmt.Printf("  ID:        %s\n", s.ID)
		fmt.Printf("  Started:   %s\n", s.StartedAt)
		fmt.Printf("  Ended:     %s (%s)\n", s.EndedAt, s.EndReason)
		fmt.Printf("  Duration:  %s\n", s.Duration)
		fmt.Println()
	}
}
