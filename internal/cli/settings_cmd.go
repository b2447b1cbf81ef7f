// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// settings_cmd.go - Session timing settings CLI commands.
//
// Command: settings [subcommand]
//
// Subcommands:
//   show (default)      Show the current session timing
//   get <key>           Show a single value
//   set <key> <dur>     Change a value (Go duration syntax: 25m, 90s)
//   path                Show the settings file location
//
// Keys: inactivity-timeout, warning-lead, heartbeat-interval,
// token-expiry-buffer. A change that would put the warning at or after the
// timeout is rejected and the file is left untouched; the running TUI picks
// changes up through the settings file watcher.
package cli

import (
	"fmt"
	"time"

	"github.com/finguard/finguard-tui/internal/settings"
)

// HandleSettings handles the "settings" command with its subcommands.
func HandleSettings(args Args) error {
	parser := NewArgParser(args.Raw)

	store, err := settings.NewStore("")
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	switch parser.Subcommand() {
	case "", "show":
		return handleSettingsShow(store, args)
	case "get":
		return handleSettingsGet(store, parser.Positional(1))
	case "set":
		return handleSettingsSet(store, args, parser.Positional(1), parser.Positional(2))
	case "path":
		fmt.Println(store.Path())
		return nil
	default:
		return &UsageError{Message: fmt.Sprintf(
			"unknown settings subcommand: %s\nUsage: finguard settings [show|get|set|path]",
			parser.Subcommand())}
	}
}

func handleSettingsShow(store *settings.Store, args Args) error {
	cfg, err := store.Load()
	if err != nil {
		// Invalid file contents fall back to defaults; surface that.
		fmt.Printf("Warning: %v (showing defaults)\n\n", err)
	}

	if args.JSON {
		return NewJSONResponse("settings", SettingsData{
			Settings: settingsInfo(cfg, store.Path()),
		}).Print()
	}

	fmt.Println()
	fmt.Println("Session Timing Settings")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Printf("  inactivity-timeout    %s\n", cfg.InactivityTimeout)
	fmt.Printf("  warning-lead          %s\n", cfg.WarningLeadTime)
	fmt.Printf("  heartbeat-interval    %s\n", cfg.HeartbeatInterval)
	fmt.Printf("  token-expiry-buffer   %s\n", cfg.TokenExpiryBuffer)
	fmt.Println()
	fmt.Printf("File: %s\n", store.Path())
	fmt.Println()
	return nil
}

func handleSettingsGet(store *settings.Store, key string) error {
	if key == "" {
		return &UsageError{Message: "key required\nUsage: finguard settings get <key>"}
	}

	cfg, _ := store.Load()
	switch key {
	case "inactivity-timeout":
		fmt.Println(cfg.InactivityTimeout)
	case "warning-lead":
		fmt.Println(cfg.WarningLeadTime)
	case "heartbeat-interval":
		fmt.Println(cfg.HeartbeatInterval)
	case "token-expiry-buffer":
		fmt.Println(cfg.TokenExpiryBuffer)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown settings key: %s", key)}
	}
	return nil
}

func handleSettingsSet(store *settings.Store, args Args, key, value string) error {
	if key == "" || value == "" {
		return &UsageError{Message: "key and value required\nUsage: finguard settings set <key> <duration>"}
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return &UsageError{Message: fmt.Sprintf(
			"invalid duration %q: use Go duration syntax, e.g. 25m or 90s", value)}
	}

	var update settings.Update
	switch key {
	case "inactivity-timeout":
		update.InactivityTimeout = &d
	case "warning-lead":
		update.WarningLeadTime = &d
	case "heartbeat-interval":
		update.HeartbeatInterval = &d
	case "token-expiry-buffer":
		update.TokenExpiryBuffer = &d
	default:
		return &UsageError{Message: fmt.Sprintf("unknown settings key: %s", key)}
	}

	next, err := store.Save(update)
	if err != nil {
		return fmt.Errorf("settings unchanged: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("settings set", SettingsData{
			Settings: settingsInfo(next, store.Path()),
		}).Print()
	}

	fmt.Printf("%s set to %s\n", key, d)
	return nil
}
