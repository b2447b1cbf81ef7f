// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/history"
	"github.com/finguard/finguard-tui/internal/settings"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--limit", "5"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "5" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "5")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"list", "--limit=10"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "10" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "10")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"show", "--json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "explicit boolean value",
			args:    []string{"show", "--json=false"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be false")
				}
			},
		},
		{
			name:    "mixed flags and positional",
			args:    []string{"set", "inactivity-timeout", "25m", "--json"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "inactivity-timeout" {
					t.Errorf("Positional(1) = %q", p.Positional(1))
				}
				if p.Positional(2) != "25m" {
					t.Errorf("Positional(2) = %q", p.Positional(2))
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "inactivity-timeout 25m" {
					t.Errorf("PositionalFrom(1) = %q", joined)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"list", "--limit", "10"},
			flagName:   "limit",
			defaultVal: 20,
			want:       10,
		},
		{
			name:       "flag absent",
			args:       []string{"list"},
			flagName:   "limit",
			defaultVal: 20,
			want:       20,
		},
		{
			name:       "flag not an integer",
			args:       []string{"list", "--limit", "many"},
			flagName:   "limit",
			defaultVal: 20,
			want:       20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal); got != tt.want {
				t.Errorf("FlagIntOrDefault() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArgParser_Positional_OutOfBounds(t *testing.T) {
	parser := NewArgParser([]string{"show"})
	if got := parser.Positional(5); got != "" {
		t.Errorf("Positional(5) = %q, want empty", got)
	}
	if got := parser.Positional(-1); got != "" {
		t.Errorf("Positional(-1) = %q, want empty", got)
	}
}

// =============================================================================
// COMMAND ROUTING TESTS (cli.go)
// =============================================================================

func TestParseArgs_CommandRouting(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd Command
	}{
		{name: "no args defaults to TUI", args: nil, wantCmd: CmdTUI},
		{name: "login", args: []string{"login"}, wantCmd: CmdLogin},
		{name: "signin alias", args: []string{"signin"}, wantCmd: CmdLogin},
		{name: "logout", args: []string{"logout"}, wantCmd: CmdLogout},
		{name: "status", args: []string{"status"}, wantCmd: CmdStatus},
		{name: "status short alias", args: []string{"s"}, wantCmd: CmdStatus},
		{name: "settings", args: []string{"settings", "show"}, wantCmd: CmdSettings},
		{name: "config alias", args: []string{"config"}, wantCmd: CmdSettings},
		{name: "history", args: []string{"history", "list"}, wantCmd: CmdHistory},
		{name: "sessions alias", args: []string{"sessions"}, wantCmd: CmdHistory},
		{name: "session status prefix", args: []string{"session", "status"}, wantCmd: CmdStatus},
		{name: "session settings prefix", args: []string{"session", "settings", "show"}, wantCmd: CmdSettings},
		{name: "session history prefix", args: []string{"session", "history"}, wantCmd: CmdHistory},
		{name: "bare session falls to help", args: []string{"session"}, wantCmd: CmdHelp},
		{name: "version", args: []string{"version"}, wantCmd: CmdVersion},
		{name: "help", args: []string{"help"}, wantCmd: CmdHelp},
		{name: "unknown falls to help", args: []string{"frobnicate"}, wantCmd: CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parseArgs(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.args, cmd, tt.wantCmd)
			}
		})
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"--json", "-q", "--base-url", "https://staging.finguard.app/v1", "status"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v, want CmdStatus", cmd)
	}
	if !args.JSON {
		t.Error("JSON flag not parsed")
	}
	if !args.Quiet {
		t.Error("Quiet flag not parsed")
	}
	if args.BaseURL != "https://staging.finguard.app/v1" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
}

func TestParseArgs_SubcommandCaptured(t *testing.T) {
	_, args := parseArgs([]string{"history", "show", "sess_1"})
	if args.Subcommand != "show" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "show")
	}
	if len(args.Raw) != 2 {
		t.Errorf("Raw = %v, want 2 entries", args.Raw)
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "usage", err: &UsageError{Message: "bad args"}, want: ExitUsageError},
		{name: "auth", err: api.ErrAuthFailed, want: ExitAuthError},
		{name: "rate limited", err: api.ErrRateLimited, want: ExitNetworkError},
		{name: "server down", err: api.ErrServerUnavailable, want: ExitNetworkError},
		{name: "not found", err: history.ErrSessionNotFound, want: ExitNotFoundError},
		{name: "settings invariant", err: settings.ErrWarningNotBeforeTimeout, want: ExitConfigError},
		{name: "unknown", err: errors.New("boom"), want: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
