// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for finguard.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdSettings
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format
	BaseURL string // Override the backend base URL

	// Command-specific
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `finguard - personal finance terminal client

Finguard manages your signed-in session from the terminal: automatic
inactivity logout, a warning countdown before it happens, and token
refresh so short-lived credentials stay valid while you work.

Usage:
  finguard                   Start TUI (default)
  finguard login             Sign in and store credentials
  finguard logout            Revoke and clear stored credentials
  finguard status, s         Show session and token status
  finguard settings [cmd]    Session timing settings
  finguard history [cmd]     Past session history
  finguard version           Show version
  finguard help              Show this help

Settings Commands:
  finguard settings show            Show current session timing (default)
  finguard settings get <key>       Show a single value
  finguard settings set <key> <dur> Change a value (e.g. 25m, 90s)
  finguard settings path            Show the settings file location

  Keys: inactivity-timeout, warning-lead, heartbeat-interval,
        token-expiry-buffer

History Commands:
  finguard history list             List recent sessions (default)
    --limit N                       Show at most N sessions (default: 20)
  finguard history show <id>        Show the events of one session
  finguard history last             Show the most recently ended session

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format
  --base-url URL  Override the backend base URL

Examples:
  finguard                              Start the TUI
  finguard login                        Sign in
  finguard status --json                Machine-readable status
  finguard settings set inactivity-timeout 25m
  finguard settings set warning-lead 3m
  finguard history list --limit 5
  finguard history show sess_1f3a

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("finguard version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is Parse with the argument slice injected for testing.
func parseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]

	// "finguard session status" routes like "finguard status"; same for
	// settings and history.
	if cmd == "session" && len(remaining) > 0 {
		switch strings.ToLower(remaining[0]) {
		case "status", "settings", "history":
			cmd = strings.ToLower(remaining[0])
			remaining = remaining[1:]
		}
	}

	parsedArgs.Raw = remaining
	if len(remaining) > 0 {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login", "signin":
		return CmdLogin, parsedArgs

	case "logout", "signout":
		return CmdLogout, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "settings", "config":
		return CmdSettings, parsedArgs

	case "history", "sessions":
		return CmdHistory, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - print usage rather than silently starting the TUI
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--base-url":
			if i+1 < len(args) {
				i++
				parsedArgs.BaseURL = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--base-url=") {
				parsedArgs.BaseURL = strings.TrimPrefix(arg, "--base-url=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
