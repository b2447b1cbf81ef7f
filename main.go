// finguard TUI - terminal client for FinGuard with managed session lifecycle.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/cli"
	"github.com/finguard/finguard-tui/internal/clock"
	"github.com/finguard/finguard-tui/internal/history"
	"github.com/finguard/finguard-tui/internal/session"
	"github.com/finguard/finguard-tui/internal/settings"
	"github.com/finguard/finguard-tui/internal/token"
	"github.com/finguard/finguard-tui/internal/tokenstore"
	"github.com/finguard/finguard-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdSettings:
		exitOnError(cli.HandleSettings(args))
	case cli.CmdHistory:
		exitOnError(cli.HandleHistory(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// exitOnError prints the error and exits with its mapped code.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cli.GetExitCode(err))
}

// runTUI wires the session manager, stores, and API client together and
// starts the terminal interface.
func runTUI(args cli.Args) {
	// The TUI owns the terminal, so event logs go to a file.
	redirectLogs(args.Verbose)

	settingsStore, err := settings.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := settingsStore.Load()
	if err != nil {
		// Defaults already applied; just record what was wrong with the file.
		log.Printf("SETTINGS_LOAD_WARNING | err=%v", err)
	}

	tokens, err := tokenstore.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient()
	if args.BaseURL != "" {
		client = client.WithBaseURL(args.BaseURL)
	}

	bus := session.NewBus()

	// Session history records lifecycle events; failure to open it degrades
	// to an unrecorded session rather than a dead client.
	if path, err := history.DefaultPath(); err == nil {
		if histLog, err := history.Open(path); err == nil {
			defer histLog.Close()
			detach := histLog.Attach(bus)
			defer detach()
		} else {
			log.Printf("HISTORY_OPEN_FAILED | err=%v", err)
		}
	}

	notifier := app.NewNotifier()
	mgr := session.NewManager(session.Options{
		Notifier:    notifier,
		Bus:         bus,
		TokenSource: tokens.Access,
		Config:      cfg,
	})

	refresher := api.NewRefresher(clock.System(), tokens, client.Refresh)
	refresher.OnRefreshed = mgr.TokenRefreshed
	defer refresher.Stop()

	// External edits to the settings file behave like in-app updates.
	watcher, err := settings.NewWatcher(settingsStore, mgr.UpdateConfig)
	if err != nil {
		log.Printf("SETTINGS_WATCHER_FAILED | err=%v", err)
	} else {
		if err := watcher.Watch(); err != nil {
			log.Printf("SETTINGS_WATCHER_FAILED | err=%v", err)
		}
		defer watcher.Close()
	}

	m := app.New(app.Deps{
		Manager:   mgr,
		Client:    client,
		Tokens:    tokens,
		Refresher: refresher,
		Settings:  settingsStore,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	notifier.Bind(p)

	// Valid stored credentials resume straight into a live session; the
	// model handles this exactly like a fresh login result.
	if access := tokens.Access(); access != "" {
		if !token.Inspect(access).ExpiredAt(time.Now()) {
			go p.Send(app.LoginResultMsg{})
		} else {
			tokens.Clear()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running finguard: %v\n", err)
		os.Exit(1)
	}
}

// redirectLogs sends the event log to ~/.finguard/finguard.log. The TUI draws
// on stdout, so stray log lines there would corrupt the screen.
func redirectLogs(verbose bool) {
	dir := os.Getenv("FINGUARD_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.SetOutput(io.Discard)
			return
		}
		dir = filepath.Join(home, ".finguard")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "finguard.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	if verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
}
