// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Session history CLI commands.
//
// Command: history [subcommand]
// Aliases: sessions
//
// Subcommands:
//   list (default)      List recent sessions, newest first
//   show <id>           Show the recorded events of one session
//   last                Show the most recently ended session
//
// Flags:
//   --limit N           Limit list output (default: 20)
//   --json              Output in JSON format
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/finguard/finguard-tui/internal/history"
	"github.com/finguard/finguard-tui/internal/util"
)

// HandleHistory handles the "history" command with its subcommands.
func HandleHistory(args Args) error {
	parser := NewArgParser(args.Raw)

	path, err := history.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve history path: %w", err)
	}
	log, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer log.Close()

	switch parser.Subcommand() {
	case "", "list":
		return handleHistoryList(log, args, parser.FlagIntOrDefault("limit", 20))
	case "show":
		return handleHistoryShow(log, args, parser.Positional(1))
	case "last":
		return handleHistoryLast(log, args)
	default:
		return &UsageError{Message: fmt.Sprintf(
			"unknown history subcommand: %s\nUsage: finguard history [list|show|last]",
			parser.Subcommand())}
	}
}

// handleHistoryList lists recent sessions.
func handleHistoryList(log *history.Log, args Args, limit int) error {
	rows, err := log.Recent(limit)
	if err != nil {
		return err
	}

	if args.JSON {
		data := HistoryListData{Count: len(rows)}
		for _, r := range rows {
			data.Sessions = append(data.Sessions, sessionInfo(r))
		}
		return NewJSONResponse("history list", data).Print()
	}

	if len(rows) == 0 {
		fmt.Println()
		fmt.Println("No session history yet.")
		fmt.Println()
		return nil
	}

	fmt.Println()
	fmt.Println("Session History")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
	fmt.Printf("%-14s %-17s %-10s %-14s %-5s %-4s\n",
		"ID", "Started", "Duration", "End Reason", "Warns", "Exts")
	fmt.Println(strings.Repeat("-", 72))

	now := time.Now()
	for _, r := range rows {
		reason := r.EndReason
		if r.EndedAt.IsZero() {
			reason = "(open)"
		}
		fmt.Printf("%-14s %-17s %-10s %-14s %-5d %-4d\n",
			truncateID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Duration(now).Round(time.Second),
			reason,
			r.Warnings,
			r.Extensions,
		)
	}

	fmt.Println()
	fmt.Printf("Total: %d session(s)\n", len(rows))
	fmt.Println()
	fmt.Println("Use 'finguard history show <id>' for the events of one session.")
	fmt.Println()
	return nil
}

// handleHistoryShow shows the recorded events of one session.
func handleHistoryShow(log *history.Log, args Args, id string) error {
	if id == "" {
		return &UsageError{Message: "session ID required\nUsage: finguard history show <id>"}
	}

	events, err := log.Events(id)
	if err != nil {
		return err
	}

	// The session row gives the summary line above the event list.
	var row *history.SessionRow
	if rows, err := log.Recent(1000); err == nil {
		for i := range rows {
			if rows[i].ID == id {
				row = &rows[i]
				break
			}
		}
	}

	if args.JSON {
		data := HistoryShowData{}
		if row != nil {
			data.Session = sessionInfo(*row)
		}
		for _, ev := range events {
			data.Events = append(data.Events, HistoryEventInfo{
				Type:    ev.Type,
				At:      ev.At.UTC().Format(time.RFC3339),
				Details: ev.Details,
			})
		}
		return NewJSONResponse("history show", data).Print()
	}

	fmt.Println()
	fmt.Printf("Session %s\n", id)
	fmt.Println(strings.Repeat("=", 60))
	if row != nil {
		fmt.Printf("Started:  %s\n", row.StartedAt.Local().Format(time.RFC1123))
		if !row.EndedAt.IsZero() {
			fmt.Printf("Ended:    %s (%s)\n", row.EndedAt.Local().Format(time.RFC1123), row.EndReason)
		}
		fmt.Printf("Duration: %s\n", row.Duration(time.Now()).Round(time.Second))
	}
	fmt.Println()

	for _, ev := range events {
		line := fmt.Sprintf("%s  %s", ev.At.Local().Format("15:04:05"), ev.Type)
		if ev.Details != "" {
			line += "  " + ev.Details
		}
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}

// handleHistoryLast shows the most recently ended session.
func handleHistoryLast(log *history.Log, args Args) error {
	last, err := log.LastEnded()
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("history last", sessionInfo(*last)).Print()
	}

	fmt.Println()
	fmt.Printf("Last ended session: %s\n", last.ID)
	fmt.Printf("  Started:   %s\n", last.StartedAt.Local().Format(time.RFC1123))
	fmt.Printf("  Ended:     %s\n", last.EndedAt.Local().Format(time.RFC1123))
	fmt.Printf("  Reason:    %s\n", last.EndReason)
	fmt.Printf("  Duration:  %s\n", last.Duration(time.Now()).Round(time.Second))
	fmt.Println()
	return nil
}

// truncateID shortens a session ID for table display.
func truncateID(id string) string {
	return util.TruncateRunes(id, 13)
}
