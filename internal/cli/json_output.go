// json_output.go - JSON output support for scripting and shell integration.
//
// Every command that reports state can emit a standardized JSON envelope so
// shell scripts and status bars can consume it without scraping text.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Token       StatusTokenInfo    `json:"token"`
	Settings    StatusSettingsInfo `json:"settings"`
	LastSession *StatusSessionInfo `json:"last_session,omitempty"`
}

// StatusTokenInfo describes the stored credentials.
type StatusTokenInfo struct {
	Present      bool   `json:"present"`
	Expired      bool   `json:"expired,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	ExpiresInSec int64  `json:"expires_in_seconds,omitempty"`
}

// StatusSettingsInfo describes the effective session timing.
type StatusSettingsInfo struct {
	InactivityTimeout string `json:"inactivity_timeout"`
	WarningLeadTime   string `json:"warning_lead_time"`
	HeartbeatInterval string `json:"heartbeat_interval"`
	TokenExpiryBuffer string `json:"token_expiry_buffer"`
	Path              string `json:"path"`
}

// StatusSessionInfo describes one historical session.
type StatusSessionInfo struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
	EndReason  string `json:"end_reason,omitempty"`
	Duration   string `json:"duration"`
	Warnings   int    `json:"warnings"`
	Extensions int    `json:"extensions"`
}

// HistoryListData represents the data returned by the history list command.
type HistoryListData struct {
	Sessions []StatusSessionInfo `json:"sessions"`
	Count    int                 `json:"count"`
}

// HistoryEventInfo describes one recorded session event.
type HistoryEventInfo struct {
	Type    string `json:"type"`
	At      string `json:"at"`
	Details string `json:"details,omitempty"`
}

// HistoryShowData represents the data returned by the history show command.
type HistoryShowData struct {
	Session StatusSessionInfo  `json:"session"`
	Events  []HistoryEventInfo `json:"events"`
}

// SettingsData represents the data returned by the settings commands.
type SettingsData struct {
	Settings StatusSettingsInfo `json:"settings"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
