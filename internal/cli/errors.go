// errors.go - Unified error handling for all CLI commands in finguard.
//
// Every command handler returns an error and main maps it to an exit code
// here, so shell scripts can distinguish auth failures from network ones.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/finguard/finguard-tui/internal/api"
	"github.com/finguard/finguard-tui/internal/history"
	"github.com/finguard/finguard-tui/internal/settings"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a settings validation failure
	ExitConfigError = 3
	// ExitAuthError indicates authentication failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or backend error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// UsageError marks an error caused by invalid command arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// GetExitCode maps an error to its process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.Is(err, api.ErrAuthFailed), errors.Is(err, api.ErrRefreshRejected):
		return ExitAuthError
	case errors.Is(err, api.ErrRateLimited), errors.Is(err, api.ErrServerUnavailable):
		return ExitNetworkError
	case errors.Is(err, history.ErrSessionNotFound):
		return ExitNotFoundError
	case errors.Is(err, settings.ErrWarningNotBeforeTimeout),
		errors.Is(err, settings.ErrNonPositiveDuration):
		return ExitConfigError
	}

	return ExitGeneralError
}
