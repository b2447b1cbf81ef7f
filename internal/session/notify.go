// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "time"

// =============================================================================
// NOTIFICATION SURFACE
// =============================================================================

// NotifyHandle identifies a displayed warning so it can be hidden.
type NotifyHandle int

// Notifier is the abstract warning/logout affordance the session core drives.
// The core never renders UI itself; any concrete surface (TUI overlay, web
// dialog, desktop notification) implements this contract. onExtend and
// onLogoutNow are expected to be invoked at most once each.
//
// A headless client may run without a surface (see NopNotifier): the warning
// state is still entered and the logout timer still fires, the session simply
// ends without a visible countdown.
type Notifier interface {
	// ShowWarning presents the inactivity countdown with the extend and
	// logout-now affordances.
	ShowWarning(remaining time.Duration, onExtend func(), onLogoutNow func()) NotifyHandle

	// Hide removes a previously shown warning. Unknown handles are ignored.
	Hide(NotifyHandle)

	// ShowEnded presents the terminal logged-out message.
	ShowEnded(reason EndReason)
}

// NopNotifier is the headless surface: it displays nothing.
type NopNotifier struct{}

func (NopNotifier) ShowWarning(time.Duration, func(), func()) NotifyHandle { return 0 }
func (NopNotifier) Hide(NotifyHandle)                                      {}
func (NopNotifier) ShowEnded(EndReason)                                    {}
