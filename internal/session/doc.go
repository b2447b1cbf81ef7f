// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the client-side session lifecycle manager.
//
// The Manager owns the authoritative session state (Idle, Active, Warning,
// Ended) and every transition between them. It coordinates two inactivity
// timers (warning and logout) that are re-armed on user activity, a
// slower-period heartbeat that inspects the bearer token's expiry claim, an
// activity monitor fed by the UI loop, and a notification surface that shows
// the warning/extend/logout affordance.
//
// All timers go through the clock package, so the whole lifecycle can be
// driven deterministically in tests with a fake clock. The Manager publishes
// its lifecycle on an event bus (session-started, user-activity,
// session-warning, session-extended, session-ended, settings-updated,
// token-expiring) for UI panels and analytics to consume.
package session
