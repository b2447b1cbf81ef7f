// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finguard/finguard-tui/internal/clock"
	"github.com/finguard/finguard-tui/internal/settings"
	"github.com/finguard/finguard-tui/internal/token"
)

// =============================================================================
// STATES AND REASONS
// =============================================================================

// State is the authoritative session state.
type State int

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateActive means the session is live with no warning shown.
	StateActive
	// StateWarning means the inactivity warning is displayed and the logout
	// countdown is running.
	StateWarning
	// StateEnded is terminal; the session record has been discarded.
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Live reports whether a session currently exists.
func (s State) Live() bool {
	return s == StateActive || s == StateWarning
}

// EndReason explains why a session ended.
type EndReason string

const (
	ReasonTimeout      EndReason = "timeout"
	ReasonManualLogout EndReason = "manual-logout"
	ReasonTokenExpired EndReason = "token-expired"
	ReasonTokenMissing EndReason = "token-missing"
)

// Message returns the user-facing logout message for a reason.
func (r EndReason) Message() string {
	switch r {
	case ReasonTimeout:
		return "You have been logged out due to inactivity."
	case ReasonTokenExpired:
		return "Your session has expired. Please log in again."
	case ReasonManualLogout:
		return "You have been logged out successfully."
	case ReasonTokenMissing:
		return "Your session ended because no credentials were found."
	default:
		return "You have been logged out."
	}
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the live session record. Owned exclusively by the Manager and
// destroyed when the machine reaches Ended.
type Record struct {
	ID                  string
	StartedAt           time.Time
	LastActivityAt      time.Time
	WarningAcknowledged bool
}

// TokenSource returns the current raw bearer token, or "" when absent. Read
// on every heartbeat tick; never cached, because the token may have been
// refreshed out-of-band.
type TokenSource func() string

// =============================================================================
// MANAGER
// =============================================================================

// Options configures a Manager. Zero fields get working defaults, so a bare
// Manager is usable headless in tests.
type Options struct {
	Clock       clock.Clock
	Monitor     *Monitor
	Notifier    Notifier
	Bus         *Bus
	TokenSource TokenSource
	Config      settings.Config

	// Signals selects which input signal types count as activity.
	// Defaults to all.
	Signals []SignalType
}

// Manager is the session state machine. All transitions are serialized by a
// single mutex; timer callbacks, heartbeat ticks, activity signals, and UI
// intents all funnel through it, so transition logic itself never races.
type Manager struct {
	mu sync.Mutex

	clk      clock.Clock
	monitor  *Monitor
	notifier Notifier
	bus      *Bus
	source   TokenSource
	cfg      settings.Config
	signals  []SignalType

	state State
	rec   *Record

	// Timer coordination. Arming bumps gen; a fire whose generation is stale
	// has been superseded by a re-arm and is ignored. At most one timer of
	// each kind is armed at any instant.
	gen         uint64
	warnTimer   clock.Timer
	logoutTimer clock.Timer

	heartbeat *Heartbeat

	// attachHandle is set while the activity monitor is attached.
	attachHandle Handle
	attached     bool

	// warnHandle is the currently displayed warning, if any.
	warnHandle NotifyHandle
	warnShown  bool

	// tokenWarned latches the token-expiring advisory, at most once per
	// session.
	tokenWarned bool
}

// NewManager creates a session manager with injected collaborators.
func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Monitor == nil {
		opts.Monitor = NewMonitor()
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Bus == nil {
		opts.Bus = NewBus()
	}
	if opts.TokenSource == nil {
		opts.TokenSource = func() string { return "" }
	}
	if opts.Config == (settings.Config{}) {
		opts.Config = settings.DefaultConfig()
	}
	if len(opts.Signals) == 0 {
		opts.Signals = AllSignals()
	}

	m := &Manager{
		clk:      opts.Clock,
		monitor:  opts.Monitor,
		notifier: opts.Notifier,
		bus:      opts.Bus,
		source:   opts.TokenSource,
		cfg:      opts.Config,
		signals:  opts.Signals,
		state:    StateIdle,
	}
	m.heartbeat = NewHeartbeat(opts.Clock, m.heartbeatTick)
	return m
}

// Bus returns the event bus the manager publishes on.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Monitor returns the activity monitor the manager attaches to.
func (m *Manager) Monitor() *Monitor {
	return m.monitor
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// Login transitions Idle or Ended to Active: creates the record, arms both
// inactivity timers, starts the heartbeat, and attaches the activity monitor.
// A no-op while a session is already live.
func (m *Manager) Login() {
	m.mu.Lock()
	if m.state.Live() {
		m.mu.Unlock()
		return
	}

	now := m.clk.Now()
	id := "sess_" + uuid.NewString()
	m.rec = &Record{
		ID:             id,
		StartedAt:      now,
		LastActivityAt: now,
	}
	m.state = StateActive
	m.tokenWarned = false
	m.armTimersLocked()
	m.heartbeat.Start(m.cfg.HeartbeatInterval)
	logSessionEvent("SESSION_STARTED", id, "timeout="+m.cfg.InactivityTimeout.String())
	m.mu.Unlock()

	// Attach outside the state lock: signal dispatch holds the monitor lock
	// while calling back into the manager.
	h := m.monitor.Attach(m.signals, func(SignalType) { m.Activity() })

	m.mu.Lock()
	if m.state.Live() {
		m.attachHandle = h
		m.attached = true
		m.mu.Unlock()
	} else {
		// Session ended between the two phases; undo the attach.
		m.mu.Unlock()
		m.monitor.Detach(h)
	}

	m.bus.Publish(Event{Type: EventSessionStarted, SessionID: id, Timestamp: now, StartedAt: now})
}

// Activity processes one user-input signal. In Active it re-arms both timers
// from now; in Warning it additionally returns to Active and hides the
// warning. A signal arriving in the same tick as the logout timer wins: the
// re-arm cancels the stale timer structurally, and a late fire is rejected by
// its generation.
func (m *Manager) Activity() {
	m.mu.Lock()
	if !m.state.Live() {
		m.mu.Unlock()
		return
	}

	now := m.clk.Now()
	m.rec.LastActivityAt = now
	wasWarning := m.state == StateWarning
	id := m.rec.ID
	m.state = StateActive
	m.armTimersLocked()
	hideHandle, hide := m.clearWarningLocked()
	m.mu.Unlock()

	if hide {
		m.notifier.Hide(hideHandle)
	}
	m.bus.Publish(Event{Type: EventUserActivity, SessionID: id, Timestamp: now})
	if wasWarning {
		m.bus.Publish(Event{Type: EventSessionExtended, SessionID: id, Timestamp: now})
	}
}

// Extend is the explicit user intent from the warning affordance. Repeating
// it is idempotent: each call re-arms from its own timestamp, and the session
// is Active afterwards either way.
func (m *Manager) Extend() {
	m.mu.Lock()
	if !m.state.Live() {
		m.mu.Unlock()
		return
	}

	now := m.clk.Now()
	m.rec.LastActivityAt = now
	if m.state == StateWarning {
		m.rec.WarningAcknowledged = true
	}
	m.state = StateActive
	m.armTimersLocked()
	hideHandle, hide := m.clearWarningLocked()
	id := m.rec.ID
	m.mu.Unlock()

	if hide {
		m.notifier.Hide(hideHandle)
	}
	logSessionEvent("SESSION_EXTENDED", id, "")
	m.bus.Publish(Event{Type: EventSessionExtended, SessionID: id, Timestamp: now})
}

// Logout is the explicit termination intent, from the warning affordance or
// anywhere else in the client. A no-op without a live session.
func (m *Manager) Logout() {
	m.endSession(ReasonManualLogout)
}

// TokenRefreshed tells the machine the bearer token was replaced out-of-band.
// Timers re-arm without a state change, and the token-expiring advisory is
// re-enabled for the new token.
func (m *Manager) TokenRefreshed() {
	m.mu.Lock()
	if !m.state.Live() {
		m.mu.Unlock()
		return
	}
	m.tokenWarned = false
	m.armTimersLocked()
	m.mu.Unlock()
}

// UpdateConfig applies a new timing configuration atomically. With a live
// session both timers re-arm immediately using the new durations and the
// heartbeat restarts on its new interval.
func (m *Manager) UpdateConfig(cfg settings.Config) {
	if err := cfg.Validate(); err != nil {
		log.Printf("SESSION_CONFIG_REJECTED: %v", err)
		return
	}

	m.mu.Lock()
	old := m.cfg
	m.cfg = cfg
	live := m.state.Live()
	if live {
		m.armTimersLocked()
	}
	m.mu.Unlock()

	if live {
		m.heartbeat.Stop()
		m.heartbeat.Start(cfg.HeartbeatInterval)
	}
	m.bus.Publish(Event{
		Type:      EventSettingsUpdated,
		Timestamp: m.clk.Now(),
		OldConfig: old,
		NewConfig: cfg,
	})
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Status is a point-in-time view of the session for UI and CLI consumers.
type Status struct {
	State          State
	SessionID      string
	StartedAt      time.Time
	LastActivityAt time.Time

	// TimeUntilWarning and TimeUntilLogout are measured from LastActivityAt.
	// Zero when no session is live.
	TimeUntilWarning time.Duration
	TimeUntilLogout  time.Duration

	Config settings.Config
}

// Status returns the current session snapshot.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{State: m.state, Config: m.cfg}
	if m.rec == nil {
		return st
	}

	st.SessionID = m.rec.ID
	st.StartedAt = m.rec.StartedAt
	st.LastActivityAt = m.rec.LastActivityAt

	if m.state.Live() {
		idle := m.clk.Now().Sub(m.rec.LastActivityAt)
		st.TimeUntilLogout = clampDur(m.cfg.InactivityTimeout - idle)
		st.TimeUntilWarning = clampDur(m.cfg.InactivityTimeout - m.cfg.WarningLeadTime - idle)
	}
	return st
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// =============================================================================
// TIMER COORDINATION
// =============================================================================

// armTimersLocked cancels any armed warning/logout timers and arms fresh ones
// from now. Callers hold m.mu.
func (m *Manager) armTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
	}
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
	}

	m.gen++
	gen := m.gen

	warnIn := m.cfg.InactivityTimeout - m.cfg.WarningLeadTime
	m.warnTimer = m.clk.AfterFunc(warnIn, func() { m.onWarningTimer(gen) })
	m.logoutTimer = m.clk.AfterFunc(m.cfg.InactivityTimeout, func() { m.onLogoutTimer(gen) })
}

// stopTimersLocked cancels both timers and invalidates outstanding fires.
func (m *Manager) stopTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
	m.gen++
}

// onWarningTimer moves Active to Warning and shows the notification surface.
func (m *Manager) onWarningTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateActive {
		m.mu.Unlock()
		return
	}

	m.state = StateWarning
	remaining := m.cfg.WarningLeadTime
	id := m.rec.ID
	now := m.clk.Now()
	m.mu.Unlock()

	logSessionEvent("SESSION_WARNING", id, "remaining="+remaining.String())

	h := m.notifier.ShowWarning(remaining, m.Extend, m.Logout)

	m.mu.Lock()
	stillWarning := m.state == StateWarning
	if stillWarning {
		m.warnHandle = h
		m.warnShown = true
	}
	m.mu.Unlock()

	if !stillWarning {
		// Activity or logout raced the surface; take the warning back down.
		m.notifier.Hide(h)
		return
	}

	m.bus.Publish(Event{
		Type:             EventSessionWarning,
		SessionID:        id,
		Timestamp:        now,
		RemainingSeconds: int(remaining.Seconds()),
	})
}

// onLogoutTimer ends a session whose warning countdown ran out.
func (m *Manager) onLogoutTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateWarning {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.endSession(ReasonTimeout)
}

// clearWarningLocked resets warning display state, returning the handle to
// hide. Callers hold m.mu.
func (m *Manager) clearWarningLocked() (NotifyHandle, bool) {
	if !m.warnShown {
		return 0, false
	}
	h := m.warnHandle
	m.warnShown = false
	m.warnHandle = 0
	if m.rec != nil {
		m.rec.WarningAcknowledged = true
	}
	return h, true
}

// =============================================================================
// HEARTBEAT
// =============================================================================

// heartbeatTick inspects the current bearer token. Runs on the heartbeat
// cadence, independent of the inactivity timers: a user who is typing still
// holds a token that can expire.
func (m *Manager) heartbeatTick() {
	m.mu.Lock()
	if !m.state.Live() {
		// Stray tick after the session ended; cancellation races are
		// ignored here rather than fought.
		m.mu.Unlock()
		return
	}
	raw := m.source()
	now := m.clk.Now()
	cfg := m.cfg
	alreadyWarned := m.tokenWarned
	id := m.rec.ID
	m.mu.Unlock()

	if raw == "" {
		logSessionEvent("SESSION_TOKEN_MISSING", id, "")
		m.endSession(ReasonTokenMissing)
		return
	}

	claims := token.Inspect(raw)
	if claims.ExpiredAt(now) {
		logSessionEvent("SESSION_TOKEN_EXPIRED", id, "")
		m.endSession(ReasonTokenExpired)
		return
	}

	left := claims.TimeUntilExpiry(now)
	if left <= cfg.TokenExpiryBuffer && !alreadyWarned {
		m.mu.Lock()
		fire := m.state.Live() && !m.tokenWarned
		if fire {
			m.tokenWarned = true
		}
		m.mu.Unlock()

		if fire {
			minutes := int(math.Ceil(left.Minutes()))
			logSessionEvent("SESSION_TOKEN_EXPIRING", id, fmt.Sprintf("minutes_left=%d", minutes))
			m.bus.Publish(Event{Type: EventTokenExpiring, SessionID: id, Timestamp: now, MinutesLeft: minutes})
		}
	}
}

// =============================================================================
// TERMINATION
// =============================================================================

// endSession runs the full cancellation sequence: inactivity timer, warning
// timer, heartbeat, activity monitor, then record discard.
func (m *Manager) endSession(reason EndReason) {
	m.mu.Lock()
	if !m.state.Live() {
		m.mu.Unlock()
		return
	}

	m.state = StateEnded
	m.stopTimersLocked()
	startedAt := m.rec.StartedAt
	id := m.rec.ID
	hideHandle, hide := m.clearWarningLocked()
	wasAttached := m.attached
	attachHandle := m.attachHandle
	m.attached = false
	m.mu.Unlock()

	m.heartbeat.Stop()
	if wasAttached {
		m.monitor.Detach(attachHandle)
	}

	now := m.clk.Now()

	// Record discard is the last step, after every signal source is gone.
	m.mu.Lock()
	m.rec = nil
	m.mu.Unlock()

	logSessionEvent("SESSION_ENDED", id, "reason="+string(reason)+" duration="+now.Sub(startedAt).String())

	if hide {
		m.notifier.Hide(hideHandle)
	}
	m.notifier.ShowEnded(reason)

	m.bus.Publish(Event{
		Type:      EventSessionEnded,
		SessionID: id,
		Timestamp: now,
		StartedAt: startedAt,
		EndedAt:   now,
		Reason:    reason,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func clampDur(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// logSessionEvent writes one audit line per lifecycle event.
func logSessionEvent(eventType, sessionID, details string) {
	if details == "" {
		log.Printf("%s | session=%s", eventType, sessionID)
		return
	}
	log.Printf("%s | session=%s %s", eventType, sessionID, details)
}
