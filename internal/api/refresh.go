// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/finguard/finguard-tui/internal/clock"
	"github.com/finguard/finguard-tui/internal/token"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

// DefaultRefreshThreshold is how far before access-token expiry the silent
// refresh runs.
const DefaultRefreshThreshold = 5 * time.Minute

// RefreshFunc exchanges a refresh token for a new pair. Client.Refresh
// satisfies it; tests substitute a stub.
type RefreshFunc func(ctx context.Context, refreshToken string) (*TokenPair, error)

// =============================================================================
// SILENT TOKEN REFRESH
// =============================================================================

// Refresher keeps the access token fresh in the background. It schedules one
// refresh per token lifetime, threshold-before-expiry, and reschedules itself
// after every successful exchange. Refresh attempts are single-flight: a
// manually triggered check never races the scheduled one.
//
// On terminal failure the credentials are cleared; the session heartbeat
// notices the empty store on its next beat and ends the session. The
// refresher never ends sessions itself.
type Refresher struct {
	clk       clock.Clock
	store     *tokenstore.Store
	refresh   RefreshFunc
	threshold time.Duration

	// OnRefreshed runs after each successful exchange, outside the refresher
	// lock. Wired to the session manager's TokenRefreshed.
	OnRefreshed func()

	mu       sync.Mutex
	timer    clock.Timer
	inFlight bool
	stopped  bool
}

// NewRefresher creates a stopped refresher.
func NewRefresher(clk clock.Clock, store *tokenstore.Store, refresh RefreshFunc) *Refresher {
	if clk == nil {
		clk = clock.System()
	}
	return &Refresher{
		clk:       clk,
		store:     store,
		refresh:   refresh,
		threshold: DefaultRefreshThreshold,
	}
}

// WithThreshold overrides how far before expiry the refresh runs.
func (r *Refresher) WithThreshold(d time.Duration) *Refresher {
	if d > 0 {
		r.threshold = d
	}
	return r
}

// Start schedules the first refresh for the currently held token.
func (r *Refresher) Start() {
	r.mu.Lock()
	r.stopped = false
	r.mu.Unlock()
	r.schedule()
}

// Stop cancels any scheduled refresh. An exchange already in flight completes
// but does not reschedule.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// CheckNow validates the held token immediately, refreshing it when inside
// the threshold. Called on focus regain, when the process may have slept
// through its scheduled refresh.
func (r *Refresher) CheckNow() {
	raw := r.store.Access()
	if raw == "" {
		return
	}

	now := r.clk.Now()
	claims := token.Inspect(raw)
	if claims.ExpiredAt(now) {
		// Too late to renew silently; the heartbeat ends the session.
		log.Printf("TOKEN_REFRESH_TOO_LATE | token already expired")
		return
	}
	if claims.TimeUntilExpiry(now) <= r.threshold {
		r.refreshNow()
		return
	}
	r.schedule()
}

// schedule arms the refresh timer for the held token, replacing any armed
// timer. A token already inside the threshold refreshes immediately.
func (r *Refresher) schedule() {
	raw := r.store.Access()
	if raw == "" {
		return
	}

	now := r.clk.Now()
	claims := token.Inspect(raw)
	if claims.Invalid || claims.ExpiredAt(now) {
		return
	}

	wait := claims.TimeUntilExpiry(now) - r.threshold
	if wait <= 0 {
		r.refreshNow()
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.clk.AfterFunc(wait, r.refreshNow)
	r.mu.Unlock()

	log.Printf("TOKEN_REFRESH_SCHEDULED | in=%v", wait)
}

// refreshNow performs one single-flight exchange.
func (r *Refresher) refreshNow() {
	r.mu.Lock()
	if r.inFlight || r.stopped {
		r.mu.Unlock()
		return
	}
	r.inFlight = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	refreshToken := r.store.Refresh()
	if refreshToken == "" {
		log.Printf("TOKEN_REFRESH_FAILED | no refresh token held")
		r.handleFailure()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	pair, err := r.refresh(ctx, refreshToken)
	if err != nil {
		log.Printf("TOKEN_REFRESH_FAILED | %v", err)
		r.handleFailure()
		return
	}

	if err := r.store.Save(tokenstore.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		log.Printf("TOKEN_REFRESH_PERSIST_FAILED | %v", err)
	}
	log.Printf("TOKEN_REFRESHED | next check scheduled")

	if r.OnRefreshed != nil {
		r.OnRefreshed()
	}
	r.schedule()
}

// handleFailure clears the dead credentials. The session heartbeat observes
// the empty store and ends the session on its next beat.
func (r *Refresher) handleFailure() {
	if err := r.store.Clear(); err != nil {
		log.Printf("TOKEN_REFRESH_CLEAR_FAILED | %v", err)
	}

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()
}
