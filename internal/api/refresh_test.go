// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finguard/finguard-tui/internal/clock"
	"github.com/finguard/finguard-tui/internal/tokenstore"
)

func signedTokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	raw, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func newRefreshFixture(t *testing.T) (*clock.Fake, *tokenstore.Store) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	store, err := tokenstore.NewStoreWithPath(filepath.Join(t.TempDir(), "tokens.json"))
	if err != nil {
		t.Fatal(err)
	}
	return clk, store
}

func TestRefresher_SchedulesBeforeExpiry(t *testing.T) {
	clk, store := newRefreshFixture(t)
	store.Save(tokenstore.Credentials{
		AccessToken:  signedTokenExpiring(t, clk.Now().Add(30*time.Minute)),
		RefreshToken: "ref-1",
	})

	calls := 0
	var gotRefresh string
	next := signedTokenExpiring(t, clk.Now().Add(90*time.Minute))
	r := NewRefresher(clk, store, func(_ context.Context, refreshToken string) (*TokenPair, error) {
		calls++
		gotRefresh = refreshToken
		return &TokenPair{AccessToken: next, RefreshToken: "ref-2"}, nil
	})

	refreshed := 0
	r.OnRefreshed = func() { refreshed++ }
	r.Start()

	// Refresh fires threshold (5m) before the 30m expiry, not earlier.
	clk.Advance(25*time.Minute - time.Second)
	if calls != 0 {
		t.Fatal("refresh fired early")
	}
	clk.Advance(time.Second)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if gotRefresh != "ref-1" {
		t.Errorf("refresh token sent = %q", gotRefresh)
	}
	if refreshed != 1 {
		t.Errorf("OnRefreshed calls = %d", refreshed)
	}
	if store.Access() != next || store.Refresh() != "ref-2" {
		t.Error("new pair not persisted")
	}

	// Rescheduled against the new token's lifetime.
	clk.Advance(60 * time.Minute)
	if calls != 2 {
		t.Errorf("calls after reschedule window = %d, want 2", calls)
	}
}

func TestRefresher_ImmediateWhenInsideThreshold(t *testing.T) {
	clk, store := newRefreshFixture(t)
	store.Save(tokenstore.Credentials{
		AccessToken:  signedTokenExpiring(t, clk.Now().Add(2*time.Minute)),
		RefreshToken: "ref-1",
	})

	calls := 0
	r := NewRefresher(clk, store, func(context.Context, string) (*TokenPair, error) {
		calls++
		return &TokenPair{
			AccessToken:  signedTokenExpiring(t, clk.Now().Add(time.Hour)),
			RefreshToken: "ref-2",
		}, nil
	})
	r.Start()

	if calls != 1 {
		t.Errorf("token inside threshold must refresh on Start: calls = %d", calls)
	}
}

func TestRefresher_FailureClearsCredentials(t *testing.T) {
	clk, store := newRefreshFixture(t)
	store.Save(tokenstore.Credentials{
		AccessToken:  signedTokenExpiring(t, clk.Now().Add(10*time.Minute)),
		RefreshToken: "ref-1",
	})

	r := NewRefresher(clk, store, func(context.Context, string) (*TokenPair, error) {
		return nil, errors.New("exchange failed")
	})
	r.Start()

	clk.Advance(5 * time.Minute)
	if store.Access() != "" || store.Refresh() != "" {
		t.Error("dead credentials must be cleared on terminal failure")
	}
}

func TestRefresher_StopCancelsSchedule(t *testing.T) {
	clk, store := newRefreshFixture(t)
	store.Save(tokenstore.Credentials{
		AccessToken:  signedTokenExpiring(t, clk.Now().Add(time.Hour)),
		RefreshToken: "ref-1",
	})

	calls := 0
	r := NewRefresher(clk, store, func(context.Context, string) (*TokenPair, error) {
		calls++
		return nil, errors.New("should not run")
	})
	r.Start()
	r.Stop()

	clk.Advance(2 * time.Hour)
	if calls != 0 {
		t.Errorf("refresh ran after Stop: calls = %d", calls)
	}
}

func TestRefresher_CheckNowOutsideThresholdReschedules(t *testing.T) {
	clk, store := newRefreshFixture(t)
	store.Save(tokenstore.Credentials{
		AccessToken:  signedTokenExpiring(t, clk.Now().Add(time.Hour)),
		RefreshToken: "ref-1",
	})

	calls := 0
	r := NewRefresher(clk, store, func(context.Context, string) (*TokenPair, error) {
		calls++
		return &TokenPair{
			AccessToken:  signedTokenExpiring(t, clk.Now().Add(time.Hour)),
			RefreshToken: "ref-2",
		}, nil
	})

	r.CheckNow()
	if calls != 0 {
		t.Fatal("healthy token must not refresh on CheckNow")
	}

	// The check armed the schedule; it fires at expiry minus threshold.
	clk.Advance(55 * time.Minute)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRefresher_NoTokenIsQuiet(t *testing.T) {
	clk, store := newRefreshFixture(t)

	calls := 0
	r := NewRefresher(clk, store, func(context.Context, string) (*TokenPair, error) {
		calls++
		return nil, nil
	})
	r.Start()
	r.CheckNow()

	clk.Advance(time.Hour)
	if calls != 0 {
		t.Errorf("refresh ran with no stored token: calls = %d", calls)
	}
}
