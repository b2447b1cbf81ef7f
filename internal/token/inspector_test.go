// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signedToken builds a real HS256 token expiring at exp.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	raw, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

// rawToken assembles header.payload.signature from literal JSON segments,
// for shapes the jwt builder refuses to produce.
func rawToken(header, payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(header)) + "." + enc([]byte(payload)) + ".c2ln"
}

func TestInspect_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c := Inspect(signedToken(t, exp))

	if c.Invalid {
		t.Fatal("valid token reported invalid")
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, exp)
	}
}

func TestInspect_FailClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"bad base64", "a!b.c!d.e!f"},
		{"missing exp", rawToken(`{"alg":"HS256","typ":"JWT"}`, `{"sub":"user-1"}`)},
		{"non-numeric exp", rawToken(`{"alg":"HS256","typ":"JWT"}`, `{"exp":"tomorrow"}`)},
		{"payload not json", rawToken(`{"alg":"HS256","typ":"JWT"}`, `hello`)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Inspect(tc.raw)
			if !c.Invalid {
				t.Errorf("Inspect(%q).Invalid = false, want true", tc.raw)
			}
			if !c.ExpiredAt(time.Now()) {
				t.Error("invalid claims must read as expired")
			}
			if c.TimeUntilExpiry(time.Now()) != 0 {
				t.Error("invalid claims must have zero time until expiry")
			}
		})
	}
}

func TestClaims_ExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Claims{ExpiresAt: now.Add(time.Minute)}

	if c.ExpiredAt(now) {
		t.Error("token expiring in 1m should not be expired now")
	}
	if !c.ExpiredAt(now.Add(time.Minute)) {
		t.Error("token should be expired exactly at its expiry instant")
	}
	if !c.ExpiredAt(now.Add(2 * time.Minute)) {
		t.Error("token should be expired past its expiry instant")
	}
}

func TestClaims_TimeUntilExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Claims{ExpiresAt: now.Add(5 * time.Minute)}

	if got := c.TimeUntilExpiry(now); got != 5*time.Minute {
		t.Errorf("TimeUntilExpiry = %v, want 5m", got)
	}
	if got := c.TimeUntilExpiry(now.Add(time.Hour)); got != 0 {
		t.Errorf("TimeUntilExpiry past expiry = %v, want 0", got)
	}
}

func TestShouldRefresh(t *testing.T) {
	now := time.Now()
	threshold := 5 * time.Minute

	fresh := signedToken(t, now.Add(time.Hour))
	if ShouldRefresh(fresh, threshold, now) {
		t.Error("token with 1h left should not need refresh")
	}

	closing := signedToken(t, now.Add(3*time.Minute))
	if !ShouldRefresh(closing, threshold, now) {
		t.Error("token with 3m left should need refresh")
	}

	expired := signedToken(t, now.Add(-time.Minute))
	if ShouldRefresh(expired, threshold, now) {
		t.Error("expired token cannot be refreshed proactively")
	}

	if ShouldRefresh("garbage", threshold, now) {
		t.Error("invalid token cannot be refreshed")
	}
}
