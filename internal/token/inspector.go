// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token inspects bearer tokens for their expiry claim.
//
// The client never verifies signatures; the backend issued the token and the
// only question the session core asks is "when does it expire". Anything the
// parser cannot make sense of is reported as invalid, and invalid is always
// treated downstream as already expired.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// CLAIMS
// =============================================================================

// Claims is the read-only view of a bearer token the session core consumes.
type Claims struct {
	// ExpiresAt is the token expiry instant. Zero when Invalid.
	ExpiresAt time.Time

	// Invalid marks a token that could not be parsed or carries no usable
	// expiry claim. Fail closed: invalid means expired.
	Invalid bool
}

// ExpiredAt reports whether the claims are expired at the given instant.
// Invalid claims are always expired.
func (c Claims) ExpiredAt(now time.Time) bool {
	if c.Invalid {
		return true
	}
	return !now.Before(c.ExpiresAt)
}

// TimeUntilExpiry returns how long until the token expires at the given
// instant. Returns 0 for invalid or already-expired claims.
func (c Claims) TimeUntilExpiry(now time.Time) time.Duration {
	if c.Invalid {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// =============================================================================
// INSPECTOR
// =============================================================================

var parser = jwt.NewParser()

// Inspect decodes the expiry claim of a raw bearer token. Pure and
// synchronous; no I/O, no signature verification.
//
// A malformed token, a missing exp claim, or a non-numeric exp all yield
// Claims{Invalid: true}.
func Inspect(raw string) Claims {
	if raw == "" {
		return Claims{Invalid: true}
	}

	tok, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return Claims{Invalid: true}
	}

	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{Invalid: true}
	}

	return Claims{ExpiresAt: exp.Time}
}

// ShouldRefresh reports whether a token is close enough to expiry that a
// refresh should be attempted: still valid, but inside the threshold window.
func ShouldRefresh(raw string, threshold time.Duration, now time.Time) bool {
	c := Inspect(raw)
	if c.Invalid || c.ExpiredAt(now) {
		return false
	}
	return c.TimeUntilExpiry(now) <= threshold
}
