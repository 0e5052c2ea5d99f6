// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session issues, validates and expires opaque session tokens.

# Lifecycle

A session is ACTIVE from issuance until its expiration passes, at which point
it is EXPIRED (never stored as a status, only derived from the clock). It is
DELETED on logout, on password change (all of the user's sessions) or when a
sweep removes it.

Every [Manager.Validate] call sweeps all expired sessions in the table; there
is no background timer. [Manager.Sweep] runs the same pass on demand.
*/
package session

import (
	"errors"
	"time"
)

// Session binds an opaque token to a user until Expiration.
type Session struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"-"`
	Expiration time.Time `json:"expiration"`
}

// Expired reports whether the session is no longer valid at now.
func (session *Session) Expired(now time.Time) bool {
	return !now.Before(session.Expiration)
}

// ErrNotFound is returned by repositories when no session has the token.
var ErrNotFound = errors.New("session: not found")
