// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// # Session Data Access

// Repository defines the data access contract for sessions.
type Repository interface {

	/*
		Create persists a new session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures (including a token collision)
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByToken returns the session holding token, expired or not.

		Returns:
		  - *Session: Hydrated entity
		  - error: ErrNotFound or database errors
	*/
	FindByToken(context context.Context, token string) (*Session, error)

	// Delete removes a single session. It reports whether a row was removed.
	Delete(context context.Context, userID, token string) (bool, error)

	// DeleteByUser removes every session of userID and returns how many were removed.
	DeleteByUser(context context.Context, userID string) (int64, error)

	// DeleteExpired removes every session whose expiration is at or before now.
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}
