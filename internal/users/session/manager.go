// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/platform/sec"
)

// Manager implements the session use cases on top of a [Repository].
type Manager struct {
	repository Repository
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes a [Manager].
type Option func(*Manager)

// WithTTL overrides the default 14-day lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(manager *Manager) {
		if ttl > 0 {
			manager.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(manager *Manager) {
		manager.now = now
	}
}

// NewManager constructs a new [Manager].
func NewManager(repository Repository, logger *slog.Logger, options ...Option) *Manager {
	manager := &Manager{
		repository: repository,
		ttl:        constants.DefaultSessionTTL,
		now:        time.Now,
		logger:     logger,
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// TTL returns the lifetime applied to new sessions.
func (manager *Manager) TTL() time.Duration {
	return manager.ttl
}

/*
Issue creates a session for userID expiring one TTL from now.

The token is 128 bits from crypto/rand rendered as hex.
*/
func (manager *Manager) Issue(context context.Context, userID string) (*Session, error) {
	token, err := sec.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("session_manager_issue_failed: %w", err)
	}

	session := &Session{
		UserID:     userID,
		Token:      token,
		Expiration: manager.now().UTC().Add(manager.ttl),
	}

	if err := manager.repository.Create(context, session); err != nil {
		return nil, fmt.Errorf("session_manager_issue_failed: %w", err)
	}

	return session, nil
}

/*
Validate resolves token to a live session.

As a side effect every expired session in storage is swept. The looked-up
session is judged against the clock independently of the sweep, so an
expired token is never returned even if it was not yet deleted.

Returns:
  - *Session: The live session, or nil when the token is unknown or expired
  - error: Storage failures only
*/
func (manager *Manager) Validate(context context.Context, token string) (*Session, error) {
	session, err := manager.repository.FindByToken(context, token)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("session_manager_validate_failed: %w", err)
	}

	now := manager.now()
	if _, sweepErr := manager.sweep(context, now); sweepErr != nil {
		// The lookup already succeeded; a failed sweep is retried on the next call.
		manager.logger.WarnContext(context, "session_sweep_failed", slog.Any("error", sweepErr))
	}

	if session == nil || session.Expired(now) {
		return nil, nil
	}

	return session, nil
}

// Revoke deletes a single session.
func (manager *Manager) Revoke(context context.Context, session *Session) error {
	if _, err := manager.repository.Delete(context, session.UserID, session.Token); err != nil {
		return fmt.Errorf("session_manager_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeToken deletes the session holding token.

Returns:
  - bool: false when no session holds the token
*/
func (manager *Manager) RevokeToken(context context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	session, err := manager.repository.FindByToken(context, token)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session_manager_revoke_failed: %w", err)
	}

	deleted, err := manager.repository.Delete(context, session.UserID, session.Token)
	if err != nil {
		return false, fmt.Errorf("session_manager_revoke_failed: %w", err)
	}

	return deleted, nil
}

// RevokeAll deletes every session of userID. Called on password change.
func (manager *Manager) RevokeAll(context context.Context, userID string) (int64, error) {
	removed, err := manager.repository.DeleteByUser(context, userID)
	if err != nil {
		return 0, fmt.Errorf("session_manager_revoke_all_failed: %w", err)
	}
	return removed, nil
}

// Sweep deletes every expired session and returns how many were removed.
func (manager *Manager) Sweep(context context.Context) (int64, error) {
	return manager.sweep(context, manager.now())
}

func (manager *Manager) sweep(context context.Context, now time.Time) (int64, error) {
	removed, err := manager.repository.DeleteExpired(context, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("session_manager_sweep_failed: %w", err)
	}

	if removed > 0 {
		manager.logger.DebugContext(context, "session_sweep_completed", slog.Int64("removed", removed))
	}

	return removed, nil
}
