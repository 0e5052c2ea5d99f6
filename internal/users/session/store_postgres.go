// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HacMan137/BackSite/internal/platform/database/schema"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the session store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new session into users.session.
func (repository *PostgresRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		schema.UserSession.Table,
		schema.UserSession.UserID, schema.UserSession.Token, schema.UserSession.Expiration,
	)

	if _, err := repository.pool.Exec(context, query, session.UserID, session.Token, session.Expiration); err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByToken retrieves a session by its token.

Returns:
  - *Session: Hydrated entity (possibly already expired)
  - error: ErrNotFound or database execution failure
*/
func (repository *PostgresRepository) FindByToken(context context.Context, token string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.UserSession.UserID, schema.UserSession.Token, schema.UserSession.Expiration,
		schema.UserSession.Table, schema.UserSession.Token,
	)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, token).Scan(&session.UserID, &session.Token, &session.Expiration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres_session_repo_find_by_token_failed: %w", err)
	}

	return session, nil
}

// Delete removes one session by its composite key.
func (repository *PostgresRepository) Delete(context context.Context, userID, token string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserSession.Table, schema.UserSession.UserID, schema.UserSession.Token,
	)

	tag, err := repository.pool.Exec(context, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("postgres_session_repo_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteByUser removes every session belonging to userID.
func (repository *PostgresRepository) DeleteByUser(context context.Context, userID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.UserID)

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_by_user_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteExpired physically removes sessions whose expiration is at or before now.
func (repository *PostgresRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, schema.UserSession.Table, schema.UserSession.Expiration)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}
