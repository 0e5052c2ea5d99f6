// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for user identities.

# Schema Table Mapping
  - users.account: identity, salted hash, verification state and secret.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HacMan137/BackSite/internal/platform/database/schema"
	"github.com/HacMan137/BackSite/internal/platform/dberr"
	"github.com/HacMan137/BackSite/pkg/uuid"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the account store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectUser is the shared projection for every single-row lookup.
var selectUser = fmt.Sprintf(`
	SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
	FROM %s`,
	schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Username,
	schema.UserAccount.PasswordHash, schema.UserAccount.Salt, schema.UserAccount.Verified,
	schema.UserAccount.Secret, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
)

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrEmailInUse / ErrUsernameInUse on unique violation, or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Username,
		schema.UserAccount.PasswordHash, schema.UserAccount.Salt, schema.UserAccount.Verified,
		schema.UserAccount.Secret, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Salt,
		user.Verified,
		user.Secret,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if constraint, ok := dberr.UniqueViolation(err); ok {
			return uniqueError(constraint)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a user record by its identifier.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	// A malformed id can never match a UUID column.
	if !uuid.Valid(id) {
		return nil, ErrNotFound
	}
	return repository.findOne(context, "find_by_id", schema.UserAccount.ID, id)
}

// FindByUsername retrieves a user record by its unique username.
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, "find_by_username", schema.UserAccount.Username, username)
}

// FindByEmail retrieves a user record by its unique email.
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, "find_by_email", schema.UserAccount.Email, email)
}

// EmailExists reports whether a user already owns email.
func (repository *PostgresRepository) EmailExists(context context.Context, email string) (bool, error) {
	return repository.exists(context, "email_exists", schema.UserAccount.Email, email)
}

// UsernameExists reports whether a user already owns username.
func (repository *PostgresRepository) UsernameExists(context context.Context, username string) (bool, error) {
	return repository.exists(context, "username_exists", schema.UserAccount.Username, username)
}

/*
UpdatePassword swaps the password hash with an optimistic check on the old hash.

Returns:
  - bool: false when no row matched (hash changed concurrently)
  - error: Database execution failure
*/
func (repository *PostgresRepository) UpdatePassword(context context.Context, userID, expectedHash, newHash string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2`,
		schema.UserAccount.Table,
		schema.UserAccount.PasswordHash, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.PasswordHash,
	)

	tag, err := repository.pool.Exec(context, query, userID, expectedHash, newHash)
	if err != nil {
		return false, fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// UpdateSecret replaces the verification secret.
func (repository *PostgresRepository) UpdateSecret(context context.Context, userID, secret string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Secret, schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
	)

	tag, err := repository.pool.Exec(context, query, userID, secret)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_secret_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

/*
MarkVerified flips verified=true and rotates the secret in one statement.

The WHERE clause on the presented secret makes a replayed or raced secret a no-op.
*/
func (repository *PostgresRepository) MarkVerified(context context.Context, userID, presentedSecret, newSecret string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE, %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2`,
		schema.UserAccount.Table,
		schema.UserAccount.Verified, schema.UserAccount.Secret, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Secret,
	)

	tag, err := repository.pool.Exec(context, query, userID, presentedSecret, newSecret)
	if err != nil {
		return false, fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// # Helpers

func (repository *PostgresRepository) findOne(context context.Context, operation, column string, value any) (*User, error) {
	query := selectUser + fmt.Sprintf(" WHERE %s = $1", column)

	user := &User{}
	err := repository.pool.QueryRow(context, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Salt,
		&user.Verified,
		&user.Secret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", operation, err)
	}

	// CHAR(128) pads; hashes are always full length but trim anyway.
	user.PasswordHash = strings.TrimSpace(user.PasswordHash)

	return user, nil
}

func (repository *PostgresRepository) exists(context context.Context, operation, column string, value any) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.UserAccount.Table, column)

	var found bool
	if err := repository.pool.QueryRow(context, query, value).Scan(&found); err != nil {
		return false, fmt.Errorf("postgres_user_repo_%s_failed: %w", operation, err)
	}

	return found, nil
}

// uniqueError maps a violated constraint to the matching domain error.
func uniqueError(constraint string) error {
	switch constraint {
	case schema.UserAccountEmailKey:
		return ErrEmailInUse
	case schema.UserAccountUsernameKey:
		return ErrUsernameInUse
	default:
		return fmt.Errorf("postgres_user_repo_create_failed: unexpected unique constraint %q", constraint)
	}
}
