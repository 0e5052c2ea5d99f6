// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// The storage layer's unique constraints are the actual guard for username and
// email uniqueness; this package is where a lost race surfaces as a 409.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HacMan137/BackSite/internal/platform/apperr"
)

// SQLSTATE codes inspected by [Wrap].
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// UniqueViolation reports whether err is a unique-constraint violation and, if
// so, the name of the violated constraint.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == codeUniqueViolation {
		return pgError.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == codeForeignKeyViolation
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// Parameters:
//   - err: the raw driver error (nil passes through)
//   - resource: the entity name used for NOT_FOUND and CONFLICT messages
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Unique constraint lost a race
	if _, ok := UniqueViolation(err); ok {
		conflict := apperr.Conflict(resource + " already exists")
		conflict.Cause = err
		return conflict
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
