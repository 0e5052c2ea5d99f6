// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account is the credential store: user identity, the salted-hash
password scheme, uniqueness checks and the verification secret.

# Architecture

  - Entities: User and its client-safe View.
  - Repository: persistence contract implemented by Postgres and the in-memory store.
  - Service: credential checks. It never issues sessions; that is [session.Manager]'s job.

Users are never hard-deleted.
*/
package account

import (
	"errors"
	"time"
)

// # Domain Entities

// User is a registered identity.
//
// PasswordHash, Salt and Secret are never serialized.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Salt         string
	Verified     bool
	Secret       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the client-facing projection of a [User].
type View struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

// View returns the client-safe projection of the user.
func (user *User) View() View {
	return View{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Verified: user.Verified,
	}
}

// # Domain Errors

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("account: user not found")

	// ErrInvalidCredentials is the single outcome of every failed credential
	// check: unknown user, unverified user, wrong password or wrong secret.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	// ErrEmailInUse and ErrUsernameInUse are returned by Create when the
	// storage layer's unique constraint rejects the row.
	ErrEmailInUse    = errors.New("account: email already in use")
	ErrUsernameInUse = errors.New("account: username already in use")
)

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldSecret      = "secret"
	FieldOldPassword = "old_password"
	FieldNewPassword = "new_password"
	FieldUser        = "user"
)
