// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import "context"

// # User Data Access

// Repository defines the data access contract for user accounts.
//
// Lookups on absent rows return [ErrNotFound], never a zero-value user.
type Repository interface {

	/*
		Create persists a brand-new user.

		Returns:
		  - error: ErrEmailInUse / ErrUsernameInUse on unique violation
	*/
	Create(context context.Context, user *User) error

	// FindByID returns the user with the given identifier.
	FindByID(context context.Context, id string) (*User, error)

	// FindByUsername returns the user with the given username.
	FindByUsername(context context.Context, username string) (*User, error)

	// FindByEmail returns the user with the given email.
	FindByEmail(context context.Context, email string) (*User, error)

	// EmailExists reports whether any user already owns email.
	EmailExists(context context.Context, email string) (bool, error)

	// UsernameExists reports whether any user already owns username.
	UsernameExists(context context.Context, username string) (bool, error)

	/*
		UpdatePassword replaces the stored hash only if it still equals expectedHash.

		Returns:
		  - bool: false if the hash changed concurrently (nothing written)
	*/
	UpdatePassword(context context.Context, userID, expectedHash, newHash string) (bool, error)

	// UpdateSecret replaces the verification secret.
	UpdateSecret(context context.Context, userID, secret string) error

	/*
		MarkVerified sets verified=true and rotates the secret in one write,
		guarded by the secret that was presented.

		Returns:
		  - bool: false if the secret no longer matches (nothing written)
	*/
	MarkVerified(context context.Context, userID, presentedSecret, newSecret string) (bool, error)
}
