// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HacMan137/BackSite/internal/platform/sec"
	"github.com/HacMan137/BackSite/pkg/uuid"
)

// dummySalt and dummyHash let a lookup miss cost the same digest as a real check.
var (
	dummySalt = strings.Repeat("0", 2*sec.SaltLength)
	dummyHash = sec.CalculateSaltedHash(dummySalt, "")
)

// Service implements the credential use cases.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, verification
// or password change must keep hashes compatible with existing rows.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// # Creation

/*
NewUser builds a user with a fresh salt, salted hash and verification secret.

The user is NOT persisted; call [Service.Create] to commit it.

Returns:
  - *User: Unsaved entity
  - error: Random source failure (fatal, no user can be built without a hash)
*/
func (service *Service) NewUser(username, email, password string, verified bool) (*User, error) {
	salt, err := sec.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("account_service_salt_failed: %w", err)
	}

	secret, err := sec.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("account_service_secret_failed: %w", err)
	}

	return &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: sec.CalculateSaltedHash(salt, password),
		Salt:         salt,
		Verified:     verified,
		Secret:       secret,
	}, nil
}

// Create persists a user built by [Service.NewUser].
func (service *Service) Create(context context.Context, user *User) error {
	return service.repository.Create(context, user)
}

// CreateUser is NewUser followed by Create.
func (service *Service) CreateUser(context context.Context, username, email, password string, verified bool) (*User, error) {
	user, err := service.NewUser(username, email, password, verified)
	if err != nil {
		return nil, err
	}

	if err := service.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Lookups

// FindByID returns the user or [ErrNotFound].
func (service *Service) FindByID(context context.Context, id string) (*User, error) {
	return service.repository.FindByID(context, id)
}

// FindByUsername returns the user or [ErrNotFound].
func (service *Service) FindByUsername(context context.Context, username string) (*User, error) {
	return service.repository.FindByUsername(context, username)
}

// EmailInUse is an advisory pre-check; the unique constraint is the real guard.
func (service *Service) EmailInUse(context context.Context, email string) (bool, error) {
	return service.repository.EmailExists(context, email)
}

// UsernameInUse is an advisory pre-check; the unique constraint is the real guard.
func (service *Service) UsernameInUse(context context.Context, username string) (bool, error) {
	return service.repository.UsernameExists(context, username)
}

// # Credential Checks

/*
Authenticate checks a username and password.

Unknown users still pay for one salted digest so the miss is not
distinguishable by timing. Unverified users are rejected after the hash check.

Returns:
  - *User: The authenticated user
  - error: ErrInvalidCredentials, or a storage failure
*/
func (service *Service) Authenticate(context context.Context, username, password string) (*User, error) {
	user, err := service.CheckPassword(context, username, password)
	if err != nil {
		return nil, err
	}

	if !user.Verified {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CheckPassword looks up username and checks password, ignoring the verified
// flag. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (service *Service) CheckPassword(context context.Context, username, password string) (*User, error) {
	user, err := service.repository.FindByUsername(context, username)
	if errors.Is(err, ErrNotFound) {
		sec.CheckSaltedHash(dummySalt, password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("account_service_authenticate_failed: %w", err)
	}

	if !sec.CheckSaltedHash(user.Salt, password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

/*
ChangePassword replaces the password after checking the old one.

The salt is kept; only the hash changes. On mismatch nothing is written.
Revoking the user's sessions is the caller's responsibility.

Returns:
  - bool: true if the password was changed
*/
func (service *Service) ChangePassword(context context.Context, user *User, oldPassword, newPassword string) (bool, error) {
	if !sec.CheckSaltedHash(user.Salt, oldPassword, user.PasswordHash) {
		return false, nil
	}

	newHash := sec.CalculateSaltedHash(user.Salt, newPassword)

	updated, err := service.repository.UpdatePassword(context, user.ID, user.PasswordHash, newHash)
	if err != nil {
		return false, fmt.Errorf("account_service_change_password_failed: %w", err)
	}
	if !updated {
		return false, nil
	}

	user.PasswordHash = newHash
	return true, nil
}

// RotateSecret replaces the user's verification secret.
func (service *Service) RotateSecret(context context.Context, user *User) error {
	secret, err := sec.GenerateSecret()
	if err != nil {
		return fmt.Errorf("account_service_secret_failed: %w", err)
	}

	if err := service.repository.UpdateSecret(context, user.ID, secret); err != nil {
		return fmt.Errorf("account_service_rotate_secret_failed: %w", err)
	}

	user.Secret = secret
	return nil
}

/*
Verify marks the account verified when both the password and the
out-of-band secret match, and rotates the secret so it cannot be replayed.

Verification and rotation are a single guarded write: either both happen or
neither does.

Returns:
  - *User: The verified user
  - error: ErrInvalidCredentials, or a storage failure
*/
func (service *Service) Verify(context context.Context, username, password, presentedSecret string) (*User, error) {
	user, err := service.repository.FindByUsername(context, username)
	if errors.Is(err, ErrNotFound) {
		sec.CheckSaltedHash(dummySalt, password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("account_service_verify_failed: %w", err)
	}

	passwordOK := sec.CheckSaltedHash(user.Salt, password, user.PasswordHash)
	secretOK := sec.ConstantTimeEqual(user.Secret, presentedSecret)
	if !passwordOK || !secretOK {
		return nil, ErrInvalidCredentials
	}

	newSecret, err := sec.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("account_service_secret_failed: %w", err)
	}

	updated, err := service.repository.MarkVerified(context, user.ID, presentedSecret, newSecret)
	if err != nil {
		return nil, fmt.Errorf("account_service_verify_failed: %w", err)
	}
	if !updated {
		return nil, ErrInvalidCredentials
	}

	user.Verified = true
	user.Secret = newSecret
	return user, nil
}
