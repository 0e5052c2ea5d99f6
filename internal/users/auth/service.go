// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth orchestrates the identity use cases exposed over HTTP.

It composes the credential store, the session manager, the permission
resolver and the job producer. None of those know about each other; this
package is the only place where, for example, a password change is followed
by revoking every session.

Architecture:

  - Service: use cases (Register, Login, Verify, ChangePassword, ...).
  - Handler: chi routes, request schemas and cookie handling.

Every error leaving [Service] is an [apperr.AppError] or an internal failure
that the transport answers with 500.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/apperr"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

// # Contracts

// Enqueuer publishes out-of-band commands. Implemented by [jobs.Producer].
type Enqueuer interface {
	Enqueue(context context.Context, command jobs.Command, params map[string]any, queue string) bool
}

// # Client-facing Errors

var (
	errEmailInUse        = apperr.Conflict("Email is already in use")
	errUsernameInUse     = apperr.Conflict("Username is already taken")
	errAlreadyVerified   = apperr.Conflict("Account is already verified")
	errUnknownPermission = apperr.ValidationError("Unknown permission")
	errUnknownGroup      = apperr.ValidationError("Unknown group")

	errSessionNotFound = &apperr.AppError{
		Code:       "NOT_FOUND",
		Message:    "Couldn't find a session",
		HTTPStatus: http.StatusNotFound,
	}
)

// Service implements the identity use cases.
type Service struct {
	accounts    *account.Service
	sessions    *session.Manager
	permissions *permission.Service
	enqueuer    Enqueuer
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	accounts *account.Service,
	sessions *session.Manager,
	permissions *permission.Service,
	enqueuer Enqueuer,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:    accounts,
		sessions:    sessions,
		permissions: permissions,
		enqueuer:    enqueuer,
		logger:      logger,
	}
}

// # Registration

// RegisterInput holds the data required to enroll a new user.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register creates an unverified account and queues its verification email.

Description: The in-use checks are advisory; the storage constraint is the
real guard and its violation is mapped to the same Conflict. New accounts
join the standard users group when it has been seeded.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *account.User: Created entity. Non-nil even when the email could not be queued.
  - error: Conflict, BackendUnavailable (account already committed) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*account.User, error) {
	inUse, err := service.accounts.EmailInUse(context, input.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}
	if inUse {
		return nil, errEmailInUse
	}

	inUse, err = service.accounts.UsernameInUse(context, input.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}
	if inUse {
		return nil, errUsernameInUse
	}

	user, err := service.accounts.NewUser(input.Username, input.Email, input.Password, false)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	if err := service.accounts.Create(context, user); err != nil {
		switch {
		case errors.Is(err, account.ErrEmailInUse):
			return nil, errEmailInUse
		case errors.Is(err, account.ErrUsernameInUse):
			return nil, errUsernameInUse
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	if err := service.permissions.AddToGroup(context, user.ID, permission.GroupStandardUsers); err != nil {
		service.logger.WarnContext(context, "register_default_group_skipped",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID))

	// The account stays committed even if the email cannot be queued.
	if !service.enqueueVerification(context, user) {
		return user, apperr.BackendUnavailable()
	}

	return user, nil
}

/*
ResendVerification queues another verification email for an unverified user.

It is the retry path for a registration that answered "try again later", so it
authenticates with username and password instead of a session: an unverified
account cannot hold one. A failed check is the generic Unauthorized.
*/
func (service *Service) ResendVerification(context context.Context, username, password string) error {
	user, err := service.accounts.CheckPassword(context, username, password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		return apperr.Unauthorized(apperr.MsgUnauthorized)
	}
	if err != nil {
		return err
	}

	if user.Verified {
		return errAlreadyVerified
	}

	if !service.enqueueVerification(context, user) {
		return apperr.BackendUnavailable()
	}
	return nil
}

func (service *Service) enqueueVerification(context context.Context, user *account.User) bool {
	params := jobs.VerificationEmailParams{
		Username: user.Username,
		Email:    user.Email,
		Secret:   user.Secret,
	}
	return service.enqueuer.Enqueue(context, jobs.CommandSendVerificationEmail, params.Map(), constants.QueueEmailJobs)
}

// # Sessions

/*
Login checks credentials and issues a session.

Unknown users, unverified users and wrong passwords are indistinguishable.
*/
func (service *Service) Login(context context.Context, username, password string) (*account.User, *session.Session, error) {
	user, err := service.accounts.Authenticate(context, username, password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		return nil, nil, apperr.Unauthorized(apperr.MsgUnauthorized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	issued, err := service.sessions.Issue(context, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID))
	return user, issued, nil
}

// Logout deletes the session holding token.
func (service *Service) Logout(context context.Context, token string) error {
	deleted, err := service.sessions.RevokeToken(context, token)
	if err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	if !deleted {
		return errSessionNotFound
	}
	return nil
}

/*
Verify completes email verification and signs the user in.

Both the password and the emailed secret must match. The secret is rotated
in the same write, so a verification link works exactly once.
*/
func (service *Service) Verify(context context.Context, username, password, secret string) (*account.User, *session.Session, error) {
	user, err := service.accounts.Verify(context, username, password, secret)
	if errors.Is(err, account.ErrInvalidCredentials) {
		return nil, nil, apperr.Unauthorized(apperr.MsgUnauthorized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	issued, err := service.sessions.Issue(context, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_verified", slog.String("user_id", user.ID))
	return user, issued, nil
}

// # Credentials

/*
ChangePassword replaces the password and signs the user out everywhere.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized on a wrong old password (nothing changes), or storage errors
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.findUser(context, userID)
	if err != nil {
		return err
	}

	changed, err := service.accounts.ChangePassword(context, user, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}
	if !changed {
		return apperr.Unauthorized(apperr.MsgUnauthorized)
	}

	revoked, err := service.sessions.RevokeAll(context, user.ID)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_password_changed",
		slog.String("user_id", user.ID),
		slog.Int64("sessions_revoked", revoked),
	)
	return nil
}

// # Profile

// Profile is the authenticated user's view of themselves.
type Profile struct {
	User        account.View   `json:"user"`
	Permissions permission.Set `json:"permissions"`
	Groups      []string       `json:"groups"`
}

// Me returns the profile of userID with its effective permissions.
func (service *Service) Me(context context.Context, userID string) (*Profile, error) {
	user, err := service.findUser(context, userID)
	if err != nil {
		return nil, err
	}

	granted, err := service.permissions.EffectivePermissions(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_me_failed: %w", err)
	}

	groups, err := service.permissions.Groups(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_me_failed: %w", err)
	}
	if groups == nil {
		groups = []string{}
	}

	return &Profile{User: user.View(), Permissions: granted, Groups: groups}, nil
}

// # Administration

// GrantPermission gives the named user a direct permission.
func (service *Service) GrantPermission(context context.Context, username, name string) error {
	user, err := service.findUserByName(context, username)
	if err != nil {
		return err
	}

	if err := service.permissions.Grant(context, user.ID, name); err != nil {
		if errors.Is(err, permission.ErrUnknownPermission) {
			return errUnknownPermission
		}
		return fmt.Errorf("auth_service_grant_failed: %w", err)
	}

	service.logger.InfoContext(context, "permission_granted",
		slog.String("user_id", user.ID),
		slog.String("permission", name),
	)
	return nil
}

// JoinGroup places the named user in group.
func (service *Service) JoinGroup(context context.Context, username, group string) error {
	user, err := service.findUserByName(context, username)
	if err != nil {
		return err
	}

	if err := service.permissions.AddToGroup(context, user.ID, group); err != nil {
		if errors.Is(err, permission.ErrUnknownGroup) {
			return errUnknownGroup
		}
		return fmt.Errorf("auth_service_join_group_failed: %w", err)
	}

	service.logger.InfoContext(context, "group_joined",
		slog.String("user_id", user.ID),
		slog.String("group", group),
	)
	return nil
}

// # Helpers

func (service *Service) findUser(context context.Context, userID string) (*account.User, error) {
	user, err := service.accounts.FindByID(context, userID)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_find_user_failed: %w", err)
	}
	return user, nil
}

func (service *Service) findUserByName(context context.Context, username string) (*account.User, error) {
	user, err := service.accounts.FindByUsername(context, username)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_find_user_failed: %w", err)
	}
	return user, nil
}
