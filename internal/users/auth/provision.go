// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/permission"
)

// AdminAccount describes the optional administrator created at bootstrap.
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

/*
Provision seeds the permission catalog and the default groups, then creates
admin (verified, in Administrators) unless admin is nil.

Every step is idempotent: an existing administrator is left untouched and
simply re-added to the group.
*/
func Provision(
	context context.Context,
	accounts *account.Service,
	permissions *permission.Service,
	admin *AdminAccount,
	logger *slog.Logger,
) error {
	if _, err := permissions.CreateDefaultPermissions(context); err != nil {
		return err
	}
	if err := permissions.CreateDefaultGroups(context); err != nil {
		return err
	}

	if admin == nil {
		return nil
	}

	user, err := accounts.FindByUsername(context, admin.Username)
	switch {
	case errors.Is(err, account.ErrNotFound):
		user, err = accounts.CreateUser(context, admin.Username, admin.Email, admin.Password, true)
		if err != nil {
			return fmt.Errorf("auth_provision_admin_failed: %w", err)
		}
		logger.InfoContext(context, "admin_account_created", slog.String("user_id", user.ID))
	case err != nil:
		return fmt.Errorf("auth_provision_admin_failed: %w", err)
	default:
		logger.InfoContext(context, "admin_account_exists", slog.String("user_id", user.ID))
	}

	if err := permissions.AddToGroup(context, user.ID, permission.GroupAdministrators); err != nil {
		return fmt.Errorf("auth_provision_admin_failed: %w", err)
	}
	return nil
}
