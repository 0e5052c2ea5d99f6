// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/memstore"
	"github.com/HacMan137/BackSite/internal/users/permission"
)

func TestProvision_Idempotent(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memstore.New()

	accounts := account.NewService(store.Accounts())
	permissions := permission.NewService(store.Permissions(), logger)
	admin := &auth.AdminAccount{Username: "admin", Email: "admin@example.com", Password: "change-me-now"}

	for run := 0; run < 2; run++ {
		require.NoError(t, auth.Provision(ctx, accounts, permissions, admin, logger))
	}

	user, err := accounts.Authenticate(ctx, "admin", "change-me-now")
	require.NoError(t, err, "the administrator is created verified")

	granted, err := permissions.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, permission.DefaultPermissions, granted.Names())
}

func TestProvision_WithoutAdmin(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memstore.New()

	accounts := account.NewService(store.Accounts())
	permissions := permission.NewService(store.Permissions(), logger)

	require.NoError(t, auth.Provision(ctx, accounts, permissions, nil, logger))

	inUse, err := accounts.UsernameInUse(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, inUse)
}
