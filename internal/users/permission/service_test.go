// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/users/memstore"
	"github.com/HacMan137/BackSite/internal/users/permission"
)

func seededService(t *testing.T) *permission.Service {
	t.Helper()
	ctx := context.Background()

	service := permission.NewService(memstore.New().Permissions(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := service.CreateDefaultPermissions(ctx)
	require.NoError(t, err)
	require.NoError(t, service.CreateDefaultGroups(ctx))

	return service
}

/*
TestEffectivePermissions_Union covers combinations of direct grants and memberships.
*/
func TestEffectivePermissions_Union(t *testing.T) {
	tests := []struct {
		name   string
		direct []string
		groups []string
		want   []string
	}{
		{"nothing", nil, nil, []string{}},
		{"direct_only", []string{permission.DeletePost}, nil, []string{permission.DeletePost}},
		{"group_only", nil, []string{permission.GroupStandardUsers}, []string{permission.Comment, permission.CreatePost}},
		{
			"overlap_collapses",
			[]string{permission.Comment, permission.DeletePost},
			[]string{permission.GroupStandardUsers},
			[]string{permission.Comment, permission.CreatePost, permission.DeletePost},
		},
		{
			"two_groups",
			nil,
			[]string{permission.GroupStandardUsers, permission.GroupModerators},
			[]string{permission.Comment, permission.CreatePost, permission.DeletePost, permission.DeleteUser, permission.ModifyUserInformation},
		},
		{
			"administrators",
			nil,
			[]string{permission.GroupAdministrators},
			[]string{
				permission.Comment, permission.CreatePost, permission.DeletePost,
				permission.DeleteUser, permission.ModifyUserInformation, permission.ModifyUserPermissions,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := seededService(t)
			ctx := context.Background()

			for _, name := range tt.direct {
				require.NoError(t, service.Grant(ctx, "user-1", name))
			}
			for _, group := range tt.groups {
				require.NoError(t, service.AddToGroup(ctx, "user-1", group))
			}

			set, err := service.EffectivePermissions(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Names())
		})
	}
}

/*
TestSeed_Idempotent re-runs provisioning without creating duplicates.
*/
func TestSeed_Idempotent(t *testing.T) {
	service := seededService(t)
	ctx := context.Background()

	created, err := service.CreateDefaultPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), created)
	require.NoError(t, service.CreateDefaultGroups(ctx))

	require.NoError(t, service.AddToGroup(ctx, "user-1", permission.GroupModerators))
	set, err := service.EffectivePermissions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, set, 5)
}

/*
TestCatalog_SeparateEntries guards against fused catalog names.
*/
func TestCatalog_SeparateEntries(t *testing.T) {
	assert.Len(t, permission.DefaultPermissions, 6)
	assert.Contains(t, permission.DefaultPermissions, permission.ModifyUserPermissions)
	assert.Contains(t, permission.DefaultPermissions, permission.DeleteUser)
	assert.NotContains(t, permission.DefaultPermissions, "ModifyUserPermissionsDeleteUser")
}

/*
TestGrant_UnknownNames rejects names outside the catalogs.
*/
func TestGrant_UnknownNames(t *testing.T) {
	service := seededService(t)
	ctx := context.Background()

	assert.ErrorIs(t, service.Grant(ctx, "user-1", "Teleport"), permission.ErrUnknownPermission)
	assert.ErrorIs(t, service.AddToGroup(ctx, "user-1", "Wizards"), permission.ErrUnknownGroup)
}

/*
TestSet_MarshalJSON renders a sorted array.
*/
func TestSet_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(permission.NewSet("b", "a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))
}
