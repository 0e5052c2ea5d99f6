// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/apperr"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/permission"
)

/*
TestRegister_QueuesVerificationEmail checks the envelope handed to the producer.
*/
func TestRegister_QueuesVerificationEmail(t *testing.T) {
	f := newFixture(t)

	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password1",
	})
	require.NoError(t, err)
	assert.False(t, user.Verified)

	require.Len(t, f.enqueuer.sent, 1)
	sent := f.enqueuer.sent[0]
	assert.Equal(t, jobs.CommandSendVerificationEmail, sent.command)
	assert.Equal(t, constants.QueueEmailJobs, sent.queue)
	assert.Equal(t, map[string]any{"username": "alice", "email": "alice@example.com", "secret": user.Secret}, sent.params)

	groups, err := f.permissions.Groups(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{permission.GroupStandardUsers}, groups)
}

/*
TestRegister_BrokerUnreachable checks that a failed dispatch does not roll
back the account.
*/
func TestRegister_BrokerUnreachable(t *testing.T) {
	f := newFixture(t)
	f.enqueuer.down = true

	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password1",
	})

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "BACKEND_UNAVAILABLE"))
	assert.Equal(t, apperr.MsgBackendUnavailable, apperr.As(err).Message)
	require.NotNil(t, user)

	stored, err := f.accounts.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	// The retry path succeeds once the broker is back.
	f.enqueuer.down = false
	require.NoError(t, f.service.ResendVerification(context.Background(), "alice", "password1"))
	assert.Len(t, f.enqueuer.sent, 1)
}

func TestRegister_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   auth.RegisterInput
		message string
	}{
		{"email_taken", auth.RegisterInput{Username: "bob", Email: "alice@example.com", Password: "password1"}, "Email is already in use"},
		{"username_taken", auth.RegisterInput{Username: "alice", Email: "bob@example.com", Password: "password1"}, "Username is already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "CONFLICT"))
			assert.Equal(t, tt.message, apperr.As(err).Message)
		})
	}
}

/*
TestLogin_RequiresVerification walks register → failed login → verify → login.
*/
func TestLogin_RequiresVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = f.service.Login(ctx, "alice", "password1")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	verified, issued, err := f.service.Verify(ctx, "alice", "password1", f.enqueuer.lastSecret(t))
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, registered.ID, issued.UserID)

	// The secret was rotated; the same link cannot be replayed.
	_, _, err = f.service.Verify(ctx, "alice", "password1", f.enqueuer.lastSecret(t))
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	user, issued, err := f.service.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, issued.Token)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "alice", "password1")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown_user", "nobody", "password1"},
		{"wrong_password", "alice", "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.Login(context.Background(), tt.username, tt.password)
			require.Error(t, err)
			assert.Equal(t, apperr.MsgUnauthorized, apperr.As(err).Message)
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "alice", "password1")

	_, issued, err := f.service.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, issued.Token))

	err = f.service.Logout(ctx, issued.Token)
	require.Error(t, err)
	assert.Equal(t, "Couldn't find a session", apperr.As(err).Message)
}

/*
TestChangePassword_RevokesAllSessions covers both outcomes of a password change.
*/
func TestChangePassword_RevokesAllSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.registerVerified(t, "alice", "password1")

	_, second, err := f.service.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	err = f.service.ChangePassword(ctx, user.ID, "wrong-password", "password2")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	live, err := f.sessions.Validate(ctx, second.Token)
	require.NoError(t, err)
	assert.NotNil(t, live, "a rejected change keeps sessions")

	require.NoError(t, f.service.ChangePassword(ctx, user.ID, "password1", "password2"))
	assert.Zero(t, f.store.Sessions().Count())

	_, _, err = f.service.Login(ctx, "alice", "password1")
	assert.Error(t, err)

	_, _, err = f.service.Login(ctx, "alice", "password2")
	assert.NoError(t, err)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "alice", "password1")

	err := f.service.ResendVerification(context.Background(), "alice", "password1")
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestResendVerification_BadCredentials answers the generic Unauthorized and
queues nothing.
*/
func TestResendVerification_BadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown_user", "mallory", "password1"},
		{"wrong_password", "alice", "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.ResendVerification(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
			assert.Equal(t, apperr.MsgUnauthorized, apperr.As(err).Message)
		})
	}

	assert.Len(t, f.enqueuer.sent, 1, "only the registration email")
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	user := f.registerVerified(t, "alice", "password1")

	profile, err := f.service.Me(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.View(), profile.User)
	assert.Equal(t, []string{permission.Comment, permission.CreatePost}, profile.Permissions.Names())
	assert.Equal(t, []string{permission.GroupStandardUsers}, profile.Groups)
}

func TestAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.registerVerified(t, "alice", "password1")

	require.NoError(t, f.service.GrantPermission(ctx, "alice", permission.DeleteUser))
	require.NoError(t, f.service.JoinGroup(ctx, "alice", permission.GroupModerators))

	granted, err := f.permissions.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, granted.Has(permission.DeleteUser))
	assert.True(t, granted.Has(permission.DeletePost))

	tests := []struct {
		name string
		run  func() error
		code string
	}{
		{"unknown_user", func() error { return f.service.GrantPermission(ctx, "nobody", permission.DeleteUser) }, "NOT_FOUND"},
		{"unknown_permission", func() error { return f.service.GrantPermission(ctx, "alice", "FlyToTheMoon") }, "VALIDATION_ERROR"},
		{"unknown_group", func() error { return f.service.JoinGroup(ctx, "alice", "Astronauts") }, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperr.IsCode(tt.run(), tt.code))
		})
	}
}
