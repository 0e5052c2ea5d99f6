// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/memstore"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

type enqueued struct {
	command jobs.Command
	params  map[string]any
	queue   string
}

// fakeEnqueuer records commands; down simulates an unreachable broker.
type fakeEnqueuer struct {
	mu   sync.Mutex
	down bool
	sent []enqueued
}

func (enqueuer *fakeEnqueuer) Enqueue(ctx context.Context, command jobs.Command, params map[string]any, queue string) bool {
	enqueuer.mu.Lock()
	defer enqueuer.mu.Unlock()
	if enqueuer.down {
		return false
	}
	enqueuer.sent = append(enqueuer.sent, enqueued{command: command, params: params, queue: queue})
	return true
}

func (enqueuer *fakeEnqueuer) lastSecret(t *testing.T) string {
	t.Helper()
	enqueuer.mu.Lock()
	defer enqueuer.mu.Unlock()
	require.NotEmpty(t, enqueuer.sent)
	secret, ok := enqueuer.sent[len(enqueuer.sent)-1].params["secret"].(string)
	require.True(t, ok)
	return secret
}

type fixture struct {
	service     *auth.Service
	accounts    *account.Service
	sessions    *session.Manager
	permissions *permission.Service
	store       *memstore.Store
	enqueuer    *fakeEnqueuer
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memstore.New()

	accounts := account.NewService(store.Accounts())
	sessions := session.NewManager(store.Sessions(), logger)
	permissions := permission.NewService(store.Permissions(), logger)

	_, err := permissions.CreateDefaultPermissions(context.Background())
	require.NoError(t, err)
	require.NoError(t, permissions.CreateDefaultGroups(context.Background()))

	enqueuer := &fakeEnqueuer{}

	return fixture{
		service:     auth.NewService(accounts, sessions, permissions, enqueuer, logger),
		accounts:    accounts,
		sessions:    sessions,
		permissions: permissions,
		store:       store,
		enqueuer:    enqueuer,
	}
}

// registerVerified registers username and completes verification.
func (f fixture) registerVerified(t *testing.T, username, password string) *account.User {
	t.Helper()
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: username, Email: username + "@example.com", Password: password})
	require.NoError(t, err)

	user, _, err := f.service.Verify(ctx, username, password, f.enqueuer.lastSecret(t))
	require.NoError(t, err)
	return user
}
