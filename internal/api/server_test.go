// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HacMan137/BackSite/internal/api"
	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/config"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/memstore"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

type acceptAll struct{}

func (acceptAll) Enqueue(ctx context.Context, command jobs.Command, params map[string]any, queue string) bool {
	return true
}

func newServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memstore.New()

	sessions := session.NewManager(store.Sessions(), logger)
	permissions := permission.NewService(store.Permissions(), logger)
	service := auth.NewService(account.NewService(store.Accounts()), sessions, permissions, acceptAll{}, logger)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)
	cfg := &config.Config{ServerPort: "0", CORSOrigins: []string{"*"}}

	server := api.NewServer(cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		User:      auth.NewHandler(service, sessions, permissions, constants.DefaultSessionTTL, false),
	})
	return server.Handler()
}

func TestServer_Routes(t *testing.T) {
	handler := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"liveness", http.MethodGet, "/health", "", http.StatusOK},
		{"readiness_without_checks", http.MethodGet, "/ready", "", http.StatusOK},
		{"register", http.MethodPost, "/api/user", `{"username":"alice","email":"alice@example.com","password":"password1"}`, http.StatusCreated},
		{"me_requires_session", http.MethodGet, "/api/user", "", http.StatusUnauthorized},
		{"unknown_route", http.MethodGet, "/api/nothing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, recorder.Code)
			assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
		})
	}
}
