// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/permission"
)

func newRouter(f fixture) http.Handler {
	handler := auth.NewHandler(f.service, f.sessions, f.permissions, constants.DefaultSessionTTL, false)
	router := chi.NewRouter()
	router.Mount("/api/user", handler.Routes())
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string, cookie *http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	response := recorder.Result()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	return response, decoded
}

func sessionCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	return nil
}

/*
TestHTTP_UserLifecycle drives register → verify → me → logout over HTTP.
*/
func TestHTTP_UserLifecycle(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	response, body := do(t, router, http.MethodPost, "/api/user",
		`{"username":"alice","email":"alice@example.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusCreated, response.StatusCode)
	assert.Equal(t, true, body["success"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, false, user["verified"])
	assert.NotContains(t, user, "secret")
	assert.NotContains(t, user, "salt")

	response, body = do(t, router, http.MethodPost, "/api/user/session",
		`{"username":"alice","password":"password1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "Unauthorized", body["msg"])

	verifyBody := `{"username":"alice","password":"password1","secret":"` + f.enqueuer.lastSecret(t) + `"}`
	response, _ = do(t, router, http.MethodPost, "/api/user/verify", verifyBody, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)

	cookie := sessionCookie(response)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int((14 * 24 * time.Hour).Seconds()), cookie.MaxAge)

	response, body = do(t, router, http.MethodGet, "/api/user", "", cookie)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.ElementsMatch(t, []any{permission.Comment, permission.CreatePost}, body["permissions"])
	assert.Equal(t, true, body["user"].(map[string]any)["verified"])

	response, body = do(t, router, http.MethodDelete, "/api/user/session", "", cookie)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, true, body["success"])
	cleared := sessionCookie(response)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	response, body = do(t, router, http.MethodDelete, "/api/user/session", "", cookie)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "Couldn't find a session", body["msg"])

	response, _ = do(t, router, http.MethodGet, "/api/user", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestHTTP_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing_username", `{"email":"a@b.com","password":"password1"}`, "Missing required key username"},
		{"wrong_type", `{"username":7,"email":"a@b.com","password":"password1"}`, "Expected username to be of type string"},
		{"bad_email", `{"username":"alice","email":"not-an-email","password":"password1"}`, "email must be a valid email address"},
		{"short_password", `{"username":"alice","email":"a@b.com","password":"short"}`, "password must be at least 8 characters"},
		{"not_an_object", `[1,2,3]`, "Invalid JSON payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, body := do(t, router, http.MethodPost, "/api/user", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["msg"])
		})
	}

	assert.Empty(t, f.enqueuer.sent)
}

/*
TestHTTP_RegisterBrokerDown_ThenResend recovers an account whose verification
email could not be queued: register answers 503, the user re-queues the email
with their credentials, verifies and logs in.
*/
func TestHTTP_RegisterBrokerDown_ThenResend(t *testing.T) {
	f := newFixture(t)
	f.enqueuer.down = true
	router := newRouter(f)

	credentials := `{"username":"alice","password":"password1"}`

	// 1. Account committed, email not queued
	response, body := do(t, router, http.MethodPost, "/api/user",
		`{"username":"alice","email":"alice@example.com","password":"password1"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode)
	assert.Equal(t, "Unable to communicate with backend services. Please try again later.", body["msg"])

	_, err := f.accounts.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	// 2. Unverified, so no session can be obtained
	response, _ = do(t, router, http.MethodPost, "/api/user/session", credentials, nil)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Nil(t, sessionCookie(response))

	// 3. Resend needs no session; a bad password is the generic 401
	response, body = do(t, router, http.MethodPost, "/api/user/verification",
		`{"username":"alice","password":"password2"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "Unauthorized", body["msg"])

	// 4. Broker still down
	response, _ = do(t, router, http.MethodPost, "/api/user/verification", credentials, nil)
	assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode)
	assert.Empty(t, f.enqueuer.sent)

	// 5. Broker back
	f.enqueuer.down = false
	response, body = do(t, router, http.MethodPost, "/api/user/verification", credentials, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, true, body["success"])
	require.Len(t, f.enqueuer.sent, 1)

	// 6. Verify with the queued secret, then log in
	verifyBody := `{"username":"alice","password":"password1","secret":"` + f.enqueuer.lastSecret(t) + `"}`
	response, _ = do(t, router, http.MethodPost, "/api/user/verify", verifyBody, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)

	response, _ = do(t, router, http.MethodPost, "/api/user/session", credentials, nil)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotNil(t, sessionCookie(response))

	// 7. Nothing left to resend
	response, _ = do(t, router, http.MethodPost, "/api/user/verification", credentials, nil)
	assert.Equal(t, http.StatusConflict, response.StatusCode)
}

func TestHTTP_ChangePassword(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)
	f.registerVerified(t, "alice", "password1")

	response, _ := do(t, router, http.MethodPost, "/api/user/session", `{"username":"alice","password":"password1"}`, nil)
	cookie := sessionCookie(response)
	require.NotNil(t, cookie)

	response, _ = do(t, router, http.MethodPut, "/api/user/password",
		`{"old_password":"password1","new_password":"password2"}`, cookie)
	require.Equal(t, http.StatusOK, response.StatusCode)

	// Every session, including this one, is gone.
	response, _ = do(t, router, http.MethodGet, "/api/user", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	response, _ = do(t, router, http.MethodPost, "/api/user/session", `{"username":"alice","password":"password2"}`, nil)
	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func TestHTTP_AdminRoutesRequirePermission(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)
	ctx := context.Background()

	f.registerVerified(t, "alice", "password1")
	f.registerVerified(t, "root", "password1")
	require.NoError(t, f.service.JoinGroup(ctx, "root", permission.GroupAdministrators))

	login := func(username string) *http.Cookie {
		response, _ := do(t, router, http.MethodPost, "/api/user/session",
			`{"username":"`+username+`","password":"password1"}`, nil)
		require.Equal(t, http.StatusOK, response.StatusCode)
		return sessionCookie(response)
	}

	tests := []struct {
		name   string
		cookie *http.Cookie
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"missing_permission", login("alice"), http.StatusUnauthorized},
		{"administrator", login("root"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, body := do(t, router, http.MethodPost, "/api/user/alice/groups", `{"group":"Moderators"}`, tt.cookie)
			assert.Equal(t, tt.status, response.StatusCode)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", body["msg"])
			}
		})
	}

	response, _ := do(t, router, http.MethodPost, "/api/user/alice/permissions", `{"permission":"DeleteUser"}`, login("root"))
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, body := do(t, router, http.MethodPost, "/api/user/alice/permissions", `{"permission":"Nope"}`, login("root"))
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "Unknown permission", body["msg"])
}
