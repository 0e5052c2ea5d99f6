// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/HacMan137/BackSite/internal/platform/apperr"
	"github.com/HacMan137/BackSite/internal/platform/ctxutil"
	requestutil "github.com/HacMan137/BackSite/internal/platform/request"
	"github.com/HacMan137/BackSite/internal/platform/respond"
	"github.com/HacMan137/BackSite/internal/platform/sec"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

// SessionValidator resolves an opaque token to a live session, or nil.
//
// Defined here so tests can swap in an in-memory [session.Manager].
type SessionValidator interface {
	Validate(context context.Context, token string) (*session.Session, error)
}

// PermissionResolver computes a user's effective permission set.
type PermissionResolver interface {
	EffectivePermissions(context context.Context, userID string) (permission.Set, error)
}

/*
RequirePermissions guards a handler behind a valid session holding every
permission in required. An empty list admits any authenticated session.

# Flow
 1. Extract the session token from the cookie or bearer header.
 2. Validate it through [SessionValidator] (this also sweeps expired sessions).
 3. Resolve the effective permissions of the session's user.
 4. Reject with 401 "Unauthorized" if any check fails, without saying which.
 5. Otherwise attach a [sec.Principal] to the context and call next.

Storage failures during 2 or 3 are answered with 500 and logged.
*/
func RequirePermissions(sessions SessionValidator, resolver PermissionResolver, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)

			// ── 1. Credential Carrier ─────────────────────────────────────────
			token := requestutil.SessionToken(request)
			if token == "" {
				respond.Error(writer, request, apperr.Unauthorized(apperr.MsgUnauthorized))
				return
			}

			// ── 2. Session Validation ─────────────────────────────────────────
			current, err := sessions.Validate(ctx, token)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if current == nil {
				respond.Error(writer, request, apperr.Unauthorized(apperr.MsgUnauthorized))
				return
			}

			// ── 3. Permission Resolution ──────────────────────────────────────
			granted, err := resolver.EffectivePermissions(ctx, current.UserID)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			principal := &sec.Principal{
				UserID:       current.UserID,
				SessionToken: current.Token,
				Permissions:  granted,
			}

			if recorder, ok := writer.(*statusRecorder); ok {
				recorder.userID = principal.UserID
			}

			if !principal.HasAll(required...) {
				logger.WarnContext(ctx, "authz_permission_denied",
					slog.String("user_id", principal.UserID),
					slog.Any("required", required),
				)
				respond.Error(writer, request, apperr.Unauthorized(apperr.MsgUnauthorized))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireSession admits any request carrying a valid session.
func RequireSession(sessions SessionValidator, resolver PermissionResolver) func(http.Handler) http.Handler {
	return RequirePermissions(sessions, resolver)
}
