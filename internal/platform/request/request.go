// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, the session
credential carriers and common body decoding patterns.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/HacMan137/BackSite/internal/platform/apperr"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/platform/ctxutil"
	"github.com/HacMan137/BackSite/internal/platform/sec"
)

// maxBodyBytes caps the size of a decoded request body.
const maxBodyBytes = 1 << 20

// ErrInvalidJSON is returned when the request body is not a JSON object.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

/*
DecodeObject reads the request body as a single JSON object.

Returns:
  - map[string]any: The decoded fields (numbers are float64, as in encoding/json)
  - error: ErrInvalidJSON if the body is empty, malformed or not an object
*/
func DecodeObject(request *http.Request) (map[string]any, error) {
	var object map[string]any

	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(&object); err != nil {
		return nil, ErrInvalidJSON
	}

	// "null" decodes without error into a nil map.
	if object == nil {
		return nil, ErrInvalidJSON
	}

	return object, nil
}

/*
DecodeJSON reads the request body and decodes it into the target structure.
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes)).Decode(target); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
SessionToken extracts the opaque session token from the credential carrier.

The httpOnly session cookie wins; non-browser clients may instead send
"Authorization: Bearer <token>". Returns "" when neither is present.
*/
func SessionToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := request.Header.Get(constants.HeaderAuthorization)
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}

/*
Principal extracts the authenticated principal from the request context.

Returns nil if the request did not pass through the authorization guard.
*/
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns its principal.

Returns:
  - *sec.Principal: The authenticated principal
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized(apperr.MsgUnauthorized)
	}
	return principal, nil
}

// IsInvalidJSON reports whether err came from body decoding.
func IsInvalidJSON(err error) bool {
	return errors.Is(err, ErrInvalidJSON)
}
