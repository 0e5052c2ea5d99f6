// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Authenticated Principal

// Principal is the identity attached to a request once its session token has
// been validated and its effective permissions resolved.
//
// It is rebuilt on every request from storage; nothing here is trusted from the client.
type Principal struct {
	UserID       string
	SessionToken string

	// Permissions is the effective permission set (direct grants plus group grants).
	Permissions map[string]struct{}
}

// Has reports whether the principal holds the named permission.
func (principal *Principal) Has(permission string) bool {
	if principal == nil {
		return false
	}
	_, ok := principal.Permissions[permission]
	return ok
}

// HasAll reports whether every permission in required is held. An empty list is always satisfied.
func (principal *Principal) HasAll(required ...string) bool {
	for _, permission := range required {
		if !principal.Has(permission) {
			return false
		}
	}
	return true
}
