// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import "context"

// Repository defines the data access contract for permissions, groups and
// the three relationship tables.
type Repository interface {

	// DirectPermissions returns the names granted to userID directly.
	DirectPermissions(context context.Context, userID string) ([]string, error)

	// GroupPermissions returns the names reachable through userID's groups. Duplicates are allowed.
	GroupPermissions(context context.Context, userID string) ([]string, error)

	// UserGroups returns the names of the groups userID belongs to.
	UserGroups(context context.Context, userID string) ([]string, error)

	/*
		EnsurePermissions inserts the names, ignoring ones that already exist.

		Returns:
		  - int64: How many rows were actually inserted
	*/
	EnsurePermissions(context context.Context, names ...string) (int64, error)

	/*
		EnsureGroup inserts the group if missing and links it to every listed
		permission that exists. Existing links are left alone.
	*/
	EnsureGroup(context context.Context, name string, permissions []string) error

	// GrantToUser links a permission to a user. Re-granting is a no-op.
	GrantToUser(context context.Context, userID, permission string) error

	// AddUserToGroup links a user to a group. Re-adding is a no-op.
	AddUserToGroup(context context.Context, userID, group string) error
}
