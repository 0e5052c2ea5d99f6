// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package permission resolves effective authorization from direct grants and
group memberships, and seeds the default catalog.

# Model

A permission is a named capability; a group is a named bundle of permissions.
Names are the identity of both. A user's effective set is the union of the
permissions granted to them directly and the permissions of every group they
belong to. Groups do not nest.
*/
package permission

import (
	"encoding/json"
	"errors"
	"sort"
)

// # Catalog

// Permission names shipped with the default catalog.
const (
	ModifyUserInformation = "ModifyUserInformation"
	ModifyUserPermissions = "ModifyUserPermissions"
	DeleteUser            = "DeleteUser"
	CreatePost            = "CreatePost"
	DeletePost            = "DeletePost"
	Comment               = "Comment"
)

// Group names shipped with the default catalog.
const (
	GroupAdministrators = "Administrators"
	GroupModerators     = "Moderators"
	GroupStandardUsers  = "Standard Users"
)

// DefaultPermissions is the fixed permission catalog seeded at provisioning.
var DefaultPermissions = []string{
	ModifyUserInformation,
	ModifyUserPermissions,
	DeleteUser,
	CreatePost,
	DeletePost,
	Comment,
}

// GroupDefinition maps a group name to the permissions it bundles.
type GroupDefinition struct {
	Name        string
	Permissions []string
}

// DefaultGroups is the fixed group catalog seeded at provisioning.
var DefaultGroups = []GroupDefinition{
	{Name: GroupAdministrators, Permissions: DefaultPermissions},
	{Name: GroupModerators, Permissions: []string{ModifyUserInformation, DeleteUser, CreatePost, DeletePost, Comment}},
	{Name: GroupStandardUsers, Permissions: []string{CreatePost, Comment}},
}

// # Permission Set

// Set is an unordered collection of permission names.
type Set map[string]struct{}

// NewSet builds a set; duplicates collapse.
func NewSet(names ...string) Set {
	set := make(Set, len(names))
	set.Add(names...)
	return set
}

// Add inserts names into the set.
func (set Set) Add(names ...string) {
	for _, name := range names {
		set[name] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (set Set) Has(name string) bool {
	_, ok := set[name]
	return ok
}

// Names returns the members sorted, for stable output.
func (set Set) Names() []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the set as a sorted array.
func (set Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.Names())
}

// # Domain Errors

var (
	ErrUnknownPermission = errors.New("permission: unknown permission")
	ErrUnknownGroup      = errors.New("permission: unknown group")
)
