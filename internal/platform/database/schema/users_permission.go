package schema

// UserPermissionTable represents the 'users.permission' table
type UserPermissionTable struct {
	Table string
	Name  string
}

// UserPermission is the schema definition for users.permission
var UserPermission = UserPermissionTable{
	Table: "users.permission",
	Name:  "name",
}

// UserGroupTable represents the 'users.accessgroup' table
type UserGroupTable struct {
	Table string
	Name  string
}

// UserGroup is the schema definition for users.accessgroup
var UserGroup = UserGroupTable{
	Table: "users.accessgroup",
	Name:  "name",
}

// UserGrantTable represents the 'users.accountpermission' join table
type UserGrantTable struct {
	Table      string
	UserID     string
	Permission string
}

// UserGrant is the schema definition for users.accountpermission
var UserGrant = UserGrantTable{
	Table:      "users.accountpermission",
	UserID:     "userid",
	Permission: "permission",
}

// UserMembershipTable represents the 'users.accountgroup' join table
type UserMembershipTable struct {
	Table  string
	UserID string
	Group  string
}

// UserMembership is the schema definition for users.accountgroup
var UserMembership = UserMembershipTable{
	Table:  "users.accountgroup",
	UserID: "userid",
	Group:  "groupname",
}

// GroupGrantTable represents the 'users.grouppermission' join table
type GroupGrantTable struct {
	Table      string
	Group      string
	Permission string
}

// GroupGrant is the schema definition for users.grouppermission
var GroupGrant = GroupGrantTable{
	Table:      "users.grouppermission",
	Group:      "groupname",
	Permission: "permission",
}
