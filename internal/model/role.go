package model

import "time"

// Role is a named permission bundle. Users reference roles through
// the `user_roles` join table; a role owns permissions through
// `role_permissions`, whose rows carry their own active flag.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique role name (e.g. "HR Admin").
//  Description – human readable description of the role's purpose.
//  Group       – coarse grouping label used by the frontend (column
//                role_group; `group` is a reserved word in MySQL).
//  IsActive    – whether the role is assignable; permissions of an
//                inactive role never resolve.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Role struct {
	ID          uint64    // roles.id
	Name        string    // roles.name
	Description string    // roles.description
	Group       string    // roles.role_group
	IsActive    bool      // roles.is_active
	CreatedAt   time.Time // roles.created_at
	UpdatedAt   time.Time // roles.updated_at
}

// RoleGrant mirrors a row of the `role_permissions` join table.
// The IsActive flag gates the grant itself: a row that exists but is
// inactive contributes nothing to a user's resolved permission set.
type RoleGrant struct {
	RoleID       uint64 // role_permissions.role_id
	PermissionID uint64 // role_permissions.permission_id
	IsActive     bool   // role_permissions.is_active
}
