// Package rbac holds the pure access-control logic: turning resolved
// permission rows into a lookup set and filtering the menu hierarchy
// against it. Nothing in this package touches the database; callers
// load rows through the repository layer and hand them in.
package rbac

import "github.com/adisurya/hr-admin-api/internal/model"

// PermissionSet is a lookup set keyed by permission identity.
type PermissionSet map[uint64]struct{}

// NewPermissionSet collapses resolved permission rows into a set,
// deduplicating by ID. A nil or empty slice yields an empty set; a
// user with no role simply sees nothing gated.
func NewPermissionSet(perms []model.Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p.ID] = struct{}{}
	}
	return set
}

// Has reports whether the permission identified by id is granted.
func (s PermissionSet) Has(id uint64) bool {
	_, ok := s[id]
	return ok
}

// Allows applies the menu gating rule: an absent gate means "no
// permission required", which is not the same as denied.
func (s PermissionSet) Allows(gate *uint64) bool {
	if gate == nil {
		return true
	}
	return s.Has(*gate)
}
