package repository

import (
	"context"
	"database/sql"

	"github.com/adisurya/hr-admin-api/internal/model"
)

type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// ResolveForUser computes the user's permission set: walk the
// assigned roles, keep only active roles and active grant rows, and
// deduplicate by permission identity. A user with no role, or with
// only inactive roles, resolves to an empty slice, not an error.
func (r *PermissionRepo) ResolveForUser(ctx context.Context, userID uint64) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.name, p.module_id, m.id, m.name
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id AND rp.is_active = 1
		 JOIN roles ro ON ro.id = rp.role_id AND ro.is_active = 1
		 JOIN user_roles ur ON ur.role_id = ro.id AND ur.user_id = ?
		 LEFT JOIN modules m ON m.id = p.module_id
		 WHERE p.is_active = 1
		 ORDER BY p.id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissionRows(rows)
}

// scanPermissionRows reads permission rows with optional joined
// module columns. Shared with RoleRepo.ActiveGrants.
func scanPermissionRows(rows *sql.Rows) ([]model.Permission, error) {
	var perms []model.Permission
	for rows.Next() {
		var p model.Permission
		var modID sql.NullInt64
		var modName sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.ModuleID, &modID, &modName); err != nil {
			return nil, err
		}
		p.IsActive = true // the queries filter on p.is_active = 1
		if modID.Valid {
			p.Module = &model.Module{ID: uint64(modID.Int64), Name: modName.String}
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
