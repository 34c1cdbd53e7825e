package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adisurya/hr-admin-api/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

const roleColumns = "id,name,description,role_group,is_active,created_at,updated_at"

// GetByID fetches a role regardless of its active flag. Grant
// toggles go through it: an inactive role still owns its grants.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var ro model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id=? LIMIT 1", id).
		Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Group, &ro.IsActive, &ro.CreatedAt, &ro.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ro, ErrNotFound
	}
	return ro, err
}

// ListActive returns all active roles ordered by id, for role
// pickers and the role-management screen.
func (r *RoleRepo) ListActive(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE is_active=1 ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Group, &ro.IsActive, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	return roles, rows.Err()
}

// UpsertGrant inserts or updates one role_permissions row. The
// ON DUPLICATE KEY form relies on the (role_id, permission_id)
// unique key, so toggling a grant's active flag is one atomic
// statement. Role and permission existence are verified first so an
// unknown reference reports ErrNotFound instead of a foreign-key
// failure.
func (r *RoleRepo) UpsertGrant(ctx context.Context, grant model.RoleGrant) error {
	if _, err := r.GetByID(ctx, grant.RoleID); err != nil {
		return err
	}
	var one int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM permissions WHERE id=? LIMIT 1", grant.PermissionID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission_id, is_active)
		 VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE is_active=VALUES(is_active)`,
		grant.RoleID, grant.PermissionID, grant.IsActive)
	return err
}

// ActiveGrants returns the active permission grants of a role with
// their module names joined in, for the role-management listing.
func (r *RoleRepo) ActiveGrants(ctx context.Context, roleID uint64) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name, p.module_id, m.id, m.name
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id AND rp.role_id = ? AND rp.is_active = 1
		 LEFT JOIN modules m ON m.id = p.module_id
		 WHERE p.is_active = 1
		 ORDER BY p.id ASC`,
		roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissionRows(rows)
}
