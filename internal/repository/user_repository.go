package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,phone,address,photo,password_hash,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Address, &u.Photo,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts a user with a freshly hashed password, assigns the
// default role and returns the new ID. Email is normalized to lower
// case so the unique index also covers case variants.
func (r *UserRepo) Create(ctx context.Context, email, password, name string, phone *string, defaultRoleID uint64, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, name, phone, password_hash) VALUES (?,?,?,?)",
		email, name, phone, hash)
	if err != nil {
		// 1062 = duplicate entry on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?,?)",
		id, defaultRoleID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Soft-deleted
// (inactive) users are still returned; the login handler rejects
// them the same way it rejects a bad password.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_active=1 LIMIT 1", id))
}

// List returns one page of active users ordered by newest first,
// with the total row count for pagination. An optional search term
// filters on name.
func (r *UserRepo) List(ctx context.Context, page, pageSize int, search string) ([]model.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	where := "WHERE is_active=1"
	args := []interface{}{}
	if search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(id) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Address, &u.Photo,
			&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UserUpdate carries the optional fields of an edit request. Nil
// fields are left untouched.
type UserUpdate struct {
	Name     *string
	Phone    *string
	Address  *string
	IsActive *bool
	RoleID   *uint64
}

// Update applies a partial update and, when RoleID is set, replaces
// the user's role assignment inside the same transaction.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	set := []string{}
	args := []interface{}{}
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Phone != nil {
		set = append(set, "phone=?")
		args = append(args, *upd.Phone)
	}
	if upd.Address != nil {
		set = append(set, "address=?")
		args = append(args, *upd.Address)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(set) > 0 {
		args = append(args, id)
		res, err := tx.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(set, ",")+" WHERE id=?", args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// The row may exist with identical values; confirm presence.
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrNotFound
				}
				return err
			}
		}
	}
	if upd.RoleID != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM user_roles WHERE user_id=?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role_id) VALUES (?,?)", id, *upd.RoleID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PrimaryRole returns the user's first assigned role, or ErrNotFound
// for a user with no role. Callers that tolerate roleless users must
// handle the sentinel.
func (r *UserRepo) PrimaryRole(ctx context.Context, userID uint64) (model.Role, error) {
	var ro model.Role
	err := r.DB.QueryRowContext(ctx,
		`SELECT r.id, r.name, r.description, r.role_group, r.is_active, r.created_at, r.updated_at
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.id ASC LIMIT 1`,
		userID).Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Group, &ro.IsActive, &ro.CreatedAt, &ro.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ro, ErrNotFound
	}
	return ro, err
}
