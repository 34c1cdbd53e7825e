package repository

import (
	"context"
	"database/sql"

	"github.com/adisurya/hr-admin-api/internal/model"
	"github.com/adisurya/hr-admin-api/internal/rbac"
)

type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// LoadTree reads the full menu table and assembles the hierarchy in
// memory. Rows arrive ordered by id so child lists are already in
// stable pre-sort order; final ordering by order_id happens in the
// pure tree builder, not here.
func (r *MenuRepo) LoadTree(ctx context.Context) ([]*rbac.MenuNode, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, parent_id, name, url, icon, is_has_child, is_active, is_show, order_id, permission_id
		 FROM menus ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[uint64]*rbac.MenuNode{}
	var ordered []*rbac.MenuNode
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.ParentID, &m.Name, &m.URL, &m.Icon,
			&m.IsHasChild, &m.IsActive, &m.IsShow, &m.OrderID, &m.PermissionID); err != nil {
			return nil, err
		}
		n := &rbac.MenuNode{Menu: m}
		byID[m.ID] = n
		ordered = append(ordered, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var roots []*rbac.MenuNode
	for _, n := range ordered {
		if n.Menu.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.Menu.ParentID]
		if !ok {
			// Orphaned row; skip rather than fail the whole tree.
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots, nil
}
