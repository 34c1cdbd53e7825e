package model

// Menu is one node of the hierarchical navigation structure stored
// in the `menus` table. Nodes self-reference through ParentID; a
// node is optionally gated by a single permission.
//
// Fields:
//  ID           – primary key, also the stable pre-sort identifier.
//  ParentID     – parent node, nil for top-level entries.
//  Name         – display title.
//  URL          – frontend route path.
//  Icon         – icon identifier for the frontend.
//  IsHasChild   – the node is a branch; branches with no visible
//                 children after filtering are pruned entirely.
//  IsActive     – inactive nodes are never shown.
//  IsShow       – visibility hint passed through to the frontend.
//  OrderID      – explicit sibling ordering, ascending.
//  PermissionID – gating permission, nil when the node is ungated.
type Menu struct {
	ID           uint64  // menus.id
	ParentID     *uint64 // menus.parent_id (nullable)
	Name         string  // menus.name
	URL          string  // menus.url
	Icon         string  // menus.icon
	IsHasChild   bool    // menus.is_has_child
	IsActive     bool    // menus.is_active
	IsShow       bool    // menus.is_show
	OrderID      int     // menus.order_id
	PermissionID *uint64 // menus.permission_id (nullable)
}
