package rbac

import (
	"sort"

	"github.com/adisurya/hr-admin-api/internal/model"
)

// MenuNode is one node of the in-memory menu hierarchy as loaded
// from the store, before any permission filtering. Children hold
// the full child set regardless of visibility.
type MenuNode struct {
	Menu     model.Menu
	Children []*MenuNode
}

// MenuItem is the external display shape of a visible menu node.
// Sub is either a []MenuItem for branch nodes or the literal false
// for childless ones, matching what the frontend consumes.
type MenuItem struct {
	ID     uint64      `json:"id"`
	Title  string      `json:"title"`
	Path   string      `json:"path"`
	Icon   string      `json:"icon"`
	IsShow bool        `json:"is_show"`
	Sub    interface{} `json:"sub"`
}

// BuildMenuTree runs the three-stage transformation over the loaded
// hierarchy: expand (filter by active flag and permission gate, with
// children pre-sorted by ID for determinism), prune (drop branch
// nodes whose filtered child list came out empty), and shape (order
// siblings by the explicit order field and project into MenuItem).
func BuildMenuTree(roots []*MenuNode, set PermissionSet) []MenuItem {
	return shape(prune(expand(roots, set)))
}

// expand walks the hierarchy and keeps a node only if it is active
// and its gate (when present) is in the permission set. It returns
// fresh nodes so the input tree is never mutated. Siblings are
// sorted by ID before recursion so the intermediate tree is
// deterministic independent of input order.
func expand(nodes []*MenuNode, set PermissionSet) []*MenuNode {
	if len(nodes) == 0 {
		return nil
	}
	sorted := make([]*MenuNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Menu.ID < sorted[j].Menu.ID })

	var out []*MenuNode
	for _, n := range sorted {
		if !n.Menu.IsActive || !set.Allows(n.Menu.PermissionID) {
			continue
		}
		out = append(out, &MenuNode{
			Menu:     n.Menu,
			Children: expand(n.Children, set),
		})
	}
	return out
}

// prune is a post-order pass that drops any node flagged as a branch
// whose filtered child list is empty. Leaves and non-empty branches
// survive.
func prune(nodes []*MenuNode) []*MenuNode {
	var out []*MenuNode
	for _, n := range nodes {
		if n.Menu.IsHasChild {
			n.Children = prune(n.Children)
			if len(n.Children) == 0 {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// shape reorders siblings by the explicit order field, ascending,
// with ties broken by the stable pre-sort (ID) order, and projects
// each node into the display schema. Childless nodes carry the
// false sentinel in Sub.
func shape(nodes []*MenuNode) []MenuItem {
	if len(nodes) == 0 {
		return nil
	}
	sorted := make([]*MenuNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Menu.OrderID < sorted[j].Menu.OrderID })

	out := make([]MenuItem, 0, len(sorted))
	for _, n := range sorted {
		item := MenuItem{
			ID:     n.Menu.ID,
			Title:  n.Menu.Name,
			Path:   n.Menu.URL,
			Icon:   n.Menu.Icon,
			IsShow: n.Menu.IsShow,
			Sub:    false,
		}
		if len(n.Children) > 0 {
			item.Sub = shape(n.Children)
		}
		out = append(out, item)
	}
	return out
}
