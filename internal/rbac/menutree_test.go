package rbac

import (
	"reflect"
	"testing"

	"github.com/adisurya/hr-admin-api/internal/model"
)

func u64(v uint64) *uint64 { return &v }

func node(id uint64, name string, order int, hasChild, active bool, gate *uint64, children ...*MenuNode) *MenuNode {
	return &MenuNode{
		Menu: model.Menu{
			ID:           id,
			Name:         name,
			URL:          "/" + name,
			Icon:         "icon-" + name,
			IsHasChild:   hasChild,
			IsActive:     active,
			IsShow:       true,
			OrderID:      order,
			PermissionID: gate,
		},
		Children: children,
	}
}

func titles(items []MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestBuildMenuTreePrunesEmptyBranches(t *testing.T) {
	// A (active, ungated branch)
	//   B (active branch, one child gated by a permission the user lacks)
	//   C (active leaf, gated by a permission the user holds)
	granted := uint64(10)
	missing := uint64(99)
	roots := []*MenuNode{
		node(1, "a", 1, true, true, nil,
			node(2, "b", 1, true, true, nil,
				node(4, "b-child", 1, false, true, &missing)),
			node(3, "c", 2, false, true, &granted)),
	}
	set := PermissionSet{granted: {}}

	tree := BuildMenuTree(roots, set)
	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	a := tree[0]
	if a.Title != "a" {
		t.Fatalf("expected root a, got %q", a.Title)
	}
	sub, ok := a.Sub.([]MenuItem)
	if !ok {
		t.Fatalf("expected nested sub list under a, got %T", a.Sub)
	}
	if got := titles(sub); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("expected b pruned and c kept, got %v", got)
	}
	if sub[0].Sub != false {
		t.Fatalf("leaf node must carry false sentinel, got %#v", sub[0].Sub)
	}
}

func TestBuildMenuTreeSiblingOrder(t *testing.T) {
	// Input deliberately shuffled; output must follow order_id
	// ascending regardless.
	roots := []*MenuNode{
		node(3, "third", 30, false, true, nil),
		node(1, "first", 10, false, true, nil),
		node(2, "second", 20, false, true, nil),
	}
	tree := BuildMenuTree(roots, PermissionSet{})
	if got := titles(tree); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("expected ascending order, got %v", got)
	}
}

func TestBuildMenuTreeOrderTiesAreStableByID(t *testing.T) {
	roots := []*MenuNode{
		node(7, "late", 5, false, true, nil),
		node(2, "early", 5, false, true, nil),
	}
	tree := BuildMenuTree(roots, PermissionSet{})
	if got := titles(tree); !reflect.DeepEqual(got, []string{"early", "late"}) {
		t.Fatalf("ties must resolve by id order, got %v", got)
	}
}

func TestBuildMenuTreeFiltering(t *testing.T) {
	granted := uint64(5)
	tests := []struct {
		name string
		n    *MenuNode
		want int
	}{
		{"active ungated included", node(1, "open", 1, false, true, nil), 1},
		{"inactive excluded", node(1, "dead", 1, false, false, nil), 0},
		{"gated present included", node(1, "ok", 1, false, true, &granted), 1},
		{"gated absent excluded", node(1, "no", 1, false, true, u64(404)), 0},
	}
	set := PermissionSet{granted: {}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := BuildMenuTree([]*MenuNode{tc.n}, set)
			if len(tree) != tc.want {
				t.Fatalf("want %d nodes, got %d", tc.want, len(tree))
			}
		})
	}
}

func TestBuildMenuTreeDoesNotMutateInput(t *testing.T) {
	child := node(2, "child", 1, false, false, nil)
	root := node(1, "root", 1, true, true, nil, child)
	BuildMenuTree([]*MenuNode{root}, PermissionSet{})
	if len(root.Children) != 1 {
		t.Fatalf("input tree was mutated: %d children", len(root.Children))
	}
}

func TestNewPermissionSet(t *testing.T) {
	perms := []model.Permission{{ID: 1}, {ID: 2}, {ID: 1}}
	set := NewPermissionSet(perms)
	if len(set) != 2 {
		t.Fatalf("expected deduplicated set of 2, got %d", len(set))
	}
	if !set.Has(1) || !set.Has(2) || set.Has(3) {
		t.Fatalf("set membership wrong: %#v", set)
	}
	empty := NewPermissionSet(nil)
	if len(empty) != 0 {
		t.Fatalf("nil perms must give empty set")
	}
	if !empty.Allows(nil) {
		t.Fatalf("absent gate must always be allowed")
	}
	if empty.Allows(u64(1)) {
		t.Fatalf("gate must be denied when not in set")
	}
}
