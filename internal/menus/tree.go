package menus

import "sort"

// Build turns a flat menu list into a forest. Only enabled menus are kept;
// a disabled menu hides its whole subtree, and menus whose parent is not in
// the enabled set are unreachable and dropped. Siblings are ordered by
// DisplayOrder, ties keeping input order.
func Build(list []Menu) []Node {
	children := make(map[string][]Menu, len(list))
	var roots []Menu
	for _, m := range list {
		if !m.Enabled {
			continue
		}
		if m.IsRoot() {
			roots = append(roots, m)
			continue
		}
		children[m.ParentID] = append(children[m.ParentID], m)
	}
	return attach(roots, children)
}

func attach(group []Menu, children map[string][]Menu) []Node {
	if len(group) == 0 {
		return []Node{}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].DisplayOrder < group[j].DisplayOrder
	})
	nodes := make([]Node, 0, len(group))
	for _, m := range group {
		nodes = append(nodes, Node{Menu: m, Children: attach(children[m.ID], children)})
	}
	return nodes
}

// Flatten walks the forest depth-first and returns every node's menu.
func Flatten(forest []Node) []Menu {
	var out []Menu
	var walk func([]Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			out = append(out, n.Menu)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}
