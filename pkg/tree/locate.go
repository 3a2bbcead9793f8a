package tree

import (
	"errors"
	"strings"
)

// ErrNotFound returned when no node in the tree satisfies the predicate
var ErrNotFound = errors.New("no matching list found")

// Predicate decides if a node is the one a search is looking for
type Predicate func(n *Node) bool

// HasKeys matches a non-empty list of maps whose first element contains all the keys
func HasKeys(keys ...string) Predicate {
	return func(n *Node) bool {
		if n == nil || n.Kind != KindList || len(n.items) == 0 {
			return false
		}
		for _, it := range n.items {
			if it == nil || it.Kind != KindMap {
				return false
			}
		}
		return n.items[0].Has(keys...)
	}
}

// Locate walks the tree breadth-first starting from root and returns the first node matching
// the predicate. Map values are visited in key order, list items in index order.
func Locate(root *Node, match Predicate) (*Node, error) {
	if root == nil {
		return nil, ErrNotFound
	}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if match(n) {
			return n, nil
		}
		queue = append(queue, n.Children()...)
	}
	return nil, ErrNotFound
}

// Lookup resolves a dot-separated path like "appState.loader.dataByRouteId.*.catalogArticles".
// The "*" segment expands to every map value or list item, so a path can resolve to many nodes.
// Numeric segments index lists.
func Lookup(root *Node, path string) []*Node {
	if root == nil {
		return nil
	}
	current := []*Node{root}
	if path == "" {
		return current
	}
	for _, seg := range strings.Split(path, ".") {
		next := make([]*Node, 0, len(current))
		for _, n := range current {
			switch {
			case seg == "*":
				next = append(next, n.Children()...)
			case n.Kind == KindMap:
				if child := n.Get(seg); child != nil {
					next = append(next, child)
				}
			case n.Kind == KindList:
				if idx, ok := listIndex(seg, len(n.items)); ok {
					next = append(next, n.items[idx])
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Collect resolves every path and concatenates items of all resolved lists matching the predicate.
// Paths are processed in order, duplicated lists (the same node reached by two paths) are taken once.
func Collect(root *Node, paths []string, match Predicate) []*Node {
	var res []*Node
	seen := map[*Node]bool{}
	for _, p := range paths {
		for _, n := range Lookup(root, p) {
			if seen[n] || !match(n) {
				continue
			}
			seen[n] = true
			res = append(res, n.items...)
		}
	}
	return res
}

func listIndex(seg string, size int) (int, bool) {
	idx := 0
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
		idx = idx*10 + int(c-'0')
		if idx >= size {
			return 0, false
		}
	}
	return idx, true
}
