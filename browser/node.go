// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: browser/node.go
// Summary: Generic ordered tree with per-node expansion, linearized into
// visible lines for the hierarchical browsers.

package browser

import "fmt"

// Node is a tree node with an optional entry. A node without an entry is a
// container: it draws no line of its own but shows its children when expanded.
type Node[E fmt.Stringer] struct {
	Entry    E
	HasEntry bool
	Expanded bool
	Children []*Node[E]
}

// NewNode returns a collapsed node carrying entry.
func NewNode[E fmt.Stringer](entry E, children ...*Node[E]) *Node[E] {
	return &Node[E]{Entry: entry, HasEntry: true, Children: children}
}

// NewRoot returns an expanded container node.
func NewRoot[E fmt.Stringer](children ...*Node[E]) *Node[E] {
	return &Node[E]{Expanded: true, Children: children}
}

// IsParent reports whether the node has children.
func (n *Node[E]) IsParent() bool {
	return len(n.Children) > 0
}

// String returns the entry's display text, or "" for containers.
func (n *Node[E]) String() string {
	if !n.HasEntry {
		return ""
	}
	return n.Entry.String()
}

// VisibleLen is the number of lines the subtree occupies when rendered.
func (n *Node[E]) VisibleLen() int {
	l := 0
	if n.HasEntry {
		l = 1
	}
	if n.Expanded {
		for _, c := range n.Children {
			l += c.VisibleLen()
		}
	}
	return l
}

// PathAt returns the path of the i-th visible line below n, or an empty path
// when i is past the end.
func (n *Node[E]) PathAt(i int) Path {
	if i < 0 {
		return nil
	}
	for ci, c := range n.Children {
		cl := c.VisibleLen()
		if i == 0 {
			return Path{ci}
		}
		if i < cl {
			return append(Path{ci}, c.PathAt(i-1)...)
		}
		i -= cl
	}
	return nil
}

// PathsIn collects the paths of lines [lo, hi). With condense, a path contained
// by the previously emitted one is skipped.
func (n *Node[E]) PathsIn(lo, hi int, condense bool) []Path {
	var paths []Path
	for i := lo; i < hi; i++ {
		p := n.PathAt(i)
		if condense && len(paths) > 0 && paths[len(paths)-1].Contains(p) {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// NodeAt walks p from n. An empty or dangling path yields nil.
func (n *Node[E]) NodeAt(p Path) *Node[E] {
	if len(p) == 0 {
		return nil
	}
	cur := n
	for _, idx := range p {
		if idx < 0 || idx >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[idx]
	}
	return cur
}

// Parent returns the node holding the last element of p, and that index.
func (n *Node[E]) Parent(p Path) (*Node[E], int) {
	if len(p) == 0 {
		return nil, -1
	}
	if len(p) == 1 {
		return n, p[0]
	}
	parent := n.NodeAt(p[:len(p)-1])
	if parent == nil {
		return nil, -1
	}
	return parent, p[len(p)-1]
}

// FullName lists the entry strings along p, starting with n's own entry.
func (n *Node[E]) FullName(p Path) []string {
	var name []string
	cur := n
	for i := 0; ; i++ {
		if cur.HasEntry {
			name = append(name, cur.Entry.String())
		}
		if i >= len(p) || p[i] < 0 || p[i] >= len(cur.Children) {
			break
		}
		cur = cur.Children[p[i]]
	}
	return name
}

// Walk visits every node below n depth first, passing its path.
func (n *Node[E]) Walk(fn func(p Path, node *Node[E])) {
	var rec func(prefix Path, node *Node[E])
	rec = func(prefix Path, node *Node[E]) {
		for i, c := range node.Children {
			p := append(prefix.Clone(), i)
			fn(p, c)
			rec(p, c)
		}
	}
	rec(nil, n)
}
