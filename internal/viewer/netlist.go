// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/viewer/netlist.go
// Summary: Netlist browser over the scopes and variables of the loaded
// header, narrowed by the filter pane.

package viewer

import (
	"log"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/lo"

	"github.com/framegrace/nalu/browser"
	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/bus"
	"github.com/framegrace/nalu/internal/netindex"
	"github.com/framegrace/nalu/vcd"
)

// Style is the foreground shared by the browsers and the waveform.
var Style = tcell.StyleDefault.Foreground(tcell.ColorLightCyan)

const (
	pageStep   = 20
	scrollStep = 5
)

type netItem struct {
	name     string
	path     string
	variable *vcd.Variable
}

func (n netItem) String() string { return n.name }

type netNode = browser.Node[netItem]

// Netlist lists the design hierarchy.
type Netlist struct {
	bus    *bus.Bus
	index  *netindex.Index
	header *vcd.Header
	state  *browser.State
	// full is the unfiltered tree; it keeps the user's expansion while a
	// filter is shown.
	full   *netNode
	root   *netNode
	filter browser.Filter
}

func NewNetlist(b *bus.Bus, index *netindex.Index) *Netlist {
	root := browser.NewRoot[netItem]()
	return &Netlist{
		bus:   b,
		index: index,
		state: browser.NewState(true, true, false),
		full:  root,
		root:  root,
	}
}

// Load rebuilds the tree from h. Scopes keep their expansion when a scope of
// the same name existed before.
func (n *Netlist) Load(h *vcd.Header) {
	n.header = h
	n.full = rebuildScopes(n.full, h.Scopes, "")
	n.full.Expanded = true
	if n.index != nil {
		if err := n.index.Build(h); err != nil {
			log.Printf("Netlist: index build failed: %v", err)
		}
	}
	n.applyFilter()
	n.state.SelectRelative(n.root, 0, true)
}

// findScope looks for name at the expected index first, then anywhere.
func findScope(nodes []*netNode, name string, expected int) *netNode {
	isScope := func(c *netNode) bool {
		return c.HasEntry && c.Entry.variable == nil && c.Entry.name == name
	}
	if expected < len(nodes) && isScope(nodes[expected]) {
		return nodes[expected]
	}
	c, _ := lo.Find(nodes, isScope)
	return c
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func sortNodes(nodes []*netNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return naturalLess(nodes[i].String(), nodes[j].String())
	})
}

func rebuildScopes(old *netNode, scopes []*vcd.Scope, prefix string) *netNode {
	var oldChildren []*netNode
	if old != nil {
		oldChildren = old.Children
	}
	out := browser.NewRoot[netItem]()
	for i, s := range scopes {
		out.Children = append(out.Children, rebuildScope(findScope(oldChildren, s.Name, i), s, prefix))
	}
	sortNodes(out.Children)
	return out
}

func rebuildScope(old *netNode, s *vcd.Scope, prefix string) *netNode {
	path := joinPath(prefix, s.Name)
	node := rebuildScopes(old, s.Scopes, path)
	node.Entry = netItem{name: s.Name, path: path}
	node.HasEntry = true
	node.Expanded = old != nil && old.Expanded

	vars := make([]*netNode, 0, len(s.Variables))
	for _, v := range s.Variables {
		name := v.Name
		if v.Range != "" {
			name += " " + v.Range
		}
		vars = append(vars, browser.NewNode(netItem{name: name, path: joinPath(path, v.Name), variable: v}))
	}
	sortNodes(vars)
	node.Children = append(node.Children, vars...)
	return node
}

// pruned copies t keeping variables in keep and scopes in scopes, all
// expanded.
func pruned(t *netNode, keep, scopes map[string]bool) *netNode {
	out := &netNode{Entry: t.Entry, HasEntry: t.HasEntry, Expanded: true}
	for _, c := range t.Children {
		switch {
		case c.Entry.variable != nil && keep[c.Entry.path]:
			out.Children = append(out.Children, c)
		case c.Entry.variable == nil && scopes[c.Entry.path]:
			out.Children = append(out.Children, pruned(c, keep, scopes))
		}
	}
	return out
}

func (n *Netlist) applyFilter() {
	if n.filter.Empty() || n.index == nil {
		n.root = n.full
		n.state.ClampToTree(n.root)
		return
	}
	paths, err := n.index.Query(n.filter)
	if err != nil {
		log.Printf("Netlist: filter query failed: %v", err)
		n.root = n.full
		n.state.ClampToTree(n.root)
		return
	}
	keep := lo.SliceToMap(paths, func(p string) (string, bool) { return p, true })
	n.root = pruned(n.full, keep, netindex.Scopes(paths))
	n.state.ClampToTree(n.root)
}

// SetFilter narrows the tree to variables matching text.
func (n *Netlist) SetFilter(text string) {
	n.filter = browser.ParseFilter(text)
	n.applyFilter()
}

func (n *Netlist) selectedVariables() []NetEntry {
	return lo.FilterMap(n.state.SelectedPaths(n.root, false), func(p browser.Path, _ int) (NetEntry, bool) {
		node := n.root.NodeAt(p)
		if node == nil || node.Entry.variable == nil {
			return NetEntry{}, false
		}
		return NetEntry{Path: node.Entry.path, Variable: node.Entry.variable}, true
	})
}

func (n *Netlist) toggleExpanded() {
	if node := n.root.NodeAt(n.state.PrimaryPath(n.root)); node != nil && node.IsParent() {
		node.Expanded = !node.Expanded
		n.state.ClampToTree(n.root)
	}
}

func (n *Netlist) Resize(w, h int) {
	n.state.SetHeight(h)
	n.state.ScrollRelative(n.root, 0)
}

func (n *Netlist) HandleMouse(x, y int, kind core.MouseKind) {
	switch kind {
	case core.MouseDown:
		if n.state.SelectAbsolute(n.root, y, true) {
			n.toggleExpanded()
		}
	case core.MouseScrollDown:
		n.state.SelectRelative(n.root, scrollStep, true)
	case core.MouseScrollUp:
		n.state.SelectRelative(n.root, -scrollStep, true)
	}
}

// moveKey handles the cursor keys shared by both browsers.
func moveKey(st *browser.State, t browser.Tree, ev *tcell.EventKey) bool {
	primary := ev.Modifiers()&tcell.ModShift == 0
	switch ev.Key() {
	case tcell.KeyUp:
		st.SelectRelative(t, -1, primary)
	case tcell.KeyDown:
		st.SelectRelative(t, 1, primary)
	case tcell.KeyPgUp:
		st.SelectRelative(t, -pageStep, primary)
	case tcell.KeyPgDn:
		st.SelectRelative(t, pageStep, primary)
	default:
		return false
	}
	return true
}

func toggleFullName(st *browser.State) {
	st.Indent = st.FullName
	st.FullName = !st.FullName
}

func (n *Netlist) HandleKey(ev *tcell.EventKey) {
	if moveKey(n.state, n.root, ev) {
		return
	}
	switch ev.Key() {
	case tcell.KeyEnter:
		n.toggleExpanded()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a':
			if entries := n.selectedVariables(); len(entries) > 0 {
				n.bus.Push(NetlistAppend{Entries: entries})
			}
		case 'i':
			if entries := n.selectedVariables(); len(entries) > 0 {
				n.bus.Push(NetlistInsert{Entries: entries})
			}
		case 'f':
			toggleFullName(n.state)
		}
	}
}

// HandleUpdate applies the latest filter text.
func (n *Netlist) HandleUpdate() bool {
	changes := bus.Drain[FilterChanged](n.bus)
	if len(changes) == 0 {
		return false
	}
	n.SetFilter(changes[len(changes)-1].Text)
	return true
}

func (n *Netlist) Render(buf *core.Buffer, area core.Rect) {
	browser.Render(n.state, n.root, buf, area, Style)
}
