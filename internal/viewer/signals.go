// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/viewer/signals.go
// Summary: Signal list shown beside the waveform. Holds the config signal
// tree, edits it, and publishes the visible rows to the waveform viewer.

package viewer

import (
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/lo"

	"github.com/framegrace/nalu/browser"
	"github.com/framegrace/nalu/config"
	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/bus"
	"github.com/framegrace/nalu/vcd"
	"github.com/framegrace/nalu/waveform"
)

type signalNode = browser.Node[*config.SignalNode]

// Signals is the editable signal list.
type Signals struct {
	bus   *bus.Bus
	state *browser.State
	root  *signalNode
	// dirty records edits, such as top-level deletes, that leave no
	// unsaved node behind.
	dirty bool
}

func NewSignals(b *bus.Bus) *Signals {
	return &Signals{
		bus:   b,
		state: browser.NewState(true, true, false),
		root:  browser.NewRoot[*config.SignalNode](),
	}
}

// fromConfig builds the browser subtree for n. Multi-bit signals get one
// child per bit.
func fromConfig(n *config.SignalNode) *signalNode {
	node := browser.NewNode(n)
	node.Expanded = n.Expanded
	switch n.Kind {
	case config.Group, config.Vector:
		for _, c := range n.Children {
			node.Children = append(node.Children, fromConfig(c))
		}
	case config.Signal:
		if n.BitIndex == nil && n.Variable != nil && !n.Variable.IsReal() && n.Variable.Width > 1 {
			for i := 0; i < n.Variable.Width; i++ {
				bit := &config.SignalNode{
					Kind: config.Signal, Path: n.Path, Variable: n.Variable, Radix: n.Radix,
					BitIndex: lo.ToPtr(i), Owner: n.Owner, Saved: true,
				}
				node.Children = append(node.Children, browser.NewNode(bit))
			}
		}
	}
	return node
}

// toConfig converts a browser subtree back, dropping generated bit rows.
func toConfig(node *signalNode) *config.SignalNode {
	n := *node.Entry
	n.Expanded = node.Expanded
	n.Children = nil
	if n.Kind == config.Group || n.Kind == config.Vector {
		for _, c := range node.Children {
			n.Children = append(n.Children, toConfig(c))
		}
	}
	return &n
}

// Load replaces the list with built-in then user nodes.
func (s *Signals) Load(builtin, user []*config.SignalNode) {
	s.root = browser.NewRoot[*config.SignalNode]()
	for _, n := range append(append([]*config.SignalNode(nil), builtin...), user...) {
		s.root.Children = append(s.root.Children, fromConfig(n))
	}
	s.dirty = false
	s.state.Reset()
	s.state.ClampToTree(s.root)
	s.pushRows()
}

// Nodes returns the list as config nodes.
func (s *Signals) Nodes() []*config.SignalNode {
	return lo.Map(s.root.Children, func(c *signalNode, _ int) *config.SignalNode { return toConfig(c) })
}

// Saved reports whether the built-in nodes match the config file.
func (s *Signals) Saved() bool {
	return !s.dirty && config.AllSaved(lo.Map(s.root.Children, func(c *signalNode, _ int) *config.SignalNode { return c.Entry }))
}

// MarkSaved records a successful save.
func (s *Signals) MarkSaved() {
	s.root.Walk(func(_ browser.Path, node *signalNode) {
		if node.Entry.Owner == config.BuiltIn {
			node.Entry.Saved = true
		}
	})
	s.dirty = false
}

// Rebind resolves every signal against a new header after a reload. Signals
// the header no longer declares are dropped.
func (s *Signals) Rebind(h *vcd.Header) {
	var rebind func(children []*signalNode) []*signalNode
	rebind = func(children []*signalNode) []*signalNode {
		var out []*signalNode
		for _, c := range children {
			e := c.Entry
			if e.Kind != config.Signal {
				c.Children = rebind(c.Children)
				out = append(out, c)
				continue
			}
			v, ok := h.Variable(e.Path)
			if !ok {
				log.Printf("Signals: dropping %s, not in the new header", e.Path)
				s.dirty = true
				continue
			}
			e.Variable = v
			expanded := c.Expanded
			if e.BitIndex != nil {
				if *e.BitIndex >= v.Width {
					s.dirty = true
					continue
				}
				out = append(out, c)
				continue
			}
			c = fromConfig(e)
			c.Expanded = expanded
			out = append(out, c)
		}
		return out
	}
	s.root.Children = rebind(s.root.Children)
	s.state.ClampToTree(s.root)
	s.pushRows()
}

// markUnsaved flags the node at p and its built-in ancestors.
func (s *Signals) markUnsaved(p browser.Path) {
	s.dirty = true
	for i := len(p); i > 0; i-- {
		if node := s.root.NodeAt(p[:i]); node != nil && node.Entry.Owner == config.BuiltIn {
			node.Entry.Saved = false
		}
	}
}

// isBitRow reports whether p is a generated per-bit child.
func (s *Signals) isBitRow(p browser.Path) bool {
	if len(p) < 2 {
		return false
	}
	parent := s.root.NodeAt(p[:len(p)-1])
	return parent != nil && parent.Entry.Kind == config.Signal
}

func newSignalNode(e NetEntry) *config.SignalNode {
	n := config.NewSignal(e.Path, e.Variable, waveform.Hexadecimal, false, nil)
	n.SetSaved(false)
	return n
}

// Append adds entries at the end of the list.
func (s *Signals) Append(entries []NetEntry) {
	for _, e := range entries {
		s.root.Children = append(s.root.Children, fromConfig(newSignalNode(e)))
		s.markUnsaved(browser.Path{len(s.root.Children) - 1})
	}
	s.state.ClampToTree(s.root)
}

// Insert places entries after the cursor row, as its siblings.
func (s *Signals) Insert(entries []NetEntry) {
	p := s.state.PrimaryPath(s.root)
	for s.isBitRow(p) {
		p = p[:len(p)-1]
	}
	parent, idx := s.root.Parent(p)
	if parent == nil {
		s.Append(entries)
		return
	}
	nodes := lo.Map(entries, func(e NetEntry, _ int) *signalNode { return fromConfig(newSignalNode(e)) })
	parent.Children = append(parent.Children[:idx+1], append(nodes, parent.Children[idx+1:]...)...)
	for i := range nodes {
		at := append(p[:len(p)-1].Clone(), idx+1+i)
		s.markUnsaved(at)
	}
	s.state.ClampToTree(s.root)
}

// selection returns the condensed selected paths, without bit rows.
func (s *Signals) selection() []browser.Path {
	return lo.Filter(s.state.SelectedPaths(s.root, true), func(p browser.Path, _ int) bool {
		return len(p) > 0 && !s.isBitRow(p)
	})
}

// remove detaches the nodes at paths, which must be sorted and condensed.
func (s *Signals) remove(paths []browser.Path) []*signalNode {
	removed := make([]*signalNode, len(paths))
	for i := len(paths) - 1; i >= 0; i-- {
		parent, idx := s.root.Parent(paths[i])
		removed[i] = parent.Children[idx]
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
		if len(paths[i]) > 1 {
			s.markUnsaved(paths[i][:len(paths[i])-1])
		}
	}
	s.dirty = true
	return removed
}

// Group wraps the selection in a new group placed where the first selected
// node was.
func (s *Signals) Group() {
	paths := s.selection()
	if len(paths) == 0 {
		return
	}
	first := paths[0]
	parent, idx := s.root.Parent(first)
	removed := s.remove(paths)

	group := config.NewGroup("group", true, nil)
	group.SetSaved(false)
	node := browser.NewNode(group, removed...)
	node.Expanded = true
	parent.Children = append(parent.Children[:idx], append([]*signalNode{node}, parent.Children[idx:]...)...)
	s.markUnsaved(first)
	s.state.ClampToTree(s.root)
}

// Delete removes the selection.
func (s *Signals) Delete() {
	paths := s.selection()
	if len(paths) == 0 {
		return
	}
	s.remove(paths)
	s.state.ClampToTree(s.root)
}

func (s *Signals) toggleExpanded() {
	p := s.state.PrimaryPath(s.root)
	if node := s.root.NodeAt(p); node != nil && node.IsParent() {
		node.Expanded = !node.Expanded
		if !s.isBitRow(p) {
			s.markUnsaved(p)
		}
		s.state.ClampToTree(s.root)
	}
}

// Rows describes the visible lines for the waveform viewer.
func (s *Signals) Rows() []*RowEntry {
	primary := s.state.PrimaryPath(s.root)
	return lo.Map(s.state.VisiblePaths(s.root), func(p browser.Path, _ int) *RowEntry {
		node := s.root.NodeAt(p)
		if node == nil || node.Entry.Kind != config.Signal || node.Entry.Variable == nil {
			return nil
		}
		e := node.Entry
		return &RowEntry{
			Idcode:   e.Variable.Idcode,
			Bit:      e.BitIndex,
			Radix:    e.Radix,
			Selected: p.Equal(primary),
		}
	})
}

func (s *Signals) pushRows() {
	s.bus.Push(UpdateSignals{Rows: s.Rows()})
}

func (s *Signals) Resize(w, h int) {
	s.state.SetHeight(h)
	s.state.ScrollRelative(s.root, 0)
	s.pushRows()
}

func (s *Signals) HandleMouse(x, y int, kind core.MouseKind) {
	switch kind {
	case core.MouseDown:
		if s.state.SelectAbsolute(s.root, y, true) {
			s.toggleExpanded()
		}
	case core.MouseScrollDown:
		s.state.SelectRelative(s.root, scrollStep, true)
	case core.MouseScrollUp:
		s.state.SelectRelative(s.root, -scrollStep, true)
	default:
		return
	}
	s.pushRows()
}

func isTimescaleKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	switch ev.Rune() {
	case '-', '=', '[', ']', '_', '+', '{', '}':
		return true
	}
	return false
}

func (s *Signals) HandleKey(ev *tcell.EventKey) {
	s.handleKey(ev)
}

func (s *Signals) handleKey(ev *tcell.EventKey) bool {
	if isTimescaleKey(ev) {
		s.bus.Push(TimescaleKey{Event: ev})
		return false
	}
	if !moveKey(s.state, s.root, ev) {
		switch ev.Key() {
		case tcell.KeyEnter:
			s.toggleExpanded()
		case tcell.KeyDelete:
			s.Delete()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'g':
				s.Group()
			case 'f':
				toggleFullName(s.state)
			default:
				return false
			}
		default:
			return false
		}
	}
	s.pushRows()
	return true
}

// HandleUpdate applies netlist requests and keys forwarded by the waveform
// viewer.
func (s *Signals) HandleUpdate() bool {
	updated := false
	for _, m := range bus.Drain[NetlistAppend](s.bus) {
		s.Append(m.Entries)
		updated = true
	}
	for _, m := range bus.Drain[NetlistInsert](s.bus) {
		s.Insert(m.Entries)
		updated = true
	}
	if updated {
		s.pushRows()
	}
	for _, m := range bus.Drain[WaveformKey](s.bus) {
		updated = s.handleKey(m.Event) || updated
	}
	return updated
}

func (s *Signals) Render(buf *core.Buffer, area core.Rect) {
	browser.Render(s.state, s.root, buf, area, Style)
}
