// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/node.go
// Summary: Signal tree nodes produced by the config script and edited by the
// signal viewer.

package config

import (
	"fmt"
	"strings"

	"github.com/framegrace/nalu/vcd"
	"github.com/framegrace/nalu/waveform"
)

// Kind is the variant of a SignalNode.
type Kind uint8

const (
	Group Kind = iota
	Vector
	Signal
	Spacer
)

func (k Kind) String() string {
	switch k {
	case Group:
		return "Group"
	case Vector:
		return "Vector"
	case Signal:
		return "Signal"
	case Spacer:
		return "Spacer"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Owner records which script function produced a node. Only BuiltIn nodes
// are written back by Save.
type Owner uint8

const (
	BuiltIn Owner = iota
	User
)

// SignalNode is one row of the signal tree.
type SignalNode struct {
	Kind Kind
	// Name labels groups and vectors.
	Name string
	// Path is the dotted full name of a signal, e.g. "TOP.cpu.clk".
	Path     string
	Variable *vcd.Variable
	Radix    waveform.Radix
	// BitIndex selects a single bit of a multi-bit signal.
	BitIndex *int
	Expanded bool
	Children []*SignalNode
	Owner    Owner
	Saved    bool
}

func NewGroup(name string, expanded bool, children []*SignalNode) *SignalNode {
	return &SignalNode{Kind: Group, Name: name, Expanded: expanded, Children: children}
}

func NewVector(name string, radix waveform.Radix, expanded bool, children []*SignalNode) *SignalNode {
	return &SignalNode{Kind: Vector, Name: name, Radix: radix, Expanded: expanded, Children: children}
}

func NewSignal(path string, v *vcd.Variable, radix waveform.Radix, expanded bool, bit *int) *SignalNode {
	return &SignalNode{Kind: Signal, Path: path, Variable: v, Radix: radix, Expanded: expanded, BitIndex: bit}
}

func NewSpacer() *SignalNode {
	return &SignalNode{Kind: Spacer}
}

// String is the short label shown in the signal viewer.
func (n *SignalNode) String() string {
	switch n.Kind {
	case Spacer:
		return ""
	case Signal:
		name := n.Path
		if n.Variable != nil {
			name = n.Variable.Name
		} else if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if n.BitIndex != nil {
			return fmt.Sprintf("%s [%d]", name, *n.BitIndex)
		}
		return name
	}
	return n.Name
}

// FullName is the label shown when full names are enabled.
func (n *SignalNode) FullName() string {
	if n.Kind != Signal {
		return n.String()
	}
	if n.BitIndex != nil {
		return fmt.Sprintf("%s [%d]", n.Path, *n.BitIndex)
	}
	return n.Path
}

// Segments splits Path on dots.
func (n *SignalNode) Segments() []string {
	if n.Path == "" {
		return nil
	}
	return strings.Split(n.Path, ".")
}

// SetOwner sets the owner of n and every descendant.
func (n *SignalNode) SetOwner(o Owner) {
	n.Owner = o
	for _, c := range n.Children {
		c.SetOwner(o)
	}
}

// SetSaved marks BuiltIn nodes. User nodes are always saved, and groups and
// vectors are saved only when all their children are.
func (n *SignalNode) SetSaved(v bool) {
	if n.Owner == User {
		n.Saved = true
		return
	}
	switch n.Kind {
	case Group, Vector:
		saved := v
		for _, c := range n.Children {
			c.SetSaved(v)
			saved = saved && c.Saved
		}
		n.Saved = saved
	default:
		n.Saved = v
	}
}

// AllSaved reports whether every node in nodes is saved.
func AllSaved(nodes []*SignalNode) bool {
	for _, n := range nodes {
		if !n.Saved {
			return false
		}
	}
	return true
}

// Equal compares two trees by content, ignoring resolved variables and the
// saved flag.
func Equal(a, b []*SignalNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Name != y.Name || x.Path != y.Path ||
			x.Radix != y.Radix || x.Expanded != y.Expanded || x.Owner != y.Owner {
			return false
		}
		if (x.BitIndex == nil) != (y.BitIndex == nil) ||
			(x.BitIndex != nil && *x.BitIndex != *y.BitIndex) {
			return false
		}
		if !Equal(x.Children, y.Children) {
			return false
		}
	}
	return true
}
