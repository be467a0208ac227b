// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tiling/tiling.go
// Summary: Shared types for the pane layout: focus states, border edges,
// layout directions and the Node sum type implemented by panes and containers.

package tiling

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
)

// Focus is the input focus state of a pane.
type Focus int

const (
	FocusNone Focus = iota
	FocusPartial
	FocusFull
)

func (f Focus) String() string {
	switch f {
	case FocusPartial:
		return "partial"
	case FocusFull:
		return "focus"
	default:
		return "none"
	}
}

// Border names an edge of a pane or container.
type Border int

const (
	BorderNone Border = iota
	BorderTop
	BorderBottom
	BorderLeft
	BorderRight
)

func (b Border) String() string {
	switch b {
	case BorderTop:
		return "top"
	case BorderBottom:
		return "bottom"
	case BorderLeft:
		return "left"
	case BorderRight:
		return "right"
	default:
		return "none"
	}
}

// Direction is the axis along which a container stacks its children.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

// along picks the length of (w, h) on the container's axis.
func (d Direction) along(w, h uint16) uint16 {
	if d == Horizontal {
		return w
	}
	return h
}

// ResizeError reports a pane that cannot fit its border in the requested size.
type ResizeError struct {
	Name   string
	W, H   uint16
	Border uint16
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("pane %q cannot be resized to %dx%d with border %d", e.Name, e.W, e.H, e.Border)
}

// Widget is the content hosted by a pane. Coordinates passed to HandleMouse
// are relative to the area inside the border.
type Widget interface {
	Resize(w, h int)
	HandleMouse(x, y int, kind core.MouseKind)
	HandleKey(ev *tcell.EventKey)
	Render(buf *core.Buffer, area core.Rect)
}

// Updater is implemented by widgets that consume bus messages once per tick.
// It returns true when the widget changed and needs a redraw.
type Updater interface {
	HandleUpdate() bool
}

// Node is either a *Pane or a *Container.
type Node interface {
	Name() string
	Size() (w, h uint16)
	Resize(w, h uint16) error
	HandleMouse(x, y uint16, kind core.MouseKind)
	// HandleKey returns the edge the focus left through, or BorderNone.
	HandleKey(ev *tcell.EventKey) Border
	Invalidate()
	Render(buf *core.Buffer, area core.Rect)
	// Focus returns the strongest focus state found in the subtree.
	Focus() Focus
	// BorderAt reports which outer edge, if any, (x, y) lies on.
	BorderAt(x, y uint16) Border

	checkResize(w, h uint16) error
}
