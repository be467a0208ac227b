// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: core/mouse.go
// Summary: Abstract mouse event kinds and translation from tcell button masks.

package core

import "github.com/gdamore/tcell/v2"

// MouseKind classifies a mouse event.
type MouseKind int

const (
	// MouseNone means the pointer is not over the receiver; it clears focus.
	MouseNone MouseKind = iota
	MouseDown
	MouseDrag
	MouseUp
	MouseScrollUp
	MouseScrollDown
	MouseMove
)

func (k MouseKind) String() string {
	switch k {
	case MouseDown:
		return "down"
	case MouseDrag:
		return "drag"
	case MouseUp:
		return "up"
	case MouseScrollUp:
		return "scroll-up"
	case MouseScrollDown:
		return "scroll-down"
	case MouseMove:
		return "move"
	default:
		return "none"
	}
}

// MouseTracker turns tcell's stateless button masks into down/drag/up events.
type MouseTracker struct {
	down bool
}

// Translate converts a tcell mouse event into a cell position and kind.
func (t *MouseTracker) Translate(ev *tcell.EventMouse) (x, y int, kind MouseKind) {
	x, y = ev.Position()
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		kind = MouseScrollUp
	case buttons&tcell.WheelDown != 0:
		kind = MouseScrollDown
	case buttons&tcell.Button1 != 0:
		if t.down {
			kind = MouseDrag
		} else {
			kind = MouseDown
		}
		t.down = true
	default:
		if t.down {
			kind = MouseUp
		} else {
			kind = MouseMove
		}
		t.down = false
	}
	return x, y, kind
}
