// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: core/geom.go
// Summary: Cell coordinates and rectangles used by the tiling layout.

package core

// Pos is a terminal cell coordinate.
type Pos struct {
	X, Y uint16
}

// Add returns p + o.
func (p Pos) Add(o Pos) Pos {
	return Pos{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o, or false when either component would go negative.
func (p Pos) Sub(o Pos) (Pos, bool) {
	if p.X < o.X || p.Y < o.Y {
		return Pos{}, false
	}
	return Pos{X: p.X - o.X, Y: p.Y - o.Y}, true
}

// Offset moves p by a signed delta, or returns false when the result is negative.
func (p Pos) Offset(dx, dy int) (Pos, bool) {
	x := int(p.X) + dx
	y := int(p.Y) + dy
	if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
		return Pos{}, false
	}
	return Pos{X: uint16(x), Y: uint16(y)}, true
}

// Rect returns the 1x1 rectangle at p.
func (p Pos) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, W: 1, H: 1}
}

// Rect is an axis aligned rectangle of cells.
type Rect struct {
	X, Y, W, H uint16
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Pos) bool {
	return int(p.X) >= int(r.X) && int(p.X) < int(r.X)+int(r.W) &&
		int(p.Y) >= int(r.Y) && int(p.Y) < int(r.Y)+int(r.H)
}

// Intersects reports whether r and o share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return int(r.X) < int(o.X)+int(o.W) && int(o.X) < int(r.X)+int(r.W) &&
		int(r.Y) < int(o.Y)+int(o.H) && int(o.Y) < int(r.Y)+int(r.H)
}

// Inset shrinks r by n cells on every side, saturating at an empty rectangle.
func (r Rect) Inset(n uint16) Rect {
	if r.W < 2*n || r.H < 2*n {
		return Rect{X: r.X + min(n, r.W), Y: r.Y + min(n, r.H)}
	}
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Pos {
	return Pos{X: r.X, Y: r.Y}
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}
