// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tiling/resize.go
// Summary: Per-axis child lengths under container resizes and interactive
// border drags, with a minimum length for every child.

package tiling

// LayoutResize tracks a fixed number of lengths along one axis.
type LayoutResize struct {
	lengths   []uint16
	minLength uint16

	moving  bool
	border  int
	lastPos int
}

// NewLayoutResize copies lengths; their count is fixed from here on.
func NewLayoutResize(lengths []uint16, minLength uint16) *LayoutResize {
	l := make([]uint16, len(lengths))
	copy(l, lengths)
	return &LayoutResize{lengths: l, minLength: minLength}
}

// Lengths returns a copy of the current lengths.
func (r *LayoutResize) Lengths() []uint16 {
	out := make([]uint16, len(r.lengths))
	copy(out, r.lengths)
	return out
}

// SetLengths overwrites the lengths when the count matches.
func (r *LayoutResize) SetLengths(lengths []uint16) {
	if len(lengths) == len(r.lengths) {
		copy(r.lengths, lengths)
	}
}

// Offsets returns the cumulative start of every length.
func (r *LayoutResize) Offsets() []int {
	out := make([]int, len(r.lengths))
	acc := 0
	for i, l := range r.lengths {
		out[i] = acc
		acc += int(l)
	}
	return out
}

// Total is the sum of all lengths.
func (r *LayoutResize) Total() int {
	t := 0
	for _, l := range r.lengths {
		t += int(l)
	}
	return t
}

// ResizeContainer scales all lengths to a new total. Every length but the last
// is scaled proportionally and must stay above the minimum; the last absorbs
// the remainder and must reach the minimum. Otherwise nothing changes.
func (r *LayoutResize) ResizeContainer(total uint16) bool {
	n := len(r.lengths)
	if n == 0 {
		return false
	}
	old := r.Total()
	next := make([]uint16, n)
	used := 0
	for i := 0; i < n-1; i++ {
		var l int
		if old == 0 {
			l = int(total) / n
		} else {
			l = int(r.lengths[i]) * int(total) / old
		}
		if l <= int(r.minLength) {
			return false
		}
		next[i] = uint16(l)
		used += l
	}
	if used+int(r.minLength) > int(total) {
		return false
	}
	next[n-1] = uint16(int(total) - used)
	r.lengths = next
	return true
}

// HandleMouseDown starts a drag on the first inner border within halfWidth
// cells of pos.
func (r *LayoutResize) HandleMouseDown(pos, halfWidth int) bool {
	offsets := r.Offsets()
	for i := 1; i < len(offsets); i++ {
		if offsets[i] >= pos-halfWidth && offsets[i] <= pos+halfWidth {
			r.moving, r.border, r.lastPos = true, i, pos
			return true
		}
	}
	r.moving = false
	return false
}

// HandleMouseDrag moves the active border to pos. It returns true when the
// lengths changed.
func (r *LayoutResize) HandleMouseDrag(pos int) bool {
	if !r.moving {
		return false
	}
	delta := pos - r.lastPos
	r.lastPos = pos
	if delta == 0 {
		return false
	}
	a := int(r.lengths[r.border-1]) + delta
	b := int(r.lengths[r.border]) - delta
	if a < int(r.minLength) || b < int(r.minLength) {
		return false
	}
	r.lengths[r.border-1] = uint16(a)
	r.lengths[r.border] = uint16(b)
	return true
}

// HandleMouseUp ends the drag.
func (r *LayoutResize) HandleMouseUp() {
	r.moving = false
}

// Moving returns the border being dragged, if any.
func (r *LayoutResize) Moving() (int, bool) {
	return r.border, r.moving
}
