// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: browser/state.go
// Summary: Viewport over a linearized tree: scroll offset, primary cursor,
// optional secondary cursor for range selection, and display flags.

package browser

// Tree is the linearized view of a browser tree that State navigates.
type Tree interface {
	VisibleLen() int
	PathAt(i int) Path
	PathsIn(lo, hi int, condense bool) []Path
}

// State tracks scroll and selection for one browser.
type State struct {
	// Bounds reserves the first and last rows for scroll arrows.
	Bounds bool
	// Indent prefixes each line with four spaces per depth level.
	Indent   bool
	FullName bool

	scroll    int
	cursor    int
	secondary *int
	height    int
}

// NewState returns a state at the top of the tree.
func NewState(bounds, indent, fullName bool) *State {
	return &State{Bounds: bounds, Indent: indent, FullName: fullName}
}

func (s *State) Scroll() int { return s.scroll }
func (s *State) Cursor() int { return s.cursor }
func (s *State) Height() int { return s.height }

// Secondary returns the range anchor, if any.
func (s *State) Secondary() (int, bool) {
	if s.secondary == nil {
		return 0, false
	}
	return *s.secondary, true
}

// SetHeight sets the number of rows available to the browser, arrows included.
func (s *State) SetHeight(h int) {
	s.height = h
}

// RenderHeight is the number of tree lines that fit, excluding bound rows.
func (s *State) RenderHeight() int {
	h := s.height
	if s.Bounds {
		h -= 2
	}
	return max(0, h)
}

// SelectedRange returns the inclusive range of selected lines.
func (s *State) SelectedRange() (lo, hi int) {
	if s.secondary == nil {
		return s.cursor, s.cursor
	}
	return min(s.cursor, *s.secondary), max(s.cursor, *s.secondary)
}

// IsSelected reports whether line i falls within the selection.
func (s *State) IsSelected(i int) bool {
	lo, hi := s.SelectedRange()
	return i >= lo && i <= hi
}

// VisiblePaths returns the paths of the lines currently on screen.
func (s *State) VisiblePaths(t Tree) []Path {
	return t.PathsIn(s.scroll, s.scroll+s.RenderHeight(), false)
}

// SelectedPaths returns the paths of the selected lines.
func (s *State) SelectedPaths(t Tree, condense bool) []Path {
	lo, hi := s.SelectedRange()
	return t.PathsIn(lo, hi+1, condense)
}

// PrimaryPath returns the path under the primary cursor.
func (s *State) PrimaryPath(t Tree) Path {
	return t.PathAt(s.cursor)
}

func (s *State) clampScroll(renderHeight int) {
	if renderHeight <= 0 {
		s.scroll = s.cursor
		return
	}
	if s.cursor < s.scroll {
		s.scroll = s.cursor
	} else if s.cursor > s.scroll+renderHeight-1 {
		s.scroll = s.cursor - (renderHeight - 1)
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ScrollRelative moves the viewport by delta lines, keeping the cursor visible.
func (s *State) ScrollRelative(t Tree, delta int) {
	last := max(0, t.VisibleLen()-1)
	s.scroll = clamp(s.scroll+delta, 0, last)
	s.clampScroll(s.RenderHeight())
}

// SelectRelative moves the cursor by delta lines. A non-primary move keeps
// (or starts) a range anchored at the previous cursor.
func (s *State) SelectRelative(t Tree, delta int, primary bool) {
	s.anchor(primary)
	last := max(0, t.VisibleLen()-1)
	s.cursor = clamp(s.cursor+delta, 0, last)
	s.clampScroll(s.RenderHeight())
}

// SelectAbsolute maps a viewport row to a line and moves the cursor there.
// It returns true when a primary selection lands on the line already under the
// cursor, which callers treat as a request to toggle expansion.
func (s *State) SelectAbsolute(t Tree, row int, primary bool) bool {
	offset := row + s.scroll
	if s.Bounds {
		if row < 1 || row > s.RenderHeight() {
			return false
		}
		offset--
	}
	if offset < 0 || offset >= t.VisibleLen() {
		return false
	}
	if primary {
		s.secondary = nil
		if s.cursor == offset {
			return true
		}
		s.cursor = offset
		return false
	}
	s.anchor(false)
	s.cursor = offset
	s.clampScroll(s.RenderHeight())
	return false
}

// ClampToTree re-establishes the cursor and scroll invariants after the tree
// changed shape underneath the state.
func (s *State) ClampToTree(t Tree) {
	last := max(0, t.VisibleLen()-1)
	s.cursor = clamp(s.cursor, 0, last)
	if s.secondary != nil {
		v := clamp(*s.secondary, 0, last)
		s.secondary = &v
	}
	s.scroll = clamp(s.scroll, 0, last)
	s.clampScroll(s.RenderHeight())
}

// Reset puts the cursor back at the top with no range.
func (s *State) Reset() {
	s.scroll, s.cursor, s.secondary = 0, 0, nil
}

func (s *State) anchor(primary bool) {
	if primary {
		s.secondary = nil
		return
	}
	if s.secondary == nil {
		v := s.cursor
		s.secondary = &v
	}
}
