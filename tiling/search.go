package tiling

import "github.com/framegrace/nalu/core"

// Focused returns the first pane holding Focus or Partial focus, with its
// position relative to c.
func (c *Container) Focused() (*Pane, core.Pos, Focus) {
	rects := c.Rects()
	for i, ch := range c.children {
		switch n := ch.(type) {
		case *Pane:
			if f := n.Focus(); f != FocusNone {
				return n, rects[i].Origin(), f
			}
		case *Container:
			if p, pos, f := n.Focused(); f != FocusNone {
				return p, rects[i].Origin().Add(pos), f
			}
		}
	}
	return nil, core.Pos{}, FocusNone
}

// AtPosition returns the deepest pane containing pos.
func (c *Container) AtPosition(pos core.Pos) (*Pane, core.Pos, bool) {
	rects := c.Rects()
	for i, ch := range c.children {
		if !rects[i].Contains(pos) {
			continue
		}
		origin := rects[i].Origin()
		switch n := ch.(type) {
		case *Pane:
			return n, origin, true
		case *Container:
			rel, _ := pos.Sub(origin)
			if p, at, ok := n.AtPosition(rel); ok {
				return p, origin.Add(at), true
			}
		}
		return nil, core.Pos{}, false
	}
	return nil, core.Pos{}, false
}

// ByName walks a name path such as ["main", "signals"] down to a pane.
func (c *Container) ByName(path []string) (*Pane, core.Pos, bool) {
	if len(path) == 0 {
		return nil, core.Pos{}, false
	}
	rects := c.Rects()
	for i, ch := range c.children {
		if ch.Name() != path[0] {
			continue
		}
		origin := rects[i].Origin()
		switch n := ch.(type) {
		case *Pane:
			return n, origin, true
		case *Container:
			if p, at, ok := n.ByName(path[1:]); ok {
				return p, origin.Add(at), true
			}
		}
	}
	return nil, core.Pos{}, false
}

// WalkPanes visits every pane below c with its position relative to c.
func (c *Container) WalkPanes(fn func(p *Pane, pos core.Pos)) {
	rects := c.Rects()
	for i, ch := range c.children {
		switch n := ch.(type) {
		case *Pane:
			fn(n, rects[i].Origin())
		case *Container:
			origin := rects[i].Origin()
			n.WalkPanes(func(p *Pane, pos core.Pos) {
				fn(p, origin.Add(pos))
			})
		}
	}
}
