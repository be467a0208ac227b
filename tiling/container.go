// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tiling/container.go
// Summary: Container stacking panes and containers along one axis with
// proportional resizing, focus navigation and border dragging.

package tiling

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
)

// Container lays out its children along Direction.
type Container struct {
	name      string
	dir       Direction
	resizable bool
	drag      *LayoutResize
	w, h      uint16
	children  []Node
	// fixed children keep their length along the axis.
	fixed   map[int]uint16
	weights []float64
}

// NewContainer creates an empty, unsized container.
func NewContainer(name string, dir Direction, resizable bool) *Container {
	return &Container{name: name, dir: dir, resizable: resizable}
}

func (c *Container) Name() string           { return c.name }
func (c *Container) Size() (uint16, uint16) { return c.w, c.h }
func (c *Container) Direction() Direction   { return c.dir }
func (c *Container) Children() []Node       { return c.children }

// Add appends a child and refits the layout at the current size.
func (c *Container) Add(child Node) error {
	c.children = append(c.children, child)
	if c.w == 0 && c.h == 0 {
		return nil
	}
	return c.Resize(c.w, c.h)
}

// SetFixed pins child i to length cells along the axis.
func (c *Container) SetFixed(i int, length uint16) {
	if c.fixed == nil {
		c.fixed = make(map[int]uint16)
	}
	c.fixed[i] = length
}

// SetWeights sets the split used before the children have a size.
func (c *Container) SetWeights(weights ...float64) {
	c.weights = weights
}

func (c *Container) fixedTotal() uint16 {
	var n uint16
	for _, l := range c.fixed {
		n += l
	}
	return n
}

// ratios returns the weight of each free child, in order: its current length
// along the axis. It falls back to the configured weights, or a uniform split,
// when the container or any free child has no length yet.
func (c *Container) ratios() []float64 {
	var free []Node
	var weights []float64
	for i, ch := range c.children {
		if _, ok := c.fixed[i]; ok {
			continue
		}
		free = append(free, ch)
		if i < len(c.weights) {
			weights = append(weights, c.weights[i])
		} else {
			weights = append(weights, 1)
		}
	}
	total := c.dir.along(c.w, c.h)
	if ft := c.fixedTotal(); ft < total {
		total -= ft
	} else {
		total = 0
	}
	out := make([]float64, len(free))
	uniform := total == 0
	for _, ch := range free {
		if w, h := ch.Size(); c.dir.along(w, h) == 0 {
			uniform = true
		}
	}
	for i, ch := range free {
		if uniform {
			out[i] = weights[i]
			continue
		}
		w, h := ch.Size()
		out[i] = float64(c.dir.along(w, h))
	}
	return out
}

// CalculateSizes splits total by ratios. Every child but the last gets the
// floor of r*total/sum; the last absorbs the residual so the sum is exact.
// Integral ratios that already sum to total come back unchanged.
func CalculateSizes(ratios []float64, total uint16) []uint16 {
	sizes := make([]uint16, len(ratios))
	if len(ratios) == 0 {
		return sizes
	}
	sum := 0.0
	for _, r := range ratios {
		sum += r
	}
	var used uint16
	for i, r := range ratios {
		if i == len(ratios)-1 {
			sizes[i] = total - used
			break
		}
		s := uint16(r * float64(total) / sum)
		if s > total-used {
			s = total - used
		}
		sizes[i] = s
		used += s
	}
	return sizes
}

func (c *Container) childSizes(w, h uint16) [][2]uint16 {
	total := c.dir.along(w, h)
	fixed := min(c.fixedTotal(), total)
	free := CalculateSizes(c.ratios(), total-fixed)
	sizes := make([]uint16, len(c.children))
	for i := range c.children {
		if l, ok := c.fixed[i]; ok {
			sizes[i] = min(l, total)
			continue
		}
		sizes[i], free = free[0], free[1:]
	}
	out := make([][2]uint16, len(sizes))
	for i, s := range sizes {
		if c.dir == Horizontal {
			out[i] = [2]uint16{s, h}
		} else {
			out[i] = [2]uint16{w, s}
		}
	}
	return out
}

func (c *Container) checkResize(w, h uint16) error {
	for i, s := range c.childSizes(w, h) {
		if err := c.children[i].checkResize(s[0], s[1]); err != nil {
			return err
		}
	}
	return nil
}

// Resize refits every child proportionally. When any child rejects its new
// size nothing is changed and the child's error is returned.
func (c *Container) Resize(w, h uint16) error {
	if err := c.checkResize(w, h); err != nil {
		return err
	}
	sizes := c.childSizes(w, h)
	c.w, c.h = w, h
	c.drag = nil
	for i, s := range sizes {
		if err := c.children[i].Resize(s[0], s[1]); err != nil {
			return err
		}
	}
	c.Invalidate()
	return nil
}

// Rects returns each child's rectangle relative to the container origin.
func (c *Container) Rects() []core.Rect {
	rects := make([]core.Rect, len(c.children))
	var pos core.Pos
	for i, ch := range c.children {
		w, h := ch.Size()
		rects[i] = core.Rect{X: pos.X, Y: pos.Y, W: w, H: h}
		if c.dir == Horizontal {
			pos.X += w
		} else {
			pos.Y += h
		}
	}
	return rects
}

func (c *Container) Invalidate() {
	for _, ch := range c.children {
		ch.Invalidate()
	}
}

func (c *Container) Render(buf *core.Buffer, area core.Rect) {
	for i, r := range c.Rects() {
		r.X += area.X
		r.Y += area.Y
		c.children[i].Render(buf, r)
	}
}

func (c *Container) Focus() Focus {
	best := FocusNone
	for _, ch := range c.children {
		if f := ch.Focus(); f > best {
			best = f
		}
	}
	return best
}

// Update lets every pane below c drain its bus messages.
func (c *Container) Update() bool {
	changed := false
	c.WalkPanes(func(p *Pane, _ core.Pos) {
		if p.Update() {
			changed = true
		}
	})
	return changed
}

// nextProbe returns the cell just outside the middle of the exited edge, or
// false when that cell lies outside the container.
func nextProbe(pos core.Pos, b Border, w, h, cw, ch uint16) (core.Pos, bool) {
	midX, midY := pos.X+w/2, pos.Y+h/2
	switch b {
	case BorderTop:
		if pos.Y > 0 {
			return core.Pos{X: midX, Y: pos.Y - 1}, true
		}
	case BorderBottom:
		if int(pos.Y)+int(h) < int(ch) {
			return core.Pos{X: midX, Y: pos.Y + h}, true
		}
	case BorderLeft:
		if pos.X > 0 {
			return core.Pos{X: pos.X - 1, Y: midY}, true
		}
	case BorderRight:
		if int(pos.X)+int(w) < int(cw) {
			return core.Pos{X: pos.X + w, Y: midY}, true
		}
	}
	return core.Pos{}, false
}

func isNavKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		return true
	}
	return false
}

// HandleKey routes ev to the focused pane and moves partial focus across
// edges. With nothing focused, Enter or an arrow focuses the top-left pane.
// A container always consumes edge exits, so it returns BorderNone.
func (c *Container) HandleKey(ev *tcell.EventKey) Border {
	pane, pos, focus := c.Focused()
	if focus == FocusNone {
		if !isNavKey(ev) {
			return BorderNone
		}
		if p, _, ok := c.AtPosition(core.Pos{}); ok {
			p.SetFocus(FocusPartial)
		}
		return BorderNone
	}
	edge := pane.HandleKey(ev)
	if edge == BorderNone {
		return BorderNone
	}
	w, h := pane.Size()
	probe, ok := nextProbe(pos, edge, w, h, c.w, c.h)
	if !ok {
		pane.SetFocus(FocusPartial)
		return BorderNone
	}
	if next, _, ok := c.AtPosition(probe); ok {
		next.SetFocus(FocusPartial)
	} else {
		pane.SetFocus(FocusPartial)
	}
	return BorderNone
}

func (c *Container) HandleMouse(x, y uint16, kind core.MouseKind) {
	if kind == core.MouseNone {
		for _, ch := range c.children {
			ch.HandleMouse(0, 0, core.MouseNone)
		}
		c.drag = nil
		return
	}
	offset := c.dir.along(x, y)
	c.handleDrag(offset, kind)
	pos := core.Pos{X: x, Y: y}
	rects := c.Rects()
	for i, ch := range c.children {
		if !rects[i].Contains(pos) {
			ch.HandleMouse(0, 0, core.MouseNone)
			continue
		}
		cx, cy := x-rects[i].X, y-rects[i].Y
		if kind == core.MouseDown && c.resizable && ch.BorderAt(cx, cy) != BorderNone {
			c.startDrag(offset)
		}
		ch.HandleMouse(cx, cy, kind)
	}
}

func (c *Container) lengths() []uint16 {
	out := make([]uint16, len(c.children))
	for i, ch := range c.children {
		out[i] = c.dir.along(ch.Size())
	}
	return out
}

// startDrag arms a border drag when offset sits on a border shared by two
// children. Outer borders never start a drag.
func (c *Container) startDrag(offset uint16) {
	lr := NewLayoutResize(c.lengths(), 1)
	if lr.HandleMouseDown(int(offset), 1) {
		c.drag = lr
	}
}

// handleDrag applies an in-progress border drag. The shrinking child is
// resized first so a rejected step leaves both children untouched.
func (c *Container) handleDrag(offset uint16, kind core.MouseKind) {
	if !c.resizable || kind != core.MouseDrag {
		c.drag = nil
		return
	}
	if c.drag == nil {
		return
	}
	before := c.drag.Lengths()
	if !c.drag.HandleMouseDrag(int(offset)) {
		return
	}
	after := c.drag.Lengths()
	var shrink, grow []int
	for i := range after {
		switch {
		case after[i] < before[i]:
			shrink = append(shrink, i)
		case after[i] > before[i]:
			grow = append(grow, i)
		}
	}
	sized := func(i int) (uint16, uint16) {
		if c.dir == Horizontal {
			return after[i], c.h
		}
		return c.w, after[i]
	}
	for _, i := range grow {
		if err := c.children[i].checkResize(sized(i)); err != nil {
			c.drag.SetLengths(before)
			return
		}
	}
	for _, i := range shrink {
		if err := c.children[i].Resize(sized(i)); err != nil {
			c.drag.SetLengths(before)
			return
		}
	}
	for _, i := range grow {
		_ = c.children[i].Resize(sized(i))
	}
	c.Invalidate()
}

// BorderAt reports an outer edge of the container. Borders shared between
// adjacent children are internal and report BorderNone.
func (c *Container) BorderAt(x, y uint16) Border {
	pos := core.Pos{X: x, Y: y}
	rects := c.Rects()
	for i, ch := range c.children {
		if !rects[i].Contains(pos) {
			continue
		}
		b := ch.BorderAt(x-rects[i].X, y-rects[i].Y)
		first, last := i == 0, i == len(c.children)-1
		switch c.dir {
		case Horizontal:
			switch {
			case b == BorderTop, b == BorderBottom:
				return b
			case b == BorderLeft && first, b == BorderRight && last:
				return b
			}
		case Vertical:
			switch {
			case b == BorderLeft, b == BorderRight:
				return b
			case b == BorderTop && first, b == BorderBottom && last:
				return b
			}
		}
		return BorderNone
	}
	return BorderNone
}
