// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tiling/pane.go
// Summary: Leaf pane: a bordered widget with a focus state and an
// invalidation flag that gates redraws.

package tiling

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
)

var borderColors = map[Focus]tcell.Color{
	FocusNone:    tcell.ColorWhite,
	FocusPartial: tcell.ColorYellow,
	FocusFull:    tcell.ColorGreen,
}

// Pane hosts a single widget.
type Pane struct {
	name        string
	w, h        uint16
	border      uint16
	invalidated bool
	focus       Focus
	widget      Widget
}

// NewPane creates an unsized pane. It is invalidated so the first frame draws it.
func NewPane(name string, border uint16, widget Widget) *Pane {
	return &Pane{name: name, border: border, invalidated: true, widget: widget}
}

func (p *Pane) Name() string           { return p.name }
func (p *Pane) Size() (uint16, uint16) { return p.w, p.h }
func (p *Pane) Focus() Focus           { return p.focus }
func (p *Pane) BorderWidth() uint16    { return p.border }
func (p *Pane) Widget() Widget         { return p.widget }
func (p *Pane) Invalidated() bool      { return p.invalidated }
func (p *Pane) Invalidate()            { p.invalidated = true }

// SetFocus changes the focus state, invalidating on change.
func (p *Pane) SetFocus(f Focus) {
	if p.focus != f {
		p.focus = f
		p.invalidated = true
	}
}

func (p *Pane) inner() core.Rect {
	return core.Rect{W: p.w, H: p.h}.Inset(p.border)
}

func (p *Pane) HandleMouse(x, y uint16, kind core.MouseKind) {
	if kind == core.MouseNone {
		p.SetFocus(FocusNone)
		return
	}
	pos := core.Pos{X: x, Y: y}
	inPane := core.Rect{W: p.w, H: p.h}.Contains(pos)
	if inPane && (kind == core.MouseDown || kind == core.MouseDrag) {
		p.SetFocus(FocusFull)
	}
	if p.focus == FocusFull && p.inner().Contains(pos) {
		p.widget.HandleMouse(int(x-p.border), int(y-p.border), kind)
		p.invalidated = true
	}
}

func (p *Pane) HandleKey(ev *tcell.EventKey) Border {
	switch p.focus {
	case FocusFull:
		if ev.Key() == tcell.KeyEscape {
			p.SetFocus(FocusPartial)
			return BorderNone
		}
		p.widget.HandleKey(ev)
		p.invalidated = true
	case FocusPartial:
		edge := BorderNone
		switch ev.Key() {
		case tcell.KeyUp:
			edge = BorderTop
		case tcell.KeyDown:
			edge = BorderBottom
		case tcell.KeyLeft:
			edge = BorderLeft
		case tcell.KeyRight:
			edge = BorderRight
		case tcell.KeyEnter:
			p.SetFocus(FocusFull)
		}
		if edge != BorderNone {
			p.SetFocus(FocusNone)
		}
		return edge
	default:
		if ev.Key() == tcell.KeyEnter {
			p.SetFocus(FocusFull)
		}
	}
	return BorderNone
}

func (p *Pane) checkResize(w, h uint16) error {
	minSize := max(2*p.border, 1)
	if w < minSize || h < minSize {
		return &ResizeError{Name: p.name, W: w, H: h, Border: p.border}
	}
	return nil
}

// Resize sets the outer size and forwards the inner size to the widget.
func (p *Pane) Resize(w, h uint16) error {
	if err := p.checkResize(w, h); err != nil {
		return err
	}
	if p.w != w || p.h != h {
		p.invalidated = true
	}
	p.w, p.h = w, h
	in := p.inner()
	p.widget.Resize(int(in.W), int(in.H))
	return nil
}

// Update lets an Updater widget drain its messages.
func (p *Pane) Update() bool {
	u, ok := p.widget.(Updater)
	if !ok || !u.HandleUpdate() {
		return false
	}
	p.invalidated = true
	return true
}

// Render draws the border and widget into area when the pane is invalidated.
func (p *Pane) Render(buf *core.Buffer, area core.Rect) {
	if !p.invalidated {
		return
	}
	p.invalidated = false
	if p.border > 0 {
		style := tcell.StyleDefault.Foreground(borderColors[p.focus])
		buf.DrawBorder(area, style, core.RoundedBorder, p.name)
	}
	inner := area.Inset(p.border)
	buf.Fill(inner, ' ', tcell.StyleDefault)
	p.widget.Render(buf, inner)
}

func (p *Pane) BorderAt(x, y uint16) Border {
	if x >= p.w || y >= p.h {
		return BorderNone
	}
	switch {
	case x < p.border:
		return BorderLeft
	case x >= p.w-p.border:
		return BorderRight
	case y < p.border:
		return BorderTop
	case y >= p.h-p.border:
		return BorderBottom
	}
	return BorderNone
}
