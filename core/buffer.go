// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: core/buffer.go
// Summary: Off-screen grid of styled cells that panes render into.
// The buffer is blitted onto the terminal once per frame.

package core

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is a single styled glyph. A zero Ch marks the trailing half of a wide rune.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

var blank = Cell{Ch: ' ', Style: tcell.StyleDefault}

// RoundedBorder is the charset used for pane borders: h, v, tl, tr, bl, br.
var RoundedBorder = [6]rune{'─', '│', '╭', '╮', '╰', '╯'}

// Buffer is a w x h grid of cells.
type Buffer struct {
	w, h  int
	cells []Cell
}

// NewBuffer creates a blank buffer.
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (int, int) {
	return b.w, b.h
}

// Resize reallocates the grid and clears it.
func (b *Buffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	b.w, b.h = w, h
	b.cells = make([]Cell, w*h)
	b.Clear()
}

// Clear resets every cell to a blank space.
func (b *Buffer) Clear() {
	for i := range b.cells {
		b.cells[i] = blank
	}
}

// Get returns the cell at (x, y); out of range yields a blank cell.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return blank
	}
	return b.cells[y*b.w+x]
}

// Set writes a cell; out of range writes are ignored.
func (b *Buffer) Set(x, y int, ch rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	b.cells[y*b.w+x] = Cell{Ch: ch, Style: style}
}

// SetString writes s starting at (x, y) and returns the number of columns used.
// Wide runes take two columns; writing stops at the right edge of the buffer.
func (b *Buffer) SetString(x, y int, s string, style tcell.Style) int {
	return b.SetStringClipped(x, y, b.w-x, s, style)
}

// SetStringClipped is SetString limited to maxW columns.
func (b *Buffer) SetStringClipped(x, y, maxW int, s string, style tcell.Style) int {
	col := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > maxW {
			break
		}
		b.Set(x+col, y, r, style)
		if rw == 2 {
			b.Set(x+col+1, y, 0, style)
		}
		col += rw
	}
	return col
}

// Fill paints every cell of r.
func (b *Buffer) Fill(r Rect, ch rune, style tcell.Style) {
	for y := int(r.Y); y < int(r.Y)+int(r.H); y++ {
		for x := int(r.X); x < int(r.X)+int(r.W); x++ {
			b.Set(x, y, ch, style)
		}
	}
}

// DrawBorder draws a box around r with an optional title on the top edge.
func (b *Buffer) DrawBorder(r Rect, style tcell.Style, charset [6]rune, title string) {
	if r.W < 2 || r.H < 2 {
		return
	}
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := x0+int(r.W)-1, y0+int(r.H)-1
	for x := x0 + 1; x < x1; x++ {
		b.Set(x, y0, charset[0], style)
		b.Set(x, y1, charset[0], style)
	}
	for y := y0 + 1; y < y1; y++ {
		b.Set(x0, y, charset[1], style)
		b.Set(x1, y, charset[1], style)
	}
	b.Set(x0, y0, charset[2], style)
	b.Set(x1, y0, charset[3], style)
	b.Set(x0, y1, charset[4], style)
	b.Set(x1, y1, charset[5], style)
	if title != "" {
		b.SetStringClipped(x0+1, y0, int(r.W)-2, title, style)
	}
}

// Line returns row y as a string, skipping wide-rune continuation cells.
func (b *Buffer) Line(y int) string {
	var sb strings.Builder
	for x := 0; x < b.w; x++ {
		if c := b.Get(x, y); c.Ch != 0 {
			sb.WriteRune(c.Ch)
		}
	}
	return sb.String()
}
