// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: core/driver.go
// Summary: Adapts a tcell.Screen so a Buffer can be presented on the terminal.

package core

import "github.com/gdamore/tcell/v2"

// ScreenDriver is the subset of tcell.Screen the viewer needs.
type ScreenDriver interface {
	Init() error
	Fini()
	Size() (int, int)
	PollEvent() tcell.Event
	Show()
	Draw(buf *Buffer)
}

// TcellScreenDriver adapts a tcell.Screen to the ScreenDriver interface.
type TcellScreenDriver struct {
	screen tcell.Screen
	closed bool
}

// NewTcellScreenDriver wraps the provided screen.
func NewTcellScreenDriver(screen tcell.Screen) *TcellScreenDriver {
	return &TcellScreenDriver{screen: screen}
}

func (d *TcellScreenDriver) Init() error {
	if err := d.screen.Init(); err != nil {
		return err
	}
	d.screen.EnableMouse()
	d.screen.HideCursor()
	d.screen.SetStyle(tcell.StyleDefault)
	return nil
}

// Fini restores the terminal. Calls after the first are no-ops, so the panic
// handler and the normal exit path may both call it.
func (d *TcellScreenDriver) Fini() {
	if d.closed {
		return
	}
	d.closed = true
	d.screen.DisableMouse()
	d.screen.Fini()
}

func (d *TcellScreenDriver) Size() (int, int) {
	return d.screen.Size()
}

func (d *TcellScreenDriver) PollEvent() tcell.Event {
	return d.screen.PollEvent()
}

func (d *TcellScreenDriver) Show() {
	d.screen.Show()
}

// Draw copies buf onto the screen. Continuation cells of wide runes are skipped
// because tcell fills them when the leading rune is set.
func (d *TcellScreenDriver) Draw(buf *Buffer) {
	w, h := buf.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := buf.Get(x, y)
			if c.Ch == 0 {
				continue
			}
			d.screen.SetContent(x, y, c.Ch, nil, c.Style)
		}
	}
}
