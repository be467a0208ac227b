// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/viewer/waveform.go
// Summary: Waveform pane: the timescale ruler followed by one query row per
// visible signal line.

package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/bus"
	"github.com/framegrace/nalu/internal/query"
	"github.com/framegrace/nalu/internal/timescale"
	"github.com/framegrace/nalu/waveform"
)

// Waveform draws signal values over the visible time window.
type Waveform struct {
	bus  *bus.Bus
	wave *waveform.Waveform
	ts   *timescale.Timescale
	rows []*RowEntry
}

func NewWaveform(b *bus.Bus) *Waveform {
	return &Waveform{bus: b, ts: timescale.New()}
}

// Load shows w; exponent is the power of ten of one timestamp unit.
func (v *Waveform) Load(w *waveform.Waveform, exponent int) {
	v.wave = w
	start, end := w.TimestampRange()
	v.ts.Load(start, end, end, exponent)
}

// Timescale exposes the visible window.
func (v *Waveform) Timescale() *timescale.Timescale { return v.ts }

func (v *Waveform) Resize(w, h int) {}

func (v *Waveform) HandleMouse(x, y int, kind core.MouseKind) {}

// applyTimescaleKey handles the zoom and pan keys. The shifted variants are
// the cursor-anchored forms, which share the centre-anchored behaviour.
func (v *Waveform) applyTimescaleKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	switch ev.Rune() {
	case '-', '_':
		v.ts.ZoomOut()
	case '=', '+':
		v.ts.ZoomIn()
	case '[', '{':
		v.ts.PanLeft()
	case ']', '}':
		v.ts.PanRight()
	default:
		return false
	}
	return true
}

func (v *Waveform) HandleKey(ev *tcell.EventKey) {
	if v.applyTimescaleKey(ev) {
		return
	}
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn, tcell.KeyEnter, tcell.KeyDelete:
		v.bus.Push(WaveformKey{Event: ev})
	case tcell.KeyRune:
		if r := ev.Rune(); r == 'g' || r == 'f' {
			v.bus.Push(WaveformKey{Event: ev})
		}
	}
}

// HandleUpdate takes the latest signal rows and any forwarded zoom keys.
func (v *Waveform) HandleUpdate() bool {
	updated := false
	if msgs := bus.Drain[UpdateSignals](v.bus); len(msgs) > 0 {
		v.rows = msgs[len(msgs)-1].Rows
		updated = true
	}
	for _, m := range bus.Drain[TimescaleKey](v.bus) {
		updated = v.applyTimescaleKey(m.Event) || updated
	}
	return updated
}

func (v *Waveform) Render(buf *core.Buffer, area core.Rect) {
	if area.H < 1 {
		return
	}
	x, y, w := int(area.X), int(area.Y), int(area.W)
	buf.SetStringClipped(x, y, w, v.ts.Ruler(w), Style)
	if v.wave == nil {
		return
	}
	_, max := v.wave.TimestampRange()
	for i, r := range v.rows {
		if i+1 >= int(area.H) {
			break
		}
		if r == nil {
			continue
		}
		req := query.Request{
			Start:        v.ts.Start,
			End:          v.ts.End,
			TimestampMax: max,
			Idcode:       r.Idcode,
			Bit:          r.Bit,
			Radix:        r.Radix,
			Selected:     r.Selected,
		}
		query.Query(v.wave, req, w).Render(buf, x, y+i+1)
	}
}
