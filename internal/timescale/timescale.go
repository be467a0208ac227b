// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/timescale/timescale.go
// Summary: Visible time window with pan and zoom, and the tick ruler drawn
// above the waveforms.

package timescale

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Timescale is the visible range [Start, End) in timestamp units. One unit
// is 10^Exponent seconds.
type Timescale struct {
	Start, End uint64
	Cursor     uint64
	Exponent   int
	Max        uint64
}

// New returns the range shown before any waveform is loaded.
func New() *Timescale {
	return &Timescale{End: 1_000_000, Exponent: -6, Max: 1_000_000}
}

// Load replaces the range after a waveform load.
func (ts *Timescale) Load(start, end, max uint64, exponent int) {
	ts.Start, ts.End = start, end
	ts.Max = max
	ts.Exponent = exponent
}

// Width is End-Start, or 1 for an empty range.
func (ts *Timescale) Width() uint64 {
	if ts.Start < ts.End {
		return ts.End - ts.Start
	}
	return 1
}

func (ts *Timescale) center() uint64 {
	return ts.Start/2 + ts.End/2 + (ts.Start%2+ts.End%2)/2
}

// PanLeft moves the window back by half its width, stopping at zero.
func (ts *Timescale) PanLeft() {
	w := ts.Width()
	if ts.Start > w/2 {
		ts.Start -= w / 2
		ts.End -= w / 2
		return
	}
	ts.Start, ts.End = 0, w
}

// PanRight moves the window forward by half its width; the end never passes
// Max plus half a width.
func (ts *Timescale) PanRight() {
	w := ts.Width()
	if ts.End < ts.Max+w/2 {
		ts.Start += w / 2
		ts.End += w / 2
		return
	}
	ts.Start = 0
	if ts.Max > w/2 {
		ts.Start = ts.Max - w/2
	}
	ts.End = ts.Start + w
}

// ZoomIn halves the width around the centre.
func (ts *Timescale) ZoomIn() {
	c := ts.center()
	ts.Start = (ts.Start + c) / 2
	ts.End = (ts.End + c) / 2
}

// ZoomOut doubles the width around the centre, clamped at zero.
func (ts *Timescale) ZoomOut() {
	c, w := ts.center(), ts.Width()
	if c >= w {
		ts.Start, ts.End = c-w, c+w
		return
	}
	ts.Start, ts.End = 0, 2*w
}

// Ruler returns tick labels for a row of width cells. The last label may run
// past width; callers clip.
func (ts *Timescale) Ruler(width int) string {
	if ts.Start == ts.End {
		return fmt.Sprintf("|%d|", ts.Start)
	}
	var step uint64
	if width > 0 {
		step = (ts.End - ts.Start) / uint64(width)
	}
	var sb strings.Builder
	cur := ts.Start
	for printed := 0; printed < width; {
		label := "|" + FormatTime(cur, step, ts.Exponent)
		sb.WriteString(label)
		printed += runewidth.StringWidth(label)
		cur += step * uint64(len(label))
	}
	return sb.String()
}

var units = map[int]string{
	-15: "fs", -12: "ps", -9: "ns", -6: "us", -3: "ms",
	0: "s", 3: "Ks", 6: "Ms", 9: "Gs", 12: "Ps", 15: "Es",
}

// FormatTime prints timestamp t, resolved to the power of ten of step, in the
// closest engineering unit.
func FormatTime(t, step uint64, exponent int) string {
	offset := 0
	for step >= 10 {
		t /= 10
		step /= 10
		offset++
	}
	pow := offset + exponent
	rem := ((pow % 3) + 3) % 3
	pow -= rem
	for ; rem > 0; rem-- {
		t *= 10
	}
	div, shift := uint64(1), 0
	for t >= 1000*div {
		div *= 1000
		shift += 3
	}
	unit, ok := units[pow+shift]
	if !ok {
		unit = fmt.Sprintf("e%ds", pow+shift)
	}
	if shift == 0 {
		return strconv.FormatUint(t, 10) + unit
	}
	frac := fmt.Sprintf("%0*d", shift, t%div)
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}
	return fmt.Sprintf("%d.%s%s", t/div, frac, unit)
}
