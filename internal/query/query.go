// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/query/query.go
// Summary: Maps a time window of one signal onto terminal cells, classifies
// each cell and merges neighbours into styled runs.

package query

import (
	"math/bits"

	"github.com/framegrace/nalu/waveform"
)

// Source is the read side of the waveform store.
type Source interface {
	SearchTimestamp(t uint64, mode waveform.SearchMode) (int, bool)
	SearchValue(id, tsIndex int, mode waveform.SearchMode, bit *int) (waveform.ValueResult, bool)
}

// Kind classifies what happens to a signal inside one cell.
type Kind uint8

const (
	None Kind = iota
	Static
	StaticVoid
	SingleEdge
	MultipleEdge
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "Static"
	case StaticVoid:
		return "StaticVoid"
	case SingleEdge:
		return "SingleEdge"
	case MultipleEdge:
		return "MultipleEdge"
	}
	return "None"
}

// Cell is a classified span of Width screen cells.
type Cell struct {
	Kind  Kind
	Value waveform.ValueResult
	Width int
}

// Request describes one row.
type Request struct {
	Start, End   uint64
	TimestampMax uint64
	Idcode       int
	Bit          *int
	Radix        waveform.Radix
	Selected     bool
}

// Classify evaluates the timestamp range [s, e) of signal id.
//
// The void and static tests follow the value lookup, so a cell that starts
// at or after the last timestamp still shows the last known value (StaticVoid
// at or past max, Static when no timestamp lies in [s, e)) instead of None.
// Cells that start before the last timestamp classify the same either way.
func Classify(src Source, id int, bit *int, s, e, max uint64) Cell {
	none := Cell{Kind: None, Width: 1}
	if e == 0 {
		return none
	}
	idxLast, ok := src.SearchTimestamp(e-1, waveform.Before)
	if !ok {
		return none
	}
	r, ok := src.SearchValue(id, idxLast, waveform.Before, bit)
	if !ok {
		return none
	}
	if s >= max {
		return Cell{Kind: StaticVoid, Value: r, Width: 1}
	}
	idxFirst, ok := src.SearchTimestamp(s, waveform.After)
	if !ok || r.TimestampIndex < idxFirst {
		return Cell{Kind: Static, Value: r, Width: 1}
	}
	if r.TimestampIndex == 0 {
		return Cell{Kind: SingleEdge, Value: r, Width: 1}
	}
	prev, ok := src.SearchValue(id, r.TimestampIndex-1, waveform.Before, bit)
	if ok && prev.TimestampIndex >= idxFirst {
		return Cell{Kind: MultipleEdge, Width: 1}
	}
	return Cell{Kind: SingleEdge, Value: r, Width: 1}
}

// bounds returns the timestamp range of cell i of w over [a, b).
func bounds(a, b uint64, i, w int) (uint64, uint64) {
	span := b - a
	at := func(k uint64) uint64 {
		hi, lo := bits.Mul64(k, span)
		q, _ := bits.Div64(hi, lo, uint64(w))
		return a + q
	}
	return at(uint64(i)), at(uint64(i + 1))
}

// Cells classifies each of the width cells of req.
func Cells(src Source, req Request, width int) []Cell {
	if width <= 0 || req.End < req.Start {
		return nil
	}
	out := make([]Cell, width)
	for i := range out {
		s, e := bounds(req.Start, req.End, i, width)
		out[i] = Classify(src, req.Idcode, req.Bit, s, e, req.TimestampMax)
	}
	return out
}

// Merge coalesces neighbours left to right. Equal kinds among None,
// MultipleEdge, Static and StaticVoid merge with the later value winning; a
// Static after a SingleEdge stretches the edge's run.
func Merge(cells []Cell) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		n := len(out)
		if n == 0 {
			out = append(out, c)
			continue
		}
		last := &out[n-1]
		switch {
		case last.Kind == c.Kind && c.Kind != SingleEdge:
			last.Width += c.Width
			last.Value = c.Value
		case last.Kind == SingleEdge && c.Kind == Static:
			last.Width += c.Width
			last.Value = c.Value
		default:
			out = append(out, c)
		}
	}
	return out
}

// Query renders one signal row of width cells.
func Query(src Source, req Request, width int) Row {
	cells := Merge(Cells(src, req, width))
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = c.Run(req.Radix, req.Selected)
	}
	return row
}
