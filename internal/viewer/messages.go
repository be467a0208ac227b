// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/viewer/messages.go
// Summary: Messages exchanged between the viewers over the bus.

package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/vcd"
	"github.com/framegrace/nalu/waveform"
)

// NetEntry is a variable picked in the netlist.
type NetEntry struct {
	Path     string
	Variable *vcd.Variable
}

// NetlistAppend asks the signal viewer to append entries at the end.
type NetlistAppend struct {
	Entries []NetEntry
}

// NetlistInsert asks the signal viewer to insert entries after its cursor.
type NetlistInsert struct {
	Entries []NetEntry
}

// FilterChanged carries the new text of the filter input.
type FilterChanged struct {
	Text string
}

// WaveformKey is a navigation key pressed in the waveform viewer that the
// signal viewer handles.
type WaveformKey struct {
	Event *tcell.EventKey
}

// TimescaleKey is a zoom or pan key pressed in the signal viewer.
type TimescaleKey struct {
	Event *tcell.EventKey
}

// RowEntry describes what the waveform viewer draws for one signal row.
type RowEntry struct {
	Idcode   int
	Bit      *int
	Radix    waveform.Radix
	Selected bool
}

// UpdateSignals replaces the waveform rows. Rows has one element per visible
// signal line; nil rows stay blank.
type UpdateSignals struct {
	Rows []*RowEntry
}
