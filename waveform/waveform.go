// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: waveform/waveform.go
// Summary: Timestamp-indexed store of signal value changes. It is filled by
// the load pipeline and read-only once published.

package waveform

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownIdcode  = errors.New("unknown idcode")
	ErrTimestampOrder = errors.New("timestamp out of order")
	ErrWidthMismatch  = errors.New("bit vector width mismatch")
	ErrKindMismatch   = errors.New("signal kind mismatch")
)

// Kind distinguishes vector signals from real signals.
type Kind uint8

const (
	KindVector Kind = iota
	KindReal
)

// signal holds the changes of one idcode. indices[k] is the timestamp index
// of change k; exactly one of vectors and reals is used. bits[b] lists the
// changes of vector bit b and is filled lazily once the store is published.
type signal struct {
	kind    Kind
	width   int
	indices []int
	vectors []BitVector
	reals   []float64

	bitOnce []sync.Once
	bits    [][]int
}

// Waveform is the value history of every signal in a dump.
type Waveform struct {
	timestamps []uint64
	signals    map[int]*signal
}

// New returns an empty store.
func New() *Waveform {
	return &Waveform{signals: make(map[int]*signal)}
}

// InitVector declares a vector signal. Redeclaring an idcode with the same
// kind and width is a no-op, as VCD aliases share idcodes.
func (w *Waveform) InitVector(id, width int) error {
	if s, ok := w.signals[id]; ok {
		if s.kind != KindVector {
			return errors.Wrapf(ErrKindMismatch, "idcode %d redeclared as vector", id)
		}
		if s.width != width {
			return errors.Wrapf(ErrWidthMismatch, "idcode %d redeclared with width %d", id, width)
		}
		return nil
	}
	w.signals[id] = &signal{
		kind:    KindVector,
		width:   width,
		bitOnce: make([]sync.Once, width),
		bits:    make([][]int, width),
	}
	return nil
}

// InitReal declares a real signal.
func (w *Waveform) InitReal(id int) error {
	if s, ok := w.signals[id]; ok {
		if s.kind != KindReal {
			return errors.Wrapf(ErrKindMismatch, "idcode %d redeclared as real", id)
		}
		return nil
	}
	w.signals[id] = &signal{kind: KindReal}
	return nil
}

// InsertTimestamp appends t. Timestamps must be strictly increasing; a repeat
// of the last timestamp is accepted and ignored.
func (w *Waveform) InsertTimestamp(t uint64) error {
	if n := len(w.timestamps); n > 0 {
		last := w.timestamps[n-1]
		if t == last {
			return nil
		}
		if t < last {
			return errors.Wrapf(ErrTimestampOrder, "#%d after #%d", t, last)
		}
	}
	w.timestamps = append(w.timestamps, t)
	return nil
}

// current returns the index of the last timestamp, inserting #0 when a value
// arrives before any timestamp.
func (w *Waveform) current() int {
	if len(w.timestamps) == 0 {
		w.timestamps = append(w.timestamps, 0)
	}
	return len(w.timestamps) - 1
}

func (w *Waveform) lookup(id int, kind Kind) (*signal, error) {
	s, ok := w.signals[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdcode, "idcode %d", id)
	}
	if s.kind != kind {
		return nil, errors.Wrapf(ErrKindMismatch, "idcode %d", id)
	}
	return s, nil
}

// UpdateVector records bv for id at the last timestamp. Narrower vectors are
// left-extended; wider ones are rejected. A value equal to the previous one
// is not recorded, so every stored change is a real transition.
func (w *Waveform) UpdateVector(id int, bv BitVector) error {
	s, err := w.lookup(id, KindVector)
	if err != nil {
		return err
	}
	if bv.Width() > s.width {
		return errors.Wrapf(ErrWidthMismatch, "idcode %d: width %d, got %d", id, s.width, bv.Width())
	}
	bv = bv.Extend(s.width)
	idx := w.current()
	n := len(s.indices)
	if n > 0 && s.indices[n-1] == idx {
		s.vectors[n-1] = bv
		return nil
	}
	if n > 0 && s.vectors[n-1].Equal(bv) {
		return nil
	}
	s.indices = append(s.indices, idx)
	s.vectors = append(s.vectors, bv)
	return nil
}

// UpdateReal records f for id at the last timestamp.
func (w *Waveform) UpdateReal(id int, f float64) error {
	s, err := w.lookup(id, KindReal)
	if err != nil {
		return err
	}
	idx := w.current()
	n := len(s.indices)
	if n > 0 && s.indices[n-1] == idx {
		s.reals[n-1] = f
		return nil
	}
	if n > 0 && s.reals[n-1] == f {
		return nil
	}
	s.indices = append(s.indices, idx)
	s.reals = append(s.reals, f)
	return nil
}

// TimestampRange returns [first, last+1), or (0, 0) when empty.
func (w *Waveform) TimestampRange() (uint64, uint64) {
	if len(w.timestamps) == 0 {
		return 0, 0
	}
	return w.timestamps[0], w.timestamps[len(w.timestamps)-1] + 1
}

// Timestamp returns the timestamp at index i.
func (w *Waveform) Timestamp(i int) uint64 { return w.timestamps[i] }

// Len is the number of distinct timestamps.
func (w *Waveform) Len() int { return len(w.timestamps) }

// Signal reports the kind and width of id.
func (w *Waveform) Signal(id int) (Kind, int, bool) {
	s, ok := w.signals[id]
	if !ok {
		return 0, 0, false
	}
	return s.kind, s.width, true
}

// Changes is the number of recorded transitions of id.
func (w *Waveform) Changes(id int) int {
	if s, ok := w.signals[id]; ok {
		return len(s.indices)
	}
	return 0
}
