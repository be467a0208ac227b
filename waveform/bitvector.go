// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: waveform/bitvector.go
// Summary: Four-state bit vectors stored as value and mask words.

package waveform

import (
	"strings"

	"github.com/pkg/errors"
)

// Logic is the state of a single bit.
type Logic uint8

// Encoding (value, mask): Zero (0,0), One (1,0), Unknown (0,1),
// HighImpedance (1,1).
const (
	Zero Logic = iota
	One
	Unknown
	HighImpedance
)

func (l Logic) String() string {
	switch l {
	case Zero:
		return "0"
	case One:
		return "1"
	case Unknown:
		return "X"
	case HighImpedance:
		return "Z"
	}
	return "?"
}

func logicFromBits(v, m uint64) Logic {
	switch {
	case m == 0 && v == 0:
		return Zero
	case m == 0:
		return One
	case v == 0:
		return Unknown
	}
	return HighImpedance
}

func (l Logic) bits() (v, m uint64) {
	switch l {
	case One:
		return 1, 0
	case Unknown:
		return 0, 1
	case HighImpedance:
		return 1, 1
	}
	return 0, 0
}

// BitVector is a fixed-width four-state vector. Bit 0 is the least
// significant bit.
type BitVector struct {
	width int
	value []uint64
	mask  []uint64
}

func words(width int) int {
	return (width + 63) / 64
}

// NewBitVector returns an all-zero vector of width bits.
func NewBitVector(width int) BitVector {
	n := words(width)
	return BitVector{width: width, value: make([]uint64, n), mask: make([]uint64, n)}
}

// FromLogic returns a one-bit vector holding l.
func FromLogic(l Logic) BitVector {
	bv := NewBitVector(1)
	bv.SetBit(0, l)
	return bv
}

// FromUint64 returns a fully known vector holding the low width bits of v.
func FromUint64(width int, v uint64) BitVector {
	bv := NewBitVector(width)
	if width > 0 {
		bv.value[0] = v
		if width < 64 {
			bv.value[0] &= (1 << uint(width)) - 1
		}
	}
	return bv
}

// ParseBitVector reads a VCD value string, most significant bit first.
// Accepted characters are 0 and 1, x/X/u/U/w/W/- for Unknown and z/Z for
// HighImpedance.
func ParseBitVector(s string) (BitVector, error) {
	if s == "" {
		return BitVector{}, errors.New("empty bit vector")
	}
	bv := NewBitVector(len(s))
	for i := 0; i < len(s); i++ {
		var l Logic
		switch s[i] {
		case '0':
			l = Zero
		case '1':
			l = One
		case 'x', 'X', 'u', 'U', 'w', 'W', '-':
			l = Unknown
		case 'z', 'Z':
			l = HighImpedance
		default:
			return BitVector{}, errors.Errorf("invalid logic character %q in %q", s[i], s)
		}
		bv.SetBit(len(s)-1-i, l)
	}
	return bv, nil
}

// Width is the number of bits.
func (bv BitVector) Width() int { return bv.width }

// Bit returns bit i, or Zero when i is out of range.
func (bv BitVector) Bit(i int) Logic {
	if i < 0 || i >= bv.width {
		return Zero
	}
	w, o := i/64, uint(i%64)
	return logicFromBits((bv.value[w]>>o)&1, (bv.mask[w]>>o)&1)
}

// SetBit sets bit i. Out of range indices are ignored.
func (bv BitVector) SetBit(i int, l Logic) {
	if i < 0 || i >= bv.width {
		return
	}
	w, o := i/64, uint(i%64)
	v, m := l.bits()
	bv.value[w] = bv.value[w]&^(1<<o) | v<<o
	bv.mask[w] = bv.mask[w]&^(1<<o) | m<<o
}

// Extend widens bv to width following VCD left-extension: a leading 0 or 1
// pads with 0, a leading X pads with X and a leading Z pads with Z. A vector
// already at least width wide is returned unchanged.
func (bv BitVector) Extend(width int) BitVector {
	if bv.width >= width {
		return bv
	}
	pad := Zero
	if bv.width > 0 {
		switch msb := bv.Bit(bv.width - 1); msb {
		case Unknown, HighImpedance:
			pad = msb
		}
	}
	out := NewBitVector(width)
	copy(out.value, bv.value)
	copy(out.mask, bv.mask)
	for i := bv.width; i < width; i++ {
		out.SetBit(i, pad)
	}
	return out
}

// Equal reports whether both vectors have the same width and bits.
func (bv BitVector) Equal(o BitVector) bool {
	if bv.width != o.width {
		return false
	}
	for i := range bv.value {
		if bv.value[i] != o.value[i] || bv.mask[i] != o.mask[i] {
			return false
		}
	}
	return true
}

// IsUnknown reports whether any bit is Unknown.
func (bv BitVector) IsUnknown() bool {
	for i := range bv.mask {
		if bv.mask[i]&^bv.value[i] != 0 {
			return true
		}
	}
	return false
}

// IsHighImpedance reports whether any bit is HighImpedance.
func (bv BitVector) IsHighImpedance() bool {
	for i := range bv.mask {
		if bv.mask[i]&bv.value[i] != 0 {
			return true
		}
	}
	return false
}

// IsKnown reports whether every bit is Zero or One.
func (bv BitVector) IsKnown() bool {
	for _, m := range bv.mask {
		if m != 0 {
			return false
		}
	}
	return true
}

// Uint64 returns the low 64 value bits; meaningful only when IsKnown.
func (bv BitVector) Uint64() uint64 {
	if len(bv.value) == 0 {
		return 0
	}
	return bv.value[0]
}

func (bv BitVector) String() string {
	var sb strings.Builder
	for i := bv.width - 1; i >= 0; i-- {
		sb.WriteString(bv.Bit(i).String())
	}
	return sb.String()
}
