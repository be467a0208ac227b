package waveform

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"
)

// Radix selects how multi-bit values are printed.
type Radix uint8

const (
	Binary Radix = iota
	Octal
	Decimal
	Hexadecimal
)

var radixNames = [...]string{"Binary", "Octal", "Decimal", "Hexadecimal"}

func (r Radix) String() string {
	if int(r) < len(radixNames) {
		return radixNames[r]
	}
	return "Radix(?)"
}

// ParseRadix accepts the names returned by Radix.String.
func ParseRadix(s string) (Radix, error) {
	for i, n := range radixNames {
		if n == s {
			return Radix(i), nil
		}
	}
	return 0, errors.Errorf("unknown radix %q", s)
}

const digitChars = "0123456789abcdef"

// Format prints bv in radix r. Octal and hexadecimal digits whose bits are
// all HighImpedance print Z; any other digit with an unknown or
// high-impedance bit prints X. Decimal collapses the same way over the whole
// vector.
func (bv BitVector) Format(r Radix) string {
	switch r {
	case Binary:
		return bv.String()
	case Octal:
		return bv.formatGroups(3)
	case Decimal:
		return bv.formatDecimal()
	}
	return bv.formatGroups(4)
}

func (bv BitVector) formatGroups(bits int) string {
	if bv.width == 0 {
		return ""
	}
	n := (bv.width + bits - 1) / bits
	out := make([]byte, n)
	for d := 0; d < n; d++ {
		lo := d * bits
		hi := min(lo+bits, bv.width)
		digit, z, x := 0, 0, 0
		for i := lo; i < hi; i++ {
			switch bv.Bit(i) {
			case One:
				digit |= 1 << uint(i-lo)
			case Unknown:
				x++
			case HighImpedance:
				z++
			}
		}
		c := digitChars[digit]
		switch {
		case z == hi-lo:
			c = 'Z'
		case x > 0 || z > 0:
			c = 'X'
		}
		out[n-1-d] = c
	}
	return string(out)
}

func (bv BitVector) formatDecimal() string {
	if bv.width == 0 {
		return ""
	}
	if !bv.IsKnown() {
		allZ := true
		for i := 0; i < bv.width; i++ {
			if bv.Bit(i) != HighImpedance {
				allZ = false
				break
			}
		}
		if allZ {
			return "Z"
		}
		return "X"
	}
	if len(bv.value) == 1 {
		return strconv.FormatUint(bv.value[0], 10)
	}
	v := new(big.Int)
	for i := len(bv.value) - 1; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(bv.value[i]))
	}
	return v.String()
}
