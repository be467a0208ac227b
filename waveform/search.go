package waveform

import "sort"

// SearchMode picks the direction of a search around a key.
type SearchMode uint8

const (
	// Before finds the greatest entry at or before the key.
	Before SearchMode = iota
	// After finds the least entry at or after the key.
	After
)

// ValueResult is a stored value and the timestamp index of its change.
type ValueResult struct {
	Kind           Kind
	Vector         BitVector
	Real           float64
	TimestampIndex int
}

func (r ValueResult) IsUnknown() bool {
	return r.Kind == KindVector && r.Vector.IsUnknown()
}

func (r ValueResult) IsHighImpedance() bool {
	return r.Kind == KindVector && r.Vector.IsHighImpedance()
}

// SearchTimestamp returns the index of the timestamp nearest t in the given
// direction, including t itself.
func (w *Waveform) SearchTimestamp(t uint64, mode SearchMode) (int, bool) {
	n := len(w.timestamps)
	i := sort.Search(n, func(i int) bool { return w.timestamps[i] >= t })
	if mode == After {
		return i, i < n
	}
	if i < n && w.timestamps[i] == t {
		return i, true
	}
	return i - 1, i > 0
}

// changeAt returns the position k in s.indices of the change nearest idx in
// the given direction.
func (s *signal) changeAt(idx int, mode SearchMode) (int, bool) {
	n := len(s.indices)
	k := sort.SearchInts(s.indices, idx)
	if mode == After {
		return k, k < n
	}
	if k < n && s.indices[k] == idx {
		return k, true
	}
	return k - 1, k > 0
}

func (s *signal) result(k int, bit *int) ValueResult {
	r := ValueResult{Kind: s.kind, TimestampIndex: s.indices[k]}
	if s.kind == KindReal {
		r.Real = s.reals[k]
		return r
	}
	if bit != nil {
		r.Vector = FromLogic(s.vectors[k].Bit(*bit))
	} else {
		r.Vector = s.vectors[k]
	}
	return r
}

// SearchValue returns the change of id nearest tsIndex in the given direction.
// With a bit index, only transitions of that bit count: Before returns the
// most recent change of the bit at or before tsIndex, After the earliest
// change of the bit at or after it. The bit index is ignored for reals.
func (w *Waveform) SearchValue(id, tsIndex int, mode SearchMode, bit *int) (ValueResult, bool) {
	s, ok := w.signals[id]
	if !ok || tsIndex < 0 {
		return ValueResult{}, false
	}
	k, ok := s.changeAt(tsIndex, mode)
	if !ok {
		return ValueResult{}, false
	}
	if bit == nil || s.kind == KindReal {
		return s.result(k, nil), true
	}
	b := *bit
	if b < 0 || b >= s.width {
		return ValueResult{}, false
	}
	changes := s.bitChanges(b)
	if mode == Before {
		p := sort.SearchInts(changes, k+1) - 1
		if p < 0 {
			return ValueResult{}, false
		}
		return s.result(changes[p], bit), true
	}
	p := sort.SearchInts(changes, k)
	if p == len(changes) {
		return ValueResult{}, false
	}
	return s.result(changes[p], bit), true
}

// bitChanges returns the positions in s.vectors where bit b differs from the
// previous change, position 0 included. The list is built on first use.
func (s *signal) bitChanges(b int) []int {
	s.bitOnce[b].Do(func() {
		var out []int
		for k := range s.vectors {
			if k == 0 || s.vectors[k-1].Bit(b) != s.vectors[k].Bit(b) {
				out = append(out, k)
			}
		}
		s.bits[b] = out
	})
	return s.bits[b]
}
