package browser

import (
	"slices"
	"strconv"
	"strings"
)

// Path is a sequence of child indices from the root.
type Path []int

// Compare orders paths lexicographically; a prefix sorts first.
func (p Path) Compare(o Path) int {
	return slices.Compare(p, o)
}

// Contains reports whether p is a non-empty prefix of o (equal paths included).
func (p Path) Contains(o Path) bool {
	if len(p) == 0 || len(o) == 0 || len(p) > len(o) {
		return false
	}
	return slices.Equal(p, o[:len(p)])
}

// Equal reports whether both paths name the same node.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}

// Clone returns a copy that does not alias p.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Condense sorts paths and drops every path contained by an earlier one.
func Condense(paths []Path) []Path {
	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, Path.Compare)
	out := make([]Path, 0, len(sorted))
	for _, p := range sorted {
		if len(out) > 0 && out[len(out)-1].Contains(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
