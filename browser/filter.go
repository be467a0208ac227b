package browser

import "strings"

// SectionKind is the shape of one dotted section of a netlist filter.
type SectionKind int

const (
	Match SectionKind = iota
	Wildcard
	WildcardDouble
	WildcardBefore
	WildcardAfter
	WildcardBoth
)

// FilterSection is one hierarchy level of a filter expression.
type FilterSection struct {
	Kind SectionKind
	Text string
}

// Filter is a parsed netlist filter such as "top.*cpu*.**".
type Filter []FilterSection

// ParseFilter splits s on '.' and '/' into sections. Leading and trailing
// asterisks become wildcards anchored on the remaining text.
func ParseFilter(s string) Filter {
	s = strings.ReplaceAll(s, "/", ".")
	var f Filter
	for _, sec := range strings.Split(s, ".") {
		f = append(f, parseSection(sec))
	}
	return f
}

func parseSection(sec string) FilterSection {
	switch sec {
	case "*":
		return FilterSection{Kind: Wildcard}
	case "**":
		return FilterSection{Kind: WildcardDouble}
	}
	if len(sec) < 2 {
		return FilterSection{Kind: Match, Text: sec}
	}
	before := strings.HasPrefix(sec, "*")
	after := strings.HasSuffix(sec, "*")
	switch {
	case before && after && len(sec) > 2:
		return FilterSection{Kind: WildcardBoth, Text: sec[1 : len(sec)-1]}
	case before:
		return FilterSection{Kind: WildcardBefore, Text: sec[1:]}
	case after:
		return FilterSection{Kind: WildcardAfter, Text: sec[:len(sec)-1]}
	}
	return FilterSection{Kind: Match, Text: sec}
}

// Empty reports whether the filter selects everything.
func (f Filter) Empty() bool {
	return len(f) == 0 || (len(f) == 1 && f[0].Kind == Match && f[0].Text == "")
}

// Glob renders the filter as an SQLite GLOB pattern over dotted full names.
// GLOB cannot confine '*' to one segment, so the pattern is a superset of
// Match and callers refine its rows with Match.
func (f Filter) Glob() string {
	var sb strings.Builder
	for i, sec := range f {
		// "**" may match zero segments, so it swallows its separators.
		if i > 0 && sec.Kind != WildcardDouble && f[i-1].Kind != WildcardDouble {
			sb.WriteByte('.')
		}
		sb.WriteString(sec.glob())
	}
	sb.WriteByte('*')
	return sb.String()
}

// Match reports whether the filter matches a leading run of segments, so a
// filter naming a scope selects everything below it.
func (f Filter) Match(segments []string) bool {
	if f.Empty() {
		return true
	}
	return matchSections(f, segments)
}

func matchSections(f Filter, segs []string) bool {
	if len(f) == 0 {
		return true
	}
	if f[0].Kind == WildcardDouble {
		for i := 0; i <= len(segs); i++ {
			if matchSections(f[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 || !f[0].matches(segs[0]) {
		return false
	}
	return matchSections(f[1:], segs[1:])
}

func (sec FilterSection) matches(seg string) bool {
	switch sec.Kind {
	case Wildcard, WildcardDouble:
		return true
	case WildcardBefore:
		return strings.HasSuffix(seg, sec.Text)
	case WildcardAfter:
		return strings.HasPrefix(seg, sec.Text)
	case WildcardBoth:
		return strings.Contains(seg, sec.Text)
	default:
		// An empty section is what the user has not typed yet.
		return sec.Text == "" || seg == sec.Text
	}
}

func (sec FilterSection) glob() string {
	text := escapeGlob(sec.Text)
	switch sec.Kind {
	case Wildcard:
		return "*"
	case WildcardDouble:
		return "*"
	case WildcardBefore:
		return "*" + text
	case WildcardAfter:
		return text + "*"
	case WildcardBoth:
		return "*" + text + "*"
	default:
		if text == "" {
			return "*"
		}
		return text
	}
}

// escapeGlob quotes GLOB metacharacters so they match literally.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']':
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
