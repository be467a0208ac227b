package browser

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/nalu/core"
)

var (
	primaryStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	secondaryStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(128, 128, 128))
)

// SelectedStyle returns the highlight for a line, or base when unselected.
func SelectedStyle(base tcell.Style, selected, primary bool) tcell.Style {
	switch {
	case selected && primary:
		return primaryStyle
	case selected:
		return secondaryStyle
	default:
		return base
	}
}

// LineText formats the line for path: indent, expander and name.
func LineText[E fmt.Stringer](st *State, root *Node[E], path Path) (string, bool) {
	node := root.NodeAt(path)
	if node == nil {
		return "", false
	}
	var sb strings.Builder
	if st.Indent && len(path) > 1 {
		sb.WriteString(strings.Repeat("    ", len(path)-1))
	}
	if node.IsParent() {
		if node.Expanded {
			sb.WriteString("[-] ")
		} else {
			sb.WriteString("[+] ")
		}
	}
	if st.FullName {
		sb.WriteString(strings.Join(root.FullName(path), "."))
	} else {
		sb.WriteString(node.String())
	}
	return sb.String(), true
}

// Render draws the visible part of root into area.
func Render[E fmt.Stringer](st *State, root *Node[E], buf *core.Buffer, area core.Rect, style tcell.Style) {
	rows := int(area.H)
	y := int(area.Y)
	x := int(area.X)
	w := int(area.W)
	if st.Bounds {
		if rows < 2 {
			return
		}
		rows -= 2
		arrow := " "
		if st.scroll > 0 {
			arrow = "↑"
		}
		buf.SetStringClipped(x, y, w, strings.Repeat(arrow, w), style)
		y++
	}
	for i := 0; i < rows; i++ {
		line := st.scroll + i
		text, ok := LineText(st, root, root.PathAt(line))
		lineStyle := style
		if ok {
			lineStyle = SelectedStyle(style, st.IsSelected(line), line == st.cursor)
		}
		if pad := w - runewidth.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		buf.SetStringClipped(x, y+i, w, text, lineStyle)
	}
	if st.Bounds {
		arrow := " "
		if root.VisibleLen()-st.scroll > rows {
			arrow = "↓"
		}
		buf.SetStringClipped(x, y+rows, w, strings.Repeat(arrow, w), style)
	}
}
