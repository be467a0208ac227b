package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/viewer"
)

var helpLines = []string{
	"Arrows move between panes, Enter focuses, Esc releases focus.",
	"Browser: Enter expand, a append, i insert, f full names.",
	"List: Enter expand, g group, Delete remove, f full names.",
	"Viewer: - = zoom, [ ] pan, other list keys are forwarded.",
	"Global: p palette, r reload, c config, q quit.",
	"Palette: save, save!, load, load!, reload, quit.",
}

var overlayBorder = tcell.StyleDefault.Foreground(tcell.ColorWhite)

// overlayRect centres a box of height rows, one column in from each side.
func overlayRect(w, h, height int) core.Rect {
	y, ht := 0, h
	if h > height {
		y, ht = (h-height)/2, height
	}
	x, wd := 0, w
	if w > 4 {
		x, wd = 1, w-2
	}
	return core.Rect{X: uint16(x), Y: uint16(y), W: uint16(wd), H: uint16(ht)}
}

// box clears r, draws a titled border and returns the inner area.
func box(buf *core.Buffer, r core.Rect, title string) core.Rect {
	buf.Fill(r, ' ', tcell.StyleDefault)
	buf.DrawBorder(r, overlayBorder, core.RoundedBorder, title)
	return r.Inset(1)
}

func textLines(buf *core.Buffer, area core.Rect, lines []string) {
	for i, l := range lines {
		if i >= int(area.H) {
			return
		}
		buf.SetStringClipped(int(area.X), int(area.Y)+i, int(area.W), l, viewer.Style)
	}
}

func (s *State) renderOverlay(buf *core.Buffer, w, h int) {
	switch s.overlay {
	case OverlayLoading:
		gauge(buf, box(buf, overlayRect(w, h, 3), "Loading"), s.Progress())
	case OverlayHelp:
		textLines(buf, box(buf, overlayRect(w, h, 10), "Help"), helpLines)
	case OverlayQuit:
		lines := []string{"Press q to quit, esc to not..."}
		if !s.signals.Saved() {
			lines = append(lines, "Signal list has unsaved changes.")
		}
		textLines(buf, box(buf, overlayRect(w, h, 2+len(lines)), "Quit?"), lines)
	case OverlayPalette:
		lines := append([]string{"> " + string(s.palette)}, "", strings.Join(commandNames, "  "))
		textLines(buf, box(buf, overlayRect(w, h, 10), "Palette"), lines)
	case OverlayConfig:
		if s.preview != nil {
			s.preview.render(buf, box(buf, overlayRect(w, h, max(1, h-2)), s.preview.name))
		}
	case OverlayMessage:
		lines := strings.Split(s.message, "\n")
		textLines(buf, box(buf, overlayRect(w, h, 2+len(lines)), "Message"), lines)
	}
}

// gauge fills the left percent of area and centres the label.
func gauge(buf *core.Buffer, area core.Rect, percent int) {
	if area.W == 0 || area.H == 0 {
		return
	}
	percent = max(0, min(percent, 100))
	filled := int(area.W) * percent / 100
	label := fmt.Sprintf("%d%%", percent)
	lx := int(area.X) + (int(area.W)-len(label))/2
	y := int(area.Y)
	for i := 0; i < int(area.W); i++ {
		x := int(area.X) + i
		style := viewer.Style
		if i < filled {
			style = style.Reverse(true)
		}
		ch := ' '
		if j := x - lx; j >= 0 && j < len(label) {
			ch = rune(label[j])
		}
		buf.Set(x, y, ch, style)
	}
}
