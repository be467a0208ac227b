package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/bus"
)

// FilterInput is the one-line netlist filter editor.
type FilterInput struct {
	bus  *bus.Bus
	text []rune
}

func NewFilterInput(b *bus.Bus) *FilterInput {
	return &FilterInput{bus: b}
}

func (f *FilterInput) Text() string { return string(f.text) }

func filterRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '_', ' ', '*', '.', '/':
		return true
	}
	return false
}

func (f *FilterInput) Resize(w, h int) {}

func (f *FilterInput) HandleMouse(x, y int, kind core.MouseKind) {}

func (f *FilterInput) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(f.text) == 0 {
			return
		}
		f.text = f.text[:len(f.text)-1]
	case tcell.KeyRune:
		if !filterRune(ev.Rune()) {
			return
		}
		f.text = append(f.text, ev.Rune())
	default:
		return
	}
	f.bus.Push(FilterChanged{Text: f.Text()})
}

func (f *FilterInput) Render(buf *core.Buffer, area core.Rect) {
	buf.SetStringClipped(int(area.X), int(area.Y), int(area.W), f.Text(), Style)
}
