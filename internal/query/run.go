package query

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/waveform"
)

var (
	styleNormal   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	styleUnknown  = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlack)
	styleHighZ    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Background(tcell.ColorBlack)
	styleVoid     = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorSilver)
	styleMultiple = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

var bitGlyphs = map[waveform.Logic]string{
	waveform.Zero:          "_",
	waveform.One:           "█",
	waveform.Unknown:       "X",
	waveform.HighImpedance: "Z",
}

// Run is a styled string of known glyph count.
type Run struct {
	Text  string
	Style tcell.Style
}

// Row is the runs of one rendered signal.
type Row []Run

// Width is the total glyph count.
func (r Row) Width() int {
	n := 0
	for _, run := range r {
		n += utf8.RuneCountInString(run.Text)
	}
	return n
}

// Render draws the row starting at (x, y), one glyph per cell.
func (r Row) Render(buf *core.Buffer, x, y int) {
	for _, run := range r {
		for _, ch := range run.Text {
			buf.Set(x, y, ch, run.Style)
			x++
		}
	}
}

// fit truncates or space-pads s to exactly w glyphs.
func fit(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		i := 0
		for k := range s {
			if i == w {
				return s[:k]
			}
			i++
		}
		return s
	}
	return s + strings.Repeat(" ", w-n)
}

// Run turns a merged cell into its glyphs and style.
func (c Cell) Run(radix waveform.Radix, selected bool) Run {
	var run Run
	switch c.Kind {
	case None:
		run = Run{Text: strings.Repeat(" ", c.Width), Style: styleNormal}
	case MultipleEdge:
		run = Run{Text: strings.Repeat("#", c.Width), Style: styleMultiple}
	default:
		v := c.Value
		style := styleNormal
		switch {
		case c.Kind == StaticVoid:
			style = styleVoid
		case v.IsUnknown():
			style = styleUnknown
		case v.IsHighImpedance():
			style = styleHighZ
		}
		var text string
		switch {
		case v.Kind == waveform.KindReal:
			text = strconv.FormatFloat(v.Real, 'f', -1, 64)
		case v.Vector.Width() <= 1:
			text = strings.Repeat(bitGlyphs[v.Vector.Bit(0)], c.Width)
		default:
			text = v.Vector.Format(radix)
		}
		if c.Kind == SingleEdge && (v.Kind == waveform.KindReal || v.Vector.Width() > 1) {
			text = "|" + text
		}
		run = Run{Text: fit(text, c.Width), Style: style}
	}
	if selected {
		run.Style = run.Style.Bold(true)
	}
	return run
}
