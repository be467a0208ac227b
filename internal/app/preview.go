// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/app/preview.go
// Summary: Read-only view of the config script with syntax highlighting.
// The language is detected with go-enry and tokenized with Chroma.

package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/defaults"
)

const (
	previewStyle = "catppuccin-mocha"
	tabWidth     = 4
)

type preview struct {
	name   string
	lang   string
	lines  [][]core.Cell
	scroll int
}

// detectLanguage names the language of src, trying the file name first.
func detectLanguage(name string, src []byte) string {
	base := filepath.Base(name)
	if lang, safe := enry.GetLanguageByExtension(base); safe {
		return lang
	}
	return enry.GetLanguage(base, src)
}

func lexerFor(lang, name string, src []byte) chroma.Lexer {
	if l := lexers.Get(lang); l != nil {
		return l
	}
	if l := lexers.Match(filepath.Base(name)); l != nil {
		return l
	}
	if l := lexers.Analyse(string(src)); l != nil {
		return l
	}
	return lexers.Fallback
}

// tokenStyle maps a Chroma style entry onto a tcell style. Entries without a
// colour keep the base foreground.
func tokenStyle(entry chroma.StyleEntry, base tcell.Style) tcell.Style {
	st := base
	if entry.Colour.IsSet() {
		st = st.Foreground(tcell.NewRGBColor(int32(entry.Colour.Red()), int32(entry.Colour.Green()), int32(entry.Colour.Blue())))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

// highlight splits src into lines of styled cells.
func highlight(name string, src []byte) (string, [][]core.Cell) {
	lang := detectLanguage(name, src)
	lexer := chroma.Coalesce(lexerFor(lang, name, src))
	style := styles.Get(previewStyle)
	base := tcell.StyleDefault

	text := strings.ReplaceAll(string(src), "\t", strings.Repeat(" ", tabWidth))
	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		tokens = []chroma.Token{{Type: chroma.Text, Value: text}}
	}
	lines := [][]core.Cell{nil}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		st := tokenStyle(style.Get(tok.Type), base)
		for _, r := range tok.Value {
			if r == '\n' {
				lines = append(lines, nil)
				continue
			}
			last := len(lines) - 1
			lines[last] = append(lines[last], core.Cell{Ch: r, Style: st})
		}
	}
	if len(lines) > 1 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lang, lines
}

func newPreview(name string, src []byte) *preview {
	lang, lines := highlight(name, src)
	return &preview{name: filepath.Base(name), lang: lang, lines: lines}
}

// openPreview shows the config script, or the template when none exists.
func (s *State) openPreview() {
	src, err := os.ReadFile(s.opts.ConfigPath)
	if err != nil {
		src = defaults.Template()
	}
	s.preview = newPreview(s.opts.ConfigPath, src)
	s.setOverlay(OverlayConfig)
}

func (s *State) handlePreviewKey(ev *tcell.EventKey) {
	p := s.preview
	switch ev.Key() {
	case tcell.KeyEscape:
		s.setOverlay(OverlayNone)
		return
	case tcell.KeyUp:
		p.scroll--
	case tcell.KeyDown:
		p.scroll++
	case tcell.KeyPgUp:
		p.scroll -= 20
	case tcell.KeyPgDn:
		p.scroll += 20
	case tcell.KeyRune:
		if ev.Rune() == 'q' || ev.Rune() == 'c' {
			s.setOverlay(OverlayNone)
		}
		return
	}
	p.scroll = max(0, min(p.scroll, len(p.lines)-1))
}

func (p *preview) render(buf *core.Buffer, area core.Rect) {
	right := int(area.X) + int(area.W)
	for row := 0; row < int(area.H); row++ {
		i := p.scroll + row
		if i >= len(p.lines) {
			return
		}
		x := int(area.X)
		for _, c := range p.lines[i] {
			w := runewidth.RuneWidth(c.Ch)
			if x+w > right {
				break
			}
			buf.Set(x, int(area.Y)+row, c.Ch, c.Style)
			if w == 2 {
				buf.Set(x+1, int(area.Y)+row, 0, c.Style)
			}
			x += w
		}
	}
}
