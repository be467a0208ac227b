// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/app/state.go
// Summary: Application state: pane layout, overlays, global keys and the
// background waveform load.

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/framegrace/nalu/config"
	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/bus"
	"github.com/framegrace/nalu/internal/netindex"
	"github.com/framegrace/nalu/internal/viewer"
	"github.com/framegrace/nalu/tiling"
	"github.com/framegrace/nalu/vcd"
)

// Overlay is the modal drawn above the panes.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayLoading
	OverlayHelp
	OverlayQuit
	OverlayPalette
	OverlayConfig
	OverlayMessage
)

func (o Overlay) String() string {
	switch o {
	case OverlayLoading:
		return "loading"
	case OverlayHelp:
		return "help"
	case OverlayQuit:
		return "quit"
	case OverlayPalette:
		return "palette"
	case OverlayConfig:
		return "config"
	case OverlayMessage:
		return "message"
	default:
		return "none"
	}
}

// Options configures a State.
type Options struct {
	// DumpPath is the VCD file to view.
	DumpPath string
	// ConfigPath is the resolved config script.
	ConfigPath string
	Version    string
}

// headerLine is the one-row banner above the panes. A non-empty status is
// shown after the banner in red.
type headerLine struct {
	text   string
	status string
}

func (h *headerLine) Resize(w, ht int)                         {}
func (h *headerLine) HandleMouse(x, y int, kind core.MouseKind) {}
func (h *headerLine) HandleKey(ev *tcell.EventKey)              {}
func (h *headerLine) Render(buf *core.Buffer, area core.Rect) {
	n := buf.SetStringClipped(int(area.X), int(area.Y), int(area.W), h.text, viewer.Style)
	if h.status == "" || n >= int(area.W) {
		return
	}
	buf.SetStringClipped(int(area.X)+n, int(area.Y), int(area.W)-n, " | "+h.status, viewer.Style.Foreground(tcell.ColorRed))
}

// State owns every widget and the current load.
type State struct {
	opts Options
	ctx  context.Context

	bus     *bus.Bus
	index   *netindex.Index
	root    *tiling.Container
	main    *tiling.Container
	banner  *headerLine
	top     *tiling.Pane
	netlist *viewer.Netlist
	filter  *viewer.FilterInput
	signals *viewer.Signals
	wave    *viewer.Waveform

	loader *vcd.Handle
	loaded bool
	header *vcd.Header

	overlay Overlay
	palette []rune
	message string
	preview *preview

	done     string
	finished bool
}

// New builds the layout and starts loading opts.DumpPath.
func New(ctx context.Context, opts Options) (*State, error) {
	index, err := netindex.New()
	if err != nil {
		return nil, errors.Wrap(err, "netlist index")
	}
	s := &State{opts: opts, ctx: ctx, bus: bus.New(), index: index}
	s.netlist = viewer.NewNetlist(s.bus, index)
	s.filter = viewer.NewFilterInput(s.bus)
	s.signals = viewer.NewSignals(s.bus)
	s.wave = viewer.NewWaveform(s.bus)

	browser := tiling.NewContainer("browser", tiling.Vertical, false)
	_ = browser.Add(tiling.NewPane("Browser", 1, s.netlist))
	_ = browser.Add(tiling.NewPane("Filter", 1, s.filter))
	browser.SetFixed(1, 3)

	s.main = tiling.NewContainer("main", tiling.Horizontal, true)
	_ = s.main.Add(browser)
	_ = s.main.Add(tiling.NewPane("List", 1, s.signals))
	_ = s.main.Add(tiling.NewPane("Viewer", 1, s.wave))
	s.main.SetWeights(1, 1, 2)

	banner := fmt.Sprintf("nalu v%s (Press h for help, p for palette, r to reload, q to quit)", opts.Version)
	s.root = tiling.NewContainer("root", tiling.Vertical, false)
	s.banner = &headerLine{text: banner}
	s.top = tiling.NewPane("header", 0, s.banner)
	_ = s.root.Add(s.top)
	_ = s.root.Add(s.main)
	s.root.SetFixed(0, 1)

	s.reload()
	return s, nil
}

// Close cancels any load and releases the netlist index.
func (s *State) Close() error {
	if s.loader != nil {
		s.loader.Cancel()
	}
	return s.index.Close()
}

// Done reports the exit message once the user quit or loading failed.
func (s *State) Done() (string, bool) { return s.done, s.finished }

func (s *State) quit(msg string) {
	s.done, s.finished = msg, true
}

func (s *State) Overlay() Overlay { return s.overlay }

func (s *State) setOverlay(o Overlay) {
	s.overlay = o
	s.root.Invalidate()
}

func (s *State) showMessage(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.setOverlay(OverlayMessage)
}

// reload starts a fresh load of the dump, replacing one in flight.
func (s *State) reload() {
	if s.loader != nil {
		s.loader.Cancel()
	}
	log.Printf("App: loading %s", s.opts.DumpPath)
	s.loader = vcd.Load(s.ctx, s.opts.DumpPath)
	s.setOverlay(OverlayLoading)
}

// Progress returns the load completion in percent.
func (s *State) Progress() int {
	if s.loader == nil {
		return 100
	}
	pos, total := s.loader.Progress()
	if total == 0 {
		return 0
	}
	return pos * 100 / total
}

// Resize lays the panes out over a w x h screen.
func (s *State) Resize(w, h int) {
	if err := s.root.Resize(uint16(w), uint16(h)); err != nil {
		log.Printf("App: layout does not fit %dx%d: %v", w, h, err)
	}
}

// Tick collects a finished load and lets every widget drain its messages.
// It reports whether anything changed.
func (s *State) Tick() bool {
	changed := false
	if s.loader != nil {
		select {
		case res := <-s.loader.Result():
			s.loader = nil
			s.finishLoad(res)
			changed = true
		default:
			changed = s.overlay == OverlayLoading
		}
	}
	if s.root.Update() {
		changed = true
	}
	return changed
}

func (s *State) finishLoad(res vcd.Result) {
	if res.Err != nil {
		s.quit(fmt.Sprintf("VCD Loading Error: %v", res.Err))
		return
	}
	s.header = res.Header
	s.netlist.Load(res.Header)
	s.wave.Load(res.Waveform, res.Header.Timescale)
	if s.overlay == OverlayLoading {
		s.setOverlay(OverlayNone)
	}
	if !s.loaded {
		s.loaded = true
		s.loadConfig()
	} else {
		s.signals.Rebind(res.Header)
		go debug.FreeOSMemory()
	}
	s.root.Invalidate()
}

// loadConfig reads the config script after the first load. A missing script
// leaves the signal list empty.
func (s *State) loadConfig() {
	builtin, user, err := config.Load(s.opts.ConfigPath, s.header)
	switch {
	case os.IsNotExist(errors.Cause(err)):
		log.Printf("App: no config at %s", s.opts.ConfigPath)
	case err != nil:
		log.Printf("App: config %s: %v", s.opts.ConfigPath, err)
		s.setStatus(fmt.Sprintf("Config error: %v", err))
	default:
		s.signals.Load(builtin, user)
		s.setStatus("")
	}
}

// setStatus shows text in the header line without interrupting the user.
func (s *State) setStatus(text string) {
	s.banner.status = text
	s.top.Invalidate()
}

// HandleKey routes ev to the active overlay, the global keys or the panes.
func (s *State) HandleKey(ev *tcell.EventKey) {
	switch s.overlay {
	case OverlayLoading:
		if isRune(ev, 'q') {
			s.quit("")
		}
	case OverlayHelp, OverlayQuit:
		switch {
		case isRune(ev, 'q'):
			s.quit("")
		case ev.Key() == tcell.KeyEscape:
			s.setOverlay(OverlayNone)
		}
	case OverlayPalette:
		s.handlePaletteKey(ev)
	case OverlayConfig:
		s.handlePreviewKey(ev)
	case OverlayMessage:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter {
			s.setOverlay(OverlayNone)
		}
	default:
		s.handleMainKey(ev)
	}
}

func isRune(ev *tcell.EventKey, r rune) bool {
	return ev.Key() == tcell.KeyRune && ev.Rune() == r
}

func (s *State) handleMainKey(ev *tcell.EventKey) {
	if s.main.Focus() == tiling.FocusFull {
		s.main.HandleKey(ev)
		return
	}
	if ev.Key() == tcell.KeyEscape {
		s.setOverlay(OverlayQuit)
		return
	}
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'q':
			s.quit("")
			return
		case 'h':
			s.setOverlay(OverlayHelp)
			return
		case 'p':
			s.palette = s.palette[:0]
			s.setOverlay(OverlayPalette)
			return
		case 'r':
			s.reload()
			return
		case 'c':
			s.openPreview()
			return
		}
	}
	s.main.HandleKey(ev)
}

// HandleMouse forwards mouse input below the header row to the panes.
func (s *State) HandleMouse(x, y int, kind core.MouseKind) {
	if s.overlay != OverlayNone {
		return
	}
	if x < 0 || y < 1 {
		s.main.HandleMouse(0, 0, core.MouseNone)
		return
	}
	s.main.HandleMouse(uint16(x), uint16(y-1), kind)
}

// Render draws the panes, then the overlay on top.
func (s *State) Render(buf *core.Buffer) {
	w, h := buf.Size()
	if s.overlay != OverlayNone {
		s.root.Invalidate()
	}
	s.root.Render(buf, core.Rect{W: uint16(w), H: uint16(h)})
	s.renderOverlay(buf, w, h)
}
