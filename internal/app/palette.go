package app

import (
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/framegrace/nalu/config"
)

var commandNames = []string{"save", "save!", "load", "load!", "reload", "quit"}

func paletteRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_ *.!", r)
}

func (s *State) handlePaletteKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		s.setOverlay(OverlayNone)
	case tcell.KeyEnter:
		cmd := string(s.palette)
		s.palette = s.palette[:0]
		s.setOverlay(OverlayNone)
		s.Run(cmd)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(s.palette) > 0 {
			s.palette = s.palette[:len(s.palette)-1]
		}
	case tcell.KeyRune:
		if paletteRune(ev.Rune()) {
			s.palette = append(s.palette, ev.Rune())
		}
	}
}

// Run executes a palette command. Failures are shown in the message overlay.
func (s *State) Run(cmd string) {
	cmd = strings.TrimSpace(cmd)
	force := strings.HasSuffix(cmd, "!")
	switch strings.TrimSuffix(cmd, "!") {
	case "save":
		s.save(force)
	case "load":
		s.loadCommand(force)
	case "reload":
		s.reload()
	case "quit":
		s.quit("")
	case "":
	default:
		s.showMessage("Unknown command %q", cmd)
	}
}

func (s *State) save(force bool) {
	err := config.Save(s.opts.ConfigPath, s.signals.Nodes(), force)
	switch {
	case errors.Is(err, config.ErrMangledFile):
		s.showMessage("%s has no generated code fences.\nUse save! to rewrite it.", s.opts.ConfigPath)
	case err != nil:
		s.showMessage("Save failed: %v", err)
	default:
		s.signals.MarkSaved()
		log.Printf("App: saved signals to %s", s.opts.ConfigPath)
	}
}

func (s *State) loadCommand(force bool) {
	if s.header == nil {
		s.showMessage("No waveform loaded yet")
		return
	}
	builtin, user, err := config.Reload(s.opts.ConfigPath, s.header, s.signals.Saved(), force)
	switch {
	case errors.Is(err, config.ErrUnsaved):
		s.showMessage("The signal list has unsaved changes.\nUse load! to discard them.")
	case err != nil:
		s.showMessage("Config error: %v", err)
	default:
		s.signals.Load(builtin, user)
		s.setStatus("")
		s.root.Invalidate()
	}
}
