package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/config"
	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/app"
	"github.com/framegrace/nalu/internal/logging"
)

const dump = `$timescale 1ns $end
$scope module TOP $end
$var wire 1 ! clk $end
$upscope $end
$enddefinitions $end
#0
0!
#5
1!
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "nalu.py")
	out, err := execute(t, "--init-config", "-c", path)
	if err != nil {
		t.Fatalf("init-config: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), config.BeginFence) {
		t.Fatalf("template not written")
	}
	if _, err := execute(t, "--init-config", "-c", path); err == nil {
		t.Fatalf("existing config must not be overwritten")
	}
}

func TestArgs(t *testing.T) {
	if _, err := execute(t); err == nil {
		t.Fatalf("a dump argument is required")
	}
	if _, err := execute(t, "a.vcd", "b.vcd"); err == nil {
		t.Fatalf("only one dump is accepted")
	}
}

func TestRefusesWithoutTerminal(t *testing.T) {
	prev := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = prev }()

	out, err := execute(t, "dump.vcd")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "Error: Cannot open viewer when not TTY!" {
		t.Fatalf("output = %q", out)
	}
}

func TestLoopRendersAndQuits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "top.vcd")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := app.New(context.Background(), app.Options{
		DumpPath:   path,
		ConfigPath: filepath.Join(dir, "top.nalu.py"),
		Version:    "test",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	sim := tcell.NewSimulationScreen("UTF-8")
	drv := core.NewTcellScreenDriver(sim)
	if err := drv.Init(); err != nil {
		t.Fatal(err)
	}
	defer drv.Fini()
	sim.SetSize(80, 24)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	if msg := loop(context.Background(), drv, st, logging.NewPanicLogger(nil)); msg != "" {
		t.Fatalf("exit message = %q", msg)
	}
	cells, w, _ := sim.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		if r := cells[x].Runes; len(r) > 0 {
			sb.WriteRune(r[0])
		}
	}
	if !strings.HasPrefix(sb.String(), "nalu vtest") {
		t.Fatalf("header row = %q", sb.String())
	}
}
