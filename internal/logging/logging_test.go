package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupDefaultPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	defer log.SetOutput(os.Stderr)

	f, err := Setup("")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer f.Close()
	want, _ := DefaultPath()
	if f.Name() != want || filepath.Base(want) != "nalu.log" {
		t.Fatalf("log file %q, want %q", f.Name(), want)
	}
	log.Printf("Test: hello")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Test: hello") {
		t.Fatalf("log content = %q", data)
	}
}

func TestFrameTimestamps(t *testing.T) {
	base := time.Unix(0, 0)
	ticks := []time.Duration{0, 5 * time.Millisecond, 30 * time.Millisecond}
	i := 0
	f := &FrameTimestamps{now: func() time.Time {
		d := ticks[i]
		i++
		return base.Add(d)
	}}
	f.start = f.now()
	f.Mark("tick")
	f.Mark("render")

	if f.Total() != 30*time.Millisecond {
		t.Fatalf("total = %s", f.Total())
	}
	if got := f.String(); got != "tick=5ms, render=25ms" {
		t.Fatalf("sections = %q", got)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	if !f.LogIfSlow() || !strings.Contains(buf.String(), "Frame:") {
		t.Fatalf("slow frame not logged: %q", buf.String())
	}

	fast := &FrameTimestamps{start: base, now: func() time.Time { return base }}
	fast.Mark("tick")
	if fast.LogIfSlow() {
		t.Fatalf("instant frame should be within budget")
	}
}
