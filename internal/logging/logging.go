// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/logging/logging.go
// Summary: Redirects the standard logger to a file so the terminal UI is not
// corrupted, and recovers goroutine panics into that log.

package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// DefaultPath is the log file used when none is given.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nalu", "nalu.log"), nil
}

// Setup sends log output to path, or to DefaultPath when empty. The caller
// closes the returned file.
func Setup(path string) (*os.File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return file, nil
}

// PanicLogger writes panic stack traces to the log and, when restore is set,
// gives the terminal back before printing to stderr.
type PanicLogger struct {
	mu      sync.Mutex
	restore func()
}

func NewPanicLogger(restore func()) *PanicLogger {
	return &PanicLogger{restore: restore}
}

// Recover should be deferred in goroutines to capture panics.
func (p *PanicLogger) Recover(context string) {
	if r := recover(); r != nil {
		p.logPanic(context, r)
		os.Exit(2)
	}
}

// Go starts fn in a goroutine with panic recovery.
func (p *PanicLogger) Go(context string, fn func()) {
	go func() {
		defer p.Recover(context)
		fn()
	}()
}

func (p *PanicLogger) logPanic(context string, r any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	ts := time.Now().Format(time.RFC3339Nano)
	msg := fmt.Sprintf("[%s] panic in %s: %v\n%s", ts, context, r, buf[:n])
	log.Print(msg)
	if p.restore != nil {
		p.restore()
		p.restore = nil
	}
	fmt.Fprintln(os.Stderr, msg)
}
