// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for the nalu config script.

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/framegrace/nalu/defaults"
)

const scriptName = "nalu.py"

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "nalu"), nil
}

// DefaultPath is the per-user config script.
func DefaultPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, scriptName), nil
}

// DumpPath is the config script kept next to a dump: "cpu.vcd" maps to
// "cpu.nalu.py".
func DumpPath(dump string) string {
	base := strings.TrimSuffix(filepath.Base(dump), filepath.Ext(dump))
	return filepath.Join(filepath.Dir(dump), base+".nalu.py")
}

// Resolve picks the config script for dump: explicit if set, else the
// script next to the dump when it exists, else DefaultPath.
func Resolve(explicit, dump string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if dump != "" {
		p := DumpPath(dump)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return DefaultPath()
}

// WriteTemplate writes the embedded template to path, creating parent
// directories. An existing file is left alone unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("config: %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	return errors.Wrapf(os.WriteFile(path, defaults.Template(), 0o644), "write %s", path)
}
