// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default configuration script.

package defaults

import (
	_ "embed"
)

//go:embed nalu.py
var template []byte

// Template returns a copy of the embedded config script written by
// --init-config and used when no config file exists yet.
func Template() []byte {
	return append([]byte(nil), template...)
}
