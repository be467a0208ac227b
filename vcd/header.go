// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vcd/header.go
// Summary: Declarations section of a VCD dump: scopes, variables and the
// timescale.

package vcd

import (
	"strings"
)

// Variable is a declared signal. Variables sharing an identifier code share
// an Idcode.
type Variable struct {
	Kind   string
	Width  int
	Idcode int
	Code   string
	Name   string
	Range  string
}

// IsReal reports whether values of v are 64-bit floats.
func (v *Variable) IsReal() bool {
	switch v.Kind {
	case "real", "realtime", "shortreal":
		return true
	}
	return false
}

func (v *Variable) String() string { return v.Name }

// Scope is a module, task, function or block.
type Scope struct {
	Kind      string
	Name      string
	Scopes    []*Scope
	Variables []*Variable
}

func (s *Scope) String() string { return s.Name }

// Header is everything before $enddefinitions.
type Header struct {
	Version string
	Date    string
	// Timescale is the power of ten of one timestamp unit in seconds,
	// e.g. -9 for 1ns and -8 for 10ns.
	Timescale int
	Scopes    []*Scope

	byPath map[string]*Variable
}

// Variable resolves a dotted full path such as "TOP.cpu.clk".
func (h *Header) Variable(path string) (*Variable, bool) {
	if h == nil {
		return nil, false
	}
	v, ok := h.byPath[path]
	return v, ok
}

// Walk visits every variable with its path segments in declaration order.
func (h *Header) Walk(fn func(path []string, v *Variable)) {
	var walk func(prefix []string, s *Scope)
	walk = func(prefix []string, s *Scope) {
		p := append(append([]string(nil), prefix...), s.Name)
		for _, child := range s.Scopes {
			walk(p, child)
		}
		for _, v := range s.Variables {
			fn(append(append([]string(nil), p...), v.Name), v)
		}
	}
	for _, s := range h.Scopes {
		walk(nil, s)
	}
}

// Idcodes returns every distinct variable, one per idcode.
func (h *Header) Idcodes() map[int]*Variable {
	out := make(map[int]*Variable)
	h.Walk(func(_ []string, v *Variable) {
		if _, ok := out[v.Idcode]; !ok {
			out[v.Idcode] = v
		}
	})
	return out
}

func (h *Header) index() {
	h.byPath = make(map[string]*Variable)
	h.Walk(func(path []string, v *Variable) {
		h.byPath[strings.Join(path, ".")] = v
	})
}
