// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vcd/parser.go
// Summary: Header parser and streaming value-change parser.

package vcd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/framegrace/nalu/waveform"
)

// EntryKind tags a value-change entry.
type EntryKind uint8

const (
	EntryTimestamp EntryKind = iota
	EntryVector
	EntryReal
)

// Entry is one item of the value-change section.
type Entry struct {
	Kind      EntryKind
	Timestamp uint64
	Idcode    int
	Vector    waveform.BitVector
	Real      float64
}

// Parser reads a dump header, then streams value changes.
type Parser struct {
	tok    *Tokenizer
	header *Header
	codes  map[string]int
}

func NewParser(data []byte) *Parser {
	return &Parser{tok: NewTokenizer(data), codes: make(map[string]int)}
}

// Position is the number of input bytes consumed so far.
func (p *Parser) Position() int { return p.tok.Position() }

func (p *Parser) errorf(offset int, format string, args ...any) error {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) next() (Token, error) {
	tk, err := p.tok.Next()
	if err == io.EOF {
		return tk, p.errorf(tk.Offset, "unexpected end of input")
	}
	return tk, err
}

// until collects words up to the closing $end.
func (p *Parser) until() ([]string, error) {
	var words []string
	for {
		tk, err := p.next()
		if err != nil {
			return nil, err
		}
		if tk.Text == "$end" {
			return words, nil
		}
		words = append(words, tk.Text)
	}
}

var timeUnits = map[string]int{"s": 0, "ms": -3, "us": -6, "ns": -9, "ps": -12, "fs": -15}

// parseTimescale reads forms like "1ns", "10 ps" or "100us".
func parseTimescale(words []string) (int, bool) {
	s := strings.Join(words, "")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	exp, ok := timeUnits[s[i:]]
	if !ok {
		return 0, false
	}
	switch s[:i] {
	case "", "1":
	case "10":
		exp++
	case "100":
		exp += 2
	default:
		return 0, false
	}
	return exp, true
}

// ParseHeader consumes declarations through $enddefinitions.
func (p *Parser) ParseHeader() (*Header, error) {
	h := &Header{Timescale: -9}
	var stack []*Scope
	for {
		tk, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tk.Text {
		case "$date", "$version", "$comment":
			words, err := p.until()
			if err != nil {
				return nil, err
			}
			switch tk.Text {
			case "$date":
				h.Date = strings.Join(words, " ")
			case "$version":
				h.Version = strings.Join(words, " ")
			}
		case "$timescale":
			words, err := p.until()
			if err != nil {
				return nil, err
			}
			exp, ok := parseTimescale(words)
			if !ok {
				return nil, p.errorf(tk.Offset, "invalid timescale %q", strings.Join(words, " "))
			}
			h.Timescale = exp
		case "$scope":
			words, err := p.until()
			if err != nil {
				return nil, err
			}
			if len(words) != 2 {
				return nil, p.errorf(tk.Offset, "malformed $scope")
			}
			s := &Scope{Kind: words[0], Name: words[1]}
			if n := len(stack); n > 0 {
				stack[n-1].Scopes = append(stack[n-1].Scopes, s)
			} else {
				h.Scopes = append(h.Scopes, s)
			}
			stack = append(stack, s)
		case "$upscope":
			if _, err := p.until(); err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				return nil, p.errorf(tk.Offset, "$upscope without $scope")
			}
			stack = stack[:len(stack)-1]
		case "$var":
			v, err := p.parseVar(tk.Offset)
			if err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				return nil, p.errorf(tk.Offset, "$var outside of a scope")
			}
			s := stack[len(stack)-1]
			s.Variables = append(s.Variables, v)
		case "$enddefinitions":
			if _, err := p.until(); err != nil {
				return nil, err
			}
			h.index()
			p.header = h
			return h, nil
		default:
			return nil, p.errorf(tk.Offset, "unexpected %q in header", tk.Text)
		}
	}
}

func (p *Parser) parseVar(offset int) (*Variable, error) {
	words, err := p.until()
	if err != nil {
		return nil, err
	}
	if len(words) < 4 {
		return nil, p.errorf(offset, "malformed $var")
	}
	width, err := strconv.Atoi(words[1])
	if err != nil || width < 1 {
		return nil, p.errorf(offset, "invalid width %q", words[1])
	}
	v := &Variable{Kind: words[0], Width: width, Code: words[2], Name: words[3]}
	if len(words) > 4 {
		sel := strings.Join(words[4:], "")
		if strings.Contains(sel, ":") {
			v.Range = sel
		} else {
			v.Name += sel
		}
	}
	id, ok := p.codes[v.Code]
	if !ok {
		id = len(p.codes)
		p.codes[v.Code] = id
	}
	v.Idcode = id
	return v, nil
}

// Next returns the next value-change entry, or io.EOF at the end of input.
func (p *Parser) Next() (Entry, error) {
	for {
		tk, err := p.tok.Next()
		if err != nil {
			return Entry{}, err
		}
		s := tk.Text
		switch s[0] {
		case '$':
			switch s {
			case "$comment":
				if _, err := p.until(); err != nil {
					return Entry{}, err
				}
			case "$dumpvars", "$dumpall", "$dumpon", "$dumpoff", "$end":
			default:
				return Entry{}, p.errorf(tk.Offset, "unexpected %q", s)
			}
		case '#':
			t, err := strconv.ParseUint(s[1:], 10, 64)
			if err != nil {
				return Entry{}, p.errorf(tk.Offset, "invalid timestamp %q", s)
			}
			return Entry{Kind: EntryTimestamp, Timestamp: t}, nil
		case 'b', 'B':
			bv, err := waveform.ParseBitVector(s[1:])
			if err != nil {
				return Entry{}, p.errorf(tk.Offset, "%v", err)
			}
			id, err := p.code(tk.Offset)
			if err != nil {
				return Entry{}, err
			}
			return Entry{Kind: EntryVector, Idcode: id, Vector: bv}, nil
		case 'r', 'R':
			f, err := strconv.ParseFloat(s[1:], 64)
			if err != nil {
				return Entry{}, p.errorf(tk.Offset, "invalid real %q", s)
			}
			id, err := p.code(tk.Offset)
			if err != nil {
				return Entry{}, err
			}
			return Entry{Kind: EntryReal, Idcode: id, Real: f}, nil
		default:
			bv, err := waveform.ParseBitVector(s[:1])
			if err != nil || len(s) < 2 {
				return Entry{}, p.errorf(tk.Offset, "invalid value change %q", s)
			}
			id, ok := p.codes[s[1:]]
			if !ok {
				return Entry{}, p.errorf(tk.Offset, "unknown identifier code %q", s[1:])
			}
			return Entry{Kind: EntryVector, Idcode: id, Vector: bv}, nil
		}
	}
}

func (p *Parser) code(offset int) (int, error) {
	tk, err := p.next()
	if err != nil {
		return 0, err
	}
	id, ok := p.codes[tk.Text]
	if !ok {
		return 0, p.errorf(offset, "unknown identifier code %q", tk.Text)
	}
	return id, nil
}
