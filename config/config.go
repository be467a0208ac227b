// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Loads the config script into signal trees and writes the
// built-in tree back between the generated-code fences.

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/framegrace/nalu/defaults"
	"github.com/framegrace/nalu/vcd"
)

const (
	BeginFence = "### BEGIN NALU GENERATED CODE ###"
	EndFence   = "### END NALU GENERATED CODE ###"

	builtinFunc = "nalu_config"
	userFunc    = "user_config"
)

var (
	// ErrMangledFile is returned by Save when the generated-code fences are
	// missing and force is not set.
	ErrMangledFile = errors.New("config: generated code fences not found")
	// ErrUnsaved is returned by Reload when the built-in tree has changes
	// that were never saved and force is not set.
	ErrUnsaved = errors.New("config: built-in signals have unsaved changes")
)

// VariableNotFoundError reports a signal path the header does not declare.
type VariableNotFoundError struct {
	Path string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("config: variable %q not found", e.Path)
}

// Load runs the script at path against header. Built-in nodes come from
// nalu_config, user nodes from user_config. All returned nodes are saved.
func Load(path string, header *vcd.Header) (builtin, user []*SignalNode, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read config %s", path)
	}
	return load(path, src, header)
}

func load(name string, src []byte, header *vcd.Header) (builtin, user []*SignalNode, err error) {
	s, err := parseScript(name, src)
	if err != nil {
		return nil, nil, err
	}
	e := &evaluator{header: header}
	if builtin, err = e.run(s, builtinFunc); err != nil {
		return nil, nil, err
	}
	if user, err = e.run(s, userFunc); err != nil {
		return nil, nil, err
	}
	for _, n := range builtin {
		n.SetOwner(BuiltIn)
		n.SetSaved(true)
	}
	for _, n := range user {
		n.SetOwner(User)
		n.SetSaved(true)
	}
	log.Printf("Config: Loaded %d built-in and %d user signals from %s", len(builtin), len(user), name)
	return builtin, user, nil
}

// Reload is Load guarded against discarding unsaved built-in changes.
// saved reports whether the tree being replaced matches the file.
func Reload(path string, header *vcd.Header, saved, force bool) (builtin, user []*SignalNode, err error) {
	if !force && !saved {
		return nil, nil, ErrUnsaved
	}
	return Load(path, header)
}

// splitGenerated returns the lines before BeginFence and from EndFence on.
func splitGenerated(lines []string) (pre, post []string, err error) {
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == BeginFence {
			break
		}
		pre = append(pre, lines[i])
	}
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == EndFence {
			return pre, lines[i+1:], nil
		}
	}
	return nil, nil, ErrMangledFile
}

func splitLines(data []byte) []string {
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Save writes the BuiltIn nodes of nodes into the generated region of the
// script at path, keeping everything outside the fences. A missing file
// starts from the template. With force, a file without fences is replaced
// by the template around the generated region.
func Save(path string, nodes []*SignalNode, force bool) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data, err = defaults.Template(), nil
	}
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	pre, post, err := splitGenerated(splitLines(data))
	if err != nil {
		if !force {
			return err
		}
		log.Printf("Config: %s has no generated region, rewriting from template", path)
		if pre, post, err = splitGenerated(splitLines(defaults.Template())); err != nil {
			return errors.Wrap(err, "template")
		}
	}

	var gen bytes.Buffer
	writeGenerated(&gen, nodes)

	if err := writeFile(path, pre, gen.Bytes(), post); err != nil {
		return err
	}
	for _, n := range nodes {
		n.SetSaved(true)
	}
	log.Printf("Config: Saved %s", path)
	return nil
}

// writeFile replaces path with pre, gen and post through a temporary file
// and a rename, so a failed write leaves the old script in place.
func writeFile(path string, pre []string, gen []byte, post []string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "create config %s", tmpPath)
	}
	fail := func(err error, what string) error {
		f.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "%s config %s", what, path)
	}
	w := bufio.NewWriter(f)
	for _, l := range pre {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return fail(err, "write")
		}
	}
	if _, err := w.Write(gen); err != nil {
		return fail(err, "write")
	}
	for _, l := range post {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return fail(err, "write")
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err, "flush")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "close config %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "rename config %s", path)
	}
	return nil
}

// Generated returns the fenced region Save would write for nodes.
func Generated(nodes []*SignalNode) string {
	var b bytes.Buffer
	writeGenerated(&b, nodes)
	return b.String()
}

func writeGenerated(b *bytes.Buffer, nodes []*SignalNode) {
	var builtin []*SignalNode
	for _, n := range nodes {
		if n.Owner == BuiltIn {
			builtin = append(builtin, n)
		}
	}
	b.WriteString(BeginFence + "\n")
	b.WriteString("# fmt: off\n")
	b.WriteString("def " + builtinFunc + "(vcd_header):\n")
	b.WriteString("    \"\"\"Nalu generated waveform config\"\"\"\n")
	if len(builtin) == 0 {
		b.WriteString("    return []\n")
	} else {
		b.WriteString("    return [\n")
		for _, n := range builtin {
			printNode(b, n, 2)
		}
		b.WriteString("    ]\n")
	}
	b.WriteString("# fmt: on\n")
	b.WriteString(EndFence + "\n")
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func printNode(b *bytes.Buffer, n *SignalNode, indent int) {
	pad := strings.Repeat("    ", indent)
	switch n.Kind {
	case Spacer:
		b.WriteString(pad + "new_spacer(),\n")
	case Signal:
		bit := "None"
		if n.BitIndex != nil {
			bit = strconv.Itoa(*n.BitIndex)
		}
		fmt.Fprintf(b, "%snew_signal(%s, SignalRadix.%s, %s, %s),\n",
			pad, strconv.Quote(n.Path), n.Radix, pyBool(n.Expanded), bit)
	case Group, Vector:
		head := "new_group(" + strconv.Quote(n.Name)
		if n.Kind == Vector {
			head = "new_vector(" + strconv.Quote(n.Name) + ", SignalRadix." + n.Radix.String()
		}
		if len(n.Children) == 0 {
			fmt.Fprintf(b, "%s%s, %s, []),\n", pad, head, pyBool(n.Expanded))
			return
		}
		fmt.Fprintf(b, "%s%s, %s, [\n", pad, head, pyBool(n.Expanded))
		for _, c := range n.Children {
			printNode(b, c, indent+1)
		}
		b.WriteString(pad + "]),\n")
	}
}
