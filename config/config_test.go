// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/framegrace/nalu/defaults"
	"github.com/framegrace/nalu/vcd"
	"github.com/framegrace/nalu/waveform"
)

const testDump = `$timescale 1ns $end
$scope module TOP $end
$var wire 1 ! clk $end
$var wire 1 " rst $end
$var wire 8 # data [7:0] $end
$upscope $end
$enddefinitions $end
`

func testHeader(t *testing.T) *vcd.Header {
	t.Helper()
	h, err := vcd.NewParser([]byte(testDump)).ParseHeader()
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	return h
}

func signal(t *testing.T, h *vcd.Header, path string, r waveform.Radix, bit *int) *SignalNode {
	t.Helper()
	v, ok := h.Variable(path)
	if !ok {
		t.Fatalf("no variable %s", path)
	}
	return NewSignal(path, v, r, false, bit)
}

func TestRoundTrip(t *testing.T) {
	h := testHeader(t)
	path := filepath.Join(t.TempDir(), "nalu.py")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	builtin, user, err := Load(path, h)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if len(builtin) != 0 || len(user) != 0 {
		t.Fatalf("template should be empty, got %d/%d", len(builtin), len(user))
	}

	nodes := []*SignalNode{
		signal(t, h, "TOP.clk", waveform.Hexadecimal, nil),
		NewGroup("my_group", true, []*SignalNode{signal(t, h, "TOP.rst", waveform.Hexadecimal, nil)}),
	}
	for _, n := range nodes {
		n.SetSaved(false)
	}
	if AllSaved(nodes) {
		t.Fatalf("new nodes should be unsaved")
	}
	if err := Save(path, nodes, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !AllSaved(nodes) {
		t.Fatalf("Save should mark nodes saved")
	}

	builtin, user, err = Load(path, h)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !Equal(builtin, nodes) {
		t.Fatalf("reloaded tree differs:\n%s", Generated(builtin))
	}
	if len(user) != 0 {
		t.Fatalf("user tree should be empty, got %d", len(user))
	}
	if builtin[0].Variable == nil || builtin[0].Variable.Name != "clk" {
		t.Fatalf("signal not resolved: %+v", builtin[0])
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "def user_config(vcd_header):") ||
		!strings.HasPrefix(string(data), `"""Nalu config script"""`) {
		t.Fatalf("text outside the fences was not preserved:\n%s", data)
	}
}

func TestSaveLoadIdentity(t *testing.T) {
	h := testHeader(t)
	two, seven := 2, 7
	vec := NewVector("bus", waveform.Octal, false, []*SignalNode{
		signal(t, h, "TOP.data", waveform.Binary, &seven),
		signal(t, h, "TOP.data", waveform.Binary, &two),
	})
	data := signal(t, h, "TOP.data", waveform.Decimal, nil)
	data.Expanded = true
	nodes := []*SignalNode{
		NewSpacer(),
		NewGroup("outer", false, []*SignalNode{
			NewGroup("empty", true, nil),
			vec,
			data,
			NewSpacer(),
		}),
	}
	path := filepath.Join(t.TempDir(), "cfg.py")
	if err := Save(path, nodes, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	builtin, _, err := Load(path, h)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !Equal(builtin, nodes) {
		t.Fatalf("round trip mismatch:\nwant\n%s\ngot\n%s", Generated(nodes), Generated(builtin))
	}
}

func TestGeneratedFormat(t *testing.T) {
	h := testHeader(t)
	user := signal(t, h, "TOP.rst", waveform.Binary, nil)
	user.SetOwner(User)
	nodes := []*SignalNode{
		signal(t, h, "TOP.clk", waveform.Hexadecimal, nil),
		NewGroup("g", true, []*SignalNode{NewSpacer()}),
		NewGroup("e", false, nil),
		user,
	}
	want := `### BEGIN NALU GENERATED CODE ###
# fmt: off
def nalu_config(vcd_header):
    """Nalu generated waveform config"""
    return [
        new_signal("TOP.clk", SignalRadix.Hexadecimal, False, None),
        new_group("g", True, [
            new_spacer(),
        ]),
        new_group("e", False, []),
    ]
# fmt: on
### END NALU GENERATED CODE ###
`
	if got := Generated(nodes); got != want {
		t.Fatalf("generated:\n%s", got)
	}
	if got := Generated([]*SignalNode{user}); !strings.Contains(got, "    return []\n") {
		t.Fatalf("user-only tree should generate an empty list:\n%s", got)
	}
}

func TestUserConfig(t *testing.T) {
	h := testHeader(t)
	src := `"""doc"""
from nalu import new_signal, SignalRadix
# comment
def user_config(vcd_header):
    """User"""
    return [new_signal("TOP.data", SignalRadix.Decimal, True, 2)]
def interactive(buffer, waveform, vcd_header, cursor):
    return
`
	builtin, user, err := load("user.py", []byte(src), h)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(builtin) != 0 || len(user) != 1 {
		t.Fatalf("got %d built-in, %d user", len(builtin), len(user))
	}
	n := user[0]
	if n.Owner != User || !n.Saved || n.BitIndex == nil || *n.BitIndex != 2 || n.Radix != waveform.Decimal {
		t.Fatalf("user node = %+v", n)
	}
	if n.String() != "data [2]" || n.FullName() != "TOP.data [2]" {
		t.Fatalf("labels = %q / %q", n.String(), n.FullName())
	}
}

func TestScriptErrors(t *testing.T) {
	h := testHeader(t)
	head := "def nalu_config(vcd_header):\n    return [\n"
	cases := []struct {
		name string
		src  string
		line int
	}{
		{"statement", "def nalu_config(vcd_header):\n    x = 1\n", 2},
		{"unknown function", head + "        new_thing(),\n    ]\n", 3},
		{"arity", head + "        new_spacer(1),\n    ]\n", 3},
		{"radix", head + "        new_signal(\"TOP.clk\", SignalRadix.Hex, False, None),\n    ]\n", 3},
		{"bool", head + "        new_group(\"g\", 1, []),\n    ]\n", 3},
		{"bit range", head + "        new_signal(\"TOP.clk\", SignalRadix.Binary, False, 3),\n    ]\n", 3},
		{"missing comma", head + "        new_spacer()\n        new_spacer(),\n    ]\n", 4},
	}
	for _, c := range cases {
		_, _, err := load("bad.py", []byte(c.src), h)
		var perr participle.Error
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected a positioned error, got %v", c.name, err)
		}
		if perr.Position().Line != c.line {
			t.Fatalf("%s: error at line %d, want %d (%v)", c.name, perr.Position().Line, c.line, err)
		}
	}

	_, _, err := load("missing.py", []byte(head+"        new_signal(\"TOP.nope\", SignalRadix.Binary, False, None),\n    ]\n"), h)
	var nf *VariableNotFoundError
	if !errors.As(err, &nf) || nf.Path != "TOP.nope" {
		t.Fatalf("expected VariableNotFoundError, got %v", err)
	}
}

func TestSetSaved(t *testing.T) {
	h := testHeader(t)
	child := signal(t, h, "TOP.clk", waveform.Binary, nil)
	userChild := signal(t, h, "TOP.rst", waveform.Binary, nil)
	userChild.Owner = User
	group := NewGroup("g", true, []*SignalNode{child, userChild})

	group.SetSaved(false)
	if group.Saved || child.Saved || !userChild.Saved {
		t.Fatalf("after SetSaved(false): group %v child %v user %v", group.Saved, child.Saved, userChild.Saved)
	}
	child.SetSaved(true)
	if group.Saved {
		t.Fatalf("group is only marked through SetSaved")
	}
	group.SetSaved(true)
	if !group.Saved || !child.Saved {
		t.Fatalf("after SetSaved(true): group %v child %v", group.Saved, child.Saved)
	}

	vec := NewVector("v", waveform.Binary, false, nil)
	vec.SetOwner(User)
	vec.SetSaved(false)
	if !vec.Saved {
		t.Fatalf("user-owned vector must stay saved")
	}
}

func TestMangledFile(t *testing.T) {
	h := testHeader(t)
	path := filepath.Join(t.TempDir(), "nalu.py")
	if err := os.WriteFile(path, []byte("# hand written\n### BEGIN NALU GENERATED CODE ###\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nodes := []*SignalNode{signal(t, h, "TOP.clk", waveform.Hexadecimal, nil)}
	if err := Save(path, nodes, false); errors.Cause(err) != ErrMangledFile {
		t.Fatalf("Save without force = %v, want ErrMangledFile", err)
	}
	if data, _ := os.ReadFile(path); !strings.HasPrefix(string(data), "# hand written") {
		t.Fatalf("file changed after failed save: %q", data)
	}
	if err := Save(path, nodes, true); err != nil {
		t.Fatalf("forced Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), string(defaults.Template()[:20])) {
		t.Fatalf("forced save should start from the template:\n%s", data)
	}
	builtin, _, err := Load(path, h)
	if err != nil || !Equal(builtin, nodes) {
		t.Fatalf("load after forced save: %v", err)
	}
}

func TestSaveKeepsOldFileOnFailure(t *testing.T) {
	h := testHeader(t)
	path := filepath.Join(t.TempDir(), "nalu.py")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatal(err)
	}
	nodes := []*SignalNode{signal(t, h, "TOP.clk", waveform.Binary, nil)}
	nodes[0].SetSaved(false)

	// A directory in the way of the temporary file makes the write fail.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, nodes, false); err == nil {
		t.Fatalf("Save should report the failed write")
	}
	if nodes[0].Saved {
		t.Fatalf("failed save must not mark nodes saved")
	}
	if data, _ := os.ReadFile(path); string(data) != string(defaults.Template()) {
		t.Fatalf("old script changed after failed save")
	}

	if err := os.Remove(path + ".tmp"); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, nodes, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
	if !nodes[0].Saved {
		t.Fatalf("save should mark nodes saved")
	}
}

func TestReloadUnsaved(t *testing.T) {
	h := testHeader(t)
	path := filepath.Join(t.TempDir(), "nalu.py")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatal(err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("WriteTemplate should refuse to overwrite")
	}
	current := []*SignalNode{signal(t, h, "TOP.clk", waveform.Binary, nil)}
	current[0].SetSaved(false)
	if _, _, err := Reload(path, h, AllSaved(current), false); err != ErrUnsaved {
		t.Fatalf("Reload = %v, want ErrUnsaved", err)
	}
	builtin, _, err := Reload(path, h, AllSaved(current), true)
	if err != nil || len(builtin) != 0 {
		t.Fatalf("forced Reload = %v, %d nodes", err, len(builtin))
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	dump := filepath.Join(dir, "cpu.vcd")

	if DumpPath(dump) != filepath.Join(dir, "cpu.nalu.py") {
		t.Fatalf("DumpPath = %s", DumpPath(dump))
	}
	if p, _ := Resolve("/explicit.py", dump); p != "/explicit.py" {
		t.Fatalf("explicit = %s", p)
	}
	if p, _ := Resolve("", dump); p != filepath.Join(dir, "xdg", "nalu", "nalu.py") {
		t.Fatalf("fallback = %s", p)
	}
	if err := os.WriteFile(DumpPath(dump), defaults.Template(), 0o644); err != nil {
		t.Fatal(err)
	}
	if p, _ := Resolve("", dump); p != DumpPath(dump) {
		t.Fatalf("next to dump = %s", p)
	}
}
