package tiling

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
)

type fillWidget struct {
	fill  rune
	w, h  int
	keys  []tcell.Key
	mouse []core.MouseKind
}

func (f *fillWidget) Resize(w, h int) { f.w, f.h = w, h }
func (f *fillWidget) HandleMouse(x, y int, kind core.MouseKind) {
	f.mouse = append(f.mouse, kind)
}
func (f *fillWidget) HandleKey(ev *tcell.EventKey) { f.keys = append(f.keys, ev.Key()) }
func (f *fillWidget) Render(buf *core.Buffer, area core.Rect) {
	buf.Fill(area, f.fill, tcell.StyleDefault)
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

// buildLayout returns horizontal(vertical(a, b), c) sized 32x8.
func buildLayout(t *testing.T) *Container {
	t.Helper()
	vertical := NewContainer("vertical", Vertical, true)
	_ = vertical.Add(NewPane("a", 1, &fillWidget{fill: 'a'}))
	_ = vertical.Add(NewPane("b", 1, &fillWidget{fill: 'b'}))
	horizontal := NewContainer("horizontal", Horizontal, true)
	_ = horizontal.Add(vertical)
	_ = horizontal.Add(NewPane("c", 1, &fillWidget{fill: 'c'}))

	for _, sz := range [][2]uint16{{20, 0}, {0, 0}, {20, 1}, {1, 20}} {
		if err := horizontal.Resize(sz[0], sz[1]); err == nil {
			t.Fatalf("resize to %v should fail", sz)
		}
	}
	if err := horizontal.Resize(20, 10); err != nil {
		t.Fatalf("resize 20x10: %v", err)
	}
	if err := horizontal.Resize(32, 8); err != nil {
		t.Fatalf("resize 32x8: %v", err)
	}
	return horizontal
}

func TestContainerRenderAndSearch(t *testing.T) {
	layout := buildLayout(t)
	buf := core.NewBuffer(32, 8)
	layout.Render(buf, core.Rect{W: 32, H: 8})
	want := []string{
		"╭a─────────────╮╭c─────────────╮",
		"│aaaaaaaaaaaaaa││cccccccccccccc│",
		"│aaaaaaaaaaaaaa││cccccccccccccc│",
		"╰──────────────╯│cccccccccccccc│",
		"╭b─────────────╮│cccccccccccccc│",
		"│bbbbbbbbbbbbbb││cccccccccccccc│",
		"│bbbbbbbbbbbbbb││cccccccccccccc│",
		"╰──────────────╯╰──────────────╯",
	}
	for y, line := range want {
		if got := buf.Line(y); got != line {
			t.Fatalf("row %d = %q, want %q", y, got, line)
		}
	}

	byName := []struct {
		path string
		want string
		pos  core.Pos
	}{
		{"c", "c", core.Pos{X: 16}},
		{"vertical.a", "a", core.Pos{}},
		{"vertical.b", "b", core.Pos{Y: 4}},
	}
	for _, c := range byName {
		p, pos, ok := layout.ByName(strings.Split(c.path, "."))
		if !ok || p.Name() != c.want || pos != c.pos {
			t.Fatalf("ByName(%q) = %v %+v %v", c.path, p, pos, ok)
		}
	}
	for _, missing := range []string{"", "vertical.c", "horizontal.c"} {
		if _, _, ok := layout.ByName(strings.Split(missing, ".")); ok {
			t.Fatalf("ByName(%q) should not resolve", missing)
		}
	}
	if _, _, ok := layout.ByName(nil); ok {
		t.Fatalf("empty path should not resolve")
	}

	atPos := []struct {
		pos  core.Pos
		want string
		at   core.Pos
	}{
		{core.Pos{X: 16}, "c", core.Pos{X: 16}},
		{core.Pos{}, "a", core.Pos{}},
		{core.Pos{Y: 4}, "b", core.Pos{Y: 4}},
		{core.Pos{X: 15, Y: 5}, "b", core.Pos{Y: 4}},
	}
	for _, c := range atPos {
		p, at, ok := layout.AtPosition(c.pos)
		if !ok || p.Name() != c.want || at != c.at {
			t.Fatalf("AtPosition(%+v) = %v %+v %v", c.pos, p, at, ok)
		}
	}
}

func expectFocus(t *testing.T, c *Container, name string, f Focus) {
	t.Helper()
	p, _, got := c.Focused()
	if f == FocusNone {
		if got != FocusNone {
			t.Fatalf("expected nothing focused, got %s on %s", got, p.Name())
		}
		return
	}
	if p == nil || p.Name() != name || got != f {
		t.Fatalf("expected %s on %s, got %v %s", f, name, p, got)
	}
}

func TestContainerFocusNavigation(t *testing.T) {
	layout := buildLayout(t)
	expectFocus(t, layout, "", FocusNone)

	layout.HandleKey(key(tcell.KeyEnter))
	expectFocus(t, layout, "a", FocusPartial)
	layout.HandleKey(key(tcell.KeyEnter))
	expectFocus(t, layout, "a", FocusFull)
	layout.HandleKey(key(tcell.KeyEscape))
	expectFocus(t, layout, "a", FocusPartial)
	layout.HandleKey(key(tcell.KeyDown))
	expectFocus(t, layout, "b", FocusPartial)
	layout.HandleKey(key(tcell.KeyRight))
	expectFocus(t, layout, "c", FocusPartial)
	layout.HandleKey(key(tcell.KeyRight))
	expectFocus(t, layout, "c", FocusPartial)
}

func TestFocusTraversalLeftIntoLowerPane(t *testing.T) {
	layout := buildLayout(t)
	c, _, _ := layout.ByName([]string{"c"})
	c.SetFocus(FocusPartial)
	// The probe sits at (15, 4), the middle of c's left edge.
	layout.HandleKey(key(tcell.KeyLeft))
	expectFocus(t, layout, "b", FocusPartial)
	if c.Focus() != FocusNone {
		t.Fatalf("c should have lost focus")
	}
	layout.HandleKey(key(tcell.KeyUp))
	expectFocus(t, layout, "a", FocusPartial)
	layout.HandleKey(key(tcell.KeyRight))
	expectFocus(t, layout, "c", FocusPartial)
}

func TestFocusedKeysReachWidget(t *testing.T) {
	layout := buildLayout(t)
	p, _, _ := layout.ByName([]string{"c"})
	p.SetFocus(FocusFull)
	layout.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	w := p.Widget().(*fillWidget)
	if len(w.keys) != 1 || w.keys[0] != tcell.KeyRune {
		t.Fatalf("widget keys = %v", w.keys)
	}
	layout.HandleKey(key(tcell.KeyUp))
	if len(w.keys) != 2 {
		t.Fatalf("arrow keys go to a fully focused widget")
	}
	expectFocus(t, layout, "c", FocusFull)
}

func TestContainerBorders(t *testing.T) {
	layout := buildLayout(t)
	cases := []struct {
		x, y uint16
		want Border
	}{
		{1, 0, BorderTop},
		{0, 1, BorderLeft},
		{0, 6, BorderLeft},
		{15, 1, BorderNone},
		{1, 7, BorderBottom},
		{31, 1, BorderRight},
		{1, 3, BorderNone},
	}
	for _, c := range cases {
		if got := layout.BorderAt(c.x, c.y); got != c.want {
			t.Fatalf("BorderAt(%d,%d) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestResizeRounding(t *testing.T) {
	c := NewContainer("row", Horizontal, false)
	for _, n := range []string{"x", "y", "z"} {
		_ = c.Add(NewPane(n, 0, &fillWidget{}))
	}
	if err := c.Resize(4, 1); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := c.Resize(17, 1); err != nil {
		t.Fatalf("resize: %v", err)
	}
	var got []uint16
	for _, ch := range c.Children() {
		w, _ := ch.Size()
		got = append(got, w)
	}
	if !reflect.DeepEqual(got, []uint16{4, 4, 9}) {
		t.Fatalf("sizes = %v, want [4 4 9]", got)
	}
	if s := CalculateSizes([]float64{1, 1, 2}, 17); !reflect.DeepEqual(s, []uint16{4, 4, 9}) {
		t.Fatalf("CalculateSizes = %v", s)
	}
}

func sizesAlong(c *Container) []uint16 {
	var out []uint16
	for _, ch := range c.Children() {
		w, h := ch.Size()
		out = append(out, c.Direction().along(w, h))
	}
	return out
}

func TestFixedAndWeightedChildren(t *testing.T) {
	col := NewContainer("col", Vertical, false)
	_ = col.Add(NewPane("list", 1, &fillWidget{}))
	_ = col.Add(NewPane("filter", 1, &fillWidget{}))
	col.SetFixed(1, 3)
	for _, h := range []uint16{20, 30, 12} {
		if err := col.Resize(10, h); err != nil {
			t.Fatalf("resize %d: %v", h, err)
		}
		if got := sizesAlong(col); !reflect.DeepEqual(got, []uint16{h - 3, 3}) {
			t.Fatalf("height %d: sizes = %v", h, got)
		}
	}

	row := NewContainer("row", Horizontal, true)
	for _, n := range []string{"x", "y", "z"} {
		_ = row.Add(NewPane(n, 1, &fillWidget{}))
	}
	row.SetWeights(1, 1, 2)
	if err := row.Resize(40, 5); err != nil {
		t.Fatal(err)
	}
	if got := sizesAlong(row); !reflect.DeepEqual(got, []uint16{10, 10, 20}) {
		t.Fatalf("weighted sizes = %v", got)
	}
	if err := row.Resize(80, 5); err != nil {
		t.Fatal(err)
	}
	if got := sizesAlong(row); !reflect.DeepEqual(got, []uint16{20, 20, 40}) {
		t.Fatalf("proportional sizes = %v", got)
	}
}

func TestResizeToSameSizeKeepsLayout(t *testing.T) {
	for n := 2; n <= 6; n++ {
		for w := uint16(20); w < 300; w++ {
			c := NewContainer("row", Horizontal, true)
			for i := 0; i < n; i++ {
				_ = c.Add(NewPane("p", 1, &fillWidget{}))
			}
			if err := c.Resize(w, 10); err != nil {
				t.Fatalf("n=%d w=%d: %v", n, w, err)
			}
			before := sizesAlong(c)
			for i := 0; i < 5; i++ {
				if err := c.Resize(w, 10); err != nil {
					t.Fatalf("n=%d w=%d: %v", n, w, err)
				}
			}
			if got := sizesAlong(c); !reflect.DeepEqual(got, before) {
				t.Fatalf("n=%d w=%d: sizes drifted %v -> %v", n, w, before, got)
			}
		}
	}
}

func TestRejectedResizeLeavesLayoutUntouched(t *testing.T) {
	layout := buildLayout(t)
	err := layout.Resize(32, 3)
	var rerr *ResizeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResizeError, got %v", err)
	}
	if w, h := layout.Size(); w != 32 || h != 8 {
		t.Fatalf("container size changed to %dx%d", w, h)
	}
	_, pos, _ := layout.ByName([]string{"vertical", "b"})
	if pos != (core.Pos{Y: 4}) {
		t.Fatalf("child moved to %+v", pos)
	}
}

func checkLayout(t *testing.T, c *Container) {
	t.Helper()
	w, h := c.Size()
	var sum int
	for _, ch := range c.Children() {
		cw, chh := ch.Size()
		if c.Direction() == Horizontal {
			sum += int(cw)
			if chh != h {
				t.Fatalf("%s: child height %d != %d", c.Name(), chh, h)
			}
		} else {
			sum += int(chh)
			if cw != w {
				t.Fatalf("%s: child width %d != %d", c.Name(), cw, w)
			}
		}
		if sub, ok := ch.(*Container); ok {
			checkLayout(t, sub)
		}
	}
	if want := int(c.Direction().along(w, h)); sum != want {
		t.Fatalf("%s: children sum %d != %d", c.Name(), sum, want)
	}
}

func countFocus(c *Container) (full, partial int) {
	c.WalkPanes(func(p *Pane, _ core.Pos) {
		switch p.Focus() {
		case FocusFull:
			full++
		case FocusPartial:
			partial++
		}
	})
	return full, partial
}

func TestLayoutInvariantsUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	layout := buildLayout(t)
	keys := []tcell.Key{tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight, tcell.KeyEnter, tcell.KeyEscape}
	kinds := []core.MouseKind{core.MouseDown, core.MouseDrag, core.MouseUp, core.MouseNone}
	for step := 0; step < 400; step++ {
		switch rng.Intn(3) {
		case 0:
			_ = layout.Resize(uint16(rng.Intn(60)), uint16(rng.Intn(30)))
		case 1:
			layout.HandleKey(key(keys[rng.Intn(len(keys))]))
		case 2:
			w, h := layout.Size()
			layout.HandleMouse(uint16(rng.Intn(int(w)+1)), uint16(rng.Intn(int(h)+1)), kinds[rng.Intn(len(kinds))])
		}
		checkLayout(t, layout)
		if full, partial := countFocus(layout); full > 1 || partial > 1 {
			t.Fatalf("step %d: %d focused, %d partial", step, full, partial)
		}
	}
}

func TestMouseFocusesAndForwards(t *testing.T) {
	layout := buildLayout(t)
	layout.HandleMouse(20, 3, core.MouseDown)
	expectFocus(t, layout, "c", FocusFull)
	c, _, _ := layout.ByName([]string{"c"})
	w := c.Widget().(*fillWidget)
	if len(w.mouse) != 1 || w.mouse[0] != core.MouseDown {
		t.Fatalf("widget mouse = %v", w.mouse)
	}
	layout.HandleMouse(2, 2, core.MouseDown)
	expectFocus(t, layout, "a", FocusFull)
	if c.Focus() != FocusNone {
		t.Fatalf("clicking elsewhere should clear c")
	}
	layout.HandleMouse(0, 0, core.MouseNone)
	expectFocus(t, layout, "", FocusNone)
}

func TestBorderDragResizesNeighbours(t *testing.T) {
	layout := buildLayout(t)
	layout.HandleMouse(15, 2, core.MouseDown)
	layout.HandleMouse(19, 2, core.MouseDrag)
	layout.HandleMouse(19, 2, core.MouseUp)
	v, _ := layout.Children()[0].Size()
	c, _ := layout.Children()[1].Size()
	if v != 20 || c != 12 {
		t.Fatalf("after drag widths = %d,%d want 20,12", v, c)
	}
	checkLayout(t, layout)

	layout.HandleMouse(20, 2, core.MouseDown)
	layout.HandleMouse(50, 2, core.MouseDrag)
	v, _ = layout.Children()[0].Size()
	if v != 20 {
		t.Fatalf("a drag past the edge must be rejected, width %d", v)
	}
}

func TestPaneResizeAndBorders(t *testing.T) {
	p := NewPane("p", 1, &fillWidget{})
	if err := p.Resize(1, 5); err == nil {
		t.Fatalf("1-wide pane cannot hold a border")
	}
	if err := p.Resize(4, 3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if w := p.Widget().(*fillWidget); w.w != 2 || w.h != 1 {
		t.Fatalf("widget inner size = %dx%d", w.w, w.h)
	}
	cases := []struct {
		x, y uint16
		want Border
	}{
		{0, 1, BorderLeft}, {3, 1, BorderRight}, {1, 0, BorderTop}, {1, 2, BorderBottom}, {1, 1, BorderNone}, {9, 9, BorderNone},
	}
	for _, c := range cases {
		if got := p.BorderAt(c.x, c.y); got != c.want {
			t.Fatalf("BorderAt(%d,%d) = %s", c.x, c.y, got)
		}
	}
	buf := core.NewBuffer(4, 3)
	p.Render(buf, core.Rect{W: 4, H: 3})
	if p.Invalidated() {
		t.Fatalf("render should clear the invalidated flag")
	}
	buf.Clear()
	p.Render(buf, core.Rect{W: 4, H: 3})
	if buf.Line(0) != "    " {
		t.Fatalf("clean pane should not redraw")
	}
	p.SetFocus(FocusPartial)
	p.Render(buf, core.Rect{W: 4, H: 3})
	if fg, _, _ := buf.Get(0, 0).Style.Decompose(); fg != tcell.ColorYellow {
		t.Fatalf("partial focus border should be yellow")
	}
}

func TestLayoutResizeModel(t *testing.T) {
	r := NewLayoutResize([]uint16{10, 10, 20}, 2)
	if !r.ResizeContainer(80) || !reflect.DeepEqual(r.Lengths(), []uint16{20, 20, 40}) {
		t.Fatalf("scale up = %v", r.Lengths())
	}
	if r.ResizeContainer(8) {
		t.Fatalf("shrinking below the minimum must be rejected")
	}
	if !reflect.DeepEqual(r.Lengths(), []uint16{20, 20, 40}) {
		t.Fatalf("rejected resize changed lengths: %v", r.Lengths())
	}
	if !r.ResizeContainer(41) || r.Total() != 41 {
		t.Fatalf("odd total = %v", r.Lengths())
	}
	if !reflect.DeepEqual(r.Lengths(), []uint16{10, 10, 21}) {
		t.Fatalf("41 split = %v", r.Lengths())
	}

	if r.HandleMouseDown(5, 1) {
		t.Fatalf("no border near 5")
	}
	if !r.HandleMouseDown(11, 1) {
		t.Fatalf("border 1 at offset 10 is within one cell of 11")
	}
	if b, ok := r.Moving(); !ok || b != 1 {
		t.Fatalf("moving border = %d %v", b, ok)
	}
	if !r.HandleMouseDrag(14) || !reflect.DeepEqual(r.Lengths(), []uint16{13, 7, 21}) {
		t.Fatalf("drag = %v", r.Lengths())
	}
	if r.HandleMouseDrag(30) {
		t.Fatalf("drag leaving 7-16 < 2 must be rejected")
	}
	r.HandleMouseUp()
	if r.HandleMouseDrag(10) {
		t.Fatalf("drag after release must do nothing")
	}
}
