package query

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/waveform"
)

// clockStore has a one-bit clock (idcode 0) toggling every period from 0
// below end, and an 8-bit counter (idcode 1) incrementing on rising edges.
func clockStore(t *testing.T, period, end uint64) *waveform.Waveform {
	t.Helper()
	w := waveform.New()
	if err := w.InitVector(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.InitVector(1, 8); err != nil {
		t.Fatal(err)
	}
	var n uint64
	for ts := uint64(0); ts < end; ts += period {
		if err := w.InsertTimestamp(ts); err != nil {
			t.Fatal(err)
		}
		bit := (ts / period) % 2
		if err := w.UpdateVector(0, waveform.FromUint64(1, bit)); err != nil {
			t.Fatal(err)
		}
		if bit == 1 {
			n++
		}
		if err := w.UpdateVector(1, waveform.FromUint64(8, n)); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func TestMultipleEdgeCompression(t *testing.T) {
	w := clockStore(t, 50, 1000)
	_, max := w.TimestampRange()
	row := Query(w, Request{Start: 0, End: 1000, TimestampMax: max, Idcode: 0}, 10)
	if len(row) != 1 {
		t.Fatalf("expected one run, got %d: %+v", len(row), row)
	}
	if row[0].Text != "##########" {
		t.Fatalf("text = %q", row[0].Text)
	}
	fg, bg, _ := row[0].Style.Decompose()
	if fg != tcell.ColorBlack || bg != tcell.ColorSilver {
		t.Fatalf("style = %v on %v", fg, bg)
	}
}

func TestVoidTail(t *testing.T) {
	w := waveform.New()
	if err := w.InitVector(0, 4); err != nil {
		t.Fatal(err)
	}
	if err := w.InitVector(1, 1); err != nil {
		t.Fatal(err)
	}
	for _, step := range []struct {
		ts uint64
		id int
		v  uint64
	}{{0, 0, 1}, {100, 0, 10}, {499, 1, 1}} {
		if err := w.InsertTimestamp(step.ts); err != nil {
			t.Fatal(err)
		}
		width := 4
		if step.id == 1 {
			width = 1
		}
		if err := w.UpdateVector(step.id, waveform.FromUint64(width, step.v)); err != nil {
			t.Fatal(err)
		}
	}
	_, max := w.TimestampRange()
	if max != 500 {
		t.Fatalf("max = %d", max)
	}
	req := Request{Start: 400, End: 600, TimestampMax: max, Idcode: 0, Radix: waveform.Hexadecimal}
	cells := Cells(w, req, 20)
	for i, c := range cells {
		want := Static
		if i >= 10 {
			want = StaticVoid
		}
		if c.Kind != want {
			t.Fatalf("cell %d = %v, want %v", i, c.Kind, want)
		}
	}
	row := Query(w, req, 20)
	if len(row) != 2 {
		t.Fatalf("expected two runs, got %+v", row)
	}
	if row[0].Text != "a         " {
		t.Fatalf("static text = %q", row[0].Text)
	}
	if _, bg, _ := row[1].Style.Decompose(); bg != tcell.ColorSilver {
		t.Fatalf("void run should be grey, got %v", bg)
	}
}

func TestAfterEndIsVoid(t *testing.T) {
	w := clockStore(t, 10, 200)
	_, max := w.TimestampRange()
	for _, width := range []int{1, 7, 40} {
		for _, id := range []int{0, 1} {
			for _, c := range Cells(w, Request{Start: max, End: max + 1000, TimestampMax: max, Idcode: id}, width) {
				if c.Kind != StaticVoid && c.Kind != None {
					t.Fatalf("width %d idcode %d: cell after end is %v", width, id, c.Kind)
				}
			}
		}
	}
}

func TestRowWidth(t *testing.T) {
	w := clockStore(t, 7, 3000)
	_, max := w.TimestampRange()
	rng := rand.New(rand.NewSource(11))
	bit := 2
	for i := 0; i < 300; i++ {
		start := uint64(rng.Intn(4000))
		end := start + uint64(rng.Intn(2000))
		width := 1 + rng.Intn(120)
		req := Request{
			Start: start, End: end, TimestampMax: max,
			Idcode:   rng.Intn(2),
			Radix:    waveform.Radix(rng.Intn(4)),
			Selected: rng.Intn(2) == 0,
		}
		if rng.Intn(3) == 0 {
			req.Idcode, req.Bit = 1, &bit
		}
		if got := Query(w, req, width).Width(); got != width {
			t.Fatalf("request %+v width %d rendered %d glyphs", req, width, got)
		}
	}
}

func TestSingleEdgeAndGlyphs(t *testing.T) {
	w := clockStore(t, 100, 400)
	_, max := w.TimestampRange()
	// 8 cells of 50; the counter changes at 0, 100 and 300.
	cells := Cells(w, Request{Start: 0, End: 400, TimestampMax: max, Idcode: 1}, 8)
	kinds := []Kind{SingleEdge, Static, SingleEdge, Static, Static, Static, SingleEdge, Static}
	for i, c := range cells {
		if c.Kind != kinds[i] {
			t.Fatalf("cell %d = %v, want %v", i, c.Kind, kinds[i])
		}
	}
	row := Query(w, Request{Start: 0, End: 400, TimestampMax: max, Idcode: 1, Radix: waveform.Hexadecimal}, 8)
	var texts []string
	for _, r := range row {
		texts = append(texts, r.Text)
	}
	if got := strings.Join(texts, ","); got != "|0,|01 ,|0" {
		t.Fatalf("runs = %q", got)
	}

	clk := Query(w, Request{Start: 0, End: 400, TimestampMax: max, Idcode: 0}, 8)
	var sb strings.Builder
	for _, r := range clk {
		sb.WriteString(r.Text)
	}
	if sb.String() != "__██__██" {
		t.Fatalf("clock glyphs = %q", sb.String())
	}
}

func TestRunStyles(t *testing.T) {
	x, _ := waveform.ParseBitVector("1x")
	z, _ := waveform.ParseBitVector("zz")
	cases := []struct {
		cell Cell
		text string
		fg   tcell.Color
	}{
		{Cell{Kind: Static, Width: 4, Value: waveform.ValueResult{Vector: x}}, "X   ", tcell.ColorRed},
		{Cell{Kind: Static, Width: 2, Value: waveform.ValueResult{Vector: z}}, "Z ", tcell.ColorBlue},
		{Cell{Kind: SingleEdge, Width: 3, Value: waveform.ValueResult{Kind: waveform.KindReal, Real: 2.5}}, "|2.", tcell.ColorWhite},
		{Cell{Kind: None, Width: 2}, "  ", tcell.ColorWhite},
		{Cell{Kind: StaticVoid, Width: 1, Value: waveform.ValueResult{Vector: x}}, "X", tcell.ColorSilver},
	}
	for i, c := range cases {
		run := c.cell.Run(waveform.Hexadecimal, false)
		fg, _, attr := run.Style.Decompose()
		if run.Text != c.text || fg != c.fg || attr&tcell.AttrBold != 0 {
			t.Fatalf("case %d: %q %v %v", i, run.Text, fg, attr)
		}
	}
	run := cases[0].cell.Run(waveform.Hexadecimal, true)
	if _, _, attr := run.Style.Decompose(); attr&tcell.AttrBold == 0 {
		t.Fatalf("selected rows should be bold")
	}
}

func TestMergeRules(t *testing.T) {
	c := func(k Kind) Cell { return Cell{Kind: k, Width: 1} }
	got := Merge([]Cell{
		c(None), c(None),
		c(SingleEdge), c(Static), c(Static),
		c(SingleEdge), c(SingleEdge),
		c(MultipleEdge), c(MultipleEdge),
		c(Static), c(StaticVoid), c(StaticVoid),
	})
	want := []struct {
		k Kind
		w int
	}{{None, 2}, {SingleEdge, 3}, {SingleEdge, 1}, {SingleEdge, 1}, {MultipleEdge, 2}, {Static, 1}, {StaticVoid, 2}}
	if len(got) != len(want) {
		t.Fatalf("merged = %+v", got)
	}
	for i := range want {
		if got[i].Kind != want[i].k || got[i].Width != want[i].w {
			t.Fatalf("run %d = %v/%d, want %v/%d", i, got[i].Kind, got[i].Width, want[i].k, want[i].w)
		}
	}
}

func TestRowRender(t *testing.T) {
	buf := core.NewBuffer(6, 1)
	Row{{Text: "ab", Style: styleNormal}, {Text: "█#", Style: styleMultiple}}.Render(buf, 1, 0)
	if got := buf.Line(0); got != " ab█# " {
		t.Fatalf("line = %q", got)
	}
}
