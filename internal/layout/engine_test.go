package layout

import (
	"testing"

	"github.com/daviddao/hudview/internal/display"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{M: NewCellMeasurer(), FontSize: 16, MetaFontSize: 12}
}

func TestSplitMainMeta(t *testing.T) {
	tests := []struct {
		in, main, meta string
	}{
		{"hello world", "hello world", ""},
		{"body\nmeta: turn 3", "body", "meta: turn 3"},
		{"body\nSTEP: 12", "body", "STEP: 12"},
		{"body\nnot a trailer", "body\nnot a trailer", ""},
		{"meta: only", "meta: only", ""},
		{"\nmeta: lonely", "Recording active.", "meta: lonely"},
		{"   \n\t", "Recording active.", ""},
	}
	for _, tt := range tests {
		main, meta := SplitMainMeta(tt.in)
		if main != tt.main || meta != tt.meta {
			t.Errorf("SplitMainMeta(%q) = (%q, %q), want (%q, %q)", tt.in, main, meta, tt.main, tt.meta)
		}
	}
}

func TestDesiredWidthClamps(t *testing.T) {
	e := testEngine(t)
	if got := e.DesiredWidth("hi", "", 1920); got != MinWidth {
		t.Errorf("short text width = %v, want %v", got, MinWidth)
	}
	long := "a very long single line of text that would measure far wider than the panel maximum allows it to be"
	if got := e.DesiredWidth(long, "", 1920); got != MaxWidth {
		t.Errorf("long text width = %v, want %v", got, MaxWidth)
	}
}

func TestDesiredWidthBoundedByScreen(t *testing.T) {
	e := testEngine(t)
	long := "a very long single line of text that would measure far wider than the panel maximum allows it to be"
	got := e.DesiredWidth(long, "", 400)
	if want := MaxWidthForScreen(400); got != want {
		t.Errorf("width on narrow screen = %v, want %v", got, want)
	}
}

func TestHeightForTextTracksLines(t *testing.T) {
	e := testEngine(t)
	short := e.HeightForText("one line", "", 567)
	if short != MinHeight {
		t.Errorf("short height = %v, want floor %v", short, MinHeight)
	}
	var tall string
	for i := 0; i < 40; i++ {
		tall += "another line of body text\n"
	}
	if got := e.HeightForText(tall, "", 567); got <= MinHeight {
		t.Errorf("tall height = %v, want above %v", got, MinHeight)
	}
}

func TestHeightForTextIncludesMeta(t *testing.T) {
	e := testEngine(t)
	var body string
	for i := 0; i < 20; i++ {
		body += "line\n"
	}
	without := e.HeightForText(body, "", 567)
	with := e.HeightForText(body, "meta: extra", 567)
	if with <= without {
		t.Errorf("meta height %v not above %v", with, without)
	}
}

func TestWindowSizeForFont(t *testing.T) {
	e := testEngine(t)
	e.FontSize = 20
	w, h := e.WindowSizeForFont(1920, 1080)
	if w != BaseWidth || h != BaseHeight {
		t.Errorf("below threshold: %v x %v, want %v x %v", w, h, BaseWidth, BaseHeight)
	}
	e.FontSize = 30
	w, h = e.WindowSizeForFont(1920, 1080)
	wantW := BaseWidth + 6*fontGrowWidthPerPt
	wantH := BaseHeight + 6*fontGrowHeightPerPt
	if w != wantW || h != wantH {
		t.Errorf("above threshold: %v x %v, want %v x %v", w, h, wantW, wantH)
	}
}

func TestWindowSizeForFontBoundedByScreen(t *testing.T) {
	e := testEngine(t)
	e.FontSize = MaxFontSize
	w, h := e.WindowSizeForFont(500, 300)
	if w != MaxWidthForScreen(500) {
		t.Errorf("w = %v, want screen bound %v", w, MaxWidthForScreen(500))
	}
	if h != MaxHeightForScreen(300) {
		t.Errorf("h = %v, want screen bound %v", h, MaxHeightForScreen(300))
	}
}

func TestFontStateZoomClamps(t *testing.T) {
	f := NewFontState(22)
	if !f.Zoom(50) {
		t.Error("zoom up reported no change")
	}
	if f.Main != MaxFontSize {
		t.Errorf("zoomed size = %v, want %v", f.Main, MaxFontSize)
	}
	if f.Zoom(1) {
		t.Error("zoom past max reported a change")
	}
	if !f.Zoom(-100) {
		t.Error("zoom down reported no change")
	}
	if f.Main != MinFontSize {
		t.Errorf("size = %v, want %v", f.Main, MinFontSize)
	}
}

func TestWheelCarriesRemainder(t *testing.T) {
	var w Wheel
	if got := w.Step(60); got != 0 {
		t.Errorf("half detent scrolled %v px", got)
	}
	if got := w.Step(60); got != WheelStepPx {
		t.Errorf("completed detent scrolled %v px, want %v", got, WheelStepPx)
	}
	if got := w.Step(-240); got != -2*WheelStepPx {
		t.Errorf("two detents back scrolled %v px, want %v", got, -2*WheelStepPx)
	}
}

func TestClampScroll(t *testing.T) {
	if got := ClampScroll(-10, 500, 200); got != 0 {
		t.Errorf("negative offset clamped to %v", got)
	}
	if got := ClampScroll(1000, 500, 200); got != 300 {
		t.Errorf("over-scroll clamped to %v, want 300", got)
	}
	if got := ClampScroll(100, 150, 200); got != 0 {
		t.Errorf("content shorter than viewport clamped to %v, want 0", got)
	}
}

func TestLayoutScrollbackNewestFirst(t *testing.T) {
	e := testEngine(t)
	entries := []display.Entry{
		{Stamp: "10:00:00", Text: "oldest"},
		{Stamp: "10:00:01", Text: "newest"},
	}
	l := e.LayoutScrollback(entries, 500)
	if len(l.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(l.Items))
	}
	if l.Items[0].Body != "newest" || l.Items[1].Body != "oldest" {
		t.Errorf("order = %q, %q", l.Items[0].Body, l.Items[1].Body)
	}
	if l.Items[0].Prefix != "[10:00:01] " {
		t.Errorf("prefix = %q", l.Items[0].Prefix)
	}
	if l.TotalHeight <= 0 {
		t.Errorf("total height = %v", l.TotalHeight)
	}
}

func TestLayoutScrollbackEmptyShowsIdleRow(t *testing.T) {
	e := testEngine(t)
	l := e.LayoutScrollback(nil, 500)
	if len(l.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(l.Items))
	}
	if l.Items[0].Body != display.Sentinel {
		t.Errorf("body = %q", l.Items[0].Body)
	}
}

func TestStampColumnYieldsWhenNarrow(t *testing.T) {
	e := testEngine(t)
	e.FontSize = 40
	area := 200.0
	col := e.StampColumnWidth(area)
	if col > area*0.45 {
		t.Errorf("column %v exceeds 45%% of %v", col, area)
	}
	if col < 40 {
		t.Errorf("column %v below floor", col)
	}
}
