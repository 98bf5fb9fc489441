// Package layout sizes and places the overlay panel from measured text.
//
// All math works in abstract pixel units through a Measurer, so the engine
// is independent of what actually draws the text. The renderer converts the
// resulting rectangles into terminal cells.
package layout

import "strings"

// Panel geometry. Width is clamped to a narrow column so the overlay never
// covers much of the screen; height tracks the text up to a hard cap.
const (
	Padding      = 10.0
	MinWidth     = 300.0
	MaxWidth     = 567.0
	MinHeight    = 180.0
	MaxHeight    = 2000.0
	TopMargin    = 30.0
	RightMargin  = 30.0
	BaseWidth    = MaxWidth
	BaseHeight   = 340.0
	WheelStepPx  = 36.0
	wheelDelta   = 120
	stampSample  = "[00:00:00] "
	stampMinCol  = 70.0
	stampTightPx = 60.0
)

// Font sizes are whole points stepped by one.
const (
	MinFontSize         = 10.0
	MaxFontSize         = 42.0
	FontStep            = 1.0
	fontGrowThreshold   = 24.0
	fontGrowWidthPerPt  = 56.0
	fontGrowHeightPerPt = 10.0
)

// Measurer reports the rendered size of text at a font size. maxWidth <= 0
// measures without wrapping.
type Measurer interface {
	Measure(text string, fontSize, maxWidth float64) (w, h float64)
}

// Engine computes panel geometry for one font configuration.
type Engine struct {
	M Measurer

	// FontSize is the main text size; MetaFontSize is the smaller trailer
	// size used for meta/step lines.
	FontSize     float64
	MetaFontSize float64
}

// SplitMainMeta separates a text blob into the main body and an optional
// trailer. Only the final line qualifies as trailer, and only when it starts
// with "meta:" or "step:" (case-insensitive). Whitespace-only input, and a
// body left empty by the split, become the idle message.
func SplitMainMeta(text string) (main, meta string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Recording active.", ""
	}
	lastNl := strings.LastIndexByte(trimmed, '\n')
	if lastNl < 0 {
		return trimmed, ""
	}
	candidate := strings.TrimSpace(trimmed[lastNl+1:])
	lower := strings.ToLower(candidate)
	if !strings.HasPrefix(lower, "meta:") && !strings.HasPrefix(lower, "step:") {
		return trimmed, ""
	}
	main = strings.TrimSpace(trimmed[:lastNl])
	if main == "" {
		main = "Recording active."
	}
	return main, candidate
}

// MaxWidthForScreen returns the widest the panel may get on a screen of the
// given working width.
func MaxWidthForScreen(screenW float64) float64 {
	available := screenW - RightMargin - 20.0
	if available < MinWidth {
		return MinWidth
	}
	return available
}

// MaxHeightForScreen returns the tallest the panel may get on a screen of
// the given working height.
func MaxHeightForScreen(screenH float64) float64 {
	available := screenH - TopMargin - 20.0
	if available < MinHeight {
		return MinHeight
	}
	return available
}

// DesiredWidth picks a panel width for the given split text by measuring the
// widest unwrapped line, then clamping to the width bounds and the screen.
func (e *Engine) DesiredWidth(main, meta string, screenW float64) float64 {
	maxTextW, _ := e.M.Measure(main, e.FontSize, 0)
	if meta != "" {
		if metaW, _ := e.M.Measure(meta, e.MetaFontSize, 0); metaW > maxTextW {
			maxTextW = metaW
		}
	}
	wanted := maxTextW + Padding*2 + 12.0
	if wanted < MinWidth {
		wanted = MinWidth
	}
	if wanted > MaxWidth {
		wanted = MaxWidth
	}
	if maxW := MaxWidthForScreen(screenW); wanted > maxW {
		wanted = maxW
	}
	return wanted
}

// HeightForText measures the split text wrapped at the panel width and
// returns a panel height within the height bounds.
func (e *Engine) HeightForText(main, meta string, panelWidth float64) float64 {
	textAreaWidth := panelWidth - Padding*2
	_, mainH := e.M.Measure(main, e.FontSize, textAreaWidth)
	h := Padding*2 + mainH + 2.0
	if meta != "" {
		_, metaH := e.M.Measure(meta, e.MetaFontSize, textAreaWidth)
		h += metaH + 6.0
	}
	if h < MinHeight {
		h = MinHeight
	}
	if h > MaxHeight {
		h = MaxHeight
	}
	return h
}

// WindowSizeForFont returns the panel size for the current font size. The
// base size holds until the font passes the grow threshold, after which the
// panel grows per extra point, still bounded by the screen.
func (e *Engine) WindowSizeForFont(screenW, screenH float64) (w, h float64) {
	grow := e.FontSize - fontGrowThreshold
	if grow < 0 {
		grow = 0
	}
	w = BaseWidth + grow*fontGrowWidthPerPt
	h = BaseHeight + grow*fontGrowHeightPerPt
	if maxW := MaxWidthForScreen(screenW); w > maxW {
		w = maxW
	}
	if maxH := MaxHeightForScreen(screenH); h > maxH {
		h = maxH
	}
	if w < MinWidth {
		w = MinWidth
	}
	if h < MinHeight {
		h = MinHeight
	}
	return w, h
}

// TopRightPosition anchors a panel of the given size on the screen: fixed
// horizontal margin, vertically centered in the working area.
func TopRightPosition(screenW, screenH, w, h float64) (x, y float64) {
	x = RightMargin
	y = (screenH - h) / 2
	if y < 0 {
		y = 0
	}
	return x, y
}

// ClampFontSize bounds a candidate font size to the allowed range.
func ClampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

// FontState tracks the adjustable font size pair for main text and the
// input row; they move together.
type FontState struct {
	Main  float64
	Input float64
}

// NewFontState starts both sizes at the default.
func NewFontState(size float64) FontState {
	return FontState{Main: size, Input: size}
}

// Zoom steps both sizes by delta points and reports whether anything
// changed.
func (f *FontState) Zoom(delta int) bool {
	next := ClampFontSize(f.Main + float64(delta)*FontStep)
	if next == f.Main && next == f.Input {
		return false
	}
	f.Main = next
	f.Input = next
	return true
}

// Wheel accumulates raw wheel deltas, carrying the remainder below one
// detent across events, and converts whole detents into pixel scroll steps.
type Wheel struct {
	remainder int
}

// Step consumes a raw delta and returns the pixel offset change it yields.
func (w *Wheel) Step(delta int) float64 {
	w.remainder += delta
	steps := w.remainder / wheelDelta
	w.remainder = w.remainder % wheelDelta
	return float64(steps) * WheelStepPx
}

// ClampScroll bounds a scroll offset to [0, total-viewport].
func ClampScroll(offset, totalHeight, viewportHeight float64) float64 {
	maxOffset := totalHeight - viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}
