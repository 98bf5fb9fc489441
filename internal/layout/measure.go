package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// CellMeasurer approximates text metrics for a terminal renderer. A cell is
// modeled as a glyph box whose width and line height scale with the font
// size, so the engine's pixel math carries over unchanged; the renderer
// divides the results back into cells.
type CellMeasurer struct {
	// CellAspect is glyph width as a fraction of the font size. Terminal
	// fonts are close to 0.6.
	CellAspect float64
	// LineSpacing is line height as a multiple of the font size.
	LineSpacing float64
}

// NewCellMeasurer returns a measurer with the default terminal font shape.
func NewCellMeasurer() *CellMeasurer {
	return &CellMeasurer{CellAspect: 0.6, LineSpacing: 1.25}
}

// CellWidth is the pixel width of one terminal cell at the given font size.
func (m *CellMeasurer) CellWidth(fontSize float64) float64 {
	return fontSize * m.CellAspect
}

// LineHeight is the pixel height of one text line at the given font size.
func (m *CellMeasurer) LineHeight(fontSize float64) float64 {
	return fontSize * m.LineSpacing
}

// Measure returns the pixel size of text at fontSize, word-wrapped at
// maxWidth when it is positive. Width is that of the widest resulting line.
func (m *CellMeasurer) Measure(text string, fontSize, maxWidth float64) (w, h float64) {
	cellW := m.CellWidth(fontSize)
	if maxWidth > 0 {
		cols := int(maxWidth / cellW)
		if cols < 1 {
			cols = 1
		}
		text = wordwrap.String(text, cols)
	}
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if lw := runewidth.StringWidth(line); lw > widest {
			widest = lw
		}
	}
	return float64(widest) * cellW, float64(len(lines)) * m.LineHeight(fontSize)
}
