package layout

import (
	"fmt"

	"github.com/daviddao/hudview/internal/display"
)

// Item is one scrollback row ready to draw: the colored stamp prefix, the
// body text wrapped to the message column, and the row's measured height.
type Item struct {
	Prefix     string
	PrefixCol  float64
	Body       string
	BodyWidth  float64
	Height     float64
	StampColor string
}

// ScrollbackLayout is the result of laying out the log view: items ordered
// newest first, stacked upward from the bottom edge.
type ScrollbackLayout struct {
	Items       []Item
	StampColumn float64
	TotalHeight float64
}

// StampColumnWidth picks the fixed width of the timestamp column from a
// sample stamp at the current font size. The column never dips below a
// readable floor, and when the panel is too narrow to fit both columns it
// yields to the message, keeping at most 45% of the text area.
func (e *Engine) StampColumnWidth(textAreaWidth float64) float64 {
	w, _ := e.M.Measure(stampSample, e.FontSize, 0)
	col := w + 2.0
	if col < stampMinCol {
		col = stampMinCol
	}
	if col > textAreaWidth-stampTightPx {
		col = textAreaWidth * 0.45
		if col < 40.0 {
			col = 40.0
		}
	}
	return col
}

// LayoutScrollback measures every entry for a text area of the given width.
// Entries come in oldest-first and the returned items are newest-first, the
// order they are stacked from the bottom. An empty log yields a single idle
// row so the panel never renders blank.
func (e *Engine) LayoutScrollback(entries []display.Entry, textAreaWidth float64) ScrollbackLayout {
	if len(entries) == 0 {
		entries = []display.Entry{{Stamp: display.UnknownStamp, Text: display.Sentinel}}
	}
	col := e.StampColumnWidth(textAreaWidth)
	msgWidth := textAreaWidth - col
	if msgWidth < 60.0 {
		msgWidth = 60.0
	}

	out := ScrollbackLayout{StampColumn: col}
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		stamp := entry.Stamp
		if stamp == "" {
			stamp = display.UnknownStamp
		}
		body := entry.Text
		if body == "" {
			body = display.Sentinel
		}
		prefix := fmt.Sprintf("[%s] ", stamp)
		_, prefixH := e.M.Measure(prefix, e.FontSize, 0)
		_, bodyH := e.M.Measure(body, e.FontSize, msgWidth)
		h := prefixH
		if bodyH > h {
			h = bodyH
		}
		h += 2.0
		out.Items = append(out.Items, Item{
			Prefix:     prefix,
			PrefixCol:  col,
			Body:       body,
			BodyWidth:  msgWidth,
			Height:     h,
			StampColor: display.StampColor(stamp),
		})
		out.TotalHeight += h
	}
	return out
}

// VisibleRange reports, for a viewport of the given height scrolled up by
// offset pixels, which items intersect it and the y position of the first.
// Items stack upward: item 0 (newest) sits at the bottom edge plus offset.
func (l ScrollbackLayout) VisibleRange(viewportHeight, offset float64) (first, last int, firstY float64) {
	y := viewportHeight + offset
	first, last = -1, -1
	for i, item := range l.Items {
		y -= item.Height
		if y+item.Height < 0 || y > viewportHeight {
			continue
		}
		if first < 0 {
			first = i
			firstY = y
		}
		last = i
	}
	return first, last, firstY
}
