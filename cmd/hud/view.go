package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/daviddao/hudview/internal/display"
	"github.com/daviddao/hudview/internal/layout"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	mainTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	metaTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// screenPx reports the terminal size in layout pixels at the current font.
func (m hudModel) screenPx() (w, h float64) {
	cellW := m.measurer.CellWidth(m.fonts.Main)
	lineH := m.measurer.LineHeight(m.fonts.Main)
	return float64(m.width) * cellW, float64(m.height) * lineH
}

// panelPx computes the overlay size in pixels: text-driven in file mode,
// font-scaled in live mode.
func (m hudModel) panelPx() (w, h float64) {
	eng := m.engine()
	screenW, screenH := m.screenPx()
	if m.fileMode {
		main, meta := layout.SplitMainMeta(m.snap.Latest)
		w = eng.DesiredWidth(main, meta, screenW)
		h = eng.HeightForText(main, meta, w)
		if maxH := layout.MaxHeightForScreen(screenH); h > maxH {
			h = maxH
		}
		return w, h
	}
	return eng.WindowSizeForFont(screenW, screenH)
}

// viewportPx is the pixel height available for the scrollback log, after the
// input row.
func (m hudModel) viewportPx() float64 {
	_, h := m.panelPx()
	lineH := m.measurer.LineHeight(m.fonts.Main)
	v := h - 2*layout.Padding - lineH
	if v < lineH {
		v = lineH
	}
	return v
}

func (m hudModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	cellW := m.measurer.CellWidth(m.fonts.Main)
	lineH := m.measurer.LineHeight(m.fonts.Main)

	panelW, panelH := m.panelPx()
	cols := int(panelW/cellW) - 4
	rows := int(panelH / lineH)
	if cols < 10 {
		cols = 10
	}
	if rows < 3 {
		rows = 3
	}
	if cols > m.width-4 {
		cols = m.width - 4
	}
	if rows > m.height-2 {
		rows = m.height - 2
	}

	var body string
	if m.fileMode {
		body = m.renderFileView(cols, rows)
	} else {
		body = m.renderLiveView(cols, rows, panelW, cellW)
	}

	panel := panelStyle.Width(cols).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Center, panel)
}

// renderFileView shows the latest text as a main block plus optional meta
// trailer, the single-message overlay shape.
func (m hudModel) renderFileView(cols, rows int) string {
	main, meta := layout.SplitMainMeta(m.snap.Latest)
	style := mainTextStyle
	if main == display.Sentinel {
		style = idleStyle
	}
	lines := strings.Split(wordwrap.String(main, cols), "\n")
	out := make([]string, 0, len(lines)+1)
	for _, ln := range lines {
		out = append(out, style.Render(ln))
	}
	if meta != "" {
		out = append(out, metaTextStyle.Render(ansi.Truncate(meta, cols, "…")))
	}
	return clipLines(strings.Join(out, "\n"), rows)
}

// renderLiveView shows the scrollback log, newest at the bottom, with the
// input row under it.
func (m hudModel) renderLiveView(cols, rows int, panelW, cellW float64) string {
	eng := m.engine()
	areaW := panelW - 2*layout.Padding
	lay := eng.LayoutScrollback(m.snap.Scrollback, areaW)

	stampCols := int(lay.StampColumn / cellW)
	if stampCols < 1 {
		stampCols = 1
	}
	bodyCols := cols - stampCols
	if bodyCols < 8 {
		bodyCols = 8
	}

	// Items come newest-first; emit chronological lines top to bottom.
	var lines []string
	for i := len(lay.Items) - 1; i >= 0; i-- {
		lines = append(lines, renderLogItem(lay.Items[i], stampCols, bodyCols)...)
	}

	logRows := rows - 2
	if logRows < 1 {
		logRows = 1
	}

	// Re-clamp the offset against the rendered line count every paint. The
	// pixel clamp in scroll() carries per-item slack the row conversion
	// does not, so max scroll must always land on the oldest lines rather
	// than past them.
	lineH := m.measurer.LineHeight(m.fonts.Main)
	offsetRows := int(m.scrollPx / lineH)
	if maxOffset := len(lines) - logRows; offsetRows > maxOffset {
		offsetRows = maxOffset
	}
	if offsetRows < 0 {
		offsetRows = 0
	}
	end := len(lines) - offsetRows
	start := end - logRows
	if start < 0 {
		start = 0
	}
	visible := lines[start:end]

	out := make([]string, 0, logRows+2)
	for pad := logRows - len(visible); pad > 0; pad-- {
		out = append(out, "")
	}
	out = append(out, visible...)

	if m.status != "" {
		out = append(out, statusStyle.Render(ansi.Truncate(m.status, cols, "…")))
	}
	out = append(out, m.input.View())
	return strings.Join(out, "\n")
}

// renderLogItem renders one scrollback entry as one or more terminal lines,
// with the timestamp gutter colored by its hash and continuation lines
// indented under it.
func renderLogItem(it layout.Item, stampCols, bodyCols int) []string {
	stampStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(it.StampColor))
	gutter := padOrTruncate(it.Prefix, stampCols)
	blank := strings.Repeat(" ", stampCols)

	bodyLines := strings.Split(wordwrap.String(it.Body, bodyCols), "\n")
	out := make([]string, 0, len(bodyLines))
	for i, ln := range bodyLines {
		if i == 0 {
			out = append(out, stampStyle.Render(gutter)+ln)
		} else {
			out = append(out, blank+ln)
		}
	}
	return out
}

// clipLines keeps at most the first n lines. Single-source content is
// top-anchored and clipped at the bottom.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

func padOrTruncate(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
