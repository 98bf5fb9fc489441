package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/hudview/internal/datasource"
	"github.com/daviddao/hudview/internal/display"
	"github.com/daviddao/hudview/internal/layout"
	"github.com/daviddao/hudview/internal/publish"
	"github.com/daviddao/hudview/internal/speech"
)

// renderInterval is how often the renderer compares its version against the
// shared state. All ingest paths go through the state; the UI never redraws
// faster than this.
const renderInterval = 100 * time.Millisecond

// --- Messages ---

type tickMsg struct{}

type fileChangedMsg struct{}

type submitDoneMsg struct {
	err error
}

// --- Key bindings ---

type keyMap struct {
	Quit       key.Binding
	Submit     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Speech     key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	ZoomIn:     key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+up", "bigger text")),
	ZoomOut:    key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+down", "smaller text")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll back")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll forward")),
	Speech:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "toggle speech")),
}

// --- Model ---

type hudModel struct {
	state     *display.State
	fileMode  bool
	inputFile *datasource.File
	submitter publish.Submitter
	narrator  *speech.Narrator

	// renderedVersion is the state version the current snapshot reflects.
	renderedVersion uint64
	snap            display.Snapshot
	spokenText      string

	fonts    layout.FontState
	measurer *layout.CellMeasurer
	wheel    layout.Wheel
	scrollPx float64
	totalPx  float64

	input  textinput.Model
	status string

	width  int
	height int
}

func newModel(state *display.State, fileMode bool, inputFile *datasource.File, submitter publish.Submitter, narrator *speech.Narrator) hudModel {
	ti := textinput.New()
	ti.Placeholder = "ask:"
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	return hudModel{
		state:     state,
		fileMode:  fileMode,
		inputFile: inputFile,
		submitter: submitter,
		narrator:  narrator,
		fonts:     layout.NewFontState(22),
		measurer:  layout.NewCellMeasurer(),
		input:     ti,
	}
}

func (m hudModel) engine() *layout.Engine {
	return &layout.Engine{
		M:            m.measurer,
		FontSize:     m.fonts.Main,
		MetaFontSize: m.fonts.Main * 0.75,
	}
}

func (m hudModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(renderInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m hudModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Submit):
			return m.submitInput()

		case key.Matches(msg, keys.ZoomIn):
			m.fonts.Zoom(1)
			return m, nil

		case key.Matches(msg, keys.ZoomOut):
			m.fonts.Zoom(-1)
			return m, nil

		case key.Matches(msg, keys.ScrollUp):
			m.scroll(layout.WheelStepPx)
			return m, nil

		case key.Matches(msg, keys.ScrollDown):
			m.scroll(-layout.WheelStepPx)
			return m, nil

		case key.Matches(msg, keys.Speech):
			if m.narrator != nil {
				if m.narrator.Toggle() {
					m.status = "speech on"
				} else {
					m.status = "speech off"
				}
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(m.wheel.Step(120))
		case tea.MouseButtonWheelDown:
			m.scroll(m.wheel.Step(-120))
		case tea.MouseButtonLeft:
			if m.narrator != nil {
				m.narrator.Stop()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case fileChangedMsg:
		m.pollInputFile()
		return m, nil

	case submitDoneMsg:
		if msg.err != nil {
			m.status = "pub text error: " + msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tickMsg:
		if m.fileMode {
			m.pollInputFile()
		}
		if v := m.state.Version(); v != m.renderedVersion {
			m.snap = m.state.Snapshot()
			m.renderedVersion = v
			m.scroll(0)
			m.speakLatest()
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// scroll moves the log viewport by a pixel delta, re-deriving the scroll
// bound from a fresh layout before clamping. A zero delta just re-clamps,
// which the tick path uses after content updates. Scrollback only exists in
// live mode.
func (m *hudModel) scroll(deltaPx float64) {
	if m.fileMode {
		return
	}
	panelW, _ := m.panelPx()
	lay := m.engine().LayoutScrollback(m.snap.Scrollback, panelW-2*layout.Padding)
	m.totalPx = lay.TotalHeight
	m.scrollPx = layout.ClampScroll(m.scrollPx+deltaPx, m.totalPx, m.viewportPx())
}

func (m *hudModel) pollInputFile() {
	if m.inputFile == nil {
		return
	}
	if text, changed := m.inputFile.Poll(); changed {
		m.state.Publish(text)
	}
}

// speakLatest narrates the newest text once per distinct value.
func (m *hudModel) speakLatest() {
	if m.narrator == nil || !m.narrator.Enabled() {
		return
	}
	if m.snap.Latest == "" || m.snap.Latest == m.spokenText {
		return
	}
	m.spokenText = m.snap.Latest
	m.narrator.Speak(m.snap.Latest)
}

func (m hudModel) submitInput() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	m.input.SetValue("")
	if text == "" || m.submitter == nil {
		return m, nil
	}
	sub := m.submitter
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return submitDoneMsg{err: sub.Submit(ctx, text)}
	}
}
