package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/term"

	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/host"
	"github.com/justyntemme/vst3host/pkg/param"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	maxLogLines = 8
	meterWidth  = 30
	nudge       = 0.05
)

type modelState int

const (
	stateBrowse modelState = iota
	stateInput
)

type interactiveModel struct {
	err        error
	plugin     *host.Plugin
	session    *session
	opts       []host.Option
	path       string
	sampleRate float64
	blockSize  int
	params     []param.Descriptor
	log        []string
	input      textinput.Model
	peakDB     float64
	selected   int
	playing    bool
	state      modelState
}

type loadedMsg struct {
	err    error
	plugin *host.Plugin
}

type tickMsg time.Time

func newInteractiveModel(path string, sampleRate float64, blockSize int, opts []host.Option) *interactiveModel {
	return &interactiveModel{
		opts:       opts,
		path:       path,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		peakDB:     -120,
		state:      stateBrowse,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadPlugin
}

func (m *interactiveModel) loadPlugin() tea.Msg {
	p, err := host.Load(m.path, m.opts...)
	return loadedMsg{plugin: p, err: err}
}

func (m *interactiveModel) blockInterval() time.Duration {
	return time.Duration(float64(m.blockSize) / m.session.details.SampleRate * float64(time.Second))
}

func (m *interactiveModel) tick() tea.Cmd {
	return tea.Tick(m.blockInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInput {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.shutdown()
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.params)-1 {
				m.selected++
			}

		case "left", "h":
			m.adjust(-1)

		case "right", "l":
			m.adjust(1)

		case "enter":
			if m.plugin != nil && len(m.params) > 0 {
				m.input = textinput.New()
				m.input.Placeholder = "0.0 - 1.0"
				m.input.Prompt = m.params[m.selected].Name + ": "
				m.input.Width = 20
				m.input.Focus()
				m.state = stateInput
			}

		case " ":
			return m, m.togglePlaying()

		case "n":
			if m.plugin != nil {
				key := uint8(midi.C(5))
				m.plugin.QueueEvents(
					event.NoteOn(key, 100, 0),
					event.NoteOff(key, int32(m.blockSize-1)),
				)
				m.addLog("note middle C")
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.plugin = msg.plugin
		m.session = newSession(m.plugin, m.sampleRate, m.blockSize)
		m.refresh()

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		res, err := m.session.render(nil)
		if err != nil {
			m.addLog(errorStyle.Render(err.Error()))
		} else {
			m.peakDB = max(res.analysis.PeakDB(), -120)
			for _, e := range res.events {
				if _, ok := e.(event.ParameterUpdate); ok {
					continue
				}
				m.addLog(e.String())
			}
		}
		m.refresh()
		return m, m.tick()
	}

	return m, nil
}

func (m *interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		return m, nil

	case "enter":
		m.state = stateBrowse
		v, err := strconv.ParseFloat(strings.TrimSpace(m.input.Value()), 64)
		if err != nil {
			m.addLog(errorStyle.Render(fmt.Sprintf("invalid value %q", m.input.Value())))
			return m, nil
		}
		m.set(m.params[m.selected].ID, v)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) togglePlaying() tea.Cmd {
	if m.plugin == nil {
		return nil
	}
	if err := m.plugin.SetProcessing(!m.playing); err != nil {
		m.addLog(errorStyle.Render(err.Error()))
		return nil
	}
	m.playing = !m.playing
	if m.playing {
		m.addLog("transport playing")
		return m.tick()
	}
	m.addLog("transport stopped")
	return nil
}

// adjust nudges the selected parameter one step, or by a fixed fraction for
// continuous parameters.
func (m *interactiveModel) adjust(dir float64) {
	if m.plugin == nil || len(m.params) == 0 {
		return
	}
	d := m.params[m.selected]
	if d.Flags.IsReadOnly() {
		return
	}
	m.set(d.ID, min(max(d.Value+dir*nudge, 0), 1))
}

func (m *interactiveModel) set(id uint32, v float64) {
	m.plugin.SetParameterFromUI(id, v)
	// The processor picks the value up on the next block; the controller is
	// updated now so the table reflects it while stopped.
	if err := m.plugin.SetParameterInController(id, v); err != nil {
		m.addLog(errorStyle.Render(err.Error()))
	}
	m.refresh()
}

func (m *interactiveModel) refresh() {
	m.params = m.params[:0]
	for _, d := range m.plugin.Parameters() {
		if !d.Flags.IsHidden() {
			m.params = append(m.params, d)
		}
	}
	if m.selected >= len(m.params) {
		m.selected = max(len(m.params)-1, 0)
	}
}

func (m *interactiveModel) addLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *interactiveModel) shutdown() {
	if m.plugin != nil {
		m.plugin.Destroy()
		m.plugin = nil
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.plugin == nil {
		return "Loading plugin..."
	}

	var b strings.Builder

	d := m.plugin.Descriptor()
	b.WriteString(titleStyle.Render(d.Name))
	b.WriteString(" ")
	b.WriteString(d.Vendor + " " + d.Version + "  " + m.plugin.Lifecycle().String())
	b.WriteString("\n\n")

	for i, p := range m.params {
		name := fmt.Sprintf("%-16s", p.Name)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + name + " " + p.Formatted))
		} else {
			b.WriteString("  " + nameStyle.Render(name) + " " + valueStyle.Render(p.Formatted))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(meterStyle.Render(meter(m.peakDB)))
	b.WriteString(fmt.Sprintf(" %6.1f dBFS\n\n", m.peakDB))

	if m.state == stateInput {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	for _, line := range m.log {
		b.WriteString(helpStyle.Render("  " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateInput {
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • ←/→ adjust • enter set • space play/stop • n note • q quit"))
	}

	return b.String()
}

// meter draws a bar from -60 dBFS to 0 dBFS.
func meter(db float64) string {
	filled := int(min(max((db+60)/60, 0), 1) * meterWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", meterWidth-filled) + "]"
}

func runInteractive(path string, sampleRate float64, blockSize int, opts ...host.Option) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	m := newInteractiveModel(path, sampleRate, blockSize, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.shutdown()
	return err
}
