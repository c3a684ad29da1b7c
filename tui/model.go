package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-haptics/debug"
	"go-haptics/haptics"
	"go-haptics/midi"
	"go-haptics/scheduler"
	"go-haptics/theme"
	"go-haptics/timeline"
	"go-haptics/widgets"
)

var keyHelp = []widgets.KeySection{
	{Title: "Effects", Keys: []widgets.KeyBinding{
		{Key: "j/k", Desc: "select effect"},
		{Key: "h/l", Desc: "select duration"},
		{Key: "enter", Desc: "play effect"},
		{Key: "v", Desc: "plain vibrate"},
	}},
	{Title: "Recording", Keys: []widgets.KeyBinding{
		{Key: "r", Desc: "start recording"},
		{Key: "space", Desc: "tap (or use controller pads)"},
		{Key: "f", Desc: "finish"},
		{Key: "p", Desc: "play effect over recording"},
	}},
	{Keys: []widgets.KeyBinding{
		{Key: "s", Desc: "stop"},
		{Key: "q", Desc: "quit"},
	}},
}

type Model struct {
	Engine    *haptics.Engine
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme

	effects   []string
	cursor    int
	durations []string
	durIdx    int
	recorded  timeline.List
	playing   int
	status    string
	devices   map[string]midi.ControllerType
	quitting  bool
}

// PlayDoneMsg is sent when a playback started from the UI finishes.
type PlayDoneMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(engine *haptics.Engine, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	m := Model{
		Engine:    engine,
		DeviceMgr: deviceMgr,
		Theme:     th,
		effects:   engine.Effects(),
		durations: engine.DurationNames(),
		devices:   make(map[string]midi.ControllerType),
	}

	// Restore the last selection
	ui := engine.Config().UI
	for i, name := range m.effects {
		if name == ui.LastEffect {
			m.cursor = i
		}
	}
	for i, name := range m.durations {
		if d, err := engine.Duration(name); err == nil && d == ui.LastDuration {
			m.durIdx = i
		}
	}
	return m
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func waitFor(pb *scheduler.Playback) tea.Cmd {
	return func() tea.Msg {
		<-pb.Done()
		return PlayDoneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForDevices(m.DeviceMgr)
}

// Effect returns the selected effect name.
func (m Model) Effect() string {
	if len(m.effects) == 0 {
		return ""
	}
	return m.effects[m.cursor]
}

// Duration returns the selected duration.
func (m Model) Duration() time.Duration {
	if len(m.durations) == 0 {
		return 0
	}
	d, _ := m.Engine.Duration(m.durations[m.durIdx])
	return d
}

// Status returns the last status line.
func (m Model) Status() string { return m.status }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case PlayDoneMsg:
		if m.playing > 0 {
			m.playing--
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.devices[event.ID] = event.Controller.Type()
		} else if event.Type == midi.DeviceDisconnected {
			delete(m.devices, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		m.saveSelection()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.effects)-1 {
			m.cursor++
		}

	case "left", "h":
		if m.durIdx > 0 {
			m.durIdx--
		}

	case "right", "l":
		if m.durIdx < len(m.durations)-1 {
			m.durIdx++
		}

	case "enter":
		pb, err := m.Engine.Play(m.Effect(), timeline.Total(m.Duration()))
		return m.started(pb, err, fmt.Sprintf("%s %v", m.Effect(), m.Duration()))

	case "v":
		pb, _, err := m.Engine.Vibrate(timeline.Total(m.Duration()))
		return m.started(pb, err, fmt.Sprintf("vibrate %v", m.Duration()))

	case "r":
		m.Engine.Record()
		m.recorded = nil
		m.status = "recording: tap space or pads, f to finish"

	case " ", "space":
		if m.Engine.Recording() {
			m.Engine.Tap()
		}

	case "f":
		if !m.Engine.Recording() {
			m.status = "not recording"
			break
		}
		m.recorded = m.Engine.Finish()
		m.status = fmt.Sprintf("recorded %d pulses", len(m.recorded))

	case "p":
		if len(m.recorded) == 0 {
			m.status = "nothing recorded"
			break
		}
		p, _ := m.Engine.Effect(m.Effect())
		pb, err := p.Play(timeline.Timeline(m.recorded...))
		return m.started(pb, err, fmt.Sprintf("%s over recording", m.Effect()))

	case "s":
		m.Engine.Stop()
		m.playing = 0
		m.status = "stopped"
	}

	return m, nil
}

func (m Model) started(pb *scheduler.Playback, err error, what string) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.playing++
	m.status = what
	if !pb.Actuating() {
		m.status += " (no actuator)"
	}
	return m, waitFor(pb)
}

func (m Model) saveSelection() {
	cfg := m.Engine.Config()
	cfg.UI.LastEffect = m.Effect()
	cfg.UI.LastDuration = m.Duration()
	if err := cfg.Save(); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)

	// Header with actuator status
	actuator := m.Engine.DriverName()
	if actuator == "" {
		actuator = "none"
	}
	playState := "IDLE"
	if m.playing > 0 {
		playState = string(m.Theme.Symbols.Playing) + " PLAY"
	}
	if m.Engine.Recording() {
		playState = string(m.Theme.Symbols.Recorded) + " REC"
	}
	header := headerStyle.Render(fmt.Sprintf("go-haptics  %s  actuator:%s", playState, actuator))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	sym := m.Theme.Symbols.Empty
	if m.Engine.Enabled() {
		sym = m.Theme.Symbols.Solid
	}
	out.WriteString(widgets.RenderStatus(sym, "actuator", m.Theme.Success()))
	for id, typ := range m.devices {
		out.WriteString("  ")
		out.WriteString(widgets.RenderPad(m.Theme.RGB(theme.RoleActive)))
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Active()).Render(fmt.Sprintf(" %s (%s)", id, typ)))
	}
	out.WriteString("\n\n")

	// Effect list
	for i, name := range m.effects {
		prefix := "  "
		style := fgStyle
		if i == m.cursor {
			prefix = string(m.Theme.Symbols.Cursor) + " "
			style = cursorStyle
		}
		out.WriteString(style.Render(prefix + name))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(fgStyle.Render(fmt.Sprintf("duration: %s (%v)", m.durations[m.durIdx], m.Duration())))
	out.WriteString("\n")

	if len(m.recorded) > 0 {
		out.WriteString(widgets.RenderStatus(m.Theme.Symbols.Recorded, fmt.Sprintf("recording: %v", m.recorded), m.Theme.Warning()))
		out.WriteString("\n")
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
		out.WriteString("\n")
	}

	// Key help
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))

	return out.String()
}
