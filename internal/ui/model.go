// ABOUTME: Bubbletea model for the dev sensor console
// ABOUTME: Shows controller decisions and nudges simulated sensor readings
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/nightchorus/internal/controller"
)

// Model represents the TUI state
type Model struct {
	sensors SensorControl

	// Readings
	temperature float64
	light       float64

	// Decision
	species      string
	speedFactor  float64
	action       string
	playing      bool
	renderedPath string
	lastErr      string
	updated      time.Time

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderReadings())
	b.WriteString(m.renderDecision())
	if m.showDebug {
		b.WriteString(m.renderDebug())
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	status := "Silent"
	if m.playing {
		status = "Playing"
	}
	return fmt.Sprintf(`┌─ Nightchorus Dev Console ────────────────────────────┐
│ Status: %-44s │
├──────────────────────────────────────────────────────┤
`, status)
}

func (m Model) renderReadings() string {
	return fmt.Sprintf("│ Temperature: %6.1f°F%-32s │\n"+
		"│ Light:       %6.1f   [%s]%-9s │\n",
		m.temperature, "",
		m.light, renderBar(int(m.light), 100, 20), "")
}

func (m Model) renderDecision() string {
	species := m.species
	if species == "" {
		species = "-"
	}
	s := "├──────────────────────────────────────────────────────┤\n"
	s += fmt.Sprintf("│ Species:     %-39s │\n", truncate(species, 39))
	s += fmt.Sprintf("│ Speed:       x%-38.3f │\n", m.speedFactor)
	s += fmt.Sprintf("│ Last action: %-39s │\n", truncate(m.action, 39))
	if m.lastErr != "" {
		s += fmt.Sprintf("│ Error:       %-39s │\n", truncate(m.lastErr, 39))
	}
	return s
}

func (m Model) renderDebug() string {
	updated := "-"
	if !m.updated.IsZero() {
		updated = m.updated.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Rendering: %-39s │
│   Updated:   %-39s │
`, truncate(m.renderedPath, 39), updated)
}

func (m Model) renderHelp() string {
	return `│ ↑/↓:Temp  ←/→:Light  d:Debug  q:Quit                 │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up":
		m.adjustTemperature(Step)
	case "down":
		m.adjustTemperature(-Step)
	case "right":
		m.adjustLight(Step)
	case "left":
		m.adjustLight(-Step)
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m *Model) adjustTemperature(delta float64) {
	if m.sensors == nil {
		m.temperature += delta
		return
	}
	m.temperature = m.sensors.AdjustTemperature(delta)
}

func (m *Model) adjustLight(delta float64) {
	if m.sensors == nil {
		m.light += delta
		return
	}
	m.light = m.sensors.AdjustLight(delta)
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.temperature = msg.Temperature
	m.light = msg.Light
	m.species = msg.Species
	m.action = msg.Action
	m.playing = msg.Playing
	m.updated = msg.Time
	if msg.SpeedFactor != 0 {
		m.speedFactor = msg.SpeedFactor
	}
	if msg.RenderedPath != "" {
		m.renderedPath = msg.RenderedPath
	}
	m.lastErr = ""
	if msg.Err != nil {
		m.lastErr = msg.Err.Error()
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Time         time.Time
	Temperature  float64
	Light        float64
	Species      string
	SpeedFactor  float64
	Action       string
	Playing      bool
	RenderedPath string
	Err          error
}

// NewStatusMsg converts a controller status for the console.
func NewStatusMsg(st controller.Status) StatusMsg {
	return StatusMsg{
		Time:         st.Time,
		Temperature:  st.Temperature,
		Light:        st.Light,
		Species:      st.Species,
		SpeedFactor:  st.SpeedFactor,
		Action:       string(st.Action),
		Playing:      st.Playing,
		RenderedPath: st.State.RenderedPath,
		Err:          st.Err,
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
