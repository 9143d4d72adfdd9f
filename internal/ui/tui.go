// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the dev sensor console
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/nightchorus/internal/sensors"
)

// Step is how far one key press moves a reading.
const Step = sensors.Step

// SensorControl is the simulated sensor the console drives.
type SensorControl interface {
	ReadTemperature() float64
	ReadLight() float64
	AdjustTemperature(delta float64) float64
	AdjustLight(delta float64) float64
}

// NewModel creates a new TUI model
func NewModel(ctrl SensorControl) Model {
	m := Model{sensors: ctrl, action: "starting"}
	if ctrl != nil {
		m.temperature = ctrl.ReadTemperature()
		m.light = ctrl.ReadLight()
	}
	return m
}

// NewProgram builds the console program; feed it StatusMsg values with Send.
func NewProgram(ctx context.Context, ctrl SensorControl) *tea.Program {
	return tea.NewProgram(NewModel(ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
}
