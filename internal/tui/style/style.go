// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// UI styles using lipgloss.
// These are package-level for convenience; lipgloss styles are value types
// and safe for concurrent use.
//
// Variable names intentionally omit "Style" suffix since they're accessed
// via the style package (e.g., style.Title reads better than style.TitleStyle).
var (
	// Title is used for the application header.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Subtitle is used for secondary text.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Trace is used for the oscilloscope trace.
	Trace = lipgloss.NewStyle().
		Foreground(lipgloss.Color("48"))

	// Overview is used for the file overview waveform.
	Overview = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	// Playhead marks the current position inside the overview.
	Playhead = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	// Recording is used for the live recording indicator.
	Recording = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Error is used for error messages.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Key is used for highlighting keyboard keys.
	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	// Label is used for inline labels (e.g., "Volume:", "Gain:").
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Muted is used for de-emphasized text (e.g., file paths).
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)
