// Package scope provides a TUI component for XY oscilloscope display.
package scope

import (
	"strings"
	"time"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/tui/style"
	"github.com/alkime/scope/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// Braille cells pack a 2x4 dot grid per character, giving the trace
// four times the vertical and twice the horizontal resolution of the
// character grid.
const brailleBase = 0x2800

// Dot bit offsets for the braille pattern, indexed [column][row].
var brailleDots = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// TickMsg triggers a scope redraw.
type TickMsg struct{}

// Model displays stereo samples as an XY trace: the left channel
// drives the horizontal axis, the right channel the vertical. A mono
// source, mirrored onto both channels, collapses to the diagonal.
type Model struct {
	feed   uictl.Feed[audio.Sample]
	width  int // Display width in characters
	height int // Display height in rows
}

// New creates a new scope model reading from feed.
func New(feed uictl.Feed[audio.Sample], width, height int) Model {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return Model{
		feed:   feed,
		width:  width,
		height: height,
	}
}

// Init returns the initial tick command.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles tick messages for animation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

// Resize changes the display dimensions.
func (m Model) Resize(width, height int) Model {
	if width >= 1 {
		m.width = width
	}
	if height >= 1 {
		m.height = height
	}

	return m
}

// View renders the trace.
func (m Model) View() string {
	if m.feed == nil {
		return m.renderEmpty()
	}

	samples := m.feed.Read()
	if len(samples) == 0 {
		return m.renderEmpty()
	}

	return m.renderTrace(samples)
}

// tick schedules the next redraw at ~30 FPS.
func (m Model) tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// renderTrace plots each sample into the dot grid and converts the
// grid to braille characters row by row.
func (m Model) renderTrace(samples []audio.Sample) string {
	cols := m.width * 2
	rows := m.height * 4

	grid := make([]rune, m.width*m.height)

	for _, s := range samples {
		x := int((s.X + 1) / 2 * float32(cols-1))
		y := int((1 - s.Y) / 2 * float32(rows-1))

		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue // clipped
		}

		cell := (y/4)*m.width + x/2
		grid[cell] |= brailleDots[x%2][y%4]
	}

	var sb strings.Builder

	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}

		var rowSB strings.Builder

		for col := 0; col < m.width; col++ {
			dots := grid[row*m.width+col]
			if dots == 0 {
				rowSB.WriteRune(' ')
			} else {
				rowSB.WriteRune(brailleBase + dots)
			}
		}

		sb.WriteString(style.Trace.Render(rowSB.String()))
	}

	return sb.String()
}

// renderEmpty renders a centered flat line for when there is no signal.
func (m Model) renderEmpty() string {
	var sb strings.Builder

	mid := m.height / 2

	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}

		var rowSB strings.Builder

		for i := 0; i < m.width; i++ {
			if row == mid {
				rowSB.WriteRune('─')
			} else {
				rowSB.WriteRune(' ')
			}
		}

		sb.WriteString(style.Muted.Render(rowSB.String()))
	}

	return sb.String()
}
