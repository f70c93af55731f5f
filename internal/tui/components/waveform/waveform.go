// Package waveform provides a TUI component for the file overview bar.
package waveform

import (
	"strings"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/tui/style"
	"github.com/alkime/scope/pkg/collections"
	"github.com/alkime/scope/pkg/uictl"
)

// Block characters for amplitude visualization (8 levels, bottom to top).
// Index 0 = empty (space), 1-8 = increasing fill levels.
const blockChars = " ▁▂▃▄▅▆▇█"

// Model renders a static per-file peak overview with a playhead. The
// peaks come from a full decode pass at load time; only the playhead
// moves during playback.
type Model struct {
	peaks    []audio.Sample
	position float32
	width    int
	height   int
}

// New creates an overview model with no data.
func New(width, height int) Model {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return Model{width: width, height: height}
}

// SetData replaces the peak series, usually after loading a file.
// Each point carries the per-channel peak; the display uses the
// louder of the two.
func (m Model) SetData(peaks []audio.Sample) Model {
	m.peaks = peaks
	return m
}

// SetPosition moves the playhead to a fraction of the file in [0,1].
func (m Model) SetPosition(fraction float32) Model {
	m.position = uictl.Clamp(fraction, 0, 1)

	return m
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

// View renders the overview as block bars, highlighting the playhead
// column.
func (m Model) View() string {
	if len(m.peaks) == 0 {
		return m.renderEmpty()
	}

	levels := m.columnLevels()
	playhead := int(m.position * float32(m.width-1))
	runes := []rune(blockChars)

	var sb strings.Builder

	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}

		for col := 0; col < m.width; col++ {
			ch := string(runes[m.blockIndexForRow(levels[col], row)])

			if col == playhead {
				// The playhead column is always visible, even over
				// silence.
				if ch == " " && row == m.height-1 {
					ch = "▁"
				}
				sb.WriteString(style.Playhead.Render(ch))
			} else {
				sb.WriteString(style.Overview.Render(ch))
			}
		}
	}

	return sb.String()
}

// columnLevels reduces the peak series to one level per column in
// 0..height*8.
func (m Model) columnLevels() []int {
	levels := make([]int, m.width)
	maxLevel := m.height * 8

	buckets := collections.Chunks(m.peaks, max(1, len(m.peaks)/m.width))

	for col := 0; col < m.width; col++ {
		if col >= len(buckets) {
			continue
		}

		peak := collections.Reduce(buckets[col], float32(0), func(acc float32, p audio.Sample) float32 {
			if p.X > acc {
				acc = p.X
			}
			if p.Y > acc {
				acc = p.Y
			}

			return acc
		})

		levels[col] = int(uictl.Clamp(peak, 0, 1) * float32(maxLevel))
	}

	return levels
}

// blockIndexForRow returns the block character index (0-8) for a given
// column level at a row. Row 0 is the top.
func (m Model) blockIndexForRow(level, row int) int {
	baseLevel := (m.height - 1 - row) * 8

	fill := level - baseLevel
	if fill <= 0 {
		return 0
	}
	if fill >= 8 {
		return 8
	}

	return fill
}

// renderEmpty renders a baseline for when no file is loaded.
func (m Model) renderEmpty() string {
	var sb strings.Builder

	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}

		var rowSB strings.Builder

		for i := 0; i < m.width; i++ {
			if row == m.height-1 {
				rowSB.WriteRune('▁')
			} else {
				rowSB.WriteRune(' ')
			}
		}

		sb.WriteString(style.Muted.Render(rowSB.String()))
	}

	return sb.String()
}
