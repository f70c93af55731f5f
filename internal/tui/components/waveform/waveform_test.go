package waveform_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/tui/components/waveform"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestWaveform_EmptyView(t *testing.T) {
	t.Parallel()

	m := waveform.New(5, 1)

	view := m.View()
	assert.Contains(t, view, "▁▁▁▁▁")
}

func TestWaveform_SilentFile(t *testing.T) {
	t.Parallel()

	m := waveform.New(5, 1).SetData(make([]audio.Sample, 10))

	view := m.View()
	// Silence renders as spaces outside the playhead column.
	assert.Contains(t, view, "    ")
}

func TestWaveform_FullScale(t *testing.T) {
	t.Parallel()

	peaks := []audio.Sample{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	m := waveform.New(3, 1).SetData(peaks)

	view := m.View()
	assert.Contains(t, view, "███")
}

func TestWaveform_UsesLouderChannel(t *testing.T) {
	t.Parallel()

	// Right channel at full scale dominates a quiet left channel.
	peaks := []audio.Sample{{X: 0.1, Y: 1}, {X: 0.1, Y: 1}}
	m := waveform.New(2, 1).SetData(peaks)

	view := m.View()
	assert.Contains(t, view, "█")
}

func TestWaveform_VaryingAmplitude(t *testing.T) {
	t.Parallel()

	peaks := []audio.Sample{{X: 0}, {X: 0.5}, {X: 1}, {X: 0.5}, {X: 0}}
	m := waveform.New(5, 1).SetData(peaks)

	view := []rune(m.View())
	require.GreaterOrEqual(t, len(view), 5)
	assert.NotEqual(t, view[0], view[2], "middle should be different from edges")
}

func TestWaveform_PlayheadVisibleOverSilence(t *testing.T) {
	t.Parallel()

	m := waveform.New(10, 1).
		SetData(make([]audio.Sample, 10)).
		SetPosition(0.5)

	// The playhead column draws a baseline marker even with no signal.
	assert.Contains(t, m.View(), "▁")
}

func TestWaveform_PositionClamps(t *testing.T) {
	t.Parallel()

	m := waveform.New(4, 1).SetData([]audio.Sample{{X: 1}})

	// Out-of-range fractions clamp instead of panicking.
	_ = m.SetPosition(-0.5).View()
	_ = m.SetPosition(1.5).View()
}

func TestWaveform_MultiRow(t *testing.T) {
	t.Parallel()

	peaks := []audio.Sample{{X: 1}, {X: 1}}
	m := waveform.New(2, 3).SetData(peaks)

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 3)
	// Full scale fills every row.
	for _, line := range lines {
		assert.Contains(t, line, "██")
	}
}
