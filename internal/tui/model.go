// Package tui implements the terminal oscilloscope interface.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/player"
	"github.com/alkime/scope/internal/tui/components/scope"
	"github.com/alkime/scope/internal/tui/components/waveform"
	"github.com/alkime/scope/internal/tui/style"
)

// Mode selects which signal the scope displays.
type Mode int32

const (
	// ModeLive displays the capture device input.
	ModeLive Mode = iota
	// ModeFile displays file playback.
	ModeFile
)

func (m Mode) String() string {
	if m == ModeLive {
		return "LIVE"
	}

	return "FILE"
}

const (
	levelStep = 0.1
	seekStep  = 0.05

	minChromeRows = 7
)

// Config carries the pieces the model does not own.
type Config struct {
	Cancel    context.CancelFunc
	RecordDir string
}

// switchFeed reads from whichever buffer matches the current mode.
// The scope component holds it for the lifetime of the program while
// the mode flips underneath.
type switchFeed struct {
	live *audio.SampleBuffer
	file *audio.SampleBuffer
	mode *atomic.Int32
}

func (f *switchFeed) Read() []audio.Sample {
	if Mode(f.mode.Load()) == ModeLive {
		return f.live.Samples()
	}

	return f.file.Samples()
}

// Model is the root TUI model.
type Model struct {
	config   Config
	keys     KeyMap
	mode     *atomic.Int32
	capture  *audio.Capture
	player   *player.Player
	recorder *audio.Recorder

	scope    scope.Model
	overview waveform.Model
	progress progress.Model

	width  int
	height int
	status string
}

// New creates the root model. liveBuf and fileBuf are the
// visualization buffers fed by the capture and playback pipelines.
func New(config Config, capture *audio.Capture, p *player.Player, liveBuf, fileBuf *audio.SampleBuffer) Model {
	mode := &atomic.Int32{}
	if p.HasFile() {
		mode.Store(int32(ModeFile))
	}

	feed := &switchFeed{live: liveBuf, file: fileBuf, mode: mode}

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(72),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   config,
		keys:     DefaultKeyMap(),
		mode:     mode,
		capture:  capture,
		player:   p,
		scope:    scope.New(feed, 78, 16),
		overview: waveform.New(78, 2),
		progress: bar,
		width:    80,
		height:   24,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.scope.Init()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scope = m.scope.Resize(msg.Width-2, max(1, msg.Height-minChromeRows))
		m.overview = m.overview.Resize(msg.Width-2, 2)
		m.progress.Width = max(1, msg.Width-8)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scope.TickMsg:
		var cmd tea.Cmd
		m.scope, cmd = m.scope.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		bar, cmd := m.progress.Update(msg)
		m.progress = bar.(progress.Model) //nolint:forcetypeassert // progress.Model always returns progress.Model
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		m.shutdown(ctx)

		return m, tea.Quit

	case key.Matches(msg, m.keys.Mode):
		if m.Mode() == ModeLive {
			m.mode.Store(int32(ModeFile))
		} else {
			m.mode.Store(int32(ModeLive))
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.Mode() == ModeLive {
			if err := m.capture.Toggle(ctx); err != nil {
				m.status = err.Error()
			}
		} else {
			m.player.Toggle(ctx)
		}

	case key.Matches(msg, m.keys.Loop):
		if m.Mode() == ModeFile {
			m.player.SetLoop(!m.player.Loop())
		}

	case key.Matches(msg, m.keys.Record):
		m.toggleRecording(ctx)

	case key.Matches(msg, m.keys.LevelUp):
		m.adjustLevel(levelStep)

	case key.Matches(msg, m.keys.LevelDown):
		m.adjustLevel(-levelStep)

	case key.Matches(msg, m.keys.SeekBack):
		if m.Mode() == ModeFile {
			m.player.Seek(m.player.PositionFraction() - seekStep)
		}

	case key.Matches(msg, m.keys.SeekFwd):
		if m.Mode() == ModeFile {
			m.player.Seek(m.player.PositionFraction() + seekStep)
		}
	}

	return m, nil
}

// Mode returns the current display mode.
func (m Model) Mode() Mode {
	return Mode(m.mode.Load())
}

// adjustLevel nudges the input gain in live mode, playback volume in
// file mode.
func (m *Model) adjustLevel(delta float32) {
	if m.Mode() == ModeLive {
		m.capture.Gain().Add(delta, 0, 10)
	} else {
		m.player.Volume().Add(delta, 0, 2)
	}
}

func (m *Model) toggleRecording(ctx context.Context) {
	if m.Mode() != ModeLive {
		return
	}

	if m.recorder != nil && m.recorder.Recording() {
		if err := m.recorder.Stop(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Recording saved"
		}
		m.recorder = nil

		return
	}

	path := filepath.Join(m.config.RecordDir,
		fmt.Sprintf("scope-%s.mp3", time.Now().Format("20060102-150405")))

	rec := audio.NewRecorder(m.capture, path)
	if err := rec.Start(ctx); err != nil {
		m.status = err.Error()

		return
	}

	m.recorder = rec
	m.status = "Recording to " + path
}

// shutdown stops the pipelines before the program exits.
func (m *Model) shutdown(ctx context.Context) {
	if m.recorder != nil && m.recorder.Recording() {
		if err := m.recorder.Stop(); err != nil {
			m.status = err.Error()
		}
	}

	if m.capture.IsCapturing() {
		if err := m.capture.Stop(ctx); err != nil {
			m.status = err.Error()
		}
	}

	m.player.Stop(ctx)

	if m.config.Cancel != nil {
		m.config.Cancel()
	}
}

// View renders the full UI.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("scope"))
	sb.WriteString("  ")
	sb.WriteString(style.Subtitle.Render(m.Mode().String()))

	if m.recorder != nil && m.recorder.Recording() {
		sb.WriteString("  ")
		sb.WriteString(style.Recording.Render("● REC"))
	}

	sb.WriteString("\n\n")
	sb.WriteString(m.scope.View())
	sb.WriteString("\n")

	if m.Mode() == ModeFile {
		sb.WriteString(m.fileChrome())
	} else {
		sb.WriteString(m.liveChrome())
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpLine())

	return sb.String()
}

func (m Model) fileChrome() string {
	var sb strings.Builder

	overview := m.overview.
		SetData(m.player.Waveform()).
		SetPosition(m.player.PositionFraction())
	sb.WriteString(overview.View())
	sb.WriteString("\n")

	sb.WriteString(m.progress.ViewAs(float64(m.player.PositionFraction())))
	sb.WriteString("\n")

	sb.WriteString(style.Label.Render(m.player.Status()))

	if info := m.player.Info(); info != nil {
		sb.WriteString(style.Muted.Render(fmt.Sprintf(
			"  %s / %s", m.player.PositionDuration().Round(time.Second),
			info.Duration.Round(time.Second))))

		if m.player.Loop() {
			sb.WriteString(style.Subtitle.Render("  loop"))
		}
	}

	sb.WriteString(style.Muted.Render(fmt.Sprintf("  vol %.1f", m.player.Volume().Load())))

	if m.status != "" {
		sb.WriteString("  ")
		sb.WriteString(style.Error.Render(m.status))
	}

	return sb.String()
}

func (m Model) liveChrome() string {
	var sb strings.Builder

	sb.WriteString(style.Label.Render(m.capture.Status()))
	sb.WriteString(style.Muted.Render(fmt.Sprintf("  gain %.1f", m.capture.Gain().Load())))

	if m.status != "" {
		sb.WriteString("  ")
		sb.WriteString(style.Error.Render(m.status))
	}

	return sb.String()
}

func (m Model) helpLine() string {
	var parts []string

	for _, b := range m.keys.ShortHelp() {
		parts = append(parts,
			style.Key.Render(b.Help().Key)+" "+style.Help.Render(b.Help().Desc))
	}

	return strings.Join(parts, style.Help.Render(" • "))
}
