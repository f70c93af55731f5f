package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/malgo"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/config"
	"github.com/alkime/scope/internal/decode"
	"github.com/alkime/scope/internal/logger"
	"github.com/alkime/scope/internal/player"
	"github.com/alkime/scope/internal/settings"
	"github.com/alkime/scope/internal/tui"
)

// CLI defines the scope command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the terminal oscilloscope"`

	// Subcommands
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Info    InfoCmd    `cmd:"" help:"Print audio file metadata"`
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	File      string `arg:"" optional:"" help:"Audio file to load (mp3, wav, ogg)"`
	RecordDir string `flag:"" default:"." help:"Directory for MP3 recordings"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefs, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		slog.Warn("failed to load settings, using defaults", "error", err)
		prefs = settings.Defaults()
	}

	liveBuf := audio.NewSampleBuffer(cfg.BufferSize)
	fileBuf := audio.NewSampleBuffer(cfg.BufferSize)

	capture := audio.NewCapture(ctx, liveBuf, audio.CaptureConfig{})
	capture.Gain().Store(prefs.Gain)

	p := player.New(fileBuf)
	p.Volume().Store(prefs.Volume)
	p.SetLoop(prefs.Loop)

	path := c.File
	if path == "" {
		path = prefs.LastFile
	}
	if path != "" {
		if err := p.Load(ctx, path); err != nil {
			slog.Warn("failed to load file", "path", path, "error", err)
		}
	}

	model := tui.New(tui.Config{
		Cancel:    cancel,
		RecordDir: c.RecordDir,
	}, capture, p, liveBuf, fileBuf)

	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	// Persist the session's knobs for next time.
	prefs.Gain = capture.Gain().Load()
	prefs.Volume = p.Volume().Load()
	prefs.Loop = p.Loop()
	if info := p.Info(); info != nil {
		prefs.LastFile = info.Path
	}

	if err := settings.Save(cfg.SettingsPath, prefs); err != nil {
		slog.Warn("failed to save settings", "error", err)
	}

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run(_ *config.Config) error {
	ctx := context.Background()

	for _, devType := range []struct {
		kind string
		t    malgo.DeviceType
	}{
		{"capture", malgo.Capture},
		{"playback", malgo.Playback},
	} {
		devices, err := audio.EnumerateDevices(ctx, devType.t)
		if err != nil {
			return fmt.Errorf("failed to enumerate %s devices: %w", devType.kind, err)
		}

		for _, dev := range devices {
			fmt.Printf("%s: %s (default: %v)\n", devType.kind, dev.Name, dev.IsDefault)
			for _, f := range dev.Formats {
				fmt.Printf("  %s\n", f)
			}
		}
	}

	return nil
}

// InfoCmd prints metadata for an audio file without playing it.
type InfoCmd struct {
	File string `arg:"" required:"" help:"Path to audio file"`
}

// Run executes the info command.
func (c *InfoCmd) Run(_ *config.Config) error {
	src, err := decode.Default().Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer src.Close()

	fmt.Printf("file:        %s\n", c.File)
	fmt.Printf("format:      %s\n", src.Format())
	fmt.Printf("sample rate: %d Hz\n", src.SampleRate())
	fmt.Printf("channels:    %d\n", src.Channels())

	if frames := src.Frames(); frames > 0 {
		fmt.Printf("frames:      %d\n", frames)
		fmt.Printf("duration:    %s\n", player.FrameDuration(frames, src.SampleRate()))
	}

	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; logs go to the configured file or
	// nowhere at all.
	_, closeLogs := logger.SetupLogger(cfg)
	defer func() {
		if err := closeLogs(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli, kong.Bind(cfg))
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
