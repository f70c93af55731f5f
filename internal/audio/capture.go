package audio

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/alkime/scope/pkg/channels"
)

// Default capture configuration. Stereo S16 at 48kHz; miniaudio
// converts from whatever the hardware natively delivers.
const (
	DefaultSampleRate = 48_000
	DefaultChannels   = 2
)

// CaptureConfig configures the live input engine.
type CaptureConfig struct {
	Format     malgo.FormatType
	Channels   int
	SampleRate int
}

// WithDefaults returns a config with default values applied to zero fields.
func (c CaptureConfig) WithDefaults() CaptureConfig {
	if c.Format == malgo.FormatUnknown {
		c.Format = malgo.FormatS16
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	return c
}

// Capture owns a live input device and feeds normalized samples into
// the shared visualization buffer.
//
// The device callback is the real-time path: it checks an atomic
// capturing flag (the cheap abort when stopped), reads gain from an
// atomic, converts the frame block, and pushes. It never locks and
// never blocks. Everything else (start, stop, device selection) runs
// on the control thread.
type Capture struct {
	conf   CaptureConfig
	buffer *SampleBuffer
	gain   *Level

	capturing atomic.Bool
	tap       atomic.Pointer[tapSink]

	mu       sync.Mutex
	dev      Device
	devices  []Info
	selected int
	status   string
}

// tapSink is an optional side channel receiving converted S16LE bytes,
// used by the MP3 recorder. Sends are non-blocking; a slow receiver
// loses packets rather than stalling the audio callback. inflight
// counts callbacks currently inside a send so detaching can wait for
// them before the channel is closed.
type tapSink struct {
	ch       chan<- []byte
	inflight atomic.Int32
}

// NewCapture creates the capture engine and enumerates input devices.
// Enumeration failure is not fatal: the engine starts with an empty
// device list and a status message.
func NewCapture(ctx context.Context, buffer *SampleBuffer, conf CaptureConfig) *Capture {
	c := &Capture{
		conf:   conf.WithDefaults(),
		buffer: buffer,
		gain:   NewLevel(1.0),
	}

	devices, err := EnumerateDevices(ctx, malgo.Capture)
	if err != nil {
		slog.Warn("failed to enumerate capture devices", "error", err)
		c.status = fmt.Sprintf("Error: %v", err)

		return c
	}

	c.devices = devices
	if len(devices) > 0 {
		c.status = fmt.Sprintf("Found %d input device(s)", len(devices))
	} else {
		c.status = "No input devices found"
	}

	return c
}

// Gain returns the shared gain level. The UI stores into it; the
// capture callback observes it on every frame block.
func (c *Capture) Gain() *Level {
	return c.gain
}

// IsCapturing reports whether the callback is currently pushing samples.
func (c *Capture) IsCapturing() bool {
	return c.capturing.Load()
}

// Status returns the last status message for display.
func (c *Capture) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// Devices returns the enumerated input devices.
func (c *Capture) Devices() []Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.devices
}

// Select picks the input device to open on the next Start.
func (c *Capture) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.devices) {
		return fmt.Errorf("device index %d out of range", index)
	}

	c.selected = index

	return nil
}

// SetTap installs a side channel receiving converted S16LE stereo
// bytes while capturing.
func (c *Capture) SetTap(ch chan<- []byte) {
	c.tap.Store(&tapSink{ch: ch}) //nolint:exhaustruct // inflight starts at zero
}

// DetachTap removes the tap and returns once no audio callback is
// still inside a send, so the caller may close the channel safely.
func (c *Capture) DetachTap() {
	sink := c.tap.Swap(nil)
	if sink == nil {
		return
	}

	for sink.inflight.Load() != 0 {
		runtime.Gosched()
	}
}

// Start opens the selected device and begins pushing samples. Any
// device error is reported through the status text and leaves the
// engine stopped; none are fatal.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev != nil {
		// already started
		return nil
	}

	conf := &DeviceConfig{
		Format:     c.conf.Format,
		Channels:   c.conf.Channels,
		SampleRate: c.conf.SampleRate,
	}

	name := "default"
	if c.selected < len(c.devices) && len(c.devices) > 0 {
		conf.ID = &c.devices[c.selected].ID
		name = c.devices[c.selected].Name
	}

	dev := NewCaptureDevice(conf, c.onData)
	if err := dev.Start(ctx); err != nil {
		c.status = fmt.Sprintf("Error: %v", err)
		dev.Dealloc(ctx)

		return fmt.Errorf("failed to start capture: %w", err)
	}

	c.dev = dev
	c.capturing.Store(true)
	c.status = fmt.Sprintf("Capturing: %s", name)
	slog.Info("capture started", "device", name,
		"sampleRate", c.conf.SampleRate, "channels", c.conf.Channels)

	return nil
}

// Stop clears the capturing flag and tears down the device stream.
// No thread join is needed: the callback checks the flag on every
// invocation rather than running a dedicated loop.
func (c *Capture) Stop(ctx context.Context) error {
	c.capturing.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil
	}

	err := c.dev.Stop(ctx)
	c.dev.Dealloc(ctx)
	c.dev = nil
	c.status = "Stopped"
	slog.Info("capture stopped")

	if err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	return nil
}

// Toggle starts or stops capture depending on the current state.
func (c *Capture) Toggle(ctx context.Context) error {
	if c.IsCapturing() {
		return c.Stop(ctx)
	}

	return c.Start(ctx)
}

// onData runs on the OS audio thread for every delivered frame block.
func (c *Capture) onData(_, input []byte, _ uint32) {
	if !c.capturing.Load() {
		return
	}

	gain := c.gain.Load()

	var samples []Sample
	switch c.conf.Format { //nolint:exhaustive // Converter supports two encodings
	case malgo.FormatS16:
		samples = SamplesFromS16LE(input, c.conf.Channels, gain)
	case malgo.FormatF32:
		samples = SamplesFromF32LE(input, c.conf.Channels, gain)
	default:
		return
	}

	c.buffer.TryPushMany(samples)

	if sink := c.tap.Load(); sink != nil {
		sink.inflight.Add(1)
		// Re-check after announcing: a concurrent DetachTap only
		// returns once inflight drops back to zero, and any callback
		// entering after the swap sees the nil tap here.
		if c.tap.Load() == sink {
			// Recorder behind or channel closing: drop rather than
			// block the audio thread.
			_ = channels.SendNonBlock(sink.ch, S16LEFromSamples(samples))
		}
		sink.inflight.Add(-1)
	}
}
