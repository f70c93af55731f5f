package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/decode"
	"github.com/alkime/scope/pkg/uictl"
)

const (
	// defaultBatchFrames is the number of frames decoded per loop
	// iteration ("packet"). Volume changes apply within one batch.
	defaultBatchFrames = 1024

	// pausePoll is the decode goroutine's cooperative wait interval
	// while paused. Deliberately a plain sleep-and-recheck: this
	// thread is not real-time, and a poll keeps it free of blocking
	// primitives that could entangle it with the control thread.
	pausePoll = 10 * time.Millisecond
)

// Player is the file playback engine. Control methods run on the UI
// thread; decoding runs on a dedicated goroutine; the output device
// callback, when attached, runs on the OS audio thread. Cross-thread
// state uses atomics and the lock-free rings; the state machine itself
// sits behind a mutex because it is touched infrequently and never
// from a real-time path.
type Player struct {
	buffer      *audio.SampleBuffer
	registry    *decode.Registry
	withOutput  bool
	batchFrames int

	volume *audio.Level
	speed  *audio.Level
	loop   atomic.Bool

	position atomic.Int64 // current frame; written by the decode goroutine
	seekReq  atomic.Int64 // pending seek target frame; -1 when none
	running  atomic.Bool

	mu          sync.Mutex
	state       State
	info        *FileInfo
	waveform    []audio.Sample
	status      string
	totalFrames int64
	sampleRate  int
	done        chan struct{}
	out         *output
}

// Option configures a Player.
type Option func(*Player)

// WithRegistry swaps the decode registry, letting tests register
// synthetic decoders.
func WithRegistry(r *decode.Registry) Option {
	return func(p *Player) { p.registry = r }
}

// WithOutput controls whether Play opens a real audio output device.
// Without one, playback is visualization-only and paced by the clock.
func WithOutput(enabled bool) Option {
	return func(p *Player) { p.withOutput = enabled }
}

// WithBatchFrames overrides the decode batch size.
func WithBatchFrames(n int) Option {
	return func(p *Player) {
		if n > 0 {
			p.batchFrames = n
		}
	}
}

// New creates a player pushing visualization samples into buffer.
func New(buffer *audio.SampleBuffer, opts ...Option) *Player {
	p := &Player{
		buffer:      buffer,
		registry:    decode.Default(),
		withOutput:  true,
		batchFrames: defaultBatchFrames,
		volume:      audio.NewLevel(1.0),
		speed:       audio.NewLevel(1.0),
		state:       Stopped,
		status:      "No file loaded",
		sampleRate:  audio.DefaultSampleRate,
	}
	p.seekReq.Store(-1)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Volume returns the shared volume level. Stores publish immediately;
// the decode goroutine observes the latest value each batch.
func (p *Player) Volume() *audio.Level {
	return p.volume
}

// Speed returns the playback speed multiplier. It only scales the
// fixed-rate pacing of visualization-only playback; no resampling.
func (p *Player) Speed() *audio.Level {
	return p.speed
}

// Loop reports whether playback restarts at end-of-stream.
func (p *Player) Loop() bool {
	return p.loop.Load()
}

// SetLoop sets the loop flag.
func (p *Player) SetLoop(on bool) {
	p.loop.Store(on)
}

// Status returns the last status message for display.
func (p *Player) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

// Info returns the loaded file's metadata, or nil when no file is
// loaded.
func (p *Player) Info() *FileInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.info == nil {
		return nil
	}

	info := *p.info

	return &info
}

// HasFile reports whether a file is loaded.
func (p *Player) HasFile() bool {
	return p.Info() != nil
}

// Waveform returns the precomputed overview trace. Read-only after
// load.
func (p *Player) Waveform() []audio.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.waveform
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// PositionFraction returns playback progress in [0,1].
func (p *Player) PositionFraction() float32 {
	p.mu.Lock()
	total := p.totalFrames
	p.mu.Unlock()

	if total == 0 {
		return 0
	}

	return float32(p.position.Load()) / float32(total)
}

// PositionDuration returns the playback position as wall time.
func (p *Player) PositionDuration() time.Duration {
	p.mu.Lock()
	rate := p.sampleRate
	p.mu.Unlock()

	if rate == 0 {
		return 0
	}

	return time.Duration(float64(p.position.Load()) / float64(rate) * float64(time.Second))
}

// Load stops any active playback and loads path. A load either fully
// succeeds or leaves the player with no loaded file; the previous
// file's state is discarded either way.
func (p *Player) Load(ctx context.Context, path string) error {
	p.Stop(ctx)

	p.mu.Lock()
	p.info = nil
	p.waveform = nil
	p.totalFrames = 0
	p.mu.Unlock()

	src, err := p.registry.Open(path)
	if err != nil {
		p.setStatus(fmt.Sprintf("Error: %v", err))
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	info := newFileInfo(path, src.SampleRate(), src.Channels(), src.Frames(), src.Format())
	if cerr := src.Close(); cerr != nil {
		slog.Warn("failed to close probe source", "error", cerr)
	}

	// Full decode pass for the overview, off the real-time path and
	// before playback can start.
	waveform, err := Overview(p.registry, path, OverviewPoints)
	if err != nil {
		p.setStatus(fmt.Sprintf("Error: %v", err))
		return fmt.Errorf("failed to build overview for %s: %w", path, err)
	}

	p.mu.Lock()
	p.info = &info
	p.waveform = waveform
	p.totalFrames = info.Frames
	p.sampleRate = info.SampleRate
	p.status = "Loaded: " + info.Name
	p.mu.Unlock()

	p.position.Store(0)
	p.seekReq.Store(-1)

	slog.Info("loaded audio file", "path", path,
		"sampleRate", info.SampleRate, "channels", info.Channels,
		"frames", info.Frames, "format", info.Format)

	return nil
}

// Play starts playback, or resumes in place when paused. Without a
// loaded file it is a no-op.
func (p *Player) Play(ctx context.Context) {
	p.mu.Lock()

	if p.info == nil {
		p.mu.Unlock()
		return
	}

	if p.state == Paused {
		p.state = Playing
		p.status = "Playing"
		p.mu.Unlock()

		return
	}

	if p.state == Playing {
		p.mu.Unlock()
		return
	}

	// Reap a previous run that ended at end-of-stream: its goroutine
	// has exited (state is Stopped) but the done channel and output
	// stream are still ours to collect.
	if p.done != nil {
		done := p.done
		out := p.out
		p.done = nil
		p.out = nil
		p.mu.Unlock()

		<-done
		if out != nil {
			out.close(ctx)
		}

		p.mu.Lock()
	}

	// Output open failure degrades to visualization-only playback.
	if p.withOutput {
		out, err := openOutput(ctx, p.sampleRate)
		if err != nil {
			slog.Warn("no audio output for playback", "error", err)
		}
		p.out = out
	}

	p.running.Store(true)
	p.state = Playing
	p.status = "Playing"

	done := make(chan struct{})
	p.done = done

	path := p.info.Path
	out := p.out
	p.mu.Unlock()

	go p.run(path, out, done)
}

// Pause is only valid from Playing. The decode goroutine halts on its
// next iteration without losing its place.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Playing {
		p.state = Paused
		p.status = "Paused"
	}
}

// Stop halts playback and joins the decode goroutine. This is the one
// place the control thread may block, bounded by the goroutine's poll
// interval. Position resets to zero.
func (p *Player) Stop(ctx context.Context) {
	p.running.Store(false)

	p.mu.Lock()
	p.state = Stopped
	done := p.done
	p.done = nil
	out := p.out
	p.out = nil

	if p.info != nil {
		p.status = "Stopped"
	} else {
		p.status = "No file loaded"
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}

	if out != nil {
		out.close(ctx)
	}

	p.position.Store(0)
	p.seekReq.Store(-1)
}

// Toggle cycles Stopped→Play, Playing→Pause, Paused→Play.
func (p *Player) Toggle(ctx context.Context) {
	switch p.State() {
	case Playing:
		p.Pause()
	case Stopped, Paused:
		p.Play(ctx)
	}
}

// Seek requests a jump to the given fraction of the file. The decode
// goroutine applies the underlying seek at the start of its next
// iteration, so no in-flight batch is corrupted.
func (p *Player) Seek(fraction float32) {
	fraction = uictl.Clamp(fraction, 0, 1)

	p.mu.Lock()
	total := p.totalFrames
	p.mu.Unlock()

	target := int64(float64(total) * float64(fraction))
	p.position.Store(target)
	p.seekReq.Store(target)
}

func (p *Player) setStatus(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = s
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = s
	if s == Stopped {
		p.status = "Stopped"
	}
}
