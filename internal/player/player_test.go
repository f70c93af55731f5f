package player_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/decode"
	"github.com/alkime/scope/internal/player"
)

// toneDecoder produces a fixed-length stereo stream of constant
// amplitude, so tests can reason about exactly what reaches the
// buffer without real codec fixtures.
type toneDecoder struct {
	frames    int64
	amplitude float32
}

func (d toneDecoder) Decode(io.ReadSeeker) (decode.Source, error) {
	return &toneSource{frames: d.frames, amplitude: d.amplitude}, nil
}

type toneSource struct {
	frames    int64
	amplitude float32
	pos       int64
}

func (s *toneSource) SampleRate() int { return 8_000 }
func (s *toneSource) Channels() int   { return 2 }
func (s *toneSource) Frames() int64   { return s.frames }
func (s *toneSource) Format() string  { return "TONE" }
func (s *toneSource) Close() error    { return nil }

func (s *toneSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	frames := min(int64(len(dst)/2), s.frames-s.pos)
	for i := int64(0); i < frames; i++ {
		dst[i*2] = s.amplitude
		dst[i*2+1] = -s.amplitude
	}
	s.pos += frames

	return int(frames * 2), nil
}

func (s *toneSource) Seek(frame int64) error {
	if frame < 0 || frame > s.frames {
		return decode.ErrSeekUnsupported
	}
	s.pos = frame

	return nil
}

func toneFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "track.tone")
	require.NoError(t, os.WriteFile(path, []byte("tone"), 0o600))

	return path
}

func newTonePlayer(t *testing.T, frames int64, amplitude float32) (*player.Player, *audio.SampleBuffer) {
	t.Helper()

	reg := decode.NewRegistry()
	reg.Register("tone", toneDecoder{frames: frames, amplitude: amplitude})

	buf := audio.NewSampleBuffer(4096)
	p := player.New(buf,
		player.WithRegistry(reg),
		player.WithOutput(false),
		player.WithBatchFrames(64),
	)

	return p, buf
}

func waitForState(t *testing.T, p *player.Player, want player.State) {
	t.Helper()

	require.Eventually(t, func() bool {
		return p.State() == want
	}, 2*time.Second, time.Millisecond)
}

func TestPlayer_LoadMetadata(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 8_000, 0.5)
	path := toneFile(t)

	require.NoError(t, p.Load(t.Context(), path))
	require.True(t, p.HasFile())

	info := p.Info()
	require.NotNil(t, info)
	require.Equal(t, path, info.Path)
	require.Equal(t, "track.tone", info.Name)
	require.Equal(t, 8_000, info.SampleRate)
	require.Equal(t, 2, info.Channels)
	require.Equal(t, int64(8_000), info.Frames)
	require.Equal(t, "TONE", info.Format)
	require.Equal(t, time.Second, info.Duration)

	require.Equal(t, "Loaded: track.tone", p.Status())
	require.Equal(t, player.Stopped, p.State())
	require.NotEmpty(t, p.Waveform())
}

func TestPlayer_LoadUnknownFormat(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 100, 0.5)

	path := filepath.Join(t.TempDir(), "noise.xyz")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o600))

	require.Error(t, p.Load(t.Context(), path))
	require.False(t, p.HasFile())
	require.Contains(t, p.Status(), "Error")
}

func TestPlayer_PlayWithoutFileIsNoop(t *testing.T) {
	t.Parallel()

	p, buf := newTonePlayer(t, 100, 0.5)

	p.Play(t.Context())
	require.Equal(t, player.Stopped, p.State())
	require.Zero(t, buf.SamplesWritten())
}

func TestPlayer_PlayToEnd(t *testing.T) {
	t.Parallel()

	p, buf := newTonePlayer(t, 512, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Play(t.Context())
	require.Equal(t, player.Playing, p.State())

	waitForState(t, p, player.Stopped)
	require.Equal(t, uint64(512), buf.SamplesWritten())
	require.Zero(t, p.PositionFraction())

	// Every pushed sample carries the source amplitude at unit volume.
	for _, s := range buf.Samples() {
		if s.X == 0 && s.Y == 0 {
			continue // unfilled snapshot slot
		}
		require.InDelta(t, 0.5, s.X, 1e-6)
		require.InDelta(t, -0.5, s.Y, 1e-6)
	}
}

func TestPlayer_VolumeScalesSamples(t *testing.T) {
	t.Parallel()

	p, buf := newTonePlayer(t, 256, 0.8)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Volume().Store(0.25)
	p.Play(t.Context())
	waitForState(t, p, player.Stopped)

	var found bool
	for _, s := range buf.Samples() {
		if s.X == 0 && s.Y == 0 {
			continue
		}
		found = true
		require.InDelta(t, 0.2, s.X, 1e-6)
		require.InDelta(t, -0.2, s.Y, 1e-6)
	}
	require.True(t, found)
}

func TestPlayer_LoopRestarts(t *testing.T) {
	t.Parallel()

	p, buf := newTonePlayer(t, 128, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.SetLoop(true)
	p.Play(t.Context())

	// More samples than the file holds means it wrapped at least once.
	require.Eventually(t, func() bool {
		return buf.SamplesWritten() > 128
	}, 2*time.Second, time.Millisecond)
	require.Equal(t, player.Playing, p.State())

	p.Stop(t.Context())
	require.Equal(t, player.Stopped, p.State())
}

func TestPlayer_PauseHoldsPosition(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000_000, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Play(t.Context())
	require.Eventually(t, func() bool {
		return p.PositionFraction() > 0
	}, 2*time.Second, time.Millisecond)

	p.Pause()
	require.Equal(t, player.Paused, p.State())
	require.Equal(t, "Paused", p.Status())

	// Let any in-flight batch land before sampling the position.
	time.Sleep(20 * time.Millisecond)
	held := p.PositionFraction()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, held, p.PositionFraction())

	p.Play(t.Context())
	require.Equal(t, player.Playing, p.State())

	p.Stop(t.Context())
}

func TestPlayer_PauseFromStoppedIsNoop(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 100, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Pause()
	require.Equal(t, player.Stopped, p.State())
}

func TestPlayer_SeekClampsAndApplies(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Seek(0.5)
	require.InDelta(t, 0.5, p.PositionFraction(), 1e-6)

	p.Seek(2.0)
	require.InDelta(t, 1.0, p.PositionFraction(), 1e-6)

	p.Seek(-1.0)
	require.Zero(t, p.PositionFraction())
}

func TestPlayer_SeekDuringPlayback(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000_000, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Play(t.Context())
	p.Seek(0.9)

	require.Eventually(t, func() bool {
		return p.PositionFraction() >= 0.9
	}, 2*time.Second, time.Millisecond)

	p.Stop(t.Context())
}

func TestPlayer_StopIsSynchronous(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000_000, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Play(t.Context())
	p.Stop(t.Context())

	require.Equal(t, player.Stopped, p.State())
	require.Zero(t, p.PositionFraction())
	require.Equal(t, "Stopped", p.Status())
}

func TestPlayer_ToggleCycles(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000_000, 0.5)
	require.NoError(t, p.Load(t.Context(), toneFile(t)))

	p.Toggle(t.Context())
	require.Equal(t, player.Playing, p.State())

	p.Toggle(t.Context())
	require.Equal(t, player.Paused, p.State())

	p.Toggle(t.Context())
	require.Equal(t, player.Playing, p.State())

	p.Stop(t.Context())
}

func TestPlayer_LoadWhilePlayingStopsFirst(t *testing.T) {
	t.Parallel()

	p, _ := newTonePlayer(t, 1_000_000, 0.5)
	path := toneFile(t)
	require.NoError(t, p.Load(t.Context(), path))

	p.Play(t.Context())
	require.NoError(t, p.Load(t.Context(), path))

	require.Equal(t, player.Stopped, p.State())
	require.Zero(t, p.PositionFraction())
}

func TestOverview_PointCount(t *testing.T) {
	t.Parallel()

	reg := decode.NewRegistry()
	reg.Register("tone", toneDecoder{frames: 10_000, amplitude: 0.7})

	path := filepath.Join(t.TempDir(), "long.tone")
	require.NoError(t, os.WriteFile(path, []byte("tone"), 0o600))

	points, err := player.Overview(reg, path, 100)
	require.NoError(t, err)
	require.Len(t, points, 100)

	for _, pt := range points {
		require.InDelta(t, 0.7, pt.X, 1e-6)
		require.InDelta(t, 0.7, pt.Y, 1e-6)
	}
}

func TestOverview_ShortFile(t *testing.T) {
	t.Parallel()

	reg := decode.NewRegistry()
	reg.Register("tone", toneDecoder{frames: 10, amplitude: 0.3})

	path := filepath.Join(t.TempDir(), "short.tone")
	require.NoError(t, os.WriteFile(path, []byte("tone"), 0o600))

	// Fewer frames than requested points collapses to one per frame.
	points, err := player.Overview(reg, path, 100)
	require.NoError(t, err)
	require.Len(t, points, 10)
}
