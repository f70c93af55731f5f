package audio_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/alkime/scope/internal/audio"
	"github.com/stretchr/testify/require"
)

func f32Bytes(values ...float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func s16Bytes(values ...int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestSamplesFromS16LE(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		channels int
		gain     float32
		expected []audio.Sample
	}{
		{
			name:     "stereo unity gain",
			data:     s16Bytes(16384, -16384, 32767, 0),
			channels: 2,
			gain:     1.0,
			expected: []audio.Sample{
				{X: 0.5, Y: -0.5},
				{X: 32767.0 / 32768.0, Y: 0},
			},
		},
		{
			name:     "mono mirrors to both channels",
			data:     s16Bytes(16384, -16384),
			channels: 1,
			gain:     1.0,
			expected: []audio.Sample{
				{X: 0.5, Y: 0.5},
				{X: -0.5, Y: -0.5},
			},
		},
		{
			name:     "gain scales",
			data:     s16Bytes(16384, 16384),
			channels: 2,
			gain:     0.5,
			expected: []audio.Sample{{X: 0.25, Y: 0.25}},
		},
		{
			name:     "extra channels ignored",
			data:     s16Bytes(16384, -16384, 0, 16384, -16384, 0),
			channels: 3,
			gain:     1.0,
			expected: []audio.Sample{
				{X: 0.5, Y: -0.5},
				{X: 0.5, Y: -0.5},
			},
		},
		{
			name:     "partial trailing frame dropped",
			data:     s16Bytes(16384, -16384, 16384),
			channels: 2,
			gain:     1.0,
			expected: []audio.Sample{{X: 0.5, Y: -0.5}},
		},
		{
			name:     "empty",
			data:     nil,
			channels: 2,
			gain:     1.0,
			expected: nil,
		},
		{
			name:     "invalid channel count",
			data:     s16Bytes(1, 2),
			channels: 0,
			gain:     1.0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := audio.SamplesFromS16LE(tt.data, tt.channels, tt.gain)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSamplesFromF32LE(t *testing.T) {
	t.Parallel()

	got := audio.SamplesFromF32LE(f32Bytes(0.5, -0.5, 1.0, 0.0), 2, 1.0)
	require.Equal(t, []audio.Sample{{X: 0.5, Y: -0.5}, {X: 1.0, Y: 0.0}}, got)

	// Mono mirrored, gain applied.
	got = audio.SamplesFromF32LE(f32Bytes(0.5), 1, 2.0)
	require.Equal(t, []audio.Sample{{X: 1.0, Y: 1.0}}, got)

	require.Nil(t, audio.SamplesFromF32LE(nil, 2, 1.0))
}

func TestSamplesFromFloat32(t *testing.T) {
	t.Parallel()

	got := audio.SamplesFromFloat32([]float32{0.25, -0.25, 0.5, 0.5}, 2, 1.0)
	require.Equal(t, []audio.Sample{{X: 0.25, Y: -0.25}, {X: 0.5, Y: 0.5}}, got)

	got = audio.SamplesFromFloat32([]float32{0.5, -1.0}, 1, 0.5)
	require.Equal(t, []audio.Sample{{X: 0.25, Y: 0.25}, {X: -0.5, Y: -0.5}}, got)
}

func TestS16LEFromSamples(t *testing.T) {
	t.Parallel()

	data := audio.S16LEFromSamples([]audio.Sample{{X: 0.5, Y: -0.5}})
	require.Equal(t, s16Bytes(16384, -16384), data)

	// Out-of-range values clamp instead of wrapping.
	data = audio.S16LEFromSamples([]audio.Sample{{X: 2.0, Y: -2.0}})
	require.Equal(t, s16Bytes(32767, -32768), data)
}

func TestConversionRoundTrip(t *testing.T) {
	t.Parallel()

	orig := []audio.Sample{{X: 0.5, Y: -0.25}, {X: 0, Y: 0.75}}

	back := audio.SamplesFromS16LE(audio.S16LEFromSamples(orig), 2, 1.0)
	require.Len(t, back, len(orig))

	for i := range orig {
		require.InDelta(t, orig[i].X, back[i].X, 1.0/32768.0)
		require.InDelta(t, orig[i].Y, back[i].Y, 1.0/32768.0)
	}
}
