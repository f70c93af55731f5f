package player

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/pkg/spsc"
	"github.com/gen2brain/malgo"
)

// outputHeadroom is how full the output ring may get before the
// decode loop is made to wait. Leaving headroom keeps a pending seek
// from having to drain a whole second of stale audio.
const outputHeadroom = 3.0 / 4.0

// output feeds decoded samples to a playback device. The decode loop
// pushes interleaved float32 frames into the ring; the device callback
// drains it on the audio thread, substituting silence on underrun.
type output struct {
	ring *spsc.Ring[float32]
	dev  audio.Device
}

// openOutput opens the default playback device at the given rate. The
// ring holds roughly one second of stereo audio.
func openOutput(ctx context.Context, sampleRate int) (*output, error) {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}

	o := &output{
		ring: spsc.New[float32](sampleRate * 2),
	}

	o.dev = audio.NewPlaybackDevice(&audio.DeviceConfig{
		Format:     malgo.FormatF32,
		Channels:   audio.DefaultChannels,
		SampleRate: sampleRate,
	}, o.onData)

	if err := o.dev.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return o, nil
}

// pushSamples queues frames for the device, expanding each frame back
// to interleaved stereo. When the ring is full the frame is dropped;
// pacing in the decode loop keeps that from happening in practice.
func (o *output) pushSamples(samples []audio.Sample) {
	for _, s := range samples {
		o.ring.Push(s.X)
		o.ring.Push(s.Y)
	}
}

// full reports whether the ring is near capacity.
func (o *output) full() bool {
	return float64(o.ring.Len()) >= float64(o.ring.Cap())*outputHeadroom
}

func (o *output) close(ctx context.Context) {
	if err := o.dev.Stop(ctx); err != nil {
		slog.Warn("failed to stop playback device", "error", err)
	}
	o.dev.Dealloc(ctx)
}

// onData runs on the audio thread. It must not block or allocate.
func (o *output) onData(out, _ []byte, frameCount uint32) {
	n := int(frameCount) * audio.DefaultChannels

	for i := 0; i < n; i++ {
		v, ok := o.ring.Pop()
		if !ok {
			// Underrun. The remaining bytes stay zero (silence).
			return
		}

		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
}
