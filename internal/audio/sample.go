// Package audio provides the real-time sample pipeline: the lock-free
// visualization buffer, live input capture, and the conversions between
// device-native PCM encodings and normalized stereo samples.
package audio

import (
	"encoding/binary"
	"math"
)

// Sample is one stereo frame normalized to roughly [-1, 1].
// Left channel = X, right channel = Y (oscilloscope convention).
// It is a value type: copied, never referenced.
type Sample struct {
	X float32
	Y float32
}

// s16Scale is the full-scale divisor for normalizing signed 16-bit PCM.
const s16Scale = 32768.0

// SamplesFromS16LE converts interleaved S16LE PCM bytes into normalized
// samples, applying gain. Mono input is mirrored to both channels;
// channels beyond the first two are ignored. A trailing partial frame
// is dropped.
func SamplesFromS16LE(data []byte, channels int, gain float32) []Sample {
	if channels <= 0 {
		return nil
	}

	frameBytes := channels * 2
	frames := len(data) / frameBytes
	if frames == 0 {
		return nil
	}

	samples := make([]Sample, frames)

	for i := 0; i < frames; i++ {
		frame := data[i*frameBytes:]

		x := float32(int16(binary.LittleEndian.Uint16(frame))) / s16Scale * gain
		y := x
		if channels > 1 {
			y = float32(int16(binary.LittleEndian.Uint16(frame[2:]))) / s16Scale * gain
		}

		samples[i] = Sample{X: x, Y: y}
	}

	return samples
}

// SamplesFromF32LE converts interleaved 32-bit float PCM bytes into
// samples, applying gain. Same channel rules as SamplesFromS16LE.
func SamplesFromF32LE(data []byte, channels int, gain float32) []Sample {
	if channels <= 0 {
		return nil
	}

	frameBytes := channels * 4
	frames := len(data) / frameBytes
	if frames == 0 {
		return nil
	}

	samples := make([]Sample, frames)

	for i := 0; i < frames; i++ {
		frame := data[i*frameBytes:]

		x := math.Float32frombits(binary.LittleEndian.Uint32(frame)) * gain
		y := x
		if channels > 1 {
			y = math.Float32frombits(binary.LittleEndian.Uint32(frame[4:])) * gain
		}

		samples[i] = Sample{X: x, Y: y}
	}

	return samples
}

// SamplesFromFloat32 converts an interleaved float32 PCM slice (decoder
// output) into samples, applying gain. A trailing partial frame is
// dropped.
func SamplesFromFloat32(pcm []float32, channels int, gain float32) []Sample {
	if channels <= 0 {
		return nil
	}

	frames := len(pcm) / channels
	if frames == 0 {
		return nil
	}

	samples := make([]Sample, frames)

	for i := 0; i < frames; i++ {
		x := pcm[i*channels] * gain
		y := x
		if channels > 1 {
			y = pcm[i*channels+1] * gain
		}

		samples[i] = Sample{X: x, Y: y}
	}

	return samples
}

// S16LEFromSamples converts samples back into interleaved stereo S16LE
// PCM bytes, clamping to full scale. Used to feed the MP3 recorder.
func S16LEFromSamples(samples []Sample) []byte {
	out := make([]byte, len(samples)*4)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(clampS16(s.X)))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(clampS16(s.Y)))
	}

	return out
}

func clampS16(v float32) int16 {
	scaled := v * s16Scale
	switch {
	case scaled >= math.MaxInt16:
		return math.MaxInt16
	case scaled <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(scaled)
	}
}
