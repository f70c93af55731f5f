package audio

import "errors"

const (
	// DefaultBufferThreshold is 16KB = 4096 stereo frames, ~85ms @ 48kHz.
	DefaultBufferThreshold = 16384
)

// EncoderConfig configures the MP3 streaming encoder.
type EncoderConfig struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels. The capture tap
	// always delivers stereo.
	Channels int

	// BufferThreshold is the number of PCM bytes to accumulate before
	// encoding a batch.
	BufferThreshold int
}

// Validate returns an error if the config is invalid.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 2 {
		return errors.New("only stereo (2 channels) is supported")
	}

	if c.BufferThreshold <= 0 {
		return errors.New("buffer threshold must be positive")
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	if c.BufferThreshold == 0 {
		c.BufferThreshold = DefaultBufferThreshold
	}

	return c
}
