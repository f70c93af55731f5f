package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// StreamingEncoder reads interleaved stereo S16LE PCM bytes from a
// channel, buffers to a threshold, then batch-encodes to MP3 and
// writes to an io.Writer. It is fed from the capture tap so a live
// session can be recorded while it is being visualized.
//
// The encoder runs in a goroutine and finishes when the input channel
// is closed or the context is cancelled.
type StreamingEncoder struct {
	config EncoderConfig
	input  <-chan []byte
	output io.Writer

	encoder *mp3encoder.Encoder
	buffer  []byte

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewStreamingEncoder creates a new streaming MP3 encoder.
func NewStreamingEncoder(
	config EncoderConfig,
	input <-chan []byte,
	output io.Writer,
) (*StreamingEncoder, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	return &StreamingEncoder{ //nolint:exhaustruct // wg, errOnce, err initialized on Start()
		config: config,
		input:  input,
		output: output,
		buffer: make([]byte, 0, config.BufferThreshold),
	}, nil
}

// Start begins the encoding goroutine. Must be called before any data
// is sent to the input channel. Returns error if already started.
func (e *StreamingEncoder) Start(ctx context.Context) error {
	if e.encoder != nil {
		return errors.New("encoder already started")
	}

	e.encoder = mp3encoder.NewEncoder(e.config.SampleRate, e.config.Channels)

	e.wg.Go(func() {
		defer func() {
			if err := e.Flush(); err != nil {
				e.setError(fmt.Errorf("failed to flush encoder on shutdown: %w", err))
			}
		}()

		for {
			select {
			case data, ok := <-e.input:
				if !ok {
					// Channel closed, finish encoding
					return
				}

				e.buffer = append(e.buffer, data...)

				if len(e.buffer) >= e.config.BufferThreshold {
					if err := e.encodeBatch(); err != nil {
						e.setError(err)
						return
					}
				}

			case <-ctx.Done():
				e.setError(fmt.Errorf("encoder context cancelled: %w", ctx.Err()))
				return
			}
		}
	})

	return nil
}

// encodeBatch converts buffered PCM data to MP3 and writes to output.
// Clears the buffer after successful encoding.
func (e *StreamingEncoder) encodeBatch() error {
	if len(e.buffer) == 0 {
		return nil
	}

	// Keep whole interleaved frames; carry a trailing partial frame
	// over to the next batch.
	frameBytes := e.config.Channels * 2
	usable := len(e.buffer) / frameBytes * frameBytes
	if usable == 0 {
		return nil
	}

	numSamples := usable / 2
	samples := make([]int16, numSamples)

	reader := bytes.NewReader(e.buffer[:usable])
	if err := binary.Read(reader, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("failed to read PCM samples: %w", err)
	}

	if err := e.encoder.Write(e.output, samples); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	rest := copy(e.buffer, e.buffer[usable:])
	e.buffer = e.buffer[:rest]

	return nil
}

// Flush encodes any remaining buffered data. Safe to call multiple times.
func (e *StreamingEncoder) Flush() error {
	if err := e.encodeBatch(); err != nil {
		return fmt.Errorf("failed to flush MP3 encoder: %w", err)
	}

	return nil
}

// Wait blocks until encoding completes and returns any error that occurred.
func (e *StreamingEncoder) Wait() error {
	e.wg.Wait()

	return e.err
}

func (e *StreamingEncoder) setError(err error) {
	e.errOnce.Do(func() {
		e.err = err
	})
}
