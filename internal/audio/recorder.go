package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Recorder streams the live capture tap into an MP3 file. It is a
// thin coordinator: the Capture callback feeds converted PCM into a
// buffered channel, and the StreamingEncoder drains it off the
// real-time path.
type Recorder struct {
	capture *Capture
	path    string

	file    *os.File
	input   chan []byte
	encoder *StreamingEncoder
}

// NewRecorder creates a recorder writing to path when started.
func NewRecorder(capture *Capture, path string) *Recorder {
	return &Recorder{capture: capture, path: path}
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	return r.encoder != nil
}

// Start creates the output file and attaches the tap. Returns an
// error if a recording is already running.
func (r *Recorder) Start(ctx context.Context) error {
	if r.encoder != nil {
		return errors.New("recording already in progress")
	}

	file, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create MP3 file %s: %w", r.path, err)
	}

	input := make(chan []byte, 64)

	conf := EncoderConfig{
		SampleRate: r.capture.conf.SampleRate,
		Channels:   2,
	}.WithDefaults()

	encoder, err := NewStreamingEncoder(conf, input, file)
	if err != nil {
		closeFile(file)
		return fmt.Errorf("failed to create MP3 encoder: %w", err)
	}

	if err := encoder.Start(ctx); err != nil {
		closeFile(file)
		return fmt.Errorf("failed to start MP3 encoder: %w", err)
	}

	r.file = file
	r.input = input
	r.encoder = encoder
	r.capture.SetTap(input)
	slog.Info("recording started", "path", r.path)

	return nil
}

// Stop detaches the tap, flushes the encoder, and closes the file.
func (r *Recorder) Stop() error {
	if r.encoder == nil {
		return nil
	}

	r.capture.DetachTap()
	close(r.input)

	err := r.encoder.Wait()
	closeFile(r.file)

	r.file = nil
	r.input = nil
	r.encoder = nil
	slog.Info("recording stopped", "path", r.path)

	if err != nil {
		return fmt.Errorf("failed to encode MP3: %w", err)
	}

	return nil
}

func closeFile(fd *os.File) {
	if err := fd.Close(); err != nil {
		slog.Warn("failed to close file", "error", err)
	}
}
