// Package player decodes audio files on a background goroutine and
// fans the samples out to the visualization buffer and, when an output
// device is available, to a second ring feeding the audio callback.
package player

import (
	"path/filepath"
	"time"
)

// State is the playback state machine. Stopped is reachable from every
// state; a new Play is always possible while a file is loaded.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// FileInfo is the immutable metadata of the loaded file, captured once
// at load time.
type FileInfo struct {
	Path       string
	Name       string
	Duration   time.Duration
	SampleRate int
	Channels   int
	Format     string
	Frames     int64
}

// FrameDuration converts a frame count at a sample rate to wall time.
func FrameDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

func newFileInfo(path string, sampleRate, channels int, frames int64, format string) FileInfo {
	duration := FrameDuration(frames, sampleRate)

	return FileInfo{
		Path:       path,
		Name:       filepath.Base(path),
		Duration:   duration,
		SampleRate: sampleRate,
		Channels:   channels,
		Format:     format,
		Frames:     frames,
	}
}
