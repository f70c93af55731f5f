package audio

import (
	"math"
	"sync/atomic"

	"github.com/alkime/scope/pkg/uictl"
)

// Level is a float32 scalar shared between a control thread and a
// real-time reader. The bits live in an atomic word, so a Store from
// the UI is visible to the audio path on its next Load without any
// locking. This replaces the older "plain field plus explicit sync
// call" protocol with a single publish/observe pair.
type Level struct {
	bits atomic.Uint32
}

// NewLevel creates a level holding v.
func NewLevel(v float32) *Level {
	l := &Level{}
	l.Store(v)

	return l
}

// Store publishes a new value.
func (l *Level) Store(v float32) {
	l.bits.Store(math.Float32bits(v))
}

// Load observes the most recently published value.
func (l *Level) Load() float32 {
	return math.Float32frombits(l.bits.Load())
}

// Add publishes the current value shifted by delta, clamped to
// [minV, maxV]. Not atomic as a read-modify-write; only the single
// control thread mutates a Level.
func (l *Level) Add(delta, minV, maxV float32) float32 {
	v := uictl.Clamp(l.Load()+delta, minV, maxV)
	l.Store(v)

	return v
}
