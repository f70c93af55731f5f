package audio

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/alkime/scope/pkg/spsc"
)

// Handle-already-taken conditions. These signal a programming error
// (two goroutines claiming the same side of the buffer), not a runtime
// fault.
var (
	ErrProducerTaken = errors.New("producer handle already taken")
	ErrConsumerTaken = errors.New("consumer handle already taken")
)

// SampleBuffer shares audio samples between a real-time producer and a
// best-effort display consumer without locks on the hot path.
//
// Internally it is an SPSC ring with headroom plus a consumer-owned
// snapshot. The producer side (audio callback or decode goroutine) and
// the consumer side (UI) each claim their half once via TakeProducer /
// TakeConsumer. Call sites that cannot thread an owned handle may use
// the shared best-effort surface (TryPush / Samples) instead, which
// attempts a non-blocking lock and misses an update rather than ever
// blocking a real-time caller.
type SampleBuffer struct {
	ring     *spsc.Ring[Sample]
	written  atomic.Uint64
	capacity int

	prodMu sync.Mutex
	prod   *Producer

	consMu   sync.Mutex
	cons     *Consumer
	lastRead []Sample
}

// NewSampleBuffer creates a buffer whose snapshot holds capacity
// samples. The internal ring gets at least twice that so producer
// bursts are not dropped before the consumer can drain.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < 1 {
		panic("audio: sample buffer capacity must be positive")
	}

	b := &SampleBuffer{
		ring:     spsc.New[Sample](capacity * 2),
		capacity: capacity,
	}

	b.prod = &Producer{ring: b.ring, written: &b.written}
	b.cons = &Consumer{
		ring:     b.ring,
		written:  &b.written,
		snapshot: make([]Sample, capacity),
	}

	return b
}

// Capacity returns the snapshot length.
func (b *SampleBuffer) Capacity() int {
	return b.capacity
}

// SamplesWritten returns the total number of samples pushed so far,
// including dropped ones. Statistics only; relaxed ordering.
func (b *SampleBuffer) SamplesWritten() uint64 {
	return b.written.Load()
}

// TakeProducer hands out the producer half. It may be claimed at most
// once per buffer.
func (b *SampleBuffer) TakeProducer() (*Producer, error) {
	b.prodMu.Lock()
	defer b.prodMu.Unlock()

	if b.prod == nil {
		return nil, ErrProducerTaken
	}

	p := b.prod
	b.prod = nil

	return p, nil
}

// TakeConsumer hands out the consumer half. It may be claimed at most
// once per buffer.
func (b *SampleBuffer) TakeConsumer() (*Consumer, error) {
	b.consMu.Lock()
	defer b.consMu.Unlock()

	if b.cons == nil {
		return nil, ErrConsumerTaken
	}

	c := b.cons
	b.cons = nil

	return c, nil
}

// TryPush pushes one sample through the shared best-effort surface.
// Returns false without blocking when the producer handle is taken or
// momentarily locked by another caller.
func (b *SampleBuffer) TryPush(s Sample) bool {
	if !b.prodMu.TryLock() {
		return false
	}
	defer b.prodMu.Unlock()

	if b.prod == nil {
		return false
	}

	b.prod.Push(s)

	return true
}

// TryPushMany pushes a batch through the shared best-effort surface.
func (b *SampleBuffer) TryPushMany(samples []Sample) bool {
	if !b.prodMu.TryLock() {
		return false
	}
	defer b.prodMu.Unlock()

	if b.prod == nil {
		return false
	}

	b.prod.PushMany(samples)

	return true
}

// Samples drains and returns the freshest full snapshot, oldest first.
// When the consumer handle is taken or locked elsewhere it returns the
// last successfully read snapshot instead of blocking.
func (b *SampleBuffer) Samples() []Sample {
	if !b.consMu.TryLock() {
		return b.staleSnapshot()
	}
	defer b.consMu.Unlock()

	if b.cons == nil {
		return b.staleSnapshot()
	}

	b.cons.Refresh()
	b.lastRead = b.cons.Read()

	out := make([]Sample, len(b.lastRead))
	copy(out, b.lastRead)

	return out
}

// staleSnapshot returns a copy of the previous read, or silence when
// nothing was ever read.
func (b *SampleBuffer) staleSnapshot() []Sample {
	if b.lastRead == nil {
		return make([]Sample, b.capacity)
	}

	out := make([]Sample, len(b.lastRead))
	copy(out, b.lastRead)

	return out
}

// Producer is the write half of a SampleBuffer, owned by exactly one
// goroutine (audio callback or decode loop) for its lifetime.
type Producer struct {
	ring    *spsc.Ring[Sample]
	written *atomic.Uint64
}

// Push appends one sample. Lock-free; on overflow the sample is
// silently dropped. The written counter advances either way.
func (p *Producer) Push(s Sample) {
	p.ring.Push(s)
	p.written.Add(1)
}

// PushMany appends a batch of samples under the same rules as Push.
func (p *Producer) PushMany(samples []Sample) {
	for _, s := range samples {
		p.ring.Push(s)
	}
	p.written.Add(uint64(len(samples)))
}

// Consumer is the read half of a SampleBuffer, owned by exactly one
// goroutine. It maintains the display snapshot.
type Consumer struct {
	ring     *spsc.Ring[Sample]
	written  *atomic.Uint64
	snapshot []Sample
	pos      int
}

// Refresh drains every currently available sample from the ring into
// the snapshot. Call before Read to see fresh data; reading without a
// refresh returns the previous snapshot.
func (c *Consumer) Refresh() {
	for {
		s, ok := c.ring.Pop()
		if !ok {
			return
		}

		c.snapshot[c.pos] = s
		c.pos = (c.pos + 1) % len(c.snapshot)
	}
}

// Read returns the full snapshot reordered oldest-first. The result
// always has exactly the buffer capacity; slots not yet written hold
// zero samples.
func (c *Consumer) Read() []Sample {
	n := len(c.snapshot)
	out := make([]Sample, n)

	for i := 0; i < n; i++ {
		out[i] = c.snapshot[(c.pos+i)%n]
	}

	return out
}

// SamplesWritten returns the shared statistics counter.
func (c *Consumer) SamplesWritten() uint64 {
	return c.written.Load()
}
