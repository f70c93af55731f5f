package player

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alkime/scope/internal/audio"
)

// run is the decode goroutine. It opens its own source, honors
// pause/stop/seek between batches (never mid-batch), and paces itself
// so decoding neither races ahead of real-time consumption nor starves
// the visualization buffer.
func (p *Player) run(path string, out *output, done chan<- struct{}) {
	defer close(done)

	src, err := p.registry.Open(path)
	if err != nil {
		// The caller validated loadability; a failure here is logged
		// and the goroutine gives up without touching the state.
		slog.Error("playback failed to open source", "path", path, "error", err)
		p.running.Store(false)
		p.setState(Stopped)

		return
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Warn("failed to close playback source", "error", cerr)
		}
	}()

	channels := src.Channels()
	rate := src.SampleRate()
	if rate <= 0 {
		rate = audio.DefaultSampleRate
	}

	current := p.position.Load()
	if current > 0 {
		if err := src.Seek(current); err != nil {
			slog.Warn("failed to seek to resume position", "frame", current, "error", err)
			current = 0
			p.position.Store(current)
		}
	}

	pcm := make([]float32, p.batchFrames*channels)

	for {
		if !p.running.Load() {
			return
		}

		switch p.State() {
		case Paused:
			time.Sleep(pausePoll)
			continue
		case Stopped:
			return
		case Playing:
		}

		// A pending seek takes effect here, between batches.
		if target := p.seekReq.Swap(-1); target >= 0 {
			if err := src.Seek(target); err != nil {
				slog.Warn("seek failed", "frame", target, "error", err)
			} else {
				current = target
				p.position.Store(current)
			}
		}

		n, err := src.ReadSamples(pcm)
		if n == 0 {
			if err == nil {
				continue
			}

			if errors.Is(err, io.EOF) {
				if p.loop.Load() {
					if serr := src.Seek(0); serr != nil {
						slog.Error("loop restart seek failed", "error", serr)
						p.running.Store(false)
						p.setState(Stopped)

						return
					}
					current = 0
					p.position.Store(0)
					continue
				}

				// Natural end. Rewind so the next Play starts over.
				p.position.Store(0)
				p.running.Store(false)
				p.setState(Stopped)

				return
			}

			// A corrupt batch is skipped, not fatal.
			slog.Warn("decode error, skipping batch", "error", err)
			continue
		}

		volume := p.volume.Load()
		samples := audio.SamplesFromFloat32(pcm[:n], channels, volume)

		p.buffer.TryPushMany(samples)

		if out != nil {
			out.pushSamples(samples)
		}

		current += int64(len(samples))
		p.position.Store(current)

		p.pace(out, len(samples), rate)
	}
}

// pace throttles the decode loop. With a live output device the
// output ring's fullness is the clock (backpressure); without one a
// fixed-rate sleep proportional to the batch stands in for it.
func (p *Player) pace(out *output, frames, rate int) {
	if out != nil {
		for out.full() && p.running.Load() && p.State() == Playing {
			time.Sleep(pausePoll / 2)
		}

		return
	}

	speed := p.speed.Load()
	if speed <= 0 {
		speed = 1
	}

	time.Sleep(time.Duration(float64(frames) / (float64(rate) * float64(speed)) * float64(time.Second)))
}
