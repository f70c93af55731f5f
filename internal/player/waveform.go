package player

import (
	"errors"
	"fmt"
	"io"

	"github.com/alkime/scope/internal/audio"
	"github.com/alkime/scope/internal/decode"
	"github.com/alkime/scope/pkg/collections"
)

// OverviewPoints is the resolution of the file overview waveform.
// One point per column is plenty for any sane terminal width.
const OverviewPoints = 1000

const overviewBatchFrames = 8192

// Overview decodes the whole file once and reduces it to a fixed
// number of per-channel peak points. The pass is streaming, so memory
// stays proportional to the point count, not the file length.
func Overview(registry *decode.Registry, path string, points int) ([]audio.Sample, error) {
	if points <= 0 {
		return nil, fmt.Errorf("overview needs a positive point count, got %d", points)
	}

	src, err := registry.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	channels := src.Channels()

	framesPerPoint := src.Frames() / int64(points)
	if framesPerPoint < 1 {
		framesPerPoint = 1
	}

	var (
		result  []audio.Sample
		current audio.Sample
		inPoint int64
	)

	pcm := make([]float32, overviewBatchFrames*channels)

	for {
		n, err := src.ReadSamples(pcm)
		if n > 0 {
			batch := audio.SamplesFromFloat32(pcm[:n], channels, 1.0)

			for len(batch) > 0 {
				take := min(int64(len(batch)), framesPerPoint-inPoint)

				current = collections.Reduce(batch[:take], current, peak)
				inPoint += take
				batch = batch[take:]

				if inPoint == framesPerPoint {
					result = append(result, current)
					current = audio.Sample{}
					inPoint = 0
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode %s for overview: %w", path, err)
		}
	}

	if inPoint > 0 {
		result = append(result, current)
	}

	return result, nil
}

// peak folds a sample into a running per-channel absolute maximum.
func peak(acc audio.Sample, s audio.Sample) audio.Sample {
	if a := abs(s.X); a > acc.X {
		acc.X = a
	}
	if a := abs(s.Y); a > acc.Y {
		acc.Y = a
	}

	return acc
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}
