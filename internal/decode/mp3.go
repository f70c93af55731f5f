package decode

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3BytesPerFrame is the decoded output framing of go-mp3: always
// stereo 16-bit, 4 bytes per frame regardless of the source channels.
const mp3BytesPerFrame = 4

type mp3Source struct {
	dec        *gomp3.Decoder
	sampleRate int
	buf        []byte
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return 2 }
func (s *mp3Source) Format() string  { return "MP3" }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) Frames() int64 {
	n := s.dec.Length()
	if n <= 0 {
		return 0
	}

	return n / mp3BytesPerFrame
}

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		low := uint16(s.buf[2*i])
		high := uint16(s.buf[2*i+1])
		dst[i] = float32(int16(low|(high<<8))) / 32768.0
	}

	return samples, err
}

func (s *mp3Source) Seek(frame int64) error {
	if s.dec.Length() <= 0 {
		return ErrSeekUnsupported
	}

	if _, err := s.dec.Seek(frame*mp3BytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek: %w", err)
	}

	return nil
}

// MP3Decoder decodes MPEG layer 3 streams via hajimehoshi/go-mp3.
type MP3Decoder struct{}

func (MP3Decoder) Decode(r io.ReadSeeker) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}

	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
