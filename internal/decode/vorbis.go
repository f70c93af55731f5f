package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type vorbisSource struct {
	dec *oggvorbis.Reader
}

func (s *vorbisSource) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.dec.Channels() }
func (s *vorbisSource) Format() string  { return "Vorbis" }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) Frames() int64 {
	return s.dec.Length()
}

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// Keep whole frames so channel interleaving stays aligned.
	want := len(dst) / s.dec.Channels() * s.dec.Channels()

	n, err := s.dec.Read(dst[:want])
	if n == 0 && err != nil {
		return 0, err
	}

	return n, err
}

func (s *vorbisSource) Seek(frame int64) error {
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis seek: %w", err)
	}

	return nil
}

// VorbisDecoder decodes Ogg Vorbis streams via jfreymuth/oggvorbis.
type VorbisDecoder struct{}

func (VorbisDecoder) Decode(r io.ReadSeeker) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode: %w", err)
	}

	if dec.Channels() == 0 {
		return nil, ErrNoAudio
	}

	return &vorbisSource{dec: dec}, nil
}
