package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// wavPCMFormat is the WAVE format tag for uncompressed integer PCM.
const wavPCMFormat = 1

// wavSource streams 16-bit PCM straight from the data chunk. The
// go-audio decoder handles header parsing and chunk navigation; raw
// frame reads and seeks go through the underlying reader so seeking
// stays frame-exact.
type wavSource struct {
	r          io.ReadSeeker
	sampleRate int
	channels   int
	dataStart  int64 // file offset of the first PCM byte
	dataLen    int64 // PCM chunk length in bytes
	offset     int64 // bytes consumed from the PCM chunk
	buf        []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Format() string  { return "PCM WAV" }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) frameBytes() int64 {
	return int64(s.channels) * 2
}

func (s *wavSource) Frames() int64 {
	return s.dataLen / s.frameBytes()
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	remaining := s.dataLen - s.offset
	if remaining <= 0 {
		return 0, io.EOF
	}

	want := int64(len(dst)) * 2
	if want > remaining {
		want = remaining
	}
	// whole frames only
	want = want / s.frameBytes() * s.frameBytes()
	if want == 0 {
		return 0, io.EOF
	}

	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("wav read: %w", err)
	}

	s.offset += int64(n)

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 {
		return 0, io.EOF
	}

	return samples, nil
}

func (s *wavSource) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}

	byteOff := frame * s.frameBytes()
	if byteOff > s.dataLen {
		byteOff = s.dataLen
	}

	if _, err := s.r.Seek(s.dataStart+byteOff, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}

	s.offset = byteOff

	return nil
}

// WAVDecoder decodes RIFF/WAVE files via go-audio/wav. Only 16-bit
// integer PCM is supported; other encodings report ErrUnsupportedCodec.
type WAVDecoder struct{}

func (WAVDecoder) Decode(r io.ReadSeeker) (Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav decode: %w", ErrUnknownFormat)
	}

	// IsValidFile consumed the header; rewind and re-walk to the PCM
	// chunk so the reader lands on the first data byte.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}

	dec = wav.NewDecoder(r)
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}

	if dec.WavAudioFormat != wavPCMFormat || dec.BitDepth != 16 {
		return nil, fmt.Errorf("wav format %d bit depth %d: %w",
			dec.WavAudioFormat, dec.BitDepth, ErrUnsupportedCodec)
	}

	if dec.NumChans == 0 || dec.PCMLen() == 0 {
		return nil, ErrNoAudio
	}

	dataStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}

	return &wavSource{
		r:          r,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		dataStart:  dataStart,
		dataLen:    dec.PCMLen(),
		buf:        make([]byte, 8192),
	}, nil
}
