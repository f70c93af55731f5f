// Package decode turns audio files into interleaved float32 PCM
// streams. Codecs register against a Registry keyed by file extension;
// probing falls back to trying every registered decoder when the
// extension hint fails.
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Source is a decoded PCM stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo).
	Channels() int
	// Frames returns the total frame count, or 0 when unknown.
	Frames() int64
	// Format returns a short codec tag for display, e.g. "MP3".
	Format() string
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns the number of float32 values written (not frames).
	// n == 0 with err == io.EOF means the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Seek repositions the stream to the given frame index.
	Seek(frame int64) error
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from a seekable input.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry maps file extensions (without dot, lowercase) to decoders.
type Registry struct {
	mtx    sync.Mutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

func (r *Registry) Register(ext string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(ext)] = d
}

func (r *Registry) Lookup(ext string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(ext)]

	return d, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	return exts
}

// Open probes path and returns a decoded source. The file extension
// is used as the probe hint; when it does not match (or does not
// decode) every registered decoder is tried from the start of the
// file. The source owns the file handle and releases it on Close.
func (r *Registry) Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	if dec, ok := r.Lookup(ext); ok {
		src, err := dec.Decode(f)
		if err == nil {
			return &fileSource{Source: src, f: f}, nil
		}
	}

	// Extension hint failed: rewind and try everything else.
	for _, candidate := range r.Extensions() {
		if candidate == ext {
			continue
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			closeQuiet(f)
			return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
		}

		dec, _ := r.Lookup(candidate)
		if src, err := dec.Decode(f); err == nil {
			return &fileSource{Source: src, f: f}, nil
		}
	}

	closeQuiet(f)

	return nil, fmt.Errorf("probing %s: %w", path, ErrUnknownFormat)
}

// Default returns a registry with every built-in codec registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("mp3", MP3Decoder{})
	r.Register("wav", WAVDecoder{})
	r.Register("ogg", VorbisDecoder{})

	return r
}

// fileSource couples a decoded source to the file handle it reads from.
type fileSource struct {
	Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}

	return err
}

func closeQuiet(f *os.File) {
	_ = f.Close()
}
