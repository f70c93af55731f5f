package decode_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alkime/scope/internal/decode"
)

// sniffDecoder recognizes files beginning with a magic byte.
type sniffDecoder struct {
	magic byte
}

func (d sniffDecoder) Decode(r io.ReadSeeker) (decode.Source, error) {
	var b [1]byte
	if _, err := r.Read(b[:]); err != nil || b[0] != d.magic {
		return nil, decode.ErrUnknownFormat
	}

	return sniffSource{}, nil
}

type sniffSource struct{}

func (sniffSource) SampleRate() int                  { return 44_100 }
func (sniffSource) Channels() int                    { return 2 }
func (sniffSource) Frames() int64                    { return 0 }
func (sniffSource) Format() string                   { return "SNIFF" }
func (sniffSource) ReadSamples([]float32) (int, error) { return 0, io.EOF }
func (sniffSource) Seek(int64) error                 { return nil }
func (sniffSource) Close() error                     { return nil }

func TestRegistry_RegisterLookup(t *testing.T) {
	t.Parallel()

	r := decode.NewRegistry()
	r.Register("FOO", sniffDecoder{magic: 'f'})

	// Lookups are case-insensitive.
	_, ok := r.Lookup("foo")
	require.True(t, ok)
	_, ok = r.Lookup("FOO")
	require.True(t, ok)

	_, ok = r.Lookup("bar")
	require.False(t, ok)
}

func TestRegistry_Extensions(t *testing.T) {
	t.Parallel()

	r := decode.Default()
	require.Equal(t, []string{"mp3", "ogg", "wav"}, r.Extensions())
}

func TestRegistry_OpenUsesExtensionHint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.foo")
	require.NoError(t, os.WriteFile(path, []byte{'f', 0, 0}, 0o600))

	r := decode.NewRegistry()
	r.Register("foo", sniffDecoder{magic: 'f'})

	src, err := r.Open(path)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, "SNIFF", src.Format())
}

func TestRegistry_OpenFallsBackToProbing(t *testing.T) {
	t.Parallel()

	// A "bar" file whose payload only the foo decoder accepts.
	path := filepath.Join(t.TempDir(), "clip.bar")
	require.NoError(t, os.WriteFile(path, []byte{'f', 0, 0}, 0o600))

	r := decode.NewRegistry()
	r.Register("foo", sniffDecoder{magic: 'f'})
	r.Register("bar", sniffDecoder{magic: 'b'})

	src, err := r.Open(path)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, "SNIFF", src.Format())
}

func TestRegistry_OpenUnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.foo")
	require.NoError(t, os.WriteFile(path, []byte{'x'}, 0o600))

	r := decode.NewRegistry()
	r.Register("foo", sniffDecoder{magic: 'f'})

	_, err := r.Open(path)
	require.ErrorIs(t, err, decode.ErrUnknownFormat)
}

func TestRegistry_OpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := decode.Default().Open(filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
