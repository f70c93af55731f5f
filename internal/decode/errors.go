package decode

import "errors"

var (
	// ErrUnknownFormat means no registered decoder recognized the file.
	ErrUnknownFormat = errors.New("audio format not recognized")

	// ErrNoAudio means the container was recognized but holds no
	// decodable audio data.
	ErrNoAudio = errors.New("no audio data found")

	// ErrUnsupportedCodec means the container is recognized but its
	// sample encoding is not supported.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrSeekUnsupported means the source cannot seek, e.g. an MP3
	// stream of unknown length.
	ErrSeekUnsupported = errors.New("seek not supported by source")
)
