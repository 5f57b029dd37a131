package decode

import "errors"

var (
	// ErrUnknownFormat is returned when no decoder is registered for a
	// file's extension.
	ErrUnknownFormat = errors.New("no decoder registered for format")

	// ErrNoAudio is returned when a container parses but holds no
	// decodable audio stream.
	ErrNoAudio = errors.New("no audio stream found")
)
