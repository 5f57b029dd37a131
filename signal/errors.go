package signal

import "errors"

var (
	// ErrUnsupportedCommand is returned by sources for commands they do
	// not implement.
	ErrUnsupportedCommand = errors.New("command not supported by this source")

	// ErrUnknownControl is returned when an effect has no control with
	// the requested name.
	ErrUnknownControl = errors.New("unknown effect control")

	// ErrUnknownKind is returned by the catalog constructors for names
	// outside the fixed source/effect catalog.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrNoSource is returned when a strip command addresses a strip
	// whose input is a bus rather than a source.
	ErrNoSource = errors.New("strip has no source input")
)
