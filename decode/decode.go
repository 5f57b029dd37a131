package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source is a stream of decoded PCM frames. Samples are float32 in
// [-1, 1], interleaved by channel.
type Source interface {
	// SampleRate returns the stream's sample rate in Hz.
	SampleRate() int
	// Channels returns the number of interleaved channels.
	Channels() int
	// ReadSamples fills p with up to len(p) samples and returns how many
	// were written. io.EOF signals the end of the stream.
	ReadSamples(p []float32) (int, error)
	// Close releases decoder resources.
	Close() error
}

// Decoder turns an encoded byte stream into a Source.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry maps file extensions (".wav") to decoders.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register associates a decoder with an extension, replacing any previous
// registration. The extension is matched case-insensitively.
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[strings.ToLower(ext)] = d
}

// Lookup returns the decoder registered for ext.
func (r *Registry) Lookup(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[strings.ToLower(ext)]
	return d, ok
}

// Open opens path with the decoder registered for its extension. The
// returned Source owns the underlying file; Close releases both.
func (r *Registry) Open(path string) (Source, error) {
	ext := filepath.Ext(path)
	dec, ok := r.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("open %s: extension %q: %w", path, ext, ErrUnknownFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

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

var defaultRegistry = NewRegistry()

// Register adds a decoder to the default registry. Format packages call
// this from init; importing a format package is enough to enable it.
func Register(ext string, d Decoder) {
	defaultRegistry.Register(ext, d)
}

// Open opens path using the default registry.
func Open(path string) (Source, error) {
	return defaultRegistry.Open(path)
}
