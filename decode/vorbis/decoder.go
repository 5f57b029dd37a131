// Package vorbis decodes Ogg/Vorbis files into PCM sources.
package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/dreamcaster-music/w4113-sub000/decode"
)

func init() {
	decode.Register(".ogg", Decoder{})
	decode.Register(".oga", Decoder{})
}

// Decoder decodes Ogg/Vorbis streams.
type Decoder struct{}

// Decode returns a streaming PCM source reading float samples directly
// from the vorbis synthesis.
func (Decoder) Decode(r io.ReadSeeker) (decode.Source, error) {
	rd, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	return &source{r: rd}, nil
}

type source struct {
	r *oggvorbis.Reader
}

func (s *source) SampleRate() int { return s.r.SampleRate() }

func (s *source) Channels() int { return s.r.Channels() }

func (s *source) ReadSamples(p []float32) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis: read pcm: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *source) Close() error { return nil }
