// Package mp3 decodes MPEG-1 layer III files into PCM sources.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/dreamcaster-music/w4113-sub000/decode"
)

func init() {
	decode.Register(".mp3", Decoder{})
}

// Decoder decodes MP3 streams.
type Decoder struct{}

// Decode returns a streaming PCM source. The underlying decoder always
// emits 16-bit little-endian stereo regardless of the encoded layout.
func (Decoder) Decode(r io.ReadSeeker) (decode.Source, error) {
	d, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return &source{dec: d}, nil
}

type source struct {
	dec *gomp3.Decoder
	raw []byte
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }

func (s *source) Channels() int { return 2 }

func (s *source) ReadSamples(p []float32) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	need := len(p) * 2
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	raw := s.raw[:need]

	n, err := io.ReadFull(s.dec, raw)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("mp3: read pcm: %w", err)
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		p[i] = float32(v) / 32768
	}
	if samples == 0 {
		return 0, io.EOF
	}
	return samples, nil
}

func (s *source) Close() error { return nil }
