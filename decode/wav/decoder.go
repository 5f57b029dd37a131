// Package wav decodes RIFF/WAVE files into PCM sources.
package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/dreamcaster-music/w4113-sub000/decode"
)

func init() {
	decode.Register(".wav", Decoder{})
}

// Decoder decodes WAV streams.
type Decoder struct{}

// Decode validates the RIFF header and returns a streaming PCM source.
func (Decoder) Decode(r io.ReadSeeker) (decode.Source, error) {
	d := gowav.NewDecoder(r)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, fmt.Errorf("wav: invalid file: %w", decode.ErrNoAudio)
	}
	if d.NumChans == 0 || d.BitDepth == 0 || d.SampleRate == 0 {
		return nil, fmt.Errorf("wav: malformed format chunk (%d channels, %d bits, %d Hz)",
			d.NumChans, d.BitDepth, d.SampleRate)
	}

	return &source{
		dec: d,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: int(d.NumChans),
				SampleRate:  int(d.SampleRate),
			},
			SourceBitDepth: int(d.BitDepth),
		},
		scale: float32(int64(1) << (d.BitDepth - 1)),
	}, nil
}

type source struct {
	dec   *gowav.Decoder
	buf   *audio.IntBuffer
	scale float32
}

func (s *source) SampleRate() int { return int(s.dec.SampleRate) }

func (s *source) Channels() int { return int(s.dec.NumChans) }

func (s *source) ReadSamples(p []float32) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < len(p) {
		s.buf.Data = make([]int, len(p))
	}
	s.buf.Data = s.buf.Data[:len(p)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav: read pcm: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		p[i] = float32(s.buf.Data[i]) / s.scale
	}
	return n, nil
}

func (s *source) Close() error { return nil }
