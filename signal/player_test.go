package signal

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreamcaster-music/w4113-sub000/decode"
)

type rampSource struct {
	next float32
	left int
}

func (s *rampSource) SampleRate() int { return 48000 }
func (s *rampSource) Channels() int   { return 2 }
func (s *rampSource) Close() error    { return nil }

func (s *rampSource) ReadSamples(p []float32) (int, error) {
	n := 0
	for n < len(p) && s.left > 0 {
		p[n] = s.next
		s.next += 0.125
		s.left--
		n++
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

type rampDecoder struct {
	frames int
}

func (d rampDecoder) Decode(io.ReadSeeker) (decode.Source, error) {
	return &rampSource{left: d.frames * 2}, nil
}

func writeRampFixture(t *testing.T, frames int) string {
	t.Helper()
	decode.Register(".ramp", rampDecoder{frames: frames})
	path := filepath.Join(t.TempDir(), "clip.ramp")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestPlayerSilentUntilPlay(t *testing.T) {
	p := NewPlayer()
	if got := p.Generate(Clock{SampleRate: 48000}).AsMono(); got != 0 {
		t.Fatalf("unassigned player produced %v, want silence", got)
	}

	if err := p.Command("play", nil); err == nil {
		t.Fatalf("play with no source succeeded")
	}
}

func TestPlayerDecodesOneFramePerTick(t *testing.T) {
	path := writeRampFixture(t, 4)
	p := NewPlayer()
	if err := p.Command("source", []string{path}); err != nil {
		t.Fatalf("source command failed: %v", err)
	}
	if p.Playing() {
		t.Fatalf("assigning a source must not start playback")
	}
	if err := p.Command("play", nil); err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	c := Clock{SampleRate: 48000, SampleClock: 1}
	first := p.Generate(c)
	if first.Left() != 0 || first.Right() != 0.125 {
		t.Fatalf("first frame = (%v, %v), want (0, 0.125)", first.Left(), first.Right())
	}

	// Same tick: cached, decode position must not advance.
	again := p.Generate(c)
	if again != first {
		t.Fatalf("same-tick tap = %v, want cached %v", again, first)
	}

	c.SampleClock++
	second := p.Generate(c)
	if second.Left() != 0.25 || second.Right() != 0.375 {
		t.Fatalf("second frame = (%v, %v), want (0.25, 0.375)", second.Left(), second.Right())
	}
}

func TestPlayerStopsAtEndOfStream(t *testing.T) {
	path := writeRampFixture(t, 2)
	p := NewPlayer()
	if err := p.Command("source", []string{path}); err != nil {
		t.Fatalf("source command failed: %v", err)
	}
	if err := p.Command("play", nil); err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	c := Clock{SampleRate: 48000, SampleClock: 1}
	for i := 0; i < 2; i++ {
		p.Generate(c)
		c.SampleClock++
	}

	if got := p.Generate(c).AsMono(); got != 0 {
		t.Fatalf("past-end Generate = %v, want silence", got)
	}
	if p.Playing() {
		t.Fatalf("player still playing past end of stream")
	}
}

func TestPlayerPlayRestartsFromTheTop(t *testing.T) {
	path := writeRampFixture(t, 8)
	p := NewPlayer()
	if err := p.Command("source", []string{path}); err != nil {
		t.Fatalf("source command failed: %v", err)
	}
	if err := p.Command("play", nil); err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	c := Clock{SampleRate: 48000, SampleClock: 1}
	p.Generate(c)
	c.SampleClock++
	p.Generate(c)

	// Re-trigger.
	if err := p.Command("play", nil); err != nil {
		t.Fatalf("re-trigger play failed: %v", err)
	}
	c.SampleClock++
	got := p.Generate(c)
	if got.Left() != 0 || got.Right() != 0.125 {
		t.Fatalf("after re-trigger frame = (%v, %v), want the stream start", got.Left(), got.Right())
	}
}

func TestPlayerStopCommand(t *testing.T) {
	path := writeRampFixture(t, 8)
	p := NewPlayer()
	p.Command("source", []string{path})
	p.Command("play", nil)

	if err := p.Command("stop", nil); err != nil {
		t.Fatalf("stop command failed: %v", err)
	}
	if got := p.Generate(Clock{SampleRate: 48000, SampleClock: 9}).AsMono(); got != 0 {
		t.Fatalf("stopped player produced %v, want silence", got)
	}
}
