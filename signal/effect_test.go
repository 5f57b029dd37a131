package signal

import (
	"errors"
	"testing"
)

var testClock = Clock{SampleRate: 48000, BufferSize: 512}

func TestGainScalesBothChannelsIndependently(t *testing.T) {
	g := NewGain(2.0)
	got := g.Process(Stereo(0.25, -0.125), testClock)
	if got.Left() != 0.5 || got.Right() != -0.25 {
		t.Fatalf("Process = (%v, %v), want (0.5, -0.25)", got.Left(), got.Right())
	}

	mono := g.Process(Mono(0.25), testClock)
	if mono.IsStereo() || mono.AsMono() != 0.5 {
		t.Fatalf("mono Process = %v, want Mono(0.5)", mono)
	}
}

func TestClipClampsToThreshold(t *testing.T) {
	c := NewClip(0.5)
	got := c.Process(Stereo(0.75, -0.75), testClock)
	if got.Left() != 0.5 || got.Right() != -0.5 {
		t.Fatalf("Process = (%v, %v), want (0.5, -0.5)", got.Left(), got.Right())
	}

	passthrough := c.Process(Stereo(0.25, -0.25), testClock)
	if passthrough.Left() != 0.25 || passthrough.Right() != -0.25 {
		t.Fatalf("in-range sample modified: %v", passthrough)
	}
}

func TestBitCrusherQuantizes(t *testing.T) {
	b := NewBitCrusher(2)
	// floor(0.3 * 4) / 4 = 0.25
	got := b.Process(Mono(0.3), testClock)
	if got.AsMono() != 0.25 {
		t.Fatalf("Process(0.3) = %v, want 0.25", got.AsMono())
	}
	// floor(-0.3 * 4) / 4 = -0.5
	got = b.Process(Mono(-0.3), testClock)
	if got.AsMono() != -0.5 {
		t.Fatalf("Process(-0.3) = %v, want -0.5", got.AsMono())
	}
}

func TestEffectControls(t *testing.T) {
	g := NewGain(1.0)
	if err := g.Control("gain", 3.0, 0, 10); err != nil {
		t.Fatalf("gain control failed: %v", err)
	}
	if got := g.Process(Mono(1), testClock).AsMono(); got != 3.0 {
		t.Fatalf("gain after control = %v, want 3.0", got)
	}

	if err := g.Control("wobble", 1, 0, 1); !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("unknown control = %v, want ErrUnknownControl", err)
	}
}

func TestEffectCatalog(t *testing.T) {
	for _, kind := range []string{"gain", "clip", "bitcrusher", "delay"} {
		e, err := NewEffect(kind)
		if err != nil {
			t.Fatalf("NewEffect(%q) failed: %v", kind, err)
		}
		if e.Name() != kind {
			t.Fatalf("NewEffect(%q).Name() = %q", kind, e.Name())
		}
		if PrimaryControl(e) == "" {
			t.Fatalf("catalog effect %q has no primary control", kind)
		}
	}

	if _, err := NewEffect("reverb"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("NewEffect(reverb) = %v, want ErrUnknownKind", err)
	}
}
