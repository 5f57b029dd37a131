package signal

import (
	"testing"
)

func constantSource(v float32) *Func {
	return NewFunc("constant", func(Clock) Sample { return Mono(v) })
}

func TestStripChainRunsInSlotOrder(t *testing.T) {
	s := NewStrip(constantSource(0.4), MonoOut(0))
	s.SetEffect(0, NewGain(2.0)) // 0.8
	s.SetEffect(5, NewClip(0.5)) // 0.5, empty slots in between skipped

	if got := s.Process(testClock).AsMono(); got != 0.5 {
		t.Fatalf("Process = %v, want 0.5 (gain then clip)", got)
	}
}

func TestStripSetEffectReplaces(t *testing.T) {
	s := NewStrip(constantSource(1), MonoOut(0))
	s.SetEffect(3, NewGain(2.0))
	s.SetEffect(3, NewGain(0.5))

	if got := s.Process(testClock).AsMono(); got != 0.5 {
		t.Fatalf("Process = %v, want 0.5: second SetEffect must replace, not stack", got)
	}
	if e := s.EffectAt(3); e == nil || e.Name() != "gain" {
		t.Fatalf("EffectAt(3) = %v", e)
	}
}

func TestStripOutOfRangeSlotsAreNoOps(t *testing.T) {
	s := NewStrip(constantSource(1), MonoOut(0))
	s.SetEffect(-1, NewGain(0))
	s.SetEffect(ChainCapacity, NewGain(0))
	s.RemoveEffect(-1)
	s.RemoveEffect(ChainCapacity)

	if got := s.Process(testClock).AsMono(); got != 1 {
		t.Fatalf("Process = %v, out-of-range slots must not take effect", got)
	}
	if s.EffectAt(-1) != nil || s.EffectAt(ChainCapacity) != nil {
		t.Fatalf("EffectAt out of range returned an effect")
	}
}

func TestStripRemoveEffect(t *testing.T) {
	s := NewStrip(constantSource(1), MonoOut(0))
	s.SetEffect(0, NewGain(0.5))
	s.RemoveEffect(0)

	if got := s.Process(testClock).AsMono(); got != 1 {
		t.Fatalf("Process = %v after RemoveEffect, want untouched 1", got)
	}
}

func TestStripOutputShaping(t *testing.T) {
	src := NewFunc("pan", func(Clock) Sample { return Stereo(1, 0) })

	mono := NewStrip(src, MonoOut(3))
	if got := mono.Process(testClock); got.IsStereo() || got.AsMono() != 0.5 {
		t.Fatalf("mono-shaped Process = %v, want folded Mono(0.5)", got)
	}

	stereo := NewStrip(src, StereoOut(0, 1))
	if got := stereo.Process(testClock); !got.IsStereo() || got.Left() != 1 || got.Right() != 0 {
		t.Fatalf("stereo-shaped Process = %v, want Stereo(1, 0)", got)
	}
}

func TestStripBusRoutingIsSilent(t *testing.T) {
	in := NewBusStrip(2, MonoOut(0))
	if got := in.Process(testClock).AsMono(); got != 0 {
		t.Fatalf("bus-fed Process = %v, want silence", got)
	}
	if in.SourceName() != "bus" {
		t.Fatalf("SourceName = %q, want bus", in.SourceName())
	}
	if err := in.Source(func(Source) error { return nil }); err != ErrNoSource {
		t.Fatalf("Source on bus strip = %v, want ErrNoSource", err)
	}

	out := NewStrip(constantSource(1), BusOut(1))
	if got := out.Process(testClock).AsMono(); got != 0 {
		t.Fatalf("bus-routed Process = %v, want silence", got)
	}
}

func TestStripContendedSourceDegradesToSilence(t *testing.T) {
	s := NewStrip(constantSource(1), MonoOut(0))

	err := s.Source(func(Source) error {
		// The control plane holds the source; a concurrent audio tap
		// must skip rather than block.
		if got := s.Process(testClock).AsMono(); got != 0 {
			t.Fatalf("contended Process = %v, want silence", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}

	if got := s.Process(testClock).AsMono(); got != 1 {
		t.Fatalf("uncontended Process = %v, want 1", got)
	}
}

func TestStripSnapshot(t *testing.T) {
	s := NewStrip(NewTone(), StereoOut(0, 1))
	s.SetEffect(0, NewBitCrusher(8))
	s.SetEffect(2, NewGain(1))

	snap := s.Snapshot()
	if snap.ID != s.ID() || snap.Source != "tone" {
		t.Fatalf("snapshot identity = %+v", snap)
	}
	if snap.Output.Kind != "stereo" || len(snap.Output.Channels) != 2 {
		t.Fatalf("snapshot output = %+v", snap.Output)
	}
	if len(snap.Effects) != 2 || snap.Effects[0].Kind != "bitcrusher" || snap.Effects[1].Slot != 2 {
		t.Fatalf("snapshot effects = %+v", snap.Effects)
	}
}
