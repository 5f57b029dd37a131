package signal

import (
	"math"
	"testing"
)

func TestTonePhaseFollowsAbsoluteClock(t *testing.T) {
	tone := NewTone()
	tone.Add(440)

	c := Clock{SampleRate: 48000, SampleClock: 12345}
	got := tone.Generate(c)

	want := float32(math.Sin(2 * math.Pi * 440 * 12345 / 48000))
	l, r := got.AsStereo()
	if l != want || r != want {
		t.Fatalf("Generate = (%v, %v), want both %v", l, r, want)
	}
}

func TestToneSameTickIsCachedAndIdempotent(t *testing.T) {
	tone := NewTone()
	tone.Add(440)
	tone.Remove(440)

	c := Clock{SampleRate: 48000, SampleClock: 7}
	first := tone.Generate(c)
	second := tone.Generate(c)
	if first != second {
		t.Fatalf("two taps on one tick differ: %v vs %v", first, second)
	}
	// A cached tap must not have decayed the voice a second time.
	if tone.Voices() != 1 {
		t.Fatalf("voices = %d after double tap, want 1", tone.Voices())
	}
}

func TestToneRemoveFadesInsteadOfCutting(t *testing.T) {
	tone := NewTone()
	tone.Add(440)
	tone.Generate(Clock{SampleRate: 48000, SampleClock: 0})

	tone.Remove(440)

	// The fade steps by 0.01 per tick, so the voice must survive a while
	// and be gone within a bounded number of ticks.
	var tick uint64 = 1
	for ; tick <= 50; tick++ {
		tone.Generate(Clock{SampleRate: 48000, SampleClock: tick})
	}
	if tone.Voices() != 1 {
		t.Fatalf("voice purged after %d ticks, fade should still be running", tick-1)
	}

	for ; tick <= 200; tick++ {
		tone.Generate(Clock{SampleRate: 48000, SampleClock: tick})
		if tone.Voices() == 0 {
			return
		}
	}
	t.Fatalf("voice still alive after %d ticks, fade never completed", tick-1)
}

func TestToneReAddResetsAmplitude(t *testing.T) {
	tone := NewTone()
	tone.Add(440)
	tone.Remove(440)
	for tick := uint64(0); tick < 30; tick++ {
		tone.Generate(Clock{SampleRate: 48000, SampleClock: tick})
	}

	tone.Add(440)
	for tick := uint64(30); tick < 300; tick++ {
		tone.Generate(Clock{SampleRate: 48000, SampleClock: tick})
	}
	if tone.Voices() != 1 {
		t.Fatalf("re-added voice decayed away, want it held at full amplitude")
	}
}

func TestToneCommands(t *testing.T) {
	tone := NewTone()
	if err := tone.Command("add", []string{"440"}); err != nil {
		t.Fatalf("add command failed: %v", err)
	}
	if tone.Voices() != 1 {
		t.Fatalf("voices = %d after add, want 1", tone.Voices())
	}
	if err := tone.Command("remove", []string{"440"}); err != nil {
		t.Fatalf("remove command failed: %v", err)
	}
	if err := tone.Command("add", []string{"loud"}); err == nil {
		t.Fatalf("add with non-numeric frequency succeeded")
	}
	if err := tone.Command("warp", nil); err == nil {
		t.Fatalf("unknown command succeeded, want ErrUnsupportedCommand")
	}
}
