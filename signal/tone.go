package signal

import (
	"fmt"
	"math"
	"strconv"
)

// toneFalloff is the per-tick amplitude decrement applied to voices that
// are fading out. Removing a frequency never silences it instantly; it
// fades over 1/toneFalloff ticks to avoid an audible click.
const toneFalloff = 0.01

type toneVoice struct {
	freq float64
	amp  float32
}

// Tone is an additive tone generator holding a mutable set of
// frequency/amplitude voices.
type Tone struct {
	voices []toneVoice

	lastTick uint64
	cached   Sample
	primed   bool
}

// NewTone returns a tone generator with no active voices.
func NewTone() *Tone {
	return &Tone{}
}

// Add starts a voice at the given frequency with full amplitude. Adding a
// frequency that is already active resets it to full amplitude.
func (t *Tone) Add(freq float64) {
	for i := range t.voices {
		if t.voices[i].freq == freq {
			t.voices[i].amp = 1.0
			return
		}
	}
	t.voices = append(t.voices, toneVoice{freq: freq, amp: 1.0})
}

// Remove begins fading out the given frequency. The voice is purged once
// its amplitude reaches zero. An amplitude strictly below full marks the
// voice as fading; the decay in Generate keys off that.
func (t *Tone) Remove(freq float64) {
	for i := range t.voices {
		if t.voices[i].freq == freq {
			t.voices[i].amp = 1.0 - toneFalloff
		}
	}
}

// Voices returns the current number of active voices, fading included.
func (t *Tone) Voices() int { return len(t.voices) }

// Generate sums all voices at the absolute clock position. Phase is
// computed directly from the sample clock rather than accumulated, so
// phase stays continuous across buffer boundaries with no per-buffer
// bookkeeping. Fading voices decay by toneFalloff per tick.
func (t *Tone) Generate(c Clock) Sample {
	if t.primed && c.SampleClock == t.lastTick {
		return t.cached
	}

	var sum float64
	for _, v := range t.voices {
		phase := 2 * math.Pi * v.freq * float64(c.SampleClock) / float64(c.SampleRate)
		sum += math.Sin(phase) * float64(v.amp)
	}

	kept := t.voices[:0]
	for _, v := range t.voices {
		if v.amp < 1.0 {
			v.amp -= toneFalloff
		}
		if v.amp > 0 {
			kept = append(kept, v)
		}
	}
	t.voices = kept

	s := float32(sum)
	t.cached = Stereo(s, s)
	t.lastTick = c.SampleClock
	t.primed = true
	return t.cached
}

func (t *Tone) Name() string { return "tone" }

// Command handles "add <freq>" and "remove <freq>".
func (t *Tone) Command(cmd string, args []string) error {
	switch cmd {
	case "add", "remove":
		if len(args) < 1 {
			return fmt.Errorf("tone: %s: missing frequency", cmd)
		}
		freq, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("tone: %s: frequency %q is not a number", cmd, args[0])
		}
		if cmd == "add" {
			t.Add(freq)
		} else {
			t.Remove(freq)
		}
		return nil
	default:
		return fmt.Errorf("tone: %q: %w", cmd, ErrUnsupportedCommand)
	}
}
