package signal

import (
	"fmt"
	"math"
)

// Effect transforms one Sample per clock tick. Parameter updates arrive
// from the control plane while the audio thread is processing, so
// implementations keep their parameters in atomics; buffer state is only
// touched from Process.
type Effect interface {
	// Process transforms the sample for the given clock tick.
	Process(s Sample, c Clock) Sample

	// Name identifies the effect kind for snapshots and notifications.
	Name() string

	// Control applies a named value update. Min and max describe the
	// sender's slider range; current effects act only on value.
	Control(name string, value, min, max float32) error
}

// NewEffect constructs an effect from the fixed catalog with its default
// parameters.
func NewEffect(kind string) (Effect, error) {
	switch kind {
	case "gain":
		return NewGain(1.0), nil
	case "clip":
		return NewClip(1.0), nil
	case "bitcrusher":
		return NewBitCrusher(8), nil
	case "delay":
		return NewDelay(defaultDelayFrames, 0.5)
	default:
		return nil, fmt.Errorf("effect %q: %w", kind, ErrUnknownKind)
	}
}

// PrimaryControl returns the control name a bare value update addresses
// for each catalog effect.
func PrimaryControl(e Effect) string {
	switch e.(type) {
	case *Gain:
		return "gain"
	case *Clip:
		return "threshold"
	case *BitCrusher:
		return "bits"
	case *Delay:
		return "feedback"
	default:
		return ""
	}
}

// Gain scales both channels independently.
type Gain struct {
	amount atomicF32
}

// NewGain returns a gain effect with the given multiplier.
func NewGain(amount float32) *Gain {
	g := &Gain{}
	g.amount.Store(amount)
	return g
}

func (g *Gain) Process(s Sample, _ Clock) Sample {
	a := g.amount.Load()
	l, r := s.AsStereo()
	if !s.IsStereo() {
		return Mono(l * a)
	}
	return Stereo(l*a, r*a)
}

func (g *Gain) Name() string { return "gain" }

func (g *Gain) Control(name string, value, _, _ float32) error {
	if name != "gain" {
		return fmt.Errorf("gain: %q: %w", name, ErrUnknownControl)
	}
	g.amount.Store(value)
	return nil
}

// Clip clamps each channel to [-threshold, +threshold].
type Clip struct {
	threshold atomicF32
}

// NewClip returns a clip effect with the given threshold.
func NewClip(threshold float32) *Clip {
	c := &Clip{}
	c.threshold.Store(threshold)
	return c
}

func (c *Clip) Process(s Sample, _ Clock) Sample {
	t := c.threshold.Load()
	if s.IsStereo() {
		l, r := s.AsStereo()
		return Stereo(clampF(l, t), clampF(r, t))
	}
	return Mono(clampF(s.Left(), t))
}

func (c *Clip) Name() string { return "clip" }

func (c *Clip) Control(name string, value, _, _ float32) error {
	if name != "threshold" {
		return fmt.Errorf("clip: %q: %w", name, ErrUnknownControl)
	}
	c.threshold.Store(value)
	return nil
}

func clampF(v, t float32) float32 {
	if v > t {
		return t
	}
	if v < -t {
		return -t
	}
	return v
}

// BitCrusher quantizes each channel to b bits: floor(x*2^b) / 2^b.
type BitCrusher struct {
	bits atomicF32
}

// NewBitCrusher returns a bit crusher at the given depth.
func NewBitCrusher(bits float32) *BitCrusher {
	b := &BitCrusher{}
	b.bits.Store(bits)
	return b
}

func (b *BitCrusher) Process(s Sample, _ Clock) Sample {
	steps := float32(math.Pow(2, float64(b.bits.Load())))
	crush := func(v float32) float32 {
		return float32(math.Floor(float64(v*steps))) / steps
	}
	if s.IsStereo() {
		l, r := s.AsStereo()
		return Stereo(crush(l), crush(r))
	}
	return Mono(crush(s.Left()))
}

func (b *BitCrusher) Name() string { return "bitcrusher" }

func (b *BitCrusher) Control(name string, value, _, _ float32) error {
	if name != "bits" {
		return fmt.Errorf("bitcrusher: %q: %w", name, ErrUnknownControl)
	}
	b.bits.Store(value)
	return nil
}
