package signal

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/delay"
)

// defaultDelayFrames is the catalog default echo distance, half a second
// at 48 kHz.
const defaultDelayFrames = 24000

// Delay echoes the input after a fixed number of ticks, feeding the echo
// back into its own buffer. Output is input plus the echo scaled by wet;
// wet defaults to 1 so the echo arrives at full level. One line per
// channel keeps stereo content intact.
type Delay struct {
	left   *delay.Line
	right  *delay.Line
	frames int

	feedback atomicF32
	wet      atomicF32
}

// NewDelay returns a delay with the given echo distance in ticks.
func NewDelay(frames int, feedback float32) (*Delay, error) {
	left, err := delay.New(frames)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	right, err := delay.New(frames)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	d := &Delay{left: left, right: right, frames: frames}
	d.feedback.Store(feedback)
	d.wet.Store(1.0)
	return d, nil
}

// Len returns the echo distance in ticks.
func (d *Delay) Len() int { return d.frames }

func (d *Delay) Process(s Sample, _ Clock) Sample {
	fb := float64(d.feedback.Load())
	wet := float64(d.wet.Load())
	l, r := s.AsStereo()

	outL := d.tap(d.left, float64(l), fb, wet)
	if !s.IsStereo() {
		// Keep the right line moving so a later stereo sample does not
		// meet a stale buffer.
		d.tap(d.right, float64(l), fb, wet)
		return Mono(outL)
	}
	outR := d.tap(d.right, float64(r), fb, wet)
	return Stereo(outL, outR)
}

// tap pops the oldest buffered value, pushes the input mixed with the
// fed-back echo, and returns input plus the scaled echo.
func (d *Delay) tap(line *delay.Line, in, feedback, wet float64) float32 {
	echo := line.Read(d.frames)
	line.Write(in + echo*feedback)
	return float32(in + echo*wet)
}

func (d *Delay) Name() string { return "delay" }

// Control accepts "feedback" and "wet".
func (d *Delay) Control(name string, value, _, _ float32) error {
	switch name {
	case "feedback":
		d.feedback.Store(value)
		return nil
	case "wet":
		d.wet.Store(value)
		return nil
	default:
		return fmt.Errorf("delay: %q: %w", name, ErrUnknownControl)
	}
}

// Reset clears both delay buffers.
func (d *Delay) Reset() {
	d.left.Reset()
	d.right.Reset()
}
