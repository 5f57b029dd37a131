// Package signal holds the mixable signal graph: samples, the stream
// clock, sources that generate audio, effects that transform it, and the
// strips that tie one source through an effect chain to an output routing.
package signal

// Sample is one audio value, either a mono scalar or a left/right pair.
// It is a pure value type with no identity.
type Sample struct {
	left   float32
	right  float32
	stereo bool
}

// Mono returns a single-channel sample.
func Mono(v float32) Sample {
	return Sample{left: v}
}

// Stereo returns a two-channel sample.
func Stereo(left, right float32) Sample {
	return Sample{left: left, right: right, stereo: true}
}

// IsStereo reports whether the sample carries two channels.
func (s Sample) IsStereo() bool { return s.stereo }

// AsMono folds the sample to one channel, averaging a stereo pair.
func (s Sample) AsMono() float32 {
	if s.stereo {
		return (s.left + s.right) / 2
	}
	return s.left
}

// AsStereo expands the sample to two channels, duplicating a mono value.
func (s Sample) AsStereo() (left, right float32) {
	if s.stereo {
		return s.left, s.right
	}
	return s.left, s.left
}

// Left returns the left channel (the scalar for mono samples).
func (s Sample) Left() float32 { return s.left }

// Right returns the right channel (the scalar for mono samples).
func (s Sample) Right() float32 {
	if s.stereo {
		return s.right
	}
	return s.left
}

// Clock is the per-callback stream state every generate/process call
// receives by value. SampleClock counts elapsed frame-groups since the
// stream started; it advances once per frame-group, never per interleaved
// sample, so every channel of one frame observes the same tick.
type Clock struct {
	SampleRate  int
	SampleClock uint64
	BufferSize  int
}
