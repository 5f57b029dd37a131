// Package stream models audio stream configurations and resolves abstract
// preferences (minimum, maximum, exact-with-fallback) against the
// capability ranges a device advertises.
package stream

import "fmt"

// Alt selects the fallback search direction when an exact preference
// cannot be satisfied by any advertised range.
type Alt int

const (
	// Higher falls back to the nearest supported value above the request.
	Higher Alt = iota
	// Lower falls back to the nearest supported value below the request.
	Lower
)

func (a Alt) String() string {
	if a == Lower {
		return "lower"
	}
	return "higher"
}

type prefKind int

const (
	prefAny prefKind = iota
	prefMin
	prefMax
	prefExact
)

// Preference is a policy for resolving one scalar stream property.
// Construct with Any, Min, Max, or Exact. The zero value is Any.
type Preference struct {
	kind  prefKind
	value int
	alt   Alt
}

// Any expresses no preference: every candidate passes and the device
// default decides the concrete value.
func Any() Preference { return Preference{kind: prefAny} }

// Min prefers the smallest supported value.
func Min() Preference { return Preference{kind: prefMin} }

// Max prefers the largest supported value.
func Max() Preference { return Preference{kind: prefMax} }

// Exact prefers value, falling back in the given direction when no range
// contains it.
func Exact(value int, alt Alt) Preference {
	return Preference{kind: prefExact, value: value, alt: alt}
}

// IsExact reports whether the preference requests a specific value, and
// returns that value when it does.
func (p Preference) IsExact() (int, bool) {
	return p.value, p.kind == prefExact
}

func (p Preference) String() string {
	switch p.kind {
	case prefAny:
		return "any"
	case prefMin:
		return "min"
	case prefMax:
		return "max"
	default:
		return fmt.Sprintf("exact(%d, %s)", p.value, p.alt)
	}
}

// ConfigRange is one advertised capability entry: a fixed channel count,
// a supported sample-rate interval, and a buffer-size interval that some
// platforms cannot report (BufferKnown false).
type ConfigRange struct {
	Channels    int  `json:"channels"`
	MinRate     int  `json:"minRate"`
	MaxRate     int  `json:"maxRate"`
	MinBuffer   int  `json:"minBuffer"`
	MaxBuffer   int  `json:"maxBuffer"`
	BufferKnown bool `json:"bufferKnown"`
}

// Config is one fully resolved stream configuration. FixedBuffer reports
// whether BufferSize was explicitly requested; when false the platform
// default buffering applies and BufferSize is advisory.
type Config struct {
	Channels    int  `json:"channels"`
	SampleRate  int  `json:"sampleRate"`
	BufferSize  int  `json:"bufferSize"`
	FixedBuffer bool `json:"fixedBuffer"`
}

func (c Config) String() string {
	return fmt.Sprintf("%dch %dHz buffer=%d", c.Channels, c.SampleRate, c.BufferSize)
}
