package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec is the user-facing stream request as carried on the command
// surface: "<channels> <sample_rate> <buffer_min>-<buffer_max>".
type Spec struct {
	Channels   int `json:"channels"`
	SampleRate int `json:"sampleRate"`
	BufferMin  int `json:"bufferMin"`
	BufferMax  int `json:"bufferMax"`
}

// ParseSpec validates and decodes a stream spec string. It rejects input
// with fewer than three whitespace-separated fields or any non-numeric
// field before anything else gets a chance to act on it.
func ParseSpec(s string) (Spec, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Spec{}, fmt.Errorf("stream spec %q: want \"<channels> <sample_rate> <buffer_min>-<buffer_max>\", got %d fields", s, len(fields))
	}

	channels, err := strconv.Atoi(fields[0])
	if err != nil {
		return Spec{}, fmt.Errorf("stream spec %q: channel count %q is not a number", s, fields[0])
	}
	rate, err := strconv.Atoi(fields[1])
	if err != nil {
		return Spec{}, fmt.Errorf("stream spec %q: sample rate %q is not a number", s, fields[1])
	}

	lo, hi, ok := strings.Cut(fields[2], "-")
	if !ok {
		return Spec{}, fmt.Errorf("stream spec %q: buffer range %q: want \"min-max\"", s, fields[2])
	}
	bufMin, err := strconv.Atoi(lo)
	if err != nil {
		return Spec{}, fmt.Errorf("stream spec %q: buffer min %q is not a number", s, lo)
	}
	bufMax, err := strconv.Atoi(hi)
	if err != nil {
		return Spec{}, fmt.Errorf("stream spec %q: buffer max %q is not a number", s, hi)
	}
	if bufMax < bufMin {
		return Spec{}, fmt.Errorf("stream spec %q: buffer max %d below min %d", s, bufMax, bufMin)
	}

	return Spec{Channels: channels, SampleRate: rate, BufferMin: bufMin, BufferMax: bufMax}, nil
}

// Preferences maps the spec to the three negotiation preferences in their
// precedence order.
func (sp Spec) Preferences() (channels, rate, buffer Preference) {
	return Exact(sp.Channels, Higher), Exact(sp.SampleRate, Higher), Exact(sp.BufferMin, Higher)
}

func (sp Spec) String() string {
	return fmt.Sprintf("%d %d %d-%d", sp.Channels, sp.SampleRate, sp.BufferMin, sp.BufferMax)
}
