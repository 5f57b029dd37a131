// Package devices enumerates audio backends ("hosts") and their devices,
// and resolves requested names to concrete handles with default-on-miss
// semantics: an unknown or "default" name always lands on the platform
// default rather than failing.
package devices

import (
	"strings"

	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// Direction selects one side of a device.
type Direction int

const (
	Output Direction = iota
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Host is one audio backend (host API).
type Host struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// Device is one audio endpoint under a host.
type Device struct {
	Name              string `json:"name"`
	Host              string `json:"host"`
	MaxInputChannels  int    `json:"inputChannelCount"`
	MaxOutputChannels int    `json:"outputChannelCount"`
	DefaultSampleRate int    `json:"defaultSampleRate"`
	DefaultInput      bool   `json:"isDefaultInput"`
	DefaultOutput     bool   `json:"isDefaultOutput"`
}

// CanInput reports whether the device has capture channels.
func (d Device) CanInput() bool { return d.MaxInputChannels > 0 }

// CanOutput reports whether the device has playback channels.
func (d Device) CanOutput() bool { return d.MaxOutputChannels > 0 }

// Capable reports whether the device supports the given direction.
func (d Device) Capable(dir Direction) bool {
	if dir == Input {
		return d.CanInput()
	}
	return d.CanOutput()
}

// IsDefault reports whether the device is the host default for the given
// direction.
func (d Device) IsDefault(dir Direction) bool {
	if dir == Input {
		return d.DefaultInput
	}
	return d.DefaultOutput
}

// Stream is a built hardware stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Backend is the platform audio layer. Implementations skip hosts or
// devices that error during their own enumeration rather than failing
// the whole listing.
type Backend interface {
	// Hosts lists the available backends.
	Hosts() ([]Host, error)
	// DefaultHost returns the platform default backend.
	DefaultHost() (Host, error)
	// Devices lists the host's devices capable of the given direction.
	Devices(host Host, dir Direction) ([]Device, error)
	// DefaultDevice returns the host's default device for the direction.
	DefaultDevice(host Host, dir Direction) (Device, bool)
	// SupportedRanges reports the device's advertised capability ranges.
	SupportedRanges(d Device, dir Direction) ([]stream.ConfigRange, error)
	// DefaultConfig returns the device's platform-reported default
	// stream configuration.
	DefaultConfig(d Device, dir Direction) (stream.Config, error)
	// OpenStream builds a stream on the device; fn is invoked once per
	// hardware buffer with the interleaved output samples.
	OpenStream(d Device, cfg stream.Config, fn func(out []float32)) (Stream, error)
}

// ResolveHost matches name case-insensitively against the enumerated
// hosts. "default" (any case), no match, and enumeration failure all
// yield the platform default host. It never fails outward.
func ResolveHost(b Backend, name string) Host {
	if !strings.EqualFold(name, "default") {
		hosts, err := b.Hosts()
		if err == nil {
			for _, h := range hosts {
				if strings.EqualFold(h.Name, name) {
					return h
				}
			}
		}
	}

	def, err := b.DefaultHost()
	if err != nil {
		return Host{Name: "default", Default: true}
	}
	return def
}

// ResolveDevice matches name case-insensitively against the host's
// devices for the direction, with the same default-on-miss policy as
// ResolveHost. The boolean is false only when the host has no usable
// device for the direction at all.
func ResolveDevice(b Backend, host Host, name string, dir Direction) (Device, bool) {
	if !strings.EqualFold(name, "default") {
		devs, err := b.Devices(host, dir)
		if err == nil {
			for _, d := range devs {
				if strings.EqualFold(d.Name, name) && d.Capable(dir) {
					return d, true
				}
			}
		}
	}

	return b.DefaultDevice(host, dir)
}
