package signal

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Source generates one Sample per clock tick. Implementations are stateful
// and not self-synchronizing: the owning strip serializes access.
type Source interface {
	// Generate produces the sample for the given clock tick. Calling it
	// again with the same tick must return the same value without
	// advancing internal state (strips may tap a source once per output
	// channel within one frame-group).
	Generate(Clock) Sample

	// Name identifies the source kind for snapshots and notifications.
	Name() string

	// Command applies a control-plane command ("play", "add 440", ...).
	// Sources return ErrUnsupportedCommand for commands outside their
	// vocabulary.
	Command(cmd string, args []string) error
}

// NewSource constructs a source from the fixed catalog.
func NewSource(kind string) (Source, error) {
	switch kind {
	case "tone":
		return NewTone(), nil
	case "player":
		return NewPlayer(), nil
	default:
		return nil, fmt.Errorf("source %q: %w", kind, ErrUnknownKind)
	}
}

// Func wraps an arbitrary function of the clock as a Source.
type Func struct {
	name string
	fn   func(Clock) Sample
}

// NewFunc returns a closure-backed source.
func NewFunc(name string, fn func(Clock) Sample) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Generate(c Clock) Sample { return f.fn(c) }

func (f *Func) Name() string { return f.name }

func (f *Func) Command(cmd string, args []string) error {
	return fmt.Errorf("%s: %q: %w", f.name, cmd, ErrUnsupportedCommand)
}

// atomicF32 is a float32 that the control plane can update while the
// audio thread reads it, without locking on the real-time path.
type atomicF32 struct {
	bits atomic.Uint32
}

func (a *atomicF32) Store(v float32) { a.bits.Store(math.Float32bits(v)) }

func (a *atomicF32) Load() float32 { return math.Float32frombits(a.bits.Load()) }
