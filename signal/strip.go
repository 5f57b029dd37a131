package signal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ChainCapacity is the fixed number of effect slots per strip. Slot
// indices outside [0, ChainCapacity) are ignored, never errors.
const ChainCapacity = 10

// OutputKind discriminates strip output routings.
type OutputKind int

const (
	// OutMono routes the folded sample to one hardware channel.
	OutMono OutputKind = iota
	// OutStereo routes left/right to two hardware channels.
	OutStereo
	// OutBus routes into a nested bus. Bus routing is not implemented;
	// a bus output produces silence.
	OutBus
)

// Output is a strip's declared routing. Physical channel matching is the
// callback engine's job; the strip only reshapes to the declared arity.
type Output struct {
	Kind  OutputKind
	Left  int
	Right int
	Bus   int
}

// MonoOut routes to a single channel (carried in Left).
func MonoOut(channel int) Output {
	return Output{Kind: OutMono, Left: channel}
}

// StereoOut routes to a left and a right channel.
func StereoOut(left, right int) Output {
	return Output{Kind: OutStereo, Left: left, Right: right}
}

// BusOut routes into bus n.
func BusOut(n int) Output {
	return Output{Kind: OutBus, Bus: n}
}

func (o Output) String() string {
	switch o.Kind {
	case OutMono:
		return fmt.Sprintf("mono(%d)", o.Left)
	case OutStereo:
		return fmt.Sprintf("stereo(%d,%d)", o.Left, o.Right)
	default:
		return fmt.Sprintf("bus(%d)", o.Bus)
	}
}

type chainSlot struct {
	effect Effect
}

// Strip is one complete signal path: an input source (or bus), a
// fixed-capacity ordered effect chain, and an output routing.
//
// The strip owns its effects exclusively; the source sits behind a mutex
// because control-plane commands address it concurrently with the audio
// thread. Chain slots and the output routing are atomic pointers so the
// control plane can swap them while the callback iterates without locks
// on the real-time path.
type Strip struct {
	id string

	srcMu    sync.Mutex
	source   Source
	busInput int
	fromBus  bool

	chain [ChainCapacity]atomic.Pointer[chainSlot]
	out   atomic.Pointer[Output]
}

// NewStrip returns a strip reading from source with the given routing.
func NewStrip(source Source, out Output) *Strip {
	s := &Strip{id: uuid.NewString(), source: source}
	s.out.Store(&out)
	return s
}

// NewBusStrip returns a strip whose input is nested bus n.
func NewBusStrip(n int, out Output) *Strip {
	s := &Strip{id: uuid.NewString(), busInput: n, fromBus: true}
	s.out.Store(&out)
	return s
}

// ID returns the strip's stable identifier.
func (s *Strip) ID() string { return s.id }

// Output returns the current routing.
func (s *Strip) Output() Output { return *s.out.Load() }

// SetOutput replaces the routing.
func (s *Strip) SetOutput(o Output) { s.out.Store(&o) }

// SetEffect places an effect in the given slot, replacing whatever
// occupied it. Out-of-range slots are a no-op.
func (s *Strip) SetEffect(slot int, e Effect) {
	if slot < 0 || slot >= ChainCapacity {
		return
	}
	s.chain[slot].Store(&chainSlot{effect: e})
}

// RemoveEffect empties the given slot. Out-of-range slots are a no-op.
func (s *Strip) RemoveEffect(slot int) {
	if slot < 0 || slot >= ChainCapacity {
		return
	}
	s.chain[slot].Store(nil)
}

// EffectAt returns the effect in the given slot, or nil when the slot is
// empty or out of range.
func (s *Strip) EffectAt(slot int) Effect {
	if slot < 0 || slot >= ChainCapacity {
		return nil
	}
	if sl := s.chain[slot].Load(); sl != nil {
		return sl.effect
	}
	return nil
}

// Source runs fn with exclusive access to the strip's source, blocking
// until the audio thread's tap has finished. Control-plane commands go
// through here.
func (s *Strip) Source(fn func(Source) error) error {
	if s.fromBus {
		return ErrNoSource
	}
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	return fn(s.source)
}

// SourceName returns the source kind, or "bus" for bus-fed strips.
func (s *Strip) SourceName() string {
	if s.fromBus {
		return "bus"
	}
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	return s.source.Name()
}

// Process reads one sample from the input, runs it through every occupied
// slot in ascending order, and reshapes it to the declared output arity.
//
// The source is taken with a try-lock: a control-plane command holding it
// must never stall the audio deadline, so a contended tap degrades to
// silence for that one invocation. Bus inputs always yield silence.
func (s *Strip) Process(c Clock) Sample {
	var smp Sample
	switch {
	case s.fromBus:
		smp = Mono(0)
	case !s.srcMu.TryLock():
		smp = Mono(0)
	default:
		smp = s.source.Generate(c)
		s.srcMu.Unlock()
	}

	for i := range s.chain {
		if sl := s.chain[i].Load(); sl != nil {
			smp = sl.effect.Process(smp, c)
		}
	}

	switch s.Output().Kind {
	case OutMono:
		return Mono(smp.AsMono())
	case OutStereo:
		l, r := smp.AsStereo()
		return Stereo(l, r)
	default:
		return Mono(0)
	}
}
