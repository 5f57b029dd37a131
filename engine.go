// Package w4113 is a real-time audio mixing engine: a set of strips
// (source, effect chain, output routing) rendered into a hardware
// stream, controlled through a serialized dispatcher and configured
// from a persistent key/value store.
package w4113

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dreamcaster-music/w4113-sub000/analyze"
	"github.com/dreamcaster-music/w4113-sub000/config"
	"github.com/dreamcaster-music/w4113-sub000/devices"
	"github.com/dreamcaster-music/w4113-sub000/signal"
	"github.com/dreamcaster-music/w4113-sub000/stream"
)

const (
	// reloadPollInterval is how often the watcher checks whether a
	// config change requested a stream rebuild.
	reloadPollInterval = time.Second

	// frameQueueDepth bounds the render-to-analysis hand-off. The render
	// callback never blocks on it; overflow drops the batch.
	frameQueueDepth = 8

	spectrumSize = 1024
	spectrumHop  = 512
)

// stripSet is the immutable strip collection published to the render
// callback. The control plane builds a new set and swaps the pointer;
// the callback only ever loads.
type stripSet struct {
	strips []*signal.Strip
}

// Options configures a new Engine. Backend is required; everything else
// has a usable default.
type Options struct {
	Backend      devices.Backend
	Store        config.Store // defaults to an in-memory store
	Notifier     Notifier     // defaults to NopNotifier
	ErrorHandler ErrorHandler // defaults to DefaultErrorHandler

	// DisableReloadWatcher turns off the background poll that applies
	// config changes to the stream. Tests drive Reload directly.
	DisableReloadWatcher bool
}

// Engine owns the mixer state and the hardware stream. All mutations go
// through the dispatcher goroutine; queries read under a shared lock.
type Engine struct {
	backend  devices.Backend
	store    config.Store
	notifier Notifier
	handler  ErrorHandler

	dispatcher *dispatcher

	mu     sync.RWMutex
	strips []*signal.Strip
	state  State
	closed bool

	live atomic.Pointer[stripSet]

	// Stream state, touched only on the dispatcher goroutine.
	str    devices.Stream
	host   devices.Host
	outDev devices.Device
	inDev  devices.Device
	outCfg stream.Config
	inCfg  stream.Config
	hasIn  bool

	needsReload atomic.Bool

	frames   chan []float32
	meter    *analyze.Meter
	spectrum *analyze.Spectrum

	done chan struct{}
	wg   sync.WaitGroup
}

// NewEngine builds an idle engine. No stream is opened until the first
// reload, requested explicitly or by a config change.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("engine: Options.Backend is required")
	}
	if opts.Store == nil {
		opts.Store = config.NewMemoryStore()
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = &DefaultErrorHandler{}
	}

	spectrum, err := analyze.NewSpectrum(spectrumSize, spectrumHop)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		backend:  opts.Backend,
		store:    opts.Store,
		notifier: opts.Notifier,
		handler:  opts.ErrorHandler,
		state:    Idle,
		frames:   make(chan []float32, frameQueueDepth),
		meter:    analyze.NewMeter(),
		spectrum: spectrum,
		done:     make(chan struct{}),
	}
	e.live.Store(&stripSet{})

	e.dispatcher = newDispatcher(e)
	e.dispatcher.start()

	e.wg.Add(1)
	go e.fanOutFrames()

	if !opts.DisableReloadWatcher {
		e.wg.Add(1)
		go e.watchReload()
	}

	return e, nil
}

// Close stops the stream, the dispatcher, and all background work. The
// engine is unusable afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	// Tear down the stream on the dispatcher goroutine, then stop it.
	if err := e.dispatcher.stop(); err != nil {
		e.handler.HandleError(err)
	}

	close(e.done)
	e.wg.Wait()
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Hosts lists the backend's host APIs.
func (e *Engine) Hosts() ([]devices.Host, error) {
	return e.backend.Hosts()
}

// OutputDevices lists playback-capable devices under the configured
// host.
func (e *Engine) OutputDevices() ([]devices.Device, error) {
	return e.backend.Devices(e.configuredHost(), devices.Output)
}

// InputDevices lists capture-capable devices under the configured host.
func (e *Engine) InputDevices() ([]devices.Device, error) {
	return e.backend.Devices(e.configuredHost(), devices.Input)
}

func (e *Engine) configuredHost() devices.Host {
	name := config.GetDefault(e.store, config.KeyHost, "default")
	return devices.ResolveHost(e.backend, name)
}

// OutputConfig returns the negotiated output stream configuration; the
// boolean is false before the first successful reload.
func (e *Engine) OutputConfig() (stream.Config, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.outCfg, e.state == Running
}

// InputConfig returns the negotiated input configuration, when an input
// device was available at the last reload.
func (e *Engine) InputConfig() (stream.Config, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.inCfg, e.hasIn
}

// OutputDevice returns the device the stream was last built on; the
// boolean is false while the engine has never reached Running.
func (e *Engine) OutputDevice() (devices.Device, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.outDev, e.outDev.Name != ""
}

// InputDevice returns the capture device resolved at the last reload.
func (e *Engine) InputDevice() (devices.Device, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.inDev, e.hasIn
}

// Meter returns the output level meter fed from channel 0.
func (e *Engine) Meter() *analyze.Meter { return e.meter }

// Spectrum returns the output spectrum analyzer fed from channel 0.
func (e *Engine) Spectrum() *analyze.Spectrum { return e.spectrum }

// StripSnapshots returns the serializable view of every strip.
func (e *Engine) StripSnapshots() []signal.StripSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	snaps := make([]signal.StripSnapshot, 0, len(e.strips))
	for _, s := range e.strips {
		snaps = append(snaps, s.Snapshot())
	}
	return snaps
}

// Store exposes the engine's settings store.
func (e *Engine) Store() config.Store { return e.store }

// findStripLocked returns the strip with the given ID. Callers hold mu.
func (e *Engine) findStripLocked(id string) (*signal.Strip, error) {
	for _, s := range e.strips {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("strip %s: %w", id, ErrUnknownStrip)
}

// publishLocked swaps the render callback's strip set. Callers hold mu.
func (e *Engine) publishLocked() {
	set := &stripSet{strips: make([]*signal.Strip, len(e.strips))}
	copy(set.strips, e.strips)
	e.live.Store(set)
}

// fanOutFrames moves rendered batches from the callback to the
// analyzers and the notifier, off the real-time path.
func (e *Engine) fanOutFrames() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case batch := <-e.frames:
			e.meter.Write(batch)
			e.spectrum.Write(batch)
			e.notifier.Frames(batch)
		}
	}
}

// watchReload applies pending config changes to the stream once per
// poll interval.
func (e *Engine) watchReload() {
	defer e.wg.Done()
	t := time.NewTicker(reloadPollInterval)
	defer t.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-t.C:
			if e.needsReload.CompareAndSwap(true, false) {
				// Failures are routed to the error handler by reload.
				_ = e.Reload()
			}
		}
	}
}
