package w4113

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dreamcaster-music/w4113-sub000/config"
	"github.com/dreamcaster-music/w4113-sub000/devices"
	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// reload tears down the current stream and rebuilds it from the stored
// configuration: resolve host and devices, negotiate the stream shape
// against the device's capability ranges, open, start. Runs on the
// dispatcher goroutine. On failure the engine lands in Failed with no
// stream; it stays down until the next reload request.
func (e *Engine) reload() error {
	e.setState(Reloading)
	e.teardownStream()

	if err := e.buildStream(); err != nil {
		e.setState(Failed)
		e.notifier.StreamRunning(false)
		e.handler.HandleError(fmt.Errorf("reload: %w", err))
		return err
	}

	e.setState(Running)
	e.notifier.StreamRunning(true)
	return nil
}

// stopStream closes the stream without rebuilding. Runs on the
// dispatcher goroutine.
func (e *Engine) stopStream() error {
	hadStream := e.str != nil
	e.teardownStream()
	e.setState(Idle)
	if hadStream {
		e.notifier.StreamRunning(false)
	}
	return nil
}

func (e *Engine) teardownStream() {
	if e.str == nil {
		return
	}
	if err := e.str.Stop(); err != nil {
		e.handler.HandleError(fmt.Errorf("stop stream: %w", err))
	}
	if err := e.str.Close(); err != nil {
		e.handler.HandleError(fmt.Errorf("close stream: %w", err))
	}
	e.str = nil
}

func (e *Engine) buildStream() error {
	host := e.configuredHost()

	outName := config.GetDefault(e.store, config.KeyOutputDevice, "default")
	outDev, ok := devices.ResolveDevice(e.backend, host, outName, devices.Output)
	if !ok {
		return fmt.Errorf("host %q has no usable output device", host.Name)
	}

	outCfg, err := e.negotiate(outDev, devices.Output)
	if err != nil {
		return err
	}

	// The input side is resolved and negotiated so its configuration is
	// known and persisted, but no capture stream is opened.
	inCfg, hasIn := e.negotiateInput(host)

	st, err := e.backend.OpenStream(outDev, outCfg, e.renderFunc(outCfg))
	if err != nil {
		return fmt.Errorf("open stream on %q: %w", outDev.Name, err)
	}
	if err := st.Start(); err != nil {
		if cerr := st.Close(); cerr != nil {
			e.handler.HandleError(fmt.Errorf("close unstarted stream: %w", cerr))
		}
		return fmt.Errorf("start stream on %q: %w", outDev.Name, err)
	}

	e.str = st

	e.mu.Lock()
	e.host = host
	e.outDev = outDev
	e.outCfg = outCfg
	e.inCfg = inCfg
	e.hasIn = hasIn
	e.mu.Unlock()
	return nil
}

func (e *Engine) negotiateInput(host devices.Host) (stream.Config, bool) {
	inName := config.GetDefault(e.store, config.KeyInputDevice, "default")
	inDev, ok := devices.ResolveDevice(e.backend, host, inName, devices.Input)
	if !ok {
		return stream.Config{}, false
	}
	cfg, err := e.negotiate(inDev, devices.Input)
	if err != nil {
		e.handler.HandleError(fmt.Errorf("input negotiation: %w", err))
		return stream.Config{}, false
	}
	e.mu.Lock()
	e.inDev = inDev
	e.mu.Unlock()
	return cfg, true
}

// negotiate derives the stream configuration for one device side from
// the stored preferences and the device's capability ranges.
func (e *Engine) negotiate(d devices.Device, dir devices.Direction) (stream.Config, error) {
	def, err := e.backend.DefaultConfig(d, dir)
	if err != nil {
		return stream.Config{}, fmt.Errorf("default config for %q: %w", d.Name, err)
	}

	ranges, err := e.backend.SupportedRanges(d, dir)
	if err != nil {
		// No capability data; the platform default is all we have.
		e.handler.HandleError(fmt.Errorf("capability ranges for %q: %w", d.Name, err))
		return def, nil
	}

	chKey, rateKey, bufKey := config.KeyOutputChannels, config.KeyOutputSampleRate, config.KeyOutputBufferSize
	if dir == devices.Input {
		chKey, rateKey, bufKey = config.KeyInputChannels, config.KeyInputSampleRate, config.KeyInputBufferSize
	}

	chPref := e.intPreference(chKey, def.Channels)
	ratePref := e.intPreference(rateKey, def.SampleRate)
	bufPref := e.bufferPreference(bufKey)

	return stream.Negotiate(ranges, chPref, ratePref, bufPref, def), nil
}

// intPreference reads a stored integer setting as an exact preference,
// falling back toward higher values; unset or unparsable settings
// request the fallback value.
func (e *Engine) intPreference(key string, fallback int) stream.Preference {
	if v, ok := e.store.Get(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return stream.Exact(n, stream.Higher)
		}
	}
	return stream.Exact(fallback, stream.Higher)
}

// bufferPreference reads a stored "min-max" buffer setting as an exact
// request for its lower bound. Unset or unparsable settings leave the
// buffer to the platform default.
func (e *Engine) bufferPreference(key string) stream.Preference {
	v, ok := e.store.Get(key)
	if !ok {
		return stream.Any()
	}
	lo, _, found := strings.Cut(v, "-")
	if !found {
		return stream.Any()
	}
	n, err := strconv.Atoi(lo)
	if err != nil || n <= 0 {
		return stream.Any()
	}
	return stream.Exact(n, stream.Higher)
}
