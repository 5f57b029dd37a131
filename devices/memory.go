package devices

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// MemoryBackend is a scripted Backend for tests and offline runs: hosts,
// devices, and capability ranges are declared up front, and opened
// streams are driven manually.
type MemoryBackend struct {
	mu        sync.Mutex
	hosts     []Host
	devices   map[string][]Device
	ranges    map[string][]stream.ConfigRange
	defaults  map[string]stream.Config
	deviceErr map[string]error
	openErr   map[string]error
	streams   []*MemoryStream
}

// NewMemoryBackend returns an empty scripted backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		devices:   make(map[string][]Device),
		ranges:    make(map[string][]stream.ConfigRange),
		defaults:  make(map[string]stream.Config),
		deviceErr: make(map[string]error),
		openErr:   make(map[string]error),
	}
}

// AddHost declares a host.
func (b *MemoryBackend) AddHost(name string, def bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hosts = append(b.hosts, Host{Name: name, Default: def})
}

// AddDevice declares a device under its host with its capability ranges
// and platform default configuration.
func (b *MemoryBackend) AddDevice(d Device, ranges []stream.ConfigRange, def stream.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(d.Host)
	b.devices[key] = append(b.devices[key], d)
	b.ranges[d.Name] = ranges
	b.defaults[d.Name] = def
}

// SetDevicesError makes device enumeration fail for the named host.
func (b *MemoryBackend) SetDevicesError(host string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deviceErr[strings.ToLower(host)] = err
}

// SetOpenError makes OpenStream fail for the named device; a nil err
// clears the failure.
func (b *MemoryBackend) SetOpenError(device string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.openErr, device)
		return
	}
	b.openErr[device] = err
}

// Streams returns every stream opened so far, newest last.
func (b *MemoryBackend) Streams() []*MemoryStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*MemoryStream(nil), b.streams...)
}

// LastStream returns the most recently opened stream.
func (b *MemoryBackend) LastStream() *MemoryStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) == 0 {
		return nil
	}
	return b.streams[len(b.streams)-1]
}

func (b *MemoryBackend) Hosts() ([]Host, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Host(nil), b.hosts...), nil
}

func (b *MemoryBackend) DefaultHost() (Host, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.hosts {
		if h.Default {
			return h, nil
		}
	}
	if len(b.hosts) > 0 {
		return b.hosts[0], nil
	}
	return Host{}, fmt.Errorf("memory backend has no hosts")
}

func (b *MemoryBackend) Devices(host Host, dir Direction) ([]Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(host.Name)
	if err, ok := b.deviceErr[key]; ok {
		return nil, err
	}
	var devs []Device
	for _, d := range b.devices[key] {
		if d.Capable(dir) {
			devs = append(devs, d)
		}
	}
	return devs, nil
}

func (b *MemoryBackend) DefaultDevice(host Host, dir Direction) (Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	devs := b.devices[strings.ToLower(host.Name)]
	for _, d := range devs {
		if d.Capable(dir) && d.IsDefault(dir) {
			return d, true
		}
	}
	for _, d := range devs {
		if d.Capable(dir) {
			return d, true
		}
	}
	return Device{}, false
}

func (b *MemoryBackend) SupportedRanges(d Device, dir Direction) ([]stream.ConfigRange, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ranges, ok := b.ranges[d.Name]
	if !ok {
		return nil, fmt.Errorf("memory backend: no ranges for device %q", d.Name)
	}
	return append([]stream.ConfigRange(nil), ranges...), nil
}

func (b *MemoryBackend) DefaultConfig(d Device, dir Direction) (stream.Config, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, ok := b.defaults[d.Name]
	if !ok {
		return stream.Config{}, fmt.Errorf("memory backend: no default config for device %q", d.Name)
	}
	return cfg, nil
}

func (b *MemoryBackend) OpenStream(d Device, cfg stream.Config, fn func(out []float32)) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.openErr[d.Name]; ok {
		return nil, err
	}
	st := &MemoryStream{device: d.Name, cfg: cfg, fn: fn}
	b.streams = append(b.streams, st)
	return st, nil
}

// MemoryStream is a manually driven stream: tests call Render to invoke
// the callback the way the hardware would.
type MemoryStream struct {
	device string
	cfg    stream.Config
	fn     func(out []float32)

	mu      sync.Mutex
	running bool
	closed  bool
}

// Device returns the device the stream was opened on.
func (s *MemoryStream) Device() string { return s.device }

// Config returns the configuration the stream was opened with.
func (s *MemoryStream) Config() stream.Config { return s.cfg }

// Running reports whether the stream is started and not closed.
func (s *MemoryStream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.closed
}

// Closed reports whether the stream was closed.
func (s *MemoryStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *MemoryStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memory stream: start after close")
	}
	s.running = true
	return nil
}

func (s *MemoryStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *MemoryStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.closed = true
	return nil
}

// Render invokes the callback for one hardware buffer of the given frame
// count and returns the interleaved output.
func (s *MemoryStream) Render(frames int) []float32 {
	buf := make([]float32, frames*s.cfg.Channels)
	s.fn(buf)
	return buf
}
