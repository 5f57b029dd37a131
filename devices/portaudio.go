package devices

import (
	"fmt"
	"sort"

	"github.com/gordonklaus/portaudio"

	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// probeRates are the sample rates probed when synthesizing capability
// ranges; the platform only answers yes/no per concrete format.
var probeRates = []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 176400, 192000}

// probeChannelLimit bounds how many channel counts get probed per device.
const probeChannelLimit = 8

// PortAudio is the hardware-backed Backend.
type PortAudio struct{}

// NewPortAudio initializes the platform audio layer. Callers must Close
// the returned backend to release it.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	return &PortAudio{}, nil
}

// Close terminates the platform audio layer.
func (p *PortAudio) Close() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("portaudio: terminate: %w", err)
	}
	return nil
}

func (p *PortAudio) Hosts() ([]Host, error) {
	apis, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("portaudio: list host apis: %w", err)
	}
	def, _ := portaudio.DefaultHostApi()

	hosts := make([]Host, 0, len(apis))
	for _, api := range apis {
		hosts = append(hosts, Host{
			Name:    api.Name,
			Default: def != nil && api.Name == def.Name,
		})
	}
	return hosts, nil
}

func (p *PortAudio) DefaultHost() (Host, error) {
	def, err := portaudio.DefaultHostApi()
	if err != nil {
		return Host{}, fmt.Errorf("portaudio: default host api: %w", err)
	}
	return Host{Name: def.Name, Default: true}, nil
}

func (p *PortAudio) Devices(host Host, dir Direction) ([]Device, error) {
	api, err := p.hostAPI(host)
	if err != nil {
		return nil, err
	}

	var devs []Device
	for _, info := range api.Devices {
		d := p.device(api, info)
		if d.Capable(dir) {
			devs = append(devs, d)
		}
	}
	return devs, nil
}

func (p *PortAudio) DefaultDevice(host Host, dir Direction) (Device, bool) {
	api, err := p.hostAPI(host)
	if err != nil {
		return Device{}, false
	}

	info := api.DefaultOutputDevice
	if dir == Input {
		info = api.DefaultInputDevice
	}
	if info != nil {
		if d := p.device(api, info); d.Capable(dir) {
			return d, true
		}
	}

	// No declared default; fall back to the first capable device.
	for _, info := range api.Devices {
		if d := p.device(api, info); d.Capable(dir) {
			return d, true
		}
	}
	return Device{}, false
}

// SupportedRanges probes the device with one format query per channel
// count and sample rate, collapsing the supported rates per channel count
// into one range. Buffer intervals are not reported by the platform.
func (p *PortAudio) SupportedRanges(d Device, dir Direction) ([]stream.ConfigRange, error) {
	info, err := p.deviceInfo(d)
	if err != nil {
		return nil, err
	}

	maxCh := info.MaxOutputChannels
	if dir == Input {
		maxCh = info.MaxInputChannels
	}
	if maxCh > probeChannelLimit {
		maxCh = probeChannelLimit
	}

	var ranges []stream.ConfigRange
	for ch := 1; ch <= maxCh; ch++ {
		var supported []int
		for _, rate := range probeRates {
			params := p.streamParameters(info, dir, ch, rate, 0)
			if err := portaudio.IsFormatSupported(params, p.formatArgs(dir)...); err == nil {
				supported = append(supported, rate)
			}
		}
		if len(supported) == 0 {
			continue
		}
		sort.Ints(supported)
		ranges = append(ranges, stream.ConfigRange{
			Channels: ch,
			MinRate:  supported[0],
			MaxRate:  supported[len(supported)-1],
		})
	}
	return ranges, nil
}

func (p *PortAudio) DefaultConfig(d Device, dir Direction) (stream.Config, error) {
	info, err := p.deviceInfo(d)
	if err != nil {
		return stream.Config{}, err
	}

	channels := info.MaxOutputChannels
	if dir == Input {
		channels = info.MaxInputChannels
	}
	if channels > 2 {
		channels = 2
	}
	return stream.Config{
		Channels:   channels,
		SampleRate: int(info.DefaultSampleRate),
		BufferSize: 512,
	}, nil
}

func (p *PortAudio) OpenStream(d Device, cfg stream.Config, fn func(out []float32)) (Stream, error) {
	info, err := p.deviceInfo(d)
	if err != nil {
		return nil, err
	}

	frames := portaudio.FramesPerBufferUnspecified
	if cfg.FixedBuffer {
		frames = cfg.BufferSize
	}
	params := p.streamParameters(info, Output, cfg.Channels, cfg.SampleRate, frames)

	st, err := portaudio.OpenStream(params, fn)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream on %q: %w", d.Name, err)
	}
	return &paStream{st}, nil
}

func (p *PortAudio) hostAPI(host Host) (*portaudio.HostApiInfo, error) {
	apis, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("portaudio: list host apis: %w", err)
	}
	for _, api := range apis {
		if api.Name == host.Name {
			return api, nil
		}
	}
	return nil, fmt.Errorf("portaudio: host %q not found", host.Name)
}

func (p *PortAudio) deviceInfo(d Device) (*portaudio.DeviceInfo, error) {
	api, err := p.hostAPI(Host{Name: d.Host})
	if err != nil {
		return nil, err
	}
	for _, info := range api.Devices {
		if info.Name == d.Name {
			return info, nil
		}
	}
	return nil, fmt.Errorf("portaudio: device %q not found under host %q", d.Name, d.Host)
}

func (p *PortAudio) device(api *portaudio.HostApiInfo, info *portaudio.DeviceInfo) Device {
	return Device{
		Name:              info.Name,
		Host:              api.Name,
		MaxInputChannels:  info.MaxInputChannels,
		MaxOutputChannels: info.MaxOutputChannels,
		DefaultSampleRate: int(info.DefaultSampleRate),
		DefaultInput:      api.DefaultInputDevice == info,
		DefaultOutput:     api.DefaultOutputDevice == info,
	}
}

func (p *PortAudio) streamParameters(info *portaudio.DeviceInfo, dir Direction, channels, rate, frames int) portaudio.StreamParameters {
	params := portaudio.StreamParameters{
		SampleRate:      float64(rate),
		FramesPerBuffer: frames,
	}
	side := portaudio.StreamDeviceParameters{
		Device:   info,
		Channels: channels,
	}
	if dir == Input {
		side.Latency = info.DefaultLowInputLatency
		params.Input = side
	} else {
		side.Latency = info.DefaultLowOutputLatency
		params.Output = side
	}
	return params
}

// formatArgs supplies the sample-format prototype for support probing:
// interleaved float32 on the probed side.
func (p *PortAudio) formatArgs(dir Direction) []interface{} {
	if dir == Input {
		return []interface{}{func(in []float32) {}}
	}
	return []interface{}{func(out []float32) {}}
}

type paStream struct {
	st *portaudio.Stream
}

func (s *paStream) Start() error { return s.st.Start() }
func (s *paStream) Stop() error  { return s.st.Stop() }
func (s *paStream) Close() error { return s.st.Close() }
