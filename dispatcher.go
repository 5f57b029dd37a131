package w4113

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/dreamcaster-music/w4113-sub000/config"
	"github.com/dreamcaster-music/w4113-sub000/signal"
	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// OperationType identifies a dispatcher operation.
type OperationType string

const (
	OpSetHost             OperationType = "set_host"
	OpSetOutputDevice     OperationType = "set_output_device"
	OpSetInputDevice      OperationType = "set_input_device"
	OpSetOutputStream     OperationType = "set_output_stream"
	OpSetInputStream      OperationType = "set_input_stream"
	OpSetOutputBufferSize OperationType = "set_output_buffer_size"
	OpSetInputBufferSize  OperationType = "set_input_buffer_size"
	OpPlaySample          OperationType = "play_sample"
	OpAddStrip            OperationType = "add_strip"
	OpRemoveStrip         OperationType = "remove_strip"
	OpSetEffect           OperationType = "set_effect"
	OpRemoveEffect        OperationType = "remove_effect"
	OpSetStripOutput      OperationType = "set_strip_output"
	OpSetControl          OperationType = "set_control"
	OpSourceCommand       OperationType = "source_command"
	OpReload              OperationType = "reload"
	OpStopStream          OperationType = "stop_stream"
)

// operation is one queued mutation with its reply channel.
type operation struct {
	Type     OperationType
	Data     interface{}
	Response chan result
}

type result struct {
	Data  interface{}
	Error error
}

// dispatcher serializes every engine mutation onto one goroutine, so
// strip topology and stream rebuilds never race each other.
type dispatcher struct {
	engine *Engine

	mu      sync.Mutex
	running bool

	operations chan operation
	stopChan   chan struct{}
	stopped    chan struct{}
}

func newDispatcher(engine *Engine) *dispatcher {
	return &dispatcher{
		engine:     engine,
		operations: make(chan operation, 64),
		stopChan:   make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (d *dispatcher) start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	go d.loop()
}

// stop tears the stream down as a final operation and halts the loop.
func (d *dispatcher) stop() error {
	err := d.engine.StopStream()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return err
	}
	d.running = false
	close(d.stopChan)
	<-d.stopped
	return err
}

func (d *dispatcher) loop() {
	defer close(d.stopped)
	for {
		select {
		case <-d.stopChan:
			return
		case op := <-d.operations:
			op.Response <- d.execute(op)
		}
	}
}

// do queues an operation and waits for its result.
func (d *dispatcher) do(t OperationType, data interface{}) (interface{}, error) {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return nil, ErrEngineClosed
	}

	response := make(chan result, 1)
	select {
	case d.operations <- operation{Type: t, Data: data, Response: response}:
	case <-d.stopChan:
		return nil, ErrEngineClosed
	}

	select {
	case r := <-response:
		return r.Data, r.Error
	case <-d.stopChan:
		return nil, ErrEngineClosed
	}
}

// Operation payloads.

type setEffectData struct {
	StripID string
	Slot    int
	Kind    string
}

type removeEffectData struct {
	StripID string
	Slot    int
}

type setStripOutputData struct {
	StripID string
	Output  signal.Output
}

type setControlData struct {
	StripID  string
	Slot     int
	Name     string
	Value    float32
	Min, Max float32
}

type sourceCommandData struct {
	StripID string
	Cmd     string
	Args    []string
}

type addStripData struct {
	Kind   string
	Output signal.Output
}

func (d *dispatcher) execute(op operation) result {
	e := d.engine
	switch op.Type {
	case OpSetHost:
		return result{Error: e.setConfigKeys(map[string]string{config.KeyHost: op.Data.(string)})}

	case OpSetOutputDevice:
		return result{Error: e.setConfigKeys(map[string]string{config.KeyOutputDevice: op.Data.(string)})}

	case OpSetInputDevice:
		return result{Error: e.setConfigKeys(map[string]string{config.KeyInputDevice: op.Data.(string)})}

	case OpSetOutputStream:
		spec := op.Data.(stream.Spec)
		return result{Error: e.setConfigKeys(map[string]string{
			config.KeyOutputChannels:   strconv.Itoa(spec.Channels),
			config.KeyOutputSampleRate: strconv.Itoa(spec.SampleRate),
			config.KeyOutputBufferSize: fmt.Sprintf("%d-%d", spec.BufferMin, spec.BufferMax),
		})}

	case OpSetInputStream:
		spec := op.Data.(stream.Spec)
		return result{Error: e.setConfigKeys(map[string]string{
			config.KeyInputChannels:   strconv.Itoa(spec.Channels),
			config.KeyInputSampleRate: strconv.Itoa(spec.SampleRate),
			config.KeyInputBufferSize: fmt.Sprintf("%d-%d", spec.BufferMin, spec.BufferMax),
		})}

	case OpSetOutputBufferSize:
		n := op.Data.(int)
		return result{Error: e.setConfigKeys(map[string]string{
			config.KeyOutputBufferSize: fmt.Sprintf("%d-%d", n, n),
		})}

	case OpSetInputBufferSize:
		n := op.Data.(int)
		return result{Error: e.setConfigKeys(map[string]string{
			config.KeyInputBufferSize: fmt.Sprintf("%d-%d", n, n),
		})}

	case OpPlaySample:
		id, err := e.playSample(op.Data.(string))
		return result{Data: id, Error: err}

	case OpAddStrip:
		data := op.Data.(addStripData)
		id, err := e.addStrip(data.Kind, data.Output)
		return result{Data: id, Error: err}

	case OpRemoveStrip:
		return result{Error: e.removeStrip(op.Data.(string))}

	case OpSetEffect:
		data := op.Data.(setEffectData)
		return result{Error: e.setEffect(data.StripID, data.Slot, data.Kind)}

	case OpRemoveEffect:
		data := op.Data.(removeEffectData)
		return result{Error: e.removeEffect(data.StripID, data.Slot)}

	case OpSetStripOutput:
		data := op.Data.(setStripOutputData)
		return result{Error: e.setStripOutput(data.StripID, data.Output)}

	case OpSetControl:
		data := op.Data.(setControlData)
		return result{Error: e.setControl(data)}

	case OpSourceCommand:
		data := op.Data.(sourceCommandData)
		return result{Error: e.sourceCommand(data.StripID, data.Cmd, data.Args)}

	case OpReload:
		return result{Error: e.reload()}

	case OpStopStream:
		return result{Error: e.stopStream()}

	default:
		return result{Error: fmt.Errorf("%q: %w", op.Type, ErrUnknownOperation)}
	}
}

// Public command surface. Each call blocks until the dispatcher has
// applied the operation.

// SetHost selects the host API by name. Takes effect at the next
// reload.
func (e *Engine) SetHost(name string) error {
	_, err := e.dispatcher.do(OpSetHost, name)
	return err
}

// SetOutputDevice selects the playback device by name.
func (e *Engine) SetOutputDevice(name string) error {
	_, err := e.dispatcher.do(OpSetOutputDevice, name)
	return err
}

// SetInputDevice selects the capture device by name.
func (e *Engine) SetInputDevice(name string) error {
	_, err := e.dispatcher.do(OpSetInputDevice, name)
	return err
}

// SetOutputStream stores the requested output stream shape, parsed from
// "<channels> <rate> <bufmin>-<bufmax>".
func (e *Engine) SetOutputStream(spec string) error {
	parsed, err := stream.ParseSpec(spec)
	if err != nil {
		return err
	}
	_, err = e.dispatcher.do(OpSetOutputStream, parsed)
	return err
}

// SetInputStream stores the requested input stream shape.
func (e *Engine) SetInputStream(spec string) error {
	parsed, err := stream.ParseSpec(spec)
	if err != nil {
		return err
	}
	_, err = e.dispatcher.do(OpSetInputStream, parsed)
	return err
}

// SetOutputBufferSize pins the output buffer to exactly n frames.
func (e *Engine) SetOutputBufferSize(n int) error {
	_, err := e.dispatcher.do(OpSetOutputBufferSize, n)
	return err
}

// SetInputBufferSize pins the input buffer to exactly n frames.
func (e *Engine) SetInputBufferSize(n int) error {
	_, err := e.dispatcher.do(OpSetInputBufferSize, n)
	return err
}

// PlaySample plays the audio file at path. A strip already playing the
// same file is re-triggered from the top; otherwise a new stereo strip
// is created with the standard effect chain. Returns the strip ID.
func (e *Engine) PlaySample(path string) (string, error) {
	data, err := e.dispatcher.do(OpPlaySample, path)
	if err != nil {
		return "", err
	}
	return data.(string), nil
}

// AddStrip creates a strip with a catalog source ("tone", "player") and
// the given routing, returning the strip ID.
func (e *Engine) AddStrip(kind string, out signal.Output) (string, error) {
	data, err := e.dispatcher.do(OpAddStrip, addStripData{Kind: kind, Output: out})
	if err != nil {
		return "", err
	}
	return data.(string), nil
}

// RemoveStrip removes the strip from the mixer.
func (e *Engine) RemoveStrip(id string) error {
	_, err := e.dispatcher.do(OpRemoveStrip, id)
	return err
}

// SetEffect places a catalog effect in the strip's chain slot.
func (e *Engine) SetEffect(stripID string, slot int, kind string) error {
	_, err := e.dispatcher.do(OpSetEffect, setEffectData{StripID: stripID, Slot: slot, Kind: kind})
	return err
}

// RemoveEffect clears the strip's chain slot.
func (e *Engine) RemoveEffect(stripID string, slot int) error {
	_, err := e.dispatcher.do(OpRemoveEffect, removeEffectData{StripID: stripID, Slot: slot})
	return err
}

// SetStripOutput replaces the strip's routing.
func (e *Engine) SetStripOutput(stripID string, out signal.Output) error {
	_, err := e.dispatcher.do(OpSetStripOutput, setStripOutputData{StripID: stripID, Output: out})
	return err
}

// SetControl updates a named parameter on the effect in the given slot.
// Min and max describe the sender's slider range.
func (e *Engine) SetControl(stripID string, slot int, name string, value, min, max float32) error {
	_, err := e.dispatcher.do(OpSetControl, setControlData{
		StripID: stripID, Slot: slot, Name: name, Value: value, Min: min, Max: max,
	})
	return err
}

// SourceCommand sends a control command to the strip's source, for
// example ("add", ["440"]) on a tone strip.
func (e *Engine) SourceCommand(stripID, cmd string, args []string) error {
	_, err := e.dispatcher.do(OpSourceCommand, sourceCommandData{StripID: stripID, Cmd: cmd, Args: args})
	return err
}

// Reload rebuilds the stream from the current configuration.
func (e *Engine) Reload() error {
	_, err := e.dispatcher.do(OpReload, nil)
	return err
}

// StopStream stops and closes the hardware stream, returning the engine
// to Idle. Strips are kept.
func (e *Engine) StopStream() error {
	_, err := e.dispatcher.do(OpStopStream, nil)
	return err
}

// setConfigKeys persists the given settings and flags a reload.
// Executed on the dispatcher goroutine.
func (e *Engine) setConfigKeys(kv map[string]string) error {
	for k, v := range kv {
		if err := e.store.Set(k, v); err != nil {
			return fmt.Errorf("store %s: %w", k, err)
		}
	}
	e.needsReload.Store(true)
	return nil
}
