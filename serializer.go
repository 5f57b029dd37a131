package w4113

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dreamcaster-music/w4113-sub000/signal"
)

// stateVersion is the engine state format version.
const stateVersion = "1.0.0"

// EngineState is the complete serializable state of the engine: the
// persisted settings plus the mixer topology. Effect parameters are not
// captured; restored effects come back with their catalog defaults.
type EngineState struct {
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Settings  map[string]string      `json:"settings"`
	Strips    []signal.StripSnapshot `json:"strips"`
}

// Serializer captures and restores engine state as JSON.
type Serializer struct {
	engine *Engine
}

// NewSerializer creates a serializer bound to the engine.
func NewSerializer(engine *Engine) *Serializer {
	return &Serializer{engine: engine}
}

// GetState captures the current engine state.
func (s *Serializer) GetState() EngineState {
	e := s.engine

	settings := make(map[string]string)
	for _, k := range e.store.Keys() {
		if v, ok := e.store.Get(k); ok {
			settings[k] = v
		}
	}

	return EngineState{
		Version:   stateVersion,
		Timestamp: time.Now().Unix(),
		Settings:  settings,
		Strips:    e.StripSnapshots(),
	}
}

// SetState replaces the engine's settings and mixer topology with the
// given state. The stream is not rebuilt synchronously; the restored
// settings are applied at the next reload, which this flags.
func (s *Serializer) SetState(state EngineState) error {
	if state.Version != stateVersion {
		return fmt.Errorf("incompatible state version: got %s, expected %s",
			state.Version, stateVersion)
	}
	e := s.engine

	for k, v := range state.Settings {
		if err := e.store.Set(k, v); err != nil {
			return fmt.Errorf("restore setting %s: %w", k, err)
		}
	}

	// Drop the current topology, then rebuild strip by strip through
	// the dispatcher.
	for _, snap := range e.StripSnapshots() {
		if err := e.RemoveStrip(snap.ID); err != nil {
			return fmt.Errorf("clear strip %s: %w", snap.ID, err)
		}
	}

	for _, snap := range state.Strips {
		if err := s.restoreStrip(snap); err != nil {
			return fmt.Errorf("restore strip %s: %w", snap.ID, err)
		}
	}

	e.needsReload.Store(true)
	return nil
}

// restoreStrip rebuilds one strip from its snapshot. The restored strip
// gets a fresh ID.
func (s *Serializer) restoreStrip(snap signal.StripSnapshot) error {
	e := s.engine

	out, err := outputFromSnapshot(snap.Output)
	if err != nil {
		return err
	}

	id, err := e.AddStrip(snap.Source, out)
	if err != nil {
		return err
	}

	if snap.Source == "player" && snap.Path != "" {
		if err := e.SourceCommand(id, "source", []string{snap.Path}); err != nil {
			return err
		}
	}

	for _, eff := range snap.Effects {
		if err := e.SetEffect(id, eff.Slot, eff.Kind); err != nil {
			return err
		}
	}
	return nil
}

func outputFromSnapshot(o signal.OutputSnapshot) (signal.Output, error) {
	switch o.Kind {
	case "mono":
		if len(o.Channels) != 1 {
			return signal.Output{}, fmt.Errorf("mono output with %d channels", len(o.Channels))
		}
		return signal.MonoOut(o.Channels[0]), nil
	case "stereo":
		if len(o.Channels) != 2 {
			return signal.Output{}, fmt.Errorf("stereo output with %d channels", len(o.Channels))
		}
		return signal.StereoOut(o.Channels[0], o.Channels[1]), nil
	case "bus":
		return signal.BusOut(o.Bus), nil
	default:
		return signal.Output{}, fmt.Errorf("unknown output kind %q", o.Kind)
	}
}

// SaveToWriter writes the engine state as indented JSON.
func (s *Serializer) SaveToWriter(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.GetState()); err != nil {
		return fmt.Errorf("encode engine state: %w", err)
	}
	return nil
}

// LoadFromReader restores the engine from JSON state.
func (s *Serializer) LoadFromReader(r io.Reader) error {
	var state EngineState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("decode engine state: %w", err)
	}
	return s.SetState(state)
}

// SaveToFile writes the engine state to path.
func (s *Serializer) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return s.SaveToWriter(f)
}

// LoadFromFile restores the engine from the state file at path.
func (s *Serializer) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.LoadFromReader(f)
}
