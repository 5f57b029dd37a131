package w4113

import (
	"fmt"

	"github.com/dreamcaster-music/w4113-sub000/signal"
)

// sampleChain is the default effect chain a play-sample strip gets,
// slot by slot.
var sampleChain = []string{"bitcrusher", "delay", "gain", "clip"}

// Mixer mutations. All of these run on the dispatcher goroutine.

// playSample re-triggers the strip already playing path, or builds a
// new stereo strip for it.
func (e *Engine) playSample(path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.strips {
		snap := s.Snapshot()
		if snap.Source == "player" && snap.Path == path {
			err := s.Source(func(src signal.Source) error {
				return src.Command("play", nil)
			})
			if err != nil {
				return "", fmt.Errorf("re-trigger %s: %w", path, err)
			}
			e.notifier.StripUpdated(s.Snapshot())
			return s.ID(), nil
		}
	}

	player := signal.NewPlayer()
	strip := signal.NewStrip(player, signal.StereoOut(0, 1))
	for slot, kind := range sampleChain {
		effect, err := signal.NewEffect(kind)
		if err != nil {
			return "", err
		}
		strip.SetEffect(slot, effect)
	}

	err := strip.Source(func(src signal.Source) error {
		if err := src.Command("source", []string{path}); err != nil {
			return err
		}
		return src.Command("play", nil)
	})
	if err != nil {
		return "", fmt.Errorf("play %s: %w", path, err)
	}

	e.strips = append(e.strips, strip)
	e.publishLocked()
	e.notifier.StripList(e.snapshotsLocked())
	return strip.ID(), nil
}

func (e *Engine) addStrip(kind string, out signal.Output) (string, error) {
	src, err := signal.NewSource(kind)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	strip := signal.NewStrip(src, out)
	e.strips = append(e.strips, strip)
	e.publishLocked()
	e.notifier.StripList(e.snapshotsLocked())
	return strip.ID(), nil
}

func (e *Engine) removeStrip(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.strips {
		if s.ID() == id {
			e.strips = append(e.strips[:i], e.strips[i+1:]...)
			e.publishLocked()
			e.notifier.StripRemoved(id)
			return nil
		}
	}
	return fmt.Errorf("strip %s: %w", id, ErrUnknownStrip)
}

func (e *Engine) setEffect(stripID string, slot int, kind string) error {
	effect, err := signal.NewEffect(kind)
	if err != nil {
		return err
	}

	e.mu.RLock()
	strip, err := e.findStripLocked(stripID)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	strip.SetEffect(slot, effect)
	e.notifier.EffectUpdated(stripID, slot, kind)
	return nil
}

func (e *Engine) removeEffect(stripID string, slot int) error {
	e.mu.RLock()
	strip, err := e.findStripLocked(stripID)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	strip.RemoveEffect(slot)
	e.notifier.EffectRemoved(stripID, slot)
	return nil
}

func (e *Engine) setStripOutput(stripID string, out signal.Output) error {
	e.mu.RLock()
	strip, err := e.findStripLocked(stripID)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	strip.SetOutput(out)
	e.notifier.StripUpdated(strip.Snapshot())
	return nil
}

func (e *Engine) setControl(data setControlData) error {
	e.mu.RLock()
	strip, err := e.findStripLocked(data.StripID)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	effect := strip.EffectAt(data.Slot)
	if effect == nil {
		return fmt.Errorf("strip %s slot %d is empty", data.StripID, data.Slot)
	}

	name := data.Name
	if name == "" {
		name = signal.PrimaryControl(effect)
	}
	if err := effect.Control(name, data.Value, data.Min, data.Max); err != nil {
		return err
	}
	e.notifier.EffectUpdated(data.StripID, data.Slot, effect.Name())
	return nil
}

func (e *Engine) sourceCommand(stripID, cmd string, args []string) error {
	e.mu.RLock()
	strip, err := e.findStripLocked(stripID)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	err = strip.Source(func(src signal.Source) error {
		return src.Command(cmd, args)
	})
	if err != nil {
		return err
	}
	e.notifier.StripUpdated(strip.Snapshot())
	return nil
}

// snapshotsLocked builds the snapshot list. Callers hold mu.
func (e *Engine) snapshotsLocked() []signal.StripSnapshot {
	snaps := make([]signal.StripSnapshot, 0, len(e.strips))
	for _, s := range e.strips {
		snaps = append(snaps, s.Snapshot())
	}
	return snaps
}
