package w4113

import (
	"log"

	"github.com/dreamcaster-music/w4113-sub000/signal"
)

// Notifier receives push updates about mixer and stream state, meant
// for a UI or control surface. Calls arrive from the dispatcher
// goroutine (and Frames from the frame fan-out goroutine), so
// implementations must not call back into the engine synchronously.
type Notifier interface {
	// StripList reports the full strip set after a structural change.
	StripList(strips []signal.StripSnapshot)
	// StripUpdated reports a single changed strip.
	StripUpdated(strip signal.StripSnapshot)
	// EffectUpdated reports a changed effect slot on a strip.
	EffectUpdated(stripID string, slot int, kind string)
	// StripRemoved reports a removed strip.
	StripRemoved(stripID string)
	// EffectRemoved reports a cleared effect slot.
	EffectRemoved(stripID string, slot int)
	// StreamRunning reports stream starts and stops.
	StreamRunning(running bool)
	// Frames delivers a batch of rendered channel-0 samples. The slice
	// is owned by the caller and only valid during the call.
	Frames(samples []float32)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) StripList([]signal.StripSnapshot)  {}
func (NopNotifier) StripUpdated(signal.StripSnapshot) {}
func (NopNotifier) EffectUpdated(string, int, string) {}
func (NopNotifier) StripRemoved(string)               {}
func (NopNotifier) EffectRemoved(string, int)         {}
func (NopNotifier) StreamRunning(bool)                {}
func (NopNotifier) Frames([]float32)                  {}

// LogNotifier writes structural notifications to the standard logger.
// Frame batches are not logged.
type LogNotifier struct{}

func (LogNotifier) StripList(strips []signal.StripSnapshot) {
	log.Printf("mixer: %d strips", len(strips))
}

func (LogNotifier) StripUpdated(strip signal.StripSnapshot) {
	log.Printf("mixer: strip %s updated (source %s)", strip.ID, strip.Source)
}

func (LogNotifier) EffectUpdated(stripID string, slot int, kind string) {
	log.Printf("mixer: strip %s slot %d -> %s", stripID, slot, kind)
}

func (LogNotifier) StripRemoved(stripID string) {
	log.Printf("mixer: strip %s removed", stripID)
}

func (LogNotifier) EffectRemoved(stripID string, slot int) {
	log.Printf("mixer: strip %s slot %d cleared", stripID, slot)
}

func (LogNotifier) StreamRunning(running bool) {
	log.Printf("stream: running=%v", running)
}

func (LogNotifier) Frames([]float32) {}
