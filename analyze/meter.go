// Package analyze derives display values from the rendered output:
// level metering and a windowed FFT spectrum. Both consume interleaved
// sample batches copied off the render path, never the live buffers.
package analyze

import (
	"math"
	"sync"
)

// meterDecay is the per-batch falloff applied to the held peak so the
// reading drops smoothly after a transient.
const meterDecay = 0.95

// Meter tracks RMS level and a decaying peak over mono sample batches.
type Meter struct {
	mu   sync.Mutex
	rms  float64
	peak float64
}

// NewMeter returns a zeroed meter.
func NewMeter() *Meter { return &Meter{} }

// Write folds one batch of mono samples into the meter. The RMS reading
// is replaced per batch; the peak decays and is pushed back up by any
// louder sample.
func (m *Meter) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}

	var sum float64
	var peak float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	rms := math.Sqrt(sum / float64(len(samples)))

	m.mu.Lock()
	m.rms = rms
	m.peak *= meterDecay
	if peak > m.peak {
		m.peak = peak
	}
	m.mu.Unlock()
}

// RMS returns the level of the most recent batch.
func (m *Meter) RMS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rms
}

// Peak returns the decaying peak level.
func (m *Meter) Peak() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Reset clears both readings.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.rms = 0
	m.peak = 0
	m.mu.Unlock()
}
