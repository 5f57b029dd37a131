package analyze

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	// spectrumFloorDB is the reading for an empty or silent bin.
	spectrumFloorDB = -130.0
	// spectrumSmoothing blends each new frame into the displayed
	// magnitudes; higher means slower movement.
	spectrumSmoothing = 0.6
)

// Spectrum computes a smoothed magnitude spectrum from mono samples
// using a Hann-windowed FFT over a ring buffer, re-analyzed every hop.
type Spectrum struct {
	size int
	hop  int

	win     []float64
	winGain float64
	plan    *algofft.Plan[complex128]

	mu       sync.Mutex
	ring     []float64
	write    int
	filled   int
	toHop    int
	input    []complex128
	output   []complex128
	db       []float64
	hasFrame bool
}

// NewSpectrum builds an analyzer with the given FFT size (a power of
// two) and hop interval in samples.
func NewSpectrum(size, hop int) (*Spectrum, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("analyze: fft size %d is not a power of two", size)
	}
	if hop < 1 || hop > size {
		return nil, fmt.Errorf("analyze: hop %d out of range for fft size %d", hop, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("analyze: fft plan: %w", err)
	}

	win := window.Generate(window.TypeHann, size, window.WithPeriodic())
	var sum float64
	for _, w := range win {
		sum += w
	}

	s := &Spectrum{
		size:    size,
		hop:     hop,
		win:     win,
		winGain: sum / float64(size),
		plan:    plan,
		ring:    make([]float64, size),
		input:   make([]complex128, size),
		output:  make([]complex128, size),
		db:      make([]float64, size/2+1),
	}
	for i := range s.db {
		s.db[i] = spectrumFloorDB
	}
	return s, nil
}

// Bins returns the number of magnitude bins, size/2+1.
func (s *Spectrum) Bins() int { return s.size/2 + 1 }

// BinFrequency returns the center frequency of bin i at the given
// sample rate.
func (s *Spectrum) BinFrequency(i, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(s.size)
}

// Write feeds mono samples into the ring, re-analyzing once per hop.
func (s *Spectrum) Write(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range samples {
		s.ring[s.write] = float64(v)
		s.write = (s.write + 1) % s.size
		if s.filled < s.size {
			s.filled++
		}

		s.toHop--
		if s.toHop <= 0 && s.filled == s.size {
			s.analyzeLocked()
			s.toHop = s.hop
		}
	}
}

// analyzeLocked runs one windowed FFT over the ring contents, oldest
// sample first, and folds the result into the smoothed dB readings.
func (s *Spectrum) analyzeLocked() {
	start := s.write // oldest sample once the ring is full
	for i := 0; i < s.size; i++ {
		v := s.ring[(start+i)%s.size] * s.win[i]
		s.input[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.output, s.input); err != nil {
		return
	}

	norm := float64(s.size) * s.winGain
	for i := range s.db {
		mag := cmplx.Abs(s.output[i]) / norm
		if i > 0 && i < s.size/2 {
			mag *= 2 // fold the negative-frequency energy in
		}
		db := spectrumFloorDB
		if mag > 0 {
			db = 20 * math.Log10(mag)
			if db < spectrumFloorDB {
				db = spectrumFloorDB
			}
		}
		if !s.hasFrame {
			s.db[i] = db
		} else {
			s.db[i] = spectrumSmoothing*s.db[i] + (1-spectrumSmoothing)*db
		}
	}
	s.hasFrame = true
}

// MagnitudesDB copies the current per-bin readings in dBFS. Before the
// first full frame every bin reads the floor.
func (s *Spectrum) MagnitudesDB() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.db))
	copy(out, s.db)
	return out
}

// Ready reports whether at least one full frame has been analyzed.
func (s *Spectrum) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasFrame
}
