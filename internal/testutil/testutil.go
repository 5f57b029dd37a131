// Package testutil carries shared helpers for engine tests.
package testutil

import (
	"math"
	"os"
	"testing"

	"github.com/dreamcaster-music/w4113-sub000/devices"
	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// SkipUnlessEnv skips the test unless the given env var equals the wanted value.
func SkipUnlessEnv(t *testing.T, key, want string) {
	t.Helper()
	if os.Getenv(key) != want {
		t.Skipf("skipped: set %s=%s to run", key, want)
	}
}

// IsCI reports whether running under common CI environments.
func IsCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// SmallConfig returns a stream configuration tuned for fast tests.
func SmallConfig() stream.Config {
	return stream.Config{Channels: 2, SampleRate: 48000, BufferSize: 64, FixedBuffer: true}
}

// RMS computes the root mean square of interleaved samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// AssertRMSAbove renders buffers from the stream until the output RMS
// exceeds minRMS, failing after maxBuffers attempts.
func AssertRMSAbove(t *testing.T, st *devices.MemoryStream, frames int, minRMS float64, maxBuffers int) {
	t.Helper()
	if st == nil {
		t.Fatalf("stream is nil")
	}
	for i := 0; i < maxBuffers; i++ {
		if RMS(st.Render(frames)) >= minRMS {
			return
		}
	}
	t.Fatalf("signal below threshold: wanted RMS >= %.6f within %d buffers", minRMS, maxBuffers)
}

// AssertSilent renders one buffer and fails if any sample is nonzero.
func AssertSilent(t *testing.T, st *devices.MemoryStream, frames int) {
	t.Helper()
	out := st.Render(frames)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %v, want silence", i, v)
		}
	}
}
