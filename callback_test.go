package w4113

import (
	"testing"
	"time"

	"github.com/dreamcaster-music/w4113-sub000/internal/testutil"
	"github.com/dreamcaster-music/w4113-sub000/signal"
)

// injectStrip registers a pre-built strip with the mixer, bypassing the
// source catalog so tests can use closure sources.
func injectStrip(e *Engine, s *signal.Strip) {
	e.mu.Lock()
	e.strips = append(e.strips, s)
	e.publishLocked()
	e.mu.Unlock()
}

func constSource(v float32) *signal.Func {
	return signal.NewFunc("const", func(signal.Clock) signal.Sample {
		return signal.Mono(v)
	})
}

func TestRenderInterleavesStripOutputs(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	injectStrip(e, signal.NewStrip(constSource(0.5), signal.MonoOut(0)))
	injectStrip(e, signal.NewStrip(constSource(0.25), signal.MonoOut(1)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	out := backend.LastStream().Render(4)
	if len(out) != 8 {
		t.Fatalf("rendered %d samples, want 8", len(out))
	}
	for f := 0; f < 4; f++ {
		if out[f*2] != 0.5 || out[f*2+1] != 0.25 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, 0.25)", f, out[f*2], out[f*2+1])
		}
	}
}

func TestRenderStereoStripCoversBothChannels(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	src := signal.NewFunc("pan", func(signal.Clock) signal.Sample {
		return signal.Stereo(0.75, -0.75)
	})
	injectStrip(e, signal.NewStrip(src, signal.StereoOut(0, 1)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	out := backend.LastStream().Render(2)
	if out[0] != 0.75 || out[1] != -0.75 {
		t.Fatalf("frame = (%v, %v), want (0.75, -0.75)", out[0], out[1])
	}
}

func TestRenderLastWriterWinsPerChannel(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	injectStrip(e, signal.NewStrip(constSource(0.25), signal.MonoOut(0)))
	injectStrip(e, signal.NewStrip(constSource(0.5), signal.MonoOut(0)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	out := backend.LastStream().Render(1)
	if out[0] != 0.5 {
		t.Fatalf("contested channel = %v, want the later strip's 0.5", out[0])
	}
}

func TestRenderBusStripStaysSilent(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	injectStrip(e, signal.NewStrip(constSource(0.9), signal.BusOut(3)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	testutil.AssertSilent(t, backend.LastStream(), 2)
}

func TestRenderIgnoresOutOfRangeChannels(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	injectStrip(e, signal.NewStrip(constSource(0.5), signal.MonoOut(7)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	testutil.AssertSilent(t, backend.LastStream(), 2)
}

func TestRenderProducesSignalFromToneStrip(t *testing.T) {
	e, backend, _ := newTestEngine(t)

	id, err := e.AddStrip("tone", signal.StereoOut(0, 1))
	if err != nil {
		t.Fatalf("AddStrip failed: %v", err)
	}
	if err := e.SourceCommand(id, "add", []string{"440"}); err != nil {
		t.Fatalf("SourceCommand failed: %v", err)
	}
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	testutil.AssertRMSAbove(t, backend.LastStream(), 512, 0.1, 4)
}

func TestRenderClockAdvancesOncePerFrame(t *testing.T) {
	e, backend, _ := newTestEngine(t)

	var ticks []uint64
	src := signal.NewFunc("probe", func(c signal.Clock) signal.Sample {
		ticks = append(ticks, c.SampleClock)
		return signal.Mono(0)
	})
	injectStrip(e, signal.NewStrip(src, signal.MonoOut(0)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	st := backend.LastStream()
	st.Render(4)
	st.Render(4)

	if len(ticks) != 8 {
		t.Fatalf("source invoked %d times, want once per frame (8)", len(ticks))
	}
	for i, tick := range ticks {
		if tick != uint64(i+1) {
			t.Fatalf("tick %d = %d, want %d (monotonic across buffers)", i, tick, i+1)
		}
	}
}

func TestRenderFeedsAnalyzers(t *testing.T) {
	e, backend, _ := newTestEngine(t)
	injectStrip(e, signal.NewStrip(constSource(0.5), signal.MonoOut(0)))

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	backend.LastStream().Render(64)

	// The fan-out goroutine hands the batch to the meter asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.Meter().RMS() > 0.49 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("meter never saw the rendered signal: RMS = %v", e.Meter().RMS())
}
