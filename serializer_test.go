package w4113

import (
	"bytes"
	"testing"

	"github.com/dreamcaster-music/w4113-sub000/config"
	"github.com/dreamcaster-music/w4113-sub000/signal"
)

func TestSerializerRoundTrip(t *testing.T) {
	src, _, _ := newTestEngine(t)

	if err := src.SetHost("ALSA"); err != nil {
		t.Fatalf("SetHost failed: %v", err)
	}
	if err := src.SetOutputStream("2 48000 128-512"); err != nil {
		t.Fatalf("SetOutputStream failed: %v", err)
	}
	id, err := src.AddStrip("tone", signal.MonoOut(1))
	if err != nil {
		t.Fatalf("AddStrip failed: %v", err)
	}
	if err := src.SetEffect(id, 0, "gain"); err != nil {
		t.Fatalf("SetEffect failed: %v", err)
	}
	if err := src.SetEffect(id, 3, "delay"); err != nil {
		t.Fatalf("SetEffect failed: %v", err)
	}

	var buf bytes.Buffer
	if err := NewSerializer(src).SaveToWriter(&buf); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	dst, _, _ := newTestEngine(t)
	if err := NewSerializer(dst).LoadFromReader(&buf); err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if v, _ := dst.Store().Get(config.KeyHost); v != "ALSA" {
		t.Fatalf("restored host = %q", v)
	}
	if v, _ := dst.Store().Get(config.KeyOutputSampleRate); v != "48000" {
		t.Fatalf("restored sample rate = %q", v)
	}

	snaps := dst.StripSnapshots()
	if len(snaps) != 1 {
		t.Fatalf("%d restored strips, want 1", len(snaps))
	}
	snap := snaps[0]
	if snap.Source != "tone" {
		t.Fatalf("restored source = %q, want tone", snap.Source)
	}
	if snap.Output.Kind != "mono" || snap.Output.Channels[0] != 1 {
		t.Fatalf("restored output = %+v, want mono(1)", snap.Output)
	}
	if len(snap.Effects) != 2 ||
		snap.Effects[0] != (signal.EffectSnapshot{Slot: 0, Kind: "gain"}) ||
		snap.Effects[1] != (signal.EffectSnapshot{Slot: 3, Kind: "delay"}) {
		t.Fatalf("restored effects = %+v", snap.Effects)
	}

	if !dst.needsReload.Load() {
		t.Fatalf("restore did not flag a reload")
	}
}

func TestSerializerReplacesExistingTopology(t *testing.T) {
	src, _, _ := newTestEngine(t)
	if _, err := src.AddStrip("tone", signal.MonoOut(0)); err != nil {
		t.Fatalf("AddStrip failed: %v", err)
	}

	var buf bytes.Buffer
	if err := NewSerializer(src).SaveToWriter(&buf); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	dst, _, _ := newTestEngine(t)
	for i := 0; i < 3; i++ {
		if _, err := dst.AddStrip("tone", signal.MonoOut(i)); err != nil {
			t.Fatalf("AddStrip failed: %v", err)
		}
	}

	if err := NewSerializer(dst).LoadFromReader(&buf); err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if got := len(dst.StripSnapshots()); got != 1 {
		t.Fatalf("%d strips after restore, want the saved topology only (1)", got)
	}
}

func TestSerializerRejectsVersionMismatch(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := NewSerializer(e).SetState(EngineState{Version: "0.0.1"})
	if err == nil {
		t.Fatalf("incompatible state version accepted")
	}
}

func TestSerializerFileRoundTrip(t *testing.T) {
	src, _, _ := newTestEngine(t)
	if err := src.SetOutputDevice("Speakers"); err != nil {
		t.Fatalf("SetOutputDevice failed: %v", err)
	}

	path := t.TempDir() + "/state.json"
	if err := NewSerializer(src).SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	dst, _, _ := newTestEngine(t)
	if err := NewSerializer(dst).LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if v, _ := dst.Store().Get(config.KeyOutputDevice); v != "Speakers" {
		t.Fatalf("restored device = %q", v)
	}
}
