package signal

// EffectSnapshot describes one occupied chain slot.
type EffectSnapshot struct {
	Slot int    `json:"slot"`
	Kind string `json:"kind"`
}

// OutputSnapshot describes a strip routing in serializable form.
type OutputSnapshot struct {
	Kind     string `json:"kind"`
	Channels []int  `json:"channels,omitempty"`
	Bus      int    `json:"bus,omitempty"`
}

// StripSnapshot is the serializable view of one strip, as sent to the
// notification surface and written by the serializer.
type StripSnapshot struct {
	ID      string           `json:"id"`
	Source  string           `json:"source"`
	Path    string           `json:"path,omitempty"`
	Output  OutputSnapshot   `json:"output"`
	Effects []EffectSnapshot `json:"effects"`
}

// Snapshot captures the strip's current shape. It takes the source lock
// briefly to read the source identity; it is a control-plane call.
func (s *Strip) Snapshot() StripSnapshot {
	snap := StripSnapshot{ID: s.id, Source: s.SourceName()}

	if !s.fromBus {
		s.srcMu.Lock()
		if p, ok := s.source.(*Player); ok {
			snap.Path = p.Path()
		}
		s.srcMu.Unlock()
	}

	out := s.Output()
	switch out.Kind {
	case OutMono:
		snap.Output = OutputSnapshot{Kind: "mono", Channels: []int{out.Left}}
	case OutStereo:
		snap.Output = OutputSnapshot{Kind: "stereo", Channels: []int{out.Left, out.Right}}
	default:
		snap.Output = OutputSnapshot{Kind: "bus", Bus: out.Bus}
	}

	for i := 0; i < ChainCapacity; i++ {
		if e := s.EffectAt(i); e != nil {
			snap.Effects = append(snap.Effects, EffectSnapshot{Slot: i, Kind: e.Name()})
		}
	}
	return snap
}
