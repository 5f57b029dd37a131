package w4113

import (
	"github.com/dreamcaster-music/w4113-sub000/signal"
	"github.com/dreamcaster-music/w4113-sub000/stream"
)

// renderFunc builds the stream callback for a negotiated configuration.
// The sample clock lives in the closure: it belongs to one stream and
// restarts from zero on every rebuild.
//
// Per frame, each strip is processed once and written to its routed
// channels by assignment; when two strips claim the same channel the
// later one wins. Bus-routed strips contribute nothing.
func (e *Engine) renderFunc(cfg stream.Config) func(out []float32) {
	var clock uint64
	channels := cfg.Channels

	return func(out []float32) {
		for i := range out {
			out[i] = 0
		}

		set := e.live.Load()
		frames := len(out) / channels

		for f := 0; f < frames; f++ {
			clock++
			c := signal.Clock{
				SampleRate:  cfg.SampleRate,
				SampleClock: clock,
				BufferSize:  cfg.BufferSize,
			}
			base := f * channels

			for _, s := range set.strips {
				smp := s.Process(c)
				o := s.Output()
				switch o.Kind {
				case signal.OutMono:
					if o.Left >= 0 && o.Left < channels {
						out[base+o.Left] = smp.Left()
					}
				case signal.OutStereo:
					if o.Left >= 0 && o.Left < channels {
						out[base+o.Left] = smp.Left()
					}
					if o.Right >= 0 && o.Right < channels {
						out[base+o.Right] = smp.Right()
					}
				}
			}
		}

		// Hand channel 0 to the analysis side without ever blocking the
		// audio deadline; a full queue drops the batch.
		batch := make([]float32, frames)
		for f := 0; f < frames; f++ {
			batch[f] = out[f*channels]
		}
		select {
		case e.frames <- batch:
		default:
		}
	}
}
