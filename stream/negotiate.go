package stream

// property identifies which scalar of a ConfigRange a filter stage reads.
type property int

const (
	propChannels property = iota
	propRate
	propBuffer
)

// bounds returns the [min,max] interval of the property for r. The second
// return is false when the interval is unknown (unreported buffer sizes).
func (p property) bounds(r ConfigRange) (int, int, bool) {
	switch p {
	case propChannels:
		return r.Channels, r.Channels, true
	case propRate:
		return r.MinRate, r.MaxRate, true
	default:
		if !r.BufferKnown {
			return 0, 0, false
		}
		return r.MinBuffer, r.MaxBuffer, true
	}
}

// Negotiate resolves one concrete Config from the advertised ranges by
// filtering with strict precedence: channels, then sample rate, then
// buffer size. Each stage narrows the survivors of the previous one, so an
// earlier preference can rule out candidates that would have satisfied a
// later one. An empty result at the end of the pipeline yields def, the
// device's platform-reported default. Negotiate never fails.
func Negotiate(ranges []ConfigRange, channels, rate, buffer Preference, def Config) Config {
	survivors := filter(ranges, propChannels, channels, false)
	survivors = filter(survivors, propRate, rate, false)
	survivors = filter(survivors, propBuffer, buffer, false)

	if len(survivors) == 0 {
		return def
	}
	return concretize(survivors[0], rate, buffer, def)
}

// filter applies one preference to one property across the candidate set.
//
// Any keeps everything. Min/Max keep every candidate achieving the extreme boundary value over
// the whole set, ties included. Exact keeps candidates whose interval
// contains the requested value; when none does, it re-runs itself in alt
// mode, keeping the candidate(s) with the nearest boundary strictly above
// (Higher) or below (Lower) the request.
func filter(ranges []ConfigRange, prop property, pref Preference, alt bool) []ConfigRange {
	var kept []ConfigRange

	switch pref.kind {
	case prefAny:
		return ranges

	case prefMax:
		best := 0
		for _, r := range ranges {
			_, hi, ok := prop.bounds(r)
			if !ok {
				continue
			}
			if len(kept) == 0 || hi > best {
				kept = kept[:0]
				kept = append(kept, r)
				best = hi
			} else if hi == best {
				kept = append(kept, r)
			}
		}

	case prefMin:
		best := 0
		for _, r := range ranges {
			lo, _, ok := prop.bounds(r)
			if !ok {
				continue
			}
			if len(kept) == 0 || lo < best {
				kept = kept[:0]
				kept = append(kept, r)
				best = lo
			} else if lo == best {
				kept = append(kept, r)
			}
		}

	case prefExact:
		if !alt {
			for _, r := range ranges {
				lo, hi, ok := prop.bounds(r)
				if !ok {
					// An unreported interval cannot exclude the request.
					kept = append(kept, r)
					continue
				}
				if lo <= pref.value && pref.value <= hi {
					kept = append(kept, r)
				}
			}
			if len(kept) == 0 {
				return filter(ranges, prop, pref, true)
			}
			return kept
		}

		best := 0
		for _, r := range ranges {
			b, ok := nearestBoundary(r, prop, pref.value, pref.alt)
			if !ok {
				continue
			}
			better := (pref.alt == Higher && b < best) || (pref.alt == Lower && b > best)
			if len(kept) == 0 || better {
				kept = kept[:0]
				kept = append(kept, r)
				best = b
			} else if b == best {
				kept = append(kept, r)
			}
		}
	}

	return kept
}

// nearestBoundary returns the boundary of r's interval closest to v in the
// given direction, strictly above for Higher and strictly below for Lower.
func nearestBoundary(r ConfigRange, prop property, v int, alt Alt) (int, bool) {
	lo, hi, ok := prop.bounds(r)
	if !ok {
		return 0, false
	}
	if alt == Higher {
		if lo > v {
			return lo, true
		}
		if hi > v {
			return hi, true
		}
		return 0, false
	}
	if hi < v {
		return hi, true
	}
	if lo < v {
		return lo, true
	}
	return 0, false
}

// concretize collapses the first surviving range into one Config.
//
// An exact sample rate is clamped into the range; Min/Max take the range
// boundary. An exact buffer request pins the stream to that frame count
// (clamped when the range is known); otherwise the platform default
// buffering is kept.
func concretize(r ConfigRange, rate, buffer Preference, def Config) Config {
	cfg := Config{Channels: r.Channels}

	switch rate.kind {
	case prefAny:
		cfg.SampleRate = clamp(def.SampleRate, r.MinRate, r.MaxRate)
	case prefMax:
		cfg.SampleRate = r.MaxRate
	case prefMin:
		cfg.SampleRate = r.MinRate
	case prefExact:
		cfg.SampleRate = clamp(rate.value, r.MinRate, r.MaxRate)
	}

	if v, ok := buffer.IsExact(); ok {
		if r.BufferKnown {
			v = clamp(v, r.MinBuffer, r.MaxBuffer)
		}
		cfg.BufferSize = v
		cfg.FixedBuffer = true
	} else {
		cfg.BufferSize = def.BufferSize
	}

	return cfg
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
