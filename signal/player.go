package signal

import (
	"fmt"
	"io"

	"github.com/dreamcaster-music/w4113-sub000/decode"
)

// Player is a file-backed source streaming decoded PCM one frame per
// clock tick. While stopped it produces silence. The decoded frame is
// cached per tick so repeated taps within one frame-group never advance
// the decode position twice.
//
// The file plays at the engine's tick rate; a sample-rate mismatch
// between file and stream shifts pitch rather than resampling.
type Player struct {
	path    string
	src     decode.Source
	playing bool
	frame   []float32

	lastTick uint64
	cached   Sample
	primed   bool
}

// NewPlayer returns a player with no source assigned.
func NewPlayer() *Player {
	return &Player{}
}

// Path returns the currently assigned source path.
func (p *Player) Path() string { return p.path }

// Playing reports whether the player is currently producing audio.
func (p *Player) Playing() bool { return p.playing }

// Generate returns the next decoded frame, or silence when stopped,
// unassigned, or past the end of the stream. Reaching the end stops the
// player.
func (p *Player) Generate(c Clock) Sample {
	if p.primed && c.SampleClock == p.lastTick {
		return p.cached
	}
	p.lastTick = c.SampleClock
	p.primed = true

	if !p.playing || p.src == nil {
		p.cached = Mono(0)
		return p.cached
	}

	if !p.readFrame() {
		p.playing = false
		p.cached = Mono(0)
		return p.cached
	}

	if len(p.frame) == 1 {
		p.cached = Mono(p.frame[0])
	} else {
		p.cached = Stereo(p.frame[0], p.frame[1])
	}
	return p.cached
}

// readFrame fills p.frame with one complete frame, looping over short
// reads. It reports false at end of stream or on decode failure.
func (p *Player) readFrame() bool {
	filled := 0
	for filled < len(p.frame) {
		n, err := p.src.ReadSamples(p.frame[filled:])
		filled += n
		if err != nil {
			return false
		}
		if n == 0 {
			return false
		}
	}
	return true
}

func (p *Player) Name() string { return "player" }

// Command handles "play", "stop", and "source <path>". Play always
// restarts decoding from the beginning of the assigned source, so
// re-issuing it re-triggers playback.
func (p *Player) Command(cmd string, args []string) error {
	switch cmd {
	case "play":
		if p.path == "" {
			return fmt.Errorf("player: play: no source assigned")
		}
		return p.open()
	case "stop":
		p.playing = false
		return nil
	case "source":
		if len(args) < 1 {
			return fmt.Errorf("player: source: missing path")
		}
		p.setSource(args[0])
		return nil
	default:
		return fmt.Errorf("player: %q: %w", cmd, ErrUnsupportedCommand)
	}
}

func (p *Player) setSource(path string) {
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.path = path
	p.playing = false
}

func (p *Player) open() error {
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	src, err := decode.Open(p.path)
	if err != nil {
		p.playing = false
		return fmt.Errorf("player: %w", err)
	}
	p.src = src
	p.frame = make([]float32, src.Channels())
	p.playing = true
	p.primed = false
	return nil
}

// Close releases the decoder, if any.
func (p *Player) Close() error {
	p.playing = false
	if p.src == nil {
		return nil
	}
	err := p.src.Close()
	p.src = nil
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}
