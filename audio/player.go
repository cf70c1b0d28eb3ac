package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/tankarena/event"
)

const sampleRate = beep.SampleRate(48000)

// Player mixes cues onto the speaker
// Until Init succeeds every Play is a silent no-op
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	played      uint64
}

// NewPlayer creates a player at the given master volume
func NewPlayer(volume float64) *Player {
	return &Player{mixer: &beep.Mixer{}, volume: volume}
}

// Init opens the speaker; on error the player stays silent
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Enabled reports whether cues reach the speaker
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Play queues cue on the mixer
func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s := Synthesize(cue, sampleRate, p.volume)
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	p.played++
}

// HandleEvents plays the cue of every audible event and returns how many were audible
func (p *Player) HandleEvents(events []event.GameEvent) int {
	n := 0
	for _, e := range events {
		if cue, ok := CueForEvent(e); ok {
			p.Play(cue)
			n++
		}
	}
	return n
}

// Played returns the number of cues sent to the speaker
func (p *Player) Played() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// Close clears the mixer and silences the player
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}
