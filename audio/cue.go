package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/tankarena/event"
	"github.com/lixenwraith/tankarena/shot"
)

// CueKind identifies a sound cue
type CueKind int

const (
	CueFire CueKind = iota
	CueRicochet
	CueExpire
	CueRemoteFire
)

// Cue is one sound to play
type Cue struct {
	Kind CueKind
	Shot shot.Type
}

// Cue timings
const (
	fireDuration     = 120 * time.Millisecond
	ricochetDuration = 60 * time.Millisecond
	expireDuration   = 180 * time.Millisecond
	cueAttack        = 5 * time.Millisecond
	cueRelease       = 40 * time.Millisecond
)

// firePitch gives every shot type its own muzzle tone
var firePitch = map[shot.Type]float64{
	shot.Normal:          440,
	shot.GuidedMissile:   220,
	shot.Laser:           1760,
	shot.Thief:           660,
	shot.Super:           330,
	shot.Phantom:         550,
	shot.ShockWave:       110,
	shot.Ricochet:        880,
	shot.MachineGun:      740,
	shot.InvisibleBullet: 392,
	shot.Cloaking:        494,
	shot.RapidFire:       587,
}

// CueForEvent maps a simulation event to a cue; false for silent events
func CueForEvent(e event.GameEvent) (Cue, bool) {
	var payload *event.ShotPayload
	switch p := e.Payload.(type) {
	case *event.ShotPayload:
		payload = p
	case *event.RicochetPayload:
		payload = &p.ShotPayload
	default:
		return Cue{}, false
	}

	switch e.Type {
	case event.EventShotFired:
		if !payload.Local {
			return Cue{Kind: CueRemoteFire, Shot: payload.Type}, true
		}
		return Cue{Kind: CueFire, Shot: payload.Type}, true
	case event.EventShotRicochet:
		return Cue{Kind: CueRicochet, Shot: payload.Type}, true
	case event.EventShotExpired:
		return Cue{Kind: CueExpire, Shot: payload.Type}, true
	default:
		return Cue{}, false
	}
}

// Synthesize renders cue at rate, scaled by volume
func Synthesize(cue Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	pitch, ok := firePitch[cue.Shot]
	if !ok {
		pitch = firePitch[shot.Normal]
	}

	var s beep.Streamer
	switch cue.Kind {
	case CueFire, CueRemoteFire:
		osc := NewSweep(pitch, pitch/2, fireDuration, WaveSquare, rate)
		s = NewEnvelope(osc, fireDuration, cueAttack, cueRelease, rate)
		if cue.Kind == CueRemoteFire {
			volume *= 0.5
		}
	case CueRicochet:
		osc := NewSweep(pitch*2, pitch*3, ricochetDuration, WaveSine, rate)
		s = NewEnvelope(osc, ricochetDuration, cueAttack, cueRelease/2, rate)
	default:
		noise := NewOscillator(0, expireDuration, WaveNoise, rate)
		s = NewEnvelope(noise, expireDuration, cueAttack, expireDuration-cueAttack, rate)
		volume *= 0.6
	}
	return newVolume(s, volume)
}

// CueDuration returns the length of the rendered cue
func CueDuration(kind CueKind) time.Duration {
	switch kind {
	case CueFire, CueRemoteFire:
		return fireDuration
	case CueRicochet:
		return ricochetDuration
	default:
		return expireDuration
	}
}
