package shot

import (
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vmath"
)

// Strategy implements the flight behavior of one shot type
// A strategy is bound to a single Path for its whole life
type Strategy interface {
	// Update advances the shot by dt seconds
	Update(dt float64)
	// Expire runs once when the path becomes expired
	Expire()
	IsStoppedByHit() bool
	// PredictPosition extrapolates dt seconds ahead without mutating state
	PredictPosition(dt float64) (vmath.Vec3F, bool)
	PredictVelocity(dt float64) (vmath.Vec3F, bool)
	// SendUpdate reports whether a type-specific update is due this tick
	SendUpdate(info *FiringInfo) (network.MessageCode, []byte, bool)
	// ReadUpdate consumes a type-specific update from the owner of the shot
	ReadUpdate(code network.MessageCode, payload []byte)
}

// newStrategy selects the strategy for the path's shot type
// Unknown types fall back to the normal strategy
func newStrategy(p *Path) Strategy {
	switch p.info.Type {
	case GuidedMissile:
		return newGuidedMissileStrategy(p)
	case ShockWave:
		return newShockWaveStrategy(p)
	case Ricochet:
		return newRicochetStrategy(p)
	default:
		return newSegmentedStrategy(p)
	}
}
