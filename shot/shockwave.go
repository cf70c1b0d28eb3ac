package shot

import (
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// ShockWaveStrategy is a stationary sphere growing over its lifetime
type ShockWaveStrategy struct {
	path      *Path
	inRadius  float64
	outRadius float64
	radius    float64
}

func newShockWaveStrategy(p *Path) *ShockWaveStrategy {
	s := &ShockWaveStrategy{
		path:      p,
		inRadius:  eval(p.vars, vars.ShockInRadius),
		outRadius: eval(p.vars, vars.ShockOutRadius),
	}
	s.radius = s.radiusAt(p.Elapsed())
	return s
}

func (s *ShockWaveStrategy) radiusAt(elapsed float64) float64 {
	life := s.path.Lifetime()
	frac := 1.0
	if life > 0 {
		frac = elapsed / life
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return s.inRadius + (s.outRadius-s.inRadius)*frac
}

// Radius returns the current sphere radius
func (s *ShockWaveStrategy) Radius() float64 {
	return s.radius
}

func (s *ShockWaveStrategy) Update(float64) {
	p := s.path
	s.radius = s.radiusAt(p.Elapsed())
	if p.Elapsed() >= p.Lifetime() {
		p.SetExpiring()
	}
}

// Expire leaves the wave at full size
func (s *ShockWaveStrategy) Expire() {
	s.radius = s.outRadius
}

func (s *ShockWaveStrategy) IsStoppedByHit() bool {
	return false
}

// PredictPosition returns the origin; the wave never moves
func (s *ShockWaveStrategy) PredictPosition(float64) (vmath.Vec3F, bool) {
	return s.path.Position(), !s.path.IsExpired()
}

func (s *ShockWaveStrategy) PredictVelocity(float64) (vmath.Vec3F, bool) {
	return vmath.Vec3F{}, !s.path.IsExpired()
}

func (s *ShockWaveStrategy) SendUpdate(*FiringInfo) (network.MessageCode, []byte, bool) {
	return 0, nil, false
}

func (s *ShockWaveStrategy) ReadUpdate(network.MessageCode, []byte) {}
