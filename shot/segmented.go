package shot

import (
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// SegmentedStrategy flies in a straight line until its lifetime runs out
// Covers every type without special kinematics: normal, laser, thief, super,
// phantom, machine gun, rapid fire, invisible and cloaking
type SegmentedStrategy struct {
	path    *Path
	profile Profile
}

func newSegmentedStrategy(p *Path) *SegmentedStrategy {
	return &SegmentedStrategy{path: p, profile: ProfileFor(p.info.Type)}
}

// advance moves the path along its velocity and checks the lifetime
func (s *SegmentedStrategy) advance(dt float64) {
	p := s.path
	p.SetPosition(vmath.V3FMulAdd(p.Position(), p.Velocity(), dt))
	if p.Elapsed() >= p.Lifetime() {
		p.SetExpiring()
	}
}

func (s *SegmentedStrategy) Update(dt float64) {
	s.advance(dt)
}

// Expire brings the shot to rest at its last position
func (s *SegmentedStrategy) Expire() {
	s.path.SetVelocity(vmath.Vec3F{})
}

func (s *SegmentedStrategy) IsStoppedByHit() bool {
	return s.profile.StoppedByHit
}

func (s *SegmentedStrategy) PredictPosition(dt float64) (vmath.Vec3F, bool) {
	p := s.path
	if p.IsExpired() {
		return p.Position(), false
	}
	return vmath.V3FMulAdd(p.Position(), p.Velocity(), dt), true
}

func (s *SegmentedStrategy) PredictVelocity(dt float64) (vmath.Vec3F, bool) {
	p := s.path
	if p.IsExpired() {
		return vmath.Vec3F{}, false
	}
	return p.Velocity(), true
}

// SendUpdate never fires; straight shots are fully described by MsgShotBegin
func (s *SegmentedStrategy) SendUpdate(*FiringInfo) (network.MessageCode, []byte, bool) {
	return 0, nil, false
}

func (s *SegmentedStrategy) ReadUpdate(network.MessageCode, []byte) {}

// RicochetStrategy bounces off the arena walls
type RicochetStrategy struct {
	*SegmentedStrategy
	bounces  uint16
	reported uint16
}

func newRicochetStrategy(p *Path) *RicochetStrategy {
	return &RicochetStrategy{SegmentedStrategy: newSegmentedStrategy(p)}
}

// Bounces returns the number of wall reflections so far
func (s *RicochetStrategy) Bounces() uint16 {
	return s.bounces
}

func (s *RicochetStrategy) halfWorld() float64 {
	return eval(s.path.vars, vars.WorldSize) / 2
}

func (s *RicochetStrategy) Update(dt float64) {
	p := s.path
	pos, vel, n := reflectWalls(vmath.V3FMulAdd(p.Position(), p.Velocity(), dt), p.Velocity(), s.halfWorld())
	p.SetPosition(pos)
	p.SetVelocity(vel)
	s.bounces += uint16(n)
	if p.Elapsed() >= p.Lifetime() {
		p.SetExpiring()
	}
}

func (s *RicochetStrategy) PredictPosition(dt float64) (vmath.Vec3F, bool) {
	p := s.path
	if p.IsExpired() {
		return p.Position(), false
	}
	pos, _, _ := reflectWalls(vmath.V3FMulAdd(p.Position(), p.Velocity(), dt), p.Velocity(), s.halfWorld())
	return pos, true
}

func (s *RicochetStrategy) PredictVelocity(dt float64) (vmath.Vec3F, bool) {
	p := s.path
	if p.IsExpired() {
		return vmath.Vec3F{}, false
	}
	_, vel, _ := reflectWalls(vmath.V3FMulAdd(p.Position(), p.Velocity(), dt), p.Velocity(), s.halfWorld())
	return vel, true
}

// SendUpdate reports the bounce count after every new reflection
func (s *RicochetStrategy) SendUpdate(*FiringInfo) (network.MessageCode, []byte, bool) {
	if s.bounces == s.reported {
		return 0, nil, false
	}
	s.reported = s.bounces
	return network.MsgShotRicochet, network.PackUint16(nil, s.bounces), true
}

func (s *RicochetStrategy) ReadUpdate(code network.MessageCode, payload []byte) {
	if code != network.MsgShotRicochet {
		return
	}
	r := network.NewReader(payload)
	if n := r.Uint16(); r.Err() == nil {
		s.bounces = n
		s.reported = n
	}
}

// reflectWalls folds pos back inside the square of the given half size
// Velocity components flip for every wall crossed; returns the crossing count
func reflectWalls(pos, vel vmath.Vec3F, half float64) (vmath.Vec3F, vmath.Vec3F, int) {
	if half <= 0 {
		return pos, vel, 0
	}
	var n int
	pos.X, vel.X, n = reflectAxis(pos.X, vel.X, half, n)
	pos.Y, vel.Y, n = reflectAxis(pos.Y, vel.Y, half, n)
	return pos, vel, n
}

func reflectAxis(x, v, half float64, n int) (float64, float64, int) {
	// bounded loop: a very fast shot may cross the arena more than once per step
	for i := 0; i < 8; i++ {
		switch {
		case x > half:
			x = 2*half - x
		case x < -half:
			x = -2*half - x
		default:
			return x, v, n
		}
		v = -v
		n++
	}
	if x > half {
		x = half
	} else if x < -half {
		x = -half
	}
	return x, v, n
}
