package shot

import (
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// NoTarget is the wire value of an unlocked guided missile
const NoTarget uint8 = 0xFF

// GuidedMissileStrategy steers toward a locked target at a bounded turn rate
type GuidedMissileStrategy struct {
	path *Path

	target    uint8
	targetPos vmath.Vec3F
	changed   bool
	lastSend  float64

	turnRate   float64 // rad/s
	activation float64 // seconds before steering starts
	interval   float64 // seconds between periodic updates
}

func newGuidedMissileStrategy(p *Path) *GuidedMissileStrategy {
	return &GuidedMissileStrategy{
		path:       p,
		target:     NoTarget,
		lastSend:   p.Elapsed(),
		turnRate:   eval(p.vars, vars.GMTurnAngle),
		activation: eval(p.vars, vars.GMActivationTime),
		interval:   eval(p.vars, vars.GMUpdateInterval),
	}
}

// SetTarget locks onto player at pos; NoTarget releases the lock
func (g *GuidedMissileStrategy) SetTarget(player uint8, pos vmath.Vec3F) {
	if player != g.target || pos != g.targetPos {
		g.changed = true
	}
	g.target = player
	g.targetPos = pos
	if player == NoTarget {
		g.targetPos = vmath.Vec3F{}
	}
}

// Target returns the locked player and its last known position
func (g *GuidedMissileStrategy) Target() (uint8, vmath.Vec3F, bool) {
	return g.target, g.targetPos, g.target != NoTarget
}

// steer returns vel turned toward the target for dt seconds, keeping speed
func (g *GuidedMissileStrategy) steer(pos, vel vmath.Vec3F, elapsed, dt float64) vmath.Vec3F {
	if g.target == NoTarget || elapsed < g.activation {
		return vel
	}
	speed := vmath.V3FMag(vel)
	to := vmath.V3FNormalize(vmath.V3FSub(g.targetPos, pos))
	if speed == 0 || to == (vmath.Vec3F{}) {
		return vel
	}
	dir := vmath.V3FTurnToward(vmath.V3FNormalize(vel), to, g.turnRate*dt)
	return vmath.V3FScale(dir, speed)
}

func (g *GuidedMissileStrategy) Update(dt float64) {
	p := g.path
	vel := g.steer(p.Position(), p.Velocity(), p.Elapsed(), dt)
	p.SetVelocity(vel)
	p.SetPosition(vmath.V3FMulAdd(p.Position(), vel, dt))
	if p.Elapsed() >= p.Lifetime() {
		p.SetExpiring()
	}
}

// Expire releases the lock
func (g *GuidedMissileStrategy) Expire() {
	g.target = NoTarget
	g.path.SetVelocity(vmath.Vec3F{})
}

func (g *GuidedMissileStrategy) IsStoppedByHit() bool {
	return true
}

func (g *GuidedMissileStrategy) PredictPosition(dt float64) (vmath.Vec3F, bool) {
	p := g.path
	if p.IsExpired() {
		return p.Position(), false
	}
	vel := g.steer(p.Position(), p.Velocity(), p.Elapsed()+dt, dt)
	return vmath.V3FMulAdd(p.Position(), vel, dt), true
}

func (g *GuidedMissileStrategy) PredictVelocity(dt float64) (vmath.Vec3F, bool) {
	p := g.path
	if p.IsExpired() {
		return vmath.Vec3F{}, false
	}
	return g.steer(p.Position(), p.Velocity(), p.Elapsed()+dt, dt), true
}

// GMUpdatePackSize is the strategy payload of MsgGMUpdate
const GMUpdatePackSize = network.Uint8Size + 3*network.Float32Size

// SendUpdate fires when the target changes or the update interval has passed
func (g *GuidedMissileStrategy) SendUpdate(*FiringInfo) (network.MessageCode, []byte, bool) {
	elapsed := g.path.Elapsed()
	if !g.changed && elapsed-g.lastSend < g.interval {
		return 0, nil, false
	}
	g.changed = false
	g.lastSend = elapsed

	buf := make([]byte, 0, GMUpdatePackSize)
	buf = network.PackUint8(buf, g.target)
	for _, v := range g.targetPos.Array() {
		buf = network.PackFloat32(buf, v)
	}
	return network.MsgGMUpdate, buf, true
}

// ReadUpdate adopts the owner's target; malformed payloads are ignored
func (g *GuidedMissileStrategy) ReadUpdate(code network.MessageCode, payload []byte) {
	if code != network.MsgGMUpdate {
		return
	}
	r := network.NewReader(payload)
	target := r.Uint8()
	var pos [3]float32
	for i := range pos {
		pos[i] = r.Float32()
	}
	if r.Err() != nil {
		return
	}
	g.target = target
	g.targetPos = vmath.V3FFromArray(pos)
	if target == NoTarget {
		g.targetPos = vmath.Vec3F{}
	}
}
