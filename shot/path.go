package shot

import (
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// Path is one in-flight projectile
// State only moves forward: active, expiring, expired
type Path struct {
	info        FiringInfo
	startTime   float64
	currentTime float64
	reloadTime  float64
	expiring    bool
	expired     bool
	local       bool

	vars     Variables
	strategy Strategy
}

func newPath(info FiringInfo, now float64, v Variables, local bool) *Path {
	p := &Path{
		info:        info,
		startTime:   float64(info.TimeSent),
		currentTime: now,
		reloadTime:  eval(v, vars.ReloadTime),
		local:       local,
		vars:        v,
	}
	p.strategy = newStrategy(p)
	return p
}

// FiringInfo returns a copy of the launch parameters with the live shot state
func (p *Path) FiringInfo() FiringInfo {
	return p.info
}

func (p *Path) Type() Type {
	return p.info.Type
}

func (p *Path) Key() Key {
	return p.info.Shot.Key()
}

func (p *Path) Strategy() Strategy {
	return p.strategy
}

func (p *Path) IsLocal() bool {
	return p.local
}

func (p *Path) IsExpiring() bool {
	return p.expiring
}

func (p *Path) IsExpired() bool {
	return p.expired
}

// StartTime is the session time the shot was fired
func (p *Path) StartTime() float64 {
	return p.startTime
}

// CurrentTime is the session time the path has been advanced to
func (p *Path) CurrentTime() float64 {
	return p.currentTime
}

// Elapsed returns seconds since the shot was fired
func (p *Path) Elapsed() float64 {
	return p.currentTime - p.startTime
}

// Lifetime returns the flight duration in seconds
func (p *Path) Lifetime() float64 {
	return float64(p.info.Lifetime)
}

func (p *Path) Position() vmath.Vec3F {
	return p.info.Shot.Position()
}

func (p *Path) Velocity() vmath.Vec3F {
	return p.info.Shot.Velocity()
}

func (p *Path) SetPosition(pos vmath.Vec3F) {
	p.info.Shot.Pos = pos.Array()
}

func (p *Path) SetVelocity(vel vmath.Vec3F) {
	p.info.Shot.Vel = vel.Array()
}

func (p *Path) ReloadTime() float64 {
	return p.reloadTime
}

func (p *Path) SetReloadTime(t float64) {
	p.reloadTime = t
}

// BoostReloadTime extends the reload time by dt
func (p *Path) BoostReloadTime(dt float64) {
	p.reloadTime += dt
}

func (p *Path) IsStoppedByHit() bool {
	return p.strategy.IsStoppedByHit()
}

// SetExpiring marks the shot for removal on the next UpdateShot
func (p *Path) SetExpiring() {
	p.expiring = true
}

func (p *Path) setExpired() {
	p.expiring = true
	p.expired = true
	p.strategy.Expire()
}

// UpdateShot advances time by dt and runs one step of the strategy
// An expiring shot becomes expired instead; an expired shot only tracks time
func (p *Path) UpdateShot(dt float64) {
	p.currentTime += dt
	if p.expired {
		return
	}
	if p.expiring {
		p.setExpired()
		return
	}
	p.strategy.Update(dt)
}

func (p *Path) PredictPosition(dt float64) (vmath.Vec3F, bool) {
	return p.strategy.PredictPosition(dt)
}

func (p *Path) PredictVelocity(dt float64) (vmath.Vec3F, bool) {
	return p.strategy.PredictVelocity(dt)
}

// Outbox receives the messages a local shot originates
type Outbox interface {
	Send(msg *network.Message)
}

// LocalPath is a shot owned by this peer; it originates updates
type LocalPath struct {
	*Path
	outbox Outbox
}

// NewLocalPath creates a locally owned shot; a nil outbox discards messages
func NewLocalPath(info FiringInfo, now float64, v Variables, outbox Outbox) *LocalPath {
	return &LocalPath{Path: newPath(info, now, v, true), outbox: outbox}
}

func (l *LocalPath) send(code network.MessageCode, payload []byte) {
	if l.outbox != nil {
		l.outbox.Send(network.NewMessage(code, payload))
	}
}

// Begin announces the shot to peers
func (l *LocalPath) Begin() {
	l.send(network.MsgShotBegin, l.info.Pack(make([]byte, 0, FiringInfoPackSize)))
}

// Update advances the shot and forwards any update the strategy asks for
// The transition to expired sends MsgShotEnd
func (l *LocalPath) Update(dt float64) {
	l.info.Shot.DT += float32(dt)
	wasExpired := l.expired
	l.UpdateShot(dt)

	if l.expired {
		if !wasExpired {
			end := ShotEnd{Player: l.info.Shot.Player, ID: l.info.Shot.ID, Reason: EndExpired}
			l.send(network.MsgShotEnd, end.Pack(make([]byte, 0, ShotEndPackSize)))
		}
		return
	}

	if code, payload, ok := l.strategy.SendUpdate(&l.info); ok {
		buf := make([]byte, 0, ShotUpdatePackSize+len(payload))
		buf = l.info.Shot.Pack(buf)
		l.send(code, append(buf, payload...))
	}
}

// RemotePath is a shot owned by another peer; it consumes updates
type RemotePath struct {
	*Path
}

// NewRemotePath creates a shot mirrored from a peer
func NewRemotePath(info FiringInfo, now float64, v Variables) *RemotePath {
	return &RemotePath{Path: newPath(info, now, v, false)}
}

// Update advances the mirrored shot
func (r *RemotePath) Update(dt float64) {
	r.UpdateShot(dt)
}

// ApplyUpdate overwrites the live state and hands the message to the strategy
func (r *RemotePath) ApplyUpdate(update ShotUpdate, code network.MessageCode, payload []byte) {
	r.info.Shot = update
	r.strategy.ReadUpdate(code, payload)
}

// SplitUpdate decodes the shot state that prefixes every update message
// Returns the state and the type-specific remainder
func SplitUpdate(payload []byte) (ShotUpdate, []byte, error) {
	var u ShotUpdate
	r := network.NewReader(payload)
	if err := u.Unpack(r); err != nil {
		return ShotUpdate{}, nil, err
	}
	return u, r.Rest(), nil
}
