package shot

import (
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// Variables is the numeric view of the game variable store
type Variables interface {
	EvalOr(name string, def float64) float64
}

// eval reads name from v, falling back to the stock default
func eval(v Variables, name string) float64 {
	def := vars.DefaultFloat(name)
	if v == nil {
		return def
	}
	return v.EvalOr(name, def)
}

// Profile defines the launch parameters of a shot type
// Profiles are package variables; multipliers are variable names resolved at fire time
type Profile struct {
	SpeedVar     string // multiplier on _shotSpeed, "" = 1x
	LifetimeVar  string // multiplier on _shotRange/_shotSpeed, "" = 1x
	StoppedByHit bool
}

var profiles = [typeCount]Profile{
	Normal:          {StoppedByHit: true},
	GuidedMissile:   {LifetimeVar: vars.GMAdLife, StoppedByHit: true},
	Laser:           {SpeedVar: vars.LaserAdVel, LifetimeVar: vars.LaserAdLife},
	Thief:           {SpeedVar: vars.ThiefAdShotVel, LifetimeVar: vars.ThiefAdLife, StoppedByHit: true},
	Super:           {},
	Phantom:         {StoppedByHit: true},
	ShockWave:       {LifetimeVar: vars.ShockAdLife},
	Ricochet:        {StoppedByHit: true},
	MachineGun:      {SpeedVar: vars.MachineGunAdVel, LifetimeVar: vars.MachineGunLife, StoppedByHit: true},
	InvisibleBullet: {StoppedByHit: true},
	Cloaking:        {StoppedByHit: true},
	RapidFire:       {SpeedVar: vars.RapidFireAdVel, LifetimeVar: vars.RapidFireAdLife, StoppedByHit: true},
}

// ProfileFor returns the profile of t; unknown types get the Normal profile
func ProfileFor(t Type) Profile {
	if !t.Known() {
		return profiles[Normal]
	}
	return profiles[t]
}

// Speed returns the muzzle speed of t
func Speed(v Variables, t Type) float64 {
	speed := eval(v, vars.ShotSpeed)
	if p := ProfileFor(t); p.SpeedVar != "" {
		speed *= eval(v, p.SpeedVar)
	}
	return speed
}

// Lifetime returns the flight duration of t in seconds
func Lifetime(v Variables, t Type) float64 {
	speed := eval(v, vars.ShotSpeed)
	if speed <= 0 {
		return 0
	}
	life := eval(v, vars.ShotRange) / speed
	if p := ProfileFor(t); p.LifetimeVar != "" {
		life *= eval(v, p.LifetimeVar)
	}
	return life
}

// Launch describes a shot about to be fired
type Launch struct {
	Type     Type
	Player   uint8
	ID       uint16
	Team     int16
	Origin   vmath.Vec3F
	Dir      vmath.Vec3F // normalized internally
	TimeSent float64
}

// NewFiringInfo resolves speed and lifetime for l
// Shock waves are stationary regardless of Dir
func NewFiringInfo(v Variables, l Launch) FiringInfo {
	info := FiringInfo{
		TimeSent: float32(l.TimeSent),
		Type:     l.Type,
		Lifetime: float32(Lifetime(v, l.Type)),
		Shot: ShotUpdate{
			Player: l.Player,
			ID:     l.ID,
			Team:   l.Team,
			Pos:    l.Origin.Array(),
		},
	}
	if l.Type != ShockWave {
		vel := vmath.V3FScale(vmath.V3FNormalize(l.Dir), Speed(v, l.Type))
		info.Shot.Vel = vel.Array()
	}
	return info
}
