package shot

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vmath"
)

// Type selects the flight behavior of a shot; wire value is a uint8
type Type uint8

const (
	Normal Type = iota
	GuidedMissile
	Laser
	Thief
	Super
	Phantom
	ShockWave
	Ricochet
	MachineGun
	InvisibleBullet
	Cloaking
	RapidFire

	typeCount
)

var typeNames = [typeCount]string{
	"normal", "guided-missile", "laser", "thief", "super", "phantom",
	"shockwave", "ricochet", "machine-gun", "invisible", "cloaking", "rapid-fire",
}

func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Known reports whether t names a behavior; unknown types fly as Normal
func (t Type) Known() bool {
	return t < typeCount
}

// Types returns every known shot type in wire order
func Types() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Wire sizes
const (
	ShotUpdatePackSize = network.Uint8Size + network.Uint16Size + 7*network.Float32Size + network.Int16Size
	FiringInfoPackSize = network.Float32Size + ShotUpdatePackSize + network.Uint8Size + network.Float32Size
	ShotEndPackSize    = network.Uint8Size + network.Uint16Size + network.Int16Size
)

// ShotUpdate is the live kinematic state of a shot as exchanged between peers
type ShotUpdate struct {
	Player uint8
	ID     uint16
	Pos    [3]float32
	Vel    [3]float32
	DT     float32 // seconds in flight
	Team   int16
}

// Position returns Pos as a vector
func (u *ShotUpdate) Position() vmath.Vec3F {
	return vmath.V3FFromArray(u.Pos)
}

// Velocity returns Vel as a vector
func (u *ShotUpdate) Velocity() vmath.Vec3F {
	return vmath.V3FFromArray(u.Vel)
}

// Pack appends the wire encoding to buf
func (u *ShotUpdate) Pack(buf []byte) []byte {
	buf = network.PackUint8(buf, u.Player)
	buf = network.PackUint16(buf, u.ID)
	for _, v := range u.Pos {
		buf = network.PackFloat32(buf, v)
	}
	for _, v := range u.Vel {
		buf = network.PackFloat32(buf, v)
	}
	buf = network.PackFloat32(buf, u.DT)
	return network.PackInt16(buf, u.Team)
}

// Unpack decodes from r; u is left untouched on error
func (u *ShotUpdate) Unpack(r *network.Reader) error {
	var out ShotUpdate
	out.Player = r.Uint8()
	out.ID = r.Uint16()
	for i := range out.Pos {
		out.Pos[i] = r.Float32()
	}
	for i := range out.Vel {
		out.Vel[i] = r.Float32()
	}
	out.DT = r.Float32()
	out.Team = r.Int16()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "unpack shot update")
	}
	*u = out
	return nil
}

// FiringInfo holds the immutable launch parameters of a shot
type FiringInfo struct {
	TimeSent float32
	Shot     ShotUpdate
	Type     Type
	Lifetime float32
}

// Pack appends the wire encoding to buf
func (f *FiringInfo) Pack(buf []byte) []byte {
	buf = network.PackFloat32(buf, f.TimeSent)
	buf = f.Shot.Pack(buf)
	buf = network.PackUint8(buf, uint8(f.Type))
	return network.PackFloat32(buf, f.Lifetime)
}

// Unpack decodes from r; f is left untouched on error
// Unknown shot types are kept as sent
func (f *FiringInfo) Unpack(r *network.Reader) error {
	var out FiringInfo
	out.TimeSent = r.Float32()
	if err := out.Shot.Unpack(r); err != nil {
		return errors.Wrap(err, "unpack firing info")
	}
	out.Type = Type(r.Uint8())
	out.Lifetime = r.Float32()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "unpack firing info")
	}
	*f = out
	return nil
}

// End reasons carried by MsgShotEnd
const (
	EndExpired int16 = 0
	EndHit     int16 = 1
)

// ShotEnd announces that a shot has left the world
type ShotEnd struct {
	Player uint8
	ID     uint16
	Reason int16
}

// Pack appends the wire encoding to buf
func (e *ShotEnd) Pack(buf []byte) []byte {
	buf = network.PackUint8(buf, e.Player)
	buf = network.PackUint16(buf, e.ID)
	return network.PackInt16(buf, e.Reason)
}

// Unpack decodes from r; e is left untouched on error
func (e *ShotEnd) Unpack(r *network.Reader) error {
	var out ShotEnd
	out.Player = r.Uint8()
	out.ID = r.Uint16()
	out.Reason = r.Int16()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "unpack shot end")
	}
	*e = out
	return nil
}

// Key identifies a shot across peers
type Key struct {
	Player uint8
	ID     uint16
}

// Key returns the shot identity
func (u *ShotUpdate) Key() Key {
	return Key{Player: u.Player, ID: u.ID}
}
