package event

import (
	"github.com/lixenwraith/tankarena/shot"
	"github.com/lixenwraith/tankarena/vmath"
)

// ShotPayload identifies a shot and where it was
type ShotPayload struct {
	Key      shot.Key
	Type     shot.Type
	Local    bool
	Position vmath.Vec3F
}

// RicochetPayload carries the bounce count after a reflection
type RicochetPayload struct {
	ShotPayload
	Bounces uint16
}
