package event

// EventType represents the type of simulation event
type EventType int

const (
	// EventShotFired signals a shot entered the world
	// Trigger: Simulation.Fire, inbound MsgShotBegin
	// Consumer: audio cues, sandbox HUD | Payload: *ShotPayload
	EventShotFired EventType = iota

	// EventShotExpired signals a shot left the world
	// Trigger: Simulation.Step on expiry, inbound MsgShotEnd
	// Consumer: audio cues, sandbox HUD | Payload: *ShotPayload
	EventShotExpired

	// EventShotRicochet signals a ricochet shot bounced off a wall
	// Trigger: Simulation.Step when the bounce count grows
	// Consumer: audio cues | Payload: *RicochetPayload
	EventShotRicochet

	// EventShotRemoteUpdate signals a mirrored shot adopted a peer update
	// Trigger: Simulation.Step applying an inbound update
	// Consumer: sandbox HUD | Payload: *ShotPayload
	EventShotRemoteUpdate
)

var eventNames = map[EventType]string{
	EventShotFired:        "ShotFired",
	EventShotExpired:      "ShotExpired",
	EventShotRicochet:     "ShotRicochet",
	EventShotRemoteUpdate: "ShotRemoteUpdate",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "Unknown"
}

// GameEvent represents a single simulation event with metadata
type GameEvent struct {
	Type    EventType
	Payload any
	Time    float64 // session step time of emission
}
