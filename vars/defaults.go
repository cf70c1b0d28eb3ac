package vars

import "strconv"

// Game variable names
const (
	WorldSize  = "_worldSize"
	ShotSpeed  = "_shotSpeed"
	ShotRange  = "_shotRange"
	ReloadTime = "_reloadTime"

	RapidFireAdVel  = "_rFireAdVel"
	RapidFireAdLife = "_rFireAdLife"
	MachineGunAdVel = "_mGunAdVel"
	MachineGunLife  = "_mGunAdLife"
	LaserAdVel      = "_laserAdVel"
	LaserAdLife     = "_laserAdLife"
	ThiefAdShotVel  = "_thiefAdShotVel"
	ThiefAdLife     = "_thiefAdLife"

	GMAdLife         = "_gmAdLife"
	GMTurnAngle      = "_gmTurnAngle"
	GMActivationTime = "_gmActivationTime"
	GMUpdateInterval = "_gmUpdateInterval"

	ShockAdLife    = "_shockAdLife"
	ShockInRadius  = "_shockInRadius"
	ShockOutRadius = "_shockOutRadius"
)

// Defaults seeds a fresh store with the stock arena settings
var Defaults = map[string]string{
	WorldSize:  "800",
	ShotSpeed:  "100",
	ShotRange:  "350",
	ReloadTime: "3.5",

	RapidFireAdVel:  "1.5",
	RapidFireAdLife: "0.6666667",
	MachineGunAdVel: "1.5",
	MachineGunLife:  "0.1",
	LaserAdVel:      "1000",
	LaserAdLife:     "0.1",
	ThiefAdShotVel:  "8",
	ThiefAdLife:     "0.05",

	GMAdLife:         "0.95",
	GMTurnAngle:      "0.628319",
	GMActivationTime: "0.5",
	GMUpdateInterval: "0.5",

	ShockAdLife:    "0.2",
	ShockInRadius:  "6",
	ShockOutRadius: "60",
}

// DefaultFloat returns the stock numeric value for name, 0 if none
func DefaultFloat(name string) float64 {
	v, err := strconv.ParseFloat(Defaults[name], 64)
	if err != nil {
		return 0
	}
	return v
}

// NewDefaultStore creates a store seeded with Defaults
func NewDefaultStore() *Store {
	s := NewStore()
	s.SetDefaults(Defaults)
	return s
}
