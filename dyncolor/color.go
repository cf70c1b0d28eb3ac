// Package dyncolor implements time-driven procedural colors: four channels
// composed from sequences, clamps and sinusoids, or a color bound to a game
// variable with timed transitions.
package dyncolor

import (
	"time"

	"github.com/lixenwraith/tankarena/core"
	"github.com/lixenwraith/tankarena/vars"
)

// Variables is the variable store a bound color reads and watches
type Variables interface {
	Get(name string) string
	Watch(name string, fn vars.ChangeFunc) *vars.Subscription
}

// TickClock provides monotonic high-resolution time in seconds
type TickClock interface {
	Tick() float64
}

// DynamicColor is an animated RGBA value
type DynamicColor struct {
	name     string
	channels [4]Channel

	color         core.RGBA
	possibleAlpha bool

	// Variable binding
	varName       string
	varUseAlpha   bool
	varTiming     float32
	varInit       bool
	varTransition bool
	varTimingTmp  float32
	varOldColor   core.RGBA
	varNewColor   core.RGBA
	varLastChange float64
	sub           *vars.Subscription

	vars  Variables
	clock TickClock
}

// New creates an opaque white color with no channel functions
// v and clock are only used by variable-bound colors; either may be nil
func New(v Variables, clock TickClock) *DynamicColor {
	if clock == nil {
		clock = monotonic{}
	}
	d := &DynamicColor{
		color:        core.White,
		varTiming:    1,
		varTimingTmp: 1,
		varOldColor:  core.White,
		varNewColor:  core.White,
		vars:         v,
		clock:        clock,
	}
	for c := range d.channels {
		d.channels[c] = defaultChannel()
	}
	return d
}

func validChannel(channel int) bool {
	return channel >= 0 && channel < len(core.RGBA{})
}

// SetName assigns the lookup name
// Empty names and names starting with a digit are rejected and clear the name
func (d *DynamicColor) SetName(name string) bool {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		d.name = ""
		return false
	}
	d.name = name
	return true
}

// Name returns the lookup name, "" if unnamed
func (d *DynamicColor) Name() string {
	return d.name
}

// SetVariableName binds the color to a variable; "" unbinds
func (d *DynamicColor) SetVariableName(name string) {
	d.varName = name
}

// VariableName returns the bound variable, "" if none
func (d *DynamicColor) VariableName() string {
	return d.varName
}

// SetVariableTiming sets the default transition duration in seconds
func (d *DynamicColor) SetVariableTiming(seconds float32) {
	d.varTiming = seconds
}

// VariableTiming returns the default transition duration
func (d *DynamicColor) VariableTiming() float32 {
	return d.varTiming
}

// SetVariableUseAlpha declares whether the bound variable may carry translucency
func (d *DynamicColor) SetVariableUseAlpha(use bool) {
	d.varUseAlpha = use
}

// VariableUseAlpha reports the declared alpha use of the bound variable
func (d *DynamicColor) VariableUseAlpha() bool {
	return d.varUseAlpha
}

// SetLimits sets the channel range; both ends saturate to [0,1]
func (d *DynamicColor) SetLimits(channel int, min, max float32) {
	if !validChannel(channel) {
		return
	}
	d.channels[channel].Min = saturate(min)
	d.channels[channel].Max = saturate(max)
}

// SetSequence replaces the channel sequence
// A period below MinPeriod clears the sequence instead
func (d *DynamicColor) SetSequence(channel int, period, offset float32, list []uint8) {
	if !validChannel(channel) {
		return
	}
	seq := &d.channels[channel].Sequence
	*seq = Sequence{}
	if validTiming(period, offset) {
		seq.Period = period
		seq.Offset = offset
		seq.List = append([]uint8(nil), list...)
	}
}

// AddSinusoid appends a sinusoid; requires period >= MinPeriod and weight > 0
func (d *DynamicColor) AddSinusoid(channel int, period, offset, weight float32) {
	s := Sinusoid{Period: period, Offset: offset, Weight: weight}
	if !validChannel(channel) || !validSinusoid(s) {
		return
	}
	ch := &d.channels[channel]
	ch.Sinusoids = append(ch.Sinusoids, s)
}

// AddClampUp appends a clamp-up pulse; requires period >= MinPeriod and width > 0
func (d *DynamicColor) AddClampUp(channel int, period, offset, width float32) {
	c := Clamp{Period: period, Offset: offset, Width: width}
	if !validChannel(channel) || !validClamp(c) {
		return
	}
	ch := &d.channels[channel]
	ch.ClampUps = append(ch.ClampUps, c)
}

// AddClampDown appends a clamp-down pulse; requires period >= MinPeriod and width > 0
func (d *DynamicColor) AddClampDown(channel int, period, offset, width float32) {
	c := Clamp{Period: period, Offset: offset, Width: width}
	if !validChannel(channel) || !validClamp(c) {
		return
	}
	ch := &d.channels[channel]
	ch.ClampDowns = append(ch.ClampDowns, c)
}

// Channel returns a copy of the channel parameters
func (d *DynamicColor) Channel(channel int) Channel {
	if !validChannel(channel) {
		return Channel{}
	}
	return d.channels[channel].clone()
}

// Color returns the most recently resolved value
func (d *DynamicColor) Color() core.RGBA {
	return d.color
}

// PossibleAlpha reports whether the color can ever be translucent
// Valid after Finalize
func (d *DynamicColor) PossibleAlpha() bool {
	return d.possibleAlpha
}

// Finalize sanitizes every channel and classifies alpha use
// Must run after configuration, before the first Update or Pack
func (d *DynamicColor) Finalize() {
	for c := range d.channels {
		d.channels[c].sanitize()
	}

	if d.varName != "" {
		d.possibleAlpha = d.varUseAlpha
		return
	}

	p := &d.channels[core.Alpha]
	noAlphaSeqMid := true
	for _, v := range p.Sequence.List {
		if v == SeqMid {
			noAlphaSeqMid = false
			break
		}
	}

	d.possibleAlpha = true

	switch {
	case p.Min == 1 && p.Max == 1:
		// opaque regardless of functions
		d.possibleAlpha = false
	case len(p.Sequence.List) > 0 && noAlphaSeqMid && p.Min == 0 && p.Max == 1:
		// transparency, not translucency
		d.possibleAlpha = false
	case !p.hasFunctions() && p.Max == 1:
		d.possibleAlpha = false
	}
}

// Update resolves the color for time t
func (d *DynamicColor) Update(t float64) {
	if d.varName != "" {
		d.updateVariable()
		return
	}

	for c := range d.channels {
		d.color[c] = d.channels[c].Value(t)
	}
}

// Close releases the variable subscription
func (d *DynamicColor) Close() {
	d.sub.Cancel()
	d.sub = nil
}

// saturate clamps v to [0,1]; NaN becomes 0
func saturate(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var epoch = time.Now()

// monotonic is the fallback tick source
type monotonic struct{}

func (monotonic) Tick() float64 {
	return time.Since(epoch).Seconds()
}
