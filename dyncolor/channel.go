package dyncolor

import (
	"math"
)

// MinPeriod is the smallest accepted period for any channel function
const MinPeriod = 0.01

// Sequence symbols
// A symbol is read as int8 when sanitized: bytes of 128 and above are
// negative and collapse to SeqMin, values above SeqMax collapse to SeqMax
const (
	SeqMin uint8 = 0 // clamp down, factor 0
	SeqMid uint8 = 1 // no clamp, fall through to sinusoids
	SeqMax uint8 = 2 // clamp up, factor 1
)

// Sinusoid is a periodic cosine contribution to a channel
type Sinusoid struct {
	Period float32
	Offset float32
	Weight float32
}

// Clamp is a periodic pulse forcing a channel to an extreme for Width seconds
type Clamp struct {
	Period float32
	Offset float32
	Width  float32
}

// Sequence is a ring of symbols, each held for Period seconds
type Sequence struct {
	Period float32
	Offset float32
	List   []uint8
}

// Channel holds the parameters of one color component
type Channel struct {
	Min        float32
	Max        float32
	Sinusoids  []Sinusoid
	ClampUps   []Clamp
	ClampDowns []Clamp
	Sequence   Sequence
}

func defaultChannel() Channel {
	return Channel{Min: 0, Max: 1}
}

// clone returns a deep copy so callers cannot alias live parameters
func (c Channel) clone() Channel {
	out := c
	out.Sinusoids = append([]Sinusoid(nil), c.Sinusoids...)
	out.ClampUps = append([]Clamp(nil), c.ClampUps...)
	out.ClampDowns = append([]Clamp(nil), c.ClampDowns...)
	out.Sequence.List = append([]uint8(nil), c.Sequence.List...)
	return out
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// validTiming rejects short, negative and non-finite periods and offsets
func validTiming(period, offset float32) bool {
	return period >= MinPeriod && finite(period) && finite(offset)
}

func validSinusoid(s Sinusoid) bool {
	return validTiming(s.Period, s.Offset) && s.Weight > 0 && finite(s.Weight)
}

func validClamp(c Clamp) bool {
	return validTiming(c.Period, c.Offset) && c.Width > 0 && !math.IsNaN(float64(c.Width))
}

// sanitize drops entries that the setters would have rejected
// Records decoded from the wire bypass the setters
func (c *Channel) sanitize() {
	c.Min = saturate(c.Min)
	c.Max = saturate(c.Max)

	sins := c.Sinusoids[:0]
	for _, s := range c.Sinusoids {
		if validSinusoid(s) {
			sins = append(sins, s)
		}
	}
	c.Sinusoids = sins
	c.ClampUps = filterClamps(c.ClampUps)
	c.ClampDowns = filterClamps(c.ClampDowns)

	if len(c.Sequence.List) > 0 && !validTiming(c.Sequence.Period, c.Sequence.Offset) {
		c.Sequence = Sequence{}
	}
	for i, v := range c.Sequence.List {
		if int8(v) < int8(SeqMin) {
			c.Sequence.List[i] = SeqMin
		} else if v > SeqMax {
			c.Sequence.List[i] = SeqMax
		}
	}
}

func filterClamps(clamps []Clamp) []Clamp {
	out := clamps[:0]
	for _, c := range clamps {
		if validClamp(c) {
			out = append(out, c)
		}
	}
	return out
}

// hasFunctions reports whether any generator is configured
func (c *Channel) hasFunctions() bool {
	return len(c.Sinusoids) > 0 || len(c.ClampUps) > 0 ||
		len(c.ClampDowns) > 0 || len(c.Sequence.List) > 0
}

// wrap maps v into [0, period) with floored semantics for negative input
func wrap(v, period float64) float64 {
	if v < 0 {
		v -= period * math.Floor(v/period)
	}
	return math.Mod(v, period)
}

func activeClamp(clamps []Clamp, t float64) bool {
	for _, c := range clamps {
		if wrap(t-float64(c.Offset), float64(c.Period)) < float64(c.Width) {
			return true
		}
	}
	return false
}

// Factor returns the amount of Max in the channel at time t, in [0,1]
// Priority: sequence, then clamps, then sinusoids, then static (1)
func (c *Channel) Factor(t float64) float32 {
	var clampUp, clampDown bool

	seq := &c.Sequence
	if count := len(seq.List); count > 0 {
		seqPeriod := float64(seq.Period)
		fullPeriod := float64(count) * seqPeriod
		indexTime := wrap(t-float64(seq.Offset), fullPeriod)
		index := int(indexTime / seqPeriod)
		if index < 0 {
			index = 0
		} else if index >= count {
			index = count - 1
		}
		switch seq.List[index] {
		case SeqMin:
			clampDown = true
		case SeqMax:
			clampUp = true
		}
	} else {
		clampUp = activeClamp(c.ClampUps, t)
		clampDown = activeClamp(c.ClampDowns, t)
	}

	switch {
	case clampUp && clampDown:
		return 0.5
	case clampUp:
		return 1
	case clampDown:
		return 0
	case len(c.Sinusoids) > 0:
		var value float32
		for _, s := range c.Sinusoids {
			phase := wrap((t-float64(s.Offset))/float64(s.Period), 1)
			value += s.Weight * float32(math.Cos(phase*2*math.Pi))
		}
		factor := 0.5 + 0.5*value
		if !(factor > 0) {
			return 0
		}
		if factor > 1 {
			return 1
		}
		return factor
	default:
		return 1
	}
}

// Value resolves the channel at time t
func (c *Channel) Value(t float64) float32 {
	f := c.Factor(t)
	return c.Min*(1-f) + c.Max*f
}
