package dyncolor

import (
	"strconv"
	"strings"

	"github.com/lixenwraith/tankarena/core"
)

// splitTiming strips an "@seconds" suffix from a variable value
// Returns the color expression, the parsed duration and whether one was present
func splitTiming(value string) (expr string, timing float32, ok bool) {
	at := strings.IndexByte(value, '@')
	if at < 0 {
		return value, 0, false
	}
	v, ok := parseLeadingFloat(value[at+1:])
	return value[:at], float32(v), ok
}

// parseLeadingFloat parses the longest numeric prefix of s, ignoring leading space
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	for end := len(s); end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func (d *DynamicColor) variableValue() string {
	if d.vars == nil {
		return ""
	}
	return d.vars.Get(d.varName)
}

// updateVariable drives a variable-bound color
// The first call binds to the variable; later calls advance a pending transition
func (d *DynamicColor) updateVariable() {
	if !d.varInit {
		d.varInit = true
		d.varTransition = false

		expr, timing, ok := splitTiming(d.variableValue())
		d.varTimingTmp = d.varTiming
		if ok {
			d.varTimingTmp = timing
		}
		d.color, _ = core.ParseColor(expr)
		d.varOldColor = d.color
		d.varNewColor = d.color

		if d.vars != nil {
			d.sub = d.vars.Watch(d.varName, d.onVariableChange)
		}
	}

	if !d.varTransition {
		return
	}

	elapsed := float32(d.clock.Tick() - d.varLastChange)
	if elapsed < d.varTimingTmp {
		scale := float32(1)
		if d.varTimingTmp > 0 {
			scale = elapsed / d.varTimingTmp
		}
		d.color = core.Lerp(d.varOldColor, d.varNewColor, scale)
		return
	}

	// land exactly on the target
	d.varTransition = false
	d.color = d.varNewColor
}

// onVariableChange starts a transition from the current color to the new value
func (d *DynamicColor) onVariableChange(string) {
	d.varTransition = true
	d.varLastChange = d.clock.Tick()
	d.varOldColor = d.color

	expr, timing, ok := splitTiming(d.variableValue())
	d.varTimingTmp = d.varTiming
	if ok {
		d.varTimingTmp = timing
	}
	d.varNewColor, _ = core.ParseColor(expr)
}
