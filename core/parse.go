package core

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor converts a color expression to RGBA
// Accepted forms:
//
//	"r g b" or "r g b a"   normalized floats
//	"#rgb", "#rrggbb"      hex, optional "#rrggbbaa"
//	"name"                 any tcell color name
//
// A hex or named color may be followed by an alpha float ("red 0.5")
// On failure the result is opaque white and ok is false
func ParseColor(expr string) (RGBA, bool) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return White, false
	}

	if _, err := strconv.ParseFloat(fields[0], 32); err == nil {
		return parseFloats(fields)
	}

	var c RGBA
	var ok bool
	if strings.HasPrefix(fields[0], "#") {
		c, ok = parseHex(fields[0])
	} else {
		c, ok = parseName(fields[0])
	}
	if !ok {
		return White, false
	}

	switch len(fields) {
	case 1:
		return c, true
	case 2:
		a, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return White, false
		}
		c[Alpha] = clamp01(float32(a))
		return c, true
	default:
		return White, false
	}
}

func parseFloats(fields []string) (RGBA, bool) {
	if len(fields) != 3 && len(fields) != 4 {
		return White, false
	}
	c := White
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return White, false
		}
		c[i] = clamp01(float32(v))
	}
	return c, true
}

func parseHex(s string) (RGBA, bool) {
	alpha := float32(1)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return White, false
		}
		alpha = float32(a) / 255
		s = s[:7]
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return White, false
	}
	return FromColorful(col, alpha), true
}

func parseName(name string) (RGBA, bool) {
	tc := tcell.GetColor(strings.ToLower(name))
	if tc == tcell.ColorDefault {
		return White, false
	}
	r, g, b := tc.RGB()
	if r < 0 || g < 0 || b < 0 {
		return White, false
	}
	return RGBA{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}, true
}
