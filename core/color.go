package core

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Channel indices of an RGBA value
const (
	Red = iota
	Green
	Blue
	Alpha
)

// RGBA stores normalized color channels in [0,1]
type RGBA [4]float32

// Predefined colors
var (
	White = RGBA{1, 1, 1, 1}
	Black = RGBA{0, 0, 0, 1}
)

// Opaque reports whether alpha is fully on
func (c RGBA) Opaque() bool {
	return c[Alpha] >= 1
}

// Colorful converts the RGB part to a go-colorful value
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{R: float64(c[Red]), G: float64(c[Green]), B: float64(c[Blue])}
}

// FromColorful builds an RGBA from a go-colorful value and alpha
func FromColorful(col colorful.Color, alpha float32) RGBA {
	return RGBA{float32(col.R), float32(col.G), float32(col.B), alpha}
}

// Lerp blends a toward b by s: s=0 yields a, s=1 yields b
func Lerp(a, b RGBA, s float32) RGBA {
	if s <= 0 {
		return a
	}
	if s >= 1 {
		return b
	}
	mixed := a.Colorful().BlendRgb(b.Colorful(), float64(s))
	return FromColorful(mixed, a[Alpha]+(b[Alpha]-a[Alpha])*s)
}

// RGB8 composites c over black and returns 8-bit channels
func (c RGBA) RGB8() (r, g, b uint8) {
	a := clamp01(c[Alpha])
	return to8(c[Red] * a), to8(c[Green] * a), to8(c[Blue] * a)
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
