package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector for shot kinematics
type Vec3F struct {
	X, Y, Z float64
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

// V3FMulAdd returns a + v*s
func V3FMulAdd(a, v Vec3F, s float64) Vec3F {
	return Vec3F{a.X + v.X*s, a.Y + v.Y*s, a.Z + v.Z*s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FMagSq(v Vec3F) float64 {
	return V3FDot(v, v)
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FTurnToward rotates unit vector from toward unit vector to by at most maxAngle radians
// Returns to when the angle between them is within maxAngle
func V3FTurnToward(from, to Vec3F, maxAngle float64) Vec3F {
	cos := V3FDot(from, to)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	angle := math.Acos(cos)
	if angle <= maxAngle || angle < 1e-9 {
		return to
	}

	sinAngle := math.Sin(angle)
	if sinAngle < 1e-9 {
		// Antiparallel: any perpendicular axis works, pick one off the Z axis
		axis := Vec3F{-from.Y, from.X, 0}
		if V3FMagSq(axis) < 1e-12 {
			axis = Vec3F{1, 0, 0}
		}
		axis = V3FNormalize(axis)
		return V3FAdd(V3FScale(from, math.Cos(maxAngle)), V3FScale(axis, math.Sin(maxAngle)))
	}

	// Spherical interpolation by maxAngle along the great circle
	a := math.Sin(angle-maxAngle) / sinAngle
	b := math.Sin(maxAngle) / sinAngle
	return V3FNormalize(V3FAdd(V3FScale(from, a), V3FScale(to, b)))
}

// V3FFromArray converts packed float32 components
func V3FFromArray(a [3]float32) Vec3F {
	return Vec3F{float64(a[0]), float64(a[1]), float64(a[2])}
}

// Array returns the components as float32 for packing
func (v Vec3F) Array() [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
