package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon guards every normalize and atan2 call.
const Epsilon = 1e-6

// Clamp clamps v between minVal and maxVal.
func Clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// AngleDiff returns the signed smallest rotation from a to b.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}

// Flat drops the vertical component.
func Flat(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// FlatDistance returns the floor-plane distance between two points.
func FlatDistance(a, b r3.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// SafeUnit normalizes v on the floor plane. ok is false for degenerate vectors.
func SafeUnit(v r3.Vec) (u r3.Vec, ok bool) {
	v = Flat(v)
	n := r3.Norm(v)
	if n < Epsilon {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// Direction returns the floor-plane unit vector from a to b.
func Direction(from, to r3.Vec) (r3.Vec, bool) {
	return SafeUnit(r3.Sub(to, from))
}

// ForwardVector returns the floor-plane unit vector for a facing angle.
func ForwardVector(facing float64) r3.Vec {
	return r3.Vec{X: math.Sin(facing), Z: math.Cos(facing)}
}

// RightVector returns the floor-plane unit vector 90 degrees clockwise of facing.
func RightVector(facing float64) r3.Vec {
	return r3.Vec{X: math.Cos(facing), Z: -math.Sin(facing)}
}

// FacingTowards returns the facing angle that looks from one point to another.
func FacingTowards(from, to r3.Vec) (float64, bool) {
	dx := to.X - from.X
	dz := to.Z - from.Z
	if math.Abs(dx) < Epsilon && math.Abs(dz) < Epsilon {
		return 0, false
	}
	return math.Atan2(dx, dz), true
}

// AngleBetween returns the unsigned angle between a facing and a floor direction.
func AngleBetween(facing float64, dir r3.Vec) (float64, bool) {
	if math.Abs(dir.X) < Epsilon && math.Abs(dir.Z) < Epsilon {
		return 0, false
	}
	return math.Abs(AngleDiff(facing, math.Atan2(dir.X, dir.Z))), true
}

// ClosestPointOnSegment returns the point on segment ab nearest to p and the
// segment parameter in [0, 1].
func ClosestPointOnSegment(p, a, b r3.Vec) (r3.Vec, float64) {
	ab := r3.Sub(b, a)
	den := r3.Dot(ab, ab)
	if den < Epsilon {
		return a, 0
	}
	t := Clamp01(r3.Dot(r3.Sub(p, a), ab) / den)
	return r3.Add(a, r3.Scale(t, ab)), t
}
