package physics

import "math"

// NormalizeAngle wraps a into the half-open interval (-pi, pi].
// Applying it to an already-normalized angle is the identity; the wrap
// direction matters because downstream bound checks compare the wrapped
// value on the following step.
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
