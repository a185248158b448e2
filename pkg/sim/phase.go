package sim

import "math"

// Phase is an angle in radians normalized to [-π, π].
type Phase float64

// PhaseFromDegrees creates Phase from degrees.
func PhaseFromDegrees(d float64) Phase {
	return Phase(normalizeRadians(d * math.Pi / 180.0))
}

// Advance adds radians to the phase.
func (p Phase) Advance(r float64) Phase {
	return Phase(normalizeRadians(float64(p) + r))
}

// Radians gets phase in radians.
func (p Phase) Radians() float64 {
	return float64(p)
}

// Degrees gets phase in degrees.
func (p Phase) Degrees() float64 {
	return float64(p) * 180 / math.Pi
}

// Sin wraps math.Sin.
func (p Phase) Sin() float64 {
	return math.Sin(float64(p))
}

// Cycle gets the position in the cycle in [0, 1).
func (p Phase) Cycle() float64 {
	c := float64(p) / (2 * math.Pi)
	if c < 0 {
		c++
	}
	return c
}

func normalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r < -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
