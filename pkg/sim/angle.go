package sim

import "math"

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(normalizeRadians(d * math.Pi / 180.0))
}

// AngleFromRadians creates Angle from radians.
func AngleFromRadians(r float64) Angle {
	return Angle(normalizeRadians(r))
}

// AddRadians adds radians to current angle.
func (a Angle) AddRadians(r float64) Angle {
	return Angle(normalizeRadians(float64(a) + r))
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Cos wraps math.Cos.
func (a Angle) Cos() float64 {
	return math.Cos(float64(a))
}

// Sin wraps math.Sin.
func (a Angle) Sin() float64 {
	return math.Sin(float64(a))
}

// Unwrapper turns a wrapped angle stream into a continuous one,
// assuming less than half a turn between samples.
type Unwrapper struct {
	last       float64
	continuous float64
	started    bool
}

// Next feeds a wrapped sample and returns the continuous angle.
func (u *Unwrapper) Next(a Angle) float64 {
	w := float64(a)
	if !u.started {
		u.last, u.continuous, u.started = w, w, true
		return w
	}
	u.continuous += normalizeRadians(w - u.last)
	u.last = w
	return u.continuous
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
