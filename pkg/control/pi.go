package control

import (
	"math"
	"time"
)

// OutputLimit is the saturation of PI outputs, in percent effort.
const OutputLimit = 100.0

// PI is a discrete PI controller with output saturation.
type PI struct {
	Kp, Ki float64

	integral float64
	last     time.Duration
}

// NewPI creates a PI controller.
func NewPI(kp, ki float64) *PI {
	return &PI{Kp: kp, Ki: ki}
}

// Update computes the output for the setpoint and measurement at now.
// Time going backwards integrates nothing.
func (c *PI) Update(setpoint, measurement float64, now time.Duration) float64 {
	e := setpoint - measurement
	dt := (now - c.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	c.last = now
	c.integral += e * dt
	return Clamp(c.Kp*e+c.Ki*c.integral, -OutputLimit, OutputLimit)
}

// Reset zeroes the integrator and restarts the time reference at now.
// It must be called when the loop is re-armed after being stopped.
func (c *PI) Reset(now time.Duration) {
	c.integral = 0
	c.last = now
}

// Integral gets the integrator value.
func (c *PI) Integral() float64 {
	return c.integral
}

// Clamp limits v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
