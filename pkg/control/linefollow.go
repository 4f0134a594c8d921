package control

import "time"

// LineFollowConfig configures LineFollower.
type LineFollowConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	// BiasAfter is the travelled X beyond which Bias is added.
	BiasAfter float64 `yaml:"bias_after"`
	Bias      float64 `yaml:"bias"`
}

// DefaultLineFollowConfig is tuned for the 13 sensor array.
var DefaultLineFollowConfig = LineFollowConfig{
	Kp:        1.1,
	Ki:        0,
	BiasAfter: 25,
	Bias:      8.5,
}

// LineFollowState is the state of LineFollower.
type LineFollowState int

// LineFollower states.
const (
	LineFollowActive LineFollowState = iota
	LineFollowStopped
)

// String implements fmt.Stringer.
func (s LineFollowState) String() string {
	if s == LineFollowStopped {
		return "stopped"
	}
	return "active"
}

// LineFollower steers along a line seen by a reflectance array.
// Its output is a differential speed offset.
type LineFollower struct {
	Config LineFollowConfig

	state    LineFollowState
	integral float64
	last     time.Duration
	started  bool
}

// NewLineFollower creates a LineFollower in Active state.
func NewLineFollower(conf LineFollowConfig) *LineFollower {
	return &LineFollower{Config: conf}
}

// State gets the current state.
func (f *LineFollower) State() LineFollowState {
	return f.state
}

// Update computes the steering offset. stop is the external stop flag:
// once set the follower holds a neutral output until the flag is cleared.
// speed is the commanded forward speed, x the travelled X.
func (f *LineFollower) Update(readings []uint16, speed, x float64, stop bool, now time.Duration) (float64, bool) {
	switch f.state {
	case LineFollowActive:
		if stop {
			f.state = LineFollowStopped
			return 0, false
		}
	case LineFollowStopped:
		if stop {
			return 0, false
		}
		f.state = LineFollowActive
		f.integral, f.last, f.started = 0, now, true
	}
	if !f.started {
		f.last, f.started = now, true
	}

	e := Centroid(readings)
	dt := (now - f.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	f.last = now
	if speed == 0 {
		f.integral = 0
	} else {
		f.integral += e * dt
	}
	out := f.Config.Kp*e + f.Config.Ki*f.integral
	if x > f.Config.BiasAfter {
		out += f.Config.Bias
	}
	return out, true
}

// Centroid computes the weighted position of the line relative to the
// array center, in sensor pitches. It's zero when nothing is seen.
func Centroid(readings []uint16) float64 {
	center := float64(len(readings)-1) / 2
	var num, den float64
	for i, v := range readings {
		num += float64(v) * (float64(i) - center)
		den += float64(v)
	}
	if num == 0 {
		return 0
	}
	return num / den
}
