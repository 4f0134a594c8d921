// Package observer estimates the robot state with a 7-state model of
// the drive train, integrated by RK4 and pulled towards the sensor
// readings by fixed feedback gains (Luenberger style).
package observer

import (
	"math"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/robotalks/romi.go/pkg/sim"
)

// Indices into State.
const (
	VelLeft = iota
	VelRight
	Heading
	PathLeft
	PathRight
	PosX
	PosY

	NumStates
)

// Indices into Measurement.
const (
	MeasHeading = iota
	MeasVelLeft
	MeasVelRight
	MeasPathLeft
	MeasPathRight

	NumMeasurements
)

// State is the estimated state: wheel speeds (in/s), heading (rad),
// wheel path lengths (in) and world position (in).
type State [NumStates]float64

// Measurement is the sensor vector fed back into the model.
type Measurement [NumMeasurements]float64

// Input is the motor voltage pair, left then right.
type Input [2]float64

// Params configures the model and the feedback gains.
type Params struct {
	// MotorGainLeft and MotorGainRight are motor speed constants (rad/s/V).
	MotorGainLeft  float64 `yaml:"motor_gain_left"`
	MotorGainRight float64 `yaml:"motor_gain_right"`
	// Tau is the motor time constant (s).
	Tau float64 `yaml:"tau"`
	// TrackWidth is the wheel separation (in).
	TrackWidth float64 `yaml:"track_width"`
	// WheelRadius (in).
	WheelRadius float64 `yaml:"wheel_radius"`

	LVel     float64 `yaml:"l_vel"`
	LHeading float64 `yaml:"l_heading"`
	LPos     float64 `yaml:"l_pos"`
}

// DefaultParams are identified on the Romi chassis.
var DefaultParams = Params{
	MotorGainLeft:  3.5,
	MotorGainRight: 3.35,
	Tau:            0.1,
	TrackWidth:     5.5425,
	WheelRadius:    1.375,
	LVel:           40,
	LHeading:       12,
	LPos:           10,
}

// Observer integrates the model. Step must only be called from a
// single goroutine; SetHeadingFeedback may be called from anywhere.
type Observer struct {
	params Params

	tauInv, wInv float64
	kl, kr       float64

	headingOff atomic.Bool

	x, tmp         State
	k1, k2, k3, k4 State
}

// New creates an Observer at the zero state.
func New(params Params) *Observer {
	return &Observer{
		params: params,
		tauInv: 1 / params.Tau,
		wInv:   1 / params.TrackWidth,
		kl:     params.WheelRadius * params.MotorGainLeft,
		kr:     params.WheelRadius * params.MotorGainRight,
	}
}

// Params gets the parameters.
func (o *Observer) Params() Params {
	return o.params
}

// SetHeadingFeedback enables or disables the heading correction,
// effective from the next step.
func (o *Observer) SetHeadingFeedback(on bool) {
	o.headingOff.Store(!on)
}

// HeadingFeedback tells whether heading correction is enabled.
func (o *Observer) HeadingFeedback() bool {
	return !o.headingOff.Load()
}

// State gets the current estimate.
func (o *Observer) State() State {
	return o.x
}

// Reset sets the estimate.
func (o *Observer) Reset(x State) {
	o.x = x
}

// Pose gets the estimated pose.
func (o *Observer) Pose() sim.Pose2D {
	return sim.Pose2D{
		Pos2D:       sim.Pos2D{X: o.x[PosX], Y: o.x[PosY]},
		Orientation: sim.AngleFromRadians(o.x[Heading]),
	}
}

// Step advances the estimate by dt with the inputs and measurements
// held constant, and returns the new estimate.
func (o *Observer) Step(u Input, y Measurement, dt time.Duration) State {
	h := dt.Seconds()
	lpsi := o.params.LHeading
	if o.headingOff.Load() {
		lpsi = 0
	}
	x, tmp := o.x[:], o.tmp[:]

	o.derive(&o.k1, &o.x, u, y, lpsi)
	floats.AddScaledTo(tmp, x, h/2, o.k1[:])
	o.derive(&o.k2, &o.tmp, u, y, lpsi)
	floats.AddScaledTo(tmp, x, h/2, o.k2[:])
	o.derive(&o.k3, &o.tmp, u, y, lpsi)
	floats.AddScaledTo(tmp, x, h, o.k3[:])
	o.derive(&o.k4, &o.tmp, u, y, lpsi)

	floats.Add(o.k2[:], o.k3[:])
	floats.AddScaled(x, h/6, o.k1[:])
	floats.AddScaled(x, h/3, o.k2[:])
	floats.AddScaled(x, h/6, o.k4[:])
	return o.x
}

// Derivative evaluates the state derivative at x.
func (o *Observer) Derivative(x State, u Input, y Measurement) State {
	var xd State
	lpsi := o.params.LHeading
	if o.headingOff.Load() {
		lpsi = 0
	}
	o.derive(&xd, &x, u, y, lpsi)
	return xd
}

func (o *Observer) derive(xd, x *State, u Input, y Measurement, lpsi float64) {
	p := &o.params
	xd[VelLeft] = o.tauInv*(o.kl*u[0]-x[VelLeft]) + p.LVel*(y[MeasVelLeft]-x[VelLeft])
	xd[VelRight] = o.tauInv*(o.kr*u[1]-x[VelRight]) + p.LVel*(y[MeasVelRight]-x[VelRight])
	xd[Heading] = o.wInv*(x[VelRight]-x[VelLeft]) + lpsi*(y[MeasHeading]-x[Heading])
	xd[PathLeft] = x[VelLeft] + p.LPos*(y[MeasPathLeft]-x[PathLeft])
	xd[PathRight] = x[VelRight] + p.LPos*(y[MeasPathRight]-x[PathRight])
	v := 0.5 * (x[VelLeft] + x[VelRight])
	xd[PosX] = v * math.Cos(x[Heading])
	xd[PosY] = v * math.Sin(x[Heading])
}
