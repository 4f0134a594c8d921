// Package diffdrive simulates a differential drive chassis: two DC motors
// with first order dynamics carrying a unicycle.
package diffdrive

import (
	"math"
	"sync"
	"time"

	"github.com/robotalks/romi.go/pkg/sim"
)

// Side selects a wheel.
type Side int

// Wheels.
const (
	Left Side = iota
	Right
)

// String implements fmt.Stringer.
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// MaxStep is the largest integration step.
const MaxStep = time.Millisecond

// Params describe the chassis.
type Params struct {
	// MotorGainLeft and MotorGainRight are in rad/s/V.
	MotorGainLeft  float64 `yaml:"motor_gain_left"`
	MotorGainRight float64 `yaml:"motor_gain_right"`
	Tau            float64 `yaml:"tau"`
	TrackWidth     float64 `yaml:"track_width"`
	WheelRadius    float64 `yaml:"wheel_radius"`
	// SupplyVolts is the battery voltage at 100% effort.
	SupplyVolts float64 `yaml:"supply_volts"`
}

// DefaultParams match the Romi chassis on a 9V supply.
var DefaultParams = Params{
	MotorGainLeft:  3.5,
	MotorGainRight: 3.35,
	Tau:            0.1,
	TrackWidth:     5.5425,
	WheelRadius:    1.375,
	SupplyVolts:    9,
}

// Snapshot is the observable state of the body.
type Snapshot struct {
	Pose sim.Pose2D
	// Heading is continuous, counter-clockwise.
	Heading float64
	YawRate float64
	// Vel and Path are wheel surface speed (in/s) and travel (in).
	Vel    [2]float64
	Path   [2]float64
	Effort [2]float64
}

// Body is a simulated chassis. It's safe for concurrent use.
type Body struct {
	Params Params

	lock    sync.Mutex
	x, y    float64
	heading float64
	vel     [2]float64
	path    [2]float64
	effort  [2]float64
}

// New creates a Body at the pose.
func New(params Params, pose sim.Pose2D) *Body {
	return &Body{
		Params:  params,
		x:       pose.X,
		y:       pose.Y,
		heading: pose.Orientation.Radians(),
	}
}

// SetEffort sets the duty cycle of a motor in percent.
func (b *Body) SetEffort(side Side, percent float64) {
	b.lock.Lock()
	b.effort[side] = percent
	b.lock.Unlock()
}

// Advance implements physics.Body.
func (b *Body) Advance(dt time.Duration) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for dt > 0 {
		step := dt
		if step > MaxStep {
			step = MaxStep
		}
		b.integrate(step.Seconds())
		dt -= step
	}
}

func (b *Body) integrate(h float64) {
	p := &b.Params
	gains := [2]float64{p.MotorGainLeft, p.MotorGainRight}
	decay := math.Exp(-h / p.Tau)
	var travel [2]float64
	for i := range b.vel {
		volts := b.effort[i] / 100 * p.SupplyVolts
		target := p.WheelRadius * gains[i] * volts
		// exact solution of the first order lag over h
		travel[i] = target*h + (b.vel[i]-target)*p.Tau*(1-decay)
		b.vel[i] = target + (b.vel[i]-target)*decay
		b.path[i] += travel[i]
	}
	dist := (travel[Left] + travel[Right]) / 2
	turn := (travel[Right] - travel[Left]) / p.TrackWidth
	mid := b.heading + turn/2
	b.x += dist * math.Cos(mid)
	b.y += dist * math.Sin(mid)
	b.heading += turn
}

// Snapshot gets the current state.
func (b *Body) Snapshot() Snapshot {
	b.lock.Lock()
	defer b.lock.Unlock()
	return Snapshot{
		Pose: sim.Pose2D{
			Pos2D:       sim.Pos2D{X: b.x, Y: b.y},
			Orientation: sim.AngleFromRadians(b.heading),
		},
		Heading: b.heading,
		YawRate: (b.vel[Right] - b.vel[Left]) / b.Params.TrackWidth,
		Vel:     b.vel,
		Path:    b.path,
		Effort:  b.effort,
	}
}

// Place moves the body to the pose and stops it.
func (b *Body) Place(pose sim.Pose2D) {
	b.lock.Lock()
	b.x, b.y, b.heading = pose.X, pose.Y, pose.Orientation.Radians()
	b.vel = [2]float64{}
	b.lock.Unlock()
}
