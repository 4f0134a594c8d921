package control

import (
	"fmt"
	"math"
)

// Waypoint is a pursuit target with the tuning of the segment
// leading to it.
type Waypoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	// Speed is the base forward speed.
	Speed float64 `yaml:"speed"`
	// BrakeDist is the distance from the target where the
	// approach boost has vanished.
	BrakeDist float64 `yaml:"brake"`
	// HeadingGain converts heading error into steering offset.
	HeadingGain float64 `yaml:"kp_head"`
}

// Course is an ordered list of waypoints.
type Course []Waypoint

// DefaultCourse is the obstacle course, in inches. The frame has x along
// the start line and y to the right of it; heading is clockwise.
var DefaultCourse = Course{
	{X: 33.4646, Y: 14.7638, Speed: 18, BrakeDist: 7, HeadingGain: 9},
	{X: 51.1811, Y: 0, Speed: 16, BrakeDist: 7, HeadingGain: 9},
	{X: 55.1181, Y: 11.8110, Speed: 25, BrakeDist: 0, HeadingGain: 10},
	{X: 49.2126, Y: 27.5591, Speed: 14, BrakeDist: 6, HeadingGain: 9},
	{X: 27.5591, Y: 24.6063, Speed: 16.5, BrakeDist: 7, HeadingGain: 9},
	{X: 13.7795, Y: 24.6063, Speed: 16, BrakeDist: 7, HeadingGain: 9},
	{X: 2.9528, Y: 24.6063, Speed: 16, BrakeDist: 7, HeadingGain: 9},
	{X: 0, Y: 1.9685, Speed: 10, BrakeDist: 6, HeadingGain: 9},
	{X: 15.7480, Y: 11.8110, Speed: 14, BrakeDist: 7, HeadingGain: 9},
	{X: 15.7480, Y: 0, Speed: 18, BrakeDist: 7, HeadingGain: 9},
	{X: -1.9685, Y: -1.9685, Speed: 18, BrakeDist: 7, HeadingGain: 9},
}

// Validate checks the course is usable.
func (c Course) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("course has no waypoints")
	}
	for n, wp := range c {
		if wp.BrakeDist < 0 {
			return fmt.Errorf("waypoint %d: negative brake distance %v", n, wp.BrakeDist)
		}
	}
	return nil
}

// PursuitConfig contains the speed law constants.
type PursuitConfig struct {
	// ArrivalRadius is the distance under which a waypoint is reached.
	ArrivalRadius float64 `yaml:"arrival_radius"`
	// HeadingWeight suppresses the approach boost under heading error.
	HeadingWeight float64 `yaml:"heading_weight"`
	FullThrottle  float64 `yaml:"full_throttle"`
	ApproachGain  float64 `yaml:"approach_gain"`
	// SettleSpeed is pinned for SettleTicks calls after a forced advance.
	SettleSpeed float64 `yaml:"settle_speed"`
	SettleTicks int     `yaml:"settle_ticks"`
}

// DefaultPursuitConfig is the tuned speed law.
var DefaultPursuitConfig = PursuitConfig{
	ArrivalRadius: 2.5,
	HeadingWeight: 30,
	FullThrottle:  3,
	ApproachGain:  8,
	SettleSpeed:   0.1,
	SettleTicks:   10,
}

// Steering is the output of a control law: a forward speed and a
// differential offset added to the left wheel and taken from the right.
type Steering struct {
	Offset float64
	Speed  float64
}

// Pursuer follows a course with pure pursuit.
// The waypoint cursor only moves forward.
type Pursuer struct {
	Config PursuitConfig
	Course Course

	idx       int
	done      bool
	countdown int
}

// NewPursuer creates a Pursuer targeting the first waypoint.
func NewPursuer(conf PursuitConfig, course Course) *Pursuer {
	return &Pursuer{Config: conf, Course: course}
}

// Index gets the index of the current target.
func (p *Pursuer) Index() int {
	return p.idx
}

// Target gets the current target.
func (p *Pursuer) Target() Waypoint {
	return p.Course[p.idx]
}

// Done tells whether the course is complete.
func (p *Pursuer) Done() bool {
	return p.done
}

// Advance computes steering towards the current target from the pose.
// The target advances when reached (strictly within ArrivalRadius) or
// when forceNext is set. ErrPathComplete is returned once advancing
// past the last waypoint, and on every call after.
func (p *Pursuer) Advance(x, y, heading float64, forceNext bool) (Steering, error) {
	if p.done || len(p.Course) == 0 {
		p.done = true
		return Steering{}, ErrPathComplete
	}
	wp := p.Course[p.idx]
	ex, ey := wp.X-x, wp.Y-y
	dist := math.Hypot(ex, ey)
	if dist < p.Config.ArrivalRadius || forceNext {
		p.idx++
		if p.idx >= len(p.Course) {
			p.idx = len(p.Course) - 1
			p.done = true
			return Steering{}, ErrPathComplete
		}
		wp = p.Course[p.idx]
		ex, ey = wp.X-x, wp.Y-y
		dist = math.Hypot(ex, ey)
	}

	c, s := math.Cos(heading), math.Sin(heading)
	alpha := math.Atan2(c*ey-s*ex, c*ex+s*ey)
	boost := math.Max(p.Config.FullThrottle+p.Config.ApproachGain*(dist-wp.BrakeDist), 0)
	out := Steering{
		Offset: wp.HeadingGain * alpha,
		Speed:  wp.Speed + boost/(1+p.Config.HeadingWeight*math.Abs(alpha)),
	}
	if forceNext {
		p.countdown = p.Config.SettleTicks
	}
	if p.countdown > 0 {
		p.countdown--
		out.Speed = p.Config.SettleSpeed
	}
	return out, nil
}
