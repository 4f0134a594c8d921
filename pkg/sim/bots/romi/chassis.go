package romi

import (
	"fmt"
	"math"
	"sync"

	"github.com/robotalks/romi.go/pkg/hw"
	"github.com/robotalks/romi.go/pkg/sim"
	"github.com/robotalks/romi.go/pkg/sim/physics/diffdrive"
)

// ReflectanceFull is the reading of a sensor fully over the line.
const ReflectanceFull = 1000

// footprintSamples is the number of points sampled across a sensor.
const footprintSamples = 8

// Chassis is a simulated Romi: a differential drive body with the
// sensors the control tasks read.
type Chassis struct {
	Config Config
	Body   *diffdrive.Body

	left, right *motor
	encL, encR  *encoder
	imu         *imu
	reflectance *reflectance
	bumper      *bumper
}

// NewChassis creates a Chassis at the start pose.
func NewChassis(conf Config) *Chassis {
	c := &Chassis{Config: conf, Body: diffdrive.New(conf.Body, conf.Start)}
	c.left = &motor{chassis: c, side: diffdrive.Left}
	c.right = &motor{chassis: c, side: diffdrive.Right}
	c.encL = &encoder{chassis: c, side: diffdrive.Left}
	c.encR = &encoder{chassis: c, side: diffdrive.Right}
	c.imu = &imu{chassis: c}
	c.reflectance = &reflectance{chassis: c}
	c.bumper = &bumper{chassis: c}
	return c
}

// Drive gets the motors and encoders.
func (c *Chassis) Drive() *hw.Drive {
	return &hw.Drive{
		LeftMotor:    c.left,
		RightMotor:   c.right,
		LeftEncoder:  c.encL,
		RightEncoder: c.encR,
	}
}

// IMU gets the orientation sensor.
func (c *Chassis) IMU() hw.OrientationSensor {
	return c.imu
}

// LineSensor gets the reflectance array.
func (c *Chassis) LineSensor() hw.Reflectance {
	return c.reflectance
}

// Bumper gets the bump sensor.
func (c *Chassis) Bumper() hw.BumpSensor {
	return c.bumper
}

// Snapshot gets the state of the body.
func (c *Chassis) Snapshot() diffdrive.Snapshot {
	return c.Body.Snapshot()
}

type motor struct {
	chassis *Chassis
	side    diffdrive.Side

	lock    sync.Mutex
	enabled bool
}

func (m *motor) SetEffort(percent float64) error {
	if math.IsNaN(percent) || percent > 100 || percent < -100 {
		return fmt.Errorf("%s motor: effort %v out of range", m.side, percent)
	}
	m.lock.Lock()
	enabled := m.enabled
	m.lock.Unlock()
	if !enabled {
		percent = 0
	}
	m.chassis.Body.SetEffort(m.side, percent)
	return nil
}

func (m *motor) Enable() error {
	m.lock.Lock()
	m.enabled = true
	m.lock.Unlock()
	return nil
}

func (m *motor) Disable() error {
	m.lock.Lock()
	m.enabled = false
	m.lock.Unlock()
	m.chassis.Body.SetEffort(m.side, 0)
	return nil
}

// encoder latches the wheel travel on Update.
type encoder struct {
	chassis *Chassis
	side    diffdrive.Side

	lock sync.Mutex
	ref  float64
	pos  float64
	vel  float64
}

func (e *encoder) Update() {
	s := e.chassis.Body.Snapshot()
	e.lock.Lock()
	e.pos = s.Path[e.side] - e.ref
	e.vel = s.Vel[e.side]
	e.lock.Unlock()
}

func (e *encoder) Position() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.pos
}

func (e *encoder) Velocity() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.vel
}

func (e *encoder) Zero() {
	s := e.chassis.Body.Snapshot()
	e.lock.Lock()
	e.ref = s.Path[e.side]
	e.pos, e.vel = 0, 0
	e.lock.Unlock()
}

// imu reports the heading relative to the start pose. Like a real
// fusion chip it only sees the wrapped angle, so it unwraps.
type imu struct {
	chassis *Chassis

	lock   sync.Mutex
	unwrap sim.Unwrapper
}

func (u *imu) Heading() (float64, error) {
	s := u.chassis.Body.Snapshot()
	rel := s.Pose.Orientation.AddRadians(-u.chassis.Config.Start.Orientation.Radians())
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.unwrap.Next(rel), nil
}

func (u *imu) YawRate() (float64, error) {
	return u.chassis.Body.Snapshot().YawRate, nil
}

type reflectance struct {
	chassis *Chassis
}

// Read samples each sensor footprint across the line band. Sensor 0 is
// the leftmost one.
func (r *reflectance) Read() ([]uint16, error) {
	conf := &r.chassis.Config
	pose := r.chassis.Body.Snapshot().Pose
	readings := make([]uint16, conf.SensorCount)
	center := float64(conf.SensorCount-1) / 2
	for i := range readings {
		// higher index is further right, which is -Y in the body frame
		y := -(float64(i) - center) * conf.SensorPitch
		hits := 0
		for n := 0; n < footprintSamples; n++ {
			dy := (float64(n)+0.5)/footprintSamples - 0.5
			p := pose.Local(sim.Pos2D{X: conf.SensorAhead, Y: y + dy*conf.SensorPitch})
			if conf.Line.Contains(p) {
				hits++
			}
		}
		readings[i] = uint16(hits * ReflectanceFull / footprintSamples)
	}
	return readings, nil
}

type bumper struct {
	chassis *Chassis
}

func (b *bumper) Triggered() bool {
	conf := &b.chassis.Config
	front := b.chassis.Body.Snapshot().Pose.Local(sim.Pos2D{X: conf.BumperAhead})
	for _, w := range conf.Walls {
		if w.Contains(front) {
			return true
		}
	}
	return false
}
